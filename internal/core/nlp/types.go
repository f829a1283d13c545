package nlp

// Intent classifies what the user wants from a message
type Intent string

const (
	IntentQueryFood    Intent = "query_food"
	IntentModifyRemove Intent = "modify_remove"
	IntentModifyAdd    Intent = "modify_add"
	IntentGreeting     Intent = "greeting"
	IntentHelp         Intent = "help"
)

// Modifications holds the add/remove ingredient lists extracted from a message
type Modifications struct {
	Remove []string `json:"remove"`
	Add    []string `json:"add"`
}

// Quantities holds explicit quantity hints. A zero value means "not given".
type Quantities struct {
	WeightG    float64 `json:"weight_g,omitempty"`
	Multiplier float64 `json:"multiplier,omitempty"`
}

// ParsedQuery is the immutable result of parsing one user message.
// FoodItems is never empty by contract.
type ParsedQuery struct {
	Intent           Intent        `json:"intent"`
	FoodItems        []string      `json:"food_items"`
	Modifications    Modifications `json:"modifications"`
	Quantities       Quantities    `json:"quantities"`
	LanguageDetected string        `json:"language_detected"`
	OriginalText     string        `json:"original_text"`
	NormalizedText   string        `json:"normalized_text"`
	Confidence       float64       `json:"confidence"`
}
