package nlp

import (
	"regexp"
	"strings"
)

// intent marker sets. Order inside each list and the cascade order across
// lists are behavioral contracts; do not reorder.
var (
	greetingWords = []string{"hi", "hello", "hey", "good morning", "good evening", "marhaba", "ahlan", "salam"}
	helpWords     = []string{"help", "how do", "how to", "what can"}
	removeWords   = []string{"without", "remove", "no ", "except", "minus", "exclude", "hold the", "bala", "bidun", "bidoun"}
	addWords      = []string{"extra", "add ", "plus", "include", "with "}
)

// markers used to truncate the food phrase at the first modification
var foodCutPatterns = []string{
	" without ", " bala ", " bidun ", " bidoun ",
	" with ", " plus ", " add ", " extra ",
	" remove ", " minus ", " no ",
}

// markers scanned for slot extraction; every occurrence contributes one item
var (
	removePatterns = []string{" without ", " bala ", " bidun ", " bidoun ", " remove ", " minus ", " no ", " exclude "}
	addPatterns    = []string{" with added ", " with extra ", " extra ", " add ", " plus "}
)

// question/filler phrases stripped from food phrases, in order
var fillerPhrases = []string{
	"how many calories in", "how many calories", "what are the calories",
	"calories in", "calories of", "calories for", "calorie count",
	"what is", "tell me about", "i want", "i need", "give me",
	"can i have", "please", "thanks", "thank you",
}

// standalone filler words removed after phrase stripping. Articles are
// handled here rather than as phrases so words ending in "a" survive.
var fillerWords = map[string]bool{
	"calories": true, "calorie": true, "kcal": true, "cal": true,
	"the": true, "a": true, "an": true, "of": true,
}

// minimal stopword set for the last-resort food extraction fallback
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "of": true,
	"in": true, "for": true, "how": true, "many": true, "what": true,
}

// words skipped when pulling the item after a modification marker
var quantityWords = map[string]bool{
	"a": true, "an": true, "the": true, "some": true, "any": true,
	"g": true, "kg": true, "gram": true, "grams": true,
	"oz": true, "cup": true, "cups": true,
}

var weightRe = regexp.MustCompile(`(\d+)\s*(g|gram|grams|kg)\b`)

// Parser extracts intent and slots from normalized text
type Parser struct {
	vocab *Vocabulary
}

// NewParser creates a parser backed by the vocabulary catalog
func NewParser(vocab *Vocabulary) *Parser {
	return &Parser{vocab: vocab}
}

// Parse runs the full extraction over one normalized message. FoodItems in
// the returned query is never empty.
func (p *Parser) Parse(originalText, normalizedText, language string) ParsedQuery {
	intent := classifyIntent(normalizedText)
	foodItems := extractFoodItems(normalizedText)
	modifications := extractModifications(normalizedText)
	quantities := extractQuantities(normalizedText)
	confidence := p.scoreConfidence(intent, foodItems, normalizedText)

	return ParsedQuery{
		Intent:           intent,
		FoodItems:        foodItems,
		Modifications:    modifications,
		Quantities:       quantities,
		LanguageDetected: language,
		OriginalText:     originalText,
		NormalizedText:   normalizedText,
		Confidence:       confidence,
	}
}

// classifyIntent walks the rule cascade in fixed order; first match wins
func classifyIntent(text string) Intent {
	trimmed := strings.TrimSpace(text)

	for _, g := range greetingWords {
		if trimmed == g || strings.HasPrefix(trimmed, g+" ") {
			return IntentGreeting
		}
	}
	for _, w := range helpWords {
		if strings.Contains(text, w) {
			return IntentHelp
		}
	}
	for _, w := range removeWords {
		if strings.Contains(text, w) {
			return IntentModifyRemove
		}
	}
	for _, w := range addWords {
		if strings.Contains(text, w) {
			return IntentModifyAdd
		}
	}
	return IntentQueryFood
}

// extractFoodItems pulls the food phrase out of the text. Never returns an
// empty list: the final fallback is the text itself.
func extractFoodItems(text string) []string {
	padded := " " + text + " "

	// a modification marker splits the phrase; keep the left-hand side
	for _, pattern := range foodCutPatterns {
		if strings.Contains(padded, pattern) {
			left := strings.SplitN(text, strings.TrimSpace(pattern), 2)[0]
			cleaned := cleanFoodName(strings.TrimSpace(left))
			if cleaned != "" {
				return []string{cleaned}
			}
		}
	}

	if cleaned := cleanFoodName(text); cleaned != "" {
		return []string{cleaned}
	}

	// fallback: drop stopwords, then give up and return the text verbatim
	var kept []string
	for _, w := range strings.Fields(text) {
		if !stopWords[w] {
			kept = append(kept, w)
		}
	}
	if len(kept) > 0 {
		return []string{strings.Join(kept, " ")}
	}
	return []string{text}
}

// cleanFoodName strips weight expressions, question phrases, articles and
// residual filler words. Weights like "200g" belong to quantity extraction,
// never to the food phrase.
func cleanFoodName(text string) string {
	result := strings.ToLower(text)
	result = weightRe.ReplaceAllString(result, " ")
	for _, phrase := range fillerPhrases {
		result = strings.ReplaceAll(result, phrase, " ")
	}

	var words []string
	for _, w := range strings.Fields(result) {
		if fillerWords[w] || containsDigit(w) {
			continue
		}
		words = append(words, w)
	}
	return strings.Join(words, " ")
}

// extractModifications scans every marker occurrence independently; each
// marker contributes at most one item to its list
func extractModifications(text string) Modifications {
	mods := Modifications{Remove: []string{}, Add: []string{}}
	padded := " " + strings.ToLower(text) + " "

	for _, pattern := range removePatterns {
		if idx := strings.Index(padded, pattern); idx >= 0 {
			after := padded[idx+len(pattern):]
			if item := extractFirstItem(after); item != "" {
				mods.Remove = append(mods.Remove, item)
			}
		}
	}
	for _, pattern := range addPatterns {
		if idx := strings.Index(padded, pattern); idx >= 0 {
			after := padded[idx+len(pattern):]
			if item := extractFirstItem(after); item != "" {
				mods.Add = append(mods.Add, item)
			}
		}
	}
	return mods
}

// extractFirstItem returns the first meaningful token, skipping quantities,
// units and articles. Supports the "30g of tahini" pattern by looking past
// the word "of".
func extractFirstItem(text string) string {
	text = strings.TrimSpace(text)

	if idx := strings.Index(text, " of "); idx >= 0 {
		afterOf := text[idx+len(" of "):]
		words := strings.Fields(afterOf)
		if len(words) > 0 {
			return strings.Trim(words[0], ".,!? ")
		}
	}

	for _, word := range strings.Fields(text) {
		clean := strings.Trim(word, ".,!?")
		if clean == "" || containsDigit(clean) || quantityWords[clean] {
			continue
		}
		return clean
	}
	return ""
}

func containsDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

// extractQuantities pulls an explicit weight and at most one multiplier
func extractQuantities(text string) Quantities {
	var q Quantities

	if m := weightRe.FindStringSubmatch(text); m != nil {
		value := 0.0
		for _, r := range m[1] {
			value = value*10 + float64(r-'0')
		}
		if strings.Contains(m[2], "kg") {
			value *= 1000
		}
		q.WeightG = value
	}

	// first matching keyword wins
	switch {
	case strings.Contains(text, "double") || strings.Contains(text, "twice"):
		q.Multiplier = 2.0
	case strings.Contains(text, "triple"):
		q.Multiplier = 3.0
	case strings.Contains(text, "half"):
		q.Multiplier = 0.5
	}

	return q
}

// scoreConfidence computes the heuristic [0,1] extraction reliability score
func (p *Parser) scoreConfidence(intent Intent, foodItems []string, text string) float64 {
	score := 0.5

	if len(foodItems) > 0 && strings.TrimSpace(foodItems[0]) != "" {
		score += 0.2
		if p.vocab != nil && p.vocab.Contains(foodItems[0]) {
			score += 0.2
		}
	}
	if intent == IntentQueryFood || intent == IntentModifyRemove || intent == IntentModifyAdd {
		score += 0.1
	}
	if len(strings.Fields(text)) < 2 {
		score -= 0.1
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}
