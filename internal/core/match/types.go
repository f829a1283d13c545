package match

// Source tags which reference corpus an entry came from
type Source string

const (
	SourceDishes     Source = "dishes"
	SourceFoundation Source = "usda_foundation"
	SourceSRLegacy   Source = "usda_sr_legacy"
)

// RawIngredient is one itemized ingredient of a dish recipe
type RawIngredient struct {
	Name     string  `json:"name"`
	WeightG  float64 `json:"weight_g"`
	Calories float64 `json:"calories"`
	FdcID    int64   `json:"usda_fdc_id,omitempty"`
}

// DishRecord is a composite recipe with a country tag and either itemized
// ingredients or aggregate totals
type DishRecord struct {
	ID          int64           `json:"dish_id"`
	Name        string          `json:"dish_name"`
	Country     string          `json:"country"`
	WeightG     float64         `json:"weight_g"`
	Calories    float64         `json:"calories"`
	Ingredients []RawIngredient `json:"ingredients"`
}

// Nutrient is one nutrient value of an ingredient record
type Nutrient struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// IngredientRecord is a single-food nutrition record with per-100g values
type IngredientRecord struct {
	FdcID       int64      `json:"fdc_id"`
	Description string     `json:"description"`
	Nutrients   []Nutrient `json:"nutrients"`
}

// EnergyPer100g returns the first nutrient that carries an energy value
func (r *IngredientRecord) EnergyPer100g() float64 {
	for _, n := range r.Nutrients {
		if isEnergyNutrient(n.Name) {
			return n.Value
		}
	}
	return 0
}

// Entry is one immutable catalog entry. Exactly one of Dish / Ingredient is
// set, matching the Source tag.
type Entry struct {
	NormalizedName string
	DisplayName    string
	Source         Source
	Country        string
	Dish           *DishRecord
	Ingredient     *IngredientRecord
}

// Candidate is a ranked search result
type Candidate struct {
	Entry *Entry
	Score float64
}
