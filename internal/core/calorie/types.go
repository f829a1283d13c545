package calorie

// SourceNotFound marks the canonical sentinel result
const SourceNotFound = "not_found"

// Ingredient is one computed ingredient line of a result
type Ingredient struct {
	FdcID    int64   `json:"usda_fdc_id,omitempty"`
	Name     string  `json:"name"`
	WeightG  float64 `json:"weight_g"`
	Calories float64 `json:"calories"`
}

// CalorieResult is the outcome of one calorie computation. For every
// non-sentinel result TotalCalories equals the sum of ingredient calories
// and WeightG the sum of ingredient weights.
type CalorieResult struct {
	FoodName      string       `json:"food_name"`
	OriginalQuery string       `json:"original_query"`
	TotalCalories float64      `json:"total_calories"`
	WeightG       float64      `json:"weight_g"`
	Ingredients   []Ingredient `json:"ingredients"`
	Modifications []string     `json:"modifications"`
	Source        string       `json:"source"`
	Confidence    float64      `json:"confidence"`
	IsApproximate bool         `json:"is_approximate"`
	Country       string       `json:"country,omitempty"`
}

// IsNotFound reports whether the result is the not-found sentinel, the
// signal that the caller should ask for clarification
func (r *CalorieResult) IsNotFound() bool {
	return r.Source == SourceNotFound || r.TotalCalories == 0
}

// NotFoundResult builds the canonical not-found sentinel for a query
func NotFoundResult(query string) *CalorieResult {
	return &CalorieResult{
		FoodName:      query,
		OriginalQuery: query,
		TotalCalories: 0,
		WeightG:       0,
		Ingredients:   []Ingredient{},
		Modifications: []string{},
		Source:        SourceNotFound,
		Confidence:    0,
		IsApproximate: true,
	}
}
