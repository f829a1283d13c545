package calorie_test

import (
	"context"
	"path/filepath"
	"testing"

	"calorie-chat/internal/core/calorie"
	"calorie-chat/internal/core/match"
	"calorie-chat/internal/core/missing"
	"calorie-chat/internal/core/nlp"
	"calorie-chat/internal/pkg/similarity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCalculator(t *testing.T) *calorie.Calculator {
	t.Helper()

	dishes := []match.DishRecord{
		{
			ID: 1, Name: "Shawarma", Country: "lebanon",
			Ingredients: []match.RawIngredient{
				{Name: "chicken", WeightG: 150, Calories: 250},
				{Name: "bread", WeightG: 100, Calories: 270},
				{Name: "french fries", WeightG: 100, Calories: 300},
			},
		},
		{ID: 2, Name: "Kushari", Country: "egypt", WeightG: 400, Calories: 600},
	}
	foundation := []match.IngredientRecord{
		{FdcID: 100, Description: "Apples, raw", Nutrients: []match.Nutrient{{Name: "Energy", Value: 52}}},
		{FdcID: 101, Description: "Chicken, breast, raw", Nutrients: []match.Nutrient{{Name: "Energy", Value: 165}}},
		{FdcID: 102, Description: "Tahini, sesame butter", Nutrients: []match.Nutrient{{Name: "Energy", Value: 595}}},
	}

	engine := match.NewEngine(dishes, foundation, nil, similarity.NewEditDistance())
	log := missing.NewLog(filepath.Join(t.TempDir(), "missing.json"))
	return calorie.NewCalculator(engine, log)
}

func query(food string, opts ...func(*nlp.ParsedQuery)) nlp.ParsedQuery {
	q := nlp.ParsedQuery{
		Intent:        nlp.IntentQueryFood,
		FoodItems:     []string{food},
		Modifications: nlp.Modifications{Remove: []string{}, Add: []string{}},
		OriginalText:  food,
	}
	for _, opt := range opts {
		opt(&q)
	}
	return q
}

// assertInvariant checks that totals equal the ingredient sums
func assertInvariant(t *testing.T, r *calorie.CalorieResult) {
	t.Helper()
	var cal, weight float64
	for _, ing := range r.Ingredients {
		cal += ing.Calories
		weight += ing.WeightG
	}
	assert.InDelta(t, cal, r.TotalCalories, 0.001)
	assert.InDelta(t, weight, r.WeightG, 0.001)
}

func TestCalculate_DishRecipeSum(t *testing.T) {
	c := newCalculator(t)

	r := c.Calculate(context.Background(), query("shawarma"), "lebanon", nil)

	require.False(t, r.IsNotFound())
	assert.Equal(t, "Shawarma", r.FoodName)
	assert.Equal(t, 820.0, r.TotalCalories)
	assert.Equal(t, 350.0, r.WeightG)
	assert.Len(t, r.Ingredients, 3)
	assert.Equal(t, "lebanon", r.Country)
	assertInvariant(t, r)
}

func TestCalculate_DishAggregateFallback(t *testing.T) {
	c := newCalculator(t)

	// kushari has no itemized recipe, only dish-level totals
	r := c.Calculate(context.Background(), query("kushari"), "egypt", nil)

	require.False(t, r.IsNotFound())
	assert.Equal(t, 600.0, r.TotalCalories)
	assert.Equal(t, 400.0, r.WeightG)
	require.Len(t, r.Ingredients, 1)
	assertInvariant(t, r)
}

func TestCalculate_IngredientDefaultServing(t *testing.T) {
	c := newCalculator(t)

	r := c.Calculate(context.Background(), query("apple"), "", nil)

	require.False(t, r.IsNotFound())
	assert.Equal(t, "Apples, raw", r.FoodName)
	assert.Equal(t, 100.0, r.WeightG)
	assert.Equal(t, 52.0, r.TotalCalories)
	assertInvariant(t, r)
}

func TestCalculate_IngredientExplicitWeight(t *testing.T) {
	c := newCalculator(t)

	q := query("chicken", func(q *nlp.ParsedQuery) { q.Quantities.WeightG = 200 })
	r := c.Calculate(context.Background(), q, "", nil)

	require.False(t, r.IsNotFound())
	assert.InDelta(t, 330.0, r.TotalCalories, 0.001)
	assert.Equal(t, 200.0, r.WeightG)
	assert.True(t, r.IsApproximate)
	assert.Contains(t, r.Modifications, "Adjusted to 200g")
	assertInvariant(t, r)
}

func TestCalculate_RemoveIngredient(t *testing.T) {
	c := newCalculator(t)

	q := query("shawarma", func(q *nlp.ParsedQuery) {
		q.Intent = nlp.IntentModifyRemove
		q.Modifications.Remove = []string{"fries"}
	})
	r := c.Calculate(context.Background(), q, "lebanon", nil)

	require.False(t, r.IsNotFound())
	assert.Equal(t, 520.0, r.TotalCalories)
	assert.Equal(t, 250.0, r.WeightG)
	assert.Len(t, r.Ingredients, 2)
	assert.Contains(t, r.Modifications, "Removed: french fries")
	assertInvariant(t, r)
}

func TestCalculate_RemoveUnknownIngredientIsNoOp(t *testing.T) {
	c := newCalculator(t)

	q := query("shawarma", func(q *nlp.ParsedQuery) {
		q.Intent = nlp.IntentModifyRemove
		q.Modifications.Remove = []string{"pineapple"}
	})
	r := c.Calculate(context.Background(), q, "lebanon", nil)

	assert.Equal(t, 820.0, r.TotalCalories)
	assert.Len(t, r.Ingredients, 3)
	assert.Empty(t, r.Modifications)
}

func TestCalculate_AddKnownIngredient(t *testing.T) {
	c := newCalculator(t)

	q := query("shawarma", func(q *nlp.ParsedQuery) {
		q.Intent = nlp.IntentModifyAdd
		q.Modifications.Add = []string{"tahini"}
	})
	r := c.Calculate(context.Background(), q, "lebanon", nil)

	require.Len(t, r.Ingredients, 4)
	assert.Contains(t, r.Modifications, "Added: tahini")
	// 30g of a 595 kcal/100g ingredient
	added := r.Ingredients[3]
	assert.Equal(t, 30.0, added.WeightG)
	assert.InDelta(t, 178.5, added.Calories, 0.001)
	assertInvariant(t, r)
}

func TestCalculate_AddUnknownIngredientUsesDefaults(t *testing.T) {
	c := newCalculator(t)

	q := query("shawarma", func(q *nlp.ParsedQuery) {
		q.Intent = nlp.IntentModifyAdd
		q.Modifications.Add = []string{"zzzq"}
	})
	r := c.Calculate(context.Background(), q, "lebanon", nil)

	require.Len(t, r.Ingredients, 4)
	assert.Contains(t, r.Modifications, "Added: zzzq (estimated)")
	added := r.Ingredients[3]
	assert.Equal(t, 30.0, added.WeightG)
	assert.Equal(t, 50.0, added.Calories)
	assertInvariant(t, r)
}

func TestCalculate_DoublePortion(t *testing.T) {
	c := newCalculator(t)

	q := query("shawarma", func(q *nlp.ParsedQuery) { q.Quantities.Multiplier = 2 })
	r := c.Calculate(context.Background(), q, "lebanon", nil)

	assert.Equal(t, "Shawarma (double portion)", r.FoodName)
	assert.Equal(t, 1640.0, r.TotalCalories)
	assert.Equal(t, 700.0, r.WeightG)
	assert.Contains(t, r.Modifications, "Quantity: double")
	assertInvariant(t, r)
}

func TestCalculate_TargetWeightRescale(t *testing.T) {
	c := newCalculator(t)

	q := query("shawarma", func(q *nlp.ParsedQuery) { q.Quantities.WeightG = 175 })
	r := c.Calculate(context.Background(), q, "lebanon", nil)

	assert.Equal(t, 175.0, r.WeightG)
	assert.InDelta(t, 410.0, r.TotalCalories, 0.001)
	assert.True(t, r.IsApproximate)
	assert.Contains(t, r.Modifications, "Adjusted to 175g")
	assertInvariant(t, r)
}

func TestCalculate_NotFoundSentinel(t *testing.T) {
	c := newCalculator(t)

	r := c.Calculate(context.Background(), query("xylophone stew"), "", nil)

	assert.True(t, r.IsNotFound())
	assert.Equal(t, calorie.SourceNotFound, r.Source)
	assert.Equal(t, 0.0, r.TotalCalories)
	assert.Equal(t, 0.0, r.WeightG)
	assert.Empty(t, r.Ingredients)
	assert.Equal(t, 0.0, r.Confidence)
	assert.True(t, r.IsApproximate)
}

func TestCalculate_EmptyFoodIsNotFound(t *testing.T) {
	c := newCalculator(t)

	q := nlp.ParsedQuery{Intent: nlp.IntentQueryFood, FoodItems: []string{" "}, OriginalText: "?"}
	r := c.Calculate(context.Background(), q, "", nil)

	assert.True(t, r.IsNotFound())
}

func TestCalculate_ModifyPriorResultLeavesSnapshotIntact(t *testing.T) {
	c := newCalculator(t)

	last := c.Calculate(context.Background(), query("shawarma"), "lebanon", nil)
	require.Equal(t, 820.0, last.TotalCalories)

	q := query("shawarma", func(q *nlp.ParsedQuery) {
		q.Intent = nlp.IntentModifyRemove
		q.Modifications.Remove = []string{"bread"}
	})
	r := c.Calculate(context.Background(), q, "lebanon", last)

	assert.Equal(t, 550.0, r.TotalCalories)
	assert.Len(t, r.Ingredients, 2)
	assert.Contains(t, r.Modifications, "Removed: bread")
	assertInvariant(t, r)

	// the prior snapshot must be untouched
	assert.Equal(t, 820.0, last.TotalCalories)
	assert.Len(t, last.Ingredients, 3)
	assert.Empty(t, last.Modifications)
}

func TestCalculate_StackedModifications(t *testing.T) {
	c := newCalculator(t)

	last := c.Calculate(context.Background(), query("shawarma"), "lebanon", nil)

	first := query("shawarma", func(q *nlp.ParsedQuery) {
		q.Intent = nlp.IntentModifyRemove
		q.Modifications.Remove = []string{"fries"}
	})
	r1 := c.Calculate(context.Background(), first, "lebanon", last)
	require.Equal(t, 520.0, r1.TotalCalories)

	second := query("shawarma", func(q *nlp.ParsedQuery) {
		q.Intent = nlp.IntentModifyRemove
		q.Modifications.Remove = []string{"bread"}
	})
	r2 := c.Calculate(context.Background(), second, "lebanon", r1)

	assert.Equal(t, 250.0, r2.TotalCalories)
	assert.Len(t, r2.Ingredients, 1)
	assert.Contains(t, r2.Modifications, "Removed: french fries")
	assert.Contains(t, r2.Modifications, "Removed: bread")
	assertInvariant(t, r2)
}
