package calorie

import (
	"context"
	"fmt"
	"strings"

	"calorie-chat/internal/core/match"
	"calorie-chat/internal/core/missing"
	"calorie-chat/internal/core/nlp"
	"calorie-chat/internal/pkg/common"

	"go.uber.org/zap"
)

// defaults for ingredients added by a modification when no better data exists
const (
	defaultServingWeightG  = 100.0
	defaultAdditionWeightG = 30.0
	defaultAdditionKcal    = 50.0
	searchTopK             = 5
)

// Calculator composes, mutates and rescales ingredient sets. Each Calculate
// call is a self-contained computation over its inputs; the only shared
// mutable resource it touches is the missing-dish log.
type Calculator struct {
	search  *match.Engine
	missing *missing.Log
}

// NewCalculator creates the computation engine
func NewCalculator(search *match.Engine, missingLog *missing.Log) *Calculator {
	return &Calculator{
		search:  search,
		missing: missingLog,
	}
}

// Calculate resolves a parsed query into a calorie breakdown. last is the
// prior turn's result snapshot, used when the intent is a modification; it
// may be nil.
func (c *Calculator) Calculate(ctx context.Context, query nlp.ParsedQuery, country string, last *CalorieResult) *CalorieResult {
	if len(query.FoodItems) == 0 || strings.TrimSpace(query.FoodItems[0]) == "" {
		return NotFoundResult(query.OriginalText)
	}
	foodName := query.FoodItems[0]

	// modification of the previous dish: rebuild from the snapshot, never
	// mutate it in place
	if (query.Intent == nlp.IntentModifyRemove || query.Intent == nlp.IntentModifyAdd) && last != nil {
		if result, err := reconstruct(query, last, country); err == nil {
			return c.applyAll(result, query, country)
		} else {
			common.LogWarn("prior result unusable, degrading to fresh search",
				zap.String("food", foodName),
				zap.Error(err),
			)
		}
	}

	result := c.lookup(query, foodName, country)
	if result.Source == SourceNotFound {
		return result
	}
	return c.applyAll(result, query, country)
}

// lookup searches the catalog and computes the base result for the best
// candidate
func (c *Calculator) lookup(query nlp.ParsedQuery, foodName, country string) *CalorieResult {
	candidates := c.search.Search(foodName, country, searchTopK)
	if len(candidates) == 0 {
		common.LogInfo("no match found",
			zap.String("query", foodName),
			zap.String("country", country),
		)
		if c.missing != nil {
			c.missing.Record(foodName, country, "")
		}
		return NotFoundResult(foodName)
	}

	best := candidates[0]
	common.LogDebug("best match",
		zap.String("name", best.Entry.DisplayName),
		zap.String("source", string(best.Entry.Source)),
		zap.Float64("score", best.Score),
	)

	if best.Entry.Source == match.SourceDishes {
		return dishResult(best.Entry.Dish, query, best.Score)
	}
	return ingredientResult(best.Entry, query, best.Score)
}

// applyAll runs the modification, multiplier and explicit-weight stages in
// order and attaches the country
func (c *Calculator) applyAll(result *CalorieResult, query nlp.ParsedQuery, country string) *CalorieResult {
	if len(query.Modifications.Remove) > 0 || len(query.Modifications.Add) > 0 {
		result = c.applyModifications(result, query.Modifications)
	}
	if query.Quantities.Multiplier != 0 {
		result = applyMultiplier(result, query.Quantities.Multiplier)
	}
	if query.Quantities.WeightG != 0 {
		result = applyTargetWeight(result, query.Quantities.WeightG)
	}
	result.Country = country
	return result
}

// dishResult sums the itemized recipe; empty or zero-calorie recipes fall
// back to the dish-level aggregates
func dishResult(dish *match.DishRecord, query nlp.ParsedQuery, confidence float64) *CalorieResult {
	var ingredients []Ingredient
	var totalCalories, totalWeight float64

	for _, raw := range dish.Ingredients {
		ingredients = append(ingredients, Ingredient{
			FdcID:    raw.FdcID,
			Name:     raw.Name,
			WeightG:  raw.WeightG,
			Calories: raw.Calories,
		})
		totalCalories += raw.Calories
		totalWeight += raw.WeightG
	}

	// no usable recipe: fall back to the dish-level aggregates, kept as a
	// single line so totals still equal the ingredient sums
	if len(ingredients) == 0 || totalCalories == 0 {
		totalCalories = dish.Calories
		totalWeight = dish.WeightG
		if totalWeight == 0 {
			totalWeight = defaultServingWeightG
		}
		ingredients = []Ingredient{{Name: dish.Name, WeightG: totalWeight, Calories: totalCalories}}
	}

	return &CalorieResult{
		FoodName:      dish.Name,
		OriginalQuery: query.OriginalText,
		TotalCalories: totalCalories,
		WeightG:       totalWeight,
		Ingredients:   ingredients,
		Modifications: []string{},
		Source:        string(match.SourceDishes),
		Confidence:    confidence,
	}
}

// ingredientResult scales the per-100g energy value to the requested or
// default serving weight
func ingredientResult(entry *match.Entry, query nlp.ParsedQuery, confidence float64) *CalorieResult {
	record := entry.Ingredient
	per100g := record.EnergyPer100g()

	weight := query.Quantities.WeightG
	if weight == 0 {
		weight = defaultServingWeightG
	}
	totalCalories := per100g * weight / 100

	ingredient := Ingredient{
		FdcID:    record.FdcID,
		Name:     record.Description,
		WeightG:  weight,
		Calories: totalCalories,
	}

	return &CalorieResult{
		FoodName:      record.Description,
		OriginalQuery: query.OriginalText,
		TotalCalories: totalCalories,
		WeightG:       weight,
		Ingredients:   []Ingredient{ingredient},
		Modifications: []string{},
		Source:        string(entry.Source),
		Confidence:    confidence,
	}
}

// reconstruct rebuilds a fresh result from the prior turn's snapshot
func reconstruct(query nlp.ParsedQuery, last *CalorieResult, country string) (*CalorieResult, error) {
	if last.FoodName == "" {
		return nil, fmt.Errorf("prior result has no food name")
	}
	if len(last.Ingredients) == 0 && last.TotalCalories == 0 {
		return nil, fmt.Errorf("prior result has no ingredients or totals")
	}

	ingredients := make([]Ingredient, len(last.Ingredients))
	copy(ingredients, last.Ingredients)
	modifications := make([]string, len(last.Modifications))
	copy(modifications, last.Modifications)

	return &CalorieResult{
		FoodName:      last.FoodName,
		OriginalQuery: query.OriginalText,
		TotalCalories: last.TotalCalories,
		WeightG:       last.WeightG,
		Ingredients:   ingredients,
		Modifications: modifications,
		Source:        last.Source,
		Confidence:    last.Confidence,
		IsApproximate: last.IsApproximate,
		Country:       country,
	}, nil
}

// applyModifications removes and adds ingredients, then recomputes the
// totals from the resulting list. Each removal term drops at most one
// ingredient; every change leaves an audit note.
func (c *Calculator) applyModifications(result *CalorieResult, mods nlp.Modifications) *CalorieResult {
	ingredients := make([]Ingredient, len(result.Ingredients))
	copy(ingredients, result.Ingredients)
	notes := make([]string, len(result.Modifications))
	copy(notes, result.Modifications)

	for _, term := range mods.Remove {
		termLower := strings.ToLower(term)
		removedAt := -1

		for i, ing := range ingredients {
			nameLower := strings.ToLower(ing.Name)
			if strings.Contains(nameLower, termLower) || strings.Contains(termLower, nameLower) {
				removedAt = i
				break
			}
		}
		if removedAt < 0 {
			// token-level containment as a second chance
			for i, ing := range ingredients {
				for _, word := range strings.Fields(strings.ToLower(ing.Name)) {
					word = strings.Trim(word, ".,()")
					if strings.Contains(word, termLower) || strings.Contains(termLower, word) {
						removedAt = i
						break
					}
				}
				if removedAt >= 0 {
					break
				}
			}
		}
		if removedAt >= 0 {
			notes = append(notes, fmt.Sprintf("Removed: %s", ingredients[removedAt].Name))
			ingredients = append(ingredients[:removedAt], ingredients[removedAt+1:]...)
		}
	}

	for _, term := range mods.Add {
		added := c.resolveAddition(term)
		ingredients = append(ingredients, added.ingredient)
		notes = append(notes, added.note)
	}

	// never trust stale totals after a mutation
	var totalCalories, totalWeight float64
	for _, ing := range ingredients {
		totalCalories += ing.Calories
		totalWeight += ing.WeightG
	}

	out := *result
	out.Ingredients = ingredients
	out.Modifications = notes
	out.TotalCalories = totalCalories
	out.WeightG = totalWeight
	return &out
}

type addition struct {
	ingredient Ingredient
	note       string
}

// resolveAddition looks the added term up without a country filter, falling
// back to an estimated 30 g / 50 kcal entry when nothing matches
func (c *Calculator) resolveAddition(term string) addition {
	candidates := c.search.Search(term, "", 1)
	if len(candidates) == 0 {
		return addition{
			ingredient: Ingredient{Name: title(term), WeightG: defaultAdditionWeightG, Calories: defaultAdditionKcal},
			note:       fmt.Sprintf("Added: %s (estimated)", term),
		}
	}

	best := candidates[0].Entry
	var weight, calories float64
	var fdcID int64

	if best.Source == match.SourceDishes {
		calories = best.Dish.Calories
		weight = best.Dish.WeightG
		if calories == 0 {
			calories = defaultAdditionKcal
		}
		if weight == 0 {
			weight = defaultAdditionWeightG
		}
	} else {
		fdcID = best.Ingredient.FdcID
		weight = defaultAdditionWeightG
		calories = best.Ingredient.EnergyPer100g() * weight / 100
	}

	return addition{
		ingredient: Ingredient{FdcID: fdcID, Name: title(term), WeightG: weight, Calories: calories},
		note:       fmt.Sprintf("Added: %s", term),
	}
}

// applyMultiplier scales every ingredient and renames the dish with a
// portion descriptor
func applyMultiplier(result *CalorieResult, multiplier float64) *CalorieResult {
	ingredients := make([]Ingredient, len(result.Ingredients))
	for i, ing := range result.Ingredients {
		ing.WeightG *= multiplier
		ing.Calories *= multiplier
		ingredients[i] = ing
	}

	var label string
	switch multiplier {
	case 2:
		label = "double"
	case 0.5:
		label = "half"
	default:
		label = fmt.Sprintf("%gx", multiplier)
	}

	out := *result
	out.FoodName = fmt.Sprintf("%s (%s portion)", result.FoodName, label)
	out.TotalCalories = result.TotalCalories * multiplier
	out.WeightG = result.WeightG * multiplier
	out.Ingredients = ingredients
	out.Modifications = append(append([]string{}, result.Modifications...), fmt.Sprintf("Quantity: %s", label))
	return &out
}

// applyTargetWeight rescales the whole result to an explicit gram amount.
// A zero current weight makes the ratio undefined; the result is returned
// unchanged.
func applyTargetWeight(result *CalorieResult, targetWeight float64) *CalorieResult {
	if result.WeightG == 0 {
		return result
	}
	ratio := targetWeight / result.WeightG

	ingredients := make([]Ingredient, len(result.Ingredients))
	for i, ing := range result.Ingredients {
		ing.WeightG *= ratio
		ing.Calories *= ratio
		ingredients[i] = ing
	}

	out := *result
	out.FoodName = fmt.Sprintf("%s (%dg)", result.FoodName, int(targetWeight))
	out.TotalCalories = result.TotalCalories * ratio
	out.WeightG = targetWeight
	out.Ingredients = ingredients
	out.Modifications = append(append([]string{}, result.Modifications...), fmt.Sprintf("Adjusted to %dg", int(targetWeight)))
	out.IsApproximate = true
	return &out
}

// title uppercases the first letter of each word
func title(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
