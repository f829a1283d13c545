// Package data loads the reference corpora from their JSON exports.
package data

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"calorie-chat/internal/core/match"
	"calorie-chat/internal/pkg/common"
)

// LoadDishes reads the curated dish recipes export
func LoadDishes(path string) ([]match.DishRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dishes file: %w", err)
	}

	var dishes []match.DishRecord
	if err := json.Unmarshal(raw, &dishes); err != nil {
		// some exports wrap the list in a "dishes" or "all_dishes" key
		var wrapped struct {
			Dishes    []match.DishRecord `json:"dishes"`
			AllDishes []match.DishRecord `json:"all_dishes"`
		}
		if err2 := json.Unmarshal(raw, &wrapped); err2 != nil {
			return nil, fmt.Errorf("failed to parse dishes file: %w", err)
		}
		dishes = wrapped.Dishes
		if dishes == nil {
			dishes = wrapped.AllDishes
		}
	}

	valid := dishes[:0]
	for _, d := range dishes {
		if d.Name == "" {
			common.LogWarn("skipping dish record without a name", zap.Int64("dish_id", d.ID))
			continue
		}
		valid = append(valid, d)
	}

	common.LogInfo("loaded dish corpus", zap.String("path", path), zap.Int("count", len(valid)))
	return valid, nil
}

// usdaFood mirrors the USDA FoodData Central export shape. Nutrient fields
// vary between "nutrientName"/"value" and "name"/"amount" across releases.
type usdaFood struct {
	FdcID       int64  `json:"fdcId"`
	Description string `json:"description"`
	Nutrients   []struct {
		NutrientName string  `json:"nutrientName"`
		Name         string  `json:"name"`
		Value        float64 `json:"value"`
		Amount       float64 `json:"amount"`
		Nutrient     *struct {
			Name string `json:"name"`
		} `json:"nutrient"`
	} `json:"foodNutrients"`
}

// LoadFoundation reads a USDA Foundation Foods export
func LoadFoundation(path string) ([]match.IngredientRecord, error) {
	return loadUSDA(path, "FoundationFoods")
}

// LoadSRLegacy reads a USDA SR Legacy export
func LoadSRLegacy(path string) ([]match.IngredientRecord, error) {
	return loadUSDA(path, "SRLegacyFoods")
}

func loadUSDA(path, wrapperKey string) ([]match.IngredientRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read USDA file: %w", err)
	}

	var foods []usdaFood
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		inner, ok := wrapped[wrapperKey]
		if !ok {
			return nil, fmt.Errorf("USDA file %s missing %q key", path, wrapperKey)
		}
		if err := json.Unmarshal(inner, &foods); err != nil {
			return nil, fmt.Errorf("failed to parse USDA foods: %w", err)
		}
	} else if err := json.Unmarshal(raw, &foods); err != nil {
		return nil, fmt.Errorf("failed to parse USDA file: %w", err)
	}

	records := make([]match.IngredientRecord, 0, len(foods))
	skipped := 0
	for _, f := range foods {
		if f.Description == "" {
			skipped++
			continue
		}
		rec := match.IngredientRecord{
			FdcID:       f.FdcID,
			Description: f.Description,
			Nutrients:   make([]match.Nutrient, 0, len(f.Nutrients)),
		}
		for _, n := range f.Nutrients {
			name := n.NutrientName
			if name == "" {
				name = n.Name
			}
			if name == "" && n.Nutrient != nil {
				name = n.Nutrient.Name
			}
			value := n.Value
			if value == 0 {
				value = n.Amount
			}
			if name == "" {
				continue
			}
			rec.Nutrients = append(rec.Nutrients, match.Nutrient{Name: name, Value: value})
		}
		records = append(records, rec)
	}

	if skipped > 0 {
		common.LogWarn("skipped malformed USDA records", zap.String("path", path), zap.Int("count", skipped))
	}
	common.LogInfo("loaded USDA corpus", zap.String("path", path), zap.Int("count", len(records)))
	return records, nil
}
