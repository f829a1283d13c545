package match

import (
	"sort"
	"strings"

	"calorie-chat/internal/pkg/common"
	"calorie-chat/internal/pkg/similarity"

	"go.uber.org/zap"
)

// fuzzy acceptance thresholds on the 0–100 scale. Approximate matching is
// always the last resort, never the first choice.
const (
	dishFuzzyThreshold       = 70
	ingredientFuzzyThreshold = 60
	countryMissPenalty       = 0.9
	wordMatchFloor           = 0.75
)

// Engine answers ranked food lookups against the read-only catalog indices.
// Indices are built once; any number of searches may run concurrently.
type Engine struct {
	entries     []*Entry
	dishes      []*Entry
	ingredients []*Entry
	scorer      similarity.Scorer
}

// NewEngine builds the dish index and the unified ingredient index from the
// loader-supplied records. Records without a name are skipped.
func NewEngine(dishes []DishRecord, foundation, srLegacy []IngredientRecord, scorer similarity.Scorer) *Engine {
	e := &Engine{scorer: scorer}

	for i := range dishes {
		d := &dishes[i]
		if strings.TrimSpace(d.Name) == "" {
			common.LogWarn("skipping dish record without a name", zap.Int64("dish_id", d.ID))
			continue
		}
		e.add(&Entry{
			NormalizedName: strings.ToLower(strings.TrimSpace(d.Name)),
			DisplayName:    d.Name,
			Source:         SourceDishes,
			Country:        strings.ToLower(strings.TrimSpace(d.Country)),
			Dish:           d,
		})
	}
	e.addIngredients(foundation, SourceFoundation)
	e.addIngredients(srLegacy, SourceSRLegacy)

	common.LogInfo("search index built",
		zap.Int("total", len(e.entries)),
		zap.Int("dishes", len(e.dishes)),
		zap.Int("ingredients", len(e.ingredients)),
	)
	return e
}

func (e *Engine) addIngredients(records []IngredientRecord, source Source) {
	for i := range records {
		r := &records[i]
		if strings.TrimSpace(r.Description) == "" {
			common.LogWarn("skipping ingredient record without a description",
				zap.Int64("fdc_id", r.FdcID),
				zap.String("source", string(source)),
			)
			continue
		}
		e.add(&Entry{
			NormalizedName: strings.ToLower(strings.TrimSpace(r.Description)),
			DisplayName:    r.Description,
			Source:         source,
			Ingredient:     r,
		})
	}
}

func (e *Engine) add(entry *Entry) {
	e.entries = append(e.entries, entry)
	if entry.Source == SourceDishes {
		e.dishes = append(e.dishes, entry)
	} else {
		e.ingredients = append(e.ingredients, entry)
	}
}

// DishCountByCountry returns how many dishes each country contributes
func (e *Engine) DishCountByCountry() map[string]int {
	counts := make(map[string]int)
	for _, d := range e.dishes {
		counts[d.Country]++
	}
	return counts
}

// Search returns up to topK candidates for query, ranked by score. country
// filters the dish index only; the ingredient index is country-free.
func (e *Engine) Search(query, country string, topK int) []Candidate {
	queryLower := strings.ToLower(strings.TrimSpace(query))
	countryLower := strings.ToLower(strings.TrimSpace(country))
	if queryLower == "" {
		return nil
	}
	if topK <= 0 {
		topK = 5
	}

	isSingleWord := len(strings.Fields(queryLower)) == 1

	// stage 1: exact match. An exact ingredient hit wins outright; an exact
	// dish hit is held because single-word queries stay ambiguous.
	var exactDish *Entry
	for _, entry := range e.entries {
		if queryLower != entry.NormalizedName {
			continue
		}
		if entry.Source == SourceDishes {
			if exactDish == nil && (countryLower == "" || entry.Country == countryLower) {
				exactDish = entry
			}
			continue
		}
		return []Candidate{{Entry: entry, Score: 1.0}}
	}
	if exactDish != nil && !isSingleWord {
		return []Candidate{{Entry: exactDish, Score: 1.0}}
	}

	// stage 2: single-word queries try the ingredient index first
	if isSingleWord {
		wordMatches := e.scoreIngredientWords(queryLower, true)
		if len(wordMatches) > 0 && wordMatches[0].Score >= wordMatchFloor {
			return truncate(wordMatches, topK)
		}
		if len(wordMatches) == 0 {
			fuzzy := e.fuzzyExtract(queryLower, e.ingredients, ingredientFuzzyThreshold, 5)
			if len(fuzzy) > 0 {
				return truncate(fuzzy, topK)
			}
		}
	}

	// stage 3: dish search in the requested country
	var results []Candidate
	if countryLower != "" {
		var countryDishes []*Entry
		for _, d := range e.dishes {
			if d.Country == countryLower {
				countryDishes = append(countryDishes, d)
			}
		}
		results = append(results, e.fuzzyExtract(queryLower, countryDishes, dishFuzzyThreshold, 3)...)
	}

	// broaden to all dishes when the home country has no strong match;
	// foreign matches carry a small penalty
	if len(results) == 0 || results[0].Score < 0.8 {
		for _, c := range e.fuzzyExtract(queryLower, e.dishes, dishFuzzyThreshold, 3) {
			if c.Entry.Country != countryLower {
				c.Score *= countryMissPenalty
			}
			results = append(results, c)
		}
	}

	// stage 4: ingredient search for multi-word queries and dish misses
	wordMatches := e.scoreIngredientWords(queryLower, isSingleWord)
	if len(wordMatches) > 0 {
		results = append(results, truncate(wordMatches, 5)...)
	} else {
		results = append(results, e.fuzzyExtract(queryLower, e.ingredients, ingredientFuzzyThreshold, 3)...)
	}

	// merge: rank, then keep the first (highest) entry per display name
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	seen := make(map[string]bool, len(results))
	unique := results[:0]
	for _, c := range results {
		key := strings.ToLower(c.Entry.DisplayName)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, c)
	}

	if len(unique) > 0 {
		common.LogDebug("search completed",
			zap.String("query", queryLower),
			zap.String("top", unique[0].Entry.DisplayName),
			zap.Float64("score", unique[0].Score),
		)
	}
	return truncate(unique, topK)
}

// scoreIngredientWords applies the token-level scoring rules over the
// ingredient index. Multi-word queries additionally match when every query
// token appears among the entry's tokens.
func (e *Engine) scoreIngredientWords(queryLower string, isSingleWord bool) []Candidate {
	queryTokens := strings.Fields(queryLower)
	var matches []Candidate

	for _, entry := range e.ingredients {
		tokens := nameTokens(entry.DisplayName)
		if len(tokens) == 0 {
			continue
		}

		base := 0.0
		firstWordMatch := false
		switch {
		case !isSingleWord && queryLower == entry.NormalizedName:
			base = 1.0
		case tokens[0] == queryLower || isPluralOf(queryLower, tokens[0]):
			base = 0.95
			firstWordMatch = true
		case containsToken(tokens, queryLower):
			base = 0.85
		case isSingleWord && len(queryLower) >= 4 && strings.HasPrefix(tokens[0], queryLower):
			base = 0.75
		case !isSingleWord && allTokensContained(queryTokens, tokens):
			base = 0.90
		}
		if base == 0 {
			continue
		}

		// shorter names are more specific; penalize long descriptions a bit
		penalty := float64(len(tokens)) * 0.01
		if penalty > 0.05 {
			penalty = 0.05
		}
		if firstWordMatch && len(tokens) <= 3 {
			penalty *= 0.5
		}
		matches = append(matches, Candidate{Entry: entry, Score: base - penalty})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	return matches
}

// fuzzyExtract scores query against every entry name and keeps those at or
// above threshold, best first
func (e *Engine) fuzzyExtract(queryLower string, entries []*Entry, threshold, limit int) []Candidate {
	var out []Candidate
	for _, entry := range entries {
		score := e.scorer.TokenSetRatio(queryLower, entry.NormalizedName)
		if score >= threshold {
			out = append(out, Candidate{Entry: entry, Score: float64(score) / 100.0})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return truncate(out, limit)
}

func truncate(c []Candidate, n int) []Candidate {
	if len(c) > n {
		return c[:n]
	}
	return c
}

// nameTokens splits a display name into lowercase words, treating commas,
// hyphens and parentheses as separators
func nameTokens(name string) []string {
	replacer := strings.NewReplacer(",", " ", "-", " ", "(", " ", ")", " ")
	return strings.Fields(strings.ToLower(replacer.Replace(name)))
}

func containsToken(tokens []string, word string) bool {
	for _, t := range tokens {
		if t == word {
			return true
		}
	}
	return false
}

func allTokensContained(queryTokens, nameTokens []string) bool {
	for _, q := range queryTokens {
		if !containsToken(nameTokens, q) {
			return false
		}
	}
	return len(queryTokens) > 0
}

// isPluralOf reports whether plural is a common plural form of singular
// (apple→apples, tomato→tomatoes, berry→berries)
func isPluralOf(singular, plural string) bool {
	if plural == singular+"s" || plural == singular+"es" {
		return true
	}
	if len(singular) >= 2 && strings.HasSuffix(singular, "y") && plural == singular[:len(singular)-1]+"ies" {
		return true
	}
	return false
}

func isEnergyNutrient(name string) bool {
	return strings.Contains(name, "Energy") || strings.Contains(strings.ToLower(name), "calorie")
}
