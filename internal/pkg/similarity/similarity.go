// Package similarity provides the string-similarity capability used by the
// query normalizer (spelling correction) and the food matching engine (fuzzy
// last-resort stage). Scores are on a 0–100 scale.
package similarity

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"
)

// Scorer computes a normalized similarity ratio between two strings
type Scorer interface {
	// Ratio returns a 0–100 similarity score
	Ratio(a, b string) int
	// TokenSetRatio returns a 0–100 score that is insensitive to word order
	// and to words shared by both strings
	TokenSetRatio(a, b string) int
}

// EditDistance is the production Scorer, backed by Levenshtein distance
type EditDistance struct{}

// NewEditDistance creates the default scorer
func NewEditDistance() *EditDistance {
	return &EditDistance{}
}

// Ratio returns the normalized edit-distance similarity of a and b
func (e *EditDistance) Ratio(a, b string) int {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	return int(levenshtein.Similarity(a, b, nil) * 100)
}

// TokenSetRatio tokenizes both strings, separates the shared tokens from the
// remainders, and scores the most favorable pairing. Equivalent to the
// token-set matching of the usual fuzzy-matching libraries.
func (e *EditDistance) TokenSetRatio(a, b string) int {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var common, restA, restB []string
	for tok := range ta {
		if tb[tok] {
			common = append(common, tok)
		} else {
			restA = append(restA, tok)
		}
	}
	for tok := range tb {
		if !ta[tok] {
			restB = append(restB, tok)
		}
	}
	sort.Strings(common)
	sort.Strings(restA)
	sort.Strings(restB)

	base := strings.Join(common, " ")
	full1 := strings.TrimSpace(base + " " + strings.Join(restA, " "))
	full2 := strings.TrimSpace(base + " " + strings.Join(restB, " "))

	best := e.Ratio(base, full1)
	if s := e.Ratio(base, full2); s > best {
		best = s
	}
	if s := e.Ratio(full1, full2); s > best {
		best = s
	}
	return best
}

func tokenSet(s string) map[string]bool {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?()-")
		if f != "" {
			set[f] = true
		}
	}
	return set
}
