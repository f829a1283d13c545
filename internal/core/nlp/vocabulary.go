package nlp

import "strings"

// VocabEntry maps a canonical food name to its known misspellings
type VocabEntry struct {
	Canonical string
	Variants  []string
}

// Vocabulary is the static canonical-name catalog used for spelling
// correction. Iteration order is part of the correction contract: the first
// accepted entry wins.
type Vocabulary struct {
	entries []VocabEntry
}

// NewVocabulary builds a catalog from the given entries
func NewVocabulary(entries []VocabEntry) *Vocabulary {
	return &Vocabulary{entries: entries}
}

// DefaultVocabulary returns the built-in catalog of Arabic dish and
// ingredient names with their common Latin-script spellings.
func DefaultVocabulary() *Vocabulary {
	return NewVocabulary([]VocabEntry{
		{Canonical: "shawarma", Variants: []string{"shawerma", "shwarma", "chawarma", "shaurma"}},
		{Canonical: "hummus", Variants: []string{"hommos", "houmous", "hommus", "humus"}},
		{Canonical: "falafel", Variants: []string{"felafel", "falafil", "flafel"}},
		{Canonical: "tabbouleh", Variants: []string{"tabouli", "tabbouli", "taboule", "tabouleh"}},
		{Canonical: "kibbeh", Variants: []string{"kibbe", "kebbeh", "kubbeh", "kubba"}},
		{Canonical: "fattoush", Variants: []string{"fatoush", "fattouche", "fatouche"}},
		{Canonical: "kushari", Variants: []string{"koshari", "koshary", "kosheri", "kushary"}},
		{Canonical: "mansaf", Variants: []string{"mansef", "mensaf"}},
		{Canonical: "kabsa", Variants: []string{"kabseh", "kabsah", "kapsa"}},
		{Canonical: "molokhia", Variants: []string{"mulukhiyah", "molokheya", "mloukhieh", "molohia"}},
		{Canonical: "maqluba", Variants: []string{"maqlooba", "makloubeh", "maqlouba"}},
		{Canonical: "shakshuka", Variants: []string{"shakshouka", "chakchouka", "shakshooka"}},
		{Canonical: "manakish", Variants: []string{"manaeesh", "manakeesh", "manousheh"}},
		{Canonical: "baklava", Variants: []string{"baklawa", "baqlawa"}},
		{Canonical: "freekeh", Variants: []string{"freekah", "frikeh", "farik"}},
		{Canonical: "tahini", Variants: []string{"tahina", "tahineh", "thini"}},
		{Canonical: "labneh", Variants: []string{"labaneh", "lebneh", "labne"}},
		{Canonical: "mujadara", Variants: []string{"mujaddara", "moujadara", "mjadra"}},
		{Canonical: "fatteh", Variants: []string{"fattah", "fetteh"}},
		{Canonical: "kofta", Variants: []string{"kufta", "kefta", "kafta"}},
	})
}

// Entries exposes the catalog in iteration order
func (v *Vocabulary) Entries() []VocabEntry {
	return v.entries
}

// Contains reports whether term exactly equals a canonical name or one of
// its known variants. Used by the extractor's confidence score.
func (v *Vocabulary) Contains(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	for _, e := range v.entries {
		if term == e.Canonical {
			return true
		}
		for _, variant := range e.Variants {
			if term == variant {
				return true
			}
		}
	}
	return false
}
