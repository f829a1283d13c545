package nlp

import (
	"context"
	"regexp"
	"strings"
	"time"

	"calorie-chat/internal/pkg/common"
	"calorie-chat/internal/pkg/similarity"

	"go.uber.org/zap"
)

// Translator is the external Arabic→English translation collaborator.
// Failures are never fatal: the normalizer falls back to the raw text.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// spelling-correction thresholds on the 0–100 similarity scale
const (
	canonicalThreshold = 80
	variantThreshold   = 90
)

var (
	arabicScriptRe = regexp.MustCompile(`[\x{0600}-\x{06FF}]`)
	latinLetterRe  = regexp.MustCompile(`[a-zA-Z]`)
	francoDigitRe  = regexp.MustCompile(`[2356789]`)
	measureTokenRe = regexp.MustCompile(`^\d+(\.\d+)?(g|kg|grams?|kilograms?)$`)
	tashkeelRe     = regexp.MustCompile(`[\x{064B}-\x{0652}]`)
	alefVariantsRe = regexp.MustCompile(`[إأآا]`)
)

// francoDigits maps Franco-Arabic digit surrogates to their most common
// phonetic Latin rendering. 8 and 9 vary between transliteration
// conventions; ghayn and qaf are the renderings used here.
var francoDigits = []struct{ digit, letters string }{
	{"2", "a"},
	{"3", "a"},
	{"5", "kh"},
	{"6", "t"},
	{"7", "h"},
	{"8", "gh"},
	{"9", "q"},
}

// Normalizer turns raw multilingual text into lowercase, spelling-corrected
// English suitable for matching.
type Normalizer struct {
	translator Translator
	vocab      *Vocabulary
	scorer     similarity.Scorer
}

// NewNormalizer creates a normalizer. translator may be nil for offline use.
func NewNormalizer(translator Translator, vocab *Vocabulary, scorer similarity.Scorer) *Normalizer {
	return &Normalizer{
		translator: translator,
		vocab:      vocab,
		scorer:     scorer,
	}
}

// HasArabicScript reports whether text contains Arabic-block characters
func HasArabicScript(text string) bool {
	return arabicScriptRe.MatchString(text)
}

// IsFrancoArabic reports whether text looks like Arabic written in Latin
// letters with digit surrogates: at least one token mixing Latin letters
// with a digit from the surrogate set. Weight tokens like "200g" are plain
// measurements, not Franco markers.
func IsFrancoArabic(text string) bool {
	for _, token := range strings.Fields(text) {
		if isFrancoToken(token) {
			return true
		}
	}
	return false
}

func isFrancoToken(token string) bool {
	token = strings.ToLower(strings.Trim(token, ".,!?;:"))
	if !latinLetterRe.MatchString(token) || !francoDigitRe.MatchString(token) {
		return false
	}
	return !measureTokenRe.MatchString(token)
}

// DetectLanguage classifies text as arabic, franco or english
func DetectLanguage(text string) string {
	if HasArabicScript(text) {
		return "arabic"
	}
	if IsFrancoArabic(text) {
		return "franco"
	}
	return "english"
}

// Normalize produces the lowercase, whitespace-collapsed normalized form of
// text along with the detected language. Latin-script and Franco text are
// never sent to translation: translating valid English or transliterated
// words would corrupt them.
func (n *Normalizer) Normalize(ctx context.Context, text string) (string, string) {
	original := strings.TrimSpace(text)
	language := DetectLanguage(original)
	result := original

	if language == "arabic" {
		result = normalizeArabicLetters(result)
		if n.translator != nil {
			start := time.Now()
			translated, err := n.translator.Translate(ctx, result)
			common.LogCollaboratorCall("translator", time.Since(start), err)
			if err == nil && translated != "" {
				common.LogDebug("translated arabic text",
					zap.String("from", result),
					zap.String("to", translated),
				)
				result = translated
			}
		}
	}

	result = strings.ToLower(result)

	// digit substitution keys off the original text, independent of whether
	// translation changed the string. Only tokens that mix letters with
	// surrogate digits are rewritten, so weights like "200g" pass through.
	if language == "franco" {
		tokens := strings.Fields(result)
		for i, token := range tokens {
			if !isFrancoToken(token) {
				continue
			}
			for _, sub := range francoDigits {
				token = strings.ReplaceAll(token, sub.digit, sub.letters)
			}
			tokens[i] = token
		}
		result = strings.Join(tokens, " ")
	}

	result = strings.Join(strings.Fields(result), " ")
	result = n.correctSpelling(result)

	return result, language
}

// normalizeArabicLetters strips diacritics and folds letter variants before
// translation (tashkeel, alef forms, taa marbuta, alef maqsura)
func normalizeArabicLetters(text string) string {
	text = tashkeelRe.ReplaceAllString(text, "")
	text = alefVariantsRe.ReplaceAllString(text, "ا")
	text = strings.ReplaceAll(text, "ة", "ه")
	text = strings.ReplaceAll(text, "ى", "ي")
	return text
}

// correctSpelling maps each token to a canonical catalog name when the token
// is an exact or near match. Checks run in fixed catalog order per token:
// exact canonical, exact variant, fuzzy canonical (80), fuzzy variant (90).
// The first accepted match wins; unmatched tokens pass through unchanged.
func (n *Normalizer) correctSpelling(text string) string {
	if n.vocab == nil {
		return text
	}

	tokens := strings.Fields(text)
	for i, token := range tokens {
		tokens[i] = n.correctToken(token)
	}
	return strings.Join(tokens, " ")
}

func (n *Normalizer) correctToken(token string) string {
	for _, entry := range n.vocab.Entries() {
		if token == entry.Canonical {
			return entry.Canonical
		}
		for _, variant := range entry.Variants {
			if token == variant {
				return entry.Canonical
			}
		}
		if n.scorer.Ratio(token, entry.Canonical) >= canonicalThreshold {
			return entry.Canonical
		}
		for _, variant := range entry.Variants {
			if n.scorer.Ratio(token, variant) >= variantThreshold {
				return entry.Canonical
			}
		}
	}
	return token
}
