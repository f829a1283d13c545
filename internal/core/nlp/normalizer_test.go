package nlp_test

import (
	"context"
	"errors"
	"testing"

	"calorie-chat/internal/core/nlp"
	"calorie-chat/internal/pkg/similarity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTranslator returns a fixed translation, recording whether it was called
type stubTranslator struct {
	result string
	err    error
	called bool
}

func (s *stubTranslator) Translate(ctx context.Context, text string) (string, error) {
	s.called = true
	return s.result, s.err
}

func newNormalizer(tr nlp.Translator) *nlp.Normalizer {
	return nlp.NewNormalizer(tr, nlp.DefaultVocabulary(), similarity.NewEditDistance())
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"shawarma", "english"},
		{"How many calories in hummus?", "english"},
		{"شاورما", "arabic"},
		{"sha3urma", "franco"},
		{"7ummus", "franco"},
		{"100 grams", "english"}, // digits alone are not franco markers
		{"200g chicken", "english"}, // weight tokens are measurements, not franco
		{"2kg rice", "english"},
		{"sha3urma 200g", "franco"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, nlp.DetectLanguage(tt.text), "text %q", tt.text)
	}
}

func TestNormalize_EnglishPassesThroughUntranslated(t *testing.T) {
	tr := &stubTranslator{result: "should not be used"}
	n := newNormalizer(tr)

	got, lang := n.Normalize(context.Background(), "  Shawarma  ")

	require.Equal(t, "english", lang)
	assert.Equal(t, "shawarma", got)
	assert.False(t, tr.called, "latin-script text must never be translated")
}

func TestNormalize_FrancoDigitSubstitution(t *testing.T) {
	tr := &stubTranslator{result: "should not be used"}
	n := newNormalizer(tr)

	got, lang := n.Normalize(context.Background(), "7ummus")

	require.Equal(t, "franco", lang)
	assert.Equal(t, "hummus", got)
	assert.False(t, tr.called, "franco text must never be translated")
}

func TestNormalize_WeightTokensSurviveDigitSubstitution(t *testing.T) {
	n := newNormalizer(nil)

	got, lang := n.Normalize(context.Background(), "200g chicken")
	require.Equal(t, "english", lang)
	assert.Equal(t, "200g chicken", got)

	// substitution applies per franco token, never to the weight
	got, lang = n.Normalize(context.Background(), "7ummus 200g")
	require.Equal(t, "franco", lang)
	assert.Equal(t, "hummus 200g", got)
}

func TestNormalize_ArabicUsesTranslator(t *testing.T) {
	tr := &stubTranslator{result: "hummus"}
	n := newNormalizer(tr)

	got, lang := n.Normalize(context.Background(), "حمص")

	require.Equal(t, "arabic", lang)
	assert.True(t, tr.called)
	assert.Equal(t, "hummus", got)
}

func TestNormalize_TranslatorFailureDegrades(t *testing.T) {
	tr := &stubTranslator{err: errors.New("upstream down")}
	n := newNormalizer(tr)

	got, lang := n.Normalize(context.Background(), "حمص")

	require.Equal(t, "arabic", lang)
	assert.NotEmpty(t, got, "failed translation must fall back to the raw text")
}

func TestNormalize_SpellingCorrection(t *testing.T) {
	n := newNormalizer(nil)

	tests := []struct {
		in   string
		want string
	}{
		{"shawerma", "shawarma"}, // known variant
		{"shwarma", "shawarma"},  // known variant
		{"humus", "hummus"},      // known variant
		{"koshari", "kushari"},   // known variant
		{"shawarma", "shawarma"}, // canonical stays
		{"pizza", "pizza"},       // unknown stays untouched
	}
	for _, tt := range tests {
		got, _ := n.Normalize(context.Background(), tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestNormalize_WhitespaceCollapse(t *testing.T) {
	n := newNormalizer(nil)
	got, _ := n.Normalize(context.Background(), "  grilled   chicken  ")
	assert.Equal(t, "grilled chicken", got)
}
