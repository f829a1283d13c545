package nlp_test

import (
	"context"
	"testing"

	"calorie-chat/internal/core/nlp"
	"calorie-chat/internal/pkg/similarity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(text string) nlp.ParsedQuery {
	p := nlp.NewParser(nlp.DefaultVocabulary())
	return p.Parse(text, text, "english")
}

func TestParse_IntentCascade(t *testing.T) {
	tests := []struct {
		text string
		want nlp.Intent
	}{
		{"hello", nlp.IntentGreeting},
		{"hi there", nlp.IntentGreeting},
		{"marhaba", nlp.IntentGreeting},
		{"help", nlp.IntentHelp},
		{"how do i use this", nlp.IntentHelp},
		{"shawarma without fries", nlp.IntentModifyRemove},
		{"kabsa bala rice", nlp.IntentModifyRemove},
		{"falafel with extra tahini", nlp.IntentModifyAdd},
		{"add pickles", nlp.IntentModifyAdd},
		{"shawarma", nlp.IntentQueryFood},
		{"calories in kushari", nlp.IntentQueryFood},
	}
	for _, tt := range tests {
		q := parse(tt.text)
		assert.Equal(t, tt.want, q.Intent, "text %q", tt.text)
	}
}

func TestParse_RemoveBeatsAddWhenBothPresent(t *testing.T) {
	// "without" is checked before "with"
	q := parse("shawarma without fries with extra garlic")
	assert.Equal(t, nlp.IntentModifyRemove, q.Intent)
}

func TestParse_FoodItemsNeverEmpty(t *testing.T) {
	for _, text := range []string{
		"shawarma",
		"how many calories in kushari",
		"the a an",
		"???",
	} {
		q := parse(text)
		require.NotEmpty(t, q.FoodItems, "text %q", text)
	}
}

func TestParse_FoodItemStripsQuestionFiller(t *testing.T) {
	q := parse("how many calories in shawarma")
	require.Len(t, q.FoodItems, 1)
	assert.Equal(t, "shawarma", q.FoodItems[0])
}

func TestParse_FoodItemCutAtModificationMarker(t *testing.T) {
	q := parse("shawarma without fries")
	require.Len(t, q.FoodItems, 1)
	assert.Equal(t, "shawarma", q.FoodItems[0])
}

func TestParse_Modifications(t *testing.T) {
	q := parse("shawarma without fries")
	assert.Equal(t, []string{"fries"}, q.Modifications.Remove)
	assert.Empty(t, q.Modifications.Add)

	q = parse("falafel with extra tahini")
	assert.Contains(t, q.Modifications.Add, "tahini")

	q = parse("kabsa bala rice")
	assert.Equal(t, []string{"rice"}, q.Modifications.Remove)
}

func TestParse_ModificationSkipsQuantities(t *testing.T) {
	q := parse("hummus with extra 30g of tahini")
	assert.Contains(t, q.Modifications.Add, "tahini")
}

func TestParse_FoodItemExcludesWeight(t *testing.T) {
	q := parse("200g chicken")
	require.Len(t, q.FoodItems, 1)
	assert.Equal(t, "chicken", q.FoodItems[0])

	q = parse("how many calories in 100g rice")
	require.Len(t, q.FoodItems, 1)
	assert.Equal(t, "rice", q.FoodItems[0])
}

func TestParse_Quantities(t *testing.T) {
	q := parse("200g chicken")
	assert.Equal(t, 200.0, q.Quantities.WeightG)
	assert.Equal(t, 0.0, q.Quantities.Multiplier)

	q = parse("2kg rice")
	assert.Equal(t, 2000.0, q.Quantities.WeightG)

	q = parse("double portion of rice")
	assert.Equal(t, 2.0, q.Quantities.Multiplier)
	assert.Equal(t, 0.0, q.Quantities.WeightG)

	q = parse("half a shawarma")
	assert.Equal(t, 0.5, q.Quantities.Multiplier)

	q = parse("shawarma")
	assert.Equal(t, 0.0, q.Quantities.WeightG)
	assert.Equal(t, 0.0, q.Quantities.Multiplier)
}

func TestParse_ConfidenceBounds(t *testing.T) {
	for _, text := range []string{
		"shawarma",
		"hello",
		"how many calories in kushari without rice",
		"x",
	} {
		q := parse(text)
		assert.GreaterOrEqual(t, q.Confidence, 0.0, "text %q", text)
		assert.LessOrEqual(t, q.Confidence, 1.0, "text %q", text)
	}
}

func TestParse_KnownDishScoresHigherThanUnknown(t *testing.T) {
	known := parse("calories in shawarma please")
	unknown := parse("calories in quinoa bowl please")
	assert.Greater(t, known.Confidence, unknown.Confidence)
}

func TestParseQuery_WeightQuerySurvivesNormalization(t *testing.T) {
	engine := nlp.NewEngine(
		nlp.NewNormalizer(nil, nlp.DefaultVocabulary(), similarity.NewEditDistance()),
		nlp.NewParser(nlp.DefaultVocabulary()),
	)

	q := engine.ParseQuery(context.Background(), "200g chicken")

	assert.Equal(t, "english", q.LanguageDetected)
	assert.Equal(t, "200g chicken", q.NormalizedText)
	require.Len(t, q.FoodItems, 1)
	assert.Equal(t, "chicken", q.FoodItems[0])
	assert.Equal(t, 200.0, q.Quantities.WeightG)
}
