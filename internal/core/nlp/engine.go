package nlp

import (
	"context"

	"calorie-chat/internal/pkg/common"

	"go.uber.org/zap"
)

// Engine ties the normalizer and the extractor into the single
// raw-text → ParsedQuery step of the pipeline
type Engine struct {
	normalizer *Normalizer
	parser     *Parser
}

// NewEngine creates the query-understanding engine
func NewEngine(normalizer *Normalizer, parser *Parser) *Engine {
	return &Engine{
		normalizer: normalizer,
		parser:     parser,
	}
}

// ParseQuery normalizes text and extracts intent and slots from it
func (e *Engine) ParseQuery(ctx context.Context, text string) ParsedQuery {
	normalized, language := e.normalizer.Normalize(ctx, text)
	query := e.parser.Parse(text, normalized, language)

	common.LogDebug("parsed query",
		zap.String("original", text),
		zap.String("normalized", normalized),
		zap.String("intent", string(query.Intent)),
		zap.Strings("food_items", query.FoodItems),
		zap.Float64("confidence", query.Confidence),
	)
	return query
}
