// Package fallback implements the LLM calorie-estimator collaborator,
// consulted only when the core pipeline returns the not-found sentinel.
package fallback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"calorie-chat/internal/infrastructure/config"

	"github.com/go-resty/resty/v2"
)

// ErrUnavailable signals that no estimate could be produced; callers treat
// it as "collaborator down", never as fatal
var ErrUnavailable = errors.New("fallback estimator unavailable")

// EstimatedIngredient is one ingredient line of an LLM estimate
type EstimatedIngredient struct {
	Name     string  `json:"name"`
	WeightG  float64 `json:"weight_g"`
	Calories float64 `json:"calories"`
}

// Estimate is the structured nutrition estimate returned by the LLM
type Estimate struct {
	FoodName      string                `json:"food_name"`
	TotalCalories float64               `json:"total_calories"`
	WeightG       float64               `json:"weight_g"`
	Ingredients   []EstimatedIngredient `json:"ingredients"`
	Confidence    string                `json:"confidence"`
	Notes         string                `json:"notes"`
}

// Estimator produces calorie estimates for dishes missing from the corpora
type Estimator interface {
	Estimate(ctx context.Context, foodName, country string, modifications []string) (*Estimate, error)
}

const systemPrompt = `You are a nutrition expert specializing in Arabic and Middle Eastern cuisine.
When asked about calories in a dish, provide:
1. Estimated total calories
2. Estimated weight in grams
3. Breakdown of main ingredients with their weights and calories
4. Confidence level (high/medium/low)

IMPORTANT:
- Be specific to the country mentioned (e.g., Egyptian molokhia differs from Lebanese)
- Consider typical serving sizes in that region
- If unsure, indicate this is an estimate

Respond in this exact JSON format:
{
    "food_name": "Dish Name",
    "total_calories": 500,
    "weight_g": 300,
    "ingredients": [
        {"name": "Ingredient 1", "weight_g": 100, "calories": 150},
        {"name": "Ingredient 2", "weight_g": 50, "calories": 80}
    ],
    "confidence": "medium",
    "notes": "Any relevant notes about regional variations"
}`

// Client calls an OpenAI-compatible chat-completions API
type Client struct {
	client    *resty.Client
	model     string
	maxTokens int
}

// NewClient creates an estimator client from config
func NewClient(cfg *config.FallbackConfig) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey))

	return &Client{
		client:    client,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

// Estimate asks the LLM for a structured calorie estimate
func (c *Client) Estimate(ctx context.Context, foodName, country string, modifications []string) (*Estimate, error) {
	userPrompt := fmt.Sprintf("How many calories are in %q as prepared in %s?", foodName, country)
	if len(modifications) > 0 {
		userPrompt += fmt.Sprintf(" Apply these modifications: %s.", strings.Join(modifications, ", "))
	}

	req := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
		"max_tokens": c.maxTokens,
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/chat/completions")

	if err != nil {
		return nil, fmt.Errorf("failed to send estimate request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("estimator API returned status %d: %s", resp.StatusCode(), resp.String())
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse estimator response: %w", err)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("no choices in estimator response")
	}

	return parseEstimate(result.Choices[0].Message.Content)
}

// parseEstimate extracts the JSON body from the model output, tolerating
// text around it
func parseEstimate(content string) (*Estimate, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in estimator output")
	}

	var est Estimate
	if err := json.Unmarshal([]byte(content[start:end+1]), &est); err != nil {
		return nil, fmt.Errorf("failed to decode estimate: %w", err)
	}
	if est.FoodName == "" || est.TotalCalories <= 0 {
		return nil, fmt.Errorf("estimate missing required fields")
	}
	return &est, nil
}

// Noop always reports the collaborator as unavailable, for offline operation
type Noop struct{}

// Estimate returns ErrUnavailable
func (Noop) Estimate(ctx context.Context, foodName, country string, modifications []string) (*Estimate, error) {
	return nil, ErrUnavailable
}
