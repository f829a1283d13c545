// Package translate implements the Arabic→English translation collaborator.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"calorie-chat/internal/infrastructure/config"

	"github.com/go-resty/resty/v2"
)

// Client calls a Google-Translate-compatible HTTP API
type Client struct {
	client *resty.Client
}

// NewClient creates a translation client from config
func NewClient(cfg *config.TranslatorConfig) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetQueryParam("key", cfg.APIKey)

	return &Client{client: client}
}

// Translate converts Arabic text to English. Any transport or API failure
// is returned as an error; callers degrade to the untranslated text.
func (c *Client) Translate(ctx context.Context, text string) (string, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"q":      text,
			"source": "ar",
			"target": "en",
			"format": "text",
		}).
		Post("")

	if err != nil {
		return "", fmt.Errorf("failed to send translation request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("translation API returned status %d: %s", resp.StatusCode(), resp.String())
	}

	var result struct {
		Data struct {
			Translations []struct {
				TranslatedText string `json:"translatedText"`
			} `json:"translations"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse translation response: %w", err)
	}
	if len(result.Data.Translations) == 0 {
		return "", fmt.Errorf("no translations in response")
	}
	return result.Data.Translations[0].TranslatedText, nil
}

// Noop passes text through unchanged, for offline operation
type Noop struct{}

// Translate returns the input unmodified
func (Noop) Translate(ctx context.Context, text string) (string, error) {
	return text, nil
}
