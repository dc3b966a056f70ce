package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"job-selector/internal/llm"
)

type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client completes prompts with Google Gemini.
type Client struct {
	models generator
	model  string
}

// New creates a Gemini client for the Gemini API backend. A zero timeout means 120s.
func New(ctx context.Context, apiKey, model string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for Gemini")
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{models: client.Models, model: model}, nil
}

// Complete returns the concatenated text parts of the first candidate.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	if resp == nil {
		return "", llm.ErrEmptyCompletion
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", llm.ErrEmptyCompletion
	}
	return text, nil
}

var _ llm.Completer = (*Client)(nil)
