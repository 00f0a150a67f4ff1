package remote

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/genai"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-2.5-flash"

// Generator sends a prompt to a language model and returns its text reply.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator calls the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a Gemini client authenticated with apiKey.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, &Error{Code: ErrNotConfigured, Message: "gemini api key is not set"}
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &Error{Code: ErrUnavailable, Message: "create genai client", Cause: err}
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

// Generate asks for a JSON reply at temperature zero.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0),
	})
	if err != nil {
		return "", classifyAPIError(err)
	}
	return resp.Text(), nil
}

// classifyAPIError maps Gemini failures onto retryable and permanent errors.
func classifyAPIError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return &Error{Code: ErrRateLimited, Message: "gemini rate limited", Retryable: true, Cause: err}
		case apiErr.Code >= http.StatusInternalServerError:
			return &Error{Code: ErrUnavailable, Message: "gemini unavailable", Retryable: true, Cause: err}
		default:
			return &Error{Code: ErrRejected, Message: "gemini rejected the request", Cause: err}
		}
	}
	return &Error{Code: ErrUnavailable, Message: "generate content", Retryable: true, Cause: err}
}
