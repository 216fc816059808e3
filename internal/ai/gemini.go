package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiClient builds a client for the Gemini API. An empty apiKey yields a
// client whose calls fail with ErrUpstreamAuth, so the server can still start.
func NewGeminiClient(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiClient, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &GeminiClient{model: model, timeout: timeout}
	if apiKey == "" {
		return c, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client failed: %w", err)
	}
	c.client = client
	return c, nil
}

func (c *GeminiClient) Analyze(ctx context.Context, task Task, image []byte, mimeType string) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("%w: api key is not configured", ErrUpstreamAuth)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(task.Prompt()),
			genai.NewPartFromBytes(image, mimeType),
		}, genai.RoleUser),
	}
	temperature := float32(0.2)

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		Temperature: &temperature,
	})
	if err != nil {
		return "", classifyGeminiError(ctx, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: empty gemini response", ErrUpstreamUnavailable)
	}
	return text, nil
}

func classifyGeminiError(ctx context.Context, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.Code, apiErr.Message)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return classifyStatus(apiErrPtr.Code, apiErrPtr.Message)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return classifyTransport(ctx, err)
	}
	// Errors raised before a response exists still carry the provider text.
	return classifyStatus(0, err.Error())
}
