package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUpstreamAuth        = errors.New("upstream rejected credentials")
	ErrUpstreamRateLimited = errors.New("upstream quota exceeded")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// Client sends one image and a task prompt to a multimodal model and returns
// the raw text answer. Implementations do not retry.
type Client interface {
	Analyze(ctx context.Context, task Task, image []byte, mimeType string) (string, error)
}

// classifyStatus maps a provider status code and message to one of the
// upstream sentinel errors.
func classifyStatus(code int, message string) error {
	lower := strings.ToLower(message)
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden,
		strings.Contains(lower, "api key"),
		strings.Contains(lower, "api_key"),
		strings.Contains(lower, "permission denied"):
		return fmt.Errorf("%w: status %d: %s", ErrUpstreamAuth, code, message)
	case code == http.StatusTooManyRequests,
		strings.Contains(lower, "quota"),
		strings.Contains(lower, "rate limit"),
		strings.Contains(lower, "resource_exhausted"):
		return fmt.Errorf("%w: status %d: %s", ErrUpstreamRateLimited, code, message)
	default:
		return fmt.Errorf("%w: status %d: %s", ErrUpstreamUnavailable, code, message)
	}
}

func classifyTransport(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: request timed out: %v", ErrUpstreamUnavailable, err)
	}
	return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
}
