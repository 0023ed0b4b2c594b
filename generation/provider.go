package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Provider abstracts a prompt->text generation backend.
type Provider interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error)
	Name() string
}

// RateLimitedError marks a quota or rate-limit failure from the backend.
// Once observed, the gate stops calling the provider for the process lifetime.
type RateLimitedError struct {
	StatusCode int
	Message    string
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("generation rate limited (status %d): %s", e.StatusCode, e.Message)
}

// IsRateLimited reports whether err carries a quota/rate-limit signature.
// Besides the typed error, it sniffs the message for the signatures the
// OpenAI and Gemini backends are known to emit.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "insufficient_quota")
}
