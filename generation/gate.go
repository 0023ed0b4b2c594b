package generation

import (
	"context"
	"log"
	"strings"
	"sync/atomic"
)

// Gate wraps a Provider with a one-way circuit breaker. Once the provider
// signals quota exhaustion, every later call skips the provider and tells the
// caller to use its own fallback text. The gate never resets within a process
// lifetime; the summarizer and the chat answerer share one gate because they
// share the same backend credential.
type Gate struct {
	provider Provider
	degraded atomic.Bool
}

// NewGate builds a gate around provider. A nil provider is allowed and
// behaves as permanently degraded (generation disabled by configuration).
func NewGate(provider Provider) *Gate {
	return &Gate{provider: provider}
}

// Degraded reports whether the gate has tripped.
func (g *Gate) Degraded() bool {
	return g.provider == nil || g.degraded.Load()
}

// Generate calls the provider unless the gate is degraded. The second return
// value is false when the caller must fall back to its local text: either the
// gate is degraded, the provider just tripped it, or the call failed
// transiently (in which case the next call will try the provider again).
func (g *Gate) Generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, bool) {
	if g.Degraded() {
		return "", false
	}

	text, err := g.provider.Complete(ctx, systemPrompt, userPrompt, maxTokens, temperature)
	if err == nil {
		return strings.TrimSpace(text), true
	}

	if IsRateLimited(err) {
		// CompareAndSwap keeps the trip idempotent under concurrent calls;
		// only the winner logs.
		if g.degraded.CompareAndSwap(false, true) {
			log.Printf("Warning: generation quota exceeded or rate limited; switching to fallback output for all further calls: %v", err)
		}
		return "", false
	}

	log.Printf("Warning: generation call failed: %v", err)
	return "", false
}
