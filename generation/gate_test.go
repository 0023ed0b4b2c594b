package generation

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type fakeProvider struct {
	mu    sync.Mutex
	calls int
	// errs is consumed one per call; nil means success with text "generated"
	errs []error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var err error
	if f.calls < len(f.errs) {
		err = f.errs[f.calls]
	}
	f.calls++
	if err != nil {
		return "", err
	}
	return "  generated  ", nil
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestGateReturnsTrimmedTextOnSuccess(t *testing.T) {
	gate := NewGate(&fakeProvider{})
	text, ok := gate.Generate(context.Background(), "sys", "user", 100, 0.3)
	if !ok {
		t.Fatal("expected success from available provider")
	}
	if text != "generated" {
		t.Fatalf("expected trimmed text, got %q", text)
	}
}

func TestGateTripsPermanentlyOnRateLimit(t *testing.T) {
	provider := &fakeProvider{errs: []error{&RateLimitedError{StatusCode: 429, Message: "quota"}}}
	gate := NewGate(provider)

	if _, ok := gate.Generate(context.Background(), "s", "u", 100, 0.3); ok {
		t.Fatal("expected fallback signal on rate limit")
	}
	if !gate.Degraded() {
		t.Fatal("expected gate to be degraded after rate limit")
	}

	// Provider would succeed now, but the gate must not call it again.
	for i := 0; i < 3; i++ {
		if _, ok := gate.Generate(context.Background(), "s", "u", 100, 0.3); ok {
			t.Fatal("expected fallback signal after gate tripped")
		}
	}
	if got := provider.callCount(); got != 1 {
		t.Fatalf("expected exactly 1 provider call, got %d", got)
	}
}

func TestGateTripsOnQuotaMessageWithoutTypedError(t *testing.T) {
	provider := &fakeProvider{errs: []error{errors.New("openai chat error: status 400: insufficient_quota")}}
	gate := NewGate(provider)

	if _, ok := gate.Generate(context.Background(), "s", "u", 100, 0.3); ok {
		t.Fatal("expected fallback signal")
	}
	if !gate.Degraded() {
		t.Fatal("expected quota message to trip the gate")
	}
}

func TestGateStaysAvailableOnTransientError(t *testing.T) {
	provider := &fakeProvider{errs: []error{errors.New("connection reset")}}
	gate := NewGate(provider)

	if _, ok := gate.Generate(context.Background(), "s", "u", 100, 0.3); ok {
		t.Fatal("expected fallback signal for transient error")
	}
	if gate.Degraded() {
		t.Fatal("transient error must not trip the gate")
	}

	// Next call retries the provider and succeeds.
	if _, ok := gate.Generate(context.Background(), "s", "u", 100, 0.3); !ok {
		t.Fatal("expected provider retry to succeed")
	}
	if got := provider.callCount(); got != 2 {
		t.Fatalf("expected 2 provider calls, got %d", got)
	}
}

func TestGateWithNilProviderAlwaysSignalsFallback(t *testing.T) {
	gate := NewGate(nil)
	if !gate.Degraded() {
		t.Fatal("nil provider gate must report degraded")
	}
	if _, ok := gate.Generate(context.Background(), "s", "u", 100, 0.3); ok {
		t.Fatal("expected fallback signal from nil provider gate")
	}
}

func TestGateConcurrentTripIsIdempotent(t *testing.T) {
	provider := &fakeProvider{errs: []error{
		&RateLimitedError{StatusCode: 429, Message: "quota"},
		&RateLimitedError{StatusCode: 429, Message: "quota"},
		&RateLimitedError{StatusCode: 429, Message: "quota"},
		&RateLimitedError{StatusCode: 429, Message: "quota"},
	}}
	gate := NewGate(provider)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			gate.Generate(context.Background(), "s", "u", 100, 0.3)
		}()
	}
	wg.Wait()

	if !gate.Degraded() {
		t.Fatal("expected gate degraded after concurrent rate limits")
	}
}

func TestIsRateLimited(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{&RateLimitedError{StatusCode: 429}, true},
		{errors.New("HTTP 429 Too Many Requests"), true},
		{errors.New("You exceeded your current QUOTA"), true},
		{errors.New("insufficient_quota: billing"), true},
		{errors.New("connection refused"), false},
	}
	for _, c := range cases {
		if got := IsRateLimited(c.err); got != c.want {
			t.Errorf("IsRateLimited(%v) = %v; want %v", c.err, got, c.want)
		}
	}
}
