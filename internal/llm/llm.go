package llm

import (
	"context"
	"errors"
)

// Provider issues a single chat-completion call. Implementations do not
// retry, cache or rate limit.
type Provider interface {
	Generate(ctx context.Context, req Request) (Result, error)
}

// Request is one generation call.
type Request struct {
	Prompt      string
	System      string
	MaxTokens   int
	Temperature float64
	// JSONMode asks the provider for a JSON object response where supported.
	JSONMode bool
}

// Result is the raw provider output.
type Result struct {
	Content    string
	Model      string
	TokensUsed int
}

var (
	// ErrNotConfigured is returned by the placeholder provider.
	ErrNotConfigured = errors.New("llm provider not configured")
	// ErrRateLimited marks a provider-side rate limit (HTTP 429).
	ErrRateLimited = errors.New("llm provider rate limited")
)

// IsRateLimited reports whether err was caused by a provider rate limit.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// PlaceholderProvider is used when no API key is configured.
type PlaceholderProvider struct{}

// Generate returns ErrNotConfigured.
func (PlaceholderProvider) Generate(ctx context.Context, req Request) (Result, error) {
	_ = ctx
	_ = req
	return Result{}, ErrNotConfigured
}

var _ Provider = PlaceholderProvider{}
