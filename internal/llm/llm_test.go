package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestPlaceholderProviderNotConfigured(t *testing.T) {
	_, err := PlaceholderProvider{}.Generate(context.Background(), Request{Prompt: "hi"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestIsRateLimited(t *testing.T) {
	wrapped := fmt.Errorf("groq call: %w", ErrRateLimited)
	if !IsRateLimited(wrapped) {
		t.Fatalf("expected wrapped ErrRateLimited to be detected")
	}
	if IsRateLimited(errors.New("boom")) {
		t.Fatalf("unexpected rate limit detection")
	}
	if IsRateLimited(nil) {
		t.Fatalf("nil error is not a rate limit")
	}
}
