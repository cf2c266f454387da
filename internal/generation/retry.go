package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"velox-backend/internal/llm"
	"velox-backend/internal/shared/metrics"
	"velox-backend/internal/shared/telemetry"
)

const (
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = time.Second
)

var errCorruptedOutput = errors.New("corrupted output")

// Retrier calls the provider up to MaxAttempts times, waiting Delay between
// attempts, and returns the first result the detector accepts.
type Retrier struct {
	Provider    llm.Provider
	MaxAttempts int
	Delay       time.Duration
	// Sleep waits between attempts; nil uses a timer bound to ctx.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewRetrier returns a Retrier with defaults applied to non-positive values.
func NewRetrier(provider llm.Provider, maxAttempts int, delay time.Duration) *Retrier {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if delay < 0 {
		delay = DefaultRetryDelay
	}
	return &Retrier{Provider: provider, MaxAttempts: maxAttempts, Delay: delay}
}

// Generate runs the bounded retry loop for one task. On exhaustion it
// returns an error matching ErrGenerationFailed that wraps the last cause.
func (r *Retrier) Generate(ctx context.Context, task TaskType, req llm.Request, detector Detector) (llm.Result, error) {
	attempts := r.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		res, err := r.Provider.Generate(ctx, req)
		switch {
		case err != nil:
			lastErr = err
			metrics.IncGenerationAttempt(string(task), "error")
		case !detector.Accept(res.Content):
			lastErr = errCorruptedOutput
			metrics.IncGenerationAttempt(string(task), "corrupted")
		default:
			metrics.IncGenerationAttempt(string(task), "accepted")
			return res, nil
		}

		telemetry.Warn("generation.attempt_failed", map[string]any{
			"task":         string(task),
			"attempt":      attempt,
			"max_attempts": attempts,
			"err":          lastErr,
		})

		if attempt == attempts || ctx.Err() != nil {
			break
		}
		if err := r.sleep(ctx); err != nil {
			lastErr = err
			break
		}
	}
	return llm.Result{}, fmt.Errorf("%w: %w", ErrGenerationFailed, lastErr)
}

func (r *Retrier) sleep(ctx context.Context) error {
	if r.Sleep != nil {
		return r.Sleep(ctx, r.Delay)
	}
	if r.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(r.Delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
