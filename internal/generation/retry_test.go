package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"velox-backend/internal/llm"
)

func newTestRetrier(p llm.Provider) *Retrier {
	return &Retrier{Provider: p, MaxAttempts: 3, Delay: time.Second, Sleep: noSleep}
}

func TestRetrierReturnsFirstAcceptedResult(t *testing.T) {
	p := &scriptedProvider{replies: replies("A thoughtful professional bio.")}
	res, err := newTestRetrier(p).Generate(context.Background(), TaskBio, llm.Request{Prompt: "x"}, Detector{MinLength: MinLengthText})
	require.NoError(t, err)
	assert.Equal(t, "A thoughtful professional bio.", res.Content)
	assert.Equal(t, 1, p.Calls())
}

func TestRetrierRetriesCorruptedOutput(t *testing.T) {
	p := &scriptedProvider{replies: replies("", "bad\x00output here", "A thoughtful professional bio.")}
	res, err := newTestRetrier(p).Generate(context.Background(), TaskBio, llm.Request{Prompt: "x"}, Detector{MinLength: MinLengthText})
	require.NoError(t, err)
	assert.Equal(t, "A thoughtful professional bio.", res.Content)
	assert.Equal(t, 3, p.Calls())
}

func TestRetrierExhaustsOnPersistentCorruption(t *testing.T) {
	p := &scriptedProvider{replies: replies("short")}
	_, err := newTestRetrier(p).Generate(context.Background(), TaskBio, llm.Request{Prompt: "x"}, Detector{MinLength: MinLengthText})
	require.ErrorIs(t, err, ErrGenerationFailed)
	assert.Equal(t, 3, p.Calls())
}

func TestRetrierTreatsProviderErrorsAsRetryable(t *testing.T) {
	p := &scriptedProvider{replies: []scriptedReply{
		{err: errors.New("connection reset")},
		{content: "A thoughtful professional bio."},
	}}
	res, err := newTestRetrier(p).Generate(context.Background(), TaskBio, llm.Request{Prompt: "x"}, Detector{MinLength: MinLengthText})
	require.NoError(t, err)
	assert.Equal(t, "A thoughtful professional bio.", res.Content)
	assert.Equal(t, 2, p.Calls())
}

func TestRetrierWrapsLastProviderError(t *testing.T) {
	p := &scriptedProvider{replies: []scriptedReply{{err: llm.ErrRateLimited}}}
	_, err := newTestRetrier(p).Generate(context.Background(), TaskBio, llm.Request{Prompt: "x"}, Detector{MinLength: MinLengthText})
	require.ErrorIs(t, err, ErrGenerationFailed)
	assert.True(t, llm.IsRateLimited(err))
	assert.Equal(t, 3, p.Calls())
}

func TestRetrierNeverExceedsMaxAttempts(t *testing.T) {
	for _, max := range []int{1, 2, 3, 5} {
		p := &scriptedProvider{replies: replies("")}
		r := &Retrier{Provider: p, MaxAttempts: max, Sleep: noSleep}
		_, err := r.Generate(context.Background(), TaskHeadline, llm.Request{}, Detector{MinLength: MinLengthText})
		require.Error(t, err)
		assert.Equal(t, max, p.Calls())
	}
}

func TestRetrierSleepsBetweenAttemptsOnly(t *testing.T) {
	var sleeps []time.Duration
	p := &scriptedProvider{replies: replies("")}
	r := &Retrier{Provider: p, MaxAttempts: 3, Delay: time.Second, Sleep: func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}}
	_, err := r.Generate(context.Background(), TaskBio, llm.Request{}, Detector{MinLength: MinLengthText})
	require.Error(t, err)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, sleeps)
}

func TestRetrierStopsWhenContextCanceled(t *testing.T) {
	p := &scriptedProvider{replies: replies("")}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Retrier{Provider: p, MaxAttempts: 3, Delay: time.Hour}
	cancel()

	_, err := r.Generate(ctx, TaskBio, llm.Request{}, Detector{MinLength: MinLengthText})
	require.ErrorIs(t, err, ErrGenerationFailed)
	assert.Equal(t, 1, p.Calls())
}

func TestRetrierDefaultTimerWaits(t *testing.T) {
	p := &scriptedProvider{replies: replies("", "A thoughtful professional bio.")}
	r := NewRetrier(p, 2, 10*time.Millisecond)
	start := time.Now()
	_, err := r.Generate(context.Background(), TaskBio, llm.Request{}, Detector{MinLength: MinLengthText})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}
