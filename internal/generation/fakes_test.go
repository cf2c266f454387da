package generation

import (
	"context"
	"sync"
	"time"

	"velox-backend/internal/generationlog"
	"velox-backend/internal/llm"
)

// scriptedProvider returns replies in order, repeating the last one.
type scriptedProvider struct {
	mu       sync.Mutex
	replies  []scriptedReply
	calls    int
	requests []llm.Request
}

type scriptedReply struct {
	content string
	err     error
}

func (p *scriptedProvider) Generate(ctx context.Context, req llm.Request) (llm.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.requests = append(p.requests, req)
	if len(p.replies) == 0 {
		return llm.Result{}, nil
	}
	idx := p.calls - 1
	if idx >= len(p.replies) {
		idx = len(p.replies) - 1
	}
	r := p.replies[idx]
	if r.err != nil {
		return llm.Result{}, r.err
	}
	return llm.Result{Content: r.content, Model: "test-model", TokensUsed: 42}, nil
}

func (p *scriptedProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func replies(contents ...string) []scriptedReply {
	out := make([]scriptedReply, len(contents))
	for i, c := range contents {
		out[i] = scriptedReply{content: c}
	}
	return out
}

func noSleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

type recordingLog struct {
	mu      sync.Mutex
	entries []generationlog.Entry
}

func (r *recordingLog) Record(ctx context.Context, e generationlog.Entry) generationlog.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return generationlog.Outcome{}
}
