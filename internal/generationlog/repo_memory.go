package generationlog

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo keeps entries in process memory and is safe for concurrent use.
type MemoryRepo struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) Insert(ctx context.Context, entry Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *MemoryRepo) Summarize(ctx context.Context, userID string) ([]TaskSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	byTask := map[string]*TaskSummary{}
	for _, e := range r.entries {
		if e.UserID != userID {
			continue
		}
		ts, ok := byTask[e.TaskType]
		if !ok {
			ts = &TaskSummary{TaskType: e.TaskType}
			byTask[e.TaskType] = ts
		}
		ts.Requests++
		ts.TokensUsed += e.TokensUsed
		if ts.LastUsedAt == nil || e.CreatedAt.After(*ts.LastUsedAt) {
			at := e.CreatedAt
			ts.LastUsedAt = &at
		}
	}

	out := make([]TaskSummary, 0, len(byTask))
	for _, ts := range byTask {
		out = append(out, *ts)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TaskType < out[j].TaskType })
	return out, nil
}

// Entries returns a copy of every stored entry, oldest first.
func (r *MemoryRepo) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

var _ Repo = (*MemoryRepo)(nil)
