package usage

import (
	"context"
	"database/sql"
	"time"
)

type store interface {
	EnsurePeriod(ctx context.Context, userID string) (Usage, error)
	Consume(ctx context.Context, userID string, n int) (Usage, error)
	Reset(ctx context.Context, userID string) (Usage, error)
	Release(ctx context.Context, userID string, n int) (Usage, error)
}

// Service manages weekly AI credits via an underlying store.
type Service struct {
	store store
}

// NewService constructs a Service with an in-memory store.
func NewService(limit int, now func() time.Time) *Service {
	return &Service{store: newMemoryStore(normalizeLimit(limit), normalizeClock(now))}
}

// NewPostgresService constructs a Service backed by the ai_usage table.
func NewPostgresService(db *sql.DB, limit int, now func() time.Time) *Service {
	return &Service{store: newPGStore(db, normalizeLimit(limit), normalizeClock(now))}
}

// Get returns the current usage, starting a new period if the last one ended.
func (s *Service) Get(ctx context.Context, userID string) (Usage, error) {
	return s.store.EnsurePeriod(ctx, userID)
}

// Consume increments usage by n, failing with ErrLimitReached past the limit.
func (s *Service) Consume(ctx context.Context, userID string, n int) (Usage, error) {
	return s.store.Consume(ctx, userID, n)
}

// Release gives back n previously consumed credits. Used never drops
// below zero.
func (s *Service) Release(ctx context.Context, userID string, n int) (Usage, error) {
	return s.store.Release(ctx, userID, n)
}

// Reset sets usage to zero and restarts the period.
func (s *Service) Reset(ctx context.Context, userID string) (Usage, error) {
	return s.store.Reset(ctx, userID)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultWeeklyLimit
	}
	return limit
}

func normalizeClock(now func() time.Time) func() time.Time {
	if now == nil {
		return func() time.Time { return time.Now().UTC() }
	}
	return func() time.Time { return now().UTC() }
}
