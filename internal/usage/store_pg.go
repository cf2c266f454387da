package usage

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type pgStore struct {
	db    *sql.DB
	limit int
	now   func() time.Time
}

func newPGStore(db *sql.DB, limit int, now func() time.Time) *pgStore {
	return &pgStore{db: db, limit: limit, now: now}
}

func (s *pgStore) EnsurePeriod(ctx context.Context, userID string) (Usage, error) {
	return s.inTx(ctx, func(tx *sql.Tx) (Usage, error) {
		return s.lockAndEnsure(ctx, tx, userID)
	})
}

func (s *pgStore) Consume(ctx context.Context, userID string, n int) (Usage, error) {
	return s.inTx(ctx, func(tx *sql.Tx) (Usage, error) {
		u, err := s.lockAndEnsure(ctx, tx, userID)
		if err != nil {
			return Usage{}, err
		}
		if n <= 0 {
			return u, nil
		}
		if u.Used+n > u.Limit {
			return Usage{}, ErrLimitReached
		}
		u.Used += n
		if _, err := tx.ExecContext(ctx, `UPDATE ai_usage SET used = $1 WHERE user_id = $2`, u.Used, userID); err != nil {
			return Usage{}, err
		}
		return u, nil
	})
}

func (s *pgStore) Release(ctx context.Context, userID string, n int) (Usage, error) {
	return s.inTx(ctx, func(tx *sql.Tx) (Usage, error) {
		u, err := s.lockAndEnsure(ctx, tx, userID)
		if err != nil {
			return Usage{}, err
		}
		if n <= 0 || u.Used == 0 {
			return u, nil
		}
		u.Used = max(u.Used-n, 0)
		if _, err := tx.ExecContext(ctx, `UPDATE ai_usage SET used = $1 WHERE user_id = $2`, u.Used, userID); err != nil {
			return Usage{}, err
		}
		return u, nil
	})
}

func (s *pgStore) Reset(ctx context.Context, userID string) (Usage, error) {
	u := newUsage(s.limit, s.now())
	if _, err := s.db.ExecContext(ctx, `
INSERT INTO ai_usage (user_id, plan, limit_amount, used, resets_at)
VALUES ($1, $2, $3, 0, $4)
ON CONFLICT (user_id) DO UPDATE SET used = 0, limit_amount = EXCLUDED.limit_amount, resets_at = EXCLUDED.resets_at`,
		userID, u.Plan, u.Limit, u.ResetsAt); err != nil {
		return Usage{}, err
	}
	return u, nil
}

func (s *pgStore) inTx(ctx context.Context, fn func(tx *sql.Tx) (Usage, error)) (Usage, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Usage{}, err
	}
	u, err := fn(tx)
	if err != nil {
		_ = tx.Rollback()
		return Usage{}, err
	}
	if err := tx.Commit(); err != nil {
		return Usage{}, err
	}
	return u, nil
}

func (s *pgStore) lockAndEnsure(ctx context.Context, tx *sql.Tx, userID string) (Usage, error) {
	now := s.now()
	var u Usage
	row := tx.QueryRowContext(ctx, `
SELECT plan, limit_amount, used, resets_at FROM ai_usage WHERE user_id = $1 FOR UPDATE`, userID)
	err := row.Scan(&u.Plan, &u.Limit, &u.Used, &u.ResetsAt)
	if errors.Is(err, sql.ErrNoRows) {
		u = newUsage(s.limit, now)
		if _, err := tx.ExecContext(ctx, `
INSERT INTO ai_usage (user_id, plan, limit_amount, used, resets_at) VALUES ($1, $2, $3, $4, $5)`,
			userID, u.Plan, u.Limit, u.Used, u.ResetsAt); err != nil {
			return Usage{}, err
		}
		return u, nil
	}
	if err != nil {
		return Usage{}, err
	}

	u.Limit = s.limit
	if next, rolled := rollover(u, now); rolled {
		u = next
		if _, err := tx.ExecContext(ctx, `UPDATE ai_usage SET used = $1, resets_at = $2 WHERE user_id = $3`, u.Used, u.ResetsAt, userID); err != nil {
			return Usage{}, err
		}
	}
	return u, nil
}
