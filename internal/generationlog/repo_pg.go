package generationlog

import (
	"context"
	"database/sql"
)

// PGRepo stores entries in the ai_generation_logs table.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Insert(ctx context.Context, entry Entry) error {
	const query = `
INSERT INTO ai_generation_logs (id, user_id, task_type, prompt, response, model, tokens_used, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.DB.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.TaskType,
		entry.Prompt,
		entry.Response,
		entry.Model,
		entry.TokensUsed,
		entry.CreatedAt,
	)
	return err
}

func (r *PGRepo) Summarize(ctx context.Context, userID string) ([]TaskSummary, error) {
	const query = `
SELECT task_type, COUNT(*), COALESCE(SUM(tokens_used), 0), MAX(created_at)
FROM ai_generation_logs
WHERE user_id = $1
GROUP BY task_type
ORDER BY task_type`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TaskSummary
	for rows.Next() {
		var ts TaskSummary
		var last sql.NullTime
		if err := rows.Scan(&ts.TaskType, &ts.Requests, &ts.TokensUsed, &last); err != nil {
			return nil, err
		}
		if last.Valid {
			at := last.Time.UTC()
			ts.LastUsedAt = &at
		}
		out = append(out, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var _ Repo = (*PGRepo)(nil)
