package generationlog

import "context"

// Repo persists log entries. Entries are never updated or deleted.
type Repo interface {
	Insert(ctx context.Context, entry Entry) error
	Summarize(ctx context.Context, userID string) ([]TaskSummary, error)
}
