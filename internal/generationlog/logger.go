package generationlog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"velox-backend/internal/shared/telemetry"
)

const recordTimeout = 3 * time.Second

// Outcome reports whether a Record call persisted its entry. Callers are
// free to ignore it; failures are already logged.
type Outcome struct {
	Err error
}

// OK reports whether the entry was stored.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Logger writes generation audit entries without ever failing the caller.
type Logger struct {
	Repo  Repo
	NewID func() string
	Now   func() time.Time
}

func NewLogger(repo Repo) *Logger {
	return &Logger{Repo: repo, NewID: uuid.NewString, Now: time.Now}
}

// Record stores entry after assigning an ID and timestamp and truncating
// the prompt. It outlives cancellation of ctx.
func (l *Logger) Record(ctx context.Context, entry Entry) Outcome {
	if l == nil || l.Repo == nil {
		return Outcome{Err: errors.New("generation log not configured")}
	}
	if entry.ID == "" {
		entry.ID = l.newID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = l.now().UTC()
	}
	entry.Prompt = truncateRunes(entry.Prompt, MaxPromptRunes)

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	if err := l.Repo.Insert(writeCtx, entry); err != nil {
		telemetry.Warn("generationlog.record_failed", map[string]any{
			"user_id": entry.UserID,
			"task":    entry.TaskType,
			"err":     err,
		})
		return Outcome{Err: err}
	}
	return Outcome{}
}

// Summarize aggregates a user's entries per task type.
func (l *Logger) Summarize(ctx context.Context, userID string) (Summary, error) {
	tasks, err := l.Repo.Summarize(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	s := Summary{ByTask: tasks}
	if s.ByTask == nil {
		s.ByTask = []TaskSummary{}
	}
	for _, t := range tasks {
		s.TotalRequests += t.Requests
		s.TotalTokens += t.TokensUsed
	}
	return s, nil
}

func (l *Logger) newID() string {
	if l.NewID == nil {
		return uuid.NewString()
	}
	return l.NewID()
}

func (l *Logger) now() time.Time {
	if l.Now == nil {
		return time.Now()
	}
	return l.Now()
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
