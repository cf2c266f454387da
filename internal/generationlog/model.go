package generationlog

import "time"

// MaxPromptRunes bounds the stored prompt.
const MaxPromptRunes = 2000

// Entry is one append-only audit record of a successful generation.
type Entry struct {
	ID         string
	UserID     string
	TaskType   string
	Prompt     string
	Response   string
	Model      string
	TokensUsed int
	CreatedAt  time.Time
}

// TaskSummary aggregates a user's log entries for one task type.
type TaskSummary struct {
	TaskType   string     `json:"taskType"`
	Requests   int        `json:"requests"`
	TokensUsed int        `json:"tokensUsed"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
}

// Summary aggregates all of a user's log entries.
type Summary struct {
	TotalRequests int           `json:"totalRequests"`
	TotalTokens   int           `json:"totalTokens"`
	ByTask        []TaskSummary `json:"byTask"`
}
