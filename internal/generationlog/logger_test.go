package generationlog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingRepo struct{}

func (failingRepo) Insert(context.Context, Entry) error { return errors.New("db down") }
func (failingRepo) Summarize(context.Context, string) ([]TaskSummary, error) {
	return nil, errors.New("db down")
}

func TestRecordAssignsIDAndTruncatesPrompt(t *testing.T) {
	repo := NewMemoryRepo()
	now := time.Date(2026, time.April, 1, 12, 0, 0, 0, time.UTC)
	logger := &Logger{Repo: repo, NewID: func() string { return "log-1" }, Now: func() time.Time { return now }}

	out := logger.Record(context.Background(), Entry{
		UserID:     "user-1",
		TaskType:   "bio",
		Prompt:     strings.Repeat("é", MaxPromptRunes+500),
		Response:   "A bio",
		Model:      "llama-3.3-70b-versatile",
		TokensUsed: 120,
	})
	require.True(t, out.OK())

	entries := repo.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "log-1", entries[0].ID)
	assert.Equal(t, now, entries[0].CreatedAt)
	assert.Equal(t, MaxPromptRunes, utf8.RuneCountInString(entries[0].Prompt))
	assert.Equal(t, "A bio", entries[0].Response)
}

func TestRecordSwallowsRepoFailure(t *testing.T) {
	logger := NewLogger(failingRepo{})
	out := logger.Record(context.Background(), Entry{UserID: "user-1", TaskType: "bio"})
	assert.False(t, out.OK())
	assert.EqualError(t, out.Err, "db down")
}

func TestRecordSurvivesCanceledRequest(t *testing.T) {
	repo := NewMemoryRepo()
	logger := NewLogger(repo)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := logger.Record(ctx, Entry{UserID: "user-1", TaskType: "headline"})
	require.True(t, out.OK())
	assert.Len(t, repo.Entries(), 1)
}

func TestRecordWithoutRepo(t *testing.T) {
	var logger *Logger
	assert.False(t, logger.Record(context.Background(), Entry{}).OK())
}

func TestSummarize(t *testing.T) {
	repo := NewMemoryRepo()
	logger := NewLogger(repo)
	ctx := context.Background()
	base := time.Date(2026, time.April, 1, 12, 0, 0, 0, time.UTC)

	for i, e := range []Entry{
		{UserID: "user-1", TaskType: "bio", TokensUsed: 100, CreatedAt: base},
		{UserID: "user-1", TaskType: "bio", TokensUsed: 50, CreatedAt: base.Add(time.Hour)},
		{UserID: "user-1", TaskType: "resume-parse", TokensUsed: 900, CreatedAt: base},
		{UserID: "user-2", TaskType: "bio", TokensUsed: 10, CreatedAt: base},
	} {
		require.Truef(t, logger.Record(ctx, e).OK(), "record %d", i)
	}

	s, err := logger.Summarize(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, s.TotalRequests)
	assert.Equal(t, 1050, s.TotalTokens)
	require.Len(t, s.ByTask, 2)
	assert.Equal(t, "bio", s.ByTask[0].TaskType)
	assert.Equal(t, 2, s.ByTask[0].Requests)
	require.NotNil(t, s.ByTask[0].LastUsedAt)
	assert.Equal(t, base.Add(time.Hour), *s.ByTask[0].LastUsedAt)

	empty, err := logger.Summarize(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty.ByTask)
	assert.Zero(t, empty.TotalRequests)
}
