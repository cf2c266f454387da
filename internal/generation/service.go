package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"velox-backend/internal/generationlog"
	"velox-backend/internal/llm"
	"velox-backend/internal/shared/metrics"
	"velox-backend/internal/shared/telemetry"
	"velox-backend/internal/usage"
)

const (
	minCVTextRunes = 50
	releaseTimeout = 3 * time.Second
)

// ErrQuotaExceeded is returned when the user has no AI credits left.
var ErrQuotaExceeded = fmt.Errorf("quota exceeded: %w", usage.ErrLimitReached)

// Quota gates generations by user credits. A credit is taken before the
// provider call and released if the generation fails.
type Quota interface {
	Consume(ctx context.Context, userID string, n int) (usage.Usage, error)
	Release(ctx context.Context, userID string, n int) (usage.Usage, error)
}

// Recorder persists generation log entries. Failures are reported through
// the Outcome only.
type Recorder interface {
	Record(ctx context.Context, entry generationlog.Entry) generationlog.Outcome
}

// Service runs each task through the retry driver, the extractor, the
// credit quota and the generation log.
type Service struct {
	Retrier *Retrier
	Schemas Schemas
	Quota   Quota
	Log     Recorder
	Now     func() time.Time
}

// NewService wires a Service. quota and log may be nil.
func NewService(retrier *Retrier, quota Quota, log Recorder) (*Service, error) {
	if retrier == nil || retrier.Provider == nil {
		return nil, errors.New("retrier with provider is required")
	}
	schemas, err := CompileSchemas()
	if err != nil {
		return nil, err
	}
	return &Service{Retrier: retrier, Schemas: schemas, Quota: quota, Log: log, Now: time.Now}, nil
}

// GenerateBio writes a short professional bio.
func (s *Service) GenerateBio(ctx context.Context, userID string, in BioInput) (string, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Title) == "" {
		return "", invalidInput("name and title are required")
	}
	return s.generateText(ctx, userID, TaskBio, in)
}

// GenerateHeadline writes a one-line professional headline.
func (s *Service) GenerateHeadline(ctx context.Context, userID string, in HeadlineInput) (string, error) {
	if strings.TrimSpace(in.Title) == "" {
		return "", invalidInput("title is required")
	}
	return s.generateText(ctx, userID, TaskHeadline, in)
}

// GenerateProjectDescription writes a portfolio blurb for a project.
func (s *Service) GenerateProjectDescription(ctx context.Context, userID string, in ProjectInput) (string, error) {
	if strings.TrimSpace(in.Name) == "" {
		return "", invalidInput("name is required")
	}
	return s.generateText(ctx, userID, TaskProjectDescription, in)
}

// ParseResume turns raw CV text into CVData.
func (s *Service) ParseResume(ctx context.Context, userID string, cvText string) (CVData, error) {
	cvText = strings.TrimSpace(cvText)
	if utf8.RuneCountInString(cvText) < minCVTextRunes {
		return CVData{}, invalidInput(fmt.Sprintf("cvText must be at least %d characters", minCVTextRunes))
	}
	var data CVData
	err := s.generateStructured(ctx, userID, TaskResumeParse, struct{ CVText string }{cvText}, BraceExtractor{Schema: s.Schemas.CVData}, &data)
	if err != nil {
		return CVData{}, err
	}
	return data, nil
}

// GeneratePortfolioConfig builds a portfolio layout from a CV and/or GitHub data.
func (s *Service) GeneratePortfolioConfig(ctx context.Context, userID string, in PortfolioInput) (PortfolioConfig, error) {
	cvText := strings.TrimSpace(in.CVText)
	github := rawOrEmpty(in.GitHubData)
	if cvText == "" && github == "" {
		return PortfolioConfig{}, invalidInput("cvText or githubData is required")
	}
	data := struct {
		CVText       string
		GitHubData   string
		Preferences  string
		SectionTypes []string
	}{
		CVText:       cvText,
		GitHubData:   github,
		Preferences:  rawOrEmpty(in.Preferences),
		SectionTypes: quoted(SectionTypes),
	}
	var cfg PortfolioConfig
	if err := s.generateStructured(ctx, userID, TaskPortfolioConfig, data, BraceExtractor{Schema: s.Schemas.PortfolioConfig}, &cfg); err != nil {
		return PortfolioConfig{}, err
	}
	return cfg, nil
}

func (s *Service) generateText(ctx context.Context, userID string, task TaskType, data any) (string, error) {
	prompt, res, err := s.run(ctx, userID, task, data)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(res.Content)
	if task == TaskHeadline {
		text = unquote(text)
	}
	s.record(ctx, userID, task, prompt, text, res)
	return text, nil
}

func (s *Service) generateStructured(ctx context.Context, userID string, task TaskType, data any, ex Extractor, out any) error {
	prompt, res, err := s.run(ctx, userID, task, data)
	if err != nil {
		return err
	}
	if err := ex.Extract(res.Content, out); err != nil {
		s.release(ctx, userID, task)
		metrics.ObserveGeneration(string(task), "parse_error", 0)
		telemetry.Warn("generation.extract_failed", map[string]any{
			"task":    string(task),
			"user_id": userID,
			"err":     err,
		})
		return err
	}
	serialized, err := json.Marshal(out)
	if err != nil {
		serialized = []byte(res.Content)
	}
	s.record(ctx, userID, task, prompt, string(serialized), res)
	return nil
}

// run checks the quota, renders the prompt and drives the retrier.
func (s *Service) run(ctx context.Context, userID string, task TaskType, data any) (string, llm.Result, error) {
	if strings.TrimSpace(userID) == "" {
		return "", llm.Result{}, invalidInput("user is required")
	}
	params, ok := ParamsFor(task)
	if !ok {
		return "", llm.Result{}, fmt.Errorf("unknown task %q", task)
	}
	prompt, err := renderPrompt(task, data)
	if err != nil {
		return "", llm.Result{}, err
	}

	if s.Quota != nil {
		if _, err := s.Quota.Consume(ctx, userID, 1); err != nil {
			if errors.Is(err, usage.ErrLimitReached) {
				return "", llm.Result{}, ErrQuotaExceeded
			}
			return "", llm.Result{}, fmt.Errorf("reserve credit: %w", err)
		}
	}

	start := s.now()
	res, err := s.Retrier.Generate(ctx, task, llm.Request{
		Prompt:      prompt,
		System:      systemPromptFor(params),
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
		JSONMode:    params.JSONMode,
	}, Detector{MinLength: params.MinLength})
	elapsed := s.now().Sub(start).Seconds()
	if err != nil {
		s.release(ctx, userID, task)
		metrics.ObserveGeneration(string(task), "failed", elapsed)
		return "", llm.Result{}, err
	}
	metrics.ObserveGeneration(string(task), "success", elapsed)
	metrics.AddTokens(string(task), res.Model, res.TokensUsed)
	return prompt, res, nil
}

// release returns the credit reserved by run. It survives cancellation of
// ctx so an aborted request is not charged.
func (s *Service) release(ctx context.Context, userID string, task TaskType) {
	if s.Quota == nil {
		return
	}
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	if _, err := s.Quota.Release(releaseCtx, userID, 1); err != nil {
		telemetry.Warn("generation.release_failed", map[string]any{
			"task":    string(task),
			"user_id": userID,
			"err":     err,
		})
	}
}

// record writes the log entry. Failures never reach the caller.
func (s *Service) record(ctx context.Context, userID string, task TaskType, prompt, response string, res llm.Result) {
	if s.Log == nil {
		return
	}
	_ = s.Log.Record(ctx, generationlog.Entry{
		UserID:     userID,
		TaskType:   string(task),
		Prompt:     prompt,
		Response:   response,
		Model:      res.Model,
		TokensUsed: res.TokensUsed,
		CreatedAt:  s.now().UTC(),
	})
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

var quotePairs = [][2]string{{`"`, `"`}, {"'", "'"}, {"“", "”"}}

// unquote removes one pair of quotes wrapping the whole text. Text holding
// another quote of the same kind is left alone, since its first and last
// quotes belong to separate quotations.
func unquote(s string) string {
	for _, q := range quotePairs {
		open, closing := q[0], q[1]
		if len(s) < len(open)+len(closing) || !strings.HasPrefix(s, open) || !strings.HasSuffix(s, closing) {
			continue
		}
		inner := s[len(open) : len(s)-len(closing)]
		if strings.Contains(inner, open) || strings.Contains(inner, closing) {
			return s
		}
		return strings.TrimSpace(inner)
	}
	return s
}

func rawOrEmpty(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	switch s {
	case "", "null", "{}", "[]", `""`:
		return ""
	}
	return s
}

func quoted(items []string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = fmt.Sprintf("%q", it)
	}
	return out
}
