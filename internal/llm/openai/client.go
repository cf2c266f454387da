package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pkoukk/tiktoken-go"
	openaigo "github.com/sashabaranov/go-openai"

	"velox-backend/internal/llm"
	"velox-backend/internal/shared/telemetry"
)

const (
	GroqBaseURL      = "https://api.groq.com/openai/v1"
	DefaultGroqModel = "llama-3.3-70b-versatile"
	defaultTimeout   = 60 * time.Second
	fallbackEncoding = "cl100k_base"
)

// Config selects the endpoint and model for a Client.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Client implements llm.Provider over any OpenAI-compatible chat endpoint
// (OpenAI itself or Groq).
type Client struct {
	client   *openaigo.Client
	model    string
	encoding atomic.Pointer[tiktoken.Tiktoken]
	estimate func(text string) int
}

// NewClient constructs a chat-completion client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("LLM_API_KEY is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	oc := openaigo.DefaultConfig(cfg.APIKey)
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		oc.BaseURL = base
	}
	oc.HTTPClient = &http.Client{Timeout: timeout}

	c := &Client{
		client: openaigo.NewClientWithConfig(oc),
		model:  cfg.Model,
	}
	c.estimate = c.estimateTokens
	// The BPE ranks may be downloaded on first use, so they are loaded off
	// the request path. Until they arrive estimates are 0.
	go c.loadEncoding()
	return c, nil
}

// Generate issues one chat completion. Provider 429s are reported as
// llm.ErrRateLimited.
func (c *Client) Generate(ctx context.Context, req llm.Request) (llm.Result, error) {
	messages := make([]openaigo.ChatCompletionMessage, 0, 2)
	if strings.TrimSpace(req.System) != "" {
		messages = append(messages, openaigo.ChatCompletionMessage{
			Role:    openaigo.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openaigo.ChatCompletionMessage{
		Role:    openaigo.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	chatReq := openaigo.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
	}
	if req.JSONMode {
		chatReq.ResponseFormat = &openaigo.ChatCompletionResponseFormat{
			Type: openaigo.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return llm.Result{}, classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return llm.Result{}, fmt.Errorf("llm response missing choices")
	}

	content := resp.Choices[0].Message.Content
	model := resp.Model
	if model == "" {
		model = c.model
	}
	tokens := resp.Usage.TotalTokens
	if tokens <= 0 && c.estimate != nil {
		tokens = c.estimate(req.System+req.Prompt) + c.estimate(content)
	}

	telemetry.Info("llm.response", map[string]any{
		"model":       model,
		"tokens":      tokens,
		"json_mode":   req.JSONMode,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return llm.Result{Content: content, Model: model, TokensUsed: tokens}, nil
}

func classifyError(err error) error {
	var apiErr *openaigo.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", llm.ErrRateLimited, err)
	}
	var reqErr *openaigo.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", llm.ErrRateLimited, err)
	}
	return fmt.Errorf("llm request: %w", err)
}

// estimateTokens counts tokens locally when the provider omits usage.
// It yields 0 while the tokenizer is unavailable.
func (c *Client) estimateTokens(text string) int {
	if text == "" {
		return 0
	}
	enc := c.encoding.Load()
	if enc == nil {
		return 0
	}
	return len(enc.Encode(text, nil, nil))
}

func (c *Client) loadEncoding() {
	enc, err := tiktoken.EncodingForModel(c.model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
	}
	if err != nil {
		telemetry.Warn("llm.tokenizer_unavailable", map[string]any{"model": c.model, "err": err})
		return
	}
	c.encoding.Store(enc)
}

var _ llm.Provider = (*Client)(nil)
