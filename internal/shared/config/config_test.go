package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	if cfg.Port != "8080" {
		t.Fatalf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.Env != "dev" {
		t.Fatalf("expected env dev, got %q", cfg.Env)
	}
	if cfg.LLMProvider != "groq" {
		t.Fatalf("expected groq provider, got %q", cfg.LLMProvider)
	}
	if cfg.AIMaxAttempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", cfg.AIMaxAttempts)
	}
	if cfg.AIRetryDelay != time.Second {
		t.Fatalf("expected 1s retry delay, got %s", cfg.AIRetryDelay)
	}
	if cfg.ObjectStoreType != "local" {
		t.Fatalf("expected local store, got %q", cfg.ObjectStoreType)
	}
}

func TestFromViperProviderKeyFallback(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("LLM_PROVIDER", "OpenAI")
	v.Set("OPENAI_API_KEY", " sk-test ")
	v.Set("GROQ_API_KEY", "gsk-ignored")

	cfg := fromViper(v)

	if cfg.LLMProvider != "openai" {
		t.Fatalf("expected openai, got %q", cfg.LLMProvider)
	}
	if cfg.LLMAPIKey != "sk-test" {
		t.Fatalf("expected openai key, got %q", cfg.LLMAPIKey)
	}

	v.Set("LLM_API_KEY", "explicit")
	if got := fromViper(v).LLMAPIKey; got != "explicit" {
		t.Fatalf("expected explicit key to win, got %q", got)
	}
}

func TestNormalizeEnv(t *testing.T) {
	tests := map[string]string{
		"prod":       "production",
		" Staging ":  "staging",
		"local":      "local",
		"":           "dev",
		"whatever":   "dev",
		"production": "production",
	}
	for in, want := range tests {
		if got := normalizeEnv(in); got != want {
			t.Fatalf("normalizeEnv(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := splitAndTrim(" http://a.test, ,http://b.test ")
	if len(got) != 2 || got[0] != "http://a.test" || got[1] != "http://b.test" {
		t.Fatalf("unexpected origins: %#v", got)
	}
}
