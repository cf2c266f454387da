package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	LogLevel        string
	CORSAllowOrigin []string
	DatabaseURL     string
	JWTSecret       string
	RedisURL        string

	LLMProvider string
	LLMModel    string
	LLMAPIKey   string
	LLMBaseURL  string
	LLMTimeout  time.Duration

	AIMaxAttempts int
	AIRetryDelay  time.Duration
	AIWeeklyLimit int

	RateLimitRate  float64
	RateLimitBurst int

	ObjectStoreType  string
	LocalStoreDir    string
	AWSRegion        string
	S3Bucket         string
	S3Prefix         string
	SSEKMSKeyID      string
	CVArchiveEnabled bool
}

// Load reads configuration from an optional config.yaml and environment
// variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Printf("config: read config file: %v", err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOW_ORIGINS", "http://localhost:3000")
	v.SetDefault("LLM_PROVIDER", "groq")
	v.SetDefault("LLM_MODEL", "llama-3.3-70b-versatile")
	v.SetDefault("LLM_TIMEOUT", "60s")
	v.SetDefault("AI_MAX_ATTEMPTS", 3)
	v.SetDefault("AI_RETRY_DELAY", "1s")
	v.SetDefault("AI_WEEKLY_LIMIT", 50)
	v.SetDefault("RATE_LIMIT_RATE", 0.5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("OBJECT_STORE", "local")
	v.SetDefault("LOCAL_STORE_DIR", "./data")
	v.SetDefault("CV_ARCHIVE_ENABLED", false)
}

func fromViper(v *viper.Viper) Config {
	env := normalizeEnv(v.GetString("ENV"))
	dbURL := v.GetString("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	provider := normalizeProvider(v.GetString("LLM_PROVIDER"))
	return Config{
		Port:            v.GetString("PORT"),
		Env:             env,
		LogLevel:        strings.ToLower(strings.TrimSpace(v.GetString("LOG_LEVEL"))),
		CORSAllowOrigin: splitAndTrim(v.GetString("CORS_ALLOW_ORIGINS")),
		DatabaseURL:     dbURL,
		JWTSecret:       v.GetString("JWT_SECRET"),
		RedisURL:        v.GetString("REDIS_URL"),

		LLMProvider: provider,
		LLMModel:    v.GetString("LLM_MODEL"),
		LLMAPIKey:   apiKeyFor(v, provider),
		LLMBaseURL:  v.GetString("LLM_BASE_URL"),
		LLMTimeout:  v.GetDuration("LLM_TIMEOUT"),

		AIMaxAttempts: v.GetInt("AI_MAX_ATTEMPTS"),
		AIRetryDelay:  v.GetDuration("AI_RETRY_DELAY"),
		AIWeeklyLimit: v.GetInt("AI_WEEKLY_LIMIT"),

		RateLimitRate:  v.GetFloat64("RATE_LIMIT_RATE"),
		RateLimitBurst: v.GetInt("RATE_LIMIT_BURST"),

		ObjectStoreType:  normalizeStoreType(v.GetString("OBJECT_STORE")),
		LocalStoreDir:    v.GetString("LOCAL_STORE_DIR"),
		AWSRegion:        v.GetString("AWS_REGION"),
		S3Bucket:         v.GetString("S3_BUCKET"),
		S3Prefix:         v.GetString("S3_PREFIX"),
		SSEKMSKeyID:      v.GetString("SSE_KMS_KEY_ID"),
		CVArchiveEnabled: v.GetBool("CV_ARCHIVE_ENABLED"),
	}
}

// IsProduction reports whether the config targets production.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// apiKeyFor prefers LLM_API_KEY and falls back to the provider's own variable.
func apiKeyFor(v *viper.Viper, provider string) string {
	if key := strings.TrimSpace(v.GetString("LLM_API_KEY")); key != "" {
		return key
	}
	switch provider {
	case "groq":
		return strings.TrimSpace(v.GetString("GROQ_API_KEY"))
	case "openai":
		return strings.TrimSpace(v.GetString("OPENAI_API_KEY"))
	default:
		return ""
	}
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "test":
		return "test"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	case "placeholder", "none":
		return "placeholder"
	default:
		return "groq"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
