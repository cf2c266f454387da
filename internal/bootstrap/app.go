package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"velox-backend/internal/ai"
	"velox-backend/internal/cvarchive"
	"velox-backend/internal/generation"
	"velox-backend/internal/generationlog"
	"velox-backend/internal/llm"
	openai "velox-backend/internal/llm/openai"
	"velox-backend/internal/pdftext"
	"velox-backend/internal/services/health"
	"velox-backend/internal/shared/auth"
	"velox-backend/internal/shared/config"
	"velox-backend/internal/shared/server"
	"velox-backend/internal/shared/server/middleware"
	"velox-backend/internal/shared/storage/db"
	"velox-backend/internal/shared/storage/object"
	localstore "velox-backend/internal/shared/storage/object/local"
	s3store "velox-backend/internal/shared/storage/object/s3"
	"velox-backend/internal/shared/telemetry"
	"velox-backend/internal/usage"
)

// App holds the wired dependencies of the API process.
type App struct {
	Config   config.Config
	Router   *gin.Engine
	DB       *sql.DB
	Redis    redis.UniversalClient
	Store    object.Store
	Provider llm.Provider

	UsageService  *usage.Service
	GenerationLog *generationlog.Logger
	Generation    *generation.Service
	AIHandler     *ai.Handler
}

// Options lets tests swap infrastructure that would otherwise come from
// config.
type Options struct {
	Provider llm.Provider
	Parser   pdftext.Parser
	Limiter  middleware.Limiter
}

// Build wires the application from cfg.
func Build(cfg config.Config) (*App, error) {
	return BuildWith(context.Background(), cfg, Options{})
}

// BuildWith is Build with overrides.
func BuildWith(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	provider := opts.Provider
	if provider == nil {
		provider, err = buildProvider(cfg)
		if err != nil {
			return nil, err
		}
	}

	verifier, err := auth.NewVerifier(cfg.JWTSecret, cfg.IsProduction())
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, DB: sqlDB, Provider: provider}

	if sqlDB != nil {
		app.UsageService = usage.NewPostgresService(sqlDB, cfg.AIWeeklyLimit, nil)
		app.GenerationLog = generationlog.NewLogger(&generationlog.PGRepo{DB: sqlDB})
	} else {
		app.UsageService = usage.NewService(cfg.AIWeeklyLimit, nil)
		app.GenerationLog = generationlog.NewLogger(generationlog.NewMemoryRepo())
	}

	retrier := generation.NewRetrier(provider, cfg.AIMaxAttempts, cfg.AIRetryDelay)
	app.Generation, err = generation.NewService(retrier, app.UsageService, app.GenerationLog)
	if err != nil {
		return nil, fmt.Errorf("build generation service: %w", err)
	}

	app.AIHandler = ai.NewHandler(app.Generation, opts.Parser, app.UsageService, app.GenerationLog)
	app.AIHandler.Production = cfg.IsProduction()
	if cfg.CVArchiveEnabled {
		store, err := buildStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		app.Store = store
		app.AIHandler.Archive = cvarchive.New(store)
	}

	limiter := opts.Limiter
	if limiter == nil {
		limiter, app.Redis, err = buildLimiter(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:   cfg,
		AI:       app.AIHandler,
		Health:   health.NewService(sqlDB),
		Verifier: verifier,
		Limiter:  limiter,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":          cfg.Env,
		"llm_provider": cfg.LLMProvider,
		"llm_model":    cfg.LLMModel,
		"database":     sqlDB != nil,
		"redis":        app.Redis != nil,
		"cv_archive":   app.Store != nil,
	})
	return app, nil
}

// Close releases pooled connections.
func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database_disabled", map[string]any{"reason": "DATABASE_URL empty; using in-memory repositories"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database_connect_failed", map[string]any{"err": err})
			return nil, nil
		}
		return nil, err
	}

	if isDevLike(cfg.Env) {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			telemetry.Warn("bootstrap.migrations_failed", map[string]any{"err": err})
			_ = sqlDB.Close()
			return nil, nil
		}
	}
	return sqlDB, nil
}

func buildProvider(cfg config.Config) (llm.Provider, error) {
	if cfg.LLMProvider == "placeholder" || strings.TrimSpace(cfg.LLMAPIKey) == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("LLM API key is required in production")
		}
		telemetry.Warn("bootstrap.llm_placeholder", map[string]any{"provider": cfg.LLMProvider})
		return llm.PlaceholderProvider{}, nil
	}

	baseURL := strings.TrimSpace(cfg.LLMBaseURL)
	if baseURL == "" && cfg.LLMProvider == "groq" {
		baseURL = openai.GroqBaseURL
	}
	return openai.NewClient(openai.Config{
		APIKey:  cfg.LLMAPIKey,
		Model:   cfg.LLMModel,
		BaseURL: baseURL,
		Timeout: cfg.LLMTimeout,
	})
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// buildLimiter prefers a shared Redis window so limits hold across
// replicas. Without REDIS_URL each process limits on its own.
func buildLimiter(ctx context.Context, cfg config.Config) (middleware.Limiter, redis.UniversalClient, error) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return middleware.NewRateLimiter(nil), nil, nil
	}
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(redisOpts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.redis_unreachable", map[string]any{"err": err})
			return middleware.NewRateLimiter(nil), nil, nil
		}
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	return middleware.NewRedisRateLimiter(rdb, nil), rdb, nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "test":
		return true
	default:
		return false
	}
}
