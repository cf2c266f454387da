package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"velox-backend/internal/ai"
	"velox-backend/internal/services/health"
	"velox-backend/internal/shared/auth"
	"velox-backend/internal/shared/config"
	"velox-backend/internal/shared/metrics"
	"velox-backend/internal/shared/server/middleware"
	"velox-backend/internal/shared/server/respond"
)

const aiRateLimitGroup = "AI"

// RouterDeps are the handlers and infrastructure the router mounts.
type RouterDeps struct {
	Config    config.Config
	AI        *ai.Handler
	Health    *health.Service
	Verifier  *auth.Verifier
	Limiter   middleware.Limiter
	RateRules map[string]middleware.RateLimitRule
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	limiter := deps.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(nil)
	}
	rules := deps.RateRules
	if rules == nil {
		rules = DefaultRateRules(deps.Config)
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(middleware.AuthConfig{
			Verifier:            deps.Verifier,
			AllowHeaderIdentity: !deps.Config.IsProduction(),
			PublicPrefixes:      []string{"/api/health", "/metrics"},
		}),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    rules,
			Limiter:  limiter,
			GroupFor: groupFor,
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		status := deps.Health.Check(c.Request.Context())
		code := http.StatusOK
		if !status.OK {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	})
	registerMeRoutes(api)

	if deps.AI != nil {
		aiGroup := api.Group("/ai")
		deps.AI.RegisterRoutes(aiGroup)
		if !deps.Config.IsProduction() {
			deps.AI.RegisterDevRoutes(aiGroup.Group("/dev"))
		}
	}

	return r
}

// DefaultRateRules gives generation calls the configured budget and
// everything else four times as much.
func DefaultRateRules(cfg config.Config) map[string]middleware.RateLimitRule {
	rate := cfg.RateLimitRate
	if rate <= 0 {
		rate = 0.5
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 10
	}
	return map[string]middleware.RateLimitRule{
		aiRateLimitGroup: {Rate: rate, Burst: burst},
		"DEFAULT":        {Rate: rate * 4, Burst: burst * 4},
	}
}

func groupFor(c *gin.Context) string {
	if c.Request.Method == http.MethodPost && strings.HasPrefix(c.Request.URL.Path, "/api/ai/") {
		return aiRateLimitGroup
	}
	return ""
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
