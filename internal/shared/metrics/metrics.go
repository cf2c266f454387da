package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "velox"

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	generationAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ai",
			Name:      "generation_attempts_total",
			Help:      "Provider calls made by the retry driver, by outcome.",
		},
		[]string{"task", "outcome"},
	)

	generationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ai",
			Name:      "generations_total",
			Help:      "Completed generation requests, by final status.",
		},
		[]string{"task", "status"},
	)

	generationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ai",
			Name:      "generation_duration_seconds",
			Help:      "End-to-end generation duration including retries.",
			Buckets:   []float64{.25, .5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"task"},
	)

	generationTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ai",
			Name:      "tokens_total",
			Help:      "Tokens consumed by accepted generations.",
		},
		[]string{"task", "model"},
	)

	pdfParsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pdf",
			Name:      "parses_total",
			Help:      "PDF text extractions, by status.",
		},
		[]string{"status"},
	)
)

// ObserveHTTP records one completed HTTP request.
func ObserveHTTP(method, path, status string, seconds float64) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

// IncGenerationAttempt counts a single provider attempt.
func IncGenerationAttempt(task, outcome string) {
	generationAttemptsTotal.WithLabelValues(task, outcome).Inc()
}

// ObserveGeneration records the final status and duration of a generation.
func ObserveGeneration(task, status string, seconds float64) {
	generationsTotal.WithLabelValues(task, status).Inc()
	generationDuration.WithLabelValues(task).Observe(seconds)
}

// AddTokens adds consumed tokens for an accepted generation.
func AddTokens(task, model string, tokens int) {
	if tokens <= 0 {
		return
	}
	generationTokensTotal.WithLabelValues(task, model).Add(float64(tokens))
}

// IncPDFParse counts a PDF extraction outcome.
func IncPDFParse(status string) {
	pdfParsesTotal.WithLabelValues(status).Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
