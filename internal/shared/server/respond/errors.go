package respond

import (
	"github.com/gin-gonic/gin"

	"velox-backend/internal/shared/telemetry"
)

// Error sends the standard `{"error": message}` body and aborts the chain.
func Error(c *gin.Context, status int, message string) {
	ErrorWith(c, status, message, nil)
}

// ErrorWith is Error with additional top-level fields merged into the body.
// The "error" key always carries message.
func ErrorWith(c *gin.Context, status int, message string, extra gin.H) {
	fields := map[string]any{
		"status":     status,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	if status >= 500 {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Info("http.error", fields)
	}

	body := gin.H{}
	for k, v := range extra {
		body[k] = v
	}
	body["error"] = message
	c.AbortWithStatusJSON(status, body)
}
