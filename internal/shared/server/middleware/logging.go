package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"job-selector/internal/shared/telemetry"
)

// Context keys handlers may set to enrich the request log line.
const (
	ResumeIDKey = "resumeId"
	LLMStepKey  = "llmStep"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"user_id":     UserIDFromContext(c),
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if resumeID := c.GetString(ResumeIDKey); resumeID != "" {
			fields["resume_id"] = resumeID
		}
		if step := c.GetString(LLMStepKey); step != "" {
			fields["llm_step"] = step
		}
		if fields["path"] == "" {
			fields["path"] = c.Request.URL.Path
		}
		telemetry.Info("request.complete", fields)
	}
}
