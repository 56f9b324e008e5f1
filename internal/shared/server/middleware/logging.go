package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"placement-backend/internal/shared/telemetry"
)

// Context keys handlers may set to enrich the access log.
const (
	LogJobIDKey    = "jobId"
	LogResumeIDKey = "resumeId"
	LogTraceIDKey  = "traceId"
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

		isGuest, _ := c.Get(isGuestKey)
		telemetry.Info("request.complete", map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"user_id":     UserIDFromContext(c),
			"job_id":      c.GetString(LogJobIDKey),
			"resume_id":   c.GetString(LogResumeIDKey),
			"trace_id":    c.GetString(LogTraceIDKey),
			"is_guest":    isGuest,
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		})
	}
}
