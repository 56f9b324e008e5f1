package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"placement-backend/internal/shared/metrics"
)

// Metrics records request duration and count per route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		metrics.ObserveHTTP(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
