package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placement-backend/internal/shared/telemetry"
)

func TestLoggingIncludesRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	restore := telemetry.SetOutput(&buf)
	defer restore()

	router := gin.New()
	router.Use(RequestID(), Auth("dev"), Logging())
	router.POST("/api/v1/jobs/:id/save", func(c *gin.Context) {
		c.Set(LogJobIDKey, c.Param("id"))
		c.Set(LogTraceIDKey, "trace-1")
		c.JSON(http.StatusAccepted, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs/job-9/save", nil)
	req.Header.Set("X-Guest-Id", "guest1")
	req.Header.Set("X-Request-Id", "req-123")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, "req-123", resp.Header().Get("X-Request-Id"))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &payload))

	assert.Equal(t, "request.complete", payload["msg"])
	assert.Equal(t, "req-123", payload["request_id"])
	assert.Equal(t, "guest:guest1", payload["user_id"])
	assert.Equal(t, "job-9", payload["job_id"])
	assert.Equal(t, "trace-1", payload["trace_id"])
	assert.Equal(t, "/api/v1/jobs/:id/save", payload["route"])
	assert.Equal(t, float64(http.StatusAccepted), payload["status"])
	assert.Contains(t, payload, "duration_ms")
}

func TestRequestIDGeneratedWhenMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, RequestIDFromContext(c))
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.NotEmpty(t, resp.Body.String())
	assert.Equal(t, resp.Body.String(), resp.Header().Get("X-Request-Id"))
}

func TestRecoveryReturnsEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	restore := telemetry.SetOutput(&buf)
	defer restore()

	router := gin.New()
	router.Use(RequestID(), Recovery())
	router.GET("/boom", func(c *gin.Context) {
		panic("kaboom")
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Body.String(), `"code":"internal_error"`)
	assert.Contains(t, buf.String(), "http.panic")
}
