package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	googleauth "placement-backend/internal/auth"
	"placement-backend/internal/dashboard"
	"placement-backend/internal/shared/config"
	"placement-backend/internal/shared/metrics"
	"placement-backend/internal/shared/server/middleware"
	"placement-backend/internal/shared/server/respond"
)

// RouterDeps carries the handlers mounted on the API group.
type RouterDeps struct {
	Config           config.Config
	DashboardHandler *dashboard.Handler
	GoogleAuth       *googleauth.GoogleService
	RateLimiter      *middleware.RateLimiter
}

// rateLimitGroupPublic has no rule, so its routes are never throttled.
const rateLimitGroupPublic = "PUBLIC"

// computeRoutes run the analyzers or the automation flow.
var computeRoutes = map[string]struct{}{
	"POST /api/v1/jobs/:id/save":          {},
	"POST /api/v1/jd/analyze":             {},
	"POST /api/v1/resumes/:id/optimize":   {},
	"POST /api/v1/resumes/:id/export":     {},
	"POST /api/v1/notifications/generate": {},
	"GET /api/v1/resumes/:id/ats":         {},
	"GET /api/v1/readiness":               {},
	"GET /api/v1/dashboard":               {},
	"GET /api/v1/jobs/trends":             {},
	"GET /api/v1/applications/next-steps": {},
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	r := gin.New()

	rps := cfg.RateLimitRPS
	if rps <= 0 {
		rps = 5
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 20
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.Metrics(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Auth(cfg.Env),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				middleware.RateLimitGroupDefault: {Rate: rps * 4, Burst: burst * 2},
				middleware.RateLimitGroupCompute: {Rate: rps, Burst: burst},
			},
			GroupFor: rateLimitGroup,
			Limiter:  deps.RateLimiter,
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.DashboardHandler != nil {
		deps.DashboardHandler.RegisterRoutes(api)
	}

	return r
}

func rateLimitGroup(c *gin.Context) string {
	path := c.FullPath()
	if strings.HasPrefix(path, "/metrics") || path == "/api/v1/health" {
		return rateLimitGroupPublic
	}
	if _, ok := computeRoutes[c.Request.Method+" "+path]; ok {
		return middleware.RateLimitGroupCompute
	}
	return middleware.RateLimitGroupDefault
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
