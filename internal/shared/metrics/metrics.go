package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestDuration = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
			Objectives: map[float64]float64{
				0.5:  0.05,
				0.9:  0.01,
				0.95: 0.005,
				0.99: 0.001,
			},
		},
		[]string{"method", "path", "status_code"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	flowRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placement_flow_runs_total",
			Help: "Job application flow runs by result",
		},
		[]string{"result"},
	)

	flowDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "placement_flow_duration_seconds",
			Help:    "Job application flow duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	notificationsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placement_notifications_generated_total",
			Help: "Contextual notifications generated by type",
		},
		[]string{"type"},
	)

	sweepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placement_nudge_sweeps_total",
			Help: "Nudge scheduler sweeps by result",
		},
		[]string{"result"},
	)

	rateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placement_rate_limited_total",
			Help: "Requests rejected by the rate limiter by group",
		},
		[]string{"group"},
	)

	queueMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "placement_queue_messages_total",
			Help: "Job-saved queue messages by backend and result",
		},
		[]string{"backend", "result"},
	)
)

// ObserveHTTP records one served request.
func ObserveHTTP(method, path, statusCode string, d time.Duration) {
	httpRequestDuration.WithLabelValues(method, path, statusCode).Observe(d.Seconds())
	httpRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
}

// ObserveFlow records a flow run with result "ok", "skipped" or "error".
func ObserveFlow(result string, d time.Duration) {
	flowRunsTotal.WithLabelValues(result).Inc()
	if result == "ok" {
		flowDuration.Observe(d.Seconds())
	}
}

func IncNotification(kind string) {
	notificationsGenerated.WithLabelValues(kind).Inc()
}

func IncSweep(result string) {
	sweepsTotal.WithLabelValues(result).Inc()
}

func IncQueueMessage(backend, result string) {
	queueMessagesTotal.WithLabelValues(backend, result).Inc()
}

func IncRateLimited(group string) {
	rateLimitedTotal.WithLabelValues(group).Inc()
}

// Handler exposes the default registry in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
