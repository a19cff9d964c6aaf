// Package prometheus serves /metrics and instruments the HTTP surface.
package prometheus

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handler struct {
	registry *prometheus.Registry
	inFlight prometheus.Gauge
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	size     *prometheus.HistogramVec
}

func New(prefix string, registry *prometheus.Registry) *Handler {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	f := promauto.With(registry)
	labels := []string{"method", "route", "code"}

	return &Handler{
		registry: registry,
		inFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: prefix,
			Name:      "http_requests_in_flight",
			Help:      "Requests currently being served.",
		}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: prefix,
			Name:      "http_requests_total",
			Help:      "Requests served, by route template and status code.",
		}, labels),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: prefix,
			Name:      "http_request_duration_seconds",
			Help:      "Request latency.",
			// Upload and today-list requests dominate the tail.
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, labels),
		size: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: prefix,
			Name:      "http_response_size_bytes",
			Help:      "Response body size.",
			Buckets:   prometheus.ExponentialBuckets(128, 4, 8),
		}, []string{"route"}),
	}
}

// Middleware labels by route template so ids in the path do not explode
// cardinality.
func (h *Handler) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.inFlight.Inc()
		start := time.Now()
		defer h.inFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		code := strconv.Itoa(c.Writer.Status())
		h.requests.WithLabelValues(c.Request.Method, route, code).Inc()
		h.duration.WithLabelValues(c.Request.Method, route, code).Observe(time.Since(start).Seconds())
		if n := c.Writer.Size(); n > 0 {
			h.size.WithLabelValues(route).Observe(float64(n))
		}
	}
}

func (h *Handler) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{
		Registry:          h.registry,
		EnableOpenMetrics: true,
	}))
}
