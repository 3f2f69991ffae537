package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPMetrics records request counts and latencies per route.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	upserts  *prometheus.CounterVec
	signups  prometheus.Counter
}

// NewHTTPMetrics registers the HTTP metrics on the provided registerer.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payroll_http_requests_total",
		Help: "HTTP requests handled, by route and status.",
	}, []string{"method", "route", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payroll_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	upserts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payroll_record_upserts_total",
		Help: "Payroll record writes, by resulting status.",
	}, []string{"status"})
	signups := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payroll_registrations_total",
		Help: "Self service sign ups.",
	})
	reg.MustRegister(requests, duration, upserts, signups)
	return &HTTPMetrics{requests: requests, duration: duration, upserts: upserts, signups: signups}
}

// Middleware observes every request that reaches the router.
func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m == nil || m.requests == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// IncUpsert counts a successful payroll write.
func (m *HTTPMetrics) IncUpsert(status string) {
	if m == nil || m.upserts == nil {
		return
	}
	if status == "" {
		status = "unknown"
	}
	m.upserts.WithLabelValues(status).Inc()
}

// IncRegistration counts a stored sign up.
func (m *HTTPMetrics) IncRegistration() {
	if m == nil || m.signups == nil {
		return
	}
	m.signups.Inc()
}

// MetricsHandler exposes the gatherer in the Prometheus text format.
func MetricsHandler(gatherer prometheus.Gatherer) gin.HandlerFunc {
	handler := promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
	return gin.WrapH(handler)
}
