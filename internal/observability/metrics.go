package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dispatch_console"

// Cache lookup outcomes recorded by IncStatsCache.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Metrics stores Prometheus collectors used by the API and analytics flows.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDuration        *prometheus.HistogramVec
	statsComputationsTotal     *prometheus.CounterVec
	statsComputeDuration       *prometheus.HistogramVec
	statsRecordsProcessed      *prometheus.HistogramVec
	statsCacheTotal            *prometheus.CounterVec
	applicationOperationsTotal *prometheus.CounterVec
	loginAttemptsTotal         *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		statsComputationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stats_computations_total",
				Help:      "Total number of analytics views computed from the notification log.",
			},
			[]string{"view"},
		),
		statsComputeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stats_compute_duration_seconds",
				Help:      "Time spent loading and aggregating the notification log per view.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
			},
			[]string{"view"},
		),
		statsRecordsProcessed: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stats_records_processed",
				Help:      "Number of notification records fed into a single aggregation.",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
			},
			[]string{"view"},
		),
		statsCacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stats_cache_total",
				Help:      "Stats cache lookups grouped by view and result.",
			},
			[]string{"view", "result"},
		),
		applicationOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "application_operations_total",
				Help:      "Credential management operations grouped by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
		loginAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "admin_login_attempts_total",
				Help:      "Admin login attempts grouped by outcome.",
			},
			[]string{"outcome"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.statsComputationsTotal,
		m.statsComputeDuration,
		m.statsRecordsProcessed,
		m.statsCacheTotal,
		m.applicationOperationsTotal,
		m.loginAttemptsTotal,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

// ObserveStatsComputation records one aggregation over records rows.
func (m *Metrics) ObserveStatsComputation(view string, records int, duration time.Duration) {
	if m == nil {
		return
	}
	label := normalizeLabel(view)
	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	if records < 0 {
		records = 0
	}
	m.statsComputationsTotal.WithLabelValues(label).Inc()
	m.statsComputeDuration.WithLabelValues(label).Observe(seconds)
	m.statsRecordsProcessed.WithLabelValues(label).Observe(float64(records))
}

func (m *Metrics) IncStatsCache(view string, result string) {
	if m == nil {
		return
	}
	m.statsCacheTotal.WithLabelValues(normalizeLabel(view), normalizeLabel(result)).Inc()
}

func (m *Metrics) IncApplicationOperation(operation string, err error) {
	if m == nil {
		return
	}
	m.applicationOperationsTotal.WithLabelValues(normalizeLabel(operation), outcomeLabel(err)).Inc()
}

func (m *Metrics) IncLoginAttempt(outcome string) {
	if m == nil {
		return
	}
	m.loginAttemptsTotal.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}

func outcomeLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func normalizeLabel(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
