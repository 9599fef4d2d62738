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

// Metrics stores Prometheus collectors used by the poller and HTTP flows.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	fetchAttemptsTotal  *prometheus.CounterVec
	fetchDuration       *prometheus.HistogramVec
	rowsPersistedTotal  *prometheus.CounterVec
	persistFailedTotal  *prometheus.CounterVec
	cycleDuration       prometheus.Histogram
	feedsInflight       prometheus.Gauge
	outageRowsTotal     *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "transit_collector",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "transit_collector",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		fetchAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "transit_collector",
				Name:      "fetch_attempts_total",
				Help:      "Total number of feed fetch attempts grouped by feed and result.",
			},
			[]string{"feed", "result"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "transit_collector",
				Name:      "fetch_duration_seconds",
				Help:      "Feed fetch duration in seconds grouped by feed family.",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"family"},
		),
		rowsPersistedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "transit_collector",
				Name:      "rows_persisted_total",
				Help:      "Total number of normalized rows persisted grouped by record kind.",
			},
			[]string{"kind"},
		),
		persistFailedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "transit_collector",
				Name:      "persist_failures_total",
				Help:      "Total number of failed batch writes grouped by record kind.",
			},
			[]string{"kind"},
		),
		cycleDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "transit_collector",
				Name:      "cycle_duration_seconds",
				Help:      "Duration of one full poll cycle across all feeds.",
				Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
			},
		),
		feedsInflight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "transit_collector",
				Name:      "feeds_inflight",
				Help:      "Current number of feeds being ingested.",
			},
		),
		outageRowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "transit_collector",
				Name:      "outage_rows_total",
				Help:      "Total number of equipment outage and inventory rows persisted by feed.",
			},
			[]string{"feed"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.fetchAttemptsTotal,
		m.fetchDuration,
		m.rowsPersistedTotal,
		m.persistFailedTotal,
		m.cycleDuration,
		m.feedsInflight,
		m.outageRowsTotal,
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

func (m *Metrics) IncFetchAttempt(feed string, success bool) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	m.fetchAttemptsTotal.WithLabelValues(feed, result).Inc()
}

func (m *Metrics) ObserveFetchDuration(family string, duration time.Duration) {
	if m == nil {
		return
	}
	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.fetchDuration.WithLabelValues(normalizeLabel(family)).Observe(seconds)
}

func (m *Metrics) AddRowsPersisted(kind string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.rowsPersistedTotal.WithLabelValues(normalizeLabel(kind)).Add(float64(count))
}

func (m *Metrics) IncPersistFailure(kind string) {
	if m == nil {
		return
	}
	m.persistFailedTotal.WithLabelValues(normalizeLabel(kind)).Inc()
}

func (m *Metrics) ObserveCycleDuration(duration time.Duration) {
	if m == nil {
		return
	}
	m.cycleDuration.Observe(duration.Seconds())
}

func (m *Metrics) IncFeedsInflight() {
	if m == nil {
		return
	}
	m.feedsInflight.Inc()
}

func (m *Metrics) DecFeedsInflight() {
	if m == nil {
		return
	}
	m.feedsInflight.Dec()
}

func (m *Metrics) AddOutageRows(feed string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.outageRowsTotal.WithLabelValues(normalizeLabel(feed)).Add(float64(count))
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

func normalizeLabel(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
