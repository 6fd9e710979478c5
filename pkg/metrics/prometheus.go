// Package metrics provides Prometheus metrics for the shelf API.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Label values shared with callers.
const (
	BookFound   = "found"
	BookMissing = "missing"

	UpstreamOK          = "ok"
	UpstreamBadRequest  = "bad_request"
	UpstreamBadStatus   = "bad_status"
	UpstreamUnreachable = "unreachable"
	UpstreamTimeout     = "timeout"
	UpstreamBadPayload  = "bad_payload"
)

// Manager manages all Prometheus metrics for the shelf service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
	abortsByCode        *prometheus.CounterVec
	panicsRecovered     prometheus.Counter

	// Domain Metrics
	bookLookups     *prometheus.CounterVec
	fixtureBooks    prometheus.Gauge
	upstreamCalls   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec

	// System Metrics
	memoryUsage    prometheus.Gauge
	goroutineCount prometheus.Gauge
	gcPauseTime    prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "shelf",
		subsystem:        "api",
		histogramBuckets: []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		enabled:          true,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // flat list of collector definitions
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests by route pattern, method and status",
			ConstLabels: m.constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_request_duration_milliseconds",
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: m.constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "errors_by_type_total",
			Help:        "Total number of error responses by type and severity",
			ConstLabels: m.constLabels,
		},
		[]string{"error_type", "severity"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "errors_by_endpoint_total",
			Help:        "Total number of error responses by route pattern",
			ConstLabels: m.constLabels,
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.abortsByCode = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "aborts_total",
			Help:        "Requests short-circuited to a status code error handler",
			ConstLabels: m.constLabels,
		},
		[]string{"status_code"},
	)

	m.panicsRecovered = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "panics_recovered_total",
		Help:        "Handler panics converted into 500 responses",
		ConstLabels: m.constLabels,
	})

	m.bookLookups = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "book_lookups_total",
			Help:        "Fixture table lookups by result",
			ConstLabels: m.constLabels,
		},
		[]string{"result"},
	)

	m.fixtureBooks = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "fixture_books",
		Help:        "Number of books seeded into the fixture table",
		ConstLabels: m.constLabels,
	})

	m.upstreamCalls = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "upstream_requests_total",
			Help:        "Outbound calls to third-party services by outcome",
			ConstLabels: m.constLabels,
		},
		[]string{"upstream", "outcome"},
	)

	m.upstreamLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "upstream_request_duration_milliseconds",
			Help:        "Outbound call latency in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: m.constLabels,
		},
		[]string{"upstream", "outcome"},
	)

	m.memoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "memory_usage_bytes",
		Help:        "Heap bytes allocated",
		ConstLabels: m.constLabels,
	})

	m.goroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "goroutines",
		Help:        "Number of live goroutines",
		ConstLabels: m.constLabels,
	})

	m.gcPauseTime = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        "gc_pause_milliseconds",
		Help:        "Average GC pause in milliseconds",
		ConstLabels: m.constLabels,
	})
}

// RecordHTTPRequest records an HTTP request and its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method string, statusCode int, durationMs float64) {
	if !m.enabled {
		return
	}
	code := strconv.Itoa(statusCode)
	m.httpRequests.WithLabelValues(endpoint, method, code).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, code).Observe(durationMs)
}

// RecordError records an error response for an endpoint.
func (m *Manager) RecordError(endpoint, method, errorType, severity string) {
	if !m.enabled {
		return
	}
	m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	m.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordAbort counts an explicit abort to a status code handler.
func (m *Manager) RecordAbort(statusCode int) {
	if !m.enabled {
		return
	}
	m.abortsByCode.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordPanic counts a recovered handler panic.
func (m *Manager) RecordPanic() {
	if !m.enabled {
		return
	}
	m.panicsRecovered.Inc()
}

// RecordBookLookup counts a fixture lookup; result is BookFound or BookMissing.
func (m *Manager) RecordBookLookup(result string) {
	if !m.enabled {
		return
	}
	m.bookLookups.WithLabelValues(result).Inc()
}

// SetFixtureBooks publishes the fixture table size.
func (m *Manager) SetFixtureBooks(count int) {
	if !m.enabled {
		return
	}
	m.fixtureBooks.Set(float64(count))
}

// RecordUpstream records an outbound call's outcome and latency.
func (m *Manager) RecordUpstream(upstream, outcome string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.upstreamCalls.WithLabelValues(upstream, outcome).Inc()
	m.upstreamLatency.WithLabelValues(upstream, outcome).Observe(durationMs)
}

// UpdateSystemMetrics publishes runtime memory, goroutine and GC figures.
func (m *Manager) UpdateSystemMetrics(allocBytes uint64, goroutines int, avgGCPauseMs float64) {
	if !m.enabled {
		return
	}
	m.memoryUsage.Set(float64(allocBytes))
	m.goroutineCount.Set(float64(goroutines))
	m.gcPauseTime.Set(avgGCPauseMs)
}

// RecordHTTPRequest records an HTTP request on the global manager.
func RecordHTTPRequest(endpoint, method string, statusCode int, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordError records an error response on the global manager.
func RecordError(endpoint, method, errorType, severity string) {
	globalManager.RecordError(endpoint, method, errorType, severity)
}

// RecordAbort counts an abort on the global manager.
func RecordAbort(statusCode int) {
	globalManager.RecordAbort(statusCode)
}

// RecordPanic counts a recovered panic on the global manager.
func RecordPanic() {
	globalManager.RecordPanic()
}

// RecordBookLookup counts a fixture lookup on the global manager.
func RecordBookLookup(result string) {
	globalManager.RecordBookLookup(result)
}

// SetFixtureBooks publishes the fixture table size on the global manager.
func SetFixtureBooks(count int) {
	globalManager.SetFixtureBooks(count)
}

// RecordUpstream records an outbound call on the global manager.
func RecordUpstream(upstream, outcome string, durationMs float64) {
	globalManager.RecordUpstream(upstream, outcome, durationMs)
}

// UpdateSystemMetrics publishes runtime figures on the global manager.
func UpdateSystemMetrics(allocBytes uint64, goroutines int, avgGCPauseMs float64) {
	globalManager.UpdateSystemMetrics(allocBytes, goroutines, avgGCPauseMs)
}

// GetRegistry returns the custom registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Handler exposes the custom registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(customRegistry, promhttp.HandlerOpts{})
}
