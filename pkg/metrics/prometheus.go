// Package metrics provides Prometheus metrics for the platefinder service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Lookup pipeline
	lookups          *prometheus.CounterVec
	criteriaPerQuery prometheus.Histogram
	criteriaKeys     *prometheus.CounterVec
	matchesPerLookup prometheus.Histogram

	// Stores
	storeLatency       *prometheus.HistogramVec
	storeErrors        *prometheus.CounterVec
	restaurants        prometheus.Gauge
	restaurantsCreated prometheus.Counter

	// Audit trail
	auditAppends     prometheus.Counter
	auditFailures    *prometheus.CounterVec
	auditQueueSize   prometheus.Gauge
	auditQueueCap    prometheus.Gauge
	auditWorkerCount prometheus.Gauge

	// Identity
	authDecisions *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec
	rateLimited         prometheus.Counter
	panics              prometheus.Counter

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "platefinder",
		subsystem:        "service",
		histogramBuckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // flat list of collectors
	auto := promauto.With(m.registry)

	m.lookups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lookups_total",
		Help:      "Recommendation lookups by outcome",
	}, []string{"outcome"})

	m.criteriaPerQuery = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "criteria_per_query",
		Help:      "Number of criteria keys parsed from a query",
		Buckets:   []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
	})

	m.criteriaKeys = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "criteria_keys_total",
		Help:      "Criteria keys seen in parsed queries",
	}, []string{"key"})

	m.matchesPerLookup = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_per_lookup",
		Help:      "Number of restaurants returned by a successful lookup",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})

	m.storeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_latency_milliseconds",
		Help:      "Store call latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"store", "op"})

	m.storeErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_errors_total",
		Help:      "Failed store calls",
	}, []string{"store", "op"})

	m.restaurants = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "restaurants",
		Help:      "Restaurants held by the record store",
	})

	m.restaurantsCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "restaurants_created_total",
		Help:      "Restaurants created through the service",
	})

	m.auditAppends = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "audit_appends_total",
		Help:      "Audit entries written to the audit store",
	})

	m.auditFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "audit_failures_total",
		Help:      "Audit entries that could not be written",
	}, []string{"reason"})

	m.auditQueueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "audit_queue_size",
		Help:      "Audit entries waiting to be written",
	})

	m.auditQueueCap = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "audit_queue_capacity",
		Help:      "Capacity of the audit queue",
	})

	m.auditWorkerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "audit_workers",
		Help:      "Audit writer goroutines",
	})

	m.authDecisions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "auth_decisions_total",
		Help:      "Authorization decisions by result",
	}, []string{"result"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.httpErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_errors_total",
		Help:      "HTTP error responses by endpoint and error type",
	}, []string{"endpoint", "method", "error_type"})

	m.rateLimited = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the rate limiter",
	})

	m.panics = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "panic_recoveries_total",
		Help:      "Handler panics recovered by middleware",
	})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "Heap bytes allocated",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "Average GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordLookup counts a lookup by outcome (ok, empty_query, no_criteria, no_match, store_unavailable).
func RecordLookup(outcome string) {
	globalManager.lookups.WithLabelValues(outcome).Inc()
}

// RecordCriteria records the keys parsed from one query.
func RecordCriteria(keys []string) {
	globalManager.criteriaPerQuery.Observe(float64(len(keys)))
	for _, k := range keys {
		globalManager.criteriaKeys.WithLabelValues(k).Inc()
	}
}

// RecordMatches records the size of a successful result set.
func RecordMatches(n int) {
	globalManager.matchesPerLookup.Observe(float64(n))
}

// RecordStoreLatency records one store call.
func RecordStoreLatency(store, op string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(store, op).Observe(latencyMs)
}

// RecordStoreError counts a failed store call.
func RecordStoreError(store, op string) {
	globalManager.storeErrors.WithLabelValues(store, op).Inc()
}

// UpdateRestaurantCount sets the record store size.
func UpdateRestaurantCount(n int) {
	globalManager.restaurants.Set(float64(n))
}

// RecordRestaurantCreated counts a created restaurant.
func RecordRestaurantCreated() {
	globalManager.restaurantsCreated.Inc()
}

// RecordAuditAppend counts a persisted audit entry.
func RecordAuditAppend() {
	globalManager.auditAppends.Inc()
}

// RecordAuditFailure counts an audit entry that was dropped.
func RecordAuditFailure(reason string) {
	globalManager.auditFailures.WithLabelValues(reason).Inc()
}

// UpdateAuditQueueSize sets the audit backlog.
func UpdateAuditQueueSize(n int) {
	globalManager.auditQueueSize.Set(float64(n))
}

// UpdateAuditQueueCapacity sets the audit queue capacity.
func UpdateAuditQueueCapacity(n int) {
	globalManager.auditQueueCap.Set(float64(n))
}

// UpdateAuditWorkerCount sets the number of audit writers.
func UpdateAuditWorkerCount(n int) {
	globalManager.auditWorkerCount.Set(float64(n))
}

// RecordAuthDecision counts an authorization decision (allowed, denied).
func RecordAuthDecision(result string) {
	globalManager.authDecisions.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordHTTPError records an HTTP error response.
func RecordHTTPError(endpoint, method, errorType string) {
	globalManager.httpErrors.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordRateLimited counts a request rejected by the limiter.
func RecordRateLimited() {
	globalManager.rateLimited.Inc()
}

// RecordPanic counts a recovered handler panic.
func RecordPanic() {
	globalManager.panics.Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
