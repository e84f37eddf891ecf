// Package metrics provides Prometheus metrics for the fastbreak simulation service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the fastbreak service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Core Business Metrics - What really matters for a simulation engine
	runsStarted      prometheus.Counter
	runsCompleted    prometheus.Counter
	runsCancelled    prometheus.Counter
	runsFailed       prometheus.Counter
	seasonsSimulated prometheus.Counter
	gamesSimulated   prometheus.Counter

	// Operational Health Metrics
	activeRuns prometheus.Gauge

	// Duration Metrics - Where simulation time goes
	matrixBuildDuration prometheus.Histogram
	seasonDuration      prometheus.Histogram
	runDuration         prometheus.Histogram

	// Store Metrics - Persistence performance and scale
	storeQueryDuration prometheus.Histogram
	storeWriteDuration prometheus.Histogram
	storedTeams        prometheus.Gauge
	storedTransitions  prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Enhanced Error Metrics - Detailed error tracking
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "fastbreak",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Core Business Metrics - Focus on what drives business value
	m.runsStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_started_total",
		Help:      "Total number of simulation runs started",
	})

	m.runsCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_completed_total",
		Help:      "Total number of simulation runs that played every season",
	})

	m.runsCancelled = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_cancelled_total",
		Help:      "Total number of simulation runs stopped before completion",
	})

	m.runsFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_failed_total",
		Help:      "Total number of simulation runs that failed to build",
	})

	m.seasonsSimulated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "seasons_simulated_total",
		Help:      "Total number of seasons simulated",
	})

	m.gamesSimulated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "games_simulated_total",
		Help:      "Total number of games simulated",
	})

	// Operational Health Metrics - System stability indicators
	m.activeRuns = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "active_runs",
		Help:      "Number of simulation runs currently in flight",
	})

	// Duration Metrics - Where simulation time goes
	m.matrixBuildDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matrix_build_duration_seconds",
		Help:      "Time spent loading data and building the transition matrices",
		Buckets:   m.histogramBuckets,
	})

	m.seasonDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "season_duration_seconds",
		Help:      "Time spent simulating a single season",
		Buckets:   m.histogramBuckets,
	})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_seconds",
		Help:      "Wall clock duration of completed simulation runs",
		Buckets:   m.histogramBuckets,
	})

	// Store Metrics - Persistence performance and scale
	m.storeQueryDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_query_duration_seconds",
		Help:      "Store read operation duration in seconds",
		Buckets:   m.histogramBuckets,
	})

	m.storeWriteDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_write_duration_seconds",
		Help:      "Store write operation duration in seconds",
		Buckets:   m.histogramBuckets,
	})

	m.storedTeams = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stored_teams",
		Help:      "Number of teams with stored transition data",
	})

	m.storedTransitions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stored_transition_rows",
		Help:      "Number of transition count rows in the store",
	})

	// HTTP Performance Metrics - User experience indicators
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds (user experience)",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	// Enhanced Error Metrics - Detailed error tracking
	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)

	m.errorsByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total number of errors by endpoint",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})
}

// RecordRunStarted increments the started runs counter.
func RecordRunStarted() {
	globalManager.runsStarted.Inc()
}

// RecordRunCompleted increments the completed runs counter.
func RecordRunCompleted() {
	globalManager.runsCompleted.Inc()
}

// RecordRunCancelled increments the cancelled runs counter.
func RecordRunCancelled() {
	globalManager.runsCancelled.Inc()
}

// RecordRunFailed increments the failed runs counter.
func RecordRunFailed() {
	globalManager.runsFailed.Inc()
}

// RecordSeasonSimulated increments the simulated seasons counter.
func RecordSeasonSimulated() {
	globalManager.seasonsSimulated.Inc()
}

// RecordGamesSimulated adds a batch of games to the simulated games counter.
func RecordGamesSimulated(count int) {
	globalManager.gamesSimulated.Add(float64(count))
}

// IncActiveRuns increments the in-flight runs gauge.
func IncActiveRuns() {
	globalManager.activeRuns.Inc()
}

// DecActiveRuns decrements the in-flight runs gauge.
func DecActiveRuns() {
	globalManager.activeRuns.Dec()
}

// ObserveMatrixBuildDuration records a matrix build duration in seconds.
func ObserveMatrixBuildDuration(seconds float64) {
	globalManager.matrixBuildDuration.Observe(seconds)
}

// ObserveSeasonDuration records a season simulation duration in seconds.
func ObserveSeasonDuration(seconds float64) {
	globalManager.seasonDuration.Observe(seconds)
}

// ObserveRunDuration records a completed run duration in seconds.
func ObserveRunDuration(seconds float64) {
	globalManager.runDuration.Observe(seconds)
}

// Store Metrics Functions.

// ObserveStoreQuery records a store read duration in seconds.
func ObserveStoreQuery(seconds float64) {
	globalManager.storeQueryDuration.Observe(seconds)
}

// ObserveStoreWrite records a store write duration in seconds.
func ObserveStoreWrite(seconds float64) {
	globalManager.storeWriteDuration.Observe(seconds)
}

// UpdateStoredTeams sets the number of teams with stored data.
func UpdateStoredTeams(count int) {
	globalManager.storedTeams.Set(float64(count))
}

// UpdateStoredTransitions sets the number of stored transition rows.
func UpdateStoredTransitions(count int) {
	globalManager.storedTransitions.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Enhanced Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
