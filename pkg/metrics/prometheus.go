package metrics

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values for flag transitions.
const (
	FlagResultSet  = "set"
	FlagResultNoop = "noop"
)

// Manager manages all Prometheus metrics for the GlassBox service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	cohortBuckets    []float64
	registry         prometheus.Registerer

	// Decision metrics
	computations       *prometheus.CounterVec
	computationLatency *prometheus.HistogramVec
	computationErrors  *prometheus.CounterVec
	cohortSize         *prometheus.HistogramVec
	bonusPoolAllocated prometheus.Counter

	// Audit metrics
	auditRecords    *prometheus.CounterVec
	auditEntries    *prometheus.CounterVec
	auditFlagged    *prometheus.CounterVec
	auditAgreement  *prometheus.GaugeVec
	flagTransitions *prometheus.CounterVec
	idempotentHits  prometheus.Counter

	// Store metrics
	storeQueryLatency *prometheus.HistogramVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "glassbox",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		cohortBuckets:    []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.computations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "computations_total",
		Help:      "Total number of completed engine computations by operation",
	}, []string{"operation"})

	m.computationLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "computation_latency_milliseconds",
		Help:      "Engine computation latency in milliseconds by operation",
		Buckets:   m.histogramBuckets,
	}, []string{"operation"})

	m.computationErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "computation_errors_total",
		Help:      "Total number of failed engine computations by operation",
	}, []string{"operation"})

	m.cohortSize = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cohort_size",
		Help:      "Number of employees scored per cohort operation",
		Buckets:   m.cohortBuckets,
	}, []string{"operation"})

	m.bonusPoolAllocated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "bonus_pool_allocated_total",
		Help:      "Sum of bonus pool amounts distributed by allocations",
	})

	m.auditRecords = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "audit_records_total",
		Help:      "Total number of persisted audit records by decision type",
	}, []string{"decision_type"})

	m.auditEntries = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "audit_entries_total",
		Help:      "Total number of audit entries produced by decision type",
	}, []string{"decision_type"})

	m.auditFlagged = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "audit_flagged_total",
		Help:      "Total number of audit entries flagged at computation time by decision type",
	}, []string{"decision_type"})

	m.auditAgreement = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "audit_agreement_score",
		Help:      "Agreement score of the most recent audit by decision type",
	}, []string{"decision_type"})

	m.flagTransitions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "flag_transitions_total",
		Help:      "Reviewer flag requests by result (set or noop)",
	}, []string{"result"})

	m.idempotentHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "idempotent_replays_total",
		Help:      "Audit submissions answered from a previous record via idempotency key",
	})

	m.storeQueryLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_query_latency_milliseconds",
		Help:      "Store query latency in milliseconds by query",
		Buckets:   m.histogramBuckets,
	}, []string{"query"})

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
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total number of errors by endpoint",
		},
		[]string{"endpoint", "method", "error_type"},
	)

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

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordComputation records a successful computation and its latency.
func RecordComputation(operation string, latencyMs float64) {
	globalManager.computations.WithLabelValues(operation).Inc()
	globalManager.computationLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordComputationError increments the failure counter for operation.
func RecordComputationError(operation string) {
	globalManager.computationErrors.WithLabelValues(operation).Inc()
}

// RecordCohortSize observes how many employees an operation scored.
func RecordCohortSize(operation string, size int) {
	globalManager.cohortSize.WithLabelValues(operation).Observe(float64(size))
}

// RecordBonusPool adds an allocated pool amount.
func RecordBonusPool(amount float64) {
	globalManager.bonusPoolAllocated.Add(amount)
}

// RecordAudit records a persisted audit record.
func RecordAudit(decisionType string, entries, flagged int, agreement float64) {
	globalManager.auditRecords.WithLabelValues(decisionType).Inc()
	globalManager.auditEntries.WithLabelValues(decisionType).Add(float64(entries))
	globalManager.auditFlagged.WithLabelValues(decisionType).Add(float64(flagged))
	globalManager.auditAgreement.WithLabelValues(decisionType).Set(agreement)
}

// RecordFlagTransition counts a reviewer flag request by result.
func RecordFlagTransition(result string) {
	globalManager.flagTransitions.WithLabelValues(result).Inc()
}

// RecordIdempotentReplay counts a submission answered from an earlier record.
func RecordIdempotentReplay() {
	globalManager.idempotentHits.Inc()
}

// RecordStoreQueryLatency records store query latency.
func RecordStoreQueryLatency(query string, latencyMs float64) {
	globalManager.storeQueryLatency.WithLabelValues(query).Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
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

// CollectSystem samples runtime stats every interval until ctx is done.
func CollectSystem(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastNumGC uint32
	for {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		UpdateSystemMemoryUsage(ms.Alloc)
		UpdateSystemGoroutineCount(runtime.NumGoroutine())
		// PauseNs is a ring of the most recent 256 pauses; cycle i lives at i%256.
		start := lastNumGC
		if ms.NumGC-start > uint32(len(ms.PauseNs)) {
			start = ms.NumGC - uint32(len(ms.PauseNs))
		}
		for i := start; i < ms.NumGC; i++ {
			RecordSystemGCPauseTime(float64(ms.PauseNs[i%uint32(len(ms.PauseNs))]) / float64(time.Millisecond))
		}
		lastNumGC = ms.NumGC

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
