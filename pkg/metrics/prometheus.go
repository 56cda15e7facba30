// Package metrics provides Prometheus metrics for the climarisk service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Engine
	aggregations     *prometheus.CounterVec
	aggregatedPoints prometheus.Counter
	itemsScored      *prometheus.CounterVec
	engineErrors     *prometheus.CounterVec

	// Assessments
	assessments          *prometheus.CounterVec
	assessmentLatency    prometheus.Histogram
	duplicateSubmissions prometheus.Counter
	eventsPublished      *prometheus.CounterVec
	observationQueries   *prometheus.CounterVec

	// Queue and workers
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge
	queueEnqueued prometheus.Counter
	queueDequeued prometheus.Counter
	queueRejected *prometheus.CounterVec
	workerCount   prometheus.Gauge

	// Repository
	boardCompanies prometheus.Gauge
	reportsStored  prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
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
		namespace:        "climarisk",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.aggregations = auto.NewCounterVec(m.counterOpts("aggregations_total",
		"Aggregator runs by mode (source or aggregate)"), []string{"mode"})
	m.aggregatedPoints = auto.NewCounter(m.counterOpts("aggregated_points_total",
		"Points emitted by cross-source aggregation"))
	m.itemsScored = auto.NewCounterVec(m.counterOpts("items_scored_total",
		"Scored items by severity label"), []string{"severity"})
	m.engineErrors = auto.NewCounterVec(m.counterOpts("engine_errors_total",
		"Engine input-validation failures by operation and kind"), []string{"operation", "kind"})

	m.assessments = auto.NewCounterVec(m.counterOpts("assessments_total",
		"Assessments processed by workers, by outcome"), []string{"status"})
	m.assessmentLatency = auto.NewHistogram(m.histogramOpts("assessment_latency_milliseconds",
		"Time spent by a worker on one assessment"))
	m.duplicateSubmissions = auto.NewCounter(m.counterOpts("submissions_duplicate_total",
		"Assessment submissions rejected as duplicates"))
	m.eventsPublished = auto.NewCounterVec(m.counterOpts("events_published_total",
		"Assessment events published, by outcome"), []string{"status"})
	m.observationQueries = auto.NewCounterVec(m.counterOpts("observation_queries_total",
		"Observation source queries, by outcome"), []string{"status"})

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Jobs waiting in the assessment queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Capacity of the assessment queue"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueued_total", "Jobs accepted by the queue"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("queue_dequeued_total", "Jobs handed to workers"))
	m.queueRejected = auto.NewCounterVec(m.counterOpts("queue_rejected_total",
		"Jobs rejected by the queue, by reason"), []string{"reason"})
	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Configured assessment workers"))

	m.boardCompanies = auto.NewGauge(m.gaugeOpts("board_companies", "Companies on the risk board"))
	m.reportsStored = auto.NewGauge(m.gaugeOpts("reports_stored", "Assessment reports held in memory"))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total",
		"HTTP requests by endpoint, method and status"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds"), []string{"endpoint", "method", "status_code"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
}

// RecordAggregation counts one aggregator run; points is the number of
// averaged points emitted (0 in source mode).
func RecordAggregation(mode string, points int) {
	globalManager.aggregations.WithLabelValues(mode).Inc()
	globalManager.aggregatedPoints.Add(float64(points))
}

// RecordItemScored counts a scored item under its severity label.
func RecordItemScored(severity string) {
	globalManager.itemsScored.WithLabelValues(severity).Inc()
}

// RecordEngineError counts a rejected engine input.
func RecordEngineError(operation, kind string) {
	globalManager.engineErrors.WithLabelValues(operation, kind).Inc()
}

// RecordAssessment counts a finished assessment and its latency.
func RecordAssessment(status string, latencyMs float64) {
	globalManager.assessments.WithLabelValues(status).Inc()
	globalManager.assessmentLatency.Observe(latencyMs)
}

// RecordDuplicateSubmission counts a duplicate submission.
func RecordDuplicateSubmission() {
	globalManager.duplicateSubmissions.Inc()
}

// RecordEventPublished counts an assessment event publish attempt.
func RecordEventPublished(status string) {
	globalManager.eventsPublished.WithLabelValues(status).Inc()
}

// RecordObservationQuery counts an observation source query.
func RecordObservationQuery(status string) {
	globalManager.observationQueries.WithLabelValues(status).Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueRejected counts a job the queue refused.
func RecordQueueRejected(reason string) {
	globalManager.queueRejected.WithLabelValues(reason).Inc()
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateBoardCompanies sets the number of companies on the board.
func UpdateBoardCompanies(count int) {
	globalManager.boardCompanies.Set(float64(count))
}

// UpdateReportsStored sets the number of stored reports.
func UpdateReportsStored(count int) {
	globalManager.reportsStored.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateSystemMemoryUsage sets the heap allocation in bytes.
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
