// Package metrics provides Prometheus metrics for the Parley conversation service.
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

// Manager manages all Prometheus metrics for the Parley service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Session lifecycle metrics
	sessionsStarted   prometheus.Counter
	sessionsCompleted prometheus.Counter
	sessionFinalScore prometheus.Histogram
	activeSession     prometheus.Gauge
	savedSessions     prometheus.Gauge

	// Turn and scoring metrics
	turnsTotal     *prometheus.CounterVec
	scoringLatency prometheus.Histogram

	// Semantic analysis collaborator metrics
	semanticCalls     prometheus.Counter
	semanticFallbacks prometheus.Counter
	semanticLatency   prometheus.Histogram

	// Reply generation collaborator metrics
	replyFallbacks prometheus.Counter
	replyLatency   prometheus.Histogram

	// Transcription collaborator metrics
	transcriptions      prometheus.Counter
	transcriptionRetry  prometheus.Counter
	transcriptionErrors prometheus.Counter

	// Archive pipeline metrics
	archiveQueueSize        prometheus.Gauge
	archiveQueueCapacity    prometheus.Gauge
	archiveQueueUtilization prometheus.Gauge
	archiveEnqueues         prometheus.Counter
	archiveEnqueueErrors    prometheus.Counter
	archiveWriterCount      prometheus.Gauge
	recordsPersisted        prometheus.Counter
	persistErrors           prometheus.Counter
	archiveWriteLatency     prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error tracking by component
	errorsByComponent *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        "parley",
		subsystem:        "conversation",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.sessionsStarted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_started_total",
		Help:      "Total number of conversation sessions started.",
	})

	m.sessionsCompleted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_completed_total",
		Help:      "Total number of conversation sessions ended and finalized.",
	})

	m.sessionFinalScore = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "session_final_score",
		Help:      "Distribution of final session scores (0-100).",
		Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	})

	m.activeSession = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "active_session",
		Help:      "Whether a session is currently active (0 or 1).",
	})

	m.savedSessions = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "saved_sessions",
		Help:      "Number of persisted session records on disk.",
	})

	m.turnsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "turns_total",
		Help:      "Total conversation turns recorded, labeled by speaker.",
	}, []string{"speaker"})

	m.scoringLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scoring_latency_ms",
		Help:      "Latency of full coverage scoring in milliseconds.",
		Buckets:   m.histogramBuckets,
	})

	m.semanticCalls = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "semantic_calls_total",
		Help:      "Total calls to the external semantic analysis collaborator.",
	})

	m.semanticFallbacks = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "semantic_fallbacks_total",
		Help:      "Semantic analysis failures degraded to lexical-only scoring.",
	})

	m.semanticLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "semantic_latency_ms",
		Help:      "Latency of semantic analysis calls in milliseconds.",
		Buckets:   m.histogramBuckets,
	})

	m.replyFallbacks = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reply_fallbacks_total",
		Help:      "Reply generation failures answered with the canned fallback.",
	})

	m.replyLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reply_latency_ms",
		Help:      "Latency of reply generation calls in milliseconds.",
		Buckets:   m.histogramBuckets,
	})

	m.transcriptions = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "transcriptions_total",
		Help:      "Total successful speech transcriptions.",
	})

	m.transcriptionRetry = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "transcription_retries_total",
		Help:      "Total transcription retry attempts.",
	})

	m.transcriptionErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "transcription_errors_total",
		Help:      "Transcriptions that failed after all retry attempts.",
	})

	m.archiveQueueSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "archive_queue_size",
		Help:      "Current number of finalized records waiting to be persisted.",
	})

	m.archiveQueueCapacity = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "archive_queue_capacity",
		Help:      "Configured capacity of the archive queue.",
	})

	m.archiveQueueUtilization = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "archive_queue_utilization",
		Help:      "Archive queue utilization ratio (0.0-1.0).",
	})

	m.archiveEnqueues = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "archive_enqueues_total",
		Help:      "Total finalized records enqueued for persistence.",
	})

	m.archiveEnqueueErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "archive_enqueue_errors_total",
		Help:      "Records that could not be enqueued (closed or full queue).",
	})

	m.archiveWriterCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "archive_writer_count",
		Help:      "Number of archive writer goroutines.",
	})

	m.recordsPersisted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_persisted_total",
		Help:      "Session records successfully written to the store.",
	})

	m.persistErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persist_errors_total",
		Help:      "Session record writes that failed.",
	})

	m.archiveWriteLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "archive_write_latency_ms",
		Help:      "Latency of archive store writes in milliseconds.",
		Buckets:   m.histogramBuckets,
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by endpoint, method, and status code.",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds.",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	m.errorsByComponent = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_component_total",
		Help:      "Errors recorded by component and kind.",
	}, []string{"component", "kind"})

	m.systemMemoryUsage = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_usage_bytes",
		Help:      "Current allocated heap memory in bytes.",
	})

	m.systemGoroutineCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutine_count",
		Help:      "Current number of goroutines.",
	})

	m.systemGCPauseTime = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "gc_pause_ms",
		Help:      "Average GC pause time in milliseconds.",
		Buckets:   m.histogramBuckets,
	})
}

// Session lifecycle metrics.

func RecordSessionStarted() {
	if globalManager.enabled {
		globalManager.sessionsStarted.Inc()
	}
}

func RecordSessionCompleted() {
	if globalManager.enabled {
		globalManager.sessionsCompleted.Inc()
	}
}

func ObserveFinalScore(score float64) {
	if globalManager.enabled {
		globalManager.sessionFinalScore.Observe(score)
	}
}

func UpdateActiveSession(active bool) {
	if globalManager.enabled {
		if active {
			globalManager.activeSession.Set(1)
		} else {
			globalManager.activeSession.Set(0)
		}
	}
}

func UpdateSavedSessions(count int) {
	if globalManager.enabled {
		globalManager.savedSessions.Set(float64(count))
	}
}

// Turn and scoring metrics.

func RecordTurn(speaker string) {
	if globalManager.enabled {
		globalManager.turnsTotal.WithLabelValues(speaker).Inc()
	}
}

func RecordScoringLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.scoringLatency.Observe(latencyMs)
	}
}

// Semantic analysis collaborator metrics.

func RecordSemanticCall() {
	if globalManager.enabled {
		globalManager.semanticCalls.Inc()
	}
}

func RecordSemanticFallback() {
	if globalManager.enabled {
		globalManager.semanticFallbacks.Inc()
	}
}

func RecordSemanticLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.semanticLatency.Observe(latencyMs)
	}
}

// Reply generation collaborator metrics.

func RecordReplyFallback() {
	if globalManager.enabled {
		globalManager.replyFallbacks.Inc()
	}
}

func RecordReplyLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.replyLatency.Observe(latencyMs)
	}
}

// Transcription collaborator metrics.

func RecordTranscription() {
	if globalManager.enabled {
		globalManager.transcriptions.Inc()
	}
}

func RecordTranscriptionRetry() {
	if globalManager.enabled {
		globalManager.transcriptionRetry.Inc()
	}
}

func RecordTranscriptionError() {
	if globalManager.enabled {
		globalManager.transcriptionErrors.Inc()
	}
}

// Archive pipeline metrics.

func UpdateArchiveQueueSize(size int) {
	if globalManager.enabled {
		globalManager.archiveQueueSize.Set(float64(size))
	}
}

func UpdateArchiveQueueCapacity(capacity int) {
	if globalManager.enabled {
		globalManager.archiveQueueCapacity.Set(float64(capacity))
	}
}

func UpdateArchiveQueueUtilization(utilization float64) {
	if globalManager.enabled {
		globalManager.archiveQueueUtilization.Set(utilization)
	}
}

func RecordArchiveEnqueue() {
	if globalManager.enabled {
		globalManager.archiveEnqueues.Inc()
	}
}

func RecordArchiveEnqueueError() {
	if globalManager.enabled {
		globalManager.archiveEnqueueErrors.Inc()
	}
}

func UpdateArchiveWriterCount(count int) {
	if globalManager.enabled {
		globalManager.archiveWriterCount.Set(float64(count))
	}
}

func RecordRecordPersisted() {
	if globalManager.enabled {
		globalManager.recordsPersisted.Inc()
	}
}

func RecordPersistError() {
	if globalManager.enabled {
		globalManager.persistErrors.Inc()
	}
}

func RecordArchiveWriteLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.archiveWriteLatency.Observe(latencyMs)
	}
}

// HTTP metrics.

func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

// Error tracking.

func RecordErrorByComponent(component, kind string) {
	if globalManager.enabled {
		globalManager.errorsByComponent.WithLabelValues(component, kind).Inc()
	}
}

// System metrics.

func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager.enabled {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

func UpdateSystemGoroutineCount(count int) {
	if globalManager.enabled {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

func RecordSystemGCPauseTime(pauseMs float64) {
	if globalManager.enabled {
		globalManager.systemGCPauseTime.Observe(pauseMs)
	}
}

// GetRegistry returns the custom Prometheus registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
