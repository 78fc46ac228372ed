// Package metrics provides Prometheus metrics for the dugout sync engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager holds all Prometheus metrics for the sync engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Mutation metrics - the core of the ingestion engine
	mutationsApplied  *prometheus.CounterVec
	mutationsRejected *prometheus.CounterVec
	duplicateCreates  prometheus.Counter
	ingestLatency     prometheus.Histogram

	// Store metrics
	gamesTracked prometheus.Gauge
	liveEvents   prometheus.Gauge

	// Broadcast metrics
	broadcastsEnqueued  prometheus.Counter
	broadcastsDelivered prometheus.Counter
	broadcastsDropped   prometheus.Counter
	dispatchLatency     prometheus.Histogram
	viewersConnected    prometheus.Gauge
	dispatcherCount     prometheus.Gauge

	// Queue metrics
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueues    prometheus.Counter
	queueDequeues    prometheus.Counter
	queueEnqueueErrs prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage   prometheus.Gauge
	systemGoroutines    prometheus.Gauge
	systemGCPauseTimeMs prometheus.Histogram
}

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
		namespace:        "dugout",
		subsystem:        "sync",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.mutationsApplied = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "mutations_applied_total",
			Help:      "Total number of mutations applied, by mutation type",
		},
		[]string{"type"},
	)

	m.mutationsRejected = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "mutations_rejected_total",
			Help:      "Total number of mutations rejected, by reason",
		},
		[]string{"reason"},
	)

	m.duplicateCreates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "duplicate_creates_total",
		Help:      "Total number of create retries resolved idempotently",
	})

	m.ingestLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_latency_milliseconds",
		Help:      "Histogram of mutation ingestion latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.gamesTracked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "games_tracked",
		Help:      "Number of games with a live event store",
	})

	m.liveEvents = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "live_events",
		Help:      "Total number of live events across all games",
	})

	m.broadcastsEnqueued = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "broadcasts_enqueued_total",
		Help:      "Total number of confirmed events handed to the broadcast queue",
	})

	m.broadcastsDelivered = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "broadcasts_delivered_total",
		Help:      "Total number of broadcast envelopes delivered to viewer rooms",
	})

	m.broadcastsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "broadcasts_dropped_total",
		Help:      "Total number of broadcasts dropped (full queue or slow viewer)",
	})

	m.dispatchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dispatch_latency_milliseconds",
		Help:      "Histogram of broadcast dispatch latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.viewersConnected = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "viewers_connected",
		Help:      "Number of websocket viewers currently connected",
	})

	m.dispatcherCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dispatcher_count",
		Help:      "Number of broadcast dispatcher goroutines",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the broadcast queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured capacity of the broadcast queue",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization_ratio",
		Help:      "Broadcast queue utilization (size / capacity)",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueues_total",
		Help:      "Total number of successful queue enqueues",
	})

	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeues_total",
		Help:      "Total number of queue dequeues",
	})

	m.queueEnqueueErrs = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Total number of failed enqueues (closed or full queue)",
	})

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

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current allocated heap memory in bytes",
	})

	m.systemGoroutines = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTimeMs = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_milliseconds",
		Help:      "Histogram of average GC pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// GetRegistry returns the registry backing the global manager, for serving
// the metrics endpoint.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers recording through the global manager.

func RecordMutationApplied(mutationType string) {
	globalManager.mutationsApplied.WithLabelValues(mutationType).Inc()
}

func RecordMutationRejected(reason string) {
	globalManager.mutationsRejected.WithLabelValues(reason).Inc()
}

func RecordDuplicateCreate() {
	globalManager.duplicateCreates.Inc()
}

func RecordIngestLatency(ms float64) {
	globalManager.ingestLatency.Observe(ms)
}

func UpdateGamesTracked(n int) {
	globalManager.gamesTracked.Set(float64(n))
}

func UpdateLiveEvents(n int) {
	globalManager.liveEvents.Set(float64(n))
}

func RecordBroadcastEnqueued() {
	globalManager.broadcastsEnqueued.Inc()
}

func RecordBroadcastDelivered() {
	globalManager.broadcastsDelivered.Inc()
}

func RecordBroadcastDropped() {
	globalManager.broadcastsDropped.Inc()
}

func RecordDispatchLatency(ms float64) {
	globalManager.dispatchLatency.Observe(ms)
}

func UpdateViewerCount(n int) {
	globalManager.viewersConnected.Set(float64(n))
}

func UpdateDispatcherCount(n int) {
	globalManager.dispatcherCount.Set(float64(n))
}

func UpdateQueueSize(n int) {
	globalManager.queueSize.Set(float64(n))
}

func UpdateQueueCapacity(n int) {
	globalManager.queueCapacity.Set(float64(n))
}

func UpdateQueueUtilization(ratio float64) {
	globalManager.queueUtilization.Set(ratio)
}

func RecordQueueEnqueue() {
	globalManager.queueEnqueues.Inc()
}

func RecordQueueDequeue() {
	globalManager.queueDequeues.Inc()
}

func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrs.Inc()
}

func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms)
}

func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

func UpdateSystemGoroutineCount(n int) {
	globalManager.systemGoroutines.Set(float64(n))
}

func RecordSystemGCPauseTime(ms float64) {
	globalManager.systemGCPauseTimeMs.Observe(ms)
}
