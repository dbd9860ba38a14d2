// Package metrics provides Prometheus metrics for the Traffix routing
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Snapshot lifecycle
	snapshotRows     prometheus.Gauge
	snapshotLastUnix prometheus.Gauge
	snapshotApplied  prometheus.Counter
	batchesDuplicate prometheus.Counter

	// Graph construction and caching
	graphBuilds     *prometheus.CounterVec
	graphCacheHits  prometheus.Counter
	graphCacheMiss  prometheus.Counter

	// Routing queries
	routeQueries *prometheus.CounterVec
	routeLatency prometheus.Histogram

	// Network efficiency report
	summaryComputations  prometheus.Counter
	priceOfAnarchy       prometheus.Gauge
	bottleneckCongestion prometheus.Gauge

	// Forecasting
	forecastRequests *prometheus.CounterVec
	modelLoaded      prometheus.Gauge
	modelLoadErrors  prometheus.Counter

	// Insight pass-through
	insightRequests *prometheus.CounterVec

	// Refresh queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueues      prometheus.Counter
	queueDequeues      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Component errors
	errorsByComponent *prometheus.CounterVec

	// Process health
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "traffix",
		subsystem:        "network",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // flat metric declarations
	auto := promauto.With(m.registry)

	m.snapshotRows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_rows",
		Help:      "Number of edge rows in the stored traffic snapshot",
	})

	m.snapshotLastUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_last_unix",
		Help:      "Unix timestamp of the last snapshot replacement",
	})

	m.snapshotApplied = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_applied_total",
		Help:      "Total number of snapshot replacements applied",
	})

	m.batchesDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_batches_duplicate_total",
		Help:      "Total number of duplicate refresh batches rejected",
	})

	m.graphBuilds = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "graph_builds_total",
			Help:      "Total number of network graphs built, by regime",
		},
		[]string{"regime"},
	)

	m.graphCacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "graph_cache_hits_total",
		Help:      "Total number of graph cache hits",
	})

	m.graphCacheMiss = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "graph_cache_misses_total",
		Help:      "Total number of graph cache misses",
	})

	m.routeQueries = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "route_queries_total",
			Help:      "Total number of shortest-path queries, by regime and outcome",
		},
		[]string{"regime", "outcome"},
	)

	m.routeLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "route_latency_milliseconds",
		Help:      "Shortest-path query latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.summaryComputations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "summary_computations_total",
		Help:      "Total number of network cost summaries computed",
	})

	m.priceOfAnarchy = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "price_of_anarchy",
		Help:      "Price of Anarchy of the last computed summary",
	})

	m.bottleneckCongestion = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "bottleneck_congestion_percent",
		Help:      "Congestion of the worst edge in the last computed summary",
	})

	m.forecastRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "forecast_requests_total",
			Help:      "Total number of congestion forecasts, by tier",
		},
		[]string{"tier"},
	)

	m.modelLoaded = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "forecast_model_loaded",
		Help:      "Whether the forecasting model artifact is loaded (1) or not (0)",
	})

	m.modelLoadErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "forecast_model_load_errors_total",
		Help:      "Total number of failed model artifact load attempts",
	})

	m.insightRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "insight_requests_total",
			Help:      "Total number of insight requests, by outcome",
		},
		[]string{"outcome"},
	)

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_queue_size",
		Help:      "Current number of queued refresh batches",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_queue_capacity",
		Help:      "Maximum refresh queue capacity",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_queue_utilization_ratio",
		Help:      "Refresh queue utilization ratio (size / capacity)",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_queue_enqueue_total",
		Help:      "Total number of refresh batches enqueued",
	})

	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_queue_dequeue_total",
		Help:      "Total number of refresh batches dequeued",
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_queue_enqueue_errors_total",
		Help:      "Total number of rejected enqueue attempts",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint, method and status",
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

	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_total",
			Help:      "Total number of errors by component and type",
		},
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "Process heap allocation in bytes",
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

// UpdateSnapshotRows sets the stored snapshot row count.
func UpdateSnapshotRows(count int) {
	globalManager.snapshotRows.Set(float64(count))
}

// UpdateSnapshotLastUnix sets the time of the last snapshot replacement.
func UpdateSnapshotLastUnix(unix int64) {
	globalManager.snapshotLastUnix.Set(float64(unix))
}

// RecordSnapshotApplied increments the applied snapshot counter.
func RecordSnapshotApplied() {
	globalManager.snapshotApplied.Inc()
}

// RecordBatchDuplicate increments the duplicate batch counter.
func RecordBatchDuplicate() {
	globalManager.batchesDuplicate.Inc()
}

// RecordGraphBuild increments the graph build counter for a regime.
func RecordGraphBuild(regime string) {
	globalManager.graphBuilds.WithLabelValues(regime).Inc()
}

// RecordGraphCacheHit increments the graph cache hit counter.
func RecordGraphCacheHit() {
	globalManager.graphCacheHits.Inc()
}

// RecordGraphCacheMiss increments the graph cache miss counter.
func RecordGraphCacheMiss() {
	globalManager.graphCacheMiss.Inc()
}

// RecordRouteQuery increments the route query counter.
func RecordRouteQuery(regime, outcome string) {
	globalManager.routeQueries.WithLabelValues(regime, outcome).Inc()
}

// RecordRouteLatency records shortest-path query latency.
func RecordRouteLatency(latencyMs float64) {
	globalManager.routeLatency.Observe(latencyMs)
}

// RecordSummaryComputation increments the summary counter.
func RecordSummaryComputation() {
	globalManager.summaryComputations.Inc()
}

// UpdatePriceOfAnarchy sets the last computed Price of Anarchy.
func UpdatePriceOfAnarchy(poa float64) {
	globalManager.priceOfAnarchy.Set(poa)
}

// UpdateBottleneckCongestion sets the last computed worst congestion.
func UpdateBottleneckCongestion(percent float64) {
	globalManager.bottleneckCongestion.Set(percent)
}

// RecordForecast increments the forecast counter for a tier
// ("model", "heuristic" or "fallback").
func RecordForecast(tier string) {
	globalManager.forecastRequests.WithLabelValues(tier).Inc()
}

// UpdateModelLoaded flags whether the model artifact is in memory.
func UpdateModelLoaded(loaded bool) {
	v := 0.0
	if loaded {
		v = 1.0
	}
	globalManager.modelLoaded.Set(v)
}

// RecordModelLoadError increments the model load error counter.
func RecordModelLoadError() {
	globalManager.modelLoadErrors.Inc()
}

// RecordInsight increments the insight counter for an outcome
// ("ok" or "fallback").
func RecordInsight(outcome string) {
	globalManager.insightRequests.WithLabelValues(outcome).Inc()
}

// UpdateQueueSize sets the current refresh queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the refresh queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the refresh queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueues.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeues.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the process heap allocation in bytes.
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

// GetRegistry returns the custom Prometheus registry backing the
// service metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
