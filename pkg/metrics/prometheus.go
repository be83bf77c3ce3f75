// Package metrics provides Prometheus metrics for the salarycast service.
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
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Prediction pipeline
	predictions        *prometheus.CounterVec
	predictionFailures *prometheus.CounterVec
	predictionLatency  prometheus.Histogram
	defaultFilled      *prometheus.CounterVec
	batchSize          prometheus.Histogram

	// Artifacts
	artifactReloads    *prometheus.CounterVec
	artifactLoadedUnix prometheus.Gauge
	modelFeatureCount  prometheus.Gauge
	codecClassCount    *prometheus.GaugeVec

	// Training
	trainingCandidateR2 *prometheus.GaugeVec
	trainingRows        prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

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
		namespace:        "salarycast",
		subsystem:        "predictor",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for all collectors
	auto := promauto.With(m.registry)

	m.predictions = auto.NewCounterVec(
		m.counter("predictions_total", "Predictions by outcome (ok, failed)"),
		[]string{"outcome"},
	)
	m.predictionFailures = auto.NewCounterVec(
		m.counter("prediction_failures_total", "Failed predictions by error kind"),
		[]string{"kind"},
	)
	m.predictionLatency = auto.NewHistogram(
		m.histogram("prediction_latency_milliseconds", "End-to-end prediction latency in milliseconds", m.histogramBuckets),
	)
	m.defaultFilled = auto.NewCounterVec(
		m.counter("default_filled_features_total", "Model features filled with 0.0 because neither profile nor codecs supplied them"),
		[]string{"feature"},
	)
	m.batchSize = auto.NewHistogram(
		m.histogram("batch_size", "Number of profiles per batch request", prometheus.LinearBuckets(1, 10, 10)),
	)

	m.artifactReloads = auto.NewCounterVec(
		m.counter("artifact_reloads_total", "Artifact bundle loads by result (ok, failed)"),
		[]string{"result"},
	)
	m.artifactLoadedUnix = auto.NewGauge(
		m.gauge("artifact_loaded_unix", "Unix time of the last successful artifact load"),
	)
	m.modelFeatureCount = auto.NewGauge(
		m.gauge("model_feature_count", "Length of the feature vector expected by the loaded model"),
	)
	m.codecClassCount = auto.NewGaugeVec(
		m.gauge("codec_class_count", "Number of classes per loaded category codec"),
		[]string{"feature"},
	)

	m.trainingCandidateR2 = auto.NewGaugeVec(
		m.gauge("training_candidate_r2", "Held-out coefficient of determination per candidate regressor"),
		[]string{"candidate"},
	)
	m.trainingRows = auto.NewGauge(
		m.gauge("training_rows", "Rows used by the last training run"),
	)

	m.httpRequests = auto.NewCounterVec(
		m.counter("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogram("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByType = auto.NewCounterVec(
		m.counter("errors_by_type_total", "Errors by type and severity"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counter("errors_by_endpoint_total", "Errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(
		m.gauge("system_memory_bytes", "Heap bytes allocated"),
	)
	m.systemGoroutineCount = auto.NewGauge(
		m.gauge("system_goroutines", "Number of goroutines"),
	)
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogram("system_gc_pause_milliseconds", "Average GC pause in milliseconds", m.histogramBuckets),
	)
}

// RecordPrediction counts a prediction outcome and its latency.
func RecordPrediction(ok bool, latencyMs float64) {
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	globalManager.predictions.WithLabelValues(outcome).Inc()
	globalManager.predictionLatency.Observe(latencyMs)
}

// RecordPredictionFailure counts a failed prediction by error kind.
func RecordPredictionFailure(kind string) {
	globalManager.predictionFailures.WithLabelValues(kind).Inc()
}

// RecordDefaultFilled counts a feature that was zero-filled.
func RecordDefaultFilled(feature string) {
	globalManager.defaultFilled.WithLabelValues(feature).Inc()
}

// RecordBatchSize observes the size of a batch prediction request.
func RecordBatchSize(n int) {
	globalManager.batchSize.Observe(float64(n))
}

// RecordArtifactReload counts an artifact load attempt.
func RecordArtifactReload(ok bool, loadedUnix int64) {
	if !ok {
		globalManager.artifactReloads.WithLabelValues("failed").Inc()
		return
	}
	globalManager.artifactReloads.WithLabelValues("ok").Inc()
	globalManager.artifactLoadedUnix.Set(float64(loadedUnix))
}

// UpdateModelFeatureCount sets the loaded model's feature count.
func UpdateModelFeatureCount(n int) {
	globalManager.modelFeatureCount.Set(float64(n))
}

// UpdateCodecClassCount sets the class count of one codec.
func UpdateCodecClassCount(feature string, n int) {
	globalManager.codecClassCount.WithLabelValues(feature).Set(float64(n))
}

// RecordTrainingCandidate stores a candidate's held-out R².
func RecordTrainingCandidate(candidate string, r2 float64) {
	globalManager.trainingCandidateR2.WithLabelValues(candidate).Set(r2)
}

// UpdateTrainingRows sets the number of rows used by training.
func UpdateTrainingRows(n int) {
	globalManager.trainingRows.Set(float64(n))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage updates heap usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount updates goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records average GC pause time.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
