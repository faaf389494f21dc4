package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// HTTP Metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestsInFlight  prometheus.Gauge
	HTTPResponseSizeBytes *prometheus.HistogramVec

	// Analysis Metrics
	AnalysisPassesTotal     *prometheus.CounterVec
	AnalysisPassDuration    prometheus.Histogram
	AnalysisNetworksTotal   prometheus.Histogram
	AnalysisNodesTotal      prometheus.Histogram
	AnalysisDiagnostics     *prometheus.CounterVec
	AnalysisArtifactBytes   prometheus.Histogram
	AnalysisContextsHeld    prometheus.Gauge
	SnapshotOperationsTotal *prometheus.CounterVec

	// Event Metrics
	EventsPublishedTotal *prometheus.CounterVec
	EventPublishFailures prometheus.Counter

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	registry *prometheus.Registry
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initHTTPMetrics()
	r.initAnalysisMetrics()
	r.initEventMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
