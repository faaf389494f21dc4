package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAnalysisMetrics() {
	r.AnalysisPassesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ladderflow_analysis_passes_total",
			Help: "Total number of analysis passes by outcome",
		},
		[]string{"status"},
	)

	r.AnalysisPassDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ladderflow_analysis_pass_duration_seconds",
			Help:    "Analysis pass latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	r.AnalysisNetworksTotal = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ladderflow_analysis_networks",
			Help:    "Networks decoded per pass",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000},
		},
	)

	r.AnalysisNodesTotal = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ladderflow_analysis_graph_nodes",
			Help:    "Control-flow graph nodes per pass",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000},
		},
	)

	r.AnalysisDiagnostics = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ladderflow_analysis_diagnostics_total",
			Help: "Diagnostics emitted across passes by severity",
		},
		[]string{"severity"},
	)

	r.AnalysisArtifactBytes = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ladderflow_analysis_artifact_bytes",
			Help:    "Uploaded artifact size in bytes",
			Buckets: []float64{1024, 10240, 102400, 1048576, 4194304, 16777216},
		},
	)

	r.AnalysisContextsHeld = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "ladderflow_analysis_contexts_held",
			Help: "Analysis contexts currently retained in memory",
		},
	)

	r.SnapshotOperationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ladderflow_snapshot_operations_total",
			Help: "Snapshot save/load operations by status",
		},
		[]string{"operation", "status"},
	)
}
