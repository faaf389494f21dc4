// Package metrics exposes the prometheus instrumentation for the analysis
// service: HTTP traffic, analysis pass outcomes, event publishing and
// process health.
package metrics

import (
	"runtime"
	"time"
)

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordAnalysisPass records one completed or failed analysis pass
func (r *Registry) RecordAnalysisPass(status string, duration time.Duration, networks, nodes, artifactBytes int) {
	r.AnalysisPassesTotal.WithLabelValues(status).Inc()
	r.AnalysisPassDuration.Observe(duration.Seconds())
	r.AnalysisArtifactBytes.Observe(float64(artifactBytes))
	if status == "success" {
		r.AnalysisNetworksTotal.Observe(float64(networks))
		r.AnalysisNodesTotal.Observe(float64(nodes))
	}
}

// RecordDiagnostics bumps the per-severity diagnostic counters
func (r *Registry) RecordDiagnostics(warnings, errors int) {
	r.AnalysisDiagnostics.WithLabelValues("warning").Add(float64(warnings))
	r.AnalysisDiagnostics.WithLabelValues("error").Add(float64(errors))
}

// RecordSnapshotOperation records a snapshot save or load
func (r *Registry) RecordSnapshotOperation(operation, status string) {
	r.SnapshotOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordEventPublished records one published event
func (r *Registry) RecordEventPublished(topic string) {
	r.EventsPublishedTotal.WithLabelValues(topic).Inc()
}

// RecordEventPublishFailure records a failed publish attempt
func (r *Registry) RecordEventPublishFailure() {
	r.EventPublishFailures.Inc()
}

// UpdateSystemMetrics refreshes the process-level gauges. Callers run it
// on a ticker.
func (r *Registry) UpdateSystemMetrics(startTime time.Time) {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	r.UptimeSeconds.Set(time.Since(startTime).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(stats.Alloc))
	r.MemorySysBytes.Set(float64(stats.Sys))
}
