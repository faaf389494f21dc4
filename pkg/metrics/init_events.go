package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initEventMetrics() {
	r.EventsPublishedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ladderflow_events_published_total",
			Help: "Total number of events published by topic",
		},
		[]string{"topic"},
	)

	r.EventPublishFailures = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "ladderflow_event_publish_failures_total",
			Help: "Total number of event publish failures",
		},
	)
}
