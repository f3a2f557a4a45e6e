// Package metrics registers the Prometheus instruments for the
// activity-monitoring pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	AuditEventsRecorded prometheus.Counter
	AuditEventsDropped  prometheus.Counter
	AuditAppendFailures prometheus.Counter

	AggregatorRuns     prometheus.Counter
	AggregatorFailures *prometheus.CounterVec
	EventsScanned      *prometheus.CounterVec
	UsersFlagged       *prometheus.CounterVec
	MonitoredResolved  prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		AuditEventsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mentorlab_audit_events_recorded_total",
			Help: "Audit events accepted by the recorder",
		}),
		AuditEventsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mentorlab_audit_events_dropped_total",
			Help: "Audit events dropped because the recorder buffer was full",
		}),
		AuditAppendFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mentorlab_audit_append_failures_total",
			Help: "Audit store append errors swallowed by the recorder worker",
		}),
		AggregatorRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mentorlab_aggregator_runs_total",
			Help: "Completed activity aggregator runs",
		}),
		AggregatorFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mentorlab_aggregator_pass_failures_total",
			Help: "Aggregator pass failures by window",
		}, []string{"window"}),
		EventsScanned: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mentorlab_aggregator_events_scanned_total",
			Help: "Audit events read by aggregator passes, by window",
		}, []string{"window"}),
		UsersFlagged: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mentorlab_monitored_users_flagged_total",
			Help: "Users newly flagged by the aggregator, by window",
		}, []string{"window"}),
		MonitoredResolved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mentorlab_monitored_users_resolved_total",
			Help: "Monitored-user records resolved by operators",
		}),
	}
}
