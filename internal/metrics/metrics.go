package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RemindersSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_emails_sent_total",
			Help: "Total number of reminder emails sent successfully",
		},
		[]string{"email_type"},
	)

	RemindersFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_emails_failed_total",
			Help: "Total number of reminder send attempts that failed",
		},
		[]string{"email_type"},
	)

	LoansSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_loans_skipped_total",
			Help: "Total number of candidate loans skipped without a send attempt",
		},
		[]string{"reason"},
	)

	AuditWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reminder_audit_write_failures_total",
			Help: "Total number of audit log entries that could not be persisted",
		},
	)

	StateUpdateFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reminder_state_update_failures_total",
			Help: "Total number of loans whose reminder state was not updated after a successful send",
		},
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reminder_run_duration_seconds",
			Help:    "Duration of a reminder dispatch run in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)
)
