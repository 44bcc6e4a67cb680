// Package metrics defines and registers all custom Prometheus metrics for the
// identity service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation and exposed by the echoprometheus handler on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "identity"

// ── Authentication metrics ────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Labels:
//   - result: "success", "invalid_credentials" or "error"
//   - identifier: "email" or "username"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result and identifier kind.",
	},
	[]string{"result", "identifier"},
)

// TokensRevokedTotal counts access tokens revoked through logout.
var TokensRevokedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_revoked_total",
		Help:      "Total number of access tokens revoked before expiry.",
	},
)

// ── Account metrics ───────────────────────────────────────────────────────────

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "success", "rejected" (validation or duplicate), "rolled_back" or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// ProfileMutationsTotal counts profile mutations.
// Labels:
//   - operation: "update_email", "update_password", "update_name" or "delete"
//   - result: "success", "rejected" or "error"
var ProfileMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "profile_mutations_total",
		Help:      "Total number of profile mutations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// UsernameCandidates observes how many candidates UpdateEmail tried before
// finding a free username.
var UsernameCandidates = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "username_candidates",
		Help:      "Number of username candidates tried per email change.",
		Buckets:   []float64{1, 2, 3, 4, 5, 8, 13},
	},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AccountEventsTotal counts audit events persisted.
// Label:
//   - type: the account event type (e.g. "registered")
var AccountEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "account_events_total",
		Help:      "Total number of account events persisted to the audit trail.",
	},
	[]string{"type"},
)

// AuditErrorsTotal counts audit events that were not persisted.
// Label:
//   - reason: "dropped" (queue full), "invalid" or "insert_failed"
var AuditErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_errors_total",
		Help:      "Total number of account events that failed to reach the audit trail.",
	},
	[]string{"reason"},
)

// AuditQueueDepth tracks the number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of account events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditProcessingDuration measures how long a single event takes to persist.
var AuditProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "audit_processing_duration_seconds",
		Help:      "Duration of account event processing from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"type"},
)
