// Package metrics defines and registers the custom Prometheus metrics of the
// catalog service. It is the single source of truth for metric names, labels
// and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// initialisation through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "catalog"

// ── Authentication metrics ────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - outcome: "success", "user_not_found", "bad_password" or "hash_error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by internal outcome.",
	},
	[]string{"outcome"},
)

// RegistrationsTotal counts registration requests that passed form validation.
// Label:
//   - result: "created", "duplicate", "rejected" or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// SessionResolutionsTotal counts session token resolutions.
// Label:
//   - result: "authenticated", "invalid", "expired" or "orphaned"
var SessionResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_resolutions_total",
		Help:      "Total number of session token resolutions, by result.",
	},
	[]string{"result"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditQueueDepth tracks the attempts waiting in each audit worker channel.
// Label:
//   - worker_id: numeric worker index
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of login attempts pending in each audit worker channel.",
	},
	[]string{"worker_id"},
)

// AuditDroppedTotal counts attempts dropped because a worker channel was full.
var AuditDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_dropped_total",
		Help:      "Total number of login attempts dropped before reaching the audit store.",
	},
)

// AuditErrorsTotal counts attempts the audit store failed to persist.
var AuditErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_errors_total",
		Help:      "Total number of login attempts that failed to persist to the audit store.",
	},
)

// ── Product metrics ───────────────────────────────────────────────────────────

// ProductsSubmittedTotal counts stored product submissions.
// Label:
//   - has_image: "true" or "false"
var ProductsSubmittedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "products_submitted_total",
		Help:      "Total number of products submitted, by image presence.",
	},
	[]string{"has_image"},
)
