// Package metrics defines and registers all custom Prometheus metrics for the
// task tracker API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// init via promauto; HTTP request metrics come from echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tasktracker"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts register and login outcomes.
// Labels:
//   - operation: "register" or "login"
//   - result: "success", "invalid", "conflict", "unauthorized" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of register/login attempts, by outcome.",
	},
	[]string{"operation", "result"},
)

// AuthRejectionsTotal counts requests turned away by the auth gate.
// Label:
//   - reason: "missing_header", "bad_scheme", "malformed", "signature_invalid",
//     "expired", "unknown_account"
var AuthRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_rejections_total",
		Help:      "Total number of requests rejected by the authentication gate.",
	},
	[]string{"reason"},
)

// ── Task metrics ──────────────────────────────────────────────────────────────

// TaskOperationsTotal counts task endpoint outcomes.
// Labels:
//   - operation: "list", "create", "get", "update", "delete", "activity"
//   - result: "success", "invalid", "not_found", "forbidden", "error"
var TaskOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_operations_total",
		Help:      "Total number of task operations, by outcome.",
	},
	[]string{"operation", "result"},
)

// ── Activity pipeline metrics ─────────────────────────────────────────────────

// ActivityQueueDepth tracks pending entries in each dispatcher worker channel.
var ActivityQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "activity_queue_depth",
		Help:      "Current number of activity entries pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ActivityDroppedTotal counts entries dropped because a worker queue was full.
var ActivityDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_dropped_total",
		Help:      "Total number of activity entries dropped on a full queue.",
	},
)

// ActivityRecordDuration measures how long persisting one entry takes.
// Label:
//   - result: "ok" or "error"
var ActivityRecordDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "activity_record_duration_seconds",
		Help:      "Duration of persisting a single activity entry.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)
