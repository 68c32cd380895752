// Package metrics defines and registers all custom Prometheus metrics for the
// DailySkills marketplace API. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto; request-level HTTP metrics come from the
// echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dailyskills"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts login, registration and logout attempts.
// Labels:
//   - operation: "login", "register" or "logout"
//   - result: "success" or "failure"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts, by operation and result.",
	},
	[]string{"operation", "result"},
)

// ── Marketplace metrics ───────────────────────────────────────────────────────

// JobsCreatedTotal counts newly posted jobs.
// Label:
//   - category: the job category chosen by the employer
var JobsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "jobs_created_total",
		Help:      "Total number of jobs posted, by category.",
	},
	[]string{"category"},
)

// MessagesSentTotal counts chat messages accepted for delivery.
var MessagesSentTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_sent_total",
		Help:      "Total number of chat messages sent.",
	},
)

// ── Change feed metrics ───────────────────────────────────────────────────────

// ChangeQueueDepth tracks the number of change notifications waiting in the
// dispatcher worker channels.
var ChangeQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "change_queue_depth",
		Help:      "Current number of change notifications pending in the dispatcher.",
	},
)

// ActiveStreams tracks open message streams.
var ActiveStreams = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "message_streams_active",
		Help:      "Current number of open conversation streams.",
	},
)

// Result returns the result label for err.
func Result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
