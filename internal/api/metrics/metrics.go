// Package metrics defines and registers all custom Prometheus metrics for
// the roadmap API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default registry via promauto at package load;
// the router exposes them on GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "roadmap"

// ── Generation metrics ────────────────────────────────────────────────────────

// GenerationsStartedTotal counts generation streams that passed eligibility
// and opened an outbound stream.
var GenerationsStartedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "generations_started_total",
		Help:      "Total number of generation streams opened after eligibility checks.",
	},
)

// GenerationFallbacksTotal counts streams that fell back to the mock payload
// after a provider failure.
var GenerationFallbacksTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "generation_fallbacks_total",
		Help:      "Total number of generation streams completed with the fallback payload.",
	},
)

// GenerationDuration measures wall time of a full stream.
// Label:
//   - outcome: "delivered" (live provider content) or "fallback"
var GenerationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "generation_duration_seconds",
		Help:      "Duration of a generation stream from authorization to last chunk.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"outcome"},
)

// CreditsConsumedTotal counts credits charged to metered accounts.
var CreditsConsumedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credits_consumed_total",
		Help:      "Total number of credits decremented by generation attempts.",
	},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthRejectionsTotal counts rejected requests at the auth boundary.
// Label:
//   - reason: "missing_header", "bad_header", "invalid_token"
var AuthRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_rejections_total",
		Help:      "Total number of requests rejected by the bearer-token middleware.",
	},
	[]string{"reason"},
)

// ── Audit pipeline metrics ────────────────────────────────────────────────────

// AuditQueueDepth tracks the current number of entries waiting in each
// dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit entries pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditErrorsTotal counts audit entries that failed to persist.
var AuditErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_errors_total",
		Help:      "Total number of audit entries that failed to persist.",
	},
)
