// Package metrics declares the Prometheus collectors of the rewards engine.
// They are registered on the default registry and served by internal/server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ecosignal"

// PointsApplied counts absolute points moved through the ledger.
// direction is "credit" or "debit".
var PointsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "ledger",
	Name:      "points_total",
	Help:      "Points applied to user balances, by reason and direction",
}, []string{"reason", "direction"})

// BadgesAwarded counts badge grants.
var BadgesAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "rewards",
	Name:      "badges_awarded_total",
	Help:      "Badges granted, by badge code and path (auto or manual)",
}, []string{"code", "path"})

// LevelUps counts promotions by the level reached.
var LevelUps = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "rewards",
	Name:      "level_ups_total",
	Help:      "Level promotions, by level reached",
}, []string{"level"})

// ReportsProcessed counts report moderation outcomes.
var ReportsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "reports",
	Name:      "processed_total",
	Help:      "Reports moderated, by outcome",
}, []string{"outcome"})

// AnalyticsEvents counts analytics events by sink and outcome (written, failed, dropped).
var AnalyticsEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "analytics",
	Name:      "events_total",
	Help:      "Analytics events handled, by sink and outcome",
}, []string{"sink", "outcome"})

// AnalyticsQueueDepth tracks events waiting to be written.
var AnalyticsQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "analytics",
	Name:      "queue_depth",
	Help:      "Analytics events buffered and not yet written",
})
