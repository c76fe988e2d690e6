// Package metrics provides Prometheus metrics for LogicalX:
// puzzle requests, completions, XP, levels, streaks and the access gate.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Puzzle Provider ────────────────────────────────────────────────────────

// PuzzleRequestLatency tracks provider request duration in seconds.
var PuzzleRequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "logicalx",
	Name:      "puzzle_request_latency_seconds",
	Help:      "Puzzle provider request duration in seconds.",
	Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
}, []string{"difficulty"})

// PuzzleRequestsFailed tracks failed provider requests.
var PuzzleRequestsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "logicalx",
	Name:      "puzzle_requests_failed_total",
	Help:      "Total puzzle provider failures.",
}, []string{"difficulty"})

// PuzzleFallbacks tracks fallback puzzles served instead of generated ones.
var PuzzleFallbacks = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "logicalx",
	Name:      "puzzle_fallbacks_total",
	Help:      "Total fallback puzzles served after provider errors.",
})

// ─── Progression ────────────────────────────────────────────────────────────

// PuzzlesCompleted tracks completion events by tier and result.
var PuzzlesCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "logicalx",
	Name:      "puzzles_completed_total",
	Help:      "Total answered puzzles.",
}, []string{"difficulty", "result"})

// XPAwarded tracks total XP granted.
var XPAwarded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "logicalx",
	Name:      "xp_awarded_total",
	Help:      "Total XP granted for correct answers.",
})

// LevelUps tracks level advances.
var LevelUps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "logicalx",
	Name:      "level_ups_total",
	Help:      "Total level advances.",
})

// BadgesAwarded tracks badge unlocks by id.
var BadgesAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "logicalx",
	Name:      "badges_awarded_total",
	Help:      "Total badges awarded.",
}, []string{"badge"})

// CurrentStreak tracks the local user's streak.
var CurrentStreak = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "logicalx",
	Name:      "streak_days",
	Help:      "Current daily-task streak in days.",
})

// CurrentLevel tracks the local user's level.
var CurrentLevel = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "logicalx",
	Name:      "level",
	Help:      "Current level.",
})

// ─── Access ─────────────────────────────────────────────────────────────────

// AccessDenied tracks puzzle starts blocked by the plan gate.
var AccessDenied = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "logicalx",
	Name:      "access_denied_total",
	Help:      "Puzzle starts rejected by the subscription gate.",
}, []string{"difficulty"})

// Subscriptions tracks plan changes by target plan.
var Subscriptions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "logicalx",
	Name:      "subscriptions_total",
	Help:      "Plan changes by target plan.",
}, []string{"plan"})

// ─── Health ─────────────────────────────────────────────────────────────────

// HealthCheckFailures tracks failed health probes by check name.
var HealthCheckFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "logicalx",
	Name:      "health_check_failures_total",
	Help:      "Failed health probes by check.",
}, []string{"check"})
