// Package domain holds the LogicalX core types: user progress, daily
// tasks, puzzles and the closed enums the rest of the app switches on.
// Domain types carry no infrastructure dependency.
package domain

import (
	"fmt"
	"time"
)

// ─── Plan Types ─────────────────────────────────────────────────────────────

// Plan is a subscription tier.
type Plan string

const (
	PlanFree       Plan = "free"
	PlanProMonthly Plan = "pro_monthly"
	PlanProYearly  Plan = "pro_yearly"
)

// ParsePlan validates a plan identifier.
func ParsePlan(s string) (Plan, error) {
	switch p := Plan(s); p {
	case PlanFree, PlanProMonthly, PlanProYearly:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPlan, s)
}

// IsPro reports whether the plan is a paid tier. An unset plan counts as free.
func (p Plan) IsPro() bool {
	return p == PlanProMonthly || p == PlanProYearly
}

// XPMultiplier is the reward multiplier applied to correct answers.
func (p Plan) XPMultiplier() float64 {
	if p.IsPro() {
		return 1.5
	}
	return 1.0
}

// ─── Level / XP Types ───────────────────────────────────────────────────────

// XPThresholds holds the cumulative XP needed for each level, indexed by
// level-1. Advancing from level L requires XP >= XPThresholds[L].
var XPThresholds = []int64{0, 100, 300, 600, 1000, 1500, 2100, 2800, 3600, 5000}

// MaxLevel is the highest reachable level.
var MaxLevel = len(XPThresholds)

// NextLevelXP returns the XP needed to leave the given level and whether
// such a threshold exists.
func NextLevelXP(level int) (int64, bool) {
	if level < 1 || level >= len(XPThresholds) {
		return 0, false
	}
	return XPThresholds[level], true
}

// ─── User Stats ─────────────────────────────────────────────────────────────

// UserStats is the single progress record of the local user. Field names
// follow the stored JSON document.
type UserStats struct {
	XP               int64    `json:"xp"`
	Level            int      `json:"level"`
	Streak           int      `json:"streak"`
	LastLoginDate    string   `json:"lastLoginDate"`
	SolvedCount      int      `json:"solvedCount"`
	CorrectCount     int      `json:"correctCount"`
	Badges           []string `json:"badges"`
	Name             string   `json:"name,omitempty"`
	Email            string   `json:"email,omitempty"`
	AvatarURL        string   `json:"avatarUrl,omitempty"`
	SubscriptionPlan Plan     `json:"subscriptionPlan,omitempty"`

	ExpertCorrect int `json:"expertCorrect,omitempty"`
	CorrectRun    int `json:"correctRun,omitempty"`
}

// DefaultUserStats returns the first-run record.
func DefaultUserStats() UserStats {
	return UserStats{
		Level:            1,
		Badges:           []string{},
		Name:             "Guest",
		SubscriptionPlan: PlanFree,
	}
}

// Plan returns the effective plan; unset means free.
func (s UserStats) Plan() Plan {
	if s.SubscriptionPlan == "" {
		return PlanFree
	}
	return s.SubscriptionPlan
}

// HasBadge reports whether the badge id is already earned.
func (s UserStats) HasBadge(id string) bool {
	for _, b := range s.Badges {
		if b == id {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with s.
func (s UserStats) Clone() UserStats {
	c := s
	c.Badges = append([]string(nil), s.Badges...)
	if c.Badges == nil {
		c.Badges = []string{}
	}
	return c
}

// Accuracy returns the share of correct answers (0-100).
func (s UserStats) Accuracy() float64 {
	if s.SolvedCount == 0 {
		return 0
	}
	return float64(s.CorrectCount) / float64(s.SolvedCount) * 100.0
}

// ProgressPct returns progress toward the next level (0.0 to 100.0).
func (s UserStats) ProgressPct() float64 {
	next, ok := NextLevelXP(s.Level)
	if !ok {
		return 100.0
	}
	var cur int64
	if s.Level >= 1 && s.Level <= len(XPThresholds) {
		cur = XPThresholds[s.Level-1]
	}
	span := next - cur
	if span <= 0 {
		return 100.0
	}
	pct := float64(s.XP-cur) / float64(span) * 100.0
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct
}

// ─── Badge Types ────────────────────────────────────────────────────────────

// Badge describes an earnable badge.
type Badge struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Icon        string               `json:"icon"`
	Predicate   func(UserStats) bool `json:"-"`
}

// ─── Leaderboard Types ──────────────────────────────────────────────────────

// LeaderboardEntry is a ranked player.
type LeaderboardEntry struct {
	Rank  int    `json:"rank"`
	Name  string `json:"name"`
	XP    int64  `json:"xp"`
	Badge string `json:"badge,omitempty"`
}

// ─── Calendar Days ──────────────────────────────────────────────────────────

// DateLayout is the calendar-day format used in stored records and keys.
const DateLayout = "2006-01-02"

// DateKey returns the UTC calendar day of t.
func DateKey(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// DaysBetween returns the number of whole calendar days from a to b.
func DaysBetween(a, b string) (int, error) {
	ta, err := time.Parse(DateLayout, a)
	if err != nil {
		return 0, fmt.Errorf("parse date %q: %w", a, err)
	}
	tb, err := time.Parse(DateLayout, b)
	if err != nil {
		return 0, fmt.Errorf("parse date %q: %w", b, err)
	}
	return int(tb.Sub(ta).Hours() / 24), nil
}
