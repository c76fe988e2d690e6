package engagement

import (
	"github.com/logicalx/logicalx/internal/domain"
)

// Badges returns the badge catalog. Each badge is checked against the
// stats snapshot after every completion event.
func Badges() []domain.Badge {
	return []domain.Badge{
		{
			ID: "novice", Name: "Hello World", Icon: "🌱",
			Description: "Complete your first puzzle",
			Predicate:   func(s domain.UserStats) bool { return s.SolvedCount >= 1 },
		},
		{
			ID: "streak_3", Name: "On Fire", Icon: "🔥",
			Description: "3-day streak",
			Predicate:   func(s domain.UserStats) bool { return s.Streak >= 3 },
		},
		{
			ID: "expert_solver", Name: "Code Ninja", Icon: "🥷",
			Description: "Solve 10 Expert puzzles",
			Predicate:   func(s domain.UserStats) bool { return s.ExpertCorrect >= 10 },
		},
		{
			ID: "logic_master", Name: "Vulcan Logic", Icon: "🖖",
			Description: "100% Accuracy on 5 puzzles in a row",
			Predicate:   func(s domain.UserStats) bool { return s.CorrectRun >= 5 },
		},
	}
}

// BadgeByID looks up a catalog entry.
func BadgeByID(id string) (domain.Badge, bool) {
	for _, b := range Badges() {
		if b.ID == id {
			return b, true
		}
	}
	return domain.Badge{}, false
}

// AwardBadges adds every badge whose predicate now holds and returns the
// ids that were newly added. Already-earned badges are skipped.
func AwardBadges(stats *domain.UserStats) []string {
	var earned []string
	for _, def := range Badges() {
		if stats.HasBadge(def.ID) {
			continue
		}
		if def.Predicate != nil && def.Predicate(*stats) {
			stats.Badges = append(stats.Badges, def.ID)
			earned = append(earned, def.ID)
		}
	}
	return earned
}
