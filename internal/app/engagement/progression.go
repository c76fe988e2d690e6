package engagement

import (
	"github.com/logicalx/logicalx/internal/domain"
)

// Demo identity attached by the mock sign-in.
const (
	DemoName   = "Alex Developer"
	DemoEmail  = "alex.dev@gmail.com"
	DemoAvatar = "https://api.dicebear.com/7.x/avataaars/svg?seed=Alex"
	GuestName  = "Guest"
)

// Outcome reports what a completion event changed.
type Outcome struct {
	Success        bool     `json:"success"`
	XPGained       int64    `json:"xp_gained"`
	LeveledUp      bool     `json:"leveled_up"`
	Level          int      `json:"level"`
	TaskCompleted  bool     `json:"task_completed"`
	StreakExtended bool     `json:"streak_extended"`
	NewBadges      []string `json:"new_badges,omitempty"`
}

// Login attaches the demo identity. Numeric progress is untouched and an
// unset plan defaults to free.
func Login(stats domain.UserStats, today string) domain.UserStats {
	next := stats.Clone()
	next.Name = DemoName
	next.Email = DemoEmail
	next.AvatarURL = DemoAvatar
	next.LastLoginDate = today
	if next.SubscriptionPlan == "" {
		next.SubscriptionPlan = domain.PlanFree
	}
	return next
}

// Logout clears identity fields and drops back to the free plan.
// Numeric progress is retained.
func Logout(stats domain.UserStats) domain.UserStats {
	next := stats.Clone()
	next.Name = GuestName
	next.Email = ""
	next.AvatarURL = ""
	next.SubscriptionPlan = domain.PlanFree
	return next
}

// Subscribe switches the plan. No payment is taken and no progress changes.
// celebrate is true for paid plans.
func Subscribe(stats domain.UserStats, plan domain.Plan) (next domain.UserStats, celebrate bool) {
	next = stats.Clone()
	next.SubscriptionPlan = plan
	return next, plan.IsPro()
}

// CompletePuzzle applies the answer to an active puzzle.
//
// solvedCount always increments. A correct answer earns XP (1.5x on paid
// plans), may advance one level, and completes the active daily task if
// one is set; finishing the last open task of the day extends the streak.
// A nil puzzle is a no-op. The inputs are not modified.
func CompletePuzzle(
	stats domain.UserStats,
	tasks []domain.DailyTask,
	puzzle *domain.Puzzle,
	activeTaskID string,
	selected int,
) (domain.UserStats, []domain.DailyTask, Outcome) {
	next := stats.Clone()
	nextTasks := append([]domain.DailyTask(nil), tasks...)
	if puzzle == nil {
		return next, nextTasks, Outcome{Level: next.Level}
	}

	out := Outcome{Success: selected == puzzle.CorrectAnswerIndex}
	next.SolvedCount++

	if out.Success {
		next.CorrectCount++
		next.CorrectRun++
		if puzzle.Difficulty == domain.Expert {
			next.ExpertCorrect++
		}

		out.XPGained = awardXP(puzzle.XPReward, next.Plan())
		next.XP += out.XPGained
		out.LeveledUp = levelUp(&next)

		if activeTaskID != "" {
			out.TaskCompleted, out.StreakExtended = completeTask(nextTasks, activeTaskID, puzzle.ID)
			if out.StreakExtended {
				next.Streak++
			}
		}
	} else {
		next.CorrectRun = 0
	}

	out.NewBadges = AwardBadges(&next)
	out.Level = next.Level
	return next, nextTasks, out
}
