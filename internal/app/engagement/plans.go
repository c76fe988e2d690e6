package engagement

import "github.com/logicalx/logicalx/internal/domain"

// PlanInfo is a pricing catalog entry.
type PlanInfo struct {
	ID          domain.Plan `json:"id"`
	Title       string      `json:"title"`
	Price       string      `json:"price"`
	Period      string      `json:"period"`
	Description string      `json:"description"`
	Features    []string    `json:"features"`
	Highlight   bool        `json:"highlight"`
}

// Plans returns the subscription catalog.
func Plans() []PlanInfo {
	return []PlanInfo{
		{
			ID: domain.PlanFree, Title: "Free", Price: "₹0", Period: "Forever",
			Description: "Perfect for getting started",
			Features:    []string{"Beginner questions only", "Standard Daily Tasks", "Community Leaderboard"},
		},
		{
			ID: domain.PlanProMonthly, Title: "Pro Monthly", Price: "₹99", Period: "/ month",
			Description: "Supercharge your logic",
			Features:    []string{"All Levels (Beginner, Int, Expert)", "XP Boost (1.5x)", "Unlock Exclusive Badges", "Detailed Explanations"},
			Highlight:   true,
		},
		{
			ID: domain.PlanProYearly, Title: "Pro Yearly", Price: "₹499", Period: "/ year",
			Description: "Maximum value for serious solvers",
			Features:    []string{"All Pro Monthly features", "Ad-Free Experience", "Exclusive Puzzle Sets", "Priority Support", "Early Access to New Features"},
		},
	}
}
