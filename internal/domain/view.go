package domain

import "fmt"

// View is the screen the session is currently showing.
type View string

const (
	ViewDashboard    View = "dashboard"
	ViewGame         View = "game"
	ViewLeaderboard  View = "leaderboard"
	ViewProfile      View = "profile"
	ViewSubscription View = "subscription"
)

// Views lists every valid view.
var Views = []View{ViewDashboard, ViewGame, ViewLeaderboard, ViewProfile, ViewSubscription}

// ParseView rejects anything outside the closed set of views.
func ParseView(s string) (View, error) {
	for _, v := range Views {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidView, s)
}
