package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors carry no infrastructure dependency.

var (
	// Access policy errors
	ErrUpgradeRequired  = errors.New("upgrade to Pro to access Intermediate and Expert challenges")
	ErrNotAuthenticated = errors.New("sign in first")

	// Puzzle flow errors
	ErrNoActivePuzzle    = errors.New("no active puzzle")
	ErrPuzzleAnswered    = errors.New("puzzle already answered")
	ErrPuzzleUnanswered  = errors.New("puzzle not answered yet")
	ErrInvalidOption     = errors.New("selected option out of range")
	ErrPuzzleUnavailable = errors.New("failed to load puzzle")
	ErrInvalidPuzzle     = errors.New("invalid puzzle")

	// Lookup / validation errors
	ErrTaskNotFound = errors.New("daily task not found")
	ErrInvalidPlan  = errors.New("invalid subscription plan")
	ErrInvalidView  = errors.New("invalid view")
)
