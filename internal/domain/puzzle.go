package domain

import "fmt"

// Difficulty is a puzzle tier. Daily tasks carry one task per tier.
type Difficulty string

const (
	Beginner     Difficulty = "Beginner"
	Intermediate Difficulty = "Intermediate"
	Expert       Difficulty = "Expert"
)

// Difficulties lists the tiers in ascending order.
var Difficulties = []Difficulty{Beginner, Intermediate, Expert}

// ParseDifficulty validates a tier name.
func ParseDifficulty(s string) (Difficulty, error) {
	for _, d := range Difficulties {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// XPReward is the base XP a correct answer at this tier is worth.
func (d Difficulty) XPReward() int64 {
	switch d {
	case Intermediate:
		return 50
	case Expert:
		return 100
	default:
		return 25
	}
}

// PuzzleType is the flavour of a puzzle.
type PuzzleType string

const (
	PuzzlePattern     PuzzleType = "Pattern"
	PuzzleLogic       PuzzleType = "Logic"
	PuzzleCodeSnippet PuzzleType = "CodeSnippet"
	PuzzleBrainTeaser PuzzleType = "BrainTeaser"
)

// PuzzleTypes lists every puzzle type.
var PuzzleTypes = []PuzzleType{PuzzlePattern, PuzzleLogic, PuzzleCodeSnippet, PuzzleBrainTeaser}

// Puzzle is a multiple-choice question. It is never persisted.
type Puzzle struct {
	ID                 string     `json:"id"`
	Question           string     `json:"question"`
	CodeSnippet        string     `json:"codeSnippet,omitempty"`
	Options            []string   `json:"options"`
	CorrectAnswerIndex int        `json:"correctAnswerIndex"`
	Explanation        string     `json:"explanation"`
	Difficulty         Difficulty `json:"difficulty"`
	Type               PuzzleType `json:"type"`
	XPReward           int64      `json:"xpReward"`
}

// Validate checks the shape invariants: at least two options and an
// answer index that points at one of them.
func (p *Puzzle) Validate() error {
	if p == nil {
		return ErrInvalidPuzzle
	}
	if p.Question == "" {
		return fmt.Errorf("%w: empty question", ErrInvalidPuzzle)
	}
	if len(p.Options) < 2 {
		return fmt.Errorf("%w: %d options", ErrInvalidPuzzle, len(p.Options))
	}
	if p.CorrectAnswerIndex < 0 || p.CorrectAnswerIndex >= len(p.Options) {
		return fmt.Errorf("%w: answer index %d out of range", ErrInvalidPuzzle, p.CorrectAnswerIndex)
	}
	return nil
}

// DailyTask is one per-tier puzzle slot for a calendar day.
type DailyTask struct {
	ID         string     `json:"id"`
	Difficulty Difficulty `json:"difficulty"`
	Completed  bool       `json:"completed"`
	PuzzleID   string     `json:"puzzleId,omitempty"`
}

// AllCompleted reports whether every task in the set is done.
// An empty set is never complete.
func AllCompleted(tasks []DailyTask) bool {
	if len(tasks) == 0 {
		return false
	}
	for _, t := range tasks {
		if !t.Completed {
			return false
		}
	}
	return true
}
