package puzzle

import (
	"context"
	"fmt"
	"sync"

	"github.com/logicalx/logicalx/internal/domain"
)

// OfflineProvider serves puzzles from a built-in bank. Each tier rotates
// through its entries in order, so the sequence is deterministic.
type OfflineProvider struct {
	mu   sync.Mutex
	next map[domain.Difficulty]int
}

// NewOfflineProvider creates an offline provider.
func NewOfflineProvider() *OfflineProvider {
	return &OfflineProvider{next: make(map[domain.Difficulty]int)}
}

// RequestPuzzle returns the next bank entry for the tier. When kind is set
// and the tier has an entry of that type, that entry is returned instead.
func (o *OfflineProvider) RequestPuzzle(ctx context.Context, difficulty domain.Difficulty, kind domain.PuzzleType) (*domain.Puzzle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries := bank[difficulty]
	if len(entries) == 0 {
		return nil, fmt.Errorf("no offline puzzles for difficulty %q", difficulty)
	}

	if kind != "" {
		for _, e := range entries {
			if e.Type == kind {
				return stamp(e, difficulty), nil
			}
		}
	}

	o.mu.Lock()
	i := o.next[difficulty] % len(entries)
	o.next[difficulty] = i + 1
	o.mu.Unlock()

	return stamp(entries[i], difficulty), nil
}

// stamp copies a bank entry and fills in the tier and reward.
func stamp(e domain.Puzzle, difficulty domain.Difficulty) *domain.Puzzle {
	p := e
	p.Options = append([]string(nil), e.Options...)
	p.Difficulty = difficulty
	p.XPReward = difficulty.XPReward()
	return &p
}

var bank = map[domain.Difficulty][]domain.Puzzle{
	domain.Beginner: {
		{
			ID:                 "offline-beg-1",
			Type:               domain.PuzzlePattern,
			Question:           "What comes next in the sequence 2, 4, 8, 16, ...?",
			Options:            []string{"18", "24", "32", "64"},
			CorrectAnswerIndex: 2,
			Explanation:        "Each term doubles the previous one, so 16 x 2 = 32.",
		},
		{
			ID:                 "offline-beg-2",
			Type:               domain.PuzzleCodeSnippet,
			Question:           "How many times does the loop body run?",
			CodeSnippet:        "for i := 0; i < 10; i += 3 {\n\tfmt.Println(i)\n}",
			Options:            []string{"3", "4", "10", "Infinite"},
			CorrectAnswerIndex: 1,
			Explanation:        "i takes the values 0, 3, 6 and 9 before reaching 12.",
		},
		{
			ID:                 "offline-beg-3",
			Type:               domain.PuzzleLogic,
			Question:           "If every bug is a feature and no feature is documented, which must be true?",
			Options:            []string{"Some bugs are documented", "No bug is documented", "Every feature is a bug", "Nothing can be concluded"},
			CorrectAnswerIndex: 1,
			Explanation:        "Bugs are a subset of features and no feature is documented, so no bug is.",
		},
	},
	domain.Intermediate: {
		{
			ID:                 "offline-int-1",
			Type:               domain.PuzzleLogic,
			Question:           "Which expression is equivalent to !(a && b)?",
			Options:            []string{"!a && !b", "!a || !b", "a || b", "!a || b"},
			CorrectAnswerIndex: 1,
			Explanation:        "De Morgan's law: the negation of a conjunction is the disjunction of the negations.",
		},
		{
			ID:                 "offline-int-2",
			Type:               domain.PuzzleCodeSnippet,
			Question:           "What does f(5) return?",
			CodeSnippet:        "func f(n int) int {\n\tif n <= 1 {\n\t\treturn n\n\t}\n\treturn f(n-1) + f(n-2)\n}",
			Options:            []string{"3", "5", "8", "13"},
			CorrectAnswerIndex: 1,
			Explanation:        "f is the Fibonacci function: 0, 1, 1, 2, 3, 5.",
		},
		{
			ID:                 "offline-int-3",
			Type:               domain.PuzzleBrainTeaser,
			Question:           "A stack receives push 1, push 2, pop, push 3, push 4, pop, pop. What is left?",
			Options:            []string{"[1]", "[1, 3]", "[3]", "[]"},
			CorrectAnswerIndex: 0,
			Explanation:        "The pops remove 2, then 4, then 3, leaving only 1.",
		},
	},
	domain.Expert: {
		{
			ID:                 "offline-exp-1",
			Type:               domain.PuzzleCodeSnippet,
			Question:           "Two goroutines run this increment 1000 times each without synchronization. What can the final count be?",
			CodeSnippet:        "count++",
			Options:            []string{"Exactly 2000", "At most 2000", "At least 2000", "Exactly 1000"},
			CorrectAnswerIndex: 1,
			Explanation:        "Increments can be lost in a data race, so any value up to 2000 is possible.",
		},
		{
			ID:                 "offline-exp-2",
			Type:               domain.PuzzlePattern,
			Question:           "What is the worst-case time of finding an element in a balanced binary search tree of n nodes?",
			Options:            []string{"O(1)", "O(log n)", "O(n)", "O(n log n)"},
			CorrectAnswerIndex: 1,
			Explanation:        "A balanced tree has height proportional to log n.",
		},
		{
			ID:                 "offline-exp-3",
			Type:               domain.PuzzleBrainTeaser,
			Question:           "You have 1000 bottles, one poisoned, and test strips that show results after one day. How many strips find the poison in one day?",
			Options:            []string{"1", "10", "100", "500"},
			CorrectAnswerIndex: 1,
			Explanation:        "Label bottles in binary; 10 strips encode 1024 outcomes.",
		},
	},
}
