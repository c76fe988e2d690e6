package domain

import "context"

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.

// Store is the durable key-value storage behind the progression state.
// Values are opaque JSON documents; a missing key is reported with ok=false.
type Store interface {
	Load(key string) (value []byte, ok bool, err error)
	Save(key string, value []byte) error

	// DeleteBefore removes keys that start with prefix and sort strictly
	// below prefix+bound. Returns the number of keys removed.
	DeleteBefore(prefix, bound string) (int64, error)
}

// PuzzleProvider produces a puzzle for a difficulty tier.
// An empty PuzzleType lets the provider pick one.
type PuzzleProvider interface {
	RequestPuzzle(ctx context.Context, difficulty Difficulty, kind PuzzleType) (*Puzzle, error)
}

// Leaderboard ranks players by XP.
type Leaderboard interface {
	Top(ctx context.Context, n int) ([]LeaderboardEntry, error)
	Record(ctx context.Context, name string, xp int64) error
}
