package leaderboard

import (
	"context"
	"sync"

	"github.com/logicalx/logicalx/internal/domain"
)

// StaticBoard serves a fixed set of seeded players merged with scores
// recorded at runtime. Nothing is persisted.
type StaticBoard struct {
	mu     sync.RWMutex
	seed   []Seed
	scores map[string]int64
}

// NewStaticBoard creates a board over seed. A nil seed uses DefaultSeed.
func NewStaticBoard(seed []Seed) *StaticBoard {
	if seed == nil {
		seed = DefaultSeed()
	}
	return &StaticBoard{
		seed:   append([]Seed(nil), seed...),
		scores: make(map[string]int64),
	}
}

// Top returns the n best players.
func (b *StaticBoard) Top(_ context.Context, n int) ([]domain.LeaderboardEntry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	entries := make([]domain.LeaderboardEntry, 0, len(b.seed)+len(b.scores))
	for _, s := range b.seed {
		if _, ok := b.scores[s.Name]; ok {
			continue
		}
		entries = append(entries, domain.LeaderboardEntry{Name: s.Name, XP: s.XP, Badge: s.Badge})
	}
	for name, xp := range b.scores {
		entries = append(entries, domain.LeaderboardEntry{Name: name, XP: xp, Badge: b.badgeOf(name)})
	}
	return rank(entries, n), nil
}

// Record sets the score for name, replacing a seeded score of the same name.
func (b *StaticBoard) Record(_ context.Context, name string, xp int64) error {
	if name == "" {
		return nil
	}
	b.mu.Lock()
	b.scores[name] = xp
	b.mu.Unlock()
	return nil
}

func (b *StaticBoard) badgeOf(name string) string {
	for _, s := range b.seed {
		if s.Name == name {
			return s.Badge
		}
	}
	return ""
}
