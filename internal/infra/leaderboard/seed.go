// Package leaderboard ranks players by XP. The static board keeps the
// seeded players in memory; the Redis board keeps scores in a sorted set.
package leaderboard

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/logicalx/logicalx/internal/domain"
)

// Seed is a pre-ranked player.
type Seed struct {
	Name  string `yaml:"name"`
	XP    int64  `yaml:"xp"`
	Badge string `yaml:"badge,omitempty"`
}

// DefaultSeed returns the built-in player list.
func DefaultSeed() []Seed {
	return []Seed{
		{Name: "AlgorithmAce", XP: 12450, Badge: "👑"},
		{Name: "BinaryBaron", XP: 11200, Badge: "🥈"},
		{Name: "LogicLoop", XP: 10850, Badge: "🥉"},
		{Name: "SyntaxSorcerer", XP: 9500},
		{Name: "NullPointer", XP: 8200},
		{Name: "GitMaster", XP: 7600},
	}
}

type seedFile struct {
	Players []Seed `yaml:"players"`
}

// LoadSeed reads a YAML seed file of the form:
//
//	players:
//	  - name: AlgorithmAce
//	    xp: 12450
//	    badge: "👑"
func LoadSeed(path string) ([]Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed YAML: %w", err)
	}
	for i, p := range f.Players {
		if p.Name == "" {
			return nil, fmt.Errorf("seed player %d: name is required", i)
		}
		if p.XP < 0 {
			return nil, fmt.Errorf("seed player %q: negative xp", p.Name)
		}
	}
	return f.Players, nil
}

// rank orders entries by XP (ties by name) and assigns 1-based ranks.
// n <= 0 returns every entry.
func rank(entries []domain.LeaderboardEntry, n int) []domain.LeaderboardEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].XP != entries[j].XP {
			return entries[i].XP > entries[j].XP
		}
		return entries[i].Name < entries[j].Name
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
