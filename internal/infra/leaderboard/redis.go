package leaderboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/logicalx/logicalx/internal/domain"
)

// DefaultRedisKey is the sorted set holding the scores.
const DefaultRedisKey = "logicalx:leaderboard"

// RedisConfig configures the Redis board.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// RedisBoard keeps scores in a Redis sorted set. The seed players are
// added on first use without overwriting existing scores.
type RedisBoard struct {
	client *redis.Client
	key    string
	seed   []Seed
	logger *zap.Logger

	mu     sync.Mutex
	seeded bool
}

// NewRedisBoard connects to Redis and verifies the connection.
func NewRedisBoard(ctx context.Context, cfg RedisConfig, seed []Seed, logger *zap.Logger) (*RedisBoard, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Key == "" {
		cfg.Key = DefaultRedisKey
	}
	if seed == nil {
		seed = DefaultSeed()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisBoard{
		client: client,
		key:    cfg.Key,
		seed:   seed,
		logger: logger.Named("leaderboard"),
	}, nil
}

// ensureSeed adds the seed players once per process.
func (b *RedisBoard) ensureSeed(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.seeded || len(b.seed) == 0 {
		return nil
	}

	members := make([]redis.Z, 0, len(b.seed))
	for _, s := range b.seed {
		members = append(members, redis.Z{Score: float64(s.XP), Member: s.Name})
	}
	added, err := b.client.ZAddNX(ctx, b.key, members...).Result()
	if err != nil {
		return fmt.Errorf("seed leaderboard: %w", err)
	}
	b.seeded = true
	b.logger.Debug("leaderboard seeded", zap.String("key", b.key), zap.Int64("added", added))
	return nil
}

// Top returns the n best players.
func (b *RedisBoard) Top(ctx context.Context, n int) ([]domain.LeaderboardEntry, error) {
	if err := b.ensureSeed(ctx); err != nil {
		return nil, err
	}
	stop := int64(-1)
	if n > 0 {
		stop = int64(n - 1)
	}

	zs, err := b.client.ZRevRangeWithScores(ctx, b.key, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("read leaderboard: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(zs))
	for _, z := range zs {
		name, ok := z.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, domain.LeaderboardEntry{Name: name, XP: int64(z.Score), Badge: b.badgeOf(name)})
	}
	return rank(entries, n), nil
}

// Record sets the score for name.
func (b *RedisBoard) Record(ctx context.Context, name string, xp int64) error {
	if name == "" {
		return nil
	}
	if err := b.ensureSeed(ctx); err != nil {
		return err
	}
	if err := b.client.ZAdd(ctx, b.key, redis.Z{Score: float64(xp), Member: name}).Err(); err != nil {
		return fmt.Errorf("record score: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (b *RedisBoard) Close() error {
	return b.client.Close()
}

func (b *RedisBoard) badgeOf(name string) string {
	for _, s := range b.seed {
		if s.Name == name {
			return s.Badge
		}
	}
	return ""
}
