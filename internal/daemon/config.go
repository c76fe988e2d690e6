// Package daemon manages the LogicalX daemon lifecycle and configuration.
package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// Puzzle provider names.
const (
	ProviderAuto    = "auto"
	ProviderGemini  = "gemini"
	ProviderOffline = "offline"
)

// Leaderboard backend names.
const (
	BoardStatic = "static"
	BoardRedis  = "redis"
)

// Config holds all daemon configuration.
// Precedence: defaults, then config.toml, then environment variables.
type Config struct {
	API         APIConfig         `toml:"api"`
	Storage     StorageConfig     `toml:"storage"`
	Puzzles     PuzzlesConfig     `toml:"puzzles"`
	Tasks       TasksConfig       `toml:"tasks"`
	Leaderboard LeaderboardConfig `toml:"leaderboard"`
	Telemetry   TelemetryConfig   `toml:"telemetry"`
	Logging     LoggingConfig     `toml:"logging"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host        string   `toml:"host" env:"LOGICALX_API_HOST"`
	Port        int      `toml:"port" env:"LOGICALX_API_PORT"`
	CORSOrigins []string `toml:"cors_origins" env:"LOGICALX_API_CORS_ORIGINS" envSeparator:","`
}

// StorageConfig controls where progress is kept.
type StorageConfig struct {
	Dir string `toml:"dir" env:"LOGICALX_STORAGE_DIR"`
}

// PuzzlesConfig controls the puzzle provider.
type PuzzlesConfig struct {
	// Provider is auto, gemini or offline. Auto uses Gemini when an API
	// key is present and the offline bank otherwise.
	Provider    string  `toml:"provider" env:"LOGICALX_PUZZLES_PROVIDER"`
	Model       string  `toml:"model" env:"LOGICALX_PUZZLES_MODEL"`
	APIKey      string  `toml:"api_key" env:"GEMINI_API_KEY"`
	Temperature float32 `toml:"temperature" env:"LOGICALX_PUZZLES_TEMPERATURE"`
	Timeout     string  `toml:"timeout" env:"LOGICALX_PUZZLES_TIMEOUT"`
	Fallback    bool    `toml:"fallback" env:"LOGICALX_PUZZLES_FALLBACK"`
}

// TasksConfig controls daily task retention.
type TasksConfig struct {
	RetainDays int `toml:"retain_days" env:"LOGICALX_TASKS_RETAIN_DAYS"`
}

// LeaderboardConfig selects and configures the leaderboard backend.
type LeaderboardConfig struct {
	Backend  string      `toml:"backend" env:"LOGICALX_LEADERBOARD_BACKEND"`
	SeedFile string      `toml:"seed_file" env:"LOGICALX_LEADERBOARD_SEED_FILE"`
	Redis    RedisConfig `toml:"redis"`
}

// RedisConfig configures the Redis leaderboard.
type RedisConfig struct {
	Addr     string `toml:"addr" env:"LOGICALX_REDIS_ADDR"`
	Password string `toml:"password" env:"LOGICALX_REDIS_PASSWORD"`
	DB       int    `toml:"db" env:"LOGICALX_REDIS_DB"`
	Key      string `toml:"key" env:"LOGICALX_REDIS_KEY"`
}

// TelemetryConfig controls the metrics endpoint.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus" env:"LOGICALX_TELEMETRY_PROMETHEUS"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level       string `toml:"level" env:"LOGICALX_LOG_LEVEL"`
	Development bool   `toml:"development" env:"LOGICALX_LOG_DEVELOPMENT"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:        "127.0.0.1",
			Port:        8086,
			CORSOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Dir: logicalxHome(),
		},
		Puzzles: PuzzlesConfig{
			Provider:    ProviderAuto,
			Model:       "gemini-2.5-flash",
			Temperature: 0.8,
			Timeout:     "30s",
			Fallback:    false,
		},
		Leaderboard: LeaderboardConfig{
			Backend: BoardStatic,
			Redis: RedisConfig{
				Addr: "127.0.0.1:6379",
				Key:  "logicalx:leaderboard",
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig reads ~/.logicalx/config.toml, applies environment overrides
// and validates the result.
func LoadConfig() (Config, error) {
	return LoadConfigFrom(filepath.Join(logicalxHome(), "config.toml"))
}

// LoadConfigFrom is LoadConfig with an explicit file path. A missing file
// is not an error.
func LoadConfigFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("stat config: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SaveConfig writes the config to ~/.logicalx/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(logicalxHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// Validate rejects settings the daemon cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, fmt.Errorf("api.port %d out of range", c.API.Port))
	}
	if c.Storage.Dir == "" {
		errs = append(errs, errors.New("storage.dir is required"))
	}

	switch c.Puzzles.Provider {
	case "", ProviderAuto, ProviderOffline:
	case ProviderGemini:
		if c.Puzzles.APIKey == "" {
			errs = append(errs, errors.New("puzzles.provider gemini needs an API key (GEMINI_API_KEY)"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown puzzles.provider %q", c.Puzzles.Provider))
	}
	if c.Puzzles.Temperature < 0 || c.Puzzles.Temperature > 2 {
		errs = append(errs, fmt.Errorf("puzzles.temperature %.2f out of range [0, 2]", c.Puzzles.Temperature))
	}
	if c.Puzzles.Timeout != "" {
		if _, err := time.ParseDuration(c.Puzzles.Timeout); err != nil {
			errs = append(errs, fmt.Errorf("puzzles.timeout: %w", err))
		}
	}

	if c.Tasks.RetainDays < 0 {
		errs = append(errs, errors.New("tasks.retain_days must not be negative"))
	}

	switch c.Leaderboard.Backend {
	case "", BoardStatic:
	case BoardRedis:
		if c.Leaderboard.Redis.Addr == "" {
			errs = append(errs, errors.New("leaderboard.redis.addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown leaderboard.backend %q", c.Leaderboard.Backend))
	}

	if _, err := parseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// PuzzleProvider resolves the auto setting to a concrete provider name.
func (c PuzzlesConfig) PuzzleProvider() string {
	switch c.Provider {
	case ProviderGemini, ProviderOffline:
		return c.Provider
	}
	if c.APIKey != "" {
		return ProviderGemini
	}
	return ProviderOffline
}

// logicalxHome returns the LogicalX data directory.
func logicalxHome() string {
	if env := os.Getenv("LOGICALX_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".logicalx")
}

// LogicalxHome is exported for use by other packages.
func LogicalxHome() string {
	return logicalxHome()
}

// parseDuration parses a duration string, returning a fallback on error.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
