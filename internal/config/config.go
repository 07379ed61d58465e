package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/portal.db"`
	RedisURL string     `env:"REDIS_URL" envDefault:""`
	DataDir  string     `env:"DATA_DIR" envDefault:"data/progress"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir   string     `env:"SPA_DIR" envDefault:"../web/dist"`

	// Admin account seeded on first run. Seeding is skipped when empty.
	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:""`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:""`

	// LeaderboardRefresh is the poll interval for pushing leaderboard
	// updates to event-stream subscribers.
	LeaderboardRefresh time.Duration `env:"LEADERBOARD_REFRESH" envDefault:"15s"`

	// ArenaIdleTimeout is how long an arena session may sit untouched
	// before its runner is torn down.
	ArenaIdleTimeout time.Duration `env:"ARENA_IDLE_TIMEOUT" envDefault:"10m"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
