package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// #region config

// Config is the server configuration, loaded from the environment.
type Config struct {
	Addr   string `env:"SKANE_ADDR" envDefault:":8080"`
	DBPath string `env:"SKANE_DB" envDefault:"skane.db"`

	PerceptionURL string `env:"SKANE_PERCEPTION_URL"`

	RedisAddr     string `env:"SKANE_REDIS_ADDR"`
	RedisPassword string `env:"SKANE_REDIS_PASSWORD"`

	RateLimitMax    int64         `env:"SKANE_RATE_LIMIT_MAX" envDefault:"30"`
	RateLimitWindow time.Duration `env:"SKANE_RATE_LIMIT_WINDOW" envDefault:"1m"`

	CooldownWindow  time.Duration `env:"SKANE_COOLDOWN_WINDOW" envDefault:"24h"`
	MigrationWindow time.Duration `env:"SKANE_MIGRATION_WINDOW" envDefault:"48h"`

	// StrictFeedback rejects unrecognized feedback tokens instead of
	// coercing them to neutral.
	StrictFeedback bool `env:"SKANE_STRICT_FEEDBACK" envDefault:"false"`

	Debug bool `env:"SKANE_DEBUG" envDefault:"false"`
}

// Parse loads configuration from environment variables.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// #endregion config
