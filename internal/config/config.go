package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all environment-driven settings for the service.
type Config struct {
	ListenAddr string `env:"CIVICAID_LISTEN_ADDR" envDefault:":8080"`
	PGDSN      string `env:"CIVICAID_PG_DSN"`

	AuthSecret       string        `env:"CIVICAID_AUTH_SECRET"`
	AccessTokenTTL   time.Duration `env:"CIVICAID_ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenDays int           `env:"CIVICAID_REFRESH_TOKEN_DAYS" envDefault:"14"`

	AllowedOrigins []string `env:"CIVICAID_ALLOWED_ORIGINS" envSeparator:","`
	SecureCookies  bool     `env:"CIVICAID_SECURE_COOKIES" envDefault:"true"`

	RateBurst  int `env:"CIVICAID_RATE_BURST" envDefault:"20"`
	RatePerSec int `env:"CIVICAID_RATE_PER_SEC" envDefault:"10"`

	RevokeSessionsOnDeactivate bool `env:"CIVICAID_REVOKE_ON_DEACTIVATE" envDefault:"false"`
}

// Load parses configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.AuthSecret == "" {
		return Config{}, fmt.Errorf("CIVICAID_AUTH_SECRET is required")
	}
	if cfg.RefreshTokenDays <= 0 {
		return Config{}, fmt.Errorf("CIVICAID_REFRESH_TOKEN_DAYS must be positive")
	}
	return cfg, nil
}

// RefreshTokenTTL converts the configured day count to a duration.
func (c Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenDays) * 24 * time.Hour
}
