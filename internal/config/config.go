// Package config loads application settings from environment
// variables via envconfig.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// --- Application ---
	Env  string `envconfig:"APP_ENV" default:"development"`
	Port string `envconfig:"PORT" default:"8080"`

	// --- Auth ---
	JWTSecret      string        `envconfig:"JWT_SECRET" required:"true"`
	TokenLifetime  time.Duration `envconfig:"TOKEN_LIFETIME" default:"24h"`
	BCryptCost     int           `envconfig:"BCRYPT_COST" default:"10"`
	AdminUsernames string        `envconfig:"ADMIN_USERNAMES" default:""`

	// --- Redis ---
	// DEMO_MODE=true swaps the Redis store for the in-memory one.
	DemoMode  bool   `envconfig:"DEMO_MODE" default:"false"`
	RedisURL  string `envconfig:"REDIS_URL" default:"localhost:6379"`
	RedisPass string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB   int    `envconfig:"REDIS_DB" default:"0"`

	// --- Game tables ---
	// Empty means the compiled-in default catalog.
	CatalogPath string `envconfig:"CATALOG_PATH" default:""`

	// --- Provably fair ---
	// Empty generates a fresh seed at startup.
	ServerSeed string `envconfig:"SERVER_SEED" default:""`

	// --- Background jobs ---
	MarketRefreshSpec string        `envconfig:"MARKET_REFRESH_CRON" default:"@every 15m"`
	SweepSpec         string        `envconfig:"SWEEP_CRON" default:"@every 1h"`
	EnergyRegenEvery  time.Duration `envconfig:"ENERGY_REGEN_INTERVAL" default:"10m"`
}

// AdminList splits the comma-separated admin username list.
func (c *Config) AdminList() []string {
	var out []string
	for _, name := range strings.Split(c.AdminUsernames, ",") {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %v", err)
	}
	if !cfg.DemoMode && cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required outside demo mode")
	}
	return &cfg, nil
}
