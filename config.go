package main

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is read from the environment, after an optional .env file.
type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	Env             string        `env:"ENV" envDefault:"development"`
	GinMode         string        `env:"GIN_MODE"`
	APIBase         string        `env:"API_BASE" envDefault:"http://localhost:8000"`
	ScoringBackend  string        `env:"SCORING_BACKEND" envDefault:"live"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	SessionTimeout  time.Duration `env:"SESSION_TIMEOUT" envDefault:"2h"`
	CookieMaxAge    time.Duration `env:"COOKIE_MAX_AGE" envDefault:"720h"`
	StaticCacheAge  time.Duration `env:"STATIC_CACHE_AGE" envDefault:"5m"`
	RateLimitRPS    int           `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst  int           `env:"RATE_LIMIT_BURST" envDefault:"10"`
	PersistSessions bool          `env:"PERSIST_SESSIONS" envDefault:"true"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"10m"`
	MockJWTSecret   string        `env:"MOCK_JWT_SECRET" envDefault:"dev-secret"`
	MockTokenTTL    time.Duration `env:"MOCK_TOKEN_TTL" envDefault:"24h"`
}

// loadConfig loads .env when present and parses the environment.
func loadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logWarn("Failed to load .env: %v", err)
	}
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release" || c.Env == "production"
}
