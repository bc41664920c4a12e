// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// ErrAuthorityRequired is returned when authentication is enabled without an
// issuer authority to validate tokens against.
var ErrAuthorityRequired = errors.New("AUTHORITY must be set when AUTH_ENABLED is true")

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Authentication. When enabled, every /users request must carry a bearer
	// token issued by Authority. Authority doubles as the JWKS discovery base
	// and the expected issuer claim.
	AuthEnabled bool   `env:"AUTH_ENABLED" envDefault:"true"`
	Authority   string `env:"AUTHORITY"`

	// Optional Redis-backed JWKS cache. A zero TTL disables caching entirely
	// and every validation re-fetches the key set.
	RedisURL     string        `env:"REDIS_URL"`
	JWKSCacheTTL time.Duration `env:"JWKS_CACHE_TTL" envDefault:"0"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// JWKSURL returns the JWKS discovery URL derived from the authority.
// The authority is joined naively, so it is normalized to end with a slash.
func (c *Config) JWKSURL() string {
	authority := c.Authority
	if authority != "" && !strings.HasSuffix(authority, "/") {
		authority += "/"
	}
	return authority + ".well-known/jwks.json"
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing or inconsistent.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.AuthEnabled && cfg.Authority == "" {
		return nil, ErrAuthorityRequired
	}
	return cfg, nil
}
