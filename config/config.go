// Package config loads service configuration from the environment, once at
// startup. The resulting Config is treated as immutable.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/jonwraymond/collabd/secret"
)

// Config holds the full service configuration.
type Config struct {
	// Server
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`

	// Database
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Identity cache. An empty RedisAddr selects the in-memory cache.
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"600s"`

	// Tokens. JWTSecretFile, when set, overrides JWTSecret with the contents
	// of a secret mount.
	JWTSecret     string        `env:"JWT_SECRET"`
	JWTSecretFile string        `env:"JWT_SECRET_FILE"`
	JWTTTL        time.Duration `env:"JWT_TTL" envDefault:"1h"`
	JWTIssuer     string        `env:"JWT_ISSUER" envDefault:"collabd"`
	JWTAudience   string        `env:"JWT_AUDIENCE" envDefault:"collabd"`

	// Registration policy. The role every self-registered principal gets.
	DefaultRole string `env:"DEFAULT_ROLE" envDefault:"MEMBER"`

	// Credentials
	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`

	// Rate limiting (per client, local)
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`

	// Telemetry
	LogLevel        string  `env:"LOG_LEVEL" envDefault:"info"`
	TraceExporter   string  `env:"TRACE_EXPORTER" envDefault:"none"`
	TraceSamplePct  float64 `env:"TRACE_SAMPLE_PCT" envDefault:"1.0"`
	MetricsExporter string  `env:"METRICS_EXPORTER" envDefault:"prometheus"`
}

// Load reads the configuration from environment variables. Missing required
// variables are an error.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.resolveSecrets(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveSecrets resolves ${VAR} references in composite values and
// file-sourced secrets. The database URL commonly carries a password
// reference so the credential can live in its own variable or mount.
func (c *Config) resolveSecrets() error {
	var err error
	if c.DatabaseURL, err = secret.Expand(c.DatabaseURL); err != nil {
		return err
	}
	if c.RedisPassword, err = secret.Expand(c.RedisPassword); err != nil {
		return err
	}
	if c.JWTSecret, err = secret.Value(c.JWTSecret, c.JWTSecretFile); err != nil {
		return err
	}
	return nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("config: DATABASE_URL is required")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("config: JWT_SECRET must be at least 32 bytes, got %d", len(c.JWTSecret))
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("config: CACHE_TTL must not be negative")
	}
	if c.DefaultRole == "" {
		return fmt.Errorf("config: DEFAULT_ROLE must not be empty")
	}
	return nil
}
