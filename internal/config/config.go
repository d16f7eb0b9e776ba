package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the booking coordination service.
// Environment variables are parsed from the MARINA_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Postgres Configuration. Empty DSN selects the in-memory store.
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Cache Configuration. TTLs differ by data volatility: live booking
	// collections stay fresh in tens of seconds, aggregated analytics
	// views tolerate minutes of staleness.
	CacheCapacity      int           `envconfig:"CACHE_CAPACITY" default:"2048"`
	CacheSweepInterval time.Duration `envconfig:"CACHE_SWEEP_INTERVAL" default:"3m"`
	BookingsTTL        time.Duration `envconfig:"BOOKINGS_TTL" default:"30s"`
	ResourcesTTL       time.Duration `envconfig:"RESOURCES_TTL" default:"60s"`
	AnalyticsTTL       time.Duration `envconfig:"ANALYTICS_TTL" default:"5m"`

	// Presence Configuration. StaleTimeout should cover roughly two
	// probe cycles.
	ProbeInterval time.Duration `envconfig:"PROBE_INTERVAL" default:"30s"`
	StaleTimeout  time.Duration `envconfig:"STALE_TIMEOUT" default:"60s"`

	// Out-of-band delivery webhook. Empty URL selects the no-op client.
	FallbackURL string `envconfig:"FALLBACK_URL" default:""`

	// Tier ceilings: maximum resource size in meters a capacity-restricted
	// member tier may book. Tiers with no entry use the lowest ceiling.
	TierCeilings map[string]float64 `envconfig:"TIER_CEILINGS" default:"bronze:12,silver:18,gold:30"`
}

// Validate checks cross-field constraints that envconfig cannot express.
func (c *Config) Validate() error {
	if c.CacheCapacity <= 0 {
		return fmt.Errorf("cache capacity must be positive, got %d", c.CacheCapacity)
	}
	if c.StaleTimeout < c.ProbeInterval {
		return fmt.Errorf("stale timeout %v shorter than probe interval %v", c.StaleTimeout, c.ProbeInterval)
	}
	if len(c.TierCeilings) == 0 {
		return fmt.Errorf("at least one tier ceiling is required")
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Example: MARINA_HTTP_PORT, MARINA_POSTGRES_DSN.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("MARINA", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Bool("postgres_dsn_present", cfg.PostgresDSN != "").
		Int("cache_capacity", cfg.CacheCapacity).
		Dur("bookings_ttl", cfg.BookingsTTL).
		Dur("analytics_ttl", cfg.AnalyticsTTL).
		Dur("probe_interval", cfg.ProbeInterval).
		Dur("stale_timeout", cfg.StaleTimeout).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a deterministic config for tests.
func NewForTesting() *Config {
	return &Config{
		Environment:        EnvTesting,
		HTTPPort:           8080,
		CacheCapacity:      64,
		CacheSweepInterval: 50 * time.Millisecond,
		BookingsTTL:        30 * time.Second,
		ResourcesTTL:       60 * time.Second,
		AnalyticsTTL:       5 * time.Minute,
		ProbeInterval:      20 * time.Millisecond,
		StaleTimeout:       40 * time.Millisecond,
		TierCeilings:       map[string]float64{"bronze": 12, "silver": 18, "gold": 30},
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool { return c.Environment == EnvTesting }

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool { return c.Environment == EnvProduction }

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string { return fmt.Sprintf(":%d", c.HTTPPort) }

// LowestCeiling returns the smallest configured tier ceiling, used for
// tiers with no explicit entry.
func (c *Config) LowestCeiling() float64 {
	lowest := 0.0
	first := true
	for _, v := range c.TierCeilings {
		if first || v < lowest {
			lowest = v
			first = false
		}
	}
	return lowest
}
