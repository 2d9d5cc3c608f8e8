// Package config loads service settings from command-line flags and the environment.
package config

import (
	"cmp"
	"errors"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// GetVersion returns the build version.
func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

// Config holds all service settings.
type Config struct {
	// HTTP server
	Port        string   `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	CORSOrigins []string `long:"cors-origin" env:"CORS_ORIGINS" env-delim:"," default:"http://localhost:8081" description:"Allowed CORS origin (repeatable)"`

	// Backing store
	DatabaseURL string `long:"database-url" env:"DATABASE_URL" required:"true" description:"PostgreSQL connection string"`

	// Upstream recipe API
	SpoonacularAPIKey  string        `long:"spoonacular-api-key" env:"SPOONACULAR_API_KEY" required:"true" description:"Spoonacular API key"`
	SpoonacularBaseURL string        `long:"spoonacular-base-url" env:"SPOONACULAR_BASE_URL" default:"https://api.spoonacular.com/recipes" description:"Spoonacular recipes endpoint"`
	UpstreamTimeout    time.Duration `long:"upstream-timeout" env:"UPSTREAM_TIMEOUT" default:"10s" description:"Deadline for a single upstream call"`
	UpstreamRate       float64       `long:"upstream-rate" env:"UPSTREAM_RATE" default:"10" description:"Upstream calls per second (0 disables limiting)"`
	UpstreamBurst      int           `long:"upstream-burst" env:"UPSTREAM_BURST" default:"10" description:"Upstream call burst size"`

	// Recipe cache
	CacheSize     int           `long:"cache-size" env:"CACHE_SIZE" default:"1000" description:"Maximum number of cached recipes"`
	CacheTTL      time.Duration `long:"cache-ttl" env:"CACHE_TTL" default:"1h" description:"Lifetime of a cached recipe"`
	RedisAddr     string        `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address for the shared recipe cache (optional)"`
	RedisPassword string        `long:"redis-password" env:"REDIS_PASSWORD" description:"Redis password"`
	RedisDB       int           `long:"redis-db" env:"REDIS_DB" default:"0" description:"Redis database number"`
	RedisTTL      time.Duration `long:"redis-ttl" env:"REDIS_TTL" default:"24h" description:"Lifetime of a recipe in the shared cache"`

	// Request handling
	RequestTimeout time.Duration `long:"request-timeout" env:"REQUEST_TIMEOUT" default:"30s" description:"Deadline for a whole HTTP request"`

	// Logging
	LogLevel string `long:"log-level" env:"LOG_LEVEL" default:"info" description:"Log level (debug, info, warn, error)"`
}

// Load parses args and the environment into a Config. It returns nil, nil
// when help was requested.
func Load(args []string) (*Config, error) {
	var cfg Config

	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values the flag parser cannot.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("database url is required")
	}
	if c.SpoonacularAPIKey == "" {
		return fmt.Errorf("spoonacular api key is required")
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache size must be non-negative")
	}
	if c.CacheTTL < 0 || c.RedisTTL < 0 {
		return fmt.Errorf("cache TTL must be non-negative")
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive")
	}
	if c.UpstreamRate < 0 {
		return fmt.Errorf("upstream rate must be non-negative")
	}
	return nil
}
