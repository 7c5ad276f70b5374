// Package config loads the proxy configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

// Cache backends.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the process configuration.
type Config struct {
	Port      int    `env:"PORT" envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`

	// Cache
	CacheBackend   string        `env:"CACHE_BACKEND" envDefault:"redis"`
	RedisURL       string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	CacheKeyPrefix string        `env:"CACHE_KEY_PREFIX"`
	CacheOpTimeout time.Duration `env:"CACHE_OP_TIMEOUT" envDefault:"2s"`

	// Upstreams
	HierarchyV2URL     string        `env:"HIERARCHY_V2_URL" envDefault:"https://us-central1-kp24-fd486.cloudfunctions.net/hierarchy"`
	HierarchyV3BaseURL string        `env:"HIERARCHY_V3_BASE_URL" envDefault:"https://kp24-fd486.web.app/c/"`
	ImageServiceURL    string        `env:"IMAGE_SERVICE_URL" envDefault:"http://localhost:8081/serving-url"`
	UpstreamTimeout    time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"10s"`
	UserAgent          string        `env:"USER_AGENT" envDefault:"hierarchy-proxy/1.0"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// Load parses the process environment.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate checks ranges, enums and URLs.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: port must be in 1..65535 (got %d)", ErrInvalidConfig, c.Port)
	}

	switch c.CacheBackend {
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("%w: REDIS_URL is required for the redis backend", ErrInvalidConfig)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("%w: unknown cache backend %q", ErrInvalidConfig, c.CacheBackend)
	}

	for name, raw := range map[string]string{
		"HIERARCHY_V2_URL":      c.HierarchyV2URL,
		"HIERARCHY_V3_BASE_URL": c.HierarchyV3BaseURL,
		"IMAGE_SERVICE_URL":     c.ImageServiceURL,
	} {
		if err := validateHTTPURL(raw); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
		}
	}

	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("%w: UPSTREAM_TIMEOUT must be positive", ErrInvalidConfig)
	}
	if c.CacheOpTimeout <= 0 {
		return fmt.Errorf("%w: CACHE_OP_TIMEOUT must be positive", ErrInvalidConfig)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: SHUTDOWN_TIMEOUT must be positive", ErrInvalidConfig)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("%w: USER_AGENT is required", ErrInvalidConfig)
	}

	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q must use http or https scheme", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	return nil
}
