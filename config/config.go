package config

import (
	"time"

	"github.com/taoensso/touchstone/store"
)

// Config is the complete touchstone configuration.
type Config struct {
	// Redis connection parameters
	Redis store.RedisConfig `yaml:"redis"`

	// Session defaults applied to every test
	Session SessionConfig `yaml:"session"`

	// Tests holds per-test overrides, keyed by test id
	Tests map[string]TestOverride `yaml:"tests"`

	// Server configures the demo HTTP server
	Server ServerConfig `yaml:"server"`

	// Log configures logging
	Log LogConfig `yaml:"log"`
}

// SessionConfig holds the global sticky-session defaults.
type SessionConfig struct {
	// TTL is the inactivity window after which a participant's sticky
	// selection and commit guard expire together.
	TTL time.Duration `yaml:"ttl"`

	// CountDuplicates counts repeat views and repeat commits within one
	// sticky session instead of suppressing them.
	CountDuplicates bool `yaml:"count_duplicates"`
}

// TestOverride is a partial per-test configuration. Nil fields inherit the
// session defaults; set fields win key by key.
type TestOverride struct {
	SessionTTL      *time.Duration `yaml:"session_ttl"`
	CountDuplicates *bool          `yaml:"count_duplicates"`
}

// TestConfig is the resolved configuration for one test id.
type TestConfig struct {
	SessionTTL      time.Duration
	CountDuplicates bool
}

// ServerConfig configures the demo HTTP server.
type ServerConfig struct {
	// Listen address
	Addr string `yaml:"addr"`
	// Read timeout
	ReadTimeout time.Duration `yaml:"read_timeout"`
	// Write timeout
	WriteTimeout time.Duration `yaml:"write_timeout"`
	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// Per-IP rate limit, requests per second
	RateLimitRPS float64 `yaml:"rate_limit_rps"`
	// Per-IP burst allowance
	RateLimitBurst int `yaml:"rate_limit_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level: debug, info, warn, error
	Level string `yaml:"level"`
	// Format: json or console
	Format string `yaml:"format"`
}
