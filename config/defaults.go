package config

import (
	"time"

	"github.com/taoensso/touchstone/store"
)

// DefaultSessionTTL is the sticky-session inactivity window.
const DefaultSessionTTL = 2 * time.Hour

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Redis:   store.DefaultRedisConfig(),
		Session: DefaultSessionConfig(),
		Tests:   make(map[string]TestOverride),
		Server:  DefaultServerConfig(),
		Log:     DefaultLogConfig(),
	}
}

// DefaultSessionConfig returns the default session configuration.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		TTL:             DefaultSessionTTL,
		CountDuplicates: false,
	}
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:            ":8080",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 15 * time.Second,
		RateLimitRPS:    100,
		RateLimitBurst:  200,
	}
}

// DefaultLogConfig returns the default log configuration.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:  "info",
		Format: "json",
	}
}
