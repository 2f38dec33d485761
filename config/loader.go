package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TOUCHSTONE"

// Load builds a Config from defaults, an optional YAML file, and environment
// overrides, in that priority order. An empty path skips the file step.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays TOUCHSTONE_* environment variables on cfg.
func applyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv(EnvPrefix + "_REDIS_ADDR"); ok {
		cfg.Redis.Addr = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "_REDIS_PASSWORD"); ok {
		cfg.Redis.Password = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "_REDIS_DB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s_REDIS_DB %q: %w", EnvPrefix, v, err)
		}
		cfg.Redis.DB = n
	}
	if v, ok := os.LookupEnv(EnvPrefix + "_SESSION_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s_SESSION_TTL %q: %w", EnvPrefix, v, err)
		}
		cfg.Session.TTL = d
	}
	if v, ok := os.LookupEnv(EnvPrefix + "_COUNT_DUPLICATES"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s_COUNT_DUPLICATES %q: %w", EnvPrefix, v, err)
		}
		cfg.Session.CountDuplicates = b
	}
	if v, ok := os.LookupEnv(EnvPrefix + "_SERVER_ADDR"); ok {
		cfg.Server.Addr = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "_LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "_LOG_FORMAT"); ok {
		cfg.Log.Format = v
	}
	return nil
}
