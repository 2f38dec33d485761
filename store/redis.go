package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/taoensso/touchstone/types"
)

// RedisConfig configures the Redis-backed store.
type RedisConfig struct {
	// Redis address, host:port
	Addr string `yaml:"addr"`

	// Password, empty for none
	Password string `yaml:"password"`

	// Database number
	DB int `yaml:"db"`

	// Connection pool size
	PoolSize int `yaml:"pool_size"`

	// Minimum idle connections
	MinIdleConns int `yaml:"min_idle_conns"`

	// Max retries per command
	MaxRetries int `yaml:"max_retries"`

	// Per-operation timeout applied to reads and writes
	OpTimeout time.Duration `yaml:"op_timeout"`
}

// DefaultRedisConfig returns the default Redis configuration.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		OpTimeout:    5 * time.Second,
	}
}

// Redis implements Store on a Redis connection pool. The pool is
// process-wide shared state: construct once at startup and reuse.
type Redis struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedis connects to Redis and verifies the connection with a ping.
func NewRedis(config RedisConfig, logger *zap.Logger) (*Redis, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		MaxRetries:   config.MaxRetries,
		ReadTimeout:  config.OpTimeout,
		WriteTimeout: config.OpTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, types.WrapError(types.CodeStoreUnavailable, "failed to connect to redis", err)
	}

	logger.Info("redis store initialized",
		zap.String("addr", config.Addr),
		zap.Int("pool_size", config.PoolSize),
	)

	return &Redis{
		client: client,
		logger: logger.With(zap.String("component", "store")),
	}, nil
}

// NewRedisFromClient wraps an existing client, e.g. one shared with other
// subsystems. The caller keeps ownership; Close still closes it.
func NewRedisFromClient(client *redis.Client, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{
		client: client,
		logger: logger.With(zap.String("component", "store")),
	}
}

// Get returns the string value at key.
func (s *Redis) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", types.NewError(types.CodeKeyNotFound, key)
	}
	if err != nil {
		return "", s.unavailable("get", key, err)
	}
	return val, nil
}

// SetEx writes a string value with a TTL.
func (s *Redis) SetEx(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return s.unavailable("set", key, err)
	}
	return nil
}

// Expire resets the TTL of an existing key.
func (s *Redis) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.Expire(ctx, key, ttl).Result()
	if err != nil {
		return false, s.unavailable("expire", key, err)
	}
	return ok, nil
}

// HGetAll returns every field of a hash.
func (s *Redis) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, s.unavailable("hgetall", key, err)
	}
	return fields, nil
}

// HIncrBy atomically adds delta to an integer hash field.
func (s *Redis) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	n, err := s.client.HIncrBy(ctx, key, field, delta).Result()
	if err != nil {
		return 0, s.unavailable("hincrby", key, err)
	}
	return n, nil
}

// HIncrByFloat atomically adds delta to a float hash field.
func (s *Redis) HIncrByFloat(ctx context.Context, key, field string, delta float64) (float64, error) {
	n, err := s.client.HIncrByFloat(ctx, key, field, delta).Result()
	if err != nil {
		return 0, s.unavailable("hincrbyfloat", key, err)
	}
	return n, nil
}

// Keys enumerates keys matching a glob pattern via SCAN, so a large keyspace
// never blocks the server the way KEYS would.
func (s *Redis) Keys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, s.unavailable("scan", pattern, err)
	}
	return keys, nil
}

// RenameNX renames a key unless the destination already exists. An absent
// source key maps to KEY_NOT_FOUND, like Get's redis.Nil, so callers can
// tell an expired key from a store failure.
func (s *Redis) RenameNX(ctx context.Context, oldKey, newKey string) (bool, error) {
	ok, err := s.client.RenameNX(ctx, oldKey, newKey).Result()
	if err != nil {
		if strings.Contains(err.Error(), "no such key") {
			return false, types.NewError(types.CodeKeyNotFound, oldKey)
		}
		return false, s.unavailable("renamenx", oldKey, err)
	}
	return ok, nil
}

// Del removes the given keys.
func (s *Redis) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return s.unavailable("del", keys[0], err)
	}
	return nil
}

// Ping checks store health.
func (s *Redis) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return s.unavailable("ping", "", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *Redis) Close() error {
	return s.client.Close()
}

func (s *Redis) unavailable(op, key string, err error) error {
	s.logger.Error("store operation failed",
		zap.String("op", op),
		zap.String("key", key),
		zap.Error(err),
	)
	return types.WrapError(types.CodeStoreUnavailable, fmt.Sprintf("redis %s %s", op, key), err)
}

// Ensure Redis implements Store
var _ Store = (*Redis)(nil)
