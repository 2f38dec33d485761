package store

import (
	"context"
	"time"
)

// Store is the key-value surface the engine runs against. All state lives
// here; the engine itself is stateless and reentrant.
//
// Hash increments are atomic. No atomicity is promised across calls; the
// engine documents the one race that follows from that (duplicate commits
// inside a session window).
type Store interface {
	// Get returns the string value at key, or a KEY_NOT_FOUND error when
	// the key is absent or expired.
	Get(ctx context.Context, key string) (string, error)

	// SetEx writes a string value with the given TTL.
	SetEx(ctx context.Context, key, value string, ttl time.Duration) error

	// Expire resets the TTL of an existing key. Returns false when the key
	// does not exist.
	Expire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// HGetAll returns every field of a hash. An absent hash yields an
	// empty map, not an error.
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	// HIncrBy atomically adds delta to an integer hash field, creating the
	// hash and field as needed. Returns the new value.
	HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error)

	// HIncrByFloat atomically adds delta to a float hash field, creating
	// the hash and field as needed. Returns the new value.
	HIncrByFloat(ctx context.Context, key, field string, delta float64) (float64, error)

	// Keys enumerates keys matching a glob pattern.
	Keys(ctx context.Context, pattern string) ([]string, error)

	// RenameNX renames a key only when the destination does not already
	// exist. Returns false on conflict; an absent source key is a
	// KEY_NOT_FOUND error on every backend.
	RenameNX(ctx context.Context, oldKey, newKey string) (bool, error)

	// Del removes the given keys. Absent keys are not an error.
	Del(ctx context.Context, keys ...string) error

	// Ping checks store health.
	Ping(ctx context.Context) error

	// Close releases the underlying connection pool.
	Close() error
}
