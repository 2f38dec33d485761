package touchstone

import (
	"context"
	"errors"
	"time"

	"github.com/taoensso/touchstone/store"
	"github.com/taoensso/touchstone/types"
)

// failingStore fails every operation, standing in for an unreachable store.
type failingStore struct{}

func (failingStore) err() error {
	return types.WrapError(types.CodeStoreUnavailable, "stub", errors.New("down"))
}

func (f failingStore) Get(ctx context.Context, key string) (string, error) { return "", f.err() }
func (f failingStore) SetEx(ctx context.Context, key, value string, ttl time.Duration) error {
	return f.err()
}
func (f failingStore) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return false, f.err()
}
func (f failingStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return nil, f.err()
}
func (f failingStore) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	return 0, f.err()
}
func (f failingStore) HIncrByFloat(ctx context.Context, key, field string, delta float64) (float64, error) {
	return 0, f.err()
}
func (f failingStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	return nil, f.err()
}
func (f failingStore) RenameNX(ctx context.Context, oldKey, newKey string) (bool, error) {
	return false, f.err()
}
func (f failingStore) Del(ctx context.Context, keys ...string) error { return f.err() }
func (f failingStore) Ping(ctx context.Context) error                { return f.err() }
func (f failingStore) Close() error                                  { return nil }

var _ store.Store = failingStore{}
