package store

import (
	"context"
	"path"
	"strconv"
	"sync"
	"time"

	"github.com/taoensso/touchstone/types"
)

// Memory is an in-process Store for tests and embedded single-process use.
// TTL handling is lazy: expired entries are dropped when touched.
type Memory struct {
	mu      sync.RWMutex
	strings map[string]memoryEntry
	hashes  map[string]map[string]string

	// now is swappable so tests can step time instead of sleeping.
	now func() time.Time
}

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// NewMemory creates an empty in-process store.
func NewMemory() *Memory {
	return &Memory{
		strings: make(map[string]memoryEntry),
		hashes:  make(map[string]map[string]string),
		now:     time.Now,
	}
}

// SetClock replaces the store's time source. Test hook.
func (s *Memory) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Get returns the string value at key.
func (s *Memory) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.strings[key]
	if !ok {
		return "", types.NewError(types.CodeKeyNotFound, key)
	}
	if e.expired(s.now()) {
		delete(s.strings, key)
		return "", types.NewError(types.CodeKeyNotFound, key)
	}
	return e.value, nil
}

// SetEx writes a string value with a TTL.
func (s *Memory) SetEx(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.strings[key] = e
	return nil
}

// Expire resets the TTL of an existing string key.
func (s *Memory) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.strings[key]
	if !ok || e.expired(s.now()) {
		delete(s.strings, key)
		return false, nil
	}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	} else {
		e.expiresAt = time.Time{}
	}
	s.strings[key] = e
	return true, nil
}

// HGetAll returns a copy of every field of a hash.
func (s *Memory) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.hashes[key]))
	for f, v := range s.hashes[key] {
		out[f] = v
	}
	return out, nil
}

// HIncrBy atomically adds delta to an integer hash field.
func (s *Memory) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.hashes[key]
	if h == nil {
		h = make(map[string]string)
		s.hashes[key] = h
	}
	cur, err := strconv.ParseInt(zeroIfEmpty(h[field]), 10, 64)
	if err != nil {
		return 0, types.WrapError(types.CodeStoreUnavailable, "hash field is not an integer", err)
	}
	cur += delta
	h[field] = strconv.FormatInt(cur, 10)
	return cur, nil
}

// HIncrByFloat atomically adds delta to a float hash field.
func (s *Memory) HIncrByFloat(ctx context.Context, key, field string, delta float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.hashes[key]
	if h == nil {
		h = make(map[string]string)
		s.hashes[key] = h
	}
	cur, err := strconv.ParseFloat(zeroIfEmpty(h[field]), 64)
	if err != nil {
		return 0, types.WrapError(types.CodeStoreUnavailable, "hash field is not a float", err)
	}
	cur += delta
	h[field] = strconv.FormatFloat(cur, 'f', -1, 64)
	return cur, nil
}

// Keys enumerates keys matching a glob pattern.
func (s *Memory) Keys(ctx context.Context, pattern string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var keys []string
	for k, e := range s.strings {
		if e.expired(now) {
			delete(s.strings, k)
			continue
		}
		if ok, _ := path.Match(pattern, k); ok {
			keys = append(keys, k)
		}
	}
	for k := range s.hashes {
		if ok, _ := path.Match(pattern, k); ok {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// RenameNX renames a key unless the destination already exists.
func (s *Memory) RenameNX(ctx context.Context, oldKey, newKey string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	if e, ok := s.strings[newKey]; ok && !e.expired(now) {
		return false, nil
	}
	if _, ok := s.hashes[newKey]; ok {
		return false, nil
	}

	if e, ok := s.strings[oldKey]; ok && !e.expired(now) {
		delete(s.strings, oldKey)
		s.strings[newKey] = e
		return true, nil
	}
	if h, ok := s.hashes[oldKey]; ok {
		delete(s.hashes, oldKey)
		s.hashes[newKey] = h
		return true, nil
	}
	return false, types.NewError(types.CodeKeyNotFound, oldKey)
}

// Del removes the given keys.
func (s *Memory) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		delete(s.strings, k)
		delete(s.hashes, k)
	}
	return nil
}

// Ping always succeeds.
func (s *Memory) Ping(ctx context.Context) error { return nil }

// Close is a no-op.
func (s *Memory) Close() error { return nil }

func zeroIfEmpty(v string) string {
	if v == "" {
		return "0"
	}
	return v
}

// Ensure Memory implements Store
var _ Store = (*Memory)(nil)
