package scoring

import (
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/taoensso/touchstone/internal/metrics"
)

// DefaultCacheTTL bounds how stale a memoized leader may be. A few seconds
// of staleness buys not re-reading two hashes per selection under load.
const DefaultCacheTTL = 5 * time.Second

// resultCache memoizes a strategy's pick per (test, candidate set).
// Concurrent misses for the same key are collapsed through singleflight, so
// at most one recomputation runs at a time per key.
type resultCache struct {
	ttl      time.Duration
	strategy string
	metrics  *metrics.Collector

	mu      sync.Mutex
	entries map[string]cacheEntry
	group   singleflight.Group

	now func() time.Time
}

type cacheEntry struct {
	formID string
	at     time.Time
}

func newResultCache(ttl time.Duration, strategy string, collector *metrics.Collector) *resultCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &resultCache{
		ttl:      ttl,
		strategy: strategy,
		metrics:  collector,
		entries:  make(map[string]cacheEntry),
		now:      time.Now,
	}
}

// cacheKey identifies a (test, candidate set) pair. Candidates are sorted so
// the key depends on the set value, not the caller's ordering; the live form
// set can change between deployments and must not alias stale entries.
func cacheKey(testID string, candidates []string) string {
	sorted := make([]string, len(candidates))
	copy(sorted, candidates)
	sort.Strings(sorted)

	var b strings.Builder
	b.WriteString(testID)
	for _, c := range sorted {
		b.WriteByte('|')
		b.WriteString(c)
	}
	return b.String()
}

// getOrCompute returns the cached pick for key, or runs compute and caches
// its result. Errors are never cached.
func (c *resultCache) getOrCompute(key string, compute func() (string, error)) (string, error) {
	if form, ok := c.lookup(key); ok {
		c.metrics.RecordCacheHit(c.strategy)
		return form, nil
	}
	c.metrics.RecordCacheMiss(c.strategy)

	v, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent flight may have refilled the entry while this
		// goroutine waited on the singleflight lock.
		if form, ok := c.lookup(key); ok {
			return form, nil
		}
		form, err := compute()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = cacheEntry{formID: form, at: c.now()}
		c.mu.Unlock()
		return form, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *resultCache) lookup(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.at) >= c.ttl {
		delete(c.entries, key)
		return "", false
	}
	return e.formID, true
}
