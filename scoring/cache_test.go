package scoring

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey_OrderInsensitive(t *testing.T) {
	assert.Equal(t, cacheKey("t", []string{"a", "b"}), cacheKey("t", []string{"b", "a"}))
	assert.NotEqual(t, cacheKey("t", []string{"a", "b"}), cacheKey("t", []string{"a", "b", "c"}))
	assert.NotEqual(t, cacheKey("t1", []string{"a"}), cacheKey("t2", []string{"a"}))
}

func TestResultCache_ExpiresAfterWindow(t *testing.T) {
	c := newResultCache(5*time.Second, "test", nil)
	now := time.Now()
	c.now = func() time.Time { return now }

	var calls int
	compute := func() (string, error) {
		calls++
		return "x", nil
	}

	for i := 0; i < 3; i++ {
		form, err := c.getOrCompute("k", compute)
		require.NoError(t, err)
		assert.Equal(t, "x", form)
	}
	assert.Equal(t, 1, calls)

	now = now.Add(6 * time.Second)

	_, err := c.getOrCompute("k", compute)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "stale entry recomputed")
}

func TestResultCache_ErrorsNotCached(t *testing.T) {
	c := newResultCache(time.Minute, "test", nil)

	var calls int
	_, err := c.getOrCompute("k", func() (string, error) {
		calls++
		return "", errors.New("store down")
	})
	require.Error(t, err)

	form, err := c.getOrCompute("k", func() (string, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", form)
	assert.Equal(t, 2, calls)
}

func TestResultCache_CollapsesConcurrentMisses(t *testing.T) {
	c := newResultCache(time.Minute, "test", nil)

	var computes int32
	gate := make(chan struct{})
	compute := func() (string, error) {
		atomic.AddInt32(&computes, 1)
		<-gate
		return "x", nil
	}

	const goroutines = 8
	var wg sync.WaitGroup
	results := make([]string, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			form, err := c.getOrCompute("k", compute)
			require.NoError(t, err)
			results[i] = form
		}(i)
	}

	// Let every goroutine reach the flight before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&computes), "one flight per key")
	for _, r := range results {
		assert.Equal(t, "x", r)
	}
}
