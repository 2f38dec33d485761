package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector("touchstone", reg)

	c.RecordSelection("signup", "ucb1", OutcomeFresh, 5*time.Millisecond)
	c.RecordSelection("signup", "ucb1", OutcomeSticky, time.Millisecond)
	c.RecordSelection("signup", "ucb1", OutcomeSticky, time.Millisecond)
	c.RecordCommit("signup", CommitApplied, time.Millisecond)
	c.RecordCacheHit("ucb1")
	c.RecordCacheMiss("ucb1")

	assert.Equal(t, float64(2), testutil.ToFloat64(
		c.selectionsTotal.WithLabelValues("signup", "ucb1", OutcomeSticky)))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		c.selectionsTotal.WithLabelValues("signup", "ucb1", OutcomeFresh)))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		c.commitsTotal.WithLabelValues("signup", CommitApplied)))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.cacheHits.WithLabelValues("ucb1")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.cacheMisses.WithLabelValues("ucb1")))
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.RecordSelection("t", "ucb1", OutcomeFresh, 0)
		c.RecordCommit("t", CommitApplied, 0)
		c.RecordCacheHit("ucb1")
		c.RecordCacheMiss("ucb1")
	})
}
