// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Selection outcomes.
const (
	OutcomeSticky    = "sticky"    // prior selection honored
	OutcomeFresh     = "fresh"     // strategy ran, new sticky selection written
	OutcomeStateless = "stateless" // no participant id, nothing persisted
)

// Commit outcomes.
const (
	CommitApplied    = "applied"
	CommitSuppressed = "suppressed" // duplicate inside the session window
	CommitOrphan     = "orphan"     // no sticky selection to attribute to
	CommitRejected   = "rejected"   // value out of range
)

// Collector records engine metrics. A nil *Collector is a valid no-op, so
// callers never need to guard.
type Collector struct {
	selectionsTotal   *prometheus.CounterVec
	selectionDuration *prometheus.HistogramVec
	commitsTotal      *prometheus.CounterVec
	commitDuration    *prometheus.HistogramVec
	cacheHits         *prometheus.CounterVec
	cacheMisses       *prometheus.CounterVec
}

// NewCollector creates a Collector registered on reg. Pass
// prometheus.DefaultRegisterer outside of tests.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		selectionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "selections_total",
				Help:      "Form selections by test, strategy, and outcome",
			},
			[]string{"test", "strategy", "outcome"},
		),
		selectionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "selection_duration_seconds",
				Help:      "Selection call latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"test"},
		),
		commitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commits_total",
				Help:      "Commit calls by test and outcome",
			},
			[]string{"test", "outcome"},
		),
		commitDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "commit_duration_seconds",
				Help:      "Commit call latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"test"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scoring_cache_hits_total",
				Help:      "Scoring cache hits by strategy",
			},
			[]string{"strategy"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scoring_cache_misses_total",
				Help:      "Scoring cache misses by strategy",
			},
			[]string{"strategy"},
		),
	}
}

// RecordSelection records one selection call.
func (c *Collector) RecordSelection(testID, strategy, outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.selectionsTotal.WithLabelValues(testID, strategy, outcome).Inc()
	c.selectionDuration.WithLabelValues(testID).Observe(duration.Seconds())
}

// RecordCommit records one commit call.
func (c *Collector) RecordCommit(testID, outcome string, duration time.Duration) {
	if c == nil {
		return
	}
	c.commitsTotal.WithLabelValues(testID, outcome).Inc()
	c.commitDuration.WithLabelValues(testID).Observe(duration.Seconds())
}

// RecordCacheHit records a scoring cache hit.
func (c *Collector) RecordCacheHit(strategy string) {
	if c == nil {
		return
	}
	c.cacheHits.WithLabelValues(strategy).Inc()
}

// RecordCacheMiss records a scoring cache miss.
func (c *Collector) RecordCacheMiss(strategy string) {
	if c == nil {
		return
	}
	c.cacheMisses.WithLabelValues(strategy).Inc()
}
