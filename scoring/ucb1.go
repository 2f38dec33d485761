package scoring

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/taoensso/touchstone/internal/metrics"
	"github.com/taoensso/touchstone/store"
)

// coldStartBound stands in for the undefined ln(N) term when a test has at
// most one prospect total. Large enough to dominate any real bound (scores
// are sums of values in [-1, 1]), finite so the argmax stays well defined.
const coldStartBound = 1000.0

// UCB1 selects the form with the highest upper confidence bound:
//
//	bound(f) = s(f)/max(n(f),1) + sqrt(2*ln(N) / max(n(f),1))
//
// where s is cumulative score, n the form's prospect count, and N the test's
// total prospect count. The flooring of n at 1 gives untested forms a very
// high, not infinite, bound, so they get explored early without breaking
// numeric stability.
type UCB1 struct {
	store  store.Store
	cache  *resultCache
	logger *zap.Logger
}

// Option configures a strategy constructor.
type Option func(*options)

type options struct {
	cacheTTL time.Duration
	logger   *zap.Logger
	metrics  *metrics.Collector
}

// WithCacheTTL overrides the scoring cache window.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *options) { o.cacheTTL = ttl }
}

// WithLogger sets the strategy logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics attaches a metrics collector.
func WithMetrics(c *metrics.Collector) Option {
	return func(o *options) { o.metrics = c }
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewUCB1 creates the UCB1 strategy over st.
func NewUCB1(st store.Store, opts ...Option) *UCB1 {
	o := buildOptions(opts)
	return &UCB1{
		store:  st,
		cache:  newResultCache(o.cacheTTL, "ucb1", o.metrics),
		logger: o.logger.With(zap.String("strategy", "ucb1")),
	}
}

// Name implements Strategy.
func (u *UCB1) Name() string { return "ucb1" }

// Select implements Strategy.
func (u *UCB1) Select(ctx context.Context, testID string, candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", ErrNoCandidates
	}
	return u.cache.getOrCompute(cacheKey(testID, candidates), func() (string, error) {
		return u.compute(ctx, testID, candidates)
	})
}

func (u *UCB1) compute(ctx context.Context, testID string, candidates []string) (string, error) {
	stats, total, err := readStats(ctx, u.store, testID)
	if err != nil {
		return "", err
	}

	best := candidates[0]
	bestBound := math.Inf(-1)
	for _, form := range candidates {
		fs := stats[form]
		b := ucb1Bound(fs.score, fs.prospects, total)
		if b > bestBound {
			best = form
			bestBound = b
		}
	}

	u.logger.Debug("ucb1 leader computed",
		zap.String("test", testID),
		zap.String("form", best),
		zap.Float64("bound", bestBound),
		zap.Int64("total_prospects", total),
	)
	return best, nil
}

// ucb1Bound computes one form's confidence bound. total <= 1 short-circuits
// to coldStartBound: ln(0) is undefined and ln(1) would strip all
// exploration pressure from untested forms.
func ucb1Bound(score float64, prospects, total int64) float64 {
	if total <= 1 {
		return coldStartBound
	}
	n := float64(prospects)
	if n < 1 {
		n = 1
	}
	return score/n + math.Sqrt(2*math.Log(float64(total))/n)
}
