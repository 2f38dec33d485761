package scoring

import (
	"context"

	"go.uber.org/zap"

	"github.com/taoensso/touchstone/store"
)

// LeastTried picks the candidate with the smallest prospect count, breaking
// ties in candidate order. Useful for evening out sample sizes before
// switching a test to UCB1.
type LeastTried struct {
	store  store.Store
	cache  *resultCache
	logger *zap.Logger
}

// NewLeastTried creates the least-tried strategy over st.
func NewLeastTried(st store.Store, opts ...Option) *LeastTried {
	o := buildOptions(opts)
	return &LeastTried{
		store:  st,
		cache:  newResultCache(o.cacheTTL, "least_tried", o.metrics),
		logger: o.logger.With(zap.String("strategy", "least_tried")),
	}
}

// Name implements Strategy.
func (s *LeastTried) Name() string { return "least_tried" }

// Select implements Strategy.
func (s *LeastTried) Select(ctx context.Context, testID string, candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", ErrNoCandidates
	}
	return s.cache.getOrCompute(cacheKey(testID, candidates), func() (string, error) {
		stats, _, err := readStats(ctx, s.store, testID)
		if err != nil {
			return "", err
		}

		best := candidates[0]
		bestCount := stats[best].prospects
		for _, form := range candidates[1:] {
			if n := stats[form].prospects; n < bestCount {
				best = form
				bestCount = n
			}
		}
		return best, nil
	})
}
