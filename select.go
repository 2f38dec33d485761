package touchstone

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/taoensso/touchstone/config"
	"github.com/taoensso/touchstone/internal/metrics"
	"github.com/taoensso/touchstone/scoring"
	"github.com/taoensso/touchstone/store"
	"github.com/taoensso/touchstone/types"
)

// Select decides which form of testID the participant sees and returns that
// form's value.
//
// An identified participant gets a sticky selection: a prior selection that
// still names an offered form is always honored over re-running the
// strategy, and its session window slides forward on every call. A fresh
// allocation runs the strategy, records the new sticky selection, and counts
// one prospect for the chosen form.
//
// An empty participantID means the participant is excluded from testing
// (bots, staff): the current leader is returned with no store mutation at
// all, so excluded traffic never skews the statistics.
//
// An empty forms map is legal and yields nil; a single form is chosen
// without invoking the strategy. Store failures propagate; presenting no
// content beats presenting an unaccounted-for variant.
func (e *Engine) Select(ctx context.Context, strategy scoring.Strategy, participantID, testID string, forms map[string]FormFn) (any, error) {
	if len(forms) == 0 {
		return nil, nil
	}
	start := time.Now()

	// Sorted candidate order keeps strategy tie-breaks deterministic
	// regardless of map iteration order.
	candidates := make([]string, 0, len(forms))
	for id := range forms {
		candidates = append(candidates, id)
	}
	sort.Strings(candidates)

	choose := func() (string, error) {
		if len(candidates) == 1 {
			return candidates[0], nil
		}
		return strategy.Select(ctx, testID, candidates)
	}

	if participantID == "" {
		form, err := choose()
		if err != nil {
			return nil, fmt.Errorf("selecting leader for test %q: %w", testID, err)
		}
		e.metrics.RecordSelection(testID, strategy.Name(), metrics.OutcomeStateless, time.Since(start))
		return forms[form](), nil
	}

	cfg := e.resolver.Resolve(testID)

	prior, err := e.store.Get(ctx, store.SelectionKey(testID, participantID))
	if err != nil && !types.IsKeyNotFound(err) {
		return nil, fmt.Errorf("reading sticky selection for test %q: %w", testID, err)
	}

	if err == nil {
		if _, offered := forms[prior]; offered {
			if err := e.refreshSession(ctx, cfg, testID, participantID, prior); err != nil {
				return nil, err
			}
			e.metrics.RecordSelection(testID, strategy.Name(), metrics.OutcomeSticky, time.Since(start))
			return forms[prior](), nil
		}
		// The sticky form is no longer offered; reallocate below.
		e.logger.Debug("sticky selection names a retired form",
			zap.String("test", testID),
			zap.String("form", prior),
		)
	}

	form, err := choose()
	if err != nil {
		return nil, fmt.Errorf("selecting leader for test %q: %w", testID, err)
	}
	if err := e.freshAllocate(ctx, cfg.SessionTTL, testID, participantID, form); err != nil {
		return nil, err
	}
	e.metrics.RecordSelection(testID, strategy.Name(), metrics.OutcomeFresh, time.Since(start))
	return forms[form](), nil
}

// refreshSession honors a prior selection: both session keys get their TTL
// refreshed (the commit guard too, even though no commit occurred) so the
// whole session's expiry window slides forward on activity. The prospect
// counter moves only when duplicate counting is enabled: a repeat view by
// the same sticky participant is not a new prospect.
func (e *Engine) refreshSession(ctx context.Context, cfg config.TestConfig, testID, participantID, form string) error {
	if _, err := e.store.Expire(ctx, store.SelectionKey(testID, participantID), cfg.SessionTTL); err != nil {
		return fmt.Errorf("refreshing sticky selection for test %q: %w", testID, err)
	}
	if _, err := e.store.Expire(ctx, store.CommittedKey(testID, participantID), cfg.SessionTTL); err != nil {
		return fmt.Errorf("refreshing commit guard for test %q: %w", testID, err)
	}
	if cfg.CountDuplicates {
		if _, err := e.store.HIncrBy(ctx, store.ProspectsKey(testID), form, 1); err != nil {
			return fmt.Errorf("counting duplicate prospect for test %q: %w", testID, err)
		}
	}
	return nil
}

// freshAllocate records a first-time allocation for this session: the new
// sticky selection, a cleared commit guard, and one prospect for the form.
// An expired-then-reacquired session lands here and counts as new; the
// prior session's statistics effectively ended with its TTL.
func (e *Engine) freshAllocate(ctx context.Context, ttl time.Duration, testID, participantID, form string) error {
	if err := e.store.SetEx(ctx, store.SelectionKey(testID, participantID), form, ttl); err != nil {
		return fmt.Errorf("writing sticky selection for test %q: %w", testID, err)
	}
	// Selection and commit guard share lifecycle: a new session must not
	// inherit a leftover guard.
	if err := e.store.Del(ctx, store.CommittedKey(testID, participantID)); err != nil {
		return fmt.Errorf("clearing commit guard for test %q: %w", testID, err)
	}
	if _, err := e.store.HIncrBy(ctx, store.ProspectsKey(testID), form, 1); err != nil {
		return fmt.Errorf("counting prospect for test %q: %w", testID, err)
	}
	return nil
}
