package touchstone

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/taoensso/touchstone/internal/metrics"
	"github.com/taoensso/touchstone/store"
	"github.com/taoensso/touchstone/types"
)

// CommitPair is one (test, outcome value) pair for MultiCommit.
type CommitPair struct {
	TestID string
	Value  float64
}

// Commit attributes an outcome value in [-1, 1] to the participant's
// currently selected form for testID.
//
// No-ops: an empty participantID, a duplicate commit within the session
// window (unless duplicate counting is enabled), or a participant with no
// sticky selection to attribute the value to. Out-of-range values fail with
// INVALID_COMMIT_VALUE before any store I/O.
//
// The guard-check-then-set sequence spans two store operations and is not
// atomic; concurrent duplicate commits inside one session window can
// double-count a small number of values. Accepted best-effort bound.
func (e *Engine) Commit(ctx context.Context, participantID, testID string, value float64) error {
	start := time.Now()

	if math.IsNaN(value) || value < -1 || value > 1 {
		e.metrics.RecordCommit(testID, metrics.CommitRejected, time.Since(start))
		return types.NewError(types.CodeInvalidCommitValue,
			fmt.Sprintf("commit value %v outside [-1, 1]", value))
	}
	if participantID == "" {
		return nil
	}

	cfg := e.resolver.Resolve(testID)
	committedKey := store.CommittedKey(testID, participantID)

	if !cfg.CountDuplicates {
		_, err := e.store.Get(ctx, committedKey)
		switch {
		case err == nil:
			// Already committed this session; idempotent suppression.
			e.metrics.RecordCommit(testID, metrics.CommitSuppressed, time.Since(start))
			return nil
		case !types.IsKeyNotFound(err):
			return fmt.Errorf("checking commit guard for test %q: %w", testID, err)
		}
	}

	form, err := e.store.Get(ctx, store.SelectionKey(testID, participantID))
	if err != nil {
		if types.IsKeyNotFound(err) {
			// No sticky selection: nothing to attribute the value to.
			e.metrics.RecordCommit(testID, metrics.CommitOrphan, time.Since(start))
			return nil
		}
		return fmt.Errorf("resolving sticky selection for test %q: %w", testID, err)
	}

	if _, err := e.store.HIncrByFloat(ctx, store.ScoresKey(testID), form, value); err != nil {
		return fmt.Errorf("scoring form %q for test %q: %w", form, testID, err)
	}
	if err := e.store.SetEx(ctx, committedKey, "1", cfg.SessionTTL); err != nil {
		return fmt.Errorf("setting commit guard for test %q: %w", testID, err)
	}

	e.logger.Debug("commit applied",
		zap.String("test", testID),
		zap.String("form", form),
		zap.Float64("value", value),
	)
	e.metrics.RecordCommit(testID, metrics.CommitApplied, time.Since(start))
	return nil
}

// MultiCommit applies each pair independently, in argument order. A failing
// pair does not stop the rest; all failures are joined into one error.
func (e *Engine) MultiCommit(ctx context.Context, participantID string, pairs ...CommitPair) error {
	var errs []error
	for _, p := range pairs {
		if err := e.Commit(ctx, participantID, p.TestID, p.Value); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
