package touchstone

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/taoensso/touchstone/store"
	"github.com/taoensso/touchstone/types"
)

// ListTestKeys enumerates every store key belonging to testID: the counter
// and score hashes plus any live session keys.
func (e *Engine) ListTestKeys(ctx context.Context, testID string) ([]string, error) {
	keys, err := e.store.Keys(ctx, store.TestPattern(testID))
	if err != nil {
		return nil, fmt.Errorf("listing keys for test %q: %w", testID, err)
	}
	return keys, nil
}

// DeleteTest removes all of a test's state: counters, scores, and every
// participant's session keys. Irreversible.
func (e *Engine) DeleteTest(ctx context.Context, testID string) error {
	keys, err := e.ListTestKeys(ctx, testID)
	if err != nil {
		return err
	}
	if err := e.store.Del(ctx, keys...); err != nil {
		return fmt.Errorf("deleting test %q: %w", testID, err)
	}
	e.logger.Info("test deleted",
		zap.String("test", testID),
		zap.Int("keys", len(keys)),
	)
	return nil
}

// RenameTest moves all of oldID's state under newID, key by key. A key whose
// destination already exists is left in place rather than overwritten; after
// the pass, any unmoved keys are reported via a RENAME_CONFLICT error. The
// keys that did move stay moved; partial renames are surfaced, not rolled
// back.
func (e *Engine) RenameTest(ctx context.Context, oldID, newID string) error {
	keys, err := e.ListTestKeys(ctx, oldID)
	if err != nil {
		return err
	}

	var failed []string
	for _, key := range keys {
		newKey, ok := store.RekeyTest(key, oldID, newID)
		if !ok {
			continue
		}
		moved, err := e.store.RenameNX(ctx, key, newKey)
		if err != nil {
			if types.IsKeyNotFound(err) {
				// Session key expired between enumeration and rename.
				continue
			}
			return fmt.Errorf("renaming key %q: %w", key, err)
		}
		if !moved {
			failed = append(failed, key)
		}
	}

	e.logger.Info("test renamed",
		zap.String("old", oldID),
		zap.String("new", newID),
		zap.Int("keys", len(keys)),
		zap.Int("conflicts", len(failed)),
	)

	if len(failed) > 0 {
		return &types.RenameConflict{OldID: oldID, NewID: newID, Failed: failed}
	}
	return nil
}
