package scoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taoensso/touchstone/store"
	"github.com/taoensso/touchstone/types"
)

// failingStore fails every operation, standing in for an unreachable store.
type failingStore struct{}

func (failingStore) err() error {
	return types.WrapError(types.CodeStoreUnavailable, "stub", errors.New("down"))
}

func (f failingStore) Get(ctx context.Context, key string) (string, error) { return "", f.err() }
func (f failingStore) SetEx(ctx context.Context, key, value string, ttl time.Duration) error {
	return f.err()
}
func (f failingStore) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return false, f.err()
}
func (f failingStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return nil, f.err()
}
func (f failingStore) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	return 0, f.err()
}
func (f failingStore) HIncrByFloat(ctx context.Context, key, field string, delta float64) (float64, error) {
	return 0, f.err()
}
func (f failingStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	return nil, f.err()
}
func (f failingStore) RenameNX(ctx context.Context, oldKey, newKey string) (bool, error) {
	return false, f.err()
}
func (f failingStore) Del(ctx context.Context, keys ...string) error { return f.err() }
func (f failingStore) Ping(ctx context.Context) error                { return f.err() }
func (f failingStore) Close() error                                  { return nil }

var _ store.Store = failingStore{}

func TestUniform_PicksAmongCandidates(t *testing.T) {
	s := NewUniform()
	ctx := context.Background()
	candidates := []string{"a", "b", "c"}

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		form, err := s.Select(ctx, "t", candidates)
		require.NoError(t, err)
		assert.Contains(t, candidates, form)
		seen[form] = true
	}
	assert.Len(t, seen, 3, "200 draws should hit all three forms")
}

func TestUniform_EmptyCandidates(t *testing.T) {
	_, err := NewUniform().Select(context.Background(), "t", nil)
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestLeastTried_PicksSmallestCount(t *testing.T) {
	st := store.NewMemory()
	seed(t, st, "t", "a", 10, 0)
	seed(t, st, "t", "b", 3, 0)
	seed(t, st, "t", "c", 7, 0)

	s := NewLeastTried(st)
	form, err := s.Select(context.Background(), "t", []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, "b", form)
}

func TestLeastTried_TieBreaksByCandidateOrder(t *testing.T) {
	st := store.NewMemory()
	seed(t, st, "t", "a", 5, 0)
	seed(t, st, "t", "b", 5, 0)

	s := NewLeastTried(st)
	form, err := s.Select(context.Background(), "t", []string{"b", "a"})
	require.NoError(t, err)
	assert.Equal(t, "b", form)
}

func TestLeastTried_UntestedWins(t *testing.T) {
	st := store.NewMemory()
	seed(t, st, "t", "a", 1, 0)

	s := NewLeastTried(st)
	form, err := s.Select(context.Background(), "t", []string{"a", "fresh"})
	require.NoError(t, err)
	assert.Equal(t, "fresh", form)
}

func TestLeastTried_StoreFailurePropagates(t *testing.T) {
	s := NewLeastTried(failingStore{})

	_, err := s.Select(context.Background(), "t", []string{"a"})
	assert.True(t, types.IsStoreUnavailable(err))
}

func TestReadStats_TotalsAcrossAllForms(t *testing.T) {
	st := store.NewMemory()
	seed(t, st, "t", "a", 2, 0.5)
	seed(t, st, "t", "retired", 8, -1)

	stats, total, err := readStats(context.Background(), st, "t")
	require.NoError(t, err)
	assert.Equal(t, int64(10), total, "retired forms still count toward N")
	assert.Equal(t, int64(2), stats["a"].prospects)
	assert.InDelta(t, 0.5, stats["a"].score, 1e-9)
	assert.InDelta(t, -1, stats["retired"].score, 1e-9)
}
