package touchstone

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taoensso/touchstone/config"
	"github.com/taoensso/touchstone/scoring"
	"github.com/taoensso/touchstone/store"
)

// fixed always picks one form; mustNotRun fails the test if consulted.
type fixed struct{ form string }

func (f fixed) Name() string { return "fixed" }
func (f fixed) Select(ctx context.Context, testID string, candidates []string) (string, error) {
	return f.form, nil
}

type mustNotRun struct{ t *testing.T }

func (m mustNotRun) Name() string { return "must-not-run" }
func (m mustNotRun) Select(ctx context.Context, testID string, candidates []string) (string, error) {
	m.t.Fatal("strategy must not be invoked")
	return "", nil
}

func newTestEngine(t *testing.T, cfg *config.Config) (*Engine, *store.Memory, *time.Time) {
	t.Helper()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	st := store.NewMemory()
	now := time.Now()
	st.SetClock(func() time.Time { return now })
	return New(st, config.NewResolver(cfg)), st, &now
}

func producers(ids ...string) map[string]FormFn {
	out := make(map[string]FormFn, len(ids))
	for _, id := range ids {
		id := id
		out[id] = func() any { return "value:" + id }
	}
	return out
}

func prospects(t *testing.T, st store.Store, testID string) map[string]string {
	t.Helper()
	fields, err := st.HGetAll(context.Background(), store.ProspectsKey(testID))
	require.NoError(t, err)
	return fields
}

func TestSelect_EmptyForms(t *testing.T) {
	e, _, _ := newTestEngine(t, nil)

	v, err := e.Select(context.Background(), scoring.NewUniform(), "p1", "t", nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSelect_SingleFormSkipsStrategy(t *testing.T) {
	e, st, _ := newTestEngine(t, nil)

	v, err := e.Select(context.Background(), mustNotRun{t}, "p1", "t", producers("only"))
	require.NoError(t, err)
	assert.Equal(t, "value:only", v)
	assert.Equal(t, map[string]string{"only": "1"}, prospects(t, st, "t"))
}

func TestSelect_AnonymousParticipantNeverMutates(t *testing.T) {
	e, st, _ := newTestEngine(t, nil)
	ctx := context.Background()

	v, err := e.Select(ctx, fixed{"a"}, "", "t", producers("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, "value:a", v)

	assert.Empty(t, prospects(t, st, "t"))
	keys, err := st.Keys(ctx, store.TestPattern("t"))
	require.NoError(t, err)
	assert.Empty(t, keys, "no selection, guard, or counter state for anonymous traffic")
}

func TestSelect_StickyAcrossCalls(t *testing.T) {
	e, st, _ := newTestEngine(t, nil)
	ctx := context.Background()

	first, err := e.Select(ctx, fixed{"a"}, "p1", "t", producers("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, "value:a", first)

	// Second call: sticky wins even when the strategy would now say "b",
	// and the counter does not move again.
	second, err := e.Select(ctx, fixed{"b"}, "p1", "t", producers("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, "value:a", second)
	assert.Equal(t, map[string]string{"a": "1"}, prospects(t, st, "t"))
}

func TestSelect_StickyRefreshSlidesWindow(t *testing.T) {
	e, st, now := newTestEngine(t, nil)
	ctx := context.Background()

	_, err := e.Select(ctx, fixed{"a"}, "p1", "t", producers("a", "b"))
	require.NoError(t, err)

	// Keep coming back just inside the window; the session must survive
	// well past the original two hours.
	for i := 0; i < 4; i++ {
		*now = now.Add(90 * time.Minute)
		v, err := e.Select(ctx, fixed{"b"}, "p1", "t", producers("a", "b"))
		require.NoError(t, err)
		assert.Equal(t, "value:a", v)
	}
	assert.Equal(t, map[string]string{"a": "1"}, prospects(t, st, "t"))
}

func TestSelect_ExpiredSessionCountsAsNew(t *testing.T) {
	e, st, now := newTestEngine(t, nil)
	ctx := context.Background()

	_, err := e.Select(ctx, fixed{"a"}, "p1", "t", producers("a", "b"))
	require.NoError(t, err)

	*now = now.Add(3 * time.Hour)

	v, err := e.Select(ctx, fixed{"b"}, "p1", "t", producers("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, "value:b", v, "expired session reallocates")
	assert.Equal(t, map[string]string{"a": "1", "b": "1"}, prospects(t, st, "t"))
}

func TestSelect_RetiredStickyFormReallocates(t *testing.T) {
	e, st, _ := newTestEngine(t, nil)
	ctx := context.Background()

	_, err := e.Select(ctx, fixed{"a"}, "p1", "t", producers("a", "b"))
	require.NoError(t, err)

	// "a" is withdrawn from the deployment; the sticky pointer is stale.
	v, err := e.Select(ctx, fixed{"b"}, "p1", "t", producers("b", "c"))
	require.NoError(t, err)
	assert.Equal(t, "value:b", v)
	assert.Equal(t, map[string]string{"a": "1", "b": "1"}, prospects(t, st, "t"))
}

func TestSelect_CountDuplicates(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Session.CountDuplicates = true
	e, st, _ := newTestEngine(t, cfg)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := e.Select(ctx, fixed{"a"}, "p1", "t", producers("a", "b"))
		require.NoError(t, err)
	}
	assert.Equal(t, map[string]string{"a": "3"}, prospects(t, st, "t"))
}

func TestSelect_OnlyChosenProducerForced(t *testing.T) {
	e, _, _ := newTestEngine(t, nil)

	var aForced, bForced int
	forms := map[string]FormFn{
		"a": func() any { aForced++; return "A" },
		"b": func() any { bForced++; return "B" },
	}

	v, err := e.Select(context.Background(), fixed{"a"}, "p1", "t", forms)
	require.NoError(t, err)
	assert.Equal(t, "A", v)
	assert.Equal(t, 1, aForced, "chosen producer forced exactly once")
	assert.Equal(t, 0, bForced, "non-selected producer never pays its cost")
}

func TestSelect_StoreFailurePropagates(t *testing.T) {
	e := New(failingStore{}, nil)

	_, err := e.Select(context.Background(), fixed{"a"}, "p1", "t", producers("a", "b"))
	assert.Error(t, err, "failure must propagate, never default to a form")
}

func TestSelect_StrategyFailurePropagates(t *testing.T) {
	e, _, _ := newTestEngine(t, nil)

	u := scoring.NewUCB1(failingStore{})
	_, err := e.Select(context.Background(), u, "p1", "t", producers("a", "b"))
	assert.Error(t, err)
}

func TestSelect_UCB1EndToEnd(t *testing.T) {
	// Fresh test, two forms, UCB1 end to end.
	e, st, _ := newTestEngine(t, nil)
	ctx := context.Background()
	u := scoring.NewUCB1(st)

	v, err := e.Select(ctx, u, "p1", "signup", producers("A", "B"))
	require.NoError(t, err)
	assert.Equal(t, "value:A", v, "cold start tie-breaks to first candidate in sorted order")

	// Same participant, immediately again: same form, counters untouched.
	v2, err := e.Select(ctx, u, "p1", "signup", producers("A", "B"))
	require.NoError(t, err)
	assert.Equal(t, v, v2)
	assert.Equal(t, map[string]string{"A": "1"}, prospects(t, st, "signup"))
}
