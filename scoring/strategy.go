package scoring

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/taoensso/touchstone/store"
)

// ErrNoCandidates is returned when a strategy is invoked with an empty
// candidate set.
var ErrNoCandidates = errors.New("no candidate forms")

// Strategy picks one form id out of a candidate set for a test. Candidate
// order is significant: strategies break ties in favor of earlier candidates,
// so a fixed candidate order gives deterministic behavior.
type Strategy interface {
	Name() string
	Select(ctx context.Context, testID string, candidates []string) (string, error)
}

// formStats is one form's aggregate state.
type formStats struct {
	prospects int64
	score     float64
}

// readStats loads the counter and score hashes for a test. The returned
// total sums prospects across every form the test has ever seen, not just
// the current candidates, since retired forms still shape the confidence
// bound.
func readStats(ctx context.Context, st store.Store, testID string) (map[string]formStats, int64, error) {
	prospects, err := st.HGetAll(ctx, store.ProspectsKey(testID))
	if err != nil {
		return nil, 0, err
	}
	scores, err := st.HGetAll(ctx, store.ScoresKey(testID))
	if err != nil {
		return nil, 0, err
	}

	stats := make(map[string]formStats, len(prospects))
	var total int64
	for form, raw := range prospects {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("malformed prospect count for form %q: %w", form, err)
		}
		total += n
		stats[form] = formStats{prospects: n}
	}
	for form, raw := range scores {
		s, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("malformed score for form %q: %w", form, err)
		}
		fs := stats[form]
		fs.score = s
		stats[form] = fs
	}
	return stats, total, nil
}
