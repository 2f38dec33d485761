package touchstone

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/taoensso/touchstone/store"
)

// FormStats is one form's aggregate standing within a test.
type FormStats struct {
	FormID    string  `json:"form_id"`
	Prospects int64   `json:"prospects"`
	Score     float64 `json:"score"`
	MeanScore float64 `json:"mean_score"`
}

// TestSnapshot is a read-only view of a test's aggregate state, for whatever
// presentation layer a deployment chooses.
type TestSnapshot struct {
	TestID         string      `json:"test_id"`
	TotalProspects int64       `json:"total_prospects"`
	TotalScore     float64     `json:"total_score"`
	Forms          []FormStats `json:"forms"`
}

// Snapshot reads a test's counters and scores and returns them ranked by
// cumulative score (prospects, then form id, as tie-breaks). Forms that were
// ever counted or scored appear even if no longer offered.
func (e *Engine) Snapshot(ctx context.Context, testID string) (*TestSnapshot, error) {
	prospects, err := e.store.HGetAll(ctx, store.ProspectsKey(testID))
	if err != nil {
		return nil, fmt.Errorf("reading prospects for test %q: %w", testID, err)
	}
	scores, err := e.store.HGetAll(ctx, store.ScoresKey(testID))
	if err != nil {
		return nil, fmt.Errorf("reading scores for test %q: %w", testID, err)
	}

	byForm := make(map[string]*FormStats, len(prospects))
	stats := func(form string) *FormStats {
		fs, ok := byForm[form]
		if !ok {
			fs = &FormStats{FormID: form}
			byForm[form] = fs
		}
		return fs
	}

	for form, raw := range prospects {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed prospect count for form %q: %w", form, err)
		}
		stats(form).Prospects = n
	}
	for form, raw := range scores {
		s, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed score for form %q: %w", form, err)
		}
		stats(form).Score = s
	}

	snap := &TestSnapshot{TestID: testID, Forms: make([]FormStats, 0, len(byForm))}
	for _, fs := range byForm {
		if fs.Prospects > 0 {
			fs.MeanScore = fs.Score / float64(fs.Prospects)
		}
		snap.TotalProspects += fs.Prospects
		snap.TotalScore += fs.Score
		snap.Forms = append(snap.Forms, *fs)
	}

	sort.Slice(snap.Forms, func(i, j int) bool {
		a, b := snap.Forms[i], snap.Forms[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Prospects != b.Prospects {
			return a.Prospects > b.Prospects
		}
		return a.FormID < b.FormID
	})
	return snap, nil
}
