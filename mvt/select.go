package mvt

import (
	"context"
	"fmt"

	"github.com/taoensso/touchstone"
	"github.com/taoensso/touchstone/scoring"
)

// Producers wraps an expansion so each composite form produces its ordering
// as the form value.
func Producers(expansion map[string][]string) map[string]touchstone.FormFn {
	out := make(map[string]touchstone.FormFn, len(expansion))
	for id, ordering := range expansion {
		ordering := ordering
		out[id] = func() any { return ordering }
	}
	return out
}

// SelectOrdered runs one selection over every admissible ordering of base
// and returns the ordering the participant should see. Sticky selection,
// prospect counting, and scoring all apply to the composite forms exactly as
// they would to plain ones: Commit against the same testID scores whichever
// ordering the participant was allocated.
func SelectOrdered(ctx context.Context, e *touchstone.Engine, strategy scoring.Strategy, participantID, testID string, base []string, takeFirstN int) ([]string, error) {
	expansion, err := Expand(base, takeFirstN)
	if err != nil {
		return nil, err
	}

	v, err := e.Select(ctx, strategy, participantID, testID, Producers(expansion))
	if err != nil || v == nil {
		return nil, err
	}
	ordering, ok := v.([]string)
	if !ok {
		return nil, fmt.Errorf("test %q returned %T, not an ordering", testID, v)
	}
	return ordering, nil
}
