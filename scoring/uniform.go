package scoring

import (
	"context"
	"math/rand/v2"
)

// Uniform picks uniformly among candidates. Plain A/B behavior: no store
// reads, no cache, so every call is independent.
type Uniform struct{}

// NewUniform creates the uniform-random strategy.
func NewUniform() *Uniform { return &Uniform{} }

// Name implements Strategy.
func (s *Uniform) Name() string { return "uniform" }

// Select implements Strategy.
func (s *Uniform) Select(ctx context.Context, testID string, candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", ErrNoCandidates
	}
	return candidates[rand.IntN(len(candidates))], nil
}
