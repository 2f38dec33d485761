// Package touchstone is an online, self-adjusting traffic-allocation engine
// for multivariate split tests. It decides, per participant, which variant
// ("form") of an experiment ("test") to show, keeps that decision sticky for
// the participant's session, and feeds reported outcomes ("commits") back
// into the allocation decision through a multi-armed-bandit scoring rule.
//
// All state lives in the key-value store behind [store.Store]; the engine is
// stateless and safe for concurrent use from many goroutines and processes.
//
// Usage:
//
//	st, err := store.NewRedis(store.DefaultRedisConfig(), logger)
//	eng := touchstone.New(st, config.NewResolver(cfg))
//	strategy := scoring.NewUCB1(st)
//
//	v, err := eng.Select(ctx, strategy, participantID, "landing:signup",
//	    map[string]touchstone.FormFn{
//	        "red":   func() any { return "Sign up now" },
//	        "green": func() any { return "Join free" },
//	    })
//	// ... participant converts:
//	err = eng.Commit(ctx, participantID, "landing:signup", 1)
package touchstone

import (
	"context"

	"go.uber.org/zap"

	"github.com/taoensso/touchstone/config"
	"github.com/taoensso/touchstone/internal/metrics"
	"github.com/taoensso/touchstone/store"
)

// FormFn lazily produces one form's value. The engine forces it at most
// once, and only for the chosen form, so non-selected variants never pay
// their evaluation cost. That matters when a variant embeds expensive or
// side-effecting work, including a nested sub-test.
type FormFn func() any

// Engine is the allocation-and-scoring engine. Construct once and share.
type Engine struct {
	store    store.Store
	resolver *config.Resolver
	logger   *zap.Logger
	metrics  *metrics.Collector
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMetrics attaches a metrics collector.
func WithMetrics(c *metrics.Collector) Option {
	return func(e *Engine) { e.metrics = c }
}

// New creates an Engine over st. A nil resolver gets pure defaults.
func New(st store.Store, resolver *config.Resolver, opts ...Option) *Engine {
	if resolver == nil {
		resolver = config.NewResolver(config.DefaultConfig())
	}
	e := &Engine{
		store:    st,
		resolver: resolver,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(zap.String("component", "engine"))
	return e
}

// Resolver exposes the engine's config resolver, e.g. for runtime retuning.
func (e *Engine) Resolver() *config.Resolver { return e.resolver }

// Ping checks the underlying store's health.
//
// Deployments front their readiness endpoint with this.
func (e *Engine) Ping(ctx context.Context) error { return e.store.Ping(ctx) }
