package config

import "sync"

// Resolver overlays per-test overrides on the session defaults. It is
// explicit state constructed once at startup and handed to the engine; the
// setters exist for deployments that retune tests at runtime.
type Resolver struct {
	mu        sync.RWMutex
	defaults  SessionConfig
	overrides map[string]TestOverride
}

// NewResolver builds a Resolver from a loaded Config.
func NewResolver(cfg *Config) *Resolver {
	r := &Resolver{
		defaults:  cfg.Session,
		overrides: make(map[string]TestOverride, len(cfg.Tests)),
	}
	for id, ov := range cfg.Tests {
		r.overrides[id] = ov
	}
	return r
}

// Resolve returns the effective configuration for a test id. An absent
// override yields pure defaults; a partial override wins key by key.
func (r *Resolver) Resolve(testID string) TestConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := TestConfig{
		SessionTTL:      r.defaults.TTL,
		CountDuplicates: r.defaults.CountDuplicates,
	}
	ov, ok := r.overrides[testID]
	if !ok {
		return out
	}
	if ov.SessionTTL != nil {
		out.SessionTTL = *ov.SessionTTL
	}
	if ov.CountDuplicates != nil {
		out.CountDuplicates = *ov.CountDuplicates
	}
	return out
}

// SetDefaults replaces the session defaults.
func (r *Resolver) SetDefaults(defaults SessionConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaults = defaults
}

// SetTest installs or replaces the override for one test id.
func (r *Resolver) SetTest(testID string, override TestOverride) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides[testID] = override
}

// DropTest removes a test's override, reverting it to the defaults.
func (r *Resolver) DropTest(testID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.overrides, testID)
}
