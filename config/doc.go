// Package config holds the engine's configuration surface: a process-wide
// Config loaded once at startup (defaults, then YAML file, then environment
// overrides) and a Resolver that overlays per-test overrides on the session
// defaults.
//
// Config priority: defaults -> YAML file -> environment variables.
package config
