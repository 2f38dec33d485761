// Package store adapts the external key-value store behind the narrow
// interface the engine needs: TTL-bound strings for sticky sessions, hashes
// with atomic increments for counters and scores, and prefix enumeration,
// rename, and delete for administration.
//
// Redis is the production implementation. Memory is an in-process stand-in
// for tests and embedded use.
package store
