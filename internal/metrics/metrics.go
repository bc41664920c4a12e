// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Authentication metrics
	IncAuthSuccess()
	IncAuthFailure(reason string) // reason: "missing_token", "malformed_token", "invalid_token", "fetch_error", "validator_error"
	ObserveTokenValidation(duration time.Duration)

	// Key set retrieval metrics
	IncKeySetFetch(source string) // source: "network" or "cache"

	// User resource metrics
	IncUserCreated()
	IncUserDeleted()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
