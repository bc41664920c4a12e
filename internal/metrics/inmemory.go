package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	AuthSuccesses           uint64
	AuthFailures            map[string]uint64
	TokenValidationCount    uint64
	TokenValidationTotalNs  int64
	KeySetNetworkFetches    uint64
	KeySetCacheFetches      uint64
	UsersCreated            uint64
	UsersDeleted            uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	authSuccesses          uint64
	tokenValidationCount   uint64
	tokenValidationTotalNs int64
	keySetNetworkFetches   uint64
	keySetCacheFetches     uint64
	usersCreated           uint64
	usersDeleted           uint64

	mu           sync.Mutex
	authFailures map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		authFailures: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	failures := make(map[string]uint64, len(m.authFailures))
	for reason, count := range m.authFailures {
		failures[reason] = count
	}
	m.mu.Unlock()

	return Snapshot{
		AuthSuccesses:          atomic.LoadUint64(&m.authSuccesses),
		AuthFailures:           failures,
		TokenValidationCount:   atomic.LoadUint64(&m.tokenValidationCount),
		TokenValidationTotalNs: atomic.LoadInt64(&m.tokenValidationTotalNs),
		KeySetNetworkFetches:   atomic.LoadUint64(&m.keySetNetworkFetches),
		KeySetCacheFetches:     atomic.LoadUint64(&m.keySetCacheFetches),
		UsersCreated:           atomic.LoadUint64(&m.usersCreated),
		UsersDeleted:           atomic.LoadUint64(&m.usersDeleted),
	}
}

// IncAuthSuccess increments the successful authentication counter.
func (m *InMemoryRecorder) IncAuthSuccess() {
	atomic.AddUint64(&m.authSuccesses, 1)
}

// IncAuthFailure increments the failure counter for the given reason.
func (m *InMemoryRecorder) IncAuthFailure(reason string) {
	m.mu.Lock()
	m.authFailures[reason]++
	m.mu.Unlock()
}

// ObserveTokenValidation records a token validation duration.
func (m *InMemoryRecorder) ObserveTokenValidation(duration time.Duration) {
	atomic.AddUint64(&m.tokenValidationCount, 1)
	atomic.AddInt64(&m.tokenValidationTotalNs, duration.Nanoseconds())
}

// IncKeySetFetch increments the fetch counter for the given source.
func (m *InMemoryRecorder) IncKeySetFetch(source string) {
	switch source {
	case "cache":
		atomic.AddUint64(&m.keySetCacheFetches, 1)
	default:
		atomic.AddUint64(&m.keySetNetworkFetches, 1)
	}
}

// IncUserCreated increments the user created counter.
func (m *InMemoryRecorder) IncUserCreated() {
	atomic.AddUint64(&m.usersCreated, 1)
}

// IncUserDeleted increments the user deleted counter.
func (m *InMemoryRecorder) IncUserDeleted() {
	atomic.AddUint64(&m.usersDeleted, 1)
}
