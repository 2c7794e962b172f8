package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	LoginSuccesses       uint64
	LoginFailures        uint64
	AuthCacheHits        uint64
	AuthCacheMisses      uint64
	TransactionsListed   uint64
	MetricsComputed      uint64
	QueryDurationCount   uint64
	QueryDurationTotalNs int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	loginSuccesses       uint64
	loginFailures        uint64
	authCacheHits        uint64
	authCacheMisses      uint64
	transactionsListed   uint64
	metricsComputed      uint64
	queryDurationCount   uint64
	queryDurationTotalNs int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		LoginSuccesses:       atomic.LoadUint64(&m.loginSuccesses),
		LoginFailures:        atomic.LoadUint64(&m.loginFailures),
		AuthCacheHits:        atomic.LoadUint64(&m.authCacheHits),
		AuthCacheMisses:      atomic.LoadUint64(&m.authCacheMisses),
		TransactionsListed:   atomic.LoadUint64(&m.transactionsListed),
		MetricsComputed:      atomic.LoadUint64(&m.metricsComputed),
		QueryDurationCount:   atomic.LoadUint64(&m.queryDurationCount),
		QueryDurationTotalNs: atomic.LoadInt64(&m.queryDurationTotalNs),
	}
}

// IncLoginSuccess increments the successful login counter.
func (m *InMemoryRecorder) IncLoginSuccess() {
	atomic.AddUint64(&m.loginSuccesses, 1)
}

// IncLoginFailure increments the failed login counter.
func (m *InMemoryRecorder) IncLoginFailure() {
	atomic.AddUint64(&m.loginFailures, 1)
}

// IncAuthCacheHit increments the principal cache hit counter.
func (m *InMemoryRecorder) IncAuthCacheHit() {
	atomic.AddUint64(&m.authCacheHits, 1)
}

// IncAuthCacheMiss increments the principal cache miss counter.
func (m *InMemoryRecorder) IncAuthCacheMiss() {
	atomic.AddUint64(&m.authCacheMisses, 1)
}

// IncTransactionsListed increments the transactions listed counter.
func (m *InMemoryRecorder) IncTransactionsListed() {
	atomic.AddUint64(&m.transactionsListed, 1)
}

// IncMetricsComputed increments the metrics computed counter.
func (m *InMemoryRecorder) IncMetricsComputed() {
	atomic.AddUint64(&m.metricsComputed, 1)
}

// ObserveQueryDuration records a ledger query duration.
func (m *InMemoryRecorder) ObserveQueryDuration(duration time.Duration) {
	atomic.AddUint64(&m.queryDurationCount, 1)
	atomic.AddInt64(&m.queryDurationTotalNs, duration.Nanoseconds())
}
