package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncLoginSuccess is a no-op.
func (n *NoopRecorder) IncLoginSuccess() {}

// IncLoginFailure is a no-op.
func (n *NoopRecorder) IncLoginFailure() {}

// IncAuthCacheHit is a no-op.
func (n *NoopRecorder) IncAuthCacheHit() {}

// IncAuthCacheMiss is a no-op.
func (n *NoopRecorder) IncAuthCacheMiss() {}

// IncTransactionsListed is a no-op.
func (n *NoopRecorder) IncTransactionsListed() {}

// IncMetricsComputed is a no-op.
func (n *NoopRecorder) IncMetricsComputed() {}

// ObserveQueryDuration is a no-op.
func (n *NoopRecorder) ObserveQueryDuration(duration time.Duration) {}
