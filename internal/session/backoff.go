package session

import "time"

// Reconnect policy defaults, matching the deployed web client.
const (
	DefaultBaseInterval = 3 * time.Second
	DefaultMaxAttempts  = 5
)

// Backoff computes reconnect delays. The delay grows linearly with the
// attempt number and there is no jitter and no upper clamp beyond the
// attempt cap; both are kept as-is for compatibility with the server's
// expectations. The missing jitter means clients dropped by one outage
// reconnect in lockstep. Known limitation, not an oversight.
type Backoff struct {
	BaseInterval time.Duration
	MaxAttempts  int
}

// DefaultBackoff returns the production policy: 3s base, 5 attempts.
func DefaultBackoff() Backoff {
	return Backoff{BaseInterval: DefaultBaseInterval, MaxAttempts: DefaultMaxAttempts}
}

// NextDelay returns the delay before reconnect attempt N (1-based).
func (b Backoff) NextDelay(attempt int) time.Duration {
	return b.BaseInterval * time.Duration(attempt)
}

// ShouldRetry reports whether attempt N is within the retry budget.
func (b Backoff) ShouldRetry(attempt int) bool {
	return attempt <= b.MaxAttempts
}
