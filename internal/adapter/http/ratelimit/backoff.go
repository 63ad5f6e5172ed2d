package ratelimit

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// Backoff computes exponential delays applied to failed logins.
type Backoff struct {
	Min    time.Duration
	Max    time.Duration
	Factor float64
	Jitter bool
}

func NewBackoff(min, max time.Duration, factor float64) *Backoff {
	return &Backoff{Min: min, Max: max, Factor: factor, Jitter: true}
}

// Duration is the delay after the given number of consecutive failures.
// With Jitter it is scaled into [50%, 100%] of the nominal value.
func (b *Backoff) Duration(attempt int) time.Duration {
	if attempt <= 0 {
		return b.Min
	}

	d := float64(b.Min) * math.Pow(b.Factor, float64(attempt-1))
	if d > float64(b.Max) {
		d = float64(b.Max)
	}
	if b.Jitter {
		d *= 0.5 + rand.Float64()*0.5
	}
	return time.Duration(d)
}

// FailureTracker counts consecutive failed logins per client.
type FailureTracker struct {
	mu       sync.Mutex
	failures map[string]int
}

func NewFailureTracker() *FailureTracker {
	return &FailureTracker{failures: make(map[string]int)}
}

func (t *FailureTracker) Failures(clientID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failures[clientID]
}

// RecordFailure increments and returns the client's failure count.
func (t *FailureTracker) RecordFailure(clientID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures[clientID]++
	return t.failures[clientID]
}

func (t *FailureTracker) RecordSuccess(clientID string) {
	t.mu.Lock()
	delete(t.failures, clientID)
	t.mu.Unlock()
}
