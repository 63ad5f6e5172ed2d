package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(max int, window, block time.Duration) (*LoginRateLimiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewLoginRateLimiter(max, window, block)
	l.now = clock.Now
	return l, clock
}

func TestLoginRateLimiter_AllowsUpToMax(t *testing.T) {
	l, _ := newTestLimiter(3, time.Minute, 5*time.Minute)

	for i := range 3 {
		allowed, wait := l.Check("10.0.0.1")
		assert.True(t, allowed, "attempt %d", i+1)
		assert.Zero(t, wait)
	}

	allowed, wait := l.Check("10.0.0.1")
	assert.False(t, allowed)
	assert.Equal(t, 5*time.Minute, wait)
}

func TestLoginRateLimiter_ReportsRemainingBlock(t *testing.T) {
	l, clock := newTestLimiter(1, time.Minute, 10*time.Minute)
	l.Check("c")
	l.Check("c")

	clock.Advance(4 * time.Minute)
	allowed, wait := l.Check("c")

	assert.False(t, allowed)
	assert.Equal(t, 6*time.Minute, wait)

	clock.Advance(6*time.Minute + time.Second)
	allowed, _ = l.Check("c")
	assert.True(t, allowed)
}

func TestLoginRateLimiter_WindowResetsCount(t *testing.T) {
	l, clock := newTestLimiter(2, time.Minute, time.Hour)
	l.Check("c")
	l.Check("c")

	clock.Advance(61 * time.Second)
	allowed, _ := l.Check("c")

	assert.True(t, allowed)
}

func TestLoginRateLimiter_ClientsAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute, time.Hour)
	l.Check("a")
	blocked, _ := l.Check("a")

	allowed, _ := l.Check("b")

	assert.False(t, blocked)
	assert.True(t, allowed)
}

func TestLoginRateLimiter_Reset(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute, time.Hour)
	l.Check("a")
	l.Check("a")

	l.Reset("a")
	allowed, _ := l.Check("a")

	assert.True(t, allowed)
}

func TestLoginRateLimiter_PruneDropsIdleClients(t *testing.T) {
	l, clock := newTestLimiter(1, time.Minute, 5*time.Minute)
	l.Check("idle")
	l.Check("blocked")
	l.Check("blocked")

	clock.Advance(3 * time.Minute)
	l.Check("recent")
	l.prune()

	assert.Equal(t, 2, l.tracked(), "blocked and recent clients survive")

	clock.Advance(10 * time.Minute)
	l.prune()
	assert.Zero(t, l.tracked())
}

func TestLoginRateLimiter_RunStopsWithContext(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		l.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestLoginRateLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(50, time.Minute, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Check("shared"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)
}
