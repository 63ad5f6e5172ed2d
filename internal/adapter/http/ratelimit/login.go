// Package ratelimit throttles login attempts per client.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

type attemptRecord struct {
	count        int
	lastAttempt  time.Time
	blockedUntil time.Time
}

// LoginRateLimiter admits at most maxAttempts logins per client within
// window, then refuses the client for block.
type LoginRateLimiter struct {
	mu          sync.Mutex
	attempts    map[string]*attemptRecord
	maxAttempts int
	window      time.Duration
	block       time.Duration
	now         func() time.Time
}

func NewLoginRateLimiter(maxAttempts int, window, block time.Duration) *LoginRateLimiter {
	return &LoginRateLimiter{
		attempts:    make(map[string]*attemptRecord),
		maxAttempts: maxAttempts,
		window:      window,
		block:       block,
		now:         time.Now,
	}
}

// Check records an attempt by clientID. When the client is refused it
// returns false and how long until it may try again.
func (l *LoginRateLimiter) Check(clientID string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	rec, ok := l.attempts[clientID]
	if !ok {
		rec = &attemptRecord{lastAttempt: now}
		l.attempts[clientID] = rec
	}

	if now.Before(rec.blockedUntil) {
		return false, rec.blockedUntil.Sub(now)
	}
	if now.Sub(rec.lastAttempt) > l.window {
		rec.count = 0
	}

	rec.count++
	rec.lastAttempt = now
	if rec.count > l.maxAttempts {
		rec.blockedUntil = now.Add(l.block)
		return false, l.block
	}
	return true, 0
}

// Reset forgets clientID, typically after a successful login.
func (l *LoginRateLimiter) Reset(clientID string) {
	l.mu.Lock()
	delete(l.attempts, clientID)
	l.mu.Unlock()
}

// Run prunes idle clients every interval until ctx is done.
func (l *LoginRateLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.prune()
		}
	}
}

func (l *LoginRateLimiter) prune() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for id, rec := range l.attempts {
		if now.Sub(rec.lastAttempt) > 2*l.window && now.After(rec.blockedUntil) {
			delete(l.attempts, id)
		}
	}
}

func (l *LoginRateLimiter) tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.attempts)
}
