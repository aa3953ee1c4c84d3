// Package ratelimit paces calls against quota-limited external services.
package ratelimit

import (
	"log/slog"
	"sync"
	"time"
)

// Limiter enforces a minimum interval between successive calls. It is shared
// process-wide and never persisted; counters reset on restart.
type Limiter struct {
	mu          sync.Mutex
	minInterval time.Duration
	lastCall    time.Time
	count       int
	resetAt     time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

type Stats struct {
	Count    int       `json:"count"`
	LastCall time.Time `json:"last_call"`
	ResetAt  time.Time `json:"reset_at"`
}

func NewLimiter(minInterval time.Duration) *Limiter {
	return &Limiter{
		minInterval: minInterval,
		resetAt:     time.Now().Add(time.Minute),
		now:         time.Now,
		sleep:       time.Sleep,
	}
}

// WaitIfNeeded blocks until at least the minimum interval has elapsed since
// the previous call returned. The lock is held across the sleep so
// concurrent callers are serialized with proper spacing between them.
func (l *Limiter) WaitIfNeeded() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	// The counter is observability only, reset once a minute.
	if !now.Before(l.resetAt) {
		l.count = 0
		l.resetAt = now.Add(time.Minute)
	}

	if !l.lastCall.IsZero() {
		if elapsed := now.Sub(l.lastCall); elapsed < l.minInterval {
			wait := l.minInterval - elapsed
			slog.Debug("rate limiter waiting", "wait", wait)
			l.sleep(wait)
		}
	}

	l.lastCall = l.now()
	l.count++
}

func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{
		Count:    l.count,
		LastCall: l.lastCall,
		ResetAt:  l.resetAt,
	}
}
