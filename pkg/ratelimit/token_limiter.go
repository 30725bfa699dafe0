package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenLimiter enforces a token budget per minute. Unlike a request rate
// limiter, the cost of each call varies, so callers report the token count
// up front and block until the current window has room for it.
type TokenLimiter struct {
	mu          sync.Mutex
	maxPerMin   int
	used        int
	windowStart time.Time
}

// NewTokenLimiter creates a limiter allowing maxPerMinute tokens per
// one-minute window.
func NewTokenLimiter(maxPerMinute int) *TokenLimiter {
	return &TokenLimiter{
		maxPerMin:   maxPerMinute,
		windowStart: time.Now(),
	}
}

// Wait blocks until the given number of tokens can be spent, or the context
// is cancelled. A request larger than the whole budget is admitted alone in
// a fresh window rather than blocking forever.
func (l *TokenLimiter) Wait(ctx context.Context, tokens int) error {
	for {
		l.mu.Lock()
		l.rotateLocked()
		if l.used+tokens <= l.maxPerMin || l.used == 0 {
			l.used += tokens
			l.mu.Unlock()
			return nil
		}
		wait := time.Until(l.windowStart.Add(time.Minute))
		l.mu.Unlock()

		if wait <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// GetRemaining returns the unused token budget in the current window.
func (l *TokenLimiter) GetRemaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rotateLocked()
	if remaining := l.maxPerMin - l.used; remaining > 0 {
		return remaining
	}
	return 0
}

func (l *TokenLimiter) rotateLocked() {
	if time.Since(l.windowStart) >= time.Minute {
		l.windowStart = time.Now()
		l.used = 0
	}
}
