package breaker

import (
	"errors"
	"sync"
)

// ErrOpen is returned when the breaker refuses a call.
var ErrOpen = errors.New("circuit breaker is open")

// Breaker trips after a number of consecutive failures and stays open until
// Reset is called. There is no half-open probing: the pipeline runs in short
// cycles, and a fresh cycle starts with a fresh breaker.
type Breaker struct {
	mu          sync.Mutex
	maxFailures int
	failures    int
	open        bool
}

// New creates a breaker that opens after maxFailures consecutive failures.
func New(maxFailures int) *Breaker {
	if maxFailures < 1 {
		maxFailures = 1
	}
	return &Breaker{maxFailures: maxFailures}
}

// Allow reports whether a call may proceed.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.open {
		return ErrOpen
	}
	return nil
}

// Success records a successful call and clears the failure streak.
func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
}

// Failure records a failed call, tripping the breaker when the streak
// reaches the limit.
func (b *Breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.failures >= b.maxFailures {
		b.open = true
	}
}

// IsOpen reports whether the breaker has tripped.
func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

// Reset closes the breaker and clears the failure streak.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.open = false
}
