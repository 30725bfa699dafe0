package breaker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	b := New(3)

	b.Failure()
	b.Failure()
	assert.NoError(t, b.Allow())

	b.Failure()
	assert.ErrorIs(t, b.Allow(), ErrOpen)
	assert.True(t, b.IsOpen())
}

func TestBreakerSuccessClearsStreak(t *testing.T) {
	b := New(2)

	b.Failure()
	b.Success()
	b.Failure()
	assert.NoError(t, b.Allow())

	b.Failure()
	assert.ErrorIs(t, b.Allow(), ErrOpen)
}

func TestBreakerStaysOpenUntilReset(t *testing.T) {
	b := New(1)
	b.Failure()
	assert.True(t, b.IsOpen())

	// Successes after the trip do not close it.
	b.Success()
	assert.True(t, b.IsOpen())

	b.Reset()
	assert.NoError(t, b.Allow())
}
