package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreaker_StartsClosed(t *testing.T) {
	b := New("verification-provider")
	assert.Equal(t, "verification-provider", b.Name())
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())
}

func TestBreaker_OpensOnConsecutiveFailures(t *testing.T) {
	b := New("p", WithFailureThreshold(2))

	unavailable, change := b.RecordFailure()
	assert.False(t, unavailable)
	assert.False(t, change.Opened)

	unavailable, change = b.RecordFailure()
	assert.True(t, unavailable)
	assert.True(t, change.Opened)
	assert.True(t, b.IsOpen())

	// already open: no second transition
	_, change = b.RecordFailure()
	assert.False(t, change.Opened)
}

func TestBreaker_SuccessClearsFailureStreak(t *testing.T) {
	b := New("p", WithFailureThreshold(2))
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	assert.False(t, b.IsOpen())
}

func TestBreaker_AllowsProbeAfterCooldown(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	b := New("p",
		WithFailureThreshold(1),
		WithSuccessThreshold(2),
		WithCooldown(10*time.Second),
		WithClock(func() time.Time { return now }),
	)

	b.RecordFailure()
	assert.False(t, b.Allow())

	now = now.Add(10 * time.Second)
	assert.True(t, b.Allow())

	closed, change := b.RecordSuccess()
	assert.False(t, closed)
	assert.False(t, change.Closed)

	closed, change = b.RecordSuccess()
	assert.True(t, closed)
	assert.True(t, change.Closed)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_Reset(t *testing.T) {
	b := New("p", WithFailureThreshold(1))
	b.RecordFailure()
	b.Reset()
	assert.False(t, b.IsOpen())
	assert.True(t, b.Allow())
}
