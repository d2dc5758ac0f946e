package clients

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotekeeper/internal/platform/config"
)

// newBreaker returns a breaker on a fake clock advanced by the returned func.
func newBreaker(maxFailures, halfOpen int) (*CircuitBreaker, func(time.Duration)) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	cb := NewCircuitBreaker(config.CircuitBreakerConfig{
		MaxFailures:   maxFailures,
		Timeout:       time.Minute,
		HalfOpenLimit: halfOpen,
	})
	cb.now = func() time.Time { return now }

	return cb, func(d time.Duration) { now = now.Add(d) }
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb, _ := newBreaker(3, 1)

	assert.Equal(t, StateClosed, cb.State())
	assert.True(t, cb.Allow())

	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()
	cb.RecordFailure()
	assert.Equal(t, StateClosed, cb.State(), "a success resets the count")

	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())
	assert.False(t, cb.Allow())
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	cb, advance := newBreaker(1, 2)

	cb.RecordFailure()
	advance(59 * time.Second)
	assert.False(t, cb.Allow(), "still cooling down")

	advance(time.Second)
	require.True(t, cb.Allow())
	assert.Equal(t, StateHalfOpen, cb.State())

	require.True(t, cb.Allow())
	assert.False(t, cb.Allow(), "probe limit reached")

	cb.RecordSuccess()
	assert.Equal(t, StateHalfOpen, cb.State())
	cb.RecordSuccess()
	assert.Equal(t, StateClosed, cb.State())
	assert.True(t, cb.Allow())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb, advance := newBreaker(1, 3)

	cb.RecordFailure()
	advance(time.Minute)
	require.True(t, cb.Allow())

	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())
	assert.False(t, cb.Allow(), "cool-down restarts from the probe failure")
}

func TestCircuitBreaker_ZeroLimits(t *testing.T) {
	cb, _ := newBreaker(0, 0)

	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_OnStateChange(t *testing.T) {
	cb, advance := newBreaker(1, 1)

	var (
		mu   sync.Mutex
		seen []string
	)

	cb.OnStateChange(func(from, to State) {
		mu.Lock()
		defer mu.Unlock()

		seen = append(seen, from.String()+"->"+to.String())
	})

	cb.RecordFailure()
	advance(time.Minute)
	cb.Allow()
	cb.RecordSuccess()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return len(seen) == 3
	}, time.Second, 5*time.Millisecond)

	assert.ElementsMatch(t, []string{"closed->open", "open->half-open", "half-open->closed"}, seen)
}

func TestCircuitBreaker_Concurrent(t *testing.T) {
	cb, _ := newBreaker(1000, 1)

	var wg sync.WaitGroup

	for i := range 50 {
		wg.Go(func() {
			if cb.Allow() {
				if i%2 == 0 {
					cb.RecordFailure()
				} else {
					cb.RecordSuccess()
				}
			}
		})
	}

	wg.Wait()
	assert.Equal(t, StateClosed, cb.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(9).String())
}
