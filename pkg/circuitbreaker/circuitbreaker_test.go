package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("gateway down")

// fakeClock drives nowFn so open-state expiry is deterministic.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestBreaker(clock *fakeClock, opts ...Option) *CircuitBreaker {
	cb := New("test", opts...)
	cb.nowFn = clock.Now
	return cb
}

func trip(t *testing.T, cb *CircuitBreaker, failures int) {
	t.Helper()
	for i := 0; i < failures; i++ {
		err := cb.Execute(func() error { return errDown })
		require.ErrorIs(t, err, errDown)
	}
}

func TestExecute_ClosedPassesThrough(t *testing.T) {
	cb := newTestBreaker(newFakeClock())

	calls := 0
	err := cb.Execute(func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, cb.IsClosed())
}

func TestExecute_OpensAfterMaxFailures(t *testing.T) {
	clock := newFakeClock()
	cb := newTestBreaker(clock, WithMaxFailures(3))

	trip(t, cb, 2)
	assert.True(t, cb.IsClosed())

	trip(t, cb, 1)
	assert.True(t, cb.IsOpen())

	// Open circuit fails fast without running the operation.
	calls := 0
	err := cb.Execute(func() error {
		calls++
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 0, calls)
}

func TestExecute_SuccessResetsFailureStreak(t *testing.T) {
	clock := newFakeClock()
	cb := newTestBreaker(clock, WithMaxFailures(3))

	trip(t, cb, 2)
	require.NoError(t, cb.Execute(func() error { return nil }))

	trip(t, cb, 2)
	assert.True(t, cb.IsClosed())
}

func TestExecute_HalfOpenAfterTimeout(t *testing.T) {
	clock := newFakeClock()
	cb := newTestBreaker(clock, WithMaxFailures(1), WithTimeout(20*time.Second))

	trip(t, cb, 1)
	require.True(t, cb.IsOpen())

	clock.Advance(21 * time.Second)
	assert.Equal(t, StateHalfOpen, cb.State())

	// A successful probe closes the circuit.
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.True(t, cb.IsClosed())
}

func TestExecute_HalfOpenFailureReopens(t *testing.T) {
	clock := newFakeClock()
	cb := newTestBreaker(clock, WithMaxFailures(1), WithTimeout(20*time.Second))

	trip(t, cb, 1)
	clock.Advance(21 * time.Second)
	require.Equal(t, StateHalfOpen, cb.State())

	trip(t, cb, 1)
	assert.True(t, cb.IsOpen())
}

func TestExecute_HalfOpenLimitsProbes(t *testing.T) {
	clock := newFakeClock()
	cb := newTestBreaker(clock, WithMaxFailures(1), WithTimeout(time.Second), WithMaxHalfOpenRequests(1))

	trip(t, cb, 1)
	clock.Advance(2 * time.Second)
	require.Equal(t, StateHalfOpen, cb.State())

	// Hold one probe slot open by never completing it from the breaker's
	// point of view: beforeRequest admits it and counts the request.
	require.NoError(t, cb.beforeRequest())

	err := cb.Execute(func() error { return nil })
	assert.ErrorIs(t, err, ErrTooManyRequests)
}

func TestReset(t *testing.T) {
	clock := newFakeClock()
	cb := newTestBreaker(clock, WithMaxFailures(1))

	trip(t, cb, 1)
	require.True(t, cb.IsOpen())

	cb.Reset()
	assert.True(t, cb.IsClosed())
	assert.Equal(t, Counts{}, cb.Counts())
}

func TestWithIsSuccessful(t *testing.T) {
	clock := newFakeClock()
	cb := newTestBreaker(clock,
		WithMaxFailures(1),
		WithIsSuccessful(func(err error) bool { return err == nil || errors.Is(err, errDown) }),
	)

	// errDown is tolerated, so the circuit never opens on it.
	trip(t, cb, 5)
	assert.True(t, cb.IsClosed())

	err := cb.Execute(func() error { return errors.New("other failure") })
	assert.Error(t, err)
	assert.True(t, cb.IsOpen())
}

func TestOnStateChange(t *testing.T) {
	clock := newFakeClock()

	type transition struct{ from, to State }
	var transitions []transition

	cb := newTestBreaker(clock,
		WithMaxFailures(1),
		WithTimeout(time.Second),
		WithOnStateChange(func(_ string, from, to State) {
			transitions = append(transitions, transition{from, to})
		}),
	)

	trip(t, cb, 1)
	clock.Advance(2 * time.Second)
	require.NoError(t, cb.Execute(func() error { return nil }))

	assert.Equal(t, []transition{
		{StateClosed, StateOpen},
		{StateOpen, StateHalfOpen},
		{StateHalfOpen, StateClosed},
	}, transitions)
}
