package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeTimeline simulates wall time: sleeps advance the clock and are
// recorded so tests can assert on pacing without real waiting.
type fakeTimeline struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeTimeline() *fakeTimeline {
	return &fakeTimeline{now: time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeTimeline) Now() time.Time { return f.now }

func (f *fakeTimeline) Sleep(d time.Duration) {
	f.sleeps = append(f.sleeps, d)
	f.now = f.now.Add(d)
}

func (f *fakeTimeline) Advance(d time.Duration) { f.now = f.now.Add(d) }

type throttledErr struct{ limited bool }

func (e *throttledErr) Error() string     { return "too many requests" }
func (e *throttledErr) RateLimited() bool { return e.limited }

func newTestThrottler(tl *fakeTimeline, minInterval time.Duration) *Throttler {
	t := NewThrottler(minInterval)
	t.Clock = tl.Now
	t.Sleep = tl.Sleep
	return t
}

func TestThrottlerPacing(t *testing.T) {
	t.Run("FirstCallDispatchesImmediately", func(t *testing.T) {
		tl := newFakeTimeline()
		th := newTestThrottler(tl, 10*time.Second)

		require.NoError(t, th.Do(context.Background(), func(context.Context) error { return nil }))
		require.Empty(t, tl.sleeps)
	})

	t.Run("BackToBackCallsSpacedByFloor", func(t *testing.T) {
		tl := newFakeTimeline()
		th := newTestThrottler(tl, 10*time.Second)
		noop := func(context.Context) error { return nil }

		require.NoError(t, th.Do(context.Background(), noop))
		require.NoError(t, th.Do(context.Background(), noop))

		require.Equal(t, []time.Duration{10 * time.Second}, tl.sleeps)
	})

	t.Run("SpacingMeasuredFromDispatchTime", func(t *testing.T) {
		tl := newFakeTimeline()
		th := newTestThrottler(tl, 10*time.Second)

		// A slow call eats into the spacing window: only the remainder
		// is waited before the next dispatch.
		require.NoError(t, th.Do(context.Background(), func(context.Context) error {
			tl.Advance(3 * time.Second)
			return nil
		}))
		require.NoError(t, th.Do(context.Background(), func(context.Context) error { return nil }))

		require.Equal(t, []time.Duration{7 * time.Second}, tl.sleeps)
	})

	t.Run("NoWaitWhenFloorAlreadyElapsed", func(t *testing.T) {
		tl := newFakeTimeline()
		th := newTestThrottler(tl, 10*time.Second)
		noop := func(context.Context) error { return nil }

		require.NoError(t, th.Do(context.Background(), noop))
		tl.Advance(time.Minute)
		require.NoError(t, th.Do(context.Background(), noop))

		require.Empty(t, tl.sleeps)
	})
}

func TestThrottlerRetryLadder(t *testing.T) {
	t.Run("BackoffSequenceAndFloorEscalation", func(t *testing.T) {
		tl := newFakeTimeline()
		th := newTestThrottler(tl, 10*time.Second)

		attempts := 0
		err := th.Do(context.Background(), func(context.Context) error {
			attempts++
			return &throttledErr{limited: true}
		})

		var exceeded *RateLimitExceededError
		require.ErrorAs(t, err, &exceeded)
		require.Equal(t, 4, exceeded.Attempts)
		require.Equal(t, 4, attempts)

		// Backoff sleeps 60/120/240, each preceded on retry by the pacing
		// wait against the escalating floor.
		var backoffs []time.Duration
		for _, d := range tl.sleeps {
			if d >= 60*time.Second {
				backoffs = append(backoffs, d)
			}
		}
		require.Equal(t, []time.Duration{60 * time.Second, 120 * time.Second, 240 * time.Second}, backoffs)

		// Floor raised by 5s per throttling event, permanently.
		require.Equal(t, 25*time.Second, th.Interval())
	})

	t.Run("SucceedsAfterOneRetry", func(t *testing.T) {
		tl := newFakeTimeline()
		th := newTestThrottler(tl, 10*time.Second)

		calls := 0
		err := th.Do(context.Background(), func(context.Context) error {
			calls++
			if calls == 1 {
				return &throttledErr{limited: true}
			}
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, 2, calls)
		require.Contains(t, tl.sleeps, 60*time.Second)
		require.Equal(t, 15*time.Second, th.Interval())
	})

	t.Run("EscalationPersistsAcrossCalls", func(t *testing.T) {
		tl := newFakeTimeline()
		th := newTestThrottler(tl, 10*time.Second)

		calls := 0
		require.NoError(t, th.Do(context.Background(), func(context.Context) error {
			calls++
			if calls == 1 {
				return &throttledErr{limited: true}
			}
			return nil
		}))
		require.Equal(t, 15*time.Second, th.Interval())

		// The next logical call paces against the raised floor.
		tl.sleeps = nil
		require.NoError(t, th.Do(context.Background(), func(context.Context) error { return nil }))
		require.Equal(t, []time.Duration{15 * time.Second}, tl.sleeps)
	})

	t.Run("UpstreamErrorNotRetried", func(t *testing.T) {
		tl := newFakeTimeline()
		th := newTestThrottler(tl, 10*time.Second)

		boom := errors.New("internal failure")
		calls := 0
		err := th.Do(context.Background(), func(context.Context) error {
			calls++
			return boom
		})

		var upstream *UpstreamError
		require.ErrorAs(t, err, &upstream)
		require.ErrorIs(t, err, boom)
		require.Equal(t, 1, calls)
		require.Empty(t, tl.sleeps)
		require.Equal(t, 10*time.Second, th.Interval())
	})

	t.Run("NonLimitedSignalNotRetried", func(t *testing.T) {
		tl := newFakeTimeline()
		th := newTestThrottler(tl, 10*time.Second)

		err := th.Do(context.Background(), func(context.Context) error {
			return &throttledErr{limited: false}
		})

		var upstream *UpstreamError
		require.ErrorAs(t, err, &upstream)
	})

	t.Run("CancelledContext", func(t *testing.T) {
		tl := newFakeTimeline()
		th := newTestThrottler(tl, 10*time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := th.Do(ctx, func(context.Context) error { return nil })
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestNewThrottlerDefaults(t *testing.T) {
	th := NewThrottler(0)
	require.Equal(t, DefaultMinInterval, th.MinInterval)
	require.Equal(t, DefaultMaxRetries, th.MaxRetries)
	require.Equal(t, DefaultBaseBackoff, th.BaseBackoff)
	require.Equal(t, DefaultFloorIncrement, th.FloorIncrement)
}
