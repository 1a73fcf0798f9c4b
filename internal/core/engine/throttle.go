package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"
)

// Throttle policy defaults. The catalog API enforces a global limit per
// credential set, so every outbound search shares one Throttler.
const (
	DefaultMinInterval    = 10 * time.Second
	DefaultMaxRetries     = 3
	DefaultBaseBackoff    = 30 * time.Second
	DefaultFloorIncrement = 5 * time.Second
)

// Throttler serializes outbound catalog calls through a single choke point.
//
// Before each dispatch it enforces the current spacing floor against the
// previous dispatch time. A rate-limited call is retried with exponential
// backoff (BaseBackoff * 2^attempt), and every throttling event raises the
// spacing floor by FloorIncrement for the remaining life of the process;
// the floor never decays. Throttler is not safe for concurrent use; sweeps
// are strictly sequential.
type Throttler struct {
	MinInterval    time.Duration
	MaxRetries     int
	BaseBackoff    time.Duration
	FloorIncrement time.Duration
	Clock          func() time.Time
	Sleep          func(time.Duration)
	Logger         *logging.Logger

	lastDispatch time.Time
}

// NewThrottler returns a throttler with the default retry policy and the
// given spacing floor (DefaultMinInterval when non-positive).
func NewThrottler(minInterval time.Duration) *Throttler {
	if minInterval <= 0 {
		minInterval = DefaultMinInterval
	}
	return &Throttler{
		MinInterval:    minInterval,
		MaxRetries:     DefaultMaxRetries,
		BaseBackoff:    DefaultBaseBackoff,
		FloorIncrement: DefaultFloorIncrement,
	}
}

// RateLimitExceededError is returned when the retry budget for a single
// logical call is exhausted. Attempts counts dispatches, so with the
// default policy it reports 4: the initial call plus three retries.
type RateLimitExceededError struct {
	Attempts int
	Err      error
}

func (e *RateLimitExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RateLimitExceededError) Unwrap() error { return e.Err }

// UpstreamError wraps a non-rate-limit failure from the catalog API.
// These are never retried.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream call failed: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// rateLimitSignal is implemented by errors that can identify themselves as
// the catalog API's throttling signature.
type rateLimitSignal interface {
	RateLimited() bool
}

func isRateLimitSignal(err error) bool {
	var signal rateLimitSignal
	return errors.As(err, &signal) && signal.RateLimited()
}

// Do executes call under the throttle policy. On success the call's result
// is whatever the closure captured; Do itself only reports the outcome.
func (t *Throttler) Do(ctx context.Context, call func(context.Context) error) error {
	if t == nil || call == nil {
		return errors.New("throttler call is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	// Transient per logical call; the spacing floor is not.
	retries := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		t.pace()

		// Dispatch time, not completion time, spaces back-to-back calls.
		t.lastDispatch = t.now()

		err := call(ctx)
		if err == nil {
			return nil
		}

		if !isRateLimitSignal(err) {
			return &UpstreamError{Err: err}
		}

		retries++
		if retries > t.maxRetries() {
			if t.Logger != nil {
				t.Logger.Error("Max retries reached",
					zap.Int("attempts", retries),
					zap.Error(err))
			}
			return &RateLimitExceededError{Attempts: retries, Err: err}
		}

		backoff := t.baseBackoff() * time.Duration(1<<retries)
		if t.Logger != nil {
			t.Logger.Warn("Hit rate limits, backing off",
				zap.Duration("backoff", backoff),
				zap.Int("attempt", retries),
				zap.Int("max_retries", t.maxRetries()))
		}
		t.sleep(backoff)

		// Permanent escalation: the floor outlives this call.
		t.MinInterval += t.floorIncrement()
	}
}

// Interval returns the current spacing floor.
func (t *Throttler) Interval() time.Duration {
	if t == nil {
		return 0
	}
	return t.MinInterval
}

// pace blocks until the spacing floor since the last dispatch has elapsed.
func (t *Throttler) pace() {
	if t.lastDispatch.IsZero() {
		return
	}

	elapsed := t.now().Sub(t.lastDispatch)
	if elapsed >= t.MinInterval {
		return
	}

	wait := t.MinInterval - elapsed
	if t.Logger != nil {
		t.Logger.Info("Throttling before next request",
			zap.Duration("wait", wait),
			zap.Duration("min_interval", t.MinInterval))
	}
	t.sleep(wait)
}

func (t *Throttler) maxRetries() int {
	if t.MaxRetries > 0 {
		return t.MaxRetries
	}
	return DefaultMaxRetries
}

func (t *Throttler) baseBackoff() time.Duration {
	if t.BaseBackoff > 0 {
		return t.BaseBackoff
	}
	return DefaultBaseBackoff
}

func (t *Throttler) floorIncrement() time.Duration {
	if t.FloorIncrement > 0 {
		return t.FloorIncrement
	}
	return DefaultFloorIncrement
}

func (t *Throttler) now() time.Time {
	if t.Clock != nil {
		return t.Clock()
	}
	return time.Now().UTC()
}

func (t *Throttler) sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	if t.Sleep != nil {
		t.Sleep(d)
		return
	}
	time.Sleep(d)
}
