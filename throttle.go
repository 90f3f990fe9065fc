package st8

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"
)

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

type throttleConfig struct {
	clock Clock
	hooks *Hooks
	types []string
}

// ThrottleOption configures [Throttle].
type ThrottleOption func(*throttleConfig)

// ThrottleClock sets the clock used to refill the bucket.
func ThrottleClock(c Clock) ThrottleOption {
	return func(cfg *throttleConfig) {
		cfg.clock = c
	}
}

// ThrottleHooks sets hooks notified when an action is rejected.
func ThrottleHooks(h Hooks) ThrottleOption {
	return func(cfg *throttleConfig) {
		cfg.hooks = &h
	}
}

// ThrottleTypes limits throttling to the given action types; other actions
// pass through without consuming tokens.
func ThrottleTypes(types ...string) ThrottleOption {
	return func(cfg *throttleConfig) {
		cfg.types = append(cfg.types, types...)
	}
}

// ---------------------------------------------------------------------------
// Throttler
// ---------------------------------------------------------------------------

// fixedPointScale converts floating-point tokens to fixed-point integers.
// Using 1e9 gives nanosecond-level precision for token fractions.
const fixedPointScale int64 = 1_000_000_000

// Throttler is a token bucket holding up to rate tokens and refilling rate
// tokens per second.
//
// Pattern: Rate Limiter. Lock-free via atomic CAS for token acquisition and
// refill.
type Throttler struct {
	clock    Clock
	rate     float64
	capacity int64 // max tokens in fixed-point

	tokens   atomic.Int64 // current tokens in fixed-point
	lastNano atomic.Int64 // last refill timestamp (unix nano)
}

// NewThrottler creates a throttler with a full bucket. The bucket holds rate
// tokens, and never less than one, so a rate below one per second still lets
// an action through every 1/rate seconds.
func NewThrottler(rate float64, clock Clock) *Throttler {
	if clock == nil {
		clock = RealClock{}
	}

	capacity := int64(max(rate, 1) * float64(fixedPointScale))

	t := &Throttler{
		clock:    clock,
		rate:     rate,
		capacity: capacity,
	}

	t.tokens.Store(capacity)
	t.lastNano.Store(clock.Now().UnixNano())

	return t
}

// refill adds tokens for the time elapsed since the last refill. The CAS on
// lastNano claims a time window so that concurrent callers never credit the
// same nanoseconds twice.
func (t *Throttler) refill() {
	for {
		oldLastNano := t.lastNano.Load()
		nowNano := t.clock.Now().UnixNano()
		elapsedNano := nowNano - oldLastNano

		if elapsedNano <= 0 {
			return
		}

		// Try to claim this time window by updating lastNano.
		if !t.lastNano.CompareAndSwap(oldLastNano, nowNano) {
			// Another goroutine refilled; retry to see if there's more elapsed time.
			continue
		}

		// Tokens to add: elapsed seconds * rate. elapsedNano * rate is
		// already in fixed-point units since the scale is nanoseconds per
		// second.
		addTokens := int64(float64(elapsedNano) * t.rate)
		if addTokens <= 0 {
			return
		}

		// Add tokens atomically, capping at capacity.
		for {
			oldTokens := t.tokens.Load()
			newTokens := min(oldTokens+addTokens, t.capacity)

			if t.tokens.CompareAndSwap(oldTokens, newTokens) {
				return
			}
		}
	}
}

// Allow consumes one token and reports whether one was available.
func (t *Throttler) Allow() bool {
	t.refill()

	for {
		current := t.tokens.Load()
		if current < fixedPointScale {
			return false
		}

		if t.tokens.CompareAndSwap(current, current-fixedPointScale) {
			return true
		}
	}
}

// Throttle returns an interceptor that short-circuits with [ErrThrottled]
// once more than rate actions per second reach it. Each store gets its own
// bucket. A non-positive rate fails store construction.
func Throttle[S any](rate float64, opts ...ThrottleOption) Interceptor[S] {
	cfg := throttleConfig{clock: RealClock{}, hooks: &Hooks{}}
	for _, o := range opts {
		o(&cfg)
	}

	return func(_ API[S]) (Middleware, error) {
		if rate <= 0 {
			return nil, fmt.Errorf("st8: throttle rate must be positive, got %v", rate)
		}

		t := NewThrottler(rate, cfg.clock)

		return func(next DispatchFunc) DispatchFunc {
			return func(ctx context.Context, action Action, extra ...any) (any, error) {
				if len(cfg.types) > 0 && !slices.Contains(cfg.types, action.Type) {
					return next(ctx, action, extra...)
				}

				if !t.Allow() {
					cfg.hooks.emitThrottled(action)
					return nil, ErrThrottled
				}

				return next(ctx, action, extra...)
			}
		}, nil
	}
}
