package st8

import (
	"context"
	"errors"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

type (
	// DedupeOption configures [Dedupe].
	DedupeOption func(*dedupeConfig)

	dedupeConfig struct {
		clock Clock
		hooks *Hooks
		key   func(Action) (string, error)
	}
)

// DedupeKey replaces the default key (type plus JSON payload). Actions whose
// key cannot be computed are never suppressed.
func DedupeKey(fn func(Action) (string, error)) DedupeOption {
	return func(cfg *dedupeConfig) {
		cfg.key = fn
	}
}

// DedupeClock sets the clock used to measure the suppression window.
func DedupeClock(c Clock) DedupeOption {
	return func(cfg *dedupeConfig) {
		cfg.clock = c
	}
}

// DedupeHooks sets hooks notified when an action is suppressed.
func DedupeHooks(h Hooks) DedupeOption {
	return func(cfg *dedupeConfig) {
		cfg.hooks = &h
	}
}

func defaultDedupeKey(action Action) (string, error) {
	if action.Payload == nil {
		return action.Type, nil
	}

	b, err := json.Marshal(action.Payload)
	if err != nil {
		return "", err //nolint:wrapcheck // only checked for nil
	}

	return action.Type + ":" + string(b), nil
}

// Dedupe returns an interceptor that short-circuits with [ErrDuplicateAction]
// when an action with the same key reached it less than ttl ago. If next
// fails, the key is forgotten so the action can be retried immediately.
func Dedupe[S any](cache Cache[string, time.Time], ttl time.Duration, opts ...DedupeOption) Interceptor[S] {
	cfg := dedupeConfig{clock: RealClock{}, hooks: &Hooks{}, key: defaultDedupeKey}
	for _, o := range opts {
		o(&cfg)
	}

	return func(_ API[S]) (Middleware, error) {
		if cache == nil {
			return nil, errors.New("st8: dedupe cache is nil")
		}

		if ttl <= 0 {
			return nil, errors.New("st8: dedupe ttl must be positive")
		}

		var mu sync.Mutex

		// seen reports whether key is inside its window and marks it
		// otherwise.
		seen := func(key string) bool {
			mu.Lock()
			defer mu.Unlock()

			if at, ok := cache.Get(key); ok && cfg.clock.Since(at) < ttl {
				return true
			}

			cache.Set(key, cfg.clock.Now(), ttl)

			return false
		}

		return func(next DispatchFunc) DispatchFunc {
			return func(ctx context.Context, action Action, extra ...any) (any, error) {
				key, err := cfg.key(action)
				if err != nil {
					return next(ctx, action, extra...)
				}

				if seen(key) {
					cfg.hooks.emitDuplicateSuppressed(key)
					return nil, ErrDuplicateAction
				}

				result, err := next(ctx, action, extra...)
				if err != nil {
					cache.Delete(key)
				}

				return result, err
			}
		}, nil
	}
}
