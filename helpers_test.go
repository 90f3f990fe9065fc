package st8

import (
	"context"
	"sync"
	"time"
)

// ---------------------------------------------------------------------------
// fakeClock: controllable clock for deterministic tests
// ---------------------------------------------------------------------------

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Since(t time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now.Sub(t)
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// ---------------------------------------------------------------------------
// mapCache: in-memory Cache ignoring TTLs
// ---------------------------------------------------------------------------

type mapCache[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]V
}

func newMapCache[K comparable, V any]() *mapCache[K, V] {
	return &mapCache[K, V]{m: make(map[K]V)}
}

func (c *mapCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.m[key]
	return v, ok
}

func (c *mapCache[K, V]) Set(key K, value V, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = value
}

func (c *mapCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, key)
}

// ---------------------------------------------------------------------------
// Reducers and middleware shared by tests
// ---------------------------------------------------------------------------

// sumReducer adds the int payload of "add" actions.
func sumReducer(state int, action Action) int {
	if action.Type != "add" {
		return state
	}

	n, _ := action.Payload.(int)

	return state + n
}

func add(n int) Action { return NewAction("add", n) }

// passThrough is an interceptor whose middleware just calls next.
func passThrough[S any](_ API[S]) (Middleware, error) {
	return func(next DispatchFunc) DispatchFunc {
		return func(ctx context.Context, action Action, extra ...any) (any, error) {
			return next(ctx, action, extra...)
		}
	}, nil
}

// tracing returns an interceptor appending name-before / name-after around
// next to trace.
func tracing[S any](name string, trace *[]string) Interceptor[S] {
	return func(_ API[S]) (Middleware, error) {
		return func(next DispatchFunc) DispatchFunc {
			return func(ctx context.Context, action Action, extra ...any) (any, error) {
				*trace = append(*trace, name+"-before")
				result, err := next(ctx, action, extra...)
				*trace = append(*trace, name+"-after")
				return result, err
			}
		}, nil
	}
}

func mustStore[S any](
	t interface {
		Helper()
		Fatalf(format string, args ...any)
	},
	reducer Reducer[S],
	initial S,
	opts ...any,
) Store[S] {
	t.Helper()

	s, err := NewStore(reducer, initial, opts...)
	if err != nil {
		t.Fatalf("NewStore() error = %v, want nil", err)
	}

	return s
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
