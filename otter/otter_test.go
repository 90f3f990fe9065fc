package otter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/byte4ever/st8"
)

func newTestConfig() st8.CacheConfig {
	return st8.CacheConfig{
		MaxSize: 1000,
		TTL:     time.Minute,
	}
}

// ---------------------------------------------------------------------------
// New builds a usable cache
// ---------------------------------------------------------------------------

func TestNewReturnsCache(t *testing.T) {
	cache, err := New[string, int](newTestConfig())
	if err != nil {
		t.Fatalf("New() error = %v, want nil", err)
	}
	if cache == nil {
		t.Fatal("New() returned nil cache")
	}
}

// ---------------------------------------------------------------------------
// Set + Get + Delete
// ---------------------------------------------------------------------------

func TestSetGetDelete(t *testing.T) {
	cache := MustNew[string, string](newTestConfig())

	cache.Set("hello", "world", time.Minute)

	got, ok := cache.Get("hello")
	if !ok {
		t.Fatal("Get(hello) = _, false; want _, true")
	}
	if got != "world" {
		t.Fatalf("Get(hello) = %q, want %q", got, "world")
	}

	cache.Delete("hello")

	if _, ok = cache.Get("hello"); ok {
		t.Fatal("Get(hello) after Delete = _, true; want _, false")
	}
}

func TestGetMissingKey(t *testing.T) {
	cache := MustNew[int, int](newTestConfig())

	if _, ok := cache.Get(42); ok {
		t.Fatal("Get(42) on empty cache = _, true; want _, false")
	}
}

// ---------------------------------------------------------------------------
// DedupeCache plugs into st8.Dedupe
// ---------------------------------------------------------------------------

func TestDedupeCacheSuppressesDuplicates(t *testing.T) {
	reducer := func(n int, a st8.Action) int {
		if a.Type == "inc" {
			return n + 1
		}
		return n
	}

	store, err := st8.NewStore(reducer, 0, st8.WithEnhancer(st8.ApplyMiddleware(
		st8.Dedupe[int](DedupeCache(newTestConfig()), time.Minute),
	)))
	if err != nil {
		t.Fatalf("NewStore() error = %v, want nil", err)
	}

	ctx := context.Background()
	if _, err = store.Dispatch(ctx, st8.NewAction("inc", 1)); err != nil {
		t.Fatalf("first Dispatch() error = %v, want nil", err)
	}

	_, err = store.Dispatch(ctx, st8.NewAction("inc", 1))
	if !errors.Is(err, st8.ErrDuplicateAction) {
		t.Fatalf("second Dispatch() error = %v, want %v", err, st8.ErrDuplicateAction)
	}

	if got := store.State(); got != 1 {
		t.Fatalf("State() = %d, want 1", got)
	}
}
