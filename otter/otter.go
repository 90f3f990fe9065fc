// Package otter backs st8.Cache with the Otter cache library, for use as the
// seen-actions cache of st8.Dedupe.
package otter

import (
	"fmt"
	"time"

	"github.com/maypok86/otter"

	"github.com/byte4ever/st8"
)

// adapter wraps an otter.CacheWithVariableTTL to implement st8.Cache.
type adapter[K comparable, V any] struct {
	cache otter.CacheWithVariableTTL[K, V]
}

// New creates an st8.Cache backed by an Otter cache with per-entry TTL
// support, sized by cfg.MaxSize.
//
//nolint:ireturn // returns the st8.Cache interface by design
func New[K comparable, V any](cfg st8.CacheConfig) (st8.Cache[K, V], error) {
	cache, err := otter.MustBuilder[K, V](cfg.MaxSize).
		WithVariableTTL().
		Build()
	if err != nil {
		return nil, fmt.Errorf("st8/otter: build cache: %w", err)
	}

	return &adapter[K, V]{cache: cache}, nil
}

// MustNew is like [New] but panics if the cache cannot be built.
//
//nolint:ireturn // returns the st8.Cache interface by design
func MustNew[K comparable, V any](cfg st8.CacheConfig) st8.Cache[K, V] {
	c, err := New[K, V](cfg)
	if err != nil {
		panic(err)
	}

	return c
}

// DedupeCache is MustNew specialised to the key and value types st8.Dedupe
// expects.
//
//nolint:ireturn // returns the st8.Cache interface by design
func DedupeCache(cfg st8.CacheConfig) st8.Cache[string, time.Time] {
	return MustNew[string, time.Time](cfg)
}

//nolint:ireturn // generic type parameter V, not an interface
func (a *adapter[K, V]) Get(key K) (V, bool) {
	return a.cache.Get(key)
}

func (a *adapter[K, V]) Set(key K, value V, ttl time.Duration) {
	a.cache.Set(key, value, ttl)
}

func (a *adapter[K, V]) Delete(key K) {
	a.cache.Delete(key)
}
