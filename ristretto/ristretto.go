// Package ristretto backs st8.Cache with the Ristretto cache library, for use
// as the seen-actions cache of st8.Dedupe.
package ristretto

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/byte4ever/st8"
)

type (
	// Key is the subset of ristretto.Key types that are also comparable,
	// required by the st8.Cache interface.
	Key interface {
		uint64 | string | byte | int | int32 | uint32 | int64
	}

	// adapter wraps a ristretto.Cache to implement st8.Cache.
	adapter[K Key, V any] struct {
		cache *ristretto.Cache[K, V]
	}
)

// New creates an st8.Cache backed by a Ristretto cache holding up to
// cfg.MaxSize entries.
//
//nolint:ireturn // returns the st8.Cache interface by design
func New[K Key, V any](cfg st8.CacheConfig) (st8.Cache[K, V], error) {
	// Ristretto recommends 10x max size for num counters and 64 buffer
	// items.
	cache, err := ristretto.NewCache(&ristretto.Config[K, V]{
		NumCounters: int64(cfg.MaxSize) * 10,
		MaxCost:     int64(cfg.MaxSize),
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("st8/ristretto: build cache: %w", err)
	}

	return &adapter[K, V]{cache: cache}, nil
}

// MustNew is like [New] but panics if the cache cannot be built.
//
//nolint:ireturn // returns the st8.Cache interface by design
func MustNew[K Key, V any](cfg st8.CacheConfig) st8.Cache[K, V] {
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

// Set writes through: Ristretto buffers sets, so Wait makes the entry
// visible to the next Get, which dedupe relies on.
func (a *adapter[K, V]) Set(key K, value V, ttl time.Duration) {
	a.cache.SetWithTTL(key, value, 1, ttl)
	a.cache.Wait()
}

func (a *adapter[K, V]) Delete(key K) {
	a.cache.Del(key)
}
