package st8

import (
	"sort"
	"sync"
	"sync/atomic"
)

// ---------------------------------------------------------------------------
// RegistrySnapshot: result of inspecting all registered stores
// ---------------------------------------------------------------------------.

type (
	// RegistrySnapshot is the result of inspecting all registered stores.
	RegistrySnapshot struct {
		Stores     []StoreStatus `json:"stores"`
		Configured []string      `json:"configured,omitempty"`
	}

	// Registry tracks StatusReporter instances and the store configurations
	// loaded by [LoadConfig].
	//
	// Pattern: Singleton. DefaultRegistry uses sync.OnceValue for safe lazy
	// init; explicit registries can be created for testing or multi-tenant
	// scenarios.
	Registry struct {
		reporters atomic.Pointer[[]StatusReporter]
		configs   map[string]StoreConfig
		mu        sync.Mutex
	}
)

//nolint:gochecknoglobals // singleton via sync.OnceValue
var defaultRegistry = sync.OnceValue(NewRegistry)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}

	var empty []StatusReporter

	r.reporters.Store(&empty)

	return r
}

// Register adds a StatusReporter to the registry.
// This is typically called by NewStore for named stores.
func (r *Registry) Register(sr StatusReporter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := *r.reporters.Load()
	// Copy-on-write so concurrent snapshots keep iterating their own slice.
	updated := make([]StatusReporter, len(old), len(old)+1)
	copy(updated, old)
	updated = append(updated, sr)
	r.reporters.Store(&updated)
}

// Lookup returns the first registered reporter with the given name.
func (r *Registry) Lookup(name string) (StatusReporter, bool) {
	for _, sr := range *r.reporters.Load() {
		if sr.Name() == name {
			return sr, true
		}
	}

	return nil, false
}

// Config returns the loaded configuration for the named store.
func (r *Registry) Config(name string) (StoreConfig, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sc, ok := r.configs[name]

	return sc, ok
}

// Snapshot collects the status of every registered store, in registration
// order, plus the sorted names of configured stores.
func (r *Registry) Snapshot() RegistrySnapshot {
	reporters := *r.reporters.Load()

	snap := RegistrySnapshot{
		Stores: make([]StoreStatus, 0, len(reporters)),
	}

	for _, sr := range reporters {
		snap.Stores = append(snap.Stores, sr.Status())
	}

	r.mu.Lock()
	for name := range r.configs {
		snap.Configured = append(snap.Configured, name)
	}
	r.mu.Unlock()

	sort.Strings(snap.Configured)

	return snap
}

// DefaultRegistry returns the package-level global registry, creating it
// on first call.
func DefaultRegistry() *Registry {
	return defaultRegistry()
}
