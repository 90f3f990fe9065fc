package st8

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ---------------------------------------------------------------------------
// Store[S]: the container contract
// ---------------------------------------------------------------------------

type (
	// Store holds state of type S. The state only changes when an action is
	// dispatched; subscribers are notified after every dispatch.
	Store[S any] interface {
		StatusReporter
		// State returns the current state.
		State() S
		// Dispatch sends an action through the store's pipeline. The base
		// store returns the action itself as result.
		Dispatch(ctx context.Context, action Action, extra ...any) (any, error)
		// Subscribe registers a listener called after every dispatch. The
		// returned function removes it; calling it twice is a no-op.
		Subscribe(listener func()) (unsubscribe func())
		// ReplaceReducer swaps the reducer and dispatches [ReplaceAction].
		ReplaceReducer(reducer Reducer[S]) error
	}

	// StoreCreator builds a store from a reducer, an initial state and
	// functional options. [NewStore] is the stock implementation.
	StoreCreator[S any] func(reducer Reducer[S], initial S, opts ...any) (Store[S], error)

	// Enhancer turns a store creator into another store creator with
	// augmented behavior. [ApplyMiddleware] is the stock enhancer.
	Enhancer[S any] func(next StoreCreator[S]) StoreCreator[S]
)

// ---------------------------------------------------------------------------
// Non-generic option descriptors: stored as any, interpreted by NewStore[S]
// ---------------------------------------------------------------------------

// Pattern: Functional Options. Configures stores via composable option
// functions; options are typed any so one slice can carry store options,
// enhancers and stock middleware dependencies at once.

// storeOptionFunc is a non-generic option that modifies storeSetup.
type storeOptionFunc func(*storeSetup)

// storeSetup holds non-generic configuration collected during NewStore.
type storeSetup struct {
	clock    Clock
	tracer   trace.Tracer
	registry *Registry
	logger   logr.Logger
	name     string
	hooks    Hooks

	// deferred is set when an outer NewStore registers the enhanced store
	// once every enhancer has succeeded.
	deferred bool
}

// enhancerDesc holds a type-erased Enhancer[S].
type enhancerDesc struct {
	enhancer any
}

func deferRegistration() storeOptionFunc {
	return func(s *storeSetup) {
		s.deferred = true
	}
}

// WithName names the store. Named stores register with a [Registry].
func WithName(name string) any {
	return storeOptionFunc(func(s *storeSetup) {
		s.name = name
	})
}

// WithRegistry sets an explicit registry for the store to register with.
// If not provided, named stores auto-register with DefaultRegistry.
func WithRegistry(reg *Registry) any {
	return storeOptionFunc(func(s *storeSetup) {
		s.registry = reg
	})
}

// WithClock sets the clock used by the store and by config-built middleware.
func WithClock(c Clock) any {
	return storeOptionFunc(func(s *storeSetup) {
		s.clock = c
	})
}

// WithHooks sets the lifecycle hooks for the store and config-built
// middleware.
func WithHooks(h Hooks) any {
	return storeOptionFunc(func(s *storeSetup) {
		s.hooks = h
	})
}

// WithLogger sets the logger. Creation is logged at V(1), every reduced
// action at V(2).
func WithLogger(l logr.Logger) any {
	return storeOptionFunc(func(s *storeSetup) {
		s.logger = l
	})
}

// WithTracer sets the tracer used to open one span per reduced action.
func WithTracer(t trace.Tracer) any {
	return storeOptionFunc(func(s *storeSetup) {
		s.tracer = t
	})
}

// WithEnhancer wraps store creation with e. The enhancer's state type must
// match the store's. Several enhancers compose; the first one is outermost.
func WithEnhancer[S any](e Enhancer[S]) any {
	return enhancerDesc{enhancer: e}
}

func collectSetup(opts []any) storeSetup {
	setup := storeSetup{logger: logr.Discard()}

	for _, opt := range opts {
		if sof, ok := opt.(storeOptionFunc); ok {
			sof(&setup)
		}
	}

	if setup.clock == nil {
		setup.clock = RealClock{}
	}

	if setup.tracer == nil {
		setup.tracer = noop.NewTracerProvider().Tracer("")
	}

	return setup
}

// ---------------------------------------------------------------------------
// NewStore[S]: the base store
// ---------------------------------------------------------------------------

// NewStore creates a store holding initial and reduced by reducer. It
// dispatches [InitAction] before returning so reducers can fill defaults.
//
// When opts contain [WithEnhancer] descriptors, NewStore returns
// enhancer(NewStore)(reducer, initial, rest...) where rest is opts without
// the enhancers. A named store is registered only once every enhancer has
// succeeded.
//
//nolint:ireturn // returns the Store interface so enhancers can wrap it.
func NewStore[S any](reducer Reducer[S], initial S, opts ...any) (Store[S], error) {
	var (
		enhancers []func(StoreCreator[S]) StoreCreator[S]
		rest      = make([]any, 0, len(opts))
	)

	for _, opt := range opts {
		desc, ok := opt.(enhancerDesc)
		if !ok {
			rest = append(rest, opt)
			continue
		}

		e, ok := desc.enhancer.(Enhancer[S])
		if !ok {
			return nil, fmt.Errorf(
				"st8: enhancer %T does not match store state type",
				desc.enhancer,
			)
		}

		enhancers = append(enhancers, e)
	}

	if len(enhancers) > 0 {
		setup := collectSetup(rest)
		create := Compose(enhancers...)(NewStore[S])

		store, err := create(reducer, initial, append(rest, deferRegistration())...)
		if err != nil {
			return nil, err
		}

		register(setup, store)

		return store, nil
	}

	if reducer == nil {
		return nil, ErrNilReducer
	}

	setup := collectSetup(opts)

	s := &baseStore[S]{
		name:    setup.name,
		hooks:   setup.hooks,
		clock:   setup.clock,
		logger:  setup.logger.WithValues("store", setup.name),
		tracer:  setup.tracer,
		reducer: reducer,
		state:   initial,
	}

	var empty []*listener

	s.listeners.Store(&empty)

	if _, err := s.Dispatch(context.Background(), Action{Type: InitAction}); err != nil {
		return nil, err
	}

	s.logger.V(1).Info("store created")

	if !setup.deferred {
		register(setup, s)
	}

	return s, nil
}

// register adds a named store to the configured registry, or to
// [DefaultRegistry] when none was given.
func register(setup storeSetup, s StatusReporter) {
	if setup.name == "" {
		return
	}

	reg := setup.registry
	if reg == nil {
		reg = DefaultRegistry()
	}

	reg.Register(s)
}

type (
	// listener wraps a subscriber so it can be removed by identity.
	listener struct {
		fn func()
	}

	// baseStore is the unenhanced store returned by NewStore.
	baseStore[S any] struct {
		clock  Clock
		tracer trace.Tracer
		logger logr.Logger

		reducer    Reducer[S]
		state      S
		updatedAt  time.Time
		name       string
		lastAction string
		hooks      Hooks

		listeners  atomic.Pointer[[]*listener]
		dispatched atomic.Uint64

		mu   sync.RWMutex
		subs sync.Mutex
	}
)

// Name returns the store's name.
func (s *baseStore[S]) Name() string { return s.name }

// State returns the current state.
//
//nolint:ireturn // generic type parameter S, not an interface
func (s *baseStore[S]) State() S {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state
}

// Dispatch reduces action into the state and notifies subscribers.
func (s *baseStore[S]) Dispatch(ctx context.Context, action Action, _ ...any) (any, error) {
	if action.Type == "" {
		return nil, ErrMissingActionType
	}

	s.hooks.emitDispatch(action)
	s.reduce(ctx, action)
	s.hooks.emitStateChange(action)

	listeners := *s.listeners.Load()
	s.logger.V(2).Info("reduced",
		"type", action.Type,
		"subscribers", len(listeners),
	)

	for _, l := range listeners {
		l.fn()
	}

	return action, nil
}

func (s *baseStore[S]) reduce(ctx context.Context, action Action) {
	_, span := s.tracer.Start(ctx, "st8.reduce", trace.WithAttributes(
		attribute.String("st8.store", s.name),
		attribute.String("st8.action.type", action.Type),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = s.reducer(s.state, action)
	s.lastAction = action.Type
	s.updatedAt = s.clock.Now()
	s.dispatched.Add(1)
}

// Subscribe registers fn to be called after every dispatch.
func (s *baseStore[S]) Subscribe(fn func()) func() {
	l := &listener{fn: fn}

	s.subs.Lock()
	old := *s.listeners.Load()
	// Copy-on-write so a dispatch in flight keeps iterating its own slice.
	updated := make([]*listener, len(old), len(old)+1)
	copy(updated, old)
	updated = append(updated, l)
	s.listeners.Store(&updated)
	n := len(updated)
	s.subs.Unlock()

	s.hooks.emitSubscribe(n)

	var once sync.Once

	return func() {
		once.Do(func() { s.unsubscribe(l) })
	}
}

func (s *baseStore[S]) unsubscribe(l *listener) {
	s.subs.Lock()
	old := *s.listeners.Load()
	updated := make([]*listener, 0, len(old))

	for _, o := range old {
		if o != l {
			updated = append(updated, o)
		}
	}

	s.listeners.Store(&updated)
	n := len(updated)
	s.subs.Unlock()

	s.hooks.emitUnsubscribe(n)
}

// ReplaceReducer swaps the reducer and dispatches ReplaceAction through the
// base store.
func (s *baseStore[S]) ReplaceReducer(reducer Reducer[S]) error {
	if reducer == nil {
		return ErrNilReducer
	}

	s.mu.Lock()
	s.reducer = reducer
	s.mu.Unlock()

	s.hooks.emitReplaceReducer()

	_, err := s.Dispatch(context.Background(), Action{Type: ReplaceAction})

	return err
}

// Status reports the store's current state and counters.
func (s *baseStore[S]) Status() StoreStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return StoreStatus{
		Name:        s.name,
		LastAction:  s.lastAction,
		UpdatedAt:   s.updatedAt,
		State:       s.state,
		Dispatched:  s.dispatched.Load(),
		Subscribers: len(*s.listeners.Load()),
	}
}
