package st8

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"
)

type (
	// API is the restricted view of a store handed to interceptors: a state
	// accessor and a Dispatch that always enters the fully composed
	// pipeline. All interceptors of one store share the same API value.
	API[S any] struct {
		state func() S
		cell  *dispatchCell
	}

	// Interceptor builds a middleware for one store. It runs once, while
	// the store is being constructed, and must not call api.Dispatch
	// before returning; the returned middleware may call it freely,
	// including re-entrantly.
	Interceptor[S any] func(api API[S]) (Middleware, error)

	// dispatchCell defers binding of the composed dispatch until every
	// interceptor has been built. It starts unbound, pointing to a guard,
	// and is bound exactly once.
	dispatchCell struct {
		unbound *DispatchFunc
		target  atomic.Pointer[DispatchFunc]
		misused atomic.Bool
	}

	// enhancedStore is the base store with Dispatch replaced.
	enhancedStore[S any] struct {
		Store[S]
		dispatch DispatchFunc
	}
)

// State returns the store's current state.
//
//nolint:ireturn // generic type parameter S, not an interface
func (a API[S]) State() S { return a.state() }

// Dispatch sends action through the store's composed pipeline, from the
// outermost middleware down. Called while interceptors are still being
// built it returns [ErrDispatchDuringConstruction].
func (a API[S]) Dispatch(ctx context.Context, action Action, extra ...any) (any, error) {
	return a.cell.dispatch(ctx, action, extra...)
}

func newDispatchCell() *dispatchCell {
	c := &dispatchCell{}
	guard := DispatchFunc(c.guard)
	c.unbound = &guard
	c.target.Store(c.unbound)

	return c
}

func (c *dispatchCell) guard(context.Context, Action, ...any) (any, error) {
	c.misused.Store(true)
	return nil, ErrDispatchDuringConstruction
}

func (c *dispatchCell) dispatch(ctx context.Context, action Action, extra ...any) (any, error) {
	return (*c.target.Load())(ctx, action, extra...)
}

func (c *dispatchCell) bind(fn DispatchFunc) {
	if !c.target.CompareAndSwap(c.unbound, &fn) {
		panic("st8: dispatch cell bound twice")
	}
}

// Dispatch runs the composed pipeline.
func (s *enhancedStore[S]) Dispatch(ctx context.Context, action Action, extra ...any) (any, error) {
	return s.dispatch(ctx, action, extra...)
}

// ApplyMiddleware returns an enhancer that installs the interceptors'
// middleware in front of the store's Dispatch. Interceptors are built in
// order against a shared [API]; the first one is the outermost middleware
// and the base store's Dispatch is the innermost next.
//
// Construction stops at the first interceptor that returns an error, which
// is returned unmodified, or that calls Dispatch before returning, which
// fails with [ErrDispatchDuringConstruction]. No store is returned in
// either case.
func ApplyMiddleware[S any](interceptors ...Interceptor[S]) Enhancer[S] {
	chain := slices.Clone(interceptors)

	return func(next StoreCreator[S]) StoreCreator[S] {
		return func(reducer Reducer[S], initial S, opts ...any) (Store[S], error) {
			base, err := next(reducer, initial, opts...)
			if err != nil {
				return nil, err
			}

			cell := newDispatchCell()
			api := API[S]{state: base.State, cell: cell}
			mws := make([]Middleware, 0, len(chain))

			for i, build := range chain {
				if build == nil {
					return nil, fmt.Errorf("st8: interceptor %d: %w", i, ErrNilMiddleware)
				}

				mw, err := build(api)
				if err != nil {
					return nil, err //nolint:wrapcheck // interceptor's error returned as-is
				}

				// The interceptor may have swallowed the guard's error.
				if cell.misused.Load() {
					return nil, fmt.Errorf(
						"st8: interceptor %d: %w", i, ErrDispatchDuringConstruction,
					)
				}

				if mw == nil {
					return nil, fmt.Errorf("st8: interceptor %d: %w", i, ErrNilMiddleware)
				}

				mws = append(mws, mw)
			}

			dispatch := Chain(mws...)(base.Dispatch)
			cell.bind(dispatch)

			return &enhancedStore[S]{Store: base, dispatch: dispatch}, nil
		}
	}
}
