package st8

import (
	"context"
	"fmt"
)

// Replay is a convenience function that builds an anonymous store with the
// given interceptors, dispatches actions in order and returns the final
// state. It stops at the first failing action or when ctx is done, returning
// the state reached so far with the error. The store is not registered with
// any [Registry].
//
//nolint:ireturn // generic type parameter S, not an interface
func Replay[S any](
	ctx context.Context,
	reducer Reducer[S],
	initial S,
	actions []Action,
	interceptors ...Interceptor[S],
) (S, error) {
	store, err := NewStore(reducer, initial, WithEnhancer(ApplyMiddleware(interceptors...)))
	if err != nil {
		var zero S
		return zero, err
	}

	for i, action := range actions {
		if err = ctx.Err(); err != nil {
			return store.State(), fmt.Errorf("st8: replay: %w", err)
		}

		if _, err = store.Dispatch(ctx, action); err != nil {
			return store.State(), fmt.Errorf("st8: replay action %d (%s): %w", i, action.Type, err)
		}
	}

	return store.State(), nil
}
