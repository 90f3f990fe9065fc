package st8

import "context"

// ThunkFunc is an action payload executed by [Thunk] instead of reaching the
// reducer. It gets the store's [API] so it can read state and dispatch
// further actions through the whole pipeline.
type ThunkFunc[S any] func(ctx context.Context, api API[S]) (any, error)

// NewThunk wraps fn in an action of the given type.
func NewThunk[S any](typ string, fn ThunkFunc[S]) Action {
	return Action{Type: typ, Payload: fn}
}

// Thunk returns an interceptor that runs [ThunkFunc] payloads and passes
// every other action to next. The thunk's result is the dispatch result.
func Thunk[S any]() Interceptor[S] {
	return func(api API[S]) (Middleware, error) {
		return func(next DispatchFunc) DispatchFunc {
			return func(ctx context.Context, action Action, extra ...any) (any, error) {
				switch fn := action.Payload.(type) {
				case ThunkFunc[S]:
					return fn(ctx, api)
				case func(context.Context, API[S]) (any, error):
					return fn(ctx, api)
				default:
					return next(ctx, action, extra...)
				}
			}
		}, nil
	}
}
