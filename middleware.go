package st8

// Pattern: Decorator. Each middleware wraps the next dispatch function,
// forming a chain where order determines execution semantics.

// Middleware wraps a dispatch function with additional behavior.
// Each middleware receives the next function in the chain and returns a
// wrapped version. It may call next zero, one or many times.
type Middleware func(next DispatchFunc) DispatchFunc

// Chain composes multiple middlewares into a single middleware.
// Middlewares are applied in order: the first middleware is the outermost
// wrapper.
//
// Chain(a, b, c) produces a(b(c(next))); a is outermost, c is innermost.
// Chain() with zero middlewares returns an identity middleware that passes
// through to next.
func Chain(middlewares ...Middleware) Middleware {
	fns := make([]func(DispatchFunc) DispatchFunc, len(middlewares))
	for i, mw := range middlewares {
		fns[i] = mw
	}

	return Middleware(Compose(fns...))
}
