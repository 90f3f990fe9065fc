package st8

// Compose combines unary functions into one. Compose(f, g, h)(x) is
// f(g(h(x))): the last function is applied first and the first function
// produces the result.
//
// Compose() returns the identity function and Compose(f) returns f itself.
func Compose[T any](fns ...func(T) T) func(T) T {
	switch len(fns) {
	case 0:
		return func(x T) T { return x }
	case 1:
		return fns[0]
	}

	// Copy so later changes to the caller's slice do not leak into the
	// composed function.
	chain := make([]func(T) T, len(fns))
	copy(chain, fns)

	return func(x T) T {
		for i := len(chain) - 1; i >= 0; i-- {
			x = chain[i](x)
		}

		return x
	}
}
