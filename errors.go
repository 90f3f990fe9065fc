package st8

type (
	// StoreError identifies errors produced by the store and its pipeline
	// machinery, as opposed to errors returned by user middleware.
	//nolint:iface // exported for consumer error classification.
	StoreError interface {
		error
		// IsStoreError reports whether this error originates from st8.
		IsStoreError() bool
	}

	// storeError is the concrete type backing all sentinel errors.
	storeError string
)

// Sentinel store errors.
var (
	// ErrDispatchDuringConstruction is returned when an interceptor
	// constructor calls Dispatch before the pipeline is wired. The action
	// would bypass every middleware, so it is refused.
	ErrDispatchDuringConstruction error = storeError(
		"dispatch invoked while constructing middleware: " +
			"other middleware would not see the action",
	)
	// ErrNilMiddleware is returned when an interceptor is nil or builds a
	// nil middleware.
	ErrNilMiddleware error = storeError("nil middleware")
	// ErrNilReducer is returned when a store is created without a reducer.
	ErrNilReducer error = storeError("nil reducer")
	// ErrMissingActionType is returned when an action has an empty Type.
	ErrMissingActionType error = storeError("action type is empty")
	// ErrDuplicateAction is returned by [Dedupe] when an action is
	// suppressed.
	ErrDuplicateAction error = storeError("duplicate action")
	// ErrThrottled is returned by [Throttle] when no token is available.
	ErrThrottled error = storeError("dispatch throttled")
	// ErrUnknownStore is returned when a registry has no configuration for
	// the requested store name.
	ErrUnknownStore error = storeError("unknown store")
)

func (e storeError) Error() string { return string(e) }

// IsStoreError reports whether the error is a store infrastructure error.
func (storeError) IsStoreError() bool { return true }
