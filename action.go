package st8

import "context"

// Reserved action types dispatched by the store itself. Reducers should
// treat them like any other unknown type and return the state unchanged.
const (
	// InitAction is dispatched once when a store is created.
	InitAction = "@@st8/INIT"
	// ReplaceAction is dispatched after [Store.ReplaceReducer].
	ReplaceAction = "@@st8/REPLACE"
)

type (
	// Action describes a state change. Type is the discriminant every
	// reducer and middleware switches on; Payload and Meta are opaque to
	// the store.
	Action struct {
		Payload any            `json:"payload,omitempty"`
		Meta    map[string]any `json:"meta,omitempty"`
		Type    string         `json:"type"`
	}

	// Reducer computes the next state from the current state and an action.
	// It must be pure: no I/O, no calls back into the store.
	Reducer[S any] func(state S, action Action) S

	// DispatchFunc sends an action down the pipeline. Extra arguments are
	// forwarded verbatim to every layer and are opaque to the store.
	DispatchFunc func(ctx context.Context, action Action, extra ...any) (any, error)
)

// NewAction is a shorthand for Action{Type: typ, Payload: payload}.
func NewAction(typ string, payload any) Action {
	return Action{Type: typ, Payload: payload}
}
