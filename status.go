package st8

import "time"

// ---------------------------------------------------------------------------
// StatusReporter interface
// ---------------------------------------------------------------------------.

type (
	// StatusReporter is implemented by every store. The interface is
	// non-generic, allowing stores with different state types to share one
	// [Registry].
	StatusReporter interface {
		// Name returns the store's name.
		Name() string
		// Status returns a point-in-time view of the store.
		Status() StoreStatus
	}

	// StoreStatus is a point-in-time view of a store.
	StoreStatus struct {
		UpdatedAt   time.Time `json:"updated_at"`
		State       any       `json:"state,omitempty"`
		Name        string    `json:"name"`
		LastAction  string    `json:"last_action,omitempty"`
		Dispatched  uint64    `json:"dispatched"`
		Subscribers int       `json:"subscribers"`
	}
)
