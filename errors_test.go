package st8

import (
	"errors"
	"fmt"
	"testing"
)

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

func TestSentinelErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrNilMiddleware, "nil middleware"},
		{ErrNilReducer, "nil reducer"},
		{ErrMissingActionType, "action type is empty"},
		{ErrDuplicateAction, "duplicate action"},
		{ErrThrottled, "dispatch throttled"},
		{ErrUnknownStore, "unknown store"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestDispatchDuringConstructionMessageExplains(t *testing.T) {
	msg := ErrDispatchDuringConstruction.Error()
	if msg == "" {
		t.Fatal("empty message")
	}
}

func TestSentinelErrorsImplementStoreError(t *testing.T) {
	sentinels := []error{
		ErrDispatchDuringConstruction,
		ErrNilMiddleware,
		ErrNilReducer,
		ErrMissingActionType,
		ErrDuplicateAction,
		ErrThrottled,
		ErrUnknownStore,
	}

	for _, err := range sentinels {
		var se StoreError
		if !errors.As(err, &se) {
			t.Errorf("%v does not implement StoreError", err)
			continue
		}
		if !se.IsStoreError() {
			t.Errorf("%v IsStoreError() = false", err)
		}
	}
}

func TestSentinelErrorsDetectableViaErrorsIsWhenWrapped(t *testing.T) {
	wrapped := fmt.Errorf("st8: interceptor 2: %w", ErrDispatchDuringConstruction)

	if !errors.Is(wrapped, ErrDispatchDuringConstruction) {
		t.Fatal("errors.Is failed on wrapped sentinel")
	}
	if errors.Is(wrapped, ErrNilMiddleware) {
		t.Fatal("errors.Is matched the wrong sentinel")
	}
}

func TestUserErrorIsNotStoreError(t *testing.T) {
	var se StoreError
	if errors.As(errors.New("boom"), &se) {
		t.Fatal("plain error classified as StoreError")
	}
}
