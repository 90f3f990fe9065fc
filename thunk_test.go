package st8

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestThunkRunsFunctionPayload(t *testing.T) {
	store := enhanced(t, sumReducer, 1, Thunk[int]())

	result, err := store.Dispatch(context.Background(), NewThunk("inc-twice", func(ctx context.Context, api API[int]) (any, error) {
		for range 2 {
			if _, err := api.Dispatch(ctx, add(api.State())); err != nil {
				return nil, err
			}
		}
		return api.State(), nil
	}))
	if err != nil {
		t.Fatalf("Dispatch() error = %v, want nil", err)
	}

	if result != 4 {
		t.Fatalf("Dispatch() = %v, want 4", result)
	}
	if store.State() != 4 {
		t.Fatalf("State() = %d, want 4", store.State())
	}
}

func TestThunkAcceptsPlainFunc(t *testing.T) {
	store := enhanced(t, sumReducer, 0, Thunk[int]())

	var fn func(context.Context, API[int]) (any, error) = func(context.Context, API[int]) (any, error) {
		return "plain", nil
	}

	result, err := store.Dispatch(context.Background(), Action{Type: "plain", Payload: fn})
	if err != nil || result != "plain" {
		t.Fatalf("Dispatch() = %v, %v; want plain, nil", result, err)
	}
}

func TestThunkNeverReachesReducer(t *testing.T) {
	reached := false
	reducer := func(s int, a Action) int {
		if a.Type == "job" {
			reached = true
		}
		return s
	}

	store := enhanced(t, reducer, 0, Thunk[int]())

	_, _ = store.Dispatch(context.Background(), NewThunk("job", func(context.Context, API[int]) (any, error) {
		return nil, nil
	}))

	if reached {
		t.Fatal("thunk action reached the reducer")
	}
}

func TestThunkPassesPlainActions(t *testing.T) {
	store := enhanced(t, sumReducer, 0, Thunk[int]())

	result, err := store.Dispatch(context.Background(), add(5))
	if err != nil {
		t.Fatalf("Dispatch() error = %v, want nil", err)
	}
	if a, ok := result.(Action); !ok || a.Type != "add" {
		t.Fatalf("Dispatch() = %v, want the add action", result)
	}
	if store.State() != 5 {
		t.Fatalf("State() = %d, want 5", store.State())
	}
}

func TestThunkErrorReturned(t *testing.T) {
	boom := errors.New("boom")
	store := enhanced(t, sumReducer, 0, Thunk[int]())

	_, err := store.Dispatch(context.Background(), NewThunk("fail", func(context.Context, API[int]) (any, error) {
		return nil, boom
	}))
	if !errors.Is(err, boom) {
		t.Fatalf("Dispatch() error = %v, want %v", err, boom)
	}
}

func TestThunkInnerDispatchRunsWholeChain(t *testing.T) {
	var trace []string

	// The tracer sits outside Thunk; the thunk's own dispatch re-enters it.
	store := enhanced(t, sumReducer, 0, tracing[int]("T", &trace), Thunk[int]())

	_, err := store.Dispatch(context.Background(), NewThunk("job", func(ctx context.Context, api API[int]) (any, error) {
		return api.Dispatch(ctx, add(1))
	}))
	if err != nil {
		t.Fatalf("Dispatch() error = %v, want nil", err)
	}

	want := []string{"T-before", "T-before", "T-after", "T-after"}
	if !equalStrings(trace, want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}
}

func TestThunkOtherStateTypeIsPlainAction(t *testing.T) {
	store := enhanced(t, sumReducer, 0, Thunk[int]())

	// A thunk for another state type is not recognized and reaches the base
	// store as an ordinary action.
	result, err := store.Dispatch(context.Background(), NewThunk("wrong", func(context.Context, API[string]) (any, error) {
		return "ran", nil
	}))
	if err != nil {
		t.Fatalf("Dispatch() error = %v, want nil", err)
	}
	if result == "ran" {
		t.Fatal("thunk for another state type was run")
	}
}

func ExampleThunk() {
	store, _ := NewStore(sumReducer, 0, WithEnhancer(ApplyMiddleware(Thunk[int]())))

	result, _ := store.Dispatch(context.Background(), NewThunk("add-if-even", func(ctx context.Context, api API[int]) (any, error) {
		if api.State()%2 != 0 {
			return false, nil
		}
		_, err := api.Dispatch(ctx, NewAction("add", 3))
		return true, err
	}))

	fmt.Println(result, store.State())
	// Output: true 3
}
