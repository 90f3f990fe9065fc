package st8

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

type (
	// JournalEntry is one line of a journal.
	JournalEntry struct {
		Time    time.Time `json:"time"`
		Payload any       `json:"payload,omitempty"`
		ID      string    `json:"id"`
		Store   string    `json:"store,omitempty"`
		Type    string    `json:"type"`
	}

	// JournalOption configures [Journal].
	JournalOption func(*journalConfig)

	journalConfig struct {
		clock       Clock
		hooks       *Hooks
		store       string
		omitPayload bool
	}
)

// JournalClock sets the clock used to timestamp entries.
func JournalClock(c Clock) JournalOption {
	return func(cfg *journalConfig) {
		cfg.clock = c
	}
}

// JournalHooks sets hooks notified after every written entry.
func JournalHooks(h Hooks) JournalOption {
	return func(cfg *journalConfig) {
		cfg.hooks = &h
	}
}

// JournalStore stamps entries with a store name.
func JournalStore(name string) JournalOption {
	return func(cfg *journalConfig) {
		cfg.store = name
	}
}

// JournalOmitPayload records action types only.
func JournalOmitPayload() JournalOption {
	return func(cfg *journalConfig) {
		cfg.omitPayload = true
	}
}

// Journal returns an interceptor that appends one JSON line per action to w
// once next has succeeded. Failed or short-circuited actions are not
// recorded, and neither are [ThunkFunc] payloads.
//
// A write failure is returned alongside next's result; the action has
// already been applied.
func Journal[S any](w io.Writer, opts ...JournalOption) Interceptor[S] {
	cfg := journalConfig{clock: RealClock{}, hooks: &Hooks{}}
	for _, o := range opts {
		o(&cfg)
	}

	return func(_ API[S]) (Middleware, error) {
		if w == nil {
			return nil, errors.New("st8: journal writer is nil")
		}

		var mu sync.Mutex

		enc := json.NewEncoder(w)

		return func(next DispatchFunc) DispatchFunc {
			return func(ctx context.Context, action Action, extra ...any) (any, error) {
				result, err := next(ctx, action, extra...)
				if err != nil {
					return result, err
				}

				switch action.Payload.(type) {
				case ThunkFunc[S], func(context.Context, API[S]) (any, error):
					return result, nil
				}

				entry := JournalEntry{
					Time:  cfg.clock.Now(),
					ID:    uuid.NewString(),
					Store: cfg.store,
					Type:  action.Type,
				}
				if !cfg.omitPayload {
					entry.Payload = action.Payload
				}

				mu.Lock()
				err = enc.Encode(entry)
				mu.Unlock()

				if err != nil {
					return result, fmt.Errorf("st8: journal %s: %w", action.Type, err)
				}

				cfg.hooks.emitJournalWrite(entry)

				return result, nil
			}
		}, nil
	}
}

// ReadJournal decodes a journal written by [Journal] back into actions, in
// order. Payloads come back as generic JSON values.
func ReadJournal(r io.Reader) ([]Action, error) {
	dec := json.NewDecoder(r)

	var actions []Action

	for {
		var entry JournalEntry

		err := dec.Decode(&entry)
		if errors.Is(err, io.EOF) {
			return actions, nil
		}

		if err != nil {
			return nil, fmt.Errorf("st8: read journal entry %d: %w", len(actions), err)
		}

		actions = append(actions, Action{Type: entry.Type, Payload: entry.Payload})
	}
}
