package st8

// Hooks holds optional callback functions for store and stock middleware
// lifecycle events. All fields are nil by default; callers set only the hooks
// they care about. Once constructed, a Hooks value must not be mutated; emit
// methods read the function fields without synchronisation.
//
// Pattern: Observer. Decouples event emission from consumers (logging,
// metrics, devtools) without the store knowing about observers.
type Hooks struct {
	OnDispatch            func(action Action)
	OnStateChange         func(action Action)
	OnSubscribe           func(subscribers int)
	OnUnsubscribe         func(subscribers int)
	OnReplaceReducer      func()
	OnDuplicateSuppressed func(key string)
	OnThrottled           func(action Action)
	OnJournalWrite        func(entry JournalEntry)
}

func (h *Hooks) emitDispatch(action Action) {
	if h.OnDispatch != nil {
		h.OnDispatch(action)
	}
}

func (h *Hooks) emitStateChange(action Action) {
	if h.OnStateChange != nil {
		h.OnStateChange(action)
	}
}

func (h *Hooks) emitSubscribe(subscribers int) {
	if h.OnSubscribe != nil {
		h.OnSubscribe(subscribers)
	}
}

func (h *Hooks) emitUnsubscribe(subscribers int) {
	if h.OnUnsubscribe != nil {
		h.OnUnsubscribe(subscribers)
	}
}

func (h *Hooks) emitReplaceReducer() {
	if h.OnReplaceReducer != nil {
		h.OnReplaceReducer()
	}
}

func (h *Hooks) emitDuplicateSuppressed(key string) {
	if h.OnDuplicateSuppressed != nil {
		h.OnDuplicateSuppressed(key)
	}
}

func (h *Hooks) emitThrottled(action Action) {
	if h.OnThrottled != nil {
		h.OnThrottled(action)
	}
}

func (h *Hooks) emitJournalWrite(entry JournalEntry) {
	if h.OnJournalWrite != nil {
		h.OnJournalWrite(entry)
	}
}
