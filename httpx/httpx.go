package httpx

import (
	"errors"
	"net/http"

	"github.com/go-logr/logr"
	json "github.com/goccy/go-json"

	"github.com/byte4ever/st8"
)

// defaultMaxBody caps the size of a posted action.
const defaultMaxBody int64 = 1 << 20

type (
	// Option configures a [Handler].
	Option func(*config)

	config struct {
		logger  logr.Logger
		decode  PayloadDecoder
		maxBody int64
	}

	// PayloadDecoder turns the raw JSON payload of a posted action into the
	// value reducers see. raw is nil when the body carries no payload.
	PayloadDecoder func(typ string, raw json.RawMessage) (any, error)

	// wireAction is a posted action with its payload left undecoded.
	wireAction struct {
		Meta    map[string]any  `json:"meta,omitempty"`
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload,omitempty"`
	}

	// Handler serves a store over HTTP.
	//
	// Pattern: Adapter. Bridges net/http and the store's dispatch pipeline
	// by translating requests into actions and errors into status codes.
	Handler[S any] struct {
		store st8.Store[S]
		cfg   config
	}

	// StateResponse is the body returned by every successful request.
	StateResponse[S any] struct {
		State S `json:"state"`
	}

	// ErrorResponse is the body returned when a request fails.
	ErrorResponse struct {
		Error string `json:"error"`
	}
)

// WithLogger sets the logger used to report failed dispatches.
func WithLogger(l logr.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithMaxBody caps the size of a posted action. Default 1 MiB.
func WithMaxBody(n int64) Option {
	return func(c *config) {
		c.maxBody = n
	}
}

// WithDecodePayload sets the decoder applied to posted payloads, letting
// reducers receive typed values instead of generic JSON. A decoder error is
// a 400. By default payloads decode as untyped JSON (numbers are float64).
func WithDecodePayload(fn PayloadDecoder) Option {
	return func(c *config) {
		if fn != nil {
			c.decode = fn
		}
	}
}

func decodeAny(_ string, raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err //nolint:wrapcheck // wrapped by the caller
	}

	return v, nil
}

// NewHandler creates a Handler for store.
func NewHandler[S any](store st8.Store[S], opts ...Option) *Handler[S] {
	cfg := config{logger: logr.Discard(), decode: decodeAny, maxBody: defaultMaxBody}
	for _, o := range opts {
		o(&cfg)
	}

	return &Handler[S]{store: store, cfg: cfg}
}

// ServeHTTP returns the state on GET and dispatches the posted action on
// POST. A malformed or untyped action, or a payload the decoder rejects, is
// a 400, another store error (duplicate, throttled) a 409, any other
// dispatch error a 500.
func (h *Handler[S]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.writeJSON(w, http.StatusOK, StateResponse[S]{State: h.store.State()})

	case http.MethodPost:
		var wire wireAction

		body := http.MaxBytesReader(w, r.Body, h.cfg.maxBody)
		if err := json.NewDecoder(body).Decode(&wire); err != nil {
			h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "decode action: " + err.Error()})
			return
		}

		payload, err := h.cfg.decode(wire.Type, wire.Payload)
		if err != nil {
			h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "decode payload: " + err.Error()})
			return
		}

		action := st8.Action{Type: wire.Type, Payload: payload, Meta: wire.Meta}

		if _, err := h.store.Dispatch(r.Context(), action); err != nil {
			h.cfg.logger.Error(err, "dispatch failed", "type", action.Type)
			h.writeJSON(w, statusFor(err), ErrorResponse{Error: err.Error()})

			return
		}

		h.writeJSON(w, http.StatusOK, StateResponse[S]{State: h.store.State()})

	default:
		w.Header().Set("Allow", "GET, POST")
		h.writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed"})
	}
}

func statusFor(err error) int {
	if errors.Is(err, st8.ErrMissingActionType) {
		return http.StatusBadRequest
	}

	var se st8.StoreError
	if errors.As(err, &se) && se.IsStoreError() {
		return http.StatusConflict
	}

	return http.StatusInternalServerError
}

func (h *Handler[S]) writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.cfg.logger.Error(err, "encode response")
	}
}
