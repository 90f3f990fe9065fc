package st8

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/imdario/mergo"
	"github.com/knadh/koanf"
	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
)

// EnvPrefix prefixes environment variables overlaid on a config file.
// ST8_STORES__CART__THUNK=true sets stores.cart.thunk.
const EnvPrefix = "ST8_"

type (
	// StoreConfig holds the decoded configuration for one store's stock
	// middleware. Embed it in your own app config, then call
	// [BuildInterceptors] or use [ConfiguredStore].
	StoreConfig struct {
		// Thunk enables [Thunk]. Optional. Example: true.
		Thunk *bool `json:"thunk,omitempty"`
		// Throttle configures [Throttle]. Optional. Example: {"rate": 50}.
		Throttle *ThrottleConfig `json:"throttle,omitempty"`
		// Dedupe configures [Dedupe]. Optional. Example: {"ttl": "500ms"}.
		Dedupe *DedupeConfig `json:"dedupe,omitempty"`
		// Journal configures [Journal]. Optional. Example: {"payload": false}.
		Journal *JournalConfig `json:"journal,omitempty"`
	}

	// ThrottleConfig holds throttle configuration values.
	ThrottleConfig struct {
		// Types restricts throttling to these action types. Optional.
		Types []string `json:"types,omitempty"`
		// Rate is the number of actions per second. Required.
		Rate float64 `json:"rate" validate:"gt=0"`
	}

	// DedupeConfig holds dedupe configuration values.
	DedupeConfig struct {
		// TTL is the suppression window. Optional, defaults to "1s".
		// Parsed via time.ParseDuration.
		TTL string `json:"ttl,omitempty"`
		// Key selects the dedupe key: "type" or "payload" (type plus
		// payload). Optional, defaults to "payload".
		Key string `json:"key,omitempty" validate:"omitempty,oneof=type payload"`
	}

	// JournalConfig holds journal configuration values.
	JournalConfig struct {
		// Payload records action payloads. Optional, defaults to true.
		Payload *bool `json:"payload,omitempty"`
	}

	// dedupeCacheDesc carries the cache used by config-built dedupe.
	dedupeCacheDesc struct {
		cache Cache[string, time.Time]
	}

	// journalWriterDesc carries the writer used by config-built journals.
	journalWriterDesc struct {
		w io.Writer
	}
)

//nolint:gochecknoglobals // immutable defaults merged into loaded configs
var (
	defaultDedupeConfig = DedupeConfig{TTL: "1s", Key: "payload"}

	validate = validator.New()
)

func ptr[T any](v T) *T { return &v }

// defaultJournalConfig allocates its pointers on every call; mergo copies
// pointers as-is, so a shared default would alias every loaded config.
func defaultJournalConfig() JournalConfig {
	return JournalConfig{Payload: ptr(true)}
}

// WithDedupeCache supplies the cache used when a config enables dedupe.
func WithDedupeCache(c Cache[string, time.Time]) any {
	return dedupeCacheDesc{cache: c}
}

// WithJournalWriter supplies the writer used when a config enables the
// journal.
func WithJournalWriter(w io.Writer) any {
	return journalWriterDesc{w: w}
}

// LoadConfig reads a JSON file holding a "stores" object, overlays
// environment variables prefixed with [EnvPrefix], and stores the result in
// a new [Registry]. Stores are not created until [ConfiguredStore] is
// called, allowing the caller to provide the state type and reducer.
//
// Every store is validated eagerly; all failures are reported together.
func LoadConfig(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("st8: read config: %w", err)
	}

	k := koanf.New(".")

	if err = k.Load(rawbytes.Provider(data), kjson.Parser()); err != nil {
		return nil, fmt.Errorf("st8: parse config: %w", err)
	}

	if err = k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("st8: load env: %w", err)
	}

	var stores map[string]StoreConfig

	if err = k.UnmarshalWithConf("stores", &stores, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("st8: decode config: %w", err)
	}

	names := make([]string, 0, len(stores))
	for name := range stores {
		names = append(names, name)
	}

	sort.Strings(names)

	var errs *multierror.Error

	for _, name := range names {
		sc := stores[name]
		if vErr := prepareStoreConfig(&sc); vErr != nil {
			errs = multierror.Append(errs, fmt.Errorf("store %q: %w", name, vErr))
			continue
		}

		stores[name] = sc
	}

	if err = errs.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("st8: %w", err)
	}

	reg := NewRegistry()
	reg.mu.Lock()
	reg.configs = stores
	reg.mu.Unlock()

	return reg, nil
}

// envKey maps ST8_STORES__CART__THUNK to stores.cart.thunk.
func envKey(s string) string {
	return strings.ReplaceAll(
		strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".",
	)
}

// prepareStoreConfig fills defaults and validates sc.
func prepareStoreConfig(sc *StoreConfig) error {
	if sc.Dedupe != nil {
		if err := mergo.Merge(sc.Dedupe, defaultDedupeConfig); err != nil {
			return fmt.Errorf("dedupe defaults: %w", err)
		}
	}

	if sc.Journal != nil {
		if err := mergo.Merge(sc.Journal, defaultJournalConfig()); err != nil {
			return fmt.Errorf("journal defaults: %w", err)
		}
	}

	if err := validate.Struct(sc); err != nil {
		return err //nolint:wrapcheck // validator messages name the field
	}

	if sc.Dedupe != nil {
		if _, err := time.ParseDuration(sc.Dedupe.TTL); err != nil {
			return fmt.Errorf("dedupe.ttl: %w", err)
		}
	}

	return nil
}

// BuildInterceptors converts a [StoreConfig] into ordered stock
// interceptors. opts may carry [WithClock], [WithHooks], [WithName],
// [WithDedupeCache] and [WithJournalWriter]; other values are ignored.
// Dedupe requires a cache and the journal requires a writer.
func BuildInterceptors[S any](sc *StoreConfig, opts ...any) ([]Interceptor[S], error) {
	cfg := *sc
	if sc.Dedupe != nil {
		d := *sc.Dedupe
		cfg.Dedupe = &d
	}

	if sc.Journal != nil {
		j := *sc.Journal
		cfg.Journal = &j
	}

	if err := prepareStoreConfig(&cfg); err != nil {
		return nil, err
	}

	setup := collectSetup(opts)

	var (
		cache  Cache[string, time.Time]
		writer io.Writer
	)

	for _, opt := range opts {
		switch desc := opt.(type) {
		case dedupeCacheDesc:
			cache = desc.cache
		case journalWriterDesc:
			writer = desc.w
		}
	}

	var entries []InterceptorEntry[S]

	if cfg.Thunk != nil && *cfg.Thunk {
		entries = append(entries, InterceptorEntry[S]{
			Priority: priorityThunk,
			Name:     "thunk",
			Make:     Thunk[S](),
		})
	}

	if cfg.Throttle != nil {
		entries = append(entries, InterceptorEntry[S]{
			Priority: priorityThrottle,
			Name:     "throttle",
			Make: Throttle[S](cfg.Throttle.Rate,
				ThrottleClock(setup.clock),
				ThrottleHooks(setup.hooks),
				ThrottleTypes(cfg.Throttle.Types...),
			),
		})
	}

	if cfg.Dedupe != nil {
		if cache == nil {
			return nil, errors.New("dedupe: no cache, use WithDedupeCache")
		}

		// Validated by prepareStoreConfig.
		ttl, _ := time.ParseDuration(cfg.Dedupe.TTL)

		dedupeOpts := []DedupeOption{
			DedupeClock(setup.clock),
			DedupeHooks(setup.hooks),
		}
		if cfg.Dedupe.Key == "type" {
			dedupeOpts = append(dedupeOpts, DedupeKey(func(a Action) (string, error) {
				return a.Type, nil
			}))
		}

		entries = append(entries, InterceptorEntry[S]{
			Priority: priorityDedupe,
			Name:     "dedupe",
			Make:     Dedupe[S](cache, ttl, dedupeOpts...),
		})
	}

	if cfg.Journal != nil {
		if writer == nil {
			return nil, errors.New("journal: no writer, use WithJournalWriter")
		}

		journalOpts := []JournalOption{
			JournalClock(setup.clock),
			JournalHooks(setup.hooks),
			JournalStore(setup.name),
		}
		if !*cfg.Journal.Payload {
			journalOpts = append(journalOpts, JournalOmitPayload())
		}

		entries = append(entries, InterceptorEntry[S]{
			Priority: priorityJournal,
			Name:     "journal",
			Make:     Journal[S](writer, journalOpts...),
		})
	}

	return SortInterceptors(entries), nil
}

// ConfiguredStore creates the named store from a config-loaded [Registry].
// The store registers with reg under name. The configured stock middleware
// is applied inside any enhancer passed in opts, closest to the base store.
// User options come after the config-derived ones so they take precedence.
//
//nolint:ireturn // returns the Store interface like NewStore.
func ConfiguredStore[S any](
	reg *Registry,
	name string,
	reducer Reducer[S],
	initial S,
	opts ...any,
) (Store[S], error) {
	sc, ok := reg.Config(name)
	if !ok {
		return nil, fmt.Errorf("st8: store %q: %w", name, ErrUnknownStore)
	}

	allOpts := []any{WithName(name), WithRegistry(reg)}
	allOpts = append(allOpts, opts...)

	interceptors, err := BuildInterceptors[S](&sc, allOpts...)
	if err != nil {
		return nil, fmt.Errorf("st8: store %q: %w", name, err)
	}

	allOpts = append(allOpts, WithEnhancer(ApplyMiddleware(interceptors...)))

	return NewStore(reducer, initial, allOpts...)
}
