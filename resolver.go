package currency

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// DefaultStorageTimeout bounds each preference store call.
const DefaultStorageTimeout = 2 * time.Second

const resolveKey = "resolve"

// State tracks the lifecycle of the user currency.
type State int32

const (
	StateUnresolved State = iota
	StateResolving
	StateResolved
)

func (s State) String() string {
	switch s {
	case StateResolving:
		return "resolving"
	case StateResolved:
		return "resolved"
	default:
		return "unresolved"
	}
}

// ResolverOptions configures a Resolver. Zero values pick the defaults.
type ResolverOptions struct {
	// Store persists the preference. Nil keeps it in memory only.
	Store PreferenceStore
	// Key defaults to DefaultPreferenceKey.
	Key string
	// Fallback is returned when nothing better is known. It defaults to USD
	// when registered, otherwise to the first registered code.
	Fallback string
	// StorageTimeout defaults to DefaultStorageTimeout.
	StorageTimeout time.Duration
	Logger         logrus.FieldLogger
	Metrics        *Metrics
}

// Resolver owns the active user currency. It is the only writer of that
// value: explicit choices go through Set, everything else through the
// single shared resolution started by Get.
type Resolver struct {
	registry       *Registry
	countries      *CountryResolver
	store          PreferenceStore
	key            string
	fallback       string
	storageTimeout time.Duration
	logger         logrus.FieldLogger
	metrics        *Metrics

	mu         sync.RWMutex
	current    string
	state      State
	generation uint64

	group   singleflight.Group
	writeMu sync.Mutex
	pending sync.WaitGroup

	listenersMu  sync.Mutex
	listeners    map[uint64]func(string)
	nextListener uint64
}

// NewResolver creates a resolver mapping detected countries to currencies
// of registry.
func NewResolver(registry *Registry, countries *CountryResolver, opts ResolverOptions) *Resolver {
	r := &Resolver{
		registry:       registry,
		countries:      countries,
		store:          opts.Store,
		key:            opts.Key,
		storageTimeout: opts.StorageTimeout,
		logger:         opts.Logger,
		metrics:        opts.Metrics,
		listeners:      make(map[uint64]func(string)),
	}
	if r.key == "" {
		r.key = DefaultPreferenceKey
	}
	if r.storageTimeout <= 0 {
		r.storageTimeout = DefaultStorageTimeout
	}
	if r.logger == nil {
		r.logger = NewLogger()
	}
	if r.countries == nil {
		r.countries = NewCountryResolver(nil, WithCountryLogger(r.logger))
	}

	r.fallback = normalizeCode(opts.Fallback)
	if !registry.Has(r.fallback) {
		switch codes := registry.Codes(); {
		case registry.Has("USD"):
			r.fallback = "USD"
		case len(codes) > 0:
			r.fallback = codes[0]
		}
	}
	return r
}

// Fallback returns the code used when no preference can be determined.
func (r *Resolver) Fallback() string {
	if r == nil {
		return ""
	}
	return r.fallback
}

// Get returns the active user currency, resolving it on first use.
//
// Concurrent first calls share one resolution. The resolution is detached
// from ctx; if ctx ends first the caller gets the fallback while the shared
// resolution keeps running.
func (r *Resolver) Get(ctx context.Context) string {
	if r == nil {
		return ""
	}
	if code, ok := r.Cached(); ok {
		return code
	}

	ch := r.group.DoChan(resolveKey, func() (any, error) {
		return r.resolve(context.WithoutCancel(ctx)), nil
	})

	select {
	case <-ctx.Done():
		if code, ok := r.Cached(); ok {
			return code
		}
		r.logger.WithError(ctx.Err()).Debug("currency resolution abandoned by caller")
		return r.fallback
	case res := <-ch:
		if code, ok := res.Val.(string); ok && code != "" {
			return code
		}
		return r.fallback
	}
}

// Set makes code the active currency. Unknown codes are ignored and reported
// as false. The value is visible immediately; persistence happens in the
// background, see Wait.
func (r *Resolver) Set(code string) bool {
	if r == nil {
		return false
	}
	normalized := normalizeCode(code)
	if !r.registry.Has(normalized) {
		r.logger.WithField("currency", code).Warn("ignoring unknown currency")
		r.metrics.unknown("set")
		return false
	}

	r.mu.Lock()
	previous := r.current
	r.current = normalized
	r.state = StateResolved
	r.generation++
	r.mu.Unlock()

	r.metrics.resolution("explicit")
	if previous != normalized {
		r.notify(normalized)
	}
	r.persist()
	return true
}

// Cached returns the in-memory value without triggering resolution.
func (r *Resolver) Cached() (string, bool) {
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.state != StateResolved {
		return "", false
	}
	return r.current, true
}

// State reports the resolution lifecycle state.
func (r *Resolver) State() State {
	if r == nil {
		return StateUnresolved
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Reset forgets the active currency and deletes the persisted preference.
// The next Get runs detection again.
func (r *Resolver) Reset(ctx context.Context) error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	r.current = ""
	r.state = StateUnresolved
	r.generation++
	r.mu.Unlock()
	r.group.Forget(resolveKey)

	if r.store == nil {
		return nil
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, r.storageTimeout)
	defer cancel()
	if err := r.store.Delete(ctx, r.key); err != nil {
		r.metrics.storageError("delete")
		return err
	}
	return nil
}

// OnChange registers fn to run with the new code whenever the active
// currency changes. The returned function unregisters it.
func (r *Resolver) OnChange(fn func(code string)) func() {
	if r == nil || fn == nil {
		return func() {}
	}
	r.listenersMu.Lock()
	id := r.nextListener
	r.nextListener++
	r.listeners[id] = fn
	r.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.listenersMu.Lock()
			delete(r.listeners, id)
			r.listenersMu.Unlock()
		})
	}
}

// Wait blocks until background persistence writes have finished.
func (r *Resolver) Wait() {
	if r == nil {
		return
	}
	r.pending.Wait()
}

// Close drains pending writes.
func (r *Resolver) Close() error {
	r.Wait()
	return nil
}

func (r *Resolver) resolve(ctx context.Context) string {
	r.mu.Lock()
	if r.state == StateResolved {
		code := r.current
		r.mu.Unlock()
		return code
	}
	generation := r.generation
	r.state = StateResolving
	r.mu.Unlock()

	code, stored := r.loadPersisted(ctx)
	if !stored {
		code = r.detect(ctx)
	}

	r.mu.Lock()
	if r.generation != generation {
		// Set or Reset ran while we were resolving; an explicit choice wins.
		current, resolved := r.current, r.state == StateResolved
		r.mu.Unlock()
		if resolved {
			return current
		}
		return code
	}
	r.current = code
	r.state = StateResolved
	r.generation++
	r.mu.Unlock()

	if stored {
		r.metrics.resolution("stored")
	} else {
		r.metrics.resolution("detected")
	}
	r.notify(code)
	if !stored {
		r.persist()
	}
	return code
}

func (r *Resolver) loadPersisted(ctx context.Context) (string, bool) {
	if r.store == nil {
		return "", false
	}
	ctx, cancel := context.WithTimeout(ctx, r.storageTimeout)
	defer cancel()

	value, ok, err := r.store.Get(ctx, r.key)
	if err != nil {
		r.logger.WithError(err).WithField("key", r.key).Warn("reading currency preference failed")
		r.metrics.storageError("get")
		return "", false
	}
	if !ok {
		return "", false
	}
	code := normalizeCode(value)
	if !r.registry.Has(code) {
		r.logger.WithFields(logrus.Fields{
			"key":      r.key,
			"currency": value,
		}).Warn("ignoring persisted currency not in registry")
		r.metrics.unknown("stored")
		return "", false
	}
	return code, true
}

func (r *Resolver) detect(ctx context.Context) string {
	detection := r.countries.Detect(ctx)
	code, ok := r.registry.CurrencyForCountry(detection.Country)
	if !ok {
		r.logger.WithField("country", detection.Country).Info("no currency for country, using fallback")
		return r.fallback
	}
	r.logger.WithFields(logrus.Fields{
		"country":  detection.Country,
		"source":   detection.Source,
		"currency": code,
	}).Debug("currency detected")
	return code
}

// persist writes whatever is active when the write runs, so writes issued
// in quick succession leave the last choice in storage.
func (r *Resolver) persist() {
	if r.store == nil {
		return
	}
	r.pending.Add(1)
	go func() {
		defer r.pending.Done()

		r.writeMu.Lock()
		defer r.writeMu.Unlock()

		code, ok := r.Cached()
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), r.storageTimeout)
		defer cancel()
		if err := r.store.Set(ctx, r.key, code); err != nil {
			r.logger.WithError(err).WithFields(logrus.Fields{
				"key":      r.key,
				"currency": code,
			}).Warn("persisting currency preference failed")
			r.metrics.storageError("set")
		}
	}()
}

func (r *Resolver) notify(code string) {
	r.listenersMu.Lock()
	listeners := make([]func(string), 0, len(r.listeners))
	for _, fn := range r.listeners {
		listeners = append(listeners, fn)
	}
	r.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(code)
	}
}
