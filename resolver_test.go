package currency

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu     sync.Mutex
	values map[string]string
	writes []string
	getErr error
	setErr error
	delErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: make(map[string]string)}
}

func (s *fakeStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", false, s.getErr
	}
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *fakeStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.values[key] = value
	s.writes = append(s.writes, value)
	return nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.delErr != nil {
		return s.delErr
	}
	delete(s.values, key)
	return nil
}

func (s *fakeStore) value(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.values[key]
	return value, ok
}

// countingSignals counts detections; when gate is set the timezone lookup
// blocks until the gate is closed.
type countingSignals struct {
	StaticSignals
	calls   atomic.Int32
	entered chan struct{}
	gate    chan struct{}
}

func (s *countingSignals) Timezone() string {
	s.calls.Add(1)
	if s.entered != nil {
		select {
		case s.entered <- struct{}{}:
		default:
		}
	}
	if s.gate != nil {
		<-s.gate
	}
	return s.StaticSignals.TimeZone
}

func gatedSignals(tz string) *countingSignals {
	return &countingSignals{
		StaticSignals: StaticSignals{TimeZone: tz},
		entered:       make(chan struct{}, 1),
		gate:          make(chan struct{}),
	}
}

func newTestResolver(t *testing.T, signals Signals, store PreferenceStore) (*Resolver, *logtest.Hook) {
	t.Helper()
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	countries := NewCountryResolver(signals, WithCountryLogger(logger))
	opts := ResolverOptions{Fallback: "USD", Logger: logger}
	if store != nil {
		opts.Store = store
	}
	resolver := NewResolver(DefaultRegistry(), countries, opts)
	t.Cleanup(resolver.Wait)
	return resolver, hook
}

func TestResolverFallbackOrder(t *testing.T) {
	cases := []struct {
		name    string
		signals StaticSignals
		want    string
	}{
		{"timezone", StaticSignals{TimeZone: "Europe/Berlin", Language: "en-US"}, "EUR"},
		{"language", StaticSignals{TimeZone: "Etc/Nowhere", Language: "ja-JP"}, "JPY"},
		{"nothing", StaticSignals{}, "USD"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resolver, _ := newTestResolver(t, tc.signals, nil)
			assert.Equal(t, StateUnresolved, resolver.State())
			assert.Equal(t, tc.want, resolver.Get(context.Background()))
			assert.Equal(t, StateResolved, resolver.State())

			cached, ok := resolver.Cached()
			assert.True(t, ok)
			assert.Equal(t, tc.want, cached)
		})
	}
}

func TestResolverPersistsDetectedCurrency(t *testing.T) {
	store := newFakeStore()
	resolver, _ := newTestResolver(t, StaticSignals{TimeZone: "Europe/Berlin"}, store)

	assert.Equal(t, "EUR", resolver.Get(context.Background()))
	resolver.Wait()

	value, ok := store.value(DefaultPreferenceKey)
	require.True(t, ok)
	assert.Equal(t, "EUR", value)
}

func TestResolverPreferenceSurvivesRestart(t *testing.T) {
	store := newFakeStore()

	first, _ := newTestResolver(t, StaticSignals{TimeZone: "Europe/Berlin"}, store)
	require.True(t, first.Set("GBP"))
	first.Wait()

	signals := &countingSignals{StaticSignals: StaticSignals{TimeZone: "Europe/Berlin"}}
	second, _ := newTestResolver(t, signals, store)
	assert.Equal(t, "GBP", second.Get(context.Background()))
	assert.Zero(t, signals.calls.Load(), "a stored preference must skip detection")
}

func TestResolverIgnoresInvalidStoredValue(t *testing.T) {
	store := newFakeStore()
	store.values[DefaultPreferenceKey] = "ZZZ"

	resolver, hook := newTestResolver(t, StaticSignals{Language: "ja-JP"}, store)
	assert.Equal(t, "JPY", resolver.Get(context.Background()))
	resolver.Wait()

	value, _ := store.value(DefaultPreferenceKey)
	assert.Equal(t, "JPY", value)
	assert.True(t, hasLog(hook, logrus.WarnLevel, "ignoring persisted currency not in registry"))
}

func TestResolverNormalizesStoredValue(t *testing.T) {
	store := newFakeStore()
	store.values[DefaultPreferenceKey] = " chf "

	resolver, _ := newTestResolver(t, StaticSignals{}, store)
	assert.Equal(t, "CHF", resolver.Get(context.Background()))
}

func TestResolverStorageFailuresDegrade(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("disk on fire")
	store.setErr = errors.New("disk still on fire")

	resolver, hook := newTestResolver(t, StaticSignals{TimeZone: "Asia/Tokyo"}, store)
	assert.Equal(t, "JPY", resolver.Get(context.Background()))
	resolver.Wait()

	assert.True(t, hasLog(hook, logrus.WarnLevel, "reading currency preference failed"))
	assert.True(t, hasLog(hook, logrus.WarnLevel, "persisting currency preference failed"))
}

func TestResolverSet(t *testing.T) {
	store := newFakeStore()
	resolver, hook := newTestResolver(t, StaticSignals{TimeZone: "Europe/Berlin"}, store)

	assert.False(t, resolver.Set("ZZZ"))
	assert.True(t, hasLog(hook, logrus.WarnLevel, "ignoring unknown currency"))
	assert.Equal(t, StateUnresolved, resolver.State())

	assert.True(t, resolver.Set("gbp"))
	cached, ok := resolver.Cached()
	require.True(t, ok)
	assert.Equal(t, "GBP", cached)
	assert.Equal(t, "GBP", resolver.Get(context.Background()))

	resolver.Wait()
	value, _ := store.value(DefaultPreferenceKey)
	assert.Equal(t, "GBP", value)

	assert.False(t, resolver.Set(""))
	assert.Equal(t, "GBP", resolver.Get(context.Background()))
}

func TestResolverLastSetWinsInStorage(t *testing.T) {
	store := newFakeStore()
	resolver, _ := newTestResolver(t, StaticSignals{}, store)

	for _, code := range []string{"EUR", "GBP", "JPY", "CHF"} {
		require.True(t, resolver.Set(code))
	}
	resolver.Wait()

	value, _ := store.value(DefaultPreferenceKey)
	assert.Equal(t, "CHF", value)
}

func TestResolverCoalescesConcurrentResolution(t *testing.T) {
	signals := gatedSignals("Europe/Berlin")
	resolver, _ := newTestResolver(t, signals, newFakeStore())

	const callers = 32
	results := make(chan string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- resolver.Get(context.Background())
		}()
	}

	<-signals.entered
	assert.Equal(t, StateResolving, resolver.State())
	close(signals.gate)
	wg.Wait()
	close(results)

	for got := range results {
		assert.Equal(t, "EUR", got)
	}
	assert.Equal(t, int32(1), signals.calls.Load())

	resolver.Get(context.Background())
	assert.Equal(t, int32(1), signals.calls.Load())
}

func TestResolverSetDuringResolutionWins(t *testing.T) {
	store := newFakeStore()
	signals := gatedSignals("Europe/Berlin")
	resolver, _ := newTestResolver(t, signals, store)

	done := make(chan string, 1)
	go func() { done <- resolver.Get(context.Background()) }()

	<-signals.entered
	require.True(t, resolver.Set("JPY"))
	close(signals.gate)

	assert.Equal(t, "JPY", <-done)
	cached, _ := resolver.Cached()
	assert.Equal(t, "JPY", cached)

	resolver.Wait()
	value, _ := store.value(DefaultPreferenceKey)
	assert.Equal(t, "JPY", value)
}

func TestResolverCallerCancellationReturnsFallback(t *testing.T) {
	signals := gatedSignals("Europe/Berlin")
	resolver, _ := newTestResolver(t, signals, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan string, 1)
	go func() { done <- resolver.Get(ctx) }()

	<-signals.entered
	cancel()
	assert.Equal(t, "USD", <-done)

	close(signals.gate)
	assert.Eventually(t, func() bool {
		code, ok := resolver.Cached()
		return ok && code == "EUR"
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), signals.calls.Load())
}

func TestResolverReset(t *testing.T) {
	store := newFakeStore()
	signals := &countingSignals{StaticSignals: StaticSignals{TimeZone: "Europe/Berlin"}}
	resolver, _ := newTestResolver(t, signals, store)

	require.True(t, resolver.Set("GBP"))
	resolver.Wait()

	require.NoError(t, resolver.Reset(context.Background()))
	assert.Equal(t, StateUnresolved, resolver.State())
	_, ok := store.value(DefaultPreferenceKey)
	assert.False(t, ok)

	assert.Equal(t, "EUR", resolver.Get(context.Background()))
	assert.Equal(t, int32(1), signals.calls.Load())
	resolver.Wait()

	store.delErr = errors.New("read only")
	assert.Error(t, resolver.Reset(context.Background()))
}

func TestResolverOnChange(t *testing.T) {
	resolver, _ := newTestResolver(t, StaticSignals{TimeZone: "Europe/Berlin"}, nil)

	var mu sync.Mutex
	var seen []string
	cancel := resolver.OnChange(func(code string) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, code)
	})

	resolver.Get(context.Background())
	resolver.Set("GBP")
	resolver.Set("GBP")
	cancel()
	cancel()
	resolver.Set("JPY")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"EUR", "GBP"}, seen)
}

func TestResolverCountryWithoutCurrencyUsesFallback(t *testing.T) {
	registry, err := NewRegistry([]Currency{usd(), eur()})
	require.NoError(t, err)

	countries := NewCountryResolver(StaticSignals{TimeZone: "Asia/Tokyo"}, WithCountryLogger(quietLogger()))
	resolver := NewResolver(registry, countries, ResolverOptions{Fallback: "EUR", Logger: quietLogger()})
	assert.Equal(t, "EUR", resolver.Get(context.Background()))
}

func TestResolverFallbackDefaults(t *testing.T) {
	resolver := NewResolver(DefaultRegistry(), nil, ResolverOptions{Fallback: "ZZZ", Logger: quietLogger()})
	assert.Equal(t, "USD", resolver.Fallback())

	registry, err := NewRegistry([]Currency{eur()})
	require.NoError(t, err)
	resolver = NewResolver(registry, nil, ResolverOptions{Logger: quietLogger()})
	assert.Equal(t, "EUR", resolver.Fallback())
}

func TestResolverCustomKey(t *testing.T) {
	store := newFakeStore()
	countries := NewCountryResolver(StaticSignals{}, WithCountryLogger(quietLogger()))
	resolver := NewResolver(DefaultRegistry(), countries, ResolverOptions{
		Store:  store,
		Key:    "prefs.currency",
		Logger: quietLogger(),
	})

	resolver.Set("EUR")
	resolver.Wait()

	value, ok := store.value("prefs.currency")
	assert.True(t, ok)
	assert.Equal(t, "EUR", value)
}

func TestResolverRecordsMetrics(t *testing.T) {
	metrics, err := NewMetrics(nil)
	require.NoError(t, err)

	store := newFakeStore()
	store.getErr = errors.New("boom")
	countries := NewCountryResolver(StaticSignals{}, WithCountryLogger(quietLogger()))
	resolver := NewResolver(DefaultRegistry(), countries, ResolverOptions{
		Store:   store,
		Logger:  quietLogger(),
		Metrics: metrics,
	})

	resolver.Get(context.Background())
	resolver.Set("ZZZ")
	resolver.Set("EUR")
	resolver.Wait()

	assert.Equal(t, 1.0, counterValue(t, metrics.resolutions.WithLabelValues("detected")))
	assert.Equal(t, 1.0, counterValue(t, metrics.resolutions.WithLabelValues("explicit")))
	assert.Equal(t, 1.0, counterValue(t, metrics.storageErrors.WithLabelValues("get")))
	assert.Equal(t, 1.0, counterValue(t, metrics.unknownCurrency.WithLabelValues("set")))
}

func TestNilResolver(t *testing.T) {
	var resolver *Resolver
	assert.Equal(t, "", resolver.Get(context.Background()))
	assert.False(t, resolver.Set("USD"))
	assert.Equal(t, StateUnresolved, resolver.State())
	assert.NoError(t, resolver.Reset(context.Background()))
	assert.NotPanics(t, resolver.Wait)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "unresolved", StateUnresolved.String())
	assert.Equal(t, "resolving", StateResolving.String())
	assert.Equal(t, "resolved", StateResolved.String())
}

func hasLog(hook *logtest.Hook, level logrus.Level, message string) bool {
	for _, entry := range hook.AllEntries() {
		if entry.Level == level && entry.Message == message {
			return true
		}
	}
	return false
}
