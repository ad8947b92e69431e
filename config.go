package currency

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Config captures engine setup
type Config struct {
	DataPath           string
	Registry           *Registry
	Rates              *RateTable
	Store              PreferenceStore
	Signals            Signals
	Geocoder           ReverseGeocoder
	Logger             logrus.FieldLogger
	Metrics            *Metrics
	DefaultCountry     string
	PreferenceKey      string
	GeolocationTimeout time.Duration
	StorageTimeout     time.Duration

	dataOverrides []string
	timezones     map[string]string
	languages     map[string]string
}

// Option mutates Config during construction
type Option func(*Config) error

// NewConfig builds Config via supplied options
func NewConfig(opts ...Option) (*Config, error) {
	cfg := &Config{}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.Logger == nil {
		cfg.Logger = NewLogger()
	}
	if cfg.Signals == nil {
		cfg.Signals = SystemSignals{}
	}
	if cfg.DefaultCountry == "" {
		cfg.DefaultCountry = DefaultCountry
	}
	if cfg.PreferenceKey == "" {
		cfg.PreferenceKey = DefaultPreferenceKey
	}
	if cfg.GeolocationTimeout <= 0 {
		cfg.GeolocationTimeout = DefaultGeolocationTimeout
	}
	if cfg.StorageTimeout <= 0 {
		cfg.StorageTimeout = DefaultStorageTimeout
	}

	return cfg, nil
}

// WithDataPath merges a JSON or YAML data file over the embedded reference data
func WithDataPath(path string) Option {
	return func(c *Config) error {
		c.DataPath = path
		return nil
	}
}

// WithDataOverride queues an additional data file applied after the data path
func WithDataOverride(path string) Option {
	return func(c *Config) error {
		if path == "" {
			return fmt.Errorf("currency: override path required")
		}
		c.dataOverrides = append(c.dataOverrides, path)
		return nil
	}
}

// WithRegistry replaces the registry built from data files. Combined with
// WithRates, no data file may be configured.
func WithRegistry(registry *Registry) Option {
	return func(c *Config) error {
		if registry == nil {
			return fmt.Errorf("%w: nil registry", ErrInvalidRegistry)
		}
		c.Registry = registry
		return nil
	}
}

// WithRates replaces the rate table built from data files. Combined with
// WithRegistry, no data file may be configured.
func WithRates(rates *RateTable) Option {
	return func(c *Config) error {
		if rates == nil {
			return fmt.Errorf("%w: nil rate table", ErrInvalidRate)
		}
		c.Rates = rates
		return nil
	}
}

func WithStore(store PreferenceStore) Option {
	return func(c *Config) error {
		c.Store = store
		return nil
	}
}

func WithSignals(signals Signals) Option {
	return func(c *Config) error {
		c.Signals = signals
		return nil
	}
}

func WithGeocoder(geocoder ReverseGeocoder) Option {
	return func(c *Config) error {
		c.Geocoder = geocoder
		return nil
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Config) error {
		c.Logger = logger
		return nil
	}
}

// WithMetrics registers engine counters with reg
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Config) error {
		metrics, err := NewMetrics(reg)
		if err != nil {
			return fmt.Errorf("currency: register metrics: %w", err)
		}
		c.Metrics = metrics
		return nil
	}
}

// WithDefaultCountry sets the last step of the detection chain
func WithDefaultCountry(country string) Option {
	return func(c *Config) error {
		country = normalizeCountry(country)
		if len(country) != 2 {
			return fmt.Errorf("currency: default country %q is not alpha-2", country)
		}
		c.DefaultCountry = country
		return nil
	}
}

func WithPreferenceKey(key string) Option {
	return func(c *Config) error {
		c.PreferenceKey = key
		return nil
	}
}

func WithGeolocationTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		c.GeolocationTimeout = timeout
		return nil
	}
}

func WithStorageTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		c.StorageTimeout = timeout
		return nil
	}
}

// WithTimezoneCountry maps an IANA zone to a country, overriding the built-in table
func WithTimezoneCountry(zone, country string) Option {
	return func(c *Config) error {
		if zone == "" || country == "" {
			return nil
		}
		if c.timezones == nil {
			c.timezones = make(map[string]string)
		}
		c.timezones[zone] = country
		return nil
	}
}

// WithLanguageCountry maps a base language to a country, overriding the built-in table
func WithLanguageCountry(lang, country string) Option {
	return func(c *Config) error {
		if lang == "" || country == "" {
			return nil
		}
		if c.languages == nil {
			c.languages = make(map[string]string)
		}
		c.languages[lang] = country
		return nil
	}
}

// New builds an Engine from options
func New(opts ...Option) (*Engine, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return cfg.BuildEngine()
}

// BuildEngine loads the reference data, validates it and wires the components
func (c *Config) BuildEngine() (*Engine, error) {
	if c == nil {
		return nil, fmt.Errorf("currency: nil config")
	}

	registry, rates, err := c.loadData()
	if err != nil {
		return nil, err
	}
	if err := rates.validateAgainst(registry); err != nil {
		return nil, fmt.Errorf("currency: rates do not match registry: %w", err)
	}

	logger := c.Logger
	if logger == nil {
		logger = NewLogger()
	}

	countries := NewCountryResolver(c.Signals,
		WithCountryGeocoder(c.Geocoder),
		WithCountryTimeout(c.GeolocationTimeout),
		WithCountryDefault(c.DefaultCountry),
		WithCountryTimezones(c.timezones),
		WithCountryLanguages(c.languages),
		WithCountryLogger(logger),
		WithCountryMetrics(c.Metrics),
	)

	resolver := NewResolver(registry, countries, ResolverOptions{
		Store:          c.Store,
		Key:            c.PreferenceKey,
		Fallback:       rates.Base(),
		StorageTimeout: c.StorageTimeout,
		Logger:         logger,
		Metrics:        c.Metrics,
	})

	return &Engine{
		registry:  registry,
		rates:     rates,
		formatter: NewFormatter(registry),
		converter: NewConverter(rates, logger),
		countries: countries,
		resolver:  resolver,
		logger:    logger,
		metrics:   c.Metrics,
	}, nil
}

func (c *Config) loadData() (*Registry, *RateTable, error) {
	if c.Registry != nil && c.Rates != nil {
		if c.DataPath != "" || len(c.dataOverrides) > 0 {
			return nil, nil, fmt.Errorf("currency: data files cannot be combined with both an explicit registry and rate table")
		}
		return c.Registry, c.Rates, nil
	}

	loader := NewDataLoader(c.DataPath)
	for _, path := range c.dataOverrides {
		loader.AddOverride(path)
	}
	data, err := loader.Load()
	if err != nil {
		return nil, nil, err
	}

	registry := c.Registry
	if registry == nil {
		if registry, err = data.Registry(); err != nil {
			return nil, nil, err
		}
	}

	rates := c.Rates
	if rates == nil {
		if rates, err = data.RateTable(); err != nil {
			return nil, nil, err
		}
	}
	return registry, rates, nil
}
