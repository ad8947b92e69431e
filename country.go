package currency

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
)

const (
	DefaultCountry            = "US"
	DefaultGeolocationTimeout = 3 * time.Second
)

// SignalSource names the step of the detection chain that produced a country.
type SignalSource string

const (
	SourceGeolocation SignalSource = "geolocation"
	SourceTimezone    SignalSource = "timezone"
	SourceLanguage    SignalSource = "language"
	SourceDefault     SignalSource = "default"
)

// Detection is the outcome of a country lookup.
type Detection struct {
	Country string
	Source  SignalSource
}

// CountryResolver guesses the user's country from environment signals.
// Steps are tried in order and the first confident answer wins:
// geolocation, timezone, language, then the default country.
type CountryResolver struct {
	signals        Signals
	geocoder       ReverseGeocoder
	timeout        time.Duration
	timezones      map[string]string
	languages      map[string]string
	defaultCountry string
	logger         logrus.FieldLogger
	metrics        *Metrics
}

// CountryOption customizes a CountryResolver.
type CountryOption func(*CountryResolver)

// WithCountryGeocoder enables the geolocation step.
func WithCountryGeocoder(geocoder ReverseGeocoder) CountryOption {
	return func(r *CountryResolver) {
		r.geocoder = geocoder
	}
}

// WithCountryTimeout bounds the geolocation step.
func WithCountryTimeout(timeout time.Duration) CountryOption {
	return func(r *CountryResolver) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// WithCountryDefault sets the country used when every signal fails.
func WithCountryDefault(country string) CountryOption {
	return func(r *CountryResolver) {
		if country = normalizeCountry(country); len(country) == 2 {
			r.defaultCountry = country
		}
	}
}

// WithCountryTimezones merges extra IANA zone to country entries over the
// built-in table.
func WithCountryTimezones(entries map[string]string) CountryOption {
	return func(r *CountryResolver) {
		r.timezones = mergeTable(r.timezones, entries, normalizeCountry)
	}
}

// WithCountryLanguages merges extra base language to country entries over the
// built-in table.
func WithCountryLanguages(entries map[string]string) CountryOption {
	return func(r *CountryResolver) {
		r.languages = mergeTable(r.languages, entries, normalizeCountry)
	}
}

// WithCountryLogger sets the logger.
func WithCountryLogger(logger logrus.FieldLogger) CountryOption {
	return func(r *CountryResolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithCountryMetrics counts detections by source.
func WithCountryMetrics(metrics *Metrics) CountryOption {
	return func(r *CountryResolver) {
		r.metrics = metrics
	}
}

// NewCountryResolver creates a resolver reading from signals. A nil signals
// value behaves as if every signal were unavailable.
func NewCountryResolver(signals Signals, opts ...CountryOption) *CountryResolver {
	if signals == nil {
		signals = StaticSignals{}
	}
	r := &CountryResolver{
		signals:        signals,
		timeout:        DefaultGeolocationTimeout,
		timezones:      timezoneCountries,
		languages:      languageCountries,
		defaultCountry: DefaultCountry,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.logger == nil {
		r.logger = NewLogger()
	}
	return r
}

// Resolve returns an ISO 3166-1 alpha-2 country. It never fails.
func (r *CountryResolver) Resolve(ctx context.Context) string {
	return r.Detect(ctx).Country
}

// Detect is Resolve plus the signal that decided.
func (r *CountryResolver) Detect(ctx context.Context) Detection {
	if r == nil {
		return Detection{Country: DefaultCountry, Source: SourceDefault}
	}

	if country, ok := r.fromGeolocation(ctx); ok {
		return r.detected(country, SourceGeolocation)
	}
	if country, ok := r.fromTimezone(r.signals.Timezone()); ok {
		return r.detected(country, SourceTimezone)
	}
	if country, ok := r.fromLanguage(r.signals.LanguageTag()); ok {
		return r.detected(country, SourceLanguage)
	}
	return r.detected(r.defaultCountry, SourceDefault)
}

func (r *CountryResolver) detected(country string, source SignalSource) Detection {
	r.metrics.detection(source)
	r.logger.WithFields(logrus.Fields{
		"country": country,
		"source":  source,
	}).Debug("country detected")
	return Detection{Country: country, Source: source}
}

type geoResult struct {
	country string
	err     error
}

func (r *CountryResolver) fromGeolocation(ctx context.Context) (string, bool) {
	if r.geocoder == nil {
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	done := make(chan geoResult, 1)
	go func() {
		pos, err := r.signals.Position(ctx)
		if err != nil {
			done <- geoResult{err: err}
			return
		}
		country, err := r.geocoder.Country(ctx, pos)
		done <- geoResult{country: country, err: err}
	}()

	select {
	case <-ctx.Done():
		r.logger.WithError(ctx.Err()).Debug("geolocation timed out")
		return "", false
	case res := <-done:
		if res.err != nil {
			r.logger.WithError(res.err).Debug("geolocation unavailable")
			return "", false
		}
		country := normalizeCountry(res.country)
		if len(country) != 2 {
			return "", false
		}
		return country, true
	}
}

func (r *CountryResolver) fromTimezone(zone string) (string, bool) {
	zone = strings.TrimSpace(zone)
	if zone == "" {
		return "", false
	}
	country, ok := r.timezones[zone]
	return country, ok
}

func (r *CountryResolver) fromLanguage(raw string) (string, bool) {
	tag, ok := parseLanguageTag(raw)
	if !ok {
		return "", false
	}

	if region, confidence := tag.Region(); confidence == language.Exact && region.IsCountry() {
		return region.String(), true
	}

	base, _ := tag.Base()
	country, ok := r.languages[base.String()]
	return country, ok
}

// parseLanguageTag accepts BCP 47 tags and POSIX locale names such as
// "de_DE.UTF-8" or "sr_RS@latin".
func parseLanguageTag(raw string) (language.Tag, bool) {
	value := strings.TrimSpace(raw)
	if idx := strings.IndexAny(value, ".@"); idx >= 0 {
		value = value[:idx]
	}
	value = strings.ReplaceAll(value, "_", "-")
	if value == "" {
		return language.Und, false
	}

	tag, err := language.Parse(value)
	if err != nil || tag == language.Und {
		return language.Und, false
	}
	return tag, true
}

func mergeTable(base, extra map[string]string, normalize func(string) string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range extra {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		out[key] = normalize(value)
	}
	return out
}
