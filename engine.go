package currency

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Engine is the public surface used by application code. It composes the
// registry, formatter, converter and resolver and never fails: unknown codes
// and storage problems degrade to plain output or the base currency.
type Engine struct {
	registry  *Registry
	rates     *RateTable
	formatter *Formatter
	converter *Converter
	countries *CountryResolver
	resolver  *Resolver
	logger    logrus.FieldLogger
	metrics   *Metrics
}

// FormatCurrency formats amount in code, or in the user currency when code
// is empty.
func (e *Engine) FormatCurrency(ctx context.Context, amount float64, code string) string {
	if e == nil {
		return plainAmount(amount, normalizeCode(code))
	}
	if code == "" {
		code = e.UserCurrency(ctx)
	}
	return e.format(amount, code, "format")
}

// ConvertAndFormat converts amount from one currency to another and formats
// the result in the target. An empty target means the user currency.
func (e *Engine) ConvertAndFormat(ctx context.Context, amount float64, from, to string) string {
	if e == nil {
		return plainAmount(amount, normalizeCode(to))
	}
	if to == "" {
		to = e.UserCurrency(ctx)
	}
	if !e.registry.Has(from) {
		e.metrics.unknown("convert")
	}
	return e.format(e.converter.Convert(amount, from, to), to, "convert")
}

// SmartFormatCurrency shows a price stored in base in the user currency.
func (e *Engine) SmartFormatCurrency(ctx context.Context, amount float64, base string) string {
	if e == nil {
		return plainAmount(amount, normalizeCode(base))
	}
	if base == "" {
		base = e.rates.Base()
	}
	return e.ConvertAndFormat(ctx, amount, base, "")
}

// Convert converts without formatting or rounding.
func (e *Engine) Convert(amount float64, from, to string) float64 {
	if e == nil {
		return amount
	}
	return e.converter.Convert(amount, from, to)
}

// Format formats amount in code.
func (e *Engine) Format(amount float64, code string) string {
	if e == nil {
		return plainAmount(amount, code)
	}
	return e.format(amount, code, "format")
}

func (e *Engine) format(amount float64, code, site string) string {
	if !e.registry.Has(code) {
		e.metrics.unknown(site)
		e.logger.WithField("currency", code).Debug("formatting unknown currency")
	}
	return e.formatter.Format(amount, code)
}

// Parse reads a formatted amount back.
func (e *Engine) Parse(text, code string) (float64, error) {
	if e == nil {
		return 0, fmt.Errorf("%w: %q: nil engine", ErrUnknownCurrency, code)
	}
	return e.formatter.Parse(text, code)
}

// UserCurrency returns the resolved user currency.
func (e *Engine) UserCurrency(ctx context.Context) string {
	if e == nil {
		return ""
	}
	return e.resolver.Get(ctx)
}

// SetUserCurrency records an explicit choice. Unknown codes are ignored.
func (e *Engine) SetUserCurrency(code string) bool {
	if e == nil {
		return false
	}
	return e.resolver.Set(code)
}

// ResetUserCurrency forgets the stored choice so the next read detects again.
func (e *Engine) ResetUserCurrency(ctx context.Context) error {
	if e == nil {
		return nil
	}
	return e.resolver.Reset(ctx)
}

// DetectCountry runs the country detection chain without touching the
// resolved currency.
func (e *Engine) DetectCountry(ctx context.Context) Detection {
	if e == nil {
		return Detection{Country: DefaultCountry, Source: SourceDefault}
	}
	return e.countries.Detect(ctx)
}

// CurrencyInfo returns the metadata for code. An empty code means the user
// currency if it is already resolved, otherwise the base currency; this
// call never blocks on resolution.
func (e *Engine) CurrencyInfo(code string) (Currency, bool) {
	if e == nil {
		return Currency{}, false
	}
	if code == "" {
		if cached, ok := e.resolver.Cached(); ok {
			code = cached
		} else {
			code = e.rates.Base()
		}
	}
	return e.registry.Lookup(code)
}

// SupportedCurrencies lists every currency ordered by code.
func (e *Engine) SupportedCurrencies() []Currency {
	if e == nil {
		return nil
	}
	return e.registry.All()
}

// CurrenciesByRegion lists the currencies of region ordered by code.
func (e *Engine) CurrenciesByRegion(region Region) []Currency {
	if e == nil {
		return nil
	}
	return e.registry.ByRegion(region)
}

// Regions lists the region tags in use.
func (e *Engine) Regions() []Region {
	if e == nil {
		return nil
	}
	return e.registry.Regions()
}

// BaseCurrency returns the base of the rate table.
func (e *Engine) BaseCurrency() string {
	if e == nil {
		return ""
	}
	return e.rates.Base()
}

// OnCurrencyChange registers fn to run when the user currency changes.
func (e *Engine) OnCurrencyChange(fn func(Currency)) func() {
	if e == nil || fn == nil {
		return func() {}
	}
	return e.resolver.OnChange(func(code string) {
		if entry, ok := e.registry.Lookup(code); ok {
			fn(entry)
		}
	})
}

// Registry exposes the underlying registry.
func (e *Engine) Registry() *Registry {
	if e == nil {
		return nil
	}
	return e.registry
}

// Rates exposes the underlying rate table.
func (e *Engine) Rates() *RateTable {
	if e == nil {
		return nil
	}
	return e.rates
}

// Close waits for pending preference writes. It is safe to call more than
// once.
func (e *Engine) Close() error {
	if e == nil {
		return nil
	}
	return e.resolver.Close()
}
