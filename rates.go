package currency

import (
	"fmt"
	"math"
	"sort"
)

// RateTable holds exchange rates expressed against a single base currency.
// It is read only after construction.
type RateTable struct {
	base  string
	rates map[string]float64
}

// NewRateTable validates rates relative to base. The base rate is added when
// missing and must be exactly 1 when present.
func NewRateTable(base string, rates map[string]float64) (*RateTable, error) {
	base = normalizeCode(base)
	if base == "" {
		return nil, fmt.Errorf("%w: base currency is required", ErrInvalidRate)
	}

	table := make(map[string]float64, len(rates)+1)
	for code, rate := range rates {
		normalized := normalizeCode(code)
		if normalized == "" {
			return nil, fmt.Errorf("%w: empty currency code", ErrInvalidRate)
		}
		if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
			return nil, fmt.Errorf("%w: %s rate %v must be positive and finite", ErrInvalidRate, normalized, rate)
		}
		table[normalized] = rate
	}

	if rate, ok := table[base]; ok && rate != 1 {
		return nil, fmt.Errorf("%w: base %s rate is %v, want 1", ErrInvalidRate, base, rate)
	}
	table[base] = 1

	return &RateTable{base: base, rates: table}, nil
}

// Base returns the currency every rate is normalized against.
func (t *RateTable) Base() string {
	if t == nil {
		return ""
	}
	return t.base
}

// Rate returns the number of units of code per one unit of the base currency.
func (t *RateTable) Rate(code string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	rate, ok := t.rates[normalizeCode(code)]
	return rate, ok
}

// Codes lists the currencies with a known rate, sorted.
func (t *RateTable) Codes() []string {
	if t == nil {
		return nil
	}
	codes := make([]string, 0, len(t.rates))
	for code := range t.rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Rates returns a copy of the underlying table.
func (t *RateTable) Rates() map[string]float64 {
	if t == nil {
		return nil
	}
	out := make(map[string]float64, len(t.rates))
	for code, rate := range t.rates {
		out[code] = rate
	}
	return out
}

func (t *RateTable) validateAgainst(registry *Registry) error {
	if !registry.Has(t.base) {
		return fmt.Errorf("%w: base %q", ErrUnknownCurrency, t.base)
	}
	for _, code := range t.Codes() {
		if !registry.Has(code) {
			return fmt.Errorf("%w: rate for %q", ErrUnknownCurrency, code)
		}
	}
	return nil
}
