package currency

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Formatter renders amounts using the registry's per currency conventions.
// It holds no mutable state and is safe for concurrent use.
type Formatter struct {
	registry *Registry
}

// NewFormatter creates a formatter backed by registry.
func NewFormatter(registry *Registry) *Formatter {
	return &Formatter{registry: registry}
}

// Format renders amount in the currency identified by code.
//
// Amounts are rounded half away from zero to the currency's decimals, so
// 1.005 USD renders as "$1.01" and -2.5 JPY as "-¥3". Unknown codes and
// non finite amounts degrade to "<amount> <code>".
func (f *Formatter) Format(amount float64, code string) string {
	entry, ok := f.lookup(code)
	if !ok || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return plainAmount(amount, code)
	}

	rounded := decimal.NewFromFloat(amount).Round(int32(entry.Decimals))
	digits := rounded.Abs().StringFixed(int32(entry.Decimals))

	integer, fraction, _ := strings.Cut(digits, ".")
	number := groupDigits(integer, entry.GroupSeparator)
	if entry.Decimals > 0 {
		number += entry.DecimalSeparator + fraction
	}

	sign := ""
	if rounded.Sign() < 0 {
		sign = "-"
	}

	if entry.SymbolPosition == SymbolAfter {
		return sign + number + " " + entry.Symbol
	}
	return sign + entry.Symbol + number
}

// Parse reads a string produced by Format back into a number. The result is
// the formatted value, that is the original amount rounded to the currency's
// decimals. Text must follow the currency's own convention: digit groups of
// three and no more fraction digits than the currency allows.
func (f *Formatter) Parse(text, code string) (float64, error) {
	entry, ok := f.lookup(code)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}

	value := strings.TrimSpace(text)
	negative := strings.HasPrefix(value, "-")
	if negative {
		value = strings.TrimSpace(strings.TrimPrefix(value, "-"))
	}

	switch {
	case strings.HasPrefix(value, entry.Symbol):
		value = strings.TrimPrefix(value, entry.Symbol)
	case strings.HasSuffix(value, entry.Symbol):
		value = strings.TrimSuffix(value, entry.Symbol)
	}
	value = strings.TrimSpace(value)

	if !negative && strings.HasPrefix(value, "-") {
		negative = true
		value = strings.TrimPrefix(value, "-")
	}

	integer, fraction, hasFraction := strings.Cut(value, entry.DecimalSeparator)
	if !validGrouping(integer, entry.GroupSeparator) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, text)
	}
	number := strings.ReplaceAll(integer, entry.GroupSeparator, "")
	if hasFraction {
		if len(fraction) > entry.Decimals || !allDigits(fraction) {
			return 0, fmt.Errorf("%w: %q: expected at most %d fraction digits", ErrInvalidAmount, text, entry.Decimals)
		}
		number += "." + fraction
	}

	parsed, err := decimal.NewFromString(number)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, text, err)
	}
	if negative {
		parsed = parsed.Neg()
	}

	result, _ := parsed.Float64()
	return result, nil
}

// validGrouping accepts plain digits or digit groups of three separated by
// sep, with a leading group of one to three digits.
func validGrouping(integer, sep string) bool {
	if !strings.Contains(integer, sep) {
		return allDigits(integer)
	}
	for i, group := range strings.Split(integer, sep) {
		if !allDigits(group) {
			return false
		}
		if i == 0 && len(group) > 3 || i > 0 && len(group) != 3 {
			return false
		}
	}
	return true
}

func allDigits(value string) bool {
	if value == "" {
		return false
	}
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}

func (f *Formatter) lookup(code string) (Currency, bool) {
	if f == nil {
		return Currency{}, false
	}
	return f.registry.Lookup(code)
}

// plainAmount is the degraded rendering used when no metadata is available.
func plainAmount(amount float64, code string) string {
	return strconv.FormatFloat(amount, 'f', -1, 64) + " " + code
}

// groupDigits inserts sep every three digits counting from the right.
func groupDigits(integer, sep string) string {
	if len(integer) <= 3 || sep == "" {
		return integer
	}

	var builder strings.Builder
	builder.Grow(len(integer) + (len(integer)/3)*len(sep))
	for i, digit := range integer {
		if i > 0 && (len(integer)-i)%3 == 0 {
			builder.WriteString(sep)
		}
		builder.WriteRune(digit)
	}
	return builder.String()
}
