package currency

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Converter converts amounts through a base anchored rate table.
// Results are not rounded; rounding happens when the amount is formatted.
type Converter struct {
	rates  *RateTable
	logger logrus.FieldLogger
}

// NewConverter creates a converter backed by rates.
func NewConverter(rates *RateTable, logger logrus.FieldLogger) *Converter {
	if logger == nil {
		logger = NewLogger()
	}
	return &Converter{rates: rates, logger: logger}
}

// Convert returns amount expressed in to. Codes without a rate are treated as
// having a rate of 1, so the call never fails; use ConvertStrict to detect them.
func (c *Converter) Convert(amount float64, from, to string) float64 {
	from, to = normalizeCode(from), normalizeCode(to)
	if from == to {
		return amount
	}
	return amount / c.rateOrOne(from) * c.rateOrOne(to)
}

// ConvertStrict behaves like Convert but rejects codes missing from the table.
func (c *Converter) ConvertStrict(amount float64, from, to string) (float64, error) {
	from, to = normalizeCode(from), normalizeCode(to)
	if from == to {
		if _, ok := c.rates.Rate(from); !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownCurrency, from)
		}
		return amount, nil
	}

	fromRate, ok := c.rates.Rate(from)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCurrency, from)
	}
	toRate, ok := c.rates.Rate(to)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCurrency, to)
	}
	return amount / fromRate * toRate, nil
}

// Rate returns the cross rate, units of to per unit of from.
func (c *Converter) Rate(from, to string) float64 {
	from, to = normalizeCode(from), normalizeCode(to)
	if from == to {
		return 1
	}
	return c.rateOrOne(to) / c.rateOrOne(from)
}

// Base returns the base currency of the rate table.
func (c *Converter) Base() string {
	return c.rates.Base()
}

func (c *Converter) rateOrOne(code string) float64 {
	if rate, ok := c.rates.Rate(code); ok {
		return rate
	}
	c.logger.WithField("currency", code).Debug("no exchange rate, assuming 1")
	return 1
}
