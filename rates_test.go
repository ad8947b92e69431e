package currency

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateTableInsertsBase(t *testing.T) {
	table, err := NewRateTable("usd", map[string]float64{"eur": 0.92})
	require.NoError(t, err)

	assert.Equal(t, "USD", table.Base())
	rate, ok := table.Rate("USD")
	require.True(t, ok)
	assert.Equal(t, 1.0, rate)

	rate, ok = table.Rate("EUR")
	require.True(t, ok)
	assert.Equal(t, 0.92, rate)

	assert.Equal(t, []string{"EUR", "USD"}, table.Codes())
}

func TestNewRateTableRejectsInvalidRates(t *testing.T) {
	cases := []struct {
		name  string
		base  string
		rates map[string]float64
	}{
		{"no base", "", map[string]float64{"EUR": 1}},
		{"zero", "USD", map[string]float64{"EUR": 0}},
		{"negative", "USD", map[string]float64{"EUR": -1}},
		{"nan", "USD", map[string]float64{"EUR": math.NaN()}},
		{"inf", "USD", map[string]float64{"EUR": math.Inf(1)}},
		{"base not one", "USD", map[string]float64{"USD": 1.1}},
		{"empty code", "USD", map[string]float64{" ": 2}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRateTable(tc.base, tc.rates)
			assert.ErrorIs(t, err, ErrInvalidRate)
		})
	}
}

func TestRateTableRatesReturnsCopy(t *testing.T) {
	table, err := NewRateTable("USD", map[string]float64{"EUR": 0.92})
	require.NoError(t, err)

	rates := table.Rates()
	rates["EUR"] = 5

	rate, _ := table.Rate("EUR")
	assert.Equal(t, 0.92, rate)
}

func TestRateTableValidateAgainstRegistry(t *testing.T) {
	registry, err := NewRegistry([]Currency{usd(), eur()})
	require.NoError(t, err)

	ok, err := NewRateTable("USD", map[string]float64{"EUR": 0.92})
	require.NoError(t, err)
	assert.NoError(t, ok.validateAgainst(registry))

	extra, err := NewRateTable("USD", map[string]float64{"GBP": 0.79})
	require.NoError(t, err)
	assert.ErrorIs(t, extra.validateAgainst(registry), ErrUnknownCurrency)

	badBase, err := NewRateTable("GBP", nil)
	require.NoError(t, err)
	assert.ErrorIs(t, badBase.validateAgainst(registry), ErrUnknownCurrency)
}

func TestDefaultRatesCoverRegistry(t *testing.T) {
	rates := DefaultRates()
	registry := DefaultRegistry()

	assert.Equal(t, "USD", rates.Base())
	require.NoError(t, rates.validateAgainst(registry))
	for _, code := range registry.Codes() {
		_, ok := rates.Rate(code)
		assert.True(t, ok, "missing rate for %s", code)
	}
}
