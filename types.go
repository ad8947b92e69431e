package currency

import "strings"

// SymbolPosition places the currency symbol relative to the number.
type SymbolPosition string

const (
	SymbolBefore SymbolPosition = "before"
	SymbolAfter  SymbolPosition = "after"
)

// Region is a coarse geographic tag used to filter currency pickers.
type Region string

const (
	RegionAmericas   Region = "americas"
	RegionEurope     Region = "europe"
	RegionAsia       Region = "asia"
	RegionMiddleEast Region = "middle_east"
	RegionAfrica     Region = "africa"
	RegionOceania    Region = "oceania"
)

// Currency holds the formatting metadata for a single ISO 4217 currency.
type Currency struct {
	Code             string         `json:"code" yaml:"code" validate:"required,len=3,iso4217"`
	Name             string         `json:"name" yaml:"name"`
	Symbol           string         `json:"symbol" yaml:"symbol" validate:"required"`
	Decimals         int            `json:"decimals" yaml:"decimals" validate:"min=0,max=8"`
	SymbolPosition   SymbolPosition `json:"symbol_position" yaml:"symbol_position" validate:"oneof=before after"`
	DecimalSeparator string         `json:"decimal_separator" yaml:"decimal_separator" validate:"len=1,nefield=GroupSeparator"`
	GroupSeparator   string         `json:"group_separator" yaml:"group_separator" validate:"len=1"`
	CountryCodes     []string       `json:"countries" yaml:"countries" validate:"dive,iso3166_1_alpha2"`
	Region           Region         `json:"region" yaml:"region" validate:"omitempty,oneof=americas europe asia middle_east africa oceania"`
}

// Clone returns a copy that does not share the country slice.
func (c Currency) Clone() Currency {
	out := c
	if len(c.CountryCodes) > 0 {
		out.CountryCodes = append([]string(nil), c.CountryCodes...)
	}
	return out
}

// UsedIn reports whether the currency is legal tender in the given country.
func (c Currency) UsedIn(country string) bool {
	country = normalizeCountry(country)
	for _, candidate := range c.CountryCodes {
		if candidate == country {
			return true
		}
	}
	return false
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func normalizeCountry(country string) string {
	return strings.ToUpper(strings.TrimSpace(country))
}
