package currency

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
)

// Registry is an immutable snapshot of the supported currencies.
type Registry struct {
	currencies map[string]Currency
	codes      []string
	countries  map[string]string
	regions    map[Region][]string
}

// NewRegistry validates the definitions and builds a read only registry.
func NewRegistry(definitions []Currency) (*Registry, error) {
	if len(definitions) == 0 {
		return nil, fmt.Errorf("%w: no currencies defined", ErrInvalidRegistry)
	}

	currencies := make(map[string]Currency, len(definitions))
	countries := make(map[string]string)
	regions := make(map[Region][]string)

	for _, definition := range definitions {
		entry, err := normalizeDefinition(definition)
		if err != nil {
			return nil, err
		}
		if _, exists := currencies[entry.Code]; exists {
			return nil, fmt.Errorf("%w: duplicate currency %q", ErrInvalidRegistry, entry.Code)
		}

		for _, country := range entry.CountryCodes {
			if owner, claimed := countries[country]; claimed {
				return nil, fmt.Errorf("%w: country %q claimed by %q and %q", ErrInvalidRegistry, country, owner, entry.Code)
			}
			countries[country] = entry.Code
		}

		currencies[entry.Code] = entry
		if entry.Region != "" {
			regions[entry.Region] = append(regions[entry.Region], entry.Code)
		}
	}

	codes := make([]string, 0, len(currencies))
	for code := range currencies {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for region := range regions {
		sort.Strings(regions[region])
	}

	return &Registry{
		currencies: currencies,
		codes:      codes,
		countries:  countries,
		regions:    regions,
	}, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func normalizeDefinition(definition Currency) (Currency, error) {
	entry := definition.Clone()
	entry.Code = normalizeCode(entry.Code)
	if entry.SymbolPosition == "" {
		entry.SymbolPosition = SymbolBefore
	}

	seen := make(map[string]struct{}, len(entry.CountryCodes))
	countries := make([]string, 0, len(entry.CountryCodes))
	for _, country := range entry.CountryCodes {
		country = normalizeCountry(country)
		if _, dup := seen[country]; dup {
			continue
		}
		seen[country] = struct{}{}
		countries = append(countries, country)
	}
	sort.Strings(countries)
	entry.CountryCodes = countries

	if err := validate.Struct(entry); err != nil {
		return Currency{}, fmt.Errorf("%w: %s", ErrInvalidCurrency, describeValidation(entry.Code, err))
	}
	return entry, nil
}

func describeValidation(code string, err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err.Error()
	}
	field := fieldErrs[0]
	return fmt.Sprintf("%q field %s fails %q (value %v)", code, field.Namespace(), field.Tag(), field.Value())
}

// Lookup returns the currency for code. The code is matched case-insensitively.
func (r *Registry) Lookup(code string) (Currency, bool) {
	if r == nil {
		return Currency{}, false
	}
	entry, ok := r.currencies[normalizeCode(code)]
	if !ok {
		return Currency{}, false
	}
	return entry.Clone(), true
}

// Has reports whether code is registered.
func (r *Registry) Has(code string) bool {
	if r == nil {
		return false
	}
	_, ok := r.currencies[normalizeCode(code)]
	return ok
}

// Len returns the number of registered currencies.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.codes)
}

// All returns every currency ordered by code.
func (r *Registry) All() []Currency {
	if r == nil {
		return nil
	}
	return r.collect(r.codes)
}

// Codes returns every registered code, sorted.
func (r *Registry) Codes() []string {
	if r == nil || len(r.codes) == 0 {
		return nil
	}
	out := make([]string, len(r.codes))
	copy(out, r.codes)
	return out
}

// ByRegion returns the currencies tagged with region, ordered by code.
func (r *Registry) ByRegion(region Region) []Currency {
	if r == nil {
		return nil
	}
	return r.collect(r.regions[region])
}

// Regions returns the distinct region tags in use, sorted.
func (r *Registry) Regions() []Region {
	if r == nil || len(r.regions) == 0 {
		return nil
	}
	out := make([]Region, 0, len(r.regions))
	for region := range r.regions {
		out = append(out, region)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CurrencyForCountry maps an ISO 3166-1 alpha-2 country to its currency code.
func (r *Registry) CurrencyForCountry(country string) (string, bool) {
	if r == nil {
		return "", false
	}
	code, ok := r.countries[normalizeCountry(country)]
	return code, ok
}

func (r *Registry) collect(codes []string) []Currency {
	out := make([]Currency, 0, len(codes))
	for _, code := range codes {
		out = append(out, r.currencies[code].Clone())
	}
	return out
}
