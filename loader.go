package currency

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/currencies.json
var defaultCurrenciesJSON []byte

//go:embed data/rates.json
var defaultRatesJSON []byte

// Data is the raw reference data used to build a Registry and a RateTable.
type Data struct {
	Currencies []Currency         `json:"currencies,omitempty" yaml:"currencies,omitempty"`
	Base       string             `json:"base,omitempty" yaml:"base,omitempty"`
	Rates      map[string]float64 `json:"rates,omitempty" yaml:"rates,omitempty"`
}

// Registry builds a validated registry from the currency definitions.
func (d *Data) Registry() (*Registry, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: no data", ErrInvalidRegistry)
	}
	return NewRegistry(d.Currencies)
}

// RateTable builds a validated rate table from the base and rates.
func (d *Data) RateTable() (*RateTable, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: no data", ErrInvalidRate)
	}
	return NewRateTable(d.Base, d.Rates)
}

// DataLoader reads the embedded reference data and merges user files on top.
type DataLoader struct {
	path      string
	overrides []string
}

// NewDataLoader creates a loader. An empty path loads only the embedded data.
func NewDataLoader(path string) *DataLoader {
	return &DataLoader{path: path}
}

// AddOverride queues another data file, applied after the main path in order.
func (l *DataLoader) AddOverride(path string) {
	if path == "" {
		return
	}
	l.overrides = append(l.overrides, path)
}

// Load decodes the embedded defaults and merges configured files over them.
func (l *DataLoader) Load() (*Data, error) {
	var data Data
	if err := json.Unmarshal(defaultCurrenciesJSON, &data); err != nil {
		return nil, fmt.Errorf("parse default currencies: %w", err)
	}

	var rates Data
	if err := json.Unmarshal(defaultRatesJSON, &rates); err != nil {
		return nil, fmt.Errorf("parse default rates: %w", err)
	}
	mergeData(&data, &rates)

	paths := make([]string, 0, len(l.overrides)+1)
	if l.path != "" {
		paths = append(paths, l.path)
	}
	paths = append(paths, l.overrides...)

	for _, path := range paths {
		source, err := readDataFile(path)
		if err != nil {
			return nil, err
		}
		mergeData(&data, source)
	}

	return &data, nil
}

func readDataFile(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load currency data: %w", err)
	}

	var data Data
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("parse currency data %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("parse currency data %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("currency data %s: unsupported extension %s", path, ext)
	}
	return &data, nil
}

// mergeData merges source into dest, source entries win by currency code.
func mergeData(dest, source *Data) {
	if source == nil {
		return
	}

	if len(source.Currencies) > 0 {
		index := make(map[string]int, len(dest.Currencies))
		for i, entry := range dest.Currencies {
			index[normalizeCode(entry.Code)] = i
		}
		for _, entry := range source.Currencies {
			code := normalizeCode(entry.Code)
			if i, ok := index[code]; ok {
				dest.Currencies[i] = entry
				continue
			}
			index[code] = len(dest.Currencies)
			dest.Currencies = append(dest.Currencies, entry)
		}
	}

	if source.Base != "" {
		dest.Base = source.Base
	}

	if len(source.Rates) > 0 {
		if dest.Rates == nil {
			dest.Rates = make(map[string]float64, len(source.Rates))
		}
		for code, rate := range source.Rates {
			dest.Rates[normalizeCode(code)] = rate
		}
	}
}

// DefaultData returns the embedded reference data.
func DefaultData() *Data {
	data, err := NewDataLoader("").Load()
	if err != nil {
		panic(fmt.Sprintf("currency: embedded data is corrupt: %v", err))
	}
	return data
}

// DefaultRegistry returns a registry built from the embedded reference data.
func DefaultRegistry() *Registry {
	registry, err := DefaultData().Registry()
	if err != nil {
		panic(fmt.Sprintf("currency: embedded registry is invalid: %v", err))
	}
	return registry
}

// DefaultRates returns the embedded USD based rate table.
func DefaultRates() *RateTable {
	rates, err := DefaultData().RateTable()
	if err != nil {
		panic(fmt.Sprintf("currency: embedded rates are invalid: %v", err))
	}
	return rates
}
