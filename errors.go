package currency

import "errors"

// ErrUnknownCurrency indicates that a currency code is not present in the registry.
var ErrUnknownCurrency = errors.New("currency: unknown currency code")

// ErrInvalidCurrency marks a registry definition that breaks a formatting invariant.
var ErrInvalidCurrency = errors.New("currency: invalid currency definition")

// ErrInvalidRegistry marks registry level problems (duplicates, empty data).
var ErrInvalidRegistry = errors.New("currency: invalid registry")

// ErrInvalidRate marks a non positive, non finite or inconsistent exchange rate.
var ErrInvalidRate = errors.New("currency: invalid exchange rate")

// ErrInvalidAmount is returned by Parse when the text is not a formatted amount.
var ErrInvalidAmount = errors.New("currency: invalid amount")

// ErrSignalUnavailable reports a signal source that could not produce a value
// (permission denied, unsupported platform, timeout).
var ErrSignalUnavailable = errors.New("currency: signal unavailable")

// ErrCountryNotFound is returned when a signal was read but maps to no country.
var ErrCountryNotFound = errors.New("currency: country not found")
