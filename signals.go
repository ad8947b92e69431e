package currency

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Position is a WGS84 coordinate reported by a geolocation capability.
type Position struct {
	Latitude  float64
	Longitude float64
}

// Valid reports whether the coordinate is inside the WGS84 range.
func (p Position) Valid() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}

// Signals exposes the environment inputs used to guess the user's country.
// Implementations adapt platform APIs; the fallback algorithm stays in CountryResolver.
type Signals interface {
	// Position returns the device position or ErrSignalUnavailable when
	// permission is denied or the capability is missing.
	Position(ctx context.Context) (Position, error)
	// Timezone returns an IANA identifier such as "Europe/Berlin", or "".
	Timezone() string
	// LanguageTag returns a BCP 47 style tag such as "de-DE", or "".
	LanguageTag() string
}

// StaticSignals serves fixed values. Useful for tests and for servers that
// read the signals from a request.
type StaticSignals struct {
	Location    *Position
	TimeZone    string
	Language    string
	PositionErr error
}

var _ Signals = StaticSignals{}

func (s StaticSignals) Position(ctx context.Context) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	if s.PositionErr != nil {
		return Position{}, s.PositionErr
	}
	if s.Location == nil {
		return Position{}, ErrSignalUnavailable
	}
	return *s.Location, nil
}

func (s StaticSignals) Timezone() string    { return s.TimeZone }
func (s StaticSignals) LanguageTag() string { return s.Language }

// SystemSignals reads the process environment. It has no geolocation.
type SystemSignals struct {
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
	// LocaltimePath defaults to /etc/localtime.
	LocaltimePath string
	// Local defaults to time.Local.
	Local *time.Location
}

var _ Signals = SystemSignals{}

func (s SystemSignals) Position(context.Context) (Position, error) {
	return Position{}, fmt.Errorf("%w: no geolocation on this platform", ErrSignalUnavailable)
}

// Timezone checks TZ, then the name of the local zone, then the target of
// the /etc/localtime symlink.
func (s SystemSignals) Timezone() string {
	if tz := strings.TrimPrefix(strings.TrimSpace(s.getenv("TZ")), ":"); tz != "" {
		if idx := strings.Index(tz, "zoneinfo/"); idx >= 0 {
			tz = tz[idx+len("zoneinfo/"):]
		}
		return tz
	}

	local := s.Local
	if local == nil {
		local = time.Local
	}
	if name := local.String(); name != "" && name != "Local" && name != "UTC" {
		return name
	}

	path := s.LocaltimePath
	if path == "" {
		path = "/etc/localtime"
	}
	target, err := os.Readlink(path)
	if err != nil {
		return ""
	}
	target = filepath.ToSlash(target)
	if idx := strings.Index(target, "zoneinfo/"); idx >= 0 {
		return target[idx+len("zoneinfo/"):]
	}
	return ""
}

// LanguageTag follows POSIX precedence: LC_ALL, LC_MONETARY, LANG.
func (s SystemSignals) LanguageTag() string {
	for _, key := range []string{"LC_ALL", "LC_MONETARY", "LANG"} {
		value := strings.TrimSpace(s.getenv(key))
		if value == "" || value == "C" || value == "POSIX" {
			continue
		}
		return value
	}
	return ""
}

func (s SystemSignals) getenv(key string) string {
	if s.Getenv != nil {
		return s.Getenv(key)
	}
	return os.Getenv(key)
}
