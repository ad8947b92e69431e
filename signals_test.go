package currency

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestStaticSignals(t *testing.T) {
	pos := Position{Latitude: 52.52, Longitude: 13.405}
	signals := StaticSignals{Location: &pos, TimeZone: "Europe/Berlin", Language: "de-DE"}

	got, err := signals.Position(context.Background())
	require.NoError(t, err)
	assert.Equal(t, pos, got)
	assert.Equal(t, "Europe/Berlin", signals.Timezone())
	assert.Equal(t, "de-DE", signals.LanguageTag())

	_, err = StaticSignals{}.Position(context.Background())
	assert.ErrorIs(t, err, ErrSignalUnavailable)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = signals.Position(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSystemSignalsTimezoneFromEnv(t *testing.T) {
	cases := map[string]string{
		"Europe/Paris":                       "Europe/Paris",
		":Asia/Tokyo":                        "Asia/Tokyo",
		"/usr/share/zoneinfo/America/Denver": "America/Denver",
	}
	for tz, want := range cases {
		signals := SystemSignals{Getenv: envMap(map[string]string{"TZ": tz})}
		assert.Equal(t, want, signals.Timezone(), tz)
	}
}

func TestSystemSignalsTimezoneFromLocal(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	signals := SystemSignals{Getenv: envMap(nil), Local: loc}
	assert.Equal(t, "Asia/Tokyo", signals.Timezone())
}

func TestSystemSignalsTimezoneFromLocaltimeLink(t *testing.T) {
	dir := t.TempDir()
	link := filepath.Join(dir, "localtime")
	if err := os.Symlink("/usr/share/zoneinfo/Europe/Berlin", link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	signals := SystemSignals{Getenv: envMap(nil), Local: time.UTC, LocaltimePath: link}
	assert.Equal(t, "Europe/Berlin", signals.Timezone())

	missing := SystemSignals{Getenv: envMap(nil), Local: time.UTC, LocaltimePath: filepath.Join(dir, "nope")}
	assert.Equal(t, "", missing.Timezone())
}

func TestSystemSignalsLanguagePrecedence(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"lc_all wins", map[string]string{"LC_ALL": "fr_FR.UTF-8", "LC_MONETARY": "de_DE", "LANG": "en_US"}, "fr_FR.UTF-8"},
		{"monetary before lang", map[string]string{"LC_MONETARY": "de_DE", "LANG": "en_US"}, "de_DE"},
		{"lang", map[string]string{"LANG": "ja_JP.UTF-8"}, "ja_JP.UTF-8"},
		{"skips posix", map[string]string{"LC_ALL": "C", "LANG": "POSIX"}, ""},
		{"skips c", map[string]string{"LC_ALL": "C", "LANG": "pt_BR"}, "pt_BR"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			signals := SystemSignals{Getenv: envMap(tc.env)}
			assert.Equal(t, tc.want, signals.LanguageTag())
		})
	}
}

func TestSystemSignalsHasNoPosition(t *testing.T) {
	_, err := SystemSignals{}.Position(context.Background())
	assert.ErrorIs(t, err, ErrSignalUnavailable)
}

func TestPositionValid(t *testing.T) {
	assert.True(t, Position{Latitude: 0, Longitude: 0}.Valid())
	assert.True(t, Position{Latitude: -90, Longitude: 180}.Valid())
	assert.False(t, Position{Latitude: 91}.Valid())
	assert.False(t, Position{Longitude: -181}.Valid())
}
