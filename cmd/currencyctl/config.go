package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type settings struct {
	Store          string
	StorePath      string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	DatabaseURL    string
	Breaker        bool
	DataPath       string
	DefaultCountry string
	GeoTimeout     time.Duration
	PreferenceKey  string
}

// loadSettings reads the optional env file, then the process environment.
// Real environment variables win over the file.
func loadSettings(envFile string) (settings, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return settings{}, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	v := viper.New()
	v.SetDefault("CURRENCY_STORE", "file")
	v.SetDefault("CURRENCY_STORE_PATH", defaultStorePath())
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("CURRENCY_BREAKER", true)
	v.SetDefault("CURRENCY_DATA", "")
	v.SetDefault("CURRENCY_DEFAULT_COUNTRY", "US")
	v.SetDefault("CURRENCY_GEO_TIMEOUT", "3s")
	v.SetDefault("CURRENCY_PREFERENCE_KEY", "userCurrency")
	v.AutomaticEnv()

	cfg := settings{
		Store:          strings.ToLower(strings.TrimSpace(v.GetString("CURRENCY_STORE"))),
		StorePath:      v.GetString("CURRENCY_STORE_PATH"),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		RedisPassword:  v.GetString("REDIS_PASSWORD"),
		RedisDB:        v.GetInt("REDIS_DB"),
		DatabaseURL:    v.GetString("PGSQL_URL"),
		Breaker:        v.GetBool("CURRENCY_BREAKER"),
		DataPath:       v.GetString("CURRENCY_DATA"),
		DefaultCountry: v.GetString("CURRENCY_DEFAULT_COUNTRY"),
		PreferenceKey:  v.GetString("CURRENCY_PREFERENCE_KEY"),
	}

	timeout, err := time.ParseDuration(v.GetString("CURRENCY_GEO_TIMEOUT"))
	if err != nil {
		return settings{}, fmt.Errorf("invalid CURRENCY_GEO_TIMEOUT: %w", err)
	}
	cfg.GeoTimeout = timeout

	switch cfg.Store {
	case "file", "memory", "redis", "postgres":
	default:
		return settings{}, fmt.Errorf("unknown CURRENCY_STORE %q (want file, memory, redis or postgres)", cfg.Store)
	}
	if cfg.Store == "postgres" && cfg.DatabaseURL == "" {
		return settings{}, fmt.Errorf("CURRENCY_STORE=postgres requires PGSQL_URL")
	}

	return cfg, nil
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = "."
	}
	return filepath.Join(dir, "currencyctl", "preferences.json")
}
