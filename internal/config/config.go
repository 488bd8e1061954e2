package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/map-point-info/internal/locale"
)

type AppConfig struct {
	OpenWeatherAPIKey string
	GeoNamesUsername  string

	// NominatimUserAgent identifies this app to Nominatim, as its usage policy requires.
	NominatimUserAgent string

	// Locale drives the time layout, status markers, weather language and table files.
	Locale locale.Locale

	// AssetsDir holds currency_<lang>.json and language_<lang>.json; empty uses the embedded copies.
	AssetsDir string

	// HTTPTimeout for outbound provider calls (0 = transport default, no explicit timeout).
	HTTPTimeout time.Duration

	// Session retention.
	SessionMaxIdle       time.Duration // idle sessions older than this are swept (0 = never)
	SessionSweepInterval time.Duration

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.GeoNamesUsername = os.Getenv("GEONAMES_USERNAME")
	cfg.NominatimUserAgent = getenvDefault("NOMINATIM_USER_AGENT", "map-point-info")
	cfg.AssetsDir = os.Getenv("ASSETS_DIR")
	cfg.Port = getenvDefault("PORT", "8080")

	loc, err := locale.Parse(getenvDefault("DISPLAY_LOCALE", "ja"))
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_LOCALE: %w", err)
	}
	cfg.Locale = loc

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "0s"); err != nil {
		return nil, err
	}
	if cfg.SessionMaxIdle, err = getenvDuration("SESSION_MAX_IDLE", "30m"); err != nil {
		return nil, err
	}
	if cfg.SessionSweepInterval, err = getenvDuration("SESSION_SWEEP_INTERVAL", "5m"); err != nil {
		return nil, err
	}

	if cfg.OpenWeatherAPIKey == "" {
		log.Printf("INFO: OPENWEATHER_API_KEY is not set; weather will show as failed")
	}
	if cfg.GeoNamesUsername == "" {
		log.Printf("INFO: GEONAMES_USERNAME is not set; local time will show as failed")
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return d, nil
}
