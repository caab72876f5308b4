package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type AppConfig struct {
	// OpenWeatherAPIKey is the credential for the weather API. It may be
	// empty at startup; an absent or invalid key surfaces as a fetch
	// failure, not a startup failure.
	OpenWeatherAPIKey string

	// WeatherBaseURL / GeocoderBaseURL override the upstream endpoints,
	// mainly for local development against recorded responses.
	WeatherBaseURL  string
	GeocoderBaseURL string

	// RefreshInterval controls the periodic auto-refresh of the selected
	// location.
	RefreshInterval time.Duration

	// HTTPTimeout applies to all outbound upstream calls.
	HTTPTimeout time.Duration

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Info().Msgf("no .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.WeatherBaseURL = os.Getenv("OPENWEATHER_BASE_URL")
	cfg.GeocoderBaseURL = os.Getenv("GEOCODER_BASE_URL")

	interval, err := getenvDuration("REFRESH_INTERVAL", "60s")
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	cfg.RefreshInterval = interval

	timeout, err := getenvDuration("HTTP_TIMEOUT", "10s")
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	return time.ParseDuration(getenvDefault(key, def))
}
