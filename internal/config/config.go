package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	WeatherAPIKey string
	DatabaseName  string
	SQLitePath    string
	Port          string
	// Refresh cadence for the background weather sweep
	RefreshInterval time.Duration
	// Forecast rows older than this are pruned
	ForecastMaxAge time.Duration
	// Optional endpoint overrides, mainly for tests
	OneCallBaseURL   string
	GeocodingBaseURL string
}

func LoadConfig() (*Config, error) {
	// A missing .env file is fine; plain environment variables still apply.
	_ = godotenv.Load()

	apiKey := os.Getenv("WEATHER_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("WEATHER_API_KEY is not set")
	}

	databaseName := os.Getenv("DATABASE_NAME")
	if databaseName == "" {
		databaseName = "cirrus"
	}

	sqlitePath := os.Getenv("SQLITE_PATH")
	if sqlitePath == "" {
		sqlitePath = filepath.Join("data", fmt.Sprintf("%s.db", databaseName))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	refreshInterval, err := durationEnv("REFRESH_INTERVAL", 30*time.Minute)
	if err != nil {
		return nil, err
	}

	forecastMaxAge, err := durationEnv("FORECAST_MAX_AGE", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	return &Config{
		WeatherAPIKey:    apiKey,
		DatabaseName:     databaseName,
		SQLitePath:       sqlitePath,
		Port:             port,
		RefreshInterval:  refreshInterval,
		ForecastMaxAge:   forecastMaxAge,
		OneCallBaseURL:   os.Getenv("ONECALL_BASE_URL"),
		GeocodingBaseURL: os.Getenv("GEOCODING_BASE_URL"),
	}, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}
