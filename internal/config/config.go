// Package config loads runtime configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the service configuration.
type Config struct {
	HTTPAddr        string
	DatabasePath    string
	OrdersDir       string
	SpreadsheetID   string
	WriteRange      string
	ClientID        string
	ClientSecret    string
	RedirectBaseURL string
	ShutdownTimeout time.Duration
}

// Load reads a .env file if one exists and builds the configuration from
// the environment. The OAuth client settings and spreadsheet id have no
// usable defaults and are required.
func Load() (Config, error) {
	// Missing .env is fine - the environment may be set directly.
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		DatabasePath:    envOrDefault("DB_PATH", "./data/sheetsync.db"),
		OrdersDir:       envOrDefault("ORDERS_DIR", "./data/orders"),
		SpreadsheetID:   os.Getenv("SPREADSHEET_ID"),
		WriteRange:      envOrDefault("SPREADSHEET_RANGE", "A:M"),
		ClientID:        os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret:    os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectBaseURL: os.Getenv("REDIRECT_BASE_URL"),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT_SECONDS", 10*time.Second),
	}

	if cfg.SpreadsheetID == "" {
		return Config{}, fmt.Errorf("SPREADSHEET_ID is required")
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return Config{}, fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required")
	}
	if cfg.RedirectBaseURL == "" {
		return Config{}, fmt.Errorf("REDIRECT_BASE_URL is required")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}
