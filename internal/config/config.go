package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the service settings read from the environment.
type Config struct {
	HTTPAddr    string
	ServiceName string
	LogFormat   string

	OTelEnabled     bool
	OTelLogsEnabled bool

	RatesBaseURL  string
	RatesFile     string
	RatesTimeout  time.Duration
	RatesCacheTTL time.Duration

	SessionTTL           time.Duration
	SessionSweepInterval time.Duration
}

// LoadDotEnv loads variables from the named files (".env" when none are
// given). Missing files are skipped and the process environment wins.
func LoadDotEnv(files ...string) error {
	err := godotenv.Load(files...)
	if err == nil {
		return nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("load .env: %w", err)
}

// FromEnv builds a Config from environment variables, applying defaults for
// anything unset.
func FromEnv() (Config, error) {
	cfg := Config{
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		ServiceName:  getenv("OTEL_SERVICE_NAME", "smart-calculator"),
		LogFormat:    getenv("LOG_FORMAT", "json"),
		RatesBaseURL: getenv("RATES_BASE_URL", "https://open.er-api.com"),
		RatesFile:    os.Getenv("RATES_FILE"),
	}

	var err error

	if cfg.OTelEnabled, err = boolEnv("OTEL_ENABLED", true); err != nil {
		return Config{}, err
	}
	if cfg.OTelLogsEnabled, err = boolEnv("OTEL_LOGS_ENABLED", false); err != nil {
		return Config{}, err
	}
	if cfg.RatesTimeout, err = durationEnv("RATES_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.RatesCacheTTL, err = durationEnv("RATES_CACHE_TTL", 10*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = durationEnv("SESSION_TTL", 30*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.SessionSweepInterval, err = durationEnv("SESSION_SWEEP_INTERVAL", time.Minute); err != nil {
		return Config{}, err
	}

	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return Config{}, fmt.Errorf("LOG_FORMAT: unsupported value %q", cfg.LogFormat)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %s", key, d)
	}
	return d, nil
}
