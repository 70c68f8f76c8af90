package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// ModelPath is the hazard model consumed by the serve command.
	// SitesPath is read from HAZARD_SITES; the serve command does not use it.
	ModelPath string
	SitesPath string

	// Workers bounds the calculation fan-out; 0 runs sequentially.
	Workers int
}

// Load reads configuration from environment variables, applying defaults
// where unset and failing fast on invalid values.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	workers, err := parseInt("CALC_WORKERS", 0)
	if err != nil {
		return nil, err
	}
	if workers < 0 {
		return nil, errors.New("CALC_WORKERS must be >= 0")
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		ModelPath:       os.Getenv("HAZARD_MODEL"),
		SitesPath:       os.Getenv("HAZARD_SITES"),
		Workers:         workers,
	}
	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	s := envOrDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return n, nil
}
