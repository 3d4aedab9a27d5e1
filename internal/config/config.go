package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"payments_engine/internal/ledger"

	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel    slog.Level
	Workers     int
	QueueSize   int
	MetricsAddr string
}

// Load reads an optional .env file and then the process environment. Every
// setting has a default, so an empty environment is valid.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an environment lookup function.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{
		LogLevel:    slog.LevelInfo,
		Workers:     1,
		QueueSize:   ledger.DefaultQueueSize,
		MetricsAddr: getEnv(lookup, "METRICS_ADDR", ""),
	}

	if level, ok := lookup("LOG_LEVEL"); ok && level != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
		}
	}

	var err error
	if cfg.Workers, err = getPositiveInt(lookup, "LEDGER_WORKERS", cfg.Workers); err != nil {
		return nil, err
	}
	if cfg.QueueSize, err = getPositiveInt(lookup, "LEDGER_QUEUE_SIZE", cfg.QueueSize); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnv(lookup func(string) (string, bool), key, fallback string) string {
	if value, exists := lookup(key); exists {
		return value
	}
	return fallback
}

func getPositiveInt(lookup func(string) (string, bool), key string, fallback int) (int, error) {
	raw := strings.TrimSpace(getEnv(lookup, key, ""))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, raw)
	}
	return n, nil
}
