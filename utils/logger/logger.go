// ABOUTME: This file provides the slog-based JSON logger for the worker.
// ABOUTME: Level comes from LOG_LEVEL; every line carries the service name.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Config controls logger construction.
type Config struct {
	Level   string `env:"LOG_LEVEL" default:"info"`
	Service string `env:"SERVICE_NAME" default:"aggregator"`
}

// LoadConfigFromEnv reads logger configuration from environment variables.
func LoadConfigFromEnv() *Config {
	return &Config{
		Level:   getEnvOrDefault("LOG_LEVEL", "info"),
		Service: getEnvOrDefault("SERVICE_NAME", "aggregator"),
	}
}

// New creates a JSON slog logger writing to stdout. Levels are rendered
// lowercase for log-forwarder compatibility.
func New(cfg *Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	options := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if l, ok := a.Value.Any().(slog.Level); ok {
					return slog.Attr{Key: slog.LevelKey, Value: slog.StringValue(strings.ToLower(l.String()))}
				}
			}
			return a
		},
	}

	handler := slog.NewJSONHandler(os.Stdout, options)

	return slog.New(handler).With("service", cfg.Service)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
