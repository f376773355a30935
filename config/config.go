// ABOUTME: This file implements configuration management with environment variable support
// ABOUTME: Provides validation and defaults for the aggregation worker
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Database  DatabaseConfig  `json:"database"`
	Redis     RedisConfig     `json:"redis"`
	Fetch     FetchConfig     `json:"fetch"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Server    ServerConfig    `json:"server"`
}

type DatabaseConfig struct {
	Host     string `json:"host" env:"DB_HOST" default:"localhost"`
	Port     string `json:"port" env:"DB_PORT" default:"5432"`
	User     string `json:"user" env:"AGGREGATOR_DB_USER" default:"aggregator"`
	Password string `json:"password" env:"AGGREGATOR_DB_PASSWORD"`
	Name     string `json:"name" env:"DB_NAME" default:"aggregator"`
	MaxConns int32  `json:"max_conns" env:"DB_MAX_CONNS" default:"20"`
	MinConns int32  `json:"min_conns" env:"DB_MIN_CONNS" default:"5"`
}

type RedisConfig struct {
	URL string `json:"url" env:"REDIS_URL" default:"redis://localhost:6379"`
}

type FetchConfig struct {
	// Timeout bounds a single HTTP fetch. Validation keeps it strictly
	// below Scheduler.MinRefresh.
	Timeout     time.Duration `json:"timeout" env:"FETCH_TIMEOUT" default:"20s"`
	UserAgent   string        `json:"user_agent" env:"FETCH_USER_AGENT" default:"aggregator/1.0 (+feed aggregation worker)"`
	MaxBodySize int64         `json:"max_body_size" env:"FETCH_MAX_BODY_SIZE" default:"10485760"`
	// HostInterval is the minimum spacing between requests to one host.
	HostInterval time.Duration `json:"host_interval" env:"FETCH_HOST_INTERVAL" default:"1s"`
}

type SchedulerConfig struct {
	// MinRefresh is the shortest polling interval the worker accepts.
	MinRefresh time.Duration `json:"min_refresh" env:"SCHEDULER_MIN_REFRESH" default:"30s"`
}

type ServerConfig struct {
	Port            int           `json:"port" env:"SERVER_PORT" default:"9300"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
}

func LoadConfig() (*Config, error) {
	config := &Config{}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func loadFromEnv(config *Config) error {
	// Database config
	config.Database.Host = getEnvOrDefault("DB_HOST", "localhost")
	config.Database.Port = getEnvOrDefault("DB_PORT", "5432")
	config.Database.User = getEnvOrDefault("AGGREGATOR_DB_USER", "aggregator")
	config.Database.Password = os.Getenv("AGGREGATOR_DB_PASSWORD")
	config.Database.Name = getEnvOrDefault("DB_NAME", "aggregator")

	if conns := os.Getenv("DB_MAX_CONNS"); conns != "" {
		if c, err := strconv.ParseInt(conns, 10, 32); err == nil {
			config.Database.MaxConns = int32(c)
		} else {
			return fmt.Errorf("invalid DB_MAX_CONNS: %s", conns)
		}
	} else {
		config.Database.MaxConns = 20
	}

	if conns := os.Getenv("DB_MIN_CONNS"); conns != "" {
		if c, err := strconv.ParseInt(conns, 10, 32); err == nil {
			config.Database.MinConns = int32(c)
		} else {
			return fmt.Errorf("invalid DB_MIN_CONNS: %s", conns)
		}
	} else {
		config.Database.MinConns = 5
	}

	// Redis config
	config.Redis.URL = getEnvOrDefault("REDIS_URL", "redis://localhost:6379")

	// Fetch config
	if timeout := os.Getenv("FETCH_TIMEOUT"); timeout != "" {
		if t, err := time.ParseDuration(timeout); err == nil {
			config.Fetch.Timeout = t
		} else {
			return fmt.Errorf("invalid FETCH_TIMEOUT: %s", timeout)
		}
	} else {
		config.Fetch.Timeout = 20 * time.Second
	}

	config.Fetch.UserAgent = getEnvOrDefault("FETCH_USER_AGENT", "aggregator/1.0 (+feed aggregation worker)")

	if size := os.Getenv("FETCH_MAX_BODY_SIZE"); size != "" {
		if s, err := strconv.ParseInt(size, 10, 64); err == nil {
			config.Fetch.MaxBodySize = s
		} else {
			return fmt.Errorf("invalid FETCH_MAX_BODY_SIZE: %s", size)
		}
	} else {
		config.Fetch.MaxBodySize = 10 * 1024 * 1024
	}

	if interval := os.Getenv("FETCH_HOST_INTERVAL"); interval != "" {
		if d, err := time.ParseDuration(interval); err == nil {
			config.Fetch.HostInterval = d
		} else {
			return fmt.Errorf("invalid FETCH_HOST_INTERVAL: %s", interval)
		}
	} else {
		config.Fetch.HostInterval = time.Second
	}

	// Scheduler config
	if refresh := os.Getenv("SCHEDULER_MIN_REFRESH"); refresh != "" {
		if d, err := time.ParseDuration(refresh); err == nil {
			config.Scheduler.MinRefresh = d
		} else {
			return fmt.Errorf("invalid SCHEDULER_MIN_REFRESH: %s", refresh)
		}
	} else {
		config.Scheduler.MinRefresh = 30 * time.Second
	}

	// Server config
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		} else {
			return fmt.Errorf("invalid SERVER_PORT: %s", port)
		}
	} else {
		config.Server.Port = 9300
	}

	if timeout := os.Getenv("SERVER_SHUTDOWN_TIMEOUT"); timeout != "" {
		if t, err := time.ParseDuration(timeout); err == nil {
			config.Server.ShutdownTimeout = t
		} else {
			return fmt.Errorf("invalid SERVER_SHUTDOWN_TIMEOUT: %s", timeout)
		}
	} else {
		config.Server.ShutdownTimeout = 10 * time.Second
	}

	return nil
}

// ConnString builds the pgx pool connection string.
func (d DatabaseConfig) ConnString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
