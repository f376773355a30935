package config

import (
	"fmt"
)

func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", config.Server.Port)
	}

	if config.Database.MaxConns <= 0 {
		return fmt.Errorf("database max conns must be positive, got %d", config.Database.MaxConns)
	}

	if config.Database.MinConns < 0 || config.Database.MinConns > config.Database.MaxConns {
		return fmt.Errorf("database min conns must be between 0 and max conns, got %d", config.Database.MinConns)
	}

	if config.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %s", config.Fetch.Timeout)
	}

	if config.Fetch.MaxBodySize <= 0 {
		return fmt.Errorf("fetch max body size must be positive, got %d", config.Fetch.MaxBodySize)
	}

	if config.Scheduler.MinRefresh <= 0 {
		return fmt.Errorf("scheduler min refresh must be positive, got %s", config.Scheduler.MinRefresh)
	}

	// The fetch timeout must stay strictly below the shortest supported
	// refresh, otherwise a slow fetch could outlive its own polling slot.
	if config.Fetch.Timeout >= config.Scheduler.MinRefresh {
		return fmt.Errorf("fetch timeout %s must be strictly less than scheduler min refresh %s",
			config.Fetch.Timeout, config.Scheduler.MinRefresh)
	}

	return nil
}
