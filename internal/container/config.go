// Package container provides dependency injection and lifecycle management
// for the caseflow service.
package container

import (
	"fmt"
	"time"
)

// Config holds all configuration for the Container.
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Flow configuration for next-step resolution
	Flow FlowConfig

	// Events configuration for the recorded flow events
	Events EventsConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Path to SQLite database file
	Path string

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int

	// ConnMaxLifetime is the maximum connection lifetime
	ConnMaxLifetime time.Duration

	// SkipMigrations leaves the schema untouched on start
	SkipMigrations bool
}

// FlowConfig holds next-step resolution settings.
type FlowConfig struct {
	// PollInterval between two searches of a bounded wait
	PollInterval time.Duration

	// MaxTimeout caps the wait a caller may request
	MaxTimeout time.Duration

	// MaxDepth bounds the parent case walk
	MaxDepth int
}

// EventsConfig holds flow event retention settings.
type EventsConfig struct {
	// Retention is how long events are kept. Zero keeps them forever.
	Retention time.Duration

	// PruneInterval between two retention runs
	PruneInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:            "data/caseflow.db",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Flow: FlowConfig{
			PollInterval: 500 * time.Millisecond,
			MaxTimeout:   5 * time.Minute,
			MaxDepth:     64,
		},
		Events: EventsConfig{
			Retention:     30 * 24 * time.Hour,
			PruneInterval: time.Hour,
		},
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Flow.PollInterval <= 0 {
		return fmt.Errorf("flow.poll_interval must be positive")
	}
	if c.Flow.MaxDepth <= 0 {
		return fmt.Errorf("flow.max_depth must be positive")
	}
	if c.Events.Retention < 0 {
		return fmt.Errorf("events.retention must not be negative")
	}
	if c.Events.Retention > 0 && c.Events.PruneInterval <= 0 {
		return fmt.Errorf("events.prune_interval must be positive when retention is set")
	}
	return nil
}
