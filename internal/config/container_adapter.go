package config

import (
	"github.com/garyjia/caseflow/internal/container"
)

// ToContainerConfig converts the file-based configuration into the
// container's configuration structure.
func (c *Config) ToContainerConfig() *container.Config {
	return &container.Config{
		Database: container.DatabaseConfig{
			Path:            c.Database.Path,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
		},
		Flow: container.FlowConfig{
			PollInterval: c.FlowToNext.Interval,
			MaxTimeout:   c.FlowToNext.MaxTimeout,
			MaxDepth:     c.FlowToNext.MaxDepth,
		},
		Events: container.EventsConfig{
			Retention:     c.Events.Retention,
			PruneInterval: c.Events.PruneInterval,
		},
	}
}
