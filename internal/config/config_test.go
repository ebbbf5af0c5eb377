package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 6*time.Minute, cfg.Server.WriteTimeout)
	assert.Equal(t, "data/caseflow.db", cfg.Database.Path)
	assert.Equal(t, 500*time.Millisecond, cfg.FlowToNext.Interval)
	assert.Equal(t, 30*time.Second, cfg.FlowToNext.DefaultTimeout)
	assert.Equal(t, 5*time.Minute, cfg.FlowToNext.MaxTimeout)
	assert.Equal(t, 64, cfg.FlowToNext.MaxDepth)
	assert.Equal(t, 30, cfg.FlowToNext.DefaultTimeoutSeconds())
	assert.Equal(t, 30*24*time.Hour, cfg.Events.Retention)
	assert.Equal(t, time.Hour, cfg.Events.PruneInterval)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
database:
  path: /tmp/flow.db
flow_to_next:
  interval: 250ms
  default_timeout: 10s
  max_timeout: 1m
  max_depth: 16
events:
  retention: 0s
logger:
  level: debug
  format: console
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/tmp/flow.db", cfg.Database.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.FlowToNext.Interval)
	assert.Equal(t, 10*time.Second, cfg.FlowToNext.DefaultTimeout)
	assert.Equal(t, time.Minute, cfg.FlowToNext.MaxTimeout)
	assert.Equal(t, 16, cfg.FlowToNext.MaxDepth)
	assert.Zero(t, cfg.Events.Retention)
	assert.Equal(t, "console", cfg.Logger.Format)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("CASEFLOW_DB_PATH", "/var/lib/caseflow.db")
	t.Setenv("PORT", "7070")
	t.Setenv("CASEFLOW_LOG_LEVEL", "warn")
	t.Setenv("CASEFLOW_FLOW_TO_NEXT_INTERVAL", "1s")

	cfg, err := Load(writeConfig(t, "server:\n  port: 9090\n"))

	require.NoError(t, err)
	assert.Equal(t, "/var/lib/caseflow.db", cfg.Database.Path)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logger.Level)
	assert.Equal(t, time.Second, cfg.FlowToNext.Interval)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	assert.ErrorContains(t, err, "failed to read config file")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{Path: "caseflow.db"},
			FlowToNext: FlowToNextConfig{
				Interval:       500 * time.Millisecond,
				DefaultTimeout: 30 * time.Second,
				MaxTimeout:     5 * time.Minute,
				MaxDepth:       64,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "port out of range", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "server.port"},
		{name: "missing db path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: "database.path"},
		{name: "zero interval", mutate: func(c *Config) { c.FlowToNext.Interval = 0 }, wantErr: "interval must be positive"},
		{name: "sub-second default timeout", mutate: func(c *Config) { c.FlowToNext.DefaultTimeout = 500 * time.Millisecond }, wantErr: "at least one second"},
		{name: "interval not shorter than timeout", mutate: func(c *Config) { c.FlowToNext.Interval = 30 * time.Second }, wantErr: "must be shorter than"},
		{name: "max below default", mutate: func(c *Config) { c.FlowToNext.MaxTimeout = 10 * time.Second }, wantErr: "max_timeout"},
		{name: "zero depth", mutate: func(c *Config) { c.FlowToNext.MaxDepth = 0 }, wantErr: "max_depth"},
		{name: "negative retention", mutate: func(c *Config) { c.Events.Retention = -time.Hour }, wantErr: "events.retention"},
		{name: "retention without interval", mutate: func(c *Config) { c.Events.Retention = time.Hour }, wantErr: "events.prune_interval"},
		{name: "retention with interval", mutate: func(c *Config) { c.Events = EventsConfig{Retention: time.Hour, PruneInterval: time.Minute} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestConfig_ToContainerConfig(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cc := cfg.ToContainerConfig()

	assert.Equal(t, cfg.Database.Path, cc.Database.Path)
	assert.Equal(t, cfg.FlowToNext.Interval, cc.Flow.PollInterval)
	assert.Equal(t, cfg.FlowToNext.MaxTimeout, cc.Flow.MaxTimeout)
	assert.Equal(t, cfg.FlowToNext.MaxDepth, cc.Flow.MaxDepth)
	assert.Equal(t, cfg.Events.Retention, cc.Events.Retention)
	assert.Equal(t, cfg.Events.PruneInterval, cc.Events.PruneInterval)
	assert.NoError(t, cc.Validate())
}
