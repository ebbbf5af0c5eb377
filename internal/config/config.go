package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	FlowToNext FlowToNextConfig `mapstructure:"flow_to_next"`
	Events     EventsConfig     `mapstructure:"events"`
	Logger     LoggerConfig     `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// FlowToNextConfig holds the next-step resolution settings.
// Loaded once at startup and never changed afterwards.
type FlowToNextConfig struct {
	Interval       time.Duration `mapstructure:"interval"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
	MaxTimeout     time.Duration `mapstructure:"max_timeout"`
	MaxDepth       int           `mapstructure:"max_depth"`
}

// DefaultTimeoutSeconds returns the default wait in whole seconds
func (f FlowToNextConfig) DefaultTimeoutSeconds() int {
	return int(f.DefaultTimeout / time.Second)
}

// EventsConfig holds flow event retention settings. A zero retention keeps events forever.
type EventsConfig struct {
	Retention     time.Duration `mapstructure:"retention"`
	PruneInterval time.Duration `mapstructure:"prune_interval"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from an optional YAML file, a .env file and
// environment variables. An empty configPath skips the file.
func Load(configPath string) (*Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("CASEFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	// must outlast the longest flow-to-next wait
	v.SetDefault("server.write_timeout", 6*time.Minute)

	// Database defaults
	v.SetDefault("database.path", "data/caseflow.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	// Flow-to-next defaults
	v.SetDefault("flow_to_next.interval", 500*time.Millisecond)
	v.SetDefault("flow_to_next.default_timeout", 30*time.Second)
	v.SetDefault("flow_to_next.max_timeout", 5*time.Minute)
	v.SetDefault("flow_to_next.max_depth", 64)

	// Event retention defaults
	v.SetDefault("events.retention", 30*24*time.Hour)
	v.SetDefault("events.prune_interval", time.Hour)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("database.path", "CASEFLOW_DB_PATH")
	_ = v.BindEnv("server.port", "CASEFLOW_PORT", "PORT")
	_ = v.BindEnv("logger.level", "CASEFLOW_LOG_LEVEL")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	f := c.FlowToNext
	if f.Interval <= 0 {
		return fmt.Errorf("flow_to_next.interval must be positive")
	}
	if f.DefaultTimeout < time.Second {
		return fmt.Errorf("flow_to_next.default_timeout must be at least one second")
	}
	if f.Interval >= f.DefaultTimeout {
		return fmt.Errorf("flow_to_next.interval (%s) must be shorter than flow_to_next.default_timeout (%s)",
			f.Interval, f.DefaultTimeout)
	}
	if f.MaxTimeout < f.DefaultTimeout {
		return fmt.Errorf("flow_to_next.max_timeout (%s) must not be shorter than flow_to_next.default_timeout (%s)",
			f.MaxTimeout, f.DefaultTimeout)
	}
	if f.MaxDepth <= 0 {
		return fmt.Errorf("flow_to_next.max_depth must be positive")
	}

	if c.Events.Retention < 0 {
		return fmt.Errorf("events.retention must not be negative")
	}
	if c.Events.Retention > 0 && c.Events.PruneInterval <= 0 {
		return fmt.Errorf("events.prune_interval must be positive when events.retention is set")
	}

	return nil
}
