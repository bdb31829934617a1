// Package config provides configuration management for logicsim.
//
// The config file describes how the process runs (listen address, storage,
// logging); circuits themselves live in the database.
//
// Config file locations (priority order):
//  1. $LOGICSIM_CONFIG
//  2. ./logicsim.yaml
//  3. $XDG_CONFIG_HOME/logicsim/config.yaml
//  4. ~/.config/logicsim/config.yaml
//  5. /etc/logicsim/config.yaml
//
// Environment variables override the file: LOGICSIM_ADDR, LOGICSIM_DATABASE_URL
// and LOGICSIM_LOG_LEVEL.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment overrides
const (
	EnvAddr        = "LOGICSIM_ADDR"
	EnvDatabaseURL = "LOGICSIM_DATABASE_URL"
	EnvLogLevel    = "LOGICSIM_LOG_LEVEL"
)

// ErrInvalidConfig is returned by Validate
var ErrInvalidConfig = errors.New("config: invalid")

// Load finds and loads the config file, or returns defaults if none found.
// Environment overrides are applied in both cases.
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		// No config found - return defaults
		cfg := DefaultConfig()
		cfg.ApplyEnv()
		return cfg, "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(10 * time.Second)
	}
	if c.Server.SSEKeepAlive == 0 {
		c.Server.SSEKeepAlive = Duration(30 * time.Second)
	}
	if c.Database.Driver == "" {
		if c.Database.URL != "" {
			c.Database.Driver = DriverPostgres
		} else {
			c.Database.Driver = DriverSQLite
		}
	}
	if c.Database.Path == "" {
		c.Database.Path = "./logicsim.db"
	}
	if c.Circuit.Name == "" {
		c.Circuit.Name = "default"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = Duration(200 * time.Millisecond)
	}
}

// ApplyEnv overrides settings from the environment.
// A database URL selects the postgres driver.
func (c *Config) ApplyEnv() {
	if addr := os.Getenv(EnvAddr); addr != "" {
		c.Server.Addr = addr
	}
	if url := os.Getenv(EnvDatabaseURL); url != "" {
		c.Database.URL = url
		c.Database.Driver = DriverPostgres
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Log.Level = level
	}
}

// Validate checks settings that have no usable default
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("%w: database.url is required for the postgres driver", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown database driver %q", ErrInvalidConfig, c.Database.Driver)
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	storage := c.Database.Driver + ":" + c.Database.Path
	if c.Database.Driver == DriverPostgres {
		storage = c.Database.Driver
	}
	return fmt.Sprintf("addr=%s circuit=%s storage=%s log=%s/%s",
		c.Server.Addr, c.Circuit.Name, storage, c.Log.Level, c.Log.Format)
}
