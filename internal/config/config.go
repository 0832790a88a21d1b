// Package config loads and persists the application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	// HTTP server configuration
	Server ServerConfig `toml:"server"`

	// Database configuration
	Database DatabaseConfig `toml:"database"`

	// Deck versioning configuration
	Versioning VersioningConfig `toml:"versioning"`

	// Application configuration
	App AppConfig `toml:"app"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port           int     `toml:"port"`             // Listen port
	RateLimit      float64 `toml:"rate_limit"`       // Write requests per second per client (0 = unlimited)
	RateLimitBurst int     `toml:"rate_limit_burst"` // Write request burst size
}

// DatabaseConfig contains database settings.
type DatabaseConfig struct {
	Path        string `toml:"path"`         // Path to the SQLite database file
	AutoMigrate bool   `toml:"auto_migrate"` // Run pending migrations on startup
}

// VersioningConfig contains deck version control settings.
type VersioningConfig struct {
	DebounceWindow string `toml:"debounce_window"` // Minimum time between same-source versions (e.g. "30s", "0s" to disable)
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			RateLimit:      10,
			RateLimitBurst: 20,
		},
		Database: DatabaseConfig{
			Path:        "",
			AutoMigrate: true,
		},
		Versioning: VersioningConfig{
			DebounceWindow: "30s",
		},
		App: AppConfig{
			DebugMode: false,
		},
	}
}

// configPath returns the path to the configuration file.
func configPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".deckvault")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// Load loads the configuration from disk. Returns default config if file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	// If file doesn't exist, return default config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return &config, nil
}

// Save saves the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative: %f", c.Server.RateLimit)
	}

	if window, err := time.ParseDuration(c.Versioning.DebounceWindow); err != nil {
		return fmt.Errorf("invalid debounce window %q: %w", c.Versioning.DebounceWindow, err)
	} else if window < 0 {
		return fmt.Errorf("debounce window cannot be negative: %s", c.Versioning.DebounceWindow)
	}

	return nil
}

// GetDebounceWindow returns the debounce window as a duration.
func (c *Config) GetDebounceWindow() (time.Duration, error) {
	return time.ParseDuration(c.Versioning.DebounceWindow)
}
