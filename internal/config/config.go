// Package config provides configuration management for the dokita CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/tidwall/sjson"
)

const (
	appName        = "dokita"
	configFileName = "dokita.json"

	// DefaultServerURL is the completion service endpoint used when none is
	// configured.
	DefaultServerURL = "http://localhost:8000"
)

// Config is the top-level configuration structure.
type Config struct {
	ServerURL string   `json:"server_url,omitempty"`
	Options   *Options `json:"options,omitempty"`
}

// Options holds optional configuration settings.
type Options struct {
	DataDir string `json:"data_directory,omitempty"`
	Debug   bool   `json:"debug,omitempty"`
}

// NewConfig creates a Config with initialized options.
func NewConfig() *Config {
	return &Config{
		Options: &Options{},
	}
}

// Server returns the completion service base URL with environment variables
// expanded, falling back to the default endpoint.
func (c *Config) Server() string {
	if c.ServerURL == "" {
		return DefaultServerURL
	}
	return os.ExpandEnv(c.ServerURL)
}

// DataDir returns the data directory path from configuration.
func (c *Config) DataDir() string {
	if c.Options != nil && c.Options.DataDir != "" {
		return c.Options.DataDir
	}
	return filepath.Join(xdg.DataHome, appName)
}

// DatabasePath returns the location of the session database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir(), "dokita.db")
}

// GlobalConfigPath returns the path to the global configuration file.
func GlobalConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, configFileName)
}

// SetConfigField updates a single field in the config file using JSON path
// notation. This uses sjson for surgical updates - only the specified field
// is modified.
func SetConfigField(key string, value any) error {
	return setConfigField(GlobalConfigPath(), key, value)
}

func setConfigField(configPath, key string, value any) error {
	//nolint:gosec // G304: configPath is from trusted locations, not user input.
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			data = []byte("{}")
		} else {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	newData, err := sjson.Set(string(data), key, value)
	if err != nil {
		return fmt.Errorf("setting config field %q: %w", key, err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	//nolint:gosec // 0o600 is intentionally restrictive for security.
	if err := os.WriteFile(configPath, []byte(newData), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
