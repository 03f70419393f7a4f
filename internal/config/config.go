// Package config loads the optional installer configuration file.
//
// Configuration is deliberately small: the install pipeline itself is driven
// entirely by command-line flags, so the file only carries ambient settings
// (logging). Precedence: CLI flags > environment > file > defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnvLogLevel overrides the configured log level when set.
const EnvLogLevel = "PGEV_LOG_LEVEL"

// Config is the root of the YAML configuration file.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	// Level is a zerolog level name. Default "info".
	Level string `yaml:"level"`

	// Format is "console" or "json". Default "console".
	Format string `yaml:"format"`

	// File enables duplicate log output to the given path when non-empty.
	File string `yaml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// DefaultPath returns the standard config file location,
// honoring XDG_CONFIG_HOME.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pgev", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "pgev", "config.yaml"), nil
}

// Load reads the configuration from path. A missing file is not an error:
// defaults are returned. A present but malformed file is an error so typos
// are surfaced instead of silently ignored.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path) //nolint:gosec // Path is the user's own config file.
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	return cfg, nil
}

// LoadDefault loads the configuration from the standard location, applying
// the PGEV_LOG_LEVEL environment override.
func LoadDefault() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return Default(), nil //nolint:nilerr // No home directory means no config file; defaults apply.
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if envLevel := os.Getenv(EnvLogLevel); envLevel != "" {
		cfg.Logging.Level = envLevel
	}
	return cfg, nil
}
