// Package config loads mediacat settings from <data dir>/config.yaml, an
// optional .env file and MEDIACAT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the config file looked up inside the data directory.
	ConfigFileName = "config.yaml"

	// DatabaseFileName is the default database file inside the data directory.
	DatabaseFileName = "database.db"
)

// DatabaseConfig holds store connection settings
type DatabaseConfig struct {
	Path          string `yaml:"path"`
	MaxOpenConns  int    `yaml:"max_open_conns"`
	MaxIdleConns  int    `yaml:"max_idle_conns"`
	BusyTimeoutMS int    `yaml:"busy_timeout_ms"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // trace | debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// GatewayConfig holds raw query gateway settings
type GatewayConfig struct {
	// Denylist adds phrases to the built-in DROP TABLE / ALTER TABLE guard.
	Denylist []string `yaml:"denylist"`
}

// MetricsConfig holds the optional metrics listener settings
type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the listener
}

// Config holds the complete configuration
type Config struct {
	DataDir  string         `yaml:"-"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Gateway  GatewayConfig  `yaml:"gateway"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// GetDataDir returns the application data directory. MEDIACAT_DATA_DIR wins;
// otherwise the per-user config directory is used.
func GetDataDir() string {
	if dir := os.Getenv("MEDIACAT_DATA_DIR"); dir != "" {
		return expandHome(dir)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "mediacat")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".mediacat")
}

// LoadEnvFile loads KEY=VALUE pairs from the given .env files into the
// process environment without overriding variables that are already set.
// Missing files are ignored.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", p, err)
		}
	}
	return nil
}

// Default returns the configuration used when no file is present.
func Default(dataDir string) *Config {
	return &Config{
		DataDir: dataDir,
		Database: DatabaseConfig{
			Path:          filepath.Join(dataDir, DatabaseFileName),
			MaxOpenConns:  4,
			MaxIdleConns:  4,
			BusyTimeoutMS: 5000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads <dataDir>/config.yaml over the defaults and applies
// environment overrides.
func LoadConfig(dataDir string) (*Config, error) {
	config := Default(dataDir)

	data, err := os.ReadFile(filepath.Join(dataDir, ConfigFileName))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Ensure defaults are set
	defaults := Default(dataDir)
	if config.Database.Path == "" {
		config.Database.Path = defaults.Database.Path
	}
	if config.Database.MaxOpenConns == 0 {
		config.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if config.Database.MaxIdleConns == 0 {
		config.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if config.Database.BusyTimeoutMS == 0 {
		config.Database.BusyTimeoutMS = defaults.Database.BusyTimeoutMS
	}
	if config.Log.Level == "" {
		config.Log.Level = defaults.Log.Level
	}
	if config.Log.Format == "" {
		config.Log.Format = defaults.Log.Format
	}

	// Environment variable overrides take precedence over file values.
	if v := os.Getenv("MEDIACAT_DB_PATH"); v != "" {
		config.Database.Path = v
	}
	if v := os.Getenv("MEDIACAT_DB_MAX_OPEN_CONNS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MEDIACAT_DB_MAX_OPEN_CONNS %q: %w", v, err)
		}
		config.Database.MaxOpenConns = n
	}
	if v := os.Getenv("MEDIACAT_LOG_LEVEL"); v != "" {
		config.Log.Level = v
	}
	if v := os.Getenv("MEDIACAT_LOG_FORMAT"); v != "" {
		config.Log.Format = v
	}
	if v := os.Getenv("MEDIACAT_METRICS_ADDR"); v != "" {
		config.Metrics.Addr = v
	}

	config.Database.Path = expandHome(config.Database.Path)
	return config, nil
}

// Validate returns an error if the configuration contains invalid values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be >= 1, got %d", c.Database.MaxOpenConns)
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns must be >= 0, got %d", c.Database.MaxIdleConns)
	}
	if c.Database.BusyTimeoutMS < 0 {
		return fmt.Errorf("database.busy_timeout_ms must be >= 0, got %d", c.Database.BusyTimeoutMS)
	}
	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log.level %q: must be one of trace, debug, info, warn, error", c.Log.Level)
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Log.Format)] {
		return fmt.Errorf("invalid log.format %q: must be text or json", c.Log.Format)
	}
	for i, phrase := range c.Gateway.Denylist {
		if strings.TrimSpace(phrase) == "" {
			return fmt.Errorf("gateway.denylist[%d] must not be empty", i)
		}
	}
	return nil
}

// SaveConfig writes the configuration to <DataDir>/config.yaml.
func SaveConfig(config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(config.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(config.DataDir, ConfigFileName), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
