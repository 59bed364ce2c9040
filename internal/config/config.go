package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all client configuration.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Store   StoreConfig   `yaml:"store"`
	Logging LogConfig     `yaml:"logging"`
}

// BackendConfig holds remote chat service configuration.
type BackendConfig struct {
	URL            string        `envconfig:"BACKEND_URL" default:"http://127.0.0.1:8000" yaml:"url"`
	Timeout        time.Duration `envconfig:"BACKEND_TIMEOUT" default:"30s" yaml:"timeout"`
	HistoryRetries int           `envconfig:"BACKEND_HISTORY_RETRIES" default:"2" yaml:"history_retries"`
	RateLimit      float64       `envconfig:"BACKEND_RATE_LIMIT" default:"0" yaml:"rate_limit"` // requests/sec, 0 = unlimited
}

// StoreConfig holds session snapshot storage configuration.
type StoreConfig struct {
	Path string `envconfig:"CHAT_STORE_PATH" yaml:"path"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" yaml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" yaml:"development"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = DefaultStorePath()
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:            "http://127.0.0.1:8000",
			Timeout:        30 * time.Second,
			HistoryRetries: 2,
		},
		Store: StoreConfig{
			Path: DefaultStorePath(),
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}

// ApplyFile overlays settings from a YAML file onto the config. Fields
// absent from the file keep their current values.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// DefaultStorePath returns the default location of the session snapshot.
func DefaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "chatctl", "session.json")
}
