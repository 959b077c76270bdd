// Package config loads stretchia's process configuration. Reminder
// thresholds are not configured here; they live in the store's settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all configuration for stretchia
type Config struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	LogLevel     string        `yaml:"log_level"`

	// Quiet disables push reminders.
	Quiet bool `yaml:"quiet"`

	Storage    StorageConfig    `yaml:"storage"`
	API        APIConfig        `yaml:"api"`
	Tray       TrayConfig       `yaml:"tray"`
	StatusLine StatusLineConfig `yaml:"status_line"`
	Ntfy       NtfyConfig       `yaml:"ntfy"`
	Export     ExportConfig     `yaml:"export"`
}

// StorageConfig selects the session store.
type StorageConfig struct {
	Driver      string `yaml:"driver"`
	Path        string `yaml:"path"`
	PostgresURL string `yaml:"postgres_url"`
}

// APIConfig controls the local HTTP surface. An empty address disables it.
type APIConfig struct {
	Address string `yaml:"address"`
}

// TrayConfig controls the system tray icon.
type TrayConfig struct {
	Enabled bool `yaml:"enabled"`
}

// StatusLineConfig controls the terminal status line.
type StatusLineConfig struct {
	Enabled bool `yaml:"enabled"`
}

// NtfyConfig holds push reminder settings. An empty topic disables them.
type NtfyConfig struct {
	Server    string          `yaml:"server"`
	Topic     string          `yaml:"topic"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Window      time.Duration `yaml:"window"`
	MaxMessages int           `yaml:"max_messages"`
}

// ExportConfig holds session export settings.
type ExportConfig struct {
	Kafka KafkaConfig `yaml:"kafka"`
}

// KafkaConfig enables the Kafka exporter when brokers are listed.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		TickInterval: time.Second,
		LogLevel:     "info",
		Storage: StorageConfig{
			Driver: DriverSQLite,
		},
		API: APIConfig{
			Address: "127.0.0.1:8765",
		},
		Tray: TrayConfig{
			Enabled: true,
		},
		Ntfy: NtfyConfig{
			Server: "https://ntfy.sh",
			RateLimit: RateLimitConfig{
				Window:      10 * time.Minute,
				MaxMessages: 3,
			},
		},
		Export: ExportConfig{
			Kafka: KafkaConfig{
				Topic: "stretchia.sessions",
			},
		},
	}
}

// Load loads configuration from path, or the standard location when path is
// empty, then applies environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = getConfigPath()
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if path := os.Getenv("STRETCHIA_CONFIG"); path != "" {
		return path
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "stretchia", "config.yaml")
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "stretchia", "config.yaml")
	}

	return ""
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(cfg *Config, path string) error {
	// #nosec G304 - The config file path comes from trusted sources (flag, env var or standard locations)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("STRETCHIA_TICK_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid STRETCHIA_TICK_INTERVAL: %w", err)
		}
		cfg.TickInterval = d
	}

	if v := os.Getenv("STRETCHIA_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("STRETCHIA_DEBUG"); v == "1" || v == "true" {
		cfg.LogLevel = "debug"
	}

	if v := os.Getenv("STRETCHIA_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("STRETCHIA_DB"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("STRETCHIA_POSTGRES_URL"); v != "" {
		cfg.Storage.PostgresURL = v
	}

	// An explicitly empty listen address disables the API.
	if v, ok := os.LookupEnv("STRETCHIA_LISTEN"); ok {
		cfg.API.Address = v
	}

	if v := os.Getenv("STRETCHIA_NTFY_SERVER"); v != "" {
		cfg.Ntfy.Server = v
	}
	if v := os.Getenv("STRETCHIA_NTFY_TOPIC"); v != "" {
		cfg.Ntfy.Topic = v
	}

	if v := os.Getenv("STRETCHIA_KAFKA_BROKERS"); v != "" {
		cfg.Export.Kafka.Brokers = splitList(v)
	}
	if v := os.Getenv("STRETCHIA_KAFKA_TOPIC"); v != "" {
		cfg.Export.Kafka.Topic = v
	}

	for name, dst := range map[string]*bool{
		"STRETCHIA_QUIET":       &cfg.Quiet,
		"STRETCHIA_TRAY":        &cfg.Tray.Enabled,
		"STRETCHIA_STATUS_LINE": &cfg.StatusLine.Enabled,
	} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		b, err := parseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value: %q (use true/false)", name, v)
		}
		*dst = b
	}

	return nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("not a boolean: %q", v)
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// NotificationsEnabled reports whether push reminders should be sent.
func (c *Config) NotificationsEnabled() bool {
	return !c.Quiet && c.Ntfy.Topic != ""
}

// ExportEnabled reports whether completed sessions are exported.
func (c *Config) ExportEnabled() bool {
	return len(c.Export.Kafka.Brokers) > 0
}

// validate validates the configuration
func validate(cfg *Config) error {
	if cfg.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive")
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}

	switch cfg.Storage.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if cfg.Storage.PostgresURL == "" {
			return fmt.Errorf("storage.postgres_url is required for the postgres driver")
		}
	default:
		return fmt.Errorf("storage.driver must be %q or %q, got %q", DriverSQLite, DriverPostgres, cfg.Storage.Driver)
	}

	if cfg.Ntfy.RateLimit.MaxMessages < 0 {
		return fmt.Errorf("ntfy.rate_limit.max_messages must be non-negative")
	}

	if cfg.Ntfy.RateLimit.Window < 0 {
		return fmt.Errorf("ntfy.rate_limit.window must be non-negative")
	}

	if cfg.ExportEnabled() && cfg.Export.Kafka.Topic == "" {
		return fmt.Errorf("export.kafka.topic is required when brokers are set")
	}

	return nil
}
