// Package config loads service configuration from a YAML file with
// environment variable overrides, validated with struct tags.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Config is the full service configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Events   EventsConfig   `yaml:"events"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds the HTTP listener settings
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port" validate:"min=1,max=65535"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes" validate:"min=1024"`
}

// AnalysisConfig bounds the analysis pipeline
type AnalysisConfig struct {
	Workers     int `yaml:"workers" validate:"min=1,max=256"`
	MaxContexts int `yaml:"max_contexts" validate:"min=1"`
}

// EventsConfig controls the pub socket for pass notifications
type EventsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// SnapshotConfig controls on-disk persistence of analysis results
type SnapshotConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// LoggingConfig selects the log level
type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			MaxUploadBytes: 16 << 20, // matches the largest project artifact we accept
		},
		Analysis: AnalysisConfig{
			Workers:     4,
			MaxContexts: 64,
		},
		Events: EventsConfig{
			Enabled: false,
			Addr:    "tcp://127.0.0.1:7780",
		},
		Snapshot: SnapshotConfig{
			Enabled: false,
			Dir:     "./data/snapshots",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file when path
// is non-empty, then environment overrides, then validation.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			e := errs[0]
			return fmt.Errorf("config: %s failed %s validation", e.Namespace(), e.Tag())
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// applyEnv layers LADDERFLOW_* environment variables over the config
func applyEnv(cfg *Config) {
	if v := os.Getenv("LADDERFLOW_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("LADDERFLOW_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LADDERFLOW_MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Server.MaxUploadBytes = n
		}
	}
	if v := os.Getenv("LADDERFLOW_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Analysis.Workers = n
		}
	}
	if v := os.Getenv("LADDERFLOW_EVENTS_ADDR"); v != "" {
		cfg.Events.Enabled = true
		cfg.Events.Addr = v
	}
	if v := os.Getenv("LADDERFLOW_SNAPSHOT_DIR"); v != "" {
		cfg.Snapshot.Enabled = true
		cfg.Snapshot.Dir = v
	}
	if v := os.Getenv("LADDERFLOW_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
