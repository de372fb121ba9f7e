// Package config loads editor configuration in three layers: built-in
// defaults, an optional YAML file, then MARKLIGHT_* environment variables.
// Later layers win.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidConfig reports a configuration that fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config is the resolved editor configuration.
type Config struct {
	Editor  EditorConfig  `yaml:"editor"`
	Logging LoggingConfig `yaml:"logging"`
	Session SessionConfig `yaml:"session"`
}

// EditorConfig controls the editing core.
type EditorConfig struct {
	// DebounceWindow is the quiet period before a reconciliation pass.
	DebounceWindow time.Duration `yaml:"debounceWindow"`
}

// LoggingConfig controls diagnostic output.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// SessionConfig controls state persistence between runs.
type SessionConfig struct {
	Path             string        `yaml:"path"`
	Autosave         bool          `yaml:"autosave"`
	AutosaveInterval time.Duration `yaml:"autosaveInterval"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Editor: EditorConfig{
			DebounceWindow: 300 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Session: SessionConfig{
			Path:             defaultSessionPath(),
			Autosave:         true,
			AutosaveInterval: 30 * time.Second,
		},
	}
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "marklight", "session.json")
}

// Load resolves the configuration. A missing file at path is not an error;
// an unreadable or invalid one is. An empty path skips the file layer.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays MARKLIGHT_* variables. Empty values count as set.
func applyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv("MARKLIGHT_LOG_LEVEL"); ok {
		cfg.Logging.Level = v
	}
	if v, ok := os.LookupEnv("MARKLIGHT_LOG_FILE"); ok {
		cfg.Logging.File = v
	}
	if v, ok := os.LookupEnv("MARKLIGHT_SESSION_PATH"); ok {
		cfg.Session.Path = v
	}
	if v, ok := os.LookupEnv("MARKLIGHT_DEBOUNCE"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: MARKLIGHT_DEBOUNCE: %v", ErrInvalidConfig, err)
		}
		cfg.Editor.DebounceWindow = d
	}
	if v, ok := os.LookupEnv("MARKLIGHT_AUTOSAVE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: MARKLIGHT_AUTOSAVE: %v", ErrInvalidConfig, err)
		}
		cfg.Session.Autosave = b
	}
	if v, ok := os.LookupEnv("MARKLIGHT_AUTOSAVE_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: MARKLIGHT_AUTOSAVE_INTERVAL: %v", ErrInvalidConfig, err)
		}
		cfg.Session.AutosaveInterval = d
	}
	return nil
}

func (c Config) validate() error {
	if c.Editor.DebounceWindow <= 0 {
		return fmt.Errorf("%w: debounce window must be positive, got %s",
			ErrInvalidConfig, c.Editor.DebounceWindow)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Logging.Level)
	}
	if c.Session.Autosave && c.Session.AutosaveInterval <= 0 {
		return fmt.Errorf("%w: autosave interval must be positive, got %s",
			ErrInvalidConfig, c.Session.AutosaveInterval)
	}
	return nil
}
