// Package config loads SketchBoard settings from a YAML file with
// SKETCHBOARD_* environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"SketchBoard/internal/state"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config is the full application configuration.
type Config struct {
	Canvas  CanvasConfig  `yaml:"canvas"`
	Export  ExportConfig  `yaml:"export"`
	Share   ShareConfig   `yaml:"share"`
	Logging LoggingConfig `yaml:"logging"`
}

// CanvasConfig sets up new boards.
type CanvasConfig struct {
	// Width and Height are used when the window reports no size.
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	Background string  `yaml:"background"`
	Color      string  `yaml:"color"`
	Tool       string  `yaml:"tool"`
}

// ExportConfig controls snapshots.
type ExportConfig struct {
	Multiplier float64 `yaml:"multiplier"`
	Dir        string  `yaml:"dir"`
}

// ShareConfig controls LAN sharing.
type ShareConfig struct {
	Port          int           `yaml:"port"`
	Advertise     bool          `yaml:"advertise"`
	BrowseTimeout time.Duration `yaml:"browse_timeout"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // empty logs to stderr
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Canvas: CanvasConfig{
			Width:      1024,
			Height:     768,
			Background: state.DefaultBackground,
			Color:      state.DefaultColor,
			Tool:       string(state.ToolPencil),
		},
		Export: ExportConfig{
			Multiplier: 2,
			Dir:        ".",
		},
		Share: ShareConfig{
			Port:          8888,
			Advertise:     true,
			BrowseTimeout: 2 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath is where Load looks when no --config flag is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "sketchboard.yaml"
	}
	return filepath.Join(dir, "sketchboard", "config.yaml")
}

// Load reads path over the defaults and applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	float := func(key string, dst *float64) error {
		if v := os.Getenv(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = f
		}
		return nil
	}

	str("SKETCHBOARD_BACKGROUND", &c.Canvas.Background)
	str("SKETCHBOARD_COLOR", &c.Canvas.Color)
	str("SKETCHBOARD_TOOL", &c.Canvas.Tool)
	str("SKETCHBOARD_EXPORT_DIR", &c.Export.Dir)
	str("SKETCHBOARD_LOG_LEVEL", &c.Logging.Level)
	str("SKETCHBOARD_LOG_FILE", &c.Logging.File)

	for key, dst := range map[string]*float64{
		"SKETCHBOARD_WIDTH":      &c.Canvas.Width,
		"SKETCHBOARD_HEIGHT":     &c.Canvas.Height,
		"SKETCHBOARD_MULTIPLIER": &c.Export.Multiplier,
	} {
		if err := float(key, dst); err != nil {
			return err
		}
	}

	if v := os.Getenv("SKETCHBOARD_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SKETCHBOARD_PORT: %w", err)
		}
		c.Share.Port = port
	}
	if v := os.Getenv("SKETCHBOARD_ADVERTISE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SKETCHBOARD_ADVERTISE: %w", err)
		}
		c.Share.Advertise = b
	}
	return nil
}

// Validate checks values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("invalid canvas size %vx%v", c.Canvas.Width, c.Canvas.Height)
	}
	if _, err := state.ParseTool(c.Canvas.Tool); err != nil {
		return err
	}
	if c.Export.Multiplier <= 0 {
		return fmt.Errorf("invalid export multiplier: %v", c.Export.Multiplier)
	}
	if c.Share.Port <= 0 || c.Share.Port > 65535 {
		return fmt.Errorf("invalid share port: %d", c.Share.Port)
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

// CanvasOptions converts the canvas section for state.NewSession.
func (c *Config) CanvasOptions() state.Options {
	tool, err := state.ParseTool(c.Canvas.Tool)
	if err != nil || tool == state.ToolClear {
		tool = state.ToolPencil
	}
	return state.Options{
		Width:      c.Canvas.Width,
		Height:     c.Canvas.Height,
		Background: c.Canvas.Background,
		Color:      c.Canvas.Color,
		Tool:       tool,
	}
}
