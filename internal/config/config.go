// Package config loads gosimplify settings from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Modes accepted by Config.Mode.
const (
	ModeFaithful  = "faithful"
	ModeNormalize = "normalize"
)

// Config is the top-level configuration document.
type Config struct {
	// Mode selects the simplification mode: "faithful" applies one pass of
	// the rule set, "normalize" repeats bottom-up passes to a fixed point.
	Mode string `yaml:"mode"`

	// MaxDepth bounds the accepted expression tree depth.
	MaxDepth int `yaml:"max_depth"`

	// MaxPasses bounds the passes taken in normalize mode.
	MaxPasses int `yaml:"max_passes"`

	// Journal is the sqlite path of the simplification journal. Empty
	// disables journaling.
	Journal string `yaml:"journal,omitempty"`

	Log    LogConfig    `yaml:"log"`
	Server ServerConfig `yaml:"server"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Mode:      ModeFaithful,
		MaxDepth:  10000,
		MaxPasses: 16,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxBodyBytes:      1 << 20,
		},
	}
}

// Load reads a YAML file over the defaults. Unknown fields are rejected.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML document over the defaults and validates it.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks field values.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeFaithful, ModeNormalize:
	default:
		return fmt.Errorf("mode %q: must be %s or %s", c.Mode, ModeFaithful, ModeNormalize)
	}
	if c.MaxDepth < 1 {
		return fmt.Errorf("max_depth must be positive, got %d", c.MaxDepth)
	}
	if c.MaxPasses < 1 {
		return fmt.Errorf("max_passes must be positive, got %d", c.MaxPasses)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q: must be debug, info, warn or error", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q: must be text or json", c.Log.Format)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.MaxBodyBytes < 1 {
		return fmt.Errorf("server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes)
	}
	return nil
}
