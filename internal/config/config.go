// Package config loads process configuration from CARD_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Prefix is the environment variable prefix.
const Prefix = "CARD"

// State backends.
const (
	BackendMemory = "memory"
	BackendDir    = "dir"
	BackendSQLite = "sqlite"
)

// ErrUnknownBackend is returned for a STATE_BACKEND outside the known set.
var ErrUnknownBackend = errors.New("config: unknown state backend")

// Config holds the process configuration.
type Config struct {
	// StateBackend selects where the card document is persisted.
	StateBackend string `envconfig:"STATE_BACKEND" default:"dir" desc:"memory, dir or sqlite"`
	// StatePath is the directory (dir) or database file (sqlite).
	StatePath string `envconfig:"STATE_PATH" default:".card-studio" desc:"state directory or database file"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"warn" desc:"debug, info, warn or error"`
	// Surface names a registered surface backend; empty picks the best
	// available one.
	Surface string `envconfig:"SURFACE" desc:"drawing backend; empty picks the best available"`
	// FontDir is scanned for extra .ttf/.otf families at startup.
	FontDir string `envconfig:"FONT_DIR" desc:"directory of extra .ttf/.otf fonts"`
}

// Usage writes a table of the environment variables to w.
func Usage(w io.Writer) error {
	return envconfig.Usagef(Prefix, &Config{}, w, envconfig.DefaultTableFormat)
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
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
		StateBackend: BackendDir,
		StatePath:    ".card-studio",
		LogLevel:     "warn",
	}
}

// Validate checks the backend name and log level.
func (c *Config) Validate() error {
	switch strings.ToLower(c.StateBackend) {
	case BackendMemory, BackendDir, BackendSQLite:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.StateBackend)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Backend returns the normalized state backend name.
func (c *Config) Backend() string { return strings.ToLower(c.StateBackend) }

// Level parses LogLevel ("debug", "info", "warn", "error", or offsets such
// as "info+2").
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: log level: %w", err)
	}
	return l, nil
}
