package app

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/xlaunch/internal/argstore"
	"github.com/specialistvlad/xlaunch/internal/emit"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Documents []string // launch descriptors, processed in order
	Bindings  argstore.Bindings

	// Launch carries the launcher executable and the pass-through options.
	Launch        emit.LaunchOptions
	DerivedSuffix string
	DryRun        bool

	LogFormat string
	LogLevel  string

	// LookupEnv replaces the process environment for env/optenv when set.
	LookupEnv func(string) (string, bool)
}

var (
	validLogFormats = map[string]bool{"text": true, "json": true}
	validLogLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
)

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.Documents) == 0 {
		return nil, errors.New("at least one launch descriptor is required")
	}
	if cfg.Launch.Executable == "" {
		return nil, errors.New("launcher executable must not be empty")
	}
	if cfg.DerivedSuffix == "" {
		return nil, errors.New("derived file suffix must not be empty")
	}
	if !validLogFormats[cfg.LogFormat] {
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	if !validLogLevels[cfg.LogLevel] {
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}
	return &cfg, nil
}
