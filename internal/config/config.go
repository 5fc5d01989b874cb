package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/specialistvlad/xlaunch/internal/launcher"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "XLAUNCH_CONFIG"

// File is the on-disk configuration.
type File struct {
	// Launcher is the executable started for a normal run.
	Launcher string `yaml:"launcher"`
	// ROSLauncher is the executable started with --ros.
	ROSLauncher string `yaml:"ros_launcher"`
	// DerivedSuffix is appended to a descriptor path to name its derived file.
	DerivedSuffix string `yaml:"derived_suffix"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// WebServer is forwarded as --web_server when set and the flag is not.
	WebServer *int `yaml:"web_server,omitempty"`
}

// Default returns the built-in configuration.
func Default() *File {
	return &File{
		Launcher:      launcher.DefaultExecutable,
		ROSLauncher:   launcher.DefaultROSExecutable,
		DerivedSuffix: ".gen",
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// Load reads the file at path, or at $XLAUNCH_CONFIG when path is empty.
// With neither set it returns Default().
func Load(path string) (*File, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the file at path over the defaults.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.DerivedSuffix == "" {
		return nil, errors.New("derived_suffix must not be empty")
	}
	return cfg, nil
}
