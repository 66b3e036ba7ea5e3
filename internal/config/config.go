// Package config loads the tool configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds feldspar CLI configuration.
type Config struct {
	// Compression is the default compression setting for sources:
	// none, infer, gz or zip.
	Compression string `yaml:"compression"`

	// BufferSize is the importer read buffer in bytes.
	BufferSize int `yaml:"buffer_size"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Compression: "none",
		BufferSize:  64 * 1024,
		LogLevel:    "info",
	}
}

// Load reads the YAML file at path, layered over Default. A missing
// file is not an error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
