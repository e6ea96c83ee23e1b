// Package models defines data structures for configuration, build stats and emit records.
package models

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	DefaultOutputDir  = "./build"
	DefaultFilename   = "assets.json"
	DefaultConfigName = "assets-writer.yaml"
)

// WriterConfig holds the settings for one assets writer.
// Zero values are replaced by defaults in Normalize.
type WriterConfig struct {
	OutputDir string `yaml:"path"`
	Filename  string `yaml:"filename"`
	NamesOnly bool   `yaml:"asset_names_only"`

	// Where the build stats and the compiled assets are read from.
	// Either may be a local path or an http(s) URL.
	Stats  string `yaml:"stats"`
	Assets string `yaml:"assets"`

	// HistoryDB enables the emit history when set.
	HistoryDB string `yaml:"history_db"`
}

// DefaultWriterConfig returns a config with every default applied.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		OutputDir: DefaultOutputDir,
		Filename:  DefaultFilename,
		Stats:     "stats.json",
	}
}

// Normalize fills empty fields with defaults.
func (c *WriterConfig) Normalize() {
	d := DefaultWriterConfig()
	if c.OutputDir == "" {
		c.OutputDir = d.OutputDir
	}
	if c.Filename == "" {
		c.Filename = d.Filename
	}
	if c.Stats == "" {
		c.Stats = d.Stats
	}
}

// OutputPath is the file the manifest is written to.
func (c WriterConfig) OutputPath() string {
	return filepath.Join(c.OutputDir, c.Filename)
}

// Mode reports the output mode selected by the config.
func (c WriterConfig) Mode() OutputMode {
	if c.NamesOnly {
		return OutputModeNamesOnly
	}
	return OutputModeFull
}

// LoadConfig reads a YAML config file over the defaults.
// A missing file is not an error when optional is true.
func LoadConfig(path string, optional bool) (WriterConfig, error) {
	cfg := DefaultWriterConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.Normalize()

	return cfg, nil
}
