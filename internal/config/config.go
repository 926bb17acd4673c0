// Package config provides the YAML-based server configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LayoutConfig holds the default time-grid rendering parameters handed to
// layout queries that don't override them.
type LayoutConfig struct {
	// GridOriginMinute is the minute-of-day the grid starts at (480 = 08:00).
	GridOriginMinute int `yaml:"grid_origin_minute" json:"grid_origin_minute"`
	// PixelsPerMinute is the vertical scale.
	PixelsPerMinute float64 `yaml:"pixels_per_minute" json:"pixels_per_minute"`
	// MinHeightPx keeps very short events clickable.
	MinHeightPx float64 `yaml:"min_height_px" json:"min_height_px"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" json:"listen"`

	// DataDir holds the SQLite database file.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// JWTSecret signs and verifies access tokens. The JWT_SECRET
	// environment variable overrides it so the secret can stay out of
	// the config file.
	JWTSecret string `yaml:"jwt_secret" json:"-"`

	// HorizonDays bounds conflict checking and instance materialization
	// for open-ended recurring rules.
	HorizonDays int `yaml:"horizon_days" json:"horizon_days"`

	// MaxOccurrences caps a single rule expansion.
	MaxOccurrences int `yaml:"max_occurrences" json:"max_occurrences"`

	// Layout holds the default time-grid parameters.
	Layout LayoutConfig `yaml:"layout" json:"layout"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:         ":8095",
		DataDir:        "/data",
		HorizonDays:    60,
		MaxOccurrences: 10000,
		Layout: LayoutConfig{
			GridOriginMinute: 0,
			PixelsPerMinute:  1.0,
			MinHeightPx:      20,
		},
	}
}

// Normalize fills in missing or zero values so partially-filled configs
// still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = ":8095"
	}
	if c.DataDir == "" {
		c.DataDir = "/data"
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = 60
	}
	if c.MaxOccurrences <= 0 {
		c.MaxOccurrences = 10000
	}
	if c.Layout.PixelsPerMinute <= 0 {
		c.Layout.PixelsPerMinute = 1.0
	}
	if c.Layout.MinHeightPx <= 0 {
		c.Layout.MinHeightPx = 20
	}
	if env := os.Getenv("JWT_SECRET"); env != "" {
		c.JWTSecret = env
	}
}

// Load reads the configuration from the given YAML path. A missing file
// is created with defaults and 0600 permissions.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := DefaultConfig()
		cfg.Normalize()
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.Normalize()
	return cfg, nil
}

// Save writes the configuration as YAML with restrictive permissions.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}
