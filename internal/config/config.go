// Package config provides configuration loading for nanomeasurer. It
// handles loading configuration from YAML files and provides default
// values matching the interactive defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML.
type Config struct {
	// Segmentation parameters
	Segmentation struct {
		// HueTolerance is the default hue tolerance in half-range degrees
		HueTolerance float64 `yaml:"hueTolerance"`

		// SatTolerance is the default saturation tolerance
		SatTolerance float64 `yaml:"satTolerance"`

		// ValTolerance is the default value (brightness) tolerance
		ValTolerance float64 `yaml:"valTolerance"`

		// MinArea drops connected components below this pixel area
		MinArea int `yaml:"minArea"`

		// AutoTolerance derives tolerances from sample spread when more
		// than one sample is present
		AutoTolerance bool `yaml:"autoTolerance"`

		// DebounceMillis delays recomputation after parameter changes
		DebounceMillis int `yaml:"debounceMillis"`
	} `yaml:"segmentation"`

	// Preview parameters
	Preview struct {
		// MaxThumbnailSide caps the longest side of the working thumbnail
		MaxThumbnailSide int `yaml:"maxThumbnailSide"`

		// BrushWidth is the default cut-stroke width in canvas pixels
		BrushWidth int `yaml:"brushWidth"`

		// MinZoom and MaxZoom bound the viewport zoom factor
		MinZoom float64 `yaml:"minZoom"`
		MaxZoom float64 `yaml:"maxZoom"`
	} `yaml:"preview"`

	// Measurement parameters
	Measurement struct {
		// Scale is the calibrated length per pixel; 0 means uncalibrated
		Scale float64 `yaml:"scale"`

		// Unit is the calibration unit for the scale
		Unit string `yaml:"unit"`
	} `yaml:"measurement"`
}

// DebounceDelay returns the recompute debounce interval.
func (c *Config) DebounceDelay() time.Duration {
	return time.Duration(c.Segmentation.DebounceMillis) * time.Millisecond
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Segmentation.HueTolerance = 15
	cfg.Segmentation.SatTolerance = 50
	cfg.Segmentation.ValTolerance = 50
	cfg.Segmentation.MinArea = 10
	cfg.Segmentation.AutoTolerance = true
	cfg.Segmentation.DebounceMillis = 80

	cfg.Preview.MaxThumbnailSide = 600
	cfg.Preview.BrushWidth = 3
	cfg.Preview.MinZoom = 0.5
	cfg.Preview.MaxZoom = 20

	cfg.Measurement.Scale = 0
	cfg.Measurement.Unit = "nm"

	return cfg
}

// LoadConfig loads configuration from a YAML file. If the file doesn't
// exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}
