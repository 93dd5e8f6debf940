// Package config provides configuration loading for the grid viewer.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML.
type Config struct {
	// Default grid parameters used to pre-fill the grid definition form.
	Grid struct {
		// Rows is the default number of grid rows
		Rows int `yaml:"rows"`

		// Columns is the default number of grid columns
		Columns int `yaml:"columns"`

		// XSpacing is the default horizontal spot pitch in pixels
		XSpacing float64 `yaml:"xSpacing"`

		// YSpacing is the default vertical spot pitch in pixels
		YSpacing float64 `yaml:"ySpacing"`
	} `yaml:"grid"`

	// Spot detection tuning for the automatic grid mode.
	Detection struct {
		// MinDiameter is the minimum spot diameter in pixels
		MinDiameter int `yaml:"minDiameter"`

		// MaxDiameter is the maximum spot diameter in pixels
		MaxDiameter int `yaml:"maxDiameter"`

		// Threshold is the binary threshold (0-255); 0 selects Otsu
		Threshold int `yaml:"threshold"`

		// MaxSaturation rejects strongly colored blobs (0-255, 0 disables)
		MaxSaturation float64 `yaml:"maxSaturation"`
	} `yaml:"detection"`

	// Annotation rendering options.
	Render struct {
		// TextScale multiplies the built-in bitmap font size
		TextScale int `yaml:"textScale"`

		// TickMargin is the gap in pixels between grid edge and tick labels
		TickMargin int `yaml:"tickMargin"`

		// LineThickness is the grid line thickness in pixels
		LineThickness int `yaml:"lineThickness"`
	} `yaml:"render"`
}

// Default returns the configuration defaults used when no YAML file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.Grid.Rows = 8
	cfg.Grid.Columns = 12
	cfg.Grid.XSpacing = 60
	cfg.Grid.YSpacing = 60
	cfg.Detection.MinDiameter = 8
	cfg.Detection.MaxDiameter = 120
	cfg.Detection.Threshold = 0
	cfg.Detection.MaxSaturation = 0
	cfg.Render.TextScale = 2
	cfg.Render.TickMargin = 8
	cfg.Render.LineThickness = 1
	return cfg
}

// Load reads configuration from the given YAML file, falling back to
// defaults for any field the file omits.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault looks for gridviz.yaml in the user config directory and the
// working directory. Missing files are not an error; defaults apply.
func LoadDefault() *Config {
	candidates := []string{"gridviz.yaml"}
	if configDir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(configDir, "gridviz", "gridviz.yaml"))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			if cfg, err := Load(path); err == nil {
				return cfg
			}
		}
	}
	return Default()
}

func (c *Config) validate() error {
	if c.Grid.Rows < 1 || c.Grid.Columns < 1 {
		return fmt.Errorf("grid dimensions must be positive: %dx%d", c.Grid.Rows, c.Grid.Columns)
	}
	if c.Grid.XSpacing <= 0 || c.Grid.YSpacing <= 0 {
		return fmt.Errorf("grid spacing must be positive: %.1fx%.1f", c.Grid.XSpacing, c.Grid.YSpacing)
	}
	if c.Render.TextScale < 1 {
		c.Render.TextScale = 1
	}
	if c.Render.LineThickness < 1 {
		c.Render.LineThickness = 1
	}
	return nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
