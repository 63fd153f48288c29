// Package config provides configuration loading and management for jianzhi.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"jianzhi/internal/logging"
	"jianzhi/internal/models"
	"jianzhi/pkg/fold"
	"jianzhi/pkg/radial"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Sheet parameters
	Sheet struct {
		// Size is the side of the square sheet in pixels
		Size int `yaml:"size"`

		// PaperColor is the paper colour as #RRGGBB
		PaperColor string `yaml:"paperColor"`
	} `yaml:"sheet"`

	// Folding parameters
	Folding struct {
		// Mode selects the fold strategy: custom or preset
		Mode string `yaml:"mode"`

		// MaxFolds caps the number of custom folds (0 disables the cap)
		MaxFolds int `yaml:"maxFolds"`

		// PresetFolds is the fold count N for preset mode
		PresetFolds int `yaml:"presetFolds"`

		// CreaseTolerance is how close to a fold axis a pixel must be to get a crease
		CreaseTolerance float64 `yaml:"creaseTolerance"`
	} `yaml:"folding"`

	// Radial engine parameters
	Radial struct {
		// RadiusFraction is the wedge radius relative to half the sheet
		RadiusFraction float64 `yaml:"radiusFraction"`
	} `yaml:"radial"`

	// Cutting parameters
	Cutting struct {
		// CutThreshold is the mask alpha below which paper counts as cut
		CutThreshold int `yaml:"cutThreshold"`

		// PaperThreshold is the alpha above which a pixel counts as paper for fragment removal
		PaperThreshold int `yaml:"paperThreshold"`

		// RemoveFragments discards pieces that lost contact with the main sheet
		RemoveFragments bool `yaml:"removeFragments"`
	} `yaml:"cutting"`

	// Output parameters
	Output struct {
		// Directory receives exported images
		Directory string `yaml:"directory"`

		// SavePattern also exports the cut pattern drawn on the folded sheet
		SavePattern bool `yaml:"savePattern"`

		// SaveCreases composites crease lines onto the exported result
		SaveCreases bool `yaml:"saveCreases"`

		// ContactSheet exports a captioned sheet with result and pattern side by side
		ContactSheet bool `yaml:"contactSheet"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Sheet.Size = 500
	cfg.Sheet.PaperColor = "#DC2626"

	cfg.Folding.Mode = models.Custom.String()
	cfg.Folding.MaxFolds = 4
	cfg.Folding.PresetFolds = 5
	cfg.Folding.CreaseTolerance = fold.DefaultCreaseTolerance

	cfg.Radial.RadiusFraction = radial.DefaultRadiusFraction

	cfg.Cutting.CutThreshold = 100
	cfg.Cutting.PaperThreshold = 20
	cfg.Cutting.RemoveFragments = true

	cfg.Output.Directory = "."
	cfg.Output.SavePattern = true
	cfg.Output.SaveCreases = true
	cfg.Output.ContactSheet = true
	cfg.Output.Verbose = false

	return cfg
}

// Validate checks that every value is usable
func (c *Config) Validate() error {
	var errs []error
	if c.Sheet.Size <= 0 || c.Sheet.Size > fold.MaxSize {
		errs = append(errs, fmt.Errorf("sheet.size %d out of range (1..%d)", c.Sheet.Size, fold.MaxSize))
	}
	if _, err := models.ParseStrategy(c.Folding.Mode); err != nil {
		errs = append(errs, fmt.Errorf("folding.mode: %w", err))
	}
	if c.Folding.MaxFolds < 0 {
		errs = append(errs, fmt.Errorf("folding.maxFolds must not be negative, got %d", c.Folding.MaxFolds))
	}
	if c.Folding.PresetFolds < radial.MinFolds || c.Folding.PresetFolds > radial.MaxFolds {
		errs = append(errs, fmt.Errorf("folding.presetFolds %d out of range (%d..%d)",
			c.Folding.PresetFolds, radial.MinFolds, radial.MaxFolds))
	}
	if c.Folding.CreaseTolerance < 0 {
		errs = append(errs, fmt.Errorf("folding.creaseTolerance must not be negative, got %g", c.Folding.CreaseTolerance))
	}
	if c.Radial.RadiusFraction <= 0 || c.Radial.RadiusFraction > 1 {
		errs = append(errs, fmt.Errorf("radial.radiusFraction %g out of range (0..1]", c.Radial.RadiusFraction))
	}
	if c.Cutting.CutThreshold < 1 || c.Cutting.CutThreshold > 255 {
		errs = append(errs, fmt.Errorf("cutting.cutThreshold %d out of range (1..255)", c.Cutting.CutThreshold))
	}
	if c.Cutting.PaperThreshold < 0 || c.Cutting.PaperThreshold > 254 {
		errs = append(errs, fmt.Errorf("cutting.paperThreshold %d out of range (0..254)", c.Cutting.PaperThreshold))
	}
	return errors.Join(errs...)
}

// Strategy returns the parsed fold mode, falling back to custom
func (c *Config) Strategy() models.Strategy {
	s, err := models.ParseStrategy(c.Folding.Mode)
	if err != nil {
		return models.Custom
	}
	return s
}

// Paper returns the parsed paper colour. Malformed values give the default
// red and are logged as a warning.
func (c *Config) Paper() color.NRGBA {
	p, ok := models.ParsePaperColor(c.Sheet.PaperColor)
	if !ok {
		logging.Logger().Warn("invalid paper colour, using default",
			"value", c.Sheet.PaperColor, "default", DefaultConfig().Sheet.PaperColor)
	}
	return p
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML over the defaults
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
