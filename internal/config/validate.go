package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLayout(); err != nil {
		return err
	}
	if err := c.validateProcessing(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c Config) validateLayout() error {
	for key, value := range map[string]string{
		"layout.color_dir":          c.Layout.ColorDir,
		"layout.depth_dir":          c.Layout.DepthDir,
		"layout.photogrammetry_dir": c.Layout.PhotogrammetryDir,
	} {
		if value == "" {
			return fmt.Errorf("%s must be set", key)
		}
		if filepath.IsAbs(value) || strings.Contains(value, "..") {
			return fmt.Errorf("%s must be a plain subdirectory name, got %q", key, value)
		}
	}
	if c.Layout.ColorDir == c.Layout.DepthDir {
		return errors.New("layout.color_dir and layout.depth_dir must differ")
	}
	return nil
}

func (c Config) validateProcessing() error {
	return ensurePositiveMap(map[string]int{
		"processing.skip_step":    c.Processing.SkipStep,
		"processing.max_cpus":     c.Processing.MaxCPUs,
		"processing.max_gpus":     c.Processing.MaxGPUs,
		"processing.depth_width":  c.Processing.DepthWidth,
		"processing.depth_height": c.Processing.DepthHeight,
	})
}

func (c Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
