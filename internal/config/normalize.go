package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLayout()
	c.normalizeTools()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("MULTISCAN_DATA_DIR"); ok && strings.TrimSpace(value) != "" && c.Paths.DataDir == defaultDataDir {
		c.Paths.DataDir = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("MULTISCAN_TOOLS_DIR"); ok && strings.TrimSpace(value) != "" && c.Paths.ToolsDir == defaultToolsDir {
		c.Paths.ToolsDir = strings.TrimSpace(value)
	}

	var err error
	if c.Paths.DataDir, err = expandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ToolsDir) == "" {
		c.Paths.ToolsDir = defaultToolsDir
	}
	if c.Paths.ToolsDir, err = expandPath(strings.TrimSpace(c.Paths.ToolsDir)); err != nil {
		return fmt.Errorf("paths.tools_dir: %w", err)
	}
	if c.Paths.ScriptsDir, err = c.toolSubdir(c.Paths.ScriptsDir, defaultScriptsSubdir); err != nil {
		return fmt.Errorf("paths.scripts_dir: %w", err)
	}
	if c.Paths.ConverterDir, err = c.toolSubdir(c.Paths.ConverterDir, defaultConverterSubdir); err != nil {
		return fmt.Errorf("paths.converter_dir: %w", err)
	}
	if c.Paths.PhotogrammetryDir, err = c.toolSubdir(c.Paths.PhotogrammetryDir, defaultMeshroomSubdir); err != nil {
		return fmt.Errorf("paths.photogrammetry_dir: %w", err)
	}
	if strings.TrimSpace(c.History.Path) != "" {
		if c.History.Path, err = expandPath(strings.TrimSpace(c.History.Path)); err != nil {
			return fmt.Errorf("history.path: %w", err)
		}
	}
	return nil
}

// toolSubdir resolves an explicitly configured tool directory or falls back to
// a well-known location under tools_dir.
func (c *Config) toolSubdir(value, fallback string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return filepath.Join(c.Paths.ToolsDir, filepath.FromSlash(fallback)), nil
	}
	return expandPath(value)
}

func (c *Config) normalizeLayout() {
	c.Layout.ColorDir = strings.TrimSpace(c.Layout.ColorDir)
	if c.Layout.ColorDir == "" {
		c.Layout.ColorDir = defaultColorDir
	}
	c.Layout.DepthDir = strings.TrimSpace(c.Layout.DepthDir)
	if c.Layout.DepthDir == "" {
		c.Layout.DepthDir = defaultDepthDir
	}
	c.Layout.PhotogrammetryDir = strings.TrimSpace(c.Layout.PhotogrammetryDir)
	if c.Layout.PhotogrammetryDir == "" {
		c.Layout.PhotogrammetryDir = defaultPhotogrammetryDir
	}
}

func (c *Config) normalizeTools() {
	fallback := func(value *string, def string) {
		*value = strings.TrimSpace(*value)
		if *value == "" {
			*value = def
		}
	}
	fallback(&c.Tools.FFmpeg, defaultFFmpeg)
	fallback(&c.Tools.FFprobe, defaultFFprobe)
	fallback(&c.Tools.Python, defaultPython)
	fallback(&c.Tools.DepthDecoder, defaultDepthDecoder)
	fallback(&c.Tools.Conda, defaultConda)
	fallback(&c.Tools.CondaEnv, defaultCondaEnv)
	fallback(&c.Tools.MeshroomBatch, defaultMeshroomBatch)
	fallback(&c.Tools.MeshroomKnownPoses, defaultMeshroomKnown)
	fallback(&c.Tools.Converter, defaultConverter)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
