package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration for outputs and external tooling.
type Paths struct {
	DataDir           string `toml:"data_dir"`
	LogDir            string `toml:"log_dir"`
	ToolsDir          string `toml:"tools_dir"`
	ScriptsDir        string `toml:"scripts_dir"`
	ConverterDir      string `toml:"converter_dir"`
	PhotogrammetryDir string `toml:"photogrammetry_dir"`
}

// Layout names the subdirectories created inside each scan workspace.
type Layout struct {
	ColorDir          string `toml:"color_dir"`
	DepthDir          string `toml:"depth_dir"`
	PhotogrammetryDir string `toml:"photogrammetry_dir"`
}

// Processing contains the knobs passed to the decoders and Meshroom.
type Processing struct {
	SkipStep    int `toml:"skip_step"`
	MaxCPUs     int `toml:"max_cpus"`
	MaxGPUs     int `toml:"max_gpus"`
	DepthWidth  int `toml:"depth_width"`
	DepthHeight int `toml:"depth_height"`
}

// Tools names the external executables and scripts the pipeline invokes.
type Tools struct {
	FFmpeg             string `toml:"ffmpeg"`
	FFprobe            string `toml:"ffprobe"`
	Python             string `toml:"python"`
	DepthDecoder       string `toml:"depth_decoder"`
	Conda              string `toml:"conda"`
	CondaEnv           string `toml:"conda_env"`
	MeshroomBatch      string `toml:"meshroom_batch"`
	MeshroomKnownPoses string `toml:"meshroom_known_poses"`
	Converter          string `toml:"converter"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// History contains configuration for the run history ledger.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Config encapsulates all configuration values for the scan processor.
//
// Configuration sections by subsystem:
//   - Paths: staging data directory and external tool locations
//   - Layout: per-scan workspace subdirectory names
//   - Processing: frame skip step and Meshroom resource limits
//   - Tools: executables and scripts invoked per stage
//   - Logging: log format and level
//   - History: SQLite run ledger
//
// A Config is treated as a value: Load and WithOverrides return fresh copies
// and nothing mutates a Config after it has been handed to the pipeline.
type Config struct {
	Paths      Paths      `toml:"paths"`
	Layout     Layout     `toml:"layout"`
	Processing Processing `toml:"processing"`
	Tools      Tools      `toml:"tools"`
	Logging    Logging    `toml:"logging"`
	History    History    `toml:"history"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/multiscan/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return Config{}, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return Config{}, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return Config{}, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return Config{}, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, "", false, err
	}

	return cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("multiscan.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// Overrides carries command-line values layered on top of the file config.
// Zero values mean "not provided".
type Overrides struct {
	SkipStep          int
	MaxCPUs           int
	MaxGPUs           int
	PhotogrammetryDir string
	LogLevel          string
	LogFormat         string
}

// WithOverrides returns a copy of c with every provided override applied and
// re-validated. The receiver is left untouched.
func (c Config) WithOverrides(o Overrides) (Config, error) {
	next := c
	if o.SkipStep != 0 {
		next.Processing.SkipStep = o.SkipStep
	}
	if o.MaxCPUs != 0 {
		next.Processing.MaxCPUs = o.MaxCPUs
	}
	if o.MaxGPUs != 0 {
		next.Processing.MaxGPUs = o.MaxGPUs
	}
	if dir := strings.TrimSpace(o.PhotogrammetryDir); dir != "" {
		next.Layout.PhotogrammetryDir = dir
	}
	if level := strings.TrimSpace(o.LogLevel); level != "" {
		next.Logging.Level = level
	}
	if format := strings.TrimSpace(o.LogFormat); format != "" {
		next.Logging.Format = format
	}
	next.normalizeLogging()
	if err := next.Validate(); err != nil {
		return Config{}, err
	}
	return next, nil
}

// EnsureDirectories creates the directories the processor writes into.
func (c Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HistoryPath returns the resolved run history database path.
func (c Config) HistoryPath() string {
	if strings.TrimSpace(c.History.Path) != "" {
		return c.History.Path
	}
	return filepath.Join(c.Paths.LogDir, "history.db")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
