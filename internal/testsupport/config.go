package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"multiscan/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "staging")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.ToolsDir = filepath.Join(base, "tools")
	cfgVal.Paths.ScriptsDir = filepath.Join(base, "tools", "process")
	cfgVal.Paths.ConverterDir = filepath.Join(base, "tools", "converter")
	cfgVal.Paths.PhotogrammetryDir = filepath.Join(base, "tools", "dependencies", "meshroom")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return *builder.cfg
}

// WithSkipStep overrides the frame skip step.
func WithSkipStep(step int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Processing.SkipStep = step
	}
}

// WithHistoryDisabled turns the run ledger off.
func WithHistoryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WithToolDirs creates the scripts, converter, and photogrammetry directories.
func WithToolDirs() ConfigOption {
	return func(b *configBuilder) {
		for _, dir := range []string{b.cfg.Paths.ScriptsDir, b.cfg.Paths.ConverterDir, b.cfg.Paths.PhotogrammetryDir} {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				b.t.Fatalf("mkdir %s: %v", dir, err)
			}
		}
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default external binaries
// are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "python", "conda"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		for _, name := range names {
			WriteScript(b.t, binDir, name, "exit 0")
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
