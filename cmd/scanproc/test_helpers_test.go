package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"multiscan/internal/config"
	"multiscan/internal/testsupport"
)

type cliTestEnv struct {
	cfg        config.Config
	configPath string
	baseDir    string
	scansDir   string
}

type envOption func(t *testing.T, cfg *config.Config)

func setupCLITestEnv(t *testing.T, opts ...envOption) *cliTestEnv {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	cfg := testsupport.NewConfig(t, testsupport.WithToolDirs())
	base := testsupport.BaseDir(cfg)
	for _, opt := range opts {
		opt(t, &cfg)
	}

	configPath := filepath.Join(base, "multiscan.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		scansDir:   filepath.Join(base, "scans"),
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg config.Config) {
	t.Helper()
	var b strings.Builder
	fmt.Fprintf(&b, "[paths]\ndata_dir = %q\nlog_dir = %q\ntools_dir = %q\nscripts_dir = %q\nconverter_dir = %q\nphotogrammetry_dir = %q\n\n",
		cfg.Paths.DataDir, cfg.Paths.LogDir, cfg.Paths.ToolsDir,
		cfg.Paths.ScriptsDir, cfg.Paths.ConverterDir, cfg.Paths.PhotogrammetryDir)
	fmt.Fprintf(&b, "[processing]\nskip_step = %d\n\n", cfg.Processing.SkipStep)
	fmt.Fprintf(&b, "[tools]\nffmpeg = %q\nffprobe = %q\npython = %q\nconda = %q\n\n",
		cfg.Tools.FFmpeg, cfg.Tools.FFprobe, cfg.Tools.Python, cfg.Tools.Conda)
	fmt.Fprintf(&b, "[logging]\nlevel = \"error\"\n\n")
	fmt.Fprintf(&b, "[history]\nenabled = %t\n", cfg.History.Enabled)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func withHistoryDisabled(t *testing.T, cfg *config.Config) {
	cfg.History.Enabled = false
}

// withDecoderStubs points ffmpeg and python at shell scripts that write
// colorFrames and depthFrames files named the way the real decoders do.
func withDecoderStubs(colorFrames, depthFrames int) envOption {
	return func(t *testing.T, cfg *config.Config) {
		binDir := filepath.Join(testsupport.BaseDir(*cfg), "bin")
		cfg.Tools.FFmpeg = testsupport.WriteScript(t, binDir, "ffmpeg", fmt.Sprintf(
			"for last; do :; done\nout=$(dirname \"$last\")\ni=0\nwhile [ $i -lt %d ]; do : > \"$out/$i.png\"; i=$((i+1)); done",
			colorFrames))
		cfg.Tools.Python = testsupport.WriteScript(t, binDir, "python", fmt.Sprintf(
			"while [ $# -gt 0 ]; do\n  if [ \"$1\" = \"-o\" ]; then out=\"$2\"; fi\n  shift\ndone\ni=0\nwhile [ $i -lt %d ]; do : > \"$out/$i.exr\"; i=$((i+1)); done",
			depthFrames))
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
