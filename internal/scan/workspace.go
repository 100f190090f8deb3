package scan

import (
	"path/filepath"

	"multiscan/internal/config"
)

// Workspace is the per-scan output tree under the configured data directory.
type Workspace struct {
	Root      string
	ColorDir  string
	DepthDir  string
	ResultDir string
}

// NewWorkspace lays out <data_dir>/<base> using the configured subdirectory
// names. Nothing is created on disk.
func NewWorkspace(cfg config.Config, capture Capture) Workspace {
	root := filepath.Join(cfg.Paths.DataDir, capture.Base)
	return Workspace{
		Root:      root,
		ColorDir:  filepath.Join(root, cfg.Layout.ColorDir),
		DepthDir:  filepath.Join(root, cfg.Layout.DepthDir),
		ResultDir: filepath.Join(root, cfg.Layout.PhotogrammetryDir),
	}
}

// OutputDir receives the published reconstruction.
func (w Workspace) OutputDir() string { return filepath.Join(w.ResultDir, "result") }

// CacheDir is the Meshroom node cache; graph-relative paths resolve against it.
func (w Workspace) CacheDir() string { return filepath.Join(w.ResultDir, "MeshroomCache") }

// GraphFile is the graph saved by the first reconstruction pass.
func (w Workspace) GraphFile() string { return filepath.Join(w.ResultDir, "graph.mg") }

// KnownPosesGraphFile is the graph saved by the known-poses pass.
func (w Workspace) KnownPosesGraphFile() string { return filepath.Join(w.ResultDir, "graph_known.mg") }

// SensorDepthDir receives depth maps aligned from the device sensor.
func (w Workspace) SensorDepthDir() string { return filepath.Join(w.CacheDir(), "SensorDepth") }

// RunFile records the outcome of the latest run.
func (w Workspace) RunFile() string { return filepath.Join(w.Root, "run.json") }

// LockFile is the advisory lock taken for the duration of a run.
func (w Workspace) LockFile() string { return filepath.Join(w.Root, ".scanproc.lock") }
