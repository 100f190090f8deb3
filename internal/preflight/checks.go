package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"multiscan/internal/config"
	"multiscan/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok")
}

// CheckDirectoryReadable verifies that the directory exists and can be listed.
// Tool directories only need to be entered, never written.
func CheckDirectoryReadable(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.X_OK, "read ok")
}

func checkDirectory(name, path string, mode uint32, okDetail string) Result {
	if path == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, okDetail)}
}

// Requirements lists the external tools each stage invokes. Scripts resolve
// against the directory the runner uses as their working directory.
func Requirements(cfg config.Config) []deps.Requirement {
	return []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Tools.FFmpeg,
			Description: "Decodes the color stream",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.Tools.FFprobe,
			Description: "Estimates frame counts for plan output",
			Optional:    true,
		},
		{
			Name:        "Python",
			Command:     cfg.Tools.Python,
			Description: "Runs the depth decoder",
		},
		{
			Name:        "Depth decoder",
			Command:     cfg.Tools.DepthDecoder,
			Dir:         cfg.Paths.ScriptsDir,
			Script:      true,
			Description: "Decodes depth and confidence streams",
		},
		{
			Name:        "Conda",
			Command:     cfg.Tools.Conda,
			Description: "Activates the Meshroom environment",
		},
		{
			Name:        "Meshroom batch",
			Command:     cfg.Tools.MeshroomBatch,
			Dir:         cfg.Paths.PhotogrammetryDir,
			Script:      true,
			Description: "Runs the photogrammetry graph",
		},
		{
			Name:        "Meshroom known poses",
			Command:     cfg.Tools.MeshroomKnownPoses,
			Dir:         cfg.Paths.PhotogrammetryDir,
			Script:      true,
			Description: "Reruns the graph with locked poses",
		},
		{
			Name:        "Converter",
			Command:     cfg.Tools.Converter,
			Dir:         cfg.Paths.ConverterDir,
			Description: "Aligns poses and sensor depth",
		},
	}
}

// CheckSystemDeps evaluates every tool requirement for the given config.
func CheckSystemDeps(cfg config.Config) []deps.Status {
	return deps.CheckBinaries(Requirements(cfg))
}
