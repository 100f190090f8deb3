package scan

import (
	"fmt"
	"path/filepath"
	"strings"

	"multiscan/internal/fileutil"
	"multiscan/internal/services"
)

// Capture is a read-only view of a raw scan directory.
type Capture struct {
	// Input is the directory as the user supplied it.
	Input string
	Dir   string
	Base  string
}

// Open resolves dir to an absolute path and derives the capture base name
// from its last component. It does not touch the filesystem beyond path
// resolution.
func Open(dir string) (Capture, error) {
	if strings.TrimSpace(dir) == "" {
		return Capture{}, services.Wrap(services.ErrInvalidInput, "scan", "open", "input directory required", nil)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Capture{}, fmt.Errorf("resolve input %s: %w", dir, err)
	}
	return Capture{Input: dir, Dir: abs, Base: filepath.Base(abs)}, nil
}

func (c Capture) file(suffix string) string {
	return filepath.Join(c.Dir, c.Base+suffix)
}

// ColorStream is the RGB video.
func (c Capture) ColorStream() string { return c.file(".mp4") }

// DepthStream is the compressed depth stream.
func (c Capture) DepthStream() string { return c.file(".depth.zlib") }

// ConfidenceStream is the optional per-pixel depth confidence stream.
func (c Capture) ConfidenceStream() string { return c.file(".confidence.zlib") }

// Trajectory is the device camera trajectory, one JSON object per frame.
func (c Capture) Trajectory() string { return c.file(".jsonl") }

// MetadataFile is the capture metadata document.
func (c Capture) MetadataFile() string { return c.file(".json") }

// LogPath is the per-scan run log, kept next to the raw streams.
func (c Capture) LogPath() string { return filepath.Join(c.Dir, "process.log") }

// HasConfidence reports whether the optional confidence stream is present.
func (c Capture) HasConfidence() bool {
	return fileutil.FileExists(c.ConfidenceStream(), "")
}

// Validate requires the color stream. Failures are tagged ErrInvalidInput.
func (c Capture) Validate() error {
	if !fileutil.FolderExists(c.Dir) {
		return services.Wrap(services.ErrInvalidInput, "scan", "validate", c.Dir+" is not a directory", nil)
	}
	if !fileutil.FileExists(c.ColorStream(), ".mp4") {
		return services.Wrap(services.ErrInvalidInput, "scan", "validate", "missing color stream "+c.ColorStream(), nil)
	}
	return nil
}

// InvalidMessage is the result line for a directory that is not a scan.
func (c Capture) InvalidMessage() string {
	return fmt.Sprintf("path %s not a valid scan dir", c.Input)
}
