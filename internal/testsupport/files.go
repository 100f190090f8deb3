package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = 0x42
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteScript writes an executable /bin/sh script named name into dir and
// returns its path.
func WriteScript(t testing.TB, dir, name, body string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	target := filepath.Join(dir, name)
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}

// WriteFrames creates count numbered files 0..count-1 with extension ext in dir.
func WriteFrames(t testing.TB, dir, ext string, count int) {
	t.Helper()

	for i := range count {
		WriteFile(t, filepath.Join(dir, fmt.Sprintf("%d%s", i, ext)), 1)
	}
}

// CaptureOption customizes the raw capture created by NewCapture.
type CaptureOption func(*captureBuilder)

type captureBuilder struct {
	color      bool
	depth      bool
	confidence bool
	trajectory bool
	metadata   string
}

// WithoutColor omits the color stream, which makes the directory invalid.
func WithoutColor() CaptureOption {
	return func(b *captureBuilder) { b.color = false }
}

// WithoutDepth omits the depth stream.
func WithoutDepth() CaptureOption {
	return func(b *captureBuilder) { b.depth = false }
}

// WithConfidence adds the optional confidence stream.
func WithConfidence() CaptureOption {
	return func(b *captureBuilder) { b.confidence = true }
}

// WithMetadata writes the given JSON document as <base>.json.
func WithMetadata(doc string) CaptureOption {
	return func(b *captureBuilder) { b.metadata = doc }
}

// NewCapture creates <root>/<name> populated like a device capture and returns
// the directory.
func NewCapture(t testing.TB, root, name string, opts ...CaptureOption) string {
	t.Helper()

	b := &captureBuilder{color: true, depth: true, trajectory: true}
	for _, opt := range opts {
		opt(b)
	}

	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir capture: %v", err)
	}
	if b.color {
		WriteFile(t, filepath.Join(dir, name+".mp4"), 64)
	}
	if b.depth {
		WriteFile(t, filepath.Join(dir, name+".depth.zlib"), 64)
	}
	if b.confidence {
		WriteFile(t, filepath.Join(dir, name+".confidence.zlib"), 16)
	}
	if b.trajectory {
		WriteFile(t, filepath.Join(dir, name+".jsonl"), 8)
	}
	if b.metadata != "" {
		if err := os.WriteFile(filepath.Join(dir, name+".json"), []byte(b.metadata), 0o644); err != nil {
			t.Fatalf("write metadata: %v", err)
		}
	}
	return dir
}
