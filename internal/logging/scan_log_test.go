package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"multiscan/internal/logging"
)

func TestScanLogMirrorsDebugAndAppends(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "process.log")
	if err := os.WriteFile(path, []byte("previous run\n"), 0o644); err != nil {
		t.Fatalf("seed log: %v", err)
	}

	consolePath := filepath.Join(dir, "console.log")
	base, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{consolePath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	sink, err := logging.OpenScanLog(path)
	if err != nil {
		t.Fatalf("OpenScanLog returned error: %v", err)
	}
	logger := sink.Attach(base)
	logger.Debug("tool output line", logging.String(logging.FieldStream, "stdout"))
	logger.Info("Scan at /tmp/chair processed")
	if err := sink.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("second Close returned error: %v", err)
	}

	scanContent, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read scan log: %v", err)
	}
	text := string(scanContent)
	for _, fragment := range []string{"previous run", "tool output line", "stream=stdout", "[INFO] Scan at /tmp/chair processed"} {
		if !strings.Contains(text, fragment) {
			t.Fatalf("expected %q in scan log %q", fragment, text)
		}
	}

	consoleContent, err := os.ReadFile(consolePath)
	if err != nil {
		t.Fatalf("read console log: %v", err)
	}
	if strings.Contains(string(consoleContent), "tool output line") {
		t.Fatalf("debug output leaked into console log: %q", consoleContent)
	}
	if !strings.Contains(string(consoleContent), "processed") {
		t.Fatalf("expected info line on console, got %q", consoleContent)
	}
}

func TestOpenScanLogRequiresPath(t *testing.T) {
	if _, err := logging.OpenScanLog(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestNilScanLogIsInert(t *testing.T) {
	var sink *logging.ScanLog
	if err := sink.Close(); err != nil {
		t.Fatalf("expected nil close to succeed, got %v", err)
	}
	if _, ok := sink.Handler().(logging.NoopHandler); !ok {
		t.Fatal("expected noop handler from nil sink")
	}
}
