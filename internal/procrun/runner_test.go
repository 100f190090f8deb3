package procrun_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"multiscan/internal/logging"
	"multiscan/internal/procrun"
	"multiscan/internal/testsupport"
)

func newFileLogger(t *testing.T) (*logging.ScanLog, func() string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "process.log")
	sink, err := logging.OpenScanLog(path)
	if err != nil {
		t.Fatalf("OpenScanLog: %v", err)
	}
	t.Cleanup(func() { _ = sink.Close() })
	return sink, func() string {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read log: %v", err)
		}
		return string(data)
	}
}

func TestRunReturnsExitCode(t *testing.T) {
	bin := testsupport.WriteScript(t, t.TempDir(), "fail.sh", "echo failing >&2\nexit 3")

	res := procrun.New().Run(context.Background(), logging.NewNop(), procrun.Command{Args: []string{bin}, Description: "fail"})
	if res.ExitCode != 3 {
		t.Fatalf("expected exit code 3, got %d (err=%v)", res.ExitCode, res.Err)
	}
	if res.Success() {
		t.Fatal("expected unsuccessful result")
	}
}

func TestRunUsesWorkingDirectoryWithoutChangingOwn(t *testing.T) {
	workDir := t.TempDir()
	bin := testsupport.WriteScript(t, t.TempDir(), "pwd.sh", "pwd > where.txt")

	before, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	res := procrun.New().Run(context.Background(), nil, procrun.Command{Args: []string{bin}, Dir: workDir})
	if !res.Success() {
		t.Fatalf("expected success, got %+v", res)
	}
	after, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if before != after {
		t.Fatalf("runner changed cwd from %q to %q", before, after)
	}

	data, err := os.ReadFile(filepath.Join(workDir, "where.txt"))
	if err != nil {
		t.Fatalf("expected script to write into its working dir: %v", err)
	}
	got, _ := filepath.EvalSymlinks(strings.TrimSpace(string(data)))
	want, _ := filepath.EvalSymlinks(workDir)
	if got != want {
		t.Fatalf("child ran in %q, want %q", got, want)
	}
}

func TestRunAppendsEnvironment(t *testing.T) {
	bin := testsupport.WriteScript(t, t.TempDir(), "env.sh", `echo "pp=$PYTHONPATH"`)
	sink, read := newFileLogger(t)

	res := procrun.New().Run(context.Background(), sink.Attach(nil), procrun.Command{
		Args: []string{bin},
		Env:  []string{"PYTHONPATH=/opt/meshroom"},
	})
	if !res.Success() {
		t.Fatalf("expected success, got %+v", res)
	}
	if log := read(); !strings.Contains(log, "pp=/opt/meshroom") {
		t.Fatalf("expected env value in streamed output, got %q", log)
	}
}

func TestRunStreamsBothOutputsIntoLog(t *testing.T) {
	bin := testsupport.WriteScript(t, t.TempDir(), "chatty.sh", "echo to-stdout\necho to-stderr >&2\nexit 1")
	sink, read := newFileLogger(t)

	res := procrun.New().Run(context.Background(), sink.Attach(nil), procrun.Command{Args: []string{bin}, Description: "chatty tool"})
	if res.ExitCode != 1 {
		t.Fatalf("expected exit code 1, got %d", res.ExitCode)
	}
	log := read()
	for _, fragment := range []string{"to-stdout", "to-stderr", "stream=stderr", "description=\"chatty tool\"", "duration=", "event_type=tool_failed"} {
		if !strings.Contains(log, fragment) {
			t.Fatalf("expected %q in log %q", fragment, log)
		}
	}
}

func TestRunMissingBinaryReturnsFailureCode(t *testing.T) {
	res := procrun.New().Run(context.Background(), nil, procrun.Command{Args: []string{filepath.Join(t.TempDir(), "missing")}})
	if res.ExitCode != procrun.FailureCode {
		t.Fatalf("expected failure code, got %d", res.ExitCode)
	}
	if res.Err == nil {
		t.Fatal("expected spawn error")
	}
}

func TestRunEmptyCommandIsNoop(t *testing.T) {
	res := procrun.New().Run(context.Background(), nil, procrun.Command{})
	if res.ExitCode != 0 || res.Err != nil {
		t.Fatalf("expected zero result for empty command, got %+v", res)
	}
}

func TestRunCancelledContextKillsChild(t *testing.T) {
	bin := testsupport.WriteScript(t, t.TempDir(), "sleep.sh", "exec sleep 30")
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	res := procrun.New().Run(ctx, nil, procrun.Command{Args: []string{bin}})
	if time.Since(start) > 10*time.Second {
		t.Fatal("child was not killed on cancellation")
	}
	if res.Success() {
		t.Fatalf("expected failure after cancellation, got %+v", res)
	}
}

func TestRunLongOutputLineDoesNotStall(t *testing.T) {
	body := "head -c 2000000 /dev/zero | tr '\\0' 'a'\necho\n" +
		"head -c 300000 /dev/zero | tr '\\0' 'b' >&2\necho >&2\n" +
		"echo done\nexit 0"
	bin := testsupport.WriteScript(t, t.TempDir(), "verbose.sh", body)
	sink, read := newFileLogger(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	res := procrun.New().Run(ctx, sink.Attach(nil), procrun.Command{Args: []string{bin}, Description: "verbose tool"})
	if ctx.Err() != nil {
		t.Fatal("runner did not return before the deadline")
	}
	if !res.Success() {
		t.Fatalf("expected success for a tool that exits 0, got %+v", res)
	}
	log := read()
	for _, fragment := range []string{"truncated=true", "done"} {
		if !strings.Contains(log, fragment) {
			t.Fatalf("expected %q in log", fragment)
		}
	}
	if strings.Contains(log, strings.Repeat("a", 70*1024)) {
		t.Fatal("expected the long line to be truncated in the log")
	}
}
