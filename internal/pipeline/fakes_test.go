package pipeline_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"multiscan/internal/history"
	"multiscan/internal/procrun"
	"multiscan/internal/testsupport"
)

// fakeRunner stands in for the external tools. Handlers are keyed by
// Command.Description and return the exit code.
type fakeRunner struct {
	mu       sync.Mutex
	calls    []procrun.Command
	handlers map[string]func(procrun.Command) int
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{handlers: make(map[string]func(procrun.Command) int)}
}

func (f *fakeRunner) on(description string, handler func(procrun.Command) int) {
	f.handlers[description] = handler
}

func (f *fakeRunner) Run(_ context.Context, logger *slog.Logger, cmd procrun.Command) procrun.Result {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	handler := f.handlers[cmd.Description]
	f.mu.Unlock()

	logger.Debug("fake " + cmd.Description)
	code := 0
	if handler != nil {
		code = handler(cmd)
	}
	return procrun.Result{ExitCode: code}
}

func (f *fakeRunner) descriptions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, call := range f.calls {
		out[i] = call.Description
	}
	return out
}

func (f *fakeRunner) call(description string) (procrun.Command, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, call := range f.calls {
		if call.Description == description {
			return call, true
		}
	}
	return procrun.Command{}, false
}

func argAfter(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func hasArg(args []string, want string) bool {
	for _, arg := range args {
		if arg == want {
			return true
		}
	}
	return false
}

// decodeColor writes count PNG frames where ffmpeg would.
func decodeColor(t *testing.T, count int) func(procrun.Command) int {
	return func(cmd procrun.Command) int {
		testsupport.WriteFrames(t, filepath.Dir(cmd.Args[len(cmd.Args)-1]), ".png", count)
		return 0
	}
}

// decodeDepth writes count EXR frames where the depth decoder would.
func decodeDepth(t *testing.T, count int) func(procrun.Command) int {
	return func(cmd procrun.Command) int {
		testsupport.WriteFrames(t, argAfter(cmd.Args, "-o"), ".exr", count)
		return 0
	}
}

type graphNodes map[string]string

// saveGraph writes a Meshroom save file at --save with the given node uids
// and, when withCameras is set, the cameras.sfm the StructureFromMotion uid
// points at inside --cache.
func saveGraph(t *testing.T, nodes graphNodes, withCameras bool) func(procrun.Command) int {
	return func(cmd procrun.Command) int {
		graph := map[string]any{}
		for name, uid := range nodes {
			graph[name] = map[string]any{"uids": map[string]string{"0": uid}}
		}
		writeJSONFile(t, argAfter(cmd.Args, "--save"), map[string]any{"graph": graph})
		if uid, ok := nodes["StructureFromMotion_1"]; ok && withCameras {
			testsupport.WriteFile(t, filepath.Join(argAfter(cmd.Args, "--cache"), "StructureFromMotion", uid, "cameras.sfm"), 8)
		}
		return 0
	}
}

func writeJSONFile(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %s: %v", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func exitWith(code int) func(procrun.Command) int {
	return func(procrun.Command) int { return code }
}

// memoryRecorder keeps recorded runs in memory.
type memoryRecorder struct {
	runs []history.Run
}

func (m *memoryRecorder) Record(_ context.Context, run history.Run) error {
	m.runs = append(m.runs, run)
	return nil
}

type failingRecorder struct{}

func (failingRecorder) Record(context.Context, history.Run) error {
	return fmt.Errorf("disk full")
}
