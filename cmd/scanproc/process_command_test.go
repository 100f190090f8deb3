package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"multiscan/internal/testsupport"
)

func TestProcessInvalidDirectoryWritesNothing(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := testsupport.NewCapture(t, env.scansDir, "room", testsupport.WithoutColor())

	out, _, err := runCLI(t, []string{"-i", dir}, env.configPath)
	if err != nil {
		t.Fatalf("expected invalid scan to exit cleanly, got %v", err)
	}
	requireContains(t, out, "path "+dir+" not a valid scan dir")

	for _, path := range []string{
		env.cfg.Paths.DataDir,
		env.cfg.Paths.LogDir,
		filepath.Join(env.cfg.Paths.LogDir, "scanproc.log"),
		env.cfg.HistoryPath(),
		filepath.Join(dir, "process.log"),
	} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("expected %s to be absent after an invalid scan, stat err=%v", path, err)
		}
	}
}

func TestProcessConvertOnly(t *testing.T) {
	env := setupCLITestEnv(t, withDecoderStubs(3, 3))
	dir := testsupport.NewCapture(t, env.scansDir, "room")

	out, _, err := runCLI(t, []string{"-i", dir, "--action", "convert", "--step", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	requireContains(t, out, "Scan at "+dir+" processed")

	for _, sub := range []string{env.cfg.Layout.ColorDir, env.cfg.Layout.DepthDir} {
		entries, err := os.ReadDir(filepath.Join(env.cfg.Paths.DataDir, "room", sub))
		if err != nil {
			t.Fatalf("read %s: %v", sub, err)
		}
		if len(entries) != 3 {
			t.Fatalf("expected 3 frames in %s, got %d", sub, len(entries))
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "process.log")); err != nil {
		t.Fatalf("expected process.log in capture dir: %v", err)
	}

	out, _, err = runCLI(t, []string{"history", "--scan", "room"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "room")
	requireContains(t, out, "processed")
	requireContains(t, out, "convert")
}

func TestProcessAbortsOnFrameMismatch(t *testing.T) {
	env := setupCLITestEnv(t, withDecoderStubs(4, 2), withHistoryDisabled)
	dir := testsupport.NewCapture(t, env.scansDir, "room")

	out, _, err := runCLI(t, []string{"-i", dir, "--action", "convert"}, env.configPath)
	if err != nil {
		t.Fatalf("aborted scans should not return an error, got %v", err)
	}
	requireContains(t, out, "Scan at "+dir+" aborted")
	requireContains(t, out, "does not match color images")
}

func TestProcessRejectsUnknownStage(t *testing.T) {
	env := setupCLITestEnv(t, withHistoryDisabled)
	dir := testsupport.NewCapture(t, env.scansDir, "room")

	_, _, err := runCLI(t, []string{"-i", dir, "--from", "texturing"}, env.configPath)
	if err == nil {
		t.Fatal("expected unknown stage to be rejected")
	}
	if !strings.Contains(err.Error(), "texturing") {
		t.Fatalf("expected stage name in error, got %v", err)
	}
}

func TestProcessRejectsInvalidStep(t *testing.T) {
	env := setupCLITestEnv(t, withHistoryDisabled)
	dir := testsupport.NewCapture(t, env.scansDir, "room")

	if _, _, err := runCLI(t, []string{"-i", dir, "--step", "-2"}, env.configPath); err == nil {
		t.Fatal("expected negative step to be rejected")
	}
}

func TestProcessRejectsAbsoluteMeshroomDir(t *testing.T) {
	env := setupCLITestEnv(t, withHistoryDisabled)
	dir := testsupport.NewCapture(t, env.scansDir, "room")

	_, _, err := runCLI(t, []string{"-i", dir, "--meshroom_dir", "/srv/recon"}, env.configPath)
	if err == nil {
		t.Fatal("expected absolute --meshroom_dir to be rejected")
	}
	requireContains(t, err.Error(), "layout.photogrammetry_dir")
}

func TestRootWithoutInputShowsHelp(t *testing.T) {
	env := setupCLITestEnv(t, withHistoryDisabled)

	out, _, err := runCLI(t, nil, env.configPath)
	if err != nil {
		t.Fatalf("root without input: %v", err)
	}
	requireContains(t, out, "Usage:")
}
