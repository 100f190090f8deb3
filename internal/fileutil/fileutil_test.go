package fileutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestListFilesNaturalOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"10.png", "2.png", "1.png", "notes.txt"} {
		touch(t, filepath.Join(dir, name))
	}
	if err := os.Mkdir(filepath.Join(dir, "3.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ListFiles(dir, ".png")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(dir, "1.png"),
		filepath.Join(dir, "2.png"),
		filepath.Join(dir, "10.png"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ListFiles mismatch (-want +got):\n%s", diff)
	}

	all, err := ListFiles(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Fatalf("expected every regular file without filter, got %v", all)
	}
}

func TestListFilesMissingDir(t *testing.T) {
	_, err := ListFiles(filepath.Join(t.TempDir(), "missing"), ".png")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestListFilesEmptyDir(t *testing.T) {
	got, err := ListFiles(t.TempDir(), ".exr")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty listing, got %v", got)
	}
}

func TestMakeCleanFolderEmptiesExisting(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "color")
	touch(t, filepath.Join(dir, "0.png"))
	touch(t, filepath.Join(dir, "nested", "1.png"))

	if err := MakeCleanFolder(dir); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("expected folder to exist: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty folder, found %d entries", len(entries))
	}
}

func TestMakeCleanFolderCreatesMissing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := MakeCleanFolder(dir); err != nil {
		t.Fatal(err)
	}
	if !FolderExists(dir) {
		t.Fatal("expected folder to be created")
	}
}

func TestEnsureDirIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "x", "y")
	for range 2 {
		if err := EnsureDir(dir); err != nil {
			t.Fatal(err)
		}
	}
	file := filepath.Join(t.TempDir(), "file")
	touch(t, file)
	if err := EnsureDir(file); err == nil {
		t.Fatal("expected error when a file occupies the path")
	}
}

func TestFileAndFolderExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "scan.depth.zlib")
	touch(t, file)

	if !FileExists(file, "") || !FileExists(file, ".zlib") {
		t.Fatal("expected file to exist")
	}
	if FileExists(file, ".mp4") {
		t.Fatal("expected extension filter to reject")
	}
	if FileExists(dir, "") {
		t.Fatal("directory is not a file")
	}
	if !FolderExists(dir) || FolderExists(file) || FolderExists(filepath.Join(dir, "nope")) {
		t.Fatal("unexpected FolderExists result")
	}
}

func TestJSONRoundTripAndMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.json")
	in := map[string]any{"status": "processed", "stages": []any{"convert"}}
	if err := WriteJSON(path, in); err != nil {
		t.Fatal(err)
	}
	var out map[string]any
	ok, err := ReadJSON(path, &out)
	if err != nil || !ok {
		t.Fatalf("ReadJSON = %v, %v", ok, err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	ok, err = ReadJSON(filepath.Join(dir, "absent.json"), &out)
	if ok || err != nil {
		t.Fatalf("expected (false, nil) for absent file, got (%v, %v)", ok, err)
	}
}

func TestWriteJSONMissingParent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "run.json")
	if err := WriteJSON(path, map[string]int{"a": 1}); err == nil {
		t.Fatal("expected error when parent directory is missing")
	}
	if FolderExists(filepath.Dir(path)) {
		t.Fatal("WriteJSON must not create the parent directory")
	}
}

func TestReadJSONMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	var out map[string]any
	if _, err := ReadJSON(path, &out); err == nil {
		t.Fatal("expected decode error")
	}
}
