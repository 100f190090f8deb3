package fileutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/facette/natsort"
)

// EnsureDir creates path and any missing parents. An existing directory is not
// an error.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		if FolderExists(path) {
			return nil
		}
		return fmt.Errorf("ensure dir %s: %w", path, err)
	}
	return nil
}

// MakeCleanFolder leaves path as an existing empty directory, removing any
// previous contents. The operation is not atomic.
func MakeCleanFolder(path string) error {
	if err := os.RemoveAll(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clean folder %s: %w", path, err)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create folder %s: %w", path, err)
	}
	return nil
}

// ListFiles returns the regular files directly inside dir whose extension
// contains ext (every file when ext is empty), in natural order so "2.png"
// precedes "10.png". A missing dir yields an error wrapping fs.ErrNotExist.
func ListFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list files in %s: %w", dir, err)
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if ext != "" && !strings.Contains(filepath.Ext(name), ext) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	natsort.Sort(files)
	return files, nil
}

// FileExists reports whether path is a regular file whose extension contains ext.
func FileExists(path, ext string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return ext == "" || strings.Contains(filepath.Ext(path), ext)
}

// FolderExists reports whether path exists and is not a regular file.
func FolderExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// WriteJSON writes v as indented JSON. Nothing is written when the parent
// directory is missing, and in every case an error is returned if the file
// does not exist afterwards.
func WriteJSON(path string, v any) error {
	if FolderExists(filepath.Dir(path)) {
		data, err := json.MarshalIndent(v, "", "    ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	if !FileExists(path, "") {
		return fmt.Errorf("cannot create file %s: %w", path, fs.ErrNotExist)
	}
	return nil
}

// ReadJSON decodes path into v. It reports false without error when the file
// is absent; decode failures are returned.
func ReadJSON(path string, v any) (bool, error) {
	if !FileExists(path, "") {
		return false, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}
