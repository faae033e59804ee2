// fs_host.go - real-filesystem FS backend
//
// Grounded on file_io.go's sanitizePath confinement logic (reject
// absolute paths and any ".." component, then verify the joined path is
// still inside baseDir after Clean), generalized from a single flat MMIO
// directory to the layered rom/data/sys paths hostabi_fs.go builds.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OSFileSystem implements FS against a confined directory tree on disk.
type OSFileSystem struct {
	baseDir string
}

// NewOSFileSystem returns an FS confined to baseDir, which is created if
// it does not already exist.
func NewOSFileSystem(baseDir string) (*OSFileSystem, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		abs = baseDir
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("fs_host: create base dir: %w", err)
	}
	return &OSFileSystem{baseDir: abs}, nil
}

// sanitizePath rejects absolute paths and any ".." component, then
// verifies the joined, cleaned path is still inside baseDir - the same
// two-step check file_io.go uses, applied to the rom/data/sys path
// strings hostabi_fs.go constructs rather than a single flat directory.
func (f *OSFileSystem) sanitizePath(path string) (string, bool) {
	if filepath.IsAbs(path) || strings.Contains(path, "..") {
		return "", false
	}
	full := filepath.Join(f.baseDir, path)
	rel, err := filepath.Rel(f.baseDir, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return full, true
}

func (f *OSFileSystem) Load(path string) ([]byte, error) {
	full, ok := f.sanitizePath(path)
	if !ok {
		return nil, fmt.Errorf("fs_host: unsafe path %q", path)
	}
	return os.ReadFile(full)
}

func (f *OSFileSystem) Dump(path string, data []byte) error {
	full, ok := f.sanitizePath(path)
	if !ok {
		return fmt.Errorf("fs_host: unsafe path %q", path)
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("fs_host: create parent dirs: %w", err)
	}
	return os.WriteFile(full, data, 0o644)
}

func (f *OSFileSystem) Remove(path string) error {
	full, ok := f.sanitizePath(path)
	if !ok {
		return fmt.Errorf("fs_host: unsafe path %q", path)
	}
	return os.Remove(full)
}

func (f *OSFileSystem) Size(path string) (int64, error) {
	full, ok := f.sanitizePath(path)
	if !ok {
		return 0, fmt.Errorf("fs_host: unsafe path %q", path)
	}
	info, err := os.Stat(full)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// ListDirs lists the immediate subdirectory names under path, used by
// the sudo launcher ABI's iter_dirs calls to enumerate installed apps.
func (f *OSFileSystem) ListDirs(path string) ([]string, error) {
	full, ok := f.sanitizePath(path)
	if !ok {
		return nil, fmt.Errorf("fs_host: unsafe path %q", path)
	}
	entries, err := os.ReadDir(full)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	return dirs, nil
}
