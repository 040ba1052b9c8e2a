// Package ioutil provides the atomic write-then-rename filesystem helpers
// used by config persistence, plus the file/directory checks kolibrid runs
// before opening the genome ledger, generalized from src/core/io/writer.go.
package ioutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteAtomic writes data to path using the write-temp/fsync/rename
// pattern: observers see either the old file or the fully-written new one,
// never a partial write.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ioutil: create directory: %w", err)
	}

	tempPath := path + ".tmp"
	tempFile, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("ioutil: create temp file: %w", err)
	}

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return fmt.Errorf("ioutil: write temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return fmt.Errorf("ioutil: sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("ioutil: close temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("ioutil: rename temp file: %w", err)
	}

	return syncDirectory(dir)
}

// syncDirectory fsyncs a directory so the rename's metadata survives a crash.
func syncDirectory(path string) error {
	dir, err := os.Open(path)
	if err != nil {
		return err
	}
	defer dir.Close()
	return dir.Sync()
}

// FileExists reports whether path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// EnsureDirectory creates path and any missing parents.
func EnsureDirectory(path string) error {
	return os.MkdirAll(path, 0o755)
}
