package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// File keeps the document in a local file.
type File struct {
	Path string
	// Atomic writes to a temporary file in the same folder then renames it
	// over Path, so that a crash never leaves a truncated document.
	Atomic bool
}

// NewFile returns an atomic File backend.
func NewFile(path string) *File {
	return &File{Path: path, Atomic: true}
}

func (f *File) String() string { return f.Path }

// Read returns the file content.
func (f *File) Read(_ context.Context) ([]byte, error) {
	return os.ReadFile(f.Path)
}

// Write replaces the file content, creating its folder if needed.
func (f *File) Write(_ context.Context, data []byte) error {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("could not create folder for %q: %w", f.Path, err)
	}
	if !f.Atomic {
		return os.WriteFile(f.Path, data, 0o644)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.Path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("could not create temporary file for %q: %w", f.Path, err)
	}
	// no-op once renamed.
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("could not write %q: %w", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("could not sync %q: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not close %q: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("could not set permissions on %q: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("could not replace %q: %w", f.Path, err)
	}
	return nil
}
