package e2e

import (
	"os"
	"path/filepath"
	"testing"
)

// Fixture provides helpers for creating test files in E2E tests.
type Fixture struct {
	t       *testing.T
	baseDir string
}

// NewFixture creates a new fixture helper rooted at the given directory.
func NewFixture(t *testing.T, baseDir string) *Fixture {
	t.Helper()
	return &Fixture{
		t:       t,
		baseDir: baseDir,
	}
}

// WriteFile writes content to a file relative to the fixture base directory.
// It creates parent directories as needed.
func (f *Fixture) WriteFile(relPath, content string) string {
	f.t.Helper()
	fullPath := filepath.Join(f.baseDir, relPath)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		f.t.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(fullPath, []byte(content), 0o600); err != nil {
		f.t.Fatalf("failed to write file %s: %v", fullPath, err)
	}

	return fullPath
}

// MkdirAll creates a directory and all parent directories relative to the base.
func (f *Fixture) MkdirAll(relPath string) string {
	f.t.Helper()
	fullPath := filepath.Join(f.baseDir, relPath)

	if err := os.MkdirAll(fullPath, 0o750); err != nil {
		f.t.Fatalf("failed to create directory %s: %v", fullPath, err)
	}

	return fullPath
}

// Symlink creates a symlink at relPath pointing at target.
func (f *Fixture) Symlink(target, relPath string) string {
	f.t.Helper()
	fullPath := filepath.Join(f.baseDir, relPath)

	if err := os.Symlink(target, fullPath); err != nil {
		f.t.Fatalf("failed to create symlink %s: %v", fullPath, err)
	}

	return fullPath
}

// Path returns the full path for a relative path.
func (f *Fixture) Path(relPath string) string {
	return filepath.Join(f.baseDir, relPath)
}

// Dir returns the fixture base directory.
func (f *Fixture) Dir() string {
	return f.baseDir
}

// Exists returns true if the file or directory exists.
func (f *Fixture) Exists(relPath string) bool {
	f.t.Helper()
	fullPath := filepath.Join(f.baseDir, relPath)
	_, err := os.Stat(fullPath)
	return err == nil
}

// ReadFile reads and returns the content of a file.
func (f *Fixture) ReadFile(relPath string) string {
	f.t.Helper()
	fullPath := filepath.Join(f.baseDir, relPath)

	// #nosec G304 - fullPath is constructed from trusted test fixture base and test-provided path
	data, err := os.ReadFile(fullPath)
	if err != nil {
		f.t.Fatalf("failed to read file %s: %v", fullPath, err)
	}

	return string(data)
}

// SourceFixture creates a fixture helper for local files to be synced.
func (h *Harness) SourceFixture() *Fixture {
	h.t.Helper()
	return NewFixture(h.t, h.t.TempDir())
}

// DestFixture creates a fixture helper for sync destinations.
func (h *Harness) DestFixture() *Fixture {
	h.t.Helper()
	return NewFixture(h.t, h.t.TempDir())
}

// Seed creates a profile with one entry, going through the CLI so the
// registry ends up exactly as a user would have left it.
func (h *Harness) Seed(profile, local, remote string) {
	h.t.Helper()

	if r := h.Run("new", profile); !r.Success() {
		h.t.Fatalf("failed to create profile %s: %v", profile, r.Err)
	}
	if r := h.Run("add", profile, local, remote); !r.Success() {
		h.t.Fatalf("failed to add entry to %s: %v", profile, r.Err)
	}
}
