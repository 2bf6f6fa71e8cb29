//nolint:revive // var-naming - package name is meaningful
package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles", "registry.toml")
	content := "[[profile]]\nname = \"site\"\n"

	WriteFile(t, path, content)

	got, err := os.ReadFile(path) //nolint:gosec // G304 - safe in test code using temp directory
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}

	if string(got) != content {
		t.Errorf("file content = %q, want %q", got, content)
	}
}

func TestAssertHelpers(t *testing.T) {
	t.Run("no error passes", func(t *testing.T) {
		AssertNoError(t, nil)
	})

	t.Run("equal values pass", func(t *testing.T) {
		AssertEqual(t, "toto", "toto")
		AssertEqual(t, 3, 3)
		AssertEqual(t, true, true)
	})

	// The failure paths call t.Fatalf/t.Errorf and are exercised by every
	// test that uses these helpers.
}

func TestGoldenFile(t *testing.T) {
	t.Run("creates golden file in update mode", func(t *testing.T) {
		testdataDir := filepath.Join(t.TempDir(), "testdata")

		SetUpdateGolden(true)
		defer SetUpdateGolden(false)

		content := "toto\nbackup\n"
		GoldenFile(t, testdataDir, "ls_output", content)

		goldenPath := filepath.Join(testdataDir, "ls_output.golden")
		got, err := os.ReadFile(goldenPath) //nolint:gosec // G304 - safe in test
		if err != nil {
			t.Fatalf("golden file was not created: %v", err)
		}

		if string(got) != content {
			t.Errorf("golden file content = %q, want %q", got, content)
		}
	})

	t.Run("compares against existing golden file", func(t *testing.T) {
		testdataDir := filepath.Join(t.TempDir(), "testdata")

		SetUpdateGolden(true)
		content := "successfully created: toto\n"
		GoldenFile(t, testdataDir, "new_output", content)
		SetUpdateGolden(false)

		GoldenFile(t, testdataDir, "new_output", content)
	})
}

func TestUpdateGoldenFlag(t *testing.T) {
	original := UpdateGolden()
	defer SetUpdateGolden(original)

	SetUpdateGolden(true)
	if !UpdateGolden() {
		t.Error("UpdateGolden() should be true after SetUpdateGolden(true)")
	}

	SetUpdateGolden(false)
	if UpdateGolden() {
		t.Error("UpdateGolden() should be false after SetUpdateGolden(false)")
	}
}
