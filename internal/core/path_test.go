package core

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCanonicalPathResolvesRelative(t *testing.T) {
	chdir(t, t.TempDir())
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}

	got, err := CanonicalPath("sub/folder")
	if err != nil {
		t.Fatalf("CanonicalPath failed: %v", err)
	}
	want, _ := CanonicalPath(filepath.Join(wd, "sub", "folder"))
	if got != want {
		t.Errorf("Relative and absolute forms differ: %s vs %s", got, want)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("Canonical path must be absolute, got %s", got)
	}
}

func TestCanonicalPathCleans(t *testing.T) {
	dir := t.TempDir()

	messy := filepath.Join(dir, "a", "..", "b") + string(filepath.Separator)
	got, err := CanonicalPath(messy)
	if err != nil {
		t.Fatalf("CanonicalPath failed: %v", err)
	}
	want := filepath.Join(dir, "b")
	if got != want {
		t.Errorf("Got %s, want %s", got, want)
	}
}

func TestCanonicalPathEmpty(t *testing.T) {
	if _, err := CanonicalPath(""); !errors.Is(err, ErrPathNotFound) {
		t.Errorf("Expected ErrPathNotFound for empty path, got %v", err)
	}
}
