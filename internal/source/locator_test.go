package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"hoadash/internal/core"
)

func TestLocatorSearchOrder(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	if err := os.WriteFile(filepath.Join(second, "checking.csv"), []byte("x"), 0o644); err != nil {
		t.Fatalf("fixture: %v", err)
	}

	l := NewLocatorWithDirs(first, second)
	got, err := l.Resolve("checking.csv")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != filepath.Join(second, "checking.csv") {
		t.Fatalf("expected the second dir to win, got %s", got)
	}

	// Once the file exists in the first dir, it shadows the second.
	if err := os.WriteFile(filepath.Join(first, "checking.csv"), []byte("x"), 0o644); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	got, err = l.Resolve("checking.csv")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != filepath.Join(first, "checking.csv") {
		t.Fatalf("expected the first dir to win, got %s", got)
	}
}

func TestLocatorNotFound(t *testing.T) {
	l := NewLocatorWithDirs(t.TempDir())
	_, err := l.Resolve("nope.csv")
	if !errors.Is(err, core.ErrSourceNotFound) {
		t.Fatalf("expected ErrSourceNotFound, got %v", err)
	}
}

func TestLocatorSkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "checking.csv"), 0o755); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	l := NewLocatorWithDirs(dir)
	if _, err := l.Resolve("checking.csv"); !errors.Is(err, core.ErrSourceNotFound) {
		t.Fatalf("a directory must not resolve as a source, got %v", err)
	}
}

func TestIdentityChangesWithFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.csv")
	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	id1, err := Identity(path)
	if err != nil {
		t.Fatalf("identity: %v", err)
	}
	if err := os.WriteFile(path, []byte("longer content"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	id2, err := Identity(path)
	if err != nil {
		t.Fatalf("identity: %v", err)
	}
	if id1 == id2 {
		t.Fatal("identity must change when size changes")
	}
}
