// Package source locates and parses the tabular inputs of the dashboard:
// the categorized checking export (required) and the savings balance
// history (optional).
package source

import (
	"fmt"
	"os"
	"path/filepath"

	"hoadash/internal/core"
)

// Locator resolves a bare filename against an ordered list of candidate
// directories. Search order is policy, not data: configured data dir
// first, then the working directory, the executable's directory and its
// ../data sibling.
type Locator struct {
	dirs []string
}

func NewLocator(dataDir string) *Locator {
	dirs := make([]string, 0, 4)
	if dataDir != "" {
		dirs = append(dirs, dataDir)
	}
	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, cwd)
	}
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		dirs = append(dirs, exeDir, filepath.Join(exeDir, "..", "data"))
	}
	return &Locator{dirs: dirs}
}

// NewLocatorWithDirs uses exactly the given directories, in order.
func NewLocatorWithDirs(dirs ...string) *Locator {
	return &Locator{dirs: dirs}
}

// Resolve returns the first readable location of filename, or a wrapped
// core.ErrSourceNotFound naming the file and the directories tried.
func (l *Locator) Resolve(filename string) (string, error) {
	for _, dir := range l.dirs {
		p := filepath.Join(dir, filename)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s (tried %d directories)", core.ErrSourceNotFound, filename, len(l.dirs))
}

// Identity is a cheap fingerprint of a source file, used as a memoization
// key: path plus size plus mtime. Source files do not change during a
// session, so content hashing is not needed.
func Identity(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	return fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano()), nil
}
