// Package dotdir resolves the .thinkprobe/ directory that holds config.toml.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DirName is the name of the thinkprobe directory.
	DirName = ".thinkprobe"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the target absolute path to a .thinkprobe/ directory.
// Order of precedence is as follows:
//  1. Provided override, created when missing
//  2. Local ./.thinkprobe/ dir
//  3. Home ~/.thinkprobe/ dir
//
// When none of these apply, Target returns an empty string and callers fall
// back to defaults.
func (m *Manager) Target(overrideDir string) (string, error) {
	if overrideDir != "" {
		if err := os.MkdirAll(overrideDir, 0o755); err != nil {
			return "", fmt.Errorf("creating thinkprobe directory %s: %w", overrideDir, err)
		}
		return filepath.Abs(overrideDir)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	if local := filepath.Join(cwd, DirName); isDir(local) {
		return local, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", nil
	}
	if global := filepath.Join(home, DirName); isDir(global) {
		return global, nil
	}

	return "", nil
}

// Init creates a .thinkprobe/ directory inside parent and returns its path.
// created is false when the directory already existed.
func (m *Manager) Init(parent string) (dir string, created bool, err error) {
	dir = filepath.Join(parent, DirName)
	if isDir(dir) {
		return dir, false, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", false, fmt.Errorf("creating %s directory: %w", DirName, err)
	}
	return dir, true, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
