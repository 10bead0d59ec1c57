package searchfile

import (
	"errors"
	"os"
	"path/filepath"
)

var ErrNotFound = errors.New("file is not found")

// Upward looks for a regular file named fileName in from and its ancestors.
//
// It returns the path of the nearest one.
func Upward(from string, fileName string) (string, error) {
	dir, err := filepath.Abs(from)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, fileName)
		if s, err := os.Stat(candidate); err == nil && s.Mode().IsRegular() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}
