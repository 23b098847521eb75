package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrRootNotFound is returned when no data directory marker is found.
var ErrRootNotFound = errors.New("data directory not found")

// FindRoot walks up from startDir looking for a harp data directory, marked
// by a .harp system directory or a Badger MANIFEST file.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for dir := abs; ; {
		if hasFile(dir, ".harp") || hasFile(dir, "MANIFEST") {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrRootNotFound
		}
		dir = parent
	}
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
