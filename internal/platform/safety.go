package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// DevDirName is the directory under os.TempDir() that dev runs are re-rooted to.
const DevDirName = "harp-dev"

// IsDevRun reports whether the process runs under `go run` or `go test`,
// both of which build binaries in temporary directories.
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}

	if strings.HasPrefix(strings.ToLower(exe), strings.ToLower(os.TempDir())) {
		return true
	}
	return strings.HasSuffix(exe, ".test") || strings.HasSuffix(exe, ".test.exe")
}

// ResolveDataPath returns the directory harp should actually use. With
// forceTemp, paths outside the system temp dir are re-rooted under
// <tmp>/harp-dev so experiments never touch real health records.
func ResolveDataPath(userPath string, forceTemp bool) string {
	if !forceTemp {
		if userPath == "" {
			return "."
		}
		return userPath
	}

	clean := filepath.Clean(userPath)
	if rel, err := filepath.Rel(os.TempDir(), clean); err == nil && !strings.HasPrefix(rel, "..") && filepath.IsAbs(clean) {
		return clean
	}

	sub := filepath.Base(clean)
	if userPath == "" || sub == "." || sub == string(os.PathSeparator) {
		sub = "default"
	}
	return filepath.Join(os.TempDir(), DevDirName, sub)
}
