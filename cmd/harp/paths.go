package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/harp/pkg/adapters/archive"
)

// expandPatterns resolves doublestar patterns such as "exports/**/*.org".
// Plain paths are kept as given; patterns matching nothing are an error.
func expandPatterns(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", pattern)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out, nil
}

// isArchive reports whether path names a profile bundle.
func isArchive(path string) bool {
	return strings.HasSuffix(strings.ToLower(filepath.Base(path)), archive.Extension)
}
