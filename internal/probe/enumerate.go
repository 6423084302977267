// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package probe

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Enumerate walks root recursively and returns every regular file that
// matches none of the exclude patterns. Patterns are doublestar globs
// matched against the slash separated path relative to root.
func Enumerate(root string, exclude []string) ([]string, error) {
	files := make([]string, 0, 64)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			// unreadable subtree, retried next cycle
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if Excluded(filepath.ToSlash(rel), exclude) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enumerate %s: %w", root, err)
	}

	return files, nil
}

// Excluded reports whether rel matches any pattern.
func Excluded(rel string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
