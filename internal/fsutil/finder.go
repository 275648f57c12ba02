// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// FindFiles walks root and returns every regular file whose slash-separated
// path relative to root matches at least one include pattern and no exclude
// pattern. Directories matched by an exclude pattern are not descended into.
// Patterns use doublestar syntax. Results are in lexical walk order.
func FindFiles(root string, includes, excludes []string) ([]string, error) {
	if len(includes) == 0 {
		panic("fsutil: at least one include pattern is required")
	}
	for _, p := range append(append([]string{}, includes...), excludes...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid glob pattern %q", p)
		}
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if MatchAny(excludes, rel) || MatchAny(excludes, rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if MatchAny(includes, rel) && !MatchAny(excludes, rel) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// MatchAny reports whether name matches one of patterns. Invalid patterns
// never match.
func MatchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}
