// Package corpus collects training documents from disk for the fit
// commands.
package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Walker selects corpus files under a root by include/exclude glob
// patterns (doublestar syntax, matched against root-relative paths).
type Walker struct {
	includes []string
	excludes []string
}

// NewWalker builds a walker. With no includes, every file matches.
func NewWalker(includes, excludes []string) *Walker {
	if len(includes) == 0 {
		includes = []string{"**/*"}
	}
	return &Walker{includes: includes, excludes: excludes}
}

// Walk returns the matching file paths under root in walk order.
func (w *Walker) Walk(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !w.shouldInclude(rel) || w.shouldExclude(rel) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("corpus: walk %s: %w", root, err)
	}
	return paths, nil
}

// ReadAll loads the selected files as documents, in path order.
func (w *Walker) ReadAll(root string) ([]string, []string, error) {
	paths, err := w.Walk(root)
	if err != nil {
		return nil, nil, err
	}
	docs := make([]string, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, nil, fmt.Errorf("corpus: read %s: %w", p, err)
		}
		docs = append(docs, string(data))
	}
	return docs, paths, nil
}

func (w *Walker) shouldInclude(path string) bool {
	for _, pattern := range w.includes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func (w *Walker) shouldExclude(path string) bool {
	for _, pattern := range w.excludes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}
