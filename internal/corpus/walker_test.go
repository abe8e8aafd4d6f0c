package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCorpus(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestWalkIncludesAndExcludes(t *testing.T) {
	root := writeCorpus(t, map[string]string{
		"a.txt":        "alpha",
		"b.md":         "bravo",
		"sub/c.txt":    "charlie",
		"sub/skip.txt": "skipped",
	})

	w := NewWalker([]string{"**/*.txt"}, []string{"**/skip.txt"})
	paths, err := w.Walk(root)
	require.NoError(t, err)

	rels := make([]string, len(paths))
	for i, p := range paths {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		rels[i] = filepath.ToSlash(rel)
	}
	assert.ElementsMatch(t, []string{"a.txt", "sub/c.txt"}, rels)
}

func TestWalkDefaultIncludesEverything(t *testing.T) {
	root := writeCorpus(t, map[string]string{"x.bin": "x", "d/y.txt": "y"})
	paths, err := NewWalker(nil, nil).Walk(root)
	require.NoError(t, err)
	assert.Len(t, paths, 2)
}

func TestReadAll(t *testing.T) {
	root := writeCorpus(t, map[string]string{"a.txt": "alpha", "b.txt": "bravo"})
	docs, paths, err := NewWalker([]string{"**/*.txt"}, nil).ReadAll(root)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Len(t, paths, 2)
	assert.ElementsMatch(t, []string{"alpha", "bravo"}, docs)
}

func TestWalkMissingRoot(t *testing.T) {
	_, err := NewWalker(nil, nil).Walk(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
