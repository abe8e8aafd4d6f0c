package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"featops/featurizer"
	"featops/featurizer/countvec"
)

func TestFitMinDocFreqComesFromConfig(t *testing.T) {
	corpusDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(corpusDir, "a.txt"), []byte("common rare"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(corpusDir, "b.txt"), []byte("common other"), 0o644))

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("vectorizer:\n  minDocFreq: 2\n"), 0o644))

	outFile := filepath.Join(t.TempDir(), "state.bin")
	rootCmd.SetArgs([]string{
		"fit", "--config", cfgPath,
		"--name", "mindf", "--dir", corpusDir, "--out", outFile,
	})
	require.NoError(t, rootCmd.Execute())

	state, err := os.ReadFile(outFile)
	require.NoError(t, err)
	tr, err := countvec.Load(featurizer.NewArchive(state))
	require.NoError(t, err)
	// minDocFreq 2 from config must apply: only "common" appears in both
	// documents, so the single-document terms are filtered out.
	assert.Equal(t, map[string]uint32{"common": 0}, tr.Vocabulary())
}
