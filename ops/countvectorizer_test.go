package ops

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	assert_lib "github.com/ZanzyTHEbar/assert-lib"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"featops/featurizer"
	"featops/featurizer/countvec"
	"featops/featurizer/tokenizer"
	"featops/kernel"
	"featops/tensor"
)

func testInfo() kernel.Info {
	return kernel.Info{Logger: zerolog.Nop(), Assert: assert_lib.NewAssertHandler()}
}

// countState serializes a count-vectorizer fitted on the given docs.
func countState(t *testing.T, docs []string, opts countvec.FitOptions) []byte {
	t.Helper()
	tr, err := countvec.Fit(docs, opts)
	require.NoError(t, err)
	archive := featurizer.NewWritableArchive()
	tr.Save(archive)
	return archive.Bytes()
}

func countNode(t *testing.T, state []byte, input string) kernel.Node {
	t.Helper()
	stateTensor, err := tensor.NewUint8(tensor.NewShape(int64(len(state))), state)
	require.NoError(t, err)
	inputTensor, err := tensor.NewString(tensor.NewShape(1), []string{input})
	require.NoError(t, err)
	return kernel.Node{
		OpType:  "CountVectorizerTransformer",
		Domain:  FeaturizersDomain,
		Version: 1,
		Inputs:  []*tensor.Tensor{stateTensor, inputTensor},
	}
}

func runCount(t *testing.T, state []byte, input string) []uint32 {
	t.Helper()
	registry := kernel.NewRegistry()
	require.NoError(t, RegisterAll(registry))
	executor := kernel.NewExecutor(registry)

	outs, err := executor.Run(context.Background(), countNode(t, state, input))
	require.NoError(t, err)
	require.Len(t, outs, 1)
	require.Equal(t, tensor.Uint32, outs[0].DType())
	data, err := outs[0].Uint32s()
	require.NoError(t, err)
	return data
}

func TestCountVectorizerDenseOutput(t *testing.T) {
	// Vocabulary {"a":0, "b":1}; input "a a b" scatters to [2, 1].
	state := countState(t, []string{"a b"}, countvec.FitOptions{})
	assert.Equal(t, []uint32{2, 1}, runCount(t, state, "a a b"))
}

func TestCountVectorizerNoHitsAllZero(t *testing.T) {
	state := countState(t, []string{"a b"}, countvec.FitOptions{})
	assert.Equal(t, []uint32{0, 0}, runCount(t, state, "x y z"))
}

func TestCountVectorizerOutputLengthMatchesVocabulary(t *testing.T) {
	state := countState(t, []string{"a b c d e"}, countvec.FitOptions{})
	out := runCount(t, state, "c e e")
	require.Len(t, out, 5)
	assert.Equal(t, []uint32{0, 0, 1, 0, 2}, out)
}

func TestCountVectorizerMalformedState(t *testing.T) {
	registry := kernel.NewRegistry()
	require.NoError(t, RegisterAll(registry))
	executor := kernel.NewExecutor(registry)

	_, err := executor.Run(context.Background(), countNode(t, []byte{0xFF, 0x01}, "a"))
	assert.Error(t, err)
}

func TestCountVectorizerTypeConstraints(t *testing.T) {
	registry := kernel.NewRegistry()
	require.NoError(t, RegisterAll(registry))
	executor := kernel.NewExecutor(registry)

	// Swap the state tensor for a uint32 one; resolution must reject it
	// before Compute runs.
	badState, err := tensor.NewUint32(tensor.NewShape(1), []uint32{1})
	require.NoError(t, err)
	inputTensor, err := tensor.NewString(tensor.NewShape(1), []string{"a"})
	require.NoError(t, err)
	_, err = executor.Run(context.Background(), kernel.Node{
		OpType:  "CountVectorizerTransformer",
		Domain:  FeaturizersDomain,
		Version: 1,
		Inputs:  []*tensor.Tensor{badState, inputTensor},
	})
	assert.Error(t, err)
}

func TestCountVectorizerEmptyInputTensor(t *testing.T) {
	state := countState(t, []string{"a b"}, countvec.FitOptions{})
	stateTensor, err := tensor.NewUint8(tensor.NewShape(int64(len(state))), state)
	require.NoError(t, err)
	emptyInput, err := tensor.NewString(tensor.NewShape(0), nil)
	require.NoError(t, err)

	registry := kernel.NewRegistry()
	require.NoError(t, RegisterAll(registry))
	executor := kernel.NewExecutor(registry)
	_, err = executor.Run(context.Background(), kernel.Node{
		OpType:  "CountVectorizerTransformer",
		Domain:  FeaturizersDomain,
		Version: 1,
		Inputs:  []*tensor.Tensor{stateTensor, emptyInput},
	})
	assert.Error(t, err)
}

func TestCountVectorizerWordpieceVocabAttr(t *testing.T) {
	vocabPath := filepath.Join(t.TempDir(), "vocab.txt")
	require.NoError(t, os.WriteFile(vocabPath, []byte("[UNK]\nhello\nworld\n"), 0o644))
	wp, err := tokenizer.NewWordPiece(vocabPath)
	require.NoError(t, err)
	state := countState(t, []string{"hello world"}, countvec.FitOptions{Analyzer: wp})

	registry := kernel.NewRegistry()
	require.NoError(t, RegisterAll(registry))
	executor := kernel.NewExecutor(registry)

	// The state records only the analyzer name; without the vocab
	// attribute the invocation must fail at deserialization.
	node := countNode(t, state, "hello hello world")
	_, err = executor.Run(context.Background(), node)
	require.Error(t, err)

	node.Attrs = map[string]string{WordpieceVocabAttr: vocabPath}
	outs, err := executor.Run(context.Background(), node)
	require.NoError(t, err)
	require.Len(t, outs, 1)
	data, err := outs[0].Uint32s()
	require.NoError(t, err)
	assert.Equal(t, []uint32{2, 1}, data)
}

func TestCountVectorizerWordpieceVocabAttrMissingFile(t *testing.T) {
	vocabPath := filepath.Join(t.TempDir(), "vocab.txt")
	require.NoError(t, os.WriteFile(vocabPath, []byte("[UNK]\nhello\n"), 0o644))
	wp, err := tokenizer.NewWordPiece(vocabPath)
	require.NoError(t, err)
	state := countState(t, []string{"hello"}, countvec.FitOptions{Analyzer: wp})

	registry := kernel.NewRegistry()
	require.NoError(t, RegisterAll(registry))
	executor := kernel.NewExecutor(registry)

	node := countNode(t, state, "hello")
	node.Attrs = map[string]string{WordpieceVocabAttr: filepath.Join(t.TempDir(), "missing.txt")}
	_, err = executor.Run(context.Background(), node)
	assert.Error(t, err)
}

func TestSparseWriterRejectsOversizedResult(t *testing.T) {
	c := kernel.NewContext(context.Background(), nil)
	w := newSparseWriter(c, testInfo())

	err := w.writeUint32(featurizer.SparseVectorEncoding[uint32]{NumElements: math.MaxInt64})
	require.Error(t, err)
	assert.Empty(t, c.Outputs(), "no truncated output may be produced")
}

func TestSparseWriterRejectsCallbackOutsideWindow(t *testing.T) {
	c := kernel.NewContext(context.Background(), nil)
	w := newSparseWriter(c, testInfo())
	w.close()

	err := w.writeUint32(featurizer.SparseVectorEncoding[uint32]{NumElements: 2})
	assert.ErrorIs(t, err, ErrCallbackOutsideWindow)

	err = w.writeFloat32(featurizer.SparseVectorEncoding[float32]{NumElements: 2})
	assert.ErrorIs(t, err, ErrCallbackOutsideWindow)
}

func TestSparseWriterRejectsInvalidEncoding(t *testing.T) {
	c := kernel.NewContext(context.Background(), nil)
	w := newSparseWriter(c, testInfo())

	err := w.writeUint32(featurizer.SparseVectorEncoding[uint32]{
		NumElements: 2,
		Values:      []featurizer.ValueEncoding[uint32]{{Index: 5, Value: 1}},
	})
	assert.Error(t, err)
	assert.Empty(t, c.Outputs())
}

func TestCountVectorizerBatchInvocationsIndependent(t *testing.T) {
	state := countState(t, []string{"a b"}, countvec.FitOptions{})
	registry := kernel.NewRegistry()
	require.NoError(t, RegisterAll(registry))
	executor := kernel.NewExecutor(registry, kernel.WithMaxWorkers(4))

	inputs := []string{"a a b", "b", "x", "a"}
	nodes := make([]kernel.Node, len(inputs))
	for i, in := range inputs {
		nodes[i] = countNode(t, state, in)
	}
	results, err := executor.RunBatch(context.Background(), nodes)
	require.NoError(t, err)

	want := [][]uint32{{2, 1}, {0, 1}, {0, 0}, {1, 0}}
	for i, outs := range results {
		data, err := outs[0].Uint32s()
		require.NoError(t, err)
		assert.Equal(t, want[i], data)
	}
}
