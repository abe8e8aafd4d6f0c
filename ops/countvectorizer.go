// Package ops contains the operator kernels adapting the featurizer family
// to the kernel host ABI. Each kernel is pure glue: deserialize transformer
// state from input 0, run the transformer over the string input, scatter
// the sparse result into a dense output tensor.
package ops

import (
	"errors"
	"fmt"
	"math"

	"featops/featurizer"
	"featops/featurizer/countvec"
	"featops/featurizer/tokenizer"
	"featops/kernel"
	"featops/tensor"
)

// FeaturizersDomain is the vendor domain the featurizer operators are
// registered under.
const FeaturizersDomain = "com.microsoft.mlfeaturizers"

// WordpieceVocabAttr is the invocation attribute naming the subword vocab
// file for states fitted with the wordpiece analyzer. The state records the
// analyzer name but not the vocab file, so the host supplies it per node.
const WordpieceVocabAttr = "wordpiece_vocab"

// wordpieceAnalyzer builds the wordpiece analyzer from the node's vocab
// attribute, or returns nil when the attribute is absent.
func wordpieceAnalyzer(info kernel.Info) (countvec.Analyzer, error) {
	path := info.Attrs[WordpieceVocabAttr]
	if path == "" {
		return nil, nil
	}
	wp, err := tokenizer.NewWordPiece(path)
	if err != nil {
		return nil, fmt.Errorf("ops: load wordpiece vocab: %w", err)
	}
	return wp, nil
}

// ErrCallbackOutsideWindow reports a result callback fired outside the
// execute/flush window. This is a contract violation in the transformer,
// not a data condition, and fails the whole invocation.
var ErrCallbackOutsideWindow = errors.New("ops: result callback invoked outside the execute/flush window")

// sparseWriter scatters sparse results into dense output tensors. The open
// flag is the execute/flush window: once the kernel closes the writer,
// further results are rejected.
type sparseWriter struct {
	c    *kernel.Context
	info kernel.Info
	open bool
}

func newSparseWriter(c *kernel.Context, info kernel.Info) *sparseWriter {
	return &sparseWriter{c: c, info: info, open: true}
}

func (w *sparseWriter) close() { w.open = false }

// writeUint32 allocates output 0 as a dense uint32 tensor of the declared
// length and scatters the sparse values into it.
func (w *sparseWriter) writeUint32(result featurizer.SparseVectorEncoding[uint32]) error {
	if !w.open {
		return ErrCallbackOutsideWindow
	}
	if result.NumElements >= math.MaxInt64 {
		return fmt.Errorf("ops: sparse NumElements %d exceeds max int64 tensor size", result.NumElements)
	}
	if err := result.Validate(); err != nil {
		return err
	}
	out, err := w.c.Output(0, tensor.Uint32, tensor.NewShape(int64(result.NumElements)))
	if err != nil {
		return err
	}
	w.info.Assert.Assert(w.c.Context(), out.NumElements() == int64(result.NumElements),
		"dense output length must equal declared NumElements")
	data, err := out.Uint32s()
	if err != nil {
		return err
	}
	for _, el := range result.Values {
		data[el.Index] = el.Value
	}
	return nil
}

// writeFloat32 is the float variant used by the weighted vectorizers.
func (w *sparseWriter) writeFloat32(result featurizer.SparseVectorEncoding[float32]) error {
	if !w.open {
		return ErrCallbackOutsideWindow
	}
	if result.NumElements >= math.MaxInt64 {
		return fmt.Errorf("ops: sparse NumElements %d exceeds max int64 tensor size", result.NumElements)
	}
	if err := result.Validate(); err != nil {
		return err
	}
	out, err := w.c.Output(0, tensor.Float32, tensor.NewShape(int64(result.NumElements)))
	if err != nil {
		return err
	}
	w.info.Assert.Assert(w.c.Context(), out.NumElements() == int64(result.NumElements),
		"dense output length must equal declared NumElements")
	data, err := out.Float32s()
	if err != nil {
		return err
	}
	for _, el := range result.Values {
		data[el.Index] = el.Value
	}
	return nil
}

// CountVectorizerTransformer adapts the count-vectorizer featurizer: input
// 0 is the serialized transformer state (uint8), input 1 the string tensor,
// output 0 the dense uint32 counts.
type CountVectorizerTransformer struct {
	info kernel.Info
}

// NewCountVectorizerTransformer is the kernel factory.
func NewCountVectorizerTransformer(info kernel.Info) (kernel.Kernel, error) {
	return &CountVectorizerTransformer{info: info}, nil
}

// Compute runs loader, applier and writer once: reconstruct the transformer
// from state, execute it on the input string, flush, scatter the sparse
// result. Any failure aborts the invocation with no partial output.
func (k *CountVectorizerTransformer) Compute(c *kernel.Context) error {
	stateTensor, err := c.Input(0)
	if err != nil {
		return err
	}
	stateData, err := stateTensor.Uint8s()
	if err != nil {
		return err
	}
	var loadOpts []countvec.Option
	wp, err := wordpieceAnalyzer(k.info)
	if err != nil {
		return err
	}
	if wp != nil {
		loadOpts = append(loadOpts, countvec.WithAnalyzer(wp))
	}
	transformer, err := countvec.Load(featurizer.NewArchive(stateData), loadOpts...)
	if err != nil {
		return fmt.Errorf("ops: deserialize count-vectorizer state: %w", err)
	}

	inputTensor, err := c.Input(1)
	if err != nil {
		return err
	}
	inputs, err := inputTensor.Strings()
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("ops: empty string input tensor")
	}

	writer := newSparseWriter(c, k.info)
	if err := transformer.Execute(inputs[0], writer.writeUint32); err != nil {
		return err
	}
	// Flush is unconditional per the family contract even though this
	// transformer buffers nothing.
	if err := transformer.Flush(writer.writeUint32); err != nil {
		return err
	}
	writer.close()
	return nil
}
