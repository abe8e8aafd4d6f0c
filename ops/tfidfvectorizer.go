package ops

import (
	"fmt"

	"featops/featurizer"
	"featops/featurizer/tfidf"
	"featops/kernel"
)

// TfidfVectorizerTransformer adapts the tf-idf vectorizer featurizer: same
// loader/applier/writer shape as the count kernel with a float32 output.
type TfidfVectorizerTransformer struct {
	info kernel.Info
}

// NewTfidfVectorizerTransformer is the kernel factory.
func NewTfidfVectorizerTransformer(info kernel.Info) (kernel.Kernel, error) {
	return &TfidfVectorizerTransformer{info: info}, nil
}

// Compute mirrors the count kernel: deserialize state, execute on the
// input string, flush, scatter the sparse float result.
func (k *TfidfVectorizerTransformer) Compute(c *kernel.Context) error {
	stateTensor, err := c.Input(0)
	if err != nil {
		return err
	}
	stateData, err := stateTensor.Uint8s()
	if err != nil {
		return err
	}
	var loadOpts []tfidf.Option
	wp, err := wordpieceAnalyzer(k.info)
	if err != nil {
		return err
	}
	if wp != nil {
		loadOpts = append(loadOpts, tfidf.WithAnalyzer(wp))
	}
	transformer, err := tfidf.Load(featurizer.NewArchive(stateData), loadOpts...)
	if err != nil {
		return fmt.Errorf("ops: deserialize tf-idf state: %w", err)
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
	if err := transformer.Execute(inputs[0], writer.writeFloat32); err != nil {
		return err
	}
	if err := transformer.Flush(writer.writeFloat32); err != nil {
		return err
	}
	writer.close()
	return nil
}
