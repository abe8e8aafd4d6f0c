package ops

import (
	"fmt"

	"featops/kernel"
	"featops/tensor"
)

// RegisterAll registers every featurizer operator kernel: vendor
// featurizers domain, since-version 1, CPU execution provider. Input 0 is
// constrained to the serialized-state type T0 (uint8), input 1 to InputT
// (string).
func RegisterAll(r *kernel.Registry) error {
	countDef, err := kernel.NewDef("CountVectorizerTransformer").
		Domain(FeaturizersDomain).
		SinceVersion(1).
		Provider(kernel.CPUExecutionProvider).
		TypeConstraint("T0", tensor.Uint8).
		TypeConstraint("InputT", tensor.String).
		Input("T0").
		Input("InputT").
		Build()
	if err != nil {
		return fmt.Errorf("ops: build CountVectorizerTransformer def: %w", err)
	}
	if err := r.Register(countDef, NewCountVectorizerTransformer); err != nil {
		return err
	}

	tfidfDef, err := kernel.NewDef("TfidfVectorizerTransformer").
		Domain(FeaturizersDomain).
		SinceVersion(1).
		Provider(kernel.CPUExecutionProvider).
		TypeConstraint("T0", tensor.Uint8).
		TypeConstraint("InputT", tensor.String).
		Input("T0").
		Input("InputT").
		Build()
	if err != nil {
		return fmt.Errorf("ops: build TfidfVectorizerTransformer def: %w", err)
	}
	return r.Register(tfidfDef, NewTfidfVectorizerTransformer)
}
