//go:build onnx
// +build onnx

package ort

import (
	"fmt"

	ortrt "github.com/yalue/onnxruntime_go"

	"featops/kernel"
)

// ListExecutionProviders reports the providers transform nodes can resolve
// against. The in-process CPU provider comes first; the ONNX Runtime
// environment is brought up so its CPU provider is confirmed usable before
// it is reported.
func ListExecutionProviders() ([]string, error) {
	providers := []string{string(kernel.CPUExecutionProvider)}
	if !ortrt.IsInitialized() {
		if err := ortrt.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("ort: initialize onnx runtime: %w", err)
		}
	}
	// The Go binding has no portable provider enumeration, so only the
	// runtime's CPU provider is reported once the environment is up.
	providers = append(providers, "onnxruntime:cpu")
	return providers, nil
}
