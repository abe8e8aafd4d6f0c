//go:build !onnx
// +build !onnx

// Package ort reports the execution providers a build of this host can run
// kernels on. With the "onnx" tag the ONNX Runtime providers are surfaced
// next to the in-process one; without it only the in-process CPU provider
// exists.
package ort

import "featops/kernel"

// ListExecutionProviders reports the in-process CPU provider, the only one
// available without ONNX Runtime linked in.
func ListExecutionProviders() ([]string, error) {
	return []string{string(kernel.CPUExecutionProvider)}, nil
}
