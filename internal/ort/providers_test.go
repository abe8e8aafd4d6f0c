package ort

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"featops/kernel"
)

func TestListExecutionProvidersIncludesInProcessCPU(t *testing.T) {
	providers, err := ListExecutionProviders()
	require.NoError(t, err)
	require.NotEmpty(t, providers)
	assert.Equal(t, string(kernel.CPUExecutionProvider), providers[0])
}
