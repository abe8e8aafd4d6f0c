package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"featops/tensor"
)

func buildTestDef(t *testing.T, sinceVersion int) Def {
	t.Helper()
	def, err := NewDef("TestOp").
		Domain("test.domain").
		SinceVersion(sinceVersion).
		TypeConstraint("T0", tensor.Uint8).
		TypeConstraint("InputT", tensor.String).
		Input("T0").
		Input("InputT").
		Build()
	require.NoError(t, err)
	return def
}

type nopKernel struct{}

func (nopKernel) Compute(*Context) error { return nil }

func nopFactory(Info) (Kernel, error) { return nopKernel{}, nil }

func TestDefBuilderValidation(t *testing.T) {
	_, err := NewDef("").Domain("d").Build()
	assert.Error(t, err, "missing op type")

	_, err = NewDef("Op").Build()
	assert.Error(t, err, "missing domain")

	_, err = NewDef("Op").Domain("d").SinceVersion(0).Build()
	assert.Error(t, err, "since-version below 1")

	_, err = NewDef("Op").Domain("d").Input("T9").Build()
	assert.Error(t, err, "input bound to undeclared constraint")

	_, err = NewDef("Op").Domain("d").TypeConstraint("T0").Build()
	assert.Error(t, err, "constraint admitting no types")
}

func TestValidateInputs(t *testing.T) {
	def := buildTestDef(t, 1)

	state, err := tensor.NewUint8(tensor.NewShape(2), []uint8{1, 2})
	require.NoError(t, err)
	input, err := tensor.NewString(tensor.NewShape(1), []string{"x"})
	require.NoError(t, err)

	assert.NoError(t, def.ValidateInputs([]*tensor.Tensor{state, input}))
	assert.Error(t, def.ValidateInputs([]*tensor.Tensor{state}), "wrong arity")
	assert.Error(t, def.ValidateInputs([]*tensor.Tensor{input, state}), "types swapped")
	assert.Error(t, def.ValidateInputs([]*tensor.Tensor{nil, input}), "nil input")
}

func TestRegistryResolveVersions(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(buildTestDef(t, 1), nopFactory))
	require.NoError(t, r.Register(buildTestDef(t, 3), nopFactory))

	def, _, err := r.Resolve("test.domain", "TestOp", 2, CPUExecutionProvider)
	require.NoError(t, err)
	assert.Equal(t, 1, def.SinceVersion)

	def, _, err = r.Resolve("test.domain", "TestOp", 5, CPUExecutionProvider)
	require.NoError(t, err)
	assert.Equal(t, 3, def.SinceVersion)

	_, _, err = r.Resolve("test.domain", "MissingOp", 1, CPUExecutionProvider)
	assert.Error(t, err)

	_, _, err = r.Resolve("test.domain", "TestOp", 1, ExecutionProvider("GPUExecutionProvider"))
	assert.Error(t, err, "no kernel for that provider")
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(buildTestDef(t, 1), nopFactory))
	assert.Error(t, r.Register(buildTestDef(t, 1), nopFactory))
	assert.Error(t, r.Register(buildTestDef(t, 2), nil), "nil factory")
}
