// Package kernel is the host side of the operator ABI: typed tensor
// contexts handed to kernels, kernel definitions registered under a
// (domain, op, version, execution provider) key, and an executor that runs
// registered kernels over input tensors.
package kernel

import (
	"context"
	"fmt"

	"featops/tensor"
)

// Context carries the typed inputs and outputs of a single kernel
// invocation. A Context is owned by that invocation; kernels must not
// retain it past Compute.
type Context struct {
	ctx     context.Context
	inputs  []*tensor.Tensor
	outputs []*tensor.Tensor
}

// NewContext builds an invocation context over the given input tensors.
func NewContext(ctx context.Context, inputs []*tensor.Tensor) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Context{ctx: ctx, inputs: inputs}
}

// Context returns the cancellation context of the invocation.
func (c *Context) Context() context.Context { return c.ctx }

// NumInputs returns how many input tensors the invocation carries.
func (c *Context) NumInputs() int { return len(c.inputs) }

// Input returns input tensor i.
func (c *Context) Input(i int) (*tensor.Tensor, error) {
	if i < 0 || i >= len(c.inputs) {
		return nil, fmt.Errorf("kernel: input index %d out of range, node has %d inputs", i, len(c.inputs))
	}
	if c.inputs[i] == nil {
		return nil, fmt.Errorf("kernel: input %d is nil", i)
	}
	return c.inputs[i], nil
}

// Output allocates (or returns the already-allocated) output tensor i with
// the given element type and shape, zero-initialized.
func (c *Context) Output(i int, dtype tensor.ElementType, shape tensor.Shape) (*tensor.Tensor, error) {
	if i < 0 {
		return nil, fmt.Errorf("kernel: output index %d out of range", i)
	}
	for len(c.outputs) <= i {
		c.outputs = append(c.outputs, nil)
	}
	if c.outputs[i] != nil {
		return nil, fmt.Errorf("kernel: output %d allocated twice", i)
	}
	t, err := tensor.Zeros(dtype, shape)
	if err != nil {
		return nil, fmt.Errorf("kernel: allocate output %d: %w", i, err)
	}
	c.outputs[i] = t
	return t, nil
}

// Outputs returns the output tensors produced so far.
func (c *Context) Outputs() []*tensor.Tensor { return c.outputs }
