package kernel

import (
	"context"
	"fmt"
	"runtime"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"featops/tensor"
)

// Node is one operator invocation request: which kernel to run, the input
// tensors it owns for the duration of the call, and any invocation
// attributes the kernel reads at construction time.
type Node struct {
	OpType  string
	Domain  string
	Version int
	Inputs  []*tensor.Tensor
	Attrs   map[string]string
}

// Executor resolves nodes against a registry and runs them. Each
// invocation gets a fresh kernel instance and context, so independent
// invocations share no mutable state and may run concurrently.
type Executor struct {
	registry   *Registry
	provider   ExecutionProvider
	maxWorkers int
	logger     zerolog.Logger
	assert     *assert.AssertHandler
}

// ExecutorOption adjusts executor construction.
type ExecutorOption func(*Executor)

// WithProvider selects the execution provider nodes resolve against.
func WithProvider(p ExecutionProvider) ExecutorOption {
	return func(e *Executor) { e.provider = p }
}

// WithMaxWorkers bounds batch concurrency.
func WithMaxWorkers(n int) ExecutorOption {
	return func(e *Executor) {
		if n > 0 {
			e.maxWorkers = n
		}
	}
}

// WithLogger sets the structured logger invocations log through.
func WithLogger(l zerolog.Logger) ExecutorOption {
	return func(e *Executor) { e.logger = l }
}

// NewExecutor builds an executor over the registry. Worker count defaults
// to the CPU count, bounded for responsiveness the same way the traverser
// pools in this codebase are.
func NewExecutor(registry *Registry, opts ...ExecutorOption) *Executor {
	e := &Executor{
		registry:   registry,
		provider:   CPUExecutionProvider,
		maxWorkers: min(max(runtime.NumCPU(), 2), 32),
		logger:     zerolog.Nop(),
		assert:     assert.NewAssertHandler(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes a single node and returns its output tensors. Any failure
// aborts the invocation; no partial outputs are returned.
func (e *Executor) Run(ctx context.Context, node Node) ([]*tensor.Tensor, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	invocation := uuid.NewString()
	log := e.logger.With().
		Str("invocation", invocation).
		Str("op", node.OpType).
		Str("domain", node.Domain).
		Logger()

	version := node.Version
	if version <= 0 {
		version = 1
	}
	def, factory, err := e.registry.Resolve(node.Domain, node.OpType, version, e.provider)
	if err != nil {
		return nil, err
	}
	if err := def.ValidateInputs(node.Inputs); err != nil {
		return nil, err
	}
	k, err := factory(Info{Def: def, Logger: log, Assert: e.assert, Attrs: node.Attrs})
	if err != nil {
		return nil, fmt.Errorf("kernel: construct %s: %w", node.OpType, err)
	}
	c := NewContext(ctx, node.Inputs)
	if err := k.Compute(c); err != nil {
		log.Error().Err(err).Msg("kernel compute failed")
		return nil, err
	}
	log.Debug().Int("outputs", len(c.Outputs())).Msg("kernel compute complete")
	return c.Outputs(), nil
}

// RunBatch executes independent nodes concurrently on a bounded pool.
// Results are ordered like the input; the first error cancels the batch.
func (e *Executor) RunBatch(ctx context.Context, nodes []Node) ([][]*tensor.Tensor, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([][]*tensor.Tensor, len(nodes))
	p := pool.New().WithMaxGoroutines(e.maxWorkers).WithContext(ctx).WithCancelOnError()
	for i, node := range nodes {
		p.Go(func(ctx context.Context) error {
			outs, err := e.Run(ctx, node)
			if err != nil {
				return fmt.Errorf("node %d (%s): %w", i, node.OpType, err)
			}
			results[i] = outs
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
