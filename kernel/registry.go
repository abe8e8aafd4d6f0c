package kernel

import (
	"fmt"
	"sort"
	"sync"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/rs/zerolog"

	"featops/tensor"
)

// ExecutionProvider names the backend that runs a kernel's compute.
type ExecutionProvider string

// CPUExecutionProvider is the only provider this host ships in-process.
const CPUExecutionProvider ExecutionProvider = "CPUExecutionProvider"

// Kernel is one operator implementation. Compute reads typed inputs from
// the context, writes outputs and returns the first error; no partial
// results survive a failure.
type Kernel interface {
	Compute(c *Context) error
}

// Info is handed to a kernel factory at construction time. Attrs carries
// the node's invocation attributes, e.g. external resources a transformer
// state references but does not embed.
type Info struct {
	Def    Def
	Logger zerolog.Logger
	Assert *assert.AssertHandler
	Attrs  map[string]string
}

// Factory constructs a fresh kernel instance for one resolution.
type Factory func(info Info) (Kernel, error)

// Def describes a registered kernel: operator identity, the provider it
// runs on and the element types each input constraint admits.
type Def struct {
	OpType       string
	Domain       string
	SinceVersion int
	Provider     ExecutionProvider

	typeConstraints map[string][]tensor.ElementType
	inputBindings   []string
}

// DefBuilder assembles a Def. Zero-value fields are rejected by Build.
type DefBuilder struct {
	def Def
	err error
}

// NewDef starts a definition for the named operator.
func NewDef(opType string) *DefBuilder {
	return &DefBuilder{def: Def{
		OpType:          opType,
		SinceVersion:    1,
		Provider:        CPUExecutionProvider,
		typeConstraints: make(map[string][]tensor.ElementType),
	}}
}

// Domain sets the operator domain.
func (b *DefBuilder) Domain(domain string) *DefBuilder {
	b.def.Domain = domain
	return b
}

// SinceVersion sets the opset version the definition starts at.
func (b *DefBuilder) SinceVersion(v int) *DefBuilder {
	b.def.SinceVersion = v
	return b
}

// Provider sets the execution provider.
func (b *DefBuilder) Provider(p ExecutionProvider) *DefBuilder {
	b.def.Provider = p
	return b
}

// TypeConstraint names a constraint and the element types it admits.
func (b *DefBuilder) TypeConstraint(name string, types ...tensor.ElementType) *DefBuilder {
	if len(types) == 0 {
		b.err = fmt.Errorf("kernel: type constraint %q admits no types", name)
		return b
	}
	b.def.typeConstraints[name] = types
	return b
}

// Input binds the next input index to a declared type constraint.
func (b *DefBuilder) Input(constraint string) *DefBuilder {
	b.def.inputBindings = append(b.def.inputBindings, constraint)
	return b
}

// Build finalizes the definition.
func (b *DefBuilder) Build() (Def, error) {
	if b.err != nil {
		return Def{}, b.err
	}
	if b.def.OpType == "" {
		return Def{}, fmt.Errorf("kernel: definition missing op type")
	}
	if b.def.Domain == "" {
		return Def{}, fmt.Errorf("kernel: definition for %s missing domain", b.def.OpType)
	}
	if b.def.SinceVersion < 1 {
		return Def{}, fmt.Errorf("kernel: definition for %s has since-version %d", b.def.OpType, b.def.SinceVersion)
	}
	for i, c := range b.def.inputBindings {
		if _, ok := b.def.typeConstraints[c]; !ok {
			return Def{}, fmt.Errorf("kernel: input %d of %s bound to undeclared constraint %q", i, b.def.OpType, c)
		}
	}
	return b.def, nil
}

// ValidateInputs checks the input tensors against the definition's type
// constraints before Compute runs.
func (d Def) ValidateInputs(inputs []*tensor.Tensor) error {
	if len(d.inputBindings) > 0 && len(inputs) != len(d.inputBindings) {
		return fmt.Errorf("kernel: %s wants %d inputs, got %d", d.OpType, len(d.inputBindings), len(inputs))
	}
	for i, constraint := range d.inputBindings {
		allowed := d.typeConstraints[constraint]
		ok := false
		for _, t := range allowed {
			if inputs[i] != nil && inputs[i].DType() == t {
				ok = true
				break
			}
		}
		if !ok {
			got := tensor.Undefined
			if inputs[i] != nil {
				got = inputs[i].DType()
			}
			return fmt.Errorf("kernel: input %d of %s violates constraint %s (%v), got %s",
				i, d.OpType, constraint, allowed, got)
		}
	}
	return nil
}

type registration struct {
	def     Def
	factory Factory
}

// Registry resolves (domain, op, version, provider) to a kernel factory.
// Registration happens at startup; resolution is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	kernels map[string][]registration
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{kernels: make(map[string][]registration)}
}

func regKey(domain, opType string, provider ExecutionProvider) string {
	return domain + "/" + opType + "@" + string(provider)
}

// Register adds a kernel definition. Registering the same (domain, op,
// provider, since-version) twice is an error.
func (r *Registry) Register(def Def, factory Factory) error {
	if factory == nil {
		return fmt.Errorf("kernel: nil factory for %s", def.OpType)
	}
	key := regKey(def.Domain, def.OpType, def.Provider)
	r.mu.Lock()
	defer r.mu.Unlock()
	regs := r.kernels[key]
	for _, reg := range regs {
		if reg.def.SinceVersion == def.SinceVersion {
			return fmt.Errorf("kernel: %s since-version %d registered twice", key, def.SinceVersion)
		}
	}
	regs = append(regs, registration{def: def, factory: factory})
	sort.Slice(regs, func(i, j int) bool { return regs[i].def.SinceVersion < regs[j].def.SinceVersion })
	r.kernels[key] = regs
	return nil
}

// Resolve returns the definition and factory whose since-version is the
// highest one not exceeding the requested opset version.
func (r *Registry) Resolve(domain, opType string, version int, provider ExecutionProvider) (Def, Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	regs := r.kernels[regKey(domain, opType, provider)]
	for i := len(regs) - 1; i >= 0; i-- {
		if regs[i].def.SinceVersion <= version {
			return regs[i].def, regs[i].factory, nil
		}
	}
	return Def{}, nil, fmt.Errorf("kernel: no %s kernel for %s/%s opset %d", provider, domain, opType, version)
}
