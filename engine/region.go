package engine

import (
	"fmt"

	"github.com/cortexmesh/cortexmesh/core"
	"github.com/cortexmesh/cortexmesh/logging"
)

// ComputeFunc performs a region's per-cycle numerical step, reading prepared
// inputs and writing outputs. The computation itself is outside the wiring
// core; the hook lets drivers and tests fill output buffers.
type ComputeFunc func(r *Region) error

// RegionOptions configures construction of a Region.
type RegionOptions struct {
	// Compute is invoked once per cycle after PrepareInputs.
	Compute ComputeFunc
	// Logger defaults to NoOpLogger if nil.
	Logger logging.Logger
}

// Region is a processing node exposing named inputs and outputs. It owns its
// ports and its dimensions, and participates in the two-phase initialization
// protocol: repeated link evaluation to a dimension fixed point, then buffer
// finalization.
type Region struct {
	name string
	dims core.Dimensions

	inputs      map[string]*Input
	inputOrder  []string
	outputs     map[string]*Output
	outputOrder []string

	initialized bool
	compute     ComputeFunc
	logger      logging.Logger
}

// NewRegion creates an empty region with optional overrides.
func NewRegion(name string, optFns ...func(o *RegionOptions)) *Region {
	opts := RegionOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Region{
		name:    name,
		inputs:  map[string]*Input{},
		outputs: map[string]*Output{},
		compute: opts.Compute,
		logger:  opts.Logger,
	}
}

// Name returns the region's identity.
func (r *Region) Name() string { return r.name }

// IsInitialized reports whether buffer layouts have been finalized. Wiring
// mutation on any of this region's ports is illegal while true.
func (r *Region) IsInitialized() bool { return r.initialized }

// Dimensions returns the region's shape, which may still be unspecified.
func (r *Region) Dimensions() core.Dimensions { return r.dims }

// SetDimensions fixes the region's shape, either explicitly by the caller or
// induced by link evaluation. Re-fixing to an incompatible value is a
// dimension conflict. The shape propagates to outputs that have no opinion
// of their own yet.
func (r *Region) SetDimensions(dims core.Dimensions) error {
	if err := dims.Validate(); err != nil {
		return NewConfigurationError(CodeInvalidParams, "region %s: %v", r.name, err)
	}
	if dims.IsUnspecified() || dims.IsDontCare() {
		return nil
	}
	if !r.dims.IsUnspecified() && !r.dims.IsDontCare() {
		if !r.dims.Equal(dims) {
			return NewDimensionError(r.name, r.dims, dims)
		}
	} else {
		r.dims = dims.Clone()
	}
	for _, name := range r.outputOrder {
		if err := r.outputs[name].SetDimensions(r.dims); err != nil {
			return err
		}
	}
	return nil
}

// NewInput declares a named consuming port with a fixed element type. Ports
// are created once, while the region is uninitialized.
func (r *Region) NewInput(name string, t core.BasicType, regionLevel bool) (*Input, error) {
	if r.initialized {
		return nil, NewStateError("Region.NewInput", "region %s is initialized", r.name)
	}
	if _, ok := r.inputs[name]; ok {
		return nil, NewConfigurationError(CodeUnknownPort,
			"region %s already has an input named %q", r.name, name)
	}
	in := newInput(r, name, t, regionLevel, r.logger)
	r.inputs[name] = in
	r.inputOrder = append(r.inputOrder, name)
	return in, nil
}

// NewOutput declares a named producing port with a fixed element type.
func (r *Region) NewOutput(name string, t core.BasicType) (*Output, error) {
	if r.initialized {
		return nil, NewStateError("Region.NewOutput", "region %s is initialized", r.name)
	}
	if _, ok := r.outputs[name]; ok {
		return nil, NewConfigurationError(CodeUnknownPort,
			"region %s already has an output named %q", r.name, name)
	}
	out := newOutput(r, name, t)
	if !r.dims.IsUnspecified() {
		if err := out.SetDimensions(r.dims); err != nil {
			return nil, err
		}
	}
	r.outputs[name] = out
	r.outputOrder = append(r.outputOrder, name)
	return out, nil
}

// Input returns the named consuming port, or nil.
func (r *Region) Input(name string) *Input { return r.inputs[name] }

// Output returns the named producing port, or nil.
func (r *Region) Output(name string) *Output { return r.outputs[name] }

// Inputs returns the consuming ports in declaration order.
func (r *Region) Inputs() []*Input {
	out := make([]*Input, 0, len(r.inputOrder))
	for _, name := range r.inputOrder {
		out = append(out, r.inputs[name])
	}
	return out
}

// Outputs returns the producing ports in declaration order.
func (r *Region) Outputs() []*Output {
	out := make([]*Output, 0, len(r.outputOrder))
	for _, name := range r.outputOrder {
		out = append(out, r.outputs[name])
	}
	return out
}

// EvaluateLinks advances dimension resolution for every input and returns
// the total number of links still unresolved.
func (r *Region) EvaluateLinks() (int, error) {
	unresolved := 0
	for _, in := range r.Inputs() {
		n, err := in.EvaluateLinks()
		if err != nil {
			return 0, err
		}
		unresolved += n
	}
	return unresolved, nil
}

// Initialize finalizes every output buffer and every input layout. All link
// evaluation across the graph must have reached its fixed point first.
func (r *Region) Initialize() error {
	if r.initialized {
		return NewStateError("Region.Initialize", "region %s is already initialized", r.name)
	}
	for _, out := range r.Outputs() {
		if out.Dimensions().IsUnspecified() && !r.dims.IsUnspecified() {
			if err := out.SetDimensions(r.dims); err != nil {
				return err
			}
		}
		if err := out.Initialize(); err != nil {
			return err
		}
	}
	for _, in := range r.Inputs() {
		if !in.IsInitialized() {
			if err := in.Initialize(); err != nil {
				return err
			}
		}
	}
	r.initialized = true
	r.logger.Debug("region initialized", "region", r.name, "dimensions", r.dims.String())
	return nil
}

// Uninitialize reverses Initialize, releasing port buffers while leaving the
// wiring intact.
func (r *Region) Uninitialize() error {
	if !r.initialized {
		return nil
	}
	r.initialized = false
	for _, in := range r.Inputs() {
		if in.IsInitialized() {
			if err := in.Uninitialize(); err != nil {
				return err
			}
		}
	}
	for _, out := range r.Outputs() {
		out.uninitialize()
	}
	return nil
}

// PrepareInputs makes every input buffer current for this cycle.
func (r *Region) PrepareInputs() error {
	for _, in := range r.Inputs() {
		if err := in.Prepare(); err != nil {
			return err
		}
	}
	return nil
}

// Compute runs the region's per-cycle step, if one was configured.
func (r *Region) Compute() error {
	if r.compute == nil {
		return nil
	}
	if !r.initialized {
		return NewStateError("Region.Compute", "region %s is not initialized", r.name)
	}
	if err := r.compute(r); err != nil {
		return fmt.Errorf("compute for region %s: %w", r.name, err)
	}
	return nil
}
