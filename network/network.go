// Package network implements the graph-level driver around the wiring core:
// a registry of named regions, wiring and unwiring of links by port name,
// the bounded global fixed-point loop over dimension resolution, the
// two-phase initialization protocol, and the per-cycle run loop.
package network

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cortexmesh/cortexmesh/engine"
	"github.com/cortexmesh/cortexmesh/logging"
)

// Config defines tuning parameters for the driver's behavior.
type Config struct {
	// MaxEvaluationPasses bounds the dimension fixed-point loop. The loop
	// also fails early when a pass makes no progress, so the bound only
	// matters for pathological policy implementations.
	MaxEvaluationPasses int
}

// DefaultConfig provides the default driver configuration.
var DefaultConfig = Config{
	MaxEvaluationPasses: 100,
}

// Options configures a Network instance using the functional options pattern.
type Options struct {
	// Config contains operational parameters for the driver behavior.
	// Defaults to DefaultConfig if not specified.
	Config Config

	// Logger provides structured logging for debugging and monitoring.
	// Defaults to NoOp logger if nil to ensure no logging dependencies.
	Logger logging.Logger
}

// Network owns a set of named regions and drives their collective lifecycle.
// Regions are iterated in insertion order, which also fixes the per-cycle
// execution order. The network is single-threaded by contract.
type Network struct {
	config Config
	logger logging.Logger

	regions map[string]*engine.Region
	order   []string

	initialized bool
}

// New constructs a Network with optional overrides.
func New(optFns ...func(o *Options)) *Network {
	opts := Options{
		Config: DefaultConfig,
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Config.MaxEvaluationPasses <= 0 {
		opts.Config.MaxEvaluationPasses = DefaultConfig.MaxEvaluationPasses
	}
	return &Network{
		config:  opts.Config,
		logger:  opts.Logger,
		regions: map[string]*engine.Region{},
	}
}

// AddRegion registers a region under its name. Registration is only legal
// before the network is initialized.
func (n *Network) AddRegion(r *engine.Region) error {
	if n.initialized {
		return engine.NewStateError("Network.AddRegion", "network is initialized")
	}
	if _, ok := n.regions[r.Name()]; ok {
		return engine.NewConfigurationError(engine.CodeUnknownPort,
			"region %q is already registered", r.Name())
	}
	n.regions[r.Name()] = r
	n.order = append(n.order, r.Name())
	return nil
}

// RemoveRegion detaches every link into and out of the region and drops it
// from the registry. Illegal once the network is initialized.
func (n *Network) RemoveRegion(name string) error {
	if n.initialized {
		return engine.NewStateError("Network.RemoveRegion", "network is initialized")
	}
	r, ok := n.regions[name]
	if !ok {
		return engine.NewConfigurationError(engine.CodeUnknownPort, "region %q not found", name)
	}
	for _, in := range r.Inputs() {
		for _, l := range in.Links() {
			if err := in.RemoveLink(l); err != nil {
				return err
			}
		}
	}
	for _, out := range r.Outputs() {
		for _, l := range out.Links() {
			if err := l.Dest().RemoveLink(l); err != nil {
				return err
			}
		}
	}
	delete(n.regions, name)
	for i, have := range n.order {
		if have == name {
			n.order = append(n.order[:i], n.order[i+1:]...)
			break
		}
	}
	return nil
}

// Region returns the named region, or nil.
func (n *Network) Region(name string) *engine.Region { return n.regions[name] }

// Regions returns the registered regions in insertion order.
func (n *Network) Regions() []*engine.Region {
	out := make([]*engine.Region, 0, len(n.order))
	for _, name := range n.order {
		out = append(out, n.regions[name])
	}
	return out
}

// IsInitialized reports whether the two-phase initialization has completed.
func (n *Network) IsInitialized() bool { return n.initialized }

// Link wires srcRegion.srcOutput to destRegion.destInput under the named
// link type. Port names must resolve; link ordering on the input follows
// call order.
func (n *Network) Link(srcRegion, srcOutput, destRegion, destInput, linkType, linkParams string) (*engine.Link, error) {
	src, err := n.resolveOutput(srcRegion, srcOutput)
	if err != nil {
		return nil, err
	}
	dest, err := n.resolveInput(destRegion, destInput)
	if err != nil {
		return nil, err
	}
	l, err := dest.AddLink(linkType, linkParams, src)
	if err != nil {
		return nil, err
	}
	n.logger.Debug("link wired", "link", l.String(), "link_id", l.ID())
	return l, nil
}

// Unlink removes the link between the named ports. A missing link is a
// configuration error naming the ports.
func (n *Network) Unlink(srcRegion, srcOutput, destRegion, destInput string) error {
	dest, err := n.resolveInput(destRegion, destInput)
	if err != nil {
		return err
	}
	l := dest.FindLink(srcRegion, srcOutput)
	if l == nil {
		return engine.NewConfigurationError(engine.CodeUnknownPort,
			"no link from %s.%s to %s.%s", srcRegion, srcOutput, destRegion, destInput)
	}
	return dest.RemoveLink(l)
}

func (n *Network) resolveOutput(regionName, outputName string) (*engine.Output, error) {
	r, ok := n.regions[regionName]
	if !ok {
		return nil, engine.NewConfigurationError(engine.CodeUnknownPort, "region %q not found", regionName)
	}
	out := r.Output(outputName)
	if out == nil {
		return nil, engine.NewConfigurationError(engine.CodeUnknownPort,
			"region %q has no output %q", regionName, outputName)
	}
	return out, nil
}

func (n *Network) resolveInput(regionName, inputName string) (*engine.Input, error) {
	r, ok := n.regions[regionName]
	if !ok {
		return nil, engine.NewConfigurationError(engine.CodeUnknownPort, "region %q not found", regionName)
	}
	in := r.Input(inputName)
	if in == nil {
		return nil, engine.NewConfigurationError(engine.CodeUnknownPort,
			"region %q has no input %q", regionName, inputName)
	}
	return in, nil
}

// Initialize drives the two-phase protocol: repeated EvaluateLinks passes
// over every region until all dimensions settle, then buffer finalization on
// every region. Failure to converge is reported as a configuration error
// naming the offending ports.
func (n *Network) Initialize() error {
	if n.initialized {
		return engine.NewStateError("Network.Initialize", "network is already initialized")
	}

	prev := -1
	unresolved := 0
	stalled := false
	passes := 0
	for pass := 1; pass <= n.config.MaxEvaluationPasses; pass++ {
		passes = pass
		start := time.Now()
		unresolved = 0
		for _, r := range n.Regions() {
			cnt, err := r.EvaluateLinks()
			if err != nil {
				return err
			}
			unresolved += cnt
		}
		n.logger.Debug("evaluation pass", "pass", pass, "unresolved", unresolved,
			"duration", time.Since(start))
		if unresolved == 0 {
			break
		}
		if unresolved == prev {
			// Deterministic propagation that made no progress will never
			// make progress on further passes.
			stalled = true
			break
		}
		prev = unresolved
	}
	if unresolved > 0 {
		if stalled {
			return engine.NewConfigurationError(engine.CodeNoConvergence,
				"dimensions stalled after %d evaluation passes; unresolved ports: %s",
				passes, strings.Join(n.unresolvedPorts(), ", "))
		}
		return engine.NewConfigurationError(engine.CodeNoConvergence,
			"dimensions did not settle within the %d-pass budget; unresolved ports: %s",
			passes, strings.Join(n.unresolvedPorts(), ", "))
	}

	for _, r := range n.Regions() {
		if err := r.Initialize(); err != nil {
			return err
		}
	}
	n.initialized = true
	n.logger.Info("network initialized", "regions", len(n.order))
	return nil
}

// unresolvedPorts names every input that still has unresolved links, for
// convergence failure diagnostics.
func (n *Network) unresolvedPorts() []string {
	var ports []string
	for _, r := range n.Regions() {
		for _, in := range r.Inputs() {
			for _, l := range in.Links() {
				if !l.Resolved() {
					ports = append(ports, fmt.Sprintf("%s.%s", r.Name(), in.Name()))
					break
				}
			}
		}
	}
	return ports
}

// Run executes the given number of computation cycles. Each cycle prepares
// every region's inputs and then invokes its compute step, in region
// insertion order.
func (n *Network) Run(cycles int) error {
	if !n.initialized {
		return engine.NewStateError("Network.Run", "network is not initialized")
	}
	runID := uuid.NewString()
	start := time.Now()
	for cycle := 0; cycle < cycles; cycle++ {
		for _, r := range n.Regions() {
			if err := r.PrepareInputs(); err != nil {
				return fmt.Errorf("cycle %d: %w", cycle, err)
			}
			if err := r.Compute(); err != nil {
				return fmt.Errorf("cycle %d: %w", cycle, err)
			}
		}
	}
	n.logger.Debug("run completed", "run_id", runID, "cycles", cycles,
		"duration", time.Since(start))
	return nil
}
