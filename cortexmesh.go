// Package cortexmesh provides a high-level façade over the wiring engine and
// the network driver, enabling rapid construction of computation graphs.
// Most applications interact with this package by:
//  1. Creating a Mesh via New() (optionally overriding the logger and driver config)
//  2. Adding regions with named inputs and outputs
//  3. Wiring links between ports (Wire), initializing, and running cycles
//
// The façade delegates orchestration to network.Network while keeping setup
// and usage ergonomics concise. All defaults are safe for local development
// and testing; production deployments typically supply a structured logger.
package cortexmesh

import (
	"github.com/cortexmesh/cortexmesh/engine"
	"github.com/cortexmesh/cortexmesh/logging"
	"github.com/cortexmesh/cortexmesh/network"
)

// Options configures the Mesh instance.
type Options struct {
	// NetworkConfig tunes the driver (fixed-point pass budget).
	NetworkConfig network.Config

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Mesh is the high-level façade aggregating the underlying network driver.
type Mesh struct {
	opts Options
	net  *network.Network
}

// New creates a new Mesh instance with optional overrides.
func New(optFns ...func(o *Options)) *Mesh {
	opts := Options{
		NetworkConfig: network.DefaultConfig,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	net := network.New(func(o *network.Options) {
		o.Config = opts.NetworkConfig
		o.Logger = opts.Logger
	})

	return &Mesh{opts: opts, net: net}
}

// Network exposes the underlying driver for advanced use.
func (m *Mesh) Network() *network.Network { return m.net }

// AddRegion registers a region with the underlying network.
func (m *Mesh) AddRegion(r *engine.Region) error { return m.net.AddRegion(r) }

// Wire links srcRegion.srcOutput to destRegion.destInput under the named
// link type with an opaque parameter blob.
func (m *Mesh) Wire(srcRegion, srcOutput, destRegion, destInput, linkType, linkParams string) (*engine.Link, error) {
	return m.net.Link(srcRegion, srcOutput, destRegion, destInput, linkType, linkParams)
}

// Unwire removes the link between the named ports.
func (m *Mesh) Unwire(srcRegion, srcOutput, destRegion, destInput string) error {
	return m.net.Unlink(srcRegion, srcOutput, destRegion, destInput)
}

// Initialize drives dimension negotiation to its fixed point and finalizes
// every buffer layout.
func (m *Mesh) Initialize() error { return m.net.Initialize() }

// Run executes the given number of computation cycles.
func (m *Mesh) Run(cycles int) error { return m.net.Run(cycles) }
