// Package core provides the foundational value types shared by the cortexmesh
// wiring runtime. It defines the core abstractions for:
//
//   - BasicType (element types of port buffers)
//   - Array (typed, fixed-element-size buffers with aliasing support)
//   - Dimensions (port shapes, including unspecified and don't-care states)
//   - SplitterMap (per-destination-node source element index lists)
//
// The package intentionally keeps implementation concerns (wiring, dimension
// negotiation, drivers) out of scope so that engine, policy and network can
// all depend on it without cycles. All exported identifiers include concise
// documentation to aid discoverability and external consumption.
package core
