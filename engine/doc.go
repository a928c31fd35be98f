// Package engine implements the wiring core of cortexmesh: typed bindings
// (Link) between data-producing ports (Output) and data-consuming ports
// (Input) of processing nodes (Region), dimension negotiation across those
// bindings, and per-cycle aggregation of linked buffers into a single input
// buffer with an optional zero-copy fast path.
//
// The package is single-threaded by contract. The global fixed-point loop
// that repeatedly drives EvaluateLinks across the whole graph, and the
// two-phase initialization protocol around it, live in package network; this
// package only exposes the per-input primitive "advance one resolution step,
// report how many links are still unresolved".
package engine
