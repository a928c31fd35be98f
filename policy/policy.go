// Package policy implements the pluggable link-type catalog that governs how
// dimensions propagate across a link and how a link's contribution is split
// across destination sub-nodes. Policies are keyed by a string name and
// configured by an opaque YAML parameter blob whose grammar is private to
// each policy; the wiring core never interprets the blob itself.
package policy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cortexmesh/cortexmesh/core"
)

// Policy defines the behavior of one link type.
//
// Implementations must be deterministic: the same source dimensions always
// induce the same destination dimensions, and SubMap is a pure function of
// the destination shape. Policies should be cheap to construct; a fresh
// instance is created per link.
type Policy interface {
	// Name returns the catalog key this policy was registered under.
	Name() string

	// DestDimensions derives the destination shape implied by a resolved
	// source shape.
	DestDimensions(src core.Dimensions) (core.Dimensions, error)

	// SrcDimensions derives the source shape implied by a resolved
	// destination shape (reverse induction).
	SrcDimensions(dest core.Dimensions) (core.Dimensions, error)

	// NeedsReindexing reports whether elements are reordered between source
	// and destination. A reindexing policy is never zero-copy eligible.
	NeedsReindexing() bool

	// SubMap returns this link's own splitter sub-map for the given
	// destination shape: entry i lists the ordered element indices, within
	// this link's contribution, consumed by destination sub-node i.
	SubMap(dest core.Dimensions) (core.SplitterMap, error)
}

// Factory constructs a Policy from its opaque parameter blob.
type Factory func(params string) (Policy, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// ErrUnknownLinkType is returned by New for names absent from the catalog.
var ErrUnknownLinkType = fmt.Errorf("unknown link type")

// ErrInvalidParams is returned when a parameter blob cannot be parsed for
// the requested policy.
var ErrInvalidParams = fmt.Errorf("invalid link parameters")

// Register adds a link-type factory to the catalog. Later registrations
// under the same name replace earlier ones.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[name] = f
}

// New constructs a policy instance for the named link type.
func New(linkType, params string) (Policy, error) {
	mu.RLock()
	f, ok := factories[linkType]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownLinkType, linkType)
	}
	p, err := f(params)
	if err != nil {
		return nil, fmt.Errorf("%w for link type %q: %v", ErrInvalidParams, linkType, err)
	}
	return p, nil
}

// Names returns the sorted catalog keys, mainly for error messages.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
