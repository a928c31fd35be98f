package engine

import (
	"fmt"

	"github.com/cortexmesh/cortexmesh/core"
	"github.com/cortexmesh/cortexmesh/logging"
)

// Input is a named data-consuming port of a region. It owns an ordered
// sequence of links and is the sole authority over how their contributions
// are laid out in the aggregated buffer: link declaration order determines
// offsets, prepare order and splitter-map indices.
type Input struct {
	region      *Region
	name        string
	dtype       core.BasicType
	regionLevel bool

	// Owned links, in declaration order. The order is load-bearing.
	links []*Link

	// Volatile state, torn down by Uninitialize.
	initialized bool
	zeroCopy    bool
	data        *core.Array
	offsets     []int
	size        int

	splitter      core.SplitterMap
	splitterValid bool

	logger logging.Logger
}

func newInput(region *Region, name string, t core.BasicType, regionLevel bool, logger logging.Logger) *Input {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Input{region: region, name: name, dtype: t, regionLevel: regionLevel, logger: logger}
}

// Name returns the port name.
func (in *Input) Name() string { return in.name }

// SetName renames the port, used in error messages and lookups.
func (in *Input) SetName(name string) { in.name = name }

// Region returns the owning region.
func (in *Input) Region() *Region { return in.region }

// Type returns the element type of the aggregated buffer.
func (in *Input) Type() core.BasicType { return in.dtype }

// IsRegionLevel reports whether the aggregate is consumed whole by the
// region rather than split across sub-nodes.
func (in *Input) IsRegionLevel() bool { return in.regionLevel }

// IsInitialized reports whether the buffer layout has been finalized.
func (in *Input) IsInitialized() bool { return in.initialized }

// Size returns the total element count of the aggregated buffer. Fixed only
// after every link has resolved its dimensions.
func (in *Input) Size() int { return in.size }

// Links returns a copy of the owned links in declaration order.
func (in *Input) Links() []*Link {
	out := make([]*Link, len(in.links))
	copy(out, in.links)
	return out
}

// Offsets returns a copy of the per-link element offsets into the
// aggregated buffer, valid after Initialize.
func (in *Input) Offsets() []int {
	out := make([]int, len(in.offsets))
	copy(out, in.offsets)
	return out
}

// AddLink constructs a link under the named policy, appends it in call
// order, and registers it with the source output. Wiring mutation is only
// legal while the owning region is uninitialized; a layout finalized directly
// on the input is torn down, like in RemoveLink.
func (in *Input) AddLink(linkType, linkParams string, src *Output) (*Link, error) {
	if in.region.IsInitialized() {
		return nil, NewStateError("Input.AddLink",
			"cannot add link to %s while region %s is initialized", in, in.region.Name())
	}
	if existing := in.FindLink(src.Region().Name(), src.Name()); existing != nil {
		return nil, NewConfigurationError(CodeDuplicateLink,
			"input %s is already linked to %s", in, src)
	}
	l, err := NewLink(linkType, linkParams, src, in)
	if err != nil {
		return nil, err
	}
	// A finalized layout no longer matches the link sequence; tear it down so
	// the next Initialize recomputes offsets over all links.
	if in.initialized {
		if err := in.Uninitialize(); err != nil {
			return nil, err
		}
	}
	in.links = append(in.links, l)
	src.AddLink(l)
	in.invalidateSplitter()
	in.logger.Debug("link added", "link", l.String(), "link_id", l.ID(), "position", len(in.links)-1)
	return l, nil
}

// FindLink locates the link from the named source port. A miss returns nil;
// it is a normal result, not an error.
func (in *Input) FindLink(srcRegionName, srcOutputName string) *Link {
	for _, l := range in.links {
		if l.Source().Region().Name() == srcRegionName && l.Source().Name() == srcOutputName {
			return l
		}
	}
	return nil
}

// RemoveLink detaches the link from this input and from its source output
// and tears down the finalized buffer layout. Callers must drop their handle
// afterwards; the link is no longer part of any graph. Illegal while the
// owning region is initialized.
func (in *Input) RemoveLink(l *Link) error {
	if in.region.IsInitialized() {
		return NewStateError("Input.RemoveLink",
			"cannot remove link from %s while region %s is initialized", in, in.region.Name())
	}
	idx := -1
	for i, have := range in.links {
		if have == l {
			idx = i
			break
		}
	}
	if idx < 0 {
		return NewConfigurationError(CodeUnknownPort, "link %s is not attached to %s", l, in)
	}
	in.links = append(in.links[:idx], in.links[idx+1:]...)
	l.Source().RemoveLink(l)
	in.invalidateSplitter()
	if in.initialized {
		if err := in.Uninitialize(); err != nil {
			return err
		}
	}
	in.logger.Debug("link removed", "link", l.String(), "link_id", l.ID())
	return nil
}

// EvaluateLinks advances dimension resolution for this input by one step and
// returns the number of links still unresolved. The external driver repeats
// this across the whole graph until every input reports 0.
//
// Resolution works both ways: a source output that already knows its shape
// fixes the link's source side (forward), and a region that already knows
// its shape induces the link's source side through the policy's reverse
// induction. All links' destination-implied shapes are then reconciled into
// one shape for this input, which in turn induces the region's dimensions
// when they are still unset.
func (in *Input) EvaluateLinks() (int, error) {
	agreed := core.Dimensions(nil)
	if !in.regionLevel {
		regionDims := in.region.Dimensions()
		if !regionDims.IsUnspecified() && !regionDims.IsDontCare() {
			agreed = regionDims
		}
	}

	unresolved := 0
	for _, l := range in.links {
		if !l.Resolved() {
			if srcDims := l.Source().Dimensions(); !srcDims.IsUnspecified() {
				if err := l.SetSrcDimensions(srcDims); err != nil {
					return 0, err
				}
			}
		}
		if !l.Resolved() && !in.regionLevel && agreed != nil {
			if err := l.InduceSrcFromDest(agreed); err != nil {
				return 0, err
			}
		}

		destDims, err := l.DestDimensions()
		if err != nil {
			return 0, err
		}
		if destDims.IsUnspecified() {
			unresolved++
			continue
		}
		if destDims.IsDontCare() || in.regionLevel {
			continue
		}
		if agreed == nil {
			agreed = destDims
			continue
		}
		if !agreed.Equal(destDims) {
			return 0, &DimensionError{
				Context: in.String(),
				Have:    agreed.Clone(),
				Want:    destDims.Clone(),
				Reason: fmt.Sprintf("link %s implies %s but %s was already implied",
					l, destDims, agreed),
			}
		}
	}

	if !in.regionLevel && agreed != nil {
		if err := in.region.SetDimensions(agreed); err != nil {
			return 0, err
		}
	}
	return unresolved, nil
}

// zeroCopyEligible applies the conservative fast-path rule: exactly one
// link, matching element type, and a policy that never reorders elements.
func (in *Input) zeroCopyEligible() bool {
	if len(in.links) != 1 {
		return false
	}
	l := in.links[0]
	return l.Source().Type() == in.dtype && !l.NeedsReindexing()
}

// Initialize finalizes the buffer layout: per-link offsets in declaration
// order and the aggregated buffer, which either owns its storage or, on the
// zero-copy fast path, aliases the sole source output's buffer.
func (in *Input) Initialize() error {
	if in.initialized {
		return NewStateError("Input.Initialize", "input %s is already initialized", in)
	}
	for _, l := range in.links {
		if !l.Resolved() {
			return NewStateError("Input.Initialize", "link %s is still unresolved", l)
		}
	}

	in.offsets = make([]int, len(in.links))
	in.size = 0
	for i, l := range in.links {
		in.offsets[i] = in.size
		in.size += l.Size()
	}

	// Source buffers must exist before we can alias or copy from them; the
	// first allocation wins regardless of region initialization order.
	for _, l := range in.links {
		if err := l.Source().Initialize(); err != nil {
			return err
		}
	}

	in.zeroCopy = in.zeroCopyEligible()
	if in.zeroCopy {
		in.data = core.Alias(in.links[0].Source().Data())
	} else {
		in.data = core.NewArray(in.dtype, in.size)
	}
	in.initialized = true
	in.logger.Debug("input initialized",
		"input", in.String(), "links", len(in.links), "size", in.size, "zero_copy", in.zeroCopy)
	return nil
}

// Prepare makes the aggregated buffer current for this cycle by copying each
// link's contribution from its source output at the link's cached offset, in
// strict declaration order. A no-op under zero-copy aliasing. Must run
// exactly once per cycle before the buffer is read.
func (in *Input) Prepare() error {
	if !in.initialized {
		return NewStateError("Input.Prepare", "input %s is not initialized", in)
	}
	if in.zeroCopy {
		return nil
	}
	for i, l := range in.links {
		if err := in.data.ConvertFrom(in.offsets[i], l.Source().Data()); err != nil {
			return fmt.Errorf("preparing %s from %s: %w", in, l.Source(), err)
		}
	}
	return nil
}

// Data returns the current aggregated (or aliased) buffer. Read-only to
// callers; nil until initialized.
func (in *Input) Data() *core.Array { return in.data }

// IsZeroCopy reports whether the aggregated buffer aliases the sole source
// output instead of being copied each cycle.
func (in *Input) IsZeroCopy() bool { return in.zeroCopy }

// SplitterMap returns the destination-sub-node to source-element mapping for
// the aggregated buffer, built lazily on first request and cached until the
// wiring changes or the input is uninitialized.
func (in *Input) SplitterMap() (core.SplitterMap, error) {
	if !in.initialized {
		return nil, NewStateError("Input.SplitterMap", "input %s is not initialized", in)
	}
	if in.splitterValid {
		return in.splitter, nil
	}

	if in.regionLevel {
		// The whole aggregate belongs to the single region-level consumer.
		all := make([]int, in.size)
		for i := range all {
			all[i] = i
		}
		in.splitter = core.SplitterMap{all}
		in.splitterValid = true
		return in.splitter, nil
	}

	var full core.SplitterMap
	for i, l := range in.links {
		sub, err := l.SubMap()
		if err != nil {
			return nil, err
		}
		shifted := sub.Shift(in.offsets[i])
		if full == nil {
			full = make(core.SplitterMap, len(shifted))
		}
		if len(shifted) != len(full) {
			return nil, &DimensionError{
				Context: in.String(),
				Reason: fmt.Sprintf("link %s splits across %d nodes, expected %d",
					l, len(shifted), len(full)),
			}
		}
		for node, idxs := range shifted {
			full[node] = append(full[node], idxs...)
		}
	}
	in.splitter = full
	in.splitterValid = true
	return in.splitter, nil
}

// Uninitialize releases the aggregated buffer and the splitter-map cache,
// leaving the link sequence intact. Illegal while the owning region still
// reports initialized.
func (in *Input) Uninitialize() error {
	if in.region.IsInitialized() {
		return NewStateError("Input.Uninitialize",
			"cannot uninitialize %s while region %s is initialized", in, in.region.Name())
	}
	in.initialized = false
	in.zeroCopy = false
	in.data = nil
	in.offsets = nil
	in.size = 0
	in.invalidateSplitter()
	return nil
}

func (in *Input) invalidateSplitter() {
	in.splitter = nil
	in.splitterValid = false
}

func (in *Input) String() string {
	if in.region != nil {
		return fmt.Sprintf("%s.%s", in.region.Name(), in.name)
	}
	return in.name
}

// InputForNode gathers the elements belonging to one destination sub-node
// into a fresh typed slice, driven by the splitter map.
func InputForNode[T core.Element](in *Input, node int) ([]T, error) {
	sm, err := in.SplitterMap()
	if err != nil {
		return nil, err
	}
	if node < 0 || node >= len(sm) {
		return nil, NewConfigurationError(CodeUnknownPort,
			"node %d out of range for input %s with %d nodes", node, in, len(sm))
	}
	all := core.AsSlice[T](in.data)
	out := make([]T, len(sm[node]))
	for i, idx := range sm[node] {
		out[i] = all[idx]
	}
	return out, nil
}
