package engine

import (
	"fmt"

	"github.com/cortexmesh/cortexmesh/core"
)

// Output is a named data-producing port of a region. It owns the produced
// buffer; the links attached to it are owned by their destination inputs and
// tracked here only for enumeration and teardown.
type Output struct {
	region *Region
	name   string
	dtype  core.BasicType
	dims   core.Dimensions
	data   *core.Array

	// Non-owning back-references; ownership of each link belongs to its
	// destination input. Order carries no meaning on the output side.
	links []*Link
}

func newOutput(region *Region, name string, t core.BasicType) *Output {
	return &Output{region: region, name: name, dtype: t}
}

// Name returns the port name.
func (o *Output) Name() string { return o.name }

// SetName renames the port, used in error messages and lookups.
func (o *Output) SetName(name string) { o.name = name }

// Region returns the owning region.
func (o *Output) Region() *Region { return o.region }

// Type returns the element type of the produced buffer.
func (o *Output) Type() core.BasicType { return o.dtype }

// Dimensions returns the current shape, which may still be unspecified.
func (o *Output) Dimensions() core.Dimensions { return o.dims }

// SetDimensions fixes the output shape. Setting an already-fixed shape to an
// incompatible value is a dimension conflict; don't-care defers to any peer.
func (o *Output) SetDimensions(dims core.Dimensions) error {
	if err := dims.Validate(); err != nil {
		return NewConfigurationError(CodeInvalidParams, "output %s: %v", o, err)
	}
	if dims.IsUnspecified() || dims.IsDontCare() {
		return nil
	}
	if !o.dims.IsUnspecified() && !o.dims.IsDontCare() {
		if !o.dims.Equal(dims) {
			return NewDimensionError(o.String(), o.dims, dims)
		}
		return nil
	}
	o.dims = dims.Clone()
	return nil
}

// ElementCount returns the number of elements this output contributes, or 0
// while its shape is unresolved.
func (o *Output) ElementCount() int { return o.dims.ElementCount() }

// Data returns the produced buffer. The owning region mutates it strictly
// between cycles; nil until the output is initialized.
func (o *Output) Data() *core.Array { return o.data }

// Initialize allocates the buffer from the resolved shape. Safe to call more
// than once; the first call wins so that a downstream zero-copy input can
// force allocation before the owning region initializes.
func (o *Output) Initialize() error {
	if o.data != nil {
		return nil
	}
	if o.dims.IsUnspecified() {
		return NewStateError("Output.Initialize", "output %s has unresolved dimensions", o)
	}
	o.data = core.NewArray(o.dtype, o.dims.ElementCount())
	return nil
}

func (o *Output) uninitialize() { o.data = nil }

// AddLink registers a non-owning back-reference to an attached link.
func (o *Output) AddLink(l *Link) { o.links = append(o.links, l) }

// RemoveLink deregisters a back-reference. Missing links are ignored; the
// destination input is the authority on link existence.
func (o *Output) RemoveLink(l *Link) {
	for i, have := range o.links {
		if have == l {
			o.links = append(o.links[:i], o.links[i+1:]...)
			return
		}
	}
}

// Links returns a copy of the attached links for enumeration.
func (o *Output) Links() []*Link {
	out := make([]*Link, len(o.links))
	copy(out, o.links)
	return out
}

// HasOutgoingLinks reports whether any input still references this output.
func (o *Output) HasOutgoingLinks() bool { return len(o.links) > 0 }

func (o *Output) String() string {
	if o.region != nil {
		return fmt.Sprintf("%s.%s", o.region.Name(), o.name)
	}
	return o.name
}
