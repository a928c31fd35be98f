package engine

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cortexmesh/cortexmesh/core"
	"github.com/cortexmesh/cortexmesh/policy"
)

// Link binds exactly one output to one input under a named, parameterized
// policy. A link is owned by its destination input; the source output holds
// only a non-owning back-reference. Source and destination dimensions are
// each fixed at most once.
type Link struct {
	id       string
	linkType string
	params   string
	policy   policy.Policy

	src  *Output
	dest *Input

	srcDims  core.Dimensions
	destDims core.Dimensions

	subMap core.SplitterMap
}

// NewLink validates the link type against the policy catalog and binds the
// ports. The parameter blob's grammar is private to the policy.
func NewLink(linkType, params string, src *Output, dest *Input) (*Link, error) {
	p, err := policy.New(linkType, params)
	if err != nil {
		switch {
		case errors.Is(err, policy.ErrUnknownLinkType):
			return nil, NewConfigurationError(CodeUnknownLinkType,
				"%v (known types: %v)", err, policy.Names())
		case errors.Is(err, policy.ErrInvalidParams):
			return nil, NewConfigurationError(CodeInvalidParams, "%v", err)
		default:
			return nil, err
		}
	}
	return &Link{
		id:       uuid.NewString(),
		linkType: linkType,
		params:   params,
		policy:   p,
		src:      src,
		dest:     dest,
	}, nil
}

// ID returns the generated link identity used in logs.
func (l *Link) ID() string { return l.id }

// Type returns the link-type name.
func (l *Link) Type() string { return l.linkType }

// Params returns the opaque parameter blob the link was created with.
func (l *Link) Params() string { return l.params }

// Source returns the source output.
func (l *Link) Source() *Output { return l.src }

// Dest returns the destination input.
func (l *Link) Dest() *Input { return l.dest }

// Policy returns the policy instance driving this link.
func (l *Link) Policy() policy.Policy { return l.policy }

// SrcDimensions returns the fixed source shape, or unspecified.
func (l *Link) SrcDimensions() core.Dimensions { return l.srcDims }

// SetSrcDimensions fixes the source-side shape and induces it onto the
// source output. Re-fixing to an incompatible value is a dimension conflict.
func (l *Link) SetSrcDimensions(dims core.Dimensions) error {
	if dims.IsUnspecified() || dims.IsDontCare() {
		return nil
	}
	if !l.srcDims.IsUnspecified() {
		if !l.srcDims.Equal(dims) {
			return NewDimensionError(l.String(), l.srcDims, dims)
		}
		return nil
	}
	if err := l.src.SetDimensions(dims); err != nil {
		return err
	}
	l.srcDims = dims.Clone()
	l.destDims = nil // recompute from the newly fixed source side
	return nil
}

// DestDimensions derives the shape this link implies for its destination.
// Returns unspecified while the source side is unresolved.
func (l *Link) DestDimensions() (core.Dimensions, error) {
	if !l.destDims.IsUnspecified() {
		return l.destDims, nil
	}
	if l.srcDims.IsUnspecified() {
		return nil, nil
	}
	dims, err := l.policy.DestDimensions(l.srcDims)
	if err != nil {
		return nil, &DimensionError{Context: l.String(), Have: l.srcDims.Clone(), Reason: err.Error()}
	}
	l.destDims = dims
	return dims, nil
}

// InduceSrcFromDest fixes the source side from a destination shape the input
// already knows, using the policy's reverse induction.
func (l *Link) InduceSrcFromDest(dest core.Dimensions) error {
	if dest.IsUnspecified() || dest.IsDontCare() {
		return nil
	}
	src, err := l.policy.SrcDimensions(dest)
	if err != nil {
		return &DimensionError{Context: l.String(), Want: dest.Clone(), Reason: err.Error()}
	}
	return l.SetSrcDimensions(src)
}

// Resolved reports whether the source side has been fixed, which determines
// this link's contributed size.
func (l *Link) Resolved() bool {
	return !l.srcDims.IsUnspecified() && !l.srcDims.IsDontCare()
}

// Size returns the number of elements this link contributes to its
// destination's aggregated buffer, or 0 while unresolved.
func (l *Link) Size() int { return l.srcDims.ElementCount() }

// NeedsReindexing reports whether the policy reorders elements, which
// disqualifies the zero-copy fast path.
func (l *Link) NeedsReindexing() bool { return l.policy.NeedsReindexing() }

// SubMap returns this link's splitter sub-map for its resolved destination
// shape, cached after the first call.
func (l *Link) SubMap() (core.SplitterMap, error) {
	if l.subMap != nil {
		return l.subMap, nil
	}
	dest, err := l.DestDimensions()
	if err != nil {
		return nil, err
	}
	if dest.IsUnspecified() {
		return nil, NewStateError("Link.SubMap", "link %s has unresolved dimensions", l)
	}
	m, err := l.policy.SubMap(dest)
	if err != nil {
		return nil, fmt.Errorf("splitter sub-map for %s: %w", l, err)
	}
	l.subMap = m
	return m, nil
}

func (l *Link) String() string {
	return fmt.Sprintf("%s [%s -> %s]", l.linkType, l.src, l.dest)
}
