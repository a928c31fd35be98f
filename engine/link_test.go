package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cortexmesh/cortexmesh/core"
	"github.com/cortexmesh/cortexmesh/policy"
)

func buildPorts(t *testing.T, srcType, destType core.BasicType) (*Output, *Input) {
	t.Helper()
	srcRegion := NewRegion("src")
	out, err := srcRegion.NewOutput("out", srcType)
	assert.NoError(t, err)
	destRegion := NewRegion("dest")
	in, err := destRegion.NewInput("in", destType, false)
	assert.NoError(t, err)
	return out, in
}

func TestNewLinkUnknownType(t *testing.T) {
	out, in := buildPorts(t, core.TypeReal32, core.TypeReal32)
	_, err := NewLink("NoSuchLink", "", out, in)
	assert.Error(t, err)
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, CodeUnknownLinkType, cfgErr.Code)
}

func TestNewLinkInvalidParams(t *testing.T) {
	out, in := buildPorts(t, core.TypeReal32, core.TypeReal32)
	_, err := NewLink(policy.UniformLinkType, "{rfSize: [2]}", out, in)
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, CodeInvalidParams, cfgErr.Code)
}

func TestLinkSourceDimensionsImmutable(t *testing.T) {
	out, in := buildPorts(t, core.TypeReal32, core.TypeReal32)
	l, err := NewLink(policy.UniformLinkType, "", out, in)
	assert.NoError(t, err)

	assert.NoError(t, l.SetSrcDimensions(core.Dimensions{4}))
	assert.Equal(t, core.Dimensions{4}, l.SrcDimensions())
	assert.Equal(t, core.Dimensions{4}, out.Dimensions())

	// Re-fixing to the same value is fine; an incompatible value is a defect.
	assert.NoError(t, l.SetSrcDimensions(core.Dimensions{4}))
	err = l.SetSrcDimensions(core.Dimensions{5})
	var dimErr *DimensionError
	assert.ErrorAs(t, err, &dimErr)
}

func TestLinkDestDimensionsUnresolvedSource(t *testing.T) {
	out, in := buildPorts(t, core.TypeReal32, core.TypeReal32)
	l, _ := NewLink(policy.UniformLinkType, "", out, in)

	dims, err := l.DestDimensions()
	assert.NoError(t, err)
	assert.True(t, dims.IsUnspecified())
	assert.False(t, l.Resolved())
	assert.Equal(t, 0, l.Size())
}

func TestLinkInduceSrcFromDest(t *testing.T) {
	out, in := buildPorts(t, core.TypeReal32, core.TypeReal32)
	l, _ := NewLink(policy.FanIn2LinkType, "", out, in)

	assert.NoError(t, l.InduceSrcFromDest(core.Dimensions{4, 2}))
	assert.Equal(t, core.Dimensions{8, 4}, l.SrcDimensions())
	assert.Equal(t, core.Dimensions{8, 4}, out.Dimensions())

	dest, err := l.DestDimensions()
	assert.NoError(t, err)
	assert.Equal(t, core.Dimensions{4, 2}, dest)
	assert.True(t, l.Resolved())
	assert.Equal(t, 32, l.Size())
}

func TestLinkSubMapCaching(t *testing.T) {
	out, in := buildPorts(t, core.TypeReal32, core.TypeReal32)
	l, _ := NewLink(policy.FanIn2LinkType, "", out, in)
	assert.NoError(t, l.SetSrcDimensions(core.Dimensions{8}))

	a, err := l.SubMap()
	assert.NoError(t, err)
	b, err := l.SubMap()
	assert.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, core.SplitterMap{{0, 1}, {2, 3}, {4, 5}, {6, 7}}, a)
}

func TestLinkString(t *testing.T) {
	out, in := buildPorts(t, core.TypeReal32, core.TypeReal32)
	l, _ := NewLink(policy.UniformLinkType, "", out, in)
	assert.Equal(t, "UniformLink [src.out -> dest.in]", l.String())
	assert.NotEmpty(t, l.ID())
}
