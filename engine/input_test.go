package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cortexmesh/cortexmesh/core"
	"github.com/cortexmesh/cortexmesh/policy"
)

// sourceRegion builds a region with a single Real32 output "out" fixed to dims.
func sourceRegion(t *testing.T, name string, dims core.Dimensions) *Region {
	t.Helper()
	r := NewRegion(name)
	_, err := r.NewOutput("out", core.TypeReal32)
	assert.NoError(t, err)
	assert.NoError(t, r.SetDimensions(dims))
	return r
}

// resolve drives a single input to its dimension fixed point.
func resolve(t *testing.T, in *Input) {
	t.Helper()
	for i := 0; i < 10; i++ {
		n, err := in.EvaluateLinks()
		assert.NoError(t, err)
		if n == 0 {
			return
		}
	}
	t.Fatalf("input %s did not resolve", in.Name())
}

func fillOutput(out *Output, start float32) {
	vals := core.AsSlice[float32](out.Data())
	for i := range vals {
		vals[i] = start + float32(i)
	}
}

func TestTwoLinkAggregation(t *testing.T) {
	// Input with two links, A contributing 4 elements and B contributing 3,
	// in that declaration order.
	srcA := sourceRegion(t, "A", core.Dimensions{4})
	srcB := sourceRegion(t, "B", core.Dimensions{3})
	sink := NewRegion("sink")
	in, err := sink.NewInput("in", core.TypeReal32, true)
	assert.NoError(t, err)

	_, err = in.AddLink(policy.UniformLinkType, "", srcA.Output("out"))
	assert.NoError(t, err)
	_, err = in.AddLink(policy.UniformLinkType, "", srcB.Output("out"))
	assert.NoError(t, err)

	resolve(t, in)
	assert.NoError(t, in.Initialize())

	assert.Equal(t, 7, in.Size())
	assert.Equal(t, []int{0, 4}, in.Offsets())
	assert.False(t, in.IsZeroCopy())

	// Offsets are strictly increasing, starting at 0, with per-link deltas
	// equal to the contributed sizes.
	offsets := in.Offsets()
	links := in.Links()
	assert.Len(t, offsets, len(links))
	for i := range links {
		if i == 0 {
			assert.Equal(t, 0, offsets[0])
			continue
		}
		assert.Equal(t, links[i-1].Size(), offsets[i]-offsets[i-1])
	}

	fillOutput(srcA.Output("out"), 10)
	fillOutput(srcB.Output("out"), 100)
	assert.NoError(t, in.Prepare())

	got := core.AsSlice[float32](in.Data())
	assert.Equal(t, []float32{10, 11, 12, 13, 100, 101, 102}, got)
}

func TestZeroCopyAliasing(t *testing.T) {
	src := sourceRegion(t, "src", core.Dimensions{5})
	sink := NewRegion("sink")
	in, _ := sink.NewInput("in", core.TypeReal32, false)

	_, err := in.AddLink(policy.UniformLinkType, "", src.Output("out"))
	assert.NoError(t, err)
	resolve(t, in)
	assert.NoError(t, in.Initialize())

	assert.True(t, in.IsZeroCopy())
	assert.True(t, in.Data().SharesBuffer(src.Output("out").Data()))

	// A mutation to the source buffer is visible through the input without
	// any Prepare call having run.
	fillOutput(src.Output("out"), 42)
	assert.Equal(t, float32(42), core.AsSlice[float32](in.Data())[0])

	// Prepare stays a no-op.
	assert.NoError(t, in.Prepare())
	assert.Equal(t, float32(46), core.AsSlice[float32](in.Data())[4])
}

func TestZeroCopyDisqualifiedByReindexing(t *testing.T) {
	src := sourceRegion(t, "src", core.Dimensions{8})
	sink := NewRegion("sink")
	in, _ := sink.NewInput("in", core.TypeReal32, false)

	_, err := in.AddLink(policy.FanIn2LinkType, "", src.Output("out"))
	assert.NoError(t, err)
	resolve(t, in)
	assert.NoError(t, in.Initialize())

	assert.False(t, in.IsZeroCopy())
	assert.False(t, in.Data().SharesBuffer(src.Output("out").Data()))
	// The fan-in link induced the sink's region shape.
	assert.Equal(t, core.Dimensions{4}, sink.Dimensions())
}

func TestZeroCopyDisqualifiedByElementType(t *testing.T) {
	srcRegion := NewRegion("src")
	_, err := srcRegion.NewOutput("out", core.TypeInt32)
	assert.NoError(t, err)
	assert.NoError(t, srcRegion.SetDimensions(core.Dimensions{4}))

	sink := NewRegion("sink")
	in, _ := sink.NewInput("in", core.TypeReal32, false)
	_, err = in.AddLink(policy.UniformLinkType, "", srcRegion.Output("out"))
	assert.NoError(t, err)
	resolve(t, in)
	assert.NoError(t, in.Initialize())

	assert.False(t, in.IsZeroCopy())
}

func TestAddLinkWhileInitialized(t *testing.T) {
	src := sourceRegion(t, "src", core.Dimensions{4})
	src2 := sourceRegion(t, "src2", core.Dimensions{4})
	sink := NewRegion("sink")
	in, _ := sink.NewInput("in", core.TypeReal32, false)

	_, err := in.AddLink(policy.UniformLinkType, "", src.Output("out"))
	assert.NoError(t, err)
	resolve(t, in)
	assert.NoError(t, sink.Initialize())

	_, err = in.AddLink(policy.UniformLinkType, "", src2.Output("out"))
	var stateErr *StateError
	assert.ErrorAs(t, err, &stateErr)

	// The identical call succeeds once the region is uninitialized again.
	assert.NoError(t, sink.Uninitialize())
	_, err = in.AddLink(policy.UniformLinkType, "", src2.Output("out"))
	assert.NoError(t, err)
}

func TestAddLinkTearsDownFinalizedLayout(t *testing.T) {
	// The input is initialized directly, without the owning region; adding a
	// link must uninitialize it so offsets are recomputed over all links.
	srcA := sourceRegion(t, "A", core.Dimensions{4})
	srcB := sourceRegion(t, "B", core.Dimensions{3})
	sink := NewRegion("sink")
	in, _ := sink.NewInput("in", core.TypeReal32, true)

	_, err := in.AddLink(policy.UniformLinkType, "", srcA.Output("out"))
	assert.NoError(t, err)
	resolve(t, in)
	assert.NoError(t, in.Initialize())
	assert.True(t, in.IsZeroCopy())

	_, err = in.AddLink(policy.UniformLinkType, "", srcB.Output("out"))
	assert.NoError(t, err)
	assert.False(t, in.IsInitialized())

	// Re-initializing yields a layout covering both links, and Prepare
	// round-trips both contributions.
	resolve(t, in)
	assert.NoError(t, in.Initialize())
	assert.False(t, in.IsZeroCopy())
	assert.Equal(t, 7, in.Size())
	assert.Equal(t, []int{0, 4}, in.Offsets())

	fillOutput(srcA.Output("out"), 10)
	fillOutput(srcB.Output("out"), 100)
	assert.NoError(t, in.Prepare())
	assert.Equal(t, []float32{10, 11, 12, 13, 100, 101, 102},
		core.AsSlice[float32](in.Data()))
}

func TestDuplicateLinkRejected(t *testing.T) {
	src := sourceRegion(t, "src", core.Dimensions{4})
	sink := NewRegion("sink")
	in, _ := sink.NewInput("in", core.TypeReal32, false)

	_, err := in.AddLink(policy.UniformLinkType, "", src.Output("out"))
	assert.NoError(t, err)
	_, err = in.AddLink(policy.UniformLinkType, "", src.Output("out"))
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, CodeDuplicateLink, cfgErr.Code)
}

func TestFindLink(t *testing.T) {
	src := sourceRegion(t, "src", core.Dimensions{4})
	sink := NewRegion("sink")
	in, _ := sink.NewInput("in", core.TypeReal32, false)
	l, _ := in.AddLink(policy.UniformLinkType, "", src.Output("out"))

	assert.Same(t, l, in.FindLink("src", "out"))
	// A miss is a normal result, not an error.
	assert.Nil(t, in.FindLink("src", "nope"))
	assert.Nil(t, in.FindLink("other", "out"))
}

func TestRemoveLink(t *testing.T) {
	src := sourceRegion(t, "src", core.Dimensions{4})
	sink := NewRegion("sink")
	in, _ := sink.NewInput("in", core.TypeReal32, false)
	l, _ := in.AddLink(policy.UniformLinkType, "", src.Output("out"))

	resolve(t, in)
	assert.NoError(t, sink.Initialize())

	// Always fails while the owning region reports initialized.
	err := in.RemoveLink(l)
	var stateErr *StateError
	assert.ErrorAs(t, err, &stateErr)

	// Succeeds otherwise, detaching both sides.
	assert.NoError(t, sink.Uninitialize())
	assert.NoError(t, in.RemoveLink(l))
	assert.Empty(t, in.Links())
	assert.Empty(t, src.Output("out").Links())
	assert.False(t, in.IsInitialized())

	// Removing it again is an error: the link is no longer attached.
	assert.Error(t, in.RemoveLink(l))
}

func TestEvaluateLinksIdempotentAtFixedPoint(t *testing.T) {
	src := sourceRegion(t, "src", core.Dimensions{6})
	sink := NewRegion("sink")
	in, _ := sink.NewInput("in", core.TypeReal32, false)
	_, err := in.AddLink(policy.UniformLinkType, "", src.Output("out"))
	assert.NoError(t, err)

	resolve(t, in)
	dims := sink.Dimensions().Clone()

	for i := 0; i < 3; i++ {
		n, err := in.EvaluateLinks()
		assert.NoError(t, err)
		assert.Equal(t, 0, n)
		assert.Equal(t, dims, sink.Dimensions())
	}
}

func TestEvaluateLinksShapeConflict(t *testing.T) {
	// Two links implying [8] and [4 2]: equal element count, incompatible
	// shape.
	srcA := sourceRegion(t, "A", core.Dimensions{8})
	srcB := sourceRegion(t, "B", core.Dimensions{4, 2})
	sink := NewRegion("sink")
	in, _ := sink.NewInput("in", core.TypeReal32, false)

	_, err := in.AddLink(policy.UniformLinkType, "", srcA.Output("out"))
	assert.NoError(t, err)
	_, err = in.AddLink(policy.UniformLinkType, "", srcB.Output("out"))
	assert.NoError(t, err)

	_, err = in.EvaluateLinks()
	var dimErr *DimensionError
	assert.ErrorAs(t, err, &dimErr)
}

func TestInitializePreconditions(t *testing.T) {
	src := sourceRegion(t, "src", core.Dimensions{4})
	sink := NewRegion("sink")
	in, _ := sink.NewInput("in", core.TypeReal32, false)
	_, err := in.AddLink(policy.UniformLinkType, "", src.Output("out"))
	assert.NoError(t, err)

	// Unresolved link blocks initialization... but here the source shape is
	// known, so one evaluation pass resolves it.
	sink2 := NewRegion("sink2")
	unresolvedSrc := NewRegion("lazy")
	_, err = unresolvedSrc.NewOutput("out", core.TypeReal32)
	assert.NoError(t, err)
	in2, _ := sink2.NewInput("in", core.TypeReal32, false)
	_, err = in2.AddLink(policy.UniformLinkType, "", unresolvedSrc.Output("out"))
	assert.NoError(t, err)
	err = in2.Initialize()
	var stateErr *StateError
	assert.ErrorAs(t, err, &stateErr)

	resolve(t, in)
	assert.NoError(t, in.Initialize())

	// Double initialize is illegal.
	err = in.Initialize()
	assert.ErrorAs(t, err, &stateErr)
}

func TestPrepareRequiresInitialize(t *testing.T) {
	sink := NewRegion("sink")
	in, _ := sink.NewInput("in", core.TypeReal32, false)
	var stateErr *StateError
	assert.ErrorAs(t, in.Prepare(), &stateErr)
}

func TestUninitializeWhileRegionInitialized(t *testing.T) {
	src := sourceRegion(t, "src", core.Dimensions{4})
	sink := NewRegion("sink")
	in, _ := sink.NewInput("in", core.TypeReal32, false)
	_, err := in.AddLink(policy.UniformLinkType, "", src.Output("out"))
	assert.NoError(t, err)
	resolve(t, in)
	assert.NoError(t, sink.Initialize())

	var stateErr *StateError
	assert.ErrorAs(t, in.Uninitialize(), &stateErr)

	assert.NoError(t, sink.Uninitialize())
	assert.False(t, in.IsInitialized())
	assert.Nil(t, in.Data())
}
