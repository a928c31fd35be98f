package testutil

import (
	"github.com/cortexmesh/cortexmesh/core"
	"github.com/cortexmesh/cortexmesh/engine"
)

// FillRamp writes start, start+1, ... into a Real32 array.
func FillRamp(a *core.Array, start float32) {
	vals := core.AsSlice[float32](a)
	for i := range vals {
		vals[i] = start + float32(i)
	}
}

// SourceRegion builds a region with one Real32 output named "out", fixed to
// dims, whose compute step fills the output with a ramp starting at base.
func SourceRegion(name string, dims core.Dimensions, base float32) *engine.Region {
	r := engine.NewRegion(name, func(o *engine.RegionOptions) {
		o.Compute = func(r *engine.Region) error {
			FillRamp(r.Output("out").Data(), base)
			return nil
		}
	})
	if _, err := r.NewOutput("out", core.TypeReal32); err != nil {
		panic(err)
	}
	if err := r.SetDimensions(dims); err != nil {
		panic(err)
	}
	return r
}

// SinkRegion builds a region with one Real32 input named "in" and no
// compute step.
func SinkRegion(name string, regionLevel bool) *engine.Region {
	r := engine.NewRegion(name)
	if _, err := r.NewInput("in", core.TypeReal32, regionLevel); err != nil {
		panic(err)
	}
	return r
}
