package policy

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/cortexmesh/cortexmesh/core"
)

// FanIn2LinkType is the catalog name of the two-per-dimension fan-in policy.
const FanIn2LinkType = "TestFanIn2"

func init() {
	Register(FanIn2LinkType, newFanIn2)
}

// fanIn2 halves every dimension: each destination sub-node consumes the
// 2^rank block of source elements covering its coordinate. Elements are
// reordered relative to the flat source layout, so the zero-copy fast path
// is never taken for this policy.
type fanIn2 struct{}

func newFanIn2(params string) (Policy, error) {
	var p map[string]any
	if err := yaml.Unmarshal([]byte(params), &p); err != nil {
		return nil, err
	}
	return fanIn2{}, nil
}

func (fanIn2) Name() string { return FanIn2LinkType }

func (fanIn2) DestDimensions(src core.Dimensions) (core.Dimensions, error) {
	if src.IsUnspecified() || src.IsDontCare() {
		return src.Clone(), nil
	}
	dest := make(core.Dimensions, len(src))
	for i, s := range src {
		if s%2 != 0 {
			return nil, fmt.Errorf("fan-in-2 requires even source dimensions, got %s", src)
		}
		dest[i] = s / 2
	}
	return dest, nil
}

func (fanIn2) SrcDimensions(dest core.Dimensions) (core.Dimensions, error) {
	if dest.IsUnspecified() || dest.IsDontCare() {
		return dest.Clone(), nil
	}
	src := make(core.Dimensions, len(dest))
	for i, s := range dest {
		src[i] = s * 2
	}
	return src, nil
}

func (fanIn2) NeedsReindexing() bool { return true }

func (fanIn2) SubMap(dest core.Dimensions) (core.SplitterMap, error) {
	if err := dest.Validate(); err != nil {
		return nil, err
	}
	if dest.IsUnspecified() || dest.IsDontCare() {
		return nil, fmt.Errorf("cannot build sub-map for shape %s", dest)
	}

	rank := len(dest)
	src := make(core.Dimensions, rank)
	for i, s := range dest {
		src[i] = s * 2
	}

	// Row-major strides over the source shape, last dimension fastest.
	strides := make([]int, rank)
	stride := 1
	for i := rank - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= src[i]
	}

	m := make(core.SplitterMap, dest.ElementCount())
	coord := make([]int, rank)
	for node := range m {
		m[node] = blockIndices(coord, strides, rank)
		// Advance the destination coordinate in row-major order.
		for i := rank - 1; i >= 0; i-- {
			coord[i]++
			if coord[i] < dest[i] {
				break
			}
			coord[i] = 0
		}
	}
	return m, nil
}

// blockIndices enumerates, in row-major order, the flat source indices of
// the 2^rank block anchored at twice the destination coordinate.
func blockIndices(coord, strides []int, rank int) []int {
	idxs := make([]int, 0, 1<<rank)
	for mask := 0; mask < 1<<rank; mask++ {
		flat := 0
		for i := 0; i < rank; i++ {
			off := (mask >> (rank - 1 - i)) & 1
			flat += (2*coord[i] + off) * strides[i]
		}
		idxs = append(idxs, flat)
	}
	return idxs
}
