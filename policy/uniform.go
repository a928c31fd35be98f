package policy

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/cortexmesh/cortexmesh/core"
)

// UniformLinkType is the catalog name of the identity link policy.
const UniformLinkType = "UniformLink"

func init() {
	Register(UniformLinkType, newUniform)
}

// uniformParams is the YAML grammar accepted by UniformLink. Both fields are
// optional and retained for compatibility with existing network descriptions.
type uniformParams struct {
	Mapping string `yaml:"mapping"`
	RFSize  []int  `yaml:"rfSize"`
}

// uniform maps every source element straight through to the destination node
// of the same index: destination dimensions equal source dimensions and no
// reindexing occurs, which makes a sole uniform link zero-copy eligible.
type uniform struct{}

func newUniform(params string) (Policy, error) {
	var p uniformParams
	if err := yaml.Unmarshal([]byte(params), &p); err != nil {
		return nil, err
	}
	for _, rf := range p.RFSize {
		if rf != 1 {
			return nil, fmt.Errorf("uniform links support only unit receptive fields, got rfSize %v", p.RFSize)
		}
	}
	return uniform{}, nil
}

func (uniform) Name() string { return UniformLinkType }

func (uniform) DestDimensions(src core.Dimensions) (core.Dimensions, error) {
	return src.Clone(), nil
}

func (uniform) SrcDimensions(dest core.Dimensions) (core.Dimensions, error) {
	return dest.Clone(), nil
}

func (uniform) NeedsReindexing() bool { return false }

func (uniform) SubMap(dest core.Dimensions) (core.SplitterMap, error) {
	if err := dest.Validate(); err != nil {
		return nil, err
	}
	n := dest.ElementCount()
	m := make(core.SplitterMap, n)
	for i := 0; i < n; i++ {
		m[i] = []int{i}
	}
	return m, nil
}
