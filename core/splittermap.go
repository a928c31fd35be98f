package core

// SplitterMap describes, for every destination sub-node of an input, the
// ordered source element indices within the aggregated input buffer that
// belong to that sub-node. Entry i lists the indices consumed by sub-node i.
type SplitterMap [][]int

// NodeCount returns the number of destination sub-nodes covered by the map.
func (m SplitterMap) NodeCount() int { return len(m) }

// Shift returns a copy of the map with every element index offset by delta.
// Used when concatenating the per-link sub-maps into the full input map.
func (m SplitterMap) Shift(delta int) SplitterMap {
	out := make(SplitterMap, len(m))
	for i, idxs := range m {
		shifted := make([]int, len(idxs))
		for j, idx := range idxs {
			shifted[j] = idx + delta
		}
		out[i] = shifted
	}
	return out
}
