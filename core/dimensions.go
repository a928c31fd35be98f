package core

import (
	"fmt"
	"strings"
)

// Dimensions is the ordered shape of a port or region. An empty (or nil)
// value means the shape is still unspecified; the single-element value [0]
// means "don't care" and defers to any concrete shape during negotiation.
type Dimensions []int

// IsUnspecified reports whether no shape has been fixed yet.
func (d Dimensions) IsUnspecified() bool { return len(d) == 0 }

// IsDontCare reports whether the shape defers to its peer during negotiation.
func (d Dimensions) IsDontCare() bool { return len(d) == 1 && d[0] == 0 }

// ElementCount returns the product of all sizes, or 0 while unspecified.
func (d Dimensions) ElementCount() int {
	if d.IsUnspecified() {
		return 0
	}
	n := 1
	for _, s := range d {
		n *= s
	}
	return n
}

// Equal reports whether two shapes are identical rank and sizes.
func (d Dimensions) Equal(other Dimensions) bool {
	if len(d) != len(other) {
		return false
	}
	for i := range d {
		if d[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (d Dimensions) Clone() Dimensions {
	if d == nil {
		return nil
	}
	c := make(Dimensions, len(d))
	copy(c, d)
	return c
}

// Validate rejects shapes containing non-positive sizes. Unspecified and
// don't-care values are valid.
func (d Dimensions) Validate() error {
	if d.IsUnspecified() || d.IsDontCare() {
		return nil
	}
	for i, s := range d {
		if s <= 0 {
			return fmt.Errorf("dimension %d has non-positive size %d", i, s)
		}
	}
	return nil
}

// String renders the shape as "[4 2]"; unspecified renders as "[unspecified]".
func (d Dimensions) String() string {
	if d.IsUnspecified() {
		return "[unspecified]"
	}
	parts := make([]string, len(d))
	for i, s := range d {
		parts[i] = fmt.Sprintf("%d", s)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
