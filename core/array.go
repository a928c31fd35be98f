package core

import (
	"fmt"
	"unsafe"
)

// Element constrains the numeric element types an Array can be viewed as.
type Element interface {
	~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 | ~float32 | ~float64
}

// Array is a typed, fixed-element-size buffer backed by a contiguous byte
// slice. Arrays either own their backing store or alias another Array's
// store (the zero-copy path); the distinction is invisible to readers.
type Array struct {
	dtype BasicType
	buf   []byte
	count int
}

// NewArray allocates a zeroed Array of count elements of type t.
func NewArray(t BasicType, count int) *Array {
	if count < 0 {
		count = 0
	}
	return &Array{dtype: t, buf: make([]byte, count*t.Size()), count: count}
}

// Alias returns an Array sharing other's backing store. Writes through
// either are visible through both.
func Alias(other *Array) *Array {
	return &Array{dtype: other.dtype, buf: other.buf, count: other.count}
}

// SharesBuffer reports whether a and b are views over the same backing store.
func (a *Array) SharesBuffer(b *Array) bool {
	if len(a.buf) == 0 || len(b.buf) == 0 {
		return false
	}
	return &a.buf[0] == &b.buf[0]
}

// Type returns the element type.
func (a *Array) Type() BasicType { return a.dtype }

// Count returns the number of elements.
func (a *Array) Count() int { return a.count }

// Bytes exposes the raw backing store. Callers must not resize it.
func (a *Array) Bytes() []byte { return a.buf }

// CopyFrom copies all of src into a starting at destination element offset.
// Element types must match and the copy must fit.
func (a *Array) CopyFrom(offset int, src *Array) error {
	if src.dtype != a.dtype {
		return fmt.Errorf("copy between element types %s and %s", src.dtype, a.dtype)
	}
	if offset < 0 || offset+src.count > a.count {
		return fmt.Errorf("copy of %d elements at offset %d exceeds array of %d elements",
			src.count, offset, a.count)
	}
	es := a.dtype.Size()
	copy(a.buf[offset*es:], src.buf)
	return nil
}

// ConvertFrom copies all of src into a starting at destination element
// offset, converting element values between numeric types. Used on the copy
// path when a link's source type differs from its destination's.
func (a *Array) ConvertFrom(offset int, src *Array) error {
	if src.dtype == a.dtype {
		return a.CopyFrom(offset, src)
	}
	if offset < 0 || offset+src.count > a.count {
		return fmt.Errorf("copy of %d elements at offset %d exceeds array of %d elements",
			src.count, offset, a.count)
	}
	for i := 0; i < src.count; i++ {
		a.setFloat(offset+i, src.getFloat(i))
	}
	return nil
}

func (a *Array) getFloat(i int) float64 {
	switch a.dtype {
	case TypeByte:
		return float64(AsSlice[uint8](a)[i])
	case TypeInt16:
		return float64(AsSlice[int16](a)[i])
	case TypeUInt16:
		return float64(AsSlice[uint16](a)[i])
	case TypeInt32:
		return float64(AsSlice[int32](a)[i])
	case TypeUInt32:
		return float64(AsSlice[uint32](a)[i])
	case TypeInt64:
		return float64(AsSlice[int64](a)[i])
	case TypeUInt64:
		return float64(AsSlice[uint64](a)[i])
	case TypeReal32:
		return float64(AsSlice[float32](a)[i])
	case TypeReal64:
		return AsSlice[float64](a)[i]
	default:
		return 0
	}
}

func (a *Array) setFloat(i int, v float64) {
	switch a.dtype {
	case TypeByte:
		AsSlice[uint8](a)[i] = uint8(v)
	case TypeInt16:
		AsSlice[int16](a)[i] = int16(v)
	case TypeUInt16:
		AsSlice[uint16](a)[i] = uint16(v)
	case TypeInt32:
		AsSlice[int32](a)[i] = int32(v)
	case TypeUInt32:
		AsSlice[uint32](a)[i] = uint32(v)
	case TypeInt64:
		AsSlice[int64](a)[i] = int64(v)
	case TypeUInt64:
		AsSlice[uint64](a)[i] = uint64(v)
	case TypeReal32:
		AsSlice[float32](a)[i] = float32(v)
	case TypeReal64:
		AsSlice[float64](a)[i] = v
	}
}

// AsSlice views the Array's backing store as a typed slice without copying.
// The caller is responsible for matching T to the Array's BasicType width.
func AsSlice[T Element](a *Array) []T {
	if a.count == 0 {
		return nil
	}
	var zero T
	n := len(a.buf) / int(unsafe.Sizeof(zero))
	return unsafe.Slice((*T)(unsafe.Pointer(&a.buf[0])), n)
}
