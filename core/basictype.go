package core

import "fmt"

// BasicType identifies the element type of a port buffer.
type BasicType int

const (
	// TypeByte is an 8-bit unsigned element.
	TypeByte BasicType = iota
	// TypeInt16 is a 16-bit signed element.
	TypeInt16
	// TypeUInt16 is a 16-bit unsigned element.
	TypeUInt16
	// TypeInt32 is a 32-bit signed element.
	TypeInt32
	// TypeUInt32 is a 32-bit unsigned element.
	TypeUInt32
	// TypeInt64 is a 64-bit signed element.
	TypeInt64
	// TypeUInt64 is a 64-bit unsigned element.
	TypeUInt64
	// TypeReal32 is a 32-bit IEEE float element.
	TypeReal32
	// TypeReal64 is a 64-bit IEEE float element.
	TypeReal64
)

// Size returns the width of one element in bytes.
func (t BasicType) Size() int {
	switch t {
	case TypeByte:
		return 1
	case TypeInt16, TypeUInt16:
		return 2
	case TypeInt32, TypeUInt32, TypeReal32:
		return 4
	case TypeInt64, TypeUInt64, TypeReal64:
		return 8
	default:
		return 0
	}
}

// String returns the canonical name of the type.
func (t BasicType) String() string {
	switch t {
	case TypeByte:
		return "Byte"
	case TypeInt16:
		return "Int16"
	case TypeUInt16:
		return "UInt16"
	case TypeInt32:
		return "Int32"
	case TypeUInt32:
		return "UInt32"
	case TypeInt64:
		return "Int64"
	case TypeUInt64:
		return "UInt64"
	case TypeReal32:
		return "Real32"
	case TypeReal64:
		return "Real64"
	default:
		return fmt.Sprintf("BasicType(%d)", int(t))
	}
}

// ParseBasicType resolves a canonical type name to its BasicType.
func ParseBasicType(name string) (BasicType, error) {
	for _, t := range []BasicType{
		TypeByte, TypeInt16, TypeUInt16, TypeInt32, TypeUInt32,
		TypeInt64, TypeUInt64, TypeReal32, TypeReal64,
	} {
		if t.String() == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown basic type %q", name)
}
