package ir

import (
	"fmt"
	"strings"
)

// Type is the type of a value in the program graph. Types nest through
// pointers and aggregates and are compared structurally with Equal.
type Type interface {
	Equal(t Type) bool
	String() string
}

// IntType is an integer type of arbitrary bit width.
type IntType struct {
	Bits uint
}

// FloatType is a floating-point type. Valid widths are 16, 32, 64 and
// 80 bits.
type FloatType struct {
	Bits uint
}

// PtrType is a pointer to an element type.
type PtrType struct {
	Elem Type
}

// AggregateType is an ordered sequence of element types.
type AggregateType struct {
	Elems []Type
}

// OpaqueType is a named type with unknown layout.
type OpaqueType struct {
	Name string
}

// Int constructs an IntType.
func Int(bits uint) *IntType {
	if bits == 0 {
		panic("ir: zero width integer type")
	}
	return &IntType{Bits: bits}
}

// Float constructs a FloatType of a supported width.
func Float(bits uint) *FloatType {
	if !ValidFloatWidth(bits) {
		panic(fmt.Sprintf("ir: unsupported floating-point width: %d", bits))
	}
	return &FloatType{Bits: bits}
}

// Ptr constructs a PtrType.
func Ptr(elem Type) *PtrType {
	if elem == nil {
		panic("ir: pointer to nil type")
	}
	return &PtrType{Elem: elem}
}

// Aggregate constructs an AggregateType.
func Aggregate(elems ...Type) *AggregateType {
	return &AggregateType{Elems: elems}
}

// ValidFloatWidth reports whether a floating-point type of the given
// width can be materialized.
func ValidFloatWidth(bits uint) bool {
	switch bits {
	case 16, 32, 64, 80:
		return true
	}
	return false
}

// ValidElemType reports whether a type can be the element type of a
// declaration. Opaque types and empty aggregates have no storage
// layout.
func ValidElemType(t Type) bool {
	switch t := t.(type) {
	case nil:
		return false
	case *OpaqueType:
		return false
	case *AggregateType:
		return len(t.Elems) != 0
	}
	return true
}

// Equal reports structural type identity.
func (t *IntType) Equal(other Type) bool {
	o, ok := other.(*IntType)
	return ok && t.Bits == o.Bits
}

// Equal reports structural type identity.
func (t *FloatType) Equal(other Type) bool {
	o, ok := other.(*FloatType)
	return ok && t.Bits == o.Bits
}

// Equal reports structural type identity.
func (t *PtrType) Equal(other Type) bool {
	o, ok := other.(*PtrType)
	return ok && t.Elem.Equal(o.Elem)
}

// Equal reports structural type identity.
func (t *AggregateType) Equal(other Type) bool {
	o, ok := other.(*AggregateType)
	if !ok || len(t.Elems) != len(o.Elems) {
		return false
	}
	for i, elem := range t.Elems {
		if !elem.Equal(o.Elems[i]) {
			return false
		}
	}
	return true
}

// Equal reports type identity by name.
func (t *OpaqueType) Equal(other Type) bool {
	o, ok := other.(*OpaqueType)
	return ok && t.Name == o.Name
}

func (t *IntType) String() string   { return fmt.Sprintf("i%d", t.Bits) }
func (t *FloatType) String() string { return fmt.Sprintf("f%d", t.Bits) }
func (t *PtrType) String() string   { return t.Elem.String() + "*" }

func (t *AggregateType) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, elem := range t.Elems {
		if i != 0 {
			b.WriteString(", ")
		}
		b.WriteString(elem.String())
	}
	b.WriteByte('}')
	return b.String()
}

func (t *OpaqueType) String() string { return t.Name }

// SizeOf returns the byte size of a type. Pointers are a machine word
// wide; an 80-bit float occupies ten bytes.
func SizeOf(t Type, wordBytes int) int {
	switch t := t.(type) {
	case *IntType:
		return int(t.Bits+7) / 8
	case *FloatType:
		return int(t.Bits+7) / 8
	case *PtrType:
		return wordBytes
	case *AggregateType:
		size := 0
		for _, elem := range t.Elems {
			size += SizeOf(elem, wordBytes)
		}
		return size
	}
	panic(fmt.Sprintf("ir: type %v has no size", t))
}
