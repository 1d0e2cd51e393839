package main

import (
	"fmt"
	"strings"
)

// BasicKind is a scalar element type.
type BasicKind string

const (
	BasicInt   BasicKind = "int"
	BasicFloat BasicKind = "float"
)

// ElemWidth is the size in bytes of every basic type.
const ElemWidth = 4

// Type is either a basic type (no extents) or an array of a basic type.
//
// Extents holds the declared sizes, outermost first. Strides holds the byte
// distance between consecutive elements of each index level, so Strides[len-1]
// is ElemWidth and Strides[i] = Extents[i+1] * Strides[i+1].
type Type struct {
	Basic   BasicKind
	Extents []uint32
	Strides []uint32
}

func NewBasicType(basic BasicKind) Type {
	return Type{Basic: basic}
}

func NewArrayType(basic BasicKind, extents []uint32) Type {
	strides := make([]uint32, len(extents))
	stride := uint32(ElemWidth)
	for i := len(extents) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= extents[i]
	}
	return Type{Basic: basic, Extents: extents, Strides: strides}
}

func (t Type) IsArray() bool {
	return len(t.Extents) > 0
}

// Width is the storage size in bytes.
func (t Type) Width() uint32 {
	if !t.IsArray() {
		return ElemWidth
	}
	return t.Extents[0] * t.Strides[0]
}

func (t Type) String() string {
	var b strings.Builder
	b.WriteString(string(t.Basic))
	for _, n := range t.Extents {
		fmt.Fprintf(&b, "[%d]", n)
	}
	return b.String()
}

func TypesEqual(a, b Type) bool {
	if a.Basic != b.Basic || len(a.Extents) != len(b.Extents) {
		return false
	}
	for i := range a.Extents {
		if a.Extents[i] != b.Extents[i] {
			return false
		}
	}
	return true
}
