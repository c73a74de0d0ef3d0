package ir

import (
	"fmt"
	"strings"
)

// Type is the static type of a value. Implementations are the fixed set
// defined in this package; the sealed marker keeps the switch in TypeEqual
// exhaustive.
type Type interface {
	fmt.Stringer
	isType()
}

// IndexType is the machine-width integer used for loop induction variables,
// memref subscripts and affine operands.
type IndexType struct{}

// IntType is a fixed-width signless integer, e.g. i32.
type IntType struct {
	Width int
}

// FloatType is an IEEE float of the given width, f32 or f64.
type FloatType struct {
	Width int
}

// DynamicSize marks a memref dimension whose extent is only known at
// runtime; it prints as '?'.
const DynamicSize int64 = -1

// MemRefType is a reference to a shaped block of memory. Shape entries are
// extents, with DynamicSize for runtime-sized dimensions. MemorySpace
// distinguishes address spaces, 0 being the default.
type MemRefType struct {
	Shape       []int64
	Element     Type
	MemorySpace int
}

func (IndexType) isType()  {}
func (IntType) isType()    {}
func (FloatType) isType()  {}
func (MemRefType) isType() {}

func (IndexType) String() string   { return "index" }
func (t IntType) String() string   { return fmt.Sprintf("i%d", t.Width) }
func (t FloatType) String() string { return fmt.Sprintf("f%d", t.Width) }

func (t MemRefType) String() string {
	var b strings.Builder
	b.WriteString("memref<")
	for _, d := range t.Shape {
		if d == DynamicSize {
			b.WriteByte('?')
		} else {
			fmt.Fprintf(&b, "%d", d)
		}
		b.WriteByte('x')
	}
	b.WriteString(t.Element.String())
	if t.MemorySpace != 0 {
		fmt.Fprintf(&b, ", %d", t.MemorySpace)
	}
	b.WriteByte('>')
	return b.String()
}

// Rank returns the number of dimensions.
func (t MemRefType) Rank() int { return len(t.Shape) }

// NumDynamicDims counts the runtime-sized dimensions.
func (t MemRefType) NumDynamicDims() int {
	n := 0
	for _, d := range t.Shape {
		if d == DynamicSize {
			n++
		}
	}
	return n
}

// TypeEqual reports structural equality. MemRefType carries a slice, so the
// comparison cannot rely on ==.
func TypeEqual(a, b Type) bool {
	switch x := a.(type) {
	case IndexType:
		_, ok := b.(IndexType)
		return ok
	case IntType:
		y, ok := b.(IntType)
		return ok && x.Width == y.Width
	case FloatType:
		y, ok := b.(FloatType)
		return ok && x.Width == y.Width
	case MemRefType:
		y, ok := b.(MemRefType)
		if !ok || x.MemorySpace != y.MemorySpace || len(x.Shape) != len(y.Shape) {
			return false
		}
		for i := range x.Shape {
			if x.Shape[i] != y.Shape[i] {
				return false
			}
		}
		return TypeEqual(x.Element, y.Element)
	case nil:
		return b == nil
	default:
		panic(fmt.Sprintf("ir: unknown type %T", a))
	}
}

// TypesEqual reports element-wise equality of two type lists.
func TypesEqual(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !TypeEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// IsIndex reports whether t is the index type.
func IsIndex(t Type) bool {
	_, ok := t.(IndexType)
	return ok
}
