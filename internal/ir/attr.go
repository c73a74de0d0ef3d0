package ir

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/loomlang/loom/internal/affine"
)

// Attribute is a compile-time constant value attached to an operation under
// a name. Attributes are immutable; mutating an operation's dictionary
// always builds a fresh list.
type Attribute interface {
	fmt.Stringer
	isAttribute()
}

// IntegerAttr holds a 64-bit integer constant.
type IntegerAttr struct {
	Value int64
}

// BoolAttr holds a boolean constant.
type BoolAttr struct {
	Value bool
}

// StringAttr holds an uninterpreted string.
type StringAttr struct {
	Value string
}

// TypeAttr wraps a type as an attribute.
type TypeAttr struct {
	Type Type
}

// AffineMapAttr wraps an affine map.
type AffineMapAttr struct {
	Map affine.Map
}

// IntegerSetAttr wraps an integer set.
type IntegerSetAttr struct {
	Set affine.Set
}

// ArrayAttr is an ordered list of attributes.
type ArrayAttr struct {
	Elements []Attribute
}

func (IntegerAttr) isAttribute()    {}
func (BoolAttr) isAttribute()       {}
func (StringAttr) isAttribute()     {}
func (TypeAttr) isAttribute()       {}
func (AffineMapAttr) isAttribute()  {}
func (IntegerSetAttr) isAttribute() {}
func (ArrayAttr) isAttribute()      {}

func (a IntegerAttr) String() string { return strconv.FormatInt(a.Value, 10) }
func (a BoolAttr) String() string    { return strconv.FormatBool(a.Value) }
func (a StringAttr) String() string  { return strconv.Quote(a.Value) }
func (a TypeAttr) String() string    { return a.Type.String() }

func (a AffineMapAttr) String() string  { return a.Map.String() }
func (a IntegerSetAttr) String() string { return a.Set.String() }

func (a ArrayAttr) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, e := range a.Elements {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.String())
	}
	b.WriteByte(']')
	return b.String()
}

// AttrEqual reports structural equality of two attributes.
func AttrEqual(a, b Attribute) bool {
	switch x := a.(type) {
	case IntegerAttr, BoolAttr, StringAttr:
		return a == b
	case AffineMapAttr:
		y, ok := b.(AffineMapAttr)
		return ok && x.Map.Equal(y.Map)
	case IntegerSetAttr:
		y, ok := b.(IntegerSetAttr)
		return ok && x.Set.Equal(y.Set)
	case TypeAttr:
		y, ok := b.(TypeAttr)
		return ok && TypeEqual(x.Type, y.Type)
	case ArrayAttr:
		y, ok := b.(ArrayAttr)
		if !ok || len(x.Elements) != len(y.Elements) {
			return false
		}
		for i := range x.Elements {
			if !AttrEqual(x.Elements[i], y.Elements[i]) {
				return false
			}
		}
		return true
	case nil:
		return b == nil
	default:
		panic(fmt.Sprintf("ir: unknown attribute %T", a))
	}
}

// NamedAttr is a dictionary entry. Operation dictionaries keep entries
// sorted by name, so printing is deterministic.
type NamedAttr struct {
	Name  string
	Value Attribute
}

func sortNamedAttrs(attrs []NamedAttr) {
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Name < attrs[j].Name })
}

// findAttr returns the index of name in a sorted dictionary, or -1.
func findAttr(attrs []NamedAttr, name string) int {
	i := sort.Search(len(attrs), func(i int) bool { return attrs[i].Name >= name })
	if i < len(attrs) && attrs[i].Name == name {
		return i
	}
	return -1
}
