package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeStrings(t *testing.T) {
	tests := []struct {
		typ      Type
		expected string
	}{
		{IndexType{}, "index"},
		{IntType{Width: 32}, "i32"},
		{FloatType{Width: 64}, "f64"},
		{MemRefType{Shape: []int64{4, DynamicSize}, Element: FloatType{Width: 32}}, "memref<4x?xf32>"},
		{MemRefType{Shape: []int64{128}, Element: FloatType{Width: 32}, MemorySpace: 2}, "memref<128xf32, 2>"},
		{MemRefType{Shape: nil, Element: IntType{Width: 8}}, "memref<i8>"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.typ.String())
	}
}

func TestTypeEqual(t *testing.T) {
	a := MemRefType{Shape: []int64{4, DynamicSize}, Element: FloatType{Width: 32}}
	b := MemRefType{Shape: []int64{4, DynamicSize}, Element: FloatType{Width: 32}}
	assert.True(t, TypeEqual(a, b))

	assert.False(t, TypeEqual(a, MemRefType{Shape: []int64{4, 8}, Element: FloatType{Width: 32}}))
	assert.False(t, TypeEqual(a, MemRefType{Shape: []int64{4, DynamicSize}, Element: FloatType{Width: 32}, MemorySpace: 1}))
	assert.False(t, TypeEqual(IntType{Width: 32}, IntType{Width: 64}))
	assert.True(t, TypeEqual(IndexType{}, IndexType{}))
	assert.False(t, TypeEqual(IndexType{}, IntType{Width: 64}))
}

func TestMemRefDynamicDims(t *testing.T) {
	m := MemRefType{Shape: []int64{DynamicSize, 4, DynamicSize}, Element: FloatType{Width: 32}}
	assert.Equal(t, 3, m.Rank())
	assert.Equal(t, 2, m.NumDynamicDims())
}

func TestAttrEqual(t *testing.T) {
	assert.True(t, AttrEqual(IntegerAttr{Value: 3}, IntegerAttr{Value: 3}))
	assert.False(t, AttrEqual(IntegerAttr{Value: 3}, IntegerAttr{Value: 4}))
	assert.True(t, AttrEqual(
		TypeAttr{Type: MemRefType{Shape: []int64{2}, Element: IndexType{}}},
		TypeAttr{Type: MemRefType{Shape: []int64{2}, Element: IndexType{}}},
	))
	assert.True(t, AttrEqual(
		ArrayAttr{Elements: []Attribute{IntegerAttr{Value: 1}, BoolAttr{Value: true}}},
		ArrayAttr{Elements: []Attribute{IntegerAttr{Value: 1}, BoolAttr{Value: true}}},
	))
	assert.False(t, AttrEqual(IntegerAttr{Value: 1}, BoolAttr{Value: true}))
}
