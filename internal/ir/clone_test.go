package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildNestedOp makes an operation with one region whose entry block defines
// an argument used by an inner operation; the inner operation also captures
// an outer value.
func buildNestedOp(outer Value) *Operation {
	region := NewRegion()
	entry := NewBlock()
	region.PushBack(entry)
	arg := entry.AddArgument(IndexType{})
	entry.PushBack(Create(OperationState{
		Name:     "test.inner",
		Operands: []Value{arg, outer},
		Types:    []Type{IndexType{}},
	}))
	return Create(OperationState{
		Name:     "test.loop",
		Operands: []Value{outer},
		Regions:  []*Region{region},
	})
}

func TestCloneRemapsInternalReferences(t *testing.T) {
	_, outer := newTestValue(IndexType{})
	original := buildNestedOp(outer)

	mapper := NewValueMap()
	clone := original.Clone(mapper)

	require.Equal(t, 1, clone.NumRegions())
	origEntry := original.Region(0).Front()
	cloneEntry := clone.Region(0).Front()
	require.NotNil(t, cloneEntry)
	assert.NotSame(t, origEntry, cloneEntry)

	// The cloned inner op uses the cloned block argument, not the original.
	origInner := origEntry.Front()
	cloneInner := cloneEntry.Front()
	assert.NotSame(t, origInner, cloneInner)
	assert.Same(t, cloneEntry.Argument(0), cloneInner.Operand(0))

	// References to values defined outside the clone are preserved.
	assert.Same(t, outer, cloneInner.Operand(1))
	assert.Same(t, outer, clone.Operand(0))

	// The mapper records result correspondence.
	assert.Same(t, cloneInner.Result(0), mapper.LookupValue(origInner.Result(0)))
}

func TestCloneLeavesOriginalUntouched(t *testing.T) {
	_, outer := newTestValue(IndexType{})
	original := buildNestedOp(outer)
	usesBefore := outer.NumUses()

	clone := original.CloneOp()

	// Cloning adds uses of the captured outer value but never rewires the
	// original's edges.
	assert.Equal(t, usesBefore+2, outer.NumUses())
	assert.Same(t, original.Region(0).Front().Argument(0),
		original.Region(0).Front().Front().Operand(0))

	clone.Destroy()
	assert.Equal(t, usesBefore, outer.NumUses())
}

func TestCloneWithoutRegions(t *testing.T) {
	_, outer := newTestValue(IndexType{})
	original := buildNestedOp(outer)

	clone := original.CloneWithoutRegions(NewValueMap())
	require.Equal(t, 1, clone.NumRegions())
	assert.True(t, clone.Region(0).Empty())
	assert.Equal(t, original.Operands(), clone.Operands())
}

func TestCloneRemapsForwardBranches(t *testing.T) {
	region := NewRegion()
	bb0 := NewBlock()
	bb1 := NewBlock()
	region.PushBack(bb0)
	region.PushBack(bb1)
	bb1.AddArgument(IndexType{})

	_, x := newTestValue(IndexType{})
	bb0.PushBack(Create(OperationState{
		Name:       "test.br",
		Successors: []Successor{{Dest: bb1, Operands: []Value{x}}},
	}))
	op := Create(OperationState{Name: "test.graph", Regions: []*Region{region}})

	clone := op.CloneOp()
	cloned := clone.Region(0)
	require.Equal(t, 2, cloned.NumBlocks())
	br := cloned.Block(0).Front()
	assert.Same(t, cloned.Block(1), br.SuccessorBlock(0))
	assert.Equal(t, []Value{x}, br.SuccessorOperands(0))
}
