package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	RegisterOperation(OpInfo{Name: "vtest.container", Traits: TraitTopLevel})
	RegisterOperation(OpInfo{Name: "vtest.ret", Traits: TraitTerminator})
	RegisterOperation(OpInfo{
		Name: "vtest.checked",
		Verify: func(op *Operation) error {
			if op.Attr("ok") == nil {
				return op.Errorf("missing 'ok' attribute")
			}
			return nil
		},
	})
}

func containerWith(ops ...*Operation) *Operation {
	region := NewRegion()
	block := NewBlock()
	region.PushBack(block)
	for _, op := range ops {
		block.PushBack(op)
	}
	return Create(OperationState{Name: "vtest.container", Regions: []*Region{region}})
}

func TestVerifyAcceptsWellFormed(t *testing.T) {
	root := containerWith(
		Create(OperationState{Name: "vtest.checked", Attrs: []NamedAttr{{Name: "ok", Value: BoolAttr{Value: true}}}}),
	)
	assert.NoError(t, Verify(root))
}

func TestVerifyRunsRegisteredHook(t *testing.T) {
	root := containerWith(Create(OperationState{Name: "vtest.checked"}))
	err := Verify(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing 'ok' attribute")
	assert.Contains(t, err.Error(), "'vtest.checked' op")
}

func TestVerifyTerminatorMustBeLast(t *testing.T) {
	root := containerWith(
		Create(OperationState{Name: "vtest.ret"}),
		Create(OperationState{Name: "vtest.checked", Attrs: []NamedAttr{{Name: "ok", Value: BoolAttr{Value: true}}}}),
	)
	err := Verify(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "terminator")
}

func TestVerifyNestedBlockNeedsTerminator(t *testing.T) {
	inner := NewRegion()
	body := NewBlock()
	inner.PushBack(body)
	body.PushBack(Create(OperationState{Name: "vtest.checked", Attrs: []NamedAttr{{Name: "ok", Value: BoolAttr{Value: true}}}}))
	nested := Create(OperationState{Name: "vtest.nested", Regions: []*Region{inner}})

	err := Verify(containerWith(nested))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must end with a terminator")
}

func TestVerifySuccessorsOnlyOnTerminators(t *testing.T) {
	dest := NewBlock()
	region := NewRegion()
	entry := NewBlock()
	region.PushBack(entry)
	region.PushBack(dest)
	entry.PushBack(Create(OperationState{
		Name:       "vtest.checked",
		Attrs:      []NamedAttr{{Name: "ok", Value: BoolAttr{Value: true}}},
		Successors: []Successor{{Dest: dest}},
	}))
	nested := Create(OperationState{Name: "vtest.nested", Regions: []*Region{region}})

	err := Verify(containerWith(nested))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only terminators may have successors")
}

func TestVerifySuccessorOperandTypes(t *testing.T) {
	region := NewRegion()
	entry := NewBlock()
	dest := NewBlock()
	region.PushBack(entry)
	region.PushBack(dest)
	dest.AddArgument(IndexType{})
	dest.PushBack(Create(OperationState{Name: "vtest.ret"}))

	src := Create(OperationState{Name: "vtest.src", Types: []Type{IntType{Width: 32}}})
	entry.PushBack(src)
	entry.PushBack(Create(OperationState{
		Name:       "vtest.ret",
		Successors: []Successor{{Dest: dest, Operands: []Value{src.Result(0)}}},
	}))
	nested := Create(OperationState{Name: "vtest.nested", Regions: []*Region{region}})

	err := Verify(containerWith(nested))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has type i32")
}

func TestVerifyAggregatesAcrossOperations(t *testing.T) {
	root := containerWith(
		Create(OperationState{Name: "vtest.checked"}),
		Create(OperationState{Name: "vtest.checked"}),
	)
	err := Verify(root)
	require.Error(t, err)
	merr := err.Error()
	assert.Contains(t, merr, "2 errors occurred")
}

func TestConstantIntValue(t *testing.T) {
	RegisterOperation(OpInfo{Name: "vtest.const", Traits: TraitConstant})
	op := Create(OperationState{
		Name:  "vtest.const",
		Types: []Type{IndexType{}},
		Attrs: []NamedAttr{{Name: "value", Value: IntegerAttr{Value: 7}}},
	})
	v, ok := ConstantIntValue(op.Result(0))
	require.True(t, ok)
	assert.Equal(t, int64(7), v)

	_, other := newTestValue(IndexType{})
	_, ok = ConstantIntValue(other)
	assert.False(t, ok)
}
