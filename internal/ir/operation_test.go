package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValue(t Type) (*Operation, Value) {
	op := Create(OperationState{Name: "test.source", Types: []Type{t}})
	return op, op.Result(0)
}

func TestCreateWiresUseDefChains(t *testing.T) {
	_, a := newTestValue(IndexType{})
	_, b := newTestValue(IndexType{})

	user := Create(OperationState{
		Name:     "test.use",
		Operands: []Value{a, b, a},
	})

	assert.Equal(t, 3, user.NumOperands())
	assert.Equal(t, 2, a.NumUses())
	assert.Equal(t, 1, b.NumUses())
	assert.True(t, b.HasOneUse())
	for _, use := range a.Uses() {
		assert.Same(t, user, use.Owner())
	}
}

func TestReplaceAllUsesWith(t *testing.T) {
	_, a := newTestValue(IndexType{})
	_, b := newTestValue(IndexType{})

	u1 := Create(OperationState{Name: "test.use", Operands: []Value{a}})
	u2 := Create(OperationState{Name: "test.use", Operands: []Value{a, a}})

	a.ReplaceAllUsesWith(b)

	assert.True(t, a.UseEmpty())
	assert.Equal(t, 3, b.NumUses())
	assert.Equal(t, b, u1.Operand(0))
	assert.Equal(t, b, u2.Operand(0))
	assert.Equal(t, b, u2.Operand(1))
}

func TestReplaceUsesOfWith(t *testing.T) {
	_, a := newTestValue(IndexType{})
	_, b := newTestValue(IndexType{})
	_, c := newTestValue(IndexType{})

	user := Create(OperationState{Name: "test.use", Operands: []Value{a, b, a}})
	user.ReplaceUsesOfWith(a, c)

	assert.Equal(t, []Value{c, b, c}, user.Operands())
	assert.True(t, a.UseEmpty())
	assert.Equal(t, 2, c.NumUses())
}

func TestSetOperandsRebuildsUseList(t *testing.T) {
	_, a := newTestValue(IndexType{})
	_, b := newTestValue(IndexType{})

	user := Create(OperationState{Name: "test.use", Operands: []Value{a, a}})
	user.SetOperands([]Value{b})

	assert.True(t, a.UseEmpty())
	assert.Equal(t, []Value{b}, user.Operands())
	assert.True(t, b.HasOneUse())
}

func TestEraseSeversOperandUses(t *testing.T) {
	_, a := newTestValue(IndexType{})
	block := NewBlock()
	user := Create(OperationState{Name: "test.use", Operands: []Value{a}})
	block.PushBack(user)

	user.Erase()

	assert.True(t, a.UseEmpty())
	assert.True(t, block.Empty())
}

func TestDestroyPanicsOnLiveUses(t *testing.T) {
	def, a := newTestValue(IndexType{})
	Create(OperationState{Name: "test.use", Operands: []Value{a}})

	assert.Panics(t, func() { def.Destroy() })
}

func TestAttrDictStaysSorted(t *testing.T) {
	op := Create(OperationState{
		Name: "test.attrs",
		Attrs: []NamedAttr{
			{Name: "zeta", Value: IntegerAttr{Value: 1}},
			{Name: "alpha", Value: BoolAttr{Value: true}},
		},
	})
	assert.Equal(t, "alpha", op.Attrs()[0].Name)

	op.SetAttr("mid", StringAttr{Value: "x"})
	require.Len(t, op.Attrs(), 3)
	assert.Equal(t, []string{"alpha", "mid", "zeta"},
		[]string{op.Attrs()[0].Name, op.Attrs()[1].Name, op.Attrs()[2].Name})

	op.SetAttr("mid", StringAttr{Value: "y"})
	assert.Equal(t, StringAttr{Value: "y"}, op.Attr("mid"))

	assert.True(t, op.RemoveAttr("alpha"))
	assert.False(t, op.RemoveAttr("alpha"))
	assert.Nil(t, op.Attr("alpha"))
}

func TestSuccessorOperandGrouping(t *testing.T) {
	_, cond := newTestValue(IntType{Width: 1})
	_, x := newTestValue(IndexType{})
	_, y := newTestValue(IndexType{})

	bb1 := NewBlock()
	bb1.AddArgument(IndexType{})
	bb2 := NewBlock()
	bb2.AddArgument(IndexType{})
	bb2.AddArgument(IndexType{})

	br := Create(OperationState{
		Name:     "test.cond_br",
		Operands: []Value{cond},
		Successors: []Successor{
			{Dest: bb1, Operands: []Value{x}},
			{Dest: bb2, Operands: []Value{x, y}},
		},
	})

	assert.Equal(t, 4, br.NumOperands())
	assert.Equal(t, 1, br.NumNonSuccessorOperands())
	assert.Equal(t, []Value{cond}, br.NonSuccessorOperands())
	assert.Equal(t, 2, br.NumSuccessors())
	assert.Same(t, bb1, br.SuccessorBlock(0))
	assert.Equal(t, []Value{x}, br.SuccessorOperands(0))
	assert.Equal(t, []Value{x, y}, br.SuccessorOperands(1))
	assert.Equal(t, 3, x.NumUses())
}

func TestIsBeforeInBlockAfterMutation(t *testing.T) {
	block := NewBlock()
	a := Create(OperationState{Name: "test.a"})
	b := Create(OperationState{Name: "test.b"})
	c := Create(OperationState{Name: "test.c"})
	block.PushBack(a)
	block.PushBack(b)
	block.PushBack(c)

	assert.True(t, a.IsBeforeInBlock(b))
	assert.True(t, b.IsBeforeInBlock(c))
	assert.False(t, c.IsBeforeInBlock(a))

	c.MoveBefore(a)
	assert.True(t, c.IsBeforeInBlock(a))
	assert.True(t, c.IsBeforeInBlock(b))
	assert.False(t, b.IsBeforeInBlock(a))
}

func TestWalkIsPostOrder(t *testing.T) {
	region := NewRegion()
	block := NewBlock()
	region.PushBack(block)
	inner := Create(OperationState{Name: "test.inner"})
	block.PushBack(inner)

	outer := Create(OperationState{Name: "test.outer", Regions: []*Region{region}})

	var order []OperationName
	outer.Walk(func(op *Operation) { order = append(order, op.Name()) })
	assert.Equal(t, []OperationName{"test.inner", "test.outer"}, order)
}

func TestWalkAllowsErasingVisited(t *testing.T) {
	region := NewRegion()
	block := NewBlock()
	region.PushBack(block)
	for i := 0; i < 3; i++ {
		block.PushBack(Create(OperationState{Name: "test.nop"}))
	}
	outer := Create(OperationState{Name: "test.outer", Regions: []*Region{region}})

	outer.Walk(func(op *Operation) {
		if op.Name() == "test.nop" {
			op.Erase()
		}
	})
	assert.True(t, block.Empty())
}
