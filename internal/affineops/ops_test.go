package affineops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomlang/loom/internal/affine"
	"github.com/loomlang/loom/internal/coreops"
	"github.com/loomlang/loom/internal/ir"
)

func (f *testFunc) pushLoopOp(op *ir.Operation) *ir.Operation {
	ForBody(f.loop).InsertBefore(op, ForBody(f.loop).Terminator())
	return op
}

func (f *testFunc) newMemRef(shape ...int64) ir.Value {
	mt := ir.MemRefType{Shape: shape, Element: ir.FloatType{Width: 32}}
	var dyn []ir.Value
	for _, d := range shape {
		if d == ir.DynamicSize {
			dyn = append(dyn, f.n)
		}
	}
	alloc := coreops.NewAlloc(ir.UnknownLoc(), mt, dyn)
	f.body.PushFront(alloc)
	return alloc.Result(0)
}

func TestIfConstructionAndVerify(t *testing.T) {
	f := newTestFunc(t)
	set := affine.MustParseSet("(d0)[s0] : (d0 - s0 >= 0)")
	cond := f.pushLoopOp(NewIf(ir.UnknownLoc(), set, []ir.Value{f.iv, f.n}, true))

	assert.True(t, HasElse(cond))
	assert.NotNil(t, IfThenBlock(cond))
	assert.NotNil(t, IfElseBlock(cond))
	require.NoError(t, ir.Verify(f.module))
}

func TestIfVerifyRejectsOperandMismatch(t *testing.T) {
	f := newTestFunc(t)
	set := affine.MustParseSet("(d0)[s0] : (d0 - s0 >= 0)")
	cond := f.pushLoopOp(NewIf(ir.UnknownLoc(), set, []ir.Value{f.iv, f.n}, false))
	cond.SetOperands([]ir.Value{f.iv})

	err := ir.Verify(f.module)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "operands for the condition")
}

func TestIfVerifyRejectsSymbolMisuse(t *testing.T) {
	f := newTestFunc(t)
	set := affine.MustParseSet("()[s0] : (s0 >= 0)")
	f.pushLoopOp(NewIf(ir.UnknownLoc(), set, []ir.Value{f.iv}, false))

	err := ir.Verify(f.module)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid symbol")
}

func TestLoadStoreVerify(t *testing.T) {
	f := newTestFunc(t)
	mem := f.newMemRef(64, 64)
	m := affine.MustParseMap("(d0)[s0] -> (d0 + 1, s0)")

	load := f.pushLoopOp(NewLoad(ir.UnknownLoc(), mem, m, []ir.Value{f.iv, f.n}))
	store := f.pushLoopOp(NewStore(ir.UnknownLoc(), load.Result(0), mem, m, []ir.Value{f.iv, f.n}))
	require.NoError(t, ir.Verify(f.module))

	assert.Equal(t, ir.FloatType{Width: 32}, load.Result(0).Type())
	assert.Equal(t, m, AccessMap(store))
}

func TestLoadVerifyRejectsRankMismatch(t *testing.T) {
	f := newTestFunc(t)
	mem := f.newMemRef(64, 64)
	bad := f.pushLoopOp(NewLoad(ir.UnknownLoc(), mem,
		affine.MustParseMap("(d0) -> (d0)"), []ir.Value{f.iv}))

	err := verifyLoad(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rank")
}

func TestStoreVerifyRejectsElementMismatch(t *testing.T) {
	f := newTestFunc(t)
	mem := f.newMemRef(64)
	idx := coreops.NewIndexConstant(ir.UnknownLoc(), 0)
	f.body.PushBack(idx)

	bad := NewStore(ir.UnknownLoc(), idx.Result(0), mem,
		affine.MustParseMap("(d0) -> (d0)"), []ir.Value{f.iv})
	f.pushLoopOp(bad)

	err := verifyStore(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "element type")
}

func TestCanonicalizeComposesAccessMaps(t *testing.T) {
	f := newTestFunc(t)
	mem := f.newMemRef(64)
	shifted := f.pushApply("(d0) -> (d0 + 1)", f.iv)
	load := f.pushLoopOp(NewLoad(ir.UnknownLoc(), mem,
		affine.MustParseMap("(d0) -> (d0 * 2)"), []ir.Value{shifted.Result(0)}))

	changed := Canonicalize(f.module)
	assert.Greater(t, changed, 0)

	assert.Equal(t, "(d0) -> (d0 * 2 + 2)", AccessMap(load).String())
	assert.Equal(t, []ir.Value{mem, f.iv}, load.Operands())
	assert.Nil(t, shifted.Block(), "composed producer is erased")
	require.NoError(t, ir.Verify(f.module))
}

func newDmaFixture(t *testing.T) (*testFunc, ir.Value, ir.Value, ir.Value, ir.Value) {
	f := newTestFunc(t)
	src := f.newMemRef(256)
	fast := ir.MemRefType{Shape: []int64{32}, Element: ir.FloatType{Width: 32}, MemorySpace: 1}
	dstAlloc := coreops.NewAlloc(ir.UnknownLoc(), fast, nil)
	f.body.PushFront(dstAlloc)
	tagType := ir.MemRefType{Shape: []int64{1}, Element: ir.IntType{Width: 32}, MemorySpace: 2}
	tagAlloc := coreops.NewAlloc(ir.UnknownLoc(), tagType, nil)
	f.body.PushFront(tagAlloc)
	num := coreops.NewIndexConstant(ir.UnknownLoc(), 32)
	f.body.PushFront(num)
	return f, src, dstAlloc.Result(0), tagAlloc.Result(0), num.Result(0)
}

func TestDmaStartVerify(t *testing.T) {
	f, src, dst, tag, num := newDmaFixture(t)
	id := affine.MustParseMap("(d0) -> (d0)")
	zero := affine.MustParseMap("() -> (0)")

	dma := f.pushLoopOp(NewDmaStart(ir.UnknownLoc(),
		src, id, []ir.Value{f.iv},
		dst, id, []ir.Value{f.iv},
		tag, zero, nil,
		num))
	require.NoError(t, ir.Verify(f.module))
	assert.False(t, IsStrided(dma))

	wait := f.pushLoopOp(NewDmaWait(ir.UnknownLoc(), tag, zero, nil, num))
	require.NoError(t, ir.Verify(f.module))
	assert.Equal(t, 2, wait.NumOperands())
}

func TestDmaStartVerifyRejectsSameMemorySpace(t *testing.T) {
	f, src, _, tag, num := newDmaFixture(t)
	id := affine.MustParseMap("(d0) -> (d0)")
	zero := affine.MustParseMap("() -> (0)")

	bad := NewDmaStart(ir.UnknownLoc(),
		src, id, []ir.Value{f.iv},
		src, id, []ir.Value{f.iv},
		tag, zero, nil,
		num)
	err := verifyDmaStart(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "different memory spaces")
}

func TestDmaStartStrided(t *testing.T) {
	f, src, dst, tag, num := newDmaFixture(t)
	id := affine.MustParseMap("(d0) -> (d0)")
	zero := affine.MustParseMap("() -> (0)")
	stride := coreops.NewIndexConstant(ir.UnknownLoc(), 4)
	f.body.PushFront(stride)

	dma := f.pushLoopOp(NewDmaStart(ir.UnknownLoc(),
		src, id, []ir.Value{f.iv},
		dst, id, []ir.Value{f.iv},
		tag, zero, nil,
		num, stride.Result(0), num))
	require.NoError(t, ir.Verify(f.module))
	assert.True(t, IsStrided(dma))
}

func TestTerminatorPlacement(t *testing.T) {
	f := newTestFunc(t)
	// A terminator directly under the module is misplaced.
	f.body.PushBack(NewTerminator(ir.UnknownLoc()))
	err := ir.Verify(f.module)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "affine.for or affine.if")
}
