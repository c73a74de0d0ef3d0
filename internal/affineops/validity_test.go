package affineops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomlang/loom/internal/affine"
	"github.com/loomlang/loom/internal/coreops"
	"github.com/loomlang/loom/internal/ir"
)

func TestInductionVarIsDimNotSymbol(t *testing.T) {
	f := newTestFunc(t)
	assert.True(t, IsValidDim(f.iv))
	assert.False(t, IsValidSymbol(f.iv))
	assert.Same(t, f.loop, ForInductionVarOwner(f.iv))
	assert.Nil(t, ForInductionVarOwner(f.n))
}

func TestTopLevelDefinitionsAreSymbols(t *testing.T) {
	f := newTestFunc(t)
	assert.True(t, IsTopLevelValue(f.n))
	assert.True(t, IsValidSymbol(f.n))
	assert.True(t, IsValidDim(f.n))
}

func TestConstantInsideLoopIsSymbol(t *testing.T) {
	f := newTestFunc(t)
	c := coreops.NewIndexConstant(ir.UnknownLoc(), 5)
	ForBody(f.loop).InsertBefore(c, ForBody(f.loop).Terminator())

	assert.False(t, IsTopLevelValue(c.Result(0)))
	assert.True(t, IsValidSymbol(c.Result(0)), "constants are symbols wherever defined")
}

func TestApplyValidityIsRecursive(t *testing.T) {
	f := newTestFunc(t)
	overSyms := f.pushApply("()[s0] -> (s0 * 2)", f.n)
	assert.True(t, IsValidSymbol(overSyms.Result(0)))
	assert.True(t, IsValidDim(overSyms.Result(0)))

	overIV := f.pushApply("(d0) -> (d0 + 1)", f.iv)
	assert.True(t, IsValidDim(overIV.Result(0)))
	assert.False(t, IsValidSymbol(overIV.Result(0)), "apply over a loop IV is not a symbol")
}

func TestDimOpValidity(t *testing.T) {
	f := newTestFunc(t)
	mt := ir.MemRefType{Shape: []int64{ir.DynamicSize}, Element: ir.FloatType{Width: 32}}
	topAlloc := coreops.NewAlloc(ir.UnknownLoc(), mt, []ir.Value{f.n})
	f.body.PushFront(topAlloc)

	topDim := coreops.NewDim(ir.UnknownLoc(), topAlloc.Result(0), 0)
	ForBody(f.loop).InsertBefore(topDim, ForBody(f.loop).Terminator())
	assert.True(t, IsValidSymbol(topDim.Result(0)), "dim of a top-level memref is a symbol")

	// A memref allocated inside the loop is not top level, so its dim is
	// neither a symbol nor a dim operand.
	innerAlloc := coreops.NewAlloc(ir.UnknownLoc(), mt, []ir.Value{f.n})
	ForBody(f.loop).InsertBefore(innerAlloc, ForBody(f.loop).Terminator())
	innerDim := coreops.NewDim(ir.UnknownLoc(), innerAlloc.Result(0), 0)
	ForBody(f.loop).InsertBefore(innerDim, ForBody(f.loop).Terminator())
	assert.False(t, IsValidSymbol(innerDim.Result(0)))
	assert.False(t, IsValidDim(innerDim.Result(0)))
}

func TestNonIndexValuesNeverQualify(t *testing.T) {
	f := newTestFunc(t)
	c := coreops.NewConstant(ir.UnknownLoc(), 1, ir.IntType{Width: 32})
	f.body.PushBack(c)
	assert.False(t, IsValidDim(c.Result(0)))
	assert.False(t, IsValidSymbol(c.Result(0)))
}

func TestApplyVerifyRejectsBadOperands(t *testing.T) {
	f := newTestFunc(t)
	// IV in a symbol position.
	bad := NewApply(ir.UnknownLoc(), affine.MustParseMap("()[s0] -> (s0)"), []ir.Value{f.iv})
	ForBody(f.loop).InsertBefore(bad, ForBody(f.loop).Terminator())
	err := ir.Verify(f.module)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid symbol")
}

func TestApplyVerifyRejectsMultiResultMap(t *testing.T) {
	f := newTestFunc(t)
	op := NewApply(ir.UnknownLoc(), affine.MustParseMap("(d0) -> (d0, d0)"), []ir.Value{f.iv})
	err := verifyApply(op)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mapping must produce one value")
}
