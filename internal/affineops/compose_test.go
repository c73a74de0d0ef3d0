package affineops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomlang/loom/internal/affine"
	"github.com/loomlang/loom/internal/coreops"
	"github.com/loomlang/loom/internal/ir"
)

// testFunc is a module body with a loop nest: %N and %M are top-level
// symbols, %i is the loop induction variable.
type testFunc struct {
	module *ir.Operation
	body   *ir.Block
	loop   *ir.Operation
	iv     *ir.BlockArgument
	n, m   ir.Value
}

func newTestFunc(t *testing.T) *testFunc {
	t.Helper()
	module := coreops.NewModule(ir.UnknownLoc())
	body := coreops.ModuleBody(module)

	nDef := coreops.NewIndexConstant(ir.UnknownLoc(), 64)
	mDef := coreops.NewIndexConstant(ir.UnknownLoc(), 32)
	body.PushBack(nDef)
	body.PushBack(mDef)

	loop := NewConstantFor(ir.UnknownLoc(), 0, 10, 1)
	body.PushBack(loop)

	return &testFunc{
		module: module,
		body:   body,
		loop:   loop,
		iv:     ForInductionVar(loop),
		n:      nDef.Result(0),
		m:      mDef.Result(0),
	}
}

// pushApply builds an apply inside the loop body, before the terminator.
func (f *testFunc) pushApply(text string, operands ...ir.Value) *ir.Operation {
	op := NewApply(ir.UnknownLoc(), affine.MustParseMap(text), operands)
	ForBody(f.loop).InsertBefore(op, ForBody(f.loop).Terminator())
	return op
}

func TestComposeInlinesProducerChain(t *testing.T) {
	f := newTestFunc(t)
	b := f.pushApply("(d0) -> (d0 + 1)", f.iv)
	c := f.pushApply("(d0) -> (d0 * 2)", b.Result(0))

	m, operands := FullyComposeMapAndOperands(ApplyMap(c), c.Operands())

	assert.Equal(t, "(d0) -> (d0 * 2 + 2)", m.String())
	assert.Equal(t, []ir.Value{f.iv}, operands)
}

func TestComposeDeepChainNeedsMultiplePasses(t *testing.T) {
	f := newTestFunc(t)
	cur := f.pushApply("(d0) -> (d0 + 1)", f.iv)
	for i := 0; i < 4; i++ {
		cur = f.pushApply("(d0) -> (d0 + 1)", cur.Result(0))
	}

	m, operands := FullyComposeMapAndOperands(ApplyMap(cur), cur.Operands())

	assert.Equal(t, "(d0) -> (d0 + 5)", m.String())
	assert.Equal(t, []ir.Value{f.iv}, operands)
}

func TestComposeKeepsOwnSymbolOrdering(t *testing.T) {
	f := newTestFunc(t)
	// b = iv + N * 3; c = b + M. After one composition c's map must bind
	// its own symbol M before the producer's symbol N.
	b := f.pushApply("(d0)[s0] -> (d0 + s0 * 3)", f.iv, f.n)
	c := f.pushApply("(d0)[s0] -> (d0 + s0)", b.Result(0), f.m)

	m, operands := ComposeMapAndOperands(ApplyMap(c), c.Operands())

	require.Equal(t, 1, m.NumDims())
	require.Equal(t, 2, m.NumSymbols())
	assert.Equal(t, []ir.Value{f.iv, f.m, f.n}, operands)

	// iv=1, M=10, N=100: b = 301, c = 311. A swapped symbol binding would
	// give 131 instead.
	got, err := m.ConstantFold([]int64{1, 10, 100})
	require.NoError(t, err)
	assert.Equal(t, []int64{311}, got)
	assert.Equal(t, "(d0)[s0, s1] -> (d0 + s0 + s1 * 3)", m.String())
}

func TestComposePromotesApplySymbolOperand(t *testing.T) {
	f := newTestFunc(t)
	// producer over symbols only: valid as a symbol operand.
	prod := f.pushApply("()[s0] -> (s0 + 1)", f.n)
	require.True(t, IsValidSymbol(prod.Result(0)))

	// consumer uses the producer result in a symbol position.
	c := f.pushApply("(d0)[s0] -> (d0 + s0)", f.iv, prod.Result(0))

	m, operands := FullyComposeMapAndOperands(ApplyMap(c), c.Operands())
	m, operands = CanonicalizeMapAndOperands(m, operands)

	// The producer is folded in and N re-demoted to a symbol.
	assert.Equal(t, "(d0)[s0] -> (d0 + s0 + 1)", m.String())
	assert.Equal(t, []ir.Value{f.iv, f.n}, operands)
}

func TestCanonicalizeCollapsesDuplicateDims(t *testing.T) {
	f := newTestFunc(t)
	c := f.pushApply("(d0, d1) -> (d0 + d1)", f.iv, f.iv)

	m, operands := CanonicalizeMapAndOperands(ApplyMap(c), c.Operands())

	assert.Equal(t, "(d0) -> (d0 * 2)", m.String())
	assert.Equal(t, []ir.Value{f.iv}, operands)
}

func TestCanonicalizeCollapsesDuplicateSymbols(t *testing.T) {
	f := newTestFunc(t)
	c := f.pushApply("()[s0, s1, s2, s3] -> (s0 + s1 + s2 + s3)", f.n, f.n, f.n, f.n)

	m, operands := CanonicalizeMapAndOperands(ApplyMap(c), c.Operands())

	assert.Equal(t, "()[s0] -> (s0 * 4)", m.String())
	assert.Equal(t, []ir.Value{f.n}, operands)
}

func TestCanonicalizeDropsUnusedOperands(t *testing.T) {
	f := newTestFunc(t)
	c := f.pushApply("(d0, d1)[s0] -> (d1)", f.iv, f.iv, f.n)

	m, operands := CanonicalizeMapAndOperands(ApplyMap(c), c.Operands())

	assert.Equal(t, "(d0) -> (d0)", m.String())
	assert.Equal(t, []ir.Value{f.iv}, operands)
}

func TestCanonicalizeRedemotesSymbolicDims(t *testing.T) {
	f := newTestFunc(t)
	// N is a valid symbol appearing in a dim position.
	c := f.pushApply("(d0, d1) -> (d0 + d1)", f.iv, f.n)

	m, operands := CanonicalizeMapAndOperands(ApplyMap(c), c.Operands())

	assert.Equal(t, "(d0)[s0] -> (d0 + s0)", m.String())
	assert.Equal(t, []ir.Value{f.iv, f.n}, operands)
}

func TestSimplifyApplyRewritesInPlace(t *testing.T) {
	f := newTestFunc(t)
	b := f.pushApply("(d0) -> (d0 + 1)", f.iv)
	c := f.pushApply("(d0) -> (d0 * 2)", b.Result(0))

	require.True(t, SimplifyApply(c))
	assert.Equal(t, "(d0) -> (d0 * 2 + 2)", ApplyMap(c).String())
	assert.Equal(t, []ir.Value{f.iv}, c.Operands())
	assert.True(t, b.Result(0).UseEmpty(), "producer is no longer referenced")

	// Idempotent: a second pass finds nothing to do.
	assert.False(t, SimplifyApply(c))
}

func TestComposeLeavesComposedApplyAlone(t *testing.T) {
	f := newTestFunc(t)
	c := f.pushApply("(d0)[s0] -> (d0 + s0)", f.iv, f.n)

	m, operands := ComposeMapAndOperands(ApplyMap(c), c.Operands())

	assert.True(t, m.Equal(ApplyMap(c)))
	assert.Equal(t, c.Operands(), operands)
}

func TestCanonicalizeWalksTheTree(t *testing.T) {
	f := newTestFunc(t)
	b := f.pushApply("(d0) -> (d0 + 1)", f.iv)
	c := f.pushApply("(d0) -> (d0 * 2)", b.Result(0))

	// Anchor c with a store so it is not erased as dead.
	mt := ir.MemRefType{Shape: []int64{64}, Element: ir.IndexType{}}
	alloc := coreops.NewAlloc(ir.UnknownLoc(), mt, nil)
	f.body.PushFront(alloc)
	store := NewStore(ir.UnknownLoc(), c.Result(0), alloc.Result(0),
		affine.MustParseMap("(d0) -> (d0)"), []ir.Value{f.iv})
	ForBody(f.loop).InsertBefore(store, ForBody(f.loop).Terminator())

	changed := Canonicalize(f.module)
	assert.Greater(t, changed, 0)

	assert.Equal(t, "(d0) -> (d0 * 2 + 2)", ApplyMap(c).String())
	// b became dead and was erased.
	assert.Nil(t, b.Block())

	require.NoError(t, ir.Verify(f.module))
}

func TestCanonicalizeFoldsConstantApply(t *testing.T) {
	f := newTestFunc(t)
	c := f.pushApply("()[s0] -> (s0 * 2 + 1)", f.n)

	// Anchor the result with a store so the fold has a consumer to rewire.
	mt := ir.MemRefType{Shape: []int64{256}, Element: ir.IndexType{}}
	alloc := coreops.NewAlloc(ir.UnknownLoc(), mt, nil)
	f.body.PushFront(alloc)
	store := NewStore(ir.UnknownLoc(), c.Result(0), alloc.Result(0),
		affine.MustParseMap("(d0) -> (d0)"), []ir.Value{f.iv})
	ForBody(f.loop).InsertBefore(store, ForBody(f.loop).Terminator())

	changed := Canonicalize(f.module)
	assert.Greater(t, changed, 0)

	// N is 64, so the apply evaluates to 129 and folds to a materialized
	// constant feeding the store.
	assert.Nil(t, c.Block(), "all-constant apply folds away")
	val, ok := ir.ConstantIntValue(store.Operand(0))
	require.True(t, ok, "stored value comes from a constant")
	assert.Equal(t, int64(129), val)

	require.NoError(t, ir.Verify(f.module))
}

func TestCanonicalizeFoldsStaticDim(t *testing.T) {
	f := newTestFunc(t)
	mt := ir.MemRefType{Shape: []int64{256}, Element: ir.IndexType{}}
	alloc := coreops.NewAlloc(ir.UnknownLoc(), mt, nil)
	f.body.PushFront(alloc)

	dim := coreops.NewDim(ir.UnknownLoc(), alloc.Result(0), 0)
	f.body.InsertBefore(dim, f.loop)
	use := f.pushApply("()[s0] -> (s0 - 1)", dim.Result(0))
	store := NewStore(ir.UnknownLoc(), use.Result(0), alloc.Result(0),
		affine.MustParseMap("(d0) -> (d0)"), []ir.Value{f.iv})
	ForBody(f.loop).InsertBefore(store, ForBody(f.loop).Terminator())

	changed := Canonicalize(f.module)
	assert.Greater(t, changed, 0)

	// The static extent folds to 256, then the apply folds to 255.
	assert.Nil(t, dim.Block())
	assert.Nil(t, use.Block())
	val, ok := ir.ConstantIntValue(store.Operand(0))
	require.True(t, ok)
	assert.Equal(t, int64(255), val)

	require.NoError(t, ir.Verify(f.module))
}
