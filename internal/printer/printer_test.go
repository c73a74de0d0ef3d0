package printer

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomlang/loom/internal/affine"
	"github.com/loomlang/loom/internal/affineops"
	"github.com/loomlang/loom/internal/coreops"
	"github.com/loomlang/loom/internal/ir"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func pushLoop(loop, op *ir.Operation) *ir.Operation {
	body := affineops.ForBody(loop)
	body.InsertBefore(op, body.Terminator())
	return op
}

func TestPrintBasicModule(t *testing.T) {
	module := coreops.NewModule(ir.UnknownLoc())
	body := coreops.ModuleBody(module)

	n := coreops.NewIndexConstant(ir.UnknownLoc(), 64)
	body.PushBack(n)
	mem := coreops.NewAlloc(ir.UnknownLoc(),
		ir.MemRefType{Shape: []int64{64}, Element: ir.FloatType{Width: 32}}, nil)
	body.PushBack(mem)
	loop := affineops.NewConstantFor(ir.UnknownLoc(), 0, 10, 1)
	body.PushBack(loop)

	iv := affineops.ForInductionVar(loop)
	scaled := pushLoop(loop, affineops.NewApply(ir.UnknownLoc(),
		affine.MustParseMap("(d0) -> (d0 * 2)"), []ir.Value{iv}))
	id := affine.MustParseMap("(d0) -> (d0)")
	load := pushLoop(loop, affineops.NewLoad(ir.UnknownLoc(),
		mem.Result(0), id, []ir.Value{scaled.Result(0)}))
	pushLoop(loop, affineops.NewStore(ir.UnknownLoc(),
		load.Result(0), mem.Result(0), id, []ir.Value{scaled.Result(0)}))

	require.NoError(t, ir.Verify(module))
	newGoldie(t).Assert(t, "module_basic", []byte(Print(module)))
}

func TestPrintDmaAndIf(t *testing.T) {
	module := coreops.NewModule(ir.UnknownLoc())
	body := coreops.ModuleBody(module)

	num := coreops.NewIndexConstant(ir.UnknownLoc(), 32)
	body.PushBack(num)
	src := coreops.NewAlloc(ir.UnknownLoc(),
		ir.MemRefType{Shape: []int64{256}, Element: ir.FloatType{Width: 32}}, nil)
	body.PushBack(src)
	dst := coreops.NewAlloc(ir.UnknownLoc(),
		ir.MemRefType{Shape: []int64{32}, Element: ir.FloatType{Width: 32}, MemorySpace: 1}, nil)
	body.PushBack(dst)
	tag := coreops.NewAlloc(ir.UnknownLoc(),
		ir.MemRefType{Shape: []int64{1}, Element: ir.IntType{Width: 32}, MemorySpace: 2}, nil)
	body.PushBack(tag)

	loop := affineops.NewConstantFor(ir.UnknownLoc(), 0, 8, 1)
	body.PushBack(loop)
	iv := affineops.ForInductionVar(loop)

	zero := affine.MustParseMap("() -> (0)")
	pushLoop(loop, affineops.NewDmaStart(ir.UnknownLoc(),
		src.Result(0), affine.MustParseMap("(d0) -> (d0 * 32)"), []ir.Value{iv},
		dst.Result(0), zero, nil,
		tag.Result(0), zero, nil,
		num.Result(0)))
	pushLoop(loop, affineops.NewDmaWait(ir.UnknownLoc(),
		tag.Result(0), zero, nil, num.Result(0)))

	guarded := pushLoop(loop, affineops.NewIf(ir.UnknownLoc(),
		affine.MustParseSet("(d0) : (d0 - 4 >= 0)"), []ir.Value{iv}, true))
	thenBlock := affineops.IfThenBlock(guarded)
	thenBlock.InsertBefore(affineops.NewApply(ir.UnknownLoc(),
		affine.MustParseMap("(d0)[s0] -> (d0 + s0)"),
		[]ir.Value{iv, num.Result(0)}), thenBlock.Terminator())

	require.NoError(t, ir.Verify(module))
	newGoldie(t).Assert(t, "module_dma", []byte(Print(module)))
}

func TestPrintGenericForm(t *testing.T) {
	c := coreops.NewIndexConstant(ir.UnknownLoc(), 7)
	op := ir.Create(ir.OperationState{
		Loc:      ir.UnknownLoc(),
		Name:     "test.wrap",
		Operands: []ir.Value{c.Result(0)},
		Types:    []ir.Type{ir.IntType{Width: 1}},
		Attrs: []ir.NamedAttr{
			{Name: "tag", Value: ir.StringAttr{Value: "x"}},
			{Name: "count", Value: ir.IntegerAttr{Value: 3}},
		},
	})

	assert.Equal(t, "%0 = core.constant 7 : index\n", Print(c))

	// Each Print call numbers from zero, so the result takes %0 and the
	// operand %1.
	assert.Equal(t, "%0 = \"test.wrap\"(%1) {count = 3, tag = \"x\"} : (index) -> (i1)\n", Print(op))

	op.Destroy()
	c.Destroy()
}

func TestSharedNumberingAcrossOps(t *testing.T) {
	module := coreops.NewModule(ir.UnknownLoc())
	body := coreops.ModuleBody(module)
	a := coreops.NewIndexConstant(ir.UnknownLoc(), 1)
	b := coreops.NewIndexConstant(ir.UnknownLoc(), 2)
	body.PushBack(a)
	body.PushBack(b)

	out := Print(module)
	assert.Contains(t, out, "%0 = core.constant 1 : index")
	assert.Contains(t, out, "%1 = core.constant 2 : index")
}
