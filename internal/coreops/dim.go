package coreops

import (
	"github.com/loomlang/loom/internal/ir"
)

// NewDim builds %d = core.dim %memref, <index> : <memref-type>, yielding the
// extent of one dimension as an index value.
func NewDim(loc ir.Location, memref ir.Value, index int) *ir.Operation {
	return ir.Create(ir.OperationState{
		Loc:      loc,
		Name:     DimOp,
		Operands: []ir.Value{memref},
		Types:    []ir.Type{ir.IndexType{}},
		Attrs:    []ir.NamedAttr{{Name: "index", Value: ir.IntegerAttr{Value: int64(index)}}},
	})
}

func verifyDim(op *ir.Operation) error {
	if op.NumOperands() != 1 || op.NumResults() != 1 {
		return op.Errorf("expects one operand and one result")
	}
	if !ir.IsIndex(op.Result(0).Type()) {
		return op.Errorf("result must be of index type")
	}
	index, ok := op.Attr("index").(ir.IntegerAttr)
	if !ok {
		return op.Errorf("expects an integer 'index' attribute")
	}
	mt, ok := op.Operand(0).Type().(ir.MemRefType)
	if !ok {
		return op.Errorf("operand must be of memref type")
	}
	if index.Value < 0 || index.Value >= int64(mt.Rank()) {
		return op.Errorf("index %d out of range for memref of rank %d", index.Value, mt.Rank())
	}
	return nil
}

func parseDim(p ir.AsmParser, state *ir.OperationState) error {
	memref, err := p.ParseOperand(nil)
	if err != nil {
		return err
	}
	if err := p.ParseToken(","); err != nil {
		return err
	}
	index, err := p.ParseInt()
	if err != nil {
		return err
	}
	if err := p.ParseToken(":"); err != nil {
		return err
	}
	t, err := p.ParseType()
	if err != nil {
		return err
	}
	if !ir.TypeEqual(memref.Type(), t) {
		return p.Errorf("operand type %s does not match declared type %s", memref.Type(), t)
	}
	state.AddOperands(memref)
	state.AddAttribute("index", ir.IntegerAttr{Value: index})
	state.AddTypes(ir.IndexType{})
	return nil
}

func printDim(p ir.AsmPrinter, op *ir.Operation) {
	p.Printf("core.dim ")
	p.PrintValue(op.Operand(0))
	p.Printf(", ")
	p.PrintAttribute(op.Attr("index"))
	p.PrintAttrDict(op.Attrs(), "index")
	p.Printf(" : ")
	p.PrintType(op.Operand(0).Type())
}

// foldDim resolves the extent when the queried dimension is static.
func foldDim(op *ir.Operation, _ []ir.Attribute) (ir.FoldResult, bool) {
	mt, ok := op.Operand(0).Type().(ir.MemRefType)
	if !ok {
		return ir.FoldResult{}, false
	}
	index := op.Attr("index").(ir.IntegerAttr).Value
	if index < 0 || index >= int64(mt.Rank()) || mt.Shape[index] == ir.DynamicSize {
		return ir.FoldResult{}, false
	}
	return ir.FoldResult{Attr: ir.IntegerAttr{Value: mt.Shape[index]}}, true
}
