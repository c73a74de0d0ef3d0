package coreops

import (
	"github.com/loomlang/loom/internal/ir"
)

// NewAlloc builds %m = core.alloc(%d...) : <memref-type>, with one index
// operand per dynamic dimension of the type.
func NewAlloc(loc ir.Location, t ir.MemRefType, dynamicSizes []ir.Value) *ir.Operation {
	return ir.Create(ir.OperationState{
		Loc:      loc,
		Name:     AllocOp,
		Operands: dynamicSizes,
		Types:    []ir.Type{t},
	})
}

func verifyAlloc(op *ir.Operation) error {
	if op.NumResults() != 1 {
		return op.Errorf("expects one result")
	}
	mt, ok := op.Result(0).Type().(ir.MemRefType)
	if !ok {
		return op.Errorf("result must be of memref type")
	}
	if op.NumOperands() != mt.NumDynamicDims() {
		return op.Errorf("expects %d dynamic size operands, got %d",
			mt.NumDynamicDims(), op.NumOperands())
	}
	for i, v := range op.Operands() {
		if !ir.IsIndex(v.Type()) {
			return op.Errorf("size operand %d must be of index type", i)
		}
	}
	return nil
}

func parseAlloc(p ir.AsmParser, state *ir.OperationState) error {
	var sizes []ir.Value
	if p.ConsumeIf("(") {
		if !p.ConsumeIf(")") {
			for {
				v, err := p.ParseOperand(ir.IndexType{})
				if err != nil {
					return err
				}
				sizes = append(sizes, v)
				if p.ConsumeIf(")") {
					break
				}
				if err := p.ParseToken(","); err != nil {
					return err
				}
			}
		}
	}
	if err := p.ParseToken(":"); err != nil {
		return err
	}
	t, err := p.ParseType()
	if err != nil {
		return err
	}
	state.AddOperands(sizes...)
	state.AddTypes(t)
	return nil
}

func printAlloc(p ir.AsmPrinter, op *ir.Operation) {
	p.Printf("core.alloc")
	if op.NumOperands() > 0 {
		p.Printf("(")
		p.PrintOperands(op.Operands())
		p.Printf(")")
	}
	p.PrintAttrDict(op.Attrs())
	p.Printf(" : ")
	p.PrintType(op.Result(0).Type())
}
