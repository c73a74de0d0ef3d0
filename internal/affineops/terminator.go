package affineops

import "github.com/loomlang/loom/internal/ir"

func init() {
	ir.RegisterOperation(ir.OpInfo{
		Name:   TerminatorOp,
		Traits: ir.TraitTerminator,
		Verify: verifyTerminator,
		Print: func(p ir.AsmPrinter, op *ir.Operation) {
			p.Printf("affine.terminator")
			p.PrintAttrDict(op.Attrs())
		},
		Parse: func(p ir.AsmParser, state *ir.OperationState) error {
			return nil
		},
	})
}

// NewTerminator builds the implicit terminator closing affine.for and
// affine.if bodies.
func NewTerminator(loc ir.Location) *ir.Operation {
	return ir.Create(ir.OperationState{Loc: loc, Name: TerminatorOp})
}

func verifyTerminator(op *ir.Operation) error {
	if op.NumOperands() != 0 || op.NumResults() != 0 {
		return op.Errorf("expects no operands and no results")
	}
	parent := op.ParentOp()
	if parent == nil || (parent.Name() != ForOp && parent.Name() != IfOp) {
		return op.Errorf("must be the terminator of an affine.for or affine.if body")
	}
	return nil
}
