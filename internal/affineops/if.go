package affineops

import (
	"github.com/loomlang/loom/internal/affine"
	"github.com/loomlang/loom/internal/ir"
)

func init() {
	ir.RegisterOperation(ir.OpInfo{
		Name:   IfOp,
		Verify: verifyIf,
		Parse:  parseIf,
		Print:  printIf,
	})
}

// NewIf builds an affine.if guarded by the integer set over the given
// operands. The then body is created with an implicit terminator; the else
// region stays empty unless withElse is set.
func NewIf(loc ir.Location, set affine.Set, operands []ir.Value, withElse bool) *ir.Operation {
	thenBlock := ir.NewBlock()
	thenBlock.PushBack(NewTerminator(loc))
	thenRegion := ir.NewRegion()
	thenRegion.PushBack(thenBlock)

	elseRegion := ir.NewRegion()
	if withElse {
		elseBlock := ir.NewBlock()
		elseBlock.PushBack(NewTerminator(loc))
		elseRegion.PushBack(elseBlock)
	}

	return ir.Create(ir.OperationState{
		Loc:      loc,
		Name:     IfOp,
		Operands: operands,
		Attrs:    []ir.NamedAttr{{Name: "condition", Value: ir.IntegerSetAttr{Set: set}}},
		Regions:  []*ir.Region{thenRegion, elseRegion},
	})
}

// IfCondition returns the guarding integer set.
func IfCondition(op *ir.Operation) affine.Set {
	return op.Attr("condition").(ir.IntegerSetAttr).Set
}

// IfThenBlock returns the then body block.
func IfThenBlock(op *ir.Operation) *ir.Block { return op.Region(0).Front() }

// IfElseBlock returns the else body block, nil when absent.
func IfElseBlock(op *ir.Operation) *ir.Block { return op.Region(1).Front() }

// HasElse reports whether the else region is populated.
func HasElse(op *ir.Operation) bool { return !op.Region(1).Empty() }

func verifyIf(op *ir.Operation) error {
	if op.NumResults() != 0 {
		return op.Errorf("expects no results")
	}
	cond, ok := op.Attr("condition").(ir.IntegerSetAttr)
	if !ok {
		return op.Errorf("expects an integer set 'condition' attribute")
	}
	if op.NumOperands() != cond.Set.NumInputs() {
		return op.Errorf("expects %d operands for the condition, got %d",
			cond.Set.NumInputs(), op.NumOperands())
	}
	if err := verifyDimAndSymbolOperands(op, op.Operands(), cond.Set.NumDims(), "condition"); err != nil {
		return err
	}
	if op.NumRegions() != 2 {
		return op.Errorf("expects a then and an else region")
	}
	for i, r := range op.Regions() {
		if r.Empty() {
			if i == 0 {
				return op.Errorf("then region must not be empty")
			}
			continue
		}
		if r.NumBlocks() != 1 {
			return op.Errorf("region %d must hold exactly one block", i)
		}
		b := r.Front()
		if b.NumArguments() != 0 {
			return op.Errorf("region %d must not declare block arguments", i)
		}
		if term := b.Terminator(); term == nil || term.Name() != TerminatorOp {
			return op.Errorf("region %d must end with %s", i, TerminatorOp)
		}
	}
	return nil
}

func parseIf(p ir.AsmParser, state *ir.OperationState) error {
	set, err := p.ParseIntegerSet()
	if err != nil {
		return err
	}
	operands, numDims, err := p.ParseDimAndSymbolList()
	if err != nil {
		return err
	}
	if numDims != set.NumDims() || len(operands) != set.NumInputs() {
		return p.Errorf("dim and symbol operand counts do not match the condition set")
	}

	thenRegion, err := p.ParseRegion(nil, nil)
	if err != nil {
		return err
	}
	ensureTerminator(thenRegion, state.Loc)

	elseRegion := ir.NewRegion()
	if p.ConsumeKeywordIf("else") {
		if elseRegion, err = p.ParseRegion(nil, nil); err != nil {
			return err
		}
		ensureTerminator(elseRegion, state.Loc)
	}

	state.AddOperands(operands...)
	state.AddAttribute("condition", ir.IntegerSetAttr{Set: set})
	state.Regions = []*ir.Region{thenRegion, elseRegion}
	state.NumRegions = 2
	return nil
}

func printIf(p ir.AsmPrinter, op *ir.Operation) {
	cond := IfCondition(op)
	p.Printf("affine.if ")
	p.PrintAttribute(ir.IntegerSetAttr{Set: cond})
	p.PrintDimAndSymbolList(op.Operands(), cond.NumDims())
	p.Printf(" ")
	p.PrintRegion(op.Region(0), false, false)
	if HasElse(op) {
		p.Printf(" else ")
		p.PrintRegion(op.Region(1), false, false)
	}
	p.PrintAttrDict(op.Attrs(), "condition")
}
