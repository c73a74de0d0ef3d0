package coreops

import (
	"github.com/loomlang/loom/internal/ir"
)

// NewConstant builds %c = core.constant <value> : <type>.
func NewConstant(loc ir.Location, value int64, t ir.Type) *ir.Operation {
	return ir.Create(ir.OperationState{
		Loc:   loc,
		Name:  ConstantOp,
		Types: []ir.Type{t},
		Attrs: []ir.NamedAttr{{Name: "value", Value: ir.IntegerAttr{Value: value}}},
	})
}

// NewIndexConstant builds an index-typed constant.
func NewIndexConstant(loc ir.Location, value int64) *ir.Operation {
	return NewConstant(loc, value, ir.IndexType{})
}

func verifyConstant(op *ir.Operation) error {
	if op.NumOperands() != 0 || op.NumResults() != 1 {
		return op.Errorf("expects no operands and one result")
	}
	if _, ok := op.Attr("value").(ir.IntegerAttr); !ok {
		return op.Errorf("expects an integer 'value' attribute")
	}
	switch op.Result(0).Type().(type) {
	case ir.IndexType, ir.IntType:
	default:
		return op.Errorf("result must be of index or integer type")
	}
	return nil
}

func parseConstant(p ir.AsmParser, state *ir.OperationState) error {
	value, err := p.ParseInt()
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
	state.AddAttribute("value", ir.IntegerAttr{Value: value})
	state.AddTypes(t)
	return nil
}

func printConstant(p ir.AsmPrinter, op *ir.Operation) {
	p.Printf("core.constant ")
	p.PrintAttribute(op.Attr("value"))
	p.PrintAttrDict(op.Attrs(), "value")
	p.Printf(" : ")
	p.PrintType(op.Result(0).Type())
}

func foldConstant(op *ir.Operation, _ []ir.Attribute) (ir.FoldResult, bool) {
	return ir.FoldResult{Attr: op.Attr("value")}, true
}
