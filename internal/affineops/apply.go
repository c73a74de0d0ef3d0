package affineops

import (
	"github.com/loomlang/loom/internal/affine"
	"github.com/loomlang/loom/internal/ir"
)

func init() {
	ir.RegisterOperation(ir.OpInfo{
		Name:   ApplyOp,
		Verify: verifyApply,
		Parse:  parseApply,
		Print:  printApply,
		Fold:   foldApply,
	})
}

// NewApply builds %r = affine.apply <map>(dims)[symbols]. The map must have
// a single result.
func NewApply(loc ir.Location, m affine.Map, operands []ir.Value) *ir.Operation {
	return ir.Create(ir.OperationState{
		Loc:      loc,
		Name:     ApplyOp,
		Operands: operands,
		Types:    []ir.Type{ir.IndexType{}},
		Attrs:    []ir.NamedAttr{{Name: "map", Value: ir.AffineMapAttr{Map: m}}},
	})
}

// ApplyMap returns the map attribute of an affine.apply.
func ApplyMap(op *ir.Operation) affine.Map {
	return op.Attr("map").(ir.AffineMapAttr).Map
}

// IsApplyResult reports whether the value is produced by an affine.apply.
func IsApplyResult(v ir.Value) bool {
	op := v.DefiningOp()
	return op != nil && op.Name() == ApplyOp
}

func verifyApply(op *ir.Operation) error {
	attr, ok := op.Attr("map").(ir.AffineMapAttr)
	if !ok {
		return op.Errorf("expects an affine map 'map' attribute")
	}
	m := attr.Map
	if m.NumResults() != 1 {
		return op.Errorf("mapping must produce one value, got %d", m.NumResults())
	}
	if op.NumResults() != 1 || !ir.IsIndex(op.Result(0).Type()) {
		return op.Errorf("expects one result of index type")
	}
	if op.NumOperands() != m.NumInputs() {
		return op.Errorf("expects %d operands for the map, got %d", m.NumInputs(), op.NumOperands())
	}
	return verifyDimAndSymbolOperands(op, op.Operands(), m.NumDims(), "map")
}

func parseApply(p ir.AsmParser, state *ir.OperationState) error {
	m, err := p.ParseAffineMap()
	if err != nil {
		return err
	}
	operands, numDims, err := p.ParseDimAndSymbolList()
	if err != nil {
		return err
	}
	if numDims != m.NumDims() || len(operands) != m.NumInputs() {
		return p.Errorf("dim and symbol operand counts do not match the map")
	}
	state.AddAttribute("map", ir.AffineMapAttr{Map: m})
	state.AddOperands(operands...)
	state.AddTypes(ir.IndexType{})
	return nil
}

func printApply(p ir.AsmPrinter, op *ir.Operation) {
	m := ApplyMap(op)
	p.Printf("affine.apply ")
	p.PrintAttribute(ir.AffineMapAttr{Map: m})
	p.PrintDimAndSymbolList(op.Operands(), m.NumDims())
	p.PrintAttrDict(op.Attrs(), "map")
}

// foldApply evaluates the map when every operand folded to a constant.
func foldApply(op *ir.Operation, operands []ir.Attribute) (ir.FoldResult, bool) {
	m := ApplyMap(op)
	values := make([]int64, len(operands))
	for i, a := range operands {
		c, ok := a.(ir.IntegerAttr)
		if !ok {
			return ir.FoldResult{}, false
		}
		values[i] = c.Value
	}
	folded, err := m.ConstantFold(values)
	if err != nil {
		return ir.FoldResult{}, false
	}
	return ir.FoldResult{Attr: ir.IntegerAttr{Value: folded[0]}}, true
}
