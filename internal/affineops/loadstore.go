package affineops

import (
	"github.com/loomlang/loom/internal/affine"
	"github.com/loomlang/loom/internal/ir"
)

func init() {
	ir.RegisterOperation(ir.OpInfo{
		Name:   LoadOp,
		Verify: verifyLoad,
		Parse:  parseLoad,
		Print:  printLoad,
	})
	ir.RegisterOperation(ir.OpInfo{
		Name:   StoreOp,
		Verify: verifyStore,
		Parse:  parseStore,
		Print:  printStore,
	})
}

// NewLoad builds %v = affine.load %memref[<map applied to indices>]. The map
// must produce one result per memref dimension.
func NewLoad(loc ir.Location, memref ir.Value, m affine.Map, indices []ir.Value) *ir.Operation {
	mt := memref.Type().(ir.MemRefType)
	return ir.Create(ir.OperationState{
		Loc:      loc,
		Name:     LoadOp,
		Operands: append([]ir.Value{memref}, indices...),
		Types:    []ir.Type{mt.Element},
		Attrs:    []ir.NamedAttr{{Name: "map", Value: ir.AffineMapAttr{Map: m}}},
	})
}

// NewStore builds affine.store %value, %memref[<map applied to indices>].
func NewStore(loc ir.Location, value, memref ir.Value, m affine.Map, indices []ir.Value) *ir.Operation {
	return ir.Create(ir.OperationState{
		Loc:      loc,
		Name:     StoreOp,
		Operands: append([]ir.Value{value, memref}, indices...),
		Attrs:    []ir.NamedAttr{{Name: "map", Value: ir.AffineMapAttr{Map: m}}},
	})
}

// AccessMap returns the access map of a load, store or DMA operation.
func AccessMap(op *ir.Operation) affine.Map {
	return op.Attr("map").(ir.AffineMapAttr).Map
}

// verifyAccess checks the memref/map/index contract shared by load and
// store. memrefPos is the flat operand index of the memref; the map inputs
// follow it.
func verifyAccess(op *ir.Operation, memrefPos int) (ir.MemRefType, error) {
	attr, ok := op.Attr("map").(ir.AffineMapAttr)
	if !ok {
		return ir.MemRefType{}, op.Errorf("expects an affine map 'map' attribute")
	}
	m := attr.Map
	mt, ok := op.Operand(memrefPos).Type().(ir.MemRefType)
	if !ok {
		return ir.MemRefType{}, op.Errorf("expects a memref operand")
	}
	if m.NumResults() != mt.Rank() {
		return ir.MemRefType{}, op.Errorf("access map produces %d indices for a memref of rank %d",
			m.NumResults(), mt.Rank())
	}
	indices := op.Operands()[memrefPos+1:]
	if len(indices) != m.NumInputs() {
		return ir.MemRefType{}, op.Errorf("expects %d map operands, got %d", m.NumInputs(), len(indices))
	}
	if err := verifyDimAndSymbolOperands(op, indices, m.NumDims(), "index"); err != nil {
		return ir.MemRefType{}, err
	}
	return mt, nil
}

func verifyLoad(op *ir.Operation) error {
	if op.NumResults() != 1 {
		return op.Errorf("expects one result")
	}
	mt, err := verifyAccess(op, 0)
	if err != nil {
		return err
	}
	if !ir.TypeEqual(op.Result(0).Type(), mt.Element) {
		return op.Errorf("result type %s does not match element type %s",
			op.Result(0).Type(), mt.Element)
	}
	return nil
}

func verifyStore(op *ir.Operation) error {
	if op.NumResults() != 0 {
		return op.Errorf("expects no results")
	}
	if op.NumOperands() < 2 {
		return op.Errorf("expects a value and a memref operand")
	}
	mt, err := verifyAccess(op, 1)
	if err != nil {
		return err
	}
	if !ir.TypeEqual(op.Operand(0).Type(), mt.Element) {
		return op.Errorf("value type %s does not match element type %s",
			op.Operand(0).Type(), mt.Element)
	}
	return nil
}

// parseAccess parses %memref[<subscript exprs>] : memref-type, returning
// the memref, the subscript map and its operands.
func parseAccess(p ir.AsmParser) (ir.Value, affine.Map, []ir.Value, ir.MemRefType, error) {
	memref, err := p.ParseOperand(nil)
	if err != nil {
		return nil, affine.Map{}, nil, ir.MemRefType{}, err
	}
	m, indices, err := p.ParseAffineExprOperandList("[", "]")
	if err != nil {
		return nil, affine.Map{}, nil, ir.MemRefType{}, err
	}
	if err := p.ParseToken(":"); err != nil {
		return nil, affine.Map{}, nil, ir.MemRefType{}, err
	}
	t, err := p.ParseType()
	if err != nil {
		return nil, affine.Map{}, nil, ir.MemRefType{}, err
	}
	mt, ok := t.(ir.MemRefType)
	if !ok {
		return nil, affine.Map{}, nil, ir.MemRefType{}, p.Errorf("expected memref type, got %s", t)
	}
	if !ir.TypeEqual(memref.Type(), mt) {
		return nil, affine.Map{}, nil, ir.MemRefType{}, p.Errorf(
			"memref operand type %s does not match declared type %s", memref.Type(), mt)
	}
	return memref, m, indices, mt, nil
}

func parseLoad(p ir.AsmParser, state *ir.OperationState) error {
	memref, m, indices, mt, err := parseAccess(p)
	if err != nil {
		return err
	}
	state.AddOperands(memref)
	state.AddOperands(indices...)
	state.AddAttribute("map", ir.AffineMapAttr{Map: m})
	state.AddTypes(mt.Element)
	return nil
}

func parseStore(p ir.AsmParser, state *ir.OperationState) error {
	value, err := p.ParseOperand(nil)
	if err != nil {
		return err
	}
	if err := p.ParseToken(","); err != nil {
		return err
	}
	memref, m, indices, mt, err := parseAccess(p)
	if err != nil {
		return err
	}
	if !ir.TypeEqual(value.Type(), mt.Element) {
		return p.Errorf("value type %s does not match element type %s", value.Type(), mt.Element)
	}
	state.AddOperands(value, memref)
	state.AddOperands(indices...)
	state.AddAttribute("map", ir.AffineMapAttr{Map: m})
	return nil
}

func printAccess(p ir.AsmPrinter, op *ir.Operation, memrefPos int) {
	m := AccessMap(op)
	memref := op.Operand(memrefPos)
	p.PrintValue(memref)
	p.Printf("[")
	p.PrintAffineMapOfValues(m, op.Operands()[memrefPos+1:])
	p.Printf("]")
	p.PrintAttrDict(op.Attrs(), "map")
	p.Printf(" : ")
	p.PrintType(memref.Type())
}

func printLoad(p ir.AsmPrinter, op *ir.Operation) {
	p.Printf("affine.load ")
	printAccess(p, op, 0)
}

func printStore(p ir.AsmPrinter, op *ir.Operation) {
	p.Printf("affine.store ")
	p.PrintValue(op.Operand(0))
	p.Printf(", ")
	printAccess(p, op, 1)
}
