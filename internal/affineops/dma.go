package affineops

import (
	"github.com/loomlang/loom/internal/affine"
	"github.com/loomlang/loom/internal/ir"
)

func init() {
	ir.RegisterOperation(ir.OpInfo{
		Name:   DmaStartOp,
		Verify: verifyDmaStart,
		Parse:  parseDmaStart,
		Print:  printDmaStart,
	})
	ir.RegisterOperation(ir.OpInfo{
		Name:   DmaWaitOp,
		Verify: verifyDmaWait,
		Parse:  parseDmaWait,
		Print:  printDmaWait,
	})
}

// NewDmaStart builds a non-blocking DMA from src to dst, tracked through the
// tag memref. Each access is an affine map over its own index operands.
// numElements counts elements to transfer; a stride pair may follow for
// strided transfers.
func NewDmaStart(loc ir.Location,
	src ir.Value, srcMap affine.Map, srcIndices []ir.Value,
	dst ir.Value, dstMap affine.Map, dstIndices []ir.Value,
	tag ir.Value, tagMap affine.Map, tagIndices []ir.Value,
	numElements ir.Value, strideOperands ...ir.Value) *ir.Operation {
	operands := []ir.Value{src}
	operands = append(operands, srcIndices...)
	operands = append(operands, dst)
	operands = append(operands, dstIndices...)
	operands = append(operands, tag)
	operands = append(operands, tagIndices...)
	operands = append(operands, numElements)
	operands = append(operands, strideOperands...)
	return ir.Create(ir.OperationState{
		Loc:      loc,
		Name:     DmaStartOp,
		Operands: operands,
		Attrs: []ir.NamedAttr{
			{Name: "src_map", Value: ir.AffineMapAttr{Map: srcMap}},
			{Name: "dst_map", Value: ir.AffineMapAttr{Map: dstMap}},
			{Name: "tag_map", Value: ir.AffineMapAttr{Map: tagMap}},
		},
	})
}

// NewDmaWait builds the blocking wait for a DMA tracked through the tag
// memref.
func NewDmaWait(loc ir.Location, tag ir.Value, tagMap affine.Map, tagIndices []ir.Value,
	numElements ir.Value) *ir.Operation {
	operands := []ir.Value{tag}
	operands = append(operands, tagIndices...)
	operands = append(operands, numElements)
	return ir.Create(ir.OperationState{
		Loc:      loc,
		Name:     DmaWaitOp,
		Operands: operands,
		Attrs:    []ir.NamedAttr{{Name: "tag_map", Value: ir.AffineMapAttr{Map: tagMap}}},
	})
}

func dmaMap(op *ir.Operation, name string) (affine.Map, bool) {
	attr, ok := op.Attr(name).(ir.AffineMapAttr)
	return attr.Map, ok
}

// dmaStartSegments returns the flat operand offsets of the dst memref, the
// tag memref and the element count.
func dmaStartSegments(op *ir.Operation) (dstPos, tagPos, numPos int, ok bool) {
	srcMap, ok1 := dmaMap(op, "src_map")
	dstMap, ok2 := dmaMap(op, "dst_map")
	tagMap, ok3 := dmaMap(op, "tag_map")
	if !ok1 || !ok2 || !ok3 {
		return 0, 0, 0, false
	}
	dstPos = 1 + srcMap.NumInputs()
	tagPos = dstPos + 1 + dstMap.NumInputs()
	numPos = tagPos + 1 + tagMap.NumInputs()
	return dstPos, tagPos, numPos, true
}

// IsStrided reports whether the dma_start carries a stride pair.
func IsStrided(op *ir.Operation) bool {
	_, _, numPos, ok := dmaStartSegments(op)
	return ok && op.NumOperands() == numPos+3
}

func verifyDmaAccess(op *ir.Operation, what string, memrefPos int, m affine.Map) error {
	mt, ok := op.Operand(memrefPos).Type().(ir.MemRefType)
	if !ok {
		return op.Errorf("%s operand must be of memref type", what)
	}
	if m.NumResults() != mt.Rank() {
		return op.Errorf("%s map produces %d indices for a memref of rank %d",
			what, m.NumResults(), mt.Rank())
	}
	indices := op.Operands()[memrefPos+1 : memrefPos+1+m.NumInputs()]
	return verifyDimAndSymbolOperands(op, indices, m.NumDims(), what+" index")
}

func verifyDmaStart(op *ir.Operation) error {
	if op.NumResults() != 0 {
		return op.Errorf("expects no results")
	}
	srcMap, ok := dmaMap(op, "src_map")
	if !ok {
		return op.Errorf("expects an affine map 'src_map' attribute")
	}
	dstMap, ok := dmaMap(op, "dst_map")
	if !ok {
		return op.Errorf("expects an affine map 'dst_map' attribute")
	}
	tagMap, ok := dmaMap(op, "tag_map")
	if !ok {
		return op.Errorf("expects an affine map 'tag_map' attribute")
	}
	dstPos, tagPos, numPos, _ := dmaStartSegments(op)
	if op.NumOperands() != numPos+1 && op.NumOperands() != numPos+3 {
		return op.Errorf("expects %d operands, or %d with a stride pair, got %d",
			numPos+1, numPos+3, op.NumOperands())
	}
	if err := verifyDmaAccess(op, "source", 0, srcMap); err != nil {
		return err
	}
	if err := verifyDmaAccess(op, "destination", dstPos, dstMap); err != nil {
		return err
	}
	if err := verifyDmaAccess(op, "tag", tagPos, tagMap); err != nil {
		return err
	}
	src := op.Operand(0).Type().(ir.MemRefType)
	dst := op.Operand(dstPos).Type().(ir.MemRefType)
	if src.MemorySpace == dst.MemorySpace {
		return op.Errorf("source and destination must be in different memory spaces")
	}
	for i := numPos; i < op.NumOperands(); i++ {
		if !ir.IsIndex(op.Operand(i).Type()) {
			return op.Errorf("operand %d must be of index type", i)
		}
	}
	return nil
}

func verifyDmaWait(op *ir.Operation) error {
	if op.NumResults() != 0 {
		return op.Errorf("expects no results")
	}
	tagMap, ok := dmaMap(op, "tag_map")
	if !ok {
		return op.Errorf("expects an affine map 'tag_map' attribute")
	}
	if op.NumOperands() != 1+tagMap.NumInputs()+1 {
		return op.Errorf("expects %d operands, got %d", 2+tagMap.NumInputs(), op.NumOperands())
	}
	if err := verifyDmaAccess(op, "tag", 0, tagMap); err != nil {
		return err
	}
	if !ir.IsIndex(op.Operand(op.NumOperands() - 1).Type()) {
		return op.Errorf("element count must be of index type")
	}
	return nil
}

func parseDmaStart(p ir.AsmParser, state *ir.OperationState) error {
	var memrefs [3]ir.Value
	var maps [3]affine.Map
	var indices [3][]ir.Value
	for i := 0; i < 3; i++ {
		v, err := p.ParseOperand(nil)
		if err != nil {
			return err
		}
		m, idx, err := p.ParseAffineExprOperandList("[", "]")
		if err != nil {
			return err
		}
		memrefs[i], maps[i], indices[i] = v, m, idx
		if err := p.ParseToken(","); err != nil {
			return err
		}
	}
	numElements, err := p.ParseOperand(ir.IndexType{})
	if err != nil {
		return err
	}
	var strides []ir.Value
	for p.ConsumeIf(",") {
		v, err := p.ParseOperand(ir.IndexType{})
		if err != nil {
			return err
		}
		strides = append(strides, v)
	}
	if len(strides) != 0 && len(strides) != 2 {
		return p.Errorf("expected a stride and elements per stride")
	}
	if err := p.ParseToken(":"); err != nil {
		return err
	}
	for i := 0; i < 3; i++ {
		t, err := p.ParseType()
		if err != nil {
			return err
		}
		if !ir.TypeEqual(memrefs[i].Type(), t) {
			return p.Errorf("memref operand type %s does not match declared type %s", memrefs[i].Type(), t)
		}
		if i < 2 {
			if err := p.ParseToken(","); err != nil {
				return err
			}
		}
	}
	for i := 0; i < 3; i++ {
		state.AddOperands(memrefs[i])
		state.AddOperands(indices[i]...)
	}
	state.AddOperands(numElements)
	state.AddOperands(strides...)
	state.AddAttribute("src_map", ir.AffineMapAttr{Map: maps[0]})
	state.AddAttribute("dst_map", ir.AffineMapAttr{Map: maps[1]})
	state.AddAttribute("tag_map", ir.AffineMapAttr{Map: maps[2]})
	return nil
}

func parseDmaWait(p ir.AsmParser, state *ir.OperationState) error {
	tag, err := p.ParseOperand(nil)
	if err != nil {
		return err
	}
	m, indices, err := p.ParseAffineExprOperandList("[", "]")
	if err != nil {
		return err
	}
	if err := p.ParseToken(","); err != nil {
		return err
	}
	numElements, err := p.ParseOperand(ir.IndexType{})
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
	if !ir.TypeEqual(tag.Type(), t) {
		return p.Errorf("tag operand type %s does not match declared type %s", tag.Type(), t)
	}
	state.AddOperands(tag)
	state.AddOperands(indices...)
	state.AddOperands(numElements)
	state.AddAttribute("tag_map", ir.AffineMapAttr{Map: m})
	return nil
}

func printDmaAccess(p ir.AsmPrinter, op *ir.Operation, memrefPos int, m affine.Map) {
	p.PrintValue(op.Operand(memrefPos))
	p.Printf("[")
	p.PrintAffineMapOfValues(m, op.Operands()[memrefPos+1:memrefPos+1+m.NumInputs()])
	p.Printf("]")
}

func printDmaStart(p ir.AsmPrinter, op *ir.Operation) {
	srcMap, _ := dmaMap(op, "src_map")
	dstMap, _ := dmaMap(op, "dst_map")
	tagMap, _ := dmaMap(op, "tag_map")
	dstPos, tagPos, numPos, _ := dmaStartSegments(op)

	p.Printf("affine.dma_start ")
	printDmaAccess(p, op, 0, srcMap)
	p.Printf(", ")
	printDmaAccess(p, op, dstPos, dstMap)
	p.Printf(", ")
	printDmaAccess(p, op, tagPos, tagMap)
	p.Printf(", ")
	p.PrintValue(op.Operand(numPos))
	if IsStrided(op) {
		p.Printf(", ")
		p.PrintValue(op.Operand(numPos + 1))
		p.Printf(", ")
		p.PrintValue(op.Operand(numPos + 2))
	}
	p.PrintAttrDict(op.Attrs(), "src_map", "dst_map", "tag_map")
	p.Printf(" : ")
	p.PrintType(op.Operand(0).Type())
	p.Printf(", ")
	p.PrintType(op.Operand(dstPos).Type())
	p.Printf(", ")
	p.PrintType(op.Operand(tagPos).Type())
}

func printDmaWait(p ir.AsmPrinter, op *ir.Operation) {
	tagMap, _ := dmaMap(op, "tag_map")
	p.Printf("affine.dma_wait ")
	printDmaAccess(p, op, 0, tagMap)
	p.Printf(", ")
	p.PrintValue(op.Operand(op.NumOperands() - 1))
	p.PrintAttrDict(op.Attrs(), "tag_map")
	p.Printf(" : ")
	p.PrintType(op.Operand(0).Type())
}
