package affineops

import (
	"github.com/loomlang/loom/internal/affine"
	"github.com/loomlang/loom/internal/ir"
)

func init() {
	ir.RegisterOperation(ir.OpInfo{
		Name:   ForOp,
		Verify: verifyFor,
		Parse:  parseFor,
		Print:  printFor,
	})
}

// NewFor builds an affine.for loop. The lower bound is the maximum over the
// lower map's results, the upper bound the minimum over the upper map's
// results; iteration runs from the lower bound inclusive to the upper bound
// exclusive in increments of step. The body is created with its induction
// variable and an implicit terminator.
func NewFor(loc ir.Location, lbOperands []ir.Value, lbMap affine.Map,
	ubOperands []ir.Value, ubMap affine.Map, step int64) *ir.Operation {
	if len(lbOperands) != lbMap.NumInputs() || len(ubOperands) != ubMap.NumInputs() {
		panic("affineops: bound operand count does not match bound map")
	}

	body := ir.NewBlock()
	body.AddArgument(ir.IndexType{})
	body.PushBack(NewTerminator(loc))
	region := ir.NewRegion()
	region.PushBack(body)

	operands := make([]ir.Value, 0, len(lbOperands)+len(ubOperands))
	operands = append(operands, lbOperands...)
	operands = append(operands, ubOperands...)
	return ir.Create(ir.OperationState{
		Loc:      loc,
		Name:     ForOp,
		Operands: operands,
		Attrs: []ir.NamedAttr{
			{Name: "lower_bound", Value: ir.AffineMapAttr{Map: lbMap}},
			{Name: "upper_bound", Value: ir.AffineMapAttr{Map: ubMap}},
			{Name: "step", Value: ir.IntegerAttr{Value: step}},
		},
		Regions: []*ir.Region{region},
	})
}

// NewConstantFor builds a loop with constant bounds and the given step.
func NewConstantFor(loc ir.Location, lb, ub, step int64) *ir.Operation {
	return NewFor(loc, nil, affine.ConstantMap(lb), nil, affine.ConstantMap(ub), step)
}

// ForBody returns the loop body block.
func ForBody(op *ir.Operation) *ir.Block { return op.Region(0).Front() }

// ForInductionVar returns the loop induction variable.
func ForInductionVar(op *ir.Operation) *ir.BlockArgument {
	return ForBody(op).Argument(0)
}

// ForInductionVarOwner returns the affine.for whose induction variable v is,
// or nil.
func ForInductionVarOwner(v ir.Value) *ir.Operation {
	arg, ok := v.(*ir.BlockArgument)
	if !ok {
		return nil
	}
	owner := arg.Owner().ParentOp()
	if owner == nil || owner.Name() != ForOp || arg.ArgNumber() != 0 {
		return nil
	}
	return owner
}

// ForStep returns the loop step.
func ForStep(op *ir.Operation) int64 {
	return op.Attr("step").(ir.IntegerAttr).Value
}

// SetForStep replaces the loop step.
func SetForStep(op *ir.Operation, step int64) {
	op.SetAttr("step", ir.IntegerAttr{Value: step})
}

// ForLowerBoundMap returns the lower bound map.
func ForLowerBoundMap(op *ir.Operation) affine.Map {
	return op.Attr("lower_bound").(ir.AffineMapAttr).Map
}

// ForUpperBoundMap returns the upper bound map.
func ForUpperBoundMap(op *ir.Operation) affine.Map {
	return op.Attr("upper_bound").(ir.AffineMapAttr).Map
}

// ForLowerBoundOperands returns the operands feeding the lower bound map.
func ForLowerBoundOperands(op *ir.Operation) []ir.Value {
	return op.Operands()[:ForLowerBoundMap(op).NumInputs()]
}

// ForUpperBoundOperands returns the operands feeding the upper bound map.
func ForUpperBoundOperands(op *ir.Operation) []ir.Value {
	return op.Operands()[ForLowerBoundMap(op).NumInputs():]
}

// SetForLowerBound replaces the lower bound map and its operands.
func SetForLowerBound(op *ir.Operation, operands []ir.Value, m affine.Map) {
	if len(operands) != m.NumInputs() {
		panic("affineops: bound operand count does not match bound map")
	}
	rebuilt := make([]ir.Value, 0, len(operands)+len(ForUpperBoundOperands(op)))
	rebuilt = append(rebuilt, operands...)
	rebuilt = append(rebuilt, ForUpperBoundOperands(op)...)
	op.SetAttr("lower_bound", ir.AffineMapAttr{Map: m})
	op.SetOperands(rebuilt)
}

// SetForUpperBound replaces the upper bound map and its operands.
func SetForUpperBound(op *ir.Operation, operands []ir.Value, m affine.Map) {
	if len(operands) != m.NumInputs() {
		panic("affineops: bound operand count does not match bound map")
	}
	rebuilt := make([]ir.Value, 0, len(ForLowerBoundOperands(op))+len(operands))
	rebuilt = append(rebuilt, ForLowerBoundOperands(op)...)
	rebuilt = append(rebuilt, operands...)
	op.SetAttr("upper_bound", ir.AffineMapAttr{Map: m})
	op.SetOperands(rebuilt)
}

// HasConstantLowerBound reports whether the lower bound is a single
// constant.
func HasConstantLowerBound(op *ir.Operation) bool {
	return ForLowerBoundMap(op).IsSingleConstant()
}

// HasConstantUpperBound reports whether the upper bound is a single
// constant.
func HasConstantUpperBound(op *ir.Operation) bool {
	return ForUpperBoundMap(op).IsSingleConstant()
}

// ConstantLowerBound returns the constant lower bound value.
func ConstantLowerBound(op *ir.Operation) int64 {
	return ForLowerBoundMap(op).SingleConstantResult()
}

// ConstantUpperBound returns the constant upper bound value.
func ConstantUpperBound(op *ir.Operation) int64 {
	return ForUpperBoundMap(op).SingleConstantResult()
}

func verifyFor(op *ir.Operation) error {
	if op.NumResults() != 0 {
		return op.Errorf("expects no results")
	}
	lb, ok := op.Attr("lower_bound").(ir.AffineMapAttr)
	if !ok {
		return op.Errorf("expects an affine map 'lower_bound' attribute")
	}
	ub, ok := op.Attr("upper_bound").(ir.AffineMapAttr)
	if !ok {
		return op.Errorf("expects an affine map 'upper_bound' attribute")
	}
	step, ok := op.Attr("step").(ir.IntegerAttr)
	if !ok {
		return op.Errorf("expects an integer 'step' attribute")
	}
	if step.Value < 1 {
		return op.Errorf("step must be a positive constant, got %d", step.Value)
	}
	if lb.Map.NumResults() < 1 || ub.Map.NumResults() < 1 {
		return op.Errorf("bound maps must produce at least one result")
	}
	if op.NumOperands() != lb.Map.NumInputs()+ub.Map.NumInputs() {
		return op.Errorf("expects %d bound operands, got %d",
			lb.Map.NumInputs()+ub.Map.NumInputs(), op.NumOperands())
	}
	operands := op.Operands()
	if err := verifyDimAndSymbolOperands(op, operands[:lb.Map.NumInputs()], lb.Map.NumDims(), "lower bound"); err != nil {
		return err
	}
	if err := verifyDimAndSymbolOperands(op, operands[lb.Map.NumInputs():], ub.Map.NumDims(), "upper bound"); err != nil {
		return err
	}
	if op.NumRegions() != 1 || op.Region(0).NumBlocks() != 1 {
		return op.Errorf("expects a body of exactly one block")
	}
	body := ForBody(op)
	if body.NumArguments() != 1 || !ir.IsIndex(body.Argument(0).Type()) {
		return op.Errorf("body must declare exactly one induction variable of index type")
	}
	if term := body.Terminator(); term == nil || term.Name() != TerminatorOp {
		return op.Errorf("body must end with %s", TerminatorOp)
	}
	return nil
}

// FoldLoopBounds replaces each bound whose operands all fold to constants by
// a single constant bound: the maximum of the folded results for the lower
// bound, the minimum for the upper. Bounds with any symbolic operand are
// left alone.
func FoldLoopBounds(op *ir.Operation) bool {
	fold := func(m affine.Map, operands []ir.Value, takeMax bool) (int64, bool) {
		if m.IsSingleConstant() && len(operands) == 0 {
			return 0, false
		}
		values := make([]int64, len(operands))
		for i, v := range operands {
			c, ok := ir.ConstantIntValue(v)
			if !ok {
				return 0, false
			}
			values[i] = c
		}
		folded, err := m.ConstantFold(values)
		if err != nil || len(folded) == 0 {
			return 0, false
		}
		best := folded[0]
		for _, v := range folded[1:] {
			if takeMax && v > best || !takeMax && v < best {
				best = v
			}
		}
		return best, true
	}

	changed := false
	if v, ok := fold(ForLowerBoundMap(op), ForLowerBoundOperands(op), true); ok {
		SetForLowerBound(op, nil, affine.ConstantMap(v))
		changed = true
	}
	if v, ok := fold(ForUpperBoundMap(op), ForUpperBoundOperands(op), false); ok {
		SetForUpperBound(op, nil, affine.ConstantMap(v))
		changed = true
	}
	return changed
}

func parseFor(p ir.AsmParser, state *ir.OperationState) error {
	ivName, err := p.ParseValueName()
	if err != nil {
		return err
	}
	if err := p.ParseToken("="); err != nil {
		return err
	}
	lbMap, lbOperands, err := parseBound(p, true)
	if err != nil {
		return err
	}
	if err := p.ParseKeyword("to"); err != nil {
		return err
	}
	ubMap, ubOperands, err := parseBound(p, false)
	if err != nil {
		return err
	}
	step := int64(1)
	if p.ConsumeKeywordIf("step") {
		if step, err = p.ParseInt(); err != nil {
			return err
		}
	}
	region, err := p.ParseRegion([]string{ivName}, []ir.Type{ir.IndexType{}})
	if err != nil {
		return err
	}
	ensureTerminator(region, state.Loc)

	state.AddOperands(lbOperands...)
	state.AddOperands(ubOperands...)
	state.AddAttribute("lower_bound", ir.AffineMapAttr{Map: lbMap})
	state.AddAttribute("upper_bound", ir.AffineMapAttr{Map: ubMap})
	state.AddAttribute("step", ir.IntegerAttr{Value: step})
	state.Regions = []*ir.Region{region}
	state.NumRegions = 1
	return nil
}

// parseBound handles the three bound spellings: a bare integer, a single
// symbol operand, or an optional min/max keyword with an inline map applied
// to a dim and symbol list.
func parseBound(p ir.AsmParser, isLower bool) (affine.Map, []ir.Value, error) {
	if isLower {
		p.ConsumeKeywordIf("max")
	} else {
		p.ConsumeKeywordIf("min")
	}
	if m, ok, err := p.ParseOptionalAffineMap(); err != nil {
		return affine.Map{}, nil, err
	} else if ok {
		operands, numDims, err := p.ParseDimAndSymbolList()
		if err != nil {
			return affine.Map{}, nil, err
		}
		if numDims != m.NumDims() || len(operands) != m.NumInputs() {
			return affine.Map{}, nil, p.Errorf("bound operand counts do not match the bound map")
		}
		return m, operands, nil
	}
	if v, ok, err := p.ParseOptionalOperand(ir.IndexType{}); err != nil {
		return affine.Map{}, nil, err
	} else if ok {
		return affine.SymbolIdentityMap(), []ir.Value{v}, nil
	}
	c, err := p.ParseInt()
	if err != nil {
		return affine.Map{}, nil, err
	}
	return affine.ConstantMap(c), nil, nil
}

// ensureTerminator appends the implicit terminator to each body block that
// lacks one.
func ensureTerminator(region *ir.Region, loc ir.Location) {
	if region.Empty() {
		region.PushBack(ir.NewBlock())
	}
	for _, b := range region.Blocks() {
		if b.Terminator() == nil {
			b.PushBack(NewTerminator(loc))
		}
	}
}

func printFor(p ir.AsmPrinter, op *ir.Operation) {
	p.Printf("affine.for ")
	p.PrintValue(ForInductionVar(op))
	p.Printf(" = ")
	printBound(p, ForLowerBoundMap(op), ForLowerBoundOperands(op), "max")
	p.Printf(" to ")
	printBound(p, ForUpperBoundMap(op), ForUpperBoundOperands(op), "min")
	if step := ForStep(op); step != 1 {
		p.Printf(" step %d", step)
	}
	p.Printf(" ")
	p.PrintRegion(op.Region(0), false, false)
	p.PrintAttrDict(op.Attrs(), "lower_bound", "upper_bound", "step")
}

func printBound(p ir.AsmPrinter, m affine.Map, operands []ir.Value, minMax string) {
	if m.NumResults() == 1 {
		if m.IsSingleConstant() {
			p.Printf("%d", m.SingleConstantResult())
			return
		}
		if len(operands) == 1 && m.Equal(affine.SymbolIdentityMap()) {
			p.PrintValue(operands[0])
			return
		}
	} else {
		p.Printf("%s ", minMax)
	}
	p.PrintAttribute(ir.AffineMapAttr{Map: m})
	p.PrintDimAndSymbolList(operands, m.NumDims())
}
