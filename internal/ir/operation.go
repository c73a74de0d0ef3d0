package ir

import (
	"fmt"
	"strings"
)

// OperationName is a dialect-qualified operation name such as "affine.for".
type OperationName string

// Dialect returns the prefix before the first '.', or "" for a bare name.
func (n OperationName) Dialect() string {
	if i := strings.IndexByte(string(n), '.'); i >= 0 {
		return string(n)[:i]
	}
	return ""
}

// Successor pairs a destination block with the operands forwarded to its
// arguments. Used only while building an operation; the created operation
// stores the operands in its flat operand list.
type Successor struct {
	Dest     *Block
	Operands []Value
}

// OperationState accumulates everything needed to create an operation.
// Parsers and builders fill one in and hand it to Create.
type OperationState struct {
	Loc        Location
	Name       OperationName
	Operands   []Value
	Types      []Type
	Attrs      []NamedAttr
	Successors []Successor
	// NumRegions empty regions are created; entries of Regions, when
	// non-nil, are adopted in place of the corresponding empty region.
	NumRegions int
	Regions    []*Region
}

// AddOperands appends operands.
func (s *OperationState) AddOperands(values ...Value) {
	s.Operands = append(s.Operands, values...)
}

// AddTypes appends result types.
func (s *OperationState) AddTypes(types ...Type) {
	s.Types = append(s.Types, types...)
}

// AddAttribute appends a dictionary entry.
func (s *OperationState) AddAttribute(name string, value Attribute) {
	s.Attrs = append(s.Attrs, NamedAttr{Name: name, Value: value})
}

// AddSuccessor appends a successor with its forwarded operands.
func (s *OperationState) AddSuccessor(dest *Block, operands []Value) {
	s.Successors = append(s.Successors, Successor{Dest: dest, Operands: operands})
}

type successorRecord struct {
	dest        *Block
	numOperands int
}

// Operation is one node of the graph: a named instruction holding operands,
// producing results, carrying attributes, and optionally referencing
// successor blocks and nested regions.
type Operation struct {
	loc     Location
	name    OperationName
	attrs   []NamedAttr
	results []*OpResult

	// operands is the flat list: non-successor operands first, then each
	// successor's operands contiguously in successor order.
	operands   []*Operand
	successors []successorRecord

	regions []*Region

	// Block residency. prev/next thread the block's operation list.
	block      *Block
	prev, next *Operation
	orderIndex int
}

// Create builds a detached operation from the state. The caller inserts it
// into a block afterwards; top-level container operations stay detached.
func Create(state OperationState) *Operation {
	op := &Operation{
		loc:  state.Loc,
		name: state.Name,
	}

	op.attrs = append([]NamedAttr(nil), state.Attrs...)
	sortNamedAttrs(op.attrs)

	op.results = make([]*OpResult, len(state.Types))
	for i, t := range state.Types {
		op.results[i] = &OpResult{valueBase: valueBase{typ: t}, owner: op, index: i}
	}

	total := len(state.Operands)
	for _, s := range state.Successors {
		total += len(s.Operands)
	}
	op.operands = make([]*Operand, 0, total)
	for _, v := range state.Operands {
		op.operands = append(op.operands, newOperand(op, len(op.operands), v))
	}
	for _, s := range state.Successors {
		op.successors = append(op.successors, successorRecord{dest: s.Dest, numOperands: len(s.Operands)})
		for _, v := range s.Operands {
			op.operands = append(op.operands, newOperand(op, len(op.operands), v))
		}
	}

	numRegions := state.NumRegions
	if len(state.Regions) > numRegions {
		numRegions = len(state.Regions)
	}
	op.regions = make([]*Region, numRegions)
	for i := range op.regions {
		var r *Region
		if i < len(state.Regions) && state.Regions[i] != nil {
			r = state.Regions[i]
			if r.owner != nil {
				panic("ir: region already owned by another operation")
			}
		} else {
			r = &Region{}
		}
		r.owner = op
		op.regions[i] = r
	}
	return op
}

// Name returns the dialect-qualified operation name.
func (op *Operation) Name() OperationName { return op.name }

// Loc returns the source location.
func (op *Operation) Loc() Location { return op.loc }

// Block returns the containing block, nil while detached.
func (op *Operation) Block() *Block { return op.block }

// ParentRegion returns the region of the containing block, or nil.
func (op *Operation) ParentRegion() *Region {
	if op.block == nil {
		return nil
	}
	return op.block.parent
}

// ParentOp returns the operation owning the containing region, or nil.
func (op *Operation) ParentOp() *Operation {
	if r := op.ParentRegion(); r != nil {
		return r.owner
	}
	return nil
}

// NextInBlock returns the following operation in the block, or nil.
func (op *Operation) NextInBlock() *Operation { return op.next }

// PrevInBlock returns the preceding operation in the block, or nil.
func (op *Operation) PrevInBlock() *Operation { return op.prev }

// Info returns the registered descriptor for this operation's name, or nil
// for an unregistered operation.
func (op *Operation) Info() *OpInfo { return LookupOp(op.name) }

// HasTrait reports whether the registered descriptor carries the trait.
// Unregistered operations have no traits.
func (op *Operation) HasTrait(t Trait) bool {
	info := op.Info()
	return info != nil && info.Traits&t != 0
}

// IsTerminator reports whether this operation terminates a block.
func (op *Operation) IsTerminator() bool { return op.HasTrait(TraitTerminator) }

// NumOperands returns the flat operand count, successor operands included.
func (op *Operation) NumOperands() int { return len(op.operands) }

// Operand returns the i-th flat operand value.
func (op *Operation) Operand(i int) Value { return op.operands[i].Get() }

// OperandEdge returns the i-th use edge.
func (op *Operation) OperandEdge(i int) *Operand { return op.operands[i] }

// Operands returns a snapshot of all flat operand values.
func (op *Operation) Operands() []Value {
	values := make([]Value, len(op.operands))
	for i, o := range op.operands {
		values[i] = o.Get()
	}
	return values
}

// SetOperand rewires the i-th flat operand.
func (op *Operation) SetOperand(i int, v Value) { op.operands[i].Set(v) }

// SetOperands replaces the whole operand list. Operations with successors
// keep per-successor counts the new list cannot express, so they reject
// wholesale replacement.
func (op *Operation) SetOperands(values []Value) {
	if len(op.successors) > 0 {
		panic("ir: SetOperands on an operation with successors")
	}
	for _, o := range op.operands {
		o.drop()
	}
	op.operands = op.operands[:0]
	for _, v := range values {
		op.operands = append(op.operands, newOperand(op, len(op.operands), v))
	}
}

// NumResults returns the result count.
func (op *Operation) NumResults() int { return len(op.results) }

// Result returns the i-th result.
func (op *Operation) Result(i int) *OpResult { return op.results[i] }

// Results returns the result values.
func (op *Operation) Results() []*OpResult { return op.results }

// ResultValues returns the results widened to Value.
func (op *Operation) ResultValues() []Value {
	values := make([]Value, len(op.results))
	for i, r := range op.results {
		values[i] = r
	}
	return values
}

// ResultTypes returns the result types in order.
func (op *Operation) ResultTypes() []Type {
	types := make([]Type, len(op.results))
	for i, r := range op.results {
		types[i] = r.Type()
	}
	return types
}

// UseEmpty reports whether no result has any use.
func (op *Operation) UseEmpty() bool {
	for _, r := range op.results {
		if !r.UseEmpty() {
			return false
		}
	}
	return true
}

// Attrs returns the sorted attribute dictionary. Callers must not mutate it.
func (op *Operation) Attrs() []NamedAttr { return op.attrs }

// Attr returns the attribute stored under name, or nil.
func (op *Operation) Attr(name string) Attribute {
	if i := findAttr(op.attrs, name); i >= 0 {
		return op.attrs[i].Value
	}
	return nil
}

// SetAttr stores value under name, replacing any existing entry.
func (op *Operation) SetAttr(name string, value Attribute) {
	if i := findAttr(op.attrs, name); i >= 0 {
		op.attrs[i].Value = value
		return
	}
	op.attrs = append(op.attrs, NamedAttr{Name: name, Value: value})
	sortNamedAttrs(op.attrs)
}

// RemoveAttr deletes the entry under name, reporting whether it existed.
func (op *Operation) RemoveAttr(name string) bool {
	i := findAttr(op.attrs, name)
	if i < 0 {
		return false
	}
	op.attrs = append(op.attrs[:i], op.attrs[i+1:]...)
	return true
}

// NumRegions returns the nested region count.
func (op *Operation) NumRegions() int { return len(op.regions) }

// Region returns the i-th nested region.
func (op *Operation) Region(i int) *Region { return op.regions[i] }

// Regions returns the nested regions.
func (op *Operation) Regions() []*Region { return op.regions }

// NumSuccessors returns the successor block count.
func (op *Operation) NumSuccessors() int { return len(op.successors) }

// SuccessorBlock returns the i-th successor block.
func (op *Operation) SuccessorBlock(i int) *Block { return op.successors[i].dest }

// SetSuccessorBlock redirects the i-th successor.
func (op *Operation) SetSuccessorBlock(i int, dest *Block) { op.successors[i].dest = dest }

// NumSuccessorOperands returns the operand count forwarded to successor i.
func (op *Operation) NumSuccessorOperands(i int) int { return op.successors[i].numOperands }

// successorOperandStart returns the flat index of successor i's first
// operand: the non-successor operands come first, then each successor's
// group in order.
func (op *Operation) successorOperandStart(i int) int {
	start := len(op.operands)
	for j := len(op.successors) - 1; j >= i; j-- {
		start -= op.successors[j].numOperands
	}
	return start
}

// SuccessorOperands returns the values forwarded to successor i.
func (op *Operation) SuccessorOperands(i int) []Value {
	start := op.successorOperandStart(i)
	rec := op.successors[i]
	values := make([]Value, rec.numOperands)
	for j := 0; j < rec.numOperands; j++ {
		values[j] = op.operands[start+j].Get()
	}
	return values
}

// NumNonSuccessorOperands returns the count of operands that are not
// forwarded to any successor.
func (op *Operation) NumNonSuccessorOperands() int {
	if len(op.successors) == 0 {
		return len(op.operands)
	}
	return op.successorOperandStart(0)
}

// NonSuccessorOperands returns the operands that are not forwarded to any
// successor.
func (op *Operation) NonSuccessorOperands() []Value {
	n := op.NumNonSuccessorOperands()
	values := make([]Value, n)
	for i := 0; i < n; i++ {
		values[i] = op.operands[i].Get()
	}
	return values
}

// ReplaceUsesOfWith rewires every operand currently holding from to hold to.
func (op *Operation) ReplaceUsesOfWith(from, to Value) {
	for _, o := range op.operands {
		if o.Get() == from {
			o.Set(to)
		}
	}
}

// Walk visits this operation and every operation nested under it in
// post-order: an operation's regions are visited before the operation
// itself. The visited operation may erase itself from the callback.
func (op *Operation) Walk(visit func(*Operation)) {
	for _, r := range op.regions {
		r.Walk(visit)
	}
	visit(op)
}

// MoveBefore unlinks this operation and re-inserts it immediately before
// other, which must be in a block.
func (op *Operation) MoveBefore(other *Operation) {
	if op.block != nil {
		op.block.Remove(op)
	}
	other.block.InsertBefore(op, other)
}

// IsBeforeInBlock reports whether op precedes other in their shared block.
// Both operations must be in the same block. Amortized constant time: the
// block keeps a cached ordering index, recomputed lazily after mutations.
func (op *Operation) IsBeforeInBlock(other *Operation) bool {
	if op.block == nil || op.block != other.block {
		panic("ir: IsBeforeInBlock across blocks")
	}
	op.block.ensureOrder()
	return op.orderIndex < other.orderIndex
}

// Erase unlinks the operation from its block and destroys it. No result may
// have remaining uses.
func (op *Operation) Erase() {
	if op.block != nil {
		op.block.Remove(op)
	}
	op.Destroy()
}

// Destroy tears down a detached operation and everything nested under it in
// two phases: first every use edge in the subtree is severed, then the
// structure is dismantled. Values still used from outside the subtree make
// this panic, mirroring the precondition on Erase.
func (op *Operation) Destroy() {
	if op.block != nil {
		panic("ir: destroying an operation still in a block")
	}
	op.DropAllReferences()
	op.dismantle()
}

// DropAllReferences severs every operand edge of this operation and of every
// operation nested under it, and clears successor references. Values defined
// in the subtree keep their identity; only outgoing references are cut.
func (op *Operation) DropAllReferences() {
	for _, o := range op.operands {
		o.drop()
	}
	for i := range op.successors {
		op.successors[i].dest = nil
	}
	for _, r := range op.regions {
		for _, b := range r.blocks {
			b.dropAllReferences()
		}
	}
}

// DropAllDefinedValueUses severs every use of every value defined in this
// operation's subtree: its results and, recursively, nested block arguments
// and nested results.
func (op *Operation) DropAllDefinedValueUses() {
	for _, res := range op.results {
		res.DropAllUses()
	}
	for _, r := range op.regions {
		for _, b := range r.blocks {
			b.dropAllDefinedValueUses()
		}
	}
}

func (op *Operation) dismantle() {
	for _, res := range op.results {
		if !res.UseEmpty() {
			panic(fmt.Sprintf("ir: destroying '%s' whose result %d still has uses", op.name, res.index))
		}
	}
	for _, r := range op.regions {
		for _, b := range r.blocks {
			b.dismantle()
		}
		r.blocks = nil
		r.owner = nil
	}
	op.regions = nil
	op.operands = nil
	op.successors = nil
}

// Errorf builds a diagnostic prefixed with the operation's location and
// name, the shape every verifier error takes.
func (op *Operation) Errorf(format string, args ...any) error {
	return fmt.Errorf("%s: '%s' op: %s", op.loc, op.name, fmt.Sprintf(format, args...))
}
