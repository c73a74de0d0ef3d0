package ir

// Value is an SSA value: either a result of an operation or an argument of a
// block. Every use of a value is an Operand edge; the edges of one value form
// an intrusive doubly-linked list so use iteration, replacement and removal
// never allocate or scan.
type Value interface {
	// Type returns the static type of the value.
	Type() Type
	// DefiningOp returns the operation producing this value, or nil for a
	// block argument.
	DefiningOp() *Operation
	// UseEmpty reports whether the value has no uses.
	UseEmpty() bool
	// HasOneUse reports whether the value has exactly one use.
	HasOneUse() bool
	// NumUses counts the uses. Linear in the number of uses.
	NumUses() int
	// Uses returns a snapshot of the current use edges, safe to iterate
	// while rewriting them.
	Uses() []*Operand
	// ReplaceAllUsesWith rewires every use of this value to newValue.
	ReplaceAllUsesWith(newValue Value)
	// DropAllUses severs every use edge, leaving the using operations with
	// nil operands. Only teardown paths do this.
	DropAllUses()

	base() *valueBase
}

// valueBase carries the state shared by OpResult and BlockArgument: the type
// and the head of the use list.
type valueBase struct {
	typ      Type
	firstUse *Operand
}

func (v *valueBase) base() *valueBase { return v }

func (v *valueBase) Type() Type { return v.typ }

func (v *valueBase) UseEmpty() bool { return v.firstUse == nil }

func (v *valueBase) HasOneUse() bool {
	return v.firstUse != nil && v.firstUse.nextUse == nil
}

func (v *valueBase) NumUses() int {
	n := 0
	for u := v.firstUse; u != nil; u = u.nextUse {
		n++
	}
	return n
}

func (v *valueBase) Uses() []*Operand {
	var uses []*Operand
	for u := v.firstUse; u != nil; u = u.nextUse {
		uses = append(uses, u)
	}
	return uses
}

func (v *valueBase) ReplaceAllUsesWith(newValue Value) {
	for v.firstUse != nil {
		v.firstUse.Set(newValue)
	}
}

func (v *valueBase) DropAllUses() {
	for v.firstUse != nil {
		v.firstUse.drop()
	}
}

// OpResult is a value produced by an operation.
type OpResult struct {
	valueBase
	owner *Operation
	index int
}

// DefiningOp returns the operation producing this result.
func (r *OpResult) DefiningOp() *Operation { return r.owner }

// ResultNumber returns the position of this result on its operation.
func (r *OpResult) ResultNumber() int { return r.index }

// BlockArgument is a value defined by a block, bound on entry either to a
// successor operand of a branching terminator or, for region entry blocks,
// by the enclosing operation.
type BlockArgument struct {
	valueBase
	owner *Block
	index int
}

// DefiningOp returns nil; block arguments have no defining operation.
func (a *BlockArgument) DefiningOp() *Operation { return nil }

// Owner returns the block defining this argument.
func (a *BlockArgument) Owner() *Block { return a.owner }

// ArgNumber returns the position of this argument on its block.
func (a *BlockArgument) ArgNumber() int { return a.index }

// Operand is one use edge: a slot on an owning operation holding a value.
// prevUse/nextUse thread the edge into the value's use list.
type Operand struct {
	owner *Operation
	index int
	value Value

	prevUse *Operand
	nextUse *Operand
}

// Get returns the value held by this edge, nil after drop.
func (o *Operand) Get() Value { return o.value }

// Owner returns the operation holding this edge.
func (o *Operand) Owner() *Operation { return o.owner }

// OperandNumber returns the flat operand position on the owner.
func (o *Operand) OperandNumber() int { return o.index }

// Set rewires the edge to a new value, maintaining both use lists.
func (o *Operand) Set(v Value) {
	o.unlink()
	o.value = v
	o.link()
}

func (o *Operand) drop() {
	o.unlink()
	o.value = nil
}

func (o *Operand) link() {
	if o.value == nil {
		return
	}
	head := o.value.base()
	o.prevUse = nil
	o.nextUse = head.firstUse
	if head.firstUse != nil {
		head.firstUse.prevUse = o
	}
	head.firstUse = o
}

func (o *Operand) unlink() {
	if o.value == nil {
		return
	}
	head := o.value.base()
	if o.prevUse != nil {
		o.prevUse.nextUse = o.nextUse
	} else {
		head.firstUse = o.nextUse
	}
	if o.nextUse != nil {
		o.nextUse.prevUse = o.prevUse
	}
	o.prevUse, o.nextUse = nil, nil
}

func newOperand(owner *Operation, index int, v Value) *Operand {
	o := &Operand{owner: owner, index: index, value: v}
	o.link()
	return o
}
