package ir

// Block is an ordered list of operations ending, in verified IR, with a
// terminator. A block defines arguments: values bound on entry, either from
// a predecessor's successor operands or by the operation enclosing the
// region.
type Block struct {
	parent *Region
	args   []*BlockArgument

	first, last *Operation
	numOps      int

	// orderValid guards the cached orderIndex on the member operations.
	orderValid bool
}

// NewBlock returns an empty detached block.
func NewBlock() *Block { return &Block{} }

// Parent returns the containing region, nil while detached.
func (b *Block) Parent() *Region { return b.parent }

// ParentOp returns the operation owning the containing region, or nil.
func (b *Block) ParentOp() *Operation {
	if b.parent == nil {
		return nil
	}
	return b.parent.owner
}

// AddArgument appends a new argument of the given type and returns it.
func (b *Block) AddArgument(t Type) *BlockArgument {
	arg := &BlockArgument{valueBase: valueBase{typ: t}, owner: b, index: len(b.args)}
	b.args = append(b.args, arg)
	return arg
}

// NumArguments returns the argument count.
func (b *Block) NumArguments() int { return len(b.args) }

// Argument returns the i-th argument.
func (b *Block) Argument(i int) *BlockArgument { return b.args[i] }

// Arguments returns the arguments in order.
func (b *Block) Arguments() []*BlockArgument { return b.args }

// ArgumentTypes returns the argument types in order.
func (b *Block) ArgumentTypes() []Type {
	types := make([]Type, len(b.args))
	for i, a := range b.args {
		types[i] = a.Type()
	}
	return types
}

// Empty reports whether the block holds no operations.
func (b *Block) Empty() bool { return b.first == nil }

// Len returns the operation count.
func (b *Block) Len() int { return b.numOps }

// Front returns the first operation, or nil.
func (b *Block) Front() *Operation { return b.first }

// Back returns the last operation, or nil.
func (b *Block) Back() *Operation { return b.last }

// Terminator returns the trailing operation when it carries the terminator
// trait, else nil.
func (b *Block) Terminator() *Operation {
	if b.last != nil && b.last.IsTerminator() {
		return b.last
	}
	return nil
}

// Ops returns a snapshot of the operation list, safe to iterate while
// erasing or moving members.
func (b *Block) Ops() []*Operation {
	ops := make([]*Operation, 0, b.numOps)
	for op := b.first; op != nil; op = op.next {
		ops = append(ops, op)
	}
	return ops
}

// PushBack appends a detached operation.
func (b *Block) PushBack(op *Operation) {
	b.adopt(op)
	op.prev = b.last
	if b.last != nil {
		b.last.next = op
	} else {
		b.first = op
	}
	b.last = op
	b.noteInsert()
}

// PushFront prepends a detached operation.
func (b *Block) PushFront(op *Operation) {
	b.adopt(op)
	op.next = b.first
	if b.first != nil {
		b.first.prev = op
	} else {
		b.last = op
	}
	b.first = op
	b.noteInsert()
}

// InsertBefore inserts a detached operation immediately before an existing
// member.
func (b *Block) InsertBefore(op, before *Operation) {
	if before.block != b {
		panic("ir: insertion point not in this block")
	}
	b.adopt(op)
	op.prev = before.prev
	op.next = before
	if before.prev != nil {
		before.prev.next = op
	} else {
		b.first = op
	}
	before.prev = op
	b.noteInsert()
}

// Remove unlinks a member operation without destroying it.
func (b *Block) Remove(op *Operation) {
	if op.block != b {
		panic("ir: removing operation from the wrong block")
	}
	if op.prev != nil {
		op.prev.next = op.next
	} else {
		b.first = op.next
	}
	if op.next != nil {
		op.next.prev = op.prev
	} else {
		b.last = op.prev
	}
	op.prev, op.next = nil, nil
	op.block = nil
	b.numOps--
	b.orderValid = false
}

func (b *Block) adopt(op *Operation) {
	if op.block != nil {
		panic("ir: operation already in a block")
	}
	op.block = b
	b.numOps++
}

func (b *Block) noteInsert() {
	b.orderValid = false
}

// ensureOrder recomputes the cached position index of every member if any
// mutation invalidated it.
func (b *Block) ensureOrder() {
	if b.orderValid {
		return
	}
	i := 0
	for op := b.first; op != nil; op = op.next {
		op.orderIndex = i
		i++
	}
	b.orderValid = true
}

// Walk visits every operation in the block in post-order, snapshotting the
// list first so visited operations may erase themselves.
func (b *Block) Walk(visit func(*Operation)) {
	for _, op := range b.Ops() {
		op.Walk(visit)
	}
}

func (b *Block) dropAllReferences() {
	for op := b.first; op != nil; op = op.next {
		op.DropAllReferences()
	}
}

func (b *Block) dropAllDefinedValueUses() {
	for _, arg := range b.args {
		arg.DropAllUses()
	}
	for op := b.first; op != nil; op = op.next {
		op.DropAllDefinedValueUses()
	}
}

func (b *Block) dismantle() {
	for _, arg := range b.args {
		if !arg.UseEmpty() {
			panic("ir: destroying a block whose argument still has uses")
		}
	}
	for op := b.first; op != nil; {
		next := op.next
		op.block, op.prev, op.next = nil, nil, nil
		op.dismantle()
		op = next
	}
	b.first, b.last, b.numOps = nil, nil, 0
	b.args = nil
	b.parent = nil
}
