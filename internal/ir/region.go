package ir

// Region is an ordered list of blocks nested under an operation. The first
// block is the entry block; its arguments are the values the enclosing
// operation binds on entry.
type Region struct {
	owner  *Operation
	blocks []*Block
}

// NewRegion returns an empty detached region, ready to be filled and handed
// to Create through OperationState.Regions.
func NewRegion() *Region { return &Region{} }

// Op returns the operation owning this region, nil while detached.
func (r *Region) Op() *Operation { return r.owner }

// Empty reports whether the region has no blocks.
func (r *Region) Empty() bool { return len(r.blocks) == 0 }

// NumBlocks returns the block count.
func (r *Region) NumBlocks() int { return len(r.blocks) }

// Block returns the i-th block.
func (r *Region) Block(i int) *Block { return r.blocks[i] }

// Blocks returns the blocks in order. Callers must not mutate the slice.
func (r *Region) Blocks() []*Block { return r.blocks }

// Front returns the entry block, or nil.
func (r *Region) Front() *Block {
	if len(r.blocks) == 0 {
		return nil
	}
	return r.blocks[0]
}

// PushBack appends a detached block.
func (r *Region) PushBack(b *Block) {
	if b.parent != nil {
		panic("ir: block already in a region")
	}
	b.parent = r
	r.blocks = append(r.blocks, b)
}

// Remove unlinks a member block without destroying it.
func (r *Region) Remove(b *Block) {
	for i, member := range r.blocks {
		if member == b {
			r.blocks = append(r.blocks[:i], r.blocks[i+1:]...)
			b.parent = nil
			return
		}
	}
	panic("ir: removing block from the wrong region")
}

// ContainsBlock reports whether b is a member of this region.
func (r *Region) ContainsBlock(b *Block) bool {
	return b != nil && b.parent == r
}

// TakeBody moves every block out of other into this region, leaving other
// empty. The receiving region must be empty.
func (r *Region) TakeBody(other *Region) {
	if len(r.blocks) != 0 {
		panic("ir: TakeBody into a non-empty region")
	}
	r.blocks = other.blocks
	other.blocks = nil
	for _, b := range r.blocks {
		b.parent = r
	}
}

// Walk visits every operation in the region in post-order.
func (r *Region) Walk(visit func(*Operation)) {
	for _, b := range r.blocks {
		b.Walk(visit)
	}
}
