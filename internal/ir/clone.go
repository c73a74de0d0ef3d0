package ir

// ValueMap records the correspondence between original and cloned values and
// blocks during cloning. Operand references into material not covered by the
// map are left pointing at the originals, which is exactly what cloning a
// nested operation that captures outer values needs.
type ValueMap struct {
	values map[Value]Value
	blocks map[*Block]*Block
}

// NewValueMap returns an empty mapping.
func NewValueMap() *ValueMap {
	return &ValueMap{values: map[Value]Value{}, blocks: map[*Block]*Block{}}
}

// MapValue records that from clones to to.
func (m *ValueMap) MapValue(from, to Value) { m.values[from] = to }

// MapBlock records that from clones to to.
func (m *ValueMap) MapBlock(from, to *Block) { m.blocks[from] = to }

// LookupValue returns the mapped value, or nil when unmapped.
func (m *ValueMap) LookupValue(from Value) Value { return m.values[from] }

// LookupBlock returns the mapped block, or nil when unmapped.
func (m *ValueMap) LookupBlock(from *Block) *Block { return m.blocks[from] }

func (m *ValueMap) valueOrSelf(from Value) Value {
	if to, ok := m.values[from]; ok {
		return to
	}
	return from
}

func (m *ValueMap) blockOrSelf(from *Block) *Block {
	if to, ok := m.blocks[from]; ok {
		return to
	}
	return from
}

// CloneWithoutRegions copies the operation's name, attributes, result types,
// operands and successors, remapping operands and successor blocks through
// mapper, and creates empty regions in place of the original's. The
// original's results are mapped to the clone's.
func (op *Operation) CloneWithoutRegions(mapper *ValueMap) *Operation {
	state := OperationState{
		Loc:        op.loc,
		Name:       op.name,
		Attrs:      append([]NamedAttr(nil), op.attrs...),
		Types:      op.ResultTypes(),
		NumRegions: len(op.regions),
	}
	for _, v := range op.NonSuccessorOperands() {
		state.AddOperands(mapper.valueOrSelf(v))
	}
	for i := range op.successors {
		operands := op.SuccessorOperands(i)
		for j, v := range operands {
			operands[j] = mapper.valueOrSelf(v)
		}
		state.AddSuccessor(mapper.blockOrSelf(op.successors[i].dest), operands)
	}
	clone := Create(state)
	for i, res := range op.results {
		mapper.MapValue(res, clone.results[i])
	}
	return clone
}

// Clone deep-copies the operation including its regions. References to
// values defined outside the cloned subtree are preserved; references to
// values defined inside it are remapped to their copies.
func (op *Operation) Clone(mapper *ValueMap) *Operation {
	clone := op.CloneWithoutRegions(mapper)
	for i, r := range op.regions {
		r.CloneInto(clone.regions[i], mapper)
	}
	return clone
}

// CloneOp is Clone with a fresh mapping, for callers that do not need the
// correspondence afterwards.
func (op *Operation) CloneOp() *Operation {
	return op.Clone(NewValueMap())
}

// CloneInto deep-copies this region's blocks into dest, which must be empty.
// Blocks and arguments are created first so forward branches and operand
// references across blocks resolve to the copies.
func (r *Region) CloneInto(dest *Region, mapper *ValueMap) {
	if !dest.Empty() {
		panic("ir: CloneInto a non-empty region")
	}
	for _, b := range r.blocks {
		nb := NewBlock()
		dest.PushBack(nb)
		mapper.MapBlock(b, nb)
		for _, arg := range b.args {
			mapper.MapValue(arg, nb.AddArgument(arg.Type()))
		}
	}
	for _, b := range r.blocks {
		nb := mapper.LookupBlock(b)
		for op := b.first; op != nil; op = op.next {
			nb.PushBack(op.Clone(mapper))
		}
	}
}
