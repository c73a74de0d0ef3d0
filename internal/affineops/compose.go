package affineops

import (
	"log/slog"

	"github.com/loomlang/loom/internal/affine"
	"github.com/loomlang/loom/internal/ir"
)

// maxComposeDepth bounds producer inlining per normalization pass. One level
// per pass keeps the recursion shallow; FullyComposeMapAndOperands drives
// repeated passes until no producer remains.
const maxComposeDepth = 1

// normalizer rewrites a map and its operands into a normalized space: dim
// operands are deduplicated through a dictionary, producer affine.apply
// operands are inlined, and symbol operands defined by an apply are
// reclassified as trailing dims so inlining can reach them.
//
// The emitted operand order is dims, then the consumer's own surviving
// symbols, then producer-contributed symbols. Map.Compose numbers the
// composed map's symbols the same way, so positions and operands stay
// aligned.
type normalizer struct {
	m affine.Map

	dims   []ir.Value
	dimPos map[ir.Value]int

	ownSyms    []ir.Value
	nestedSyms []ir.Value
}

func newNormalizer(m affine.Map, operands []ir.Value, depth int) *normalizer {
	n := &normalizer{dimPos: map[ir.Value]int{}}
	numDims := m.NumDims()
	numSyms := m.NumSymbols()

	// Reclassify apply-defined symbol operands as trailing dims. A symbol
	// position must stay opaque under composition, so a symbol with a
	// producer becomes a dim first and is re-demoted by canonicalization
	// once the producer is folded in.
	dimOperands := append([]ir.Value(nil), operands[:numDims]...)
	symRepl := make([]affine.Expr, numSyms)
	promoted := 0
	for i := 0; i < numSyms; i++ {
		v := operands[numDims+i]
		if IsApplyResult(v) {
			symRepl[i] = affine.Dim(numDims + promoted)
			dimOperands = append(dimOperands, v)
			promoted++
		} else {
			symRepl[i] = affine.Symbol(len(n.ownSyms))
			n.ownSyms = append(n.ownSyms, v)
		}
	}
	promotedMap := m
	if promoted > 0 {
		promotedMap = m.ReplaceDimsAndSymbols(nil, symRepl, numDims+promoted, len(n.ownSyms))
	}

	exprs := make([]affine.Expr, len(dimOperands))
	recursed := false
	for i, v := range dimOperands {
		if IsApplyResult(v) && depth < maxComposeDepth {
			producer := v.DefiningOp()
			pn := newNormalizer(ApplyMap(producer), producer.Operands(), depth+1)
			exprs[i] = n.renumber(pn)
			recursed = true
			continue
		}
		exprs[i] = affine.Dim(n.renumberOneDim(v))
	}

	// Nothing was inlined or promoted: keep the map and operands as they
	// were rather than churning through an identity composition.
	if !recursed && promoted == 0 {
		n.m = m
		n.dims = append([]ir.Value(nil), operands[:numDims]...)
		n.ownSyms = append([]ir.Value(nil), operands[numDims:]...)
		n.nestedSyms = nil
		return n
	}

	auxiliary := affine.NewMap(len(n.dims), len(n.nestedSyms), exprs)
	n.m = affine.SimplifyMap(promotedMap.Compose(auxiliary))
	return n
}

// renumberOneDim returns the position of v in the dim dictionary, adding it
// on first sight.
func (n *normalizer) renumberOneDim(v ir.Value) int {
	if pos, ok := n.dimPos[v]; ok {
		return pos
	}
	pos := len(n.dims)
	n.dimPos[v] = pos
	n.dims = append(n.dims, v)
	return pos
}

// renumber rewrites a producer's composed result expression into this
// normalizer's space: producer dims go through the dim dictionary, producer
// symbols are appended to the nested symbol list.
func (n *normalizer) renumber(producer *normalizer) affine.Expr {
	dimRepl := make([]affine.Expr, len(producer.dims))
	for i, v := range producer.dims {
		dimRepl[i] = affine.Dim(n.renumberOneDim(v))
	}

	producerSyms := make([]ir.Value, 0, len(producer.ownSyms)+len(producer.nestedSyms))
	producerSyms = append(producerSyms, producer.ownSyms...)
	producerSyms = append(producerSyms, producer.nestedSyms...)
	symRepl := make([]affine.Expr, len(producerSyms))
	for i := range producerSyms {
		symRepl[i] = affine.Symbol(len(n.nestedSyms) + i)
	}
	n.nestedSyms = append(n.nestedSyms, producerSyms...)

	return affine.ReplaceDimsAndSymbols(producer.m.Result(0), dimRepl, symRepl)
}

func (n *normalizer) operands() []ir.Value {
	out := make([]ir.Value, 0, len(n.dims)+len(n.ownSyms)+len(n.nestedSyms))
	out = append(out, n.dims...)
	out = append(out, n.ownSyms...)
	out = append(out, n.nestedSyms...)
	return out
}

// ComposeMapAndOperands inlines one level of producer affine.apply
// operations into the map, returning the rewritten map and operand list.
func ComposeMapAndOperands(m affine.Map, operands []ir.Value) (affine.Map, []ir.Value) {
	n := newNormalizer(m, operands, 0)
	slog.Debug("composed affine map", "from", m.String(), "to", n.m.String())
	return n.m, n.operands()
}

// FullyComposeMapAndOperands repeats composition until no operand is the
// result of an affine.apply. Each pass strips at least one producer level,
// so the loop terminates.
func FullyComposeMapAndOperands(m affine.Map, operands []ir.Value) (affine.Map, []ir.Value) {
	for hasApplyOperand(operands) {
		m, operands = ComposeMapAndOperands(m, operands)
	}
	return m, operands
}

func hasApplyOperand(operands []ir.Value) bool {
	for _, v := range operands {
		if IsApplyResult(v) {
			return true
		}
	}
	return false
}
