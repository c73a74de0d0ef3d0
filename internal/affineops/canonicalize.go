package affineops

import (
	"log/slog"

	"github.com/loomlang/loom/internal/affine"
	"github.com/loomlang/loom/internal/coreops"
	"github.com/loomlang/loom/internal/ir"
)

// canonicalizePromotedSymbols re-demotes dims that qualify as symbols.
// Composition promotes apply-defined symbols to dims to inline their
// producers; once inlined, an operand that is a valid symbol belongs back in
// the symbol section, after the existing symbols.
func canonicalizePromotedSymbols(m affine.Map, operands []ir.Value) (affine.Map, []ir.Value) {
	numDims := m.NumDims()
	if numDims == 0 {
		return m, operands
	}

	var keptDims, promoted []ir.Value
	dimRepl := make([]affine.Expr, numDims)
	for i := 0; i < numDims; i++ {
		v := operands[i]
		if IsValidSymbol(v) {
			dimRepl[i] = affine.Symbol(m.NumSymbols() + len(promoted))
			promoted = append(promoted, v)
		} else {
			dimRepl[i] = affine.Dim(len(keptDims))
			keptDims = append(keptDims, v)
		}
	}
	if len(promoted) == 0 {
		return m, operands
	}

	newOperands := make([]ir.Value, 0, len(operands))
	newOperands = append(newOperands, keptDims...)
	newOperands = append(newOperands, operands[numDims:]...)
	newOperands = append(newOperands, promoted...)
	newMap := m.ReplaceDimsAndSymbols(dimRepl, nil, len(keptDims), m.NumSymbols()+len(promoted))
	return newMap, newOperands
}

// compactMapAndOperands drops operand positions the map never references and
// unifies duplicate operands within the dim section and within the symbol
// section, first occurrence winning.
func compactMapAndOperands(m affine.Map, operands []ir.Value) (affine.Map, []ir.Value) {
	numDims := m.NumDims()
	numSyms := m.NumSymbols()
	usedDim := make([]bool, numDims)
	usedSym := make([]bool, numSyms)
	m.Walk(func(e affine.Expr) {
		switch x := e.(type) {
		case affine.DimExpr:
			usedDim[x.Position] = true
		case affine.SymbolExpr:
			usedSym[x.Position] = true
		}
	})

	remap := func(used []bool, section []ir.Value, pos func(int) affine.Expr) ([]affine.Expr, []ir.Value) {
		repl := make([]affine.Expr, len(section))
		seen := map[ir.Value]int{}
		var kept []ir.Value
		for i, v := range section {
			if !used[i] {
				// Unreferenced; the replacement is never consulted.
				repl[i] = pos(0)
				continue
			}
			at, ok := seen[v]
			if !ok {
				at = len(kept)
				seen[v] = at
				kept = append(kept, v)
			}
			repl[i] = pos(at)
		}
		return repl, kept
	}

	dimRepl, newDims := remap(usedDim, operands[:numDims], func(i int) affine.Expr { return affine.Dim(i) })
	symRepl, newSyms := remap(usedSym, operands[numDims:], func(i int) affine.Expr { return affine.Symbol(i) })

	if len(newDims) == numDims && len(newSyms) == numSyms {
		return m, operands
	}
	newMap := m.ReplaceDimsAndSymbols(dimRepl, symRepl, len(newDims), len(newSyms))
	return newMap, append(newDims, newSyms...)
}

// CanonicalizeMapAndOperands puts a map and its operand list in canonical
// form: symbol-qualifying dims re-demoted, unused positions dropped,
// duplicate operands unified, and like terms collected, so unifying four
// copies of one symbol leaves s0 * 4 rather than a four-term sum.
func CanonicalizeMapAndOperands(m affine.Map, operands []ir.Value) (affine.Map, []ir.Value) {
	m, operands = canonicalizePromotedSymbols(m, operands)
	m, operands = compactMapAndOperands(m, operands)
	return affine.SimplifyMap(m), operands
}

// SimplifyApply fully composes and canonicalizes one affine.apply in place,
// reporting whether anything changed.
func SimplifyApply(op *ir.Operation) bool {
	m := ApplyMap(op)
	operands := op.Operands()

	newMap, newOperands := FullyComposeMapAndOperands(m, operands)
	newMap, newOperands = CanonicalizeMapAndOperands(newMap, newOperands)
	if newMap.Equal(m) && sameValues(newOperands, operands) {
		return false
	}
	op.SetAttr("map", ir.AffineMapAttr{Map: newMap})
	op.SetOperands(newOperands)
	return true
}

// simplifyMemoryMap canonicalizes the access map of a load, store or DMA
// operand segment in place. mapAttr names the attribute, start is the flat
// operand index of the map's first input.
func simplifyMemoryMap(op *ir.Operation, mapAttr string, start int) bool {
	m := op.Attr(mapAttr).(ir.AffineMapAttr).Map
	all := op.Operands()
	operands := all[start : start+m.NumInputs()]

	newMap, newOperands := FullyComposeMapAndOperands(m, operands)
	newMap, newOperands = CanonicalizeMapAndOperands(newMap, newOperands)
	if newMap.Equal(m) && sameValues(newOperands, operands) {
		return false
	}
	rebuilt := make([]ir.Value, 0, len(all)-len(operands)+len(newOperands))
	rebuilt = append(rebuilt, all[:start]...)
	rebuilt = append(rebuilt, newOperands...)
	rebuilt = append(rebuilt, all[start+m.NumInputs():]...)
	op.SetAttr(mapAttr, ir.AffineMapAttr{Map: newMap})
	op.SetOperands(rebuilt)
	return true
}

func sameValues(a, b []ir.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Canonicalize applies every local simplification until none fires:
// composing apply chains, folding constant loop bounds, canonicalizing
// memory access maps, and erasing dead applies. An apply goes dead only
// after its consumer composes it away, so passes repeat to a fixpoint. It
// returns the total number of changes made.
func Canonicalize(root *ir.Operation) int {
	total := 0
	for {
		changed := canonicalizeOnce(root)
		total += changed
		if changed == 0 {
			return total
		}
	}
}

// foldOperation replaces a foldable operation's single result, either with
// an existing value or with a materialized core.constant when the fold
// produced an attribute, then erases the operation. Constants themselves are
// skipped; their Fold hook exists so operand lookup can read their value.
func foldOperation(op *ir.Operation) bool {
	info := op.Info()
	if info == nil || info.Fold == nil || op.NumResults() != 1 {
		return false
	}
	if op.HasTrait(ir.TraitConstant) || op.Block() == nil || op.UseEmpty() {
		return false
	}
	operands := make([]ir.Attribute, op.NumOperands())
	for i, v := range op.Operands() {
		operands[i] = operandConstant(v)
	}
	folded, ok := info.Fold(op, operands)
	if !ok {
		return false
	}
	result := folded.Value
	if result == nil {
		attr, isInt := folded.Attr.(ir.IntegerAttr)
		if !isInt {
			return false
		}
		cst := coreops.NewConstant(op.Loc(), attr.Value, op.Result(0).Type())
		op.Block().InsertBefore(cst, op)
		result = cst.Result(0)
	}
	slog.Debug("folded operation", "op", string(op.Name()))
	op.Result(0).ReplaceAllUsesWith(result)
	op.Erase()
	return true
}

// operandConstant resolves the attribute an operand's defining operation
// folds to, nil when the operand is not a known constant.
func operandConstant(v ir.Value) ir.Attribute {
	def := v.DefiningOp()
	if def == nil {
		return nil
	}
	info := def.Info()
	if info == nil || info.Fold == nil || def.NumOperands() != 0 {
		return nil
	}
	folded, ok := info.Fold(def, nil)
	if !ok {
		return nil
	}
	return folded.Attr
}

func canonicalizeOnce(root *ir.Operation) int {
	changed := 0
	root.Walk(func(op *ir.Operation) {
		if foldOperation(op) {
			changed++
			return
		}
		switch op.Name() {
		case ApplyOp:
			if SimplifyApply(op) {
				changed++
			}
			if op.UseEmpty() && op.Block() != nil {
				op.Erase()
				changed++
			}
		case ForOp:
			if FoldLoopBounds(op) {
				changed++
			}
		case LoadOp:
			if simplifyMemoryMap(op, "map", 1) {
				changed++
			}
		case StoreOp:
			if simplifyMemoryMap(op, "map", 2) {
				changed++
			}
		}
	})
	return changed
}
