package affineops

import (
	"github.com/loomlang/loom/internal/coreops"
	"github.com/loomlang/loom/internal/ir"
)

// IsTopLevelValue reports whether the value is defined directly under a
// top-level container: a result of an operation in the container's body, or
// an argument of the body block itself.
func IsTopLevelValue(v ir.Value) bool {
	if arg, ok := v.(*ir.BlockArgument); ok {
		owner := arg.Owner().ParentOp()
		return owner != nil && owner.HasTrait(ir.TraitTopLevel)
	}
	parent := v.DefiningOp().ParentOp()
	return parent != nil && parent.HasTrait(ir.TraitTopLevel)
}

// IsValidDim reports whether the value may bind a dimension position of an
// affine map. Any index-typed block argument qualifies, loop induction
// variables included; so does anything qualifying as a symbol, an apply over
// valid dims, and a dimension query on a top-level memref.
func IsValidDim(v ir.Value) bool {
	if !ir.IsIndex(v.Type()) {
		return false
	}
	op := v.DefiningOp()
	if op == nil {
		return true
	}
	if IsTopLevelValue(v) || op.HasTrait(ir.TraitConstant) {
		return true
	}
	switch op.Name() {
	case ApplyOp:
		for _, operand := range op.Operands() {
			if !IsValidDim(operand) {
				return false
			}
		}
		return true
	case coreops.DimOp:
		return IsTopLevelValue(op.Operand(0))
	}
	return false
}

// IsValidSymbol reports whether the value may bind a symbol position: a
// constant, a top-level definition, an apply over valid symbols, or a
// dimension query on a top-level memref. Block arguments qualify only when
// the block itself is top level.
func IsValidSymbol(v ir.Value) bool {
	if !ir.IsIndex(v.Type()) {
		return false
	}
	op := v.DefiningOp()
	if op == nil {
		return IsTopLevelValue(v)
	}
	if IsTopLevelValue(v) || op.HasTrait(ir.TraitConstant) {
		return true
	}
	switch op.Name() {
	case ApplyOp:
		for _, operand := range op.Operands() {
			if !IsValidSymbol(operand) {
				return false
			}
		}
		return true
	case coreops.DimOp:
		return IsTopLevelValue(op.Operand(0))
	}
	return false
}

// verifyDimAndSymbolOperands checks that the first numDims operands are
// valid dimensions and the rest valid symbols.
func verifyDimAndSymbolOperands(op *ir.Operation, operands []ir.Value, numDims int, what string) error {
	for i, v := range operands {
		if !ir.IsIndex(v.Type()) {
			return op.Errorf("%s operand %d must be of index type", what, i)
		}
		if i < numDims {
			if !IsValidDim(v) {
				return op.Errorf("%s operand %d is not a valid dimension", what, i)
			}
		} else if !IsValidSymbol(v) {
			return op.Errorf("%s operand %d is not a valid symbol", what, i)
		}
	}
	return nil
}
