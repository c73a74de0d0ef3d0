package affine

import "fmt"

// ExprKind identifies a binary affine expression operator.
type ExprKind int

const (
	// KindAdd is binary addition.
	KindAdd ExprKind = iota
	// KindMul is binary multiplication. An expression stays affine only if
	// at least one factor is a constant; the constructors do not enforce
	// this, verification of the enclosing operation does.
	KindMul
	// KindMod is the remainder with the sign of the (positive) divisor.
	KindMod
	// KindFloorDiv rounds the quotient toward negative infinity.
	KindFloorDiv
	// KindCeilDiv rounds the quotient toward positive infinity.
	KindCeilDiv
)

func (k ExprKind) String() string {
	switch k {
	case KindAdd:
		return "+"
	case KindMul:
		return "*"
	case KindMod:
		return "mod"
	case KindFloorDiv:
		return "floordiv"
	case KindCeilDiv:
		return "ceildiv"
	}
	return fmt.Sprintf("ExprKind(%d)", int(k))
}

// Expr is a sealed interface over the affine expression variants. Only
// DimExpr, SymbolExpr, ConstantExpr and BinaryExpr implement it. All variants
// are comparable value types; == is structural equality.
type Expr interface {
	fmt.Stringer
	isAffineExpr()
}

// DimExpr references the dimension input at Position.
type DimExpr struct{ Position int }

func (DimExpr) isAffineExpr() {}

// SymbolExpr references the symbol input at Position.
type SymbolExpr struct{ Position int }

func (SymbolExpr) isAffineExpr() {}

// ConstantExpr is an integer literal.
type ConstantExpr struct{ Value int64 }

func (ConstantExpr) isAffineExpr() {}

// BinaryExpr combines two sub-expressions with an ExprKind operator.
// Construct through Add, Mul, Mod, FloorDiv or CeilDiv so that the
// construction-level simplifications apply.
type BinaryExpr struct {
	Kind     ExprKind
	LHS, RHS Expr
}

func (BinaryExpr) isAffineExpr() {}

// Dim returns the dimension expression at the given position.
func Dim(position int) DimExpr { return DimExpr{Position: position} }

// Symbol returns the symbol expression at the given position.
func Symbol(position int) SymbolExpr { return SymbolExpr{Position: position} }

// Constant returns the constant expression with the given value.
func Constant(value int64) ConstantExpr { return ConstantExpr{Value: value} }

// Add builds lhs + rhs, folding constants and applying additive identities.
func Add(lhs, rhs Expr) Expr {
	lc, lConst := lhs.(ConstantExpr)
	rc, rConst := rhs.(ConstantExpr)
	if lConst && rConst {
		return Constant(lc.Value + rc.Value)
	}
	// Canonicalize the constant to the right.
	if lConst {
		lhs, rhs = rhs, lhs
		rc, rConst = lc, true
	}
	if rConst {
		if rc.Value == 0 {
			return lhs
		}
		// (x + c1) + c2 -> x + (c1 + c2)
		if lb, ok := lhs.(BinaryExpr); ok && lb.Kind == KindAdd {
			if ic, ok := lb.RHS.(ConstantExpr); ok {
				return Add(lb.LHS, Constant(ic.Value+rc.Value))
			}
		}
	}
	// x + (y + z) -> (x + y) + z, keeping sums left-leaning so substitution
	// results print without redundant parentheses.
	if rb, ok := rhs.(BinaryExpr); ok && rb.Kind == KindAdd {
		return Add(Add(lhs, rb.LHS), rb.RHS)
	}
	return BinaryExpr{Kind: KindAdd, LHS: lhs, RHS: rhs}
}

// Sub builds lhs - rhs as lhs + rhs*(-1).
func Sub(lhs, rhs Expr) Expr {
	return Add(lhs, Mul(rhs, Constant(-1)))
}

// Mul builds lhs * rhs, folding constants and applying multiplicative
// identities.
func Mul(lhs, rhs Expr) Expr {
	lc, lConst := lhs.(ConstantExpr)
	rc, rConst := rhs.(ConstantExpr)
	if lConst && rConst {
		return Constant(lc.Value * rc.Value)
	}
	if lConst {
		lhs, rhs = rhs, lhs
		rc, rConst = lc, true
	}
	if rConst {
		switch rc.Value {
		case 0:
			return Constant(0)
		case 1:
			return lhs
		}
		// (x * c1) * c2 -> x * (c1 * c2)
		if lb, ok := lhs.(BinaryExpr); ok && lb.Kind == KindMul {
			if ic, ok := lb.RHS.(ConstantExpr); ok {
				return Mul(lb.LHS, Constant(ic.Value*rc.Value))
			}
		}
		// (x + y) * c -> x * c + y * c, keeping composed expressions in
		// sum-of-products form.
		if lb, ok := lhs.(BinaryExpr); ok && lb.Kind == KindAdd {
			return Add(Mul(lb.LHS, rhs), Mul(lb.RHS, rhs))
		}
	}
	return BinaryExpr{Kind: KindMul, LHS: lhs, RHS: rhs}
}

// FloorDiv builds lhs floordiv rhs. Folding happens only for a positive
// constant divisor; anything else is an expected unfoldable state kept
// symbolic.
func FloorDiv(lhs, rhs Expr) Expr {
	rc, rConst := rhs.(ConstantExpr)
	if rConst && rc.Value > 0 {
		if rc.Value == 1 {
			return lhs
		}
		if lc, ok := lhs.(ConstantExpr); ok {
			return Constant(floorDiv(lc.Value, rc.Value))
		}
	}
	return BinaryExpr{Kind: KindFloorDiv, LHS: lhs, RHS: rhs}
}

// CeilDiv builds lhs ceildiv rhs, folding like FloorDiv.
func CeilDiv(lhs, rhs Expr) Expr {
	rc, rConst := rhs.(ConstantExpr)
	if rConst && rc.Value > 0 {
		if rc.Value == 1 {
			return lhs
		}
		if lc, ok := lhs.(ConstantExpr); ok {
			return Constant(ceilDiv(lc.Value, rc.Value))
		}
	}
	return BinaryExpr{Kind: KindCeilDiv, LHS: lhs, RHS: rhs}
}

// Mod builds lhs mod rhs. The result is non-negative for a positive divisor.
func Mod(lhs, rhs Expr) Expr {
	rc, rConst := rhs.(ConstantExpr)
	if rConst && rc.Value > 0 {
		if rc.Value == 1 {
			return Constant(0)
		}
		if lc, ok := lhs.(ConstantExpr); ok {
			return Constant(lc.Value - rc.Value*floorDiv(lc.Value, rc.Value))
		}
	}
	return BinaryExpr{Kind: KindMod, LHS: lhs, RHS: rhs}
}

// Binary builds a binary expression of the given kind through the matching
// simplifying constructor.
func Binary(kind ExprKind, lhs, rhs Expr) Expr {
	switch kind {
	case KindAdd:
		return Add(lhs, rhs)
	case KindMul:
		return Mul(lhs, rhs)
	case KindMod:
		return Mod(lhs, rhs)
	case KindFloorDiv:
		return FloorDiv(lhs, rhs)
	case KindCeilDiv:
		return CeilDiv(lhs, rhs)
	}
	panic(fmt.Sprintf("affine: unknown expression kind %d", int(kind)))
}

// ReplaceDimsAndSymbols substitutes dimension and symbol references by
// position. A nil replacement slice, or a position beyond the slice, or a nil
// entry keeps the original reference. The result is re-simplified.
func ReplaceDimsAndSymbols(e Expr, dimRepl, symRepl []Expr) Expr {
	switch x := e.(type) {
	case DimExpr:
		if x.Position < len(dimRepl) && dimRepl[x.Position] != nil {
			return dimRepl[x.Position]
		}
		return x
	case SymbolExpr:
		if x.Position < len(symRepl) && symRepl[x.Position] != nil {
			return symRepl[x.Position]
		}
		return x
	case ConstantExpr:
		return x
	case BinaryExpr:
		return Binary(x.Kind,
			ReplaceDimsAndSymbols(x.LHS, dimRepl, symRepl),
			ReplaceDimsAndSymbols(x.RHS, dimRepl, symRepl))
	}
	panic(fmt.Sprintf("affine: unknown expression %T", e))
}

// Compose substitutes the map's result expressions for the expression's
// dimension references. Symbol references are left untouched; the composition
// engine concatenates symbol spaces explicitly before calling this.
func Compose(e Expr, m Map) Expr {
	return ReplaceDimsAndSymbols(e, m.results, nil)
}

// Walk visits e and every sub-expression in pre-order.
func Walk(e Expr, visit func(Expr)) {
	visit(e)
	if b, ok := e.(BinaryExpr); ok {
		Walk(b.LHS, visit)
		Walk(b.RHS, visit)
	}
}

// Eval evaluates the expression with the given dimension and symbol bindings.
// It fails on references past the bound inputs and on division or remainder
// by a non-positive constant, matching the semantics of FloorDiv, CeilDiv
// and Mod.
func Eval(e Expr, dims, syms []int64) (int64, error) {
	switch x := e.(type) {
	case ConstantExpr:
		return x.Value, nil
	case DimExpr:
		if x.Position >= len(dims) {
			return 0, fmt.Errorf("dimension d%d is not bound", x.Position)
		}
		return dims[x.Position], nil
	case SymbolExpr:
		if x.Position >= len(syms) {
			return 0, fmt.Errorf("symbol s%d is not bound", x.Position)
		}
		return syms[x.Position], nil
	case BinaryExpr:
		lhs, err := Eval(x.LHS, dims, syms)
		if err != nil {
			return 0, err
		}
		rhs, err := Eval(x.RHS, dims, syms)
		if err != nil {
			return 0, err
		}
		switch x.Kind {
		case KindAdd:
			return lhs + rhs, nil
		case KindMul:
			return lhs * rhs, nil
		case KindFloorDiv:
			if rhs <= 0 {
				return 0, fmt.Errorf("floordiv by non-positive value %d", rhs)
			}
			return floorDiv(lhs, rhs), nil
		case KindCeilDiv:
			if rhs <= 0 {
				return 0, fmt.Errorf("ceildiv by non-positive value %d", rhs)
			}
			return ceilDiv(lhs, rhs), nil
		case KindMod:
			if rhs <= 0 {
				return 0, fmt.Errorf("mod by non-positive value %d", rhs)
			}
			return lhs - rhs*floorDiv(lhs, rhs), nil
		}
	}
	return 0, fmt.Errorf("unknown expression %T", e)
}

// IsPureAffine reports whether the expression is affine in the strict sense:
// multiplication only by constants, division and remainder only by constants.
func IsPureAffine(e Expr) bool {
	b, ok := e.(BinaryExpr)
	if !ok {
		return true
	}
	if !IsPureAffine(b.LHS) || !IsPureAffine(b.RHS) {
		return false
	}
	switch b.Kind {
	case KindAdd:
		return true
	case KindMul:
		_, lConst := b.LHS.(ConstantExpr)
		_, rConst := b.RHS.(ConstantExpr)
		return lConst || rConst
	default:
		_, rConst := b.RHS.(ConstantExpr)
		return rConst
	}
}

// floorDiv rounds toward negative infinity, unlike Go's / operator which
// truncates toward zero.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func ceilDiv(a, b int64) int64 {
	return -floorDiv(-a, b)
}
