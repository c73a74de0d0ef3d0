package affine

import "sort"

// Simplify rebuilds the expression through the simplifying constructors and
// collects like terms: sums are flattened, coefficients on the same
// dimension, symbol or opaque subexpression merge, and the terms come out
// ordered as dimensions, symbols, opaque terms, constant. Returns a
// structurally equal expression when nothing simplifies, so Simplify is
// idempotent.
func Simplify(e Expr) Expr {
	var s termSum
	s.collect(rebuild(e), 1)
	return s.build()
}

// rebuild reruns the constructor-level simplifications bottom-up.
func rebuild(e Expr) Expr {
	b, ok := e.(BinaryExpr)
	if !ok {
		return e
	}
	return Binary(b.Kind, rebuild(b.LHS), rebuild(b.RHS))
}

// termSum is a sum of coefficient-scaled atoms plus a constant offset. Atoms
// are dimensions, symbols, and the subexpressions addition cannot see
// through: mod, floordiv, ceildiv and semi-affine products.
type termSum struct {
	atoms  []Expr
	coeff  map[Expr]int64
	offset int64
}

func (s *termSum) add(atom Expr, scale int64) {
	if s.coeff == nil {
		s.coeff = map[Expr]int64{}
	}
	if _, seen := s.coeff[atom]; !seen {
		s.atoms = append(s.atoms, atom)
	}
	s.coeff[atom] += scale
}

func (s *termSum) collect(e Expr, scale int64) {
	switch x := e.(type) {
	case ConstantExpr:
		s.offset += scale * x.Value
	case BinaryExpr:
		switch x.Kind {
		case KindAdd:
			s.collect(x.LHS, scale)
			s.collect(x.RHS, scale)
			return
		case KindMul:
			if c, ok := x.RHS.(ConstantExpr); ok {
				s.collect(x.LHS, scale*c.Value)
				return
			}
			if c, ok := x.LHS.(ConstantExpr); ok {
				s.collect(x.RHS, scale*c.Value)
				return
			}
		}
		// Opaque term; its operands still simplify independently.
		s.add(Binary(x.Kind, Simplify(x.LHS), Simplify(x.RHS)), scale)
	default:
		s.add(e, scale)
	}
}

// atomOrder ranks atoms for the output ordering. Opaque terms share a class
// and keep their first-appearance order under the stable sort.
func atomOrder(e Expr) (class, pos int) {
	switch x := e.(type) {
	case DimExpr:
		return 0, x.Position
	case SymbolExpr:
		return 1, x.Position
	default:
		return 2, 0
	}
}

func (s *termSum) build() Expr {
	ordered := append([]Expr(nil), s.atoms...)
	sort.SliceStable(ordered, func(i, j int) bool {
		ci, pi := atomOrder(ordered[i])
		cj, pj := atomOrder(ordered[j])
		if ci != cj {
			return ci < cj
		}
		return pi < pj
	})

	var out Expr
	for _, atom := range ordered {
		c := s.coeff[atom]
		if c == 0 {
			continue
		}
		term := atom
		if c != 1 {
			term = Mul(atom, Constant(c))
		}
		if out == nil {
			out = term
		} else {
			out = Add(out, term)
		}
	}
	if out == nil {
		return Constant(s.offset)
	}
	if s.offset != 0 {
		out = Add(out, Constant(s.offset))
	}
	return out
}
