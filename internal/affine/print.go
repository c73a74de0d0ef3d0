package affine

import (
	"fmt"
	"strconv"
	"strings"
)

// Operator precedence levels for printing. Additions bind loosest.
const (
	precAdd = iota + 1
	precMul
	precAtom
)

func defaultDimName(i int) string { return "d" + strconv.Itoa(i) }
func defaultSymName(i int) string { return "s" + strconv.Itoa(i) }

func (e DimExpr) String() string      { return defaultDimName(e.Position) }
func (e SymbolExpr) String() string   { return defaultSymName(e.Position) }
func (e ConstantExpr) String() string { return strconv.FormatInt(e.Value, 10) }

func (e BinaryExpr) String() string {
	return ExprString(e, defaultDimName, defaultSymName)
}

// ExprString renders an expression with caller-chosen names for dimension and
// symbol positions. The printer and the custom operation forms use it to
// substitute SSA value names into memory-access subscripts.
func ExprString(e Expr, dimName, symName func(int) string) string {
	var b strings.Builder
	printExpr(&b, e, dimName, symName, precAdd)
	return b.String()
}

func printExpr(b *strings.Builder, e Expr, dimName, symName func(int) string, enclosing int) {
	switch x := e.(type) {
	case DimExpr:
		b.WriteString(dimName(x.Position))
	case SymbolExpr:
		b.WriteString(symName(x.Position))
	case ConstantExpr:
		b.WriteString(strconv.FormatInt(x.Value, 10))
	case BinaryExpr:
		prec := precMul
		if x.Kind == KindAdd {
			prec = precAdd
		}
		if enclosing > prec {
			b.WriteByte('(')
		}
		if x.Kind == KindAdd {
			printSum(b, x, dimName, symName)
		} else {
			printExpr(b, x.LHS, dimName, symName, prec)
			b.WriteByte(' ')
			b.WriteString(x.Kind.String())
			b.WriteByte(' ')
			printExpr(b, x.RHS, dimName, symName, prec+1)
		}
		if enclosing > prec {
			b.WriteByte(')')
		}
	default:
		panic(fmt.Sprintf("affine: unknown expression %T", e))
	}
}

// printSum renders additions, turning "+ (-c)" and "+ x*(-1)" back into
// subtraction so parsed text round-trips.
func printSum(b *strings.Builder, e BinaryExpr, dimName, symName func(int) string) {
	printExpr(b, e.LHS, dimName, symName, precAdd)

	if c, ok := e.RHS.(ConstantExpr); ok && c.Value < 0 {
		b.WriteString(" - ")
		b.WriteString(strconv.FormatInt(-c.Value, 10))
		return
	}
	if m, ok := e.RHS.(BinaryExpr); ok && m.Kind == KindMul {
		if c, ok := m.RHS.(ConstantExpr); ok && c.Value == -1 {
			b.WriteString(" - ")
			printExpr(b, m.LHS, dimName, symName, precMul)
			return
		}
	}
	b.WriteString(" + ")
	printExpr(b, e.RHS, dimName, symName, precMul)
}

// String renders the map in its textual form, e.g. (d0, d1)[s0] -> (d0 + s0).
func (m Map) String() string {
	var b strings.Builder
	writeInputList(&b, m.numDims, m.numSymbols)
	b.WriteString(" -> (")
	for i, res := range m.results {
		if i > 0 {
			b.WriteString(", ")
		}
		printExpr(&b, res, defaultDimName, defaultSymName, precAdd)
	}
	b.WriteByte(')')
	return b.String()
}

// String renders the set in its textual form, e.g.
// (d0)[s0] : (d0 - s0 >= 0, d0 == 0).
func (s Set) String() string {
	var b strings.Builder
	writeInputList(&b, s.numDims, s.numSymbols)
	b.WriteString(" : (")
	for i, c := range s.constraints {
		if i > 0 {
			b.WriteString(", ")
		}
		printExpr(&b, c, defaultDimName, defaultSymName, precAdd)
		if s.eqFlags[i] {
			b.WriteString(" == 0")
		} else {
			b.WriteString(" >= 0")
		}
	}
	b.WriteByte(')')
	return b.String()
}

func writeInputList(b *strings.Builder, numDims, numSymbols int) {
	b.WriteByte('(')
	for i := 0; i < numDims; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(defaultDimName(i))
	}
	b.WriteByte(')')
	if numSymbols > 0 {
		b.WriteByte('[')
		for i := 0; i < numSymbols; i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(defaultSymName(i))
		}
		b.WriteByte(']')
	}
}
