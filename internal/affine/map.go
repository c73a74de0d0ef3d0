package affine

import "fmt"

// Map is a function from numbered dimension and symbol inputs to one or more
// affine result expressions. The zero value is the empty map with no inputs
// and no results.
type Map struct {
	numDims    int
	numSymbols int
	results    []Expr
}

// NewMap builds a map from input counts and result expressions. It panics if
// a result references an input past the declared counts; that is a programmer
// error on the same tier as a malformed operation construction.
func NewMap(numDims, numSymbols int, results []Expr) Map {
	for _, res := range results {
		Walk(res, func(e Expr) {
			switch x := e.(type) {
			case DimExpr:
				if x.Position >= numDims {
					panic(fmt.Sprintf("affine: map result references d%d but map has %d dims", x.Position, numDims))
				}
			case SymbolExpr:
				if x.Position >= numSymbols {
					panic(fmt.Sprintf("affine: map result references s%d but map has %d symbols", x.Position, numSymbols))
				}
			}
		})
	}
	return Map{numDims: numDims, numSymbols: numSymbols, results: results}
}

// ConstantMap returns the zero-input map () -> (value).
func ConstantMap(value int64) Map {
	return Map{results: []Expr{Constant(value)}}
}

// MultiDimIdentityMap returns (d0, ..., dN-1) -> (d0, ..., dN-1).
func MultiDimIdentityMap(rank int) Map {
	results := make([]Expr, rank)
	for i := range results {
		results[i] = Dim(i)
	}
	return Map{numDims: rank, results: results}
}

// SymbolIdentityMap returns ()[s0] -> (s0), the storage-optimized form used
// for single-operand loop bounds.
func SymbolIdentityMap() Map {
	return Map{numSymbols: 1, results: []Expr{Symbol(0)}}
}

// NumDims returns the number of dimension inputs.
func (m Map) NumDims() int { return m.numDims }

// NumSymbols returns the number of symbol inputs.
func (m Map) NumSymbols() int { return m.numSymbols }

// NumInputs returns the total input count, dimensions before symbols.
func (m Map) NumInputs() int { return m.numDims + m.numSymbols }

// NumResults returns the number of result expressions.
func (m Map) NumResults() int { return len(m.results) }

// Result returns the i-th result expression.
func (m Map) Result(i int) Expr { return m.results[i] }

// Results returns the result expressions. The slice must not be mutated.
func (m Map) Results() []Expr { return m.results }

// IsIdentity reports whether the map is the multi-dimensional identity over
// its dimension inputs with no symbols.
func (m Map) IsIdentity() bool {
	if m.numSymbols != 0 || len(m.results) != m.numDims {
		return false
	}
	for i, res := range m.results {
		if res != (DimExpr{Position: i}) {
			return false
		}
	}
	return true
}

// IsSingleConstant reports whether the map has exactly one result and that
// result is a constant.
func (m Map) IsSingleConstant() bool {
	if len(m.results) != 1 {
		return false
	}
	_, ok := m.results[0].(ConstantExpr)
	return ok
}

// SingleConstantResult returns the value of the single constant result. It
// panics unless IsSingleConstant.
func (m Map) SingleConstantResult() int64 {
	return m.results[0].(ConstantExpr).Value
}

// Walk visits every expression node of every result.
func (m Map) Walk(visit func(Expr)) {
	for _, res := range m.results {
		Walk(res, visit)
	}
}

// ReplaceDimsAndSymbols returns a map over the new input counts with every
// dimension and symbol reference substituted positionally.
func (m Map) ReplaceDimsAndSymbols(dimRepl, symRepl []Expr, numDims, numSymbols int) Map {
	results := make([]Expr, len(m.results))
	for i, res := range m.results {
		results[i] = ReplaceDimsAndSymbols(res, dimRepl, symRepl)
	}
	return Map{numDims: numDims, numSymbols: numSymbols, results: results}
}

// Compose returns the functional composition m ∘ other: the result feeds
// other's results into m's dimension inputs. other's result count must equal
// m's dimension count. The composed map has other's dimensions; its symbol
// list is m's symbols in positions 0..m.NumSymbols()-1 followed by other's
// symbols. Composition always concatenates symbol spaces because two symbol
// inputs carry no relationship to each other; collapsing aliased symbols is
// the composition engine's job, not the algebra's.
func (m Map) Compose(other Map) Map {
	if m.numDims != other.NumResults() {
		panic(fmt.Sprintf("affine: cannot compose map of %d dims with map of %d results",
			m.numDims, other.NumResults()))
	}
	numDims := other.NumDims()
	numSymbols := m.numSymbols + other.NumSymbols()

	// Shift other's symbols past m's.
	otherSyms := make([]Expr, other.NumSymbols())
	for i := range otherSyms {
		otherSyms[i] = Symbol(m.numSymbols + i)
	}
	shifted := other.ReplaceDimsAndSymbols(nil, otherSyms, numDims, numSymbols)

	results := make([]Expr, len(m.results))
	for i, res := range m.results {
		results[i] = Simplify(Compose(res, shifted))
	}
	return Map{numDims: numDims, numSymbols: numSymbols, results: results}
}

// Equal reports structural equality. Expressions compare with == after
// constructor simplification, so no deep walk is needed.
func (m Map) Equal(other Map) bool {
	if m.numDims != other.numDims || m.numSymbols != other.numSymbols || len(m.results) != len(other.results) {
		return false
	}
	for i := range m.results {
		if m.results[i] != other.results[i] {
			return false
		}
	}
	return true
}

// SimplifyMap re-simplifies every result expression.
func SimplifyMap(m Map) Map {
	results := make([]Expr, len(m.results))
	for i, res := range m.results {
		results[i] = Simplify(res)
	}
	return Map{numDims: m.numDims, numSymbols: m.numSymbols, results: results}
}

// ConstantFold evaluates every result with all inputs bound to the given
// constants, dimensions before symbols. It fails unless exactly NumInputs
// values are supplied; a caller holding non-constant operands keeps the
// symbolic form instead.
func (m Map) ConstantFold(operands []int64) ([]int64, error) {
	if len(operands) != m.NumInputs() {
		return nil, fmt.Errorf("expected %d constant operands, got %d", m.NumInputs(), len(operands))
	}
	dims := operands[:m.numDims]
	syms := operands[m.numDims:]
	folded := make([]int64, len(m.results))
	for i, res := range m.results {
		v, err := Eval(res, dims, syms)
		if err != nil {
			return nil, fmt.Errorf("result %d: %w", i, err)
		}
		folded[i] = v
	}
	return folded, nil
}
