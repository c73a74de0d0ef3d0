package affine

import "fmt"

// Set is an integer set: a conjunction of affine constraints over dimension
// and symbol inputs. Each constraint is an expression compared against zero,
// either as an equality (expr == 0) or an inequality (expr >= 0).
type Set struct {
	numDims     int
	numSymbols  int
	constraints []Expr
	eqFlags     []bool
}

// NewSet builds an integer set. constraints[i] is an equality when
// eqFlags[i] is true, otherwise a >= 0 inequality. The two slices must have
// equal length.
func NewSet(numDims, numSymbols int, constraints []Expr, eqFlags []bool) Set {
	if len(constraints) != len(eqFlags) {
		panic(fmt.Sprintf("affine: %d constraints with %d equality flags", len(constraints), len(eqFlags)))
	}
	return Set{numDims: numDims, numSymbols: numSymbols, constraints: constraints, eqFlags: eqFlags}
}

// NumDims returns the number of dimension inputs.
func (s Set) NumDims() int { return s.numDims }

// NumSymbols returns the number of symbol inputs.
func (s Set) NumSymbols() int { return s.numSymbols }

// NumInputs returns the total input count, dimensions before symbols.
func (s Set) NumInputs() int { return s.numDims + s.numSymbols }

// NumConstraints returns the number of constraints.
func (s Set) NumConstraints() int { return len(s.constraints) }

// Constraint returns the i-th constraint expression.
func (s Set) Constraint(i int) Expr { return s.constraints[i] }

// IsEq reports whether the i-th constraint is an equality.
func (s Set) IsEq(i int) bool { return s.eqFlags[i] }

// Equal reports structural equality of two sets.
func (s Set) Equal(other Set) bool {
	if s.numDims != other.numDims || s.numSymbols != other.numSymbols || len(s.constraints) != len(other.constraints) {
		return false
	}
	for i := range s.constraints {
		if s.constraints[i] != other.constraints[i] || s.eqFlags[i] != other.eqFlags[i] {
			return false
		}
	}
	return true
}

// Walk visits every expression node of every constraint.
func (s Set) Walk(visit func(Expr)) {
	for _, c := range s.constraints {
		Walk(c, visit)
	}
}

// Holds evaluates the conjunction with all inputs bound to constants.
func (s Set) Holds(operands []int64) (bool, error) {
	if len(operands) != s.NumInputs() {
		return false, fmt.Errorf("expected %d constant operands, got %d", s.NumInputs(), len(operands))
	}
	dims := operands[:s.numDims]
	syms := operands[s.numDims:]
	for i, c := range s.constraints {
		v, err := Eval(c, dims, syms)
		if err != nil {
			return false, fmt.Errorf("constraint %d: %w", i, err)
		}
		if s.eqFlags[i] {
			if v != 0 {
				return false, nil
			}
		} else if v < 0 {
			return false, nil
		}
	}
	return true, nil
}
