package affine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorSimplification(t *testing.T) {
	tests := []struct {
		name     string
		expr     Expr
		expected Expr
	}{
		{"constant fold add", Add(Constant(2), Constant(3)), Constant(5)},
		{"add zero", Add(Dim(0), Constant(0)), Dim(0)},
		{"constant moves right", Add(Constant(4), Dim(0)), Add(Dim(0), Constant(4))},
		{"chained constants merge", Add(Add(Dim(0), Constant(1)), Constant(2)), Add(Dim(0), Constant(3))},
		{"constant fold mul", Mul(Constant(6), Constant(7)), Constant(42)},
		{"mul by one", Mul(Dim(0), Constant(1)), Dim(0)},
		{"mul by zero", Mul(Dim(0), Constant(0)), Constant(0)},
		{"chained factors merge", Mul(Mul(Dim(0), Constant(2)), Constant(3)), Mul(Dim(0), Constant(6))},
		{"sub of self-like constants", Sub(Constant(5), Constant(5)), Constant(0)},
		{"floordiv by one", FloorDiv(Dim(0), Constant(1)), Dim(0)},
		{"floordiv constants", FloorDiv(Constant(7), Constant(2)), Constant(3)},
		{"floordiv negative", FloorDiv(Constant(-7), Constant(2)), Constant(-4)},
		{"ceildiv constants", CeilDiv(Constant(7), Constant(2)), Constant(4)},
		{"ceildiv negative", CeilDiv(Constant(-7), Constant(2)), Constant(-3)},
		{"mod by one", Mod(Dim(0), Constant(1)), Constant(0)},
		{"mod constants", Mod(Constant(7), Constant(3)), Constant(1)},
		{"mod negative stays positive", Mod(Constant(-7), Constant(3)), Constant(2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.expr)
		})
	}
}

func TestStructuralEquality(t *testing.T) {
	a := Add(Dim(0), Symbol(1))
	b := Add(Dim(0), Symbol(1))
	assert.True(t, a == b, "identically built expressions must compare equal")

	c := Add(Dim(0), Symbol(0))
	assert.False(t, a == c)
}

func TestReplaceDimsAndSymbols(t *testing.T) {
	// d0 + s0 with d0 -> d1, s0 -> d2
	e := Add(Dim(0), Symbol(0))
	got := ReplaceDimsAndSymbols(e, []Expr{Dim(1)}, []Expr{Dim(2)})
	assert.Equal(t, Add(Dim(1), Dim(2)), got)

	// Positions past the replacement slices keep their identity.
	e = Add(Dim(3), Symbol(2))
	got = ReplaceDimsAndSymbols(e, []Expr{Dim(9)}, nil)
	assert.Equal(t, e, got)
}

func TestEval(t *testing.T) {
	tests := []struct {
		name     string
		expr     Expr
		dims     []int64
		syms     []int64
		expected int64
	}{
		{"affine combination", Add(Mul(Dim(0), Constant(2)), Symbol(0)), []int64{3}, []int64{4}, 10},
		{"floordiv toward -inf", FloorDiv(Dim(0), Constant(4)), []int64{-9}, nil, -3},
		{"ceildiv toward +inf", CeilDiv(Dim(0), Constant(4)), []int64{9}, nil, 3},
		{"mod non-negative", Mod(Dim(0), Constant(4)), []int64{-9}, nil, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Eval(tt.expr, tt.dims, tt.syms)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEvalErrors(t *testing.T) {
	_, err := Eval(Dim(1), []int64{0}, nil)
	require.Error(t, err)

	_, err = Eval(BinaryExpr{Kind: KindFloorDiv, LHS: Dim(0), RHS: Constant(0)}, []int64{1}, nil)
	require.Error(t, err)
}

func TestIsPureAffine(t *testing.T) {
	assert.True(t, IsPureAffine(Add(Mul(Dim(0), Constant(2)), Symbol(0))))
	assert.True(t, IsPureAffine(FloorDiv(Dim(0), Constant(2))))

	dimTimesDim := BinaryExpr{Kind: KindMul, LHS: Dim(0), RHS: Dim(1)}
	assert.False(t, IsPureAffine(dimTimesDim))

	divBySymbolic := BinaryExpr{Kind: KindFloorDiv, LHS: Dim(0), RHS: Symbol(0)}
	assert.False(t, IsPureAffine(divBySymbolic))
}
