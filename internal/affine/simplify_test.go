package affine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimplifyCollectsLikeTerms(t *testing.T) {
	mod2 := Mod(Dim(0), Constant(2))

	tests := []struct {
		name     string
		expr     Expr
		expected Expr
	}{
		{"merge repeated symbol", Add(Add(Add(Symbol(0), Symbol(0)), Symbol(0)), Symbol(0)), Mul(Symbol(0), Constant(4))},
		{"merge coefficients", Add(Mul(Dim(0), Constant(2)), Mul(Dim(0), Constant(3))), Mul(Dim(0), Constant(5))},
		{"cancel to zero", Sub(Dim(0), Dim(0)), Constant(0)},
		{"dims before symbols", Add(Symbol(0), Dim(0)), Add(Dim(0), Symbol(0))},
		{"constant last", Add(Add(Constant(3), Dim(0)), Dim(0)), Add(Mul(Dim(0), Constant(2)), Constant(3))},
		{"merge opaque terms", Add(mod2, mod2), Mul(mod2, Constant(2))},
		{"canonical form untouched", Add(Mul(Dim(0), Constant(2)), Constant(2)), Add(Mul(Dim(0), Constant(2)), Constant(2))},
		{"leaf untouched", Dim(1), Dim(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Simplify(tt.expr))
		})
	}
}

func TestSimplifyIdempotent(t *testing.T) {
	e := Add(Add(Symbol(1), Mul(Dim(0), Constant(3))), Add(Symbol(1), Mod(Dim(1), Constant(4))))
	once := Simplify(e)
	assert.Equal(t, once, Simplify(once))
	assert.Equal(t, "d0 * 3 + s1 * 2 + d1 mod 4", once.(BinaryExpr).String())
}
