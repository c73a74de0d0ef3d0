// Package affine implements the symbolic algebra underlying the affine
// dialect: integer-linear expressions over numbered dimension and symbol
// inputs, multi-result affine maps, and integer sets (conjunctions of affine
// constraints).
//
// All types in this package are immutable values. Expressions are built
// through constructors that simplify on the fly, so two expressions that are
// algebraically identical after construction-level simplification compare
// equal with ==. The package has no dependency on the IR packages; internal/ir
// depends on it for attribute storage.
//
// Dimension inputs (d0, d1, ...) vary per dynamic instance, typically bound
// to loop induction variables. Symbol inputs (s0, s1, ...) are fixed for the
// scope in which a map is used. The distinction matters to the composition
// engine in internal/affineops; this package treats both as opaque positions.
package affine
