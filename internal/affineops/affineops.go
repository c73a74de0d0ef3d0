// Package affineops implements the affine dialect: the apply, for, if, load,
// store and DMA operations whose access functions and bounds are affine maps
// over dimension and symbol operands, plus the composition engine that folds
// chains of applies into single maps.
package affineops

import "github.com/loomlang/loom/internal/ir"

// Operation names registered by this package.
const (
	ApplyOp      ir.OperationName = "affine.apply"
	ForOp        ir.OperationName = "affine.for"
	IfOp         ir.OperationName = "affine.if"
	LoadOp       ir.OperationName = "affine.load"
	StoreOp      ir.OperationName = "affine.store"
	DmaStartOp   ir.OperationName = "affine.dma_start"
	DmaWaitOp    ir.OperationName = "affine.dma_wait"
	TerminatorOp ir.OperationName = "affine.terminator"
)
