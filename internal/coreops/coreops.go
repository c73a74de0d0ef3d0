// Package coreops registers the builtin dialect: the module container that
// hosts top-level IR, and the core memory and constant operations the affine
// dialect builds on.
package coreops

import (
	"github.com/loomlang/loom/internal/ir"
)

// Operation names registered by this package.
const (
	ModuleOp   ir.OperationName = "module"
	ConstantOp ir.OperationName = "core.constant"
	DimOp      ir.OperationName = "core.dim"
	AllocOp    ir.OperationName = "core.alloc"
)

func init() {
	ir.RegisterOperation(ir.OpInfo{
		Name:   ModuleOp,
		Traits: ir.TraitTopLevel,
		Verify: verifyModule,
		Parse:  parseModule,
		Print:  printModule,
	})
	ir.RegisterOperation(ir.OpInfo{
		Name:   ConstantOp,
		Traits: ir.TraitConstant,
		Verify: verifyConstant,
		Parse:  parseConstant,
		Print:  printConstant,
		Fold:   foldConstant,
	})
	ir.RegisterOperation(ir.OpInfo{
		Name:   DimOp,
		Verify: verifyDim,
		Parse:  parseDim,
		Print:  printDim,
		Fold:   foldDim,
	})
	ir.RegisterOperation(ir.OpInfo{
		Name:   AllocOp,
		Verify: verifyAlloc,
		Parse:  parseAlloc,
		Print:  printAlloc,
	})
}

// NewModule builds an empty module with a single entry block.
func NewModule(loc ir.Location) *ir.Operation {
	region := ir.NewRegion()
	region.PushBack(ir.NewBlock())
	return ir.Create(ir.OperationState{
		Loc:        loc,
		Name:       ModuleOp,
		NumRegions: 1,
		Regions:    []*ir.Region{region},
	})
}

// ModuleBody returns the module's single block.
func ModuleBody(module *ir.Operation) *ir.Block {
	return module.Region(0).Front()
}

func verifyModule(op *ir.Operation) error {
	if op.NumOperands() != 0 || op.NumResults() != 0 {
		return op.Errorf("expects no operands and no results")
	}
	if op.NumRegions() != 1 || op.Region(0).NumBlocks() != 1 {
		return op.Errorf("expects a single region with a single block")
	}
	if op.Region(0).Front().NumArguments() != 0 {
		return op.Errorf("expects a body without arguments")
	}
	return nil
}

func parseModule(p ir.AsmParser, state *ir.OperationState) error {
	region, err := p.ParseRegion(nil, nil)
	if err != nil {
		return err
	}
	if region.Empty() {
		region.PushBack(ir.NewBlock())
	}
	state.Regions = []*ir.Region{region}
	state.NumRegions = 1
	return nil
}

func printModule(p ir.AsmPrinter, op *ir.Operation) {
	p.Printf("module ")
	p.PrintRegion(op.Region(0), false, true)
	p.PrintAttrDict(op.Attrs())
}
