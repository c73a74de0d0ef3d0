package ir

import "github.com/hashicorp/go-multierror"

// Verify checks the structural invariants of op and everything nested under
// it, then the registered kind-specific invariants. All failing operations
// are reported together; within one operation the first failure wins.
func Verify(root *Operation) error {
	var result *multierror.Error
	root.Walk(func(op *Operation) {
		if err := verifyOp(op); err != nil {
			result = multierror.Append(result, err)
		}
	})
	return result.ErrorOrNil()
}

func verifyOp(op *Operation) error {
	if err := verifySuccessors(op); err != nil {
		return err
	}
	if op.IsTerminator() {
		if op.block == nil {
			return op.Errorf("terminator must be in a block")
		}
		if op.block.Back() != op {
			return op.Errorf("terminator must be the last operation in its block")
		}
	}
	for _, r := range op.regions {
		for _, b := range r.blocks {
			if err := verifyBlock(op, b); err != nil {
				return err
			}
		}
	}
	if info := op.Info(); info != nil && info.Verify != nil {
		return info.Verify(op)
	}
	return nil
}

// verifyBlock checks terminator placement. Blocks directly under a
// top-level container need no trailing terminator.
func verifyBlock(owner *Operation, b *Block) error {
	for op := b.first; op != nil; op = op.next {
		if op.IsTerminator() && op.next != nil {
			return op.Errorf("terminator may not be followed by other operations")
		}
	}
	if owner.HasTrait(TraitTopLevel) {
		return nil
	}
	if b.Empty() {
		return owner.Errorf("block must not be empty")
	}
	if !b.last.IsTerminator() {
		return b.last.Errorf("block must end with a terminator operation")
	}
	return nil
}

func verifySuccessors(op *Operation) error {
	if len(op.successors) == 0 {
		return nil
	}
	if !op.IsTerminator() {
		return op.Errorf("only terminators may have successors")
	}
	region := op.ParentRegion()
	for i := range op.successors {
		dest := op.successors[i].dest
		if dest == nil {
			return op.Errorf("successor %d has no destination", i)
		}
		if region == nil || dest.parent != region {
			return op.Errorf("successor %d is not in the same region", i)
		}
		operands := op.SuccessorOperands(i)
		if len(operands) != dest.NumArguments() {
			return op.Errorf("successor %d expects %d operands, got %d",
				i, dest.NumArguments(), len(operands))
		}
		for j, v := range operands {
			if !TypeEqual(v.Type(), dest.Argument(j).Type()) {
				return op.Errorf("successor %d operand %d has type %s, block argument is %s",
					i, j, v.Type(), dest.Argument(j).Type())
			}
		}
	}
	return nil
}
