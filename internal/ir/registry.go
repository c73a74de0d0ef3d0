package ir

import (
	"fmt"
	"sync"
)

// Trait is a bit set of structural properties an operation kind opts into.
type Trait uint

const (
	// TraitTerminator marks operations that must appear last in a block
	// and are the only ones allowed to reference successor blocks.
	TraitTerminator Trait = 1 << iota
	// TraitTopLevel marks container operations whose regions host
	// top-level values; blocks directly under them need no terminator.
	TraitTopLevel
	// TraitConstant marks operations producing a compile-time constant
	// held in their "value" attribute.
	TraitConstant
)

// FoldResult is the outcome of folding: either an attribute constant or an
// existing value to replace the result with. Exactly one field is set.
type FoldResult struct {
	Attr  Attribute
	Value Value
}

// OpInfo describes a registered operation kind.
type OpInfo struct {
	Name   OperationName
	Traits Trait

	// Verify checks kind-specific invariants beyond the structural ones.
	Verify func(op *Operation) error

	// Parse builds the operation state from the custom assembly form.
	// Nil means the kind has no custom form and only parses generically.
	Parse func(p AsmParser, state *OperationState) error

	// Print emits the custom assembly form after the result names. Nil
	// means the kind prints generically.
	Print func(p AsmPrinter, op *Operation)

	// Fold attempts to fold the operation given constant attributes for
	// its operands, nil entries for the non-constant ones. Only
	// single-result kinds fold.
	Fold func(op *Operation, operands []Attribute) (FoldResult, bool)
}

var registry = struct {
	sync.RWMutex
	ops map[OperationName]*OpInfo
}{ops: map[OperationName]*OpInfo{}}

// RegisterOperation installs a kind descriptor. Dialect packages call this
// from init; duplicate names panic.
func RegisterOperation(info OpInfo) {
	registry.Lock()
	defer registry.Unlock()
	if _, dup := registry.ops[info.Name]; dup {
		panic(fmt.Sprintf("ir: operation %q registered twice", info.Name))
	}
	copied := info
	registry.ops[info.Name] = &copied
}

// LookupOp returns the descriptor registered under name, or nil.
func LookupOp(name OperationName) *OpInfo {
	registry.RLock()
	defer registry.RUnlock()
	return registry.ops[name]
}

// RegisteredOps returns the registered operation names, unordered.
func RegisteredOps() []OperationName {
	registry.RLock()
	defer registry.RUnlock()
	names := make([]OperationName, 0, len(registry.ops))
	for name := range registry.ops {
		names = append(names, name)
	}
	return names
}

// ConstantIntValue returns the integer constant a value is defined by, if
// its defining operation carries the constant trait with an integer "value"
// attribute.
func ConstantIntValue(v Value) (int64, bool) {
	op := v.DefiningOp()
	if op == nil || !op.HasTrait(TraitConstant) {
		return 0, false
	}
	attr, ok := op.Attr("value").(IntegerAttr)
	if !ok {
		return 0, false
	}
	return attr.Value, true
}
