package ir

import "github.com/loomlang/loom/internal/affine"

// AsmPrinter is the surface custom Print hooks write through. The printer
// behind it owns value naming, so hooks never see raw names.
type AsmPrinter interface {
	// Printf writes literal syntax.
	Printf(format string, args ...any)
	// PrintValue writes the assigned name of a value, e.g. %3.
	PrintValue(v Value)
	// PrintOperands writes a comma-separated value list.
	PrintOperands(values []Value)
	// PrintType writes a type.
	PrintType(t Type)
	// PrintAttribute writes an attribute literal.
	PrintAttribute(a Attribute)
	// PrintAttrDict writes the dictionary as " {k = v, ...}", omitting the
	// elided names and writing nothing when no entries remain.
	PrintAttrDict(attrs []NamedAttr, elided ...string)
	// PrintDimAndSymbolList writes "(dims)[symbols]", the symbol bracket
	// only when symbols are present.
	PrintDimAndSymbolList(operands []Value, numDims int)
	// PrintAffineMapOfValues writes the map's result expressions with
	// operand names substituted for dimensions and symbols, e.g.
	// "%i + 1, %j" for subscript lists.
	PrintAffineMapOfValues(m affine.Map, operands []Value)
	// PrintRegion writes a brace-delimited region body. Entry block
	// arguments are written only when requested; custom forms that bind
	// them themselves, like loops, suppress them. Trailing block
	// terminators are suppressed when printBlockTerminators is false,
	// for bodies whose terminator is implicit.
	PrintRegion(r *Region, printEntryBlockArgs, printBlockTerminators bool)
}

// AsmParser is the surface custom Parse hooks read through. Operand
// references resolve against the enclosing parser state immediately, so
// hooks receive values, not names.
type AsmParser interface {
	// Errorf builds an error located at the current token.
	Errorf(format string, args ...any) error

	// ParseToken consumes the exact punctuation or keyword, failing
	// otherwise.
	ParseToken(text string) error
	// ConsumeIf consumes the token when it matches and reports whether
	// it did.
	ConsumeIf(text string) bool
	// ParseKeyword consumes the identifier keyword.
	ParseKeyword(keyword string) error
	// ConsumeKeywordIf consumes the identifier when it matches.
	ConsumeKeywordIf(keyword string) bool

	// ParseInt consumes an integer literal, optionally negative.
	ParseInt() (int64, error)
	// ParseType consumes a type.
	ParseType() (Type, error)
	// ParseOperand consumes a value reference (%name) and resolves it,
	// checking it against the expected type when non-nil.
	ParseOperand(expected Type) (Value, error)
	// ParseOptionalOperand is ParseOperand when the next token is a value
	// reference; otherwise it consumes nothing and reports false.
	ParseOptionalOperand(expected Type) (Value, bool, error)
	// ParseValueName consumes a value reference without resolving it,
	// for names a custom form binds itself, like loop induction
	// variables.
	ParseValueName() (string, error)

	// ParseAffineMap consumes an inline affine map.
	ParseAffineMap() (affine.Map, error)
	// ParseOptionalAffineMap is ParseAffineMap when the next token opens
	// a map; otherwise it consumes nothing and reports false.
	ParseOptionalAffineMap() (affine.Map, bool, error)
	// ParseIntegerSet consumes an inline integer set.
	ParseIntegerSet() (affine.Set, error)
	// ParseDimAndSymbolList consumes "(dims)[symbols]" of index-typed
	// operands, returning the flattened operands and the dim count.
	ParseDimAndSymbolList() (operands []Value, numDims int, err error)
	// ParseAffineExprOperandList consumes a delimited list of affine
	// expressions over value references, e.g. "[%i + 1, %j]". Each
	// distinct value becomes a map dimension, in first-use order.
	ParseAffineExprOperandList(open, close string) (affine.Map, []Value, error)

	// ParseRegion consumes a brace-delimited region body. The entry
	// block is given the named arguments before parsing; names may be
	// empty when the body declares its own.
	ParseRegion(entryArgNames []string, entryArgTypes []Type) (*Region, error)
}
