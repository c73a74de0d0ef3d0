// Package printer renders the operation graph in its textual form. Custom
// assembly hooks registered by the dialects drive the pretty forms; anything
// without a hook round-trips through the generic form.
package printer

import (
	"fmt"
	"io"
	"strings"

	"github.com/loomlang/loom/internal/affine"
	"github.com/loomlang/loom/internal/ir"
)

// Print renders op and everything nested under it.
func Print(op *ir.Operation) string {
	var b strings.Builder
	NewPrinter(&b).PrintOperation(op)
	return b.String()
}

// Fprint renders op to w.
func Fprint(w io.Writer, op *ir.Operation) {
	NewPrinter(w).PrintOperation(op)
}

// Printer assigns value and block names and renders operations. It
// implements ir.AsmPrinter for the custom form hooks.
type Printer struct {
	w io.Writer

	valueNames map[ir.Value]string
	blockNames map[*ir.Block]string
	nextValue  int
	nextBlock  int

	indent int
}

// NewPrinter returns a printer writing to w. Names are stable for the
// lifetime of the printer, so printing a module and then one of its
// operations reuses the same numbering.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{
		w:          w,
		valueNames: map[ir.Value]string{},
		blockNames: map[*ir.Block]string{},
	}
}

func (p *Printer) valueName(v ir.Value) string {
	if name, ok := p.valueNames[v]; ok {
		return name
	}
	name := fmt.Sprintf("%%%d", p.nextValue)
	p.nextValue++
	p.valueNames[v] = name
	return name
}

func (p *Printer) blockName(b *ir.Block) string {
	if name, ok := p.blockNames[b]; ok {
		return name
	}
	name := fmt.Sprintf("^bb%d", p.nextBlock)
	p.nextBlock++
	p.blockNames[b] = name
	return name
}

// PrintOperation renders one operation at the current indentation, with a
// trailing newline.
func (p *Printer) PrintOperation(op *ir.Operation) {
	p.Printf("%s", strings.Repeat("  ", p.indent))
	if op.NumResults() > 0 {
		for i, res := range op.Results() {
			if i > 0 {
				p.Printf(", ")
			}
			p.Printf("%s", p.valueName(res))
		}
		p.Printf(" = ")
	}
	if info := op.Info(); info != nil && info.Print != nil {
		info.Print(p, op)
	} else {
		p.printGeneric(op)
	}
	p.Printf("\n")
}

func (p *Printer) printGeneric(op *ir.Operation) {
	p.Printf("%q(", string(op.Name()))
	p.PrintOperands(op.NonSuccessorOperands())
	p.Printf(")")

	if n := op.NumSuccessors(); n > 0 {
		p.Printf("[")
		for i := 0; i < n; i++ {
			if i > 0 {
				p.Printf(", ")
			}
			p.Printf("%s", p.blockName(op.SuccessorBlock(i)))
			if operands := op.SuccessorOperands(i); len(operands) > 0 {
				p.Printf("(")
				p.PrintOperands(operands)
				p.Printf(")")
			}
		}
		p.Printf("]")
	}

	if op.NumRegions() > 0 {
		// Regions are parenthesized so the attribute dictionary stays
		// unambiguous.
		p.Printf(" (")
		for i, r := range op.Regions() {
			if i > 0 {
				p.Printf(", ")
			}
			p.PrintRegion(r, true, true)
		}
		p.Printf(")")
	}

	p.PrintAttrDict(op.Attrs())

	p.Printf(" : (")
	operands := op.NonSuccessorOperands()
	for i, v := range operands {
		if i > 0 {
			p.Printf(", ")
		}
		p.PrintType(v.Type())
	}
	p.Printf(") -> (")
	for i, res := range op.Results() {
		if i > 0 {
			p.Printf(", ")
		}
		p.PrintType(res.Type())
	}
	p.Printf(")")
}

// Printf writes literal syntax.
func (p *Printer) Printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

// PrintValue writes the assigned name of v.
func (p *Printer) PrintValue(v ir.Value) {
	p.Printf("%s", p.valueName(v))
}

// PrintOperands writes a comma-separated value list.
func (p *Printer) PrintOperands(values []ir.Value) {
	for i, v := range values {
		if i > 0 {
			p.Printf(", ")
		}
		p.PrintValue(v)
	}
}

// PrintType writes a type.
func (p *Printer) PrintType(t ir.Type) {
	p.Printf("%s", t.String())
}

// PrintAttribute writes an attribute literal. Nested array elements render
// through the same rules.
func (p *Printer) PrintAttribute(a ir.Attribute) {
	p.Printf("%s", a.String())
}

// PrintAttrDict writes " {k = v, ...}" omitting elided names, or nothing
// when no entries remain.
func (p *Printer) PrintAttrDict(attrs []ir.NamedAttr, elided ...string) {
	skip := map[string]bool{}
	for _, name := range elided {
		skip[name] = true
	}
	first := true
	for _, attr := range attrs {
		if skip[attr.Name] {
			continue
		}
		if first {
			p.Printf(" {")
			first = false
		} else {
			p.Printf(", ")
		}
		p.Printf("%s = ", attr.Name)
		p.PrintAttribute(attr.Value)
	}
	if !first {
		p.Printf("}")
	}
}

// PrintDimAndSymbolList writes "(dims)[symbols]", the bracket section only
// when symbols are present.
func (p *Printer) PrintDimAndSymbolList(operands []ir.Value, numDims int) {
	p.Printf("(")
	p.PrintOperands(operands[:numDims])
	p.Printf(")")
	if len(operands) > numDims {
		p.Printf("[")
		p.PrintOperands(operands[numDims:])
		p.Printf("]")
	}
}

// PrintAffineMapOfValues writes the map's results with operand names
// substituted for dimension and symbol positions.
func (p *Printer) PrintAffineMapOfValues(m affine.Map, operands []ir.Value) {
	dimName := func(i int) string { return p.valueName(operands[i]) }
	symName := func(i int) string { return p.valueName(operands[m.NumDims()+i]) }
	for i, res := range m.Results() {
		if i > 0 {
			p.Printf(", ")
		}
		p.Printf("%s", affine.ExprString(res, dimName, symName))
	}
}

// PrintRegion writes a brace-delimited region body. Non-entry blocks get
// labels; label names are assigned up front so forward branches resolve.
func (p *Printer) PrintRegion(r *ir.Region, printEntryBlockArgs, printBlockTerminators bool) {
	p.Printf("{\n")
	p.indent++
	multi := r.NumBlocks() > 1
	for _, b := range r.Blocks() {
		if multi {
			p.blockName(b)
		}
	}
	for i, b := range r.Blocks() {
		if i > 0 || multi || (printEntryBlockArgs && b.NumArguments() > 0) {
			p.printBlockHeader(b)
		}
		for op := b.Front(); op != nil; op = op.NextInBlock() {
			if !printBlockTerminators && op == b.Back() && op.IsTerminator() {
				continue
			}
			p.PrintOperation(op)
		}
	}
	p.indent--
	p.Printf("%s}", strings.Repeat("  ", p.indent))
}

func (p *Printer) printBlockHeader(b *ir.Block) {
	p.Printf("%s%s", strings.Repeat("  ", p.indent-1), p.blockName(b))
	if b.NumArguments() > 0 {
		p.Printf("(")
		for i, arg := range b.Arguments() {
			if i > 0 {
				p.Printf(", ")
			}
			p.Printf("%s: ", p.valueName(arg))
			p.PrintType(arg.Type())
		}
		p.Printf(")")
	}
	p.Printf(":\n")
}
