// Package parser reads the textual form back into the operation graph. It
// implements the ir.AsmParser surface the dialect parse hooks consume, and
// falls back to the generic form for unregistered operations.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/loomlang/loom/internal/affine"
	"github.com/loomlang/loom/internal/ir"
)

// Parse reads a single top-level operation, usually a module, and everything
// nested under it. filename is used for error locations only.
func Parse(filename, src string) (*ir.Operation, error) {
	p := newParser(filename, src)
	op, err := p.parseOperation()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		op.Destroy()
		return nil, p.Errorf("expected end of input, got %s", p.tok)
	}
	return op, nil
}

// regionScope tracks the blocks of the region being parsed so branches can
// reference blocks defined further down.
type regionScope struct {
	byName  map[string]*ir.Block
	defined map[string]bool
}

// Parser holds the lexer state and the value and block scopes of an ongoing
// parse.
type Parser struct {
	filename string
	src      string
	lex      *lexer
	tok      token

	values map[string]ir.Value
	scopes []*regionScope
}

func newParser(filename, src string) *Parser {
	p := &Parser{
		filename: filename,
		src:      src,
		lex:      newLexer(src),
		values:   map[string]ir.Value{},
	}
	p.advance()
	return p
}

func (p *Parser) advance() { p.tok = p.lex.next() }

func (p *Parser) loc() ir.Location {
	return ir.Location{File: p.filename, Line: p.tok.line, Col: p.tok.col}
}

// Errorf builds an error located at the current token.
func (p *Parser) Errorf(format string, args ...any) error {
	return fmt.Errorf("%s:%d:%d: %s", p.filename, p.tok.line, p.tok.col,
		fmt.Sprintf(format, args...))
}

func (p *Parser) defineValue(name string, v ir.Value) error {
	if _, exists := p.values[name]; exists {
		return p.Errorf("redefinition of value %%%s", name)
	}
	p.values[name] = v
	return nil
}

// ParseToken consumes the exact punctuation or keyword, failing otherwise.
func (p *Parser) ParseToken(text string) error {
	if !p.ConsumeIf(text) {
		return p.Errorf("expected '%s', got %s", text, p.tok)
	}
	return nil
}

// ConsumeIf consumes the token when it matches and reports whether it did.
func (p *Parser) ConsumeIf(text string) bool {
	if (p.tok.kind == tokPunct || p.tok.kind == tokIdent) && p.tok.text == text {
		p.advance()
		return true
	}
	return false
}

// ParseKeyword consumes the identifier keyword.
func (p *Parser) ParseKeyword(keyword string) error {
	if !p.ConsumeKeywordIf(keyword) {
		return p.Errorf("expected '%s', got %s", keyword, p.tok)
	}
	return nil
}

// ConsumeKeywordIf consumes the identifier when it matches.
func (p *Parser) ConsumeKeywordIf(keyword string) bool {
	if p.tok.kind == tokIdent && p.tok.text == keyword {
		p.advance()
		return true
	}
	return false
}

// ParseInt consumes an integer literal, optionally negative.
func (p *Parser) ParseInt() (int64, error) {
	neg := false
	if p.tok.kind == tokPunct && p.tok.text == "-" {
		neg = true
		p.advance()
	}
	if p.tok.kind != tokInteger {
		return 0, p.Errorf("expected integer, got %s", p.tok)
	}
	v, err := strconv.ParseInt(p.tok.text, 10, 64)
	if err != nil {
		return 0, p.Errorf("integer %s out of range", p.tok)
	}
	p.advance()
	if neg {
		v = -v
	}
	return v, nil
}

// ParseOperand consumes a value reference and resolves it against the
// defined values, checking the expected type when non-nil.
func (p *Parser) ParseOperand(expected ir.Type) (ir.Value, error) {
	if p.tok.kind != tokValueID {
		return nil, p.Errorf("expected value reference, got %s", p.tok)
	}
	name := p.tok.text
	v, ok := p.values[name]
	if !ok {
		return nil, p.Errorf("use of undefined value %%%s", name)
	}
	if expected != nil && !ir.TypeEqual(v.Type(), expected) {
		return nil, p.Errorf("value %%%s has type %s, expected %s", name, v.Type(), expected)
	}
	p.advance()
	return v, nil
}

// ParseOptionalOperand is ParseOperand when the next token is a value
// reference.
func (p *Parser) ParseOptionalOperand(expected ir.Type) (ir.Value, bool, error) {
	if p.tok.kind != tokValueID {
		return nil, false, nil
	}
	v, err := p.ParseOperand(expected)
	return v, err == nil, err
}

// ParseValueName consumes a value reference without resolving it.
func (p *Parser) ParseValueName() (string, error) {
	if p.tok.kind != tokValueID {
		return "", p.Errorf("expected value name, got %s", p.tok)
	}
	name := p.tok.text
	p.advance()
	return name, nil
}

// ParseType consumes a type: index, iN, fN or memref<shape x element>.
func (p *Parser) ParseType() (ir.Type, error) {
	if p.tok.kind != tokIdent {
		return nil, p.Errorf("expected type, got %s", p.tok)
	}
	name := p.tok.text
	if name == "memref" {
		p.advance()
		return p.parseMemRefType()
	}
	t, err := scalarType(name)
	if err != nil {
		return nil, p.Errorf("%s", err)
	}
	p.advance()
	return t, nil
}

func scalarType(name string) (ir.Type, error) {
	if name == "index" {
		return ir.IndexType{}, nil
	}
	if len(name) > 1 && (name[0] == 'i' || name[0] == 'f') {
		if width, err := strconv.Atoi(name[1:]); err == nil && width > 0 {
			if name[0] == 'i' {
				return ir.IntType{Width: width}, nil
			}
			return ir.FloatType{Width: width}, nil
		}
	}
	return nil, fmt.Errorf("unknown type '%s'", name)
}

// parseMemRefType reads the raw <...> extent and decodes it, since the shape
// syntax does not tokenize cleanly.
func (p *Parser) parseMemRefType() (ir.Type, error) {
	if p.tok.kind != tokPunct || p.tok.text != "<" {
		return nil, p.Errorf("expected '<' in memref type, got %s", p.tok)
	}
	end := scanBalanced(p.src, p.tok.offset, '<', '>')
	if end < 0 {
		return nil, p.Errorf("unterminated memref type")
	}
	body := p.src[p.tok.offset+1 : end-1]

	var mt ir.MemRefType
	parts := strings.Split(body, ",")
	if len(parts) > 2 {
		return nil, p.Errorf("malformed memref type 'memref<%s>'", body)
	}
	if len(parts) == 2 {
		space, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, p.Errorf("malformed memory space in 'memref<%s>'", body)
		}
		mt.MemorySpace = space
	}
	segments := strings.Split(strings.TrimSpace(parts[0]), "x")
	for i, seg := range segments {
		seg = strings.TrimSpace(seg)
		if i == len(segments)-1 {
			elem, err := scalarType(seg)
			if err != nil {
				return nil, p.Errorf("malformed element type in 'memref<%s>'", body)
			}
			mt.Element = elem
			break
		}
		if seg == "?" {
			mt.Shape = append(mt.Shape, ir.DynamicSize)
			continue
		}
		size, err := strconv.ParseInt(seg, 10, 64)
		if err != nil || size < 0 {
			return nil, p.Errorf("malformed dimension '%s' in 'memref<%s>'", seg, body)
		}
		mt.Shape = append(mt.Shape, size)
	}

	p.lex.seek(end)
	p.advance()
	return mt, nil
}

// ParseAffineMap consumes an inline affine map.
func (p *Parser) ParseAffineMap() (affine.Map, error) {
	m, ok, err := p.ParseOptionalAffineMap()
	if err != nil {
		return affine.Map{}, err
	}
	if !ok {
		return affine.Map{}, p.Errorf("expected affine map, got %s", p.tok)
	}
	return m, nil
}

// ParseOptionalAffineMap is ParseAffineMap when the next tokens open a map.
func (p *Parser) ParseOptionalAffineMap() (affine.Map, bool, error) {
	if p.tok.kind != tokPunct || p.tok.text != "(" {
		return affine.Map{}, false, nil
	}
	end, isMap, ok := scanPolyExtent(p.src, p.tok.offset)
	if !ok || !isMap {
		return affine.Map{}, false, nil
	}
	m, err := affine.ParseMap(p.src[p.tok.offset:end])
	if err != nil {
		return affine.Map{}, false, p.Errorf("%s", err)
	}
	p.lex.seek(end)
	p.advance()
	return m, true, nil
}

// ParseIntegerSet consumes an inline integer set.
func (p *Parser) ParseIntegerSet() (affine.Set, error) {
	if p.tok.kind != tokPunct || p.tok.text != "(" {
		return affine.Set{}, p.Errorf("expected integer set, got %s", p.tok)
	}
	end, isMap, ok := scanPolyExtent(p.src, p.tok.offset)
	if !ok || isMap {
		return affine.Set{}, p.Errorf("expected integer set, got %s", p.tok)
	}
	s, err := affine.ParseSet(p.src[p.tok.offset:end])
	if err != nil {
		return affine.Set{}, p.Errorf("%s", err)
	}
	p.lex.seek(end)
	p.advance()
	return s, nil
}

// ParseDimAndSymbolList consumes "(dims)[symbols]" of index-typed operands.
func (p *Parser) ParseDimAndSymbolList() ([]ir.Value, int, error) {
	if err := p.ParseToken("("); err != nil {
		return nil, 0, err
	}
	var operands []ir.Value
	for p.tok.kind == tokValueID {
		v, err := p.ParseOperand(ir.IndexType{})
		if err != nil {
			return nil, 0, err
		}
		operands = append(operands, v)
		if !p.ConsumeIf(",") {
			break
		}
	}
	if err := p.ParseToken(")"); err != nil {
		return nil, 0, err
	}
	numDims := len(operands)
	if p.ConsumeIf("[") {
		for p.tok.kind == tokValueID {
			v, err := p.ParseOperand(ir.IndexType{})
			if err != nil {
				return nil, 0, err
			}
			operands = append(operands, v)
			if !p.ConsumeIf(",") {
				break
			}
		}
		if err := p.ParseToken("]"); err != nil {
			return nil, 0, err
		}
	}
	return operands, numDims, nil
}

// ParseAffineExprOperandList consumes a delimited list of affine expressions
// over value references. Each distinct value becomes a map dimension, in
// first-use order.
func (p *Parser) ParseAffineExprOperandList(open, close string) (affine.Map, []ir.Value, error) {
	if err := p.ParseToken(open); err != nil {
		return affine.Map{}, nil, err
	}
	var (
		operands []ir.Value
		position = map[ir.Value]int{}
		results  []affine.Expr
	)
	resolve := func(v ir.Value) affine.Expr {
		at, ok := position[v]
		if !ok {
			at = len(operands)
			position[v] = at
			operands = append(operands, v)
		}
		return affine.Dim(at)
	}
	if !p.ConsumeIf(close) {
		for {
			e, err := p.parseAffineOperandExpr(resolve)
			if err != nil {
				return affine.Map{}, nil, err
			}
			results = append(results, e)
			if !p.ConsumeIf(",") {
				break
			}
		}
		if err := p.ParseToken(close); err != nil {
			return affine.Map{}, nil, err
		}
	}
	return affine.NewMap(len(operands), 0, results), operands, nil
}

// parseAffineOperandExpr parses one affine expression whose leaves are value
// references and integer literals. resolve maps each value to its dim.
func (p *Parser) parseAffineOperandExpr(resolve func(ir.Value) affine.Expr) (affine.Expr, error) {
	lhs, err := p.parseAffineOperandTerm(resolve)
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.ConsumeIf("+"):
			rhs, err := p.parseAffineOperandTerm(resolve)
			if err != nil {
				return nil, err
			}
			lhs = affine.Add(lhs, rhs)
		case p.ConsumeIf("-"):
			rhs, err := p.parseAffineOperandTerm(resolve)
			if err != nil {
				return nil, err
			}
			lhs = affine.Sub(lhs, rhs)
		default:
			return lhs, nil
		}
	}
}

func (p *Parser) parseAffineOperandTerm(resolve func(ir.Value) affine.Expr) (affine.Expr, error) {
	lhs, err := p.parseAffineOperandFactor(resolve)
	if err != nil {
		return nil, err
	}
	for {
		var kind string
		switch {
		case p.ConsumeIf("*"):
			kind = "*"
		case p.ConsumeKeywordIf("floordiv"):
			kind = "floordiv"
		case p.ConsumeKeywordIf("ceildiv"):
			kind = "ceildiv"
		case p.ConsumeKeywordIf("mod"):
			kind = "mod"
		default:
			return lhs, nil
		}
		rhs, err := p.parseAffineOperandFactor(resolve)
		if err != nil {
			return nil, err
		}
		_, lconst := lhs.(affine.ConstantExpr)
		_, rconst := rhs.(affine.ConstantExpr)
		switch kind {
		case "*":
			if !lconst && !rconst {
				return nil, p.Errorf("non-affine product of two value expressions")
			}
			lhs = affine.Mul(lhs, rhs)
		case "floordiv", "ceildiv", "mod":
			if !rconst {
				return nil, p.Errorf("right operand of %s must be a constant", kind)
			}
			if kind == "floordiv" {
				lhs = affine.FloorDiv(lhs, rhs)
			} else if kind == "ceildiv" {
				lhs = affine.CeilDiv(lhs, rhs)
			} else {
				lhs = affine.Mod(lhs, rhs)
			}
		}
	}
}

func (p *Parser) parseAffineOperandFactor(resolve func(ir.Value) affine.Expr) (affine.Expr, error) {
	switch {
	case p.tok.kind == tokValueID:
		v, err := p.ParseOperand(ir.IndexType{})
		if err != nil {
			return nil, err
		}
		return resolve(v), nil
	case p.tok.kind == tokInteger:
		v, err := p.ParseInt()
		if err != nil {
			return nil, err
		}
		return affine.Constant(v), nil
	case p.tok.kind == tokPunct && p.tok.text == "-":
		p.advance()
		e, err := p.parseAffineOperandFactor(resolve)
		if err != nil {
			return nil, err
		}
		return affine.Mul(e, affine.Constant(-1)), nil
	case p.ConsumeIf("("):
		e, err := p.parseAffineOperandExpr(resolve)
		if err != nil {
			return nil, err
		}
		if err := p.ParseToken(")"); err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, p.Errorf("expected affine expression, got %s", p.tok)
	}
}

// ParseRegion consumes a brace-delimited region body. The entry block is
// given the named arguments before parsing; an immediately closed region
// with no entry arguments stays empty.
func (p *Parser) ParseRegion(entryArgNames []string, entryArgTypes []ir.Type) (*ir.Region, error) {
	if err := p.ParseToken("{"); err != nil {
		return nil, err
	}
	region := ir.NewRegion()
	scope := &regionScope{byName: map[string]*ir.Block{}, defined: map[string]bool{}}
	p.scopes = append(p.scopes, scope)
	defer func() { p.scopes = p.scopes[:len(p.scopes)-1] }()

	needEntry := len(entryArgNames) > 0 ||
		(p.tok.kind != tokBlockID && !(p.tok.kind == tokPunct && p.tok.text == "}"))
	if needEntry {
		entry := ir.NewBlock()
		for i, name := range entryArgNames {
			arg := entry.AddArgument(entryArgTypes[i])
			if err := p.defineValue(name, arg); err != nil {
				return nil, err
			}
		}
		region.PushBack(entry)
		if err := p.parseBlockBody(entry); err != nil {
			return nil, err
		}
	}
	for p.tok.kind == tokBlockID {
		if err := p.parseLabeledBlock(region, scope); err != nil {
			return nil, err
		}
	}
	for name, defined := range scope.defined {
		if !defined {
			return nil, p.Errorf("branch to undefined block ^%s", name)
		}
	}
	if err := p.ParseToken("}"); err != nil {
		return nil, err
	}
	return region, nil
}

func (p *Parser) parseBlockBody(b *ir.Block) error {
	for {
		if p.tok.kind == tokBlockID || p.tok.kind == tokEOF {
			return nil
		}
		if p.tok.kind == tokPunct && p.tok.text == "}" {
			return nil
		}
		op, err := p.parseOperation()
		if err != nil {
			return err
		}
		b.PushBack(op)
	}
}

func (p *Parser) parseLabeledBlock(region *ir.Region, scope *regionScope) error {
	name := p.tok.text
	if scope.defined[name] {
		return p.Errorf("redefinition of block ^%s", name)
	}
	b, ok := scope.byName[name]
	if !ok {
		b = ir.NewBlock()
		scope.byName[name] = b
	}
	scope.defined[name] = true
	region.PushBack(b)
	p.advance()

	if p.ConsumeIf("(") {
		for p.tok.kind == tokValueID {
			argName := p.tok.text
			p.advance()
			if err := p.ParseToken(":"); err != nil {
				return err
			}
			t, err := p.ParseType()
			if err != nil {
				return err
			}
			if err := p.defineValue(argName, b.AddArgument(t)); err != nil {
				return err
			}
			if !p.ConsumeIf(",") {
				break
			}
		}
		if err := p.ParseToken(")"); err != nil {
			return err
		}
	}
	if err := p.ParseToken(":"); err != nil {
		return err
	}
	return p.parseBlockBody(b)
}

// successorBlock resolves a branch target in the innermost region, creating
// a placeholder for blocks defined further down.
func (p *Parser) successorBlock(name string) (*ir.Block, error) {
	if len(p.scopes) == 0 {
		return nil, p.Errorf("branch target ^%s outside a region", name)
	}
	scope := p.scopes[len(p.scopes)-1]
	b, ok := scope.byName[name]
	if !ok {
		b = ir.NewBlock()
		scope.byName[name] = b
		if _, tracked := scope.defined[name]; !tracked {
			scope.defined[name] = false
		}
	}
	return b, nil
}

// parseOperation reads one operation: an optional result list, then either a
// quoted generic form or a registered custom form.
func (p *Parser) parseOperation() (*ir.Operation, error) {
	var resultNames []string
	if p.tok.kind == tokValueID {
		for {
			if p.tok.kind != tokValueID {
				return nil, p.Errorf("expected result name, got %s", p.tok)
			}
			resultNames = append(resultNames, p.tok.text)
			p.advance()
			if !p.ConsumeIf(",") {
				break
			}
		}
		if err := p.ParseToken("="); err != nil {
			return nil, err
		}
	}

	state := ir.OperationState{Loc: p.loc()}
	switch p.tok.kind {
	case tokString:
		if err := p.parseGenericOperation(&state); err != nil {
			return nil, err
		}
	case tokIdent:
		name := ir.OperationName(p.tok.text)
		info := ir.LookupOp(name)
		if info == nil || info.Parse == nil {
			return nil, p.Errorf("unknown operation '%s'", name)
		}
		p.advance()
		state.Name = name
		if err := info.Parse(p, &state); err != nil {
			return nil, err
		}
		// Custom forms elide their well-known attributes; any extras
		// follow as a trailing dictionary.
		if p.tok.kind == tokPunct && p.tok.text == "{" {
			attrs, err := p.parseAttrDict()
			if err != nil {
				return nil, err
			}
			state.Attrs = append(state.Attrs, attrs...)
		}
	default:
		return nil, p.Errorf("expected operation, got %s", p.tok)
	}

	op := ir.Create(state)
	if len(resultNames) != op.NumResults() {
		err := p.Errorf("operation defines %d results, %d names given",
			op.NumResults(), len(resultNames))
		op.Destroy()
		return nil, err
	}
	for i, name := range resultNames {
		if err := p.defineValue(name, op.Result(i)); err != nil {
			op.Destroy()
			return nil, err
		}
	}
	return op, nil
}

// parseGenericOperation reads
//
//	"d.op"(%a, %b)[^bb1(%c)] ({...}) {attrs} : (types) -> (types)
//
// with the successor, region and attribute sections optional.
func (p *Parser) parseGenericOperation(state *ir.OperationState) error {
	state.Name = ir.OperationName(p.tok.text)
	p.advance()

	if err := p.ParseToken("("); err != nil {
		return err
	}
	var operands []ir.Value
	for p.tok.kind == tokValueID {
		v, err := p.ParseOperand(nil)
		if err != nil {
			return err
		}
		operands = append(operands, v)
		if !p.ConsumeIf(",") {
			break
		}
	}
	if err := p.ParseToken(")"); err != nil {
		return err
	}
	state.AddOperands(operands...)

	if p.ConsumeIf("[") {
		for {
			if p.tok.kind != tokBlockID {
				return p.Errorf("expected block reference, got %s", p.tok)
			}
			dest, err := p.successorBlock(p.tok.text)
			if err != nil {
				return err
			}
			p.advance()
			var succOperands []ir.Value
			if p.ConsumeIf("(") {
				for p.tok.kind == tokValueID {
					v, err := p.ParseOperand(nil)
					if err != nil {
						return err
					}
					succOperands = append(succOperands, v)
					if !p.ConsumeIf(",") {
						break
					}
				}
				if err := p.ParseToken(")"); err != nil {
					return err
				}
			}
			state.AddSuccessor(dest, succOperands)
			if !p.ConsumeIf(",") {
				break
			}
		}
		if err := p.ParseToken("]"); err != nil {
			return err
		}
	}

	if p.tok.kind == tokPunct && p.tok.text == "(" {
		p.advance()
		for {
			region, err := p.ParseRegion(nil, nil)
			if err != nil {
				return err
			}
			state.Regions = append(state.Regions, region)
			if !p.ConsumeIf(",") {
				break
			}
		}
		state.NumRegions = len(state.Regions)
		if err := p.ParseToken(")"); err != nil {
			return err
		}
	}

	if p.tok.kind == tokPunct && p.tok.text == "{" {
		attrs, err := p.parseAttrDict()
		if err != nil {
			return err
		}
		state.Attrs = attrs
	}

	if err := p.ParseToken(":"); err != nil {
		return err
	}
	operandTypes, err := p.parseTypeList()
	if err != nil {
		return err
	}
	if err := p.ParseToken("->"); err != nil {
		return err
	}
	resultTypes, err := p.parseTypeList()
	if err != nil {
		return err
	}

	if len(operandTypes) != len(operands) {
		return p.Errorf("expected %d operand types, got %d", len(operands), len(operandTypes))
	}
	for i, t := range operandTypes {
		if !ir.TypeEqual(operands[i].Type(), t) {
			return p.Errorf("operand %d has type %s, declared as %s", i, operands[i].Type(), t)
		}
	}
	state.AddTypes(resultTypes...)
	return nil
}

func (p *Parser) parseTypeList() ([]ir.Type, error) {
	if err := p.ParseToken("("); err != nil {
		return nil, err
	}
	var types []ir.Type
	for p.tok.kind == tokIdent {
		t, err := p.ParseType()
		if err != nil {
			return nil, err
		}
		types = append(types, t)
		if !p.ConsumeIf(",") {
			break
		}
	}
	return types, p.ParseToken(")")
}

func (p *Parser) parseAttrDict() ([]ir.NamedAttr, error) {
	if err := p.ParseToken("{"); err != nil {
		return nil, err
	}
	var attrs []ir.NamedAttr
	for p.tok.kind == tokIdent {
		name := p.tok.text
		p.advance()
		if err := p.ParseToken("="); err != nil {
			return nil, err
		}
		value, err := p.parseAttribute()
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, ir.NamedAttr{Name: name, Value: value})
		if !p.ConsumeIf(",") {
			break
		}
	}
	return attrs, p.ParseToken("}")
}

func (p *Parser) parseAttribute() (ir.Attribute, error) {
	switch {
	case p.tok.kind == tokInteger || p.tok.kind == tokPunct && p.tok.text == "-":
		v, err := p.ParseInt()
		if err != nil {
			return nil, err
		}
		return ir.IntegerAttr{Value: v}, nil

	case p.tok.kind == tokString:
		s := p.tok.text
		p.advance()
		return ir.StringAttr{Value: s}, nil

	case p.ConsumeKeywordIf("true"):
		return ir.BoolAttr{Value: true}, nil
	case p.ConsumeKeywordIf("false"):
		return ir.BoolAttr{Value: false}, nil

	case p.ConsumeIf("["):
		var elements []ir.Attribute
		if !p.ConsumeIf("]") {
			for {
				e, err := p.parseAttribute()
				if err != nil {
					return nil, err
				}
				elements = append(elements, e)
				if !p.ConsumeIf(",") {
					break
				}
			}
			if err := p.ParseToken("]"); err != nil {
				return nil, err
			}
		}
		return ir.ArrayAttr{Elements: elements}, nil

	case p.tok.kind == tokPunct && p.tok.text == "(":
		_, isMap, ok := scanPolyExtent(p.src, p.tok.offset)
		if !ok {
			return nil, p.Errorf("malformed affine map or integer set")
		}
		if isMap {
			m, err := p.ParseAffineMap()
			if err != nil {
				return nil, err
			}
			return ir.AffineMapAttr{Map: m}, nil
		}
		s, err := p.ParseIntegerSet()
		if err != nil {
			return nil, err
		}
		return ir.IntegerSetAttr{Set: s}, nil

	case p.tok.kind == tokIdent:
		t, err := p.ParseType()
		if err != nil {
			return nil, err
		}
		return ir.TypeAttr{Type: t}, nil

	default:
		return nil, p.Errorf("expected attribute value, got %s", p.tok)
	}
}
