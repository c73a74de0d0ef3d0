package affine

import (
	"fmt"
	"strconv"
	"unicode"
)

// ParseMap parses the textual form produced by Map.String, e.g.
// "(d0, d1)[s0] -> (d0 + s0, d1 floordiv 2)". Input names are arbitrary
// identifiers; the list position determines the dimension or symbol number.
func ParseMap(s string) (Map, error) {
	p := newExprParser(s)
	m, err := p.parseMap()
	if err != nil {
		return Map{}, err
	}
	if err := p.expectEOF(); err != nil {
		return Map{}, err
	}
	return m, nil
}

// ParseSet parses the textual form produced by Set.String, e.g.
// "(d0)[s0] : (d0 - s0 >= 0, d0 == 0)". Constraints may compare two affine
// expressions with ==, >= or <=; they are normalized against zero.
func ParseSet(s string) (Set, error) {
	p := newExprParser(s)
	set, err := p.parseSet()
	if err != nil {
		return Set{}, err
	}
	if err := p.expectEOF(); err != nil {
		return Set{}, err
	}
	return set, nil
}

// MustParseMap is ParseMap for statically known inputs; it panics on error.
func MustParseMap(s string) Map {
	m, err := ParseMap(s)
	if err != nil {
		panic(err)
	}
	return m
}

// MustParseSet is ParseSet for statically known inputs; it panics on error.
func MustParseSet(s string) Set {
	set, err := ParseSet(s)
	if err != nil {
		panic(err)
	}
	return set
}

type exprToken struct {
	kind exprTokenKind
	text string
	pos  int
}

type exprTokenKind int

const (
	tokEOF exprTokenKind = iota
	tokIdent
	tokNumber
	tokPunct
)

// exprParser is a one-token-lookahead scanner over the standalone map/set
// grammar. The operation parser in internal/parser has its own lexer; this
// one only sees the extracted map or set text.
type exprParser struct {
	input string
	pos   int
	tok   exprToken

	dims map[string]Expr
	syms map[string]Expr
}

func newExprParser(s string) *exprParser {
	p := &exprParser{input: s, dims: map[string]Expr{}, syms: map[string]Expr{}}
	p.advance()
	return p
}

func (p *exprParser) advance() {
	for p.pos < len(p.input) && unicode.IsSpace(rune(p.input[p.pos])) {
		p.pos++
	}
	start := p.pos
	if p.pos >= len(p.input) {
		p.tok = exprToken{kind: tokEOF, pos: start}
		return
	}
	c := p.input[p.pos]
	switch {
	case isIdentStart(c):
		for p.pos < len(p.input) && isIdentPart(p.input[p.pos]) {
			p.pos++
		}
		p.tok = exprToken{kind: tokIdent, text: p.input[start:p.pos], pos: start}
	case c >= '0' && c <= '9':
		for p.pos < len(p.input) && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
			p.pos++
		}
		p.tok = exprToken{kind: tokNumber, text: p.input[start:p.pos], pos: start}
	default:
		// Multi-byte punctuation first.
		for _, punct := range []string{"->", "==", ">=", "<="} {
			if len(p.input) >= p.pos+2 && p.input[p.pos:p.pos+2] == punct {
				p.pos += 2
				p.tok = exprToken{kind: tokPunct, text: punct, pos: start}
				return
			}
		}
		p.pos++
		p.tok = exprToken{kind: tokPunct, text: p.input[start:p.pos], pos: start}
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func (p *exprParser) errf(format string, args ...any) error {
	return fmt.Errorf("affine: offset %d: %s", p.tok.pos, fmt.Sprintf(format, args...))
}

func (p *exprParser) expect(text string) error {
	if p.tok.kind != tokPunct || p.tok.text != text {
		return p.errf("expected %q", text)
	}
	p.advance()
	return nil
}

func (p *exprParser) consume(text string) bool {
	if p.tok.kind == tokPunct && p.tok.text == text {
		p.advance()
		return true
	}
	return false
}

func (p *exprParser) expectEOF() error {
	if p.tok.kind != tokEOF {
		return p.errf("unexpected trailing input %q", p.tok.text)
	}
	return nil
}

// parseInputs binds the declared dimension and symbol names.
func (p *exprParser) parseInputs() (numDims, numSymbols int, err error) {
	parseList := func(close string, bind func(name string, i int)) (int, error) {
		count := 0
		if p.consume(close) {
			return 0, nil
		}
		for {
			if p.tok.kind != tokIdent {
				return 0, p.errf("expected input name")
			}
			bind(p.tok.text, count)
			count++
			p.advance()
			if p.consume(close) {
				return count, nil
			}
			if err := p.expect(","); err != nil {
				return 0, err
			}
		}
	}

	if err = p.expect("("); err != nil {
		return 0, 0, err
	}
	numDims, err = parseList(")", func(name string, i int) { p.dims[name] = Dim(i) })
	if err != nil {
		return 0, 0, err
	}
	if p.consume("[") {
		numSymbols, err = parseList("]", func(name string, i int) { p.syms[name] = Symbol(i) })
		if err != nil {
			return 0, 0, err
		}
	}
	return numDims, numSymbols, nil
}

func (p *exprParser) parseMap() (Map, error) {
	numDims, numSymbols, err := p.parseInputs()
	if err != nil {
		return Map{}, err
	}
	if err := p.expect("->"); err != nil {
		return Map{}, err
	}
	if err := p.expect("("); err != nil {
		return Map{}, err
	}
	var results []Expr
	if !p.consume(")") {
		for {
			e, err := p.parseExpr()
			if err != nil {
				return Map{}, err
			}
			results = append(results, e)
			if p.consume(")") {
				break
			}
			if err := p.expect(","); err != nil {
				return Map{}, err
			}
		}
	}
	return Map{numDims: numDims, numSymbols: numSymbols, results: results}, nil
}

func (p *exprParser) parseSet() (Set, error) {
	numDims, numSymbols, err := p.parseInputs()
	if err != nil {
		return Set{}, err
	}
	if err := p.expect(":"); err != nil {
		return Set{}, err
	}
	if err := p.expect("("); err != nil {
		return Set{}, err
	}
	var constraints []Expr
	var eqFlags []bool
	if !p.consume(")") {
		for {
			c, isEq, err := p.parseConstraint()
			if err != nil {
				return Set{}, err
			}
			constraints = append(constraints, c)
			eqFlags = append(eqFlags, isEq)
			if p.consume(")") {
				break
			}
			if err := p.expect(","); err != nil {
				return Set{}, err
			}
		}
	}
	return Set{numDims: numDims, numSymbols: numSymbols, constraints: constraints, eqFlags: eqFlags}, nil
}

func (p *exprParser) parseConstraint() (Expr, bool, error) {
	lhs, err := p.parseExpr()
	if err != nil {
		return nil, false, err
	}
	if p.tok.kind != tokPunct {
		return nil, false, p.errf("expected ==, >= or <= in constraint")
	}
	op := p.tok.text
	switch op {
	case "==", ">=", "<=":
		p.advance()
	default:
		return nil, false, p.errf("expected ==, >= or <= in constraint, got %q", op)
	}
	rhs, err := p.parseExpr()
	if err != nil {
		return nil, false, err
	}
	switch op {
	case "==":
		return Sub(lhs, rhs), true, nil
	case ">=":
		return Sub(lhs, rhs), false, nil
	default: // lhs <= rhs becomes rhs - lhs >= 0
		return Sub(rhs, lhs), false, nil
	}
}

func (p *exprParser) parseExpr() (Expr, error) {
	lhs, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.consume("+"):
			rhs, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			lhs = Add(lhs, rhs)
		case p.consume("-"):
			rhs, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			lhs = Sub(lhs, rhs)
		default:
			return lhs, nil
		}
	}
}

func (p *exprParser) parseTerm() (Expr, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var kind ExprKind
		switch {
		case p.consume("*"):
			kind = KindMul
		case p.tok.kind == tokIdent && p.tok.text == "floordiv":
			p.advance()
			kind = KindFloorDiv
		case p.tok.kind == tokIdent && p.tok.text == "ceildiv":
			p.advance()
			kind = KindCeilDiv
		case p.tok.kind == tokIdent && p.tok.text == "mod":
			p.advance()
			kind = KindMod
		default:
			return lhs, nil
		}
		rhs, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		lhs = Binary(kind, lhs, rhs)
	}
}

func (p *exprParser) parseUnary() (Expr, error) {
	if p.consume("-") {
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Mul(e, Constant(-1)), nil
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (Expr, error) {
	switch p.tok.kind {
	case tokNumber:
		v, err := strconv.ParseInt(p.tok.text, 10, 64)
		if err != nil {
			return nil, p.errf("invalid integer %q", p.tok.text)
		}
		p.advance()
		return Constant(v), nil
	case tokIdent:
		name := p.tok.text
		if e, ok := p.dims[name]; ok {
			p.advance()
			return e, nil
		}
		if e, ok := p.syms[name]; ok {
			p.advance()
			return e, nil
		}
		return nil, p.errf("use of undeclared input %q", name)
	case tokPunct:
		if p.consume("(") {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			return e, nil
		}
	}
	return nil, p.errf("expected expression")
}
