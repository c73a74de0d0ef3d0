package parser

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInteger
	tokString
	tokValueID // %name, text carries the name without the sigil
	tokBlockID // ^name, text carries the name without the sigil
	tokPunct
	tokError
)

type token struct {
	kind   tokenKind
	text   string
	offset int
	line   int
	col    int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokValueID:
		return "%" + t.text
	case tokBlockID:
		return "^" + t.text
	case tokString:
		return fmt.Sprintf("%q", t.text)
	default:
		return fmt.Sprintf("'%s'", t.text)
	}
}

// lexer produces tokens on demand and can be repositioned, which the parser
// uses after handing a raw source extent to the affine sub-parsers.
type lexer struct {
	src  string
	pos  int
	line int
	col  int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

// seek repositions the lexer at a byte offset, recomputing the line and
// column from the start. Extents are short and seeks rare, so the rescan is
// not worth avoiding.
func (l *lexer) seek(offset int) {
	l.pos = 0
	l.line = 1
	l.col = 1
	for l.pos < offset && l.pos < len(l.src) {
		l.step()
	}
}

func (l *lexer) step() {
	if l.src[l.pos] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.pos++
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			l.step()
			continue
		}
		if c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/' {
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.step()
			}
			continue
		}
		return
	}
}

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isIdentBody(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9' || c == '.' || c == '$'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func (l *lexer) next() token {
	l.skipSpace()
	tok := token{offset: l.pos, line: l.line, col: l.col}
	if l.pos >= len(l.src) {
		tok.kind = tokEOF
		return tok
	}

	c := l.src[l.pos]
	switch {
	case isIdentStart(c):
		start := l.pos
		for l.pos < len(l.src) && isIdentBody(l.src[l.pos]) {
			l.step()
		}
		tok.kind = tokIdent
		tok.text = l.src[start:l.pos]
		return tok

	case isDigit(c):
		start := l.pos
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.step()
		}
		tok.kind = tokInteger
		tok.text = l.src[start:l.pos]
		return tok

	case c == '%' || c == '^':
		l.step()
		start := l.pos
		for l.pos < len(l.src) && isIdentBody(l.src[l.pos]) {
			l.step()
		}
		if l.pos == start {
			tok.kind = tokError
			tok.text = string(c)
			return tok
		}
		if c == '%' {
			tok.kind = tokValueID
		} else {
			tok.kind = tokBlockID
		}
		tok.text = l.src[start:l.pos]
		return tok

	case c == '"':
		l.step()
		var b strings.Builder
		for l.pos < len(l.src) && l.src[l.pos] != '"' {
			if l.src[l.pos] == '\\' && l.pos+1 < len(l.src) {
				l.step()
			}
			b.WriteByte(l.src[l.pos])
			l.step()
		}
		if l.pos >= len(l.src) {
			tok.kind = tokError
			tok.text = "unterminated string"
			return tok
		}
		l.step()
		tok.kind = tokString
		tok.text = b.String()
		return tok

	case c == '-':
		l.step()
		if l.pos < len(l.src) && l.src[l.pos] == '>' {
			l.step()
			tok.kind = tokPunct
			tok.text = "->"
			return tok
		}
		tok.kind = tokPunct
		tok.text = "-"
		return tok

	default:
		l.step()
		tok.kind = tokPunct
		tok.text = string(c)
		return tok
	}
}

// scanBalanced returns the offset just past the delimiter closing the one at
// start, or -1 when the input ends first. String literals are skipped so
// braces inside them do not count.
func scanBalanced(src string, start int, open, close byte) int {
	depth := 0
	for i := start; i < len(src); i++ {
		switch src[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i + 1
			}
		case '"':
			for i++; i < len(src) && src[i] != '"'; i++ {
				if src[i] == '\\' {
					i++
				}
			}
		}
	}
	return -1
}

// scanPolyExtent measures the raw extent of an inline affine map or integer
// set starting at the opening paren of its input list: "(dims)[syms] -> (..)"
// for maps, "(dims)[syms] : (..)" for sets. It reports the offset just past
// the closing paren and whether the extent is a map. ok is false when the
// shape does not match either form.
func scanPolyExtent(src string, start int) (end int, isMap, ok bool) {
	if start >= len(src) || src[start] != '(' {
		return 0, false, false
	}
	at := scanBalanced(src, start, '(', ')')
	if at < 0 {
		return 0, false, false
	}
	at = skipRawSpace(src, at)
	if at < len(src) && src[at] == '[' {
		if at = scanBalanced(src, at, '[', ']'); at < 0 {
			return 0, false, false
		}
		at = skipRawSpace(src, at)
	}
	switch {
	case strings.HasPrefix(src[at:], "->"):
		isMap = true
		at += 2
	case at < len(src) && src[at] == ':':
		at++
	default:
		return 0, false, false
	}
	at = skipRawSpace(src, at)
	if at >= len(src) || src[at] != '(' {
		return 0, false, false
	}
	if at = scanBalanced(src, at, '(', ')'); at < 0 {
		return 0, false, false
	}
	return at, isMap, true
}

func skipRawSpace(src string, at int) int {
	for at < len(src) {
		c := src[at]
		if c != ' ' && c != '\t' && c != '\r' && c != '\n' {
			break
		}
		at++
	}
	return at
}
