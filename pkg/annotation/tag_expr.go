package annotation

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TagExpr is a compiled boolean expression over the labels of one image, for
// example `Car and not (Bridge or Tunnel)`. The zero value matches nothing.
type TagExpr struct {
	root exprNode
	src  string
}

// ParseTagExpr compiles raw. Operators are and/or/not (case-insensitive) or
// &&, ||, !; parentheses group; single or double quotes make a literal of a
// tag that contains spaces or collides with a keyword. Precedence is
// not > and > or.
func ParseTagExpr(raw string) (TagExpr, error) {
	toks, err := lexTagExpr(raw)
	if err != nil {
		return TagExpr{}, fmt.Errorf("%w: %v", ErrInvalidTagExpr, err)
	}
	if len(toks) == 1 {
		return TagExpr{}, fmt.Errorf("%w: expression is empty", ErrInvalidTagExpr)
	}
	p := &exprParser{toks: toks}
	root, err := p.parseOr()
	if err == nil {
		if tok := p.peek(); tok.kind != tokEOF {
			err = fmt.Errorf("unexpected %q at position %d", tok.text, tok.pos+1)
		}
	}
	if err != nil {
		return TagExpr{}, fmt.Errorf("%w: %v", ErrInvalidTagExpr, err)
	}
	return TagExpr{root: root, src: strings.TrimSpace(raw)}, nil
}

// TagLiteral returns an expression matching images that carry tag exactly.
func TagLiteral(tag string) TagExpr {
	return TagExpr{root: literalNode(tag), src: tag}
}

// Match reports whether labels satisfy the expression.
func (e TagExpr) Match(labels []string) bool {
	if e.root == nil {
		return false
	}
	return e.root.match(labels)
}

func (e TagExpr) String() string { return e.src }

type exprNode interface {
	match(labels []string) bool
}

type literalNode string

func (n literalNode) match(labels []string) bool {
	return slices.Contains(labels, string(n))
}

type notNode struct{ inner exprNode }

func (n notNode) match(labels []string) bool { return !n.inner.match(labels) }

type andNode struct{ left, right exprNode }

func (n andNode) match(labels []string) bool {
	return n.left.match(labels) && n.right.match(labels)
}

type orNode struct{ left, right exprNode }

func (n orNode) match(labels []string) bool {
	return n.left.match(labels) || n.right.match(labels)
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokWord
	tokAnd
	tokOr
	tokNot
	tokOpen
	tokClose
)

type exprToken struct {
	kind tokKind
	text string
	pos  int
}

func isOperatorByte(b byte) bool {
	switch b {
	case '(', ')', '!', '&', '|', '\'', '"':
		return true
	}
	return false
}

func lexTagExpr(raw string) ([]exprToken, error) {
	in := strings.TrimSpace(raw)
	toks := make([]exprToken, 0)
	pos := 0
	for pos < len(in) {
		r, size := utf8.DecodeRuneInString(in[pos:])
		if unicode.IsSpace(r) {
			pos += size
			continue
		}
		switch in[pos] {
		case '(':
			toks = append(toks, exprToken{kind: tokOpen, text: "(", pos: pos})
			pos++
		case ')':
			toks = append(toks, exprToken{kind: tokClose, text: ")", pos: pos})
			pos++
		case '!':
			toks = append(toks, exprToken{kind: tokNot, text: "!", pos: pos})
			pos++
		case '&', '|':
			op := in[pos]
			if pos+1 >= len(in) || in[pos+1] != op {
				return nil, fmt.Errorf("unexpected %q at position %d", string(op), pos+1)
			}
			kind := tokAnd
			if op == '|' {
				kind = tokOr
			}
			toks = append(toks, exprToken{kind: kind, text: in[pos : pos+2], pos: pos})
			pos += 2
		case '\'', '"':
			quote := in[pos]
			start := pos
			pos++
			var b strings.Builder
			closed := false
			for pos < len(in) {
				ch := in[pos]
				if ch == '\\' && pos+1 < len(in) {
					b.WriteByte(in[pos+1])
					pos += 2
					continue
				}
				pos++
				if ch == quote {
					closed = true
					break
				}
				b.WriteByte(ch)
			}
			if !closed {
				return nil, fmt.Errorf("unterminated quoted tag at position %d", start+1)
			}
			toks = append(toks, exprToken{kind: tokWord, text: b.String(), pos: start})
		default:
			start := pos
			for pos < len(in) {
				r, size := utf8.DecodeRuneInString(in[pos:])
				if unicode.IsSpace(r) || isOperatorByte(in[pos]) {
					break
				}
				pos += size
			}
			word := in[start:pos]
			switch strings.ToLower(word) {
			case "and":
				toks = append(toks, exprToken{kind: tokAnd, text: word, pos: start})
			case "or":
				toks = append(toks, exprToken{kind: tokOr, text: word, pos: start})
			case "not":
				toks = append(toks, exprToken{kind: tokNot, text: word, pos: start})
			default:
				toks = append(toks, exprToken{kind: tokWord, text: word, pos: start})
			}
		}
	}
	return append(toks, exprToken{kind: tokEOF, pos: len(in)}), nil
}

type exprParser struct {
	toks []exprToken
	i    int
}

func (p *exprParser) peek() exprToken {
	if p.i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i]
}

func (p *exprParser) next() exprToken {
	tok := p.peek()
	if p.i < len(p.toks) {
		p.i++
	}
	return tok
}

func (p *exprParser) parseOr() (exprNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orNode{left: left, right: right}
	}
	return left, nil
}

func (p *exprParser) parseAnd() (exprNode, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = andNode{left: left, right: right}
	}
	return left, nil
}

func (p *exprParser) parseUnary() (exprNode, error) {
	if p.peek().kind == tokNot {
		p.next()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (exprNode, error) {
	tok := p.next()
	switch tok.kind {
	case tokWord:
		return literalNode(tok.text), nil
	case tokOpen:
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		closing := p.next()
		if closing.kind != tokClose {
			if closing.kind == tokEOF {
				return nil, fmt.Errorf("expected ')' before end of expression")
			}
			return nil, fmt.Errorf("expected ')' before position %d", closing.pos+1)
		}
		return inner, nil
	case tokEOF:
		return nil, fmt.Errorf("unexpected end of expression")
	default:
		return nil, fmt.Errorf("unexpected %q at position %d", tok.text, tok.pos+1)
	}
}
