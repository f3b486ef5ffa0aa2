// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/beevik/asm10/asm"
)

var (
	errExprParse   = errors.New("expression syntax error")
	errDivideZero  = errors.New("division by zero")
	errEmptyResult = errors.New("expression is empty")
)

type tokenType byte

const (
	tokenNil tokenType = iota
	tokenIdentifier
	tokenNumber
	tokenOp
	tokenLParen
	tokenRParen
)

type token struct {
	typ   tokenType
	num   int64
	ident string
	op    *operator
}

type associativity byte

const (
	left associativity = iota
	right
)

type operator struct {
	symbol     string
	precedence byte
	assoc      associativity
	unary      bool
	eval       func(a, b int64) (int64, error)
}

var (
	opMul = &operator{"*", 6, left, false, func(a, b int64) (int64, error) { return a * b, nil }}
	opDiv = &operator{"/", 6, left, false, func(a, b int64) (int64, error) {
		if b == 0 {
			return 0, errDivideZero
		}
		return a / b, nil
	}}
	opMod = &operator{"%", 6, left, false, func(a, b int64) (int64, error) {
		if b == 0 {
			return 0, errDivideZero
		}
		return a % b, nil
	}}
	opAdd = &operator{"+", 5, left, false, func(a, b int64) (int64, error) { return a + b, nil }}
	opSub = &operator{"-", 5, left, false, func(a, b int64) (int64, error) { return a - b, nil }}
	opShl = &operator{"<<", 4, left, false, func(a, b int64) (int64, error) { return a << uint(b&63), nil }}
	opShr = &operator{">>", 4, left, false, func(a, b int64) (int64, error) { return a >> uint(b&63), nil }}
	opAnd = &operator{"&", 3, left, false, func(a, b int64) (int64, error) { return a & b, nil }}
	opXor = &operator{"^", 2, left, false, func(a, b int64) (int64, error) { return a ^ b, nil }}
	opOr  = &operator{"|", 1, left, false, func(a, b int64) (int64, error) { return a | b, nil }}

	opNot   = &operator{"~", 7, right, true, func(a, _ int64) (int64, error) { return ^a, nil }}
	opNeg   = &operator{"-", 7, right, true, func(a, _ int64) (int64, error) { return -a, nil }}
	opPlus  = &operator{"+", 7, right, true, func(a, _ int64) (int64, error) { return a, nil }}
	unaryOf = map[*operator]*operator{opSub: opNeg, opAdd: opPlus}
)

var singleCharOps = map[byte]*operator{
	'*': opMul, '/': opDiv, '%': opMod, '+': opAdd, '-': opSub,
	'&': opAnd, '^': opXor, '|': opOr, '~': opNot,
}

// A resolver supplies values for identifiers appearing in an expression.
type resolver interface {
	resolveIdentifier(s string) (int64, error)
}

// An exprParser evaluates integer expressions using the shunting-yard
// algorithm.
type exprParser struct {
	output    []token
	operators []token
	prev      tokenType
}

func newExprParser() *exprParser {
	return &exprParser{}
}

func (p *exprParser) reset() {
	p.output = p.output[:0]
	p.operators = p.operators[:0]
	p.prev = tokenNil
}

// Parse evaluates expr, resolving identifiers through r.
func (p *exprParser) Parse(expr string, r resolver) (int64, error) {
	defer p.reset()

	s := expr
	for {
		tok, remain, err := nextToken(s)
		if err != nil {
			return 0, err
		}
		if tok.typ == tokenNil {
			break
		}
		s = remain

		switch tok.typ {
		case tokenNumber:
			p.output = append(p.output, tok)

		case tokenIdentifier:
			v, err := r.resolveIdentifier(tok.ident)
			if err != nil {
				return 0, err
			}
			p.output = append(p.output, token{typ: tokenNumber, num: v})

		case tokenLParen:
			p.operators = append(p.operators, tok)

		case tokenRParen:
			if !p.popUntilLParen() {
				return 0, errExprParse
			}

		case tokenOp:
			if u, ok := unaryOf[tok.op]; ok && p.expectsOperand() {
				tok.op = u
			}
			if !tok.op.unary && p.expectsOperand() {
				return 0, errExprParse
			}
			for p.collapsible(tok.op) {
				p.output = append(p.output, p.pop())
			}
			p.operators = append(p.operators, tok)
		}

		p.prev = tok.typ
	}

	for len(p.operators) > 0 {
		tok := p.pop()
		if tok.typ == tokenLParen {
			return 0, errExprParse
		}
		p.output = append(p.output, tok)
	}

	if len(p.output) == 0 {
		return 0, errEmptyResult
	}
	v, err := p.eval()
	if err != nil {
		return 0, err
	}
	if len(p.output) != 0 {
		return 0, errExprParse
	}
	return v, nil
}

func (p *exprParser) expectsOperand() bool {
	return p.prev == tokenNil || p.prev == tokenOp || p.prev == tokenLParen
}

func (p *exprParser) pop() token {
	top := len(p.operators) - 1
	tok := p.operators[top]
	p.operators = p.operators[:top]
	return tok
}

func (p *exprParser) popUntilLParen() bool {
	for len(p.operators) > 0 {
		tok := p.pop()
		if tok.typ == tokenLParen {
			return true
		}
		p.output = append(p.output, tok)
	}
	return false
}

func (p *exprParser) collapsible(op *operator) bool {
	if len(p.operators) == 0 {
		return false
	}
	top := p.operators[len(p.operators)-1]
	if top.typ != tokenOp || op.unary {
		return false
	}
	return top.op.precedence > op.precedence ||
		(top.op.precedence == op.precedence && op.assoc == left)
}

// eval consumes the postfix output from its end.
func (p *exprParser) eval() (int64, error) {
	if len(p.output) == 0 {
		return 0, errExprParse
	}

	top := len(p.output) - 1
	tok := p.output[top]
	p.output = p.output[:top]

	switch tok.typ {
	case tokenNumber:
		return tok.num, nil
	case tokenOp:
	default:
		return 0, errExprParse
	}

	b, err := p.eval()
	if err != nil {
		return 0, err
	}
	if tok.op.unary {
		return tok.op.eval(b, 0)
	}
	a, err := p.eval()
	if err != nil {
		return 0, err
	}
	return tok.op.eval(a, b)
}

func nextToken(s string) (tok token, remain string, err error) {
	s = skipWhile(s, whitespace)
	if s == "" {
		return token{}, s, nil
	}

	c := s[0]
	switch {
	case c == '(':
		return token{typ: tokenLParen}, s[1:], nil
	case c == ')':
		return token{typ: tokenRParen}, s[1:], nil
	case c == '<' || c == '>':
		if len(s) < 2 || s[1] != c {
			return token{}, s, errExprParse
		}
		op := opShl
		if c == '>' {
			op = opShr
		}
		return token{typ: tokenOp, op: op}, s[2:], nil
	case singleCharOps[c] != nil:
		return token{typ: tokenOp, op: singleCharOps[c]}, s[1:], nil
	case decimal(c):
		return parseNumber(s)
	case identStart(c):
		n := len(s) - len(skipWhile(s, identChar))
		return token{typ: tokenIdentifier, ident: s[:n]}, s[n:], nil
	default:
		return token{}, s, fmt.Errorf("unexpected character '%c' in expression", c)
	}
}

// parseNumber reads a decimal number or a 0x, 0b or 0q prefixed one. 0q
// numbers use the machine's base-4 digits a-d.
func parseNumber(s string) (tok token, remain string, err error) {
	base, digit := 10, decimal
	if len(s) > 1 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			base, digit = 16, hexadecimal
		case 'b', 'B':
			base, digit = 2, binary
		case 'q', 'Q':
			base, digit = 4, base4
		}
		if base != 10 {
			s = s[2:]
		}
	}

	rest := skipWhile(s, digit)
	num := s[:len(s)-len(rest)]
	if num == "" || (rest != "" && identChar(rest[0])) {
		return token{}, s, errExprParse
	}

	var v int64
	if base == 4 {
		var n int
		n, err = asm.ParseBase4(num)
		v = int64(n)
	} else {
		v, err = strconv.ParseInt(num, base, 64)
	}
	if err != nil {
		return token{}, s, errExprParse
	}
	return token{typ: tokenNumber, num: v}, rest, nil
}

func skipWhile(s string, fn func(c byte) bool) string {
	i := 0
	for i < len(s) && fn(s[i]) {
		i++
	}
	return s[i:]
}

func whitespace(c byte) bool {
	return c == ' ' || c == '\t'
}

func decimal(c byte) bool {
	return c >= '0' && c <= '9'
}

func hexadecimal(c byte) bool {
	return decimal(c) || (c >= 'A' && c <= 'F') || (c >= 'a' && c <= 'f')
}

func binary(c byte) bool {
	return c == '0' || c == '1'
}

func base4(c byte) bool {
	return c >= 'a' && c <= 'd'
}

func identStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func identChar(c byte) bool {
	return identStart(c) || decimal(c) || c == '_'
}
