// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"
	"strconv"
)

// An operandValue is the mode-specific payload of an operand. It is one
// of immediate, register, direct or matrix.
type operandValue interface {
	mode() Mode
}

type immediate struct {
	value int
}

type register struct {
	index int
}

type direct struct {
	label string
}

type matrix struct {
	label string
	row   int // register holding the row index
	col   int // register holding the column index
}

func (immediate) mode() Mode { return ModeImmediate }
func (register) mode() Mode  { return ModeRegister }
func (direct) mode() Mode    { return ModeDirect }
func (matrix) mode() Mode    { return ModeMatrix }

// An operand is a parsed instruction parameter.
type operand struct {
	val      operandValue
	encoding Encoding // final for immediates and registers, decided in pass 2 for labels
	src      fstring  // operand text, used to report errors after pass 1
}

func (o *operand) mode() Mode {
	return o.val.mode()
}

// Return the label referenced by the operand, if any.
func (o *operand) label() (string, bool) {
	switch v := o.val.(type) {
	case direct:
		return v.label, true
	case matrix:
		return v.label, true
	default:
		return "", false
	}
}

func (o *operand) String() string {
	switch v := o.val.(type) {
	case immediate:
		return fmt.Sprintf("#%d", v.value)
	case register:
		return registers[v.index]
	case direct:
		return v.label
	case matrix:
		return fmt.Sprintf("%s[%s][%s]", v.label, registers[v.row], registers[v.col])
	default:
		return "?"
	}
}

type parseState int

const (
	notThisType parseState = iota // the text is not an operand of this mode
	parsedValid                   // the operand was parsed
	parsedInvalid                 // the text has this mode but is malformed
)

// A parseResult is returned by each operand parser.
type parseResult struct {
	state parseState
	val   operandValue
	code  Code    // error code when state is parsedInvalid
	at    fstring // error location when state is parsedInvalid
}

func valid(v operandValue) parseResult {
	return parseResult{state: parsedValid, val: v}
}

func invalid(code Code, at fstring) parseResult {
	return parseResult{state: parsedInvalid, code: code, at: at}
}

var operandParsers = []func(a *assembler, s fstring) parseResult{
	(*assembler).parseRegisterOperand,
	(*assembler).parseImmediateOperand,
	(*assembler).parseMatrixOperand,
	(*assembler).parseDirectOperand,
}

// Parse a single operand. Errors are reported by the caller.
func (a *assembler) parseOperand(s fstring) (operand, parseResult) {
	for _, parse := range operandParsers {
		r := parse(a, s)
		switch r.state {
		case parsedValid:
			enc := EncAbsolute
			if r.val.mode() == ModeDirect || r.val.mode() == ModeMatrix {
				enc = EncUnknown
			}
			return operand{val: r.val, encoding: enc, src: s}, r
		case parsedInvalid:
			return operand{}, r
		}
	}
	return operand{}, invalid(CodeInvalidOperand, s)
}

func (a *assembler) parseRegisterOperand(s fstring) parseResult {
	if i := registerIndex(s.str); i >= 0 {
		return valid(register{index: i})
	}
	return parseResult{}
}

func (a *assembler) parseImmediateOperand(s fstring) parseResult {
	if !s.startsWithChar('#') {
		return parseResult{}
	}

	num := s.consume(1)
	if num.startsWith(sign) {
		num = num.consume(1)
	}
	if num.isEmpty() {
		return invalid(CodeImmediateMissing, s)
	}

	digits, remain := num.consumeWhile(decimal)
	switch {
	case remain.startsWithChar('.'):
		return invalid(CodeImmediateFloat, remain)
	case !remain.isEmpty():
		return invalid(CodeImmediateChar, remain)
	case len(digits.str) > a.cfg.MaxDigits:
		return invalid(CodeTooManyDigits, digits)
	}

	v, err := strconv.Atoi(s.str[1:])
	if err != nil {
		return invalid(CodeImmediateChar, s)
	}
	return valid(immediate{value: v})
}

// Parse label[rX][rY]. Whitespace inside the brackets is ignored.
func (a *assembler) parseMatrixOperand(s fstring) parseResult {
	name, remain := s.consumeUntilChar('[')
	if remain.isEmpty() {
		return parseResult{}
	}
	name = name.trimRight()
	if !a.cfg.validName(name.str) {
		return invalid(CodeMatrixLabel, name)
	}

	remain = remain.squeeze()
	row, remain, ok := consumeBracketed(remain)
	if !ok {
		return invalid(CodeMatrixTrailing, remain)
	}
	r := registerIndex(row.str)
	if r < 0 {
		return invalid(CodeMatrixRow, row)
	}

	col, remain, ok := consumeBracketed(remain)
	if !ok {
		return invalid(CodeMatrixTrailing, remain)
	}
	c := registerIndex(col.str)
	if c < 0 {
		return invalid(CodeMatrixColumn, col)
	}

	if !remain.isEmpty() {
		return invalid(CodeMatrixTrailing, remain)
	}
	return valid(matrix{label: name.str, row: r, col: c})
}

// Consume "[text]" and return the text between the brackets.
func consumeBracketed(s fstring) (inner, remain fstring, ok bool) {
	if !s.startsWithChar('[') {
		return fstring{}, s, false
	}
	inner, remain = s.consume(1).consumeUntilChar(']')
	if remain.isEmpty() {
		return fstring{}, s, false
	}
	return inner, remain.consume(1), true
}

func (a *assembler) parseDirectOperand(s fstring) parseResult {
	if a.cfg.validName(s.str) {
		return valid(direct{label: s.str})
	}
	return parseResult{}
}

// Split the text following an opcode into operand strings, checking the
// operand count and the placement of commas. Errors are reported here.
func (a *assembler) extractOperands(op *opcode, opword, text fstring) ([]fstring, bool) {
	text = text.trim()

	if op.operands == 0 {
		if !text.isEmpty() {
			a.addError(text, CodeTooManyOperands)
			return nil, false
		}
		return nil, true
	}

	words := 0
	for _, piece := range text.split(',') {
		words += operandWords(piece.str)
	}
	switch {
	case words == 0:
		a.addError(opword, CodeNoOperands)
		return nil, false
	case words > op.operands:
		a.addError(text, CodeTooManyOperands)
		return nil, false
	case words < op.operands:
		a.addError(text, CodeNotEnoughOperands)
		return nil, false
	}

	pieces := text.split(',')
	operands := make([]fstring, 0, len(pieces))
	for i, piece := range pieces {
		p := piece.trim()
		switch {
		case p.isEmpty() && i == 0:
			a.addError(piece, CodeCommaBeforeOperand)
			return nil, false
		case p.isEmpty() && i == len(pieces)-1:
			a.addError(piece, CodeCommaAfterOperand)
			return nil, false
		case p.isEmpty():
			a.addError(piece, CodeCommaBetweenOperands)
			return nil, false
		case operandWords(p.str) > 1:
			a.addError(p, CodeMissingComma)
			return nil, false
		}
		operands = append(operands, p)
	}
	return operands, true
}

// Parse all operands of an instruction and check their addressing modes
// against the opcode. A single operand is the destination.
func (a *assembler) parseOperands(op *opcode, opword, text fstring) ([]operand, bool) {
	texts, ok := a.extractOperands(op, opword, text)
	if !ok {
		return nil, false
	}

	ops := make([]operand, 0, len(texts))
	for i, t := range texts {
		o, r := a.parseOperand(t)
		if r.state != parsedValid {
			a.addError(r.at, r.code)
			return nil, false
		}

		isSource := len(texts) == 2 && i == 0
		switch {
		case isSource && !op.src.has(o.mode()):
			a.addError(t, CodeSourceNotAllowed)
			return nil, false
		case !isSource && !op.dst.has(o.mode()):
			a.addError(t, CodeDestNotAllowed)
			return nil, false
		}
		ops = append(ops, o)
	}
	return ops, true
}

// Count the whitespace-separated words in s. Whitespace inside brackets or
// before an opening bracket does not separate words, so a matrix operand
// written with spaces counts once.
func operandWords(s string) int {
	n, depth, inWord := 0, 0, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '[':
			depth++
			if !inWord {
				n, inWord = n+1, true
			}
		case c == ']':
			if depth > 0 {
				depth--
			}
		case whitespace(c):
			if depth > 0 {
				continue
			}
			j := i
			for j < len(s) && whitespace(s[j]) {
				j++
			}
			if inWord && j < len(s) && s[j] == '[' {
				i = j - 1
				continue
			}
			inWord = false
		default:
			if !inWord {
				n, inWord = n+1, true
			}
		}
	}
	return n
}
