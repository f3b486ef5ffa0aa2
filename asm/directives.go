// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import "strconv"

// Parse the operand of a .data directive: comma-separated signed decimal
// numbers.
func (a *assembler) parseDataValues(line fstring) ([]int, error) {
	return a.parseNumbers(line, false)
}

// Parse a comma-separated list of signed decimal numbers. Each number
// must fit in a data word.
func (a *assembler) parseNumbers(line fstring, allowEmpty bool) ([]int, error) {
	var values []int
	expectNumber := true
	for {
		line = line.consumeWhitespace()
		if line.isEmpty() {
			break
		}

		c := line.str[0]
		if expectNumber {
			switch {
			case c == ',' && len(values) == 0:
				a.addError(line, CodeDataLeadingComma)
				return nil, errParse
			case c == ',':
				a.addError(line, CodeDataDoubleComma)
				return nil, errParse
			case sign(c) || decimal(c):
				v, remain, err := a.consumeNumber(line)
				if err != nil {
					return nil, err
				}
				values = append(values, v)
				line, expectNumber = remain, false
			case c == '.':
				a.addError(line, CodeDataFloat)
				return nil, errParse
			case alpha(c):
				a.addError(line, CodeDataAlpha)
				return nil, errParse
			default:
				a.addError(line, CodeDataUnexpected)
				return nil, errParse
			}
			continue
		}

		switch {
		case c == ',':
			line, expectNumber = line.consume(1), true
		case sign(c) || decimal(c):
			a.addError(line, CodeDataMissingComma)
			return nil, errParse
		case c == '.':
			a.addError(line, CodeDataFloat)
			return nil, errParse
		case alpha(c):
			a.addError(line, CodeDataAlpha)
			return nil, errParse
		default:
			a.addError(line, CodeDataUnexpected)
			return nil, errParse
		}
	}

	switch {
	case expectNumber && len(values) > 0:
		a.addError(line, CodeDataTrailingComma)
		return nil, errParse
	case len(values) == 0 && !allowEmpty:
		a.addError(line, CodeDataNoNumbers)
		return nil, errParse
	}
	return values, nil
}

// Consume an optionally signed decimal number.
func (a *assembler) consumeNumber(line fstring) (int, fstring, error) {
	start := line
	if line.startsWith(sign) {
		line = line.consume(1)
	}

	digits, remain := line.consumeWhile(decimal)
	switch {
	case digits.isEmpty():
		a.addError(start, CodeDataSignNoDigits)
		return 0, remain, errParse
	case remain.startsWithChar('.'):
		a.addError(remain, CodeDataFloat)
		return 0, remain, errParse
	case remain.startsWith(alpha):
		a.addError(remain, CodeDataAlpha)
		return 0, remain, errParse
	}

	text := start.str[:len(start.str)-len(remain.str)]
	v, err := strconv.Atoi(text)
	if err != nil || !a.cfg.dataField().FitsSigned(v) {
		a.addError(start.trunc(len(text)), CodeDataRange)
		return 0, remain, errParse
	}
	return v, remain, nil
}

// Parse the operand of a .string directive. Every character becomes a
// data word, followed by a terminating zero.
func (a *assembler) parseString(line fstring) ([]int, error) {
	line = line.trim()
	switch {
	case line.isEmpty():
		a.addError(line, CodeStringMissing)
		return nil, errParse
	case !line.startsWithChar('"'):
		a.addError(line, CodeStringNoOpenQuote)
		return nil, errParse
	}

	content, remain := line.consume(1).consumeUntil(func(c byte) bool { return c == '"' })
	if i := content.scanWhile(stringChar); i < len(content.str) {
		a.addError(content.consume(i), CodeStringIllegalChar)
		return nil, errParse
	}
	if remain.isEmpty() {
		a.addError(line, CodeStringNoCloseQuote)
		return nil, errParse
	}
	if tail := remain.consume(1).trim(); !tail.isEmpty() {
		a.addError(tail, CodeStringTrailing)
		return nil, errParse
	}

	values := make([]int, 0, len(content.str)+1)
	for i := 0; i < len(content.str); i++ {
		values = append(values, int(content.str[i]))
	}
	return append(values, 0), nil
}

// Parse the operand of a .mat directive: a [rows][cols] size followed by
// an optional list of values. Missing cells are zero.
func (a *assembler) parseMatrix(line fstring) ([]int, error) {
	line = line.consumeWhitespace()
	if line.isEmpty() || !line.startsWithChar('[') {
		a.addError(line, CodeMatSizeMissing)
		return nil, errParse
	}

	size, rest := line.consumeWhile(wordChar)
	rows, cols, ok := parseMatrixSize(size.str)
	switch {
	case !ok:
		a.addError(size, CodeMatSizeFormat)
		return nil, errParse
	case rows == 0 || cols == 0:
		a.addError(size, CodeMatSizeZero)
		return nil, errParse
	}

	values, err := a.parseNumbers(rest, true)
	if err != nil {
		return nil, err
	}

	cells := rows * cols
	if len(values) > cells {
		a.addError(rest, CodeMatTooManyValues)
		return nil, errParse
	}

	// Cells beyond the machine's capacity can never be stored, so there is
	// no point in materializing them.
	if limit := a.cfg.MemoryCapacity + 1; cells > limit {
		cells = limit
	}
	out := make([]int, cells)
	copy(out, values)
	return out, nil
}

// Parse a matrix size of the exact form [digits][digits].
func parseMatrixSize(s string) (rows, cols int, ok bool) {
	dims := make([]int, 0, 2)
	for len(dims) < 2 {
		if len(s) == 0 || s[0] != '[' {
			return 0, 0, false
		}
		i := 1
		for ; i < len(s) && decimal(s[i]); i++ {
		}
		if i == 1 || i >= len(s) || s[i] != ']' || i > 5 {
			return 0, 0, false
		}
		n, err := strconv.Atoi(s[1:i])
		if err != nil {
			return 0, 0, false
		}
		dims = append(dims, n)
		s = s[i+1:]
	}
	if len(s) != 0 {
		return 0, 0, false
	}
	return dims[0], dims[1], true
}

// Parse an .extern directive and add the external label.
func (a *assembler) parseExtern(line fstring) {
	name, tail := line.consumeWord()
	tail = tail.trim()
	switch {
	case name.isEmpty():
		a.addError(line, CodeExternNoName)
	case !tail.isEmpty():
		a.addError(tail, CodeExternTrailing)
	case !a.cfg.validName(name.str):
		a.addError(name, CodeExternInvalidName)
	case !a.nameAvailable(name.str):
		a.addError(name, CodeExternExists)
	default:
		a.labels.add(Label{
			Name:       name.str,
			Address:    externalAddress,
			Kind:       KindUnresolved,
			Definition: DefExternal,
			Line:       a.origin(name),
		})
		a.logLine(name, "extern=%s", name.str)
	}
}

// Parse an .entry directive and mark the label as an entry. Called
// during the second pass, once every label is known.
func (a *assembler) parseEntry(line fstring) {
	name, tail := line.consumeWord()
	tail = tail.trim()
	switch {
	case name.isEmpty():
		a.addError(line, CodeEntryNoLabel)
		return
	case !a.cfg.validName(name.str):
		a.addError(name, CodeEntryInvalidName)
		return
	case !tail.isEmpty():
		a.addError(tail, CodeEntryTrailing)
		return
	}

	l := a.labels.lookup(name.str)
	switch {
	case l == nil:
		a.addError(name, CodeEntryUndefined)
	case l.Definition == DefExternal:
		a.addError(name, CodeEntryExternal)
	default:
		l.Entry = true
		a.logLine(name, "entry=%s", name.str)
	}
}
