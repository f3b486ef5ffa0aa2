// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import "strings"

// An fstring is a string that keeps track of its position within the
// expanded source from which it was read.
type fstring struct {
	row    int    // 1-based line number in the expanded source
	column int    // 0-based column of start of substring
	str    string // the actual substring of interest
	full   string // the full line as originally read
}

func newFstring(row int, str string) fstring {
	return fstring{row, 0, str, str}
}

func (l fstring) String() string {
	return l.str
}

func (l fstring) advanceColumn(n int) int {
	c := l.column
	for i := 0; i < n; i++ {
		if l.str[i] == '\t' {
			c += 8 - (c % 8)
		} else {
			c++
		}
	}
	return c
}

func (l fstring) consume(n int) fstring {
	col := l.advanceColumn(n)
	return fstring{l.row, col, l.str[n:], l.full}
}

func (l fstring) trunc(n int) fstring {
	return fstring{l.row, l.column, l.str[:n], l.full}
}

func (l fstring) isEmpty() bool {
	return len(l.str) == 0
}

func (l fstring) startsWith(fn func(c byte) bool) bool {
	return len(l.str) > 0 && fn(l.str[0])
}

func (l fstring) startsWithChar(c byte) bool {
	return len(l.str) > 0 && l.str[0] == c
}

func (l fstring) endsWithChar(c byte) bool {
	return len(l.str) > 0 && l.str[len(l.str)-1] == c
}

func (l fstring) consumeWhitespace() fstring {
	return l.consume(l.scanWhile(whitespace))
}

// Remove trailing whitespace, including any line terminator.
func (l fstring) trimRight() fstring {
	n := len(l.str)
	for n > 0 && (whitespace(l.str[n-1]) || l.str[n-1] == '\r' || l.str[n-1] == '\n') {
		n--
	}
	return l.trunc(n)
}

// Remove leading and trailing whitespace.
func (l fstring) trim() fstring {
	return l.consumeWhitespace().trimRight()
}

func (l fstring) scanWhile(fn func(c byte) bool) int {
	i := 0
	for ; i < len(l.str) && fn(l.str[i]); i++ {
	}
	return i
}

func (l fstring) scanUntil(fn func(c byte) bool) int {
	i := 0
	for ; i < len(l.str) && !fn(l.str[i]); i++ {
	}
	return i
}

func (l fstring) scanUntilChar(c byte) int {
	i := 0
	for ; i < len(l.str) && l.str[i] != c; i++ {
	}
	return i
}

func (l fstring) consumeWhile(fn func(c byte) bool) (consumed, remain fstring) {
	i := l.scanWhile(fn)
	consumed, remain = l.trunc(i), l.consume(i)
	return
}

func (l fstring) consumeUntil(fn func(c byte) bool) (consumed, remain fstring) {
	i := l.scanUntil(fn)
	consumed, remain = l.trunc(i), l.consume(i)
	return
}

func (l fstring) consumeUntilChar(c byte) (consumed, remain fstring) {
	i := l.scanUntilChar(c)
	consumed, remain = l.trunc(i), l.consume(i)
	return
}

// Consume the next whitespace-delimited word, skipping any whitespace
// that precedes it.
func (l fstring) consumeWord() (word, remain fstring) {
	l = l.consumeWhitespace()
	return l.consumeWhile(wordChar)
}

// Split the string at every occurrence of c. Each piece keeps its own
// column.
func (l fstring) split(c byte) []fstring {
	var pieces []fstring
	for {
		piece, remain := l.consumeUntilChar(c)
		pieces = append(pieces, piece)
		if remain.isEmpty() {
			return pieces
		}
		l = remain.consume(1)
	}
}

// Return a copy of the string with all whitespace removed.
func (l fstring) squeeze() fstring {
	if !strings.ContainsAny(l.str, " \t") {
		return l
	}
	b := make([]byte, 0, len(l.str))
	for i := 0; i < len(l.str); i++ {
		if !whitespace(l.str[i]) {
			b = append(b, l.str[i])
		}
	}
	return fstring{l.row, l.column, string(b), l.full}
}

//
// character helper functions
//

func whitespace(c byte) bool {
	return c == ' ' || c == '\t'
}

func wordChar(c byte) bool {
	return c != ' ' && c != '\t'
}

func alpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func decimal(c byte) bool {
	return (c >= '0' && c <= '9')
}

func comment(c byte) bool {
	return c == ';'
}

func sign(c byte) bool {
	return c == '+' || c == '-'
}

func nameChar(c byte) bool {
	return alpha(c) || decimal(c) || c == '_'
}

func stringChar(c byte) bool {
	return alpha(c) || decimal(c) || c == ' '
}
