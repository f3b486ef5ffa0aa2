// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"
	"io"
)

const base4Digits = "abcd"

// Widths used by the object file.
const (
	addressWidth = 4
	valueWidth   = 5
)

// Base4 formats the low bits of n in base 4 using the digits a, b, c and
// d, left-padded with 'a' to width digits. A width of -1 produces the
// minimal representation. Values wider than width are truncated to their
// low digits.
func Base4(n int, width int) string {
	if width < 0 {
		v := uint(n)
		width = 1
		for v >= 4 {
			v >>= 2
			width++
		}
	}

	b := make([]byte, width)
	v := uint(n)
	for i := width - 1; i >= 0; i-- {
		b[i] = base4Digits[v&3]
		v >>= 2
	}
	return string(b)
}

// ParseBase4 converts a base-4 string made of the digits a, b, c and d
// back into an integer.
func ParseBase4(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty base-4 number")
	}
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 'a' || c > 'd' {
			return 0, fmt.Errorf("invalid base-4 digit '%c'", c)
		}
		n = n<<2 | int(c-'a')
	}
	return n, nil
}

// WriteTo writes the object file: a header with the instruction and data
// word counts, followed by every instruction word and then every data
// word.
func (a *Assembly) WriteTo(w io.Writer) (n int64, err error) {
	ew := &errWriter{w: w}
	ew.printf("%s %s\n", Base4(len(a.Code), -1), Base4(len(a.Data), -1))
	for _, words := range [][]Word{a.Code, a.Data} {
		for _, word := range words {
			ew.printf("%s %s\n", Base4(word.Address, addressWidth), Base4(word.Value, valueWidth))
		}
	}
	return ew.n, ew.err
}

// WriteEntriesTo writes one line per entry label with its address.
func (a *Assembly) WriteEntriesTo(w io.Writer) (n int64, err error) {
	ew := &errWriter{w: w}
	for _, l := range a.Entries {
		ew.printf("%s %s\n", l.Name, Base4(l.Address, addressWidth))
	}
	return ew.n, ew.err
}

// WriteExternalsTo writes one line per use of an external label.
func (a *Assembly) WriteExternalsTo(w io.Writer) (n int64, err error) {
	ew := &errWriter{w: w}
	for _, u := range a.Externals {
		ew.printf("%s %s\n", u.Label, Base4(u.Address, addressWidth))
	}
	return ew.n, ew.err
}

// expandedText is the source after macro expansion, written one line per
// row.
type expandedText []string

func (e expandedText) WriteTo(w io.Writer) (n int64, err error) {
	ew := &errWriter{w: w}
	for _, l := range e {
		ew.printf("%s\n", l)
	}
	return ew.n, ew.err
}

// An errWriter counts the bytes written and remembers the first error,
// after which all writes are skipped.
type errWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	nn, err := fmt.Fprintf(ew.w, format, args...)
	ew.n += int64(nn)
	ew.err = err
}
