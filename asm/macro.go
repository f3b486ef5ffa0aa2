// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
)

// A Macro is a named block of source lines captured between mcro and
// mcroend.
type Macro struct {
	Name      string
	Body      []string
	Lines     int // number of source lines the declaration spans after mcro
	DefinedAt int // source line of the mcro keyword
}

type macroTable struct {
	macros []*Macro
	index  map[string]*Macro
}

func newMacroTable() *macroTable {
	return &macroTable{index: make(map[string]*Macro)}
}

func (t *macroTable) lookup(name string) *Macro {
	return t.index[name]
}

func (t *macroTable) defined(name string) bool {
	_, ok := t.index[name]
	return ok
}

func (t *macroTable) add(m *Macro) {
	t.macros = append(t.macros, m)
	t.index[m.Name] = m
}

// An Expansion is the result of preprocessing a source file.
type Expansion struct {
	Lines   []string // expanded source lines
	LineMap LineMap  // expanded line -> original line
	Macros  []Macro  // macros in declaration order
	Errors  []string // errors encountered while preprocessing
}

// WriteTo writes the expanded source text.
func (e *Expansion) WriteTo(w io.Writer) (n int64, err error) {
	return expandedText(e.Lines).WriteTo(w)
}

// Preprocess reads source code from r and expands all macro invocations.
// The returned error wraps ErrSyntax if the source has macro errors.
func Preprocess(r io.Reader, filename string, cfg Config, out io.Writer, options Option) (*Expansion, error) {
	if out == nil {
		out = os.Stdout
	}
	a := newAssembler(r, filename, cfg, out, options)
	err := a.run([]func(a *assembler) error{(*assembler).preprocess})
	return a.expansion(), err
}

func (a *assembler) expansion() *Expansion {
	e := &Expansion{
		Lines:   a.expanded,
		LineMap: *a.lineMap,
		Errors:  a.errorStrings(),
	}
	for _, m := range a.macros.macros {
		e.Macros = append(e.Macros, *m)
	}
	return e
}

// Scan the original source, record macro declarations and replace every
// macro invocation with the macro's body.
func (a *assembler) preprocess() error {
	a.logSection("Preprocessing")

	scanner := bufio.NewScanner(a.r)
	row := 0
	for scanner.Scan() {
		row++
		line := newFstring(row, strings.TrimRight(scanner.Text(), "\r"))
		word, rest := line.consumeWord()

		switch {
		case word.str == macroStart:
			err := a.declareMacro(scanner, &row, word, rest)
			if err != nil {
				return err
			}

		case word.str == macroEnd:
			a.addSourceError(word, CodeMacroEndWithoutStart)

		case a.macros.defined(word.str):
			if rest = rest.trim(); !rest.isEmpty() {
				a.addSourceError(rest, CodeMacroCallTrailing)
				continue
			}
			m := a.macros.lookup(word.str)
			a.logLine(line, "expand=%s", m.Name)
			for i, body := range m.Body {
				a.emitExpanded(body, m.DefinedAt+1+i)
			}

		default:
			a.emitExpanded(line.str, row)
		}
	}
	switch err := scanner.Err(); {
	case errors.Is(err, bufio.ErrTooLong):
		a.addSourceError(newFstring(row+1, ""), CodeLineTooLong)
		return errParse
	case err != nil:
		a.addDiagnostic(SeverityUser, CodeOpenFile, fstring{}, err.Error())
		return errParse
	}

	a.preprocessed = len(a.diags) == 0
	return nil
}

// Append a line to the expanded source and map it to its origin.
func (a *assembler) emitExpanded(text string, origin int) {
	a.expanded = append(a.expanded, text)
	a.lineMap.add(len(a.expanded), origin)
}

// Handle a mcro declaration. The body is consumed even when the
// declaration line itself is faulty, so the body's lines are not
// mistaken for ordinary code.
func (a *assembler) declareMacro(scanner *bufio.Scanner, row *int, keyword, rest fstring) error {
	definedAt := *row
	name, rest := rest.consumeWord()

	valid := false
	switch {
	case name.isEmpty():
		a.addSourceError(keyword, CodeMacroNoName)
	case !rest.trim().isEmpty():
		a.addSourceError(rest.trim(), CodeMacroTrailing)
	case !a.cfg.validName(name.str):
		a.addSourceError(name, CodeMacroInvalidName)
	case isReserved(name.str) || a.macros.defined(name.str):
		a.addSourceError(name, CodeMacroNameUsed)
	default:
		valid = true
	}

	var body []string
	for scanner.Scan() {
		*row++
		line := newFstring(*row, strings.TrimRight(scanner.Text(), "\r"))
		word, tail := line.consumeWord()
		if word.str != macroEnd {
			body = append(body, line.str)
			continue
		}

		if tail = tail.trim(); !tail.isEmpty() {
			a.addSourceError(tail, CodeMacroEndTrailing)
		}
		if len(body) == 0 {
			a.addSourceError(word, CodeMacroEmpty)
			return nil
		}
		if valid {
			m := &Macro{
				Name:      name.str,
				Body:      body,
				Lines:     *row - definedAt,
				DefinedAt: definedAt,
			}
			a.macros.add(m)
			a.logLine(keyword, "macro=%s lines=%d", m.Name, len(m.Body))
		}
		return nil
	}

	a.addSourceError(keyword, CodeMacroNoEnd)
	return errParse
}
