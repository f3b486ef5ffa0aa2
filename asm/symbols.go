// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

// Kind describes which image a label's address refers to.
type Kind int

const (
	KindCode Kind = iota
	KindData
	KindUnresolved
)

func (k Kind) String() string {
	switch k {
	case KindCode:
		return "code"
	case KindData:
		return "data"
	default:
		return "unresolved"
	}
}

// Definition tells whether a label is defined in this file or elsewhere.
type Definition int

const (
	DefNormal Definition = iota
	DefExternal
)

func (d Definition) String() string {
	if d == DefExternal {
		return "external"
	}
	return "normal"
}

// externalAddress is the address stored for labels declared .extern.
const externalAddress = 0

// A Label is a named address in the program.
type Label struct {
	Name       string
	Address    int
	Kind       Kind
	Definition Definition
	Entry      bool // exported with .entry
	Line       int  // source line of the definition
}

// A symbolTable holds labels in definition order.
type symbolTable struct {
	labels []*Label
	index  map[string]*Label
}

func newSymbolTable() *symbolTable {
	return &symbolTable{index: make(map[string]*Label)}
}

func (t *symbolTable) lookup(name string) *Label {
	return t.index[name]
}

func (t *symbolTable) defined(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Add a label. The caller has already checked that the name is free.
func (t *symbolTable) add(l Label) *Label {
	p := &l
	t.labels = append(t.labels, p)
	t.index[l.Name] = p
	return p
}

// Shift the addresses of all labels of the given kind.
func (t *symbolTable) relocate(kind Kind, offset int) {
	for _, l := range t.labels {
		if l.Kind == kind {
			l.Address += offset
		}
	}
}

// Return copies of all labels, in definition order.
func (t *symbolTable) list() []Label {
	out := make([]Label, len(t.labels))
	for i, l := range t.labels {
		out[i] = *l
	}
	return out
}

// Return copies of all entry labels, in definition order.
func (t *symbolTable) entries() []Label {
	var out []Label
	for _, l := range t.labels {
		if l.Entry {
			out = append(out, *l)
		}
	}
	return out
}

// Report whether a name may be used for a new label or macro.
func (a *assembler) nameAvailable(name string) bool {
	return !isReserved(name) && !a.labels.defined(name) && !a.macros.defined(name)
}
