// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"encoding/json"
	"io"
	"sort"
)

// A SourceMap describes the mapping between source code line numbers and
// final instruction addresses.
type SourceMap struct {
	File       string       // source file name
	LoadOffset int          // address of the first instruction word
	Size       int          // total number of code and data words
	Lines      []SourceLine // sorted by address
	Exports    []Export     // entry labels sorted by address
}

// A SourceLine represents a mapping between an instruction address and
// the source line used to generate it.
type SourceLine struct {
	Address int // Instruction address
	Line    int // Original source line number
}

// An Export describes an entry label.
type Export struct {
	Label   string
	Address int
}

func sortExports(entries []Label) []Export {
	exports := make([]Export, 0, len(entries))
	for _, l := range entries {
		exports = append(exports, Export{Label: l.Name, Address: l.Address})
	}
	sort.Slice(exports, func(i, j int) bool {
		if exports[i].Address == exports[j].Address {
			return exports[i].Label < exports[j].Label
		}
		return exports[i].Address < exports[j].Address
	})
	return exports
}

// Search searches the source map for a mapping with the requested address.
func (s *SourceMap) Search(addr int) (filename string, line int) {
	i := sort.Search(len(s.Lines), func(i int) bool {
		return s.Lines[i].Address >= addr
	})
	if i < len(s.Lines) && s.Lines[i].Address == addr {
		return s.File, s.Lines[i].Line
	}
	return "", -1
}

// Lookup returns the address of an exported label.
func (s *SourceMap) Lookup(label string) (addr int, ok bool) {
	for _, e := range s.Exports {
		if e.Label == label {
			return e.Address, true
		}
	}
	return 0, false
}

// ReadFrom reads the contents of an exported source map file.
func (s *SourceMap) ReadFrom(r io.Reader) (n int64, err error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}

	err = json.Unmarshal(b, s)
	if err != nil {
		return 0, err
	}
	return int64(len(b)), nil
}

// WriteTo writes the contents of the source map to an output stream.
func (s *SourceMap) WriteTo(w io.Writer) (n int64, err error) {
	b, err := json.Marshal(*s)
	if err != nil {
		return 0, err
	}

	nn, err := w.Write(b)
	return int64(nn), err
}
