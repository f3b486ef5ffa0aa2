// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

// Mode is an operand addressing mode.
type Mode int

// Addressing modes, numbered as they are encoded.
const (
	ModeImmediate Mode = iota // #value
	ModeDirect                // label
	ModeMatrix                // label[rX][rY]
	ModeRegister              // rN
)

var modeName = []string{
	"IMM",
	"DIR",
	"MAT",
	"REG",
}

func (m Mode) String() string {
	if m >= 0 && int(m) < len(modeName) {
		return modeName[m]
	}
	return "???"
}

// Encoding is the tag stored in the ERA field of a machine word.
type Encoding int

// Encoding tags. EncUnknown is a placeholder for label operands whose
// tag is decided during the second pass.
const (
	EncAbsolute    Encoding = 0
	EncExternal    Encoding = 1
	EncRelocatable Encoding = 2
	EncUnknown     Encoding = 3
)

func (e Encoding) String() string {
	switch e {
	case EncAbsolute:
		return "A"
	case EncExternal:
		return "E"
	case EncRelocatable:
		return "R"
	default:
		return "?"
	}
}

type modeSet uint8

const (
	modesAll     modeSet = 1<<ModeImmediate | 1<<ModeDirect | 1<<ModeMatrix | 1<<ModeRegister
	modesNoImm   modeSet = 1<<ModeDirect | 1<<ModeMatrix | 1<<ModeRegister
	modesAddress modeSet = 1<<ModeDirect | 1<<ModeMatrix
)

func (s modeSet) has(m Mode) bool {
	return s&(1<<m) != 0
}

// An opcode describes one machine instruction.
type opcode struct {
	name     string
	value    int
	operands int
	src      modeSet
	dst      modeSet
	encoding Encoding
}

var opcodes = []opcode{
	{name: "mov", value: 0, operands: 2, src: modesAll, dst: modesNoImm},
	{name: "cmp", value: 1, operands: 2, src: modesAll, dst: modesAll},
	{name: "add", value: 2, operands: 2, src: modesAll, dst: modesNoImm},
	{name: "sub", value: 3, operands: 2, src: modesAll, dst: modesNoImm},
	{name: "lea", value: 4, operands: 2, src: modesAddress, dst: modesNoImm},
	{name: "clr", value: 5, operands: 1, dst: modesNoImm},
	{name: "not", value: 6, operands: 1, dst: modesNoImm},
	{name: "inc", value: 7, operands: 1, dst: modesNoImm},
	{name: "dec", value: 8, operands: 1, dst: modesNoImm},
	{name: "jmp", value: 9, operands: 1, dst: modesNoImm},
	{name: "bne", value: 10, operands: 1, dst: modesNoImm},
	{name: "jsr", value: 11, operands: 1, dst: modesNoImm},
	{name: "red", value: 12, operands: 1, dst: modesNoImm},
	{name: "prn", value: 13, operands: 1, dst: modesAll},
	{name: "rts", value: 14, operands: 0},
	{name: "stop", value: 15, operands: 0},
}

var opcodeMap = make(map[string]*opcode, len(opcodes))

func init() {
	for i := range opcodes {
		opcodeMap[opcodes[i].name] = &opcodes[i]
	}
}

func lookupOpcode(name string) *opcode {
	return opcodeMap[name]
}

var registers = []string{"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7"}

// Return the register number for a register name, or -1.
func registerIndex(s string) int {
	for i, r := range registers {
		if r == s {
			return i
		}
	}
	return -1
}

// Line kinds recognized by the first pass.
type lineKind int

const (
	lineEmpty lineKind = iota
	lineInstruction
	lineData
	lineEntry
	lineExtern
	lineUnknown
)

var lineKindName = []string{
	"empty",
	"instruction",
	"data",
	"entry",
	"extern",
	"unknown",
}

func (k lineKind) String() string {
	return lineKindName[k]
}

type directiveData struct {
	kind lineKind
	fn   func(a *assembler, line fstring) ([]int, error)
}

var directives = map[string]directiveData{
	".data":   {kind: lineData, fn: (*assembler).parseDataValues},
	".string": {kind: lineData, fn: (*assembler).parseString},
	".mat":    {kind: lineData, fn: (*assembler).parseMatrix},
	".entry":  {kind: lineEntry},
	".extern": {kind: lineExtern},
}

const (
	macroStart = "mcro"
	macroEnd   = "mcroend"
)

// Report whether a name is reserved by the language itself.
func isReserved(name string) bool {
	if _, ok := directives["."+name]; ok {
		return true
	}
	if lookupOpcode(name) != nil || registerIndex(name) >= 0 {
		return true
	}
	return name == macroStart || name == macroEnd
}

// Report whether a string is a syntactically valid label or macro name:
// a letter followed by letters, digits or underscores.
func (c *Config) validName(name string) bool {
	if len(name) == 0 || len(name) > c.NameMaxLen || !alpha(name[0]) {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !nameChar(name[i]) {
			return false
		}
	}
	return true
}
