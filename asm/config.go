// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

// A Field describes a bit field within a machine word.
type Field struct {
	Bits  uint // width of the field in bits
	Shift uint // position of the field's lowest bit
}

// Max returns the largest unsigned value that fits in the field.
func (f Field) Max() int {
	return 1<<f.Bits - 1
}

// FitsUnsigned reports whether v can be stored unsigned in the field.
func (f Field) FitsUnsigned(v int) bool {
	return v >= 0 && v <= f.Max()
}

// FitsSigned reports whether v can be stored two's-complement in the field.
func (f Field) FitsSigned(v int) bool {
	lim := 1 << (f.Bits - 1)
	return v >= -lim && v < lim
}

// Pack masks v to the field's width and shifts it into position.
func (f Field) Pack(v int) int {
	return (v & f.Max()) << f.Shift
}

// A Layout describes the bit layout of the machine's words.
type Layout struct {
	WordBits    uint  // width of every machine word
	Opcode      Field // opcode in the first word of an instruction
	SrcMode     Field // source addressing mode in the first word
	DstMode     Field // destination addressing mode in the first word
	ERA         Field // encoding tag present in every word
	OperandData Field // immediate value or label address
	SrcReg      Field // source register number
	DstReg      Field // destination register number
}

// WordMask returns the mask applied to every stored word.
func (l Layout) WordMask() int {
	return 1<<l.WordBits - 1
}

// Config holds the machine and assembler limits used during assembly.
type Config struct {
	Layout         Layout
	LoadOffset     int // address of the first instruction word
	MemoryCapacity int // words available to code and data combined
	NameMaxLen     int // maximum length of label and macro names
	MaxLineLen     int // maximum source line length
	MaxDigits      int // maximum digits in an immediate operand
}

// DefaultConfig returns the configuration of the standard machine: 10-bit
// words loaded at address 100.
func DefaultConfig() Config {
	return Config{
		Layout: Layout{
			WordBits:    10,
			Opcode:      Field{Bits: 4, Shift: 6},
			SrcMode:     Field{Bits: 2, Shift: 4},
			DstMode:     Field{Bits: 2, Shift: 2},
			ERA:         Field{Bits: 2, Shift: 0},
			OperandData: Field{Bits: 8, Shift: 2},
			SrcReg:      Field{Bits: 4, Shift: 6},
			DstReg:      Field{Bits: 4, Shift: 2},
		},
		LoadOffset:     100,
		MemoryCapacity: 156,
		NameMaxLen:     30,
		MaxLineLen:     80,
		MaxDigits:      6,
	}
}

// Data words hold signed values of the full word width.
func (c *Config) dataField() Field {
	return Field{Bits: c.Layout.WordBits}
}
