// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestAssembler(cfg Config) *assembler {
	return newAssembler(strings.NewReader(""), "test", cfg, io.Discard, 0)
}

func TestFieldFits(t *testing.T) {
	f := Field{Bits: 8, Shift: 2}
	require.Equal(t, 255, f.Max())
	require.True(t, f.FitsUnsigned(255))
	require.False(t, f.FitsUnsigned(256))
	require.False(t, f.FitsUnsigned(-1))
	require.True(t, f.FitsSigned(-128))
	require.True(t, f.FitsSigned(127))
	require.False(t, f.FitsSigned(128))
	require.False(t, f.FitsSigned(-129))
	require.Equal(t, 0x3fc, f.Pack(-1))
	require.Equal(t, 20, f.Pack(5))
}

func TestEncodeRegisterPairMerges(t *testing.T) {
	a := newTestAssembler(DefaultConfig())
	ops := []operand{
		{val: register{index: 3}},
		{val: register{index: 5}},
	}
	words, fixups, err := a.encodeInstruction(lookupOpcode("sub"), ops, 0)
	require.NoError(t, err)
	require.Empty(t, fixups)
	require.Equal(t, []int{3<<6 | 3<<4 | 3<<2, 3<<6 | 5<<2}, words)
}

func TestEncodeFixupTargets(t *testing.T) {
	a := newTestAssembler(DefaultConfig())
	ops := []operand{
		{val: direct{label: "A"}, encoding: EncUnknown},
		{val: matrix{label: "M", row: 1, col: 2}, encoding: EncUnknown},
	}
	words, fixups, err := a.encodeInstruction(lookupOpcode("mov"), ops, 10)
	require.NoError(t, err)
	require.Equal(t, []int{1<<4 | 2<<2, 0, 0, 1<<6 | 2<<2}, words)
	require.Len(t, fixups, 2)
	require.Equal(t, 11, fixups[0].target)
	require.Equal(t, 12, fixups[1].target)

	name, ok := fixups[1].operand.label()
	require.True(t, ok)
	require.Equal(t, "M", name)
}

func TestEncodeImmediateRangeIsUserError(t *testing.T) {
	a := newTestAssembler(DefaultConfig())
	_, _, err := a.encodeOperand(&operand{val: immediate{value: 300}}, false, 0)

	var e *encodeError
	require.True(t, errors.As(err, &e))
	require.Equal(t, SeverityUser, e.severity)
	require.Equal(t, CodeImmediateRange, e.code)
}

func TestEncodeUnknownOperandIsInternalError(t *testing.T) {
	a := newTestAssembler(DefaultConfig())
	_, _, err := a.encodeOperand(&operand{}, false, 0)

	var e *encodeError
	require.True(t, errors.As(err, &e))
	require.Equal(t, SeverityInternal, e.severity)
	require.Equal(t, CodeNoEncoding, e.code)
}

func TestEncodeFieldOverflowIsSystemError(t *testing.T) {
	tests := []struct {
		modify func(l *Layout)
		asm    string
		err    string
	}{
		{
			func(l *Layout) { l.Opcode.Bits = 3 },
			"stop",
			"SYSTEM ERROR: opcode value exceeds its bit field",
		},
		{
			func(l *Layout) { l.DstReg.Bits = 2 },
			"clr r7",
			"SYSTEM ERROR: destination register number exceeds its bit field",
		},
		{
			func(l *Layout) { l.SrcReg.Bits = 2 },
			"mov r4, r1",
			"SYSTEM ERROR: source register number exceeds its bit field",
		},
		{
			func(l *Layout) { l.SrcReg.Bits = 1 },
			"L: prn L[r2][r0]",
			"SYSTEM ERROR: matrix register index exceeds its bit field",
		},
		{
			func(l *Layout) { l.DstMode.Bits = 1 },
			"clr r1",
			"SYSTEM ERROR: destination addressing mode exceeds its bit field",
		},
	}

	for _, test := range tests {
		cfg := DefaultConfig()
		test.modify(&cfg.Layout)
		assembly, _, err := Assemble(strings.NewReader(test.asm), "test", cfg, io.Discard, 0)
		require.ErrorIs(t, err, ErrSystem, test.asm)
		require.Equal(t, []string{test.err}, assembly.Errors, test.asm)
	}
}

func TestEncodeAddress(t *testing.T) {
	a := newTestAssembler(DefaultConfig())

	w, err := a.encodeAddress(103, EncRelocatable)
	require.NoError(t, err)
	require.Equal(t, 414, w)

	w, err = a.encodeAddress(0, EncExternal)
	require.NoError(t, err)
	require.Equal(t, 1, w)

	_, err = a.encodeAddress(256, EncRelocatable)
	var e *encodeError
	require.True(t, errors.As(err, &e))
	require.Equal(t, SeveritySystem, e.severity)
	require.Equal(t, CodeAddressField, e.code)
}
