// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func preprocess(code string) (*Expansion, error) {
	return Preprocess(strings.NewReader(code), "test", DefaultConfig(), io.Discard, 0)
}

func checkMacroError(t *testing.T, code string, errString string) {
	t.Helper()
	e, err := preprocess(code)
	require.ErrorIs(t, err, ErrSyntax, code)
	require.NotEmpty(t, e.Errors, code)
	require.Equal(t, errString, e.Errors[0], code)
}

func TestPreprocessExpansion(t *testing.T) {
	code := `mcro m
	inc r1
	inc r2
mcroend
m
	stop
m`

	e, err := preprocess(code)
	require.NoError(t, err)
	require.Equal(t, []string{"\tinc r1", "\tinc r2", "\tstop", "\tinc r1", "\tinc r2"}, e.Lines)

	// Macro body lines map to their definition, others to themselves.
	for expanded, original := range map[int]int{1: 2, 2: 3, 3: 6, 4: 2, 5: 3} {
		require.Equal(t, original, e.LineMap.Origin(expanded))
	}
	require.Equal(t, -1, e.LineMap.Origin(6))

	require.Len(t, e.Macros, 1)
	require.Equal(t, "m", e.Macros[0].Name)
	require.Equal(t, 1, e.Macros[0].DefinedAt)
	require.Equal(t, 3, e.Macros[0].Lines)

	var buf bytes.Buffer
	_, err = e.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, "\tinc r1\n\tinc r2\n\tstop\n\tinc r1\n\tinc r2\n", buf.String())
}

func TestPreprocessWithoutMacros(t *testing.T) {
	code := "A: stop\r\n\n; comment\n"

	e, err := preprocess(code)
	require.NoError(t, err)
	require.Equal(t, []string{"A: stop", "", "; comment"}, e.Lines)
	require.Equal(t, 3, e.LineMap.Origin(3))
}

func TestPreprocessMacroUsedBeforeDeclaration(t *testing.T) {
	code := `m
mcro m
	stop
mcroend`

	e, err := preprocess(code)
	require.NoError(t, err)
	require.Equal(t, []string{"m"}, e.Lines)
}

func TestPreprocessErrors(t *testing.T) {
	checkMacroError(t, "mcro\n\tstop\nmcroend", "test::1: ERROR: macro name not found")
	checkMacroError(t, "mcro a b\n\tstop\nmcroend", "test::1: ERROR: unexpected token after macro name")
	checkMacroError(t, "mcro 1a\n\tstop\nmcroend", "test::1: ERROR: invalid macro name")
	checkMacroError(t, "mcro mov\n\tstop\nmcroend", "test::1: ERROR: macro name already in use")
	checkMacroError(t, "mcro r1\n\tstop\nmcroend", "test::1: ERROR: macro name already in use")
	checkMacroError(t, "mcro data\n\tstop\nmcroend", "test::1: ERROR: macro name already in use")
	checkMacroError(t, "mcro m\n\tstop\nmcroend\nmcro m\n\tstop\nmcroend", "test::4: ERROR: macro name already in use")
	checkMacroError(t, "mcro m\nmcroend", "test::2: ERROR: macro content is missing")
	checkMacroError(t, "mcro m\n\tstop\nmcroend x", "test::3: ERROR: unexpected token after mcroend")
	checkMacroError(t, "\tstop\nmcroend", "test::2: ERROR: mcroend found without a macro declaration")
	checkMacroError(t, "mcro m\n\tstop\nmcroend\nm x", "test::4: ERROR: unexpected token after macro invocation")
	checkMacroError(t, "\tstop\nmcro m\n\tinc r1", "test::2: ERROR: mcroend is missing")
}

func TestPreprocessFaultyHeaderConsumesBody(t *testing.T) {
	code := `mcro 1bad
	this line is not code
mcroend
	stop`

	e, err := preprocess(code)
	require.ErrorIs(t, err, ErrSyntax)
	require.Equal(t, []string{"test::1: ERROR: invalid macro name"}, e.Errors)
	require.Equal(t, []string{"\tstop"}, e.Lines)
	require.Empty(t, e.Macros)
}

func TestPreprocessErrorsAccumulate(t *testing.T) {
	code := `mcroend
mcro
	stop
mcroend
mcroend`

	e, err := preprocess(code)
	require.ErrorIs(t, err, ErrSyntax)
	require.Equal(t, []string{
		"test::1: ERROR: mcroend found without a macro declaration",
		"test::2: ERROR: macro name not found",
		"test::5: ERROR: mcroend found without a macro declaration",
	}, e.Errors)
}

func TestMacroErrorsStopAssembly(t *testing.T) {
	assembly, err := assemble("mcroend\n\tfoo")
	require.ErrorIs(t, err, ErrSyntax)
	require.Nil(t, assembly.Expanded)
	require.Equal(t, []string{"test::1: ERROR: mcroend found without a macro declaration"}, assembly.Errors)
}

func TestPreprocessOversizedLine(t *testing.T) {
	code := "\tstop\n.data " + strings.Repeat("1,", 35000) + "1\n\tstop\n"
	checkMacroError(t, code, "test::2: ERROR: line exceeds the maximum allowed length")

	_, err := assemble(code)
	require.ErrorIs(t, err, ErrSyntax)
}
