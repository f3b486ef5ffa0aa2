// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beevik/asm10/asm"
	"github.com/stretchr/testify/require"
)

const hostSource = `	.entry A
	.extern E
A:	add #5, B
	jmp E
B:	.data 3
`

func writeSource(t *testing.T, name, code string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(code), 0644))
	return path
}

func runCommands(h *Host, commands ...string) string {
	var out bytes.Buffer
	h.RunCommands(strings.NewReader(strings.Join(commands, "\n")+"\n"), &out, false)
	return out.String()
}

func TestHostAssembleFile(t *testing.T) {
	path := writeSource(t, "prog.as", hostSource)

	h := New()
	out := runCommands(h,
		"assemble file "+path,
		"symbols",
		"entries",
		"externals",
		"image code",
		"image data",
	)

	require.Contains(t, out, "Assembled 'prog.as'")
	require.NotNil(t, h.assembly)
	require.NotNil(t, h.sourceMap)

	require.Regexp(t, `A\s+100\s+code\s+normal\s+yes\s+3`, out)
	require.Regexp(t, `B\s+105\s+data\s+normal\s+no\s+5`, out)
	require.Regexp(t, `A\s+100  bcba`, out)
	require.Regexp(t, `E\s+104  bcca`, out)
	require.Contains(t, out, "Code (5 words):")
	require.Contains(t, out, " 100  bcba  acaba\n")
	require.Contains(t, out, " 104  bcca  aaaab\n")
	require.Contains(t, out, "Data (1 words):")
	require.Contains(t, out, " 105  bccb  aaaad\n")
}

func TestHostAssembleFileFailure(t *testing.T) {
	path := writeSource(t, "bad.as", "\tjmp MISSING\n")

	h := New()
	out := runCommands(h, "assemble file "+path, "symbols")
	require.Contains(t, out, "bad.as::1: ERROR: attempted to use an undeclared label")
	require.Contains(t, out, "Failed to assemble: bad.as")
	require.Contains(t, out, "No assembly loaded.")
	require.Nil(t, h.assembly)
}

func TestHostAssembleExpand(t *testing.T) {
	code := "mcro twice\n\tinc r1\n\tinc r1\nmcroend\n\ttwice\n\tstop\n"
	path := writeSource(t, "mac.as", code)

	out := runCommands(New(), "assemble expand "+path)
	require.Contains(t, out, "   1    2 | \tinc r1\n")
	require.Contains(t, out, "   2    3 | \tinc r1\n")
	require.Contains(t, out, "   3    6 | \tstop\n")
	require.Contains(t, out, "3 lines, 1 macros.")
}

func TestHostLookup(t *testing.T) {
	path := writeSource(t, "prog.as", hostSource)

	out := runCommands(New(),
		"assemble file "+path,
		"lookup 100",
		"lookup A+3",
		"lookup 101",
	)
	require.Contains(t, out, "100  A: prog.as:3\n")
	require.Contains(t, out, "103  prog.as:4\n")
	require.Contains(t, out, "No source line for address 101.")
}

func TestHostLookupWithoutAssembly(t *testing.T) {
	out := runCommands(New(), "lookup 100")
	require.Contains(t, out, "No source map loaded.")
}

func TestHostEvaluate(t *testing.T) {
	path := writeSource(t, "prog.as", hostSource)

	out := runCommands(New(),
		"assemble file "+path,
		"evaluate A+1",
		"evaluate B",
		"evaluate 0qbcba - 1",
		"evaluate -4",
		"evaluate C",
	)
	require.Contains(t, out, "101  0x65  0qbcbb\n")
	require.Contains(t, out, "105  0x69  0qbccb\n")
	require.Contains(t, out, "99  0x63  0qbcad\n")
	require.Contains(t, out, "-4\n")
	require.Contains(t, out, "identifier 'C' not found")
}

func TestHostRepeatLastCommand(t *testing.T) {
	out := runCommands(New(), "evaluate 2", "")
	require.Equal(t, 2, strings.Count(out, "2  0x2  0qc\n"))
}

func TestHostQuit(t *testing.T) {
	out := runCommands(New(), "evaluate 7", "quit", "evaluate 9")
	require.Contains(t, out, "7  0x7  0qbd\n")
	require.NotContains(t, out, "9  0x9")
}

func TestHostUnknownCommand(t *testing.T) {
	out := runCommands(New(), "frobnicate")
	require.Contains(t, out, "Command not found.")
}

func TestHostHelp(t *testing.T) {
	out := runCommands(New(), "help", "help assemble file", "help evaluate")
	require.Contains(t, out, "Commands:")
	require.Contains(t, out, "assemble         Assemble commands")
	require.Contains(t, out, "Syntax: assemble file <filename> [<verbose>]")
	require.Contains(t, out, "Syntax: evaluate <expression>")
	require.Contains(t, out, "Description:\n   Evaluate an integer expression.")
}

func TestHostSet(t *testing.T) {
	h := New()
	out := runCommands(h,
		"set loadoffset 200",
		"set verbose true",
		"set sourcemap 1",
		"set nosuchthing 1",
		"set verbose maybe",
		"set",
	)
	require.Equal(t, 3, strings.Count(out, "Setting updated."))
	require.Contains(t, out, "setting 'nosuchthing' not found")
	require.Contains(t, out, "invalid bool value 'maybe'")
	require.Contains(t, out, "Variables:")
	require.Regexp(t, `LoadOffset\s+200`, out)

	cfg := h.settings.config()
	require.Equal(t, 200, cfg.LoadOffset)
	require.Equal(t, asm.DefaultConfig().MemoryCapacity, cfg.MemoryCapacity)
	require.Equal(t, asm.Verbose|asm.WriteSourceMap, h.settings.options())
}

func TestHostSettingsApplyToAssembly(t *testing.T) {
	path := writeSource(t, "prog.as", hostSource)

	h := New()
	out := runCommands(h, "set loadoffset 200", "set sourcemap true", "assemble file "+path)
	require.Contains(t, out, "'prog.map'")
	require.Equal(t, 200, h.assembly.Code[0].Address)
	require.Equal(t, 200, h.sourceMap.LoadOffset)

	_, err := os.Stat(filepath.Join(filepath.Dir(path), "prog.map"))
	require.NoError(t, err)
}

func TestHostDump(t *testing.T) {
	path := writeSource(t, "prog.as", hostSource)

	out := runCommands(New(), "dump", "assemble file "+path, "dump")
	require.Contains(t, out, "No assembly loaded.")
	require.Contains(t, out, "asm.Assembly")
	require.Contains(t, out, "Externals")
}

func TestAssembleFiles(t *testing.T) {
	good := writeSource(t, "good.as", hostSource)
	bad := writeSource(t, "bad.as", "\tfoo\n")

	h := New()
	var out bytes.Buffer
	err := h.AssembleFiles(&out, []string{good, bad})
	require.ErrorIs(t, err, asm.ErrSyntax)
	require.Contains(t, out.String(), "Assembled 'good.as'")
	require.Contains(t, out.String(), "bad.as::1: ERROR:")
	require.Contains(t, out.String(), "1 out of 2 files assembled successfully.\n")
	require.NotNil(t, h.assembly)

	out.Reset()
	err = h.AssembleFiles(&out, []string{good})
	require.NoError(t, err)
	require.Contains(t, out.String(), "1 out of 1 files assembled successfully.\n")
}

func TestAssembleFilesContinuesAfterInternalError(t *testing.T) {
	first := writeSource(t, "first.as", hostSource)
	second := writeSource(t, "second.as", hostSource)

	h := New()
	h.assemble = func(path string, cfg asm.Config, options asm.Option, out io.Writer) (*asm.Assembly, *asm.SourceMap, error) {
		if path == first {
			fmt.Fprintln(out, "INTERNAL ERROR: fixup target address not found in instruction image")
			return nil, nil, fmt.Errorf("%s: %w", path, asm.ErrInternal)
		}
		return asm.AssembleFile(path, cfg, options, out)
	}

	var out bytes.Buffer
	err := h.AssembleFiles(&out, []string{first, second})
	require.ErrorIs(t, err, asm.ErrInternal)
	require.Contains(t, out.String(), "INTERNAL ERROR:")
	require.Contains(t, out.String(), "Assembled 'second.as'")
	require.Contains(t, out.String(), "1 out of 2 files assembled successfully.\n")
	require.NotNil(t, h.assembly)
}

func TestAssembleFilesStopsOnSystemError(t *testing.T) {
	first := writeSource(t, "first.as", hostSource)
	second := writeSource(t, "second.as", hostSource)

	h := New()
	var attempted []string
	h.assemble = func(path string, cfg asm.Config, options asm.Option, out io.Writer) (*asm.Assembly, *asm.SourceMap, error) {
		attempted = append(attempted, path)
		return nil, nil, fmt.Errorf("%s: %w", path, asm.ErrSystem)
	}

	var out bytes.Buffer
	err := h.AssembleFiles(&out, []string{first, second})
	require.ErrorIs(t, err, asm.ErrSystem)
	require.Equal(t, []string{first}, attempted)
	require.Contains(t, out.String(), "0 out of 2 files assembled successfully.\n")
}

func TestAssembleFilesPrefersInternalError(t *testing.T) {
	bad := writeSource(t, "bad.as", "\tfoo\n")
	broken := writeSource(t, "broken.as", hostSource)

	h := New()
	h.assemble = func(path string, cfg asm.Config, options asm.Option, out io.Writer) (*asm.Assembly, *asm.SourceMap, error) {
		if path == broken {
			return nil, nil, fmt.Errorf("%s: %w", path, asm.ErrInternal)
		}
		return asm.AssembleFile(path, cfg, options, out)
	}

	var out bytes.Buffer
	err := h.AssembleFiles(&out, []string{bad, broken})
	require.ErrorIs(t, err, asm.ErrInternal)
	require.Contains(t, out.String(), "0 out of 2 files assembled successfully.\n")
}
