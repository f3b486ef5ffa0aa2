// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asm implements a two-pass macro assembler for a 16-opcode
// machine with 10-bit words.
package asm

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// The assembler is a state object used during the assembly of a single
// source file. A fresh one is created for every file.
type assembler struct {
	cfg          Config        // machine and language limits
	filename     string        // source file name used in diagnostics
	r            io.Reader     // the reader passed to Assemble
	out          io.Writer     // output used for verbose output
	verbose      bool          // verbose output
	expanded     []string      // source after macro expansion
	lineMap      *LineMap      // expanded line -> original line
	macros       *macroTable   // declared macros
	labels       *symbolTable  // labels and externals
	mem          *memory       // capacity shared by both images
	code         *image        // instruction image
	data         *image        // data image
	fixups       []fixup       // words awaiting label addresses
	externals    []ExternalUse // external label usages
	sourceLines  []SourceLine  // code address -> source line
	diags        []Diagnostic  // errors encountered during assembly
	preprocessed bool          // macro expansion finished without errors
}

func newAssembler(r io.Reader, filename string, cfg Config, out io.Writer, options Option) *assembler {
	mem := &memory{capacity: cfg.MemoryCapacity}
	mask := cfg.Layout.WordMask()
	return &assembler{
		cfg:      cfg,
		filename: filename,
		r:        r,
		out:      out,
		verbose:  (options & Verbose) != 0,
		lineMap:  &LineMap{},
		macros:   newMacroTable(),
		labels:   newSymbolTable(),
		mem:      mem,
		code:     newImage(mem, mask),
		data:     newImage(mem, mask),
	}
}

// Execute assembler steps, breaking if an error is encountered in any one
// of them or if any step leaves errors behind.
func (a *assembler) run(steps []func(a *assembler) error) error {
	var err error
	for _, step := range steps {
		err = step(a)
		if err != nil {
			break
		}
		if len(a.diags) > 0 {
			err = errParse
			break
		}
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrSystem), errors.Is(err, ErrInternal):
		return fmt.Errorf("%s: %w", a.filename, err)
	default:
		return fmt.Errorf("%s: %w", a.filename, ErrSyntax)
	}
}

// An ExternalUse records one instruction word that refers to an external
// label.
type ExternalUse struct {
	Label   string
	Address int // final address of the referring word
}

// Assembly contains the assembled images and the tables associated with
// them.
type Assembly struct {
	Code        []Word        // instruction image, final addresses
	Data        []Word        // data image, final addresses
	Labels      []Label       // all labels in definition order
	Entries     []Label       // labels marked by .entry
	Externals   []ExternalUse // usages of external labels
	Expanded    []string      // source after macro expansion, nil if it failed
	Errors      []string      // formatted diagnostics
	Diagnostics []Diagnostic  // diagnostics encountered during assembly
}

// Option type used by the Assemble function.
type Option uint

// Options for the Assemble function.
const (
	Verbose        Option = 1 << iota // verbose output during assembly
	WriteSourceMap                    // write a source map next to the object file
)

// Source file extensions.
const (
	ExtSource    = ".as"
	ExtExpanded  = ".am"
	ExtObject    = ".ob"
	ExtEntries   = ".ent"
	ExtExternals = ".ext"
	ExtSourceMap = ".map"
)

// SourcePath returns the path of the source file to read for path. A path
// without an extension gets ExtSource; any other extension is rejected.
func SourcePath(path string) (string, error) {
	switch filepath.Ext(path) {
	case "":
		return path + ExtSource, nil
	case ExtSource:
		return path, nil
	default:
		return "", fmt.Errorf("%s: %s: %w", path, Message(SeverityUser, CodeUnknownFileType), ErrSyntax)
	}
}

// AssembleFile reads a file containing assembly code, assembles it, and
// writes the object, entry, external and (optionally) source map files
// next to it. No output besides the expanded source is left behind when
// assembly fails.
func AssembleFile(path string, cfg Config, options Option, out io.Writer) (*Assembly, *SourceMap, error) {
	if out == nil {
		out = os.Stdout
	}

	path, err := SourcePath(path)
	if err != nil {
		fmt.Fprintln(out, err)
		return nil, nil, err
	}

	prefix := path[:len(path)-len(filepath.Ext(path))]
	removeOutputs(prefix)

	inFile, err := os.Open(path)
	if err != nil {
		fmt.Fprintln(out, openDiagnostic(path, err))
		return nil, nil, fmt.Errorf("%s: %w", path, ErrSyntax)
	}
	defer inFile.Close()

	assembly, sourceMap, err := Assemble(inFile, path, cfg, out, options)
	if assembly.Expanded != nil {
		if werr := writeFile(prefix+ExtExpanded, expandedText(assembly.Expanded)); werr != nil {
			return assembly, sourceMap, outputError(out, prefix+ExtExpanded, werr)
		}
	}
	if err != nil {
		for _, e := range assembly.Errors {
			fmt.Fprintln(out, e)
		}
		return assembly, sourceMap, err
	}

	outputs := []struct {
		ext   string
		write bool
		wt    io.WriterTo
	}{
		{ExtObject, true, assembly},
		{ExtEntries, len(assembly.Entries) > 0, writerFunc(assembly.WriteEntriesTo)},
		{ExtExternals, len(assembly.Externals) > 0, writerFunc(assembly.WriteExternalsTo)},
		{ExtSourceMap, (options & WriteSourceMap) != 0, sourceMap},
	}

	var written []string
	for _, o := range outputs {
		if !o.write {
			continue
		}
		if err := writeFile(prefix+o.ext, o.wt); err != nil {
			removeOutputs(prefix)
			return assembly, sourceMap, outputError(out, prefix+o.ext, err)
		}
		written = append(written, "'"+filepath.Base(prefix+o.ext)+"'")
	}

	fmt.Fprintf(out, "Assembled '%s' to produce %s.\n", filepath.Base(path), strings.Join(written, ", "))
	return assembly, sourceMap, nil
}

// Assemble reads source code from r and attempts to assemble it into
// instruction and data images.
func Assemble(r io.Reader, filename string, cfg Config, out io.Writer, options Option) (*Assembly, *SourceMap, error) {
	if out == nil {
		out = os.Stdout
	}

	a := newAssembler(r, filename, cfg, out, options)

	// Assembly consists of the following steps
	steps := []func(a *assembler) error{
		(*assembler).preprocess, // Expand macros
		(*assembler).firstPass,  // Build the symbol table and images
		(*assembler).secondPass, // Relocate and resolve labels
	}
	err := a.run(steps)

	assembly := &Assembly{
		Code:        a.code.list(),
		Data:        a.data.list(),
		Labels:      a.labels.list(),
		Entries:     a.labels.entries(),
		Externals:   a.externals,
		Expanded:    a.expansionResult(),
		Errors:      a.errorStrings(),
		Diagnostics: a.diags,
	}

	sourceMap := &SourceMap{
		File:       filename,
		LoadOffset: cfg.LoadOffset,
		Size:       len(assembly.Code) + len(assembly.Data),
		Lines:      a.sourceLines,
		Exports:    sortExports(assembly.Entries),
	}

	return assembly, sourceMap, err
}

// Return the expanded source, or nil if preprocessing reported errors.
func (a *assembler) expansionResult() []string {
	if !a.preprocessed {
		return nil
	}
	return append([]string{}, a.expanded...)
}

func (a *assembler) errorStrings() []string {
	errors := make([]string, 0, len(a.diags))
	for _, d := range a.diags {
		errors = append(errors, d.String())
	}
	return errors
}

// Return the original source line of a position in the expanded source.
func (a *assembler) origin(l fstring) int {
	if row := a.lineMap.Origin(l.row); row >= 0 {
		return row
	}
	return l.row
}

// Append a user error found in the expanded source. The diagnostic
// carries the original source line.
func (a *assembler) addError(l fstring, code Code) {
	a.report(SeverityUser, code, l, a.origin(l), "")
}

// Append a user error found in the original source.
func (a *assembler) addSourceError(l fstring, code Code) {
	a.report(SeverityUser, code, l, l.row, "")
}

// Append a diagnostic of any severity. detail, if not empty, is appended
// to the catalogue message.
func (a *assembler) addDiagnostic(s Severity, code Code, l fstring, detail string) {
	a.report(s, code, l, a.origin(l), detail)
}

func (a *assembler) report(s Severity, code Code, l fstring, row int, detail string) {
	msg := Message(s, code)
	if detail != "" {
		msg += ": " + detail
	}

	d := Diagnostic{
		Severity: s,
		Code:     code,
		File:     a.filename,
		Msg:      msg,
	}
	if l.row > 0 {
		d.Line, d.Column = row, l.column+1
	}
	a.diags = append(a.diags, d)

	if a.verbose {
		fmt.Fprintln(a.out, d)
		if l.full != "" {
			fmt.Fprintln(a.out, l.full)
			fmt.Fprintln(a.out, strings.Repeat("-", l.column)+"^")
		}
	}
}

// Record an error returned by the encoder. User errors are accumulated
// and nil is returned; system and internal errors are returned so the
// file stops.
func (a *assembler) addEncodeError(l fstring, err error) error {
	var e *encodeError
	if !errors.As(err, &e) {
		a.addDiagnostic(SeverityInternal, CodeEncodingFailed, l, err.Error())
		return ErrInternal
	}

	switch e.severity {
	case SeverityUser:
		a.addError(l, e.code)
		return nil
	case SeveritySystem:
		a.addDiagnostic(SeveritySystem, e.code, l, "")
		return ErrSystem
	default:
		a.addDiagnostic(SeverityInternal, e.code, l, "")
		return ErrInternal
	}
}

// In verbose mode, log a string to the output.
func (a *assembler) log(format string, args ...any) {
	if a.verbose {
		fmt.Fprintf(a.out, format, args...)
		fmt.Fprintf(a.out, "\n")
	}
}

// In verbose mode, log a string and its associated line
// of assembly code.
func (a *assembler) logLine(line fstring, format string, args ...any) {
	if a.verbose {
		detail := fmt.Sprintf(format, args...)
		fmt.Fprintf(a.out, "%-3d %-3d | %-20s | %s\n", line.row, line.column+1, detail, line.str)
	}
}

// In verbose mode, log a series of words with starting address.
func (a *assembler) logWords(line fstring, addr int, words []int) {
	if a.verbose {
		for i, w := range words {
			a.logLine(line, "%04d %s", addr+i, Base4(w, 5))
		}
	}
}

// In verbose mode, log a section header to the output.
func (a *assembler) logSection(name string) {
	if a.verbose {
		fmt.Fprintln(a.out, strings.Repeat("-", len(name)+6))
		fmt.Fprintf(a.out, "-- %s --\n", name)
		fmt.Fprintln(a.out, strings.Repeat("-", len(name)+6))
	}
}
