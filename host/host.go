// Copyright 2018 Brett Vickers.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package host provides a command shell around the assembler. Within the
// host it is possible to assemble files, inspect the macro expansion,
// symbol table and images of the current assembly, map addresses back to
// source lines, and evaluate expressions over its labels.
package host

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/beevik/asm10/asm"
	"github.com/beevik/cmd"
	"github.com/k0kubun/pp/v3"
)

var errQuit = errors.New("exiting program")

// A Host holds the settings and the current assembly of an assembler
// session.
type Host struct {
	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool
	lastCmd     *cmd.Selection
	exprParser  *exprParser
	settings    *settings
	assembly    *asm.Assembly
	sourceMap   *asm.SourceMap
	assemble    assembleFunc
}

type assembleFunc func(path string, cfg asm.Config, options asm.Option, out io.Writer) (*asm.Assembly, *asm.SourceMap, error)

// New creates a new assembler host.
func New() *Host {
	return &Host{
		output:     bufio.NewWriter(os.Stdout),
		exprParser: newExprParser(),
		settings:   newSettings(),
		assemble:   asm.AssembleFile,
	}
}

// SetOptions applies assembler options to the host's settings.
func (h *Host) SetOptions(options asm.Option) {
	h.settings.Verbose = (options & asm.Verbose) != 0
	h.settings.SourceMap = (options & asm.WriteSourceMap) != 0
}

// SetColor enables or disables colorized output of the dump command.
func (h *Host) SetColor(enabled bool) {
	h.settings.ColorDump = enabled
}

// RunCommands accepts host commands from a reader and outputs the results
// to a writer. If the commands are interactive, a prompt is displayed while
// the host waits for the the next command to be entered.
func (h *Host) RunCommands(r io.Reader, w io.Writer, interactive bool) {
	h.input = bufio.NewScanner(r)
	h.output = bufio.NewWriter(w)
	h.interactive = interactive
	defer h.flush()

	if interactive {
		h.println()
	}

	for {
		h.prompt()

		line, err := h.getLine()
		if err != nil {
			break
		}

		var c cmd.Selection
		if line = strings.TrimSpace(line); line != "" {
			c, err = cmds.Lookup(line)
			switch {
			case err == cmd.ErrNotFound:
				h.println("Command not found.")
				continue
			case err == cmd.ErrAmbiguous:
				h.println("Command is ambiguous.")
				continue
			case err != nil:
				h.printf("ERROR: %v.\n", err)
				continue
			}
		} else if h.lastCmd != nil {
			c = *h.lastCmd
		}

		if c.Command == nil {
			continue
		}

		info, ok := c.Command.Data.(*commandInfo)
		if !ok {
			if g := cmdGroup.findGroup(strings.Fields(line)[0]); g != nil {
				h.displayCommands(g)
			}
			continue
		}
		h.lastCmd = &c

		if err := info.handler(h, c); err != nil {
			break
		}
	}
}

// AssembleFiles assembles each file in turn and reports how many
// succeeded. A system error stops the batch and is returned immediately.
// Otherwise every file is attempted, and the returned error wraps
// asm.ErrInternal if any file hit an internal error, or asm.ErrSyntax if
// any file failed.
func (h *Host) AssembleFiles(w io.Writer, paths []string) error {
	h.output = bufio.NewWriter(w)
	defer h.flush()

	var failed error
	succeeded := 0
	for _, path := range paths {
		assembly, sourceMap, err := h.assemble(path, h.settings.config(), h.settings.options(), h.output)
		h.flush()
		switch {
		case err == nil:
			h.assembly, h.sourceMap = assembly, sourceMap
			succeeded++
		case errors.Is(err, asm.ErrSystem):
			h.printf("%d out of %d files assembled successfully.\n", succeeded, len(paths))
			return err
		case errors.Is(err, asm.ErrInternal):
			if failed == nil || !errors.Is(failed, asm.ErrInternal) {
				failed = err
			}
		default:
			if failed == nil {
				failed = err
			}
		}
	}

	h.printf("%d out of %d files assembled successfully.\n", succeeded, len(paths))
	return failed
}

func (h *Host) printf(format string, args ...any) {
	fmt.Fprintf(h.output, format, args...)
	h.flush()
}

func (h *Host) println(args ...any) {
	fmt.Fprintln(h.output, args...)
	h.flush()
}

func (h *Host) flush() {
	h.output.Flush()
}

func (h *Host) getLine() (string, error) {
	if h.input.Scan() {
		return h.input.Text(), nil
	}
	if h.input.Err() != nil {
		return "", h.input.Err()
	}
	return "", io.EOF
}

func (h *Host) prompt() {
	if h.interactive {
		h.printf("* ")
	}
}

func (h *Host) cmdAssembleFile(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c)
		return nil
	}

	options := h.settings.options()
	if len(c.Args) >= 2 {
		verbose, err := stringToBool(c.Args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		if verbose {
			options |= asm.Verbose
		} else {
			options &^= asm.Verbose
		}
	}

	assembly, sourceMap, err := h.assemble(c.Args[0], h.settings.config(), options, h.output)
	h.flush()
	if err != nil {
		h.printf("Failed to assemble: %s\n", filepath.Base(c.Args[0]))
		return nil
	}

	h.assembly, h.sourceMap = assembly, sourceMap
	return nil
}

func (h *Host) cmdAssembleExpand(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c)
		return nil
	}

	path, err := asm.SourcePath(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		h.printf("Failed to open '%s': %v\n", filepath.Base(path), err)
		return nil
	}
	defer file.Close()

	e, err := asm.Preprocess(file, path, h.settings.config(), h.output, h.settings.options())
	h.flush()
	if err != nil {
		for _, s := range e.Errors {
			h.println(s)
		}
		return nil
	}

	for i, line := range e.Lines {
		h.printf("%4d %4d | %s\n", i+1, e.LineMap.Origin(i+1), line)
	}
	h.printf("%d lines, %d macros.\n", len(e.Lines), len(e.Macros))
	return nil
}

func (h *Host) cmdDump(c cmd.Selection) error {
	if !h.haveAssembly() {
		return nil
	}

	printer := pp.New()
	printer.SetColoringEnabled(h.settings.ColorDump)
	printer.Fprintln(h.output, h.assembly)
	h.flush()
	return nil
}

func (h *Host) cmdEntries(c cmd.Selection) error {
	if !h.haveAssembly() {
		return nil
	}
	if len(h.assembly.Entries) == 0 {
		h.println("No entry labels.")
		return nil
	}
	for _, l := range h.assembly.Entries {
		h.printf("%-30s %4d  %s\n", l.Name, l.Address, asm.Base4(l.Address, 4))
	}
	return nil
}

func (h *Host) cmdEvaluate(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c)
		return nil
	}

	v, err := h.exprParser.Parse(strings.Join(c.Args, " "), h)
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	if v < 0 {
		h.printf("%d\n", v)
	} else {
		h.printf("%d  0x%X  0q%s\n", v, v, asm.Base4(int(v), -1))
	}
	return nil
}

func (h *Host) cmdExternals(c cmd.Selection) error {
	if !h.haveAssembly() {
		return nil
	}
	if len(h.assembly.Externals) == 0 {
		h.println("No external label usages.")
		return nil
	}
	for _, e := range h.assembly.Externals {
		h.printf("%-30s %4d  %s\n", e.Label, e.Address, asm.Base4(e.Address, 4))
	}
	return nil
}

func (h *Host) cmdHelp(c cmd.Selection) error {
	if len(c.Args) == 0 {
		h.displayCommands(cmdGroup)
		return nil
	}

	s, err := cmds.Lookup(strings.Join(c.Args, " "))
	if err == nil && s.Command != nil {
		if info, ok := s.Command.Data.(*commandInfo); ok {
			if info.desc.Usage != "" {
				h.printf("Syntax: %s\n\n", info.desc.Usage)
			}
			switch {
			case info.desc.Description != "":
				h.printf("Description:\n%s\n\n", indentWrap(3, info.desc.Description))
			case info.desc.Brief != "":
				h.printf("Description:\n%s.\n\n", indentWrap(3, info.desc.Brief))
			}
			return nil
		}
	}

	if g := cmdGroup.findGroup(c.Args[0]); g != nil {
		h.displayCommands(g)
		return nil
	}

	if err == nil {
		err = cmd.ErrNotFound
	}
	h.printf("%v\n", err)
	return nil
}

func (h *Host) cmdImage(c cmd.Selection) error {
	if !h.haveAssembly() {
		return nil
	}

	showCode, showData := true, true
	if len(c.Args) > 0 {
		switch {
		case strings.HasPrefix("code", strings.ToLower(c.Args[0])):
			showData = false
		case strings.HasPrefix("data", strings.ToLower(c.Args[0])):
			showCode = false
		default:
			h.displayHelpText(c)
			return nil
		}
	}

	if showCode {
		h.printf("Code (%d words):\n", len(h.assembly.Code))
		h.displayWords(h.assembly.Code)
	}
	if showData {
		h.printf("Data (%d words):\n", len(h.assembly.Data))
		h.displayWords(h.assembly.Data)
	}
	return nil
}

func (h *Host) cmdLookup(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayHelpText(c)
		return nil
	}
	if h.sourceMap == nil {
		h.println("No source map loaded.")
		return nil
	}

	addr, err := h.exprParser.Parse(strings.Join(c.Args, " "), h)
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	file, line := h.sourceMap.Search(int(addr))
	if line < 0 {
		h.printf("No source line for address %d.\n", addr)
		return nil
	}

	label := ""
	for _, l := range h.assembly.Labels {
		if l.Kind == asm.KindCode && l.Address == int(addr) {
			label = l.Name + ": "
			break
		}
	}
	h.printf("%d  %s%s:%d\n", addr, label, filepath.Base(file), line)
	return nil
}

func (h *Host) cmdQuit(c cmd.Selection) error {
	return errQuit
}

func (h *Host) cmdSet(c cmd.Selection) error {
	switch len(c.Args) {
	case 0:
		h.println("Variables:")
		h.settings.Display(h.output)
		h.flush()

	case 1:
		h.displayHelpText(c)

	default:
		key, value := strings.ToLower(c.Args[0]), strings.Join(c.Args[1:], " ")

		var err error
		switch h.settings.Kind(key) {
		case reflect.Invalid:
			err = fmt.Errorf("setting '%s' not found", key)
		case reflect.Bool:
			var v bool
			v, err = stringToBool(value)
			if err == nil {
				err = h.settings.Set(key, v)
			}
		default:
			var v int64
			v, err = h.exprParser.Parse(value, h)
			if err == nil {
				err = h.settings.Set(key, v)
			}
		}

		if err == nil {
			h.println("Setting updated.")
		} else {
			h.printf("%v\n", err)
		}
	}

	return nil
}

func (h *Host) cmdSymbols(c cmd.Selection) error {
	if !h.haveAssembly() {
		return nil
	}
	if len(h.assembly.Labels) == 0 {
		h.println("No labels.")
		return nil
	}

	h.printf("%-30s %4s %-10s %-8s %-5s %s\n", "Label", "Addr", "Kind", "Def", "Entry", "Line")
	for _, l := range h.assembly.Labels {
		h.printf("%-30s %4d %-10s %-8s %-5s %d\n",
			l.Name, l.Address, l.Kind, l.Definition, yesNo(l.Entry), l.Line)
	}
	return nil
}

func (h *Host) haveAssembly() bool {
	if h.assembly == nil {
		h.println("No assembly loaded.")
		return false
	}
	return true
}

func (h *Host) displayWords(words []asm.Word) {
	for _, w := range words {
		fmt.Fprintf(h.output, "    %4d  %s  %s\n", w.Address, asm.Base4(w.Address, 4), asm.Base4(w.Value, 5))
	}
	h.flush()
}

func (h *Host) displayHelpText(c cmd.Selection) {
	if info, ok := c.Command.Data.(*commandInfo); ok && info.desc.Usage != "" {
		h.printf("Syntax: %s\n", info.desc.Usage)
	} else {
		h.println("<no help text>")
	}
}

func (h *Host) displayCommands(g *commandGroup) {
	if g.name == "" {
		h.println("Commands:")
	} else {
		h.printf("%s commands:\n", g.name)
	}
	for _, e := range g.entries {
		if e.brief != "" {
			h.printf("    %-15s  %s\n", e.name, e.brief)
		}
	}
}

// resolveIdentifier returns the address of a label in the current
// assembly.
func (h *Host) resolveIdentifier(s string) (int64, error) {
	if h.assembly != nil {
		for _, l := range h.assembly.Labels {
			if l.Name == s {
				return int64(l.Address), nil
			}
		}
	}
	if h.sourceMap != nil {
		if addr, ok := h.sourceMap.Lookup(s); ok {
			return int64(addr), nil
		}
	}
	return 0, fmt.Errorf("identifier '%s' not found", s)
}
