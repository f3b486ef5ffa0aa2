// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"strings"

	"github.com/beevik/cmd"
)

// A commandInfo is stored as the data of every command in the tree.
type commandInfo struct {
	path    string
	desc    cmd.CommandDescriptor
	handler func(*Host, cmd.Selection) error
}

// A commandGroup mirrors a command tree so help can list its contents.
type commandGroup struct {
	name    string
	brief   string
	tree    *cmd.Tree
	entries []commandEntry
}

type commandEntry struct {
	name  string
	brief string
	group *commandGroup // nil for commands
}

var (
	cmds     *cmd.Tree
	cmdGroup *commandGroup
)

func (g *commandGroup) addCommand(handler func(*Host, cmd.Selection) error, desc cmd.CommandDescriptor) {
	info := &commandInfo{
		path:    strings.TrimSpace(g.name + " " + desc.Name),
		desc:    desc,
		handler: handler,
	}
	desc.Data = info
	g.tree.AddCommand(desc)
	g.entries = append(g.entries, commandEntry{name: desc.Name, brief: desc.Brief})
}

func (g *commandGroup) addSubtree(desc cmd.TreeDescriptor) *commandGroup {
	sub := &commandGroup{
		name:  desc.Name,
		brief: desc.Brief,
		tree:  g.tree.AddSubtree(desc),
	}
	g.entries = append(g.entries, commandEntry{name: desc.Name, brief: desc.Brief, group: sub})
	return sub
}

// findGroup returns the subtree whose name starts with prefix.
func (g *commandGroup) findGroup(prefix string) *commandGroup {
	var found *commandGroup
	for _, e := range g.entries {
		if e.group != nil && strings.HasPrefix(e.name, strings.ToLower(prefix)) {
			if found != nil {
				return nil
			}
			found = e.group
		}
	}
	return found
}

func init() {
	root := &commandGroup{tree: cmd.NewTree(cmd.TreeDescriptor{Name: "asm10"})}
	root.addCommand((*Host).cmdHelp, cmd.CommandDescriptor{
		Name:        "help",
		Description: "Display help for a command.",
		Usage:       "help [<command>]",
	})

	// Assemble commands
	as := root.addSubtree(cmd.TreeDescriptor{Name: "assemble", Brief: "Assemble commands"})
	as.addCommand((*Host).cmdAssembleFile, cmd.CommandDescriptor{
		Name:  "file",
		Brief: "Assemble a source file and write its outputs",
		Description: "Run the assembler on the specified file, producing" +
			" the expanded source, object, entries and externals files if" +
			" successful. A file name without an extension gets .as. If you" +
			" want verbose output, specify true as a second parameter. The" +
			" result becomes the current assembly.",
		Usage: "assemble file <filename> [<verbose>]",
	})
	as.addCommand((*Host).cmdAssembleExpand, cmd.CommandDescriptor{
		Name:  "expand",
		Brief: "Expand the macros of a source file",
		Description: "Run only the macro preprocessor on the specified file" +
			" and display each expanded line together with the line of the" +
			" original source that produced it.",
		Usage: "assemble expand <filename>",
	})

	root.addCommand((*Host).cmdDump, cmd.CommandDescriptor{
		Name:  "dump",
		Brief: "Dump the current assembly",
		Description: "Pretty-print every table of the current assembly." +
			" Set ColorDump to colorize the output.",
		Usage: "dump",
	})
	root.addCommand((*Host).cmdEntries, cmd.CommandDescriptor{
		Name:        "entries",
		Brief:       "List entry labels",
		Description: "Display the labels exported with .entry by the current assembly.",
		Usage:       "entries",
	})
	root.addCommand((*Host).cmdEvaluate, cmd.CommandDescriptor{
		Name:  "evaluate",
		Brief: "Evaluate an expression",
		Description: "Evaluate an integer expression. Identifiers resolve to" +
			" the addresses of labels in the current assembly. Numbers may be" +
			" decimal, hexadecimal (0x), binary (0b) or base-4 with the digits" +
			" a-d (0q).",
		Usage: "evaluate <expression>",
	})
	root.addCommand((*Host).cmdExternals, cmd.CommandDescriptor{
		Name:  "externals",
		Brief: "List external label usages",
		Description: "Display every instruction word of the current assembly" +
			" that refers to an external label.",
		Usage: "externals",
	})
	root.addCommand((*Host).cmdImage, cmd.CommandDescriptor{
		Name:  "image",
		Brief: "Display the code and data images",
		Description: "Display the words of the current assembly with their" +
			" decimal address, base-4 address and base-4 value. Pass code or" +
			" data to display a single image.",
		Usage: "image [code|data]",
	})
	root.addCommand((*Host).cmdLookup, cmd.CommandDescriptor{
		Name:  "lookup",
		Brief: "Find the source line of an address",
		Description: "Display the source line that produced the instruction" +
			" at the specified address, using the source map of the current" +
			" assembly.",
		Usage: "lookup <address>",
	})
	root.addCommand((*Host).cmdQuit, cmd.CommandDescriptor{
		Name:        "quit",
		Brief:       "Quit the program",
		Description: "Quit the program.",
		Usage:       "quit",
	})
	root.addCommand((*Host).cmdSet, cmd.CommandDescriptor{
		Name:  "set",
		Brief: "Set a configuration variable",
		Description: "Set the value of a configuration variable. To see the" +
			" current values of all configuration variables, type set" +
			" without any arguments.",
		Usage: "set [<var> <value>]",
	})
	root.addCommand((*Host).cmdSymbols, cmd.CommandDescriptor{
		Name:        "symbols",
		Brief:       "List the symbol table",
		Description: "Display every label of the current assembly.",
		Usage:       "symbols",
	})

	// Add command shortcuts.
	root.tree.AddShortcut("a", "assemble file")
	root.tree.AddShortcut("ae", "assemble expand")
	root.tree.AddShortcut("e", "evaluate")
	root.tree.AddShortcut("i", "image")
	root.tree.AddShortcut("l", "lookup")
	root.tree.AddShortcut("pp", "dump")
	root.tree.AddShortcut("sy", "symbols")
	root.tree.AddShortcut("?", "help")

	cmds, cmdGroup = root.tree, root
}
