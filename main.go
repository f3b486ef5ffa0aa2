// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/beevik/asm10/asm"
	"github.com/beevik/asm10/host"
	"github.com/beevik/term"
)

var (
	verbose     bool
	sourceMap   bool
	interactive bool
	script      string
)

func init() {
	flag.BoolVar(&verbose, "v", false, "verbose assembler output")
	flag.BoolVar(&sourceMap, "map", false, "write a source map with each object file")
	flag.BoolVar(&interactive, "i", false, "run the interactive command shell")
	flag.StringVar(&script, "x", "", "execute host commands from a script file")
	flag.CommandLine.Usage = func() {
		fmt.Println("Usage: asm10 [options] [file ...]\nOptions:")
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()

	h := host.New()

	var options asm.Option
	if verbose {
		options |= asm.Verbose
	}
	if sourceMap {
		options |= asm.WriteSourceMap
	}
	h.SetOptions(options)
	h.SetColor(term.IsTerminal(int(os.Stdout.Fd())))

	// Run commands contained in a script file.
	if script != "" {
		file, err := os.Open(script)
		if err != nil {
			exitOnError(err)
		}
		h.RunCommands(file, os.Stdout, false)
		file.Close()
	}

	// Assemble the files named on the command line.
	if args := flag.Args(); len(args) > 0 {
		err := h.AssembleFiles(os.Stdout, args)
		switch {
		case err == nil:
			os.Exit(0)
		case errors.Is(err, asm.ErrSystem), errors.Is(err, asm.ErrInternal):
			os.Exit(2)
		default:
			os.Exit(1)
		}
	}

	if script != "" && !interactive {
		return
	}

	interactive = interactive || term.IsTerminal(int(os.Stdin.Fd()))
	h.RunCommands(os.Stdin, os.Stdout, interactive)
}

func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	os.Exit(1)
}
