// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// A writerFunc adapts a WriteTo method value to io.WriterTo.
type writerFunc func(w io.Writer) (int64, error)

func (f writerFunc) WriteTo(w io.Writer) (int64, error) {
	return f(w)
}

// Create the file at path and fill it from wt.
func writeFile(path string, wt io.WriterTo) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(f)
	if _, err := wt.WriteTo(bw); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Remove every output file a previous run may have left next to the
// source whose path without extension is prefix.
func removeOutputs(prefix string) {
	for _, ext := range []string{ExtExpanded, ExtObject, ExtEntries, ExtExternals, ExtSourceMap} {
		os.Remove(prefix + ext)
	}
}

// Describe a failure to open a source file.
func openDiagnostic(path string, err error) Diagnostic {
	code := CodeOpenFile
	switch {
	case errors.Is(err, fs.ErrNotExist):
		code = CodeFileNotFound
	case errors.Is(err, fs.ErrPermission):
		code = CodeFilePermission
	}
	return Diagnostic{
		Severity: SeverityUser,
		Code:     code,
		File:     path,
		Msg:      Message(SeverityUser, code),
	}
}

// Report a failure to write an output file. The run cannot continue.
func outputError(out io.Writer, path string, err error) error {
	d := Diagnostic{
		Severity: SeveritySystem,
		Code:     CodeOutputFile,
		File:     path,
		Msg:      fmt.Sprintf("%s: %s", Message(SeveritySystem, CodeOutputFile), err),
	}
	fmt.Fprintln(out, d)
	return fmt.Errorf("%s: %w", path, ErrSystem)
}
