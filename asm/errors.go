// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax is returned when a source file contains user errors.
	ErrSyntax = errors.New("assembly failed")

	// ErrInternal is returned when the assembler detects a defect in
	// itself. Only the current file is affected.
	ErrInternal = errors.New("internal assembler error")

	// ErrSystem is returned when the assembler cannot continue at all.
	// Callers assembling several files should stop.
	ErrSystem = errors.New("system error")

	errParse = errors.New("parse error")
)

// Severity separates errors caused by the source program from errors
// caused by the assembler or its environment.
type Severity int

const (
	SeverityUser Severity = iota
	SeveritySystem
	SeverityInternal
)

// A Code identifies a diagnostic message.
type Code int

// User error codes.
const (
	CodeOpcodeNotFound Code = 100 + iota
	CodeInvalidOpcode
	CodeOperandCount
	CodeOutOfMemory
	CodeEncodingFailed
	CodeNoOperands
	CodeTooManyOperands
	CodeOperandFormat
	CodeInvalidOperand
	CodeMatrixTrailing
	CodeMatrixColumn
	CodeMatrixRow
	CodeMatrixLabel
	CodeInvalidSource
	CodeInvalidDest
	CodeSourceNotAllowed
	CodeDestNotAllowed
	CodeNotEnoughOperands
	CodeUnexpectedComma
	CodeMissingComma
	CodeTooManyDigits
	CodeLineTooLong
	CodeDirectiveNotFound
	CodeDataRange
	CodeStringNoOpenQuote
	CodeStringIllegalChar
	CodeStringNoCloseQuote
	CodeStringTrailing
	CodeStringMissing
	CodeDataNoNumbers
	CodeDataSignNoDigits
	CodeDataUnexpected
	CodeDataMissingComma
	CodeDataTrailingComma
	CodeMatSizeMissing
	CodeMatSizeFormat
	CodeMatSizeZero
	CodeMatTooManyValues
	CodeEntryNoLabel
	CodeEntryInvalidName
	CodeEntryTrailing
	CodeEntryUndefined
	CodeEntryExternal
	CodeImmediateRange
	CodeOpenFile
	CodeInvalidLabel
	CodeUndeclaredLabel
	CodeMacroNameUsed
	CodeMacroInvalidName
	CodeMacroTrailing
	CodeMacroEndTrailing
	CodeMacroEmpty
	CodeMacroNoEnd
	CodeMacroCallTrailing
	CodeInvalidFileName
	CodeFileNameLength
	CodeUnknownLine
	CodeExternNoName
	CodeExternTrailing
	CodeExternInvalidName
	CodeExternExists
	CodeFileNotFound
	CodeFileInUse
	CodeFilePermission
	CodeLabelUsed
	CodeUnknownDirective
	CodeUnknownOperation
	CodeUnknownFileType
	CodeCommaBeforeOperand
	CodeCommaAfterOperand
	CodeCommaBetweenOperands
	CodeImmediateMissing
	CodeImmediateChar
	CodeDataFloat
	CodeDataAlpha
	CodeDataDoubleComma
	CodeMacroNoName
	CodeMacroEndWithoutStart
	CodeImmediateFloat
	CodeNoInput
	CodeLabelOnEmptyLine
	CodeDataLeadingComma
	CodeDataNumberMissing
)

// System error codes.
const (
	CodeAllocation Code = 1 + iota
	CodeOpcodeField
	CodeSrcModeField
	CodeDstModeField
	CodeOpcodeERAField
	CodeDstRegField
	CodeSrcRegField
	CodeMatrixRegField
	CodeOperandERAField
	CodeAddressField
	CodeOutputFile
)

// Internal error codes.
const (
	CodeNilArgument Code = 25 + iota
	CodeOperandHandler
	CodeNoEncoding
	CodeRelocateNonLabel
	CodeFixupTarget
	CodeFixupOperand
)

var userMessages = map[Code]string{
	CodeOpcodeNotFound:       "opcode name not found",
	CodeInvalidOpcode:        "invalid opcode name",
	CodeOperandCount:         "opcode received an invalid number of operands",
	CodeOutOfMemory:          "out of memory: program reached the maximum available memory",
	CodeEncodingFailed:       "encoding process failed",
	CodeNoOperands:           "no operands found for opcode",
	CodeTooManyOperands:      "found more operands than required for opcode",
	CodeOperandFormat:        "operand format error",
	CodeInvalidOperand:       "invalid operand",
	CodeMatrixTrailing:       "invalid matrix operand, unexpected token after [][] brackets",
	CodeMatrixColumn:         "matrix column index is not a register",
	CodeMatrixRow:            "matrix row index is not a register",
	CodeMatrixLabel:          "invalid matrix label name",
	CodeInvalidSource:        "invalid source operand",
	CodeInvalidDest:          "invalid destination operand",
	CodeSourceNotAllowed:     "source operand addressing mode not allowed for opcode",
	CodeDestNotAllowed:       "destination operand addressing mode not allowed for opcode",
	CodeNotEnoughOperands:    "not enough operands for opcode",
	CodeUnexpectedComma:      "unexpected comma near the operands",
	CodeMissingComma:         "missing comma between operands",
	CodeTooManyDigits:        "numeric operand has too many digits",
	CodeLineTooLong:          "line exceeds the maximum allowed length",
	CodeDirectiveNotFound:    "directive name not found",
	CodeDataRange:            "number does not fit in a memory word",
	CodeStringNoOpenQuote:    "string must begin with a double quote",
	CodeStringIllegalChar:    "illegal character in string",
	CodeStringNoCloseQuote:   "string must end with a double quote",
	CodeStringTrailing:       "unexpected token after string",
	CodeStringMissing:        "string not found",
	CodeDataNoNumbers:        "no numeric value provided",
	CodeDataSignNoDigits:     "no digits after + or - sign",
	CodeDataUnexpected:       "unexpected token while expecting a number",
	CodeDataMissingComma:     "missing comma after number",
	CodeDataTrailingComma:    "unnecessary comma at end of line",
	CodeMatSizeMissing:       "matrix size is missing, expected [rows][cols]",
	CodeMatSizeFormat:        "invalid matrix size, expected [rows][cols]",
	CodeMatSizeZero:          "matrix rows and columns cannot be zero",
	CodeMatTooManyValues:     "too many values for the declared matrix size",
	CodeEntryNoLabel:         "entry label not found",
	CodeEntryInvalidName:     "illegal entry label name",
	CodeEntryTrailing:        "unexpected token after entry label name",
	CodeEntryUndefined:       "can't define the label as entry, label doesn't exist",
	CodeEntryExternal:        "can't define external label as entry",
	CodeImmediateRange:       "immediate operand value does not fit in its field",
	CodeOpenFile:             "can't open the file",
	CodeInvalidLabel:         "invalid label name",
	CodeUndeclaredLabel:      "attempted to use an undeclared label",
	CodeMacroNameUsed:        "macro name already in use",
	CodeMacroInvalidName:     "invalid macro name",
	CodeMacroTrailing:        "unexpected token after macro name",
	CodeMacroEndTrailing:     "unexpected token after mcroend",
	CodeMacroEmpty:           "macro content is missing",
	CodeMacroNoEnd:           "mcroend is missing",
	CodeMacroCallTrailing:    "unexpected token after macro invocation",
	CodeInvalidFileName:      "invalid file name",
	CodeFileNameLength:       "file name length is not acceptable",
	CodeUnknownLine:          "unknown line type",
	CodeExternNoName:         "external label name not found",
	CodeExternTrailing:       "unexpected token after external label name",
	CodeExternInvalidName:    "invalid external label name",
	CodeExternExists:         "external label name already in use",
	CodeFileNotFound:         "file does not exist",
	CodeFileInUse:            "file is in use",
	CodeFilePermission:       "permission denied",
	CodeLabelUsed:            "label name already in use",
	CodeUnknownDirective:     "unknown directive name",
	CodeUnknownOperation:     "unknown type of operation",
	CodeUnknownFileType:      "unknown file type, expected an assembly source file (.as)",
	CodeCommaBeforeOperand:   "unexpected comma before the first operand",
	CodeCommaAfterOperand:    "unexpected comma after the last operand",
	CodeCommaBetweenOperands: "unexpected comma between the operands",
	CodeImmediateMissing:     "number missing after # sign",
	CodeImmediateChar:        "unexpected character in immediate operand, only numbers are allowed",
	CodeDataFloat:            "floating point numbers are not allowed",
	CodeDataAlpha:            "characters are not allowed, only numbers",
	CodeDataDoubleComma:      "unexpected comma before a number",
	CodeMacroNoName:          "macro name not found",
	CodeMacroEndWithoutStart: "mcroend found without a macro declaration",
	CodeImmediateFloat:       "floating point numbers are not allowed in immediate operands",
	CodeNoInput:              "input file is missing",
	CodeLabelOnEmptyLine:     "can't define label on empty line",
	CodeDataLeadingComma:     "unnecessary comma before numbers",
	CodeDataNumberMissing:    "number missing after comma",
}

var systemMessages = map[Code]string{
	CodeAllocation:      "memory allocation failed",
	CodeOpcodeField:     "opcode value exceeds its bit field",
	CodeSrcModeField:    "source addressing mode exceeds its bit field",
	CodeDstModeField:    "destination addressing mode exceeds its bit field",
	CodeOpcodeERAField:  "opcode encoding tag exceeds its bit field",
	CodeDstRegField:     "destination register number exceeds its bit field",
	CodeSrcRegField:     "source register number exceeds its bit field",
	CodeMatrixRegField:  "matrix register index exceeds its bit field",
	CodeOperandERAField: "operand encoding tag exceeds its bit field",
	CodeAddressField:    "label address exceeds its bit field",
	CodeOutputFile:      "can't write output file",
}

var internalMessages = map[Code]string{
	CodeNilArgument:      "missing argument",
	CodeOperandHandler:   "no handler for this number of operands",
	CodeNoEncoding:       "no encoding for operand type",
	CodeRelocateNonLabel: "can't relocate an operand that is not a label",
	CodeFixupTarget:      "fixup target address not found in instruction image",
	CodeFixupOperand:     "fixup has no operand",
}

// A Diagnostic is a single error reported during assembly.
type Diagnostic struct {
	Severity Severity
	Code     Code
	File     string // source file name
	Line     int    // source line number, or 0 if not tied to a line
	Column   int    // 1-based column, or 0
	Msg      string
}

// String formats the diagnostic for display.
func (d Diagnostic) String() string {
	switch d.Severity {
	case SeveritySystem:
		return fmt.Sprintf("SYSTEM ERROR: %s", d.Msg)
	case SeverityInternal:
		return fmt.Sprintf("INTERNAL ERROR: %s", d.Msg)
	}
	switch {
	case d.File == "":
		return fmt.Sprintf("ERROR: %s", d.Msg)
	case d.Line <= 0:
		return fmt.Sprintf("%s: ERROR: %s", d.File, d.Msg)
	default:
		return fmt.Sprintf("%s::%d: ERROR: %s", d.File, d.Line, d.Msg)
	}
}

// Message returns the catalogue text for a code of the given severity.
func Message(s Severity, c Code) string {
	var m map[Code]string
	switch s {
	case SeveritySystem:
		m = systemMessages
	case SeverityInternal:
		m = internalMessages
	default:
		m = userMessages
	}
	if msg, ok := m[c]; ok {
		return msg
	}
	return fmt.Sprintf("error %d", c)
}

// An encodeError is returned by the encoder. It carries the severity so
// the caller can decide whether the file or the whole run must stop.
type encodeError struct {
	severity Severity
	code     Code
}

func (e *encodeError) Error() string {
	return Message(e.severity, e.code)
}

func userError(c Code) error {
	return &encodeError{SeverityUser, c}
}

func systemError(c Code) error {
	return &encodeError{SeveritySystem, c}
}

func internalError(c Code) error {
	return &encodeError{SeverityInternal, c}
}
