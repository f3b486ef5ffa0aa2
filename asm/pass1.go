// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

// Scan the expanded source, building the symbol table, both memory images
// and the fixup list. Errors are accumulated; only system and internal
// errors stop the scan.
func (a *assembler) firstPass() error {
	a.logSection("First pass")
	for i, text := range a.expanded {
		err := a.parseLine(newFstring(i+1, text))
		if err != nil {
			return err
		}
	}
	return nil
}

// Parse a single line of expanded source.
func (a *assembler) parseLine(line fstring) error {
	line = line.trimRight()
	body := line.consumeWhitespace()

	// Skip empty and comment lines.
	if body.isEmpty() || body.startsWith(comment) {
		return nil
	}

	a.log("---")

	if len(line.str) > a.cfg.MaxLineLen {
		a.addError(line, CodeLineTooLong)
		return nil
	}

	label, labelOK, rest := a.parseLabel(body)
	word, rest := rest.consumeWord()
	if word.isEmpty() {
		a.addError(label, CodeLabelOnEmptyLine)
		return nil
	}

	kind := classifyWord(word)
	a.logLine(word, "%s", kind)

	if !labelOK {
		label = fstring{}
	}

	switch kind {
	case lineInstruction:
		return a.parseInstruction(label, word, rest)

	case lineData:
		a.parseDataDirective(label, word, rest)

	case lineExtern:
		a.parseExtern(rest)

	case lineEntry:
		// Entries are resolved in the second pass.

	default:
		if word.startsWithChar('.') {
			a.addError(word, CodeUnknownDirective)
		} else {
			a.addError(word, CodeUnknownOperation)
		}
	}
	return nil
}

// Classify a line by its first word.
func classifyWord(word fstring) lineKind {
	if lookupOpcode(word.str) != nil {
		return lineInstruction
	}
	if d, ok := directives[word.str]; ok {
		return d.kind
	}
	return lineUnknown
}

// Split off a "name:" label prefix. The label is validated here but only
// inserted once the rest of the line has been processed successfully.
// ok is false when a label was present but is unusable.
func (a *assembler) parseLabel(line fstring) (label fstring, ok bool, remain fstring) {
	word, rest := line.consumeWord()
	if !word.endsWithChar(':') {
		return fstring{}, true, line
	}

	label = word.trunc(len(word.str) - 1)
	switch {
	case !a.cfg.validName(label.str):
		a.addError(label, CodeInvalidLabel)
		return label, false, rest
	case !a.nameAvailable(label.str):
		a.addError(label, CodeLabelUsed)
		return label, false, rest
	}

	a.logLine(label, "label=%s", label.str)
	return label, true, rest
}

// Parse and encode an instruction line, appending its words to the
// instruction image.
func (a *assembler) parseInstruction(label, word, rest fstring) error {
	op := lookupOpcode(word.str)
	ops, ok := a.parseOperands(op, word, rest)
	if !ok {
		return nil
	}

	ic := a.code.counter()
	words, fixups, err := a.encodeInstruction(op, ops, ic)
	if err != nil {
		return a.addEncodeError(word, err)
	}

	for _, w := range words {
		if err := a.code.append(w); err != nil {
			a.outOfMemory(word)
			return nil
		}
	}
	a.fixups = append(a.fixups, fixups...)
	a.logWords(word, ic, words)

	a.sourceLines = append(a.sourceLines, SourceLine{
		Address: ic,
		Line:    a.origin(word),
	})

	if !label.isEmpty() {
		a.labels.add(Label{Name: label.str, Address: ic, Kind: KindCode, Line: a.origin(label)})
	}
	return nil
}

// Parse a .data, .string or .mat line, appending its values to the data
// image.
func (a *assembler) parseDataDirective(label, word, rest fstring) {
	values, err := directives[word.str].fn(a, rest)
	if err != nil {
		return
	}

	dc := a.data.counter()
	for _, v := range values {
		if err := a.data.append(v); err != nil {
			a.outOfMemory(word)
			return
		}
	}
	a.logLine(word, "dc=%d words=%d", dc, len(values))

	if !label.isEmpty() {
		a.labels.add(Label{Name: label.str, Address: dc, Kind: KindData, Line: a.origin(label)})
	}
}

// Report memory exhaustion once per file.
func (a *assembler) outOfMemory(l fstring) {
	if !a.mem.reported {
		a.mem.reported = true
		a.addError(l, CodeOutOfMemory)
	}
}
