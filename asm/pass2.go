// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

// Run the phases of the second pass in order. User errors are accumulated
// across all phases; system and internal errors stop immediately.
func (a *assembler) secondPass() error {
	phases := []func(a *assembler) error{
		(*assembler).processEntries, // Mark .entry labels
		(*assembler).relocateCode,   // Move the code image to the load address
		(*assembler).relocateData,   // Move the data image after the code
		(*assembler).relocateLabels, // Update label addresses to match
		(*assembler).resolveFixups,  // Patch label references
	}
	for _, phase := range phases {
		if err := phase(a); err != nil {
			return err
		}
	}
	return nil
}

// Rescan the expanded source for .entry directives.
func (a *assembler) processEntries() error {
	a.logSection("Processing entries")
	for i, text := range a.expanded {
		line := newFstring(i+1, text).trim()
		if line.isEmpty() || line.startsWith(comment) {
			continue
		}

		word, rest := line.consumeWord()
		if word.endsWithChar(':') {
			word, rest = rest.consumeWord()
		}
		if word.str == ".entry" {
			a.parseEntry(rest)
		}
	}
	return nil
}

func (a *assembler) relocateCode() error {
	a.logSection("Relocating")
	a.code.relocate(a.cfg.LoadOffset)
	for i := range a.sourceLines {
		a.sourceLines[i].Address += a.cfg.LoadOffset
	}
	a.log("code: %d words at %d", a.code.counter(), a.cfg.LoadOffset)
	return nil
}

func (a *assembler) relocateData() error {
	offset := a.code.counter() + a.cfg.LoadOffset
	a.data.relocate(offset)
	a.log("data: %d words at %d", a.data.counter(), offset)
	return nil
}

func (a *assembler) relocateLabels() error {
	a.labels.relocate(KindCode, a.cfg.LoadOffset)
	a.labels.relocate(KindData, a.code.counter()+a.cfg.LoadOffset)
	for _, l := range a.labels.labels {
		a.log("%-15s %-10s Addr:%d", l.Name, l.Kind, l.Address)
	}
	return nil
}

// Patch every word waiting for a label address.
func (a *assembler) resolveFixups() error {
	a.logSection("Resolving labels")
	for i := range a.fixups {
		f := &a.fixups[i]
		f.target += a.cfg.LoadOffset

		index := a.code.find(f.target)
		if index < 0 {
			return a.addEncodeError(f.operand.src, internalError(CodeFixupTarget))
		}

		name, ok := f.operand.label()
		if !ok {
			return a.addEncodeError(f.operand.src, internalError(CodeRelocateNonLabel))
		}

		l := a.labels.lookup(name)
		if l == nil {
			a.addError(f.operand.src, CodeUndeclaredLabel)
			continue
		}

		if l.Definition == DefExternal {
			f.operand.encoding = EncExternal
			a.externals = append(a.externals, ExternalUse{Label: name, Address: f.target})
		} else {
			f.operand.encoding = EncRelocatable
		}

		w, err := a.encodeAddress(l.Address, f.operand.encoding)
		if err != nil {
			return a.addEncodeError(f.operand.src, err)
		}
		a.code.words[index].Value = w & a.cfg.Layout.WordMask()
		a.logLine(f.operand.src, "%04d %s -> %d %s", f.target, name, l.Address, f.operand.encoding)
	}
	return nil
}
