// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

// A fixup is a request to patch an instruction word with a label's
// address once all addresses are known.
type fixup struct {
	target  int     // address of the word to patch
	operand operand // the direct or matrix operand referencing the label
}

// Encode an instruction with 0, 1 or 2 operands into machine words. ic is
// the address the first word will occupy. Direct and matrix operands
// produce placeholder words and fixups.
func (a *assembler) encodeInstruction(op *opcode, ops []operand, ic int) ([]int, []fixup, error) {
	lay := &a.cfg.Layout

	var src, dst *operand
	switch len(ops) {
	case 0:
	case 1:
		dst = &ops[0]
	case 2:
		src, dst = &ops[0], &ops[1]
	default:
		return nil, nil, internalError(CodeOperandHandler)
	}

	srcMode, dstMode := 0, 0
	if src != nil {
		srcMode = int(src.mode())
	}
	if dst != nil {
		dstMode = int(dst.mode())
	}

	switch {
	case !lay.Opcode.FitsUnsigned(op.value):
		return nil, nil, systemError(CodeOpcodeField)
	case !lay.SrcMode.FitsUnsigned(srcMode):
		return nil, nil, systemError(CodeSrcModeField)
	case !lay.DstMode.FitsUnsigned(dstMode):
		return nil, nil, systemError(CodeDstModeField)
	case !lay.ERA.FitsUnsigned(int(op.encoding)):
		return nil, nil, systemError(CodeOpcodeERAField)
	}

	words := []int{
		lay.Opcode.Pack(op.value) |
			lay.SrcMode.Pack(srcMode) |
			lay.DstMode.Pack(dstMode) |
			lay.ERA.Pack(int(op.encoding)),
	}

	// Two register operands share a single word.
	if src != nil && src.mode() == ModeRegister && dst.mode() == ModeRegister {
		sw, err := a.encodeRegister(src, true)
		if err != nil {
			return nil, nil, err
		}
		dw, err := a.encodeRegister(dst, false)
		if err != nil {
			return nil, nil, err
		}
		return append(words, sw|dw), nil, nil
	}

	var fixups []fixup
	for _, o := range []*operand{src, dst} {
		if o == nil {
			continue
		}
		w, f, err := a.encodeOperand(o, o == src, ic+len(words))
		if err != nil {
			return nil, nil, err
		}
		words = append(words, w...)
		fixups = append(fixups, f...)
	}
	return words, fixups, nil
}

// Encode the words following the first word of an instruction for a
// single operand placed at address addr.
func (a *assembler) encodeOperand(o *operand, isSource bool, addr int) ([]int, []fixup, error) {
	lay := &a.cfg.Layout

	if !lay.ERA.FitsUnsigned(int(o.encoding)) {
		return nil, nil, systemError(CodeOperandERAField)
	}

	switch v := o.val.(type) {
	case immediate:
		if !lay.OperandData.FitsSigned(v.value) {
			return nil, nil, userError(CodeImmediateRange)
		}
		return []int{lay.OperandData.Pack(v.value) | lay.ERA.Pack(int(o.encoding))}, nil, nil

	case register:
		w, err := a.encodeRegister(o, isSource)
		if err != nil {
			return nil, nil, err
		}
		return []int{w}, nil, nil

	case direct:
		return []int{0}, []fixup{{target: addr, operand: *o}}, nil

	case matrix:
		if !lay.SrcReg.FitsUnsigned(v.row) || !lay.DstReg.FitsUnsigned(v.col) {
			return nil, nil, systemError(CodeMatrixRegField)
		}
		regs := lay.SrcReg.Pack(v.row) | lay.DstReg.Pack(v.col) | lay.ERA.Pack(int(EncAbsolute))
		return []int{0, regs}, []fixup{{target: addr, operand: *o}}, nil

	default:
		return nil, nil, internalError(CodeNoEncoding)
	}
}

// Encode a register operand into the source or destination register
// field of a word.
func (a *assembler) encodeRegister(o *operand, isSource bool) (int, error) {
	lay := &a.cfg.Layout

	r, ok := o.val.(register)
	if !ok {
		return 0, internalError(CodeNoEncoding)
	}

	field, code := lay.DstReg, CodeDstRegField
	if isSource {
		field, code = lay.SrcReg, CodeSrcRegField
	}
	if !field.FitsUnsigned(r.index) {
		return 0, systemError(code)
	}
	return field.Pack(r.index) | lay.ERA.Pack(int(o.encoding)), nil
}

// Encode a resolved label address together with its encoding tag.
func (a *assembler) encodeAddress(addr int, enc Encoding) (int, error) {
	lay := &a.cfg.Layout
	switch {
	case !lay.OperandData.FitsUnsigned(addr):
		return 0, systemError(CodeAddressField)
	case !lay.ERA.FitsUnsigned(int(enc)):
		return 0, systemError(CodeOperandERAField)
	}
	return lay.OperandData.Pack(addr) | lay.ERA.Pack(int(enc)), nil
}
