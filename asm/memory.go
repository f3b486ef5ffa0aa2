// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import "errors"

var errOutOfMemory = errors.New("out of memory")

// A Word is one machine word stored at an address.
type Word struct {
	Address int
	Value   int // masked to the machine word width
}

// memory tracks the words used by both images against the machine's
// capacity.
type memory struct {
	capacity int
	used     int
	reported bool // out-of-memory has already been reported
}

// An image is an append-only sequence of words with its own counter.
type image struct {
	mem   *memory
	mask  int
	words []Word
}

func newImage(mem *memory, mask int) *image {
	return &image{mem: mem, mask: mask}
}

// Return the image's counter: the address of the next word.
func (im *image) counter() int {
	return len(im.words)
}

// Append a word at the next address.
func (im *image) append(value int) error {
	if im.mem.used >= im.mem.capacity {
		im.mem.used++
		return errOutOfMemory
	}
	im.mem.used++
	im.words = append(im.words, Word{Address: len(im.words), Value: value & im.mask})
	return nil
}

// Return the index of the word at an address, or -1.
func (im *image) find(addr int) int {
	for i, w := range im.words {
		if w.Address == addr {
			return i
		}
	}
	return -1
}

// Add offset to the address of every word.
func (im *image) relocate(offset int) {
	for i := range im.words {
		im.words[i].Address += offset
	}
}

func (im *image) list() []Word {
	out := make([]Word, len(im.words))
	copy(out, im.words)
	return out
}
