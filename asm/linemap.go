// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import "sort"

// A LineMapping associates a line of expanded source with the line of the
// original source that produced it.
type LineMapping struct {
	Expanded int // 1-based line in the expanded source
	Original int // 1-based line in the original source
}

// A LineMap translates expanded source line numbers back to original
// source line numbers. Entries are kept in expanded-line order.
type LineMap struct {
	Lines []LineMapping
}

func (m *LineMap) add(expanded, original int) {
	m.Lines = append(m.Lines, LineMapping{Expanded: expanded, Original: original})
}

// Origin returns the original line for an expanded line, or -1 if the line
// is not mapped.
func (m *LineMap) Origin(expanded int) int {
	i := sort.Search(len(m.Lines), func(i int) bool {
		return m.Lines[i].Expanded >= expanded
	})
	if i < len(m.Lines) && m.Lines[i].Expanded == expanded {
		return m.Lines[i].Original
	}
	return -1
}
