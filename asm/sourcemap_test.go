// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSourceMap(t *testing.T) {
	code := `
mcro twice
	inc r1
	inc r1
mcroend
	.entry L
	.entry M
M:	twice
L:	stop`

	// "M: twice" is not an invocation, so M labels an unknown operation.
	_, _, err := Assemble(strings.NewReader(code), "test", DefaultConfig(), io.Discard, 0)
	require.ErrorIs(t, err, ErrSyntax)

	code = strings.Replace(code, "M:\ttwice", "\ttwice\nM:\tstop", 1)
	_, sm, err := Assemble(strings.NewReader(code), "test", DefaultConfig(), io.Discard, 0)
	require.NoError(t, err)

	file, line := sm.Search(100)
	require.Equal(t, "test", file)
	require.Equal(t, 3, line)

	_, line = sm.Search(102)
	require.Equal(t, 4, line)

	_, line = sm.Search(104)
	require.Equal(t, 9, line)

	_, line = sm.Search(101)
	require.Equal(t, -1, line)

	require.Equal(t, []Export{{"M", 104}, {"L", 105}}, sm.Exports)
	addr, ok := sm.Lookup("L")
	require.True(t, ok)
	require.Equal(t, 105, addr)
	_, ok = sm.Lookup("X")
	require.False(t, ok)

	var buf bytes.Buffer
	_, err = sm.WriteTo(&buf)
	require.NoError(t, err)

	var sm2 SourceMap
	_, err = sm2.ReadFrom(&buf)
	require.NoError(t, err)
	require.Equal(t, *sm, sm2)
}
