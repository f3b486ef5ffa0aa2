// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type labelResolver map[string]int64

func (r labelResolver) resolveIdentifier(s string) (int64, error) {
	if v, ok := r[s]; ok {
		return v, nil
	}
	return 0, fmt.Errorf("identifier '%s' not found", s)
}

func TestExprParser(t *testing.T) {
	r := labelResolver{"A": 100, "LOOP_2": 7}

	tests := []struct {
		expr  string
		value int64
	}{
		{"1+2*3", 7},
		{"(1+2)*3", 9},
		{"8-4-2", 2},
		{"100/10/5", 2},
		{"10 % 4", 2},
		{"-5+2", -3},
		{"2 - -3", 5},
		{"-(2+3)", -5},
		{"2*-3", -6},
		{"-2*3", -6},
		{"~0", -1},
		{"1<<4", 16},
		{"256>>2", 64},
		{"6&3", 2},
		{"6|3", 7},
		{"6^3", 5},
		{"0x1F", 31},
		{"0b101", 5},
		{"0qbcba", 100},
		{"A+1", 101},
		{"LOOP_2 * 2", 14},
		{"  42  ", 42},
	}

	p := newExprParser()
	for _, test := range tests {
		v, err := p.Parse(test.expr, r)
		require.NoError(t, err, test.expr)
		require.Equal(t, test.value, v, test.expr)
	}
}

func TestExprParserErrors(t *testing.T) {
	r := labelResolver{}

	tests := []string{
		"",
		"1+",
		"*3",
		"(1",
		"1)",
		"1 2",
		"0x",
		"0qe",
		"12ab",
		"1/0",
		"5%0",
		"B",
		"1 $ 2",
		"1 < 2",
	}

	p := newExprParser()
	for _, expr := range tests {
		_, err := p.Parse(expr, r)
		require.Error(t, err, expr)
	}

	// The parser recovers after an error.
	v, err := p.Parse("3*3", r)
	require.NoError(t, err)
	require.Equal(t, int64(9), v)
}
