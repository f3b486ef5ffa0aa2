// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/beevik/asm10/asm"
	"github.com/beevik/prefixtree/v2"
)

type settings struct {
	LoadOffset     int  `doc:"address of the first instruction word"`
	MemoryCapacity int  `doc:"words available to code and data"`
	NameMaxLen     int  `doc:"maximum label and macro name length"`
	MaxLineLen     int  `doc:"maximum source line length"`
	MaxDigits      int  `doc:"maximum digits in an immediate operand"`
	Verbose        bool `doc:"verbose assembler output"`
	SourceMap      bool `doc:"write a source map with each object file"`
	ColorDump      bool `doc:"colorize the dump command"`
}

func newSettings() *settings {
	cfg := asm.DefaultConfig()
	return &settings{
		LoadOffset:     cfg.LoadOffset,
		MemoryCapacity: cfg.MemoryCapacity,
		NameMaxLen:     cfg.NameMaxLen,
		MaxLineLen:     cfg.MaxLineLen,
		MaxDigits:      cfg.MaxDigits,
		Verbose:        false,
		SourceMap:      false,
		ColorDump:      false,
	}
}

// config returns the assembler configuration described by the settings.
func (s *settings) config() asm.Config {
	cfg := asm.DefaultConfig()
	cfg.LoadOffset = s.LoadOffset
	cfg.MemoryCapacity = s.MemoryCapacity
	cfg.NameMaxLen = s.NameMaxLen
	cfg.MaxLineLen = s.MaxLineLen
	cfg.MaxDigits = s.MaxDigits
	return cfg
}

func (s *settings) options() asm.Option {
	var o asm.Option
	if s.Verbose {
		o |= asm.Verbose
	}
	if s.SourceMap {
		o |= asm.WriteSourceMap
	}
	return o
}

type settingsField struct {
	name  string
	index int
	kind  reflect.Kind
	typ   reflect.Type
	doc   string
}

var (
	settingsTree   = prefixtree.New[*settingsField]()
	settingsFields []settingsField
)

func init() {
	settingsType := reflect.TypeOf(settings{})
	settingsFields = make([]settingsField, settingsType.NumField())
	for i := 0; i < len(settingsFields); i++ {
		f := settingsType.Field(i)
		doc, _ := f.Tag.Lookup("doc")
		settingsFields[i] = settingsField{
			name:  f.Name,
			index: i,
			kind:  f.Type.Kind(),
			typ:   f.Type,
			doc:   doc,
		}
		settingsTree.Add(strings.ToLower(f.Name), &settingsFields[i])
	}
}

func (s *settings) Display(w io.Writer) {
	value := reflect.ValueOf(s).Elem()
	for i, f := range settingsFields {
		v := value.Field(i)
		var s string
		switch f.kind {
		case reflect.Int:
			s = fmt.Sprintf("    %-16s %d", f.name, v.Int())
		default:
			s = fmt.Sprintf("    %-16s %v", f.name, v)
		}
		fmt.Fprintf(w, "%-28s (%s)\n", s, f.doc)
	}
}

func (s *settings) Kind(key string) reflect.Kind {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return reflect.Invalid
	}
	return f.kind
}

// Set assigns value to the setting whose name has key as an unambiguous
// prefix.
func (s *settings) Set(key string, value any) error {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return err
	}

	vIn := reflect.ValueOf(value)
	if (f.kind == reflect.Bool) != (vIn.Kind() == reflect.Bool) ||
		!vIn.Type().ConvertibleTo(f.typ) {
		return errors.New("invalid type")
	}
	if f.kind == reflect.Int && vIn.Convert(f.typ).Int() < 0 {
		return fmt.Errorf("%s must not be negative", f.name)
	}

	vOut := reflect.ValueOf(s).Elem().Field(f.index)
	vOut.Set(vIn.Convert(f.typ))
	return nil
}
