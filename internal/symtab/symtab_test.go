// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package symtab

import (
	"testing"

	"github.com/loongdbg/loongtdep/internal/obj"
)

var testSyms = []obj.Sym{
	{Name: "main", Value: 0x2000, Size: 0x40, Kind: obj.SymText},
	{Name: "puts", Value: 0x1010, Size: 0x10, Kind: obj.SymTrampoline},
	{Name: "puts", Value: 0x9000, Size: 0x80, Kind: obj.SymText},
	{Name: "missing", Kind: obj.SymUndef},
	{Name: "start", Value: 0x2040, Kind: obj.SymText},
}

func TestAddr(t *testing.T) {
	tab := NewTable(append([]obj.Sym(nil), testSyms...))
	for _, test := range []struct {
		addr uint64
		want string
	}{
		{0x1010, "puts"},
		{0x101f, "puts"},
		{0x1020, ""},
		{0x2000, "main"},
		{0x203f, "main"},
		{0x2040, ""},
		{0x9040, "puts"},
	} {
		if got, _ := tab.SymName(test.addr); got != test.want {
			t.Errorf("SymName(%#x): want %q, got %q", test.addr, test.want, got)
		}
	}
}

func TestName(t *testing.T) {
	tab := NewTable(append([]obj.Sym(nil), testSyms...))
	if s, ok := tab.Name("puts"); !ok || s.Value != 0x1010 {
		t.Errorf("Name(puts): got %+v, %v", s, ok)
	}
	if s, ok := tab.NameKind("puts", obj.SymText); !ok || s.Value != 0x9000 {
		t.Errorf("NameKind(puts, T): got %+v, %v", s, ok)
	}
	if _, ok := tab.Name("missing"); ok {
		t.Errorf("undefined symbol in table")
	}
}
