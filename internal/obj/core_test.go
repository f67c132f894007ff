// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package obj

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"testing"

	"github.com/loongdbg/loongtdep/internal/arch"
	"github.com/loongdbg/loongtdep/internal/obj/objtest"
)

var le = binary.LittleEndian

func testRegs(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = seed + byte(i)
	}
	return b
}

func TestOpenCore(t *testing.T) {
	for _, a := range []*arch.Arch{arch.LoongArch32, arch.LoongArch64} {
		size := 45 * a.Layout.WordSize
		regs1, regs2 := testRegs(size, 1), testRegs(size, 100)
		data := objtest.Core(a, elf.ELFOSABI_NONE,
			[]objtest.Thread{{LWP: 42, Signal: 11, Regs: regs1}, {LWP: 43, Regs: regs2}},
			[]objtest.Segment{{Vaddr: 0x1000, Data: []byte{1, 2, 3, 4}, Memsz: 8}, {Vaddr: 0x1008, Data: []byte{5, 6}}})
		c, err := OpenCore(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("%v: %v", a, err)
		}
		if c.Arch() != a {
			t.Errorf("%v: wrong arch %v", a, c.Arch())
		}
		th := c.Threads()
		if len(th) != 2 || th[0].LWP != 42 || th[0].Signal != 11 || th[1].LWP != 43 {
			t.Fatalf("%v: bad threads %+v", a, th)
		}
		for _, test := range []struct {
			name string
			want []byte
		}{
			{".reg", regs1},
			{".reg/42", regs1},
			{".reg/43", regs2},
		} {
			got, ok := c.Section(test.name)
			if !ok || !bytes.Equal(got, test.want) {
				t.Errorf("%v: section %s: want % x, got % x (%v)", a, test.name, test.want, got, ok)
			}
		}
		if _, ok := c.Section(".reg/44"); ok {
			t.Errorf("%v: found section for missing thread", a)
		}

		// Reads span the zero tail of the first segment and
		// continue into the second.
		buf := make([]byte, 10)
		if n, err := c.ReadMemory(buf, 0x1000); err != nil || n != 10 {
			t.Fatalf("%v: ReadMemory: %d, %v", a, n, err)
		}
		if want := []byte{1, 2, 3, 4, 0, 0, 0, 0, 5, 6}; !bytes.Equal(buf, want) {
			t.Errorf("%v: want % x, got % x", a, want, buf)
		}
		if _, err := c.ReadMemory(buf[:4], 0x2000); err == nil {
			t.Errorf("%v: read of unmapped memory succeeded", a)
		}
	}
}

func TestOpenCoreNotCore(t *testing.T) {
	if _, err := OpenCore(bytes.NewReader([]byte("not an elf file"))); err == nil {
		t.Errorf("want error")
	}
}

func TestParseNotes(t *testing.T) {
	var buf bytes.Buffer
	for _, n := range []struct {
		name string
		desc []byte
	}{{"CORE", []byte{1, 2, 3}}, {"LINUX", nil}} {
		hdr := make([]byte, 12)
		le.PutUint32(hdr[0:], uint32(len(n.name)+1))
		le.PutUint32(hdr[4:], uint32(len(n.desc)))
		le.PutUint32(hdr[8:], 7)
		buf.Write(hdr)
		buf.WriteString(n.name)
		buf.Write(make([]byte, align4(len(n.name)+1)-len(n.name)))
		buf.Write(n.desc)
		buf.Write(make([]byte, align4(len(n.desc))-len(n.desc)))
	}
	notes, err := ParseNotes(buf.Bytes(), le)
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 2 || notes[0].Name != "CORE" || !bytes.Equal(notes[0].Desc, []byte{1, 2, 3}) || notes[1].Name != "LINUX" || len(notes[1].Desc) != 0 {
		t.Errorf("bad notes %+v", notes)
	}
	if _, err := ParseNotes(buf.Bytes()[:20], le); err == nil {
		t.Errorf("want error for truncated notes")
	}
}
