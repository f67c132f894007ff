// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package obj

import (
	"debug/elf"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/pkg/errors"

	"github.com/loongdbg/loongtdep/internal/arch"
	"github.com/loongdbg/loongtdep/internal/logflags"
)

// A Core is an ELF core file.
type Core struct {
	elf     *elf.File
	arch    *arch.Arch
	threads []*Thread
	loads   []*elf.Prog
}

// A Thread is the state of one thread recorded in a core file.
type Thread struct {
	LWP    int
	Signal int

	// Sections maps register section names, such as ".reg", to
	// the raw register image recorded for this thread.
	Sections map[string][]byte
}

// Note is a decoded ELF note.
type Note struct {
	Name string
	Type elf.NType
	Desc []byte
}

// prstatus field offsets for each word size. pr_reg is followed by
// pr_fpvalid, padded to a word.
type prstatusLayout struct {
	signo, pid, reg int
}

var prstatusLayouts = map[int]prstatusLayout{
	4: {signo: 0, pid: 24, reg: 72},
	8: {signo: 0, pid: 32, reg: 112},
}

// OpenCore opens r as an ELF core file.
func OpenCore(r io.ReaderAt) (*Core, error) {
	f, err := elf.NewFile(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading ELF header")
	}
	if f.Type != elf.ET_CORE {
		return nil, errors.Errorf("not a core file (type %v)", f.Type)
	}
	a := arch.FromELF(f.Machine, f.Class)
	if a == nil {
		return nil, errors.Errorf("unsupported core file machine %v (%v)", f.Machine, f.Class)
	}
	c := &Core{elf: f, arch: a}

	notes, err := c.Notes()
	if err != nil {
		return nil, err
	}
	log := logflags.CoreLogger()
	for _, n := range notes {
		if n.Name != "CORE" || n.Type != elf.NT_PRSTATUS {
			log.Debugf("skipping note %s/%v (%d bytes)", n.Name, n.Type, len(n.Desc))
			continue
		}
		t, err := c.readPrstatus(n.Desc)
		if err != nil {
			return nil, err
		}
		log.Debugf("thread %d: signal %d, %d byte register image", t.LWP, t.Signal, len(t.Sections[".reg"]))
		c.threads = append(c.threads, t)
	}
	if len(c.threads) == 0 {
		return nil, errors.New("core file has no NT_PRSTATUS notes")
	}

	for _, p := range f.Progs {
		if p.Type == elf.PT_LOAD {
			c.loads = append(c.loads, p)
		}
	}
	sort.Slice(c.loads, func(i, j int) bool {
		return c.loads[i].Vaddr < c.loads[j].Vaddr
	})
	return c, nil
}

func (c *Core) readPrstatus(desc []byte) (*Thread, error) {
	ws := c.arch.Layout.WordSize
	l := prstatusLayouts[ws]
	if len(desc) < l.reg+ws {
		return nil, errors.Errorf("NT_PRSTATUS note too short (%d bytes)", len(desc))
	}
	order := c.elf.ByteOrder
	reg := desc[l.reg : len(desc)-ws]
	return &Thread{
		LWP:      int(int32(order.Uint32(desc[l.pid:]))),
		Signal:   int(int32(order.Uint32(desc[l.signo:]))),
		Sections: map[string][]byte{".reg": reg},
	}, nil
}

// Arch returns the architecture of the process that dumped core.
func (c *Core) Arch() *arch.Arch {
	return c.arch
}

// ELF returns the underlying ELF file.
func (c *Core) ELF() *elf.File {
	return c.elf
}

// Threads returns the threads in the core file. The first thread is
// the one that received the fatal signal.
func (c *Core) Threads() []*Thread {
	return c.threads
}

// Section returns the register section named name. Names have the
// form ".reg/<lwp>"; a bare ".reg" names the first thread's section.
func (c *Core) Section(name string) ([]byte, bool) {
	for _, t := range c.threads {
		for sect, data := range t.Sections {
			if name == sect && t == c.threads[0] {
				return data, true
			}
			if name == fmt.Sprintf("%s/%d", sect, t.LWP) {
				return data, true
			}
		}
	}
	return nil, false
}

// Notes returns all notes in the PT_NOTE segments of c.
func (c *Core) Notes() ([]Note, error) {
	var out []Note
	for _, p := range c.elf.Progs {
		if p.Type != elf.PT_NOTE {
			continue
		}
		data, err := io.ReadAll(p.Open())
		if err != nil {
			return nil, errors.Wrap(err, "reading PT_NOTE segment")
		}
		notes, err := ParseNotes(data, c.elf.ByteOrder)
		if err != nil {
			return nil, err
		}
		out = append(out, notes...)
	}
	return out, nil
}

func align4(n int) int {
	return (n + 3) &^ 3
}

// ParseNotes decodes a sequence of 4-byte aligned ELF notes.
func ParseNotes(data []byte, order binary.ByteOrder) ([]Note, error) {
	var out []Note
	for len(data) > 0 {
		if len(data) < 12 {
			return nil, errors.Errorf("truncated note header (%d bytes)", len(data))
		}
		namesz := int(order.Uint32(data[0:]))
		descsz := int(order.Uint32(data[4:]))
		typ := elf.NType(order.Uint32(data[8:]))
		data = data[12:]
		if namesz < 0 || descsz < 0 || align4(namesz) > len(data) || align4(namesz)+descsz > len(data) {
			return nil, errors.Errorf("truncated note %v", typ)
		}
		name := data[:namesz]
		if n := len(name); n > 0 && name[n-1] == 0 {
			name = name[:n-1]
		}
		data = data[align4(namesz):]
		desc := data[:descsz]
		data = data[min(align4(descsz), len(data)):]
		out = append(out, Note{string(name), typ, desc})
	}
	return out, nil
}

// ReadMemory reads len(buf) bytes at addr from the memory image of
// the core file. Memory past a segment's file size reads as zero.
func (c *Core) ReadMemory(buf []byte, addr uint64) (int, error) {
	n := 0
	for n < len(buf) {
		a := addr + uint64(n)
		p := c.load(a)
		if p == nil {
			return n, errors.Errorf("address %#x not mapped in core file", a)
		}
		off := a - p.Vaddr
		want := min(uint64(len(buf)-n), p.Memsz-off)
		chunk := buf[n : n+int(want)]
		if off < p.Filesz {
			m := min(want, p.Filesz-off)
			if _, err := p.ReadAt(chunk[:m], int64(off)); err != nil {
				return n, errors.Wrapf(err, "reading %#x", a)
			}
			clear(chunk[m:])
		} else {
			clear(chunk)
		}
		n += int(want)
	}
	return n, nil
}

func (c *Core) load(addr uint64) *elf.Prog {
	i := sort.Search(len(c.loads), func(i int) bool {
		return addr < c.loads[i].Vaddr
	})
	if i > 0 {
		p := c.loads[i-1]
		if addr-p.Vaddr < p.Memsz {
			return p
		}
	}
	return nil
}
