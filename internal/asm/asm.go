// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asm decodes short machine code sequences for display.
package asm

// Seq is a sequence of instructions.
type Seq interface {
	Len() int
	Get(i int) Inst
}

// Inst is a single machine instruction.
type Inst interface {
	// GNUSyntax returns the GNU assembler syntax representation
	// of this instruction, or "?" if it could not be decoded.
	GNUSyntax() string

	// PC returns the address of this instruction.
	PC() uint64

	// Word returns the encoding of this instruction.
	Word() uint32

	// Control returns the control-flow effects of this
	// instruction.
	Control() Control
}

// Control captures control-flow effects of an instruction.
type Control struct {
	Type        ControlType
	Conditional bool
	TargetPC    uint64
}

type ControlType uint8

const (
	ControlNone ControlType = iota
	ControlJump
	ControlCall
	ControlRet

	// ControlSyscall enters the kernel. It may not return, as
	// with rt_sigreturn or exit.
	ControlSyscall
)

func (t ControlType) String() string {
	switch t {
	case ControlNone:
		return "none"
	case ControlJump:
		return "jump"
	case ControlCall:
		return "call"
	case ControlRet:
		return "ret"
	case ControlSyscall:
		return "syscall"
	}
	return "?"
}
