// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package loongarch

import (
	"github.com/loongdbg/loongtdep/internal/frame"
)

// Instructions of the kernel's rt_sigreturn trampoline.
const (
	insnLiwA7RtSigreturn = 0x03822c0b // li.w a7, __NR_rt_sigreturn
	insnSyscall          = 0x002b0000 // syscall 0
)

// Offsets from the stack pointer of the trampoline frame to the
// struct ucontext in the kernel's struct rt_sigframe, and from there
// to the embedded struct sigcontext.
const (
	rtSigframeUcontextOffset = 128
	ucontextSigcontextOffset = 176
)

// sigcontext holds sc_pc followed by sc_regs[32], each 8 bytes
// regardless of the register width of the process.
const sigcontextSlotSize = 8

// SigcontextAddr returns the address of the struct sigcontext saved
// by the kernel for a signal trampoline frame with stack pointer sp.
func SigcontextAddr(sp uint64) uint64 {
	return sp + rtSigframeUcontextOffset + ucontextSigcontextOffset
}

// RtSigreturnInsns is the instruction pattern of the kernel's signal
// return trampoline.
var RtSigreturnInsns = []frame.TrampInsn{
	{Bytes: insnLiwA7RtSigreturn, Mask: 0xffffffff},
	{Bytes: insnSyscall, Mask: 0xffffffff},
	{Bytes: frame.TrampSentinel, Mask: 0xffffffff},
}

func newRtSigframe(l Layout) *frame.TrampFrame {
	return &frame.TrampFrame{
		Name:      "loongarch-linux-rt-sigframe",
		FrameKind: frame.SigtrampFrame,
		InsnSize:  4,
		Insns:     RtSigreturnInsns,
		Init: func(self *frame.TrampFrame, f *frame.Frame, cache *frame.TradCache, fn uint64) {
			base := SigcontextAddr(f.SP)
			cache.SetRegAddr(l.PC, base)
			for i := 0; i < NumGPRs; i++ {
				cache.SetRegAddr(l.R+i, base+sigcontextSlotSize+uint64(i)*sigcontextSlotSize)
			}
			cache.SetID(frame.FrameID{StackAddr: f.SP, CodeAddr: fn})
		},
	}
}
