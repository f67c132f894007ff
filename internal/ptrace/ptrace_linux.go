// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ptrace

import (
	"debug/elf"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/loongdbg/loongtdep/internal/logflags"
)

// Attach attaches to pid and waits for it to stop.
func Attach(pid int) error {
	if err := unix.PtraceAttach(pid); err != nil {
		return errors.Wrapf(err, "attaching to %d", pid)
	}
	var ws unix.WaitStatus
	if _, err := unix.Wait4(pid, &ws, unix.WALL, nil); err != nil {
		return errors.Wrapf(err, "waiting for %d", pid)
	}
	if !ws.Stopped() {
		return errors.Errorf("%d did not stop: status %#x", pid, ws)
	}
	logflags.PtraceLogger().Debugf("attached to %d, stop signal %v", pid, ws.StopSignal())
	return nil
}

// Detach detaches from pid and lets it continue.
func Detach(pid int) error {
	if err := unix.PtraceDetach(pid); err != nil {
		return errors.Wrapf(err, "detaching from %d", pid)
	}
	logflags.PtraceLogger().Debugf("detached from %d", pid)
	return nil
}

func regset(req int, pid int, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, errors.New("empty register buffer")
	}
	iov := unix.Iovec{Base: &buf[0]}
	iov.SetLen(len(buf))
	_, _, errno := unix.Syscall6(unix.SYS_PTRACE, uintptr(req), uintptr(pid),
		uintptr(elf.NT_PRSTATUS), uintptr(unsafe.Pointer(&iov)), 0, 0)
	if errno != 0 {
		return 0, errno
	}
	return int(iov.Len), nil
}

// GetRegset reads the NT_PRSTATUS register image of pid. The kernel
// may return fewer than size bytes; the result is trimmed to what it
// wrote.
func GetRegset(pid int, size int) ([]byte, error) {
	buf := make([]byte, size)
	n, err := regset(unix.PTRACE_GETREGSET, pid, buf)
	if err != nil {
		return nil, errors.Wrapf(err, "PTRACE_GETREGSET %d", pid)
	}
	logflags.PtraceLogger().Debugf("read %d register bytes from %d", n, pid)
	return buf[:n], nil
}

// SetRegset writes buf as the NT_PRSTATUS register image of pid.
func SetRegset(pid int, buf []byte) error {
	n, err := regset(unix.PTRACE_SETREGSET, pid, buf)
	if err != nil {
		return errors.Wrapf(err, "PTRACE_SETREGSET %d", pid)
	}
	if n != len(buf) {
		return errors.Errorf("PTRACE_SETREGSET %d: wrote %d of %d bytes", pid, n, len(buf))
	}
	return nil
}

func (m Memory) ReadMemory(buf []byte, addr uint64) (int, error) {
	n, err := unix.PtracePeekData(m.Pid, uintptr(addr), buf)
	if err != nil {
		return n, errors.Wrapf(err, "reading %d bytes at %#x", len(buf), addr)
	}
	return n, nil
}
