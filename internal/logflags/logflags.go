// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logflags holds the per-layer loggers. Each layer logs at
// debug level only when it was enabled by Setup.
package logflags

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	gdbarch = false
	unwind  = false
	core    = false
	ptrace  = false

	out io.Writer = os.Stderr
)

// Setup enables the layers named in the comma-separated list logstr.
// Valid layers are gdbarch, unwind, core, ptrace and all. It must be
// called before any logger is used.
func Setup(logstr string, w io.Writer) error {
	if w != nil {
		out = w
	}
	gdbarch, unwind, core, ptrace = false, false, false, false
	if logstr == "" {
		return nil
	}
	for _, layer := range strings.Split(logstr, ",") {
		switch strings.TrimSpace(layer) {
		case "gdbarch":
			gdbarch = true
		case "unwind":
			unwind = true
		case "core":
			core = true
		case "ptrace":
			ptrace = true
		case "all":
			gdbarch, unwind, core, ptrace = true, true, true, true
		case "":
		default:
			return fmt.Errorf("unknown log layer %q", layer)
		}
	}
	return nil
}

func makeLogger(enabled bool, layer string) *logrus.Entry {
	logger := logrus.New().WithFields(logrus.Fields{"layer": layer})
	logger.Logger.Out = out
	logger.Logger.Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	logger.Logger.Level = logrus.ErrorLevel
	if enabled {
		logger.Logger.Level = logrus.DebugLevel
	}
	return logger
}

// Gdbarch reports whether architecture registration and lookup is
// logged.
func Gdbarch() bool { return gdbarch }

// GdbarchLogger returns the logger for architecture registration and
// lookup.
func GdbarchLogger() *logrus.Entry {
	return makeLogger(gdbarch, "gdbarch")
}

// UnwindLogger returns the logger for frame unwinding.
func UnwindLogger() *logrus.Entry {
	return makeLogger(unwind, "unwind")
}

// CoreLogger returns the logger for core file reading.
func CoreLogger() *logrus.Entry {
	return makeLogger(core, "core")
}

// PtraceLogger returns the logger for live process access.
func PtraceLogger() *logrus.Entry {
	return makeLogger(ptrace, "ptrace")
}
