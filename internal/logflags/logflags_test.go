// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logflags

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetup(t *testing.T) {
	defer Setup("", nil)

	var buf bytes.Buffer
	if err := Setup("unwind,core", &buf); err != nil {
		t.Fatal(err)
	}
	UnwindLogger().Debugf("hello %d", 1)
	GdbarchLogger().Debugf("hidden")
	if got := buf.String(); !strings.Contains(got, "hello 1") || !strings.Contains(got, "layer=unwind") {
		t.Errorf("unwind layer output missing: %q", got)
	}
	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("disabled layer logged: %q", buf.String())
	}

	if err := Setup("bogus", &buf); err == nil {
		t.Errorf("want error for unknown layer")
	}
	if err := Setup("all", &buf); err != nil || !Gdbarch() {
		t.Errorf("all did not enable gdbarch: %v", err)
	}
}
