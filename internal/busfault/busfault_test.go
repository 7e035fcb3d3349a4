// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package busfault

import (
	"os"
	"testing"
	"unsafe"

	"golang.org/x/sys/unix"
)

func TestContainsTracksRecordedRanges(t *testing.T) {
	tr := NewTracker()
	tr.Record(0x1000, 0x100)
	tr.Record(0x3000, 0x10)

	cases := []struct {
		addr uintptr
		want bool
	}{
		{0x0fff, false},
		{0x1000, true},
		{0x10ff, true},
		{0x1100, false},
		{0x3000, true},
		{0x300f, true},
		{0x3010, false},
	}
	for _, c := range cases {
		if got := tr.Contains(c.addr); got != c.want {
			t.Errorf("Contains(%#x) = %v, want %v", c.addr, got, c.want)
		}
	}
}

func TestUnrecordRemovesRange(t *testing.T) {
	tr := NewTracker()
	tr.Record(0x1000, 0x100)
	if !tr.Unrecord(0x1000) {
		t.Fatal("Unrecord missed a recorded range")
	}
	if tr.Contains(0x1000) {
		t.Fatal("range survived Unrecord")
	}
	if tr.Unrecord(0x1000) {
		t.Fatal("Unrecord found an already-removed range")
	}
}

func TestRecordSameBaseReplacesLength(t *testing.T) {
	tr := NewTracker()
	tr.Record(0x1000, 0x100)
	tr.Record(0x1000, 0x10)
	if tr.Len() != 1 {
		t.Fatalf("Len = %d, want 1", tr.Len())
	}
	if tr.Contains(0x1080) {
		t.Fatal("old length still in effect")
	}
}

func TestGuardPassesThroughCleanAccess(t *testing.T) {
	tr := NewTracker()
	ran := false
	if tr.Guard(func() { ran = true }) {
		t.Fatal("clean access reported a fault")
	}
	if !ran {
		t.Fatal("access not run")
	}
}

// TestGuardSwallowsTruncatedPoolRead maps a file, truncates it under the
// mapping, and reads through it — the scenario of a client shrinking a
// shared-memory pool while its pixels are being composited.
func TestGuardSwallowsTruncatedPoolRead(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "pool")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	defer f.Close()

	const size = 4096
	if err := f.Truncate(size); err != nil {
		t.Fatalf("Truncate: %v", err)
	}
	mem, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		t.Fatalf("Mmap: %v", err)
	}
	defer unix.Munmap(mem)

	tr := NewTracker()
	tr.Record(uintptr(unsafe.Pointer(&mem[0])), size)

	// Shrink the pool under the live mapping; any read past the new end
	// now raises SIGBUS.
	if err := f.Truncate(0); err != nil {
		t.Fatalf("Truncate(0): %v", err)
	}

	var sink byte
	faulted := tr.Guard(func() {
		sink = mem[size/2]
	})
	if !faulted {
		t.Fatal("truncated read did not report a fault")
	}
	_ = sink
}

func TestGuardRepanicsOutsideRegisteredRanges(t *testing.T) {
	tr := NewTracker()
	defer func() {
		if recover() == nil {
			t.Fatal("panic outside registered ranges was swallowed")
		}
	}()
	tr.Guard(func() { panic("unrelated") })
}
