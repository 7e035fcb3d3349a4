// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package syncext

import (
	"errors"
	"os"
	"testing"

	"github.com/portal-co/twelveto11-sub000/wire"
)

func devNullFD(t *testing.T) int {
	t.Helper()
	f, err := os.Open(os.DevNull)
	if err != nil {
		t.Fatalf("open devnull: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return int(f.Fd())
}

type fakeReleaseSink struct {
	fencedFD   int
	fenced     bool
	immediate  bool
}

func (r *fakeReleaseSink) FencedRelease(fd int)  { r.fenced = true; r.fencedFD = fd }
func (r *fakeReleaseSink) ImmediateRelease()      { r.immediate = true }

type fakeExporter struct {
	fd  int
	err error
}

func (f fakeExporter) ExportFenceFD(wire.FenceID) (int, error) { return f.fd, f.err }

func TestCommitWithBufferMovesAcquireFenceToCurrent(t *testing.T) {
	o := New()
	fd := devNullFD(t)

	if err := o.SetAcquireFence(fd); err != nil {
		t.Fatalf("SetAcquireFence: %v", err)
	}
	if err := o.Commit(true); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	got, ok := o.CurrentAcquireFence()
	if !ok || got != fd {
		t.Fatalf("expected current acquire fence %d, got %d (ok=%v)", fd, got, ok)
	}
}

func TestCommitWithoutBufferSignalsProtocolErrorAndClosesFD(t *testing.T) {
	var reported error
	o := New(WithProtocolError(func(err error) { reported = err }))
	fd := devNullFD(t)

	if err := o.SetAcquireFence(fd); err != nil {
		t.Fatalf("SetAcquireFence: %v", err)
	}
	err := o.Commit(false)
	if !errors.Is(err, ErrAcquireFenceWithoutBuffer) {
		t.Fatalf("expected ErrAcquireFenceWithoutBuffer, got %v", err)
	}
	if !errors.Is(reported, ErrAcquireFenceWithoutBuffer) {
		t.Fatalf("expected protocol error callback to fire, got %v", reported)
	}
	if _, ok := o.CurrentAcquireFence(); ok {
		t.Fatal("expected no current acquire fence after a rejected commit")
	}
}

func TestSetAcquireFenceRejectsSecondPendingFD(t *testing.T) {
	o := New()
	fd1 := devNullFD(t)
	fd2 := devNullFD(t)

	if err := o.SetAcquireFence(fd1); err != nil {
		t.Fatalf("first SetAcquireFence: %v", err)
	}
	if err := o.SetAcquireFence(fd2); !errors.Is(err, ErrAcquireFenceAlreadyPending) {
		t.Fatalf("expected ErrAcquireFenceAlreadyPending, got %v", err)
	}
}

func TestSetReleaseObjectRejectsSecondPending(t *testing.T) {
	o := New()
	r1 := &fakeReleaseSink{}
	r2 := &fakeReleaseSink{}

	if err := o.SetReleaseObject(r1); err != nil {
		t.Fatalf("first SetReleaseObject: %v", err)
	}
	if err := o.SetReleaseObject(r2); !errors.Is(err, ErrReleaseAlreadySent) {
		t.Fatalf("expected ErrReleaseAlreadySent, got %v", err)
	}
}

func TestNoteFinishFenceEmitsFencedReleaseAndDestroysObject(t *testing.T) {
	o := New()
	rel := &fakeReleaseSink{}
	if err := o.SetReleaseObject(rel); err != nil {
		t.Fatalf("SetReleaseObject: %v", err)
	}
	if err := o.Commit(false); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	o.NoteFinishFence(fakeExporter{fd: 7}, wire.FenceID(1))

	if !rel.fenced || rel.fencedFD != 7 {
		t.Fatalf("expected fenced release with fd 7, got fenced=%v fd=%d", rel.fenced, rel.fencedFD)
	}

	// A second call must be a no-op: the release object was already
	// destroyed by the first NoteFinishFence.
	fencedBefore := rel.fenced
	o.NoteFinishFence(fakeExporter{fd: 9}, wire.FenceID(2))
	if rel.fencedFD != 7 || rel.fenced != fencedBefore {
		t.Fatal("expected the destroyed release object to not fire again")
	}
}

func TestNoteFinishFenceFallsBackToImmediateReleaseOnExportFailure(t *testing.T) {
	o := New()
	rel := &fakeReleaseSink{}
	if err := o.SetReleaseObject(rel); err != nil {
		t.Fatalf("SetReleaseObject: %v", err)
	}
	if err := o.Commit(false); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	o.NoteFinishFence(fakeExporter{err: errors.New("export failed")}, wire.FenceID(1))

	if !rel.immediate {
		t.Fatal("expected immediate release fallback on export failure")
	}
	if rel.fenced {
		t.Fatal("expected fenced release to not have fired")
	}
}

func TestReleaseWithoutFenceEmitsImmediateRelease(t *testing.T) {
	o := New()
	rel := &fakeReleaseSink{}
	if err := o.SetReleaseObject(rel); err != nil {
		t.Fatalf("SetReleaseObject: %v", err)
	}
	if err := o.Commit(false); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	o.ReleaseWithoutFence()

	if !rel.immediate {
		t.Fatal("expected immediate release")
	}
}
