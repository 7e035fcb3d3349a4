// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package subcompositor

import (
	"testing"

	"github.com/portal-co/twelveto11-sub000/wire"
)

func fullDamage(w, h int) wire.Region {
	var r wire.Region
	r.Add(wire.Rect{X: 0, Y: 0, W: w, H: h})
	return r
}

func TestUpdateFullyCoveredBackViewProducesNoDrawCall(t *testing.T) {
	s := New()
	r := newTestRenderer(t)

	back := s.InsertView(nilIndex, wire.SurfaceID(1))
	front := s.InsertView(nilIndex, wire.SurfaceID(2))

	backBuf := newTestBuffer(t, r, 100, 100, false)
	frontBuf := newTestBuffer(t, r, 100, 100, true)

	s.SetInput(back, DrawInput{
		Buffer: backBuf, BufferWidth: 100, BufferHeight: 100, BufferScale: 1,
		Damage: fullDamage(100, 100), Opaque: fullDamage(100, 100),
	})
	s.SetInput(front, DrawInput{
		Buffer: frontBuf, BufferWidth: 100, BufferHeight: 100, BufferScale: 1,
		Damage: fullDamage(100, 100), Opaque: fullDamage(100, 100),
	})

	calls := s.Update()

	if len(calls) != 1 {
		t.Fatalf("expected only the opaque front view to produce a draw call, got %d calls", len(calls))
	}
	if calls[0].Buffer != frontBuf {
		t.Fatalf("expected the surviving call to be the front view's buffer")
	}
}

func TestUpdatePartiallyCoveredBackViewProducesReducedDamage(t *testing.T) {
	s := New()
	r := newTestRenderer(t)

	back := s.InsertView(nilIndex, wire.SurfaceID(1))
	front := s.InsertView(nilIndex, wire.SurfaceID(2))

	backBuf := newTestBuffer(t, r, 100, 100, false)
	frontBuf := newTestBuffer(t, r, 50, 50, true)

	s.SetInput(back, DrawInput{
		Buffer: backBuf, BufferWidth: 100, BufferHeight: 100, BufferScale: 1,
		Damage: fullDamage(100, 100), Opaque: fullDamage(100, 100),
	})
	s.SetInput(front, DrawInput{
		Buffer: frontBuf, BufferWidth: 50, BufferHeight: 50, BufferScale: 1,
		Damage: fullDamage(50, 50), Opaque: fullDamage(50, 50),
	})

	calls := s.Update()

	if len(calls) != 2 {
		t.Fatalf("expected both views to contribute draw calls, got %d", len(calls))
	}
	// Back-to-front order: the back view's (reduced) damage first, then
	// the front view's.
	if calls[0].Buffer != backBuf {
		t.Fatalf("expected back view first in back-to-front order")
	}
	if calls[1].Buffer != frontBuf {
		t.Fatalf("expected front view last in back-to-front order")
	}
}

func TestUpdateSkipsUnmappedAndSkippedViews(t *testing.T) {
	s := New()
	r := newTestRenderer(t)

	idx := s.InsertView(nilIndex, wire.SurfaceID(1))
	buf := newTestBuffer(t, r, 10, 10, false)
	s.SetInput(idx, DrawInput{
		Buffer: buf, BufferWidth: 10, BufferHeight: 10, BufferScale: 1,
		Damage: fullDamage(10, 10),
	})

	s.SetMapped(idx, false)
	if calls := s.Update(); len(calls) != 0 {
		t.Fatalf("expected no draw calls for unmapped view, got %d", len(calls))
	}

	s.SetMapped(idx, true)
	s.SetSkip(idx, true)
	if calls := s.Update(); len(calls) != 0 {
		t.Fatalf("expected no draw calls for skipped view, got %d", len(calls))
	}
}

func TestUpdateFiresBoundsCallback(t *testing.T) {
	s := New()
	r := newTestRenderer(t)

	idx := s.InsertView(nilIndex, wire.SurfaceID(1))
	buf := newTestBuffer(t, r, 20, 30, false)
	s.SetInput(idx, DrawInput{
		Buffer: buf, BufferWidth: 20, BufferHeight: 30, BufferScale: 1,
		Damage: fullDamage(20, 30),
	})
	s.SetPosition(idx, 5, 5)

	var got wire.Rect
	s.SetBoundsCallback(func(r wire.Rect) { got = r })

	s.Update()

	want := wire.Rect{X: 5, Y: 5, W: 20, H: 30}
	if got != want {
		t.Fatalf("expected bounds %+v, got %+v", want, got)
	}
}

func TestUpdateNotifiesFrameStartedOnlyWhenCallsProduced(t *testing.T) {
	s := New()
	var events []FrameEvent
	s.SetNoteFrameCallback(func(e FrameEvent, _ PresentInfo) { events = append(events, e) })

	s.Update()
	if len(events) != 0 {
		t.Fatalf("expected no FrameStarted notification with no mapped views, got %v", events)
	}

	r := newTestRenderer(t)
	idx := s.InsertView(nilIndex, wire.SurfaceID(1))
	buf := newTestBuffer(t, r, 10, 10, false)
	s.SetInput(idx, DrawInput{
		Buffer: buf, BufferWidth: 10, BufferHeight: 10, BufferScale: 1,
		Damage: fullDamage(10, 10),
	})

	s.Update()
	if len(events) != 1 || events[0] != FrameStarted {
		t.Fatalf("expected a single FrameStarted notification, got %v", events)
	}
}
