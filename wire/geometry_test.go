// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package wire

import "testing"

func TestRectIntersect(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}
	b := Rect{X: 5, Y: 5, W: 10, H: 10}
	want := Rect{X: 5, Y: 5, W: 5, H: 5}
	if got := a.Intersect(b); got != want {
		t.Fatalf("Intersect = %+v; want %+v", got, want)
	}

	disjoint := Rect{X: 100, Y: 100, W: 1, H: 1}
	if got := a.Intersect(disjoint); !got.Empty() {
		t.Fatalf("Intersect of disjoint rects = %+v; want empty", got)
	}
}

func TestRectUnion(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}
	b := Rect{X: 20, Y: 20, W: 5, H: 5}
	want := Rect{X: 0, Y: 0, W: 25, H: 25}
	if got := a.Union(b); got != want {
		t.Fatalf("Union = %+v; want %+v", got, want)
	}
	if got := (Rect{}).Union(a); got != a {
		t.Fatalf("Union with empty operand = %+v; want %+v", got, a)
	}
}

func TestRectContains(t *testing.T) {
	outer := Rect{X: 0, Y: 0, W: 100, H: 100}
	inner := Rect{X: 10, Y: 10, W: 10, H: 10}
	if !outer.Contains(inner) {
		t.Fatal("expected outer to contain inner")
	}
	outside := Rect{X: 95, Y: 95, W: 10, H: 10}
	if outer.Contains(outside) {
		t.Fatal("did not expect outer to contain outside")
	}
}

func TestRegionSubtractFullyCovered(t *testing.T) {
	r := NewRegion(Rect{X: 0, Y: 0, W: 10, H: 10})
	cut := NewRegion(Rect{X: 0, Y: 0, W: 10, H: 10})
	out := r.Subtract(cut)
	if !out.IsEmpty() {
		t.Fatalf("Subtract of fully covering region = %v; want empty", out.Rects())
	}
}

func TestRegionSubtractPartial(t *testing.T) {
	r := NewRegion(Rect{X: 0, Y: 0, W: 10, H: 10})
	cut := NewRegion(Rect{X: 0, Y: 0, W: 5, H: 10})
	out := r.Subtract(cut)

	if out.Intersects(Rect{X: 0, Y: 0, W: 5, H: 10}) {
		t.Fatal("remainder should not intersect the cut region")
	}
	if !out.Intersects(Rect{X: 5, Y: 0, W: 5, H: 10}) {
		t.Fatal("remainder should still cover the uncut half")
	}

	// area conservation: remainder area + cut overlap area == original area.
	var remArea int
	for _, rc := range out.Rects() {
		remArea += rc.W * rc.H
	}
	if remArea != 50 {
		t.Fatalf("remainder area = %d; want 50", remArea)
	}
}

func TestRegionSubtractNoOverlapIsNoop(t *testing.T) {
	r := NewRegion(Rect{X: 0, Y: 0, W: 10, H: 10})
	cut := NewRegion(Rect{X: 100, Y: 100, W: 10, H: 10})
	out := r.Subtract(cut)
	if out.Bounds() != r.Bounds() {
		t.Fatalf("Subtract with no overlap changed region: %+v", out.Bounds())
	}
}

func TestRegionTranslate(t *testing.T) {
	r := NewRegion(Rect{X: 0, Y: 0, W: 10, H: 10})
	out := r.Translate(5, -5)
	want := Rect{X: 5, Y: -5, W: 10, H: 10}
	if out.Rects()[0] != want {
		t.Fatalf("Translate = %+v; want %+v", out.Rects()[0], want)
	}
}
