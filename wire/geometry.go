// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

// Package wire holds the small geometric and identifier vocabulary shared
// by every subsystem: points, rectangles, regions, the buffer-transform
// enum and its 3x3 matrix form, and the opaque host-assigned resource IDs
// (window, pixmap, picture, fence) that flow between the renderer, the
// buffer registry and the subcompositor.
package wire

// Point is an integer surface- or window-space coordinate pair.
type Point struct {
	X, Y int
}

// Size is a non-negative width/height pair.
type Size struct {
	W, H int
}

// Rect is an axis-aligned rectangle with an exclusive max corner, following
// the convention used throughout the host's damage and present protocols.
type Rect struct {
	X, Y, W, H int
}

// Empty reports whether the rectangle covers no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// MaxX returns the exclusive right edge.
func (r Rect) MaxX() int { return r.X + r.W }

// MaxY returns the exclusive bottom edge.
func (r Rect) MaxY() int { return r.Y + r.H }

// Translate returns r offset by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H}
}

// Intersect returns the overlap of r and o, which is Empty if they do not
// overlap.
func (r Rect) Intersect(o Rect) Rect {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.MaxX(), o.MaxX()), min(r.MaxY(), o.MaxY())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Union returns the bounding box of r and o. An empty operand is ignored.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	x0, y0 := min(r.X, o.X), min(r.Y, o.Y)
	x1, y1 := max(r.MaxX(), o.MaxX()), max(r.MaxY(), o.MaxY())
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Contains reports whether o is entirely within r.
func (r Rect) Contains(o Rect) bool {
	if o.Empty() {
		return true
	}
	return o.X >= r.X && o.Y >= r.Y && o.MaxX() <= r.MaxX() && o.MaxY() <= r.MaxY()
}

// Region is a set of rectangles, kept as a flat slice rather than a
// coalesced band structure: the compositor's damage regions rarely exceed
// a handful of rectangles per update, so the O(n) subtract/union below
// outperforms a banded representation's bookkeeping at this scale.
type Region struct {
	rects []Rect
}

// NewRegion builds a Region from the given rectangles, dropping empties.
func NewRegion(rects ...Rect) Region {
	var r Region
	for _, rc := range rects {
		r.Add(rc)
	}
	return r
}

// Add unions rc into the region in place.
func (r *Region) Add(rc Rect) {
	if rc.Empty() {
		return
	}
	r.rects = append(r.rects, rc)
}

// IsEmpty reports whether the region contains no area.
func (r Region) IsEmpty() bool { return len(r.rects) == 0 }

// Rects returns the region's constituent rectangles. The caller must not
// mutate the returned slice.
func (r Region) Rects() []Rect { return r.rects }

// Bounds returns the bounding box of all rectangles in the region.
func (r Region) Bounds() Rect {
	var b Rect
	for _, rc := range r.rects {
		b = b.Union(rc)
	}
	return b
}

// Translate returns a copy of the region shifted by (dx, dy).
func (r Region) Translate(dx, dy int) Region {
	out := Region{rects: make([]Rect, len(r.rects))}
	for i, rc := range r.rects {
		out.rects[i] = rc.Translate(dx, dy)
	}
	return out
}

// Subtract removes the area covered by o from r, returning the remainder.
// This is the operation the subcompositor uses to carve opaque front-view
// coverage out of a back view's damage.
func (r Region) Subtract(o Region) Region {
	if o.IsEmpty() || r.IsEmpty() {
		return r
	}
	remaining := append([]Rect(nil), r.rects...)
	for _, cut := range o.rects {
		var next []Rect
		for _, rc := range remaining {
			next = append(next, subtractRect(rc, cut)...)
		}
		remaining = next
	}
	return Region{rects: remaining}
}

// subtractRect removes cut from rc, returning up to four fragments that
// cover what remains (the classic rectangle-minus-rectangle split).
func subtractRect(rc, cut Rect) []Rect {
	overlap := rc.Intersect(cut)
	if overlap.Empty() {
		return []Rect{rc}
	}
	var out []Rect
	if overlap.Y > rc.Y {
		out = append(out, Rect{X: rc.X, Y: rc.Y, W: rc.W, H: overlap.Y - rc.Y})
	}
	if overlap.MaxY() < rc.MaxY() {
		out = append(out, Rect{X: rc.X, Y: overlap.MaxY(), W: rc.W, H: rc.MaxY() - overlap.MaxY()})
	}
	if overlap.X > rc.X {
		out = append(out, Rect{X: rc.X, Y: overlap.Y, W: overlap.X - rc.X, H: overlap.H})
	}
	if overlap.MaxX() < rc.MaxX() {
		out = append(out, Rect{X: overlap.MaxX(), Y: overlap.Y, W: rc.MaxX() - overlap.MaxX(), H: overlap.H})
	}
	return out
}

// Intersects reports whether r and the region share any area.
func (r Region) Intersects(rc Rect) bool {
	for _, o := range r.rects {
		if !o.Intersect(rc).Empty() {
			return true
		}
	}
	return false
}
