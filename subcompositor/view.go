// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

// Package subcompositor walks a tree of views in z-order, turning per-view
// surface state and damage into an ordered sequence of draw calls for the
// renderer, and reports the content bounding box and frame lifecycle
// events back to the owning role.
package subcompositor

import (
	"math"

	"github.com/portal-co/twelveto11-sub000/render"
	"github.com/portal-co/twelveto11-sub000/wire"
)

const nilIndex = -1

// Root is the parent value passed to InsertView for a top-level view,
// and the "above/below everything" sentinel for QueuePlaceAbove /
// QueuePlaceBelow's other argument.
const Root = nilIndex

// SourceRect is a subsurface's viewport crop in surface coordinates.
// Width and height of zero mean "use the whole buffer".
type SourceRect struct {
	X, Y, W, H float64
}

// DrawInput is the surface-supplied state a View needs to contribute to
// an update: its current buffer and the regions attached this commit, all
// in surface coordinates, plus the buffer interpretation parameters.
type DrawInput struct {
	Buffer          *render.RenderBuffer
	BufferWidth     int
	BufferHeight    int
	BufferScale     float64
	BufferTransform wire.BufferTransform
	Damage          wire.Region
	Opaque          wire.Region
	Viewport        SourceRect
	DestW, DestH    int // viewport destination size; zero derives it from Viewport/buffer
}

// View is a node in the subcompositor's z-ordered view tree.
type View struct {
	surfaceID wire.SurfaceID
	parent    int
	children  []int // arena indices, back-to-front (index 0 is furthest back)

	placeX, placeY int     // integer placement, subcompositor window coordinates
	fracX, fracY   float64 // fractional sub-pixel offset, applied only at composite time

	skip     bool
	mapped   bool
	hasInput bool
	desync   bool
	input    DrawInput

	bounds wire.Rect // cached content bounding box, window coordinates
}

func newView(surfaceID wire.SurfaceID, parent int) *View {
	return &View{surfaceID: surfaceID, parent: parent, mapped: true}
}

// surfaceContentSize returns the view's content size in surface
// coordinates: the viewport source size if set, otherwise the buffer size
// after buffer_transform and divided by buffer_scale.
func surfaceContentSize(in DrawInput) (w, h float64) {
	if in.Viewport.W > 0 && in.Viewport.H > 0 {
		return in.Viewport.W, in.Viewport.H
	}
	bw, bh := wire.BoxForTransform(in.BufferTransform, in.BufferWidth, in.BufferHeight)
	scale := in.BufferScale
	if scale <= 0 {
		scale = 1
	}
	return float64(bw) / scale, float64(bh) / scale
}

// destSize returns the view's footprint in window coordinates.
func destSize(in DrawInput) (int, int) {
	if in.DestW > 0 && in.DestH > 0 {
		return in.DestW, in.DestH
	}
	w, h := surfaceContentSize(in)
	return int(math.Round(w)), int(math.Round(h))
}

// windowScale returns the factor mapping surface-content coordinates to
// window coordinates for the view.
func windowScale(in DrawInput) (sx, sy float64) {
	sw, sh := surfaceContentSize(in)
	dw, dh := destSize(in)
	sx, sy = 1, 1
	if sw > 0 {
		sx = float64(dw) / sw
	}
	if sh > 0 {
		sy = float64(dh) / sh
	}
	return sx, sy
}

func scaleRegion(r wire.Region, sx, sy float64) wire.Region {
	var out wire.Region
	for _, rc := range r.Rects() {
		out.Add(wire.Rect{
			X: int(math.Round(float64(rc.X) * sx)),
			Y: int(math.Round(float64(rc.Y) * sy)),
			W: int(math.Round(float64(rc.W) * sx)),
			H: int(math.Round(float64(rc.H) * sy)),
		})
	}
	return out
}

// mapToWindow maps a region from surface coordinates into this view's
// window-coordinate placement.
func (v *View) mapToWindow(r wire.Region) wire.Region {
	sx, sy := windowScale(v.input)
	return scaleRegion(r, sx, sy).Translate(v.placeX, v.placeY)
}

// windowRect returns the view's content footprint in window coordinates.
func (v *View) windowRect() wire.Rect {
	w, h := destSize(v.input)
	return wire.Rect{X: v.placeX, Y: v.placeY, W: w, H: h}
}

// drawParams builds the wire.DrawParams for this view's composite,
// carrying the fractional sub-pixel offset SetPosition set aside so it
// is applied only at composite time rather than affecting placement or
// damage/opaque region math.
func (v *View) drawParams() wire.DrawParams {
	sx, sy := windowScale(v.input)
	dw, dh := destSize(v.input)
	return wire.DrawParams{
		ScaleX: sx, ScaleY: sy,
		OffsetX: v.fracX, OffsetY: v.fracY,
		StretchW: float64(dw), StretchH: float64(dh),
		Transform: v.input.BufferTransform,
	}
}

func unionRegion(a, b wire.Region) wire.Region {
	var out wire.Region
	for _, rc := range a.Rects() {
		out.Add(rc)
	}
	for _, rc := range b.Rects() {
		out.Add(rc)
	}
	return out
}
