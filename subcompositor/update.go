// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package subcompositor

import (
	"github.com/portal-co/twelveto11-sub000/render"
	"github.com/portal-co/twelveto11-sub000/wire"
)

// flatten returns the current view tree as a depth-first, back-to-front
// flattening.
func (s *Subcompositor) flatten() []int {
	var order []int
	var walk func(idx int)
	walk = func(idx int) {
		order = append(order, idx)
		for _, child := range s.views.Get(idx).children {
			walk(child)
		}
	}
	for _, root := range s.roots {
		walk(root)
	}
	return order
}

// Update walks the view tree in z-order, accumulates per-view damage
// mapped into window coordinates, subtracts opaque front-view coverage
// from the damage of views behind them, and returns the draw calls the
// renderer should issue, back-to-front.
func (s *Subcompositor) Update() []DrawCall {
	order := s.flatten()

	var accumulatedOpaque wire.Region
	calls := make([]DrawCall, 0, len(order))
	var bbox wire.Rect

	for i := len(order) - 1; i >= 0; i-- {
		v := s.views.Get(order[i])
		if v.skip || !v.mapped || !v.hasInput {
			continue
		}

		damage := v.mapToWindow(v.input.Damage)
		visible := damage.Subtract(accumulatedOpaque)

		dst := v.windowRect()
		bbox = bbox.Union(dst)

		if !visible.IsEmpty() {
			op := render.OpOver
			if v.input.Buffer.Opaque() {
				op = render.OpSource
			}
			calls = append(calls, DrawCall{
				Buffer:  v.input.Buffer,
				DstRect: dst,
				SrcRect: wire.Rect{X: 0, Y: 0, W: v.input.BufferWidth, H: v.input.BufferHeight},
				Op:      op,
				Params:  v.drawParams(),
			})
		}

		if v.input.Buffer.Opaque() {
			accumulatedOpaque.Add(dst)
		} else {
			accumulatedOpaque = unionRegion(accumulatedOpaque, v.mapToWindow(v.input.Opaque))
		}
	}

	reverseDrawCalls(calls)

	s.lastBounds = bbox
	if s.boundsCB != nil {
		s.boundsCB(bbox)
	}
	if len(calls) > 0 {
		s.notify(FrameStarted, PresentInfo{})
	}
	return calls
}

func reverseDrawCalls(calls []DrawCall) {
	for i, j := 0, len(calls)-1; i < j; i, j = i+1, j-1 {
		calls[i], calls[j] = calls[j], calls[i]
	}
}

// Bounds returns the bounding box computed by the most recent Update.
func (s *Subcompositor) Bounds() wire.Rect { return s.lastBounds }
