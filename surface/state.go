// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"github.com/portal-co/twelveto11-sub000/render"
	"github.com/portal-co/twelveto11-sub000/subcompositor"
	"github.com/portal-co/twelveto11-sub000/wire"
)

// PendingField is the bitset recording which fields of the pending state
// have been written since the last commit. Commit applies exactly the
// flagged fields and clears the set.
type PendingField uint16

const (
	FieldBuffer PendingField = 1 << iota
	FieldDamage
	FieldOpaque
	FieldInput
	FieldViewportSrc
	FieldViewportDst
	FieldScale
	FieldTransform
	FieldOffset
	FieldFrameCallbacks
)

// FrameCallback is a client frame-done callback, fired with the 64-bit
// monotonic microsecond timestamp of the frame it was presented in.
type FrameCallback func(timeUS uint64)

// State is one side of a surface's double-buffered state: the fields a
// commit atomically moves from pending to current.
type State struct {
	Buffer       *render.RenderBuffer
	BufferWidth  int
	BufferHeight int

	Damage wire.Region // surface coordinates, pre scale/transform
	Opaque wire.Region
	Input  wire.Region

	ViewportSrc  subcompositor.SourceRect
	DestW, DestH int

	Scale     float64
	Transform wire.BufferTransform

	OffsetX, OffsetY float64

	FrameCallbacks []FrameCallback
}

// apply moves the flagged fields of pending into s, per-field so an
// unflagged field keeps its current value.
func (s *State) apply(pending *State, flags PendingField) {
	if flags&FieldBuffer != 0 {
		s.Buffer = pending.Buffer
		s.BufferWidth = pending.BufferWidth
		s.BufferHeight = pending.BufferHeight
	}
	if flags&FieldDamage != 0 {
		for _, rc := range pending.Damage.Rects() {
			s.Damage.Add(rc)
		}
		pending.Damage = wire.Region{}
	}
	if flags&FieldOpaque != 0 {
		s.Opaque = pending.Opaque
	}
	if flags&FieldInput != 0 {
		s.Input = pending.Input
	}
	if flags&FieldViewportSrc != 0 {
		s.ViewportSrc = pending.ViewportSrc
	}
	if flags&FieldViewportDst != 0 {
		s.DestW, s.DestH = pending.DestW, pending.DestH
	}
	if flags&FieldScale != 0 {
		s.Scale = pending.Scale
	}
	if flags&FieldTransform != 0 {
		s.Transform = pending.Transform
	}
	if flags&FieldOffset != 0 {
		s.OffsetX, s.OffsetY = pending.OffsetX, pending.OffsetY
	}
	if flags&FieldFrameCallbacks != 0 {
		s.FrameCallbacks = append(s.FrameCallbacks, pending.FrameCallbacks...)
		pending.FrameCallbacks = nil
	}
}

// merge folds the flagged fields of pending into s exactly as apply does:
// damage and frame callbacks accumulate in s and are cleared from
// pending. Used by a synchronized subsurface's cache, which may absorb
// several commits before the parent applies it.
func (s *State) merge(pending *State, flags PendingField) {
	s.apply(pending, flags)
}
