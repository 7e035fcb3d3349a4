// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package subcompositor

import (
	"testing"

	"github.com/portal-co/twelveto11-sub000/fence"
	"github.com/portal-co/twelveto11-sub000/render"
	"github.com/portal-co/twelveto11-sub000/wire"
)

type stubHost struct{}

func (stubHost) Name() string        { return "stub" }
func (stubHost) SupportsFence() bool { return false }
func (stubHost) SetPictureTransform(*render.RenderBuffer, wire.Affine) error { return nil }
func (stubHost) CompositePicture(*render.RenderBuffer, *render.RenderTarget, render.Operator, int, int, int, int, int, int) error {
	return nil
}
func (stubHost) FillTransparentBoxes(*render.RenderTarget, []wire.Rect) error { return nil }
func (stubHost) ClearRectangle(*render.RenderTarget, wire.Rect) error         { return nil }
func (stubHost) CopyDamageToWindow(*render.RenderTarget, wire.Region) error           { return nil }
func (stubHost) PresentAsync(*render.RenderTarget, uint64) error                     { return nil }
func (stubHost) PresentToWindow(*render.RenderTarget, *render.RenderBuffer, wire.Region, uint64) error {
	return nil
}
func (stubHost) SendRoundTripMarker(wire.RoundTripID) error { return nil }
func (stubHost) ImportFence(int) (wire.FenceID, error)      { return 0, render.ErrFenceUnsupported }
func (stubHost) FinishFence(*render.RenderTarget) (wire.FenceID, bool) { return 0, false }

func newTestRenderer(t *testing.T) *render.Renderer {
	t.Helper()
	fencer := func(fd int) (fence.ServerID, error) { return fence.ServerID(fd), nil }
	r, err := render.New(fencer, render.WithHost(stubHost{}))
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	return r
}

func newTestBuffer(t *testing.T, r *render.Renderer, w, h int, opaque bool) *render.RenderBuffer {
	t.Helper()
	var flags render.BufferFlags
	if opaque {
		flags |= render.FlagIsOpaque
	}
	return r.NewBuffer(1, 1, 32, w, h, flags)
}
