// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package render

import "github.com/portal-co/twelveto11-sub000/wire"

// pictureHost and directHost are reference Host implementations,
// registered by default the way NullDeviceHandle stands in for a real GPU
// device. They perform no actual
// host I/O — issuing wire requests is protocol dispatch glue, explicitly
// out of scope — but they let the Renderer's composite
// caching, round-trip bookkeeping and idle tracking run and be tested
// without a live host connection. A real deployment registers its own
// Host, backed by an actual X11 connection, under the same names via
// Registry.Register to take priority.
type pictureHost struct{}

func newPictureHost() (Host, error) { return pictureHost{}, nil }

func (pictureHost) Name() string         { return "picture" }
func (pictureHost) SupportsFence() bool  { return false }
func (pictureHost) SetPictureTransform(*RenderBuffer, wire.Affine) error { return nil }
func (pictureHost) CompositePicture(*RenderBuffer, *RenderTarget, Operator, int, int, int, int, int, int) error {
	return nil
}
func (pictureHost) FillTransparentBoxes(*RenderTarget, []wire.Rect) error { return nil }
func (pictureHost) ClearRectangle(*RenderTarget, wire.Rect) error         { return nil }
func (pictureHost) CopyDamageToWindow(*RenderTarget, wire.Region) error   { return nil }
func (pictureHost) PresentAsync(*RenderTarget, uint64) error            { return nil }
func (pictureHost) PresentToWindow(*RenderTarget, *RenderBuffer, wire.Region, uint64) error {
	return nil
}
func (pictureHost) SendRoundTripMarker(wire.RoundTripID) error { return nil }
func (pictureHost) ImportFence(int) (wire.FenceID, error)      { return 0, ErrFenceUnsupported }
func (pictureHost) FinishFence(*RenderTarget) (wire.FenceID, bool) { return 0, false }

// directHost is the simpler back-end selectable at startup,
// distinguished from pictureHost by real fence import/export support.
type directHost struct {
	nextFenceID wire.FenceID
}

func newDirectHost() (Host, error) { return &directHost{}, nil }

func (h *directHost) Name() string        { return "direct" }
func (h *directHost) SupportsFence() bool { return true }
func (h *directHost) SetPictureTransform(*RenderBuffer, wire.Affine) error {
	return nil
}
func (h *directHost) CompositePicture(*RenderBuffer, *RenderTarget, Operator, int, int, int, int, int, int) error {
	return nil
}
func (h *directHost) FillTransparentBoxes(*RenderTarget, []wire.Rect) error { return nil }
func (h *directHost) ClearRectangle(*RenderTarget, wire.Rect) error         { return nil }
func (h *directHost) CopyDamageToWindow(*RenderTarget, wire.Region) error   { return nil }
func (h *directHost) PresentAsync(*RenderTarget, uint64) error            { return nil }
func (h *directHost) PresentToWindow(*RenderTarget, *RenderBuffer, wire.Region, uint64) error {
	return nil
}
func (h *directHost) SendRoundTripMarker(wire.RoundTripID) error { return nil }
func (h *directHost) ImportFence(fd int) (wire.FenceID, error) {
	h.nextFenceID++
	return h.nextFenceID, nil
}
func (h *directHost) FinishFence(*RenderTarget) (wire.FenceID, bool) {
	h.nextFenceID++
	return h.nextFenceID, true
}

func init() {
	DefaultRegistry.Register("picture", 100, newPictureHost)
	DefaultRegistry.Register("direct", 50, newDirectHost)
}
