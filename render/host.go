// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package render

import (
	"github.com/portal-co/twelveto11-sub000/wire"
)

// Host is the seam between the renderer's algorithm (composite caching,
// round-trip bookkeeping, idle tracking — all implemented in this
// package) and the host display-server requests that carry it out. A
// Host implementation is protocol dispatch glue, explicitly out of scope
// for this module; it is received by the Renderer the way
// render.DeviceHandle is received rather than created (render/device.go).
//
// Two Hosts are registered: "picture", the production XRender
// compositing path, and "direct", a simpler back-end selectable at
// startup that also supports fence import/export. Both implement the
// same interface; the Renderer's algorithm is identical either way.
type Host interface {
	// Name identifies the backend for logging and registry selection.
	Name() string

	// SupportsFence reports whether ImportFence/FinishFence are
	// implemented. The picture back-end's fence support is a stub.
	SupportsFence() bool

	// SetPictureTransform updates buf's picture-level transform. Called
	// only when the cached draw params differ from the requested ones.
	SetPictureTransform(buf *RenderBuffer, m wire.Affine) error

	// CompositePicture issues the host composite request.
	CompositePicture(buf *RenderBuffer, t *RenderTarget, op Operator, srcX, srcY, dstX, dstY, w, h int) error

	// FillTransparentBoxes fills boxes in t's active back buffer with
	// transparent black.
	FillTransparentBoxes(t *RenderTarget, boxes []wire.Rect) error

	// ClearRectangle resets rc in t's active back buffer to fully
	// transparent, replacing rather than blending.
	ClearRectangle(t *RenderTarget, rc wire.Rect) error

	// CopyDamageToWindow performs the simple region-copy swap path used
	// when finish_render has no completion callback.
	CopyDamageToWindow(t *RenderTarget, damage wire.Region) error

	// PresentAsync hands a back buffer to the host's present extension,
	// returning once the request has been issued (not completed).
	PresentAsync(t *RenderTarget, serial uint64) error

	// PresentToWindow flips src directly into t, bypassing the
	// composite path.
	PresentToWindow(t *RenderTarget, src *RenderBuffer, damage wire.Region, serial uint64) error

	// SendRoundTripMarker sends the self-addressed client message whose
	// arrival means every preceding request has been processed.
	SendRoundTripMarker(id wire.RoundTripID) error

	// ImportFence imports a file-descriptor-exported synchronization
	// object for the synchronization
	// extension. Returns
	// ErrFenceUnsupported if !SupportsFence().
	ImportFence(fd int) (wire.FenceID, error)

	// FinishFence returns a fence that triggers once the host has
	// finished processing every request issued against t so far, or
	// false if !SupportsFence().
	FinishFence(t *RenderTarget) (wire.FenceID, bool)
}
