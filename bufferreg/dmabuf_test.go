// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package bufferreg

import (
	"errors"
	"testing"

	"github.com/portal-co/twelveto11-sub000/fence"
	"github.com/portal-co/twelveto11-sub000/render"
	"github.com/portal-co/twelveto11-sub000/wire"
)

type fakeDmaBufHost struct {
	syncErr error
}

func (h fakeDmaBufHost) CreateDmaBufPixmap(params DmaBufImportParams) (uint32, uint32, error) {
	if h.syncErr != nil {
		return 0, 0, h.syncErr
	}
	return 1, 2, nil
}

func (h fakeDmaBufHost) CreateDmaBufPixmapAsync(params DmaBufImportParams) (uint32, uint32) {
	return 10, 20
}

type fakeRoundTripper struct {
	markers []wire.RoundTripID
}

func (f *fakeRoundTripper) SendRoundTripMarker(id wire.RoundTripID) error {
	f.markers = append(f.markers, id)
	return nil
}

func newTestRendererForBufferreg(t *testing.T) *render.Renderer {
	t.Helper()
	host := &stubRenderHost{}
	r, err := render.New(func(fd int) (fence.ServerID, error) { return fence.ServerID(fd), nil }, render.WithHost(host))
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	return r
}

type stubRenderHost struct{}

func (stubRenderHost) Name() string        { return "stub" }
func (stubRenderHost) SupportsFence() bool { return false }
func (stubRenderHost) SetPictureTransform(*render.RenderBuffer, wire.Affine) error { return nil }
func (stubRenderHost) CompositePicture(*render.RenderBuffer, *render.RenderTarget, render.Operator, int, int, int, int, int, int) error {
	return nil
}
func (stubRenderHost) FillTransparentBoxes(*render.RenderTarget, []wire.Rect) error { return nil }
func (stubRenderHost) ClearRectangle(*render.RenderTarget, wire.Rect) error         { return nil }
func (stubRenderHost) CopyDamageToWindow(*render.RenderTarget, wire.Region) error { return nil }
func (stubRenderHost) PresentAsync(*render.RenderTarget, uint64) error            { return nil }
func (stubRenderHost) PresentToWindow(*render.RenderTarget, *render.RenderBuffer, wire.Region, uint64) error {
	return nil
}
func (stubRenderHost) SendRoundTripMarker(wire.RoundTripID) error          { return nil }
func (stubRenderHost) ImportFence(int) (wire.FenceID, error)               { return 0, render.ErrFenceUnsupported }
func (stubRenderHost) FinishFence(*render.RenderTarget) (wire.FenceID, bool) { return 0, false }

func TestImportDmaBufSyncWrapsBuffer(t *testing.T) {
	reg := NewRegistry(BuildFormatTable(fakeModifierSource{}, nil, nil))
	r := newTestRendererForBufferreg(t)

	buf, err := reg.ImportDmaBufSync(r, fakeDmaBufHost{}, DmaBufImportParams{Drm: DrmFormatARGB8888, Width: 4, Height: 4})
	if err != nil {
		t.Fatalf("ImportDmaBufSync: %v", err)
	}
	if buf.Pixmap != 1 || buf.Picture != 2 {
		t.Fatalf("unexpected buffer ids: %+v", buf)
	}
	if !buf.CanPresent() {
		t.Fatal("expected dma-buf imported buffer to be presentable")
	}
}

func TestImportDmaBufSyncPropagatesHostFailure(t *testing.T) {
	reg := NewRegistry(BuildFormatTable(fakeModifierSource{}, nil, nil))
	r := newTestRendererForBufferreg(t)

	_, err := reg.ImportDmaBufSync(r, fakeDmaBufHost{syncErr: errors.New("boom")}, DmaBufImportParams{Drm: DrmFormatARGB8888})
	var wrapped *DmaBufImportError
	if !errors.As(err, &wrapped) {
		t.Fatalf("expected DmaBufImportError, got %v", err)
	}
}

func TestImportDmaBufAsyncSucceedsOnRoundTrip(t *testing.T) {
	reg := NewRegistry(BuildFormatTable(fakeModifierSource{}, nil, nil))
	r := newTestRendererForBufferreg(t)
	rt := &fakeRoundTripper{}

	var gotBuf *render.RenderBuffer
	id, err := reg.ImportDmaBufAsync(rt, fakeDmaBufHost{}, DmaBufImportParams{Drm: DrmFormatABGR8888, Width: 2, Height: 2},
		func(b *render.RenderBuffer) { gotBuf = b },
		func(error) { t.Fatal("failure callback should not fire") },
	)
	if err != nil {
		t.Fatalf("ImportDmaBufAsync: %v", err)
	}
	if len(rt.markers) != 1 || rt.markers[0] != id {
		t.Fatalf("expected one round-trip marker matching id, got %v", rt.markers)
	}

	reg.CompleteAsyncImport(r, id)
	if gotBuf == nil {
		t.Fatal("expected success callback to receive a buffer")
	}
	if gotBuf.Pixmap != 10 || gotBuf.Picture != 20 {
		t.Fatalf("unexpected buffer ids: %+v", gotBuf)
	}
}

func TestImportDmaBufAsyncFailsWhenFlagged(t *testing.T) {
	reg := NewRegistry(BuildFormatTable(fakeModifierSource{}, nil, nil))
	r := newTestRendererForBufferreg(t)
	rt := &fakeRoundTripper{}

	failed := false
	id, err := reg.ImportDmaBufAsync(rt, fakeDmaBufHost{}, DmaBufImportParams{Drm: DrmFormatABGR8888},
		func(*render.RenderBuffer) { t.Fatal("success callback should not fire") },
		func(error) { failed = true },
	)
	if err != nil {
		t.Fatalf("ImportDmaBufAsync: %v", err)
	}

	reg.FailAsyncImport(id, errors.New("dri3 pixmap from buffers failed"))
	reg.CompleteAsyncImport(r, id)
	if !failed {
		t.Fatal("expected failure callback to fire")
	}
}
