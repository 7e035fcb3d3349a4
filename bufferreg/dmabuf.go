// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package bufferreg

import (
	"golang.org/x/sys/unix"

	"github.com/portal-co/twelveto11-sub000/render"
	"github.com/portal-co/twelveto11-sub000/wire"
)

const maxDmaBufPlanes = 4

// DmaBufPlane is one plane of a multi-planar dma-buf import.
type DmaBufPlane struct {
	Fd     int
	Offset uint32
	Stride uint32
}

// DmaBufImportParams describes a client's dma-buf buffer attach request.
type DmaBufImportParams struct {
	Planes   []DmaBufPlane
	Modifier DrmModifier
	Drm      DrmFormat
	Width    int
	Height   int
}

// HostDmaBufImporter is the protocol dispatch glue that turns a validated
// dma-buf import into an on-host pixmap, either synchronously or as a
// fire-and-forget request whose failure is reported out of band.
type HostDmaBufImporter interface {
	// CreateDmaBufPixmap builds the pixmap synchronously, returning an
	// error the caller must map to a failure outcome immediately.
	CreateDmaBufPixmap(params DmaBufImportParams) (pixmap, picture uint32, err error)

	// CreateDmaBufPixmapAsync issues the same request without waiting
	// for host acknowledgement; a later round trip confirms it went
	// through.
	CreateDmaBufPixmapAsync(params DmaBufImportParams) (pixmap, picture uint32)
}

func closePlanes(planes []DmaBufPlane) {
	for _, p := range planes {
		unix.Close(p.Fd)
	}
}

// ImportDmaBufSync builds an on-host pixmap from up to four dma-buf
// planes. On host failure every plane fd is closed and the error is
// reported immediately.
func (reg *Registry) ImportDmaBufSync(r *render.Renderer, host HostDmaBufImporter, params DmaBufImportParams) (*render.RenderBuffer, error) {
	if len(params.Planes) > maxDmaBufPlanes {
		closePlanes(params.Planes)
		return nil, ErrTooManyPlanes
	}
	pixmap, picture, err := host.CreateDmaBufPixmap(params)
	if err != nil {
		closePlanes(params.Planes)
		return nil, &DmaBufImportError{Err: err}
	}
	masks, _ := MasksFor(params.Drm)
	buf := r.NewBuffer(wire.PixmapID(pixmap), wire.PictureID(picture), masks.depth, params.Width, params.Height, render.FlagCanPresent)
	return buf, nil
}

// pendingDmaBufImport is the record queued by ImportDmaBufAsync, retired
// once its forced round trip completes.
type pendingDmaBufImport struct {
	params    DmaBufImportParams
	pixmap    uint32
	picture   uint32
	onSuccess func(*render.RenderBuffer)
	onFailure func(error)
	failure   error
}

// HostRoundTripper sends the self-addressed marker whose arrival
// confirms every preceding request has been processed by the host.
type HostRoundTripper interface {
	SendRoundTripMarker(id wire.RoundTripID) error
}

// ImportDmaBufAsync issues the pixmap creation optimistically and queues
// a pending record; CompleteAsyncImport retires it once the forced round
// trip echoes back. FailAsyncImport lets the out-of-scope protocol error
// handler attribute a specific request failure to this record before
// that happens.
func (reg *Registry) ImportDmaBufAsync(rt HostRoundTripper, host HostDmaBufImporter, params DmaBufImportParams, onSuccess func(*render.RenderBuffer), onFailure func(error)) (wire.RoundTripID, error) {
	if len(params.Planes) > maxDmaBufPlanes {
		closePlanes(params.Planes)
		return 0, ErrTooManyPlanes
	}
	pixmap, picture := host.CreateDmaBufPixmapAsync(params)

	reg.nextRoundTrip++
	id := reg.nextRoundTrip
	if err := rt.SendRoundTripMarker(id); err != nil {
		reg.nextRoundTrip--
		return 0, err
	}
	reg.pendingDmaBuf[id] = &pendingDmaBufImport{
		params:    params,
		pixmap:    pixmap,
		picture:   picture,
		onSuccess: onSuccess,
		onFailure: onFailure,
	}
	return id, nil
}

// FailAsyncImport marks a pending async import as failed. Called by the
// caller's protocol error handler when a request within id's round trip
// reports an error.
func (reg *Registry) FailAsyncImport(id wire.RoundTripID, err error) {
	if p, ok := reg.pendingDmaBuf[id]; ok {
		p.failure = err
	}
}

// CompleteAsyncImport retires the pending record for id once its round
// trip has echoed back, invoking the success or failure callback.
func (reg *Registry) CompleteAsyncImport(r *render.Renderer, id wire.RoundTripID) {
	p, ok := reg.pendingDmaBuf[id]
	if !ok {
		return
	}
	delete(reg.pendingDmaBuf, id)
	if p.failure != nil {
		closePlanes(p.params.Planes)
		if p.onFailure != nil {
			p.onFailure(p.failure)
		}
		return
	}
	masks, _ := MasksFor(p.params.Drm)
	buf := r.NewBuffer(wire.PixmapID(p.pixmap), wire.PictureID(p.picture), masks.depth, p.params.Width, p.params.Height, render.FlagCanPresent)
	if p.onSuccess != nil {
		p.onSuccess(buf)
	}
}
