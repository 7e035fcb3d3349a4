// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

// Package syncext implements the per-surface explicit synchronization
// object: at most one unread acquire-fence file descriptor and at most
// one unsent release object, migrated from pending to current state at
// surface commit.
package syncext

import (
	"golang.org/x/sys/unix"

	"github.com/portal-co/twelveto11-sub000/render"
	"github.com/portal-co/twelveto11-sub000/wire"
)

// ReleaseSink is the protocol resource a release object is eventually
// sent through — zwp_linux_buffer_release_v1 in the real protocol. It is
// received rather than constructed here, matching the out-of-scope
// protocol-dispatch-glue boundary.
type ReleaseSink interface {
	// FencedRelease sends the release event carrying fenceFD, the host
	// fence exported back to a client-importable descriptor. The
	// implementation takes ownership of fenceFD.
	FencedRelease(fenceFD int)
	// ImmediateRelease sends the release event with no fence, used when
	// the renderer backend has no fence support at all.
	ImmediateRelease()
}

// FenceExporter turns a host-side finish fence into a file descriptor the
// client can import, the reverse direction of render.Host.ImportFence.
// Protocol dispatch glue, received rather than created here.
type FenceExporter interface {
	ExportFenceFD(id wire.FenceID) (int, error)
}

// ProtocolErrorFunc reports a protocol error on the surface's explicit
// synchronization resource.
type ProtocolErrorFunc func(err error)

// Object is the per-surface explicit synchronization state.
type Object struct {
	pendingFD     int
	havePendingFD bool
	pendingRel    ReleaseSink

	currentFD     int
	haveCurrentFD bool
	currentRel    ReleaseSink

	onError ProtocolErrorFunc
}

// Option configures an Object at construction.
type Option func(*Object)

// WithProtocolError installs the callback used to signal protocol errors.
func WithProtocolError(cb ProtocolErrorFunc) Option {
	return func(o *Object) { o.onError = cb }
}

// New creates an empty synchronization object for one surface.
func New(opts ...Option) *Object {
	o := &Object{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Object) reportError(err error) {
	logger().Warn("syncext protocol error", "err", err)
	if o.onError != nil {
		o.onError(err)
	}
}

// SetAcquireFence registers fd as the surface's pending acquire fence.
// The object takes ownership of fd once accepted.
func (o *Object) SetAcquireFence(fd int) error {
	if o.havePendingFD {
		_ = unix.Close(fd)
		o.reportError(ErrAcquireFenceAlreadyPending)
		return ErrAcquireFenceAlreadyPending
	}
	o.pendingFD = fd
	o.havePendingFD = true
	return nil
}

// SetReleaseObject registers r as the surface's pending, not-yet-sent
// release object.
func (o *Object) SetReleaseObject(r ReleaseSink) error {
	if o.pendingRel != nil {
		o.reportError(ErrReleaseAlreadySent)
		return ErrReleaseAlreadySent
	}
	o.pendingRel = r
	return nil
}

// Commit migrates the pending acquire fence and release object into
// current state. pendingHasBuffer reports whether the surface's pending
// state (outside this object) has a buffer attached this commit; an
// acquire fence without one is a protocol error.
func (o *Object) Commit(pendingHasBuffer bool) error {
	if o.havePendingFD {
		if !pendingHasBuffer {
			_ = unix.Close(o.pendingFD)
			o.havePendingFD = false
			o.reportError(ErrAcquireFenceWithoutBuffer)
			return ErrAcquireFenceWithoutBuffer
		}
		if o.haveCurrentFD {
			_ = unix.Close(o.currentFD)
		}
		o.currentFD = o.pendingFD
		o.haveCurrentFD = true
		o.havePendingFD = false
	}
	if o.pendingRel != nil {
		o.currentRel = o.pendingRel
		o.pendingRel = nil
	}
	return nil
}

// CurrentAcquireFence returns the surface's current acquire fence fd and
// true if one is pending import, clearing it from the object (the caller
// now owns the fd).
func (o *Object) CurrentAcquireFence() (int, bool) {
	if !o.haveCurrentFD {
		return 0, false
	}
	fd := o.currentFD
	o.haveCurrentFD = false
	return fd, true
}

// ImportAcquireFence imports the surface's current acquire fence (if
// any) into a host fence via r, for the renderer to await before
// compositing reads the attached buffer.
func (o *Object) ImportAcquireFence(r *render.Renderer) (wire.FenceID, bool, error) {
	fd, ok := o.CurrentAcquireFence()
	if !ok {
		return 0, false, nil
	}
	id, err := r.ImportFence(fd)
	if err != nil {
		_ = unix.Close(fd)
		return 0, false, err
	}
	return id, true, nil
}

// NoteFinishFence delivers the renderer-provided finish fence for the
// target the surface's buffer was composited into, emitting a
// fenced-release event on the current release object and destroying it.
func (o *Object) NoteFinishFence(exporter FenceExporter, id wire.FenceID) {
	rel := o.currentRel
	if rel == nil {
		return
	}
	o.currentRel = nil

	fd, err := exporter.ExportFenceFD(id)
	if err != nil {
		logger().Warn("failed to export finish fence, releasing without one", "err", err)
		rel.ImmediateRelease()
		return
	}
	rel.FencedRelease(fd)
}

// ReleaseWithoutFence emits an immediate release for the current release
// object, used when the backend has no fence support at all.
func (o *Object) ReleaseWithoutFence() {
	rel := o.currentRel
	if rel == nil {
		return
	}
	o.currentRel = nil
	rel.ImmediateRelease()
}
