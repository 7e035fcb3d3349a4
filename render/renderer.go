// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package render

import (
	"github.com/portal-co/twelveto11-sub000/fence"
	"github.com/portal-co/twelveto11-sub000/internal/rid"
	"github.com/portal-co/twelveto11-sub000/wire"
)

// Renderer owns the buffer-lifecycle and composite-path algorithm: it
// caches per-buffer draw transforms,
// tracks which buffers are idle against which targets, and multiplexes
// the composite path and the direct-presentation path onto the back
// buffers of every RenderTarget it has created. It never speaks to the
// host display server directly; every observable effect goes through
// the injected Host.
type Renderer struct {
	host   Host
	fences *fence.Pool
	device DeviceHandle

	activity *rid.List[activityRecord]
	present  *rid.List[presentRecord]

	nextRoundTrip wire.RoundTripID
	nextSerial    uint64

	roundTrips map[wire.RoundTripID][]int // activity arena indices pending this marker
	presents   map[uint64]int             // serial -> present arena index

	completions map[uint64]pendingCompletion // serial -> callback for present/finish-render

	buffers map[*RenderBuffer]struct{}
	targets map[*RenderTarget]struct{}
}

type pendingCompletion struct {
	cb   CompletionCallback
	data any
}

// New constructs a Renderer. With no WithHost option, it selects a Host
// from the configured Registry (DefaultRegistry unless WithRegistry is
// given), by name if WithBackendName is given or else by priority.
func New(fencer fence.HostFencer, opts ...Option) (*Renderer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	host := o.host
	if host == nil {
		var err error
		if o.backendName != "" {
			host, err = o.registry.NewByName(o.backendName)
		} else {
			host, err = o.registry.New()
		}
		if err != nil {
			return nil, err
		}
	}
	fences := o.fences
	if fences == nil {
		fences = fence.NewPool(fencer)
	}
	device := o.device
	if device == nil {
		device = NullDeviceHandle{}
	}
	return &Renderer{
		host:        host,
		fences:      fences,
		device:      device,
		activity:    rid.NewList[activityRecord](),
		present:     rid.NewList[presentRecord](),
		roundTrips:  make(map[wire.RoundTripID][]int),
		presents:    make(map[uint64]int),
		completions: make(map[uint64]pendingCompletion),
		buffers:     make(map[*RenderBuffer]struct{}),
		targets:     make(map[*RenderTarget]struct{}),
	}, nil
}

// Host returns the backend the Renderer was constructed with.
func (r *Renderer) Host() Host { return r.host }

// Fences returns the fence pool back-buffer idle fences are awaited
// through.
func (r *Renderer) Fences() *fence.Pool { return r.fences }

// NewBuffer registers a server pixmap/picture pair as a RenderBuffer the
// Renderer can composite into its targets.
func (r *Renderer) NewBuffer(pixmap wire.PixmapID, picture wire.PictureID, depth, width, height int, flags BufferFlags) *RenderBuffer {
	b := newRenderBuffer()
	b.Pixmap, b.Picture, b.Depth, b.Width, b.Height, b.Flags = pixmap, picture, depth, width, height, flags
	r.buffers[b] = struct{}{}
	return b
}

// FreeBuffer releases b. It is an error to free a buffer that is not
// idle against every target it has been composited into.
func (r *Renderer) FreeBuffer(b *RenderBuffer) error {
	for t := range r.targets {
		if !b.idle(t) {
			return ErrNoBackBuffer
		}
	}
	delete(r.buffers, b)
	return nil
}

// CreateTarget registers a window of the given pixel depth as a
// composite destination.
func (r *Renderer) CreateTarget(window wire.WindowID, depth, width, height int) *RenderTarget {
	t := newRenderTarget()
	t.Window, t.Depth, t.Width, t.Height = window, depth, width, height
	r.targets[t] = struct{}{}
	return t
}

// DestroyTarget releases t and drops every buffer reference it holds.
func (r *Renderer) DestroyTarget(t *RenderTarget) {
	for b := range r.buffers {
		delete(b.activityByTarget, t)
		delete(b.idleByTarget, t)
		delete(b.presentByTarget, t)
	}
	delete(r.targets, t)
}

// guaranteeBackBuffer returns a non-busy back buffer for t, awaiting its
// idle fence first if one is outstanding (at most one
// of a target's two back buffers may be busy at a time).
func (r *Renderer) guaranteeBackBuffer(t *RenderTarget) (*backBuffer, int, error) {
	if t.active >= 0 && !t.backBuffers[t.active].busy {
		return &t.backBuffers[t.active], t.active, nil
	}
	for i := range t.backBuffers {
		if !t.backBuffers[i].busy {
			bb := &t.backBuffers[i]
			if bb.idleFence != nil {
				if err := r.fences.Await(bb.idleFence); err != nil {
					return nil, 0, err
				}
				bb.idleFence = nil
			}
			t.active = i
			t.justPresented = false
			return bb, i, nil
		}
	}
	return nil, 0, ErrNoBackBuffer
}

// Composite draws src into the active back buffer of t using the host's
// composite request, updating the picture transform only when params
// differs from the buffer's cached draw params.
func (r *Renderer) Composite(buf *RenderBuffer, t *RenderTarget, op Operator, params wire.DrawParams, srcX, srcY, dstX, dstY, w, h int) error {
	bb, _, err := r.guaranteeBackBuffer(t)
	if err != nil {
		return err
	}
	if !buf.haveDrawn || !buf.drawParams.Equal(params) {
		m := wire.CompositeMatrix(params, buf.Width, buf.Height)
		if err := r.host.SetPictureTransform(buf, m); err != nil {
			return err
		}
		buf.drawParams = params
		buf.haveDrawn = true
	}
	if err := r.host.CompositePicture(buf, t, op, srcX, srcY, dstX, dstY, w, h); err != nil {
		return err
	}
	bb.buffer = buf
	for _, touched := range t.touchedThisUpdate {
		if touched == buf {
			return nil
		}
	}
	t.touchedThisUpdate = append(t.touchedThisUpdate, buf)
	return nil
}

// FinishRender closes out an update on t: when cb is nil, it takes the
// cheap region-copy path; otherwise it sends a round-trip marker, links
// a BufferActivityRecord for every buffer touched this update, and hands
// the active back buffer to the host's present extension. The callback
// fires once CompletePresent reports that present's serial; the marker's
// echo (CompleteRoundTrip) retires the activity records.
func (r *Renderer) FinishRender(t *RenderTarget, damage wire.Region, cb CompletionCallback, data any) error {
	if t.active < 0 {
		return ErrNoBackBuffer
	}
	bb := &t.backBuffers[t.active]
	if cb == nil {
		if err := r.host.CopyDamageToWindow(t, damage); err != nil {
			return err
		}
		t.touchedThisUpdate = t.touchedThisUpdate[:0]
		return nil
	}

	r.nextRoundTrip++
	id := r.nextRoundTrip
	if err := r.host.SendRoundTripMarker(id); err != nil {
		r.nextRoundTrip--
		return err
	}
	t.roundTrip = id

	indices := make([]int, 0, len(t.touchedThisUpdate))
	for _, buf := range t.touchedThisUpdate {
		idx := r.activity.PushBack(activityRecord{buffer: buf, target: t, roundTrip: id})
		indices = append(indices, idx)
		buf.activityByTarget[t] = append(buf.activityByTarget[t], idx)
	}
	r.roundTrips[id] = indices
	t.touchedThisUpdate = t.touchedThisUpdate[:0]

	r.nextSerial++
	serial := r.nextSerial
	if err := r.host.PresentAsync(t, serial); err != nil {
		return err
	}
	bb.busy = true
	bb.presentSerial = serial
	r.completions[serial] = pendingCompletion{cb: cb, data: data}
	r.bumpOtherAges(t, t.active)
	return nil
}

func (r *Renderer) bumpOtherAges(t *RenderTarget, drawn int) {
	for i := range t.backBuffers {
		if i == drawn {
			t.backBuffers[i].age = 0
		} else if t.backBuffers[i].buffer != nil {
			t.backBuffers[i].age++
		}
	}
}

// CompleteRoundTrip is called once the host echoes the self-addressed
// round-trip marker sent by FinishRender. It retires every
// BufferActivityRecord linked to id and fires idle callbacks for any
// (buffer, target) pair left with no pending activity or present
// records.
func (r *Renderer) CompleteRoundTrip(id wire.RoundTripID) {
	indices, ok := r.roundTrips[id]
	if !ok {
		return
	}
	delete(r.roundTrips, id)
	for _, idx := range indices {
		rec := r.activity.Get(idx)
		r.activity.Remove(idx)
		list := rec.buffer.activityByTarget[rec.target]
		rec.buffer.activityByTarget[rec.target] = removeInt(list, idx)
		r.fireIdleIfIdle(rec.buffer, rec.target)
	}
}

// CompletePresent is called once the host acknowledges a serial issued
// by FinishRender's PresentAsync call or by PresentToWindow. It clears
// the corresponding back buffer's busy flag and fires the completion
// callback, if any, registered for that serial.
func (r *Renderer) CompletePresent(t *RenderTarget, serial uint64) {
	for i := range t.backBuffers {
		if t.backBuffers[i].busy && t.backBuffers[i].presentSerial == serial {
			t.backBuffers[i].busy = false
			t.backBuffers[i].presentSerial = 0
		}
	}
	if idx, ok := r.presents[serial]; ok {
		rec := r.present.Get(idx)
		r.present.Remove(idx)
		delete(r.presents, serial)
		list := rec.buffer.presentByTarget[rec.target]
		rec.buffer.presentByTarget[rec.target] = removeInt(list, idx)
		r.fireIdleIfIdle(rec.buffer, rec.target)
	}
	if pc, ok := r.completions[serial]; ok {
		delete(r.completions, serial)
		pc.cb(pc.data)
	}
}

func (r *Renderer) fireIdleIfIdle(buf *RenderBuffer, t *RenderTarget) {
	if !buf.idle(t) {
		return
	}
	cbs := buf.idleByTarget[t]
	delete(buf.idleByTarget, t)
	for _, cb := range cbs {
		cb()
	}
}

// PresentToWindow flips src directly into t, bypassing the composite
// path entirely. t must be window-backed, must not be flagged
// need-wait-for-idle (roles that rely on exact release timing), and its
// depth must match src's; src must be eligible for direct presentation
// and t must have no back buffer currently busy.
func (r *Renderer) PresentToWindow(t *RenderTarget, src *RenderBuffer, damage wire.Region, cb CompletionCallback, data any) error {
	if !src.CanPresent() {
		return ErrCannotPresent
	}
	if t.Window == 0 {
		return ErrCannotPresent
	}
	if t.needWaitForIdle {
		return ErrCannotPresent
	}
	if src.Depth != t.Depth {
		return ErrCannotPresent
	}
	for i := range t.backBuffers {
		if t.backBuffers[i].busy {
			return ErrCannotPresent
		}
	}

	r.nextSerial++
	serial := r.nextSerial
	if err := r.host.PresentToWindow(t, src, damage, serial); err != nil {
		return err
	}
	t.justPresented = true
	t.active = -1

	idx := r.present.PushBack(presentRecord{buffer: src, target: t, serial: serial})
	r.presents[serial] = idx
	src.presentByTarget[t] = append(src.presentByTarget[t], idx)
	if cb != nil {
		r.completions[serial] = pendingCompletion{cb: cb, data: data}
	}
	return nil
}

// TargetAge reports the number of swaps since t's active back buffer
// was last drawn into.
func (r *Renderer) TargetAge(t *RenderTarget) int { return t.Age() }

// AddIdleCallback registers cb to run once buf has no pending activity
// or present records against t. If buf is already idle, cb fires
// immediately.
func (r *Renderer) AddIdleCallback(buf *RenderBuffer, t *RenderTarget, cb IdleCallback) {
	if buf.idle(t) {
		cb()
		return
	}
	buf.idleByTarget[t] = append(buf.idleByTarget[t], cb)
}

// IsBufferIdle reports whether buf has no pending activity or present
// record against t.
func (r *Renderer) IsBufferIdle(buf *RenderBuffer, t *RenderTarget) bool { return buf.idle(t) }

// SetNeedWaitForIdle marks t as requiring its buffer to be idle before
// the next composite may proceed. While set it also disables direct
// presentation on t, the escape hatch for roles that must know exactly
// when a buffer is released.
func (r *Renderer) SetNeedWaitForIdle(t *RenderTarget, need bool) { t.needWaitForIdle = need }

// NeedsWaitForIdle reports the flag set by SetNeedWaitForIdle.
func (r *Renderer) NeedsWaitForIdle(t *RenderTarget) bool { return t.needWaitForIdle }

// ImportFence imports fd as a host synchronization object usable as a
// back buffer's idle fence. Returns ErrFenceUnsupported on a backend
// whose SupportsFence is false (the picture backend).
func (r *Renderer) ImportFence(fd int) (wire.FenceID, error) {
	if !r.host.SupportsFence() {
		return 0, ErrFenceUnsupported
	}
	return r.host.ImportFence(fd)
}

// GetFinishFence returns a fence that signals once the host has
// finished processing every request issued against t so far.
func (r *Renderer) GetFinishFence(t *RenderTarget) (wire.FenceID, bool) {
	if !r.host.SupportsFence() {
		return 0, false
	}
	return r.host.FinishFence(t)
}

func removeInt(s []int, v int) []int {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
