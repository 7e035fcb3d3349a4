// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package render

import "github.com/portal-co/twelveto11-sub000/wire"

// FillTransparent fills boxes in t's active back buffer with transparent
// black, allocating the back buffer first if the update has not drawn
// yet.
func (r *Renderer) FillTransparent(t *RenderTarget, boxes []wire.Rect) error {
	if len(boxes) == 0 {
		return nil
	}
	if _, _, err := r.guaranteeBackBuffer(t); err != nil {
		return err
	}
	return r.host.FillTransparentBoxes(t, boxes)
}

// ClearRectangle resets rc in t's active back buffer to fully
// transparent.
func (r *Renderer) ClearRectangle(t *RenderTarget, rc wire.Rect) error {
	if rc.Empty() {
		return nil
	}
	if _, _, err := r.guaranteeBackBuffer(t); err != nil {
		return err
	}
	return r.host.ClearRectangle(t, rc)
}

// CancelCompletion unlinks the completion callback registered for
// serial, reporting whether one was pending. A host event for the serial
// that is already in flight is ignored harmlessly once the record is
// gone.
func (r *Renderer) CancelCompletion(serial uint64) bool {
	if _, ok := r.completions[serial]; !ok {
		return false
	}
	delete(r.completions, serial)
	return true
}

// WaitForIdle synchronously drains host events via drain until buf has
// no pending activity or present record against t. It is the hard
// serialization point used when a buffer's shm pool is about to be
// unmapped; drain is the caller's host event pump and must make
// progress on round-trip echoes and present events.
func (r *Renderer) WaitForIdle(buf *RenderBuffer, t *RenderTarget, drain func() error) error {
	for !buf.idle(t) {
		logger().Debug("blocking for buffer idle", "pixmap", buf.Pixmap, "window", t.Window)
		if err := drain(); err != nil {
			return err
		}
	}
	return nil
}
