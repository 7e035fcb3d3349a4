// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

// Package synchelper selects, per frame, between the legacy frame-clock
// handshake and direct present-extension vsync, and drives a window
// role's frame-callback and resize-freeze notifications from whichever
// mode is active.
package synchelper

import (
	"github.com/portal-co/twelveto11-sub000/frameclock"
	"github.com/portal-co/twelveto11-sub000/subcompositor"
)

// Mode mirrors subcompositor.Mode; re-exported so callers of this
// package don't need to import subcompositor just to read it back.
type Mode = subcompositor.Mode

const (
	ModeClock   = subcompositor.ModeClock
	ModePresent = subcompositor.ModePresent
)

// FrameCallback is the client-visible wl_callback completion the role
// fires once a frame is known to have been presented.
type FrameCallback func(timestampUS uint64)

// Helper drives mode selection and frame-callback dispatch for a single
// window role.
type Helper struct {
	clock *frameclock.Clock
	view  *subcompositor.Subcompositor
	root  int // the window role's own view, whose descendants are checked for desync

	presentCapable bool // true if the host present extension is usable for this target
	resizing       bool // true while a resize is forcing the clock path

	mode Mode

	frameStarted bool
	awaitingHost bool // true once the active mode's own completion is awaited

	frameCallback FrameCallback

	freezeCB       func()
	fastForwardCB  func() bool
}

// Option configures a Helper at construction.
type Option func(*Helper)

// WithFreezeCallback installs the callback invoked when the underlying
// frame clock enters Frozen during a resize.
func WithFreezeCallback(cb func()) Option {
	return func(h *Helper) { h.freezeCB = cb }
}

// WithFastForwardCallback installs the callback the role uses to say a
// frame is safe to skip rather than held for a soon-to-be-superseded
// configure.
func WithFastForwardCallback(cb func() bool) Option {
	return func(h *Helper) { h.fastForwardCB = cb }
}

// New creates a Helper bound to clock and the subcompositor view tree,
// rooted at the window role's own view index.
func New(clock *frameclock.Clock, view *subcompositor.Subcompositor, root int, opts ...Option) *Helper {
	h := &Helper{clock: clock, view: view, root: root, mode: ModeClock}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SetPresentCapable records whether the host present extension is
// currently usable for this target (it may become unusable mid-session,
// e.g. during a resize).
func (h *Helper) SetPresentCapable(capable bool) { h.presentCapable = capable }

// SetResizing forces the clock path regardless of present capability,
// since the legacy handshake is required during resize.
func (h *Helper) SetResizing(resizing bool) { h.resizing = resizing }

// SetFrameCallback installs the function invoked once a frame's
// presentation timestamp is known.
func (h *Helper) SetFrameCallback(cb FrameCallback) { h.frameCallback = cb }

// Mode reports the mode StartFrame last selected.
func (h *Helper) Mode() Mode { return h.mode }

// selectMode picks clock or present for the upcoming frame.
func (h *Helper) selectMode() Mode {
	if h.resizing || !h.presentCapable {
		return ModeClock
	}
	return ModePresent
}

// StartFrame begins a frame: selects this frame's mode, enables refresh
// prediction on the clock when more than one descendant view commits
// independently of the parent, and starts the clock's state machine.
func (h *Helper) StartFrame(urgent bool) (uint64, error) {
	mode := h.selectMode()
	if mode != h.mode {
		logger().Debug("frame mode changed", "from", h.mode, "to", mode)
		h.mode = mode
		h.view.NotifyFrame(subcompositor.FrameModeSet, subcompositor.PresentInfo{})
	}

	desync := h.view.CountDesyncDescendants(h.root)
	h.clock.SetPredictRefresh(desync > 1)

	id, err := h.clock.StartFrame(urgent)
	if err != nil {
		return 0, err
	}
	h.frameStarted = true
	h.awaitingHost = mode == ModePresent
	return id, nil
}

// FrameCompleted clears the frame-started flag and, unless the mode is
// still awaiting a host completion, runs the role's frame-callback
// function directly with the given monotonic timestamp.
func (h *Helper) FrameCompleted(timestampUS uint64) {
	h.frameStarted = false
	h.view.NotifyFrame(subcompositor.FrameCompleted, subcompositor.PresentInfo{})
	if !h.awaitingHost && h.frameCallback != nil {
		h.frameCallback(timestampUS)
	}
}

// NoteHostFrameDrawn forwards the host's frame-drawn event to the clock
// and, once the clock has returned to Idle, fires the frame-callback if
// it was being withheld pending this event.
func (h *Helper) NoteHostFrameDrawn(id uint64, rawTimestampMS uint32) {
	h.clock.NoteFrameDrawn(id)
	if h.clock.State() != frameclock.Idle {
		return
	}
	ts := h.clock.ExtendTimestamp(rawTimestampMS)
	h.FrameCompleted(ts)
}

// NotePresentComplete is the present-mode equivalent of
// NoteHostFrameDrawn: the host present extension has confirmed the frame
// reached the screen at msc/ust.
func (h *Helper) NotePresentComplete(msc, ust uint64) {
	h.awaitingHost = false
	h.view.NotifyFrame(subcompositor.FramePresented, subcompositor.PresentInfo{Msc: msc, Ust: ust})
	h.FrameCompleted(ust)
}

// HandleFreeze is called when the frame clock transitions to Frozen; it
// forwards to the role's freeze callback, primarily used during resize
// to hold output until a fresh configure is acknowledged.
func (h *Helper) HandleFreeze() {
	if h.freezeCB != nil {
		h.freezeCB()
	}
}

// FastForward asks the role whether the in-flight frame may be dropped
// rather than held for a configure that is about to be superseded.
func (h *Helper) FastForward() bool {
	if h.fastForwardCB == nil {
		return false
	}
	return h.fastForwardCB()
}
