// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package render

import (
	"github.com/portal-co/twelveto11-sub000/fence"
	"github.com/portal-co/twelveto11-sub000/wire"
)

// Operator selects the compositing operator used by Composite.
type Operator uint8

const (
	// OpOver composites src over dst respecting src alpha.
	OpOver Operator = iota
	// OpSource replaces dst with src, ignoring dst's prior contents.
	OpSource
)

// BufferFlags records static capabilities of a RenderBuffer.
type BufferFlags uint8

const (
	// FlagCanPresent marks a buffer eligible for direct presentation
	// (its depth and format match some window it could flip into).
	FlagCanPresent BufferFlags = 1 << iota
	// FlagIsOpaque marks a buffer as fully alpha-opaque.
	FlagIsOpaque
)

// CompletionCallback is invoked once a finish-render or present-to-window
// swap has been acknowledged by the host.
type CompletionCallback func(data any)

// IdleCallback is invoked once a (buffer, target) pair has no pending
// activity or present records.
type IdleCallback func()

// activityRecord is a BufferActivityRecord: one per
// (buffer, target) pair touched by an update, linked onto three lists
// (per-buffer, per-target, per-process) keyed by round-trip id.
type activityRecord struct {
	buffer    *RenderBuffer
	target    *RenderTarget
	roundTrip wire.RoundTripID
}

// presentRecord tracks an in-flight direct presentation, keyed by
// presentation serial.
type presentRecord struct {
	buffer *RenderBuffer
	target *RenderTarget
	serial uint64
}

// RenderBuffer wraps a server pixmap/picture pair and the bookkeeping the
// renderer needs to track its use across targets.
type RenderBuffer struct {
	Pixmap  wire.PixmapID
	Picture wire.PictureID
	Depth   int
	Width   int
	Height  int
	Flags   BufferFlags

	drawParams wire.DrawParams
	haveDrawn  bool // drawParams has been set at least once

	activityByTarget map[*RenderTarget][]int // per-buffer activity-record arena indices, keyed by target
	idleByTarget     map[*RenderTarget][]IdleCallback
	presentByTarget  map[*RenderTarget][]int // pending present-record arena indices
}

func newRenderBuffer() *RenderBuffer {
	return &RenderBuffer{
		activityByTarget: make(map[*RenderTarget][]int),
		idleByTarget:     make(map[*RenderTarget][]IdleCallback),
		presentByTarget:  make(map[*RenderTarget][]int),
	}
}

// Opaque reports whether the buffer is flagged fully alpha-opaque.
func (b *RenderBuffer) Opaque() bool { return b.Flags&FlagIsOpaque != 0 }

// CanPresent reports whether the buffer is eligible for direct
// presentation.
func (b *RenderBuffer) CanPresent() bool { return b.Flags&FlagCanPresent != 0 }

// idle reports whether b has no pending activity or present record
// against target.
func (b *RenderBuffer) idle(t *RenderTarget) bool {
	return len(b.activityByTarget[t]) == 0 && len(b.presentByTarget[t]) == 0
}

// backBuffer is one of a target's (at most two) off-screen draw surfaces.
type backBuffer struct {
	buffer        *RenderBuffer
	busy          bool
	presentSerial uint64       // non-zero iff busy
	idleFence     *fence.Fence // non-nil until awaited by the next composite
	age           int          // swaps since this buffer was last drawn into
}

// RenderTarget wraps either a window or a pixmap render destination.
type RenderTarget struct {
	Window wire.WindowID // zero if this target is pixmap-backed
	Depth  int
	Width  int
	Height int

	backBuffers [2]backBuffer
	active      int // index of the currently active back buffer, or -1

	needWaitForIdle bool
	justPresented   bool // true after present_to_window, until the next composite

	touchedThisUpdate []*RenderBuffer

	roundTrip wire.RoundTripID // last round-trip id issued by finish_render
}

func newRenderTarget() *RenderTarget {
	return &RenderTarget{active: -1}
}

// Age reports the number of swaps since the active back buffer was last
// drawn to, or the sentinel -2 if the target was just directly presented.
func (t *RenderTarget) Age() int {
	if t.justPresented {
		return -2
	}
	if t.active < 0 {
		return -1
	}
	return t.backBuffers[t.active].age
}
