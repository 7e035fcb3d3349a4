// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package subcompositor

import (
	"github.com/portal-co/twelveto11-sub000/internal/rid"
	"github.com/portal-co/twelveto11-sub000/render"
	"github.com/portal-co/twelveto11-sub000/wire"
)

// FrameEvent is one of the four note-frame callback events.
type FrameEvent uint8

const (
	FrameStarted FrameEvent = iota
	FrameModeSet
	FrameCompleted
	FramePresented
)

// Mode distinguishes the two frame-pacing strategies reported by
// FrameModeSet.
type Mode uint8

const (
	ModeClock Mode = iota
	ModePresent
)

// DrawCall is one entry of the ordered sequence update() hands to the
// renderer. Params carries the fractional sub-pixel
// offset queued by SetPosition as wire.DrawParams.OffsetX/OffsetY, for
// the caller to pass straight through to render.Renderer.Composite.
type DrawCall struct {
	Buffer  *render.RenderBuffer
	DstRect wire.Rect
	SrcRect wire.Rect
	Op      render.Operator
	Params  wire.DrawParams
}

// zAction is a queued place-above/place-below request.
type zAction struct {
	view  int
	other int // nilIndex means "topmost"/"bottommost" within the parent
	above bool
}

// Subcompositor is the root of a view tree bound to a single render
// target.
type Subcompositor struct {
	views *rid.List[*View]
	roots []int // top-level views, back-to-front

	pending map[int][]zAction // parent arena index (nilIndex for roots) -> queued actions

	target *render.RenderTarget

	boundsCB    func(wire.Rect)
	noteFrameCB func(FrameEvent, PresentInfo)

	lastBounds wire.Rect
}

// PresentInfo carries the host-provided msc/ust delivered with
// FramePresented.
type PresentInfo struct {
	Msc uint64
	Ust uint64
}

// New creates an empty Subcompositor.
func New() *Subcompositor {
	return &Subcompositor{
		views:   rid.NewList[*View](),
		pending: make(map[int][]zAction),
	}
}

// SetBoundsCallback installs the callback invoked after each update with
// the bounding box of all mapped views, in window coordinates.
func (s *Subcompositor) SetBoundsCallback(cb func(wire.Rect)) { s.boundsCB = cb }

// SetRenderTarget binds the render target draw calls are issued against.
func (s *Subcompositor) SetRenderTarget(t *render.RenderTarget) { s.target = t }

// RenderTarget returns the currently bound render target.
func (s *Subcompositor) RenderTarget() *render.RenderTarget { return s.target }

// SetNoteFrameCallback installs the callback notified of frame lifecycle
// events.
func (s *Subcompositor) SetNoteFrameCallback(cb func(FrameEvent, PresentInfo)) { s.noteFrameCB = cb }

func (s *Subcompositor) notify(evt FrameEvent, info PresentInfo) {
	if s.noteFrameCB != nil {
		s.noteFrameCB(evt, info)
	}
}

// NotifyFrame delivers a frame lifecycle event through the same sink
// Update uses for FrameStarted, for drivers outside this package (the
// sync helper) that decide mode selection and present completion.
func (s *Subcompositor) NotifyFrame(evt FrameEvent, info PresentInfo) {
	s.notify(evt, info)
}

// InsertView creates a new View for surfaceID under parent (nilIndex for
// a top-level view) and appends it as the topmost (frontmost) sibling,
// returning its arena handle.
func (s *Subcompositor) InsertView(parent int, surfaceID wire.SurfaceID) int {
	idx := s.views.PushBack(newView(surfaceID, parent))
	s.appendChild(parent, idx)
	return idx
}

func (s *Subcompositor) siblingSlice(parent int) *[]int {
	if parent == nilIndex {
		return &s.roots
	}
	return &s.views.Get(parent).children
}

func (s *Subcompositor) appendChild(parent, idx int) {
	sl := s.siblingSlice(parent)
	*sl = append(*sl, idx)
}

// UnparentView detaches idx from its parent's sibling list without
// destroying it; idx may be reinserted elsewhere with InsertView-style
// bookkeeping left to the caller, or destroyed with DestroyView.
func (s *Subcompositor) UnparentView(idx int) {
	v := s.views.Get(idx)
	sl := s.siblingSlice(v.parent)
	*sl = removeFromSlice(*sl, idx)
}

// ReparentView moves idx into newParent's child list, appended topmost.
// Z-order actions queued before the move stay keyed to the old parent,
// whose Commit skips them because idx is no longer in its child list.
func (s *Subcompositor) ReparentView(idx, newParent int) {
	v := s.views.Get(idx)
	if v.parent == newParent {
		return
	}
	sl := s.siblingSlice(v.parent)
	*sl = removeFromSlice(*sl, idx)
	v.parent = newParent
	s.appendChild(newParent, idx)
}

// DestroyView removes idx from the tree entirely and drops any queued
// z-order actions naming it: an action whose other view is destroyed
// before replay is dropped.
func (s *Subcompositor) DestroyView(idx int) {
	v := s.views.Get(idx)
	sl := s.siblingSlice(v.parent)
	*sl = removeFromSlice(*sl, idx)
	delete(s.pending, idx)
	for parent, actions := range s.pending {
		kept := actions[:0]
		for _, a := range actions {
			if a.view == idx || a.other == idx {
				continue
			}
			kept = append(kept, a)
		}
		s.pending[parent] = kept
	}
	s.views.Remove(idx)
}

func removeFromSlice(sl []int, idx int) []int {
	for i, v := range sl {
		if v == idx {
			return append(sl[:i], sl[i+1:]...)
		}
	}
	return sl
}

// View returns the View at idx for direct inspection by the caller's
// surface-commit logic (out of scope here).
func (s *Subcompositor) View(idx int) *View { return s.views.Get(idx) }

// SetSkip sets whether idx is excluded from rendering without unmapping.
func (s *Subcompositor) SetSkip(idx int, skip bool) { s.views.Get(idx).skip = skip }

// SetMapped sets whether idx participates in the tree walk at all.
func (s *Subcompositor) SetMapped(idx int, mapped bool) { s.views.Get(idx).mapped = mapped }

// SetDesync sets whether idx's pending state applies independently of its
// parent's commits rather than being held until the parent commits
// (Wayland subsurface synchronization mode).
func (s *Subcompositor) SetDesync(idx int, desync bool) { s.views.Get(idx).desync = desync }

// CountDesyncDescendants returns the number of desynchronized views in
// the subtree rooted at parent, not counting parent itself.
func (s *Subcompositor) CountDesyncDescendants(parent int) int {
	count := 0
	var walk func(idx int)
	walk = func(idx int) {
		for _, child := range s.views.Get(idx).children {
			if s.views.Get(child).desync {
				count++
			}
			walk(child)
		}
	}
	walk(parent)
	return count
}

// SetInput attaches the surface-supplied draw state to idx for the next
// update.
func (s *Subcompositor) SetInput(idx int, in DrawInput) {
	v := s.views.Get(idx)
	v.input = in
	v.hasInput = in.Buffer != nil
}

// SetPosition stores a subsurface's position as a floating point offset
// in surface coordinates, splitting it into the integer view placement
// and the fractional sub-pixel offset applied only at composite time.
func (s *Subcompositor) SetPosition(idx int, x, y float64) {
	v := s.views.Get(idx)
	ix, iy := floorInt(x), floorInt(y)
	v.placeX, v.placeY = ix, iy
	v.fracX, v.fracY = x-float64(ix), y-float64(iy)
}

func floorInt(v float64) int {
	i := int(v)
	if v < float64(i) {
		i--
	}
	return i
}

// QueuePlaceAbove records a place-above request against view's parent,
// applied at that parent's next Commit. other == nilIndex means "above everything".
func (s *Subcompositor) QueuePlaceAbove(view, other int) {
	s.queueAction(view, other, true)
}

// QueuePlaceBelow records a place-below request, symmetric with
// QueuePlaceAbove.
func (s *Subcompositor) QueuePlaceBelow(view, other int) {
	s.queueAction(view, other, false)
}

func (s *Subcompositor) queueAction(view, other int, above bool) {
	parent := s.views.Get(view).parent
	s.pending[parent] = append([]zAction{{view: view, other: other, above: above}}, s.pending[parent]...)
}

// Commit replays the pending z-order actions queued against parent.
// Requests are inserted at the head of the pending list and the list is
// replayed in reverse, so requests apply in the order they were issued
// and a later request wins where two conflict. Actions naming an already
// destroyed view are silently skipped (DestroyView already dropped
// them); actions between live views that no longer share parent are also
// skipped.
func (s *Subcompositor) Commit(parent int) {
	actions := s.pending[parent]
	delete(s.pending, parent)
	for i := len(actions) - 1; i >= 0; i-- {
		s.applyZAction(parent, actions[i])
	}
}

func (s *Subcompositor) applyZAction(parent int, a zAction) {
	sl := s.siblingSlice(parent)
	if indexOf(*sl, a.view) < 0 {
		return
	}
	if a.other != nilIndex && indexOf(*sl, a.other) < 0 {
		return
	}
	*sl = removeFromSlice(*sl, a.view)
	if a.other == nilIndex {
		if a.above {
			*sl = append(*sl, a.view)
		} else {
			*sl = append([]int{a.view}, *sl...)
		}
		return
	}
	pos := indexOf(*sl, a.other)
	if pos < 0 {
		*sl = append(*sl, a.view)
		return
	}
	if a.above {
		pos++
	}
	out := make([]int, 0, len(*sl)+1)
	out = append(out, (*sl)[:pos]...)
	out = append(out, a.view)
	out = append(out, (*sl)[pos:]...)
	*sl = out
}

func indexOf(sl []int, v int) int {
	for i, x := range sl {
		if x == v {
			return i
		}
	}
	return -1
}

// Expose forces region (window coordinates) to be treated as damaged on
// the next Update, used for content newly exposed by a resize or
// occlusion change rather than a client commit.
func (s *Subcompositor) Expose(idx int, region wire.Region) {
	v := s.views.Get(idx)
	v.input.Damage = unionRegion(v.input.Damage, region)
}
