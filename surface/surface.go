// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

// Package surface implements the atomic unit of display: double-buffered
// pending/current state, the commit that atomically promotes one to the
// other, the role capability attachment, and the subsurface role whose
// cached state and queued z-order actions apply at the parent's next
// effective commit.
package surface

import (
	"github.com/portal-co/twelveto11-sub000/render"
	"github.com/portal-co/twelveto11-sub000/subcompositor"
	"github.com/portal-co/twelveto11-sub000/syncext"
	"github.com/portal-co/twelveto11-sub000/wire"
)

// DataKey identifies an entry in a surface's client-data bag. Well-known
// keys are defined by the collaborators that store state on surfaces
// (input glue, selection glue); the surface itself only carries the bag.
type DataKey string

// Surface is the atomic unit of display.
type Surface struct {
	id wire.SurfaceID

	pending      State
	pendingFlags PendingField
	current      State
	commitSerial uint64

	role     Role
	haveRole bool

	sc        *subcompositor.Subcompositor
	view      int // primary content view
	underView int // view beneath it, carrying subsurfaces placed below
	bound     bool

	children []*Surface // attached subsurface children, insertion order
	data     map[DataKey]any

	sync *syncext.Object

	onRelease func(*render.RenderBuffer)
}

// New creates a role-less surface with empty pending and current state.
func New(id wire.SurfaceID) *Surface {
	return &Surface{
		id:      id,
		pending: State{Scale: 1},
		current: State{Scale: 1},
	}
}

// ID returns the surface's client-protocol identifier.
func (s *Surface) ID() wire.SurfaceID { return s.id }

// BindScene inserts the surface's two views into sc under parentView
// (subcompositor.Root for a role that owns the whole target). The under
// view is inserted first so subsurfaces placed below the content draw
// beneath it.
func (s *Surface) BindScene(sc *subcompositor.Subcompositor, parentView int) {
	s.sc = sc
	s.underView = sc.InsertView(parentView, s.id)
	s.view = sc.InsertView(parentView, s.id)
	sc.SetMapped(s.view, false)
	sc.SetMapped(s.underView, false)
	s.bound = true
}

// Scene returns the subcompositor the surface's views live in, or nil if
// BindScene has not run.
func (s *Surface) Scene() *subcompositor.Subcompositor { return s.sc }

// ViewHandle returns the surface's primary view index within its scene.
func (s *Surface) ViewHandle() int { return s.view }

// UnderViewHandle returns the view beneath the primary content, the
// parent list for subsurfaces placed below the surface.
func (s *Surface) UnderViewHandle() int { return s.underView }

// SetRole attaches role to the surface. A surface holds at most one role
// for its lifetime: attaching a role of a different kind after one has
// been set is an error, re-attaching the same kind is permitted.
func (s *Surface) SetRole(role Role) error {
	if s.haveRole && s.role.Kind() != role.Kind() {
		return ErrRoleTaken
	}
	s.role = role
	s.haveRole = true
	role.Setup(s)
	return nil
}

// Role returns the attached role, or nil.
func (s *Surface) Role() Role {
	if !s.haveRole {
		return nil
	}
	return s.role
}

// RoleKind returns the attached role's kind, or RoleNone.
func (s *Surface) RoleKind() RoleKind {
	if !s.haveRole {
		return RoleNone
	}
	return s.role.Kind()
}

// SetSynchronization attaches the explicit-synchronization object whose
// acquire fence and release object commit along with the surface state.
func (s *Surface) SetSynchronization(o *syncext.Object) { s.sync = o }

// Synchronization returns the attached explicit-synchronization object,
// or nil.
func (s *Surface) Synchronization() *syncext.Object { return s.sync }

// SetReleaseFunc installs the callback run when a committed buffer is
// replaced, for the protocol glue to emit wl_buffer.release once the
// renderer reports it idle.
func (s *Surface) SetReleaseFunc(f func(*render.RenderBuffer)) { s.onRelease = f }

// Attach stages buf as the pending buffer. A nil buf unmaps the surface
// at the next commit.
func (s *Surface) Attach(buf *render.RenderBuffer, width, height int) {
	s.pending.Buffer = buf
	s.pending.BufferWidth = width
	s.pending.BufferHeight = height
	s.pendingFlags |= FieldBuffer
}

// Damage accumulates a damaged rectangle in surface coordinates.
func (s *Surface) Damage(rc wire.Rect) {
	s.pending.Damage.Add(rc)
	s.pendingFlags |= FieldDamage
}

// SetOpaqueRegion stages the region guaranteed alpha-opaque.
func (s *Surface) SetOpaqueRegion(r wire.Region) {
	s.pending.Opaque = r
	s.pendingFlags |= FieldOpaque
}

// SetInputRegion stages the region accepting input.
func (s *Surface) SetInputRegion(r wire.Region) {
	s.pending.Input = r
	s.pendingFlags |= FieldInput
}

// SetViewportSource stages the viewport crop rectangle in surface
// coordinates; a zero-size rectangle restores "use the whole buffer".
func (s *Surface) SetViewportSource(src subcompositor.SourceRect) {
	s.pending.ViewportSrc = src
	s.pendingFlags |= FieldViewportSrc
}

// SetViewportDestination stages the viewport destination size.
func (s *Surface) SetViewportDestination(w, h int) {
	s.pending.DestW, s.pending.DestH = w, h
	s.pendingFlags |= FieldViewportDst
}

// SetBufferScale stages the integer surface-to-device scale factor.
func (s *Surface) SetBufferScale(scale float64) {
	s.pending.Scale = scale
	s.pendingFlags |= FieldScale
}

// SetBufferTransform stages one of the eight buffer orientations.
func (s *Surface) SetBufferTransform(t wire.BufferTransform) {
	s.pending.Transform = t
	s.pendingFlags |= FieldTransform
}

// SetOffset stages the attach offset applied to the surface position.
func (s *Surface) SetOffset(x, y float64) {
	s.pending.OffsetX, s.pending.OffsetY = x, y
	s.pendingFlags |= FieldOffset
}

// Frame registers a frame-done callback on the pending state; it moves
// to the current state at commit and fires when the frame it was
// committed into is presented.
func (s *Surface) Frame(cb FrameCallback) {
	s.pending.FrameCallbacks = append(s.pending.FrameCallbacks, cb)
	s.pendingFlags |= FieldFrameCallbacks
}

// PendingFlags returns the set of fields written since the last commit.
func (s *Surface) PendingFlags() PendingField { return s.pendingFlags }

// Current returns the committed state for inspection.
func (s *Surface) Current() *State { return &s.current }

// CommitSerial returns the number of commits applied so far.
func (s *Surface) CommitSerial() uint64 { return s.commitSerial }

// Commit atomically promotes the flagged pending fields into current
// state and clears the flag set. A synchronized subsurface role may
// redirect the whole commit into its cache instead, in which case only
// the commit serial advances here. Role-specific queued actions (z-order,
// subsurface positions, cached child state) replay afterwards.
func (s *Surface) Commit() error {
	s.commitSerial++

	if s.haveRole {
		if !s.role.EarlyCommit(s) {
			return nil
		}
	}

	var syncErr error
	if s.sync != nil {
		pendingHasBuffer := s.pendingFlags&FieldBuffer != 0 && s.pending.Buffer != nil
		syncErr = s.sync.Commit(pendingHasBuffer)
	}

	s.applyPending()

	if s.haveRole {
		s.role.Commit(s)
	}
	s.commitChildren()
	return syncErr
}

// applyPending performs the pending-to-current promotion shared by a
// direct commit and a synchronized subsurface's cache application.
func (s *Surface) applyPending() {
	flags := s.pendingFlags
	if flags&FieldBuffer != 0 && s.current.Buffer != nil && s.current.Buffer != s.pending.Buffer {
		s.releaseBuffer(s.current.Buffer)
	}
	s.current.apply(&s.pending, flags)
	s.pendingFlags = 0
	if flags != 0 {
		s.pushDrawInput()
	}
}

// commitChildren replays queued z-order actions for this surface's child
// lists and applies each child subsurface's parent-commit work (position,
// cached synchronized state), in insertion order.
func (s *Surface) commitChildren() {
	if s.bound {
		s.sc.Commit(s.view)
		s.sc.Commit(s.underView)
	}
	for _, child := range s.children {
		if sub, ok := child.Role().(*Subsurface); ok {
			sub.applyParentCommit()
		}
	}
}

func (s *Surface) releaseBuffer(buf *render.RenderBuffer) {
	if s.haveRole {
		s.role.ReleaseBuffer(s, buf)
	}
	if s.onRelease != nil {
		s.onRelease(buf)
	}
}

// pushDrawInput publishes the committed state to the surface's primary
// view, mapping or unmapping it according to buffer presence.
func (s *Surface) pushDrawInput() {
	if !s.bound {
		return
	}
	if s.current.Buffer == nil {
		s.sc.SetMapped(s.view, false)
		return
	}
	s.sc.SetMapped(s.view, true)
	s.sc.SetInput(s.view, subcompositor.DrawInput{
		Buffer:          s.current.Buffer,
		BufferWidth:     s.current.BufferWidth,
		BufferHeight:    s.current.BufferHeight,
		BufferScale:     s.current.Scale,
		BufferTransform: s.current.Transform,
		Damage:          s.current.Damage,
		Opaque:          s.current.Opaque,
		Viewport:        s.current.ViewportSrc,
		DestW:           s.current.DestW,
		DestH:           s.current.DestH,
	})
	s.current.Damage = wire.Region{}
}

// TakeFrameCallbacks removes and returns the committed frame callbacks,
// for the sync helper to fire once the frame they rode in on has been
// presented.
func (s *Surface) TakeFrameCallbacks() []FrameCallback {
	cbs := s.current.FrameCallbacks
	s.current.FrameCallbacks = nil
	return cbs
}

// SetData stores value in the surface's client-data bag under key.
func (s *Surface) SetData(key DataKey, value any) {
	if s.data == nil {
		s.data = make(map[DataKey]any)
	}
	s.data[key] = value
}

// Data returns the value stored under key, if any.
func (s *Surface) Data(key DataKey) (any, bool) {
	v, ok := s.data[key]
	return v, ok
}

// DeleteData removes key from the client-data bag.
func (s *Surface) DeleteData(key DataKey) { delete(s.data, key) }

// Children returns the attached subsurface children in insertion order.
func (s *Surface) Children() []*Surface { return s.children }

// Destroy tears down the role, detaches from the parent and removes the
// surface's views from the scene. Queued z-order actions naming the
// destroyed views are dropped by the subcompositor.
func (s *Surface) Destroy() {
	if s.haveRole {
		s.role.Teardown(s)
		s.haveRole = false
		s.role = nil
	}
	if s.bound {
		s.sc.DestroyView(s.view)
		s.sc.DestroyView(s.underView)
		s.bound = false
	}
	if s.current.Buffer != nil {
		s.releaseBuffer(s.current.Buffer)
		s.current.Buffer = nil
	}
}

func (s *Surface) removeChild(child *Surface) {
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}
