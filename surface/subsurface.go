// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"github.com/portal-co/twelveto11-sub000/render"
	"github.com/portal-co/twelveto11-sub000/subcompositor"
	"github.com/portal-co/twelveto11-sub000/wire"
)

// Subsurface is the one role variant implemented inside the core: a
// surface positioned relative to a parent surface, committed either
// independently (desynchronized) or through a cache the parent's next
// commit applies.
type Subsurface struct {
	surface *Surface
	parent  *Surface

	synced bool

	cached      State
	cachedFlags PendingField
	haveCached  bool

	posX, posY float64
	posPending bool

	inUnderList bool
}

// NewSubsurface attaches the subsurface role to s with the given parent,
// inserting s's views into the parent's scene. Subsurfaces start in
// synchronized mode.
func NewSubsurface(s, parent *Surface) (*Subsurface, error) {
	for p := parent; p != nil; {
		if p == s {
			return nil, ErrOwnParent
		}
		sub, ok := p.Role().(*Subsurface)
		if !ok {
			break
		}
		p = sub.parent
	}
	if !parent.bound {
		return nil, ErrNotSibling
	}

	ss := &Subsurface{surface: s, parent: parent, synced: true}
	if err := s.SetRole(ss); err != nil {
		return nil, err
	}
	return ss, nil
}

// Kind implements Role.
func (ss *Subsurface) Kind() RoleKind { return RoleSubsurface }

// Setup implements Role: it binds the surface's views under the parent's
// primary view and records the child on the parent.
func (ss *Subsurface) Setup(s *Surface) {
	s.BindScene(ss.parent.sc, ss.parent.view)
	ss.parent.children = append(ss.parent.children, s)
}

// Teardown implements Role.
func (ss *Subsurface) Teardown(s *Surface) {
	ss.parent.removeChild(s)
}

// EarlyCommit implements Role: in effective synchronized mode the whole
// commit is redirected into the cache, to be applied at the parent's
// next effective commit.
func (ss *Subsurface) EarlyCommit(s *Surface) bool {
	if !ss.effectiveSync() {
		return true
	}
	if s.sync != nil {
		pendingHasBuffer := s.pendingFlags&FieldBuffer != 0 && s.pending.Buffer != nil
		_ = s.sync.Commit(pendingHasBuffer)
	}
	ss.cached.merge(&s.pending, s.pendingFlags)
	ss.cachedFlags |= s.pendingFlags
	s.pendingFlags = 0
	ss.haveCached = true
	logger().Debug("subsurface commit cached", "surface", s.id)
	return false
}

// Commit implements Role. Child replay is driven by the owning surface's
// commitChildren, so there is nothing further to do here.
func (ss *Subsurface) Commit(*Surface) {}

// ReleaseBuffer implements Role; buffer release notification is routed
// through the surface's release func.
func (ss *Subsurface) ReleaseBuffer(*Surface, *render.RenderBuffer) {}

// Window implements Role: a subsurface draws into its root role's
// window.
func (ss *Subsurface) Window() wire.WindowID { return 0 }

// Parent returns the parent surface.
func (ss *Subsurface) Parent() *Surface { return ss.parent }

// Synced reports the subsurface's own synchronization mode, not the
// effective mode inherited through ancestors.
func (ss *Subsurface) Synced() bool { return ss.synced }

// effectiveSync reports whether commits must go through the cache: a
// subsurface is effectively synchronized if it or any ancestor
// subsurface is in synchronized mode.
func (ss *Subsurface) effectiveSync() bool {
	if ss.synced {
		return true
	}
	for p := ss.parent; p != nil; {
		sub, ok := p.Role().(*Subsurface)
		if !ok {
			return false
		}
		if sub.synced {
			return true
		}
		p = sub.parent
	}
	return false
}

// SetSync switches synchronization mode. Leaving synchronized mode
// applies any cached state immediately, and the parent's role is
// notified through its ChildSyncObserver capability if it has one.
func (ss *Subsurface) SetSync(sync bool) {
	if ss.synced == sync {
		return
	}
	ss.synced = sync
	s := ss.surface
	if s.bound {
		s.sc.SetDesync(s.view, !sync)
	}
	if obs, ok := ss.parent.Role().(ChildSyncObserver); ok {
		if sync {
			obs.NoteChildSynced(ss.parent, s)
		} else {
			obs.NoteDesyncChild(ss.parent, s)
		}
	}
	if !sync {
		ss.flushCachesAfterDesync()
	}
}

// flushCachesAfterDesync applies cached state made effective by a desync
// switch: this subsurface's own cache if it is now effectively
// desynchronized, else any descendant desynchronized chains that were
// blocked only by this ancestor.
func (ss *Subsurface) flushCachesAfterDesync() {
	if ss.effectiveSync() {
		return
	}
	if ss.haveCached {
		ss.applyCache()
		return
	}
	for _, child := range ss.surface.children {
		if sub, ok := child.Role().(*Subsurface); ok {
			sub.flushCachesAfterDesync()
		}
	}
}

// SetPosition stages the subsurface's position in the parent's surface
// coordinates, applied at the parent's next commit.
func (ss *Subsurface) SetPosition(x, y float64) {
	ss.posX, ss.posY = x, y
	ss.posPending = true
}

// PlaceAbove queues a z-order move placing the subsurface directly above
// other, which must be a sibling subsurface or the parent. The move
// replays at the parent's next commit, in the order requests were issued.
func (ss *Subsurface) PlaceAbove(other *Surface) error {
	return ss.place(other, true)
}

// PlaceBelow queues the symmetric move placing the subsurface directly
// below other.
func (ss *Subsurface) PlaceBelow(other *Surface) error {
	return ss.place(other, false)
}

func (ss *Subsurface) place(other *Surface, above bool) error {
	s := ss.surface
	sc := s.sc
	if other == ss.parent {
		// Relative to the parent's own content: above moves into the
		// bottom of the above-parent list, below into the top of the
		// under list.
		if above {
			ss.moveToList(ss.parent.view, false)
			sc.QueuePlaceBelow(s.view, subcompositor.Root)
		} else {
			ss.moveToList(ss.parent.underView, true)
			sc.QueuePlaceAbove(s.view, subcompositor.Root)
		}
		return nil
	}

	otherSub, ok := other.Role().(*Subsurface)
	if !ok || otherSub.parent != ss.parent {
		return ErrNotSibling
	}
	if otherSub.inUnderList {
		ss.moveToList(ss.parent.underView, true)
	} else {
		ss.moveToList(ss.parent.view, false)
	}
	if above {
		sc.QueuePlaceAbove(s.view, other.view)
	} else {
		sc.QueuePlaceBelow(s.view, other.view)
	}
	return nil
}

// moveToList reparents the subsurface's views into the parent's above or
// under child list when a placement request crosses the parent boundary.
func (ss *Subsurface) moveToList(listParent int, under bool) {
	if ss.inUnderList == under {
		return
	}
	s := ss.surface
	s.sc.ReparentView(s.underView, listParent)
	s.sc.ReparentView(s.view, listParent)
	ss.inUnderList = under
}

// applyParentCommit runs when the parent surface commits: the staged
// position takes effect, and in synchronized mode the cached state is
// promoted to current, cascading into this surface's own synchronized
// children.
func (ss *Subsurface) applyParentCommit() {
	s := ss.surface
	if ss.posPending {
		if s.bound {
			s.sc.SetPosition(s.view, ss.posX, ss.posY)
		}
		ss.posPending = false
	}
	if ss.haveCached {
		ss.applyCache()
	}
}

func (ss *Subsurface) applyCache() {
	s := ss.surface
	if ss.cachedFlags&FieldBuffer != 0 && s.current.Buffer != nil && s.current.Buffer != ss.cached.Buffer {
		s.releaseBuffer(s.current.Buffer)
	}
	s.current.apply(&ss.cached, ss.cachedFlags)
	ss.cachedFlags = 0
	ss.haveCached = false
	s.pushDrawInput()
	s.commitChildren()
}
