// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"github.com/portal-co/twelveto11-sub000/render"
	"github.com/portal-co/twelveto11-sub000/wire"
)

// RoleKind is the semantic category a surface belongs to. A surface
// holds at most one role for its lifetime; re-attaching the same kind is
// permitted, switching kinds is a protocol error.
type RoleKind uint8

const (
	RoleNone RoleKind = iota
	RoleSubsurface
	RoleTopLevel
	RolePopup
	RoleIcon
	RoleCursor
	RoleDragIcon
)

func (k RoleKind) String() string {
	switch k {
	case RoleNone:
		return "none"
	case RoleSubsurface:
		return "subsurface"
	case RoleTopLevel:
		return "toplevel"
	case RolePopup:
		return "popup"
	case RoleIcon:
		return "icon"
	case RoleCursor:
		return "cursor"
	case RoleDragIcon:
		return "drag-icon"
	default:
		return "unknown"
	}
}

// Role is the capability set a role implementation provides to its
// surface. The closed set of role variants (subsurface here; top-level,
// popup, icon, cursor and drag-icon in the window-manager glue outside
// this module) each implement it; the surface calls through it at the
// points its pending state changes shape.
//
// Optional capabilities are separate interfaces (Activator, Rescaler,
// SubframeObserver, ChildSyncObserver) checked with type assertions at
// the call site, so a role only carries the hooks it has a use for.
type Role interface {
	// Kind identifies the role variant.
	Kind() RoleKind

	// Setup runs once when the role is attached to s.
	Setup(s *Surface)

	// Commit runs during s.Commit, after pending state has been applied
	// to current state, letting the role replay role-specific queued
	// actions (subsurface z-order, position) and push the resulting draw
	// state into the scene.
	Commit(s *Surface)

	// EarlyCommit runs during s.Commit before pending state is applied,
	// for roles that must observe the pre-commit state (a synchronized
	// subsurface redirecting the commit into its cache).
	// It reports whether the commit should continue into the normal
	// pending-to-current application.
	EarlyCommit(s *Surface) bool

	// ReleaseBuffer is invoked when buf stops being s's current buffer,
	// so the role can route the release notification to the client once
	// the renderer reports the buffer idle.
	ReleaseBuffer(s *Surface, buf *render.RenderBuffer)

	// Window returns the host window backing the role's render target,
	// or zero when the role draws into another surface's window.
	Window() wire.WindowID

	// Teardown runs once when the role is detached or the surface is
	// destroyed.
	Teardown(s *Surface)
}

// Activator is the optional activation capability (xdg_activation); only
// roles backed by a host window implement it.
type Activator interface {
	Activate(s *Surface, token string)
}

// Rescaler is the optional capability for roles that react to a change
// of the global scale factor.
type Rescaler interface {
	Rescale(s *Surface, scale float64)
	ParentRescale(s *Surface, scale float64)
}

// SubframeObserver is the optional capability for roles notified when a
// desynchronized descendant starts and finishes an independent subframe.
type SubframeObserver interface {
	Subframe(s *Surface, child *Surface)
	EndSubframe(s *Surface, child *Surface)
}

// ChildSyncObserver is the optional capability for roles notified when a
// child subsurface switches synchronization mode.
type ChildSyncObserver interface {
	NoteChildSynced(s *Surface, child *Surface)
	NoteDesyncChild(s *Surface, child *Surface)
}
