// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package surface

import "errors"

var (
	// ErrRoleTaken is returned by SetRole when the surface already holds
	// a different role; a surface holds at most one role for its
	// lifetime.
	ErrRoleTaken = errors.New("surface: surface already has a role")

	// ErrNotSubsurface is returned by subsurface-only operations invoked
	// on a surface whose role is something else.
	ErrNotSubsurface = errors.New("surface: surface is not a subsurface")

	// ErrOwnParent is returned when a subsurface names itself or one of
	// its descendants as its parent.
	ErrOwnParent = errors.New("surface: subsurface cannot be its own ancestor")

	// ErrNotSibling is returned by PlaceAbove/PlaceBelow when the other
	// surface is neither a sibling nor the parent.
	ErrNotSibling = errors.New("surface: placement reference is not a sibling or the parent")
)
