// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package wire

import "fmt"

// WindowID is an opaque host-assigned window identifier.
type WindowID uint32

// PixmapID is an opaque host-assigned pixmap identifier.
type PixmapID uint32

// PictureID is an opaque host-assigned XRender picture identifier.
type PictureID uint32

// FenceID is an opaque host-assigned XSync fence identifier.
type FenceID uint32

// SurfaceID identifies a client-protocol surface object, scoped to the
// client connection that created it.
type SurfaceID uint64

// RoundTripID tags a request with the server round-trip it was issued
// against, so completion callbacks can
// be matched back to the request that produced them.
type RoundTripID uint64

func (w WindowID) String() string     { return fmt.Sprintf("window(%d)", uint32(w)) }
func (p PixmapID) String() string     { return fmt.Sprintf("pixmap(%d)", uint32(p)) }
func (p PictureID) String() string    { return fmt.Sprintf("picture(%d)", uint32(p)) }
func (f FenceID) String() string      { return fmt.Sprintf("fence(%d)", uint32(f)) }
func (s SurfaceID) String() string    { return fmt.Sprintf("surface(%d)", uint64(s)) }
func (r RoundTripID) String() string  { return fmt.Sprintf("rt(%d)", uint64(r)) }
