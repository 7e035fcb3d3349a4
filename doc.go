// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

// Package twelveto11 wires the core subsystems of a display-protocol
// translation compositor into a single process-scoped Context: a client of
// a legacy X11-family display server that simultaneously compositors for
// clients speaking a modern surface-based display protocol.
//
// The package itself holds only the ambient logging setup and the Context
// that replaces the ambient globals a C implementation of this design would
// reach for (the compositor singleton, the render device, the fence pool,
// the busfault tracker, the timer heap). Each subsystem lives in its own
// package: fence, render, bufferreg, surface, subcompositor, frameclock,
// synchelper, syncext, eventloop.
package twelveto11
