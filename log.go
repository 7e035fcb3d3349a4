// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package twelveto11

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/portal-co/twelveto11-sub000/bufferreg"
	"github.com/portal-co/twelveto11-sub000/eventloop"
	"github.com/portal-co/twelveto11-sub000/fence"
	"github.com/portal-co/twelveto11-sub000/frameclock"
	"github.com/portal-co/twelveto11-sub000/render"
	"github.com/portal-co/twelveto11-sub000/subcompositor"
	"github.com/portal-co/twelveto11-sub000/surface"
	"github.com/portal-co/twelveto11-sub000/syncext"
	"github.com/portal-co/twelveto11-sub000/synchelper"
)

// nopHandler discards every record without formatting it. Enabled always
// returns false so the hot composite path never pays for log formatting
// when no logger has been installed.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger installs the logger used by every subsystem package (fence,
// render, bufferreg, surface, subcompositor, frameclock, synchelper,
// syncext, eventloop). Passing nil restores the default silent behavior.
//
// Log levels in use:
//   - [slog.LevelDebug]: per-frame scheduling decisions, buffer activity
//     bookkeeping.
//   - [slog.LevelWarn]: recoverable host-protocol errors.
//
// SetLogger is safe to call concurrently with logging from the event loop
// goroutine.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	fence.SetLogger(l)
	render.SetLogger(l)
	bufferreg.SetLogger(l)
	surface.SetLogger(l)
	subcompositor.SetLogger(l)
	frameclock.SetLogger(l)
	synchelper.SetLogger(l)
	syncext.SetLogger(l)
	eventloop.SetLogger(l)
}

// Logger returns the currently installed logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
