// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package twelveto11

import (
	"time"

	"github.com/gogpu/wgpu/core"

	"github.com/portal-co/twelveto11-sub000/bufferreg"
	"github.com/portal-co/twelveto11-sub000/eventloop"
	"github.com/portal-co/twelveto11-sub000/fence"
	"github.com/portal-co/twelveto11-sub000/frameclock"
	"github.com/portal-co/twelveto11-sub000/internal/busfault"
	"github.com/portal-co/twelveto11-sub000/render"
)

// Context is the process-scoped object replacing the ambient globals the
// original design reaches for: the fence pool, the renderer, the buffer
// registry, the event loop, the busfault tracker and the global scale
// all live here and are handed to every subsystem at construction. No
// package in this module holds mutable package-level domain state.
type Context struct {
	Fences   *fence.Pool
	Renderer *render.Renderer
	Buffers  *bufferreg.Registry
	Loop     *eventloop.Loop
	Faults   *busfault.Tracker

	scale float64
}

type contextConfig struct {
	renderOpts []render.Option
	loopOpts   []eventloop.Option
	table      *bufferreg.FormatTable
	instance   *core.Instance
	scale      float64
}

// ContextOption configures a Context at construction.
type ContextOption func(*contextConfig)

// WithRenderOptions forwards options to the Renderer the context builds.
func WithRenderOptions(opts ...render.Option) ContextOption {
	return func(c *contextConfig) { c.renderOpts = append(c.renderOpts, opts...) }
}

// WithLoopOptions forwards options to the event loop, attaching the host
// and protocol-client sources.
func WithLoopOptions(opts ...eventloop.Option) ContextOption {
	return func(c *contextConfig) { c.loopOpts = append(c.loopOpts, opts...) }
}

// WithFormatTable installs an already-negotiated buffer format table;
// without it the context builds one with no host-advertised modifiers,
// which is only useful for tests.
func WithFormatTable(t *bufferreg.FormatTable) ContextOption {
	return func(c *contextConfig) { c.table = t }
}

// WithAdapterInstance supplies the wgpu instance whose adapters the
// format table cross-references when the context builds its own table;
// when a hardware adapter answers, formats none can sample advertise only
// linear and implicit modifiers. Ignored when WithFormatTable is also
// given.
func WithAdapterInstance(inst *core.Instance) ContextOption {
	return func(c *contextConfig) { c.instance = inst }
}

// WithScale sets the initial global scale factor.
func WithScale(scale float64) ContextOption {
	return func(c *contextConfig) { c.scale = scale }
}

// noModifiers is the format-table source used when the caller has not
// negotiated modifiers with the host yet.
type noModifiers struct{}

func (noModifiers) SupportedModifiers(bufferreg.DrmFormat) []bufferreg.DrmModifier { return nil }

// NewContext wires the core subsystems together around one host fencer.
func NewContext(fencer fence.HostFencer, opts ...ContextOption) (*Context, error) {
	cfg := contextConfig{scale: 1}
	for _, opt := range opts {
		opt(&cfg)
	}

	pool := fence.NewPool(fencer)
	renderOpts := append([]render.Option{render.WithFencePool(pool)}, cfg.renderOpts...)
	r, err := render.New(fencer, renderOpts...)
	if err != nil {
		return nil, err
	}

	table := cfg.table
	if table == nil {
		table = bufferreg.BuildFormatTable(noModifiers{}, nil, cfg.instance)
	}

	return &Context{
		Fences:   pool,
		Renderer: r,
		Buffers:  bufferreg.NewRegistry(table),
		Loop:     eventloop.New(cfg.loopOpts...),
		Faults:   busfault.NewTracker(),
		scale:    cfg.scale,
	}, nil
}

// Scale returns the global surface-to-device scale factor.
func (c *Context) Scale() float64 { return c.scale }

// SetScale updates the global scale factor. Roles observe the change
// through their Rescaler capability; propagating it is the window
// glue's responsibility.
func (c *Context) SetScale(scale float64) { c.scale = scale }

// Scheduler adapts the context's event loop timers to the frame clock's
// scheduler seam, so refresh prediction can arm end-frame deadlines on
// the same timer queue everything else uses.
func (c *Context) Scheduler() frameclock.Scheduler {
	return loopScheduler{loop: c.Loop}
}

type loopScheduler struct {
	loop *eventloop.Loop
}

func (s loopScheduler) ScheduleTimer(d time.Duration, cb func()) frameclock.TimerHandle {
	return frameclock.TimerHandle(s.loop.AddTimer(d, cb))
}

func (s loopScheduler) CancelTimer(h frameclock.TimerHandle) {
	s.loop.RemoveTimer(eventloop.TimerID(h))
}
