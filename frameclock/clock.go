// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

// Package frameclock implements the per-window frame-pacing state machine:
// it owns the two host-exposed sync counters' ids, the
// odd/urgent-encoded frame id sequence, refresh-rate prediction, and the
// sync-request freeze/unfreeze dance, hiding the host's wrapping 32-bit
// millisecond clock behind a monotonic 64-bit microsecond extension.
package frameclock

import (
	"time"
)

// State is one of the four frame-clock states.
type State uint8

const (
	Idle State = iota
	Drawing
	Waiting
	Frozen
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Drawing:
		return "drawing"
	case Waiting:
		return "waiting"
	case Frozen:
		return "frozen"
	default:
		return "unknown"
	}
}

// Scheduler is the seam frameclock uses to arrange for a callback to run
// after a delay, backed by the event loop's timer queue.
// Tests substitute a fake that never actually fires.
type Scheduler interface {
	ScheduleTimer(d time.Duration, cb func()) TimerHandle
	CancelTimer(h TimerHandle)
}

// TimerHandle is an opaque timer identifier.
type TimerHandle uint64

// noopScheduler discards every timer request; used when no Scheduler is
// configured, degrading refresh prediction to "end-frame is driven
// directly by the caller".
type noopScheduler struct{}

func (noopScheduler) ScheduleTimer(time.Duration, func()) TimerHandle { return 0 }
func (noopScheduler) CancelTimer(TimerHandle)                         {}

// SyncCounters are the host-assigned ids of the two sync counters the
// frame clock owns: the primary, exposed to the window manager via
// _NET_WM_SYNC_REQUEST_COUNTER, and the secondary, mutated only by this
// process.
type SyncCounters struct {
	Primary   uint64
	Secondary uint64
}

// Clock is the per-window frame-pacing state machine.
type Clock struct {
	state State

	counters SyncCounters

	frameBase      uint64 // kept as a multiple of 4; see nextFrameID
	drawingFrameID uint64
	lastCompleteID uint64

	pendingConfigureID uint64 // target counter value requested by the last sync-request
	ackedConfigureID   uint64 // highest counter value acknowledged via CommitAckConfigure
	haveSyncValue      bool

	lastServerTimeRaw uint32
	haveServerTime    bool
	serverTimeUS      uint64
	lastObservedAt    time.Time

	refreshInterval  time.Duration
	frameDelay       time.Duration
	presentationTime time.Time

	inFrame             bool
	needConfigure       bool
	frozen              bool
	frozenUntilEndFrame bool
	endFrameCalled      bool
	predictRefresh      bool

	afterFrame []func()

	scheduler      Scheduler
	endFrameTimer  TimerHandle
	haveEndTimer   bool
	forceEmptyFrame func()

	now func() time.Time
}

// Option configures a Clock at construction.
type Option func(*Clock)

// WithScheduler installs the timer scheduler backing refresh prediction.
func WithScheduler(s Scheduler) Option {
	return func(c *Clock) { c.scheduler = s }
}

// WithForceEmptyFrame installs the callback invoked when a sync-request's
// target counter value has already been reached, so a frame is forced to
// push fresh contents instead of freezing.
func WithForceEmptyFrame(cb func()) Option {
	return func(c *Clock) { c.forceEmptyFrame = cb }
}

// WithNow overrides the clock's time source, for deterministic tests.
func WithNow(now func() time.Time) Option {
	return func(c *Clock) { c.now = now }
}

// New creates an Idle Clock bound to counters.
func New(counters SyncCounters, opts ...Option) *Clock {
	c := &Clock{
		state:    Idle,
		counters: counters,
		scheduler: noopScheduler{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State reports the clock's current state.
func (c *Clock) State() State { return c.state }

// Counters returns the host-assigned sync counter ids.
func (c *Clock) Counters() SyncCounters { return c.counters }

// SetPredictRefresh enables or disables vblank-deadline scheduling after
// end-frame, frame-drawn and frame-timings events.
func (c *Clock) SetPredictRefresh(enabled bool) { c.predictRefresh = enabled }

// OnAfterFrame registers a callback run once a frame completes, whether
// via NoteFrameDrawn or an immediate freeze.
func (c *Clock) OnAfterFrame(cb func()) {
	c.afterFrame = append(c.afterFrame, cb)
}

func (c *Clock) runAfterFrame() {
	cbs := c.afterFrame
	c.afterFrame = nil
	for _, cb := range cbs {
		cb()
	}
}

// nextFrameID produces the next odd frame id, encoding urgency in its low
// two bits (value mod 4 == 3 iff urgent). frameBase is
// kept as a multiple of four between calls so the +1/+3 step always lands
// on the right residue regardless of the previous call's urgency.
func (c *Clock) nextFrameID(urgent bool) uint64 {
	inc := uint64(1)
	if urgent {
		inc = 3
	}
	id := c.frameBase + inc
	c.frameBase = (id/4 + 1) * 4
	return id
}

// StartFrame transitions Idle -> Drawing, allocating the next frame id.
// urgent asks the host to redraw immediately rather than waiting for the
// next natural vblank.
func (c *Clock) StartFrame(urgent bool) (uint64, error) {
	if c.state != Idle {
		return 0, ErrFrameInProgress
	}
	id := c.nextFrameID(urgent)
	c.drawingFrameID = id
	c.state = Drawing
	c.inFrame = true
	c.endFrameCalled = false
	logger().Debug("frame started", "id", id, "urgent", urgent)
	return id, nil
}

// EndFrame transitions Drawing -> Waiting, or directly to Frozen if a
// sync-request arrived mid-frame and was deferred.
func (c *Clock) EndFrame() error {
	if c.state != Drawing {
		return ErrNoFrameInProgress
	}
	c.endFrameCalled = true
	c.inFrame = false
	if c.frozenUntilEndFrame {
		c.frozenUntilEndFrame = false
		c.freezeNow(c.pendingConfigureID)
		return nil
	}
	c.state = Waiting
	c.scheduleRefreshPrediction()
	return nil
}

// NoteFrameDrawn handles the host's frame-drawn event. A ready id not
// matching the frame currently being waited on is a stale event from an
// earlier frame and is ignored. With refresh prediction enabled and frame
// timings known, it schedules the end-frame timer for the next vblank
// deadline.
func (c *Clock) NoteFrameDrawn(id uint64) {
	if c.state != Waiting || id != c.drawingFrameID {
		return
	}
	c.lastCompleteID = id
	c.state = Idle
	c.scheduleRefreshPrediction()
	logger().Debug("frame drawn", "id", id)
	c.runAfterFrame()
}

// NoteFrameTimings records the host's refresh interval, frame delay, and
// presentation time for the frame just completed, and reschedules the
// refresh-prediction timer if enabled.
func (c *Clock) NoteFrameTimings(refreshInterval, frameDelay time.Duration, presentation time.Time) {
	c.refreshInterval = refreshInterval
	c.frameDelay = frameDelay
	c.presentationTime = presentation
	if c.state == Waiting {
		c.scheduleRefreshPrediction()
	}
}

func (c *Clock) scheduleRefreshPrediction() {
	c.cancelEndFrameTimer()
	if !c.predictRefresh || c.refreshInterval <= 0 || c.presentationTime.IsZero() {
		return
	}
	deadline := c.presentationTime.Add(c.refreshInterval - c.frameDelay)
	delay := deadline.Sub(c.now())
	if delay < 0 {
		delay = 0
	}
	c.endFrameTimer = c.scheduler.ScheduleTimer(delay, func() {
		if c.state == Drawing {
			_ = c.EndFrame()
		}
	})
	c.haveEndTimer = true
}

func (c *Clock) cancelEndFrameTimer() {
	if c.haveEndTimer {
		c.scheduler.CancelTimer(c.endFrameTimer)
		c.haveEndTimer = false
	}
}

// HandleSyncRequest processes a host-delivered synchronized-configure
// request carrying the counter value the window manager wants to observe
// once the compositor has caught up.
func (c *Clock) HandleSyncRequest(value uint64) {
	c.pendingConfigureID = value
	c.haveSyncValue = true
	c.needConfigure = true

	switch c.state {
	case Drawing:
		if c.endFrameCalled {
			// A sync-request landed after end_frame was already called
			// for this frame but before the Waiting transition settled:
			// flush the in-flight accounting and freeze now rather than
			// waiting for a second end_frame that will never come.
			c.cancelEndFrameTimer()
			c.runAfterFrame()
			c.freezeNow(value)
			return
		}
		c.frozenUntilEndFrame = true
	case Idle:
		c.runAfterFrame()
		c.freezeNow(value)
	case Waiting:
		c.freezeNow(value)
	case Frozen:
		// Already frozen; the new target value was recorded above and
		// will be checked against the next CommitAckConfigure.
	}
}

func (c *Clock) freezeNow(value uint64) {
	if value <= c.ackedConfigureID {
		logger().Debug("sync-request already caught up, forcing empty frame", "value", value)
		if c.forceEmptyFrame != nil {
			c.forceEmptyFrame()
		}
		return
	}
	c.state = Frozen
	c.frozen = true
	logger().Debug("frame clock frozen", "target", value)
}

// Unfreeze transitions Frozen -> Idle without waiting for a matching
// configure acknowledgement, for callers that know the freeze condition
// no longer applies.
func (c *Clock) Unfreeze() error {
	if c.state != Frozen {
		return ErrNotFrozen
	}
	c.state = Idle
	c.frozen = false
	c.needConfigure = false
	return nil
}

// CommitAckConfigure records that the window manager has acknowledged
// configure id, transitioning Frozen -> Idle once the acknowledged id has
// caught up with the pending target.
func (c *Clock) CommitAckConfigure(id uint64) {
	if id > c.ackedConfigureID {
		c.ackedConfigureID = id
	}
	if c.state == Frozen && c.ackedConfigureID >= c.pendingConfigureID {
		c.state = Idle
		c.frozen = false
		c.needConfigure = false
	}
}

// NeedConfigure reports whether a synchronized configure is outstanding.
func (c *Clock) NeedConfigure() bool { return c.needConfigure }

// InFrame reports whether a frame is currently being drawn.
func (c *Clock) InFrame() bool { return c.inFrame }

// Frozen reports whether the clock is withholding new frames.
func (c *Clock) Frozen() bool { return c.frozen }

// PredictRefresh reports whether refresh-rate prediction is enabled.
func (c *Clock) PredictRefresh() bool { return c.predictRefresh }

// LastCompleteID returns the id of the last frame acknowledged by the
// host as drawn.
func (c *Clock) LastCompleteID() uint64 { return c.lastCompleteID }

// RefreshInterval, FrameDelay and PresentationTime expose the most recent
// values recorded by NoteFrameTimings.
func (c *Clock) RefreshInterval() time.Duration  { return c.refreshInterval }
func (c *Clock) FrameDelay() time.Duration       { return c.frameDelay }
func (c *Clock) PresentationTime() time.Time     { return c.presentationTime }

// ExtendTimestamp folds a host-reported 32-bit millisecond timestamp into
// a monotonic 64-bit microsecond clock, trusting the new value when it is
// greater in the modular sense and otherwise advancing by the elapsed
// monotonic delta.
func (c *Clock) ExtendTimestamp(rawMS uint32) uint64 {
	now := c.now()
	if !c.haveServerTime {
		c.haveServerTime = true
		c.lastServerTimeRaw = rawMS
		c.serverTimeUS = uint64(rawMS) * 1000
		c.lastObservedAt = now
		return c.serverTimeUS
	}

	diff := int32(rawMS - c.lastServerTimeRaw)
	if diff > 0 {
		c.serverTimeUS += uint64(diff) * 1000
		c.lastServerTimeRaw = rawMS
	} else {
		c.serverTimeUS += uint64(now.Sub(c.lastObservedAt).Microseconds())
	}
	c.lastObservedAt = now
	return c.serverTimeUS
}
