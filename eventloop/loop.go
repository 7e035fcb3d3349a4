// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

// Package eventloop implements the cooperative single-threaded scheduler:
// an ordered timer queue, readable/writable fd watches,
// and a step that drains host events, dispatches one batch of protocol
// client requests and flushes both connections.
package eventloop

import (
	"time"

	"golang.org/x/sys/unix"
)

// Direction selects which readiness a watch polls for.
type Direction uint8

const (
	Readable Direction = iota
	Writable
)

// Readiness reports which poll bits fired for a watch.
type Readiness struct {
	Readable bool
	Writable bool
	HangUp   bool
}

// WatchHandle identifies a registered fd watch.
type WatchHandle int

type watch struct {
	fd    int
	dir   Direction
	cb    func(Readiness)
	valid bool
}

// HostSource is the host display-server connection as the loop sees it:
// an fd to poll, a local event queue that may hold events read but not
// yet processed, and a write buffer to flush. Implementations are
// protocol dispatch glue, out of scope for this module.
type HostSource interface {
	FD() int
	// Pending reports whether events are already queued locally, in
	// which case the loop drains them before polling.
	Pending() bool
	Drain() error
	Flush() error
}

// ClientSource is the protocol-client side: the listening/connection fd
// set multiplexed behind one fd, a batched request dispatcher, and a
// flush.
type ClientSource interface {
	FD() int
	DispatchBatch() error
	Flush() error
}

// Loop is the cooperative scheduler. It is not safe for concurrent use;
// every callback runs on the goroutine calling Step or Run and must
// complete without blocking except on fence awaits.
type Loop struct {
	host    HostSource
	clients ClientSource

	timers      timerHeap
	nextTimerID TimerID
	cancelled   map[TimerID]struct{}

	watches []watch

	prePoll func()

	quit bool
	now  func() time.Time
}

// Option configures a Loop at construction.
type Option func(*Loop)

// WithHost attaches the host display-server connection.
func WithHost(h HostSource) Option {
	return func(l *Loop) { l.host = h }
}

// WithClients attaches the protocol-client source.
func WithClients(c ClientSource) Option {
	return func(l *Loop) { l.clients = c }
}

// WithPrePoll installs the hook run before each poll, where the
// selection-transfer glue drains completed transfers and disconnects
// clients flagged out-of-memory.
func WithPrePoll(f func()) Option {
	return func(l *Loop) { l.prePoll = f }
}

// WithNow overrides the loop's time source, for deterministic tests.
func WithNow(now func() time.Time) Option {
	return func(l *Loop) { l.now = now }
}

// New creates a Loop.
func New(opts ...Option) *Loop {
	l := &Loop{
		cancelled: make(map[TimerID]struct{}),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// AddWatch registers cb to run when fd becomes ready in the given
// direction. Read watches also fire on hang-up.
func (l *Loop) AddWatch(fd int, dir Direction, cb func(Readiness)) WatchHandle {
	for i := range l.watches {
		if !l.watches[i].valid {
			l.watches[i] = watch{fd: fd, dir: dir, cb: cb, valid: true}
			return WatchHandle(i)
		}
	}
	l.watches = append(l.watches, watch{fd: fd, dir: dir, cb: cb, valid: true})
	return WatchHandle(len(l.watches) - 1)
}

// RemoveWatch flags h for removal. The entry is reaped when the next
// poll set is compiled, so removal from inside a dispatch callback is
// safe and suppresses any not-yet-delivered readiness for it.
func (l *Loop) RemoveWatch(h WatchHandle) {
	if int(h) < len(l.watches) {
		l.watches[h].valid = false
	}
}

// Quit makes Run return after the current step.
func (l *Loop) Quit() { l.quit = true }

// Run steps the loop until Quit is called or a step fails.
func (l *Loop) Run() error {
	for !l.quit {
		if err := l.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Step performs one iteration of the cooperative loop, in a fixed
// order: due timers, the pre-poll hook, flush, locally
// queued host events (re-flushing after each drain), poll, dispatch.
func (l *Loop) Step() error {
	l.drainTimers()
	if l.prePoll != nil {
		l.prePoll()
	}

	for {
		if err := l.flushAll(); err != nil {
			return err
		}
		if l.host == nil || !l.host.Pending() {
			break
		}
		if err := l.host.Drain(); err != nil {
			return err
		}
	}

	fds, handles := l.compilePollSet()
	if len(fds) == 0 && l.timers.Len() == 0 {
		return nil
	}

	n, err := unix.Poll(fds, l.pollTimeout())
	if err != nil {
		if err == unix.EINTR {
			return nil
		}
		return err
	}
	if n <= 0 {
		return nil
	}
	return l.dispatch(fds, handles)
}

func (l *Loop) flushAll() error {
	if l.host != nil {
		if err := l.host.Flush(); err != nil {
			return err
		}
	}
	if l.clients != nil {
		if err := l.clients.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// compilePollSet builds the fd array for poll: the host connection fd
// (read), the client source fd (read), then every valid watch. Watches
// flagged for removal during a previous dispatch are reaped here.
func (l *Loop) compilePollSet() ([]unix.PollFd, []WatchHandle) {
	fds := make([]unix.PollFd, 0, 2+len(l.watches))
	if l.host != nil {
		fds = append(fds, unix.PollFd{Fd: int32(l.host.FD()), Events: unix.POLLIN | unix.POLLHUP})
	}
	if l.clients != nil {
		fds = append(fds, unix.PollFd{Fd: int32(l.clients.FD()), Events: unix.POLLIN | unix.POLLHUP})
	}
	handles := make([]WatchHandle, 0, len(l.watches))
	for i := range l.watches {
		w := &l.watches[i]
		if !w.valid {
			continue
		}
		ev := int16(unix.POLLIN | unix.POLLHUP)
		if w.dir == Writable {
			ev = unix.POLLOUT
		}
		fds = append(fds, unix.PollFd{Fd: int32(w.fd), Events: ev})
		handles = append(handles, WatchHandle(i))
	}
	return fds, handles
}

// dispatch processes readiness in the fixed order: host events first,
// then one batch of protocol-client requests, then user watches whose
// bits fired and which are still valid (a callback may remove a later
// watch).
func (l *Loop) dispatch(fds []unix.PollFd, handles []WatchHandle) error {
	idx := 0
	if l.host != nil {
		if fds[idx].Revents&(unix.POLLIN|unix.POLLHUP) != 0 {
			if err := l.host.Drain(); err != nil {
				return err
			}
		}
		idx++
	}
	if l.clients != nil {
		if fds[idx].Revents&(unix.POLLIN|unix.POLLHUP) != 0 {
			if err := l.clients.DispatchBatch(); err != nil {
				return err
			}
		}
		idx++
	}
	for i, h := range handles {
		re := fds[idx+i].Revents
		if re == 0 {
			continue
		}
		w := &l.watches[h]
		if !w.valid {
			continue
		}
		r := Readiness{
			Readable: w.dir == Readable && re&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0,
			Writable: w.dir == Writable && re&unix.POLLOUT != 0,
			HangUp:   re&unix.POLLHUP != 0,
		}
		if !r.Readable && !r.Writable && !r.HangUp {
			continue
		}
		logger().Debug("fd watch fired", "fd", w.fd, "readable", r.Readable, "writable", r.Writable)
		w.cb(r)
	}
	return nil
}
