// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package eventloop

import (
	"container/heap"
	"time"
)

// TimerID is an opaque timer handle. Removing an already-expired timer
// is a no-op.
type TimerID uint64

type timerEntry struct {
	deadline time.Time
	id       TimerID
	cb       func()
}

// timerHeap is the ordered priority queue driving the loop's timers.
type timerHeap []timerEntry

func (h timerHeap) Len() int            { return len(h) }
func (h timerHeap) Less(i, j int) bool  { return h[i].deadline.Before(h[j].deadline) }
func (h timerHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *timerHeap) Push(x any)         { *h = append(*h, x.(timerEntry)) }
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// AddTimer schedules cb to run once d has elapsed, returning its handle.
func (l *Loop) AddTimer(d time.Duration, cb func()) TimerID {
	l.nextTimerID++
	id := l.nextTimerID
	heap.Push(&l.timers, timerEntry{deadline: l.now().Add(d), id: id, cb: cb})
	return id
}

// RemoveTimer cancels id. Removal of an expired, already-fired or unknown
// timer is a no-op.
func (l *Loop) RemoveTimer(id TimerID) {
	for i := range l.timers {
		if l.timers[i].id == id {
			l.cancelled[id] = struct{}{}
			return
		}
	}
}

// drainTimers runs every timer whose deadline has passed. Callbacks may
// add fds or further timers; new timers due in the past fire within the
// same drain.
func (l *Loop) drainTimers() {
	now := l.now()
	for l.timers.Len() > 0 {
		next := l.timers[0]
		if _, gone := l.cancelled[next.id]; gone {
			heap.Pop(&l.timers)
			delete(l.cancelled, next.id)
			continue
		}
		if next.deadline.After(now) {
			return
		}
		heap.Pop(&l.timers)
		next.cb()
	}
}

// pollTimeout returns the millisecond timeout for the next poll: -1 to
// block indefinitely when no timer is pending, 0 when one is already
// due.
func (l *Loop) pollTimeout() int {
	for l.timers.Len() > 0 {
		next := l.timers[0]
		if _, gone := l.cancelled[next.id]; gone {
			heap.Pop(&l.timers)
			delete(l.cancelled, next.id)
			continue
		}
		d := next.deadline.Sub(l.now())
		if d <= 0 {
			return 0
		}
		ms := int(d.Milliseconds())
		if ms == 0 {
			ms = 1
		}
		return ms
	}
	return -1
}
