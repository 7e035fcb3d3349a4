// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

// Package busfault guards reads of client shared-memory pools against
// truncation: a region registered with Record must be readable without
// crashing the process even after its backing mapping has been
// invalidated.
//
// The C design this replaces consults an AVL tree of address ranges from
// inside a SIGBUS handler, with the signal blocked around every
// mutation. The Go rendition publishes a copy-on-write snapshot of the
// sorted region set through an atomic pointer and turns the fault into a
// recoverable panic via debug.SetPanicOnFault, so the lookup happens in
// ordinary goroutine context with no signal-masking discipline at all.
package busfault

import (
	"runtime/debug"
	"sort"
	"sync"
	"sync/atomic"
)

type region struct {
	base uintptr
	end  uintptr
}

// Tracker is the process-scoped set of guarded address ranges.
type Tracker struct {
	mu       sync.Mutex
	snapshot atomic.Pointer[[]region]
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	t := &Tracker{}
	t.snapshot.Store(&[]region{})
	return t
}

// Record registers [base, base+length) as a guarded range. Recording a
// base already present replaces its length.
func (t *Tracker) Record(base uintptr, length int) {
	if length <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	old := *t.snapshot.Load()
	next := make([]region, 0, len(old)+1)
	for _, r := range old {
		if r.base != base {
			next = append(next, r)
		}
	}
	next = append(next, region{base: base, end: base + uintptr(length)})
	sort.Slice(next, func(i, j int) bool { return next[i].base < next[j].base })
	t.snapshot.Store(&next)
}

// Unrecord removes the range registered at base, reporting whether one
// was present.
func (t *Tracker) Unrecord(base uintptr) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	old := *t.snapshot.Load()
	next := make([]region, 0, len(old))
	found := false
	for _, r := range old {
		if r.base == base {
			found = true
			continue
		}
		next = append(next, r)
	}
	if found {
		t.snapshot.Store(&next)
	}
	return found
}

// Contains reports whether addr falls inside a registered range. It
// reads the published snapshot without locking.
func (t *Tracker) Contains(addr uintptr) bool {
	regions := *t.snapshot.Load()
	i := sort.Search(len(regions), func(i int) bool { return regions[i].end > addr })
	return i < len(regions) && regions[i].base <= addr
}

// Len returns the number of registered ranges.
func (t *Tracker) Len() int { return len(*t.snapshot.Load()) }

// addressable is the fault-address accessor the runtime attaches to the
// error value a guarded memory fault panics with.
type addressable interface {
	Addr() uintptr
}

// Guard runs access with memory faults converted to panics and swallows
// a fault landing inside a registered range: access simply stops at the
// faulting read and Guard reports that it was cut short, leaving
// whatever was read so far as undefined content. A fault outside every registered
// range is re-raised unchanged.
func (t *Tracker) Guard(access func()) (faulted bool) {
	old := debug.SetPanicOnFault(true)
	defer debug.SetPanicOnFault(old)
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if ae, ok := r.(addressable); ok && t.Contains(ae.Addr()) {
			faulted = true
			return
		}
		panic(r)
	}()
	access()
	return false
}
