// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package rid

// nilIndex marks an absent arena slot.
const nilIndex = -1

// List is an arena-indexed intrusive list: elements live in a flat slice
// and are linked by index rather than by pointer, replacing the
// sentinel-node doubly linked list idiom the event loop's activity
// bookkeeping would otherwise use for things like per-buffer and
// per-target release-callback chains. Freed slots
// are recycled from a free list, so membership in several Lists over the
// same element's lifetime (e.g. a buffer's per-buffer, per-target and
// per-process activity records) costs one arena slot each, not three
// heap nodes plus sentinel bookkeeping.
type List[T any] struct {
	slots []slot[T]
	free  int // head of the free list, or nilIndex
	head  int // oldest element, or nilIndex
	tail  int
	len   int
}

type slot[T any] struct {
	value T
	prev  int
	next  int
	used  bool
}

// NewList creates an empty List.
func NewList[T any]() *List[T] {
	return &List[T]{free: nilIndex, head: nilIndex, tail: nilIndex}
}

// Len returns the number of live elements.
func (l *List[T]) Len() int { return l.len }

// PushBack inserts value at the tail and returns its arena index, which
// the caller keeps as a handle for Remove or Get.
func (l *List[T]) PushBack(value T) int {
	idx := l.alloc()
	l.slots[idx].value = value
	l.slots[idx].prev = l.tail
	l.slots[idx].next = nilIndex
	if l.tail != nilIndex {
		l.slots[l.tail].next = idx
	} else {
		l.head = idx
	}
	l.tail = idx
	l.len++
	return idx
}

// Get returns the value at idx. idx must have been returned by PushBack
// and not yet removed.
func (l *List[T]) Get(idx int) T {
	return l.slots[idx].value
}

// Set overwrites the value stored at idx.
func (l *List[T]) Set(idx int, value T) {
	l.slots[idx].value = value
}

// Remove unlinks idx from the list and recycles its arena slot.
func (l *List[T]) Remove(idx int) {
	s := &l.slots[idx]
	if !s.used {
		return
	}
	if s.prev != nilIndex {
		l.slots[s.prev].next = s.next
	} else {
		l.head = s.next
	}
	if s.next != nilIndex {
		l.slots[s.next].prev = s.prev
	} else {
		l.tail = s.prev
	}
	s.used = false
	s.next = l.free
	l.free = idx
	l.len--
}

// alloc returns the index of a slot ready to hold a new element, reusing
// a freed slot when one is available.
func (l *List[T]) alloc() int {
	if l.free != nilIndex {
		idx := l.free
		l.free = l.slots[idx].next
		l.slots[idx].used = true
		return idx
	}
	l.slots = append(l.slots, slot[T]{used: true})
	return len(l.slots) - 1
}

// Each calls f for every live element from head (oldest) to tail
// (newest), passing each element's arena index so f may call Remove.
func (l *List[T]) Each(f func(idx int, value T) bool) {
	for idx := l.head; idx != nilIndex; {
		next := l.slots[idx].next
		if !f(idx, l.slots[idx].value) {
			return
		}
		idx = next
	}
}

// Clear empties the list, discarding the underlying arena.
func (l *List[T]) Clear() {
	l.slots = nil
	l.free = nilIndex
	l.head = nilIndex
	l.tail = nilIndex
	l.len = 0
}
