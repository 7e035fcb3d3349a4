// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package rid

import "testing"

func TestListPushBackAndGet(t *testing.T) {
	l := NewList[string]()

	a := l.PushBack("a")
	b := l.PushBack("b")
	c := l.PushBack("c")

	if l.Len() != 3 {
		t.Fatalf("Len() = %d; want 3", l.Len())
	}
	if l.Get(a) != "a" || l.Get(b) != "b" || l.Get(c) != "c" {
		t.Fatal("Get did not return the pushed values by index")
	}
}

func TestListRemoveRecyclesSlot(t *testing.T) {
	l := NewList[int]()

	a := l.PushBack(1)
	l.PushBack(2)
	l.Remove(a)

	if l.Len() != 1 {
		t.Fatalf("Len() = %d; want 1", l.Len())
	}

	c := l.PushBack(3)
	if c != a {
		t.Fatalf("PushBack after Remove got index %d; want recycled index %d", c, a)
	}
}

func TestListEachOrderAndRemoveDuringIteration(t *testing.T) {
	l := NewList[int]()
	idx := make([]int, 5)
	for i := 0; i < 5; i++ {
		idx[i] = l.PushBack(i)
	}

	var seen []int
	l.Each(func(i int, v int) bool {
		seen = append(seen, v)
		if v == 2 {
			l.Remove(idx[2])
		}
		return true
	})

	want := []int{0, 1, 2, 3, 4}
	if len(seen) != len(want) {
		t.Fatalf("Each visited %v; want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("Each visited %v; want %v", seen, want)
		}
	}
	if l.Len() != 4 {
		t.Fatalf("Len() after removing during iteration = %d; want 4", l.Len())
	}
}

func TestListEachStopsEarly(t *testing.T) {
	l := NewList[int]()
	l.PushBack(1)
	l.PushBack(2)
	l.PushBack(3)

	count := 0
	l.Each(func(idx int, v int) bool {
		count++
		return v != 2
	})
	if count != 2 {
		t.Fatalf("Each visited %d elements before stopping; want 2", count)
	}
}

func TestListClear(t *testing.T) {
	l := NewList[int]()
	l.PushBack(1)
	l.PushBack(2)
	l.Clear()

	if l.Len() != 0 {
		t.Fatalf("Len() after Clear = %d; want 0", l.Len())
	}
	idx := l.PushBack(42)
	if l.Get(idx) != 42 {
		t.Fatal("list unusable after Clear")
	}
}
