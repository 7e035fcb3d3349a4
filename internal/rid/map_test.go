// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package rid

import "testing"

func TestMapGetSet(t *testing.T) {
	m := NewMap[uint32, string](0)

	m.Set(1, "a")
	val, ok := m.Get(1)
	if !ok || val != "a" {
		t.Fatalf("Get(1) = %q, %v; want %q, true", val, ok, "a")
	}

	if _, ok := m.Get(2); ok {
		t.Fatal("Get(2) reported present on empty key")
	}
}

func TestMapEviction(t *testing.T) {
	m := NewMap[int, int](2)

	m.Set(1, 10)
	m.Set(2, 20)
	if _, evicted := m.Set(3, 30); !evicted {
		t.Fatal("expected eviction when inserting beyond capacity")
	}

	if _, ok := m.Get(1); ok {
		t.Error("expected least recently used key 1 to be evicted")
	}
	if v, ok := m.Get(2); !ok || v != 20 {
		t.Errorf("Get(2) = %d, %v; want 20, true", v, ok)
	}
	if v, ok := m.Get(3); !ok || v != 30 {
		t.Errorf("Get(3) = %d, %v; want 30, true", v, ok)
	}
}

func TestMapRecencyProtectsFromEviction(t *testing.T) {
	m := NewMap[int, int](2)

	m.Set(1, 10)
	m.Set(2, 20)
	m.Get(1) // touch 1, making 2 the least recently used
	m.Set(3, 30)

	if _, ok := m.Get(2); ok {
		t.Error("expected key 2 to be evicted after being passed over")
	}
	if _, ok := m.Get(1); !ok {
		t.Error("expected key 1 to survive eviction after being touched")
	}
}

func TestMapDelete(t *testing.T) {
	m := NewMap[int, int](0)
	m.Set(1, 10)

	if !m.Delete(1) {
		t.Fatal("expected Delete to report removal")
	}
	if m.Delete(1) {
		t.Fatal("expected second Delete to report no-op")
	}
	if m.Len() != 0 {
		t.Fatalf("Len() = %d; want 0", m.Len())
	}
}

func TestMapOldest(t *testing.T) {
	m := NewMap[int, string](0)
	if _, _, ok := m.Oldest(); ok {
		t.Fatal("Oldest on empty map reported a value")
	}

	m.Set(1, "a")
	m.Set(2, "b")
	key, val, ok := m.Oldest()
	if !ok || key != 1 || val != "a" {
		t.Fatalf("Oldest() = %d, %q, %v; want 1, \"a\", true", key, val, ok)
	}
}

func TestMapRange(t *testing.T) {
	m := NewMap[int, int](0)
	m.Set(1, 10)
	m.Set(2, 20)
	m.Set(3, 30)

	var seen []int
	m.Range(func(key int, value int) bool {
		seen = append(seen, key)
		return true
	})
	want := []int{3, 2, 1} // most recently used first
	if len(seen) != len(want) {
		t.Fatalf("Range visited %v; want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("Range visited %v; want %v", seen, want)
		}
	}
}

func TestMapRangeStopsEarly(t *testing.T) {
	m := NewMap[int, int](0)
	m.Set(1, 10)
	m.Set(2, 20)

	count := 0
	m.Range(func(key, value int) bool {
		count++
		return false
	})
	if count != 1 {
		t.Fatalf("Range visited %d entries after stopping; want 1", count)
	}
}
