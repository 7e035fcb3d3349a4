// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package twelveto11

import (
	"testing"
	"time"

	"github.com/gogpu/wgpu/core"

	"github.com/portal-co/twelveto11-sub000/fence"
	"github.com/portal-co/twelveto11-sub000/frameclock"
)

func testFencer(fd int) (fence.ServerID, error) { return fence.ServerID(fd), nil }

func TestNewContextWiresSubsystems(t *testing.T) {
	c, err := NewContext(testFencer)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	if c.Fences == nil || c.Renderer == nil || c.Buffers == nil || c.Loop == nil || c.Faults == nil {
		t.Fatalf("subsystem left nil: %+v", c)
	}
	if c.Renderer.Fences() != c.Fences {
		t.Fatal("renderer not sharing the context fence pool")
	}
	if c.Scale() != 1 {
		t.Fatalf("default scale = %v, want 1", c.Scale())
	}
	if got := len(c.Buffers.Formats().Formats()); got == 0 {
		t.Fatal("default format table is empty")
	}
}

func TestNewContextProbesAdapterInstance(t *testing.T) {
	instance := core.NewInstanceWithMock(nil)
	defer instance.Destroy()

	c, err := NewContext(testFencer, WithAdapterInstance(instance))
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	formats := c.Buffers.Formats().Formats()
	if len(formats) == 0 {
		t.Fatal("probed format table is empty")
	}
	for _, f := range formats {
		if len(f.Modifiers) < 2 {
			t.Fatalf("format %v lost its linear/implicit modifiers: %+v", f.Drm, f.Modifiers)
		}
	}
}

func TestSchedulerDrivesFrameClockTimers(t *testing.T) {
	c, err := NewContext(testFencer, WithScale(2))
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	if c.Scale() != 2 {
		t.Fatalf("scale = %v, want 2", c.Scale())
	}

	sched := c.Scheduler()
	fired := false
	h := sched.ScheduleTimer(time.Hour, func() { fired = true })
	sched.CancelTimer(h)
	if err := c.Loop.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if fired {
		t.Fatal("cancelled scheduler timer fired")
	}

	var _ frameclock.Scheduler = sched
}
