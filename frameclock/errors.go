// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package frameclock

import "errors"

var (
	// ErrFrameInProgress is returned by StartFrame when the clock is not
	// Idle.
	ErrFrameInProgress = errors.New("frameclock: frame already in progress")
	// ErrNoFrameInProgress is returned by EndFrame when the clock is not
	// Drawing.
	ErrNoFrameInProgress = errors.New("frameclock: no frame in progress")
	// ErrNotFrozen is returned by Unfreeze when the clock is not Frozen.
	ErrNotFrozen = errors.New("frameclock: clock is not frozen")
)
