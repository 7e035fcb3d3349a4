// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package syncext

import "errors"

var (
	// ErrAcquireFenceWithoutBuffer is the protocol error signaled when a
	// surface commits an acquire fence without a pending buffer attach.
	ErrAcquireFenceWithoutBuffer = errors.New("syncext: acquire fence set without a pending buffer attach")
	// ErrAcquireFenceAlreadyPending is signaled when set_acquire_fence is
	// requested twice before a commit consumes the first fd.
	ErrAcquireFenceAlreadyPending = errors.New("syncext: acquire fence already pending")
	// ErrReleaseAlreadySent is signaled when a release object is
	// registered twice before a commit consumes the first one.
	ErrReleaseAlreadySent = errors.New("syncext: release object already pending")
)
