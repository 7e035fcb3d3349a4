// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package bufferreg

import "errors"

var (
	// ErrInvalidShmParams is returned when an shm-import request fails
	// the offset/stride/pool-size validation.
	ErrInvalidShmParams = errors.New("bufferreg: invalid shm buffer parameters")

	// ErrTooManyPlanes is returned when a dma-buf import names more than
	// four planes.
	ErrTooManyPlanes = errors.New("bufferreg: dma-buf import accepts at most four planes")

	// ErrFormatNotSupported is returned when a format has no entry in the
	// negotiated FormatTable.
	ErrFormatNotSupported = errors.New("bufferreg: format not supported")
)

// DmaBufImportError wraps a host-reported failure to build an on-host
// pixmap from dma-buf planes. All
// plane fds have already been closed by the time this error is returned.
type DmaBufImportError struct {
	Err error
}

func (e *DmaBufImportError) Error() string { return "bufferreg: dma-buf import failed: " + e.Err.Error() }
func (e *DmaBufImportError) Unwrap() error { return e.Err }
