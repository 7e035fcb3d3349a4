// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package bufferreg

import (
	"math/bits"

	"golang.org/x/sys/unix"

	"github.com/portal-co/twelveto11-sub000/render"
	"github.com/portal-co/twelveto11-sub000/wire"
)

// scanlinePad is the stride alignment shm pools are rounded up to, 4
// bytes (32-bit words) matching the host's historical scanline padding.
const scanlinePad = 4

// ShmImportParams describes a client's shared-memory buffer attach
// request.
type ShmImportParams struct {
	Format   DrmFormat
	Width    int
	Height   int
	Offset   int
	Stride   int
	PoolSize int
	Fd       int
}

// HostShmImporter creates the host-side shm segment and pixmap-on-segment
// once a ShmImportParams has been validated. This is protocol dispatch
// glue and is supplied by the caller.
type HostShmImporter interface {
	CreateShmPixmap(dupFd int, params ShmImportParams) (pixmap, picture uint32, err error)
}

func roundUp(v, align int) int { return (v + align - 1) &^ (align - 1) }

// validateShm checks the arithmetic constraints required
// before trusting a client-supplied shm attach: non-negative offset and
// stride, stride matching the scanline-padded row size, and the pool
// large enough for offset + stride*height without the multiplication or
// addition overflowing.
func validateShm(p ShmImportParams) error {
	if p.Offset < 0 || p.Stride < 0 || p.Width <= 0 || p.Height <= 0 {
		return ErrInvalidShmParams
	}
	masks, ok := MasksFor(p.Format)
	if !ok {
		return ErrFormatNotSupported
	}
	wantStride := roundUp(p.Width*(masks.bpp/8), scanlinePad)
	if p.Stride != wantStride {
		return ErrInvalidShmParams
	}

	rowBytes, overflow := mulOverflows(p.Stride, p.Height)
	if overflow {
		return ErrInvalidShmParams
	}
	total, overflow := addOverflows(p.Offset, rowBytes)
	if overflow {
		return ErrInvalidShmParams
	}
	if total > p.PoolSize {
		return ErrInvalidShmParams
	}
	return nil
}

func mulOverflows(a, b int) (int, bool) {
	if a == 0 || b == 0 {
		return 0, false
	}
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > uint64(^uint(0)>>1) {
		return 0, true
	}
	return int(lo), false
}

func addOverflows(a, b int) (int, bool) {
	sum := a + b
	if sum < a || sum < b {
		return 0, true
	}
	return sum, false
}

// ImportShm validates params, duplicates the pool fd with close-on-exec
// set, and asks host to build the shm-backed pixmap, wrapping the result
// as a RenderBuffer registered with r.
func (reg *Registry) ImportShm(r *render.Renderer, host HostShmImporter, params ShmImportParams) (*render.RenderBuffer, error) {
	if err := validateShm(params); err != nil {
		return nil, err
	}

	dupFd, err := unix.Dup(params.Fd)
	if err != nil {
		return nil, err
	}
	if err := unix.CloseOnExec(dupFd); err != nil {
		unix.Close(dupFd)
		return nil, err
	}

	pixmap, picture, err := host.CreateShmPixmap(dupFd, params)
	if err != nil {
		unix.Close(dupFd)
		return nil, err
	}

	masks, _ := MasksFor(params.Format)
	flags := render.BufferFlags(0)
	if masks.aMask == 0 {
		flags |= render.FlagIsOpaque
	}
	buf := r.NewBuffer(wire.PixmapID(pixmap), wire.PictureID(picture), masks.depth, params.Width, params.Height, flags)
	logger().Debug("imported shm buffer", "width", params.Width, "height", params.Height, "format", params.Format)
	return buf, nil
}
