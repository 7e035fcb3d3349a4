// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

// Package fence implements the pool of kernel-shared futex-like fence
// pairs used to interlock buffer composite reads with client signaling:
// one half of each fence is held by the host display server, the other
// by this process, following the xshmfence futex-on-shared-memory
// convention.
package fence

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ServerID is the host-assigned handle for a fence, returned by Pool.ID.
// The free-list flag is packed into its high bit, so a
// server id read back from the host can be told apart from a pooled,
// not-yet-reused fence without a side table.
type ServerID uint64

const freeFlag ServerID = 1 << 63

// Free reports whether the free-list flag is set on id.
func (id ServerID) Free() bool { return id&freeFlag != 0 }

// fenceSize is the length of the anonymous shared page backing a fence's
// futex word; one page is the minimum mmap granularity on every platform
// xshmfence targets.
const fenceSize = 4096

// HostFencer creates a server-side synchronization fence bound to a
// shared-memory fd and returns the host's handle for it. The pool calls
// this once per freshly allocated Fence; implementations hand the fd's
// ownership to the display server and must not close it themselves.
type HostFencer func(fd int) (ServerID, error)

// Fence is a reusable kernel-shared fence pair: a mapped page holding a
// futex word and a server-side id. Fences are process-scoped
// and safe to reuse across unrelated targets but not across threads —
// Pool carries no internal locking.
type Fence struct {
	mem      []byte // mmap'd page containing the futex word
	serverID ServerID
	refCount int
	pooled   bool // on the free list
}

// ServerID returns the host-assigned handle for the fence.
func (f *Fence) ServerID() ServerID { return f.serverID }

// word returns the futex word as a 4-byte slice at the start of the page,
// matching xshmfence's layout.
func (f *Fence) word() []byte { return f.mem[:4] }

// Pool manages the process-wide collection of fences. It is not safe for
// concurrent use: the event loop never touches it from more than one
// goroutine.
type Pool struct {
	free    []*Fence
	fencer  HostFencer
	awaiter FutexAwaiter
}

// FutexAwaiter blocks until the futex word at addr transitions away from
// its expected zero value, or returns immediately if it already has.
// Production code backs this with FUTEX_WAIT against the mapped page;
// tests substitute a fake that returns immediately.
type FutexAwaiter interface {
	Await(word []byte) error
}

// Option configures a Pool at construction.
type Option func(*Pool)

// WithAwaiter overrides the futex wait strategy, primarily for testing.
func WithAwaiter(a FutexAwaiter) Option {
	return func(p *Pool) { p.awaiter = a }
}

// NewPool creates an empty fence pool. fencer is called whenever the free
// list is empty and a new fence pair must be created.
func NewPool(fencer HostFencer, opts ...Option) *Pool {
	p := &Pool{
		fencer:  fencer,
		awaiter: unixFutexAwaiter{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Acquire returns a fence with refcount 1, either recycled from the free
// list or freshly allocated via MemfdCreate + Mmap + the configured
// HostFencer.
func (p *Pool) Acquire() (*Fence, error) {
	if n := len(p.free); n > 0 {
		f := p.free[n-1]
		p.free = p.free[:n-1]
		f.pooled = false
		f.serverID &^= freeFlag
		f.refCount = 1
		logger().Debug("fence reused", "server_id", f.serverID)
		return f, nil
	}

	fd, err := unix.MemfdCreate("twelveto11-fence", unix.MFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("fence: memfd_create: %w", err)
	}
	defer unix.Close(fd)

	if err := unix.Ftruncate(fd, fenceSize); err != nil {
		return nil, fmt.Errorf("fence: ftruncate: %w", err)
	}

	mem, err := unix.Mmap(fd, 0, fenceSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("fence: mmap: %w", err)
	}

	hostFD, err := unix.Dup(fd)
	if err != nil {
		_ = unix.Munmap(mem)
		return nil, fmt.Errorf("fence: dup for host handoff: %w", err)
	}
	// The host server takes ownership of hostFD; do not close it here.
	unix.CloseOnExec(fd)

	id, err := p.fencer(hostFD)
	if err != nil {
		_ = unix.Munmap(mem)
		_ = unix.Close(hostFD)
		return nil, fmt.Errorf("fence: host fence creation: %w", err)
	}

	f := &Fence{mem: mem, serverID: id, refCount: 1}
	logger().Debug("fence created", "server_id", id)
	return f, nil
}

// Retain increments f's reference count.
func (p *Pool) Retain(f *Fence) {
	f.refCount++
}

// Await blocks on f's futex word until the server signals it, resets the
// word, and returns f to the free list once its refcount reaches zero
//. Await is the only pool operation that may
// block, and it must do so only in the underlying blocking syscall — no
// cooperative suspension happens here.
func (p *Pool) Await(f *Fence) error {
	if f.refCount <= 0 {
		return errors.New("fence: await on fence with non-positive refcount")
	}
	if err := p.awaiter.Await(f.word()); err != nil {
		return fmt.Errorf("fence: await: %w", err)
	}
	clear(f.word())

	f.refCount--
	if f.refCount == 0 {
		f.pooled = true
		f.serverID |= freeFlag
		p.free = append(p.free, f)
		logger().Debug("fence returned to free list", "server_id", f.serverID)
	}
	return nil
}

// ID returns the host-assigned handle for f.
func (p *Pool) ID(f *Fence) ServerID { return f.serverID }

// unixFutexAwaiter backs FutexAwaiter with the Linux futex syscall,
// waiting only while the word remains zero.
type unixFutexAwaiter struct{}

func (unixFutexAwaiter) Await(word []byte) error {
	for {
		v := le32(word)
		if v != 0 {
			return nil
		}
		_, _, errno := unix.Syscall6(unix.SYS_FUTEX, uintptr(wordAddr(word)),
			uintptr(unix.FUTEX_WAIT), uintptr(0), 0, 0, 0)
		if errno != 0 && errno != unix.EAGAIN && errno != unix.EINTR {
			return errno
		}
	}
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func wordAddr(word []byte) uintptr {
	return uintptr(unsafe.Pointer(&word[0]))
}
