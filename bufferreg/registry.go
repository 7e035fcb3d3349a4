// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

// Package bufferreg imports client buffers — shared memory, dma-buf, and
// solid-fill single-pixel — into render.RenderBuffers, and negotiates the
// picture formats and drm modifiers advertised to clients.
package bufferreg

import "github.com/portal-co/twelveto11-sub000/wire"

// Registry is the buffer-import and format-negotiation component bound
// to a single host connection. It holds no RenderBuffers itself — those
// are owned by render.Renderer — only the bookkeeping needed to import
// them and the negotiated FormatTable clients query.
type Registry struct {
	table *FormatTable

	nextRoundTrip wire.RoundTripID
	pendingDmaBuf map[wire.RoundTripID]*pendingDmaBufImport
}

// NewRegistry creates a Registry around an already-negotiated format
// table (see BuildFormatTable).
func NewRegistry(table *FormatTable) *Registry {
	return &Registry{
		table:         table,
		pendingDmaBuf: make(map[wire.RoundTripID]*pendingDmaBufImport),
	}
}

// Formats exposes the negotiated format table for protocol-level
// advertisement.
func (reg *Registry) Formats() *FormatTable { return reg.table }
