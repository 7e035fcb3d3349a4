// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package render

import "github.com/portal-co/twelveto11-sub000/fence"

// Option configures a Renderer at construction.
type Option func(*rendererOptions)

type rendererOptions struct {
	host        Host
	registry    *Registry
	backendName string
	fences      *fence.Pool
	device      DeviceHandle
}

func defaultOptions() rendererOptions {
	return rendererOptions{registry: DefaultRegistry}
}

// WithHost injects an already-constructed Host, bypassing backend
// selection entirely. Primarily for tests.
func WithHost(h Host) Option {
	return func(o *rendererOptions) { o.host = h }
}

// WithRegistry overrides the backend registry consulted when no Host is
// injected directly.
func WithRegistry(r *Registry) Option {
	return func(o *rendererOptions) { o.registry = r }
}

// WithBackendName requests a specific registered backend by name instead
// of the highest-priority available one.
func WithBackendName(name string) Option {
	return func(o *rendererOptions) { o.backendName = name }
}

// WithFencePool shares an existing process-scoped fence pool instead of
// creating one from the fencer.
func WithFencePool(p *fence.Pool) Option {
	return func(o *rendererOptions) { o.fences = p }
}
