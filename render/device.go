// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package render

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle is the render-device handle the buffer registry's
// get-render-device operation reports to dma-buf clients: the device
// whose allocator produced the buffers the host's DRI3 path can import.
//
// The handle is RECEIVED from the host glue that owns the DRI3
// connection, never created here — the same integration principle the
// rest of this module applies to Host. DeviceHandle is an alias for
// gpucontext.DeviceProvider so implementations interoperate with the
// gpucontext ecosystem unchanged.
type DeviceHandle = gpucontext.DeviceProvider

// NullDeviceHandle is the DeviceHandle used when no render node is
// available; dma-buf import is then limited to formats the host accepts
// with implicit modifiers.
type NullDeviceHandle struct{}

func (NullDeviceHandle) Device() gpucontext.Device   { return nil }
func (NullDeviceHandle) Queue() gpucontext.Queue     { return nil }
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

var _ DeviceHandle = NullDeviceHandle{}

// Device returns the render device handle the renderer was constructed
// with, NullDeviceHandle when the host glue supplied none.
func (r *Renderer) Device() DeviceHandle { return r.device }

// WithDevice installs the render-device handle received from the host
// glue.
func WithDevice(d DeviceHandle) Option {
	return func(o *rendererOptions) { o.device = d }
}
