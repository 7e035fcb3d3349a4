// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package bufferreg

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/core"
	"github.com/gogpu/wgpu/types"
)

// DrmFormat is a drm fourcc code, the wire vocabulary for dma-buf imports
// and format-negotiation advertisements.
type DrmFormat uint32

// The formats wl_shm must always advertise, plus the handful a
// DRI3/Present host commonly advertises alongside them.
const (
	DrmFormatARGB8888 DrmFormat = 0x34325241 // 'AR24'
	DrmFormatXRGB8888 DrmFormat = 0x34325258 // 'XR24'
	DrmFormatABGR8888 DrmFormat = 0x34324241 // 'AB24'
	DrmFormatXBGR8888 DrmFormat = 0x34324258 // 'XB24'
)

// DrmModifier is a drm format modifier code.
type DrmModifier uint64

// DrmFormatModLinear is the modifier meaning "no tiling, no compression" —
// every format entry carries it even when the host or GPU reports no
// vendor-specific modifiers.
const DrmFormatModLinear DrmModifier = 0

// drmModifierInvalid is the sentinel the implicit-modifier entry carries,
// meaning "let the allocator pick, the exact tiling is opaque to us".
const drmModifierInvalid DrmModifier = 0x00ffffffffffffff

// channelMasks captures the {depth, channel masks, bpp} key picture
// formats are negotiated against.
type channelMasks struct {
	depth   int
	bpp     int
	rMask   uint32
	gMask   uint32
	bMask   uint32
	aMask   uint32
}

// formatEntry binds one drm fourcc to the picture-format shape it
// corresponds to and the gputypes.TextureFormat used for GPU-side
// cross-reference.
type formatEntry struct {
	drm     DrmFormat
	masks   channelMasks
	texture gputypes.TextureFormat
}

var knownFormats = []formatEntry{
	{
		drm:     DrmFormatARGB8888,
		masks:   channelMasks{depth: 32, bpp: 32, rMask: 0x00ff0000, gMask: 0x0000ff00, bMask: 0x000000ff, aMask: 0xff000000},
		texture: gputypes.TextureFormatBGRA8Unorm,
	},
	{
		drm:     DrmFormatXRGB8888,
		masks:   channelMasks{depth: 24, bpp: 32, rMask: 0x00ff0000, gMask: 0x0000ff00, bMask: 0x000000ff},
		texture: gputypes.TextureFormatBGRA8Unorm,
	},
	{
		drm:     DrmFormatABGR8888,
		masks:   channelMasks{depth: 32, bpp: 32, rMask: 0x000000ff, gMask: 0x0000ff00, bMask: 0x00ff0000, aMask: 0xff000000},
		texture: gputypes.TextureFormatRGBA8Unorm,
	},
	{
		drm:     DrmFormatXBGR8888,
		masks:   channelMasks{depth: 24, bpp: 32, rMask: 0x000000ff, gMask: 0x0000ff00, bMask: 0x00ff0000},
		texture: gputypes.TextureFormatRGBA8Unorm,
	},
}

// FormatDescriptor is one negotiated entry: a drm format together with
// every modifier the host (or the adapter probe) reports supporting for
// it, plus the implicit-modifier entry.
type FormatDescriptor struct {
	Drm       DrmFormat
	Depth     int
	Bpp       int
	Modifiers []DrmModifier
}

// ModifierSource supplies the set of modifiers a host advertises
// supporting for a given drm format, e.g. via DRI3 GetSupportedModifiers.
type ModifierSource interface {
	SupportedModifiers(format DrmFormat) []DrmModifier
}

// FormatTable is the buffer registry's negotiated picture-format catalog.
type FormatTable struct {
	entries []FormatDescriptor
	byDrm   map[DrmFormat]int
}

// BuildFormatTable enumerates the known drm formats, asks src for the
// modifiers the host supports for each, appends extraModifiers (the
// config-resource hook), and always appends the implicit-modifier entry.
// instance, when non-nil, is probed via wgpu/core adapter enumeration:
// when at least one hardware adapter answers, a format none of them can
// sample keeps only its linear and implicit modifier entries; when no
// usable adapter answers, the cross-reference is skipped and every
// modifier is kept. Formats themselves are never excluded — format
// negotiation does not depend on GPU presence.
func BuildFormatTable(src ModifierSource, extraModifiers []DrmModifier, instance *core.Instance) *FormatTable {
	t := &FormatTable{byDrm: make(map[DrmFormat]int, len(knownFormats))}

	var adapterFormats map[gputypes.TextureFormat]bool
	if instance != nil {
		adapterFormats = probeAdapterFormats(instance)
	}

	for _, f := range knownFormats {
		mods := append([]DrmModifier{DrmFormatModLinear}, src.SupportedModifiers(f.drm)...)
		mods = append(mods, extraModifiers...)
		mods = dedupModifiers(mods)
		mods = append(mods, drmModifierInvalid)

		if adapterFormats != nil && !adapterFormats[f.texture] {
			logger().Debug("no adapter samples texture format, restricting to linear modifiers", "drm", f.drm, "texture", f.texture)
			mods = []DrmModifier{DrmFormatModLinear, drmModifierInvalid}
		}

		t.byDrm[f.drm] = len(t.entries)
		t.entries = append(t.entries, FormatDescriptor{
			Drm:       f.drm,
			Depth:     f.masks.depth,
			Bpp:       f.masks.bpp,
			Modifiers: mods,
		})
	}
	return t
}

// probeAdapterFormats asks every enumerated adapter which texture formats
// the negotiation table can count on. RGBA8Unorm and BGRA8Unorm are
// mandatory WebGPU formats, so any hardware adapter that resolves vouches
// for both; software adapters are skipped because they cannot back
// dma-buf scanout. No command submission happens here (compositing is
// delegated to the host's XRender extension). A nil result means no
// usable adapter answered and the caller skips the cross-reference.
func probeAdapterFormats(instance *core.Instance) map[gputypes.TextureFormat]bool {
	supported := make(map[gputypes.TextureFormat]bool)
	for _, id := range instance.EnumerateAdapters() {
		info, err := core.GetAdapterInfo(id)
		if err != nil {
			logger().Warn("adapter info unavailable during format probe", "error", err)
			continue
		}
		if info.DeviceType == types.DeviceTypeCPU {
			logger().Debug("skipping software adapter in format probe", "adapter", info.Name)
			continue
		}
		supported[gputypes.TextureFormatRGBA8Unorm] = true
		supported[gputypes.TextureFormatBGRA8Unorm] = true
	}
	if len(supported) == 0 {
		return nil
	}
	return supported
}

func dedupModifiers(mods []DrmModifier) []DrmModifier {
	seen := make(map[DrmModifier]bool, len(mods))
	out := mods[:0]
	for _, m := range mods {
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

// Lookup returns the negotiated descriptor for a drm format.
func (t *FormatTable) Lookup(drm DrmFormat) (FormatDescriptor, bool) {
	idx, ok := t.byDrm[drm]
	if !ok {
		return FormatDescriptor{}, false
	}
	return t.entries[idx], true
}

// Formats returns every negotiated descriptor.
func (t *FormatTable) Formats() []FormatDescriptor { return t.entries }

// MasksFor reports the channel masks and bpp backing a negotiated drm
// format, used by the shm importer to validate stride.
func MasksFor(drm DrmFormat) (channelMasks, bool) {
	for _, f := range knownFormats {
		if f.drm == drm {
			return f.masks, true
		}
	}
	return channelMasks{}, false
}
