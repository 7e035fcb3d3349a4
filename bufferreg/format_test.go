// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package bufferreg

import (
	"testing"

	"github.com/gogpu/wgpu/core"
)

type fakeModifierSource struct {
	mods map[DrmFormat][]DrmModifier
}

func (f fakeModifierSource) SupportedModifiers(format DrmFormat) []DrmModifier {
	return f.mods[format]
}

func TestBuildFormatTableIncludesImplicitModifier(t *testing.T) {
	src := fakeModifierSource{mods: map[DrmFormat][]DrmModifier{
		DrmFormatARGB8888: {DrmModifier(42)},
	}}
	table := BuildFormatTable(src, nil, nil)

	entry, ok := table.Lookup(DrmFormatARGB8888)
	if !ok {
		t.Fatal("expected ARGB8888 entry")
	}
	foundLinear, foundHost, foundImplicit := false, false, false
	for _, m := range entry.Modifiers {
		switch m {
		case DrmFormatModLinear:
			foundLinear = true
		case DrmModifier(42):
			foundHost = true
		case drmModifierInvalid:
			foundImplicit = true
		}
	}
	if !foundLinear || !foundHost || !foundImplicit {
		t.Fatalf("modifiers missing expected entries: %+v", entry.Modifiers)
	}
}

func TestBuildFormatTableDedupsModifiers(t *testing.T) {
	src := fakeModifierSource{mods: map[DrmFormat][]DrmModifier{
		DrmFormatARGB8888: {DrmFormatModLinear, DrmFormatModLinear},
	}}
	table := BuildFormatTable(src, []DrmModifier{DrmFormatModLinear}, nil)
	entry, _ := table.Lookup(DrmFormatARGB8888)

	count := 0
	for _, m := range entry.Modifiers {
		if m == DrmFormatModLinear {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected DrmFormatModLinear to appear once, got %d", count)
	}
}

func TestBuildFormatTableCoversAllKnownFormats(t *testing.T) {
	table := BuildFormatTable(fakeModifierSource{}, nil, nil)
	for _, f := range []DrmFormat{DrmFormatARGB8888, DrmFormatXRGB8888, DrmFormatABGR8888, DrmFormatXBGR8888} {
		if _, ok := table.Lookup(f); !ok {
			t.Fatalf("missing negotiated entry for %v", f)
		}
	}
}

func TestBuildFormatTableKeepsVendorModifiersWithAdapterBackedFormats(t *testing.T) {
	instance := core.NewInstanceWithMock(nil)
	defer instance.Destroy()

	src := fakeModifierSource{mods: map[DrmFormat][]DrmModifier{
		DrmFormatARGB8888: {DrmModifier(42)},
	}}
	table := BuildFormatTable(src, nil, instance)

	// The mock adapter enumerates as a discrete GPU, so the probe vouches
	// for every known format's texture and the host's vendor modifier
	// survives the cross-reference.
	entry, ok := table.Lookup(DrmFormatARGB8888)
	if !ok {
		t.Fatal("expected ARGB8888 entry")
	}
	found := false
	for _, m := range entry.Modifiers {
		if m == DrmModifier(42) {
			found = true
		}
	}
	if !found {
		t.Fatalf("vendor modifier dropped despite adapter backing: %+v", entry.Modifiers)
	}
}

func TestProbeAdapterFormatsReportsMandatoryFormats(t *testing.T) {
	instance := core.NewInstanceWithMock(nil)
	defer instance.Destroy()

	supported := probeAdapterFormats(instance)
	if supported == nil {
		t.Fatal("probe returned nil with a live adapter")
	}
	for f := range supported {
		if !supported[f] {
			t.Fatalf("format %v marked unsupported", f)
		}
	}
	if len(supported) != 2 {
		t.Fatalf("expected the two mandatory formats, got %d", len(supported))
	}
}

func TestLookupUnknownFormat(t *testing.T) {
	table := BuildFormatTable(fakeModifierSource{}, nil, nil)
	if _, ok := table.Lookup(DrmFormat(0xdeadbeef)); ok {
		t.Fatal("expected lookup of unknown format to fail")
	}
}
