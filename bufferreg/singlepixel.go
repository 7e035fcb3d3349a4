// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package bufferreg

import (
	"github.com/portal-co/twelveto11-sub000/render"
	"github.com/portal-co/twelveto11-sub000/wire"
)

// SinglePixelParams is a 16-bit-scaled rgba value, the wire shape of a
// single-pixel buffer attach request.
type SinglePixelParams struct {
	R, G, B, A uint32 // 0..0xffff
}

// HostSinglePixelFiller creates a 1x1 pixmap and solid-fills it with the
// given scaled color.
type HostSinglePixelFiller interface {
	CreateSinglePixelPixmap(p SinglePixelParams) (pixmap, picture uint32, err error)
}

// ImportSinglePixel creates a 1x1 RenderBuffer solid-filled with p via a
// composite against a source picture of that color.
func (reg *Registry) ImportSinglePixel(r *render.Renderer, host HostSinglePixelFiller, p SinglePixelParams) (*render.RenderBuffer, error) {
	pixmap, picture, err := host.CreateSinglePixelPixmap(p)
	if err != nil {
		return nil, err
	}
	flags := render.FlagCanPresent
	if p.A == 0xffff {
		flags |= render.FlagIsOpaque
	}
	buf := r.NewBuffer(wire.PixmapID(pixmap), wire.PictureID(picture), 32, 1, 1, flags)
	return buf, nil
}
