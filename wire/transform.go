// Copyright 2026 The twelveto11 Authors
// SPDX-License-Identifier: MIT

package wire

import "math"

// BufferTransform is one of the eight orientations a client may ask to
// have applied to its buffer before composite.
type BufferTransform uint8

const (
	TransformNormal BufferTransform = iota
	Transform90
	Transform180
	Transform270
	TransformFlipped
	TransformFlipped90
	TransformFlipped180
	TransformFlipped270
)

// Valid reports whether t is one of the eight defined orientations.
func (t BufferTransform) Valid() bool { return t <= TransformFlipped270 }

// Affine is a 2D affine transform in row-major 2x3 form:
//
//	| A B C |
//	| D E F |
//
// mapping (x, y) -> (A*x + B*y + C, D*x + E*y + F). It is used both for
// the subsurface fractional sub-pixel offset and as the
// building block of the composite-path transform matrix.
type Affine struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity affine transform.
func Identity() Affine { return Affine{A: 1, E: 1} }

// Translate returns a pure translation transform.
func Translate(x, y float64) Affine { return Affine{A: 1, C: x, E: 1, F: y} }

// ScaleBy returns a pure scale transform.
func ScaleBy(sx, sy float64) Affine { return Affine{A: sx, E: sy} }

// Mul returns m composed with other as m applied after other: Mul(other)
// maps a point by first applying other, then m.
func (m Affine) Mul(other Affine) Affine {
	return Affine{
		A: m.A*other.A + m.B*other.D,
		B: m.A*other.B + m.B*other.E,
		C: m.A*other.C + m.B*other.F + m.C,
		D: m.D*other.A + m.E*other.D,
		E: m.D*other.B + m.E*other.E,
		F: m.D*other.C + m.E*other.F + m.F,
	}
}

// Apply maps a point through the transform.
func (m Affine) Apply(x, y float64) (float64, float64) {
	return m.A*x + m.B*y + m.C, m.D*x + m.E*y + m.F
}

// Invert returns the inverse transform. It returns the identity if m is
// not invertible (determinant near zero), which should never happen for
// the well-formed scale/rotate/translate compositions this package builds.
func (m Affine) Invert() Affine {
	det := m.A*m.E - m.B*m.D
	if math.Abs(det) < 1e-12 {
		return Identity()
	}
	inv := 1 / det
	return Affine{
		A: m.E * inv,
		B: -m.B * inv,
		C: (m.B*m.F - m.C*m.E) * inv,
		D: -m.D * inv,
		E: m.A * inv,
		F: (m.C*m.D - m.A*m.F) * inv,
	}
}

// IsIdentity reports whether m is the identity transform.
func (m Affine) IsIdentity() bool {
	return m == Identity()
}

// unitTransformMatrix returns the 2x2 linear part (no translation) of the
// given buffer transform mapping a unit square centered at the origin to
// itself, per the eight orientations in the GLOSSARY.
func unitTransformMatrix(t BufferTransform) Affine {
	switch t {
	case TransformNormal:
		return Affine{A: 1, E: 1}
	case Transform90:
		return Affine{A: 0, B: -1, D: 1, E: 0}
	case Transform180:
		return Affine{A: -1, E: -1}
	case Transform270:
		return Affine{A: 0, B: 1, D: -1, E: 0}
	case TransformFlipped:
		return Affine{A: -1, E: 1}
	case TransformFlipped90:
		return Affine{A: 0, B: 1, D: 1, E: 0}
	case TransformFlipped180:
		return Affine{A: 1, E: -1}
	case TransformFlipped270:
		return Affine{A: 0, B: -1, D: -1, E: 0}
	default:
		return Identity()
	}
}

// BoxForTransform returns the destination-space box a (w, h) buffer occupies
// after the given transform is applied around its own center, for width/height
// swapping orientations (90/270 and their flipped variants).
func BoxForTransform(t BufferTransform, w, h int) (int, int) {
	switch t {
	case Transform90, Transform270, TransformFlipped90, TransformFlipped270:
		return h, w
	default:
		return w, h
	}
}

// DrawParams are the per-composite parameters the renderer compares against
// a RenderBuffer's cached draw state to decide whether the picture-level
// transform needs to be reissued.
type DrawParams struct {
	ScaleX, ScaleY     float64
	OffsetX, OffsetY   float64
	StretchW, StretchH float64 // viewport destination size, 0 means "use buffer size"
	Transform          BufferTransform
}

// Equal reports whether d and o would produce the same cached picture
// transform, used by the renderer's cache-hit check.
func (d DrawParams) Equal(o DrawParams) bool {
	return d == o
}

// CompositeMatrix builds the transform the renderer applies when compositing
// a buffer of size (bufW, bufH) with params: buffer-transform-inverse x
// scale x translate x stretch, mapping destination points back into buffer
// coordinates.
func CompositeMatrix(params DrawParams, bufW, bufH int) Affine {
	unit := unitTransformMatrix(params.Transform)
	// unitTransformMatrix rotates/flips around the origin; recenter around
	// the buffer's own midpoint so the composed transform maps the buffer
	// rectangle onto itself before any further scale/translate/stretch.
	cx, cy := float64(bufW)/2, float64(bufH)/2
	tx, ty := unit.Apply(-cx, -cy)
	dw, dh := BoxForTransform(params.Transform, bufW, bufH)
	recenter := Translate(float64(dw)/2+tx, float64(dh)/2+ty)
	bufferTransform := recenter.Mul(unit)
	inverse := bufferTransform.Invert()

	scale := ScaleBy(params.ScaleX, params.ScaleY)
	translate := Translate(params.OffsetX, params.OffsetY)

	stretch := Identity()
	if params.StretchW > 0 && dw > 0 {
		stretch.A = params.StretchW / float64(dw)
	}
	if params.StretchH > 0 && dh > 0 {
		stretch.E = params.StretchH / float64(dh)
	}

	return inverse.Mul(scale).Mul(translate).Mul(stretch)
}
