// Package cropbox keeps a crop rectangle valid inside an image's pixel bounds.
//
// A CropRect is an immutable value. Every operation returns a new CropRect
// that satisfies, for bounds B and rectangle R:
//
//	0 <= R.Width  <= B.Width,  0 <= R.Height <= B.Height
//	R.X >= 0, R.Y >= 0
//	R.X + R.Width <= B.Width,  R.Y + R.Height <= B.Height
//
// Invalid input is repaired rather than rejected. The only failures are
// ratios or scopes that cannot be divided by, reported as
// types.ErrInvalidGeometry.
package cropbox

import (
	"fmt"
	"math"

	"github.com/menta2k/image-cropbox/pkg/types"
)

// CropRect is a crop rectangle together with the bounds it must stay within.
//
// A CropRect is either unset, in which case its effective rectangle is the
// whole bounds, or explicit. The zero value has no bounds and ignores every
// mutation; build one with Unset or FitToBounds.
type CropRect struct {
	bounds   types.Size
	rect     types.Rect
	explicit bool
}

// Unset returns a crop covering the whole of bounds.
func Unset(bounds types.Size) (CropRect, error) {
	if !bounds.Valid() {
		return CropRect{}, fmt.Errorf("%w: bounds %gx%g", types.ErrInvalidGeometry, bounds.Width, bounds.Height)
	}
	return CropRect{bounds: bounds}, nil
}

// FitToBounds normalizes rect into bounds.
//
// A non-positive dimension defaults to the matching bounds dimension. The
// size is then shrunk, ratio preserved, first so the height fits and then so
// the width fits. Finally the origin is clamped to zero and shifted back
// until the far edges lie inside bounds; the size is never changed by that
// step.
func FitToBounds(rect types.Rect, bounds types.Size) (CropRect, error) {
	c, err := Unset(bounds)
	if err != nil {
		return CropRect{}, err
	}
	return c.fit(rect), nil
}

// Bounds returns the bounds the crop is kept within.
func (c CropRect) Bounds() types.Size {
	return c.bounds
}

// IsSet reports whether an explicit rectangle has been set.
func (c CropRect) IsSet() bool {
	return c.explicit
}

// Rect returns the effective rectangle: the full bounds when unset.
func (c CropRect) Rect() types.Rect {
	if !c.explicit {
		return types.Rect{Size: c.bounds}
	}
	return c.rect
}

// Ratio returns width/height of the effective rectangle, or 0 for the zero
// value.
func (c CropRect) Ratio() float64 {
	r, err := c.Rect().Ratio()
	if err != nil {
		return 0
	}
	return r
}

// Insets returns the distances between the crop and each edge of the bounds.
func (c CropRect) Insets() types.Insets {
	r := c.Rect()
	return types.Insets{
		Top:    r.MinY(),
		Left:   r.MinX(),
		Bottom: c.bounds.Height - r.MaxY(),
		Right:  c.bounds.Width - r.MaxX(),
	}
}

// Refit moves the crop to new bounds. An explicit rectangle is fitted again
// from scratch, so an oversize crop shrinks with its ratio kept instead of
// being cut at the edge. An unset crop stays unset.
func (c CropRect) Refit(bounds types.Size) (CropRect, error) {
	if !c.explicit {
		return Unset(bounds)
	}
	return FitToBounds(c.rect, bounds)
}

// SetSize resizes the crop around its current center. The size is fitted
// into the bounds first; the center is only lost when the resized rectangle
// would cross an edge.
func (c CropRect) SetSize(size types.Size) CropRect {
	if !c.bounds.Valid() {
		return c
	}
	cur := c.Rect()
	fitted := fitSize(size, c.bounds)
	origin := types.Pt(
		cur.Origin.X-(fitted.Width-cur.Size.Width)/2,
		cur.Origin.Y-(fitted.Height-cur.Size.Height)/2,
	)
	return c.with(types.Rect{Origin: fitOrigin(origin, fitted, c.bounds), Size: fitted})
}

// SetRatio changes the crop to width/height == ratio. scope is the largest
// area the crop may occupy, in the same units as the bounds.
//
// When ratio is at least the scope's ratio the width drives: the current
// width is kept if the crop is already as wide as the scope's shape,
// otherwise the scope's width is used. Below the scope's ratio the height
// drives in the same way. The resulting size goes through SetSize.
func (c CropRect) SetRatio(ratio float64, scope types.Size) (CropRect, error) {
	if !(ratio > 0) || math.IsInf(ratio, 1) {
		return c, fmt.Errorf("%w: ratio %g", types.ErrInvalidGeometry, ratio)
	}
	scopeRatio, err := scope.Ratio()
	if err != nil {
		return c, fmt.Errorf("scope: %w", err)
	}
	if !c.bounds.Valid() {
		return c, fmt.Errorf("%w: crop has no bounds", types.ErrInvalidGeometry)
	}

	cur := c.Rect()
	boxRatio := c.Ratio()

	var w, h float64
	if ratio >= scopeRatio {
		if boxRatio >= scopeRatio {
			w = cur.Size.Width
		} else {
			w = scope.Width
		}
		h = w / ratio
	} else {
		if boxRatio >= scopeRatio {
			h = scope.Height
		} else {
			h = cur.Size.Height
		}
		w = h * ratio
	}
	return c.SetSize(types.Sz(w, h)), nil
}

// SetOrigin moves the crop without resizing it.
func (c CropRect) SetOrigin(origin types.Point) CropRect {
	if !c.bounds.Valid() {
		return c
	}
	cur := c.Rect()
	return c.with(types.Rect{Origin: fitOrigin(origin, cur.Size, c.bounds), Size: cur.Size})
}

// TranslateBy moves the crop by delta.
func (c CropRect) TranslateBy(delta types.Point) CropRect {
	return c.SetOrigin(c.Rect().Origin.Add(delta))
}

// GrowEdges applies an accumulated edge delta and normalizes the result once.
func (c CropRect) GrowEdges(d EdgeDelta) CropRect {
	if !c.bounds.Valid() {
		return c
	}
	return c.fit(d.Apply(c.Rect()))
}

func (c CropRect) fit(rect types.Rect) CropRect {
	size := fitSize(rect.Size, c.bounds)
	return c.with(types.Rect{Origin: fitOrigin(rect.Origin, size, c.bounds), Size: size})
}

func (c CropRect) with(rect types.Rect) CropRect {
	return CropRect{bounds: c.bounds, rect: rect, explicit: true}
}

// fitSize expects valid bounds. The height is clamped before the width;
// the width clamp can only shrink the height further.
func fitSize(size, bounds types.Size) types.Size {
	w, h := size.Width, size.Height
	if !(w > 0) || math.IsInf(w, 1) {
		w = bounds.Width
	}
	if !(h > 0) || math.IsInf(h, 1) {
		h = bounds.Height
	}
	ratio := w / h
	if h > bounds.Height {
		h = bounds.Height
		w = h * ratio
	}
	if w > bounds.Width {
		w = bounds.Width
		h = w / ratio
	}
	return types.Sz(math.Min(w, bounds.Width), math.Min(h, bounds.Height))
}

// fitOrigin expects a size that already fits bounds.
func fitOrigin(origin types.Point, size, bounds types.Size) types.Point {
	x, y := origin.X, origin.Y
	if !(x > 0) {
		x = 0
	}
	if !(y > 0) {
		y = 0
	}
	if x+size.Width > bounds.Width {
		x = bounds.Width - size.Width
	}
	if y+size.Height > bounds.Height {
		y = bounds.Height - size.Height
	}
	return types.Pt(x, y)
}
