// Package mapper converts lengths between display space and image space.
//
// A Mapper is a single scale factor: image units per display unit. Vector
// components are never rotated here; the orientation only decides which
// image axis lies along the display's width. Rotating vectors between the
// screen and the rotated frame is orientation.ToFrame's job.
package mapper

import (
	"fmt"
	"math"

	"github.com/menta2k/image-cropbox/pkg/orientation"
	"github.com/menta2k/image-cropbox/pkg/types"
)

// Mapper converts between display and image coordinates. The zero value
// maps everything to zero; build one with New or NewWithScale.
type Mapper struct {
	orientation orientation.Orientation
	scale       float64
}

// New returns the mapper for an image of imageSize pixels displayed across
// displaySize points. When the orientation is horizontal the image's height
// runs along the display's width, so that axis sets the scale.
func New(o orientation.Orientation, imageSize, displaySize types.Size) (Mapper, error) {
	if !o.Valid() {
		return Mapper{}, fmt.Errorf("%w: orientation %d", types.ErrInvalidGeometry, o.Degrees())
	}
	imageAxis := imageSize.Width
	if o.IsHorizontal() {
		imageAxis = imageSize.Height
	}
	if !finitePositive(imageAxis) || !finitePositive(displaySize.Width) {
		return Mapper{}, fmt.Errorf("%w: image %gx%g on display %gx%g", types.ErrInvalidGeometry,
			imageSize.Width, imageSize.Height, displaySize.Width, displaySize.Height)
	}
	return Mapper{orientation: o, scale: imageAxis / displaySize.Width}, nil
}

// NewWithScale returns a mapper with an explicit image-per-display scale.
func NewWithScale(o orientation.Orientation, scale float64) (Mapper, error) {
	if !o.Valid() {
		return Mapper{}, fmt.Errorf("%w: orientation %d", types.ErrInvalidGeometry, o.Degrees())
	}
	if !finitePositive(scale) {
		return Mapper{}, fmt.Errorf("%w: scale %g", types.ErrInvalidGeometry, scale)
	}
	return Mapper{orientation: o, scale: scale}, nil
}

// Zoomed returns the mapper after the display is magnified by zoom: each
// display point then covers 1/zoom as many image pixels.
func (m Mapper) Zoomed(zoom float64) (Mapper, error) {
	if !finitePositive(zoom) {
		return m, fmt.Errorf("%w: zoom %g", types.ErrInvalidGeometry, zoom)
	}
	return NewWithScale(m.orientation, m.scale/zoom)
}

// Scale returns image units per display unit.
func (m Mapper) Scale() float64 {
	return m.scale
}

func (m Mapper) Orientation() orientation.Orientation {
	return m.orientation
}

// ToImage converts a display length to image pixels.
func (m Mapper) ToImage(length float64) float64 {
	return length * m.scale
}

// ToDisplay converts an image length to display points.
func (m Mapper) ToDisplay(length float64) float64 {
	if m.scale == 0 {
		return 0
	}
	return length / m.scale
}

func (m Mapper) ToImagePoint(p types.Point) types.Point {
	return types.Pt(m.ToImage(p.X), m.ToImage(p.Y))
}

func (m Mapper) ToDisplayPoint(p types.Point) types.Point {
	return types.Pt(m.ToDisplay(p.X), m.ToDisplay(p.Y))
}

func (m Mapper) ToImageSize(s types.Size) types.Size {
	return types.Sz(m.ToImage(s.Width), m.ToImage(s.Height))
}

func (m Mapper) ToDisplaySize(s types.Size) types.Size {
	return types.Sz(m.ToDisplay(s.Width), m.ToDisplay(s.Height))
}

func (m Mapper) ToImageRect(r types.Rect) types.Rect {
	return types.Rect{Origin: m.ToImagePoint(r.Origin), Size: m.ToImageSize(r.Size)}
}

func (m Mapper) ToDisplayRect(r types.Rect) types.Rect {
	return types.Rect{Origin: m.ToDisplayPoint(r.Origin), Size: m.ToDisplaySize(r.Size)}
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
