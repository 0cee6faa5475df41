// Package viewport computes where the crop box and the image sit inside a
// padded viewport, and the zoom range that keeps the image covering the box.
//
// All sizes are display points in the image-aligned frame: for a horizontal
// orientation the viewport's width and height swap roles.
package viewport

import (
	"fmt"

	"github.com/menta2k/image-cropbox/pkg/cropbox"
	"github.com/menta2k/image-cropbox/pkg/mapper"
	"github.com/menta2k/image-cropbox/pkg/orientation"
	"github.com/menta2k/image-cropbox/pkg/types"
)

// Layout describes the viewport the crop box is shown in.
type Layout struct {
	// Size is the on-screen viewport size, unrotated.
	Size     types.Size `json:"size"`
	HPadding float64    `json:"h_padding"`
	VPadding float64    `json:"v_padding"`
	// MaxZoom is how far past the minimum zoom the user may magnify.
	MaxZoom float64 `json:"max_zoom"`
}

// DefaultLayout returns a layout with 20pt paddings and a 5x zoom limit.
func DefaultLayout(size types.Size) Layout {
	return Layout{Size: size, HPadding: 20, VPadding: 20, MaxZoom: 5}
}

// Validate checks that the layout leaves room for a crop box.
func (l Layout) Validate() error {
	if !l.Size.Valid() {
		return fmt.Errorf("%w: viewport %gx%g", types.ErrInvalidGeometry, l.Size.Width, l.Size.Height)
	}
	if l.HPadding < 0 || l.VPadding < 0 {
		return fmt.Errorf("viewport paddings must not be negative")
	}
	if l.MaxZoom < 1 {
		return fmt.Errorf("viewport max zoom must be at least 1, got %g", l.MaxZoom)
	}
	if _, err := l.Scope(orientation.Up); err != nil {
		return err
	}
	return nil
}

// Frame returns the viewport size in the image-aligned frame.
func (l Layout) Frame(o orientation.Orientation) types.Size {
	if o.IsHorizontal() {
		return l.Size.Swap()
	}
	return l.Size
}

// Scope returns the area available to the crop box: the frame minus the
// paddings on each side.
func (l Layout) Scope(o orientation.Orientation) (types.Size, error) {
	f := l.Frame(o)
	scope := types.Sz(f.Width-2*l.HPadding, f.Height-2*l.VPadding)
	if !scope.Valid() {
		return types.Size{}, fmt.Errorf("%w: scope %gx%g", types.ErrInvalidGeometry, scope.Width, scope.Height)
	}
	return scope, nil
}

// FitRatio returns the largest size with the given ratio that fits scope.
func FitRatio(scope types.Size, ratio float64) (types.Size, error) {
	scopeRatio, err := scope.Ratio()
	if err != nil {
		return types.Size{}, err
	}
	if !types.Sz(ratio, 1).Valid() {
		return types.Size{}, fmt.Errorf("%w: ratio %g", types.ErrInvalidGeometry, ratio)
	}
	if ratio >= scopeRatio {
		return types.Sz(scope.Width, scope.Width/ratio), nil
	}
	return types.Sz(scope.Height*ratio, scope.Height), nil
}

// CropFrame returns the crop box's display rectangle, centered in the frame.
func (l Layout) CropFrame(o orientation.Orientation, cropRatio float64) (types.Rect, error) {
	scope, err := l.Scope(o)
	if err != nil {
		return types.Rect{}, err
	}
	box, err := FitRatio(scope, cropRatio)
	if err != nil {
		return types.Rect{}, err
	}
	f := l.Frame(o)
	return types.Rect{
		Origin: types.Pt((f.Width-box.Width)/2, (f.Height-box.Height)/2),
		Size:   box,
	}, nil
}

// ImageFrameSize returns the displayed image size at zoom 1.
func (l Layout) ImageFrameSize(o orientation.Orientation, imageRatio float64) (types.Size, error) {
	scope, err := l.Scope(o)
	if err != nil {
		return types.Size{}, err
	}
	return FitRatio(scope, imageRatio)
}

// ZoomRange returns the smallest zoom at which the image still covers the
// crop box, and that times MaxZoom.
func (l Layout) ZoomRange(o orientation.Orientation, cropRatio, imageRatio float64) (min, max float64, err error) {
	img, err := l.ImageFrameSize(o, imageRatio)
	if err != nil {
		return 0, 0, err
	}
	box, err := l.CropFrame(o, cropRatio)
	if err != nil {
		return 0, 0, err
	}
	if cropRatio < imageRatio {
		min = box.Size.Height / img.Height
	} else {
		min = box.Size.Width / img.Width
	}
	return min, min * l.MaxZoom, nil
}

// Mapper returns the mapper under which the crop box's display frame
// covers exactly the crop rectangle.
func (l Layout) Mapper(o orientation.Orientation, crop cropbox.CropRect) (mapper.Mapper, error) {
	box, err := l.CropFrame(o, crop.Ratio())
	if err != nil {
		return mapper.Mapper{}, err
	}
	return mapper.NewWithScale(o, crop.Rect().Size.Width/box.Size.Width)
}

// ZoomScale returns the zoom at which the crop rectangle fills the box.
func (l Layout) ZoomScale(o orientation.Orientation, crop cropbox.CropRect) (float64, error) {
	m, err := l.Mapper(o, crop)
	if err != nil {
		return 0, err
	}
	imageRatio, err := crop.Bounds().Ratio()
	if err != nil {
		return 0, err
	}
	img, err := l.ImageFrameSize(o, imageRatio)
	if err != nil {
		return 0, err
	}
	return m.ToDisplay(crop.Bounds().Width) / img.Width, nil
}

// ContentOffset returns the scroll offset, in display points, that puts the
// crop rectangle under the crop box.
func (l Layout) ContentOffset(o orientation.Orientation, crop cropbox.CropRect) (types.Point, error) {
	m, err := l.Mapper(o, crop)
	if err != nil {
		return types.Point{}, err
	}
	in := crop.Insets()
	return m.ToDisplayPoint(types.Pt(in.Left, in.Top)), nil
}
