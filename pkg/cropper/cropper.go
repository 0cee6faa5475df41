package cropper

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/menta2k/image-cropbox/pkg/cropbox"
	"github.com/menta2k/image-cropbox/pkg/orientation"
	"github.com/menta2k/image-cropbox/pkg/types"
)

// ErrCropFailed is returned when a crop rectangle selects no pixels.
var ErrCropFailed = errors.New("crop failed")

// Cropper cuts an image-space rectangle out of a raster.
type Cropper interface {
	Crop(img image.Image, rect types.Rect) (image.Image, error)
}

// ImagingCropper crops with github.com/disintegration/imaging
type ImagingCropper struct {
	config CropConfig
}

// CropConfig holds configuration for cropping
type CropConfig struct {
	// TargetWidth and TargetHeight resize the crop to fill an exact size
	// when both are set.
	TargetWidth    int
	TargetHeight   int
	AllowUpscaling bool
	Filter         imaging.ResampleFilter
}

// CropResult contains the result of a cropping operation
type CropResult struct {
	Image       image.Image
	Rect        types.Rect
	AspectRatio float64
	Orientation orientation.Orientation
}

// New creates a new ImagingCropper with default configuration
func New() *ImagingCropper {
	return &ImagingCropper{
		config: CropConfig{
			AllowUpscaling: false,
			Filter:         imaging.Lanczos,
		},
	}
}

// NewWithConfig creates a new ImagingCropper with custom configuration
func NewWithConfig(config CropConfig) *ImagingCropper {
	return &ImagingCropper{config: config}
}

// Crop rounds rect to whole pixels and cuts it out of img. rect is relative
// to the image's top-left corner, whatever img.Bounds().Min is.
func (c *ImagingCropper) Crop(img image.Image, rect types.Rect) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: no image", ErrCropFailed)
	}
	b := img.Bounds()
	px := rect.Pixels().Add(b.Min).Intersect(b)
	if px.Empty() {
		return nil, fmt.Errorf("%w: %v selects no pixels of %dx%d", ErrCropFailed, rect, b.Dx(), b.Dy())
	}

	var out image.Image = img
	if px != b {
		out = imaging.Crop(img, px)
	}
	if c.config.TargetWidth > 0 && c.config.TargetHeight > 0 {
		out = imaging.Fill(out, c.config.TargetWidth, c.config.TargetHeight, imaging.Center, c.config.Filter)
	}
	return out, nil
}

// CropOriented crops and then turns the output the way it is shown on
// screen under o.
func (c *ImagingCropper) CropOriented(img image.Image, rect types.Rect, o orientation.Orientation) (CropResult, error) {
	if !o.Valid() {
		return CropResult{}, fmt.Errorf("%w: orientation %d", types.ErrInvalidGeometry, int(o))
	}
	out, err := c.Crop(img, rect)
	if err != nil {
		return CropResult{}, err
	}

	// imaging rotates counter-clockwise
	switch o {
	case orientation.Right:
		out = imaging.Rotate270(out)
	case orientation.Down:
		out = imaging.Rotate180(out)
	case orientation.Left:
		out = imaging.Rotate90(out)
	}

	ratio, _ := rect.Ratio()
	if o.IsHorizontal() && ratio != 0 {
		ratio = 1 / ratio
	}
	return CropResult{Image: out, Rect: rect, AspectRatio: ratio, Orientation: o}, nil
}

// CropToAspectRatio crops the largest centered region of the given ratio
func (c *ImagingCropper) CropToAspectRatio(img image.Image, aspectRatio AspectRatio) (CropResult, error) {
	return c.CropToRatio(img, aspectRatio.Ratio())
}

// CropToRatio crops the largest centered region with width/height ==
// targetRatio. A zero ratio keeps the whole image.
func (c *ImagingCropper) CropToRatio(img image.Image, targetRatio float64) (CropResult, error) {
	if img == nil {
		return CropResult{}, fmt.Errorf("%w: no image", ErrCropFailed)
	}
	bounds := types.SizeOf(img.Bounds())
	crop, err := cropbox.Unset(bounds)
	if err != nil {
		return CropResult{}, fmt.Errorf("invalid image dimensions: %w", err)
	}
	if targetRatio != 0 {
		if crop, err = crop.SetRatio(targetRatio, bounds); err != nil {
			return CropResult{}, err
		}
	}

	out, err := c.Crop(img, crop.Rect())
	if err != nil {
		return CropResult{}, err
	}
	return CropResult{
		Image:       out,
		Rect:        crop.Rect(),
		AspectRatio: crop.Ratio(),
	}, nil
}

// CropToMultipleRatios crops an image to multiple aspect ratios
func (c *ImagingCropper) CropToMultipleRatios(img image.Image, ratios []AspectRatio) ([]CropResult, error) {
	var results []CropResult

	for _, ratio := range ratios {
		result, err := c.CropToAspectRatio(img, ratio)
		if err != nil {
			return nil, fmt.Errorf("failed to crop to %s: %w", ratio.Name, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// CropToSize crops to the target ratio and resizes to exactly
// targetWidth x targetHeight.
func (c *ImagingCropper) CropToSize(img image.Image, targetWidth, targetHeight int) (CropResult, error) {
	if targetWidth <= 0 || targetHeight <= 0 {
		return CropResult{}, fmt.Errorf("%w: target size %dx%d", types.ErrInvalidGeometry, targetWidth, targetHeight)
	}
	if img == nil {
		return CropResult{}, fmt.Errorf("%w: no image", ErrCropFailed)
	}
	bounds := img.Bounds()
	originalWidth, originalHeight := bounds.Dx(), bounds.Dy()

	if !c.config.AllowUpscaling {
		if targetWidth > originalWidth || targetHeight > originalHeight {
			return CropResult{}, fmt.Errorf("target size (%dx%d) is larger than original (%dx%d) and upscaling is disabled",
				targetWidth, targetHeight, originalWidth, originalHeight)
		}
	}

	result, err := c.CropToRatio(img, float64(targetWidth)/float64(targetHeight))
	if err != nil {
		return CropResult{}, err
	}
	result.Image = imaging.Resize(result.Image, targetWidth, targetHeight, c.config.Filter)
	return result, nil
}
