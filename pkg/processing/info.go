package processing

import (
	"fmt"
	"image"
)

// ImageInfo contains basic image metadata
type ImageInfo struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	AspectRatio float64 `json:"aspect_ratio"`
	Area        int     `json:"area"`
}

// GetImageInfo returns basic information about an image
func GetImageInfo(img image.Image) ImageInfo {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	info := ImageInfo{
		Width:  width,
		Height: height,
		Area:   width * height,
	}
	if height > 0 {
		info.AspectRatio = float64(width) / float64(height)
	}
	return info
}

// ValidateImage checks that both sides of img are at least minSize pixels.
func ValidateImage(img image.Image, minSize int) error {
	if img == nil {
		return fmt.Errorf("no image")
	}
	bounds := img.Bounds()
	if minSize < 1 {
		minSize = 1
	}
	if bounds.Dx() < minSize || bounds.Dy() < minSize {
		return fmt.Errorf("image too small: %dx%d (minimum: %d)",
			bounds.Dx(), bounds.Dy(), minSize)
	}
	return nil
}
