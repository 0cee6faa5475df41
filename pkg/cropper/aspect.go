package cropper

import (
	"fmt"
	"strconv"
	"strings"
)

// AspectRatio represents common aspect ratios
type AspectRatio struct {
	Width  float64
	Height float64
	Name   string
}

// Common aspect ratios
var (
	Original   = AspectRatio{0, 0, "original"}
	Square     = AspectRatio{1, 1, "square"}
	Portrait   = AspectRatio{3, 4, "portrait"}
	Landscape  = AspectRatio{4, 3, "landscape"}
	Widescreen = AspectRatio{16, 9, "widescreen"}
	Instagram  = AspectRatio{4, 5, "instagram"}
	Story      = AspectRatio{9, 16, "story"}
)

// CommonAspectRatios returns a list of commonly used aspect ratios
func CommonAspectRatios() []AspectRatio {
	return []AspectRatio{Square, Portrait, Landscape, Widescreen, Instagram, Story}
}

// Ratio returns width/height, or 0 for Original.
func (a AspectRatio) Ratio() float64 {
	if a.Width <= 0 || a.Height <= 0 {
		return 0
	}
	return a.Width / a.Height
}

func (a AspectRatio) String() string {
	if a.Name != "" {
		return a.Name
	}
	return fmt.Sprintf("%g:%g", a.Width, a.Height)
}

// ParseAspectRatio accepts a preset name, "W:H" or a decimal ratio.
func ParseAspectRatio(s string) (AspectRatio, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == Original.Name {
		return Original, nil
	}
	for _, a := range CommonAspectRatios() {
		if s == a.Name {
			return a, nil
		}
	}

	if w, h, ok := strings.Cut(s, ":"); ok {
		wf, err := strconv.ParseFloat(strings.TrimSpace(w), 64)
		if err != nil {
			return AspectRatio{}, fmt.Errorf("invalid aspect ratio %q: %w", s, err)
		}
		hf, err := strconv.ParseFloat(strings.TrimSpace(h), 64)
		if err != nil {
			return AspectRatio{}, fmt.Errorf("invalid aspect ratio %q: %w", s, err)
		}
		if !(wf > 0) || !(hf > 0) {
			return AspectRatio{}, fmt.Errorf("invalid aspect ratio %q: sides must be positive", s)
		}
		return AspectRatio{Width: wf, Height: hf}, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return AspectRatio{}, fmt.Errorf("invalid aspect ratio %q: %w", s, err)
	}
	if !(f > 0) {
		return AspectRatio{}, fmt.Errorf("invalid aspect ratio %q: must be positive", s)
	}
	return AspectRatio{Width: f, Height: 1}, nil
}
