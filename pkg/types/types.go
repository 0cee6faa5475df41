package types

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidGeometry is returned when a ratio or a scale has to be computed
// from a zero, negative or non-finite operand.
var ErrInvalidGeometry = errors.New("invalid geometry")

// Point is a position or a displacement.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul scales both components by s.
func (p Point) Mul(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Size is a width and height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Sz is shorthand for Size{Width: w, Height: h}.
func Sz(w, h float64) Size {
	return Size{Width: w, Height: h}
}

// SizeOf returns the size of an integer rectangle, e.g. an image's bounds.
func SizeOf(r image.Rectangle) Size {
	return Size{Width: float64(r.Dx()), Height: float64(r.Dy())}
}

// IsZero reports whether both dimensions are zero.
func (s Size) IsZero() bool {
	return s.Width == 0 && s.Height == 0
}

// Valid reports whether both dimensions are positive and finite.
func (s Size) Valid() bool {
	return positive(s.Width) && positive(s.Height)
}

// Ratio returns width/height.
func (s Size) Ratio() (float64, error) {
	if !s.Valid() {
		return 0, fmt.Errorf("%w: ratio of %gx%g", ErrInvalidGeometry, s.Width, s.Height)
	}
	return s.Width / s.Height, nil
}

// Mul scales both dimensions by f.
func (s Size) Mul(f float64) Size {
	return Size{Width: s.Width * f, Height: s.Height * f}
}

// Swap exchanges width and height.
func (s Size) Swap() Size {
	return Size{Width: s.Height, Height: s.Width}
}

// Rect is an axis-aligned rectangle given by its top-left origin and size.
type Rect struct {
	Origin Point `json:"origin"`
	Size   Size  `json:"size"`
}

// R is shorthand for a rectangle at (x, y) of size w×h.
func R(x, y, w, h float64) Rect {
	return Rect{Origin: Point{X: x, Y: y}, Size: Size{Width: w, Height: h}}
}

// RectOf converts an integer rectangle.
func RectOf(r image.Rectangle) Rect {
	return R(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
}

func (r Rect) MinX() float64 { return r.Origin.X }
func (r Rect) MinY() float64 { return r.Origin.Y }
func (r Rect) MaxX() float64 { return r.Origin.X + r.Size.Width }
func (r Rect) MaxY() float64 { return r.Origin.Y + r.Size.Height }

// IsZero reports whether r is the zero rectangle.
func (r Rect) IsZero() bool {
	return r == Rect{}
}

// Center returns the midpoint of r.
func (r Rect) Center() Point {
	return Point{X: r.Origin.X + r.Size.Width/2, Y: r.Origin.Y + r.Size.Height/2}
}

// Ratio returns the width/height ratio of r.
func (r Rect) Ratio() (float64, error) {
	return r.Size.Ratio()
}

// Inset shrinks r by dx on the left and right and dy on the top and bottom.
func (r Rect) Inset(dx, dy float64) Rect {
	return R(r.Origin.X+dx, r.Origin.Y+dy, r.Size.Width-2*dx, r.Size.Height-2*dy)
}

// Pixels rounds r to the nearest integer rectangle.
func (r Rect) Pixels() image.Rectangle {
	return image.Rect(
		int(math.Round(r.MinX())),
		int(math.Round(r.MinY())),
		int(math.Round(r.MaxX())),
		int(math.Round(r.MaxY())),
	)
}

func (r Rect) String() string {
	return fmt.Sprintf("(%g,%g %gx%g)", r.Origin.X, r.Origin.Y, r.Size.Width, r.Size.Height)
}

// Insets are the distances from a rectangle's edges to the enclosing bounds.
type Insets struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Bottom float64 `json:"bottom"`
	Right  float64 `json:"right"`
}

// ParseRect parses "x,y,w,h".
func ParseRect(s string) (Rect, error) {
	v, err := parseFloats(s, ",", 4)
	if err != nil {
		return Rect{}, fmt.Errorf("invalid rect %q: %w", s, err)
	}
	return R(v[0], v[1], v[2], v[3]), nil
}

// ParseSize parses "WxH".
func ParseSize(s string) (Size, error) {
	v, err := parseFloats(strings.ToLower(s), "x", 2)
	if err != nil {
		return Size{}, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return Sz(v[0], v[1]), nil
}

// ParsePoint parses "x,y".
func ParsePoint(s string) (Point, error) {
	v, err := parseFloats(s, ",", 2)
	if err != nil {
		return Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	return Pt(v[0], v[1]), nil
}

func parseFloats(s, sep string, n int) ([]float64, error) {
	parts := strings.Split(strings.TrimSpace(s), sep)
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(parts))
	}
	out := make([]float64, n)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}
