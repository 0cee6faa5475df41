// Package orientation models the four 90° display rotations of an image.
//
// Rotation is clockwise on screen, with the y axis pointing down. The
// "frame" is the coordinate system that rotates with the image: its x axis
// runs along the image's top edge whatever the orientation.
package orientation

import (
	"fmt"
	"math"

	"github.com/menta2k/image-cropbox/pkg/types"
)

// Orientation is a rotation in degrees, one of 0, 90, 180 or 270.
type Orientation int

const (
	Up    Orientation = 0
	Right Orientation = 90
	Down  Orientation = 180
	Left  Orientation = 270
)

// All lists the orientations in clockwise order.
var All = [4]Orientation{Up, Right, Down, Left}

// FromDegrees normalizes deg into [0, 360) and rejects anything that is not
// a multiple of 90.
func FromDegrees(deg int) (Orientation, error) {
	if deg%90 != 0 {
		return Up, fmt.Errorf("orientation must be a multiple of 90 degrees, got %d", deg)
	}
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return Orientation(deg), nil
}

// Valid reports whether o is one of the four orientations.
func (o Orientation) Valid() bool {
	return o == Up || o == Right || o == Down || o == Left
}

func (o Orientation) Degrees() int {
	return int(o)
}

// Radians returns the rotation angle in radians.
func (o Orientation) Radians() float64 {
	return float64(o) * math.Pi / 180
}

// QuarterTurns returns the number of clockwise quarter turns, 0..3.
func (o Orientation) QuarterTurns() int {
	return int(o) / 90
}

// IsHorizontal reports whether the image's width runs vertically on screen.
func (o Orientation) IsHorizontal() bool {
	return o == Left || o == Right
}

// RotateLeft turns counter-clockwise by 90°.
func (o Orientation) RotateLeft() Orientation {
	return Orientation((int(o) + 270) % 360)
}

// RotateRight turns clockwise by 90°.
func (o Orientation) RotateRight() Orientation {
	return Orientation((int(o) + 90) % 360)
}

// ToFrame rotates a screen-space vector into the frame. Quarter turns are
// applied exactly, without trigonometry.
func (o Orientation) ToFrame(v types.Point) types.Point {
	switch o {
	case Right:
		return types.Pt(v.Y, -v.X)
	case Down:
		return types.Pt(-v.X, -v.Y)
	case Left:
		return types.Pt(-v.Y, v.X)
	default:
		return v
	}
}

// FromFrame is the inverse of ToFrame.
func (o Orientation) FromFrame(v types.Point) types.Point {
	switch o {
	case Right:
		return types.Pt(-v.Y, v.X)
	case Down:
		return types.Pt(-v.X, -v.Y)
	case Left:
		return types.Pt(v.Y, -v.X)
	default:
		return v
	}
}

func (o Orientation) String() string {
	switch o {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	default:
		return fmt.Sprintf("orientation(%d)", int(o))
	}
}
