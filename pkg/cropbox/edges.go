package cropbox

import (
	"fmt"

	"github.com/menta2k/image-cropbox/pkg/types"
)

// Corner identifies a resize handle. The values run clockwise from the top
// left, so rotating a corner by k quarter turns is (c + k) mod 4.
type Corner int

const (
	TopLeft Corner = iota
	TopRight
	BottomRight
	BottomLeft
)

// Corners lists the handles in clockwise order.
var Corners = [4]Corner{TopLeft, TopRight, BottomRight, BottomLeft}

// Rotate returns the corner that c lands on after k clockwise quarter turns.
func (c Corner) Rotate(k int) Corner {
	return Corner(((int(c)+k)%4 + 4) % 4)
}

func (c Corner) String() string {
	switch c {
	case TopLeft:
		return "top-left"
	case TopRight:
		return "top-right"
	case BottomRight:
		return "bottom-right"
	case BottomLeft:
		return "bottom-left"
	default:
		return fmt.Sprintf("corner(%d)", int(c))
	}
}

// EdgeDelta is a change to a rectangle's origin and size.
type EdgeDelta struct {
	DX float64
	DY float64
	DW float64
	DH float64
}

// CornerDelta maps a drag of the given handle by d onto the rectangle. The
// corner opposite the handle stays fixed.
func CornerDelta(corner Corner, d types.Point) EdgeDelta {
	switch corner {
	case TopLeft:
		return EdgeDelta{DX: d.X, DY: d.Y, DW: -d.X, DH: -d.Y}
	case TopRight:
		return EdgeDelta{DY: d.Y, DW: d.X, DH: -d.Y}
	case BottomLeft:
		return EdgeDelta{DX: d.X, DW: -d.X, DH: d.Y}
	default:
		return EdgeDelta{DW: d.X, DH: d.Y}
	}
}

// Add sums two deltas.
func (e EdgeDelta) Add(o EdgeDelta) EdgeDelta {
	return EdgeDelta{DX: e.DX + o.DX, DY: e.DY + o.DY, DW: e.DW + o.DW, DH: e.DH + o.DH}
}

// Apply adds e to r without any normalization.
func (e EdgeDelta) Apply(r types.Rect) types.Rect {
	return types.R(r.Origin.X+e.DX, r.Origin.Y+e.DY, r.Size.Width+e.DW, r.Size.Height+e.DH)
}
