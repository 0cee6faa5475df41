// Package gesture accumulates drag deltas against an uncommitted crop
// rectangle and normalizes once when the drag ends.
//
// While a drag is in flight Current may leave the bounds or turn inside out;
// End is the only place the crop invariants are restored.
package gesture

import (
	"github.com/menta2k/image-cropbox/pkg/cropbox"
	"github.com/menta2k/image-cropbox/pkg/mapper"
	"github.com/menta2k/image-cropbox/pkg/types"
)

// Kind tells what a drag changes.
type Kind int

const (
	// Resize moves one corner handle.
	Resize Kind = iota
	// Pan drags the image under a fixed crop box.
	Pan
)

func (k Kind) String() string {
	if k == Pan {
		return "pan"
	}
	return "resize"
}

// Drag is one continuous interaction. Deltas passed to Update are in
// display space, in the image-aligned frame.
type Drag struct {
	kind    Kind
	corner  cropbox.Corner
	start   cropbox.CropRect
	mapper  mapper.Mapper
	acc     cropbox.EdgeDelta
	updates int
}

// NewResize starts dragging the given corner handle of start.
func NewResize(start cropbox.CropRect, corner cropbox.Corner, m mapper.Mapper) *Drag {
	return &Drag{kind: Resize, corner: corner, start: start, mapper: m}
}

// NewPan starts dragging the image under start. Moving the image by +d
// moves the crop over the image by -d.
func NewPan(start cropbox.CropRect, m mapper.Mapper) *Drag {
	return &Drag{kind: Pan, start: start, mapper: m}
}

func (d *Drag) Kind() Kind { return d.kind }

// Corner returns the handle being dragged; meaningless for a pan.
func (d *Drag) Corner() cropbox.Corner { return d.corner }

// Start returns the crop the drag began from.
func (d *Drag) Start() cropbox.CropRect { return d.start }

// Updates returns how many deltas have been accumulated.
func (d *Drag) Updates() int { return d.updates }

// Update adds an incremental display-space delta.
func (d *Drag) Update(displayDelta types.Point) {
	delta := d.mapper.ToImagePoint(displayDelta)
	if d.kind == Pan {
		d.acc = d.acc.Add(cropbox.EdgeDelta{DX: -delta.X, DY: -delta.Y})
	} else {
		d.acc = d.acc.Add(cropbox.CornerDelta(d.corner, delta))
	}
	d.updates++
}

// Delta returns the accumulated image-space change.
func (d *Drag) Delta() cropbox.EdgeDelta {
	return d.acc
}

// Current returns the uncommitted image-space rectangle.
func (d *Drag) Current() types.Rect {
	return d.acc.Apply(d.start.Rect())
}

// DisplayRect returns Current in display space.
func (d *Drag) DisplayRect() types.Rect {
	return d.mapper.ToDisplayRect(d.Current())
}

// End normalizes the accumulated rectangle into the crop's bounds.
func (d *Drag) End() cropbox.CropRect {
	if d.updates == 0 {
		return d.start
	}
	if d.kind == Pan {
		return d.start.SetOrigin(d.Current().Origin)
	}
	return d.start.GrowEdges(d.acc)
}

// Cancel abandons the drag and returns the starting crop.
func (d *Drag) Cancel() cropbox.CropRect {
	return d.start
}
