package orientation

import (
	"math"
	"testing"

	"github.com/menta2k/image-cropbox/pkg/types"
)

func TestRotateCycles(t *testing.T) {
	for _, o := range All {
		got := o
		for i := 0; i < 4; i++ {
			got = got.RotateRight()
		}
		if got != o {
			t.Errorf("four right turns from %v gave %v", o, got)
		}
		if o.RotateLeft().RotateRight() != o {
			t.Errorf("left then right from %v did not return", o)
		}
		if !o.RotateLeft().Valid() || !o.RotateRight().Valid() {
			t.Errorf("rotation from %v left the group", o)
		}
	}

	if Up.RotateLeft() != Left {
		t.Errorf("Expected up.RotateLeft() == left, got %v", Up.RotateLeft())
	}
	if Left.RotateRight() != Up {
		t.Errorf("Expected left.RotateRight() == up, got %v", Left.RotateRight())
	}
}

func TestIsHorizontal(t *testing.T) {
	want := map[Orientation]bool{Up: false, Right: true, Down: false, Left: true}
	for o, h := range want {
		if o.IsHorizontal() != h {
			t.Errorf("%v.IsHorizontal() = %v, want %v", o, o.IsHorizontal(), h)
		}
	}
}

func TestFromDegrees(t *testing.T) {
	tests := []struct {
		in   int
		want Orientation
	}{
		{0, Up},
		{90, Right},
		{450, Right},
		{-90, Left},
		{-180, Down},
		{720, Up},
	}
	for _, tt := range tests {
		got, err := FromDegrees(tt.in)
		if err != nil {
			t.Fatalf("FromDegrees(%d) failed: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("FromDegrees(%d) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := FromDegrees(45); err == nil {
		t.Error("Expected error for 45 degrees")
	}
}

func TestRadians(t *testing.T) {
	if math.Abs(Right.Radians()-math.Pi/2) > 1e-12 {
		t.Errorf("Unexpected radians %f", Right.Radians())
	}
	if Up.Radians() != 0 {
		t.Errorf("Expected 0 radians for up, got %f", Up.Radians())
	}
}

func TestToFrameMatchesRotation(t *testing.T) {
	vectors := []types.Point{types.Pt(1, 0), types.Pt(0, 1), types.Pt(3, -2)}
	for _, o := range All {
		sin, cos := math.Sincos(o.Radians())
		for _, u := range vectors {
			// screen = R(θ)·frame
			want := types.Pt(u.X*cos-u.Y*sin, u.X*sin+u.Y*cos)
			got := o.FromFrame(u)
			if math.Abs(got.X-want.X) > 1e-9 || math.Abs(got.Y-want.Y) > 1e-9 {
				t.Errorf("%v.FromFrame(%v) = %v, want %v", o, u, got, want)
			}
			if back := o.ToFrame(got); back != u {
				t.Errorf("%v.ToFrame(FromFrame(%v)) = %v", o, u, back)
			}
		}
	}
}

func TestToFrameRight(t *testing.T) {
	// Rotated clockwise, the image's x axis points down the screen.
	if got := Right.ToFrame(types.Pt(0, 1)); got != types.Pt(1, 0) {
		t.Errorf("Expected (1,0), got %v", got)
	}
}
