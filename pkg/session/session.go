// Package session holds the state a crop editor controller owns: the image
// bounds, the crop rectangle, the orientation, the viewport layout and the
// gesture in flight. It draws nothing.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/menta2k/image-cropbox/pkg/cropbox"
	"github.com/menta2k/image-cropbox/pkg/gesture"
	"github.com/menta2k/image-cropbox/pkg/mapper"
	"github.com/menta2k/image-cropbox/pkg/orientation"
	"github.com/menta2k/image-cropbox/pkg/types"
	"github.com/menta2k/image-cropbox/pkg/viewport"
)

var (
	// ErrNoGesture is returned when a drag call arrives without a Begin.
	ErrNoGesture = errors.New("no gesture in progress")
	// ErrGestureActive is returned when the session is changed mid-drag.
	ErrGestureActive = errors.New("gesture in progress")
)

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger. A nil logger keeps the session silent.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithOrientation sets the starting orientation.
func WithOrientation(o orientation.Orientation) Option {
	return func(s *Session) {
		s.orientation = o
	}
}

// Session is not safe for concurrent use.
type Session struct {
	logger      *slog.Logger
	layout      viewport.Layout
	crop        cropbox.CropRect
	orientation orientation.Orientation
	drag        *gesture.Drag
}

// New starts a session for an image of the given pixel size with no crop.
func New(imageSize types.Size, layout viewport.Layout, opts ...Option) (*Session, error) {
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}
	crop, err := cropbox.Unset(imageSize)
	if err != nil {
		return nil, fmt.Errorf("invalid image size: %w", err)
	}

	s := &Session{
		logger: slog.New(nopHandler{}),
		layout: layout,
		crop:   crop,
	}
	for _, opt := range opts {
		opt(s)
	}
	if !s.orientation.Valid() {
		return nil, fmt.Errorf("%w: orientation %d", types.ErrInvalidGeometry, int(s.orientation))
	}
	return s, nil
}

// Crop returns the committed crop.
func (s *Session) Crop() cropbox.CropRect { return s.crop }

func (s *Session) Layout() viewport.Layout { return s.layout }

func (s *Session) Orientation() orientation.Orientation { return s.orientation }

// SetImageSize switches to a new image and re-fits the crop to it.
func (s *Session) SetImageSize(size types.Size) error {
	if s.drag != nil {
		return ErrGestureActive
	}
	crop, err := s.crop.Refit(size)
	if err != nil {
		return fmt.Errorf("refit crop: %w", err)
	}
	s.logger.Debug("image size changed", "size", size, "crop", crop.Rect())
	s.crop = crop
	return nil
}

// SetCropRect replaces the crop with rect fitted into the image bounds.
func (s *Session) SetCropRect(rect types.Rect) error {
	if s.drag != nil {
		return ErrGestureActive
	}
	crop, err := cropbox.FitToBounds(rect, s.crop.Bounds())
	if err != nil {
		return err
	}
	s.crop = crop
	return nil
}

// ResetCrop clears the crop back to the whole image.
func (s *Session) ResetCrop() error {
	if s.drag != nil {
		return ErrGestureActive
	}
	crop, err := cropbox.Unset(s.crop.Bounds())
	if err != nil {
		return err
	}
	s.crop = crop
	return nil
}

// SetOrientation changes the display orientation. The crop in image space
// is unchanged.
func (s *Session) SetOrientation(o orientation.Orientation) error {
	if s.drag != nil {
		return ErrGestureActive
	}
	if !o.Valid() {
		return fmt.Errorf("%w: orientation %d", types.ErrInvalidGeometry, int(o))
	}
	s.orientation = o
	return nil
}

func (s *Session) RotateLeft() error {
	return s.SetOrientation(s.orientation.RotateLeft())
}

func (s *Session) RotateRight() error {
	return s.SetOrientation(s.orientation.RotateRight())
}

// Mapper returns the display/image mapper at which the crop box frame
// shows exactly the crop rectangle.
func (s *Session) Mapper() (mapper.Mapper, error) {
	return s.layout.Mapper(s.orientation, s.crop)
}

// CropFrame returns the crop box in display points, image-aligned.
func (s *Session) CropFrame() (types.Rect, error) {
	return s.layout.CropFrame(s.orientation, s.crop.Ratio())
}

// ZoomRange returns the allowed zoom scales for the current crop ratio.
func (s *Session) ZoomRange() (min, max float64, err error) {
	imageRatio, err := s.crop.Bounds().Ratio()
	if err != nil {
		return 0, 0, err
	}
	return s.layout.ZoomRange(s.orientation, s.crop.Ratio(), imageRatio)
}

// Zoom returns the current zoom scale.
func (s *Session) Zoom() (float64, error) {
	return s.layout.ZoomScale(s.orientation, s.crop)
}

// Ratio returns the crop's width/height as seen on screen.
func (s *Session) Ratio() float64 {
	r := s.crop.Ratio()
	if r != 0 && s.orientation.IsHorizontal() {
		return 1 / r
	}
	return r
}

// SetRatio locks the crop to an on-screen width/height ratio. Zero selects
// the image's own ratio.
func (s *Session) SetRatio(ratio float64) error {
	if s.drag != nil {
		return ErrGestureActive
	}

	var imageRatio float64
	switch {
	case ratio == 0:
		r, err := s.crop.Bounds().Ratio()
		if err != nil {
			return err
		}
		imageRatio = r
	case !(ratio > 0) || math.IsInf(ratio, 1):
		return fmt.Errorf("%w: ratio %g", types.ErrInvalidGeometry, ratio)
	case s.orientation.IsHorizontal():
		imageRatio = 1 / ratio
	default:
		imageRatio = ratio
	}

	m, err := s.Mapper()
	if err != nil {
		return err
	}
	scope, err := s.layout.Scope(s.orientation)
	if err != nil {
		return err
	}
	crop, err := s.crop.SetRatio(imageRatio, m.ToImageSize(scope))
	if err != nil {
		return err
	}
	s.logger.Debug("ratio set", "ratio", ratio, "image_ratio", imageRatio, "crop", crop.Rect())
	s.crop = crop
	return nil
}

// ZoomBy magnifies the view by factor, shrinking the crop around its
// center. The result stays within the zoom range.
func (s *Session) ZoomBy(factor float64) error {
	if s.drag != nil {
		return ErrGestureActive
	}
	if !(factor > 0) || math.IsInf(factor, 1) {
		return fmt.Errorf("%w: zoom factor %g", types.ErrInvalidGeometry, factor)
	}

	cur := s.crop.Rect()
	ratio := s.crop.Ratio()
	largest, err := viewport.FitRatio(s.crop.Bounds(), ratio)
	if err != nil {
		return err
	}

	w := cur.Size.Width / factor
	w = math.Max(w, largest.Width/s.layout.MaxZoom)
	w = math.Min(w, largest.Width)
	s.crop = s.crop.SetSize(types.Sz(w, cur.Size.Height*w/cur.Size.Width))
	return nil
}

// Dragging reports whether a gesture is in progress.
func (s *Session) Dragging() bool { return s.drag != nil }

// BeginResize starts dragging the handle at the given on-screen corner.
func (s *Session) BeginResize(screenCorner cropbox.Corner) error {
	return s.begin(func(m mapper.Mapper) *gesture.Drag {
		corner := screenCorner.Rotate(-s.orientation.QuarterTurns())
		return gesture.NewResize(s.crop, corner, m)
	})
}

// BeginPan starts dragging the image under the crop box.
func (s *Session) BeginPan() error {
	return s.begin(func(m mapper.Mapper) *gesture.Drag {
		return gesture.NewPan(s.crop, m)
	})
}

func (s *Session) begin(start func(mapper.Mapper) *gesture.Drag) error {
	if s.drag != nil {
		return ErrGestureActive
	}
	m, err := s.Mapper()
	if err != nil {
		return err
	}
	s.drag = start(m)
	s.logger.Debug("gesture started", "kind", s.drag.Kind(), "corner", s.drag.Corner(), "crop", s.crop.Rect())
	return nil
}

// Drag feeds an incremental on-screen delta to the gesture.
func (s *Session) Drag(screenDelta types.Point) error {
	if s.drag == nil {
		return ErrNoGesture
	}
	s.drag.Update(s.orientation.ToFrame(screenDelta))
	return nil
}

// Preview returns the uncommitted image-space rectangle of the gesture.
// It may lie outside the bounds.
func (s *Session) Preview() (types.Rect, error) {
	if s.drag == nil {
		return types.Rect{}, ErrNoGesture
	}
	return s.drag.Current(), nil
}

// EndDrag commits the gesture. The committed crop comes from the
// accumulated deltas alone.
func (s *Session) EndDrag() (cropbox.CropRect, error) {
	if s.drag == nil {
		return s.crop, ErrNoGesture
	}
	d := s.drag
	s.drag = nil

	raw := d.Current()
	s.crop = d.End()
	s.logger.Debug("gesture ended",
		"kind", d.Kind(),
		"updates", d.Updates(),
		"raw", raw,
		"crop", s.crop.Rect(),
		"drift", drift(raw, s.crop.Rect()),
	)
	return s.crop, nil
}

// CancelDrag drops the gesture and keeps the crop it started from.
func (s *Session) CancelDrag() error {
	if s.drag == nil {
		return ErrNoGesture
	}
	s.crop = s.drag.Cancel()
	s.drag = nil
	return nil
}

// drift is the largest edge movement between two rectangles.
func drift(a, b types.Rect) float64 {
	return math.Max(
		math.Max(math.Abs(a.MinX()-b.MinX()), math.Abs(a.MinY()-b.MinY())),
		math.Max(math.Abs(a.MaxX()-b.MaxX()), math.Abs(a.MaxY()-b.MaxY())),
	)
}
