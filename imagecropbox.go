// Package imagecropbox edits a crop rectangle over an image the way an
// interactive crop view does, without drawing anything, and renders the
// result with github.com/disintegration/imaging.
//
// Basic usage:
//
//	editor := imagecropbox.New()
//	doc, err := editor.Open(ctx, "photo.jpg")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	s := doc.Session()
//	s.SetRatio(16.0 / 9.0)
//	s.BeginResize(cropbox.BottomRight)
//	s.Drag(types.Pt(-40, -10))
//	s.EndDrag()
//
//	result, err := editor.Render(doc)
//	if err != nil {
//		log.Fatal(err)
//	}
//	editor.Save(result.Image, "photo_cropped.jpg", "jpg", 90, false)
//
// The packages under pkg/ can also be used on their own:
//
//  1. cropbox: the crop rectangle kept inside the image bounds
//  2. mapper and orientation: display/image conversion under rotation and zoom
//  3. gesture and session: drags accumulated and normalized once
//  4. viewport: crop box and zoom layout inside a padded viewport
//  5. cropper and processing: raster crop, image I/O and a debug overlay
//  6. suggest: an optional starting crop from a vision model
package imagecropbox

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/menta2k/image-cropbox/pkg/cropper"
	"github.com/menta2k/image-cropbox/pkg/processing"
	"github.com/menta2k/image-cropbox/pkg/session"
	"github.com/menta2k/image-cropbox/pkg/suggest"
	"github.com/menta2k/image-cropbox/pkg/types"
	"github.com/menta2k/image-cropbox/pkg/viewport"
)

// Version of the image cropbox library
const Version = "1.0.0"

// Editor opens images into crop sessions and renders the crops.
type Editor struct {
	processor *processing.Processor
	cropper   *cropper.ImagingCropper
	suggester *suggest.Suggester
	layout    viewport.Layout
	minSize   int
}

// Option configures an Editor.
type Option func(*Editor)

// WithLayout sets the viewport layout new sessions use.
func WithLayout(l viewport.Layout) Option {
	return func(e *Editor) { e.layout = l }
}

// WithCropConfig sets the raster crop settings.
func WithCropConfig(c cropper.CropConfig) Option {
	return func(e *Editor) { e.cropper = cropper.NewWithConfig(c) }
}

// WithSuggester enables Suggest.
func WithSuggester(s *suggest.Suggester) Option {
	return func(e *Editor) { e.suggester = s }
}

// WithMinImageSize rejects images with a side shorter than n pixels.
func WithMinImageSize(n int) Option {
	return func(e *Editor) { e.minSize = n }
}

// New creates an Editor with a phone-sized default layout.
func New(opts ...Option) *Editor {
	e := &Editor{
		processor: processing.NewProcessor(),
		cropper:   cropper.New(),
		layout:    viewport.DefaultLayout(types.Sz(390, 844)),
		minSize:   1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Document is an image being edited.
type Document struct {
	source  string
	image   image.Image
	session *session.Session
	subject *suggest.Suggestion
}

func (d *Document) Source() string             { return d.source }
func (d *Document) Image() image.Image         { return d.image }
func (d *Document) Session() *session.Session  { return d.session }
func (d *Document) Info() processing.ImageInfo { return processing.GetImageInfo(d.image) }

// Subject returns the last suggestion applied to the document, if any.
func (d *Document) Subject() (suggest.Suggestion, bool) {
	if d.subject == nil {
		return suggest.Suggestion{}, false
	}
	return *d.subject, true
}

// Open loads an image from a path or an http(s) URL.
func (e *Editor) Open(ctx context.Context, source string) (*Document, error) {
	img, err := e.processor.LoadImageSmart(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	doc, err := e.OpenImage(img)
	if err != nil {
		return nil, err
	}
	doc.source = source
	Logger().Info("image opened", "source", source, "size", processing.ImageSize(img))
	return doc, nil
}

// OpenImage starts a session over an already decoded image.
func (e *Editor) OpenImage(img image.Image) (*Document, error) {
	if err := processing.ValidateImage(img, e.minSize); err != nil {
		return nil, fmt.Errorf("image validation failed: %w", err)
	}
	s, err := session.New(processing.ImageSize(img), e.layout, session.WithLogger(Logger()))
	if err != nil {
		return nil, err
	}
	return &Document{image: img, session: s}, nil
}

// Suggest asks the vision model for the subject and sets the document's
// crop around it. ratio is on-screen width/height; 0 keeps the subject's
// shape.
func (e *Editor) Suggest(ctx context.Context, doc *Document, ratio float64) (suggest.Suggestion, error) {
	if e.suggester == nil {
		return suggest.Suggestion{}, fmt.Errorf("no suggester configured")
	}
	s := doc.session
	if ratio > 0 && s.Orientation().IsHorizontal() {
		ratio = 1 / ratio
	}

	crop, sg, err := e.suggester.SuggestCrop(ctx, doc.image, ratio)
	if err != nil {
		return suggest.Suggestion{}, err
	}
	if err := s.SetCropRect(crop.Rect()); err != nil {
		return suggest.Suggestion{}, err
	}
	doc.subject = &sg

	level := slog.LevelInfo
	if sg.Fallback {
		level = slog.LevelWarn
	}
	Logger().Log(ctx, level, "subject suggested",
		"label", sg.Label,
		"confidence", sg.Confidence,
		"subject", sg.Rect,
		"crop", crop.Rect(),
		"fallback", sg.Fallback,
	)
	return sg, nil
}

// Render crops the document's image to its session crop and turns the
// output to the session orientation.
func (e *Editor) Render(doc *Document) (cropper.CropResult, error) {
	s := doc.session
	return e.cropper.CropOriented(doc.image, s.Crop().Rect(), s.Orientation())
}

// DebugOverlay returns the full image with everything outside the crop
// dimmed, and the suggested subject outlined when there is one.
func (e *Editor) DebugOverlay(doc *Document) image.Image {
	var subject types.Rect
	if sg, ok := doc.Subject(); ok {
		subject = sg.Rect
	}
	return e.processor.CreateDebugOverlay(doc.image, doc.session.Crop().Rect(), subject)
}

// Save writes img to path.
func (e *Editor) Save(img image.Image, path, format string, quality int, lossless bool) error {
	if err := e.processor.SaveImage(img, path, format, quality, lossless); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	Logger().Info("image saved", "path", path, "format", format, "size", processing.ImageSize(img))
	return nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
