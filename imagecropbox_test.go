package imagecropbox

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/menta2k/image-cropbox/pkg/cropbox"
	"github.com/menta2k/image-cropbox/pkg/orientation"
	"github.com/menta2k/image-cropbox/pkg/suggest"
	"github.com/menta2k/image-cropbox/pkg/types"
)

// createTestImage creates a simple test image
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x > width/3 && x < 2*width/3 && y > height/3 && y < 2*height/3 {
				img.Set(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				img.Set(x, y, color.RGBA{64, 64, 64, 255})
			}
		}
	}

	return img
}

type fakeClient struct{ answer string }

func (f fakeClient) Query(ctx context.Context, model, prompt string, image []byte) (string, error) {
	return f.answer, nil
}

func TestNew(t *testing.T) {
	e := New()
	if e == nil {
		t.Fatal("New() returned nil")
	}
	if e.processor == nil || e.cropper == nil {
		t.Error("Expected processor and cropper to be set")
	}
	if e.suggester != nil {
		t.Error("Expected no suggester by default")
	}
}

func TestOpenImage(t *testing.T) {
	doc, err := New().OpenImage(createTestImage(400, 300))
	if err != nil {
		t.Fatalf("OpenImage failed: %v", err)
	}
	if doc.Session().Crop().Rect() != types.R(0, 0, 400, 300) {
		t.Errorf("Expected full-image crop, got %v", doc.Session().Crop().Rect())
	}
	if info := doc.Info(); info.Width != 400 || info.Height != 300 {
		t.Errorf("Unexpected info %+v", info)
	}

	if _, err := New(WithMinImageSize(500)).OpenImage(createTestImage(400, 300)); err == nil {
		t.Error("Expected validation error for a small image")
	}
}

func TestOpenAndSave(t *testing.T) {
	e := New()
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	if err := e.Save(createTestImage(64, 48), src, "png", 90, false); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	doc, err := e.Open(context.Background(), src)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if doc.Source() != src {
		t.Errorf("Expected source %q, got %q", src, doc.Source())
	}
	if got := doc.Session().Crop().Bounds(); got != types.Sz(64, 48) {
		t.Errorf("Expected bounds 64x48, got %v", got)
	}

	if _, err := e.Open(context.Background(), filepath.Join(dir, "missing.png")); err == nil {
		t.Error("Expected error for a missing file")
	}
}

func TestRenderRotated(t *testing.T) {
	e := New()
	doc, err := e.OpenImage(createTestImage(400, 300))
	if err != nil {
		t.Fatalf("OpenImage failed: %v", err)
	}
	s := doc.Session()
	if err := s.SetOrientation(orientation.Right); err != nil {
		t.Fatalf("SetOrientation failed: %v", err)
	}
	if err := s.SetRatio(2); err != nil {
		t.Fatalf("SetRatio failed: %v", err)
	}

	result, err := e.Render(doc)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if result.Rect != types.R(125, 0, 150, 300) {
		t.Errorf("Expected image-space crop (125,0 150x300), got %v", result.Rect)
	}
	if b := result.Image.Bounds(); b.Dx() != 300 || b.Dy() != 150 {
		t.Errorf("Expected a 300x150 output, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestRenderAfterDrag(t *testing.T) {
	e := New()
	doc, _ := e.OpenImage(createTestImage(400, 300))
	s := doc.Session()

	if err := s.BeginResize(cropbox.BottomRight); err != nil {
		t.Fatalf("BeginResize failed: %v", err)
	}
	// 400px over a 350pt wide crop box
	s.Drag(types.Pt(-35, -35))
	s.Drag(types.Pt(-35, -35))
	if _, err := s.EndDrag(); err != nil {
		t.Fatalf("EndDrag failed: %v", err)
	}

	result, err := e.Render(doc)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if b := result.Image.Bounds(); b.Dx() != 320 || b.Dy() != 220 {
		t.Errorf("Expected 320x220, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestSuggest(t *testing.T) {
	answer := `{"primary":{"label":"lamp","confidence":0.9,"box":{"x":0.25,"y":0.25,"w":0.5,"h":0.5}}}`
	e := New(WithSuggester(suggest.New(fakeClient{answer}, suggest.Config{})))
	doc, _ := e.OpenImage(createTestImage(400, 300))

	sg, err := e.Suggest(context.Background(), doc, 0)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if sg.Label != "lamp" {
		t.Errorf("Expected lamp, got %q", sg.Label)
	}
	if got := doc.Session().Crop().Rect(); got != types.R(100, 75, 200, 150) {
		t.Errorf("Expected crop on the subject, got %v", got)
	}
	if _, ok := doc.Subject(); !ok {
		t.Error("Expected the subject to be kept")
	}

	overlay := e.DebugOverlay(doc)
	if overlay.Bounds().Dx() != 400 || overlay.Bounds().Dy() != 300 {
		t.Errorf("Expected a full-size overlay, got %v", overlay.Bounds())
	}

	if _, err := New().Suggest(context.Background(), doc, 0); err == nil {
		t.Error("Expected error without a suggester")
	}
}

func TestLogger(t *testing.T) {
	defer SetLogger(nil)

	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("Expected the default logger to be disabled")
	}

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	doc, err := New().OpenImage(createTestImage(100, 100))
	if err != nil {
		t.Fatalf("OpenImage failed: %v", err)
	}
	doc.Session().BeginPan()
	doc.Session().EndDrag()
	if !strings.Contains(buf.String(), "gesture ended") {
		t.Errorf("Expected session logs to reach the configured logger, got %q", buf.String())
	}

	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("Expected SetLogger(nil) to restore the silent logger")
	}
}

func TestGetVersion(t *testing.T) {
	if GetVersion() != Version {
		t.Errorf("Expected %s, got %s", Version, GetVersion())
	}
}
