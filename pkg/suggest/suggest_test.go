package suggest

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"reflect"
	"testing"

	"github.com/menta2k/image-cropbox/pkg/types"
)

type fakeClient struct {
	answer  string
	err     error
	model   string
	payload []byte
}

func (f *fakeClient) Query(ctx context.Context, model, prompt string, image []byte) (string, error) {
	f.model = model
	f.payload = image
	return f.answer, f.err
}

func testImage(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	return img
}

const dogAnswer = `{"primary":{"label":"dog","confidence":0.9,"box":{"x":0.25,"y":0.2,"w":0.5,"h":0.6}},"description":"a dog","tags":["Dog","dog"," animal "]}`

func TestSuggest(t *testing.T) {
	fc := &fakeClient{answer: dogAnswer}
	s := New(fc, Config{Model: "llava"})

	sg, err := s.Suggest(context.Background(), testImage(200, 100))
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if fc.model != "llava" {
		t.Errorf("Expected model llava, got %q", fc.model)
	}
	if sg.Fallback || sg.Label != "dog" {
		t.Errorf("Expected dog, got %+v", sg)
	}
	if sg.Rect != types.R(50, 20, 100, 60) {
		t.Errorf("Expected (50,20 100x60), got %v", sg.Rect)
	}
	if !reflect.DeepEqual(sg.Tags, []string{"dog", "animal"}) {
		t.Errorf("Expected cleaned tags, got %v", sg.Tags)
	}
}

func TestSuggestPayload(t *testing.T) {
	fc := &fakeClient{answer: dogAnswer}
	cfg := DefaultConfig()
	cfg.MaxDim = 100
	s := New(fc, cfg)

	if _, err := s.Suggest(context.Background(), testImage(400, 200)); err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(fc.payload))
	if err != nil {
		t.Fatalf("Expected a JPEG payload: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
		t.Errorf("Expected 100x50 payload, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestSuggestPixelBox(t *testing.T) {
	// The model saw a 100x50 image and answered in its pixels.
	fc := &fakeClient{answer: `{"primary":{"label":"cat","confidence":0.8,"box":{"x":25,"y":10,"w":50,"h":30}}}`}
	cfg := DefaultConfig()
	cfg.MaxDim = 100
	s := New(fc, cfg)

	sg, err := s.Suggest(context.Background(), testImage(200, 100))
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if sg.Rect != types.R(50, 20, 100, 60) {
		t.Errorf("Expected (50,20 100x60), got %v", sg.Rect)
	}
}

func TestSuggestFallbacks(t *testing.T) {
	answers := []string{
		"I see a dog in a park.",
		`{"primary":{"label":"none","confidence":0.0,"box":{"x":0.1,"y":0.1,"w":0.2,"h":0.2}}}`,
		`{"primary":{"label":"blur","confidence":0.05,"box":{"x":0.1,"y":0.1,"w":0.2,"h":0.2}}}`,
		`{"primary": {"label": "dog", "confidence": }`,
	}
	for _, a := range answers {
		s := New(&fakeClient{answer: a}, DefaultConfig())
		sg, err := s.Suggest(context.Background(), testImage(200, 100))
		if err != nil {
			t.Fatalf("Suggest(%q) failed: %v", a, err)
		}
		if !sg.Fallback {
			t.Errorf("Suggest(%q): expected fallback", a)
		}
		if sg.Rect != types.R(50, 25, 100, 50) {
			t.Errorf("Suggest(%q): expected centered half box, got %v", a, sg.Rect)
		}
	}
}

func TestSuggestClientError(t *testing.T) {
	boom := errors.New("connection refused")
	s := New(&fakeClient{err: boom}, DefaultConfig())
	if _, err := s.Suggest(context.Background(), testImage(10, 10)); !errors.Is(err, boom) {
		t.Errorf("Expected wrapped client error, got %v", err)
	}
}

func TestParseSubjectSanitizes(t *testing.T) {
	raw := "```json\n{\n  // subject\n  \"primary\": {\"label\": \"car\", \"confidence\": 0.7, /* tight */ \"box\": {\"x\": 0.1, \"y\": 0.2, \"w\": 0.3, \"h\": 0.4},},\n  \"tags\": [\"red\", \"car\",],\n}\n```"
	result, ok := ParseSubject(raw)
	if !ok {
		t.Fatalf("Expected the answer to parse, got %+v", result)
	}
	if result.Primary.Label != "car" || result.Primary.Box != (types.Box{X: 0.1, Y: 0.2, W: 0.3, H: 0.4}) {
		t.Errorf("Unexpected result %+v", result.Primary)
	}
	if len(result.Tags) != 2 {
		t.Errorf("Expected 2 tags, got %v", result.Tags)
	}
}

func TestNormalizeBox(t *testing.T) {
	got := normalizeBox(types.Box{X: -0.1, Y: 0.5, W: 2, H: 0.8}, types.Size{})
	want := types.Box{X: 0, Y: 0.5, W: 1, H: 0.5}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestCropAround(t *testing.T) {
	bounds := types.Sz(200, 100)
	tests := []struct {
		name    string
		subject types.Rect
		padding float64
		ratio   float64
		want    types.Rect
	}{
		{"square", types.R(50, 20, 100, 60), 0, 1, types.R(50, 0, 100, 100)},
		{"padded", types.R(50, 20, 100, 60), 0.1, 0, types.R(40, 14, 120, 72)},
		{"too large", types.R(0, 0, 200, 100), 0, 1, types.R(50, 0, 100, 100)},
		{"edge", types.R(0, 0, 20, 20), 0, 2, types.R(0, 0, 40, 20)},
	}
	for _, tt := range tests {
		crop, err := CropAround(tt.subject, bounds, tt.padding, tt.ratio)
		if err != nil {
			t.Fatalf("%s: CropAround failed: %v", tt.name, err)
		}
		if crop.Rect() != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, crop.Rect())
		}
	}

	if _, err := CropAround(types.R(0, 0, 10, 10), bounds, 0, -1); !errors.Is(err, types.ErrInvalidGeometry) {
		t.Errorf("Expected ErrInvalidGeometry, got %v", err)
	}
}

func TestSuggestCrop(t *testing.T) {
	s := New(&fakeClient{answer: dogAnswer}, Config{Padding: 0})
	crop, sg, err := s.SuggestCrop(context.Background(), testImage(200, 100), 1)
	if err != nil {
		t.Fatalf("SuggestCrop failed: %v", err)
	}
	if sg.Label != "dog" {
		t.Errorf("Expected dog, got %q", sg.Label)
	}
	if crop.Rect() != types.R(50, 0, 100, 100) {
		t.Errorf("Expected (50,0 100x100), got %v", crop.Rect())
	}
}
