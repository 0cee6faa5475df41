// Package suggest asks a vision model where the primary subject of an image
// is and turns the answer into a starting crop.
package suggest

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/menta2k/image-cropbox/pkg/client"
	"github.com/menta2k/image-cropbox/pkg/cropbox"
	"github.com/menta2k/image-cropbox/pkg/processing"
	"github.com/menta2k/image-cropbox/pkg/types"
)

// DefaultPrompt asks for the subject box in normalized coordinates.
const DefaultPrompt = `You are an image subject locator.

Return JSON only:
{
  "primary": {
    "label": "string",
    "confidence": 0.0,
    "box": {"x": 0.0, "y": 0.0, "w": 0.0, "h": 0.0}
  },
  "description": "short neutral sentence (≤ 20 words)",
  "tags": ["tag1", "tag2", "tag3", "tag4", "tag5"]
}

HARD RULES
- All coordinates are normalized to [0,1] (NOT pixels). x,y is the top-left corner.
- The box should tightly include the visually dominant subject (prefer people/vehicles/animals; else the most central salient object).
- Description must be brief and factual. Do not guess real identities.
- Tags: lowercase, concise, no punctuation or duplicates.
- If no subject is found, return:
  {
    "primary":{"label":"none","confidence":0.0,"box":{"x":0.25,"y":0.25,"w":0.50,"h":0.50}},
    "description":"centered generic scene",
    "tags":["generic","center","subject","photo","scene"]
  }
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

// Config controls how images are sent and answers are used.
type Config struct {
	Model  string
	Prompt string
	// MaxDim bounds the longer side of the image sent to the model.
	MaxDim  int
	Format  string
	Quality int
	// Padding grows the subject box by this fraction of its size per side.
	Padding float64
	// MinConfidence below which the answer is treated as no subject.
	MinConfidence float64
}

// DefaultConfig returns the settings used by the CLI.
func DefaultConfig() Config {
	return Config{
		Model:         "minicpm-v",
		Prompt:        DefaultPrompt,
		MaxDim:        1024,
		Format:        "jpg",
		Quality:       85,
		Padding:       0.1,
		MinConfidence: 0.2,
	}
}

// Suggestion is a subject located in image pixels.
type Suggestion struct {
	Label       string     `json:"label"`
	Confidence  float64    `json:"confidence"`
	Description string     `json:"description,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Rect        types.Rect `json:"rect"`
	// Fallback is set when the model gave no usable subject and Rect is
	// the centered half of the image.
	Fallback bool `json:"fallback"`
}

// Suggester locates subjects with a vision model.
type Suggester struct {
	client    client.VisionClient
	processor *processing.Processor
	config    Config
}

// New creates a Suggester. Zero config fields take their defaults.
func New(c client.VisionClient, config Config) *Suggester {
	def := DefaultConfig()
	if config.Model == "" {
		config.Model = def.Model
	}
	if config.Prompt == "" {
		config.Prompt = def.Prompt
	}
	if config.Format == "" {
		config.Format = def.Format
	}
	if config.Quality <= 0 {
		config.Quality = def.Quality
	}
	return &Suggester{client: c, processor: processing.NewProcessor(), config: config}
}

// Suggest asks the model for the primary subject of img.
func (s *Suggester) Suggest(ctx context.Context, img image.Image) (Suggestion, error) {
	if img == nil {
		return Suggestion{}, fmt.Errorf("no image")
	}
	size := processing.ImageSize(img)
	if !size.Valid() {
		return Suggestion{}, fmt.Errorf("%w: image %v", types.ErrInvalidGeometry, size)
	}

	payload, err := s.processor.PrepareImageForModel(img, s.config.Format, s.config.MaxDim, s.config.Quality)
	if err != nil {
		return Suggestion{}, fmt.Errorf("failed to prepare image: %w", err)
	}
	raw, err := s.client.Query(ctx, s.config.Model, s.config.Prompt, payload)
	if err != nil {
		return Suggestion{}, fmt.Errorf("subject query failed: %w", err)
	}

	result, ok := ParseSubject(raw)
	if ok && result.Primary.Confidence < s.config.MinConfidence {
		ok = false
		result.Primary.Box = fallbackBox
	}
	box := normalizeBox(result.Primary.Box, sentSize(size, s.config.MaxDim))

	return Suggestion{
		Label:       result.Primary.Label,
		Confidence:  result.Primary.Confidence,
		Description: result.Description,
		Tags:        normalizeTags(result.Tags),
		Rect:        box.Scale(size),
		Fallback:    !ok,
	}, nil
}

// SuggestCrop locates the subject and returns a crop around it. With a
// positive ratio the crop is the smallest box of that ratio covering the
// padded subject, centered on it where the bounds allow.
func (s *Suggester) SuggestCrop(ctx context.Context, img image.Image, ratio float64) (cropbox.CropRect, Suggestion, error) {
	sg, err := s.Suggest(ctx, img)
	if err != nil {
		return cropbox.CropRect{}, Suggestion{}, err
	}
	crop, err := CropAround(sg.Rect, processing.ImageSize(img), s.config.Padding, ratio)
	if err != nil {
		return cropbox.CropRect{}, sg, err
	}
	return crop, sg, nil
}

// CropAround builds a crop covering subject grown by padding on each side.
// A zero ratio keeps the subject's own shape.
func CropAround(subject types.Rect, bounds types.Size, padding, ratio float64) (cropbox.CropRect, error) {
	if ratio < 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return cropbox.CropRect{}, fmt.Errorf("%w: ratio %g", types.ErrInvalidGeometry, ratio)
	}
	padded := subject.Inset(-padding*subject.Size.Width, -padding*subject.Size.Height)

	if ratio > 0 && padded.Size.Valid() {
		w, h := padded.Size.Width, padded.Size.Height
		if w/h < ratio {
			w = h * ratio
		} else {
			h = w / ratio
		}
		c := padded.Center()
		padded = types.R(c.X-w/2, c.Y-h/2, w, h)
	}

	crop, err := cropbox.FitToBounds(padded, bounds)
	if err != nil {
		return cropbox.CropRect{}, err
	}
	if ratio > 0 {
		// a covering box larger than the image shrinks; re-center it
		c := padded.Center()
		crop = crop.SetOrigin(types.Pt(c.X-crop.Rect().Size.Width/2, c.Y-crop.Rect().Size.Height/2))
	}
	return crop, nil
}

// sentSize is the size of the image after PrepareImageForModel.
func sentSize(s types.Size, maxDim int) types.Size {
	m := float64(maxDim)
	if maxDim <= 0 || (s.Width <= m && s.Height <= m) {
		return s
	}
	if s.Width >= s.Height {
		return types.Sz(m, math.Round(s.Height*m/s.Width))
	}
	return types.Sz(math.Round(s.Width*m/s.Height), m)
}
