package client

import (
	"context"
)

// VisionClient sends one image and a prompt to a vision model and returns
// the model's raw text answer.
type VisionClient interface {
	Query(ctx context.Context, model, prompt string, image []byte) (string, error)
}
