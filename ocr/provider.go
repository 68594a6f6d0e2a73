package ocr

import (
	"context"
	"fmt"
	"image"

	"lexipop/config"
)

// Word is one recognized word with its screen-space bounding box.
type Word struct {
	Text string `json:"text"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	W    int    `json:"w"`
	H    int    `json:"h"`
}

// Contains reports whether the point lies inside the word's bounding box.
func (w Word) Contains(x, y int) bool {
	return x >= w.X && x < w.X+w.W && y >= w.Y && y < w.Y+w.H
}

// Provider defines the interface for text recognition
type Provider interface {
	Name() string
	Recognize(ctx context.Context, img image.Image) ([]Word, error)
}

// NewProvider creates a recognition provider based on configuration
func NewProvider(set config.Settings) (Provider, error) {
	switch set.OCRProvider {
	case "remote":
		if set.OCREndpoint == "" {
			return nil, fmt.Errorf("ocr_endpoint is required for the remote provider")
		}
		return NewRemoteProvider(set.OCREndpoint), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", set.OCRProvider)
	}
}
