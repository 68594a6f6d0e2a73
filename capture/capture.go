// Package capture grabs screenshots for the recognition pipeline.
package capture

import (
	"context"
	"image"
)

// Options tunes platform-specific capture behavior.
type Options struct {
	// MagpieCompatibility captures the foreground window instead of the
	// whole virtual screen, so upscaler overlays are grabbed at their
	// rendered size. Windows only.
	MagpieCompatibility bool
}

// Capturer grabs the current screen contents. Implementations hold
// platform resources and must be closed.
type Capturer interface {
	Capture(ctx context.Context) (image.Image, error)
	Close() error
}

// New returns the capturer for the current platform.
func New(opts Options) (Capturer, error) {
	return newCapturer(opts)
}
