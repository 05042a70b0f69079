// Package vips processes images with libvips through bimg. It needs cgo, so it lives
// apart from package media to keep everything else buildable without libvips.
package vips

import (
	"fmt"

	"github.com/h2non/bimg"
)

type Processor struct {
	maxWidth int
	quality  int
}

func New(maxWidth int) *Processor {
	return &Processor{maxWidth: maxWidth, quality: 85}
}

// Process shrinks images wider than the configured width and re-encodes them as JPEG.
func (p *Processor) Process(data []byte) ([]byte, string, error) {
	img := bimg.NewImage(data)
	size, err := img.Size()
	if err != nil {
		return nil, "", fmt.Errorf("read image size: %w", err)
	}

	options := bimg.Options{
		Type:          bimg.JPEG,
		Quality:       p.quality,
		StripMetadata: true,
	}
	if p.maxWidth > 0 && size.Width > p.maxWidth {
		options.Width = p.maxWidth
	}

	out, err := img.Process(options)
	if err != nil {
		return nil, "", fmt.Errorf("process image: %w", err)
	}
	return out, "image/jpeg", nil
}
