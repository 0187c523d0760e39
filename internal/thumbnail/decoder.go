package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
)

var (
	// ErrUnsupported is returned when no decoder handles a content type.
	ErrUnsupported = errors.New("thumbnail: unsupported content type")
	// ErrDisabled is returned when thumbnails are disabled for a location.
	ErrDisabled = errors.New("thumbnail: disabled for this location")
)

// Decoder produces a full or pre-scaled image for one file.
// Decode must return promptly once ctx is cancelled.
type Decoder interface {
	CanDecode(contentType string) bool
	Decode(ctx context.Context, path, contentType string, size int) (image.Image, error)
}

// Decoders tries each decoder in order until one succeeds.
type Decoders []Decoder

func (ds Decoders) CanDecode(contentType string) bool {
	for _, d := range ds {
		if d.CanDecode(contentType) {
			return true
		}
	}
	return false
}

func (ds Decoders) Decode(ctx context.Context, path, contentType string, size int) (image.Image, error) {
	var errs []error
	for _, d := range ds {
		if !d.CanDecode(contentType) {
			continue
		}
		img, err := d.Decode(ctx, path, contentType, size)
		if err == nil {
			return img, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, contentType)
	}
	return nil, errors.Join(errs...)
}

func majorType(contentType string) string {
	major, _, _ := strings.Cut(contentType, "/")
	return major
}
