//go:build !linux

package thumbnail

import (
	"fmt"
	"image"
	"io"
)

func decodeHEIC(r io.Reader) (image.Image, error) {
	return nil, fmt.Errorf("%w: HEIC on this platform", ErrUnsupported)
}

func heicSupported() bool {
	return false
}
