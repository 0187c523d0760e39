//go:build !linux

package thumbnail

import (
	"context"
	"errors"
	"image"
)

// DBusDecoder is only available on Linux.
type DBusDecoder struct{}

func NewDBusDecoder(size int) (*DBusDecoder, error) {
	return nil, errors.New("thumbnailer service requires D-Bus")
}

func (d *DBusDecoder) CanDecode(string) bool { return false }

func (d *DBusDecoder) Decode(context.Context, string, string, int) (image.Image, error) {
	return nil, ErrUnsupported
}

func (d *DBusDecoder) Close() error { return nil }
