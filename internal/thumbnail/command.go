package thumbnail

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"strconv"

	"github.com/justyntemme/razorcore/internal/debug"
)

// CommandDecoder renders video frames through an external thumbnailer
// with an ffmpegthumbnailer-compatible command line.
type CommandDecoder struct {
	path string
}

// NewCommandDecoder resolves name on PATH. It returns nil when the command
// is not installed, so callers can leave it out of their Decoders.
func NewCommandDecoder(name string) *CommandDecoder {
	if name == "" {
		return nil
	}
	p, err := exec.LookPath(name)
	if err != nil {
		debug.Log(debug.THUMB, "command: %s not found, video thumbnails off", name)
		return nil
	}
	return &CommandDecoder{path: p}
}

func (d *CommandDecoder) CanDecode(contentType string) bool {
	return d != nil && majorType(contentType) == "video"
}

func (d *CommandDecoder) Decode(ctx context.Context, path, contentType string, size int) (image.Image, error) {
	out, err := os.CreateTemp("", "razor-frame-*.png")
	if err != nil {
		return nil, err
	}
	outName := out.Name()
	out.Close()
	defer os.Remove(outName)

	cmd := exec.CommandContext(ctx, d.path,
		"-i", path,
		"-o", outName,
		"-s", strconv.Itoa(size),
		"-c", "png",
	)
	if msg, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w: %s", d.path, err, msg)
	}

	f, err := os.Open(outName)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode frame of %s: %w", path, err)
	}
	return img, nil
}
