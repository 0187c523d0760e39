package preview

import (
	"context"
	"fmt"
	"image"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/justyntemme/razorcore/internal/debug"
	"github.com/justyntemme/razorcore/internal/entry"
	"github.com/justyntemme/razorcore/internal/metrics"
	"github.com/justyntemme/razorcore/internal/thumbnail"
)

// Generator produces a thumbnail for a single file through a decoder and
// stores it in the cache. Concurrent requests for the same file version share
// one decode. It never retries; a failure is remembered in the cache.
type Generator struct {
	cache   *thumbnail.Cache
	decoder thumbnail.Decoder
	size    int

	group singleflight.Group

	// life bounds all decodes; cancelled by Close.
	life   context.Context
	cancel context.CancelFunc
}

type generated struct {
	img   image.Image
	thumb string
}

// NewGenerator creates a generator writing size x size thumbnails into cache.
func NewGenerator(cache *thumbnail.Cache, decoder thumbnail.Decoder, size int) *Generator {
	life, cancel := context.WithCancel(context.Background())
	return &Generator{
		cache:   cache,
		decoder: decoder,
		size:    size,
		life:    life,
		cancel:  cancel,
	}
}

// Generate returns a Thumbnail or Failed result for path. ctx is consulted
// only before work starts; once a decode runs it completes so other waiters
// and the cache still get its output.
func (g *Generator) Generate(ctx context.Context, path, contentType string) Result {
	failed := func(err error) Result {
		return Result{Kind: Failed, Path: path, Err: err}
	}

	if g.decoder == nil || !g.decoder.CanDecode(contentType) {
		return failed(fmt.Errorf("%w: %s", thumbnail.ErrUnsupported, contentType))
	}

	sig, err := thumbnail.SignatureOf(path)
	if err != nil {
		return failed(err)
	}
	if g.cache.Failed(path, sig) {
		return failed(fmt.Errorf("thumbnail previously failed for %s", path))
	}
	if err := ctx.Err(); err != nil {
		return failed(err)
	}

	key := g.cache.PathFor(path, sig)
	v, err, shared := g.group.Do(key, func() (any, error) {
		return g.produce(path, contentType, sig)
	})
	if err != nil {
		return failed(err)
	}
	if shared {
		debug.Log(debug.THUMB, "generator: shared decode for %s", path)
	}

	out := v.(generated)
	return Result{
		Kind:          Thumbnail,
		Path:          path,
		Image:         out.img,
		ThumbnailPath: out.thumb,
		Playable:      entry.Playable(contentType),
	}
}

func (g *Generator) produce(path, contentType string, sig thumbnail.Signature) (generated, error) {
	start := time.Now()

	img, err := g.decoder.Decode(g.life, path, contentType, g.size)
	if err != nil {
		metrics.RecordGenerate(false, time.Since(start))
		if g.life.Err() == nil {
			if merr := g.cache.MarkFailed(path, sig); merr != nil {
				debug.Log(debug.THUMB, "generator: fail marker for %s: %v", path, merr)
			}
		}
		debug.Log(debug.THUMB, "generator: %s: %v", path, err)
		return generated{}, err
	}

	img = thumbnail.Fit(img, g.size)
	thumb, err := g.cache.Store(path, sig, img)
	if err != nil {
		// Still usable for this request, just not persisted
		debug.Log(debug.THUMB, "generator: store %s: %v", path, err)
	}
	metrics.RecordGenerate(true, time.Since(start))
	return generated{img: img, thumb: thumb}, nil
}

// Close aborts running decodes.
func (g *Generator) Close() {
	g.cancel()
}
