package preview

import (
	"context"
	"image"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/justyntemme/razorcore/internal/debug"
	"github.com/justyntemme/razorcore/internal/entry"
	"github.com/justyntemme/razorcore/internal/metrics"
	"github.com/justyntemme/razorcore/internal/thumbnail"
)

// Options configures a Pipeline.
type Options struct {
	Workers    int // Concurrent preview tasks, default 4
	Classifier *entry.Classifier
	Cache      *thumbnail.Cache
	Decoder    thumbnail.Decoder
	Policy     *thumbnail.VolumePolicy // nil allows every location
	Size       int                     // Thumbnail size in pixels, default 256
}

type slotState struct {
	token     Token
	cancel    context.CancelFunc
	cancelled bool
}

// Pipeline schedules preview work for slots on a bounded worker pool.
type Pipeline struct {
	classifier *entry.Classifier
	cache      *thumbnail.Cache
	gen        *Generator
	sampler    *Sampler
	policy     *thumbnail.VolumePolicy
	sem        *semaphore.Weighted

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	slots  map[Slot]*slotState
	closed bool

	// deliverMu serializes sink calls so a slot sees its results in token order.
	// Never held together with mu while calling into a sink.
	deliverMu sync.Mutex

	tokens atomic.Uint64
}

// NewPipeline creates a pipeline.
func NewPipeline(opts Options) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Size <= 0 {
		opts.Size = 256
	}
	if opts.Classifier == nil {
		opts.Classifier = entry.NewClassifier(nil)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pipeline{
		classifier: opts.Classifier,
		cache:      opts.Cache,
		gen:        NewGenerator(opts.Cache, opts.Decoder, opts.Size),
		policy:     opts.Policy,
		sem:        semaphore.NewWeighted(int64(opts.Workers)),
		ctx:        ctx,
		cancel:     cancel,
		slots:      make(map[Slot]*slotState),
	}
	p.sampler = NewSampler(opts.Classifier, func(ctx context.Context, e entry.Entry) string {
		return p.previewFile(ctx, e).ThumbnailPath
	})
	return p
}

// NextToken returns a fresh token, larger than every token it returned before.
func (p *Pipeline) NextToken() Token {
	return Token(p.tokens.Add(1))
}

// Request schedules a preview of m for slot. A token not larger than the
// slot's current one is rejected. An accepted request supersedes the slot's
// previous request; the sink will never see that request's results.
func (p *Pipeline) Request(slot Slot, m entry.Metadata, token Token, sink Sink) bool {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	st := p.slots[slot]
	if st != nil {
		if token <= st.token {
			p.mu.Unlock()
			debug.Log(debug.PREVIEW, "pipeline: %s rejected token %d (current %d)", slot, token, st.token)
			return false
		}
		st.cancel()
	}
	ctx, cancel := context.WithCancel(p.ctx)
	p.slots[slot] = &slotState{token: token, cancel: cancel}
	p.wg.Add(1)
	p.mu.Unlock()

	e := p.classifier.Classify(m)
	metrics.RecordPreviewRequest(e.Kind.String())
	debug.Log(debug.PREVIEW, "pipeline: %s token %d %s %s", slot, token, e.Kind, e.Path)

	go p.run(ctx, slot, token, e, sink)
	return true
}

// Cancel invalidates the slot's current request and forgets the slot. Its
// work may still finish, but nothing more is delivered for it. Tokens from
// NextToken keep growing, so a later request for the slot still supersedes
// the cancelled one.
func (p *Pipeline) Cancel(slot Slot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if st := p.slots[slot]; st != nil {
		st.cancel()
		delete(p.slots, slot)
		debug.Log(debug.PREVIEW, "pipeline: %s cancelled at token %d", slot, st.token)
	}
}

// Current returns the latest token accepted for slot, 0 if none or cancelled.
func (p *Pipeline) Current(slot Slot) Token {
	p.mu.Lock()
	defer p.mu.Unlock()
	if st := p.slots[slot]; st != nil {
		return st.token
	}
	return 0
}

// Close stops accepting requests, aborts pending work and waits for workers.
func (p *Pipeline) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	for _, st := range p.slots {
		st.cancelled = true
		st.cancel()
	}
	p.mu.Unlock()

	p.cancel()
	p.gen.Close()
	p.wg.Wait()
}

func (p *Pipeline) run(ctx context.Context, slot Slot, token Token, e entry.Entry, sink Sink) {
	defer p.wg.Done()

	if err := p.sem.Acquire(ctx, 1); err != nil {
		// Superseded while queued
		metrics.RecordPreviewStale()
		return
	}
	defer p.sem.Release(1)
	metrics.PreviewWorkerStarted()
	defer metrics.PreviewWorkerDone()

	switch e.Kind {
	case entry.Directory:
		p.runDirectory(ctx, slot, token, e, sink)
	case entry.TrashedItem:
		p.deliver(slot, token, sink, p.previewTrashed(e))
	case entry.File:
		p.deliver(slot, token, sink, p.previewFile(ctx, e))
	}
}

// runDirectory delivers a growing stack after each sampled child, then a
// final complete one. Nothing is delivered before the first child resolves
// or enumeration ends.
func (p *Pipeline) runDirectory(ctx context.Context, slot Slot, token Token, e entry.Entry, sink Sink) {
	var samples []ChildSample
	result := func(complete bool) Result {
		return Result{
			Kind:  DirectoryStack,
			Path:  e.Path,
			Icon:  e.Icon,
			Color: e.Color,
			Stack: Stack{
				Samples:  append([]ChildSample(nil), samples...),
				Open:     len(samples) > 0,
				Complete: complete,
			},
		}
	}

	for sample := range p.sampler.Sample(ctx, e.Path) {
		samples = append(samples, sample)
		if len(samples) < MaxSamples {
			if !p.deliver(slot, token, sink, result(false)) {
				return
			}
		}
	}
	if ctx.Err() != nil {
		metrics.RecordPreviewStale()
		return
	}
	p.deliver(slot, token, sink, result(true))
}

// previewFile resolves a file to a cached or generated thumbnail, or a fallback.
func (p *Pipeline) previewFile(ctx context.Context, e entry.Entry) Result {
	if e.ThumbnailPath != "" {
		if img, err := p.cache.Load(e.ThumbnailPath); err == nil {
			metrics.RecordCacheLookup(true)
			return thumbnailResult(e, img, e.ThumbnailPath)
		}
	}

	sig, err := thumbnail.SignatureOf(e.Path)
	if err != nil {
		debug.Log(debug.PREVIEW, "pipeline: stat %s: %v", e.Path, err)
		return fallback(e, err)
	}
	if thumb, ok := p.cache.Lookup(e.Path, sig); ok {
		if img, err := p.cache.Load(thumb); err == nil {
			metrics.RecordCacheLookup(true)
			return thumbnailResult(e, img, thumb)
		}
	}
	metrics.RecordCacheLookup(false)

	if !p.policy.Allows(e.Path) {
		return fallback(e, thumbnail.ErrDisabled)
	}
	if ctx.Err() != nil {
		return fallback(e, ctx.Err())
	}

	r := p.gen.Generate(ctx, e.Path, e.ContentType)
	if r.Kind == Failed {
		return fallback(e, r.Err)
	}
	r.Icon = e.Icon
	r.Color = e.Color
	return r
}

// previewTrashed never generates; only an existing thumbnail is shown.
func (p *Pipeline) previewTrashed(e entry.Entry) Result {
	if e.ThumbnailPath != "" {
		if img, err := p.cache.Load(e.ThumbnailPath); err == nil {
			return thumbnailResult(e, img, e.ThumbnailPath)
		}
	}
	if sig, err := thumbnail.SignatureOf(e.Path); err == nil {
		if thumb, ok := p.cache.Lookup(e.Path, sig); ok {
			if img, err := p.cache.Load(thumb); err == nil {
				return thumbnailResult(e, img, thumb)
			}
		}
	}
	return fallback(e, nil)
}

func thumbnailResult(e entry.Entry, img image.Image, thumb string) Result {
	return Result{
		Kind:          Thumbnail,
		Path:          e.Path,
		Image:         img,
		ThumbnailPath: thumb,
		Playable:      entry.Playable(e.ContentType),
		Icon:          e.Icon,
		Color:         e.Color,
	}
}

// deliver hands r to sink if token is still current for slot. A slot that
// was cancelled has no state and counts as stale. A Request may still land
// between the check and the sink call, which is why sinks re-check tokens.
func (p *Pipeline) deliver(slot Slot, token Token, sink Sink, r Result) bool {
	p.deliverMu.Lock()
	defer p.deliverMu.Unlock()

	p.mu.Lock()
	st := p.slots[slot]
	current := st != nil && st.token == token && !st.cancelled
	p.mu.Unlock()

	if !current {
		metrics.RecordPreviewStale()
		debug.Log(debug.PREVIEW, "pipeline: %s dropped stale token %d", slot, token)
		return false
	}

	r.Token = token
	metrics.RecordPreviewDelivery(r.Kind.String())
	sink.Deliver(slot, r)
	return true
}
