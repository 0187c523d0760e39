package ui

import (
	"container/list"
	"image"
	"sync"

	"gioui.org/op/paint"
	"golang.org/x/image/draw"

	"github.com/justyntemme/razorcore/internal/debug"
	"github.com/justyntemme/razorcore/internal/preview"
)

// Preview is what a slot currently shows.
type Preview struct {
	Result   preview.Result
	Image    paint.ImageOp // Valid when HasImage
	Size     image.Point   // Original image dimensions
	HasImage bool
}

// ThumbnailCache is a preview.Sink that keeps the latest result for each
// slot, ready to paint. Results for a token other than the one the slot
// expects are ignored. Image results are scaled down to maxPixels and held
// in an LRU of maxSize slots.
type ThumbnailCache struct {
	mu        sync.RWMutex
	slots     map[preview.Slot]*thumbnailEntry
	expect    map[preview.Slot]preview.Token
	lru       *list.List // front = most recent
	maxSize   int
	maxPixels int

	invalidate func() // Asks the window for a new frame, may be nil
}

type thumbnailEntry struct {
	slot    preview.Slot
	preview Preview
	element *list.Element
}

// NewThumbnailCache creates a sink. invalidate is called after every
// accepted delivery, typically app.Window.Invalidate.
func NewThumbnailCache(maxEntries, maxPixels int, invalidate func()) *ThumbnailCache {
	return &ThumbnailCache{
		slots:      make(map[preview.Slot]*thumbnailEntry),
		expect:     make(map[preview.Slot]preview.Token),
		lru:        list.New(),
		maxSize:    maxEntries,
		maxPixels:  maxPixels,
		invalidate: invalidate,
	}
}

// Expect records the token just requested for slot. The slot's previous
// content stays visible until a result for the new token arrives.
func (tc *ThumbnailCache) Expect(slot preview.Slot, token preview.Token) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.expect[slot] = token
}

// Forget drops a slot that is no longer on screen.
func (tc *ThumbnailCache) Forget(slot preview.Slot) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	delete(tc.expect, slot)
	if e, ok := tc.slots[slot]; ok {
		tc.lru.Remove(e.element)
		delete(tc.slots, slot)
	}
}

// Deliver implements preview.Sink.
func (tc *ThumbnailCache) Deliver(slot preview.Slot, r preview.Result) {
	tc.mu.RLock()
	want, ok := tc.expect[slot]
	tc.mu.RUnlock()
	if !ok || want != r.Token {
		debug.Log(debug.UI, "ThumbnailCache: %s ignoring token %d (want %d)", slot, r.Token, want)
		return
	}

	p := Preview{Result: r}
	if r.Image != nil {
		// Scale outside the lock; it is the expensive part
		p.Size = r.Image.Bounds().Size()
		p.Image = paint.NewImageOp(tc.scaleThumbnail(r.Image))
		p.HasImage = true
	}

	tc.mu.Lock()
	// The slot may have been re-requested while scaling
	if tc.expect[slot] != r.Token {
		tc.mu.Unlock()
		return
	}
	tc.put(slot, p)
	tc.mu.Unlock()

	debug.Log(debug.UI, "ThumbnailCache: %s <- %s (token %d)", slot, r.Kind, r.Token)
	if tc.invalidate != nil {
		tc.invalidate()
	}
}

// Get returns what slot currently shows.
func (tc *ThumbnailCache) Get(slot preview.Slot) (Preview, bool) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	e, ok := tc.slots[slot]
	if !ok {
		return Preview{}, false
	}
	tc.lru.MoveToFront(e.element)
	return e.preview, true
}

// scaleThumbnail scales an image down to fit within maxPixels.
func (tc *ThumbnailCache) scaleThumbnail(src image.Image) image.Image {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if tc.maxPixels <= 0 || (width <= tc.maxPixels && height <= tc.maxPixels) {
		return src
	}

	var scale float64
	if width > height {
		scale = float64(tc.maxPixels) / float64(width)
	} else {
		scale = float64(tc.maxPixels) / float64(height)
	}
	newWidth := max(1, int(float64(width)*scale))
	newHeight := max(1, int(float64(height)*scale))

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}

// put stores a slot's preview, evicting the least recently shown slots.
// Must hold tc.mu.
func (tc *ThumbnailCache) put(slot preview.Slot, p Preview) {
	if e, ok := tc.slots[slot]; ok {
		e.preview = p
		tc.lru.MoveToFront(e.element)
		return
	}

	for tc.maxSize > 0 && tc.lru.Len() >= tc.maxSize {
		oldest := tc.lru.Back()
		if oldest == nil {
			break
		}
		old := oldest.Value.(*thumbnailEntry)
		delete(tc.slots, old.slot)
		tc.lru.Remove(oldest)
		debug.Log(debug.UI, "ThumbnailCache: evicted %s", old.slot)
	}

	e := &thumbnailEntry{slot: slot, preview: p}
	e.element = tc.lru.PushFront(e)
	tc.slots[slot] = e
}

// Size returns the number of slots with content.
func (tc *ThumbnailCache) Size() int {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return len(tc.slots)
}
