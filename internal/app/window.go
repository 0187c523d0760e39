package app

import (
	"context"
	"os"
	"path/filepath"
	"slices"

	"gioui.org/app"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/unit"
	"gioui.org/widget/material"
	"go.uber.org/zap"

	"github.com/justyntemme/razorcore/internal/debug"
	"github.com/justyntemme/razorcore/internal/entry"
	"github.com/justyntemme/razorcore/internal/logging"
	"github.com/justyntemme/razorcore/internal/preview"
	"github.com/justyntemme/razorcore/internal/ui"
)

type fetchResult struct {
	loc     string
	entries []entry.Entry
	err     error
}

// window is the Gio thumbnail grid. Every visible tile is its own preview
// slot; tiles that scroll out of view are cancelled and forgotten.
type window struct {
	o       *Orchestrator
	w       *app.Window
	grid    *ui.Grid
	thumbs  *ui.ThumbnailCache
	history *History

	loc       string
	entries   []entry.Entry
	requested map[preview.Slot]bool
	fetched   chan fetchResult
	shows     chan ShowRequest
	reveal    string // Path to select once listed
}

// Main shows start in a window and exits the process when it is closed.
// It must be called from the main goroutine.
func Main(o *Orchestrator, start string) {
	go func() {
		err := runWindow(o, start)
		o.Close()
		logging.Sync()
		if err != nil {
			logging.Error("window closed with error", zap.Error(err))
			os.Exit(1)
		}
		os.Exit(0)
	}()
	app.Main()
}

func runWindow(o *Orchestrator, start string) error {
	w := new(app.Window)
	w.Option(app.Title("razor"), app.Size(unit.Dp(1000), unit.Dp(700)))

	size := min(o.Config.Preview.ThumbnailSize, 128)
	win := &window{
		o:         o,
		w:         w,
		grid:      ui.NewGrid(material.NewTheme(), size),
		thumbs:    ui.NewThumbnailCache(o.Config.Preview.MemoryEntries, size, w.Invalidate),
		history:   NewHistory(),
		requested: make(map[preview.Slot]bool),
		fetched:   make(chan fetchResult, 1),
		shows:     make(chan ShowRequest, 4),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go win.watchStale(ctx)
	if o.FileManager != nil {
		go win.watchShows(ctx)
	}

	if start == "" {
		start, _ = os.UserHomeDir()
	}
	win.visit(ctx, ExpandPath(start, ""))

	var ops op.Ops
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			win.drain(ctx)
			gtx := app.NewContext(&ops, e)
			win.handleKeys(ctx, gtx)
			ev := win.grid.Layout(gtx, win.entries, win.thumbs)
			win.updateSlots(ev)
			if ev.Open >= 0 {
				win.open(ctx, win.entries[ev.Open])
			}
			e.Frame(gtx.Ops)
		}
	}
}

func (win *window) handleKeys(ctx context.Context, gtx layout.Context) {
	for {
		ev, ok := gtx.Event(key.Filter{Name: key.NameDeleteBackward}, key.Filter{Name: key.NameReturn})
		if !ok {
			return
		}
		e, ok := ev.(key.Event)
		if !ok || e.State != key.Press {
			continue
		}
		switch e.Name {
		case key.NameDeleteBackward:
			if loc, ok := win.history.Up(); ok {
				win.show(ctx, loc)
			}
		case key.NameReturn:
			if i := win.grid.Selected; i >= 0 && i < len(win.entries) {
				win.open(ctx, win.entries[i])
			}
		}
	}
}

func (win *window) open(ctx context.Context, e entry.Entry) {
	if e.IsDir() {
		win.visit(ctx, e.Path)
		return
	}
	if e.Kind == entry.TrashedItem {
		return
	}
	if err := OpenFile(e.Path); err != nil {
		logging.Warn("open failed", zap.String("path", e.Path), zap.Error(err))
	}
}

func (win *window) visit(ctx context.Context, loc string) {
	win.history.Visit(loc)
	win.show(ctx, loc)
}

// show switches the window to loc. Slots of the old location are
// cancelled so none of their late results reach the grid.
func (win *window) show(ctx context.Context, loc string) {
	if win.loc != "" {
		win.o.Listing.Hide(win.loc)
	}
	for slot := range win.requested {
		win.o.Pipeline.Cancel(slot)
		win.thumbs.Forget(slot)
	}
	clear(win.requested)

	win.loc = loc
	win.entries = nil
	win.grid.Reset()
	win.o.Listing.Show(loc)
	win.w.Option(app.Title("razor - " + filepath.Base(loc)))
	win.fetch(ctx, loc)
}

func (win *window) fetch(ctx context.Context, loc string) {
	go func() {
		entries, err := win.o.Listing.Fetch(ctx, loc)
		select {
		case win.fetched <- fetchResult{loc: loc, entries: entries, err: err}:
		case <-ctx.Done():
			return
		}
		win.w.Invalidate()
	}()
}

// drain applies finished listings and show requests on the frame
// goroutine.
func (win *window) drain(ctx context.Context) {
	for {
		select {
		case req := <-win.shows:
			win.reveal = req.Item
			win.visit(ctx, req.Folder)
		case l := <-win.fetched:
			if l.loc != win.loc {
				continue
			}
			if l.err != nil {
				logging.Warn("listing failed", zap.String("location", l.loc), zap.Error(l.err))
				continue
			}
			win.entries = l.entries
			if win.reveal != "" {
				win.grid.Selected = slices.IndexFunc(l.entries, func(e entry.Entry) bool { return e.Path == win.reveal })
				win.reveal = ""
			}
			// A refreshed listing may have changed content under the same slots
			for slot := range win.requested {
				win.o.Pipeline.Cancel(slot)
			}
			clear(win.requested)
		default:
			return
		}
	}
}

func (win *window) watchStale(ctx context.Context) {
	for {
		select {
		case loc := <-win.o.Listing.Stale():
			debug.Log(debug.UI, "window: %s is stale", loc)
			win.fetch(ctx, loc)
		case <-ctx.Done():
			return
		}
	}
}

func (win *window) watchShows(ctx context.Context) {
	for {
		select {
		case req := <-win.o.FileManager.Requests():
			select {
			case win.shows <- req:
				win.w.Invalidate()
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// updateSlots requests previews for tiles that came into view and drops
// the ones that left it.
func (win *window) updateSlots(ev ui.GridEvent) {
	visible := make(map[preview.Slot]bool, ev.Visible)
	for i := ev.First; i < ev.First+ev.Visible && i < len(win.entries); i++ {
		e := win.entries[i]
		slot := ui.SlotFor(e)
		visible[slot] = true
		if win.requested[slot] {
			continue
		}
		win.requested[slot] = true
		win.o.RequestPreview(slot, e.Metadata, win.thumbs, func(t preview.Token) {
			win.thumbs.Expect(slot, t)
		})
	}
	for slot := range win.requested {
		if !visible[slot] {
			win.o.Pipeline.Cancel(slot)
			win.thumbs.Forget(slot)
			delete(win.requested, slot)
		}
	}
}
