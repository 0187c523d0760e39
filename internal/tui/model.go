// Package tui is the terminal front end. The Bubble Tea loop is the
// coordinating context: it owns the view state, issues preview tokens and
// runs file operations through the orchestrator's engine.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/justyntemme/razorcore/internal/app"
	"github.com/justyntemme/razorcore/internal/debug"
	"github.com/justyntemme/razorcore/internal/entry"
	"github.com/justyntemme/razorcore/internal/fileops"
	"github.com/justyntemme/razorcore/internal/listing"
	"github.com/justyntemme/razorcore/internal/logging"
	"github.com/justyntemme/razorcore/internal/notify"
	"github.com/justyntemme/razorcore/internal/preview"
	"github.com/justyntemme/razorcore/internal/store"
	"github.com/justyntemme/razorcore/internal/trash"
)

const historyRows = 20

type mode int

const (
	modeBrowse mode = iota
	modeRename
	modeNewFolder
	modeTags
	modeConfirmEmpty
	modeConfirmDelete
	modeHistory
	modeProperties
)

// lastLocationKey is the setting remembering where the previous session ended.
const lastLocationKey = "tui.last_location"

type listingMsg struct {
	loc     string
	entries []entry.Entry
	err     error
}

type staleMsg string

type eventMsg struct{ ev notify.Event }

type opDoneMsg struct {
	verb  string
	res   fileops.Result
	bytes int64
	err   error
}

type favoritesMsg struct {
	paths []string
	err   error
}

type drivesMsg struct {
	drives []listing.Drive
	err    error
}

type historyMsg struct {
	ops []store.Operation
	err error
}

type statusMsg string

type propertiesMsg struct {
	props listing.Properties
	err   error
}

// showMsg is a show request from the desktop.
type showMsg app.ShowRequest

// tagsMsg carries the tag view to show once its tags are known.
type tagsMsg struct {
	loc string
	err error
}

type deletedMsg struct {
	n   int
	err error
}

type clipboard struct {
	entries []entry.Entry
	cut     bool
}

type Model struct {
	o    *app.Orchestrator
	keys keyMap
	help help.Model

	ctx    context.Context
	cancel context.CancelFunc

	history  *app.History
	loc      string
	entries  []entry.Entry
	cursor   int
	offset   int
	selected map[string]bool
	clip     clipboard

	mode    mode
	input   textinput.Model
	renamed string // Path being renamed

	sink        *previewSink
	preview     *preview.Result
	previewArt  string
	events      <-chan notify.Event
	unsubscribe func()

	favorites []string
	drives    []listing.Drive
	doomed    []string // Trash IDs awaiting delete confirmation
	journal   []store.Operation

	props       *listing.Properties
	reveal      string // Path to put the cursor on once listed
	revealProps bool   // Open the revealed item's properties too

	status string
	width  int
	height int
}

// New creates the model, showing start (the home directory when empty).
func New(o *app.Orchestrator, start string) *Model {
	ctx, cancel := context.WithCancel(context.Background())
	events, unsubscribe := o.Bus.Subscribe(32)

	if start == "" && o.Journal != nil {
		if loc, ok, err := o.Journal.Setting(ctx, lastLocationKey); err == nil && ok {
			start = loc
		}
	}
	if start == "" {
		if home, err := os.UserHomeDir(); err == nil {
			start = home
		} else {
			start, _ = os.Getwd()
		}
	}

	in := textinput.New()
	in.Prompt = "Rename: "
	in.CharLimit = 255
	in.Cursor.SetMode(cursor.CursorStatic)

	m := &Model{
		o:           o,
		keys:        newKeyMap(o.Config.Hotkeys),
		help:        help.New(),
		ctx:         ctx,
		cancel:      cancel,
		history:     app.NewHistory(),
		selected:    make(map[string]bool),
		input:       in,
		sink:        newPreviewSink(),
		events:      events,
		unsubscribe: unsubscribe,
		width:       80,
		height:      24,
	}
	m.visit(app.ExpandPath(start, ""))
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetch(m.loc),
		m.loadFavorites(),
		m.loadDrives(),
		m.waitEvent(),
		m.waitStale(),
		m.waitShow(),
		m.sink.wait(),
	)
}

// Close releases the subscriptions, hides the current location and
// remembers it for the next session.
func (m *Model) Close() {
	if m.o.Journal != nil && m.loc != "" {
		if err := m.o.Journal.SaveSetting(context.Background(), lastLocationKey, m.loc); err != nil {
			logging.Warn("failed to save last location", zap.Error(err))
		}
	}
	m.cancel()
	m.sink.close()
	m.unsubscribe()
	m.o.Pipeline.Cancel(previewSlot)
	if m.loc != "" {
		m.o.Listing.Hide(m.loc)
	}
}

// ---- commands ----

func (m *Model) fetch(loc string) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		entries, err := m.o.Listing.Fetch(ctx, loc)
		return listingMsg{loc: loc, entries: entries, err: err}
	}
}

func (m *Model) waitEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return eventMsg{ev: ev}
	}
}

func (m *Model) waitStale() tea.Cmd {
	stale, done := m.o.Listing.Stale(), m.ctx.Done()
	return func() tea.Msg {
		select {
		case loc := <-stale:
			return staleMsg(loc)
		case <-done:
			return nil
		}
	}
}

// waitShow forwards desktop show requests, nil without the service.
func (m *Model) waitShow() tea.Cmd {
	if m.o.FileManager == nil {
		return nil
	}
	requests, done := m.o.FileManager.Requests(), m.ctx.Done()
	return func() tea.Msg {
		select {
		case req := <-requests:
			return showMsg(req)
		case <-done:
			return nil
		}
	}
}

func (m *Model) loadProperties(e entry.Entry) tea.Cmd {
	ctx, provider := m.ctx, m.o.Listing
	return func() tea.Msg {
		props, err := provider.Properties(ctx, e)
		return propertiesMsg{props: props, err: err}
	}
}

func (m *Model) loadFavorites() tea.Cmd {
	db := m.o.Journal
	if db == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		paths, err := db.Favorites(ctx)
		return favoritesMsg{paths: paths, err: err}
	}
}

func (m *Model) loadDrives() tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		drives, err := listing.Drives(ctx)
		return drivesMsg{drives: drives, err: err}
	}
}

// places are the number-key targets: favorites first, then mounted
// drives that are not already favorites.
func (m *Model) places() []string {
	out := slices.Clone(m.favorites)
	for _, d := range m.drives {
		if !slices.Contains(out, d.Path) {
			out = append(out, d.Path)
		}
	}
	return out
}

func (m *Model) loadHistory() tea.Cmd {
	db := m.o.Journal
	if db == nil {
		return func() tea.Msg { return statusMsg("History is unavailable") }
	}
	ctx := m.ctx
	return func() tea.Msg {
		ops, err := db.Recent(ctx, historyRows)
		return historyMsg{ops: ops, err: err}
	}
}

// run executes a file operation off the UI loop.
func (m *Model) run(verb string, bytes int64, op func(ctx context.Context, e *fileops.Engine) (fileops.Result, error)) tea.Cmd {
	ctx, engine := m.ctx, m.o.Engine
	return func() tea.Msg {
		res, err := op(ctx, engine)
		return opDoneMsg{verb: verb, res: res, bytes: bytes, err: err}
	}
}

// ---- navigation ----

// visit records loc in history and shows it.
func (m *Model) visit(loc string) tea.Cmd {
	m.history.Visit(loc)
	return m.show(loc)
}

// show swaps the displayed location without touching history.
func (m *Model) show(loc string) tea.Cmd {
	if loc == m.loc {
		return m.fetch(loc)
	}
	if m.loc != "" {
		m.o.Listing.Hide(m.loc)
	}
	m.o.Listing.Show(loc)
	debug.Log(debug.UI, "tui: show %s", loc)

	m.loc = loc
	m.entries = nil
	m.cursor, m.offset = 0, 0
	clear(m.selected)
	m.preview, m.previewArt = nil, ""
	m.o.Pipeline.Cancel(previewSlot)
	return m.fetch(loc)
}

func (m *Model) inTrash() bool {
	return m.loc == trash.Location
}

func (m *Model) current() (entry.Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return entry.Entry{}, false
	}
	return m.entries[m.cursor], true
}

// targets returns the selected entries in listing order, or the entry
// under the cursor when nothing is selected.
func (m *Model) targets() []entry.Entry {
	var out []entry.Entry
	for _, e := range m.entries {
		if m.selected[e.Path] {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		if e, ok := m.current(); ok {
			out = append(out, e)
		}
	}
	return out
}

func (m *Model) moveCursor(delta int) {
	if len(m.entries) == 0 {
		return
	}
	c := min(max(m.cursor+delta, 0), len(m.entries)-1)
	if c == m.cursor {
		return
	}
	m.cursor = c
	m.requestPreview()
}

// requestPreview asks for the preview of the entry under the cursor. A new
// token supersedes whatever is still in flight for the pane.
func (m *Model) requestPreview() {
	e, ok := m.current()
	if !ok {
		m.o.Pipeline.Cancel(previewSlot)
		return
	}
	m.o.RequestPreview(previewSlot, e.Metadata, m.sink, func(t preview.Token) {
		m.sink.Expect(previewSlot, t)
	})
}

// ---- update ----

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case listingMsg:
		if msg.loc != m.loc {
			return m, nil
		}
		if msg.err != nil {
			logging.Warn("listing failed", zap.String("location", msg.loc), zap.Error(msg.err))
			m.status = msg.err.Error()
			return m, nil
		}
		m.setEntries(msg.entries)
		if m.reveal == "" {
			return m, nil
		}
		i := slices.IndexFunc(m.entries, func(e entry.Entry) bool { return e.Path == m.reveal })
		wantProps := m.revealProps
		m.reveal, m.revealProps = "", false
		if i < 0 {
			return m, nil
		}
		m.cursor = i
		m.requestPreview()
		if wantProps {
			return m, m.loadProperties(m.entries[i])
		}
		return m, nil

	case showMsg:
		req := app.ShowRequest(msg)
		m.reveal = req.Item
		m.revealProps = req.Kind == app.ShowProperties
		m.mode = modeBrowse
		return m, tea.Batch(m.visit(req.Folder), m.waitShow())

	case propertiesMsg:
		if msg.err != nil {
			if !errors.Is(msg.err, context.Canceled) {
				m.status = "Could not read properties: " + msg.err.Error()
			}
			return m, nil
		}
		m.props = &msg.props
		m.mode = modeProperties
		return m, nil

	case staleMsg:
		var cmd tea.Cmd
		if string(msg) == m.loc {
			cmd = m.fetch(m.loc)
		}
		return m, tea.Batch(cmd, m.waitStale())

	case eventMsg:
		if s := statusFor(msg.ev); s != "" {
			m.status = s
		}
		return m, m.waitEvent()

	case previewMsg:
		if e, ok := m.current(); ok && msg.result.Path == e.Path {
			r := msg.result
			m.preview = &r
			m.previewArt = ""
			if r.Image != nil {
				m.previewArt = renderImage(r.Image, previewWidth-2, previewHeight)
			}
		}
		return m, m.sink.wait()

	case opDoneMsg:
		if s := statusForResult(msg.verb, msg.res, msg.bytes, msg.err); s != "" {
			m.status = s
		}
		var ve *fileops.ValidationError
		invalid := errors.As(msg.err, &ve)
		if msg.err != nil && !invalid && !errors.Is(msg.err, fileops.ErrNothingToUndo) {
			logging.Error("operation failed", zap.String("op", msg.verb), zap.Error(msg.err))
		}
		switch msg.verb {
		case "Renamed", "Created":
			if invalid {
				return m, nil // Keep editing
			}
			m.mode = modeBrowse
			m.input.Blur()
		case "Moved":
			if msg.err == nil {
				m.clip = clipboard{}
			}
		}
		clear(m.selected)
		return m, m.fetch(m.loc)

	case favoritesMsg:
		if msg.err != nil {
			logging.Error("failed to load favorites", zap.Error(msg.err))
			return m, nil
		}
		m.favorites = msg.paths
		return m, nil

	case drivesMsg:
		if msg.err != nil {
			logging.Warn("failed to list drives", zap.Error(msg.err))
			return m, nil
		}
		m.drives = msg.drives
		return m, nil

	case historyMsg:
		if msg.err != nil {
			logging.Error("failed to load history", zap.Error(msg.err))
			m.status = "Could not read history"
			return m, nil
		}
		m.journal = msg.ops
		m.mode = modeHistory
		return m, nil

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case tagsMsg:
		m.mode = modeBrowse
		m.input.Blur()
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		return m, m.visit(msg.loc)

	case deletedMsg:
		if msg.err != nil {
			logging.Warn("permanent delete failed", zap.Error(msg.err))
			m.status = "Could not delete: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("Deleted %s permanently", items(msg.n))
		}
		clear(m.selected)
		return m, m.fetch(m.loc)

	case tea.KeyMsg:
		switch m.mode {
		case modeRename, modeNewFolder, modeTags:
			return m.updateInput(msg)
		case modeConfirmEmpty, modeConfirmDelete:
			return m.updateConfirm(msg)
		case modeHistory:
			if key.Matches(msg, m.keys.Escape, m.keys.History, m.keys.Quit) {
				m.mode = modeBrowse
			}
			return m, nil
		case modeProperties:
			if key.Matches(msg, m.keys.Escape, m.keys.Properties, m.keys.Quit) {
				m.mode = modeBrowse
				m.props = nil
			}
			return m, nil
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

// setEntries replaces the listing, keeping the cursor on the same path
// when it is still there.
func (m *Model) setEntries(entries []entry.Entry) {
	var keep string
	if e, ok := m.current(); ok {
		keep = e.Path
	}
	m.entries = entries

	m.cursor = min(m.cursor, max(len(entries)-1, 0))
	if i := slices.IndexFunc(entries, func(e entry.Entry) bool { return e.Path == keep }); i >= 0 {
		m.cursor = i
	}
	for p := range m.selected {
		if !slices.ContainsFunc(entries, func(e entry.Entry) bool { return e.Path == p }) {
			delete(m.selected, p)
		}
	}
	m.requestPreview()
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		m.Close()
		return m, tea.Quit

	case key.Matches(msg, k.CursorUp):
		m.moveCursor(-1)
	case key.Matches(msg, k.CursorDown):
		m.moveCursor(1)

	case key.Matches(msg, k.ToggleSelect):
		if e, ok := m.current(); ok {
			if m.selected[e.Path] {
				delete(m.selected, e.Path)
			} else {
				m.selected[e.Path] = true
			}
			m.moveCursor(1)
		}

	case key.Matches(msg, k.Escape):
		clear(m.selected)
		m.status = ""

	case key.Matches(msg, k.Open):
		e, ok := m.current()
		if !ok {
			return m, nil
		}
		if e.IsDir() {
			return m, m.visit(e.Path)
		}
		if e.Kind == entry.TrashedItem {
			m.status = "Restore the item to open it"
			return m, nil
		}
		path := e.Path
		return m, func() tea.Msg {
			if err := app.OpenFile(path); err != nil {
				logging.Warn("open failed", zap.String("path", path), zap.Error(err))
				return statusMsg("Could not open " + filepath.Base(path))
			}
			return nil
		}

	case key.Matches(msg, k.Up):
		if loc, ok := m.history.Up(); ok {
			return m, m.show(loc)
		}
	case key.Matches(msg, k.Back):
		if loc, ok := m.history.Back(); ok {
			return m, m.show(loc)
		}
	case key.Matches(msg, k.Forward):
		if loc, ok := m.history.Forward(); ok {
			return m, m.show(loc)
		}
	case key.Matches(msg, k.Home):
		return m, m.visit(app.ExpandPath("~", m.loc))
	case key.Matches(msg, k.Trash):
		return m, m.visit(trash.Location)
	case key.Matches(msg, k.Refresh):
		return m, m.fetch(m.loc)

	case key.Matches(msg, k.Copy, k.Cut):
		if m.inTrash() {
			return m, nil
		}
		ts := m.targets()
		if len(ts) == 0 {
			return m, nil
		}
		m.clip = clipboard{entries: ts, cut: key.Matches(msg, k.Cut)}
		verb := "Copied"
		if m.clip.cut {
			verb = "Cut"
		}
		m.status = verb + " " + items(len(ts)) + " to clipboard"
		clear(m.selected)

	case key.Matches(msg, k.Paste):
		return m, m.paste()

	case key.Matches(msg, k.Delete):
		if m.inTrash() {
			m.doomed = m.doomed[:0]
			for _, e := range m.targets() {
				m.doomed = append(m.doomed, filepath.Base(e.Path))
			}
			if len(m.doomed) > 0 {
				m.mode = modeConfirmDelete
			}
			return m, nil
		}
		paths := pathsOf(m.targets())
		if len(paths) == 0 {
			return m, nil
		}
		return m, m.run("Trashed", 0, func(ctx context.Context, e *fileops.Engine) (fileops.Result, error) {
			return e.Trash(ctx, paths)
		})

	case key.Matches(msg, k.Restore):
		if !m.inTrash() {
			return m, nil
		}
		var ids []string
		for _, e := range m.targets() {
			ids = append(ids, filepath.Base(e.Path))
		}
		if len(ids) == 0 {
			return m, nil
		}
		return m, m.run("Restored", 0, func(ctx context.Context, e *fileops.Engine) (fileops.Result, error) {
			return e.Restore(ctx, ids)
		})

	case key.Matches(msg, k.EmptyTrash):
		m.mode = modeConfirmEmpty

	case key.Matches(msg, k.Rename):
		e, ok := m.current()
		if !ok || m.inTrash() {
			return m, nil
		}
		m.mode = modeRename
		m.renamed = e.Path
		m.input.Prompt = "Rename: "
		m.input.SetValue(e.DisplayName)
		m.input.CursorEnd()
		return m, m.input.Focus()

	case key.Matches(msg, k.NewFolder):
		if m.inTrash() {
			return m, nil
		}
		m.mode = modeNewFolder
		m.input.Prompt = "New folder: "
		m.input.SetValue("")
		return m, m.input.Focus()

	case key.Matches(msg, k.Tags):
		if m.o.Listing.Plane() == nil {
			m.status = "Tags are disabled"
			return m, nil
		}
		filter, _ := listing.ParseTagLocation(m.loc)
		m.mode = modeTags
		m.input.Prompt = "Tags: "
		m.input.SetValue(strings.Join(filter, " "))
		m.input.CursorEnd()
		return m, m.input.Focus()

	case key.Matches(msg, k.Undo):
		return m, m.run("Undo", 0, func(ctx context.Context, e *fileops.Engine) (fileops.Result, error) {
			return e.UndoLatest(ctx)
		})

	case key.Matches(msg, k.Properties):
		if e, ok := m.current(); ok {
			return m, m.loadProperties(e)
		}

	case key.Matches(msg, k.Favorite):
		return m, m.toggleFavorite()
	case key.Matches(msg, k.History):
		return m, m.loadHistory()

	default:
		// 1-9 jump to a place
		if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			if places := m.places(); int(s[0]-'1') < len(places) {
				return m, m.visit(places[s[0]-'1'])
			}
		}
	}
	return m, nil
}

func (m *Model) paste() tea.Cmd {
	if m.inTrash() || len(m.clip.entries) == 0 {
		return nil
	}
	sources := pathsOf(m.clip.entries)
	var bytes int64
	for _, e := range m.clip.entries {
		if !e.IsDir() {
			bytes += e.Size
		}
	}
	dest, err := m.destination()
	if err != nil {
		m.status = err.Error()
		return nil
	}
	if m.clip.cut {
		return m.run("Moved", bytes, func(ctx context.Context, e *fileops.Engine) (fileops.Result, error) {
			return e.Move(ctx, sources, dest)
		})
	}
	return m.run("Copied", bytes, func(ctx context.Context, e *fileops.Engine) (fileops.Result, error) {
		return e.Copy(ctx, sources, dest)
	})
}

func (m *Model) toggleFavorite() tea.Cmd {
	db := m.o.Journal
	if db == nil || m.inTrash() {
		return nil
	}
	path, ctx := m.loc, m.ctx
	remove := slices.Contains(m.favorites, path)
	return func() tea.Msg {
		var err error
		if remove {
			err = db.RemoveFavorite(ctx, path)
		} else {
			err = db.AddFavorite(ctx, path)
		}
		if err != nil {
			return favoritesMsg{err: err}
		}
		paths, err := db.Favorites(ctx)
		return favoritesMsg{paths: paths, err: err}
	}
}

// destination is the directory new items go to. For a tag view it is the
// directory carrying the view's tags, created on demand.
func (m *Model) destination() (string, error) {
	filter, ok := listing.ParseTagLocation(m.loc)
	if !ok {
		return m.loc, nil
	}
	pl := m.o.Listing.Plane()
	if pl == nil {
		return "", errors.New("tags are disabled")
	}
	return pl.Destination(filter)
}

// showTags adds the unknown tags of a typed tag list and shows their view.
func (m *Model) showTags(typed string) tea.Cmd {
	tags := strings.Fields(typed)
	pl := m.o.Listing.Plane()
	if len(tags) == 0 || pl == nil {
		m.mode = modeBrowse
		m.input.Blur()
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		for _, tag := range tags {
			if err := pl.AddTag(ctx, tag); err != nil {
				return tagsMsg{err: err}
			}
		}
		return tagsMsg{loc: listing.TagLocation(tags)}
	}
}

// updateInput edits the rename, new folder or tag input.
func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		name := m.input.Value()
		if m.mode == modeTags {
			return m, m.showTags(name)
		}
		if m.mode == modeNewFolder {
			parent, err := m.destination()
			if err != nil {
				m.status = err.Error()
				return m, nil
			}
			return m, m.run("Created", 0, func(ctx context.Context, e *fileops.Engine) (fileops.Result, error) {
				return e.NewFolder(ctx, parent, name)
			})
		}
		path := m.renamed
		return m, m.run("Renamed", 0, func(ctx context.Context, e *fileops.Engine) (fileops.Result, error) {
			return e.Rename(ctx, path, name)
		})
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	confirming := m.mode
	m.mode = modeBrowse
	if s := msg.String(); s != "y" && s != "Y" && s != "enter" {
		m.status = "Canceled"
		m.doomed = nil
		return m, nil
	}

	if confirming == modeConfirmDelete {
		ids, bin := m.doomed, m.o.Trash
		m.doomed = nil
		return m, func() tea.Msg {
			var errs []error
			n := 0
			for _, id := range ids {
				if err := bin.Delete(id); err != nil {
					errs = append(errs, err)
					continue
				}
				n++
			}
			return deletedMsg{n: n, err: errors.Join(errs...)}
		}
	}

	ctx, engine := m.ctx, m.o.Engine
	return m, func() tea.Msg {
		if err := engine.EmptyTrash(ctx); err != nil {
			return statusMsg("Could not empty " + trash.DisplayName() + ": " + err.Error())
		}
		return nil
	}
}

func pathsOf(es []entry.Entry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Path
	}
	return out
}
