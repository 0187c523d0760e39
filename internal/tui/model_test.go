package tui

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/razorcore/internal/app"
	"github.com/justyntemme/razorcore/internal/config"
	"github.com/justyntemme/razorcore/internal/entry"
	"github.com/justyntemme/razorcore/internal/fileops"
	"github.com/justyntemme/razorcore/internal/listing"
	"github.com/justyntemme/razorcore/internal/notify"
	"github.com/justyntemme/razorcore/internal/preview"
	"github.com/justyntemme/razorcore/internal/trash"
)

func newTestModel(t *testing.T) (*Model, string) {
	t.Helper()
	state := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Preview.ThumbnailDir = filepath.Join(state, "thumbnails")
	cfg.Preview.VideoCommand = ""
	cfg.Preview.DisabledFilesystems = nil
	cfg.Trash.Root = filepath.Join(state, "trash")
	cfg.Store.Path = filepath.Join(state, "razor.db")
	cfg.Tags.Home = filepath.Join(state, "plane")

	o, err := app.New(cfg)
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("beta"), 0o644))

	m := New(o, dir)
	t.Cleanup(func() {
		m.Close()
		o.Close()
	})
	drive(m, m.fetch(m.loc))
	return m, dir
}

// drive runs cmd and feeds its messages back until the chain ends.
func drive(m *Model, cmd tea.Cmd) {
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			return
		}
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, c := range batch {
				drive(m, c)
			}
			return
		}
		_, cmd = m.Update(msg)
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+z":
		return tea.KeyMsg{Type: tea.KeyCtrlZ}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		_, cmd := m.Update(keyMsg(k))
		drive(m, cmd)
	}
}

func names(m *Model) []string {
	var out []string
	for _, e := range m.entries {
		out = append(out, e.DisplayName)
	}
	return out
}

func TestModelListsDirectory(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Equal(t, []string{"sub", "a.txt", "b.txt"}, names(m))
	assert.Equal(t, entry.Directory, m.entries[0].Kind)
	assert.Contains(t, m.View(), "a")
}

func TestModelNavigation(t *testing.T) {
	m, dir := newTestModel(t)

	press(m, "enter") // cursor starts on sub
	assert.Equal(t, filepath.Join(dir, "sub"), m.loc)
	assert.Empty(t, m.entries)

	press(m, "h")
	assert.Equal(t, dir, m.loc)
	press(m, "]")
	assert.Equal(t, filepath.Join(dir, "sub"), m.loc)
	press(m, "[")
	assert.Equal(t, dir, m.loc)
}

func TestModelTrashAndUndo(t *testing.T) {
	m, dir := newTestModel(t)
	events := m.events

	press(m, "j", "d")
	assert.NoFileExists(t, filepath.Join(dir, "a.txt"))
	assert.Equal(t, []string{"sub", "b.txt"}, names(m))

	ev := <-events
	_, ok := ev.(notify.ItemsTrashed)
	require.True(t, ok, "got %T", ev)

	press(m, "t")
	assert.Equal(t, trash.Location, m.loc)
	require.Len(t, m.entries, 1)
	assert.Equal(t, entry.TrashedItem, m.entries[0].Kind)

	press(m, "u")
	assert.FileExists(t, filepath.Join(dir, "a.txt"))
	assert.Empty(t, m.entries)
}

func TestModelRestoreFromTrash(t *testing.T) {
	m, dir := newTestModel(t)

	press(m, " ", " ") // select sub and a.txt
	assert.Len(t, m.selected, 2)
	press(m, "d")
	assert.NoDirExists(t, filepath.Join(dir, "sub"))
	assert.NoFileExists(t, filepath.Join(dir, "a.txt"))
	assert.Empty(t, m.selected)

	press(m, "t", " ", "R")
	assert.Len(t, m.entries, 1)
	restored := 0
	for _, p := range []string{"sub", "a.txt"} {
		if _, err := os.Stat(filepath.Join(dir, p)); err == nil {
			restored++
		}
	}
	assert.Equal(t, 1, restored)
}

func TestModelCopyPaste(t *testing.T) {
	m, dir := newTestModel(t)

	press(m, "j", "y", "k", "enter", "p")
	assert.FileExists(t, filepath.Join(dir, "sub", "a.txt"))
	assert.FileExists(t, filepath.Join(dir, "a.txt"))
	assert.Equal(t, []string{"a.txt"}, names(m))
	assert.Contains(t, m.status, "Copied 1 item")

	// Pasting again collides; the engine reports it through the bus
	press(m, "p")
	ev := <-m.events
	failed, ok := ev.(notify.OperationFailed)
	require.True(t, ok, "got %T", ev)
	assert.Equal(t, fileops.ReasonCollision.String(), failed.Reason)
	assert.Equal(t, "Could not copy: an item with that name already exists", statusFor(failed))
}

func TestModelCutPaste(t *testing.T) {
	m, dir := newTestModel(t)

	press(m, "j", "x", "k", "enter", "p")
	assert.FileExists(t, filepath.Join(dir, "sub", "a.txt"))
	assert.NoFileExists(t, filepath.Join(dir, "a.txt"))
	assert.Empty(t, m.clip.entries)
}

func TestModelRename(t *testing.T) {
	m, dir := newTestModel(t)

	press(m, "j", "r")
	require.Equal(t, modeRename, m.mode)
	assert.Equal(t, "a.txt", m.input.Value())

	m.input.SetValue("bad/name")
	press(m, "enter")
	assert.Equal(t, modeRename, m.mode, "invalid names keep the editor open")
	assert.FileExists(t, filepath.Join(dir, "a.txt"))

	m.input.SetValue("c.txt")
	press(m, "enter")
	assert.Equal(t, modeBrowse, m.mode)
	assert.FileExists(t, filepath.Join(dir, "c.txt"))
	assert.Equal(t, []string{"sub", "b.txt", "c.txt"}, names(m))

	press(m, "ctrl+z")
	assert.FileExists(t, filepath.Join(dir, "a.txt"))
}

func TestModelNewFolder(t *testing.T) {
	m, dir := newTestModel(t)

	press(m, "n")
	require.Equal(t, modeNewFolder, m.mode)
	assert.Empty(t, m.input.Value())
	assert.Contains(t, m.View(), "New folder: ")

	m.input.SetValue("sub")
	press(m, "enter")
	assert.Equal(t, modeNewFolder, m.mode, "taken names keep the editor open")
	assert.Contains(t, m.status, "exists")

	m.input.SetValue("photos")
	press(m, "enter")
	assert.Equal(t, modeBrowse, m.mode)
	assert.DirExists(t, filepath.Join(dir, "photos"))
	assert.Equal(t, "Created folder photos", m.status)
	assert.Equal(t, []string{"photos", "sub", "a.txt", "b.txt"}, names(m))

	press(m, "n")
	m.input.SetValue(".cache")
	press(m, "enter")
	assert.Equal(t, "Created folder .cache - hidden", m.status)

	press(m, "ctrl+z", "ctrl+z")
	assert.NoDirExists(t, filepath.Join(dir, ".cache"))
	assert.NoDirExists(t, filepath.Join(dir, "photos"))
}

func TestModelTagView(t *testing.T) {
	m, _ := newTestModel(t)
	home := m.o.Listing.Plane().Home()
	view := listing.TagLocation([]string{"photos", "2024"})

	press(m, "j", "y")
	press(m, "#")
	require.Equal(t, modeTags, m.mode)
	m.input.SetValue("photos 2024")
	press(m, "enter")
	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, view, m.loc)
	assert.Empty(t, m.entries)
	assert.Contains(t, m.View(), "Tags: photos, 2024")

	press(m, "p")
	assert.FileExists(t, filepath.Join(home, "photos", "2024", "a.txt"))
	assert.Equal(t, []string{"a.txt"}, names(m))

	press(m, "n")
	m.input.SetValue("albums")
	press(m, "enter")
	assert.DirExists(t, filepath.Join(home, "photos", "2024", "albums"))
	assert.Equal(t, []string{"albums", "a.txt"}, names(m))

	press(m, "#")
	assert.Equal(t, "photos 2024", m.input.Value())
	m.input.SetValue("a,b")
	press(m, "enter")
	assert.Equal(t, modeBrowse, m.mode)
	assert.Contains(t, m.status, "invalid tag name")
	assert.Equal(t, view, m.loc)
}

func TestModelProperties(t *testing.T) {
	m, _ := newTestModel(t)

	press(m, "i")
	require.Equal(t, modeProperties, m.mode)
	require.NotNil(t, m.props)
	assert.Equal(t, "sub", m.props.Entry.DisplayName)
	assert.Contains(t, m.View(), "Empty folder")

	press(m, "esc")
	assert.Equal(t, modeBrowse, m.mode)
	assert.Nil(t, m.props)
}

func TestModelShowRequests(t *testing.T) {
	m, dir := newTestModel(t)
	other := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(other, "x.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(other, "y.txt"), []byte("yy"), 0o644))

	_, cmd := m.Update(showMsg{Kind: app.ShowItem, Folder: other, Item: filepath.Join(other, "y.txt")})
	drive(m, cmd)
	assert.Equal(t, other, m.loc)
	assert.Equal(t, modeBrowse, m.mode)
	e, ok := m.current()
	require.True(t, ok)
	assert.Equal(t, "y.txt", e.DisplayName)

	_, cmd = m.Update(showMsg{Kind: app.ShowProperties, Folder: dir, Item: filepath.Join(dir, "b.txt")})
	drive(m, cmd)
	assert.Equal(t, dir, m.loc)
	require.Equal(t, modeProperties, m.mode)
	assert.Equal(t, "b.txt", m.props.Entry.DisplayName)
	assert.Contains(t, m.View(), "4 B")
}

func TestModelRenameEscape(t *testing.T) {
	m, dir := newTestModel(t)
	press(m, "j", "r", "esc")
	assert.Equal(t, modeBrowse, m.mode)
	assert.FileExists(t, filepath.Join(dir, "a.txt"))
}

func TestModelUndoNothing(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "u")
	assert.Equal(t, "Nothing to undo", m.status)
}

func TestModelEmptyTrash(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "j", "d", "E")
	require.Equal(t, modeConfirmEmpty, m.mode)
	assert.Contains(t, m.View(), "(y/N)")
	press(m, "n")
	assert.Equal(t, "Canceled", m.status)

	press(m, "E", "y")
	items, err := m.o.Trash.List()
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, m.o.Engine.Queue().Len())
}

func TestModelDeleteFromTrash(t *testing.T) {
	m, dir := newTestModel(t)
	press(m, "j", "d", "t")
	require.Equal(t, trash.Location, m.loc)
	require.Len(t, m.entries, 1)

	press(m, "d")
	require.Equal(t, modeConfirmDelete, m.mode)
	assert.Contains(t, m.View(), "Permanently delete 1 item? (y/N)")
	press(m, "n")
	assert.Equal(t, "Canceled", m.status)
	assert.Len(t, m.entries, 1)

	press(m, "d", "y")
	assert.Equal(t, "Deleted 1 item permanently", m.status)
	assert.Empty(t, m.entries)
	items, err := m.o.Trash.List()
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoFileExists(t, filepath.Join(dir, "a.txt"))
}

func TestModelRemembersLastLocation(t *testing.T) {
	m, dir := newTestModel(t)
	sub := filepath.Join(dir, "sub")

	prev := New(m.o, sub)
	prev.Close()

	next := New(m.o, "")
	defer next.Close()
	assert.Equal(t, sub, next.loc)
}

func TestModelFavoritesAndHistory(t *testing.T) {
	m, dir := newTestModel(t)

	press(m, "f")
	assert.Equal(t, []string{dir}, m.favorites)

	press(m, "enter", "1")
	assert.Equal(t, dir, m.loc)

	press(m, "f")
	assert.Empty(t, m.favorites)

	press(m, "j", "d", "H")
	require.Equal(t, modeHistory, m.mode)
	require.Len(t, m.journal, 1)
	assert.Equal(t, "trash", m.journal[0].Kind)
	assert.Contains(t, m.View(), "Recent operations")

	press(m, "esc")
	assert.Equal(t, modeBrowse, m.mode)
}


func TestModelPlaces(t *testing.T) {
	m, dir := newTestModel(t)
	other := t.TempDir()
	m.favorites = []string{dir}
	m.drives = []listing.Drive{{Name: "Home", Path: dir}, {Name: "data", Path: other}}

	assert.Equal(t, []string{dir, other}, m.places())
	view := m.viewFavorites()
	assert.Contains(t, view, "2:data")
	assert.NotContains(t, view, "Home")

	press(m, "2")
	assert.Equal(t, other, m.loc)
}
func TestModelStaleRefresh(t *testing.T) {
	m, dir := newTestModel(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), nil, 0o644))

	_, cmd := m.Update(staleMsg(filepath.Join(dir, "elsewhere")))
	require.NotNil(t, cmd)
	assert.Len(t, m.entries, 3)

	drive(m, m.fetch(m.loc))
	assert.Len(t, m.entries, 4)
}

func TestModelIgnoresPreviewForOtherEntry(t *testing.T) {
	m, dir := newTestModel(t)
	m.Update(previewMsg{slot: previewSlot, result: preview.Result{Kind: preview.FallbackIcon, Path: filepath.Join(dir, "b.txt")}})
	assert.Nil(t, m.preview)

	m.Update(previewMsg{slot: previewSlot, result: preview.Result{Kind: preview.DirectoryStack, Path: filepath.Join(dir, "sub")}})
	require.NotNil(t, m.preview)
	assert.Contains(t, m.viewPreview(), "empty folder")
}

func TestPreviewSinkDropsStaleTokens(t *testing.T) {
	s := newPreviewSink()
	defer s.close()

	s.Deliver(previewSlot, preview.Result{Token: 1})
	s.Expect(previewSlot, 2)
	s.Deliver(previewSlot, preview.Result{Token: 1})
	s.Deliver(previewSlot, preview.Result{Token: 2, Icon: "fresh"})

	msg := s.wait()()
	pm, ok := msg.(previewMsg)
	require.True(t, ok)
	assert.Equal(t, "fresh", pm.result.Icon)
	assert.Empty(t, s.ch)
}

func TestRenderImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.RGBA{G: 255, A: 255})
		}
	}
	out := renderImage(img, 20, 10)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 5)
	assert.Equal(t, 20, strings.Count(lines[0], "▀"))

	assert.Empty(t, renderImage(nil, 10, 10))
	assert.Equal(t, "#00ff00", hexColor(color.RGBA{G: 255}))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		ev   notify.Event
		want string
	}{
		{notify.ItemsTrashed{Count: 2, UndoID: 1}, "Moved 2 items to " + trash.DisplayName() + " (undo to restore)"},
		{notify.ItemsTrashed{Count: 1, Failed: 1}, "Moved 1 item to " + trash.DisplayName() + ", 1 could not be moved (undo to restore)"},
		{notify.OperationFailed{Kind: "move", Reason: "permission", Failed: 2, Total: 3}, "Could not move 2 of 3 items: permission denied"},
		{notify.OperationFailed{Kind: "undo_rename", Reason: "weird", Failed: 1, Total: 1}, "Could not undo rename: an unexpected error occurred"},
		{notify.UndoCompleted{Kind: "copy", Reverted: 3}, "Undid copy: 3 items reverted"},
		{notify.UndoCompleted{Kind: "trash", Reverted: 1, Failed: 1}, "Undid trash: 1 item reverted, 1 failed"},
		{notify.TrashEmptied{}, trash.DisplayName() + " emptied"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.ev))
	}
}

func TestKeyMapFromConfig(t *testing.T) {
	h := config.DefaultHotkeys()
	h.Rename = "F3"
	h.Favorite = ""
	km := newKeyMap(h)

	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyCtrlZ}, km.Undo))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyF3}, km.Rename))
	assert.False(t, key.Matches(keyMsg("r"), km.Rename))
	assert.False(t, km.Favorite.Enabled())
	assert.True(t, key.Matches(keyMsg(" "), km.ToggleSelect))
	assert.Equal(t, "space", km.ToggleSelect.Help().Key)
}
