package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/razorcore/internal/config"
	"github.com/justyntemme/razorcore/internal/entry"
	"github.com/justyntemme/razorcore/internal/listing"
	"github.com/justyntemme/razorcore/internal/notify"
	"github.com/justyntemme/razorcore/internal/preview"
	"github.com/justyntemme/razorcore/internal/trash"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Preview.ThumbnailDir = filepath.Join(dir, "thumbnails")
	cfg.Preview.VideoCommand = ""
	cfg.Preview.DisabledFilesystems = nil
	cfg.Trash.Root = filepath.Join(dir, "trash")
	cfg.Store.Path = filepath.Join(dir, "razor.db")
	cfg.Tags.Home = filepath.Join(dir, "plane")
	return cfg
}

func TestOrchestratorTrashAndUndo(t *testing.T) {
	o, err := New(testConfig(t))
	require.NoError(t, err)
	defer o.Close()
	require.NotNil(t, o.Journal)

	events, unsubscribe := o.Bus.Subscribe(8)
	defer unsubscribe()

	dir := t.TempDir()
	file := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(file, []byte("hello"), 0o644))

	ctx := context.Background()
	res, err := o.Engine.Trash(ctx, []string{file})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Succeeded())
	assert.NoFileExists(t, file)

	ev := <-events
	trashed, ok := ev.(notify.ItemsTrashed)
	require.True(t, ok, "got %T", ev)
	assert.Equal(t, res.UndoID, trashed.UndoID)

	items, err := o.Listing.FetchTrash(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, entry.TrashedItem, items[0].Kind)

	_, err = o.Engine.Undo(ctx, trashed.UndoID)
	require.NoError(t, err)
	assert.FileExists(t, file)

	ops, err := o.Journal.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, "trash", ops[0].Kind)
	assert.Equal(t, res.Batch.ID.String(), ops[0].Reverts)
}

func TestOrchestratorUndoCapacity(t *testing.T) {
	assert.Equal(t, -1, undoCapacity(0))
	assert.Equal(t, 5, undoCapacity(5))

	cfg := testConfig(t)
	cfg.FileOps.UndoCapacity = 2
	o, err := New(cfg)
	require.NoError(t, err)
	defer o.Close()

	dir := t.TempDir()
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, nil, 0o644))
		_, err := o.Engine.Rename(ctx, p, name+"2")
		require.NoError(t, err)
	}
	assert.Equal(t, 2, o.Engine.Queue().Len())
}

func TestOrchestratorWithoutJournal(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store.Path = ""
	o, err := New(cfg)
	require.NoError(t, err)
	defer o.Close()
	assert.Nil(t, o.Journal)

	dir := t.TempDir()
	p := filepath.Join(dir, "a")
	require.NoError(t, os.WriteFile(p, nil, 0o644))
	res, err := o.Engine.Rename(context.Background(), p, "b")
	require.NoError(t, err)
	assert.NotZero(t, res.UndoID)
}

func TestOrchestratorTags(t *testing.T) {
	cfg := testConfig(t)
	o, err := New(cfg)
	require.NoError(t, err)
	ctx := context.Background()

	pl := o.Listing.Plane()
	require.NotNil(t, pl)
	require.NoError(t, pl.AddTag(ctx, "photos"))

	view := listing.TagLocation([]string{"photos"})
	o.Listing.Show(view)
	dest, err := pl.Destination([]string{"photos"})
	require.NoError(t, err)
	res, err := o.Engine.NewFolder(ctx, dest, "2024")
	require.NoError(t, err)
	require.Equal(t, 1, res.Succeeded())
	assert.Equal(t, view, <-o.Listing.Stale())

	entries, err := o.Listing.Fetch(ctx, view)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2024", entries[0].DisplayName)
	o.Listing.Hide(view)
	require.NoError(t, o.Close())

	// Tags persist in the journal
	o, err = New(cfg)
	require.NoError(t, err)
	defer o.Close()
	assert.Equal(t, []string{"photos"}, o.Listing.Plane().Tags())
}

func TestOrchestratorRequestPreview(t *testing.T) {
	o, err := New(testConfig(t))
	require.NoError(t, err)
	defer o.Close()

	dir := t.TempDir()
	p := filepath.Join(dir, "readme.txt")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))

	results := make(chan preview.Result, 4)
	var expected preview.Token
	token := o.RequestPreview("cell", entry.Metadata{Path: p, DisplayName: "readme.txt"},
		preview.SinkFunc(func(_ preview.Slot, r preview.Result) { results <- r }),
		func(t preview.Token) { expected = t })

	assert.Equal(t, expected, token)
	r := <-results
	assert.Equal(t, token, r.Token)
	assert.Equal(t, preview.FallbackIcon, r.Kind)
}

func TestHistory(t *testing.T) {
	h := NewHistory()
	_, ok := h.Back()
	assert.False(t, ok)

	h.Visit("/a")
	h.Visit("/a/b")
	h.Visit("/a/b") // Revisiting the current location is a no-op
	h.Visit(trash.Location)

	loc, ok := h.Up()
	require.True(t, ok)
	assert.Equal(t, "/a/b", loc)

	loc, ok = h.Forward()
	require.True(t, ok)
	assert.Equal(t, trash.Location, loc)

	h.Back()
	loc, ok = h.Up()
	require.True(t, ok)
	assert.Equal(t, "/a", loc)

	h.Visit("/c")
	_, ok = h.Forward()
	assert.False(t, ok, "visiting drops forward history")

	for i := 0; i < maxHistorySize+10; i++ {
		h.Visit(filepath.Join("/x", string(rune('a'+i%26)), string(rune('0'+i/26))))
	}
	assert.Len(t, h.entries, maxHistorySize)
	assert.Equal(t, maxHistorySize-1, h.index)
}

func TestHistoryUpFromTagView(t *testing.T) {
	h := NewHistory()
	h.Visit("/tmp")
	h.Visit(listing.TagLocation([]string{"photos"}))
	loc, ok := h.Up()
	assert.True(t, ok)
	assert.Equal(t, "/tmp", loc)
}

func TestHistoryUpAtRoot(t *testing.T) {
	h := NewHistory()
	h.Visit("/")
	_, ok := h.Up()
	assert.False(t, ok)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		input, current, want string
	}{
		{"", "/tmp", "/tmp"},
		{"  ", "/tmp", "/tmp"},
		{"~", "/tmp", home},
		{"~/docs", "/tmp", filepath.Join(home, "docs")},
		{"..", "/tmp/a", "/tmp"},
		{"b/../c", "/tmp", "/tmp/c"},
		{"/etc/", "/tmp", "/etc"},
		{"trash:", "/tmp", trash.Location},
		{trash.Location, "/tmp", trash.Location},
		{"tags://photos,2024", "/tmp", "tags://photos,2024"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExpandPath(tt.input, tt.current), tt.input)
	}
}
