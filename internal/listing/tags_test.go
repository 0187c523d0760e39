package listing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memTags struct{ names []string }

func (m *memTags) Tags(context.Context) ([]string, error) { return m.names, nil }

func (m *memTags) AddTag(_ context.Context, name string) error {
	m.names = append(m.names, name)
	return nil
}

func (m *memTags) RemoveTag(context.Context, string) error { return nil }

// newTestPlane lays out:
//
//	home/photos/a.jpg
//	home/photos/2024/b.jpg
//	home/2024/photos/c.jpg
//	home/2024/notes/d.txt   (notes is not a tag)
//	home/other/photos/e.jpg (other is not a tag)
func newTestPlane(t *testing.T) *Plane {
	t.Helper()
	home := t.TempDir()
	files := []string{
		"photos/a.jpg",
		"photos/2024/b.jpg",
		"2024/photos/c.jpg",
		"2024/notes/d.txt",
		"other/photos/e.jpg",
	}
	for _, f := range files {
		path := filepath.Join(home, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(f), 0o644))
	}
	pl, err := NewPlane(context.Background(), home, &memTags{names: []string{"photos", "2024"}})
	require.NoError(t, err)
	return pl
}

func TestPlaneLocations(t *testing.T) {
	pl := newTestPlane(t)
	ctx := context.Background()
	home := pl.Home()

	locs, err := pl.Locations(ctx, []string{"photos"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(home, "2024", "photos"),
		filepath.Join(home, "photos"),
		filepath.Join(home, "photos", "2024"),
	}, locs)

	locs, err = pl.Locations(ctx, []string{"photos", "2024"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(home, "2024", "photos"),
		filepath.Join(home, "photos", "2024"),
	}, locs)

	locs, err = pl.Locations(ctx, []string{"unknown"})
	require.NoError(t, err)
	assert.Empty(t, locs)

	locs, err = pl.Locations(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, locs)
}

func TestPlaneTagsOf(t *testing.T) {
	pl := newTestPlane(t)
	home := pl.Home()

	tags, ok := pl.TagsOf(filepath.Join(home, "2024", "photos"))
	assert.True(t, ok)
	assert.Equal(t, []string{"2024", "photos"}, tags)

	tags, ok = pl.TagsOf(home)
	assert.True(t, ok)
	assert.Empty(t, tags)

	_, ok = pl.TagsOf(filepath.Join(home, "2024", "notes"))
	assert.False(t, ok)
	_, ok = pl.TagsOf(filepath.Join(home, "photos", "photos"))
	assert.False(t, ok, "a repeated tag is an ordinary directory")
	_, ok = pl.TagsOf(filepath.Dir(home))
	assert.False(t, ok)
	_, ok = pl.TagsOf(TagLocation([]string{"photos"}))
	assert.False(t, ok)
}

func TestPlaneAddTag(t *testing.T) {
	store := &memTags{}
	pl, err := NewPlane(context.Background(), t.TempDir(), store)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, pl.AddTag(ctx, "music"))
	require.NoError(t, pl.AddTag(ctx, "music"))
	assert.Equal(t, []string{"music"}, pl.Tags())
	assert.Equal(t, []string{"music"}, store.names)

	for _, bad := range []string{"", ".", "..", "a/b", "a,b", " padded"} {
		assert.ErrorIs(t, pl.AddTag(ctx, bad), ErrInvalidTag, bad)
	}

	require.NoError(t, pl.RemoveTag(ctx, "music"))
	assert.Empty(t, pl.Tags())
}

func TestPlaneDestination(t *testing.T) {
	pl := newTestPlane(t)

	dir, err := pl.Destination([]string{"2024", "photos"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(pl.Home(), "2024", "photos"), dir)

	dir, err = pl.Destination([]string{"photos", "2024"})
	require.NoError(t, err)
	assert.DirExists(t, dir)

	_, err = pl.Destination([]string{"nope"})
	assert.ErrorIs(t, err, ErrInvalidTag)
	_, err = pl.Destination(nil)
	assert.ErrorIs(t, err, ErrInvalidTag)
}

func TestTagLocationRoundTrip(t *testing.T) {
	loc := TagLocation([]string{"photos", "2024"})
	assert.Equal(t, "tags://photos,2024", loc)
	tags, ok := ParseTagLocation(loc)
	assert.True(t, ok)
	assert.Equal(t, []string{"photos", "2024"}, tags)

	_, ok = ParseTagLocation("/tmp")
	assert.False(t, ok)
}

func TestFetchTagged(t *testing.T) {
	pl := newTestPlane(t)
	p, _ := newTestProvider(t, -1)

	_, err := p.Fetch(context.Background(), TagLocation([]string{"photos"}))
	assert.ErrorIs(t, err, errNoPlane)

	p.SetPlane(pl)
	entries, err := p.Fetch(context.Background(), TagLocation([]string{"photos"}))
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.DisplayName)
	}
	// photos/2024 is reached by adding the 2024 tag, so it is not listed
	assert.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg"}, names)

	entries, err = p.Fetch(context.Background(), TagLocation([]string{"2024"}))
	require.NoError(t, err)
	names = names[:0]
	for _, e := range entries {
		names = append(names, e.DisplayName)
	}
	assert.Equal(t, []string{"notes", "b.jpg", "c.jpg"}, names)
}

func TestNotifyStaleReachesTagViews(t *testing.T) {
	pl := newTestPlane(t)
	p, _ := newTestProvider(t, -1)
	p.SetPlane(pl)

	both := TagLocation([]string{"photos", "2024"})
	far := TagLocation([]string{"music", "2024"})
	p.Show(both)
	p.Show(far)

	p.NotifyStale(filepath.Join(pl.Home(), "photos"))
	assert.Equal(t, both, <-p.Stale())

	// Not a tag location
	p.NotifyStale(filepath.Join(pl.Home(), "other"))
	// The home is two tags away from the view
	p.NotifyStale(pl.Home())
	select {
	case loc := <-p.Stale():
		t.Fatalf("unexpected stale %s", loc)
	default:
	}
}
