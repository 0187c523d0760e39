package listing

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/razorcore/internal/entry"
)

func TestProperties(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(file, []byte("hello"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "tree", "deeper"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tree", "a"), []byte("123"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tree", "deeper", "b"), []byte("4567"), 0o644))

	p, _ := newTestProvider(t, -1)
	ctx := context.Background()

	e, err := p.Entry(file)
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", e.DisplayName)
	assert.Equal(t, entry.File, e.Kind)

	props, err := p.Properties(ctx, e)
	require.NoError(t, err)
	assert.Equal(t, dir, props.Location)
	assert.Equal(t, int64(5), props.Size)
	assert.Zero(t, props.Items)
	assert.True(t, props.Readable)
	if runtime.GOOS == "linux" {
		assert.NotEmpty(t, props.Owner)
		assert.False(t, props.Accessed.IsZero())
	}

	e, err = p.Entry(filepath.Join(dir, "tree"))
	require.NoError(t, err)
	require.True(t, e.IsDir())
	props, err = p.Properties(ctx, e)
	require.NoError(t, err)
	assert.Equal(t, int64(7), props.Size)
	assert.Equal(t, 3, props.Items)

	_, err = p.Entry(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPropertiesOfTrashedItem(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "gone.txt")
	require.NoError(t, os.WriteFile(file, []byte("bye"), 0o644))

	p, bin := newTestProvider(t, -1)
	_, err := bin.Trash(file)
	require.NoError(t, err)

	items, err := p.FetchTrash(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)

	props, err := p.Properties(context.Background(), items[0])
	require.NoError(t, err)
	assert.Equal(t, dir, props.Location)
	assert.Equal(t, int64(3), props.Size)
}

func TestPropertiesCancelled(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), nil, 0o644))
	p, _ := newTestProvider(t, -1)
	e, err := p.Entry(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Properties(ctx, e)
	assert.ErrorIs(t, err, context.Canceled)
}
