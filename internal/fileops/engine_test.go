package fileops

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/razorcore/internal/notify"
	"github.com/justyntemme/razorcore/internal/trash"
)

type staleRecorder struct {
	mu   sync.Mutex
	dirs []string
}

func (s *staleRecorder) NotifyStale(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirs = append(s.dirs, dir)
}

func (s *staleRecorder) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.dirs...)
}

type memJournal struct {
	mu      sync.Mutex
	results []Result
	err     error
}

func (j *memJournal) Record(_ context.Context, r Result) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.results = append(j.results, r)
	return j.err
}

type testEnv struct {
	engine   *Engine
	bin      *trash.Bin
	listings *staleRecorder
	journal  *memJournal
	events   <-chan notify.Event
}

func newTestEnv(t *testing.T, mutate ...func(*Options)) *testEnv {
	t.Helper()
	bin, err := trash.New(filepath.Join(t.TempDir(), "Trash"))
	require.NoError(t, err)

	bus := notify.NewBus()
	events, cancel := bus.Subscribe(32)
	t.Cleanup(cancel)

	env := &testEnv{bin: bin, listings: &staleRecorder{}, journal: &memJournal{}, events: events}
	opts := Options{Trash: bin, Listings: env.listings, Notifier: bus, Journal: env.journal}
	for _, m := range mutate {
		m(&opts)
	}
	env.engine = New(opts)
	return env
}

// drain returns every event published so far.
func (env *testEnv) drain() []notify.Event {
	var out []notify.Event
	for {
		select {
		case ev := <-env.events:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestCopyCollisionIsPartial(t *testing.T) {
	env := newTestEnv(t)
	src, dst := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(src, "a.txt"), "a")
	writeFile(t, filepath.Join(src, "b.txt"), "new b")
	writeFile(t, filepath.Join(dst, "b.txt"), "old b")

	res, err := env.engine.Copy(context.Background(),
		[]string{filepath.Join(src, "a.txt"), filepath.Join(src, "b.txt")}, dst)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Succeeded())
	assert.Equal(t, 1, res.Failed())
	require.Len(t, res.Failures(), 1)
	assert.Equal(t, ReasonCollision, res.Failures()[0].Reason)
	assert.Equal(t, "old b", readFile(t, filepath.Join(dst, "b.txt")))
	require.Len(t, res.Batch.Items, 1)
	assert.Equal(t, filepath.Join(dst, "a.txt"), res.Batch.Items[0].Target)
	assert.NotZero(t, res.UndoID)

	events := env.drain()
	require.Len(t, events, 1)
	failed, ok := events[0].(notify.OperationFailed)
	require.True(t, ok)
	assert.Equal(t, "copy", failed.Kind)
	assert.Equal(t, "collision", failed.Reason)
	assert.Equal(t, 1, failed.Failed)
	assert.Equal(t, 2, failed.Total)

	undo, err := env.engine.UndoLatest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, undo.Succeeded())
	assert.Equal(t, res.Batch.ID, undo.Batch.Reverts)
	assert.NoFileExists(t, filepath.Join(dst, "a.txt"))
	assert.Equal(t, "old b", readFile(t, filepath.Join(dst, "b.txt")))
	assert.FileExists(t, filepath.Join(src, "a.txt"))
	assert.True(t, env.engine.Queue().Empty())
}

func TestCopyDirectoryRoundTrip(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	env := newTestEnv(t)
	src, dst := t.TempDir(), t.TempDir()
	tree := filepath.Join(src, "project")
	writeFile(t, filepath.Join(tree, "README.md"), "# hi")
	writeFile(t, filepath.Join(tree, "src", "main.go"), "package main")
	require.NoError(t, os.Mkdir(filepath.Join(tree, "empty"), 0o755))
	require.NoError(t, os.Symlink("README.md", filepath.Join(tree, "link")))

	res, err := env.engine.Copy(context.Background(), []string{tree}, dst)
	require.NoError(t, err)
	require.Equal(t, 1, res.Succeeded())

	copied := filepath.Join(dst, "project")
	assert.Equal(t, "package main", readFile(t, filepath.Join(copied, "src", "main.go")))
	assert.DirExists(t, filepath.Join(copied, "empty"))
	target, err := os.Readlink(filepath.Join(copied, "link"))
	require.NoError(t, err)
	assert.Equal(t, "README.md", target)

	_, err = env.engine.Undo(context.Background(), res.UndoID)
	require.NoError(t, err)
	assert.NoDirExists(t, copied)
	assert.FileExists(t, filepath.Join(tree, "src", "main.go"))
}

func TestCopyKeepBoth(t *testing.T) {
	env := newTestEnv(t, func(o *Options) { o.Conflict = ConflictKeepBoth })
	src, dst := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(src, "photo.jpg"), "1")
	writeFile(t, filepath.Join(dst, "photo.jpg"), "0")

	for range 3 {
		res, err := env.engine.Copy(context.Background(), []string{filepath.Join(src, "photo.jpg")}, dst)
		require.NoError(t, err)
		require.Equal(t, 1, res.Succeeded())
	}

	assert.Equal(t, "0", readFile(t, filepath.Join(dst, "photo.jpg")))
	assert.FileExists(t, filepath.Join(dst, "photo (copy).jpg"))
	assert.FileExists(t, filepath.Join(dst, "photo (copy 2).jpg"))
	assert.FileExists(t, filepath.Join(dst, "photo (copy 3).jpg"))
}

func TestCopyRejectsBadDestination(t *testing.T) {
	env := newTestEnv(t)
	file := filepath.Join(t.TempDir(), "file")
	writeFile(t, file, "x")

	_, err := env.engine.Copy(context.Background(), []string{file}, file)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.True(t, env.engine.Queue().Empty())
}

func TestMoveRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	src, dst := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(src, "notes.txt"), "n")
	writeFile(t, filepath.Join(src, "dir", "inner.txt"), "i")

	res, err := env.engine.Move(context.Background(),
		[]string{filepath.Join(src, "notes.txt"), filepath.Join(src, "dir")}, dst)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Succeeded())
	assert.NoFileExists(t, filepath.Join(src, "notes.txt"))
	assert.Equal(t, "i", readFile(t, filepath.Join(dst, "dir", "inner.txt")))
	assert.ElementsMatch(t, []string{dst, src}, env.listings.seen())

	_, err = env.engine.UndoLatest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "n", readFile(t, filepath.Join(src, "notes.txt")))
	assert.Equal(t, "i", readFile(t, filepath.Join(src, "dir", "inner.txt")))
	assert.NoFileExists(t, filepath.Join(dst, "notes.txt"))
}

func TestMoveNeverReplaces(t *testing.T) {
	env := newTestEnv(t)
	src, dst := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(src, "a.txt"), "mine")
	writeFile(t, filepath.Join(dst, "a.txt"), "theirs")

	res, err := env.engine.Move(context.Background(), []string{filepath.Join(src, "a.txt")}, dst)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Succeeded())
	assert.Equal(t, ReasonCollision, res.Failures()[0].Reason)
	assert.Equal(t, "theirs", readFile(t, filepath.Join(dst, "a.txt")))
	assert.FileExists(t, filepath.Join(src, "a.txt"))
	assert.Zero(t, res.UndoID)
	assert.True(t, env.engine.Queue().Empty())
	assert.Empty(t, env.journal.results)
}

func TestMoveIntoItself(t *testing.T) {
	env := newTestEnv(t)
	dir := filepath.Join(t.TempDir(), "parent")
	writeFile(t, filepath.Join(dir, "child", "f.txt"), "f")

	res, err := env.engine.Move(context.Background(), []string{dir}, filepath.Join(dir, "child"))
	require.NoError(t, err)
	require.Equal(t, 1, res.Failed())
	assert.Equal(t, ReasonIntoItself, res.Failures()[0].Reason)
	assert.DirExists(t, dir)
	assert.True(t, env.engine.Queue().Empty())
}

func TestTrashAndUndo(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	writeFile(t, a, "a")
	writeFile(t, b, "b")

	res, err := env.engine.Trash(context.Background(), []string{a, b})
	require.NoError(t, err)
	require.Equal(t, 2, res.Succeeded())
	assert.NoFileExists(t, a)
	assert.NoFileExists(t, b)
	for _, it := range res.Batch.Items {
		assert.NotEmpty(t, it.TrashID)
		assert.False(t, it.DeletedAt.IsZero())
	}
	assert.Contains(t, env.listings.seen(), trash.Location)
	assert.Contains(t, env.listings.seen(), dir)

	events := env.drain()
	require.Len(t, events, 1)
	trashed, ok := events[0].(notify.ItemsTrashed)
	require.True(t, ok)
	assert.Equal(t, 2, trashed.Count)
	assert.Equal(t, res.UndoID, trashed.UndoID)

	undo, err := env.engine.Undo(context.Background(), trashed.UndoID)
	require.NoError(t, err)
	assert.Equal(t, 2, undo.Succeeded())
	assert.Equal(t, "a", readFile(t, a))
	assert.Equal(t, "b", readFile(t, b))

	items, err := env.bin.List()
	require.NoError(t, err)
	assert.Empty(t, items)

	events = env.drain()
	require.Len(t, events, 1)
	done, ok := events[0].(notify.UndoCompleted)
	require.True(t, ok)
	assert.Equal(t, 2, done.Reverted)
	assert.Zero(t, done.Failed)
}

func TestTrashAllFailedIsSilent(t *testing.T) {
	env := newTestEnv(t)
	missing := filepath.Join(t.TempDir(), "gone.txt")

	res, err := env.engine.Trash(context.Background(), []string{missing})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed())
	assert.Equal(t, ReasonNotFound, res.Failures()[0].Reason)
	assert.Zero(t, res.UndoID)
	assert.Empty(t, env.drain())
	assert.True(t, env.engine.Queue().Empty())
}

func TestUndoTrashFindsItemByOriginalPath(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "doc.txt")
	writeFile(t, path, "d")

	res, err := env.engine.Trash(context.Background(), []string{path})
	require.NoError(t, err)
	require.Equal(t, 1, res.Succeeded())

	// Forget the id; the item must be found by path and deletion time
	entry, ok := env.engine.Queue().Pop(res.UndoID)
	require.True(t, ok)
	entry.Batch.Items[0].TrashID = "unknown"
	pushed := env.engine.Queue().Push(entry.Batch)

	_, err = env.engine.Undo(context.Background(), pushed.ID)
	require.NoError(t, err)
	assert.Equal(t, "d", readFile(t, path))
}

func TestUndoTrashAfterExternalRestore(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "doc.txt")
	writeFile(t, path, "d")

	res, err := env.engine.Trash(context.Background(), []string{path})
	require.NoError(t, err)
	_, err = env.bin.Restore(res.Batch.Items[0].TrashID)
	require.NoError(t, err)
	env.drain()

	undo, err := env.engine.UndoLatest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, undo.Failed())
	assert.Equal(t, ReasonNotFound, undo.Failures()[0].Reason)
	assert.True(t, env.engine.Queue().Empty())

	var sawFailure bool
	for _, ev := range env.drain() {
		if f, ok := ev.(notify.OperationFailed); ok {
			sawFailure = true
			assert.Equal(t, "undo_trash", f.Kind)
		}
	}
	assert.True(t, sawFailure)
}

func TestRestoreAndUndo(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "img.png")
	writeFile(t, path, "p")

	item, err := env.bin.Trash(path)
	require.NoError(t, err)

	res, err := env.engine.Restore(context.Background(), []string{item.ID})
	require.NoError(t, err)
	require.Equal(t, 1, res.Succeeded())
	assert.FileExists(t, path)

	_, err = env.engine.UndoLatest(context.Background())
	require.NoError(t, err)
	assert.NoFileExists(t, path)
	items, err := env.bin.List()
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestRenameSameNameIsNoop(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "same.txt")
	writeFile(t, path, "s")

	res, err := env.engine.Rename(context.Background(), path, "same.txt")
	require.NoError(t, err)
	assert.Empty(t, res.Outcomes)
	assert.Zero(t, res.UndoID)
	assert.True(t, env.engine.Queue().Empty())
	assert.Empty(t, env.listings.seen())
}

func TestRenameValidation(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	writeFile(t, path, "a")
	writeFile(t, filepath.Join(dir, "taken.txt"), "t")

	tests := []struct {
		name   string
		reason string
	}{
		{"", NameEmpty},
		{"   ", NameEmpty},
		{"x/y", NameSeparator},
		{"..", NameReserved},
		{"taken.txt", NameExists},
	}
	for _, tt := range tests {
		t.Run(tt.reason+"/"+tt.name, func(t *testing.T) {
			_, err := env.engine.Rename(context.Background(), path, tt.name)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.reason, ve.Reason)
			assert.Equal(t, ReasonInvalidName, ReasonOf(err))
			assert.FileExists(t, path)
		})
	}
	assert.True(t, env.engine.Queue().Empty())
}

func TestRenameAndUndo(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "draft.txt")
	writeFile(t, path, "d")

	res, err := env.engine.Rename(context.Background(), path, ".final.txt")
	require.NoError(t, err)
	assert.Equal(t, NameHidden, res.Warning)
	renamed := filepath.Join(dir, ".final.txt")
	assert.FileExists(t, renamed)
	assert.Equal(t, []string{dir}, env.listings.seen())

	_, err = env.engine.UndoLatest(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.NoFileExists(t, renamed)
}

func TestRenameNormalizesToNFC(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "cafe.txt")
	writeFile(t, path, "c")

	res, err := env.engine.Rename(context.Background(), path, "café.txt")
	require.NoError(t, err)
	require.Equal(t, 1, res.Succeeded())
	assert.Equal(t, filepath.Join(dir, "café.txt"), res.Outcomes[0].Target)
}

const (
	cafeNFD = "cafe\u0301.txt"
	cafeNFC = "caf\u00e9.txt"
)

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestCopyCollisionKeepsNameBytes(t *testing.T) {
	env := newTestEnv(t)
	src, dst := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(src, cafeNFD), "new")
	writeFile(t, filepath.Join(dst, cafeNFD), "old")

	res, err := env.engine.Copy(context.Background(), []string{filepath.Join(src, cafeNFD)}, dst)
	require.NoError(t, err)
	assert.Zero(t, res.Succeeded())
	require.Len(t, res.Failures(), 1)
	assert.Equal(t, ReasonCollision, res.Failures()[0].Reason)
	assert.Len(t, dirNames(t, dst), 1)
	assert.Equal(t, "old", readFile(t, filepath.Join(dst, cafeNFD)))
}

func TestMoveKeepsNameBytes(t *testing.T) {
	env := newTestEnv(t)
	src, dst := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(src, cafeNFD), "c")

	res, err := env.engine.Move(context.Background(), []string{filepath.Join(src, cafeNFD)}, dst)
	require.NoError(t, err)
	require.Equal(t, 1, res.Succeeded())
	assert.Equal(t, filepath.Join(dst, cafeNFD), res.Outcomes[0].Target)
	assert.Equal(t, []string{cafeNFD}, dirNames(t, dst))
}

func TestRenameAcrossNormalizationForms(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, cafeNFD)
	writeFile(t, path, "c")
	other := filepath.Join(dir, "a.txt")
	writeFile(t, other, "a")

	// Same name in another form is no change
	res, err := env.engine.Rename(context.Background(), path, cafeNFC)
	require.NoError(t, err)
	assert.Empty(t, res.Outcomes)
	assert.True(t, env.engine.Queue().Empty())

	// A sibling spelled in another form is taken
	_, err = env.engine.Rename(context.Background(), other, cafeNFC)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, NameExists, ve.Reason)
	assert.FileExists(t, other)
}

func TestNewFolderAndUndo(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()

	res, err := env.engine.NewFolder(context.Background(), dir, "photos")
	require.NoError(t, err)
	require.Equal(t, 1, res.Succeeded())
	folder := filepath.Join(dir, "photos")
	assert.DirExists(t, folder)
	assert.Equal(t, folder, res.Outcomes[0].Target)
	assert.Equal(t, NewFolder, res.Batch.Kind)
	assert.NotZero(t, res.UndoID)
	assert.Equal(t, []string{dir}, env.listings.seen())
	require.Len(t, env.journal.results, 1)

	_, err = env.engine.UndoLatest(context.Background())
	require.NoError(t, err)
	assert.NoDirExists(t, folder)
}

func TestNewFolderValidation(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "taken"), "t")

	tests := []struct {
		name   string
		reason string
	}{
		{"", NameEmpty},
		{"x/y", NameSeparator},
		{".", NameReserved},
		{"taken", NameExists},
	}
	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			_, err := env.engine.NewFolder(context.Background(), dir, tt.name)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.reason, ve.Reason)
		})
	}
	assert.Equal(t, []string{"taken"}, dirNames(t, dir))
	assert.True(t, env.engine.Queue().Empty())
	assert.Empty(t, env.listings.seen())

	res, err := env.engine.NewFolder(context.Background(), dir, ".cache")
	require.NoError(t, err)
	assert.Equal(t, NameHidden, res.Warning)
	assert.DirExists(t, filepath.Join(dir, ".cache"))
}

func TestUndoNewFolderKeepsContents(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()

	_, err := env.engine.NewFolder(context.Background(), dir, "work")
	require.NoError(t, err)
	writeFile(t, filepath.Join(dir, "work", "notes.txt"), "n")

	undo, err := env.engine.UndoLatest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, undo.Failed())
	assert.FileExists(t, filepath.Join(dir, "work", "notes.txt"))
	assert.True(t, env.engine.Queue().Empty())
}

func TestTrashPartialUndoRestoresOnlyTrashed(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	kept := filepath.Join(dir, "kept.txt")
	missing := filepath.Join(dir, "missing.txt")
	writeFile(t, kept, "k")

	res, err := env.engine.Trash(context.Background(), []string{kept, missing})
	require.NoError(t, err)
	require.Equal(t, 1, res.Succeeded())
	require.Equal(t, 1, res.Failed())
	require.Len(t, res.Batch.Items, 1)

	undo, err := env.engine.Undo(context.Background(), res.UndoID)
	require.NoError(t, err)
	require.Len(t, undo.Outcomes, 1)
	assert.Equal(t, 1, undo.Succeeded())
	assert.Equal(t, kept, undo.Outcomes[0].Target)
	assert.Equal(t, "k", readFile(t, kept))
	assert.NoFileExists(t, missing)

	items, err := env.bin.List()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestUndoErrors(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.engine.UndoLatest(context.Background())
	assert.ErrorIs(t, err, ErrNothingToUndo)

	_, err = env.engine.Undo(context.Background(), 42)
	assert.ErrorIs(t, err, ErrUnknownUndo)
}

func TestUndoOutOfOrder(t *testing.T) {
	env := newTestEnv(t)
	src, dst := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(src, "one.txt"), "1")
	writeFile(t, filepath.Join(src, "two.txt"), "2")

	first, err := env.engine.Copy(context.Background(), []string{filepath.Join(src, "one.txt")}, dst)
	require.NoError(t, err)
	second, err := env.engine.Copy(context.Background(), []string{filepath.Join(src, "two.txt")}, dst)
	require.NoError(t, err)
	assert.Greater(t, second.UndoID, first.UndoID)

	_, err = env.engine.Undo(context.Background(), first.UndoID)
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(dst, "one.txt"))
	assert.FileExists(t, filepath.Join(dst, "two.txt"))

	entries := env.engine.Queue().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, second.UndoID, entries[0].ID)

	_, err = env.engine.Undo(context.Background(), first.UndoID)
	assert.ErrorIs(t, err, ErrUnknownUndo)
}

func TestEmptyTrashDropsTrashUndo(t *testing.T) {
	env := newTestEnv(t)
	dir, dst := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(dir, "junk.txt"), "j")
	writeFile(t, filepath.Join(dir, "keep.txt"), "k")

	_, err := env.engine.Trash(context.Background(), []string{filepath.Join(dir, "junk.txt")})
	require.NoError(t, err)
	copied, err := env.engine.Copy(context.Background(), []string{filepath.Join(dir, "keep.txt")}, dst)
	require.NoError(t, err)
	env.drain()

	require.NoError(t, env.engine.EmptyTrash(context.Background()))

	entries := env.engine.Queue().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, copied.UndoID, entries[0].ID)

	events := env.drain()
	require.Len(t, events, 1)
	emptied, ok := events[0].(notify.TrashEmptied)
	require.True(t, ok)
	assert.Equal(t, 1, emptied.Dropped)
}

func TestJournalFailureDoesNotFailOperation(t *testing.T) {
	env := newTestEnv(t)
	env.journal.err = errors.New("disk full")
	src, dst := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(src, "a.txt"), "a")

	res, err := env.engine.Copy(context.Background(), []string{filepath.Join(src, "a.txt")}, dst)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Succeeded())
	assert.NotZero(t, res.UndoID)
	assert.Len(t, env.journal.results, 1)
}

func TestCancelledContextFailsRemainingItems(t *testing.T) {
	env := newTestEnv(t)
	src, dst := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(src, "a.txt"), "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := env.engine.Copy(ctx, []string{filepath.Join(src, "a.txt")}, dst)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed())
	assert.ErrorIs(t, res.Failures()[0], context.Canceled)
	assert.NoFileExists(t, filepath.Join(dst, "a.txt"))
}
