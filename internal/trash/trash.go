// Package trash implements a trash can with the freedesktop.org layout:
// trashed objects live in files/ and each has an info/<name>.trashinfo file
// recording its original path and deletion time.
//
// The same layout is used on every platform, rooted at DefaultRoot unless
// configured otherwise.
package trash

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/ini.v1"

	"github.com/justyntemme/razorcore/internal/debug"
)

// Location is the listing path under which the trash is shown.
const Location = "trash:///"

var (
	// ErrNotFound means the trashed object no longer exists in the trash.
	ErrNotFound = errors.New("trash: item not found")
	// ErrOccupied means something already exists at the restore location.
	ErrOccupied = errors.New("trash: original location is occupied")
)

const (
	infoSection = "Trash Info"
	infoExt     = ".trashinfo"
	dateLayout  = "2006-01-02T15:04:05"
)

// Paths may contain ';' and '#', which must not be read as comments.
var iniOptions = ini.LoadOptions{IgnoreInlineComment: true}

func init() {
	// trashinfo readers expect Key=Value without padding
	ini.PrettyFormat = false
}

// Item represents a file or directory in the trash
type Item struct {
	ID           string    // Name under files/, unique within the trash
	OriginalPath string    // Full path where the file was deleted from
	TrashPath    string    // Current path in trash
	DeletedAt    time.Time // Deletion time, second precision
	Size         int64
	IsDir        bool
}

// Name returns the original base name.
func (it Item) Name() string {
	if it.OriginalPath != "" {
		return filepath.Base(it.OriginalPath)
	}
	return it.ID
}

// Bin is a trash directory. Methods are safe for concurrent use.
type Bin struct {
	root string
	mu   sync.Mutex
	now  func() time.Time
}

// New opens the trash rooted at root, creating it if needed.
// An empty root selects DefaultRoot.
func New(root string) (*Bin, error) {
	if root == "" {
		root = DefaultRoot()
	}
	if root == "" {
		return nil, errors.New("trash: no trash location available")
	}
	b := &Bin{root: root, now: time.Now}
	for _, dir := range []string{b.filesDir(), b.infoDir()} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("cannot create trash directory: %w", err)
		}
	}
	return b, nil
}

// Root returns the trash directory.
func (b *Bin) Root() string { return b.root }

func (b *Bin) filesDir() string { return filepath.Join(b.root, "files") }
func (b *Bin) infoDir() string  { return filepath.Join(b.root, "info") }

func (b *Bin) infoPath(id string) string {
	return filepath.Join(b.infoDir(), id+infoExt)
}

// Trash moves path into the trash and returns the trashed item.
func (b *Bin) Trash(path string) (Item, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Item{}, err
	}
	info, err := os.Lstat(absPath)
	if err != nil {
		return Item{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	deletedAt := b.now().Truncate(time.Second)
	id, infoFile, err := b.reserve(filepath.Base(absPath))
	if err != nil {
		return Item{}, err
	}

	if err := writeInfo(infoFile, absPath, deletedAt); err != nil {
		infoFile.Close()
		os.Remove(b.infoPath(id))
		return Item{}, fmt.Errorf("cannot create trashinfo file: %w", err)
	}
	if err := infoFile.Close(); err != nil {
		os.Remove(b.infoPath(id))
		return Item{}, err
	}

	dest := filepath.Join(b.filesDir(), id)
	if err := os.Rename(absPath, dest); err != nil {
		// Clean up info file on failure
		os.Remove(b.infoPath(id))
		return Item{}, err
	}

	debug.Log(debug.TRASH, "trashed %s as %s", absPath, id)
	return Item{
		ID:           id,
		OriginalPath: absPath,
		TrashPath:    dest,
		DeletedAt:    deletedAt,
		Size:         info.Size(),
		IsDir:        info.IsDir(),
	}, nil
}

// reserve claims a unique id by exclusively creating its info file.
// Must hold b.mu.
func (b *Bin) reserve(base string) (string, *os.File, error) {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		stem, ext = base, ""
	}

	id := base
	for counter := 1; ; counter++ {
		if _, err := os.Lstat(filepath.Join(b.filesDir(), id)); errors.Is(err, os.ErrNotExist) {
			f, err := os.OpenFile(b.infoPath(id), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
			if err == nil {
				return id, f, nil
			}
			if !errors.Is(err, os.ErrExist) {
				return "", nil, fmt.Errorf("cannot create trashinfo file: %w", err)
			}
		}
		id = fmt.Sprintf("%s.%d%s", stem, counter, ext)
	}
}

func writeInfo(f *os.File, originalPath string, deletedAt time.Time) error {
	cfg := ini.Empty(iniOptions)
	sec, err := cfg.NewSection(infoSection)
	if err != nil {
		return err
	}
	if _, err := sec.NewKey("Path", escapePath(originalPath)); err != nil {
		return err
	}
	if _, err := sec.NewKey("DeletionDate", deletedAt.Format(dateLayout)); err != nil {
		return err
	}
	_, err = cfg.WriteTo(f)
	return err
}

func readInfo(path string) (originalPath string, deletedAt time.Time, err error) {
	cfg, err := ini.LoadSources(iniOptions, path)
	if err != nil {
		return "", time.Time{}, err
	}
	sec, err := cfg.GetSection(infoSection)
	if err != nil {
		return "", time.Time{}, err
	}
	encoded := sec.Key("Path").String()
	if encoded == "" {
		return "", time.Time{}, fmt.Errorf("%s: missing Path", path)
	}
	originalPath, err = url.PathUnescape(encoded)
	if err != nil {
		originalPath = encoded
	}
	if d := sec.Key("DeletionDate").String(); d != "" {
		if t, err := time.ParseInLocation(dateLayout, d, time.Local); err == nil {
			deletedAt = t
		}
	}
	return originalPath, deletedAt, nil
}

// escapePath percent-encodes each path segment, keeping separators.
func escapePath(p string) string {
	u := url.URL{Path: filepath.ToSlash(p)}
	return u.EscapedPath()
}

// Get returns the trashed item with the given id.
func (b *Bin) Get(id string) (Item, error) {
	if id == "" || strings.ContainsRune(id, os.PathSeparator) || strings.Contains(id, "/") {
		return Item{}, ErrNotFound
	}
	trashPath := filepath.Join(b.filesDir(), id)
	info, err := os.Lstat(trashPath)
	if err != nil {
		return Item{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	orig, deletedAt, err := readInfo(b.infoPath(id))
	if err != nil {
		return Item{}, fmt.Errorf("%w: %s: %v", ErrNotFound, id, err)
	}
	return Item{
		ID:           id,
		OriginalPath: orig,
		TrashPath:    trashPath,
		DeletedAt:    deletedAt,
		Size:         info.Size(),
		IsDir:        info.IsDir(),
	}, nil
}

// Lookup finds a trashed item by original path and deletion time. Several
// items may share a name; the deletion time tells them apart.
func (b *Bin) Lookup(originalPath string, deletedAt time.Time) (Item, error) {
	items, err := b.List()
	if err != nil {
		return Item{}, err
	}
	want := deletedAt.Truncate(time.Second)
	for _, it := range items {
		if it.OriginalPath == originalPath && it.DeletedAt.Equal(want) {
			return it, nil
		}
	}
	return Item{}, fmt.Errorf("%w: %s deleted %s", ErrNotFound, originalPath, want.Format(dateLayout))
}

// Restore moves a trashed item back to its original path and returns that path.
func (b *Bin) Restore(id string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	it, err := b.Get(id)
	if err != nil {
		return "", err
	}
	if _, err := os.Lstat(it.OriginalPath); err == nil {
		return "", fmt.Errorf("%w: %s", ErrOccupied, it.OriginalPath)
	}
	if err := os.Rename(it.TrashPath, it.OriginalPath); err != nil {
		return "", err
	}
	if err := os.Remove(b.infoPath(id)); err != nil {
		debug.Log(debug.TRASH, "restore %s: stale info file: %v", id, err)
	}

	debug.Log(debug.TRASH, "restored %s to %s", id, it.OriginalPath)
	return it.OriginalPath, nil
}

// List returns all items currently in the trash, oldest first.
func (b *Bin) List() ([]Item, error) {
	entries, err := os.ReadDir(b.filesDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // Empty trash
		}
		return nil, err
	}

	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		item := Item{
			ID:        e.Name(),
			TrashPath: filepath.Join(b.filesDir(), e.Name()),
			DeletedAt: info.ModTime().Truncate(time.Second),
			Size:      info.Size(),
			IsDir:     e.IsDir(),
		}
		if orig, deletedAt, err := readInfo(b.infoPath(e.Name())); err == nil {
			item.OriginalPath = orig
			if !deletedAt.IsZero() {
				item.DeletedAt = deletedAt
			}
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].DeletedAt.Equal(items[j].DeletedAt) {
			return items[i].DeletedAt.Before(items[j].DeletedAt)
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

// Empty permanently deletes all items in the trash.
func (b *Bin) Empty() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var errs []error
	for _, dir := range []string{b.filesDir(), b.infoDir()} {
		entries, err := os.ReadDir(dir)
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		for _, e := range entries {
			if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
				errs = append(errs, err)
			}
		}
	}
	debug.Log(debug.TRASH, "emptied %s", b.root)
	return errors.Join(errs...)
}

// Delete permanently deletes one item from the trash.
func (b *Bin) Delete(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	it, err := b.Get(id)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(it.TrashPath); err != nil {
		return err
	}
	os.Remove(b.infoPath(id)) // Ignore error
	return nil
}

// DisplayName returns the platform-appropriate name for the trash.
func DisplayName() string {
	return displayName()
}
