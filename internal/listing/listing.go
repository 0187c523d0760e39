// Package listing supplies the entries shown for a location and keeps track
// of which locations are on screen so that file operations and external
// changes can mark them stale.
package listing

import (
	"cmp"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"

	"github.com/justyntemme/razorcore/internal/debug"
	"github.com/justyntemme/razorcore/internal/entry"
	"github.com/justyntemme/razorcore/internal/trash"
)

var errNotDir = errors.New("not a directory")

// TrashLister is the part of the trash the provider lists.
type TrashLister interface {
	List() ([]trash.Item, error)
	Root() string
}

// Provider fetches listings and fans out stale notifications for the
// locations currently shown.
type Provider struct {
	classifier *entry.Classifier
	trash      TrashLister
	watcher    *watcher // nil when watching is unavailable
	plane      *Plane   // nil when tags are disabled

	mu    sync.Mutex
	shown map[string]int // location -> number of views showing it
	stale chan string
}

// New creates a provider. debounceMs 0 uses the watcher default; a
// negative value disables filesystem watching.
func New(classifier *entry.Classifier, bin TrashLister, debounceMs int) *Provider {
	p := &Provider{
		classifier: classifier,
		trash:      bin,
		shown:      make(map[string]int),
		stale:      make(chan string, 16),
	}
	if debounceMs >= 0 {
		w, err := newWatcher(debounceMs, p.NotifyStale)
		if err != nil {
			debug.Log(debug.WATCH, "watcher unavailable: %v", err)
		} else {
			p.watcher = w
		}
	}
	return p
}

// SetPlane enables tag views. Call it before the provider is shared.
func (p *Provider) SetPlane(pl *Plane) { p.plane = pl }

// Plane returns the tag plane, nil when tags are disabled.
func (p *Provider) Plane() *Plane { return p.plane }

// Fetch lists the direct children of dir, directories first then by name.
func (p *Provider) Fetch(ctx context.Context, dir string) ([]entry.Entry, error) {
	if dir == trash.Location {
		return p.FetchTrash(ctx)
	}
	if filter, ok := ParseTagLocation(dir); ok {
		return p.FetchTagged(ctx, filter)
	}
	metas, err := fetchDir(ctx, dir)
	if err != nil {
		return nil, err
	}
	out := make([]entry.Entry, 0, len(metas))
	for _, m := range metas {
		out = append(out, p.classifier.Classify(m))
	}
	sortEntries(out)
	return out, nil
}

// FetchTrash lists the trash as TrashedItem entries, most recent first.
func (p *Provider) FetchTrash(ctx context.Context) ([]entry.Entry, error) {
	if p.trash == nil {
		return nil, nil
	}
	items, err := p.trash.List()
	if err != nil {
		return nil, err
	}
	out := make([]entry.Entry, 0, len(items))
	for _, it := range slices.Backward(items) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, p.classifier.Classify(entry.Metadata{
			Path:         it.TrashPath,
			DisplayName:  it.Name(),
			ContentType:  entry.ContentTypeOf(it.Name(), it.IsDir),
			Size:         it.Size,
			ModTime:      it.DeletedAt,
			Trashed:      true,
			DeletedAt:    it.DeletedAt,
			OriginalPath: it.OriginalPath,
		}))
	}
	return out, nil
}

// FetchTagged merges the children of every tag location carrying all of
// filter. Subdirectories that are themselves tags are left out since they
// are reached by adding their tag to the filter.
func (p *Provider) FetchTagged(ctx context.Context, filter []string) ([]entry.Entry, error) {
	if p.plane == nil {
		return nil, errNoPlane
	}
	locs, err := p.plane.Locations(ctx, filter)
	if err != nil {
		return nil, err
	}
	var out []entry.Entry
	for _, loc := range locs {
		metas, err := fetchDir(ctx, loc)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			debug.Log(debug.FS, "tag location %s: %v", loc, err)
			continue
		}
		for _, m := range metas {
			if m.ContentType == entry.DirectoryType && p.plane.IsTag(m.DisplayName) {
				continue
			}
			out = append(out, p.classifier.Classify(m))
		}
	}
	sortEntries(out)
	return out, nil
}

// Show registers a location as displayed and starts watching it.
func (p *Provider) Show(dir string) {
	p.mu.Lock()
	p.shown[dir]++
	first := p.shown[dir] == 1
	p.mu.Unlock()

	if wp := p.watchPath(dir); first && p.watcher != nil && wp != "" {
		if err := p.watcher.Watch(wp, dir); err != nil {
			debug.Log(debug.WATCH, "watch %s: %v", dir, err)
		}
	}
}

// Hide undoes one Show.
func (p *Provider) Hide(dir string) {
	p.mu.Lock()
	n := p.shown[dir] - 1
	if n <= 0 {
		delete(p.shown, dir)
	} else {
		p.shown[dir] = n
	}
	p.mu.Unlock()

	if wp := p.watchPath(dir); n <= 0 && p.watcher != nil && wp != "" {
		p.watcher.Unwatch(wp)
	}
}

// Shown reports whether a location is displayed.
func (p *Provider) Shown(dir string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shown[dir] > 0
}

// NotifyStale marks a location's listing out of date, along with the tag
// views it feeds. Only displayed locations are reported; a full channel
// drops the notice since the consumer refreshes everything it has queued
// anyway.
func (p *Provider) NotifyStale(dir string) {
	p.push(dir)
	if p.plane != nil {
		p.notifyTagViews(dir)
	}
}

func (p *Provider) push(loc string) {
	if !p.Shown(loc) {
		return
	}
	select {
	case p.stale <- loc:
		debug.Log(debug.FS, "stale: %s", loc)
	default:
		debug.Log(debug.FS, "stale channel full, dropped %s", loc)
	}
}

// notifyTagViews marks the shown tag views a change in dir can affect. A
// new child of a tag location may be a location one tag deeper, so views
// lacking one of dir's tags count too.
func (p *Provider) notifyTagViews(dir string) {
	tags, ok := p.plane.TagsOf(dir)
	if !ok {
		return
	}
	var views []string
	p.mu.Lock()
	for loc := range p.shown {
		if strings.HasPrefix(loc, TagScheme) {
			views = append(views, loc)
		}
	}
	p.mu.Unlock()

	for _, v := range views {
		filter, _ := ParseTagLocation(v)
		if missingTags(filter, tags) <= 1 {
			p.push(v)
		}
	}
}

// Stale delivers locations whose listings need refreshing.
func (p *Provider) Stale() <-chan string {
	return p.stale
}

// Close stops watching.
func (p *Provider) Close() error {
	if p.watcher == nil {
		return nil
	}
	return p.watcher.Close()
}

// watchPath is the directory watched for a location, empty for tag views.
func (p *Provider) watchPath(dir string) string {
	if dir == trash.Location && p.trash != nil {
		return filepath.Join(p.trash.Root(), "files")
	}
	if strings.HasPrefix(dir, TagScheme) {
		return ""
	}
	return dir
}

// fetchDir reads the direct children of path. Symlinks are followed for
// type and size; a broken link is listed as itself.
func fetchDir(ctx context.Context, path string) ([]entry.Metadata, error) {
	debug.Log(debug.FS, "fetchDir: reading %q", path)

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &fs.PathError{Op: "list", Path: path, Err: errNotDir}
	}

	var (
		result []entry.Metadata
		mu     sync.Mutex
	)
	conf := &fastwalk.Config{Follow: true}
	pathLen := len(path)

	err = fastwalk.Walk(conf, path, func(fullPath string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			debug.Log(debug.FS_ENTRY, "fetchDir: walk error at %q: %v", fullPath, err)
			return nil
		}
		if fullPath == path {
			return nil
		}

		relStart := pathLen
		if relStart < len(fullPath) && (fullPath[relStart] == '/' || fullPath[relStart] == '\\') {
			relStart++
		}
		if strings.ContainsAny(fullPath[relStart:], "/\\") {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		info, err := fastwalk.StatDirEntry(fullPath, d)
		if err != nil {
			info, err = os.Lstat(fullPath)
			if err != nil {
				debug.Log(debug.FS_ENTRY, "fetchDir: skipping %q: %v", d.Name(), err)
				return nil
			}
		}

		mu.Lock()
		result = append(result, entry.Metadata{
			Path:        fullPath,
			DisplayName: d.Name(),
			ContentType: entry.ContentTypeOf(d.Name(), info.IsDir()),
			Size:        info.Size(),
			ModTime:     info.ModTime(),
		})
		mu.Unlock()

		if d.IsDir() {
			return fastwalk.SkipDir
		}
		return nil
	})
	if err != nil {
		debug.Log(debug.FS, "fetchDir: %v", err)
		return nil, err
	}

	debug.Log(debug.FS, "fetchDir: %d entries", len(result))
	return result, nil
}

func sortEntries(es []entry.Entry) {
	slices.SortFunc(es, func(a, b entry.Entry) int {
		if a.IsDir() != b.IsDir() {
			if a.IsDir() {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(strings.ToLower(a.DisplayName), strings.ToLower(b.DisplayName)); c != 0 {
			return c
		}
		return cmp.Compare(a.DisplayName, b.DisplayName)
	})
}
