package listing

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"

	"github.com/justyntemme/razorcore/internal/debug"
)

// TagScheme prefixes tag view locations, e.g. "tags://photos,2024".
const TagScheme = "tags://"

var (
	ErrInvalidTag = errors.New("invalid tag name")
	errNoPlane    = errors.New("tags are not enabled")
)

// TagStore persists tag names.
type TagStore interface {
	Tags(ctx context.Context) ([]string, error)
	AddTag(ctx context.Context, name string) error
	RemoveTag(ctx context.Context, name string) error
}

// Plane organizes files by tags. A tag is a directory name under the plane
// home; a directory carries the tags on its path from home as long as every
// component of that path is a distinct tag.
type Plane struct {
	home  string
	store TagStore // nil keeps tags in memory only

	mu   sync.RWMutex
	tags []string
}

// NewPlane loads the known tags from store.
func NewPlane(ctx context.Context, home string, store TagStore) (*Plane, error) {
	pl := &Plane{home: filepath.Clean(home), store: store}
	if store != nil {
		tags, err := store.Tags(ctx)
		if err != nil {
			return nil, err
		}
		pl.tags = tags
	}
	return pl, nil
}

func (pl *Plane) Home() string { return pl.home }

// Tags returns the known tags in the order they were added.
func (pl *Plane) Tags() []string {
	pl.mu.RLock()
	defer pl.mu.RUnlock()
	return slices.Clone(pl.tags)
}

func (pl *Plane) IsTag(name string) bool {
	pl.mu.RLock()
	defer pl.mu.RUnlock()
	return slices.Contains(pl.tags, name)
}

// AddTag makes name a tag. Adding a known tag is not an error.
func (pl *Plane) AddTag(ctx context.Context, name string) error {
	if !validTag(name) {
		return fmt.Errorf("%w: %q", ErrInvalidTag, name)
	}
	pl.mu.Lock()
	defer pl.mu.Unlock()
	if slices.Contains(pl.tags, name) {
		return nil
	}
	if pl.store != nil {
		if err := pl.store.AddTag(ctx, name); err != nil {
			return err
		}
	}
	pl.tags = append(pl.tags, name)
	debug.Log(debug.FS, "tag added: %s", name)
	return nil
}

// RemoveTag forgets a tag. Its directories are left alone.
func (pl *Plane) RemoveTag(ctx context.Context, name string) error {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	i := slices.Index(pl.tags, name)
	if i < 0 {
		return nil
	}
	if pl.store != nil {
		if err := pl.store.RemoveTag(ctx, name); err != nil {
			return err
		}
	}
	pl.tags = slices.Delete(pl.tags, i, i+1)
	return nil
}

func validTag(name string) bool {
	return name != "" && name != "." && name != ".." &&
		strings.TrimSpace(name) == name &&
		!strings.ContainsAny(name, "/\\,")
}

// TagsOf returns the tags carried by dir and whether dir is a tag location.
// The plane home itself is a tag location with no tags.
func (pl *Plane) TagsOf(dir string) ([]string, bool) {
	pl.mu.RLock()
	defer pl.mu.RUnlock()
	return tagsOf(pl.home, dir, pl.tags)
}

func tagsOf(home, dir string, known []string) ([]string, bool) {
	if !filepath.IsAbs(dir) {
		return nil, false
	}
	rel, err := filepath.Rel(home, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, false
	}
	if rel == "." {
		return nil, true
	}
	parts := strings.Split(rel, string(filepath.Separator))
	for i, part := range parts {
		if !slices.Contains(known, part) || slices.Contains(parts[:i], part) {
			return nil, false
		}
	}
	return parts, true
}

// Locations returns every tag location carrying all of filter, sorted. An
// empty filter or an unknown tag matches nothing.
func (pl *Plane) Locations(ctx context.Context, filter []string) ([]string, error) {
	known := pl.Tags()
	if len(filter) == 0 {
		return nil, nil
	}
	for _, tag := range filter {
		if !slices.Contains(known, tag) {
			return nil, nil
		}
	}
	if _, err := os.Stat(pl.home); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	var (
		out []string
		mu  sync.Mutex
	)
	conf := &fastwalk.Config{Follow: false}
	err := fastwalk.Walk(conf, pl.home, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			debug.Log(debug.FS_ENTRY, "tag walk error at %q: %v", path, err)
			return nil
		}
		if path == pl.home || !d.IsDir() {
			return nil
		}
		tags, ok := tagsOf(pl.home, path, known)
		if !ok {
			return fastwalk.SkipDir
		}
		if missingTags(filter, tags) == 0 {
			mu.Lock()
			out = append(out, path)
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(out)
	return out, nil
}

// Destination returns the directory new items in a tag view go to,
// creating it when needed.
func (pl *Plane) Destination(filter []string) (string, error) {
	if len(filter) == 0 {
		return "", fmt.Errorf("%w: empty tag view", ErrInvalidTag)
	}
	for _, tag := range filter {
		if !pl.IsTag(tag) {
			return "", fmt.Errorf("%w: unknown tag %q", ErrInvalidTag, tag)
		}
	}
	dir := filepath.Join(append([]string{pl.home}, filter...)...)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// TagLocation names the view listing everything tagged with all of tags.
func TagLocation(tags []string) string {
	return TagScheme + strings.Join(tags, ",")
}

// ParseTagLocation returns the tags of a tag view location.
func ParseTagLocation(loc string) ([]string, bool) {
	rest, ok := strings.CutPrefix(loc, TagScheme)
	if !ok {
		return nil, false
	}
	var tags []string
	for _, tag := range strings.Split(rest, ",") {
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags, true
}

// missingTags counts the tags of filter that tags lacks.
func missingTags(filter, tags []string) int {
	n := 0
	for _, tag := range filter {
		if !slices.Contains(tags, tag) {
			n++
		}
	}
	return n
}
