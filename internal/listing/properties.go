package listing

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/charlievieth/fastwalk"

	"github.com/justyntemme/razorcore/internal/debug"
	"github.com/justyntemme/razorcore/internal/entry"
)

// Properties describes one item in detail.
type Properties struct {
	Entry    entry.Entry
	Location string // Parent directory, or the original one for trashed items
	Size     int64  // Total of the contents for directories
	Items    int    // Files and folders inside a directory
	Mode     fs.FileMode
	Target   string // Symlink target
	Modified time.Time
	Accessed time.Time // Zero where the platform does not report it
	Owner    string
	Group    string

	Readable, Writable, Executable bool
}

// Entry describes a single path the way Fetch would list it.
func (p *Provider) Entry(path string) (entry.Entry, error) {
	info, err := os.Stat(path)
	if err != nil {
		if info, err = os.Lstat(path); err != nil {
			return entry.Entry{}, err
		}
	}
	name := filepath.Base(path)
	return p.classifier.Classify(entry.Metadata{
		Path:        path,
		DisplayName: name,
		ContentType: entry.ContentTypeOf(name, info.IsDir()),
		Size:        info.Size(),
		ModTime:     info.ModTime(),
	}), nil
}

// Properties gathers the details of e. Directory sizes are summed over
// their whole tree without following links, so this can take a while on
// large trees; it stops early when ctx is done.
func (p *Provider) Properties(ctx context.Context, e entry.Entry) (Properties, error) {
	info, err := os.Lstat(e.Path)
	if err != nil {
		return Properties{}, err
	}
	props := Properties{
		Entry:    e,
		Location: filepath.Dir(e.Path),
		Size:     info.Size(),
		Mode:     info.Mode(),
		Modified: info.ModTime(),
	}
	if e.Trashed {
		props.Location = filepath.Dir(e.OriginalPath)
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		props.Target, _ = os.Readlink(e.Path)
	}
	statDetails(e.Path, info, &props)

	if info.IsDir() {
		size, items, err := treeSize(ctx, e.Path)
		if err != nil {
			return Properties{}, err
		}
		props.Size, props.Items = size, items
	}
	return props, nil
}

func treeSize(ctx context.Context, root string) (int64, int, error) {
	var size, items atomic.Int64
	conf := &fastwalk.Config{Follow: false}
	err := fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			debug.Log(debug.FS_ENTRY, "treeSize: %q: %v", path, err)
			return nil
		}
		if path == root {
			return nil
		}
		items.Add(1)
		if d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			size.Add(info.Size())
		}
		return nil
	})
	return size.Load(), int(items.Load()), err
}
