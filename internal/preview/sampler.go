package preview

import (
	"context"
	"errors"
	"io"
	"iter"
	"os"
	"path/filepath"

	"github.com/justyntemme/razorcore/internal/debug"
	"github.com/justyntemme/razorcore/internal/entry"
)

// ThumbnailFunc returns a thumbnail path for a sampled file, or "".
type ThumbnailFunc func(ctx context.Context, e entry.Entry) string

// Sampler enumerates the first few children of a directory for a stacked
// preview. Children come in raw enumeration order, one directory read at a
// time, so huge directories cost no more than small ones.
type Sampler struct {
	classifier *entry.Classifier
	thumbnail  ThumbnailFunc
}

// NewSampler creates a sampler. thumb may be nil to skip file thumbnails.
func NewSampler(classifier *entry.Classifier, thumb ThumbnailFunc) *Sampler {
	return &Sampler{classifier: classifier, thumbnail: thumb}
}

// Sample yields up to MaxSamples children of dir. The sequence ends early when
// ctx is cancelled, the consumer stops, or enumeration fails.
func (s *Sampler) Sample(ctx context.Context, dir string) iter.Seq[ChildSample] {
	return func(yield func(ChildSample) bool) {
		f, err := os.Open(dir)
		if err != nil {
			debug.Log(debug.SAMPLE, "sampler: open %s: %v", dir, err)
			return
		}
		defer f.Close()

		for n := 0; n < MaxSamples; {
			if ctx.Err() != nil {
				return
			}
			des, err := f.ReadDir(1)
			if len(des) == 0 {
				if err != nil && !errors.Is(err, io.EOF) {
					debug.Log(debug.SAMPLE, "sampler: read %s: %v", dir, err)
				}
				return
			}

			sample, ok := s.sampleChild(ctx, filepath.Join(dir, des[0].Name()), des[0])
			if !ok {
				continue
			}
			n++
			if !yield(sample) {
				return
			}
		}
	}
}

func (s *Sampler) sampleChild(ctx context.Context, path string, de os.DirEntry) (ChildSample, bool) {
	isDir := de.IsDir()
	if de.Type()&os.ModeSymlink != 0 {
		if info, err := os.Stat(path); err == nil {
			isDir = info.IsDir()
		}
	}

	if isDir {
		// Directories in a stack are never expanded further
		return ChildSample{
			ContentType: entry.DirectoryType,
			Icon:        entry.FolderIcon,
			IsDir:       true,
		}, true
	}

	info, err := de.Info()
	if err != nil {
		// Vanished between enumeration and stat
		debug.Log(debug.SAMPLE, "sampler: skip %s: %v", path, err)
		return ChildSample{}, false
	}

	e := s.classifier.Classify(entry.Metadata{
		Path:        path,
		DisplayName: de.Name(),
		ContentType: entry.ContentTypeOf(de.Name(), false),
		Size:        info.Size(),
		ModTime:     info.ModTime(),
	})
	sample := ChildSample{ContentType: e.ContentType, Icon: e.Icon}
	if s.thumbnail != nil {
		sample.ThumbnailPath = s.thumbnail(ctx, e)
	}
	return sample, true
}
