// Package app wires the core components together from configuration. The
// Orchestrator it builds is the single owner of core state (undo queue,
// thumbnail caches, displayed locations) for the lifetime of the process.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/justyntemme/razorcore/internal/config"
	"github.com/justyntemme/razorcore/internal/debug"
	"github.com/justyntemme/razorcore/internal/entry"
	"github.com/justyntemme/razorcore/internal/fileops"
	"github.com/justyntemme/razorcore/internal/listing"
	"github.com/justyntemme/razorcore/internal/logging"
	"github.com/justyntemme/razorcore/internal/notify"
	"github.com/justyntemme/razorcore/internal/preview"
	"github.com/justyntemme/razorcore/internal/store"
	"github.com/justyntemme/razorcore/internal/thumbnail"
	"github.com/justyntemme/razorcore/internal/trash"
)

// watchDebounceMs is how long the listing watcher waits for a burst of
// filesystem events to settle.
const watchDebounceMs = 200

// Orchestrator owns the core state of one running razor: the preview
// pipeline, the operation engine with its undo queue, the trash, listings
// and the journal. Front ends drive it from their coordinating context.
type Orchestrator struct {
	Config      *config.Config
	Classifier  *entry.Classifier
	Thumbnails  *thumbnail.Cache
	Pipeline    *preview.Pipeline
	Trash       *trash.Bin
	Journal     *store.DB // nil when the journal could not be opened
	Bus         *notify.Bus
	Listing     *listing.Provider
	Engine      *fileops.Engine
	FileManager *FileManagerService // nil unless exported

	dbus *thumbnail.DBusDecoder
}

// New builds every component from cfg. A journal that fails to open is
// logged and left out; everything else is required.
func New(cfg *config.Config) (*Orchestrator, error) {
	o := &Orchestrator{
		Config:     cfg,
		Classifier: entry.NewClassifier(cfg.Classifier.SuppressExtension),
		Bus:        notify.NewBus(),
	}

	var err error
	o.Thumbnails, err = thumbnail.NewCache(cfg.Preview.ThumbnailDir, cfg.Preview.MemoryEntries)
	if err != nil {
		return nil, fmt.Errorf("thumbnail cache: %w", err)
	}

	o.Trash, err = trash.New(cfg.Trash.Root)
	if err != nil {
		return nil, fmt.Errorf("trash: %w", err)
	}

	if cfg.Store.Path != "" {
		db, err := store.Open(cfg.Store.Path)
		if err != nil {
			logging.Error("journal unavailable", zap.String("path", cfg.Store.Path), zap.Error(err))
		} else {
			o.Journal = db
		}
	}

	o.Pipeline = preview.NewPipeline(preview.Options{
		Workers:    cfg.Preview.Workers,
		Classifier: o.Classifier,
		Cache:      o.Thumbnails,
		Decoder:    o.decoders(),
		Policy:     thumbnail.NewVolumePolicy(cfg.Preview.DisabledFilesystems, cfg.Preview.DisabledPaths),
		Size:       cfg.Preview.ThumbnailSize,
	})

	o.Listing = listing.New(o.Classifier, o.Trash, watchDebounceMs)
	if cfg.Tags.Home != "" {
		o.enableTags(cfg.Tags.Home)
	}

	opts := fileops.Options{
		Trash:           o.Trash,
		Listings:        o.Listing,
		Notifier:        o.Bus,
		Conflict:        fileops.ParseConflictPolicy(cfg.FileOps.ConflictPolicy),
		CrossDeviceCopy: cfg.FileOps.CrossDeviceCopy,
		UndoCapacity:    undoCapacity(cfg.FileOps.UndoCapacity),
	}
	if o.Journal != nil {
		opts.Journal = o.Journal
	}
	o.Engine = fileops.New(opts)

	if cfg.Desktop.FileManagerService {
		if o.FileManager, err = ExportFileManager(); err != nil {
			logging.Warn("file manager service unavailable", zap.Error(err))
		}
	}

	debug.Log(debug.APP, "orchestrator ready: workers=%d size=%d trash=%s conflict=%s",
		cfg.Preview.Workers, cfg.Preview.ThumbnailSize, o.Trash.Root(), opts.Conflict)
	return o, nil
}

// enableTags attaches a tag plane to the listing. Tags are kept in the
// journal when it is open and in memory otherwise.
func (o *Orchestrator) enableTags(home string) {
	var tags listing.TagStore
	if o.Journal != nil {
		tags = o.Journal
	}
	pl, err := listing.NewPlane(context.Background(), home, tags)
	if err != nil {
		logging.Warn("tags unavailable", zap.String("home", home), zap.Error(err))
		return
	}
	o.Listing.SetPlane(pl)
}

// undoCapacity maps the config value (0 = unbounded) to the engine's
// convention (0 = default, negative = unbounded).
func undoCapacity(n int) int {
	if n <= 0 {
		return -1
	}
	return n
}

// decoders assembles the thumbnail decoders in order of preference.
func (o *Orchestrator) decoders() thumbnail.Decoders {
	ds := thumbnail.Decoders{thumbnail.ImageDecoder{}}
	if cd := thumbnail.NewCommandDecoder(o.Config.Preview.VideoCommand); cd != nil {
		ds = append(ds, cd)
	}
	if o.Config.Preview.DBusThumbnailer {
		d, err := thumbnail.NewDBusDecoder(o.Config.Preview.ThumbnailSize)
		if err != nil {
			logging.Warn("dbus thumbnailer unavailable", zap.Error(err))
		} else {
			o.dbus = d
			ds = append(ds, d)
		}
	}
	return ds
}

// RequestPreview issues a fresh token for slot and schedules its preview.
// The token is returned so the sink can be told what to expect before any
// result can arrive.
func (o *Orchestrator) RequestPreview(slot preview.Slot, m entry.Metadata, sink preview.Sink, expect func(preview.Token)) preview.Token {
	token := o.Pipeline.NextToken()
	if expect != nil {
		expect(token)
	}
	o.Pipeline.Request(slot, m, token, sink)
	return token
}

// Close stops the pipeline and releases every resource.
func (o *Orchestrator) Close() error {
	o.Pipeline.Close()

	var errs []error
	if err := o.Listing.Close(); err != nil {
		errs = append(errs, err)
	}
	if o.FileManager != nil {
		if err := o.FileManager.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if o.dbus != nil {
		if err := o.dbus.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if o.Journal != nil {
		if err := o.Journal.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
