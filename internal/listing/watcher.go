package listing

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/justyntemme/razorcore/internal/debug"
)

// watcher turns filesystem events in watched directories into debounced
// stale notices for the location each directory backs.
type watcher struct {
	fsw      *fsnotify.Watcher
	mu       sync.Mutex
	watching map[string]string // watched path -> location
	onChange func(location string)
	done     chan struct{}
	debounce time.Duration
}

func newWatcher(debounceMs int, onChange func(string)) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounceMs <= 0 {
		debounceMs = 200
	}
	w := &watcher{
		fsw:      fsw,
		watching: make(map[string]string),
		onChange: onChange,
		done:     make(chan struct{}),
		debounce: time.Duration(debounceMs) * time.Millisecond,
	}
	go w.run()
	return w, nil
}

func (w *watcher) run() {
	lastEvent := make(map[string]time.Time)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Write) {
				continue
			}
			w.mu.Lock()
			loc, ok := w.watching[filepath.Dir(event.Name)]
			if !ok {
				// The watched directory itself changed
				loc, ok = w.watching[event.Name]
			}
			w.mu.Unlock()
			if ok {
				lastEvent[loc] = time.Now()
				debug.Log(debug.WATCH, "%s on %s", event.Op, event.Name)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			debug.Log(debug.WATCH, "fsnotify error: %v", err)

		case now := <-ticker.C:
			for loc, last := range lastEvent {
				if now.Sub(last) >= w.debounce {
					delete(lastEvent, loc)
					w.onChange(loc)
				}
			}
		}
	}
}

// Watch starts reporting changes in path as changes to location.
func (w *watcher) Watch(path, location string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.watching[path]; ok {
		return nil
	}
	if err := w.fsw.Add(path); err != nil {
		return err
	}
	w.watching[path] = location
	debug.Log(debug.WATCH, "watching %s", path)
	return nil
}

// Unwatch stops watching path. Errors are ignored since the directory may
// already be gone.
func (w *watcher) Unwatch(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.watching[path]; !ok {
		return
	}
	if err := w.fsw.Remove(path); err != nil {
		debug.Log(debug.WATCH, "unwatch %s: %v", path, err)
	}
	delete(w.watching, path)
}

func (w *watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
