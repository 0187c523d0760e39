//go:build linux

package thumbnail

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	godbus "github.com/godbus/dbus/v5"

	"github.com/justyntemme/razorcore/internal/debug"
)

const (
	thumbnailerName  = "org.freedesktop.thumbnails.Thumbnailer1"
	thumbnailerPath  = "/org/freedesktop/thumbnails/Thumbnailer1"
	thumbnailerIface = "org.freedesktop.thumbnails.Thumbnailer1"
)

// DBusDecoder asks the desktop thumbnailer service to render thumbnails
// and loads the result from the shared freedesktop thumbnail directory.
type DBusDecoder struct {
	conn      *godbus.Conn
	obj       godbus.BusObject
	supported map[string]bool
	flavor    string
	dir       string

	mu      sync.Mutex
	waiters map[string][]chan error // uri -> pending requests
	sigCh   chan *godbus.Signal
}

// NewDBusDecoder connects to the session bus. size picks the flavor
// ("normal" up to 128 px, "large" above).
func NewDBusDecoder(size int) (*DBusDecoder, error) {
	conn, err := godbus.ConnectSessionBus()
	if err != nil {
		return nil, err
	}

	obj := conn.Object(thumbnailerName, godbus.ObjectPath(thumbnailerPath))
	var schemes, mimes []string
	if err := obj.Call(thumbnailerIface+".GetSupported", 0).Store(&schemes, &mimes); err != nil {
		conn.Close()
		return nil, fmt.Errorf("thumbnailer GetSupported: %w", err)
	}

	cacheDir, err := os.UserCacheDir()
	if err != nil {
		conn.Close()
		return nil, err
	}

	flavor := "normal"
	if size > 128 {
		flavor = "large"
	}

	d := &DBusDecoder{
		conn:      conn,
		obj:       obj,
		supported: make(map[string]bool),
		flavor:    flavor,
		dir:       filepath.Join(cacheDir, "thumbnails", flavor),
		waiters:   make(map[string][]chan error),
		sigCh:     make(chan *godbus.Signal, 64),
	}
	for i, m := range mimes {
		if i < len(schemes) && schemes[i] != "file" {
			continue
		}
		d.supported[m] = true
	}

	conn.Signal(d.sigCh)
	if err := conn.AddMatchSignal(
		godbus.WithMatchObjectPath(thumbnailerPath),
		godbus.WithMatchInterface(thumbnailerIface),
	); err != nil {
		conn.RemoveSignal(d.sigCh)
		conn.Close()
		return nil, fmt.Errorf("thumbnailer signals: %w", err)
	}
	go d.dispatch()

	debug.Log(debug.THUMB, "dbus: thumbnailer supports %d types, flavor %s", len(d.supported), flavor)
	return d, nil
}

func (d *DBusDecoder) CanDecode(contentType string) bool {
	return d != nil && d.supported[contentType]
}

func (d *DBusDecoder) Decode(ctx context.Context, path, contentType string, size int) (image.Image, error) {
	uri := FileURI(path)
	done := make(chan error, 1)

	d.mu.Lock()
	d.waiters[uri] = append(d.waiters[uri], done)
	d.mu.Unlock()
	defer d.forget(uri, done)

	var handle uint32
	call := d.obj.CallWithContext(ctx, thumbnailerIface+".Queue", 0,
		[]string{uri}, []string{contentType}, d.flavor, "foreground", uint32(0))
	if err := call.Store(&handle); err != nil {
		return nil, fmt.Errorf("thumbnailer Queue: %w", err)
	}

	select {
	case <-ctx.Done():
		d.obj.Call(thumbnailerIface+".Dequeue", godbus.FlagNoReplyExpected, handle)
		return nil, ctx.Err()
	case err := <-done:
		if err != nil {
			return nil, err
		}
	}

	sum := md5.Sum([]byte(uri))
	f, err := os.Open(filepath.Join(d.dir, hex.EncodeToString(sum[:])+".png"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

// Close releases the bus connection.
func (d *DBusDecoder) Close() error {
	d.conn.RemoveSignal(d.sigCh)
	return d.conn.Close()
}

func (d *DBusDecoder) forget(uri string, done chan error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	list := d.waiters[uri]
	for i, ch := range list {
		if ch == done {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(d.waiters, uri)
	} else {
		d.waiters[uri] = list
	}
}

func (d *DBusDecoder) resolve(uris []string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, uri := range uris {
		for _, ch := range d.waiters[uri] {
			select {
			case ch <- err:
			default:
			}
		}
	}
}

// dispatch routes Ready/Error signals to waiting Decode calls.
func (d *DBusDecoder) dispatch() {
	for sig := range d.sigCh {
		if sig == nil {
			continue
		}
		switch sig.Name {
		case thumbnailerIface + ".Ready":
			// Ready(u handle, as uris)
			if len(sig.Body) >= 2 {
				uris, _ := sig.Body[1].([]string)
				d.resolve(uris, nil)
			}
		case thumbnailerIface + ".Error":
			// Error(u handle, as failed_uris, i error_code, s message)
			if len(sig.Body) >= 4 {
				uris, _ := sig.Body[1].([]string)
				msg, _ := sig.Body[3].(string)
				d.resolve(uris, fmt.Errorf("thumbnailer: %s", msg))
			}
		}
	}
}
