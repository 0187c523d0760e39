package app

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"

	godbus "github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"go.uber.org/zap"

	"github.com/justyntemme/razorcore/internal/debug"
	"github.com/justyntemme/razorcore/internal/logging"
	"github.com/justyntemme/razorcore/internal/trash"
)

const (
	fileManagerName = "org.freedesktop.FileManager1"
	fileManagerPath = "/org/freedesktop/FileManager1"
)

const fileManagerIntrospection = `<node>
  <interface name="org.freedesktop.FileManager1">
    <method name="ShowFolders">
      <arg type="as" name="URIs" direction="in"/>
      <arg type="s" name="StartupId" direction="in"/>
    </method>
    <method name="ShowItems">
      <arg type="as" name="URIs" direction="in"/>
      <arg type="s" name="StartupId" direction="in"/>
    </method>
    <method name="ShowItemProperties">
      <arg type="as" name="URIs" direction="in"/>
      <arg type="s" name="StartupId" direction="in"/>
    </method>
  </interface>` + introspect.IntrospectDataString + `</node>`

// ErrFileManagerTaken means another file manager owns the bus name.
var ErrFileManagerTaken = errors.New(fileManagerName + " is owned by another process")

type ShowKind int

const (
	ShowFolder ShowKind = iota
	ShowItem
	ShowProperties
)

// ShowRequest asks the front end to show Folder. For ShowItem and
// ShowProperties, Item is the path to select or describe inside it.
type ShowRequest struct {
	Kind   ShowKind
	Folder string
	Item   string
}

// FileManagerService answers the desktop's org.freedesktop.FileManager1
// calls by queueing show requests for the front end.
type FileManagerService struct {
	conn     *godbus.Conn
	requests chan ShowRequest
}

// ExportFileManager claims the FileManager1 name on the session bus.
func ExportFileManager() (*FileManagerService, error) {
	conn, err := godbus.ConnectSessionBus()
	if err != nil {
		return nil, err
	}
	s := newFileManagerService()
	s.conn = conn

	if err := conn.Export(fileManagerObject{s}, fileManagerPath, fileManagerName); err != nil {
		conn.Close()
		return nil, err
	}
	if err := conn.Export(introspect.Introspectable(fileManagerIntrospection), fileManagerPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		conn.Close()
		return nil, err
	}
	reply, err := conn.RequestName(fileManagerName, godbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if reply != godbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, ErrFileManagerTaken
	}
	debug.Log(debug.APP, "exported %s", fileManagerName)
	return s, nil
}

func newFileManagerService() *FileManagerService {
	return &FileManagerService{requests: make(chan ShowRequest, 16)}
}

// Requests delivers show requests in the order they were received.
func (s *FileManagerService) Requests() <-chan ShowRequest {
	return s.requests
}

func (s *FileManagerService) Close() error {
	if s.conn == nil {
		return nil
	}
	if _, err := s.conn.ReleaseName(fileManagerName); err != nil {
		debug.Log(debug.APP, "release %s: %v", fileManagerName, err)
	}
	return s.conn.Close()
}

func (s *FileManagerService) show(kind ShowKind, uris []string) {
	for _, u := range uris {
		path, err := pathFromURI(u)
		if err != nil {
			logging.Warn("ignoring show request", zap.String("uri", u), zap.Error(err))
			continue
		}
		req := ShowRequest{Kind: kind, Folder: path}
		if kind != ShowFolder {
			req.Folder, req.Item = filepath.Dir(path), path
			if req.Folder == path {
				continue // The root has no parent to show it in
			}
		}
		select {
		case s.requests <- req:
		default:
			debug.Log(debug.APP, "show request dropped: %s", path)
		}
	}
}

// pathFromURI accepts file URIs, the trash URI and plain absolute paths.
func pathFromURI(s string) (string, error) {
	if filepath.IsAbs(s) {
		return filepath.Clean(s), nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "file":
		if u.Host != "" && u.Host != "localhost" {
			return "", fmt.Errorf("remote file uri %q", s)
		}
		return filepath.Clean(u.Path), nil
	case "trash":
		if u.Path == "" || u.Path == "/" {
			return trash.Location, nil
		}
	}
	return "", fmt.Errorf("unsupported uri %q", s)
}

// fileManagerObject carries the exported methods so that only they appear
// on the bus.
type fileManagerObject struct{ s *FileManagerService }

func (o fileManagerObject) ShowFolders(uris []string, _ string) *godbus.Error {
	o.s.show(ShowFolder, uris)
	return nil
}

func (o fileManagerObject) ShowItems(uris []string, _ string) *godbus.Error {
	o.s.show(ShowItem, uris)
	return nil
}

func (o fileManagerObject) ShowItemProperties(uris []string, _ string) *godbus.Error {
	o.s.show(ShowProperties, uris)
	return nil
}
