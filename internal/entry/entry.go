// Package entry classifies filesystem entries for display: kind, content
// type, symbolic icon, color category and extension badge.
//
// Everything here is pure and safe to call from any goroutine.
package entry

import (
	"strings"
	"time"
)

// Kind is the closed set of entry kinds.
type Kind int

const (
	File Kind = iota
	Directory
	TrashedItem
)

func (k Kind) String() string {
	switch k {
	case File:
		return "file"
	case Directory:
		return "directory"
	case TrashedItem:
		return "trashed"
	default:
		return "unknown"
	}
}

// DirectoryType is the content type reported for directories.
const DirectoryType = "inode/directory"

// UnknownType is used when no content type could be determined.
const UnknownType = "application/octet-stream"

// Metadata is what a listing knows about an entry before classification.
type Metadata struct {
	Path          string
	DisplayName   string
	ContentType   string
	Icon          string // Symbolic icon hint, may be empty
	ThumbnailPath string // Existing thumbnail reported by the listing, may be empty
	Size          int64
	ModTime       time.Time
	Trashed       bool
	DeletedAt     time.Time // Only set for trashed entries
	OriginalPath  string    // Only set for trashed entries
}

// Entry is an immutable snapshot of a classified filesystem entry.
type Entry struct {
	Metadata
	Kind      Kind
	Color     Color
	Stem      string // Display name without the extension
	Extension string // Uppercased, empty when suppressed or absent
}

// IsDir reports whether the entry is a live directory.
func (e Entry) IsDir() bool {
	return e.Kind == Directory
}

// Playable reports whether the content type gets a play affordance.
func Playable(contentType string) bool {
	major, _, _ := strings.Cut(contentType, "/")
	return major == "audio" || major == "video"
}
