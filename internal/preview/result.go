// Package preview renders a visual representation for listed entries off the
// coordinating goroutine: cached or generated thumbnails, stacked directory
// previews, or fallback icons.
//
// Every request carries a generation token for its slot. A result reaches the
// sink only if its token is still the slot's current one when it is ready.
package preview

import (
	"image"

	"github.com/justyntemme/razorcore/internal/entry"
)

// Token is a per-slot generation token. Larger tokens supersede smaller ones.
type Token uint64

// Slot names one visual placeholder, e.g. a grid cell or a list row.
type Slot string

// ResultKind is the closed set of preview result variants.
type ResultKind int

const (
	Thumbnail ResultKind = iota
	DirectoryStack
	FallbackIcon
	Failed
)

func (k ResultKind) String() string {
	switch k {
	case Thumbnail:
		return "thumbnail"
	case DirectoryStack:
		return "directory_stack"
	case FallbackIcon:
		return "fallback_icon"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// MaxSamples is the most children a directory stack ever holds.
const MaxSamples = 3

// ChildSample is one sampled child of a directory preview.
type ChildSample struct {
	ContentType   string
	Icon          string
	ThumbnailPath string // Empty when the child has no thumbnail
	IsDir         bool
}

// Stack is the payload of a DirectoryStack result.
type Stack struct {
	Samples  []ChildSample // At most MaxSamples, enumeration order
	Open     bool          // At least one child was enumerated
	Complete bool          // Sampling finished; no further results follow for this token
}

// Result is a tagged variant; which fields are set depends on Kind.
type Result struct {
	Kind  ResultKind
	Token Token
	Path  string

	// Thumbnail
	Image         image.Image
	ThumbnailPath string
	Playable      bool

	// DirectoryStack
	Stack Stack

	// FallbackIcon, also set on the other kinds for placeholders
	Icon  string
	Color entry.Color

	// Why a fallback was chosen, nil for plain icons
	Err error
}

// Sink receives results for one or more slots. Deliver is called from worker
// goroutines, one call at a time. Implementations marshal to their own
// presentation context and must re-check r.Token against the token they
// expect for slot, ignoring anything older: the pipeline checks the token
// before calling Deliver, but a newer Request can be accepted in between.
type Sink interface {
	Deliver(slot Slot, r Result)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(slot Slot, r Result)

func (f SinkFunc) Deliver(slot Slot, r Result) { f(slot, r) }

func fallback(e entry.Entry, err error) Result {
	return Result{
		Kind:  FallbackIcon,
		Path:  e.Path,
		Icon:  e.Icon,
		Color: e.Color,
		Err:   err,
	}
}
