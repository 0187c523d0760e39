// Package fileops runs user-initiated file operations (copy, move, rename,
// trash, restore, new folder) as best-effort batches and keeps the undo queue.
//
// A batch never rolls back on its own: each item succeeds or fails on its
// own, and only successful items are recorded. The recorded batch holds
// everything needed to reverse it, so undo never has to rediscover what
// the operation did.
package fileops

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind is the closed set of batch kinds.
type Kind int

const (
	Copy Kind = iota
	Move
	Rename
	Trash
	Restore
	NewFolder
)

func (k Kind) String() string {
	switch k {
	case Copy:
		return "copy"
	case Move:
		return "move"
	case Rename:
		return "rename"
	case Trash:
		return "trash"
	case Restore:
		return "restore"
	case NewFolder:
		return "new_folder"
	default:
		return "unknown"
	}
}

// Item is one successful step of a batch.
type Item struct {
	Source    string    // Path before the operation
	Target    string    // Path after the operation (created, moved-to, renamed-to, trashed-to, restored-to)
	TrashID   string    // Trash and Restore only
	DeletedAt time.Time // Trash only, second precision
}

// Batch is an immutable record of a completed operation.
type Batch struct {
	ID      uuid.UUID
	Kind    Kind
	Items   []Item
	Context string // Destination directory, or the parent for rename
	Time    time.Time
	Reverts uuid.UUID // Set on undo batches to the batch they reverse
}

// IsUndo reports whether the batch is the reversal of another batch.
func (b Batch) IsUndo() bool {
	return b.Reverts != uuid.Nil
}

// Outcome is the per-item result of an operation.
type Outcome struct {
	Source  string
	Target  string   // Empty on failure
	Failure *Failure // nil on success
}

// OK reports whether the item succeeded.
func (o Outcome) OK() bool {
	return o.Failure == nil
}

// Result is what every operation returns.
type Result struct {
	Batch    Batch
	Outcomes []Outcome
	UndoID   uint64 // 0 when nothing was recorded
	Warning  string // Non-fatal name policy remark, e.g. "hidden"
}

// Succeeded counts successful items.
func (r Result) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.OK() {
			n++
		}
	}
	return n
}

// Failed counts failed items.
func (r Result) Failed() int {
	return len(r.Outcomes) - r.Succeeded()
}

// Failures returns the failed outcomes' failures.
func (r Result) Failures() []*Failure {
	var fs []*Failure
	for _, o := range r.Outcomes {
		if o.Failure != nil {
			fs = append(fs, o.Failure)
		}
	}
	return fs
}

var (
	// ErrNothingToUndo is returned by UndoLatest on an empty queue.
	ErrNothingToUndo = errors.New("fileops: nothing to undo")
	// ErrUnknownUndo is returned by Undo for an id not in the queue.
	ErrUnknownUndo = errors.New("fileops: no such undo entry")
)

// ValidationError rejects an operation before anything on disk changes.
type ValidationError struct {
	Path   string
	Name   string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("invalid name %q: %s", e.Name, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}
