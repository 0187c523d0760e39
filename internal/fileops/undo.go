package fileops

import (
	"sync"

	"github.com/justyntemme/razorcore/internal/debug"
	"github.com/justyntemme/razorcore/internal/metrics"
)

// DefaultUndoCapacity bounds the queue when no capacity is configured.
const DefaultUndoCapacity = 128

// UndoEntry is a recorded batch plus its queue identity.
type UndoEntry struct {
	ID    uint64 // Monotonic, never reused
	Batch Batch
}

// UndoQueue is a LIFO log of undoable batches. Entries can also be removed
// by id, leaving the order of the rest untouched. When full, the oldest
// entry is dropped.
type UndoQueue struct {
	mu       sync.Mutex
	entries  []UndoEntry // oldest first
	nextID   uint64
	capacity int // 0 = unbounded
}

// NewUndoQueue creates a queue. capacity <= 0 means unbounded.
func NewUndoQueue(capacity int) *UndoQueue {
	if capacity < 0 {
		capacity = 0
	}
	return &UndoQueue{capacity: capacity}
}

// Push records a batch and returns its entry.
func (q *UndoQueue) Push(b Batch) UndoEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.nextID++
	e := UndoEntry{ID: q.nextID, Batch: b}
	q.entries = append(q.entries, e)

	if q.capacity > 0 && len(q.entries) > q.capacity {
		dropped := q.entries[0]
		q.entries = append(q.entries[:0:0], q.entries[1:]...)
		debug.Log(debug.UNDO, "queue full, dropped entry %d (%s)", dropped.ID, dropped.Batch.Kind)
	}
	metrics.SetUndoDepth(len(q.entries))
	debug.Log(debug.UNDO, "pushed entry %d (%s, %d items)", e.ID, b.Kind, len(b.Items))
	return e
}

// PopLatest removes and returns the most recent entry.
func (q *UndoQueue) PopLatest() (UndoEntry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 {
		return UndoEntry{}, false
	}
	e := q.entries[len(q.entries)-1]
	q.entries = q.entries[:len(q.entries)-1]
	metrics.SetUndoDepth(len(q.entries))
	return e, true
}

// Pop removes and returns the entry with the given id.
func (q *UndoQueue) Pop(id uint64) (UndoEntry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, e := range q.entries {
		if e.ID == id {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			metrics.SetUndoDepth(len(q.entries))
			return e, true
		}
	}
	return UndoEntry{}, false
}

// Empty reports whether there is nothing to undo.
func (q *UndoQueue) Empty() bool {
	return q.Len() == 0
}

// Len returns the number of entries.
func (q *UndoQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Entries returns a snapshot, most recent first.
func (q *UndoQueue) Entries() []UndoEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]UndoEntry, len(q.entries))
	for i, e := range q.entries {
		out[len(q.entries)-1-i] = e
	}
	return out
}

// removeKind drops every entry of kind k and returns how many were dropped.
func (q *UndoQueue) removeKind(k Kind) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.entries[:0]
	dropped := 0
	for _, e := range q.entries {
		if e.Batch.Kind == k {
			dropped++
			continue
		}
		kept = append(kept, e)
	}
	q.entries = kept
	metrics.SetUndoDepth(len(q.entries))
	return dropped
}
