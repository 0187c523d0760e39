// Package notify carries structured events from the core to whatever UI
// renders them as toasts or banners. Events hold machine-readable codes
// only; wording is up to the subscriber.
package notify

import (
	"sync"

	"github.com/justyntemme/razorcore/internal/debug"
)

// Event is one of the event types below.
type Event interface {
	event()
}

// ItemsTrashed reports a trash batch with at least one success.
// UndoID restores exactly this batch.
type ItemsTrashed struct {
	Count  int
	Failed int
	UndoID uint64
}

// OperationFailed reports a batch (or an undo) with failures. Reason is the
// most common failure code in the batch.
type OperationFailed struct {
	Kind   string
	Reason string
	Failed int
	Total  int
}

// UndoCompleted reports an executed undo. Failed items were reported but the
// entry is gone from the queue either way.
type UndoCompleted struct {
	UndoID   uint64
	Kind     string
	Reverted int
	Failed   int
}

// TrashEmptied reports that the trash was emptied and its undo entries dropped.
type TrashEmptied struct {
	Dropped int
}

func (ItemsTrashed) event()    {}
func (OperationFailed) event() {}
func (UndoCompleted) event()   {}
func (TrashEmptied) event()    {}

// Notifier receives events.
type Notifier interface {
	Notify(Event)
}

// Discard drops every event.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(Event) {}

// Bus fans events out to subscribers. Notify never blocks: a subscriber
// whose buffer is full misses the event.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe returns a channel of events and a function that unsubscribes
// and closes it.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

func (b *Bus) Notify(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		select {
		case ch <- e:
		default:
			debug.Log(debug.APP, "notify: subscriber %d full, dropped %T", id, e)
		}
	}
}
