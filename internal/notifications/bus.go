package notifications

import (
	"sync"

	"vrcache/internal/catalog"
)

// Status strings shown by the presentation layer.
const (
	StatusIdle        = "Idle"
	StatusDiscovering = "Discovering existing cache data..."
)

// EventKind discriminates bus events.
type EventKind int

const (
	// EventWorldArchived carries a newly finalized record.
	EventWorldArchived EventKind = iota
	// EventWorldRemoved carries the record that was purged.
	EventWorldRemoved
	// EventWorldRenamed carries the record after its rename.
	EventWorldRenamed
	// EventStatus carries a coarse progress string.
	EventStatus
)

// Event is one bus notification.
type Event struct {
	Kind   EventKind
	Record catalog.WorldRecord
	Status string
}

// Bus fans archive events out to subscribers. Publishing never blocks: a
// subscriber that stops draining loses events rather than stalling ingestion.
type Bus struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new observer channel. Call the returned cancel
// function to unsubscribe and close the channel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 64)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers event to every subscriber, dropping it for any whose
// buffer is full.
func (b *Bus) Publish(event Event) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// PublishStatus is shorthand for a status event.
func (b *Bus) PublishStatus(status string) {
	b.Publish(Event{Kind: EventStatus, Status: status})
}
