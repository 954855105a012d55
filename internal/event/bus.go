package event

import (
	"fmt"
	"log"
	"runtime/debug"
	"sync"
)

// Handler receives every event published for a subscribed type.
type Handler func(Event)

// entry is one registered handler.
type entry struct {
	id      string
	handler Handler
}

// Bus is the synchronous pub-sub channel between the pipeline and its
// observers. Publish calls handlers inline on the publisher's
// goroutine: when it returns, every subscriber has seen the event.
type Bus struct {
	mu       sync.RWMutex
	topics   map[string][]entry
	catchAll []entry
	lastID   uint64
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{topics: make(map[string][]entry)}
}

// Subscribe registers handler for one event type. The returned ID
// cancels the registration when passed to Unsubscribe.
func (b *Bus) Subscribe(eventType string, handler Handler) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	e := entry{id: b.newID(), handler: handler}
	b.topics[eventType] = append(b.topics[eventType], e)
	return e.id
}

// SubscribeAll registers handler for every event type. Catch-all
// handlers run after the type-specific ones.
func (b *Bus) SubscribeAll(handler Handler) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	e := entry{id: b.newID(), handler: handler}
	b.catchAll = append(b.catchAll, e)
	return e.id
}

// newID mints a subscription ID. Callers hold mu.
func (b *Bus) newID() string {
	b.lastID++
	return fmt.Sprintf("sub-%d", b.lastID)
}

// Unsubscribe drops the registration with the given ID and reports
// whether it existed.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for topic, entries := range b.topics {
		if pruned, ok := drop(entries, id); ok {
			b.topics[topic] = pruned
			return true
		}
	}
	var ok bool
	b.catchAll, ok = drop(b.catchAll, id)
	return ok
}

// drop removes the entry with the given ID from a handler list.
func drop(entries []entry, id string) ([]entry, bool) {
	for i, e := range entries {
		if e.id == id {
			return append(entries[:i], entries[i+1:]...), true
		}
	}
	return entries, false
}

// Publish delivers the event to every handler subscribed to its type,
// then to every catch-all handler, each group in registration order. A
// panicking handler is logged and skipped; the rest of the queue still
// runs.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	queue := make([]entry, 0, len(b.topics[ev.EventType()])+len(b.catchAll))
	queue = append(queue, b.topics[ev.EventType()]...)
	queue = append(queue, b.catchAll...)
	b.mu.RUnlock()

	for _, e := range queue {
		deliver(e.handler, ev)
	}
}

// deliver runs one handler, containing any panic so the remaining
// handlers still get the event.
func deliver(handler Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("event: handler panic on %s: %v\n%s", ev.EventType(), r, debug.Stack())
		}
	}()
	handler(ev)
}

// Clear drops every subscription.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.topics = make(map[string][]entry)
	b.catchAll = nil
}

// SubscriptionCount reports how many handlers are registered.
func (b *Bus) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := len(b.catchAll)
	for _, entries := range b.topics {
		n += len(entries)
	}
	return n
}
