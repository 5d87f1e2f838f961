package event

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/satococoa/gitwrap/internal/errors"
)

// SubscriptionID identifies one registration on a Bus.
type SubscriptionID uint64

// Subscription describes one handler registration.
type Subscription struct {
	Kind     Kind
	Handler  Handler
	Priority int
}

// Subscriber registers several handlers at once, e.g. a logger listening to
// every kind. Each entry is registered independently.
type Subscriber interface {
	Subscriptions() []Subscription
}

type entry struct {
	id       SubscriptionID
	handler  Handler
	priority int
}

// Bus dispatches events to handlers in ascending priority order; handlers with
// equal priority run in registration order. It is safe for concurrent use.
// When one Bus is shared by concurrent runs, handlers are invoked concurrently
// and must synchronise their own state. The zero value is an empty bus.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Kind][]entry
	nextID   atomic.Uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[Kind][]entry)}
}

// Subscribe registers h for kind. Lower priorities run first.
func (b *Bus) Subscribe(kind Kind, h Handler, priority int) SubscriptionID {
	id := SubscriptionID(b.nextID.Add(1))

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers == nil {
		b.handlers = make(map[Kind][]entry)
	}
	list := b.handlers[kind]
	// insert after every entry with priority <= the new one
	pos := slices.IndexFunc(list, func(e entry) bool { return e.priority > priority })
	if pos < 0 {
		pos = len(list)
	}
	b.handlers[kind] = slices.Insert(list, pos, entry{id: id, handler: h, priority: priority})
	return id
}

// Unsubscribe removes the registration id from kind and reports whether it existed.
func (b *Bus) Unsubscribe(kind Kind, id SubscriptionID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.handlers[kind]
	i := slices.IndexFunc(list, func(e entry) bool { return e.id == id })
	if i < 0 {
		return false
	}
	b.handlers[kind] = slices.Delete(list, i, i+1)
	return true
}

// AddSubscriber registers every subscription of s.
func (b *Bus) AddSubscriber(s Subscriber) []SubscriptionID {
	subs := s.Subscriptions()
	ids := make([]SubscriptionID, len(subs))
	for i, sub := range subs {
		ids[i] = b.Subscribe(sub.Kind, sub.Handler, sub.Priority)
	}
	return ids
}

// RemoveSubscriber removes registrations returned by AddSubscriber.
func (b *Bus) RemoveSubscriber(ids []SubscriptionID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for kind, list := range b.handlers {
		b.handlers[kind] = slices.DeleteFunc(list, func(e entry) bool {
			return slices.Contains(ids, e.id)
		})
	}
}

// Len returns the number of handlers registered for kind.
func (b *Bus) Len(kind Kind) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[kind])
}

// Dispatch invokes the handlers registered for e.Kind on the calling
// goroutine. The handler list is snapshotted first, so handlers may
// subscribe or unsubscribe while running. The first handler error stops the
// dispatch and is returned as an *errors.HandlerError.
func (b *Bus) Dispatch(e *Event) error {
	b.mu.RLock()
	list := slices.Clone(b.handlers[e.Kind])
	b.mu.RUnlock()

	for _, en := range list {
		if err := en.handler(e); err != nil {
			return &errors.HandlerError{Event: e.Kind.String(), Err: err}
		}
	}
	return nil
}
