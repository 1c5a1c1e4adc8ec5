package event

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// Emitter accepts events raised during a tick.
type Emitter interface {
	Emit(Event)
}

// Subscription is a buffered stream of events for one observer.
type Subscription struct {
	id      uint64
	ch      chan Event
	filter  func(Event) bool
	dropped atomic.Uint64
}

// C returns the receive channel. It is closed on Unsubscribe or Bus.Close.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Bus fans authority events out to subscribers.
//
// Publish never blocks: a subscriber whose buffer is full loses the event
// and catches up from the next ActorState snapshot.
type Bus struct {
	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
	buffer int
	closed bool
}

// NewBus creates a bus whose subscriptions buffer up to buffer events.
func NewBus(buffer int) *Bus {
	if buffer < 1 {
		buffer = 1
	}
	return &Bus{
		subs:   make(map[uint64]*Subscription),
		buffer: buffer,
	}
}

// Subscribe registers an observer. filter may be nil to receive everything.
func (b *Bus) Subscribe(filter func(Event) bool) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	s := &Subscription{
		id:     b.nextID,
		ch:     make(chan Event, b.buffer),
		filter: filter,
	}
	if b.closed {
		close(s.ch)
		return s
	}
	b.subs[s.id] = s
	return s
}

// Unsubscribe removes the observer and closes its channel.
func (b *Bus) Unsubscribe(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[s.id]; !ok {
		return
	}
	delete(b.subs, s.id)
	close(s.ch)
}

// Publish delivers ev to every matching subscriber.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, s := range b.subs {
		if s.filter != nil && !s.filter(ev) {
			continue
		}
		select {
		case s.ch <- ev:
		default:
			n := s.dropped.Add(1)
			if n == 1 || n%100 == 0 {
				slog.Warn("subscriber buffer full, dropping events",
					"subscription", s.id,
					"kind", ev.Kind,
					"dropped", n)
			}
		}
	}
}

// Emit implements Emitter.
func (b *Bus) Emit(ev Event) {
	b.Publish(ev)
}

// Len returns the number of subscribers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close closes every subscription. Later subscriptions are closed immediately.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, s := range b.subs {
		close(s.ch)
		delete(b.subs, id)
	}
}

// ForActor returns a filter that passes events about actorID only.
func ForActor(actorID uint32) func(Event) bool {
	return func(ev Event) bool { return ev.ActorID == actorID }
}
