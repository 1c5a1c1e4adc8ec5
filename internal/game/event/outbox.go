package event

import (
	"slices"
)

// Outbox stages events raised during a tick. The authority flushes it once
// the tick finished, so observers never see a half-applied mutation.
//
// Not thread-safe: owned by the authority tick.
type Outbox struct {
	pending []Event
	dirty   map[uint32]struct{}
}

// NewOutbox creates an empty outbox.
func NewOutbox() *Outbox {
	return &Outbox{dirty: make(map[uint32]struct{})}
}

// Emit stages ev and marks its actor as mutated.
func (o *Outbox) Emit(ev Event) {
	o.pending = append(o.pending, ev)
	if ev.ActorID != 0 {
		o.dirty[ev.ActorID] = struct{}{}
	}
}

// Touch marks an actor as mutated without staging an event.
func (o *Outbox) Touch(actorID uint32) {
	o.dirty[actorID] = struct{}{}
}

// Dirty returns the mutated actor IDs in ascending order.
func (o *Outbox) Dirty() []uint32 {
	ids := make([]uint32, 0, len(o.dirty))
	for id := range o.dirty {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of staged events.
func (o *Outbox) Len() int {
	return len(o.pending)
}

// Flush sends staged events to dst in emission order and resets the outbox.
func (o *Outbox) Flush(dst Emitter) {
	for _, ev := range o.pending {
		dst.Emit(ev)
	}
	clear(o.pending)
	o.pending = o.pending[:0]
	clear(o.dirty)
}
