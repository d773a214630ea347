package relay

import (
	"sync"

	"github.com/google/uuid"
)

// Subscription is the live output handle for one attached stream. The
// registry closes the events channel exactly once: on displacement, on
// explicit Close after a terminal event, on eviction of a slow reader, or
// on Detach.
type Subscription struct {
	ID        string
	SessionID string
	events    chan Event
}

// Events is the channel the transport reads from. It is closed when the
// subscription ends; no events follow the close.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Registry holds at most one live subscriber per session ID. All operations
// are serialized by one mutex so attach, publish, close and detach are
// atomic with respect to one another; channel sends are non-blocking, so the
// lock is never held waiting on a client.
type Registry struct {
	mu     sync.Mutex
	subs   map[string]*Subscription
	buffer int
}

func NewRegistry(buffer int) *Registry {
	// Attach queues a connected event plus a possible state replay before
	// the transport starts draining, so two slots is the floor.
	if buffer < 2 {
		buffer = 2
	}
	return &Registry{
		subs:   make(map[string]*Subscription),
		buffer: buffer,
	}
}

// Attach registers a new subscription for sessionID. Any previous
// subscriber is displaced and its channel closed inside the same lock hold,
// so there is no window with two live subscribers. Last subscriber wins.
func (r *Registry) Attach(sessionID string) *Subscription {
	sub := &Subscription{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		events:    make(chan Event, r.buffer),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.subs[sessionID]; ok {
		close(old.events)
	}
	r.subs[sessionID] = sub
	return sub
}

// Detach removes sub if it is still the registered subscriber for its
// session. A stale handle (displaced by a reconnect, or already closed)
// is a no-op, so a late client disconnect can never tear down its
// replacement. Idempotent.
func (r *Registry) Detach(sub *Subscription) {
	if sub == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.subs[sub.SessionID]; ok && current == sub {
		close(current.events)
		delete(r.subs, sub.SessionID)
	}
}

// Publish delivers ev to the live subscriber for sessionID, if any.
// Absence is a silent no-op. A subscriber whose buffer is full is treated
// as gone: it is closed and removed rather than blocking the publisher.
// Returns whether the event was handed to a subscriber.
func (r *Registry) Publish(sessionID string, ev Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[sessionID]
	if !ok {
		return false
	}
	select {
	case sub.events <- ev:
		return true
	default:
		close(sub.events)
		delete(r.subs, sessionID)
		return false
	}
}

// Close ends the subscription for sessionID after a terminal event. No-op
// if none is attached.
func (r *Registry) Close(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sub, ok := r.subs[sessionID]; ok {
		close(sub.events)
		delete(r.subs, sessionID)
	}
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}
