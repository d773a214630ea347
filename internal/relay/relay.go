package relay

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/poem-relay/backend/internal/session"
)

var (
	// ErrInvalidRequest marks a report with missing or malformed fields.
	// Caller error; surfaced immediately, never retried by the relay.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrInvalidTransition marks a report against a session that already
	// completed. Retrying cannot change a terminal session, so reporters
	// must treat this as final.
	ErrInvalidTransition = errors.New("invalid transition")
)

// Relay accepts status-transition reports and pushes them to the live
// subscriber of the affected session. It owns the session store and the
// subscriber registry; all access goes through its methods.
//
// Subscribe and Report are serialized by one mutex. Contention is low and
// records are tiny, so global serialization keeps the attach-replay and
// upsert-publish-close sequences atomic without per-session bookkeeping.
// Subscribers idle on their own channels and never hold this lock.
type Relay struct {
	mu       sync.Mutex
	store    *session.Store
	registry *Registry
	log      *zap.Logger
}

func New(store *session.Store, registry *Registry, log *zap.Logger) *Relay {
	if log == nil {
		log = zap.NewNop()
	}
	return &Relay{
		store:    store,
		registry: registry,
		log:      log,
	}
}

// Subscribe attaches a new stream for sessionID, displacing any previous
// subscriber. The returned subscription has already been sent a connected
// event, followed by the current session record if one exists. If that
// record is terminal the stream is closed immediately after the replay:
// a late subscriber to a finished job gets one event and the stream ends.
func (r *Relay) Subscribe(sessionID string) *Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub := r.registry.Attach(sessionID)
	r.registry.Publish(sessionID, connectedEvent())

	if rec, ok := r.store.Get(sessionID); ok {
		r.registry.Publish(sessionID, recordEvent(rec))
		if rec.Status.Terminal() {
			r.registry.Close(sessionID)
		}
	}

	r.log.Info("subscriber attached",
		zap.String("session_id", sessionID),
		zap.String("subscription_id", sub.ID))
	return sub
}

// Disconnect detaches sub after a client-initiated disconnect. Safe to call
// more than once and safe on a subscription that was already displaced or
// closed on completion.
func (r *Relay) Disconnect(sub *Subscription) {
	if sub == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registry.Detach(sub)
	r.log.Debug("subscriber detached",
		zap.String("session_id", sub.SessionID),
		zap.String("subscription_id", sub.ID))
}

// Report applies a status transition for sessionID and pushes the new
// record to any live subscriber. A completed report closes the stream after
// the terminal event is delivered. Reports with no subscriber attached
// still update the store, so a future subscriber receives the state on
// attach. Report returns only after the delivery attempt, so a successful
// return means the relay observed the transition.
func (r *Relay) Report(sessionID string, status session.Status, poem string) error {
	if sessionID == "" {
		return fmt.Errorf("%w: session_id is required", ErrInvalidRequest)
	}
	switch status {
	case session.StatusGenerating:
		// No payload for intermediate state.
	case session.StatusCompleted:
		if poem == "" {
			return fmt.Errorf("%w: poem is required for a completed report", ErrInvalidRequest)
		}
	default:
		return fmt.Errorf("%w: status %q is not reportable", ErrInvalidRequest, status)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, err := r.store.Upsert(sessionID, status, poem)
	if err != nil {
		if errors.Is(err, session.ErrSessionCompleted) {
			return fmt.Errorf("%w: session %q already completed", ErrInvalidTransition, sessionID)
		}
		return err
	}

	delivered := r.registry.Publish(sessionID, recordEvent(rec))
	if status.Terminal() {
		r.registry.Close(sessionID)
	}

	r.log.Info("status reported",
		zap.String("session_id", sessionID),
		zap.Stringer("status", status),
		zap.Bool("delivered", delivered))
	return nil
}

// SubscriberCount returns the number of live subscriptions.
func (r *Relay) SubscriberCount() int {
	return r.registry.Count()
}

// SessionCount returns the number of known session records.
func (r *Relay) SessionCount() int {
	return r.store.Count()
}
