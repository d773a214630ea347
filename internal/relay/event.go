package relay

import (
	"github.com/poem-relay/backend/internal/session"
)

// StatusConnected is the first event on every stream, sent before any
// session state is replayed.
const StatusConnected = "connected"

// Event is one message pushed to a stream subscriber.
type Event struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id,omitempty"`
	Poem      string `json:"poem,omitempty"`
}

func connectedEvent() Event {
	return Event{Status: StatusConnected}
}

func recordEvent(rec *session.Record) Event {
	return Event{
		Status:    rec.Status.String(),
		SessionID: rec.SessionID,
		Poem:      rec.Poem,
	}
}
