package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// handleStream serves the SSE endpoint. The subscription already carries
// the connected event and any replayed session state when it is returned,
// so the loop below only has to drain the channel. The stream ends when the
// relay closes the subscription (terminal event delivered, displaced by a
// reconnect, or evicted) or when the client goes away.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sessionID, err := sessionIDFromPath(r.URL.Path, "/stream/")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := s.relay.Subscribe(sessionID)
	defer s.relay.Disconnect(sub)

	for {
		select {
		case ev, open := <-sub.Events():
			if !open {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				s.log.Error("marshaling event", zap.Error(err))
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				// Client gone mid-write; treated as a disconnect.
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}
