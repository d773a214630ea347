package api

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Origin policy is out of scope for the relay; dashboards and the waiting
// page connect cross-origin.
var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleWS serves the same per-session event stream over a WebSocket, one
// JSON message per event. Useful for consumers without EventSource support.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sessionID, err := sessionIDFromPath(r.URL.Path, "/ws/")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}

	sub := s.relay.Subscribe(sessionID)

	go func() {
		defer conn.Close()
		for ev := range sub.Events() {
			if err := conn.WriteJSON(ev); err != nil {
				s.relay.Disconnect(sub)
				return
			}
		}
		// Subscription ended by the relay; close the socket cleanly.
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}()

	// The read loop only detects client disconnect; inbound messages are
	// ignored.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.relay.Disconnect(sub)
			conn.Close()
			return
		}
	}
}
