// Package api binds the relay to HTTP: the per-session SSE and WebSocket
// event streams, the reporter endpoints, the document download and the
// health check.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/poem-relay/backend/internal/docgen"
	"github.com/poem-relay/backend/internal/relay"
	"github.com/poem-relay/backend/internal/session"
)

type Server struct {
	relay   *relay.Relay
	docgen  *docgen.Client
	log     *zap.Logger
	started time.Time
}

func NewServer(rel *relay.Relay, doc *docgen.Client, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		relay:   rel,
		docgen:  doc,
		log:     log,
		started: time.Now(),
	}
}

func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/stream/", s.handleStream)
	mux.HandleFunc("/ws/", s.handleWS)
	mux.HandleFunc("/status/generating", s.handleGenerating)
	mux.HandleFunc("/status/completed", s.handleCompleted)
	mux.HandleFunc("/generate-word", s.handleGenerateWord)
	mux.HandleFunc("/health", s.handleHealth)
}

type reportRequest struct {
	SessionID string `json:"session_id"`
	Poem      string `json:"poem"`
}

type reportResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) handleGenerating(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.relay.Report(req.SessionID, session.StatusGenerating, ""); err != nil {
		s.respondReportError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, reportResponse{Success: true, Message: "Status updated to generating"})
}

func (s *Server) handleCompleted(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.relay.Report(req.SessionID, session.StatusCompleted, req.Poem); err != nil {
		s.respondReportError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, reportResponse{Success: true, Message: "Poem completed and sent"})
}

type generateWordRequest struct {
	FirstName string `json:"voornaam"`
	SessionID string `json:"session_id"`
	Poem      string `json:"rijm"`
}

func (s *Server) handleGenerateWord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.docgen == nil {
		s.respondError(w, http.StatusServiceUnavailable, "document renderer not configured")
		return
	}

	var req generateWordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.FirstName == "" || req.SessionID == "" || req.Poem == "" {
		s.respondError(w, http.StatusBadRequest, "voornaam, session_id, and rijm are required")
		return
	}

	doc, err := s.docgen.Render(r.Context(), docgen.RenderRequest{
		FirstName: req.FirstName,
		SessionID: req.SessionID,
		Poem:      req.Poem,
	})
	if err != nil {
		s.log.Error("document render failed",
			zap.String("session_id", req.SessionID),
			zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "Failed to generate Word document")
		return
	}

	w.Header().Set("Content-Type", docgen.ContentTypeDocx)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="sinterklaas_gedicht_%s.docx"`, req.SessionID))
	w.Write(doc)
}

// sessionIDFromPath extracts the trailing session identifier from paths of
// the form <prefix><session_id>.
func sessionIDFromPath(path, prefix string) (string, error) {
	raw := strings.TrimPrefix(path, prefix)
	if raw == "" || strings.Contains(raw, "/") {
		return "", errors.New("missing session id")
	}
	id, err := url.PathUnescape(raw)
	if err != nil || id == "" {
		return "", errors.New("invalid session id")
	}
	return id, nil
}

func (s *Server) respondReportError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, relay.ErrInvalidRequest):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, relay.ErrInvalidTransition):
		s.respondError(w, http.StatusConflict, err.Error())
	default:
		s.log.Error("report failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("encoding response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, map[string]string{"error": msg})
}
