package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/pkg/logger"
)

// SessionHandler handles HTTP requests for live game sessions.
type SessionHandler struct {
	manager     *session.Manager
	defaultMode string
	log         logger.Logger
}

// NewSessionHandler creates a new SessionHandler. Sessions created without a
// mode use defaultMode.
func NewSessionHandler(m *session.Manager, defaultMode string) *SessionHandler {
	if defaultMode == "" {
		defaultMode = session.ModeFreePlay
	}
	return &SessionHandler{
		manager:     m,
		defaultMode: defaultMode,
		log:         logger.Named("api"),
	}
}

// ServeHTTP routes /api/sessions, /api/sessions/{id} and the per-session
// gestures, interactions and pause endpoints.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r, "/api/sessions")

	if len(parts) == 0 {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			methodNotAllowed(w)
		}
		return
	}

	s, err := h.manager.Get(parts[0])
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, s.Status())
		case http.MethodDelete:
			h.stop(w, r, s.ID())
		default:
			methodNotAllowed(w)
		}
		return
	}

	if len(parts) != 2 {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	switch parts[1] {
	case "gestures":
		h.gesture(w, r, s)
	case "interactions":
		h.interact(w, r, s)
	case "pause":
		writeJSON(w, http.StatusOK, eventsResponse{Events: nonNil(s.Pause())})
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

type createSessionRequest struct {
	Mode string `json:"mode"`
}

type interactRequest struct {
	ObjectID string `json:"object_id"`
}

type listSessionsResponse struct {
	Sessions []session.Status `json:"sessions"`
}

type eventsResponse struct {
	Events []session.Event `json:"events"`
}

func nonNil(events []session.Event) []session.Event {
	if events == nil {
		return []session.Event{}
	}
	return events
}

func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	live := h.manager.List()
	response := listSessionsResponse{
		Sessions: make([]session.Status, 0, len(live)),
	}
	for _, s := range live {
		response.Sessions = append(response.Sessions, s.Status())
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *SessionHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Mode == "" {
		req.Mode = h.defaultMode
	}

	s, err := h.manager.Create(req.Mode)
	if err != nil {
		if errors.Is(err, session.ErrUnknownMode) {
			writeError(w, http.StatusBadRequest, "Unknown mode")
			return
		}
		h.log.Error(r.Context(), "failed to create session", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	writeJSON(w, http.StatusCreated, s.Status())
}

func (h *SessionHandler) stop(w http.ResponseWriter, r *http.Request, id string) {
	// The store write must finish even if the client goes away.
	sum, err := h.manager.Stop(context.WithoutCancel(r.Context()), id)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to record session")
		return
	}

	writeJSON(w, http.StatusOK, sum)
}

func (h *SessionHandler) gesture(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var in gesture.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	writeJSON(w, http.StatusOK, eventsResponse{Events: nonNil(s.PushInput(in))})
}

func (h *SessionHandler) interact(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var req interactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.ObjectID == "" {
		writeError(w, http.StatusBadRequest, "object_id is required")
		return
	}

	writeJSON(w, http.StatusOK, eventsResponse{Events: nonNil(s.Interact(req.ObjectID))})
}
