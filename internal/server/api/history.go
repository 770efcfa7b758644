package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ayusman/mudra/internal/store"
)

// DefaultHistoryLimit caps GET /api/history without a limit parameter.
const DefaultHistoryLimit = 50

// HistoryHandler serves finished sessions from the store.
type HistoryHandler struct {
	store *store.Store
}

// NewHistoryHandler creates a new HistoryHandler with the given store.
func NewHistoryHandler(s *store.Store) *HistoryHandler {
	return &HistoryHandler{store: s}
}

type listHistoryResponse struct {
	Sessions []*store.SessionRecord `json:"sessions"`
}

type historyDetailResponse struct {
	Session *store.SessionRecord `json:"session"`
	Rewards []store.RewardRecord `json:"rewards"`
}

// ServeHTTP routes /api/history and /api/history/{id}.
func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	parts := splitPath(r, "/api/history")
	switch len(parts) {
	case 0:
		h.list(w, r)
	case 1:
		h.get(w, r, parts[0])
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (h *HistoryHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := DefaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	sessions, err := h.store.Sessions().List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []*store.SessionRecord{}
	}

	writeJSON(w, http.StatusOK, listHistoryResponse{Sessions: sessions})
}

func (h *HistoryHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := h.store.Sessions().GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	rewards, err := h.store.Sessions().Rewards(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load rewards")
		return
	}
	if rewards == nil {
		rewards = []store.RewardRecord{}
	}

	writeJSON(w, http.StatusOK, historyDetailResponse{Session: rec, Rewards: rewards})
}
