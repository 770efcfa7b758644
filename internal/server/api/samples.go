package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

// SamplesHandler handles recorded samples under /api/templates/{symbol}/samples.
type SamplesHandler struct {
	store *store.Store
}

// NewSamplesHandler creates a new SamplesHandler with the given store.
func NewSamplesHandler(s *store.Store) *SamplesHandler {
	return &SamplesHandler{store: s}
}

func (h *SamplesHandler) serve(w http.ResponseWriter, r *http.Request, symbol gesture.Symbol) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r, symbol)
	case http.MethodPost:
		h.create(w, r, symbol)
	default:
		methodNotAllowed(w)
	}
}

type createSamplesRequest struct {
	Samples []json.RawMessage `json:"samples"`
}

type sampleResponse struct {
	ID          int64           `json:"id"`
	Symbol      string          `json:"symbol"`
	SampleIndex int             `json:"sample_index"`
	Data        json.RawMessage `json:"data"`
	CreatedAt   string          `json:"created_at"`
}

type listSamplesResponse struct {
	Samples []sampleResponse `json:"samples"`
}

func (h *SamplesHandler) list(w http.ResponseWriter, r *http.Request, symbol gesture.Symbol) {
	samples, err := h.store.Samples().List(symbol)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list samples")
		return
	}

	response := listSamplesResponse{
		Samples: make([]sampleResponse, 0, len(samples)),
	}
	for _, s := range samples {
		response.Samples = append(response.Samples, sampleResponse{
			ID:          s.ID,
			Symbol:      string(s.Symbol),
			SampleIndex: s.SampleIndex,
			Data:        s.Data,
			CreatedAt:   formatTime(s.CreatedAt),
		})
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *SamplesHandler) create(w http.ResponseWriter, r *http.Request, symbol gesture.Symbol) {
	var req createSamplesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if len(req.Samples) == 0 {
		writeError(w, http.StatusBadRequest, "At least one sample is required")
		return
	}
	for _, raw := range req.Samples {
		var sample gesture.Sample
		if err := json.Unmarshal(raw, &sample); err != nil || len(sample.Landmarks) == 0 {
			writeError(w, http.StatusBadRequest, "Each sample needs landmarks")
			return
		}
	}

	if err := h.store.Samples().Append(symbol, req.Samples); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save samples")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int{"recorded": len(req.Samples)})
}
