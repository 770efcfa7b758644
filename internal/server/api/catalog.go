package api

import (
	"net/http"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/session"
)

// CatalogHandler serves the read-only combo library and game modes.
type CatalogHandler struct {
	coordinator *session.Coordinator
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(c *session.Coordinator) *CatalogHandler {
	return &CatalogHandler{coordinator: c}
}

type comboResponse struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Sequence         []gesture.Symbol `json:"sequence"`
	PointValue       int              `json:"point_value"`
	EffectTag        string           `json:"effect_tag"`
	EffectDurationMS int64            `json:"effect_duration_ms"`
}

type listCombosResponse struct {
	Combos []comboResponse `json:"combos"`
}

type listModesResponse struct {
	Modes []session.Mode `json:"modes"`
}

// Combos handles GET /api/combos.
func (h *CatalogHandler) Combos(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	defs := h.coordinator.Registry().All()
	response := listCombosResponse{
		Combos: make([]comboResponse, 0, len(defs)),
	}
	for _, d := range defs {
		response.Combos = append(response.Combos, comboResponse{
			ID:               d.ID,
			Name:             d.Name,
			Sequence:         d.Sequence,
			PointValue:       d.PointValue,
			EffectTag:        d.EffectTag,
			EffectDurationMS: d.EffectDuration.Milliseconds(),
		})
	}

	writeJSON(w, http.StatusOK, response)
}

// Modes handles GET /api/modes.
func (h *CatalogHandler) Modes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	writeJSON(w, http.StatusOK, listModesResponse{Modes: h.coordinator.Modes()})
}
