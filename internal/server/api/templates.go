package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
)

// TemplateSink receives templates as they are trained or removed so the live
// classifier picks them up. *gesture.TemplateMatcher satisfies it.
type TemplateSink interface {
	SetTemplate(t *gesture.Template)
	RemoveTemplate(symbol gesture.Symbol)
}

// TemplateHandler handles HTTP requests for symbol template resources.
type TemplateHandler struct {
	store   *store.Store
	sink    TemplateSink
	trainer *gesture.Trainer
	samples *SamplesHandler
}

// NewTemplateHandler creates a new TemplateHandler. sink may be nil.
func NewTemplateHandler(s *store.Store, sink TemplateSink) *TemplateHandler {
	return &TemplateHandler{
		store:   s,
		sink:    sink,
		trainer: gesture.NewTrainer(),
		samples: NewSamplesHandler(s),
	}
}

// ServeHTTP routes /api/templates, /api/templates/{symbol} and
// /api/templates/{symbol}/samples.
func (h *TemplateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r, "/api/templates")

	if len(parts) == 0 {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.list(w, r)
		return
	}

	symbol, ok := gesture.ParseSymbol(parts[0])
	if !ok || symbol == gesture.NoHand {
		writeError(w, http.StatusNotFound, "Unknown symbol")
		return
	}

	switch {
	case len(parts) == 2 && parts[1] == "samples":
		h.samples.serve(w, r, symbol)
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, symbol)
		case http.MethodPut:
			h.train(w, r, symbol)
		case http.MethodDelete:
			h.delete(w, r, symbol)
		default:
			methodNotAllowed(w)
		}
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

type trainTemplateRequest struct {
	Tolerance float64 `json:"tolerance"`
}

type templateResponse struct {
	Symbol    string             `json:"symbol"`
	Tolerance float64            `json:"tolerance"`
	Samples   int                `json:"samples"`
	Landmarks []detector.Point3D `json:"landmarks,omitempty"`
	CreatedAt string             `json:"created_at"`
	UpdatedAt string             `json:"updated_at"`
}

type listTemplatesResponse struct {
	Templates []templateResponse `json:"templates"`
}

func toTemplateResponse(t *store.Template, withLandmarks bool) templateResponse {
	resp := templateResponse{
		Symbol:    string(t.Symbol),
		Tolerance: t.Tolerance,
		Samples:   t.Samples,
		CreatedAt: formatTime(t.CreatedAt),
		UpdatedAt: formatTime(t.UpdatedAt),
	}
	if withLandmarks {
		resp.Landmarks = t.Landmarks
	}
	return resp
}

func (h *TemplateHandler) list(w http.ResponseWriter, r *http.Request) {
	templates, err := h.store.Templates().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list templates")
		return
	}

	response := listTemplatesResponse{
		Templates: make([]templateResponse, 0, len(templates)),
	}
	for _, t := range templates {
		response.Templates = append(response.Templates, toTemplateResponse(t, false))
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *TemplateHandler) get(w http.ResponseWriter, r *http.Request, symbol gesture.Symbol) {
	t, err := h.store.Templates().Get(symbol)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Template not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get template")
		return
	}

	writeJSON(w, http.StatusOK, toTemplateResponse(t, true))
}

// train handles PUT /api/templates/{symbol}: the recorded samples are averaged
// into a template which replaces any existing one.
func (h *TemplateHandler) train(w http.ResponseWriter, r *http.Request, symbol gesture.Symbol) {
	var req trainTemplateRequest
	// The body is optional.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Tolerance < 0 {
		writeError(w, http.StatusBadRequest, "tolerance must not be negative")
		return
	}

	samples, err := h.store.Samples().List(symbol)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load samples")
		return
	}
	raw := make([]json.RawMessage, len(samples))
	for i, s := range samples {
		raw[i] = s.Data
	}

	trained, err := h.trainer.Train(symbol, raw)
	if err != nil {
		if errors.Is(err, gesture.ErrNoSamples) {
			writeError(w, http.StatusConflict, "No samples recorded")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Tolerance > 0 {
		trained.Tolerance = req.Tolerance
	}

	t := &store.Template{
		Symbol:    symbol,
		Tolerance: trained.Tolerance,
		Samples:   trained.Samples,
		Landmarks: trained.Landmarks,
	}
	if err := h.store.Templates().Save(t); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save template")
		return
	}
	if h.sink != nil {
		h.sink.SetTemplate(t.Gesture())
	}

	writeJSON(w, http.StatusOK, toTemplateResponse(t, true))
}

func (h *TemplateHandler) delete(w http.ResponseWriter, r *http.Request, symbol gesture.Symbol) {
	if err := h.store.Templates().Delete(symbol); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Template not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete template")
		return
	}
	if err := h.store.Samples().Delete(symbol); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete samples")
		return
	}
	if h.sink != nil {
		h.sink.RemoveTemplate(symbol)
	}

	w.WriteHeader(http.StatusNoContent)
}
