package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ayusman/mudra/internal/combo"
	"github.com/ayusman/mudra/internal/session"
)

func TestCatalogHandler(t *testing.T) {
	registry, err := combo.NewRegistry(combo.DefaultDefinitions())
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	h := NewCatalogHandler(session.NewCoordinator(registry))

	rec := httptest.NewRecorder()
	h.Combos(rec, httptest.NewRequest(http.MethodGet, "/api/combos", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("combos status = %d", rec.Code)
	}
	var combos listCombosResponse
	decode(t, rec, &combos)
	if len(combos.Combos) != 6 {
		t.Fatalf("got %d combos, want 6", len(combos.Combos))
	}
	first := combos.Combos[0]
	if first.ID != "power_up" || first.PointValue != 100 || first.EffectDurationMS != 5000 || len(first.Sequence) != 3 {
		t.Errorf("unexpected first combo: %+v", first)
	}

	rec = httptest.NewRecorder()
	h.Modes(rec, httptest.NewRequest(http.MethodGet, "/api/modes", nil))
	var modes listModesResponse
	decode(t, rec, &modes)
	if len(modes.Modes) != 4 || modes.Modes[0].Name != session.ModeFreePlay {
		t.Errorf("unexpected modes: %+v", modes.Modes)
	}

	rec = httptest.NewRecorder()
	h.Combos(rec, httptest.NewRequest(http.MethodPost, "/api/combos", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST combos status = %d, want 405", rec.Code)
	}
}
