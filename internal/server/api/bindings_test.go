package api

import (
	"net/http"
	"testing"
)

func TestBindingHandler_CRUD(t *testing.T) {
	h := NewBindingHandler(newTestStore(t))

	rec := do(t, h, http.MethodPost, "/api/bindings", map[string]any{
		"effect_tag":  "fireworks",
		"plugin_name": "effect-log",
		"action_name": "render",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created bindingResponse
	decode(t, rec, &created)
	if created.ID == "" || !created.Enabled || string(created.Config) != "{}" {
		t.Fatalf("unexpected binding: %+v", created)
	}

	rec = do(t, h, http.MethodPost, "/api/bindings", map[string]any{
		"effect_tag":  "fireworks",
		"plugin_name": "other",
		"action_name": "render",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate tag status = %d, want 409", rec.Code)
	}

	rec = do(t, h, http.MethodPut, "/api/bindings/"+created.ID, map[string]any{
		"enabled": false,
		"config":  map[string]string{"color": "gold"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d", rec.Code)
	}
	var updated bindingResponse
	decode(t, rec, &updated)
	if updated.Enabled || updated.EffectTag != "fireworks" {
		t.Errorf("unexpected update: %+v", updated)
	}

	rec = do(t, h, http.MethodGet, "/api/bindings", nil)
	var list listBindingsResponse
	decode(t, rec, &list)
	if len(list.Bindings) != 1 {
		t.Errorf("got %d bindings, want 1", len(list.Bindings))
	}

	rec = do(t, h, http.MethodDelete, "/api/bindings/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE status = %d", rec.Code)
	}
	rec = do(t, h, http.MethodGet, "/api/bindings/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET after delete status = %d, want 404", rec.Code)
	}
}

func TestBindingHandler_Validation(t *testing.T) {
	h := NewBindingHandler(newTestStore(t))

	bodies := []map[string]string{
		{"plugin_name": "p", "action_name": "a"},
		{"effect_tag": "glow", "action_name": "a"},
		{"effect_tag": "glow", "plugin_name": "p"},
	}
	for _, body := range bodies {
		rec := do(t, h, http.MethodPost, "/api/bindings", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %v: status = %d, want 400", body, rec.Code)
		}
	}

	if rec := do(t, h, http.MethodPost, "/api/bindings", "nope"); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid JSON status = %d, want 400", rec.Code)
	}
	if rec := do(t, h, http.MethodPut, "/api/bindings/missing", map[string]any{}); rec.Code != http.StatusNotFound {
		t.Errorf("PUT missing status = %d, want 404", rec.Code)
	}
	if rec := do(t, h, http.MethodPatch, "/api/bindings", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("PATCH status = %d, want 405", rec.Code)
	}
}
