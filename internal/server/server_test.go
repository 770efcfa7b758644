package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/reward"
	"github.com/ayusman/mudra/internal/session"
)

func getJSON(t *testing.T, h http.Handler, path string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	if rec.Code == http.StatusOK {
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("%s: Content-Type = %q", path, ct)
		}
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("%s: decode: %v", path, err)
		}
	}
	return rec.Code, body
}

func TestServer_Health(t *testing.T) {
	t.Run("bare server", func(t *testing.T) {
		code, body := getJSON(t, New(Config{}), "/api/health")
		if code != http.StatusOK {
			t.Fatalf("status = %d", code)
		}
		if body["status"] != "ok" {
			t.Errorf("status field = %v", body["status"])
		}
		if _, ok := body["uptime"]; !ok {
			t.Error("missing uptime")
		}
		if _, ok := body["tracking_mode"]; ok {
			t.Error("tracking_mode reported without a pipeline")
		}
	})

	t.Run("reports tracking mode", func(t *testing.T) {
		s := New(Config{TrackingMode: func() string { return "manual" }})
		_, body := getJSON(t, s, "/api/health")
		if body["tracking_mode"] != "manual" {
			t.Errorf("tracking_mode = %v", body["tracking_mode"])
		}
	})

	t.Run("rejects writes", func(t *testing.T) {
		s := New(Config{})
		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, httptest.NewRequest(method, "/api/health", nil))
			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("%s: status = %d", method, rec.Code)
			}
		}
	})
}

func TestServer_StaticFiles(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"index.html": "<html><body>mudra</body></html>",
		"app.js":     "console.log('combo')",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name   string
		cfg    Config
		path   string
		status int
		body   string
	}{
		{"index at root", Config{StaticDir: dir}, "/", http.StatusOK, files["index.html"]},
		{"asset", Config{StaticDir: dir}, "/app.js", http.StatusOK, files["app.js"]},
		{"missing asset", Config{StaticDir: dir}, "/nope.css", http.StatusNotFound, ""},
		{"no static dir", Config{}, "/", http.StatusNotFound, ""},
		{"unknown api route", Config{StaticDir: dir}, "/api/nonexistent", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			New(tt.cfg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.body != "" && rec.Body.String() != tt.body {
				t.Errorf("body = %q", rec.Body.String())
			}
		})
	}
}

func TestServer_Metrics(t *testing.T) {
	s := New(Config{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "mudra_") {
		t.Error("expected mudra metrics in exposition")
	}
}

func TestServer_OptionalRoutes(t *testing.T) {
	s := New(Config{})

	for _, path := range []string{"/api/sessions", "/api/combos", "/api/history", "/api/templates", "/api/bindings", "/api/stream"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected status %d without dependencies, got %d", path, http.StatusNotFound, rec.Code)
		}
	}
}

func TestSessionID(t *testing.T) {
	tests := []struct {
		path string
		id   string
		ok   bool
	}{
		{"/api/sessions/abc/events", "abc", true},
		{"/api/sessions//events", "", false},
		{"/api/sessions/a/b/events", "", false},
		{"/api/sessions/abc", "", false},
		{"/api/events", "", false},
	}

	for _, tt := range tests {
		id, ok := sessionID(tt.path)
		if id != tt.id || ok != tt.ok {
			t.Errorf("sessionID(%q) = %q, %v; want %q, %v", tt.path, id, ok, tt.id, tt.ok)
		}
	}
}

func TestStatusLine(t *testing.T) {
	tests := []struct {
		name string
		st   session.Status
		want string
	}{
		{"fresh session", session.Status{}, "0 pts"},
		{
			"streak and active combo",
			session.Status{
				Score:  340,
				Streak: reward.Streak{Count: 3, Multiplier: 1.2},
				Active: &session.ComboInfo{
					Name:     "Power Up",
					Matched:  2,
					Sequence: []gesture.Symbol{gesture.ClosedFist, gesture.Victory, gesture.ThumbsUp},
				},
			},
			"340 pts  streak 3 x1.2  Power Up 2/3",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusLine(tt.st); got != tt.want {
				t.Errorf("StatusLine() = %q, want %q", got, tt.want)
			}
		})
	}
}
