// Package server provides the HTTP server for mudra: the REST API, the
// session event websocket, the camera preview and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/pkg/logger"
	"github.com/ayusman/mudra/pkg/metrics"
)

// Config holds the server configuration. Routes whose dependency is nil are
// not registered.
type Config struct {
	StaticDir   string
	Store       *store.Store
	Sessions    *session.Manager
	DefaultMode string
	Templates   api.TemplateSink
	Camera      capture.Camera
	// TrackingMode reports "camera" or "manual" in the health response.
	TrackingMode func() string
	// Overlay is drawn on the camera preview.
	Overlay func() string
}

// Server represents the HTTP server for the mudra application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	log    logger.Logger
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
		log:    logger.Named("server"),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.Handle("/metrics", metrics.Handler())

	if s.config.Sessions != nil {
		catalog := api.NewCatalogHandler(s.config.Sessions.Coordinator())
		s.mux.HandleFunc("/api/combos", catalog.Combos)
		s.mux.HandleFunc("/api/modes", catalog.Modes)

		sessions := api.NewSessionHandler(s.config.Sessions, s.config.DefaultMode)
		events := NewEventsHandler(s.config.Sessions)

		// /api/sessions/{id}/events is a websocket, everything else is REST.
		router := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/events") {
				events.ServeHTTP(w, r)
				return
			}
			sessions.ServeHTTP(w, r)
		})
		s.mux.Handle("/api/sessions", router)
		s.mux.Handle("/api/sessions/", router)
		s.mux.Handle("/api/events", events)
	}

	if s.config.Store != nil {
		history := api.NewHistoryHandler(s.config.Store)
		s.mux.Handle("/api/history", history)
		s.mux.Handle("/api/history/", history)

		templates := api.NewTemplateHandler(s.config.Store, s.config.Templates)
		s.mux.Handle("/api/templates", templates)
		s.mux.Handle("/api/templates/", templates)

		bindings := api.NewBindingHandler(s.config.Store)
		s.mux.Handle("/api/bindings", bindings)
		s.mux.Handle("/api/bindings/", bindings)
	}

	if s.config.Camera != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Camera, s.config.Overlay))
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Sessions != nil {
		response["sessions"] = len(s.config.Sessions.List())
	}
	if s.config.TrackingMode != nil {
		response["tracking_mode"] = s.config.TrackingMode()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "http server listening", logger.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
