package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/pkg/logger"
)

const (
	writeWait        = 5 * time.Second
	subscriberBuffer = 128
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// EventsHandler streams session events over WebSocket. /api/events carries
// every session, /api/sessions/{id}/events a single one.
type EventsHandler struct {
	manager *session.Manager
	log     logger.Logger
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(m *session.Manager) *EventsHandler {
	return &EventsHandler{
		manager: m,
		log:     logger.Named("ws"),
	}
}

// sessionID extracts {id} from /api/sessions/{id}/events.
func sessionID(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, "/api/sessions/")
	if !ok {
		return "", false
	}
	id, ok := strings.CutSuffix(rest, "/events")
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var (
		events      <-chan session.Event
		unsubscribe func()
	)

	if r.URL.Path == "/api/events" {
		events, unsubscribe = h.manager.Subscribe(subscriberBuffer)
	} else {
		id, ok := sessionID(r.URL.Path)
		if !ok {
			http.NotFound(w, r)
			return
		}
		s, err := h.manager.Get(id)
		if err != nil {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		events, unsubscribe = s.Subscribe(subscriberBuffer)
	}
	defer unsubscribe()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}
	defer conn.Close()

	// Reading detects the client going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-events:
			if !ok {
				msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed")
				conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				h.log.Debug(context.Background(), "websocket write failed", logger.Error(err))
				return
			}
		}
	}
}
