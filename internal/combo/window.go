// Package combo recognizes multi-step gesture combos over a time-bounded
// window of recent gestures.
package combo

import (
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// DefaultTTL is how long a gesture stays in the window.
const DefaultTTL = 3000 * time.Millisecond

// Window is a chronological, time-bounded history of gesture events.
// Eviction is lazy and happens only on Push. It is not safe for concurrent use.
type Window struct {
	ttl    time.Duration
	events []gesture.Event
}

// NewWindow returns a window with the given TTL. A non-positive ttl uses DefaultTTL.
func NewWindow(ttl time.Duration) *Window {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Window{ttl: ttl}
}

// TTL returns the window's time-to-live.
func (w *Window) TTL() time.Duration {
	return w.ttl
}

// Push appends ev and then drops every event whose age at now is ttl or more.
func (w *Window) Push(ev gesture.Event, now time.Time) {
	w.events = append(w.events, ev)

	kept := w.events[:0]
	for _, e := range w.events {
		if now.Sub(e.Timestamp) < w.ttl {
			kept = append(kept, e)
		}
	}
	clear(w.events[len(kept):])
	w.events = kept
}

// Symbols returns the symbols in chronological order.
func (w *Window) Symbols() []gesture.Symbol {
	out := make([]gesture.Symbol, len(w.events))
	for i, e := range w.events {
		out[i] = e.Symbol
	}
	return out
}

// Events returns a copy of the retained events.
func (w *Window) Events() []gesture.Event {
	out := make([]gesture.Event, len(w.events))
	copy(out, w.events)
	return out
}

// Len returns the number of retained events.
func (w *Window) Len() int {
	return len(w.events)
}

// Clear drops every event.
func (w *Window) Clear() {
	w.events = w.events[:0]
}
