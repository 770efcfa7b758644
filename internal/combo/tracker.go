package combo

import (
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// Status is a snapshot of a tracker.
type Status struct {
	GestureHistory []gesture.Event `json:"gesture_history"`
	Active         *ActiveCombo    `json:"active,omitempty"`
	State          State           `json:"state"`
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithClock overrides the clock used to timestamp ingested gestures.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// WithTTL sets the window TTL.
func WithTTL(ttl time.Duration) TrackerOption {
	return func(t *Tracker) {
		t.window = NewWindow(ttl)
	}
}

// Tracker feeds gestures through a Window and a Lifecycle. Gestures are
// timestamped on ingestion with the tracker's clock. It is not safe for
// concurrent use.
type Tracker struct {
	window    *Window
	lifecycle *Lifecycle
	now       func() time.Time
}

// NewTracker creates a Tracker over registry.
func NewTracker(registry *Registry, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		window:    NewWindow(DefaultTTL),
		lifecycle: NewLifecycle(NewMatcher(registry)),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Push ingests one gesture and returns the stamped event with the resulting
// transition. The window is cleared on completion and kept on failure.
func (t *Tracker) Push(symbol gesture.Symbol, confidence float64) (gesture.Event, Transition) {
	now := t.now()
	ev := gesture.NewEvent(symbol, confidence, now)

	t.window.Push(ev, now)
	tr := t.lifecycle.Advance(t.window.Symbols(), now)
	if tr.Kind == TransitionCompleted {
		t.window.Clear()
	}
	return ev, tr
}

// Status returns the current history and active combo.
func (t *Tracker) Status() Status {
	s := Status{
		GestureHistory: t.window.Events(),
		State:          t.lifecycle.State(),
	}
	if a, ok := t.lifecycle.Active(); ok {
		s.Active = &a
	}
	return s
}

// Reset clears the window and the active combo.
func (t *Tracker) Reset() {
	t.window.Clear()
	t.lifecycle.Reset()
}
