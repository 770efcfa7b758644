package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/combo"
	"github.com/ayusman/mudra/internal/gesture"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func defaultRegistry(t *testing.T) *combo.Registry {
	t.Helper()
	r, err := combo.NewRegistry(combo.DefaultDefinitions())
	require.NoError(t, err)
	return r
}

// bareMode has every symbol and no objectives.
func bareMode(t *testing.T) Resolved {
	t.Helper()
	return Resolved{Mode: Mode{Name: "bare", Difficulty: 1.0}, Registry: defaultRegistry(t)}
}

func newTestSession(t *testing.T, mode Resolved, clock *fakeClock) *Session {
	t.Helper()
	s, err := New(context.Background(), "", mode, WithClock(clock.Now))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

// push feeds symbols 400ms apart and returns the events of the last one.
func push(s *Session, clock *fakeClock, symbols ...gesture.Symbol) []Event {
	var last []Event
	for _, sym := range symbols {
		clock.Advance(400 * time.Millisecond)
		last = s.Push(sym, 0.9)
	}
	return last
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func find(events []Event, kind EventKind) (Event, bool) {
	for _, ev := range events {
		if ev.Kind == kind {
			return ev, true
		}
	}
	return Event{}, false
}

var powerUp = []gesture.Symbol{gesture.ClosedFist, gesture.Victory, gesture.ThumbsUp}
