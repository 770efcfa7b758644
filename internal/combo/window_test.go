package combo

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/gesture"
)

func TestWindow_DefaultTTL(t *testing.T) {
	assert.Equal(t, DefaultTTL, NewWindow(0).TTL())
	assert.Equal(t, DefaultTTL, NewWindow(-time.Second).TTL())
	assert.Equal(t, time.Second, NewWindow(time.Second).TTL())
}

func TestWindow_EvictionBoundary(t *testing.T) {
	clock := newFakeClock()
	w := NewWindow(3 * time.Second)

	w.Push(gesture.NewEvent(symA, 1, clock.Now()), clock.Now())
	clock.Advance(3*time.Second - time.Millisecond)
	w.Push(gesture.NewEvent(symB, 1, clock.Now()), clock.Now())
	assert.Equal(t, syms(symA, symB), w.Symbols(), "age just under ttl is retained")

	clock.Advance(time.Millisecond)
	w.Push(gesture.NewEvent(symC, 1, clock.Now()), clock.Now())
	assert.Equal(t, syms(symB, symC), w.Symbols(), "age equal to ttl is evicted")
}

func TestWindow_TTLInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	clock := newFakeClock()
	ttl := 3 * time.Second
	w := NewWindow(ttl)
	all := gesture.AllSymbols()

	for i := 0; i < 500; i++ {
		clock.Advance(time.Duration(rng.Intn(1500)) * time.Millisecond)
		now := clock.Now()
		w.Push(gesture.NewEvent(all[rng.Intn(len(all))], rng.Float64(), now), now)

		events := w.Events()
		require.NotEmpty(t, events, "the pushed event is always retained")
		for _, e := range events {
			require.Less(t, int64(now.Sub(e.Timestamp)), int64(ttl))
		}
		for j := 1; j < len(events); j++ {
			require.False(t, events[j].Timestamp.Before(events[j-1].Timestamp), "chronological order")
		}
	}
}

func TestWindow_EventsIsCopy(t *testing.T) {
	clock := newFakeClock()
	w := NewWindow(time.Second)
	w.Push(gesture.NewEvent(symA, 0.5, clock.Now()), clock.Now())

	events := w.Events()
	events[0].Symbol = symB

	assert.Equal(t, syms(symA), w.Symbols())
}

func TestWindow_Clear(t *testing.T) {
	clock := newFakeClock()
	w := NewWindow(time.Second)
	w.Push(gesture.NewEvent(symA, 1, clock.Now()), clock.Now())
	w.Push(gesture.NewEvent(symB, 1, clock.Now()), clock.Now())

	w.Clear()

	assert.Zero(t, w.Len())
	assert.Empty(t, w.Symbols())
}
