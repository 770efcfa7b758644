package combo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/gesture"
)

// Short aliases keep sequence literals readable.
const (
	symA = gesture.OpenHand
	symB = gesture.ClosedFist
	symC = gesture.Pinch
	symD = gesture.Point
	symE = gesture.Victory
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func def(id string, seq ...gesture.Symbol) Definition {
	return Definition{
		ID:             id,
		Name:           id,
		Sequence:       seq,
		PointValue:     10,
		EffectTag:      id,
		EffectDuration: 3 * time.Second,
	}
}

func mustRegistry(t *testing.T, defs ...Definition) *Registry {
	t.Helper()
	r, err := NewRegistry(defs)
	require.NoError(t, err)
	return r
}

func syms(s ...gesture.Symbol) []gesture.Symbol { return s }
