package combo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/gesture"
)

// drive advances a lifecycle over growing prefixes of window, one event at a time.
func drive(l *Lifecycle, clock *fakeClock, window []gesture.Symbol) []Transition {
	out := make([]Transition, 0, len(window))
	for i := range window {
		clock.Advance(100 * time.Millisecond)
		out = append(out, l.Advance(window[:i+1], clock.Now()))
	}
	return out
}

func kinds(trs []Transition) []TransitionKind {
	out := make([]TransitionKind, len(trs))
	for i, tr := range trs {
		out[i] = tr.Kind
	}
	return out
}

func TestLifecycle_DetectProgressComplete(t *testing.T) {
	clock := newFakeClock()
	l := NewLifecycle(NewMatcher(mustRegistry(t, def("abc", symA, symB, symC))))

	trs := drive(l, clock, syms(symA, symB, symC))

	assert.Equal(t, []TransitionKind{TransitionDetected, TransitionProgress, TransitionCompleted}, kinds(trs))
	assert.InDelta(t, 1.0/3, trs[0].Combo.Progress, 1e-9)
	assert.InDelta(t, 2.0/3, trs[1].Combo.Progress, 1e-9)
	assert.Equal(t, "abc", trs[2].Combo.Definition.ID)
	assert.Equal(t, trs[0].Combo.StartedAt, trs[2].Combo.StartedAt)
	assert.Equal(t, StateIdle, l.State())
}

func TestLifecycle_IdleCompletesDirectly(t *testing.T) {
	clock := newFakeClock()
	l := NewLifecycle(NewMatcher(mustRegistry(t, def("bc", symB, symC), def("ab", symA, symB))))

	// The window already holds a full combo while nothing is being tracked.
	tr := l.Advance(syms(symA, symB), clock.Now())

	assert.Equal(t, TransitionCompleted, tr.Kind)
	assert.Equal(t, "ab", tr.Combo.Definition.ID)
	assert.Equal(t, StateIdle, l.State())
}

func TestLifecycle_CompletionTakesPriority(t *testing.T) {
	clock := newFakeClock()
	l := NewLifecycle(NewMatcher(mustRegistry(t,
		def("long", symA, symB, symC, symD),
		def("short", symB, symC),
	)))

	trs := drive(l, clock, syms(symA, symB, symC))

	assert.Equal(t, []TransitionKind{TransitionDetected, TransitionProgress, TransitionCompleted}, kinds(trs))
	assert.Equal(t, "short", trs[2].Combo.Definition.ID)
}

func TestLifecycle_ProgressUnchangedIsNone(t *testing.T) {
	clock := newFakeClock()
	l := NewLifecycle(NewMatcher(mustRegistry(t, def("aab", symA, symA, symB))))

	// [A], [A,A], [A,A,A]: the last keeps two matched steps.
	trs := drive(l, clock, syms(symA, symA, symA))

	assert.Equal(t, []TransitionKind{TransitionDetected, TransitionProgress, TransitionNone}, kinds(trs))
	active, ok := l.Active()
	require.True(t, ok)
	assert.Equal(t, 2, active.Matched)
}

func TestLifecycle_RestartResetsStart(t *testing.T) {
	clock := newFakeClock()
	l := NewLifecycle(NewMatcher(mustRegistry(t, def("abc", symA, symB, symC))))

	trs := drive(l, clock, syms(symA, symB, symA))

	require.Equal(t, []TransitionKind{TransitionDetected, TransitionProgress, TransitionProgress}, kinds(trs))
	assert.Equal(t, 1, trs[2].Combo.Matched)
	assert.Equal(t, clock.Now(), trs[2].Combo.StartedAt)
	assert.True(t, trs[2].Combo.StartedAt.After(trs[0].Combo.StartedAt))
}

func TestLifecycle_SupersededByLongerPartial(t *testing.T) {
	clock := newFakeClock()
	l := NewLifecycle(NewMatcher(mustRegistry(t,
		def("abc", symA, symB, symC),
		def("abad", symA, symB, symA, symD),
	)))

	trs := drive(l, clock, syms(symA, symB, symA))

	require.Equal(t, []TransitionKind{TransitionDetected, TransitionProgress, TransitionSuperseded}, kinds(trs))
	assert.Equal(t, "abad", trs[2].Combo.Definition.ID)
	require.NotNil(t, trs[2].Previous)
	assert.Equal(t, "abc", trs[2].Previous.Definition.ID)
	assert.InDelta(t, 0.75, trs[2].Combo.Progress, 1e-9)
}

func TestLifecycle_BreakIntoOtherComboStart(t *testing.T) {
	clock := newFakeClock()
	l := NewLifecycle(NewMatcher(mustRegistry(t, DefaultDefinitions()...)))

	trs := drive(l, clock, syms(gesture.ClosedFist, gesture.OpenHand))

	require.Equal(t, []TransitionKind{TransitionDetected, TransitionSuperseded}, kinds(trs))
	assert.Equal(t, "power_up", trs[1].Previous.Definition.ID)
	assert.Equal(t, "shield", trs[1].Combo.Definition.ID)
}

func TestLifecycle_Failed(t *testing.T) {
	clock := newFakeClock()
	l := NewLifecycle(NewMatcher(mustRegistry(t, DefaultDefinitions()...)))

	trs := drive(l, clock, syms(gesture.Pinch, gesture.NoHand))

	require.Equal(t, []TransitionKind{TransitionDetected, TransitionFailed}, kinds(trs))
	assert.Equal(t, "precision", trs[1].Combo.Definition.ID)
	assert.InDelta(t, 0.5, trs[1].Combo.Progress, 1e-9)
	assert.Equal(t, StateIdle, l.State())
}

func TestLifecycle_NoHandNeverPanics(t *testing.T) {
	clock := newFakeClock()
	l := NewLifecycle(NewMatcher(mustRegistry(t, DefaultDefinitions()...)))

	trs := drive(l, clock, syms(gesture.NoHand, gesture.NoHand, gesture.NoHand))
	assert.Equal(t, []TransitionKind{TransitionNone, TransitionNone, TransitionNone}, kinds(trs))
}

func TestStateAndKindStrings(t *testing.T) {
	assert.Equal(t, "tracking", StateTracking.String())
	assert.Equal(t, "superseded", TransitionSuperseded.String())

	text, err := StateFailed.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "failed", string(text))
}

func TestStateUnmarshalText(t *testing.T) {
	var s State
	require.NoError(t, s.UnmarshalText([]byte("tracking")))
	assert.Equal(t, StateTracking, s)
	assert.Error(t, s.UnmarshalText([]byte("dancing")))
}
