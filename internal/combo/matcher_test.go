package combo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/gesture"
)

func TestEvaluate(t *testing.T) {
	target := syms(symA, symB, symC)

	tests := []struct {
		name   string
		window []gesture.Symbol
		want   MatchResult
	}{
		{"empty window", nil, MatchResult{}},
		{"exact", syms(symA, symB, symC), MatchResult{IsComplete: true, Progress: 1, Matched: 3}},
		{"exact tail after noise", syms(symD, symE, symA, symB, symC), MatchResult{IsComplete: true, Progress: 1, Matched: 3}},
		{"first step", syms(symA), MatchResult{IsPartial: true, Progress: 1.0 / 3, Matched: 1}},
		{"two steps after noise", syms(symD, symA, symB), MatchResult{IsPartial: true, Progress: 2.0 / 3, Matched: 2}},
		{"longest suffix wins", syms(symA, symA, symB), MatchResult{IsPartial: true, Progress: 2.0 / 3, Matched: 2}},
		{"broken chain", syms(symA, symB, symD), MatchResult{}},
		{"middle of target is not a prefix", syms(symB, symC), MatchResult{}},
		{"restart from first step", syms(symA, symB, symA), MatchResult{IsPartial: true, Progress: 1.0 / 3, Matched: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.window, target)
			assert.Equal(t, tt.want.IsComplete, got.IsComplete)
			assert.Equal(t, tt.want.IsPartial, got.IsPartial)
			assert.Equal(t, tt.want.Matched, got.Matched)
			assert.InDelta(t, tt.want.Progress, got.Progress, 1e-9)
		})
	}

	assert.Equal(t, MatchResult{}, Evaluate(syms(symA), nil))
}

func TestMatcher_LongestSuffixWins(t *testing.T) {
	window := syms(symA, symB, symC)

	for _, order := range [][]Definition{
		{def("bcd", symB, symC, symD), def("cd", symC, symD)},
		{def("cd", symC, symD), def("bcd", symB, symC, symD)},
	} {
		m := NewMatcher(mustRegistry(t, order...))

		best, ok := m.Best(window)
		require.True(t, ok)
		assert.Equal(t, "bcd", best.Definition.ID)
		assert.InDelta(t, 2.0/3, best.Result.Progress, 1e-9)
	}
}

func TestMatcher_TieGoesToRegistryOrder(t *testing.T) {
	m := NewMatcher(mustRegistry(t, def("first", symA, symB), def("second", symA, symC)))

	best, ok := m.Best(syms(symA))
	require.True(t, ok)
	assert.Equal(t, "first", best.Definition.ID)
}

func TestMatcher_CompleteBeatsLongerPartial(t *testing.T) {
	m := NewMatcher(mustRegistry(t,
		def("long", symD, symA, symB, symC),
		def("short", symA, symB),
	))

	best, ok := m.Best(syms(symD, symA, symB))
	require.True(t, ok)
	assert.Equal(t, "short", best.Definition.ID)
	assert.True(t, best.Result.IsComplete)
}

func TestMatcher_NoMatch(t *testing.T) {
	m := NewMatcher(mustRegistry(t, DefaultDefinitions()...))

	_, ok := m.Best(syms(gesture.NoHand))
	assert.False(t, ok)
	_, ok = m.Best(nil)
	assert.False(t, ok)
}

func TestMatcher_EvaluateAll(t *testing.T) {
	m := NewMatcher(mustRegistry(t, DefaultDefinitions()...))

	all := m.EvaluateAll(syms(gesture.Pinch))
	require.Len(t, all, 6)
	for _, c := range all {
		if c.Definition.ID == "precision" {
			assert.True(t, c.Result.IsPartial)
			assert.InDelta(t, 0.5, c.Result.Progress, 1e-9)
			continue
		}
		assert.False(t, c.Result.IsPartial, c.Definition.ID)
		assert.Zero(t, c.Result.Progress, c.Definition.ID)
	}
}
