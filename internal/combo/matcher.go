package combo

import (
	"slices"

	"github.com/ayusman/mudra/internal/gesture"
)

// MatchResult is the match state of one combo against a window.
type MatchResult struct {
	IsComplete bool
	IsPartial  bool
	Progress   float64
	// Matched is the number of target steps matched by the window tail.
	Matched int
}

// Evaluate matches the tail of window against target.
//
// The window is complete when its last len(target) symbols equal target.
// Otherwise the longest i such that the last i window symbols equal the first
// i target symbols is a partial match with progress i/len(target).
func Evaluate(window, target []gesture.Symbol) MatchResult {
	n := len(target)
	if n == 0 {
		return MatchResult{}
	}

	if len(window) >= n && slices.Equal(window[len(window)-n:], target) {
		return MatchResult{IsComplete: true, Progress: 1.0, Matched: n}
	}

	for i := min(len(window), n); i >= 1; i-- {
		if slices.Equal(window[len(window)-i:], target[:i]) {
			return MatchResult{IsPartial: true, Progress: float64(i) / float64(n), Matched: i}
		}
	}

	return MatchResult{}
}

// Candidate pairs a definition with its match against the window.
type Candidate struct {
	Definition Definition
	Result     MatchResult
}

// Matcher evaluates a window against every combo of a registry.
type Matcher struct {
	registry *Registry
}

// NewMatcher creates a Matcher over registry.
func NewMatcher(registry *Registry) *Matcher {
	return &Matcher{registry: registry}
}

// Registry returns the registry being matched against.
func (m *Matcher) Registry() *Registry {
	return m.registry
}

// Best returns the winning combo for window. The first complete combo in
// registry order wins; otherwise the partial with the most matched steps wins,
// ties going to the earlier registry entry.
func (m *Matcher) Best(window []gesture.Symbol) (Candidate, bool) {
	var best Candidate
	found := false

	for _, d := range m.registry.defs {
		r := Evaluate(window, d.Sequence)
		if r.IsComplete {
			return Candidate{Definition: d.clone(), Result: r}, true
		}
		if r.IsPartial && (!found || r.Matched > best.Result.Matched) {
			best = Candidate{Definition: d, Result: r}
			found = true
		}
	}

	if found {
		best.Definition = best.Definition.clone()
	}
	return best, found
}

// EvaluateAll returns the match of every combo in registry order.
func (m *Matcher) EvaluateAll(window []gesture.Symbol) []Candidate {
	out := make([]Candidate, 0, len(m.registry.defs))
	for _, d := range m.registry.defs {
		out = append(out, Candidate{Definition: d.clone(), Result: Evaluate(window, d.Sequence)})
	}
	return out
}
