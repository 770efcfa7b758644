package gesture

import (
	"math"
	"sort"
	"sync"

	"github.com/ayusman/mudra/internal/detector"
)

// DefaultTolerance is the summed landmark distance, in hand units, under which a
// trained template is accepted.
const DefaultTolerance = 1.5

// Template is a trained landmark pose for a symbol.
type Template struct {
	Symbol    Symbol             `json:"symbol"`
	Landmarks []detector.Point3D `json:"landmarks"` // normalized
	Tolerance float64            `json:"tolerance"`
	Samples   int                `json:"samples"`
}

// Match represents a matching result between input and a template.
type Match struct {
	Template *Template // The matched template
	Score    float64   // Match score (0-1, higher is better)
	Distance float64   // Summed point distance between input and template
}

// TemplateMatcher matches hand poses against trained templates, one per symbol.
// It is safe for concurrent use.
type TemplateMatcher struct {
	mu        sync.RWMutex
	templates []*Template
}

// NewTemplateMatcher creates an empty TemplateMatcher.
func NewTemplateMatcher() *TemplateMatcher {
	return &TemplateMatcher{
		templates: make([]*Template, 0),
	}
}

// SetTemplate adds t, replacing any template already trained for t.Symbol.
func (m *TemplateMatcher) SetTemplate(t *Template) {
	if t == nil || !t.Symbol.Valid() {
		return
	}
	if t.Tolerance <= 0 {
		t.Tolerance = DefaultTolerance
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.templates {
		if existing.Symbol == t.Symbol {
			m.templates[i] = t
			return
		}
	}
	m.templates = append(m.templates, t)
}

// RemoveTemplate removes the template for symbol, if any.
func (m *TemplateMatcher) RemoveTemplate(symbol Symbol) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, t := range m.templates {
		if t.Symbol == symbol {
			m.templates = append(m.templates[:i], m.templates[i+1:]...)
			return
		}
	}
}

// Len returns the number of trained templates.
func (m *TemplateMatcher) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.templates)
}

// Match finds templates within tolerance of hand.
// Returns matches sorted by score in descending order (best matches first).
func (m *TemplateMatcher) Match(hand *detector.HandLandmarks) []Match {
	if hand == nil {
		return nil
	}

	normalized := hand.Normalize()
	input := normalized.Points[:]

	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []Match
	for _, template := range m.templates {
		if len(template.Landmarks) != detector.NumLandmarks {
			continue
		}

		distance := euclideanDistance(input, template.Landmarks)
		if distance > template.Tolerance {
			continue
		}
		matches = append(matches, Match{
			Template: template,
			Score:    1.0 / (1.0 + distance),
			Distance: distance,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return matches
}

// euclideanDistance sums the distances between corresponding points.
func euclideanDistance(a, b []detector.Point3D) float64 {
	n := min(len(a), len(b))

	var total float64
	for i := 0; i < n; i++ {
		dx := a[i].X - b[i].X
		dy := a[i].Y - b[i].Y
		dz := a[i].Z - b[i].Z
		total += math.Sqrt(dx*dx + dy*dy + dz*dz)
	}

	return total
}
