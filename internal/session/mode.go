package session

import (
	"fmt"
	"slices"

	"github.com/ayusman/mudra/internal/combo"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/objective"
)

// Built-in mode names.
const (
	ModeFreePlay   = "free_play"
	ModeChallenge  = "challenge"
	ModeTraining   = "training"
	ModeTimeAttack = "time_attack"
)

// Mode selects the active gestures, objects and objectives of a session.
type Mode struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	// Symbols is the active gesture subset. Empty means every symbol.
	Symbols []gesture.Symbol `json:"symbols,omitempty"`
	// Objects is the set of interactive objects. Empty means any object.
	Objects    []string              `json:"objects,omitempty"`
	Objectives []objective.Objective `json:"objectives,omitempty"`
	// Difficulty multiplies the configured difficulty.
	Difficulty float64 `json:"difficulty"`
}

var defaultObjects = []string{"cube", "sphere", "torus", "pyramid"}

// DefaultModes returns the built-in modes.
func DefaultModes() []Mode {
	return []Mode{
		{
			Name:        ModeFreePlay,
			Description: "Every gesture and combo, no pressure",
			Objects:     slices.Clone(defaultObjects),
			Objectives: []objective.Objective{
				{ID: "warm_up", Kind: objective.KindCount, Target: 20, Description: "Perform 20 gestures"},
				{ID: "first_combos", Kind: objective.KindCombo, Target: 3, Description: "Complete 3 combos"},
			},
			Difficulty: 1.0,
		},
		{
			Name:        ModeChallenge,
			Description: "Harder scoring with score and accuracy goals",
			Objects:     slices.Clone(defaultObjects),
			Objectives: []objective.Objective{
				{ID: "combo_master", Kind: objective.KindCombo, Target: 5, Description: "Complete 5 combos"},
				{ID: "high_score", Kind: objective.KindScore, Target: 1000, Description: "Reach 1000 points"},
				{ID: "clean_hands", Kind: objective.KindAccuracy, Target: 80, MinSamples: 20, Description: "Keep 80% accuracy"},
			},
			Difficulty: 1.5,
		},
		{
			Name:        ModeTraining,
			Description: "Learn the basic poses",
			Symbols: []gesture.Symbol{
				gesture.OpenHand, gesture.ClosedFist, gesture.Point, gesture.Victory, gesture.ThumbsUp,
			},
			Objects: []string{"cube"},
			Objectives: []objective.Objective{
				{ID: "fists", Kind: objective.KindCount, Target: 5, RelatedSymbol: gesture.ClosedFist, Description: "Make 5 fists"},
				{ID: "peace", Kind: objective.KindCount, Target: 5, RelatedSymbol: gesture.Victory, Description: "Show victory 5 times"},
				{ID: "steady", Kind: objective.KindAccuracy, Target: 70, MinSamples: 10, Description: "Keep 70% accuracy"},
				{ID: "power_up", Kind: objective.KindCombo, Target: 1, RelatedCombo: "power_up", Description: "Complete Power Up"},
			},
			Difficulty: 0.5,
		},
		{
			Name:        ModeTimeAttack,
			Description: "Score as much as possible in one minute",
			Objects:     slices.Clone(defaultObjects),
			Objectives: []objective.Objective{
				{ID: "survive", Kind: objective.KindTime, Target: 60, Description: "Play for 60 seconds"},
				{ID: "rush", Kind: objective.KindScore, Target: 500, Description: "Reach 500 points"},
			},
			Difficulty: 1.25,
		},
	}
}

// Resolved is a mode bound to the combos it can use.
type Resolved struct {
	Mode     Mode
	Registry *combo.Registry
}

// AllowsSymbol reports whether sym is active. NoHand is always allowed.
func (r Resolved) AllowsSymbol(sym gesture.Symbol) bool {
	if sym == gesture.NoHand || len(r.Mode.Symbols) == 0 {
		return true
	}
	return slices.Contains(r.Mode.Symbols, sym)
}

// AllowsObject reports whether id is an active object.
func (r Resolved) AllowsObject(id string) bool {
	if id == "" {
		return false
	}
	return len(r.Mode.Objects) == 0 || slices.Contains(r.Mode.Objects, id)
}

// Coordinator resolves game modes against the combo registry.
type Coordinator struct {
	registry *combo.Registry
	modes    []Mode
}

// NewCoordinator creates a Coordinator. With no modes the built-ins are used.
func NewCoordinator(registry *combo.Registry, modes ...Mode) *Coordinator {
	if len(modes) == 0 {
		modes = DefaultModes()
	}
	return &Coordinator{registry: registry, modes: modes}
}

// Modes returns the configured modes in order.
func (c *Coordinator) Modes() []Mode {
	return slices.Clone(c.modes)
}

// Registry returns the full combo registry.
func (c *Coordinator) Registry() *combo.Registry {
	return c.registry
}

// Resolve looks up a mode and restricts the registry to combos whose every
// step is an active symbol.
func (c *Coordinator) Resolve(name string) (Resolved, error) {
	idx := slices.IndexFunc(c.modes, func(m Mode) bool { return m.Name == name })
	if idx < 0 {
		return Resolved{}, fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
	mode := c.modes[idx]

	registry := c.registry
	if len(mode.Symbols) > 0 {
		registry = c.registry.Filter(func(d combo.Definition) bool {
			return d.UsesOnly(mode.Symbols)
		})
	}

	return Resolved{Mode: mode, Registry: registry}, nil
}
