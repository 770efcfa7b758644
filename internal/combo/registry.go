package combo

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/pkg/logger"
)

// Effect durations allowed for a combo.
const (
	MinEffectDuration = 2000 * time.Millisecond
	MaxEffectDuration = 8000 * time.Millisecond
)

// ErrInvalidDefinition is returned when a combo library fails validation.
var ErrInvalidDefinition = errors.New("invalid combo definition")

// Definition is a static combo loaded at startup.
type Definition struct {
	ID             string
	Name           string
	Sequence       []gesture.Symbol
	PointValue     int
	EffectTag      string
	EffectDuration time.Duration
}

func (d Definition) clone() Definition {
	d.Sequence = slices.Clone(d.Sequence)
	return d
}

// UsesOnly reports whether every step of the sequence is in symbols.
func (d Definition) UsesOnly(symbols []gesture.Symbol) bool {
	for _, s := range d.Sequence {
		if !slices.Contains(symbols, s) {
			return false
		}
	}
	return true
}

func (d Definition) validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidDefinition)
	}
	if len(d.Sequence) < 2 {
		return fmt.Errorf("%w: %s: sequence needs at least 2 steps, has %d", ErrInvalidDefinition, d.ID, len(d.Sequence))
	}
	for i, s := range d.Sequence {
		if !s.Valid() {
			return fmt.Errorf("%w: %s: step %d: unknown symbol %q", ErrInvalidDefinition, d.ID, i, s)
		}
	}
	if d.EffectDuration < MinEffectDuration || d.EffectDuration > MaxEffectDuration {
		return fmt.Errorf("%w: %s: effect duration %s outside [%s, %s]",
			ErrInvalidDefinition, d.ID, d.EffectDuration, MinEffectDuration, MaxEffectDuration)
	}
	return nil
}

// Registry is the ordered, immutable combo library. Order is significant: it
// breaks ties between equally good matches.
type Registry struct {
	defs  []Definition
	index map[string]int
	log   logger.Logger
}

// NewRegistry validates defs and builds a Registry that owns a copy of them.
func NewRegistry(defs []Definition) (*Registry, error) {
	r := &Registry{
		defs:  make([]Definition, 0, len(defs)),
		index: make(map[string]int, len(defs)),
		log:   logger.Named("combo"),
	}

	for _, d := range defs {
		if err := d.validate(); err != nil {
			return nil, err
		}
		if _, dup := r.index[d.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidDefinition, d.ID)
		}
		r.index[d.ID] = len(r.defs)
		r.defs = append(r.defs, d.clone())
	}

	return r, nil
}

// Get looks up a combo by id. Unknown ids are logged and reported with ok=false.
func (r *Registry) Get(id string) (Definition, bool) {
	i, ok := r.index[id]
	if !ok {
		r.log.Warn(context.Background(), "unknown combo id", logger.String("combo_id", id))
		return Definition{}, false
	}
	return r.defs[i].clone(), true
}

// All returns a deep copy of every definition in registry order.
func (r *Registry) All() []Definition {
	out := make([]Definition, len(r.defs))
	for i, d := range r.defs {
		out[i] = d.clone()
	}
	return out
}

// Len returns the number of combos.
func (r *Registry) Len() int {
	return len(r.defs)
}

// Filter returns a registry holding the definitions keep accepts, in order.
func (r *Registry) Filter(keep func(Definition) bool) *Registry {
	sub := &Registry{
		index: make(map[string]int),
		log:   r.log,
	}
	for _, d := range r.defs {
		if keep(d) {
			sub.index[d.ID] = len(sub.defs)
			sub.defs = append(sub.defs, d.clone())
		}
	}
	return sub
}

// DefaultDefinitions returns the built-in combo library.
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			ID:             "power_up",
			Name:           "Power Up",
			Sequence:       []gesture.Symbol{gesture.ClosedFist, gesture.Victory, gesture.ThumbsUp},
			PointValue:     100,
			EffectTag:      "glow",
			EffectDuration: 5000 * time.Millisecond,
		},
		{
			ID:             "shield",
			Name:           "Shield",
			Sequence:       []gesture.Symbol{gesture.OpenHand, gesture.ClosedFist, gesture.OpenHand},
			PointValue:     80,
			EffectTag:      "shield",
			EffectDuration: 6000 * time.Millisecond,
		},
		{
			ID:             "lightning",
			Name:           "Lightning",
			Sequence:       []gesture.Symbol{gesture.Point, gesture.Victory, gesture.OpenHand},
			PointValue:     120,
			EffectTag:      "lightning",
			EffectDuration: 3000 * time.Millisecond,
		},
		{
			ID:             "rock_star",
			Name:           "Rock Star",
			Sequence:       []gesture.Symbol{gesture.RockOn, gesture.ThumbsUp, gesture.RockOn},
			PointValue:     150,
			EffectTag:      "spin",
			EffectDuration: 4000 * time.Millisecond,
		},
		{
			ID:             "precision",
			Name:           "Precision",
			Sequence:       []gesture.Symbol{gesture.Pinch, gesture.OKSign},
			PointValue:     60,
			EffectTag:      "zoom",
			EffectDuration: 2000 * time.Millisecond,
		},
		{
			ID:             "grand_finale",
			Name:           "Grand Finale",
			Sequence:       []gesture.Symbol{gesture.OpenHand, gesture.Point, gesture.Victory, gesture.RockOn, gesture.OKSign},
			PointValue:     250,
			EffectTag:      "fireworks",
			EffectDuration: 8000 * time.Millisecond,
		},
	}
}

// FromConfig converts configured combos into definitions. Unknown symbols are
// reported as ErrInvalidDefinition.
func FromConfig(combos []config.Combo) ([]Definition, error) {
	defs := make([]Definition, 0, len(combos))
	for _, c := range combos {
		seq := make([]gesture.Symbol, 0, len(c.Sequence))
		for _, s := range c.Sequence {
			sym, ok := gesture.ParseSymbol(s)
			if !ok {
				return nil, fmt.Errorf("%w: %s: unknown symbol %q", ErrInvalidDefinition, c.ID, s)
			}
			seq = append(seq, sym)
		}
		name := c.Name
		if name == "" {
			name = c.ID
		}
		defs = append(defs, Definition{
			ID:             c.ID,
			Name:           name,
			Sequence:       seq,
			PointValue:     c.PointValue,
			EffectTag:      c.EffectTag,
			EffectDuration: time.Duration(c.EffectDurationMS) * time.Millisecond,
		})
	}
	return defs, nil
}

// Load builds the registry from cfg, falling back to the built-in library.
func Load(cfg *config.Config) (*Registry, error) {
	if cfg == nil || len(cfg.Combos) == 0 {
		return NewRegistry(DefaultDefinitions())
	}
	defs, err := FromConfig(cfg.Combos)
	if err != nil {
		return nil, err
	}
	return NewRegistry(defs)
}
