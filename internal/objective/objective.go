// Package objective tracks session goals independently of scoring.
package objective

import (
	"errors"
	"fmt"
	"math"

	"github.com/ayusman/mudra/internal/gesture"
)

// ErrInvalidObjective is returned for objectives with an unknown kind or a
// non-positive target.
var ErrInvalidObjective = errors.New("invalid objective")

// Kind selects how an objective's progress is computed.
type Kind string

const (
	// KindCount counts performed gestures, optionally of one symbol.
	KindCount Kind = "count"
	// KindCombo counts completed combos, optionally of one combo id.
	KindCombo Kind = "combo"
	// KindInteraction counts distinct objects touched.
	KindInteraction Kind = "interaction"
	// KindTime counts elapsed seconds.
	KindTime Kind = "time"
	// KindAccuracy compares the correct gesture percentage with the target.
	KindAccuracy Kind = "accuracy"
	// KindScore compares the session score with the target.
	KindScore Kind = "score"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindCount, KindCombo, KindInteraction, KindTime, KindAccuracy, KindScore:
		return true
	}
	return false
}

// Objective is a session goal. Target and the Related fields are fixed at
// creation; Progress and Completed are maintained by the Tracker.
type Objective struct {
	ID            string         `json:"id"`
	Kind          Kind           `json:"kind"`
	Description   string         `json:"description,omitempty"`
	Target        float64        `json:"target"`
	RelatedSymbol gesture.Symbol `json:"related_symbol,omitempty"`
	RelatedCombo  string         `json:"related_combo,omitempty"`
	// MinSamples is the number of gestures an accuracy objective needs before
	// it can complete.
	MinSamples int     `json:"min_samples,omitempty"`
	Progress   float64 `json:"progress_percent"`
	Completed  bool    `json:"completed"`
}

func (o Objective) validate() error {
	if o.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidObjective)
	}
	if !o.Kind.Valid() {
		return fmt.Errorf("%w: %s: unknown kind %q", ErrInvalidObjective, o.ID, o.Kind)
	}
	if o.Target <= 0 || math.IsNaN(o.Target) {
		return fmt.Errorf("%w: %s: target must be positive", ErrInvalidObjective, o.ID)
	}
	if o.RelatedSymbol != "" && !o.RelatedSymbol.Valid() {
		return fmt.Errorf("%w: %s: unknown symbol %q", ErrInvalidObjective, o.ID, o.RelatedSymbol)
	}
	return nil
}
