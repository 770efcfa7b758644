package objective

import (
	"fmt"
	"math"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// CorrectConfidence is the confidence at which a gesture counts as correct.
const CorrectConfidence = 0.7

// EventKind names the inputs the tracker consumes.
type EventKind string

const (
	GesturePerformed EventKind = "gesture_performed"
	ComboCompleted   EventKind = "combo_completed"
	ObjectInteracted EventKind = "object_interacted"
	ScoreUpdated     EventKind = "score_updated"
)

// Payload carries the fields relevant to an EventKind.
type Payload struct {
	Symbol     gesture.Symbol
	Confidence float64
	ComboID    string
	ObjectID   string
	// Score is the session total after the update.
	Score int
}

// Counters are the cumulative session counters objectives are computed from.
type Counters struct {
	Gestures        map[gesture.Symbol]int `json:"gestures"`
	TotalGestures   int                    `json:"total_gestures"`
	CorrectGestures int                    `json:"correct_gestures"`
	Combos          map[string]int         `json:"combos"`
	TotalCombos     int                    `json:"total_combos"`
	Objects         int                    `json:"objects"`
	Score           int                    `json:"score"`
	Elapsed         time.Duration          `json:"elapsed"`
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the clock used for time objectives.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// Tracker owns a session's objectives and counters. It is not safe for
// concurrent use.
type Tracker struct {
	objectives []Objective

	gestures      map[gesture.Symbol]int
	totalGestures int
	correct       int
	combos        map[string]int
	totalCombos   int
	objects       map[string]struct{}
	score         int

	now       func() time.Time
	startedAt time.Time
	elapsed   time.Duration
}

// NewTracker validates objectives and starts the session clock.
func NewTracker(objectives []Objective, opts ...Option) (*Tracker, error) {
	t := &Tracker{
		objectives: make([]Objective, 0, len(objectives)),
		gestures:   make(map[gesture.Symbol]int),
		combos:     make(map[string]int),
		objects:    make(map[string]struct{}),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}

	seen := make(map[string]bool, len(objectives))
	for _, o := range objectives {
		if err := o.validate(); err != nil {
			return nil, err
		}
		if seen[o.ID] {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidObjective, o.ID)
		}
		seen[o.ID] = true
		o.Progress = 0
		o.Completed = false
		t.objectives = append(t.objectives, o)
	}
	t.startedAt = t.now()

	return t, nil
}

// Update applies one event and returns the objectives it completed.
func (t *Tracker) Update(kind EventKind, p Payload) []Objective {
	switch kind {
	case GesturePerformed:
		t.totalGestures++
		t.gestures[p.Symbol]++
		if p.Symbol != gesture.NoHand && p.Confidence >= CorrectConfidence {
			t.correct++
		}
	case ComboCompleted:
		t.totalCombos++
		t.combos[p.ComboID]++
	case ObjectInteracted:
		if p.ObjectID != "" {
			t.objects[p.ObjectID] = struct{}{}
		}
	case ScoreUpdated:
		t.score = p.Score
	default:
		return nil
	}
	return t.Tick(t.now())
}

// Tick advances the session clock to now and returns objectives it completed.
func (t *Tracker) Tick(now time.Time) []Objective {
	if d := now.Sub(t.startedAt); d > t.elapsed {
		t.elapsed = d
	}

	var done []Objective
	for i := range t.objectives {
		o := &t.objectives[i]
		if o.Completed {
			continue
		}
		progress, complete := t.evaluate(o)
		o.Progress = progress
		if complete {
			o.Completed = true
			o.Progress = 100
			done = append(done, *o)
		}
	}
	return done
}

func (t *Tracker) evaluate(o *Objective) (progress float64, complete bool) {
	switch o.Kind {
	case KindCount:
		n := t.recognizedGestures()
		if o.RelatedSymbol != "" {
			n = t.gestures[o.RelatedSymbol]
		}
		return ratio(float64(n), o.Target), float64(n) >= o.Target
	case KindCombo:
		n := t.totalCombos
		if o.RelatedCombo != "" {
			n = t.combos[o.RelatedCombo]
		}
		return ratio(float64(n), o.Target), float64(n) >= o.Target
	case KindInteraction:
		n := float64(len(t.objects))
		return ratio(n, o.Target), n >= o.Target
	case KindTime:
		s := t.elapsed.Seconds()
		return ratio(s, o.Target), s >= o.Target
	case KindAccuracy:
		acc := t.Accuracy()
		// Progress is rounded for display while completion uses the raw ratio,
		// so progress can read 100.0 just below the target.
		progress := math.Round(ratio(acc, o.Target)*10) / 10
		return progress, acc >= o.Target && t.totalGestures >= o.MinSamples && t.totalGestures > 0
	case KindScore:
		s := float64(t.score)
		return ratio(s, o.Target), s >= o.Target
	}
	return 0, false
}

func (t *Tracker) recognizedGestures() int {
	return t.totalGestures - t.gestures[gesture.NoHand]
}

// ratio returns value/target as a percentage capped at 100.
func ratio(value, target float64) float64 {
	return math.Min(100, value/target*100)
}

// Accuracy returns the percentage of gestures that were correct.
func (t *Tracker) Accuracy() float64 {
	if t.totalGestures == 0 {
		return 0
	}
	return float64(t.correct) / float64(t.totalGestures) * 100
}

// Objectives returns a copy of every objective.
func (t *Tracker) Objectives() []Objective {
	out := make([]Objective, len(t.objectives))
	copy(out, t.objectives)
	return out
}

// Overall returns the mean progress across objectives, or 0 when there are none.
func (t *Tracker) Overall() float64 {
	if len(t.objectives) == 0 {
		return 0
	}
	var sum float64
	for _, o := range t.objectives {
		sum += o.Progress
	}
	return sum / float64(len(t.objectives))
}

// AllCompleted reports whether there is at least one objective and all are done.
func (t *Tracker) AllCompleted() bool {
	if len(t.objectives) == 0 {
		return false
	}
	for _, o := range t.objectives {
		if !o.Completed {
			return false
		}
	}
	return true
}

// Counters returns a snapshot of the session counters.
func (t *Tracker) Counters() Counters {
	c := Counters{
		Gestures:        make(map[gesture.Symbol]int, len(t.gestures)),
		TotalGestures:   t.totalGestures,
		CorrectGestures: t.correct,
		Combos:          make(map[string]int, len(t.combos)),
		TotalCombos:     t.totalCombos,
		Objects:         len(t.objects),
		Score:           t.score,
		Elapsed:         t.elapsed,
	}
	for k, v := range t.gestures {
		c.Gestures[k] = v
	}
	for k, v := range t.combos {
		c.Combos[k] = v
	}
	return c
}
