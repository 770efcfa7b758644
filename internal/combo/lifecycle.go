package combo

import (
	"fmt"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// State is the lifecycle state of the active combo slot.
type State int

const (
	StateIdle State = iota
	StateTracking
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTracking:
		return "tracking"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ActiveCombo is the combo currently being attempted.
type ActiveCombo struct {
	Definition Definition
	Progress   float64
	Matched    int
	StartedAt  time.Time
}

// TransitionKind tags a Transition.
type TransitionKind int

const (
	// TransitionNone means the event changed nothing observable.
	TransitionNone TransitionKind = iota
	// TransitionDetected is Idle to Tracking.
	TransitionDetected
	// TransitionProgress is a progress change while Tracking.
	TransitionProgress
	// TransitionCompleted is the one-shot completion; the slot is Idle afterwards.
	TransitionCompleted
	// TransitionFailed is the one-shot failure; the slot is Idle afterwards.
	TransitionFailed
	// TransitionSuperseded replaces the active combo with a better partial match.
	TransitionSuperseded
)

func (k TransitionKind) String() string {
	switch k {
	case TransitionNone:
		return "none"
	case TransitionDetected:
		return "detected"
	case TransitionProgress:
		return "progress"
	case TransitionCompleted:
		return "completed"
	case TransitionFailed:
		return "failed"
	case TransitionSuperseded:
		return "superseded"
	default:
		return "unknown"
	}
}

// Transition is the result of advancing the lifecycle by one event.
type Transition struct {
	Kind TransitionKind
	// Combo is the combo the transition is about. For Failed it is the combo
	// that broke; for Superseded it is the new active combo.
	Combo ActiveCombo
	// Previous is the replaced combo on Superseded.
	Previous *ActiveCombo
}

// Lifecycle owns the single active combo slot.
type Lifecycle struct {
	matcher *Matcher
	active  *ActiveCombo
}

// NewLifecycle creates an idle Lifecycle.
func NewLifecycle(matcher *Matcher) *Lifecycle {
	return &Lifecycle{matcher: matcher}
}

// State returns Idle or Tracking. Completed and Failed are never observable
// between events.
func (l *Lifecycle) State() State {
	if l.active == nil {
		return StateIdle
	}
	return StateTracking
}

// Active returns a copy of the active combo.
func (l *Lifecycle) Active() (ActiveCombo, bool) {
	if l.active == nil {
		return ActiveCombo{}, false
	}
	a := *l.active
	a.Definition = a.Definition.clone()
	return a, true
}

// Reset drops the active combo.
func (l *Lifecycle) Reset() {
	l.active = nil
}

// Advance evaluates window after one new event and moves the state machine.
func (l *Lifecycle) Advance(window []gesture.Symbol, now time.Time) Transition {
	if l.active == nil {
		return l.fromIdle(window, now)
	}
	return l.fromTracking(window, now)
}

func (l *Lifecycle) fromIdle(window []gesture.Symbol, now time.Time) Transition {
	best, ok := l.matcher.Best(window)
	if !ok {
		return Transition{Kind: TransitionNone}
	}
	if best.Result.IsComplete {
		return l.complete(best.Definition, now, now)
	}

	l.active = &ActiveCombo{
		Definition: best.Definition,
		Progress:   best.Result.Progress,
		Matched:    best.Result.Matched,
		StartedAt:  now,
	}
	return Transition{Kind: TransitionDetected, Combo: *l.active}
}

func (l *Lifecycle) fromTracking(window []gesture.Symbol, now time.Time) Transition {
	current := *l.active
	r := Evaluate(window, current.Definition.Sequence)
	if r.IsComplete {
		return l.complete(current.Definition, current.StartedAt, now)
	}

	best, found := l.matcher.Best(window)
	if found && best.Result.IsComplete {
		return l.complete(best.Definition, now, now)
	}

	if r.IsPartial {
		if found && best.Definition.ID != current.Definition.ID && best.Result.Matched > r.Matched {
			return l.supersede(current, best, now)
		}
		if r.Matched == current.Matched {
			return Transition{Kind: TransitionNone}
		}
		if r.Matched < current.Matched {
			// The chain restarted from an earlier step.
			l.active.StartedAt = now
		}
		l.active.Progress = r.Progress
		l.active.Matched = r.Matched
		return Transition{Kind: TransitionProgress, Combo: *l.active}
	}

	if found {
		return l.supersede(current, best, now)
	}

	l.active = nil
	return Transition{Kind: TransitionFailed, Combo: current}
}

func (l *Lifecycle) complete(def Definition, startedAt, now time.Time) Transition {
	l.active = nil
	return Transition{
		Kind: TransitionCompleted,
		Combo: ActiveCombo{
			Definition: def,
			Progress:   1.0,
			Matched:    len(def.Sequence),
			StartedAt:  startedAt,
		},
	}
}

func (l *Lifecycle) supersede(previous ActiveCombo, next Candidate, now time.Time) Transition {
	l.active = &ActiveCombo{
		Definition: next.Definition,
		Progress:   next.Result.Progress,
		Matched:    next.Result.Matched,
		StartedAt:  now,
	}
	return Transition{Kind: TransitionSuperseded, Combo: *l.active, Previous: &previous}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(text []byte) error {
	for _, st := range []State{StateIdle, StateTracking, StateCompleted, StateFailed} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown combo state %q", text)
}
