package session

import (
	"time"

	"github.com/ayusman/mudra/internal/combo"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/objective"
	"github.com/ayusman/mudra/internal/reward"
)

// EventKind tags an Event.
type EventKind string

const (
	EventGesturePerformed   EventKind = "gesture_performed"
	EventComboDetected      EventKind = "combo_detected"
	EventComboProgress      EventKind = "combo_progress"
	EventComboCompleted     EventKind = "combo_completed"
	EventComboFailed        EventKind = "combo_failed"
	EventScoreUpdated       EventKind = "score_updated"
	EventObjectInteracted   EventKind = "object_interacted"
	EventObjectiveCompleted EventKind = "objective_completed"
	EventProgressUpdated    EventKind = "progress_updated"
	EventEffectStarted      EventKind = "effect_started"
	EventEffectExpired      EventKind = "effect_expired"
	EventSessionClosed      EventKind = "session_closed"
)

// Event is the outbound record of something that happened in a session.
// Exactly the field matching Kind is set.
type Event struct {
	Kind      EventKind `json:"kind"`
	SessionID string    `json:"session_id"`
	Seq       uint64    `json:"seq"`
	Timestamp time.Time `json:"timestamp"`

	Gesture   *gesture.Event       `json:"gesture,omitempty"`
	Combo     *ComboInfo           `json:"combo,omitempty"`
	Reward    *reward.Reward       `json:"reward,omitempty"`
	Score     *ScoreUpdate         `json:"score,omitempty"`
	ObjectID  string               `json:"object_id,omitempty"`
	Objective *objective.Objective `json:"objective,omitempty"`
	Progress  *ProgressUpdate      `json:"progress,omitempty"`
	Effect    *reward.Effect       `json:"effect,omitempty"`
}

// ComboInfo describes the combo a lifecycle event is about.
type ComboInfo struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Sequence  []gesture.Symbol `json:"sequence"`
	EffectTag string           `json:"effect_tag"`
	Progress  float64          `json:"progress"`
	Matched   int              `json:"matched"`
	StartedAt time.Time        `json:"started_at"`
	// Superseded is the id of the combo this one replaced.
	Superseded string `json:"superseded,omitempty"`
}

func comboInfo(a combo.ActiveCombo) *ComboInfo {
	return &ComboInfo{
		ID:        a.Definition.ID,
		Name:      a.Definition.Name,
		Sequence:  a.Definition.Sequence,
		EffectTag: a.Definition.EffectTag,
		Progress:  a.Progress,
		Matched:   a.Matched,
		StartedAt: a.StartedAt,
	}
}

// ScoreUpdate is the score change of one update.
type ScoreUpdate struct {
	Delta  int           `json:"delta"`
	Total  int           `json:"total"`
	Streak reward.Streak `json:"streak"`
}

// ProgressUpdate is the objective progress after an update.
type ProgressUpdate struct {
	Overall    float64               `json:"overall"`
	Objectives []objective.Objective `json:"objectives"`
}
