// Package reward scores completed combos and tracks the player's streak.
package reward

import (
	"math"
	"time"

	"github.com/ayusman/mudra/internal/combo"
)

// Scoring constants.
const (
	// ConfidenceFloor is the confidence above which a completion earns a bonus.
	ConfidenceFloor = 0.7
	// StreakBonusPerCombo is awarded per combo already in the streak.
	StreakBonusPerCombo = 10
)

// Reward is the immutable record of one scored completion.
type Reward struct {
	ComboID                 string    `json:"combo_id"`
	BasePoints              int       `json:"base_points"`
	BonusPoints             int       `json:"bonus_points"`
	TotalPoints             int       `json:"total_points"`
	ConfidenceAtCompletion  float64   `json:"confidence_at_completion"`
	StreakCountAtCompletion int       `json:"streak_count_at_completion"`
	Timestamp               time.Time `json:"timestamp"`
}

// Streak is the player's run of consecutive completions.
type Streak struct {
	Count      int     `json:"count"`
	MaxCount   int     `json:"max_count"`
	Multiplier float64 `json:"multiplier"`
}

// Multiplier is the score multiplier for a streak of count completions.
func Multiplier(count int) float64 {
	switch {
	case count >= 10:
		return 2.0
	case count >= 5:
		return 1.5
	case count >= 3:
		return 1.2
	default:
		return 1.0
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithDifficulty scales every total. Non-positive values are ignored.
func WithDifficulty(m float64) Option {
	return func(e *Engine) {
		if m > 0 {
			e.difficulty = m
		}
	}
}

// Engine scores completions. It is owned by one session and not safe for
// concurrent use.
type Engine struct {
	difficulty float64
	streak     Streak
	total      int
}

// NewEngine creates an Engine with an empty streak.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		difficulty: 1.0,
		streak:     Streak{Multiplier: 1.0},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OnComboCompleted scores a completion of def at the given confidence and
// extends the streak.
//
//	raw   = points + max(0, (confidence-0.7)*100) + streak*10
//	total = round(raw * streakMultiplier * difficulty)
//	bonus = max(0, total - points)
//
// The streak bonus and multiplier use the streak before this completion.
func (e *Engine) OnComboCompleted(def combo.Definition, confidence float64, now time.Time) Reward {
	base := float64(def.PointValue)
	confidenceBonus := math.Max(0, (confidence-ConfidenceFloor)*100)
	streakBonus := float64(e.streak.Count * StreakBonusPerCombo)

	raw := base + confidenceBonus + streakBonus
	total := int(math.Round(raw * e.streak.Multiplier * e.difficulty))

	r := Reward{
		ComboID:                 def.ID,
		BasePoints:              def.PointValue,
		BonusPoints:             max(0, total-def.PointValue),
		TotalPoints:             total,
		ConfidenceAtCompletion:  confidence,
		StreakCountAtCompletion: e.streak.Count,
		Timestamp:               now,
	}

	e.streak.Count++
	e.streak.MaxCount = max(e.streak.MaxCount, e.streak.Count)
	e.streak.Multiplier = Multiplier(e.streak.Count)
	e.total += total

	return r
}

// OnComboFailed breaks the streak.
func (e *Engine) OnComboFailed() {
	e.Reset()
}

// Reset breaks the streak without touching the max or the total, e.g. on pause.
func (e *Engine) Reset() {
	e.streak.Count = 0
	e.streak.Multiplier = 1.0
}

// Streak returns the current streak.
func (e *Engine) Streak() Streak {
	return e.streak
}

// Total returns the points accumulated in the session.
func (e *Engine) Total() int {
	return e.total
}

// Difficulty returns the difficulty multiplier.
func (e *Engine) Difficulty() float64 {
	return e.difficulty
}
