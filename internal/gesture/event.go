package gesture

import (
	"encoding/json"
	"math"
	"time"
)

// Event is a single classified gesture. It is a value and never mutated after
// creation.
type Event struct {
	Symbol     Symbol    `json:"symbol"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewEvent builds an Event with the confidence clamped to [0,1].
func NewEvent(symbol Symbol, confidence float64, at time.Time) Event {
	return Event{
		Symbol:     symbol,
		Confidence: clamp01(confidence),
		Timestamp:  at,
	}
}

// Input is the per-frame record delivered by an upstream classifier.
// Landmarks and Timestamp are passed through for presentation only; ingestion
// time is always taken from the local clock.
type Input struct {
	Symbol     string          `json:"symbol"`
	Confidence *float64        `json:"confidence"`
	Landmarks  json.RawMessage `json:"landmarks,omitempty"`
	Timestamp  int64           `json:"timestamp,omitempty"`
}

// Sanitize returns the symbol and confidence to feed the pipeline. A missing or
// unknown symbol, or a missing confidence, is replaced with NoHand at
// confidence 0 and ok is false.
func (in Input) Sanitize() (sym Symbol, confidence float64, ok bool) {
	sym, valid := ParseSymbol(in.Symbol)
	if !valid || in.Confidence == nil {
		return NoHand, 0, false
	}
	return sym, clamp01(*in.Confidence), true
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
