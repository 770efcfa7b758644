package gesture

import (
	"gonum.org/v1/gonum/stat"
)

// Stabilizer debounces per-frame classifications so that a held pose produces
// a single event. A symbol is emitted once it has been seen on minHold
// consecutive frames at or above minConfidence, and only if it differs from the
// previously emitted symbol. Relaxing the hand below minConfidence for minHold
// frames releases the pose, so the same symbol can be emitted again.
type Stabilizer struct {
	minHold       int
	minConfidence float64

	run     Symbol
	confs   []float64
	last    Symbol
	relaxed int
}

// NewStabilizer creates a Stabilizer. minHold below 1 is treated as 1.
func NewStabilizer(minHold int, minConfidence float64) *Stabilizer {
	if minHold < 1 {
		minHold = 1
	}
	return &Stabilizer{
		minHold:       minHold,
		minConfidence: minConfidence,
		confs:         make([]float64, 0, minHold),
	}
}

// Observe feeds one frame. It returns the symbol and its mean confidence over
// the held frames when a new stable symbol is reached.
func (s *Stabilizer) Observe(sym Symbol, confidence float64) (Symbol, float64, bool) {
	if confidence < s.minConfidence {
		s.relaxed++
		if s.relaxed >= s.minHold {
			s.run, s.last = "", ""
			s.confs = s.confs[:0]
		}
		return "", 0, false
	}
	s.relaxed = 0

	if sym != s.run {
		s.run = sym
		s.confs = s.confs[:0]
	}
	if len(s.confs) < s.minHold {
		s.confs = append(s.confs, confidence)
	}

	if len(s.confs) < s.minHold || s.run == s.last {
		return "", 0, false
	}

	s.last = s.run
	return s.run, stat.Mean(s.confs, nil), true
}

// Reset forgets the current run and the last emitted symbol.
func (s *Stabilizer) Reset() {
	s.run = ""
	s.last = ""
	s.relaxed = 0
	s.confs = s.confs[:0]
}
