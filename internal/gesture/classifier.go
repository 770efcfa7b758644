package gesture

import (
	"math"

	"github.com/ayusman/mudra/internal/detector"
)

const (
	// extendedRatio separates curled from extended digits, see HandLandmarks.Extension.
	extendedRatio = 1.1
	// pinchRatio is the thumb to index tip distance, in hand units, below which
	// the two are touching.
	pinchRatio = 0.35
	// A digit whose ratio sits within clarityBand of neutralRatio is ambiguous.
	neutralRatio = 1.05
	clarityBand  = 0.25
)

// Classifier maps detected hands to a gesture symbol. Trained templates take
// precedence over the built-in finger rules.
type Classifier struct {
	templates *TemplateMatcher
}

// NewClassifier returns a Classifier. templates may be nil.
func NewClassifier(templates *TemplateMatcher) *Classifier {
	if templates == nil {
		templates = NewTemplateMatcher()
	}
	return &Classifier{templates: templates}
}

// Templates returns the matcher holding trained templates.
func (c *Classifier) Templates() *TemplateMatcher {
	return c.templates
}

// Classify picks the most confident hand and returns its symbol and confidence.
// No hands yields NoHand at full confidence. ok is false when a hand is present
// but its pose matches no symbol.
func (c *Classifier) Classify(hands []detector.HandLandmarks) (Symbol, float64, bool) {
	if len(hands) == 0 {
		return NoHand, 1.0, true
	}

	best := &hands[0]
	for i := 1; i < len(hands); i++ {
		if hands[i].Score > best.Score {
			best = &hands[i]
		}
	}

	if matches := c.templates.Match(best); len(matches) > 0 {
		return matches[0].Template.Symbol, clamp01(best.Score * matches[0].Score), true
	}

	sym, ok := classifyPose(best)
	if !ok {
		return "", 0, false
	}
	return sym, confidence(best), true
}

func classifyPose(h *detector.HandLandmarks) (Symbol, bool) {
	var ext [detector.NumFingers]bool
	for f := detector.Thumb; f < detector.NumFingers; f++ {
		ext[f] = h.Extension(f) > extendedRatio
	}

	index, middle, ring, pinky := ext[detector.Index], ext[detector.Middle], ext[detector.Ring], ext[detector.Pinky]

	if ext[detector.Thumb] && h.PinchDistance() < pinchRatio {
		if middle && ring && pinky {
			return OKSign, true
		}
		return Pinch, true
	}

	switch {
	case index && middle && ring && pinky:
		return OpenHand, true
	case !index && !middle && !ring && !pinky:
		if ext[detector.Thumb] && h.ThumbUp() {
			return ThumbsUp, true
		}
		if !ext[detector.Thumb] {
			return ClosedFist, true
		}
	case index && !middle && !ring && !pinky:
		return Point, true
	case index && middle && !ring && !pinky:
		return Victory, true
	case index && !middle && !ring && pinky:
		return RockOn, true
	}

	return "", false
}

// confidence scales the detector score by how unambiguous each digit is.
func confidence(h *detector.HandLandmarks) float64 {
	var clarity float64
	for f := detector.Thumb; f < detector.NumFingers; f++ {
		clarity += math.Min(1, math.Abs(h.Extension(f)-neutralRatio)/clarityBand)
	}
	clarity /= float64(detector.NumFingers)

	return clamp01(h.Score * (0.5 + 0.5*clarity))
}
