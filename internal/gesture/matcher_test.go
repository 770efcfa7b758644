package gesture

import (
	"testing"

	"github.com/ayusman/mudra/internal/detector"
)

func templateFrom(sym Symbol, hand detector.HandLandmarks, tolerance float64) *Template {
	normalized := hand.Normalize()
	return &Template{
		Symbol:    sym,
		Landmarks: normalized.Points[:],
		Tolerance: tolerance,
	}
}

func TestTemplateMatcher_Match(t *testing.T) {
	matcher := NewTemplateMatcher()
	matcher.SetTemplate(templateFrom(ThumbsUp, detector.ThumbsUpLandmarks(), 0.5))

	input := detector.ThumbsUpLandmarks()
	matches := matcher.Match(&input)

	if len(matches) == 0 {
		t.Fatal("expected at least one match for thumbs up input")
	}
	if matches[0].Template.Symbol != ThumbsUp {
		t.Errorf("expected match for thumbs_up, got %q", matches[0].Template.Symbol)
	}
	if matches[0].Score < 0.9 {
		t.Errorf("expected high score (>0.9) for matching gesture, got %f", matches[0].Score)
	}
	if matches[0].Distance > 0.1 {
		t.Errorf("expected low distance (<0.1) for matching gesture, got %f", matches[0].Distance)
	}
}

func TestTemplateMatcher_NoMatch(t *testing.T) {
	matcher := NewTemplateMatcher()
	matcher.SetTemplate(templateFrom(ThumbsUp, detector.ThumbsUpLandmarks(), 0.3))

	input := detector.OpenPalmLandmarks()
	if matches := matcher.Match(&input); len(matches) != 0 {
		t.Errorf("expected no match for open palm, got %d", len(matches))
	}
}

func TestTemplateMatcher_SetReplacesAndRemove(t *testing.T) {
	matcher := NewTemplateMatcher()

	matcher.SetTemplate(templateFrom(ThumbsUp, detector.ThumbsUpLandmarks(), 0.5))
	matcher.SetTemplate(templateFrom(OpenHand, detector.OpenPalmLandmarks(), 0))
	matcher.SetTemplate(templateFrom(ThumbsUp, detector.ThumbsUpLandmarks(), 0.8))

	if matcher.Len() != 2 {
		t.Fatalf("expected 2 templates, got %d", matcher.Len())
	}
	if matcher.templates[0].Tolerance != 0.8 {
		t.Errorf("expected replaced template tolerance 0.8, got %f", matcher.templates[0].Tolerance)
	}
	if matcher.templates[1].Tolerance != DefaultTolerance {
		t.Errorf("expected default tolerance, got %f", matcher.templates[1].Tolerance)
	}

	matcher.RemoveTemplate(ThumbsUp)
	if matcher.Len() != 1 || matcher.templates[0].Symbol != OpenHand {
		t.Errorf("expected only open_hand to remain")
	}

	// Removing an absent template is a no-op.
	matcher.RemoveTemplate(Pinch)
	if matcher.Len() != 1 {
		t.Errorf("expected 1 template, got %d", matcher.Len())
	}
}

func TestTemplateMatcher_IgnoresInvalid(t *testing.T) {
	matcher := NewTemplateMatcher()
	matcher.SetTemplate(nil)
	matcher.SetTemplate(&Template{Symbol: "wave"})
	matcher.SetTemplate(&Template{Symbol: Point, Landmarks: make([]detector.Point3D, 3)})

	if matcher.Len() != 1 {
		t.Fatalf("expected only the valid symbol to be stored, got %d", matcher.Len())
	}

	// A template with the wrong landmark count never matches.
	input := detector.OpenPalmLandmarks()
	if matches := matcher.Match(&input); len(matches) != 0 {
		t.Errorf("expected no matches, got %d", len(matches))
	}
	if matches := matcher.Match(nil); matches != nil {
		t.Errorf("expected nil for nil input")
	}
}

func TestEuclideanDistance(t *testing.T) {
	a := []detector.Point3D{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}}
	b := []detector.Point3D{{X: 0, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}}

	if d := euclideanDistance(a, a); d != 0 {
		t.Errorf("expected 0 for identical points, got %f", d)
	}
	if d := euclideanDistance(a, b); d != 1.0 {
		t.Errorf("expected 1.0, got %f", d)
	}
	if d := euclideanDistance(nil, nil); d != 0 {
		t.Errorf("expected 0 for empty slices, got %f", d)
	}
}
