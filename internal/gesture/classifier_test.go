package gesture

import (
	"testing"

	"github.com/ayusman/mudra/internal/detector"
)

func TestClassifier_Rules(t *testing.T) {
	tests := []struct {
		name string
		hand detector.HandLandmarks
		want Symbol
	}{
		{"thumbs up fixture", detector.ThumbsUpLandmarks(), ThumbsUp},
		{"open palm fixture", detector.OpenPalmLandmarks(), OpenHand},
		{"fist", detector.PoseLandmarks(detector.Pose{}), ClosedFist},
		{"thumb only", detector.PoseLandmarks(detector.Pose{Thumb: true}), ThumbsUp},
		{"point", detector.PoseLandmarks(detector.Pose{Index: true}), Point},
		{"point with thumb out", detector.PoseLandmarks(detector.Pose{Thumb: true, Index: true}), Point},
		{"victory", detector.PoseLandmarks(detector.Pose{Index: true, Middle: true}), Victory},
		{"rock on", detector.PoseLandmarks(detector.Pose{Index: true, Pinky: true}), RockOn},
		{"pinch", detector.PoseLandmarks(detector.Pose{Index: true, Pinch: true}), Pinch},
		{"ok sign", detector.PoseLandmarks(detector.Pose{Index: true, Middle: true, Ring: true, Pinky: true, Pinch: true}), OKSign},
		{"open hand pose", detector.PoseLandmarks(detector.Pose{Thumb: true, Index: true, Middle: true, Ring: true, Pinky: true}), OpenHand},
	}

	c := NewClassifier(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sym, conf, ok := c.Classify([]detector.HandLandmarks{tt.hand})
			if !ok {
				t.Fatalf("expected pose to be recognized")
			}
			if sym != tt.want {
				t.Errorf("Classify() = %q, want %q", sym, tt.want)
			}
			if conf <= 0.5 || conf > tt.hand.Score {
				t.Errorf("confidence %f out of range (0.5, %f]", conf, tt.hand.Score)
			}
		})
	}
}

func TestClassifier_NoHands(t *testing.T) {
	sym, conf, ok := NewClassifier(nil).Classify(nil)
	if !ok || sym != NoHand || conf != 1.0 {
		t.Errorf("Classify(nil) = (%q, %f, %v), want (no_hand, 1, true)", sym, conf, ok)
	}
}

func TestClassifier_Unrecognized(t *testing.T) {
	hand := detector.PoseLandmarks(detector.Pose{Index: true, Ring: true})

	if sym, _, ok := NewClassifier(nil).Classify([]detector.HandLandmarks{hand}); ok {
		t.Errorf("expected index+ring pose to be unrecognized, got %q", sym)
	}
}

func TestClassifier_PicksMostConfidentHand(t *testing.T) {
	fist := detector.PoseLandmarks(detector.Pose{})
	fist.Score = 0.6
	palm := detector.OpenPalmLandmarks()

	sym, _, ok := NewClassifier(nil).Classify([]detector.HandLandmarks{fist, palm})
	if !ok || sym != OpenHand {
		t.Errorf("expected open_hand from the higher scored hand, got %q", sym)
	}
}

func TestClassifier_TemplatePrecedence(t *testing.T) {
	hand := detector.PoseLandmarks(detector.Pose{Index: true, Ring: true})
	normalized := hand.Normalize()

	templates := NewTemplateMatcher()
	templates.SetTemplate(&Template{Symbol: RockOn, Landmarks: normalized.Points[:]})

	c := NewClassifier(templates)
	sym, conf, ok := c.Classify([]detector.HandLandmarks{hand})
	if !ok || sym != RockOn {
		t.Fatalf("expected trained rock_on, got %q ok=%v", sym, ok)
	}
	if conf < 0.9 {
		t.Errorf("expected near-exact template confidence, got %f", conf)
	}

	// Rules still apply to poses far from any template.
	if sym, _, _ := c.Classify([]detector.HandLandmarks{detector.OpenPalmLandmarks()}); sym != OpenHand {
		t.Errorf("expected open_hand from rules, got %q", sym)
	}
}
