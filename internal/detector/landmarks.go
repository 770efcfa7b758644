// Package detector provides hand detection interfaces and the landmark
// geometry the gesture classifier reads.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Finger identifies one digit of the hand.
type Finger int

const (
	Thumb Finger = iota
	Index
	Middle
	Ring
	Pinky
	NumFingers
)

// String returns the lowercase finger name.
func (f Finger) String() string {
	switch f {
	case Thumb:
		return "thumb"
	case Index:
		return "index"
	case Middle:
		return "middle"
	case Ring:
		return "ring"
	case Pinky:
		return "pinky"
	default:
		return "unknown"
	}
}

// fingerJoints lists MCP, PIP, DIP, TIP per finger. The thumb has no DIP so IP repeats.
var fingerJoints = [NumFingers][4]int{
	Thumb:  {ThumbMCP, ThumbIP, ThumbIP, ThumbTip},
	Index:  {IndexMCP, IndexPIP, IndexDIP, IndexTip},
	Middle: {MiddleMCP, MiddlePIP, MiddleDIP, MiddleTip},
	Ring:   {RingMCP, RingPIP, RingDIP, RingTip},
	Pinky:  {PinkyMCP, PinkyPIP, PinkyDIP, PinkyTip},
}

// Point3D represents a 3D point in space with x, y, z coordinates.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// distance3D calculates the Euclidean distance between two 3D points.
func distance3D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Scale returns the wrist to middle-MCP distance, the hand's unit length.
func (h *HandLandmarks) Scale() float64 {
	return distance3D(h.Points[Wrist], h.Points[MiddleMCP])
}

// Extension returns how far a finger reaches out relative to its middle joint.
//
// For the four fingers it is dist(wrist, tip) / dist(wrist, PIP): a curled finger
// folds its tip back towards the palm and reads below 1. The thumb folds across
// the palm instead, so it is measured against the index knuckle:
// dist(indexMCP, thumbTip) / dist(indexMCP, thumbIP).
func (h *HandLandmarks) Extension(f Finger) float64 {
	if f < Thumb || f >= NumFingers {
		return 0
	}

	var anchor, mid, tip Point3D
	if f == Thumb {
		anchor = h.Points[IndexMCP]
		mid = h.Points[ThumbIP]
		tip = h.Points[ThumbTip]
	} else {
		joints := fingerJoints[f]
		anchor = h.Points[Wrist]
		mid = h.Points[joints[1]]
		tip = h.Points[joints[3]]
	}

	base := distance3D(anchor, mid)
	if base < 1e-10 {
		return 0
	}
	return distance3D(anchor, tip) / base
}

// PinchDistance returns the thumb tip to index tip distance in hand units.
func (h *HandLandmarks) PinchDistance() float64 {
	scale := h.Scale()
	if scale < 1e-10 {
		return math.Inf(1)
	}
	return distance3D(h.Points[ThumbTip], h.Points[IndexTip]) / scale
}

// ThumbUp reports whether the thumb tip sits above the wrist in image space,
// where Y grows downwards.
func (h *HandLandmarks) ThumbUp() bool {
	return h.Points[ThumbTip].Y < h.Points[ThumbMCP].Y && h.Points[ThumbTip].Y < h.Points[Wrist].Y
}

// Normalize normalizes the hand landmarks relative to wrist position and hand size.
// The normalized landmarks have the wrist at origin (0,0,0) and are scaled
// so that the distance from wrist to middle finger MCP is 1.0.
// Returns a new HandLandmarks instance with normalized points.
func (h *HandLandmarks) Normalize() *HandLandmarks {
	if h == nil {
		return nil
	}

	normalized := &HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}

	wrist := h.Points[Wrist]
	for i := 0; i < NumLandmarks; i++ {
		normalized.Points[i] = Point3D{
			X: h.Points[i].X - wrist.X,
			Y: h.Points[i].Y - wrist.Y,
			Z: h.Points[i].Z - wrist.Z,
		}
	}

	scale := distance3D(Point3D{}, normalized.Points[MiddleMCP])
	if scale < 1e-10 {
		return normalized
	}

	for i := 0; i < NumLandmarks; i++ {
		normalized.Points[i].X /= scale
		normalized.Points[i].Y /= scale
		normalized.Points[i].Z /= scale
	}

	return normalized
}
