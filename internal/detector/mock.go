package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector returns whatever hands the caller staged. It stands in for
// MediaPipe in tests and when the hand service is not installed.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
}

// NewMockDetector returns a detector that sees no hands.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands stages the hands every following Detect returns.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError makes Detect fail with err. A nil err clears it.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect implements Detector.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close implements Detector.
func (m *MockDetector) Close() error { return nil }

// recordedHand lays out a captured right hand: the wrist, then CMC to tip for
// the thumb and MCP to tip for every other finger.
func recordedHand(wrist Point3D, chains [NumFingers][4]Point3D) HandLandmarks {
	hand := HandLandmarks{Handedness: "Right", Score: 0.95}
	hand.Points[Wrist] = wrist
	for f, chain := range chains {
		for j, p := range chain {
			hand.Points[ThumbCMC+4*f+j] = p
		}
	}
	return hand
}

// ThumbsUpLandmarks is a recorded thumbs_up: thumb straight up, the other
// fingers folded into the palm.
func ThumbsUpLandmarks() HandLandmarks {
	return recordedHand(Point3D{0.5, 0.8, 0}, [NumFingers][4]Point3D{
		Thumb:  {{0.55, 0.75, 0}, {0.58, 0.65, 0}, {0.58, 0.50, 0}, {0.58, 0.35, 0}},
		Index:  {{0.55, 0.70, -0.02}, {0.55, 0.68, -0.05}, {0.52, 0.70, -0.04}, {0.50, 0.72, -0.02}},
		Middle: {{0.50, 0.68, -0.02}, {0.50, 0.66, -0.05}, {0.47, 0.68, -0.04}, {0.45, 0.70, -0.02}},
		Ring:   {{0.45, 0.70, -0.02}, {0.45, 0.68, -0.05}, {0.42, 0.70, -0.04}, {0.40, 0.72, -0.02}},
		Pinky:  {{0.40, 0.72, -0.02}, {0.40, 0.70, -0.05}, {0.37, 0.72, -0.04}, {0.35, 0.74, -0.02}},
	})
}

// OpenPalmLandmarks is a recorded open_hand with the thumb out to the side.
func OpenPalmLandmarks() HandLandmarks {
	return recordedHand(Point3D{0.5, 0.8, 0}, [NumFingers][4]Point3D{
		Thumb:  {{0.55, 0.75, 0.02}, {0.62, 0.70, 0.03}, {0.68, 0.65, 0.03}, {0.73, 0.60, 0.03}},
		Index:  {{0.55, 0.68, 0}, {0.57, 0.55, 0}, {0.58, 0.45, 0}, {0.58, 0.35, 0}},
		Middle: {{0.50, 0.66, 0}, {0.50, 0.52, 0}, {0.50, 0.40, 0}, {0.50, 0.28, 0}},
		Ring:   {{0.45, 0.68, 0}, {0.43, 0.55, 0}, {0.42, 0.45, 0}, {0.42, 0.35, 0}},
		Pinky:  {{0.40, 0.70, 0}, {0.37, 0.60, 0}, {0.35, 0.50, 0}, {0.34, 0.42, 0}},
	})
}

// Pose describes which digits are extended in a synthetic hand.
// Pinch brings the thumb tip onto the index tip.
type Pose struct {
	Thumb  bool
	Index  bool
	Middle bool
	Ring   bool
	Pinky  bool
	Pinch  bool
}

// fingerBaseX is the knuckle column of each non-thumb finger.
var fingerBaseX = [NumFingers]float64{Index: 0.56, Middle: 0.50, Ring: 0.45, Pinky: 0.40}

// PoseLandmarks builds an upright right hand in image coordinates matching pose.
// Extended fingers point straight up from their knuckle; curled fingers fold
// back towards the palm.
func PoseLandmarks(pose Pose) HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	extended := [NumFingers]bool{
		Thumb:  pose.Thumb,
		Index:  pose.Index,
		Middle: pose.Middle,
		Ring:   pose.Ring,
		Pinky:  pose.Pinky,
	}
	for f := Index; f < NumFingers; f++ {
		x := fingerBaseX[f]
		joints := fingerJoints[f]
		landmarks.Points[joints[0]] = Point3D{X: x, Y: 0.68, Z: 0.0}
		if extended[f] {
			landmarks.Points[joints[1]] = Point3D{X: x, Y: 0.55, Z: 0.0}
			landmarks.Points[joints[2]] = Point3D{X: x, Y: 0.45, Z: 0.0}
			landmarks.Points[joints[3]] = Point3D{X: x, Y: 0.35, Z: 0.0}
		} else {
			landmarks.Points[joints[1]] = Point3D{X: x, Y: 0.62, Z: -0.04}
			landmarks.Points[joints[2]] = Point3D{X: x, Y: 0.66, Z: -0.06}
			landmarks.Points[joints[3]] = Point3D{X: x, Y: 0.70, Z: -0.03}
		}
	}

	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.76, Z: 0.0}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.60, Y: 0.70, Z: 0.0}
	if pose.Thumb || pose.Pinch {
		landmarks.Points[ThumbIP] = Point3D{X: 0.66, Y: 0.62, Z: 0.0}
		landmarks.Points[ThumbTip] = Point3D{X: 0.72, Y: 0.54, Z: 0.0}
	} else {
		landmarks.Points[ThumbIP] = Point3D{X: 0.60, Y: 0.66, Z: -0.02}
		landmarks.Points[ThumbTip] = Point3D{X: 0.54, Y: 0.67, Z: -0.03}
	}

	if pose.Pinch {
		tip := landmarks.Points[IndexTip]
		landmarks.Points[ThumbTip] = Point3D{X: tip.X + 0.01, Y: tip.Y + 0.01, Z: tip.Z}
	}

	return landmarks
}
