package gesture

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ayusman/mudra/internal/detector"
)

// ErrNoSamples is returned when training is attempted without samples.
var ErrNoSamples = errors.New("no samples provided")

// Trainer processes recorded samples into symbol templates.
type Trainer struct{}

// NewTrainer creates a new Trainer instance.
func NewTrainer() *Trainer {
	return &Trainer{}
}

// Sample is one recorded hand pose.
type Sample struct {
	Landmarks []detector.Point3D `json:"landmarks"`
	Timestamp int64              `json:"timestamp"`
}

// TrainStatic averages multiple landmark samples point by point.
func (t *Trainer) TrainStatic(samples []json.RawMessage) ([]detector.Point3D, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}

	all := make([][]detector.Point3D, 0, len(samples))
	for i, raw := range samples {
		var sample Sample
		if err := json.Unmarshal(raw, &sample); err != nil {
			return nil, fmt.Errorf("parse sample %d: %w", i, err)
		}
		if len(sample.Landmarks) == 0 {
			return nil, fmt.Errorf("sample %d has no landmarks", i)
		}
		all = append(all, sample.Landmarks)
	}

	numPoints := len(all[0])
	for i, landmarks := range all {
		if len(landmarks) != numPoints {
			return nil, fmt.Errorf("sample %d has %d landmarks, expected %d", i, len(landmarks), numPoints)
		}
	}

	averaged := make([]detector.Point3D, numPoints)
	n := float64(len(all))
	for i := 0; i < numPoints; i++ {
		var sumX, sumY, sumZ float64
		for _, landmarks := range all {
			sumX += landmarks[i].X
			sumY += landmarks[i].Y
			sumZ += landmarks[i].Z
		}
		averaged[i] = detector.Point3D{X: sumX / n, Y: sumY / n, Z: sumZ / n}
	}

	return averaged, nil
}

// Train builds a normalized template for symbol from full-hand samples.
func (t *Trainer) Train(symbol Symbol, samples []json.RawMessage) (*Template, error) {
	if !symbol.Valid() || symbol == NoHand {
		return nil, fmt.Errorf("cannot train symbol %q", symbol)
	}

	averaged, err := t.TrainStatic(samples)
	if err != nil {
		return nil, err
	}
	if len(averaged) != detector.NumLandmarks {
		return nil, fmt.Errorf("samples have %d landmarks, expected %d", len(averaged), detector.NumLandmarks)
	}

	var hand detector.HandLandmarks
	copy(hand.Points[:], averaged)
	normalized := hand.Normalize()

	return &Template{
		Symbol:    symbol,
		Landmarks: normalized.Points[:],
		Tolerance: DefaultTolerance,
		Samples:   len(samples),
	}, nil
}
