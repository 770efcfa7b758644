// Package detector finds hands in camera frames and reports their 21
// landmarks.
package detector

import (
	"time"

	"gocv.io/x/gocv"
)

// Detector turns a frame into the hands visible in it. An empty slice means no
// hand was found.
type Detector interface {
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)
	Close() error
}

// Config tunes hand detection.
type Config struct {
	// MaxHands caps the hands reported per frame.
	MaxHands int
	// MinScore drops hands the model is less sure about.
	MinScore float64
	// MinTracking is passed to the landmark tracker.
	MinTracking float64

	// Script and Python override the service lookup. Empty means search the
	// usual install locations.
	Script string
	Python string

	// IdleShutdown stops the service after this long without frames.
	IdleShutdown time.Duration
}

// DefaultConfig returns the settings used by the camera pipeline.
func DefaultConfig() Config {
	return Config{
		MaxHands:     2,
		MinScore:     0.5,
		MinTracking:  0.5,
		IdleShutdown: 30 * time.Second,
	}
}
