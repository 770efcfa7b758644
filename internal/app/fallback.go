package app

import (
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/pkg/metrics"
)

// Tracking modes persisted under store.KeyTrackingMode.
const (
	TrackingCamera = "camera"
	TrackingManual = "manual"
)

// DefaultFallbackWindow is how long thresholds must stay breached before
// camera tracking is abandoned.
const DefaultFallbackWindow = 3 * time.Second

// Sample is one observation of tracking health.
type Sample struct {
	At time.Time
	// FPS is the achieved frame rate. Zero means not yet known and is ignored.
	FPS float64
	// Quality is the best hand detection score. It is only checked when HandSeen.
	Quality  float64
	HandSeen bool
	// Latency is the time spent detecting hands in the frame.
	Latency time.Duration
}

// FallbackMonitor switches tracking to manual once every sample across a full
// window breaches at least one threshold. A sample within all thresholds
// restarts the window.
type FallbackMonitor struct {
	mu         sync.Mutex
	thresholds config.FallbackThresholds
	window     time.Duration
	mode       string
	since      time.Time
	reason     string
}

// NewFallbackMonitor creates a monitor starting in mode.
func NewFallbackMonitor(thresholds config.FallbackThresholds, window time.Duration, mode string) *FallbackMonitor {
	if window <= 0 {
		window = DefaultFallbackWindow
	}
	if mode != TrackingManual {
		mode = TrackingCamera
	}
	return &FallbackMonitor{thresholds: thresholds, window: window, mode: mode}
}

// Observe feeds a sample and reports whether it caused the switch to manual.
func (m *FallbackMonitor) Observe(s Sample) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mode == TrackingManual {
		return false
	}

	reason := m.breach(s)
	if reason == "" {
		m.since = time.Time{}
		return false
	}
	if m.since.IsZero() {
		m.since = s.At
	}
	m.reason = reason
	if s.At.Sub(m.since) < m.window {
		return false
	}

	m.mode = TrackingManual
	m.since = time.Time{}
	metrics.RecordTrackingFallback()
	return true
}

func (m *FallbackMonitor) breach(s Sample) string {
	th := m.thresholds
	switch {
	case th.MinFPS > 0 && s.FPS > 0 && s.FPS < th.MinFPS:
		return "fps"
	case th.MinQuality > 0 && s.HandSeen && s.Quality < th.MinQuality:
		return "quality"
	case th.MaxLatencyMS > 0 && s.Latency > th.MaxLatency():
		return "latency"
	}
	return ""
}

// Mode returns "camera" or "manual".
func (m *FallbackMonitor) Mode() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// Reason returns the threshold behind the last breach.
func (m *FallbackMonitor) Reason() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reason
}

// SetMode forces a tracking mode and clears any pending breach.
func (m *FallbackMonitor) SetMode(mode string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mode != TrackingManual {
		mode = TrackingCamera
	}
	m.mode = mode
	m.since = time.Time{}
}
