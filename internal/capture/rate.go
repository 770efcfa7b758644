package capture

import (
	"sync"
	"time"
)

// RateMeter measures the achieved frame rate over a sliding window.
type RateMeter struct {
	mu     sync.Mutex
	window time.Duration
	stamps []time.Time
}

// NewRateMeter creates a meter over window. Non-positive windows default to one second.
func NewRateMeter(window time.Duration) *RateMeter {
	if window <= 0 {
		window = time.Second
	}
	return &RateMeter{window: window}
}

// Observe records a frame at t and returns the rate including it.
func (r *RateMeter) Observe(t time.Time) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stamps = append(r.stamps, t)
	r.trim(t)
	return r.rate()
}

// FPS returns the rate as of the last observed frame.
func (r *RateMeter) FPS() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rate()
}

// Reset forgets all observations.
func (r *RateMeter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stamps = r.stamps[:0]
}

func (r *RateMeter) trim(now time.Time) {
	cutoff := now.Add(-r.window)
	i := 0
	for i < len(r.stamps) && !r.stamps[i].After(cutoff) {
		i++
	}
	r.stamps = append(r.stamps[:0], r.stamps[i:]...)
}

// rate is frames per second across the observed span. Fewer than two frames
// give zero.
func (r *RateMeter) rate() float64 {
	if len(r.stamps) < 2 {
		return 0
	}
	span := r.stamps[len(r.stamps)-1].Sub(r.stamps[0])
	if span <= 0 {
		return 0
	}
	return float64(len(r.stamps)-1) / span.Seconds()
}
