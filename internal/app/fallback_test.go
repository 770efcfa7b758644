package app

import (
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/config"
)

var testThresholds = config.FallbackThresholds{MinFPS: 8, MinQuality: 0.4, MaxLatencyMS: 250}

func TestFallbackMonitor_Breaches(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		sample     Sample
		wantReason string
	}{
		{name: "low fps", sample: Sample{FPS: 4}, wantReason: "fps"},
		{name: "unknown fps ignored", sample: Sample{FPS: 0}},
		{name: "poor hand", sample: Sample{FPS: 15, HandSeen: true, Quality: 0.2}, wantReason: "quality"},
		{name: "no hand ignores quality", sample: Sample{FPS: 15, Quality: 0}},
		{name: "slow detector", sample: Sample{FPS: 15, Latency: 300 * time.Millisecond}, wantReason: "latency"},
		{name: "healthy", sample: Sample{FPS: 15, HandSeen: true, Quality: 0.9, Latency: 20 * time.Millisecond}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewFallbackMonitor(testThresholds, time.Second, TrackingCamera)

			var switched bool
			for i := 0; i <= 10; i++ {
				s := tt.sample
				s.At = base.Add(time.Duration(i) * 100 * time.Millisecond)
				switched = m.Observe(s) || switched
			}

			wantSwitch := tt.wantReason != ""
			if switched != wantSwitch {
				t.Errorf("switched = %v, want %v", switched, wantSwitch)
			}
			if wantSwitch {
				if m.Mode() != TrackingManual {
					t.Errorf("Mode() = %q, want manual", m.Mode())
				}
				if m.Reason() != tt.wantReason {
					t.Errorf("Reason() = %q, want %q", m.Reason(), tt.wantReason)
				}
			} else if m.Mode() != TrackingCamera {
				t.Errorf("Mode() = %q, want camera", m.Mode())
			}
		})
	}
}

func TestFallbackMonitor_RecoveryRestartsWindow(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewFallbackMonitor(testThresholds, time.Second, TrackingCamera)

	bad := Sample{FPS: 3}
	good := Sample{FPS: 15}

	at := func(ms int, s Sample) bool {
		s.At = base.Add(time.Duration(ms) * time.Millisecond)
		return m.Observe(s)
	}

	if at(0, bad) || at(900, bad) {
		t.Fatal("switched before the window elapsed")
	}
	at(950, good)
	if at(1000, bad) || at(1900, bad) {
		t.Fatal("a healthy sample should restart the window")
	}
	if !at(2000, bad) {
		t.Fatal("expected a switch after a full breached window")
	}
	if at(5000, bad) {
		t.Error("a monitor in manual mode should not switch again")
	}
}

func TestFallbackMonitor_Modes(t *testing.T) {
	if m := NewFallbackMonitor(testThresholds, 0, "bogus"); m.Mode() != TrackingCamera {
		t.Errorf("unknown initial mode should become camera, got %q", m.Mode())
	}

	m := NewFallbackMonitor(testThresholds, 0, TrackingManual)
	if m.Mode() != TrackingManual {
		t.Fatalf("Mode() = %q, want manual", m.Mode())
	}
	if m.window != DefaultFallbackWindow {
		t.Errorf("window = %v, want default", m.window)
	}

	m.SetMode(TrackingCamera)
	if m.Mode() != TrackingCamera {
		t.Errorf("SetMode(camera) left %q", m.Mode())
	}
}

func TestFallbackMonitor_ZeroThresholdsNeverSwitch(t *testing.T) {
	m := NewFallbackMonitor(config.FallbackThresholds{}, time.Millisecond, TrackingCamera)
	base := time.Now()
	for i := 0; i < 5; i++ {
		s := Sample{At: base.Add(time.Duration(i) * time.Second), FPS: 1, HandSeen: true, Latency: time.Hour}
		if m.Observe(s) {
			t.Fatal("disabled thresholds should never switch")
		}
	}
}
