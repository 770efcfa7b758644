package app

import (
	"context"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/pkg/logger"
	"github.com/ayusman/mudra/pkg/metrics"
)

// runPipeline reads frames until stop is closed or tracking falls back to
// manual. It idles at IdleFPS, switches to ActiveFPS on motion and runs hand
// detection only while active. The stabilizer forgets its run whenever the
// loop goes idle or is disabled.
func (a *App) runPipeline(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	active := false
	paused := false
	lastMotion := a.now()

	ticker := time.NewTicker(time.Second / IdleFPS)
	defer ticker.Stop()

	setRate := func(fps int) {
		a.camera.SetFPS(fps)
		ticker.Reset(time.Second / time.Duration(fps))
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
		}

		if !a.IsEnabled() {
			if !paused {
				paused = true
				a.stabilizer.Reset()
				a.rate.Reset()
			}
			continue
		}
		paused = false

		frame, err := a.camera.ReadFrame()
		if err != nil {
			a.log.Debug(ctx, "reading frame", logger.Error(err))
			continue
		}

		now := a.now()
		motion := a.motion.Detect(frame)
		switch {
		case motion.Detected:
			lastMotion = now
			if !active {
				active = true
				setRate(ActiveFPS)
				a.log.Debug(ctx, "switched to active mode", logger.Float64("changed", motion.Changed))
			}
		case active && now.Sub(lastMotion) > IdleTimeout:
			active = false
			setRate(IdleFPS)
			a.stabilizer.Reset()
			a.rate.Reset()
			a.log.Debug(ctx, "switched to idle mode")
		}

		if !active {
			frame.Close()
			continue
		}

		_, fellBack := a.ProcessFrame(ctx, frame, now)
		frame.Close()
		if fellBack {
			return
		}
	}
}

// ProcessFrame detects hands in one frame, checks tracking health and feeds
// any stable gesture to the session. fellBack is true when this frame made
// tracking switch to manual; the mode is persisted, the camera closed and no
// gesture is pushed.
func (a *App) ProcessFrame(ctx context.Context, frame *gocv.Mat, now time.Time) (events []session.Event, fellBack bool) {
	a.mu.RLock()
	d := a.detector
	a.mu.RUnlock()
	if d == nil {
		return nil, false
	}

	start := time.Now()
	hands, err := d.Detect(frame)
	latency := time.Since(start)
	metrics.RecordFrameLatency(float64(latency.Microseconds()) / 1000)
	if err != nil {
		a.log.Warn(ctx, "detecting hands", logger.Error(err))
		return nil, false
	}

	sample := Sample{At: now, FPS: a.rate.Observe(now), Latency: latency}
	if len(hands) > 0 {
		sample.HandSeen = true
		sample.Quality = bestScore(hands)
	}
	if a.monitor.Observe(sample) {
		a.enterManual(ctx)
		return nil, true
	}

	return a.HandleHands(hands), false
}

// HandleHands classifies one frame's hands and pushes the gesture to the
// session once the stabilizer accepts it.
func (a *App) HandleHands(hands []detector.HandLandmarks) []session.Event {
	sym, conf, ok := a.classifier.Classify(hands)
	if !ok {
		return nil
	}
	sym, conf, ok = a.stabilizer.Observe(sym, conf)
	if !ok {
		return nil
	}

	s := a.Session()
	if s == nil {
		return nil
	}
	return s.Push(sym, conf)
}

func (a *App) enterManual(ctx context.Context) {
	a.log.Warn(ctx, "tracking quality too low, switching to manual input",
		logger.String("reason", a.monitor.Reason()))
	if err := a.persistMode(TrackingManual); err != nil {
		a.log.Error(ctx, "persisting tracking mode", logger.Error(err))
	}
	a.closeCamera(ctx)
}

func bestScore(hands []detector.HandLandmarks) float64 {
	best := hands[0].Score
	for _, h := range hands[1:] {
		if h.Score > best {
			best = h.Score
		}
	}
	return best
}
