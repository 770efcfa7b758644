// Package app runs the camera pipeline that turns frames into gestures for a
// play session.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/pkg/logger"
)

// Pipeline timing.
const (
	// IdleFPS is the frame rate while nothing moves.
	IdleFPS = 5
	// ActiveFPS is the frame rate while hands are tracked.
	ActiveFPS = 15
	// IdleTimeout is how long without motion before dropping back to IdleFPS.
	IdleTimeout = 2 * time.Second
)

// ErrNoSessionManager is returned by New without a session manager.
var ErrNoSessionManager = errors.New("app: session manager is required")

// Config wires the pipeline. Camera and Detector default to the device camera
// and the MediaPipe detector.
type Config struct {
	Store     *store.Store
	Sessions  *session.Manager
	Templates *gesture.TemplateMatcher

	Camera   capture.Camera
	Detector detector.Detector

	CameraID        int
	MotionThreshold float64

	Fallback       config.FallbackThresholds
	FallbackWindow time.Duration
	Stabilizer     config.Stabilizer

	// Mode is the game mode of the session the pipeline feeds.
	Mode string
}

// App owns the camera pipeline and the session it feeds.
type App struct {
	config     Config
	camera     capture.Camera
	motion     *capture.MotionDetector
	classifier *gesture.Classifier
	stabilizer *gesture.Stabilizer
	monitor    *FallbackMonitor
	rate       *capture.RateMeter
	log        logger.Logger
	now        func() time.Time

	mu       sync.RWMutex
	detector detector.Detector
	session  *session.Session
	enabled  bool
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// New creates an App. The persisted tracking mode is restored from the store.
func New(cfg Config) (*App, error) {
	if cfg.Sessions == nil {
		return nil, ErrNoSessionManager
	}
	if cfg.MotionThreshold <= 0 {
		cfg.MotionThreshold = 1.0
	}
	if cfg.Mode == "" {
		cfg.Mode = config.DefaultMode
	}
	if cfg.Templates == nil {
		cfg.Templates = gesture.NewTemplateMatcher()
	}

	a := &App{
		config:     cfg,
		camera:     cfg.Camera,
		motion:     capture.NewMotionDetector(cfg.MotionThreshold),
		classifier: gesture.NewClassifier(cfg.Templates),
		stabilizer: gesture.NewStabilizer(cfg.Stabilizer.MinHoldFrames, cfg.Stabilizer.MinConfidence),
		rate:       capture.NewRateMeter(time.Second),
		log:        logger.Named("app"),
		now:        time.Now,
		detector:   cfg.Detector,
		enabled:    true,
	}
	if a.camera == nil {
		a.camera = capture.NewCamera(cfg.CameraID)
	}

	mode := TrackingCamera
	if cfg.Store != nil {
		stored, err := cfg.Store.Settings().GetOr(store.KeyTrackingMode, TrackingCamera)
		if err != nil {
			return nil, fmt.Errorf("load tracking mode: %w", err)
		}
		mode = stored
	}
	a.monitor = NewFallbackMonitor(cfg.Fallback, cfg.FallbackWindow, mode)

	if a.detector == nil {
		ctx := context.Background()
		if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
			a.detector = mp
			a.log.Info(ctx, "using mediapipe hand detection")
		} else {
			a.log.Warn(ctx, "mediapipe not available, using mock detector", logger.Error(err))
			a.detector = detector.NewMockDetector()
		}
	}

	return a, nil
}

// LoadTemplates copies the stored symbol templates into the classifier.
func (a *App) LoadTemplates() (int, error) {
	if a.config.Store == nil {
		return 0, nil
	}

	templates, err := a.config.Store.Templates().List()
	if err != nil {
		return 0, fmt.Errorf("list templates: %w", err)
	}
	for _, t := range templates {
		a.config.Templates.SetTemplate(t.Gesture())
	}

	a.log.Info(context.Background(), "loaded templates", logger.Int("count", len(templates)))
	return len(templates), nil
}

// Start creates the play session if needed and, in camera mode, opens the
// camera and starts the frame loop. Calling Start twice is a no-op.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.session == nil {
		s, err := a.config.Sessions.Create(a.config.Mode)
		if err != nil {
			a.mu.Unlock()
			return fmt.Errorf("create session: %w", err)
		}
		a.session = s
	}
	a.mu.Unlock()

	if a.monitor.Mode() == TrackingManual {
		a.log.Info(ctx, "camera tracking disabled, accepting gestures over the api")
		return nil
	}
	return a.startLoop(ctx)
}

// Stop halts the frame loop, releases the camera and ends the session.
func (a *App) Stop(ctx context.Context) (session.Summary, error) {
	a.stopLoop()
	a.closeCamera(ctx)
	a.motion.Close()

	a.mu.Lock()
	s := a.session
	a.session = nil
	d := a.detector
	a.mu.Unlock()

	if d != nil {
		if err := d.Close(); err != nil {
			a.log.Warn(ctx, "closing detector", logger.Error(err))
		}
	}
	if s == nil {
		return session.Summary{}, nil
	}
	return a.config.Sessions.Stop(ctx, s.ID())
}

func (a *App) startLoop(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}
	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	a.camera.SetFPS(IdleFPS)

	a.stopCh = make(chan struct{})
	a.doneCh = make(chan struct{})
	go a.runPipeline(ctx, a.stopCh, a.doneCh)

	a.log.Info(ctx, "detection pipeline started")
	return nil
}

func (a *App) stopLoop() {
	a.mu.Lock()
	stop, done := a.stopCh, a.doneCh
	a.stopCh, a.doneCh = nil, nil
	a.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (a *App) closeCamera(ctx context.Context) {
	if err := a.camera.Close(); err != nil {
		a.log.Warn(ctx, "closing camera", logger.Error(err))
	}
}

// TrackingMode returns "camera" or "manual".
func (a *App) TrackingMode() string {
	return a.monitor.Mode()
}

// SetTrackingMode switches between camera and manual tracking and persists
// the choice.
func (a *App) SetTrackingMode(ctx context.Context, mode string) error {
	if mode != TrackingCamera && mode != TrackingManual {
		return fmt.Errorf("unknown tracking mode %q", mode)
	}
	a.monitor.SetMode(mode)
	if err := a.persistMode(mode); err != nil {
		return err
	}

	if mode == TrackingManual {
		a.stopLoop()
		a.closeCamera(ctx)
		return nil
	}

	a.mu.RLock()
	started := a.session != nil
	a.mu.RUnlock()
	if !started {
		return nil
	}
	// A loop that fell back on its own has exited but is still registered.
	a.stopLoop()
	return a.startLoop(ctx)
}

func (a *App) persistMode(mode string) error {
	if a.config.Store == nil {
		return nil
	}
	if err := a.config.Store.Settings().Set(store.KeyTrackingMode, mode); err != nil {
		return fmt.Errorf("persist tracking mode: %w", err)
	}
	return nil
}

// SetEnabled pauses or resumes frame processing without closing the camera.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	a.enabled = enabled
	s := a.session
	a.mu.Unlock()

	if !enabled {
		if s != nil {
			s.Pause()
		}
	}
}

// IsEnabled reports whether frames are processed.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector replaces the hand detector.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Session returns the play session, or nil before Start.
func (a *App) Session() *session.Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session
}

// Camera returns the frame source.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Templates returns the matcher shared with the templates API.
func (a *App) Templates() *gesture.TemplateMatcher {
	return a.config.Templates
}
