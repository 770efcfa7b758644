package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/tray"
	"github.com/ayusman/mudra/pkg/logger"
)

func newPlayCmd(opts *options) *cobra.Command {
	var (
		mode     string
		withTray bool
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play with the camera",
		Long:  "Start a session fed by the camera pipeline, serve the API and optionally show a tray menu.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if mode == "" {
				mode = opts.cfg.DefaultMode
			}
			return runPlay(cmd.Context(), opts, mode, withTray)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "Game mode (defaults to default_mode)")
	cmd.Flags().BoolVar(&withTray, "tray", false, "Show the system tray menu")
	return cmd
}

func runPlay(parent context.Context, opts *options, mode string, withTray bool) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	cfg := opts.cfg
	rt, err := newRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close(context.WithoutCancel(ctx))

	a, err := app.New(app.Config{
		Store:           rt.store,
		Sessions:        rt.sessions,
		Templates:       rt.templates,
		CameraID:        cfg.CameraID,
		MotionThreshold: cfg.MotionThreshold,
		Fallback:        cfg.Fallback,
		Stabilizer:      cfg.Stabilizer,
		Mode:            mode,
	})
	if err != nil {
		return err
	}
	if _, err := a.LoadTemplates(); err != nil {
		rt.log.Warn(ctx, "loading templates", logger.Error(err))
	}
	if err := a.Start(ctx); err != nil {
		return err
	}
	defer func() {
		summary, err := a.Stop(context.WithoutCancel(ctx))
		if err != nil {
			rt.log.Error(ctx, "stopping session", logger.Error(err))
			return
		}
		fmt.Printf("Session %s: score %d, %d combos, best streak %d\n",
			summary.ID, summary.Score, summary.CombosCompleted, summary.MaxStreak)
	}()

	srv := server.New(server.Config{
		StaticDir:    staticDir(cfg),
		Store:        rt.store,
		Sessions:     rt.sessions,
		DefaultMode:  mode,
		Templates:    rt.templates,
		Camera:       a.Camera(),
		TrackingMode: a.TrackingMode,
		Overlay: func() string {
			if s := a.Session(); s != nil {
				return server.StatusLine(s.Status())
			}
			return ""
		},
	})

	if s := a.Session(); s != nil {
		rt.log.Info(ctx, "playing",
			logger.String("session_id", s.ID()),
			logger.String("mode", mode),
			logger.String("tracking", a.TrackingMode()),
			logger.String("addr", cfg.Addr))
	}

	if !withTray {
		return srv.ListenAndServe(ctx, cfg.Addr)
	}

	// The tray owns the main goroutine until it quits.
	t := tray.New()
	t.OnToggle(func(enabled bool) {
		a.SetEnabled(enabled)
	})
	t.OnDashboard(func() {
		rt.log.Info(ctx, "dashboard", logger.String("url", "http://"+cfg.Addr))
	})
	t.OnQuit(cancel)

	events, unsubscribe := rt.sessions.Subscribe(session.DefaultSubscriberBuffer)
	defer unsubscribe()
	go t.Watch(ctx, events)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(ctx, cfg.Addr)
		t.Quit()
	}()

	t.Run()
	cancel()
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
