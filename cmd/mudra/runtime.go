package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ayusman/mudra/internal/combo"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/pkg/logger"
)

const (
	tickInterval    = 250 * time.Millisecond
	pluginTimeoutMs = 2000
)

// runtime holds the components shared by serve and play.
type runtime struct {
	cfg       *config.Config
	store     *store.Store
	sessions  *session.Manager
	templates *gesture.TemplateMatcher
	log       logger.Logger
}

func openStore(cfg *config.Config) (*store.Store, error) {
	dbPath, err := cfg.ResolveDBPath()
	if err != nil {
		return nil, err
	}
	st, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// newRuntime opens the store, builds the combo registry and starts the
// session ticker and the effect dispatcher. Both stop when ctx is done.
func newRuntime(ctx context.Context, cfg *config.Config) (*runtime, error) {
	log := logger.Named("mudra")

	registry, err := combo.Load(cfg)
	if err != nil {
		return nil, fmt.Errorf("combo registry: %w", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	sessions := session.NewManager(ctx, session.NewCoordinator(registry),
		session.WithRecorder(st.Sessions()),
		session.WithSessionOptions(
			session.WithWindowTTL(cfg.WindowTTL()),
			session.WithDifficulty(cfg.DifficultyMultiplier),
		),
	)
	go sessions.Run(ctx, tickInterval)

	plugins := plugin.NewManager(cfg.PluginDir)
	if err := plugins.Discover(); err != nil {
		log.Warn(ctx, "plugin discovery failed", logger.String("dir", cfg.PluginDir), logger.Error(err))
	}
	events, _ := sessions.Subscribe(session.DefaultSubscriberBuffer)
	dispatcher := plugin.NewDispatcher(plugins, plugin.NewExecutor(pluginTimeoutMs), st.Bindings())
	go dispatcher.Run(ctx, events)

	log.Info(ctx, "runtime ready",
		logger.Int("combos", registry.Len()),
		logger.Int("plugins", len(plugins.List())),
		logger.String("db", st.Path()))

	return &runtime{
		cfg:       cfg,
		store:     st,
		sessions:  sessions,
		templates: gesture.NewTemplateMatcher(),
		log:       log,
	}, nil
}

func (r *runtime) Close(ctx context.Context) {
	if err := r.sessions.Close(ctx); err != nil {
		r.log.Warn(ctx, "closing sessions", logger.Error(err))
	}
	if err := r.store.Close(); err != nil {
		r.log.Warn(ctx, "closing store", logger.Error(err))
	}
}

// staticDir returns the configured static directory or the first web
// directory found next to the working directory or under ~/.mudra.
func staticDir(cfg *config.Config) string {
	if cfg.StaticDir != "" {
		return cfg.StaticDir
	}
	for _, p := range []string{"web", "../web", "../../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, ".mudra", "web")
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			return p
		}
	}
	return ""
}
