package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ayusman/mudra/pkg/logger"
	"github.com/ayusman/mudra/pkg/metrics"
)

// Recorder persists ended sessions.
type Recorder interface {
	RecordSession(ctx context.Context, sum Summary) error
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithRecorder persists every stopped session.
func WithRecorder(r Recorder) ManagerOption {
	return func(m *Manager) { m.recorder = r }
}

// WithSessionOptions applies opts to every session the manager creates.
func WithSessionOptions(opts ...Option) ManagerOption {
	return func(m *Manager) { m.sessionOpts = append(m.sessionOpts, opts...) }
}

// Manager owns the live sessions. Events of every session are also published
// on the manager's bus.
type Manager struct {
	mu          sync.RWMutex
	ctx         context.Context
	sessions    map[string]*Session
	coordinator *Coordinator
	recorder    Recorder
	sessionOpts []Option
	bus         *Bus
	log         logger.Logger
}

// NewManager creates a Manager. Sessions are bound to ctx.
func NewManager(ctx context.Context, coordinator *Coordinator, opts ...ManagerOption) *Manager {
	m := &Manager{
		ctx:         ctx,
		sessions:    make(map[string]*Session),
		coordinator: coordinator,
		bus:         NewBus(),
		log:         logger.Named("session"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Coordinator returns the mode coordinator.
func (m *Manager) Coordinator() *Coordinator {
	return m.coordinator
}

// Subscribe registers for the events of all sessions.
func (m *Manager) Subscribe(buffer int) (<-chan Event, func()) {
	return m.bus.Subscribe(buffer)
}

// Create starts a new session in the named mode.
func (m *Manager) Create(mode string) (*Session, error) {
	resolved, err := m.coordinator.Resolve(mode)
	if err != nil {
		return nil, err
	}

	opts := append(slices.Clone(m.sessionOpts), WithForward(m.bus.Publish))
	s, err := New(m.ctx, "", resolved, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	m.mu.Lock()
	m.sessions[s.ID()] = s
	n := len(m.sessions)
	m.mu.Unlock()

	metrics.UpdateActiveSessions(n)
	m.log.Info(m.ctx, "session started",
		logger.String("session_id", s.ID()),
		logger.String("mode", mode),
	)
	return s, nil
}

// Get returns a live session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// List returns the live sessions ordered by creation time.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	list := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s)
	}
	m.mu.RUnlock()

	slices.SortFunc(list, func(a, b *Session) int {
		if c := a.createdAt.Compare(b.createdAt); c != 0 {
			return c
		}
		return strings.Compare(a.id, b.id)
	})
	return list
}

// Stop closes a session, removes it and records its summary. The summary is
// returned even when recording fails.
func (m *Manager) Stop(ctx context.Context, id string) (Summary, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	n := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return Summary{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	metrics.UpdateActiveSessions(n)

	s.Close()
	sum := s.Summary()

	m.log.Info(ctx, "session stopped",
		logger.String("session_id", id),
		logger.Int("score", sum.Score),
		logger.Int("combos", sum.CombosCompleted),
	)

	if m.recorder != nil {
		if err := m.recorder.RecordSession(ctx, sum); err != nil {
			m.log.Error(ctx, "failed to record session",
				logger.String("session_id", id),
				logger.Error(err),
			)
			return sum, fmt.Errorf("recording session %s: %w", id, err)
		}
	}
	return sum, nil
}

// Run ticks every live session at interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, s := range m.List() {
				s.Tick()
			}
		}
	}
}

// Close stops every session and closes the manager bus.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	var errs []error
	for _, id := range ids {
		if _, err := m.Stop(ctx, id); err != nil && !errors.Is(err, ErrSessionNotFound) {
			errs = append(errs, err)
		}
	}
	m.bus.Close()
	return errors.Join(errs...)
}
