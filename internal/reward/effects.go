package reward

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Effect is an advisory presentation tag active for a limited time.
type Effect struct {
	Tag       string    `json:"tag"`
	ComboID   string    `json:"combo_id"`
	StartedAt time.Time `json:"started_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type scheduled struct {
	effect Effect
	gen    uint64
	timer  *time.Timer
}

// Effects schedules effect expiry as cancellable tasks bound to a context.
// Starting a tag that is already active restarts it; the superseded expiry is
// discarded by generation. Once the context is done or Close is called no
// further expiry callbacks are started.
type Effects struct {
	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	active   map[string]*scheduled
	gen      uint64
	onExpire func(Effect)
	now      func() time.Time
}

// NewEffects creates a scheduler whose lifetime is bound to ctx. onExpire may be
// nil and is called from a timer goroutine without any internal lock held.
func NewEffects(ctx context.Context, onExpire func(Effect)) *Effects {
	ctx, cancel := context.WithCancel(ctx)
	e := &Effects{
		ctx:      ctx,
		cancel:   cancel,
		active:   make(map[string]*scheduled),
		onExpire: onExpire,
		now:      time.Now,
	}
	context.AfterFunc(ctx, e.stopAll)
	return e
}

// Start activates tag for d and returns the effect. It is a no-op returning a
// zero Effect after Close.
func (e *Effects) Start(tag, comboID string, d time.Duration) Effect {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ctx.Err() != nil {
		return Effect{}
	}

	if prev, ok := e.active[tag]; ok {
		prev.timer.Stop()
	}

	now := e.now()
	e.gen++
	gen := e.gen
	s := &scheduled{
		effect: Effect{Tag: tag, ComboID: comboID, StartedAt: now, ExpiresAt: now.Add(d)},
		gen:    gen,
	}
	s.timer = time.AfterFunc(d, func() { e.expire(tag, gen) })
	e.active[tag] = s

	return s.effect
}

func (e *Effects) expire(tag string, gen uint64) {
	e.mu.Lock()
	s, ok := e.active[tag]
	if !ok || s.gen != gen || e.ctx.Err() != nil {
		e.mu.Unlock()
		return
	}
	delete(e.active, tag)
	e.mu.Unlock()

	if e.onExpire != nil {
		e.onExpire(s.effect)
	}
}

// Active returns the active effects ordered by tag.
func (e *Effects) Active() []Effect {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Effect, 0, len(e.active))
	for _, s := range e.active {
		out = append(out, s.effect)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

// Close cancels every pending expiry.
func (e *Effects) Close() {
	e.cancel()
	e.stopAll()
}

func (e *Effects) stopAll() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for tag, s := range e.active {
		s.timer.Stop()
		delete(e.active, tag)
	}
}
