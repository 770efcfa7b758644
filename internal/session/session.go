// Package session ties the gesture, combo, reward and objective components
// into one game session and publishes what happens as typed events.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/ayusman/mudra/internal/combo"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/objective"
	"github.com/ayusman/mudra/internal/reward"
	"github.com/ayusman/mudra/pkg/logger"
	"github.com/ayusman/mudra/pkg/metrics"
)

// Option configures a Session.
type Option func(*options)

type options struct {
	ttl        time.Duration
	difficulty float64
	now        func() time.Time
	forward    func(Event)
}

// WithWindowTTL sets the gesture window TTL.
func WithWindowTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

// WithDifficulty sets the base difficulty, multiplied by the mode's.
func WithDifficulty(m float64) Option {
	return func(o *options) {
		if m > 0 {
			o.difficulty = m
		}
	}
}

// WithClock overrides the session clock.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithForward receives every event after it is published. It is called with
// the session lock held and must not block.
func WithForward(fn func(Event)) Option {
	return func(o *options) { o.forward = fn }
}

// Status is a snapshot of a session.
type Status struct {
	ID             string                `json:"id"`
	Mode           string                `json:"mode"`
	State          combo.State           `json:"state"`
	GestureHistory []gesture.Event       `json:"gesture_history"`
	Active         *ComboInfo            `json:"active,omitempty"`
	Streak         reward.Streak         `json:"streak"`
	Score          int                   `json:"score"`
	Objectives     []objective.Objective `json:"objectives"`
	Overall        float64               `json:"overall_progress"`
	Effects        []reward.Effect       `json:"effects"`
	CreatedAt      time.Time             `json:"created_at"`
	Closed         bool                  `json:"closed"`
}

// Summary is what is kept of a session once it ends.
type Summary struct {
	ID                  string          `json:"id"`
	Mode                string          `json:"mode"`
	StartedAt           time.Time       `json:"started_at"`
	EndedAt             time.Time       `json:"ended_at"`
	Score               int             `json:"score"`
	MaxStreak           int             `json:"max_streak"`
	CombosCompleted     int             `json:"combos_completed"`
	CombosFailed        int             `json:"combos_failed"`
	Gestures            int             `json:"gestures"`
	Accuracy            float64         `json:"accuracy"`
	MeanConfidence      float64         `json:"mean_confidence"`
	ObjectivesCompleted int             `json:"objectives_completed"`
	Rewards             []reward.Reward `json:"rewards"`
}

// Session is one game session. All methods are safe for concurrent use; the
// components it owns are only ever touched under its lock.
type Session struct {
	mu sync.Mutex

	id        string
	mode      Resolved
	createdAt time.Time
	endedAt   time.Time
	now       func() time.Time
	cancel    context.CancelFunc

	tracker    *combo.Tracker
	engine     *reward.Engine
	effects    *reward.Effects
	objectives *objective.Tracker

	bus     *Bus
	forward func(Event)
	log     logger.Logger

	seq         uint64
	closed      bool
	lastOverall float64
	rewards     []reward.Reward
	failed      int
}

// New starts a session in mode. An empty id is replaced with a random UUID.
// Effects are cancelled when ctx is done or the session is closed.
func New(ctx context.Context, id string, mode Resolved, opts ...Option) (*Session, error) {
	o := options{
		ttl:        combo.DefaultTTL,
		difficulty: 1.0,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if id == "" {
		id = uuid.NewString()
	}

	objectives, err := objective.NewTracker(mode.Mode.Objectives, objective.WithClock(o.now))
	if err != nil {
		return nil, err
	}

	difficulty := o.difficulty
	if mode.Mode.Difficulty > 0 {
		difficulty *= mode.Mode.Difficulty
	}

	s := &Session{
		id:         id,
		mode:       mode,
		createdAt:  o.now(),
		now:        o.now,
		tracker:    combo.NewTracker(mode.Registry, combo.WithTTL(o.ttl), combo.WithClock(o.now)),
		engine:     reward.NewEngine(reward.WithDifficulty(difficulty)),
		objectives: objectives,
		bus:        NewBus(),
		forward:    o.forward,
		log:        logger.Named("session"),
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.effects = reward.NewEffects(ctx, s.onEffectExpired)

	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Mode returns the resolved mode.
func (s *Session) Mode() Resolved { return s.mode }

// Subscribe registers for this session's events.
func (s *Session) Subscribe(buffer int) (<-chan Event, func()) {
	return s.bus.Subscribe(buffer)
}

// PushInput ingests an upstream classifier record. Malformed records become
// no_hand at confidence 0.
func (s *Session) PushInput(in gesture.Input) []Event {
	sym, confidence, ok := in.Sanitize()
	if !ok {
		s.log.Warn(context.Background(), "malformed gesture input",
			logger.String("session_id", s.id),
			logger.String("symbol", in.Symbol),
		)
	}
	return s.Push(sym, confidence)
}

// Push ingests one gesture and returns the events it caused, in order.
// Gestures outside the mode's active subset are dropped.
func (s *Session) Push(sym gesture.Symbol, confidence float64) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	if !sym.Valid() {
		sym, confidence = gesture.NoHand, 0
	}
	if !s.mode.AllowsSymbol(sym) {
		s.log.Debug(context.Background(), "gesture outside mode",
			logger.String("session_id", s.id),
			logger.String("symbol", string(sym)),
		)
		return nil
	}

	ev, tr := s.tracker.Push(sym, confidence)
	metrics.RecordGesture(string(sym))

	var out []Event
	out = s.emit(out, Event{Kind: EventGesturePerformed, Gesture: &ev})
	done := s.objectives.Update(objective.GesturePerformed, objective.Payload{Symbol: ev.Symbol, Confidence: ev.Confidence})

	switch tr.Kind {
	case combo.TransitionDetected:
		metrics.RecordComboDetected(tr.Combo.Definition.ID)
		out = s.emit(out, Event{Kind: EventComboDetected, Combo: comboInfo(tr.Combo)})

	case combo.TransitionSuperseded:
		metrics.RecordComboDetected(tr.Combo.Definition.ID)
		info := comboInfo(tr.Combo)
		if tr.Previous != nil {
			info.Superseded = tr.Previous.Definition.ID
		}
		out = s.emit(out, Event{Kind: EventComboDetected, Combo: info})

	case combo.TransitionProgress:
		out = s.emit(out, Event{Kind: EventComboProgress, Combo: comboInfo(tr.Combo)})

	case combo.TransitionCompleted:
		var completed []objective.Objective
		out, completed = s.completeCombo(out, tr.Combo, ev)
		done = append(done, completed...)

	case combo.TransitionFailed:
		s.engine.OnComboFailed()
		s.failed++
		metrics.RecordComboFailed(tr.Combo.Definition.ID)
		out = s.emit(out, Event{Kind: EventComboFailed, Combo: comboInfo(tr.Combo)})
		out = s.emitScore(out, 0)
	}

	return s.emitObjectives(out, done)
}

func (s *Session) completeCombo(out []Event, active combo.ActiveCombo, ev gesture.Event) ([]Event, []objective.Objective) {
	def := active.Definition
	r := s.engine.OnComboCompleted(def, ev.Confidence, ev.Timestamp)
	s.rewards = append(s.rewards, r)
	metrics.RecordComboCompleted(def.ID, r.TotalPoints)

	s.log.Info(context.Background(), "combo completed",
		logger.String("session_id", s.id),
		logger.String("combo_id", def.ID),
		logger.Int("points", r.TotalPoints),
		logger.Int("streak", s.engine.Streak().Count),
	)

	out = s.emit(out, Event{Kind: EventComboCompleted, Combo: comboInfo(active), Reward: &r})
	out = s.emitScore(out, r.TotalPoints)

	if def.EffectTag != "" {
		if eff := s.effects.Start(def.EffectTag, def.ID, def.EffectDuration); eff.Tag != "" {
			out = s.emit(out, Event{Kind: EventEffectStarted, Effect: &eff})
		}
	}

	done := s.objectives.Update(objective.ComboCompleted, objective.Payload{ComboID: def.ID})
	done = append(done, s.objectives.Update(objective.ScoreUpdated, objective.Payload{Score: s.engine.Total()})...)
	return out, done
}

// Interact records a touch of an object. Objects outside the mode are ignored.
func (s *Session) Interact(objectID string) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	if !s.mode.AllowsObject(objectID) {
		s.log.Debug(context.Background(), "object outside mode",
			logger.String("session_id", s.id),
			logger.String("object_id", objectID),
		)
		return nil
	}

	out := s.emit(nil, Event{Kind: EventObjectInteracted, ObjectID: objectID})
	done := s.objectives.Update(objective.ObjectInteracted, objective.Payload{ObjectID: objectID})
	return s.emitObjectives(out, done)
}

// Pause breaks the streak.
func (s *Session) Pause() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.engine.Reset()
	return s.emitScore(nil, 0)
}

// Tick advances time objectives.
func (s *Session) Tick() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	return s.emitObjectives(nil, s.objectives.Tick(s.now()))
}

// Status returns a snapshot of the session.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.tracker.Status()
	st := Status{
		ID:             s.id,
		Mode:           s.mode.Mode.Name,
		State:          ts.State,
		GestureHistory: ts.GestureHistory,
		Streak:         s.engine.Streak(),
		Score:          s.engine.Total(),
		Objectives:     s.objectives.Objectives(),
		Overall:        s.objectives.Overall(),
		Effects:        s.effects.Active(),
		CreatedAt:      s.createdAt,
		Closed:         s.closed,
	}
	if ts.Active != nil {
		st.Active = comboInfo(*ts.Active)
	}
	return st
}

// Summary returns the session totals.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	counters := s.objectives.Counters()
	sum := Summary{
		ID:              s.id,
		Mode:            s.mode.Mode.Name,
		StartedAt:       s.createdAt,
		EndedAt:         s.endedAt,
		Score:           s.engine.Total(),
		MaxStreak:       s.engine.Streak().MaxCount,
		CombosCompleted: len(s.rewards),
		CombosFailed:    s.failed,
		Gestures:        counters.TotalGestures,
		Accuracy:        s.objectives.Accuracy(),
		Rewards:         append([]reward.Reward(nil), s.rewards...),
	}
	if sum.EndedAt.IsZero() {
		sum.EndedAt = s.now()
	}
	if len(s.rewards) > 0 {
		confidences := make([]float64, len(s.rewards))
		for i, r := range s.rewards {
			confidences[i] = r.ConfidenceAtCompletion
		}
		sum.MeanConfidence = stat.Mean(confidences, nil)
	}
	for _, o := range s.objectives.Objectives() {
		if o.Completed {
			sum.ObjectivesCompleted++
		}
	}
	return sum
}

// Close ends the session: pending effects are cancelled and subscribers are
// closed. It is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.emit(nil, Event{Kind: EventSessionClosed})
	s.closed = true
	s.endedAt = s.now()
	s.bus.Close()
	s.mu.Unlock()

	s.effects.Close()
	s.cancel()
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) onEffectExpired(eff reward.Effect) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The timer may fire while Close is in progress.
	if s.closed {
		return
	}
	s.emit(nil, Event{Kind: EventEffectExpired, Effect: &eff})
}

// emit stamps ev, publishes it and appends it to out. Callers hold s.mu.
func (s *Session) emit(out []Event, ev Event) []Event {
	s.seq++
	ev.SessionID = s.id
	ev.Seq = s.seq
	ev.Timestamp = s.now()

	s.bus.Publish(ev)
	if s.forward != nil {
		s.forward(ev)
	}
	return append(out, ev)
}

func (s *Session) emitScore(out []Event, delta int) []Event {
	return s.emit(out, Event{Kind: EventScoreUpdated, Score: &ScoreUpdate{
		Delta:  delta,
		Total:  s.engine.Total(),
		Streak: s.engine.Streak(),
	}})
}

func (s *Session) emitObjectives(out []Event, done []objective.Objective) []Event {
	for i := range done {
		o := done[i]
		out = s.emit(out, Event{Kind: EventObjectiveCompleted, Objective: &o})
	}

	overall := s.objectives.Overall()
	if overall != s.lastOverall || len(done) > 0 {
		s.lastOverall = overall
		out = s.emit(out, Event{Kind: EventProgressUpdated, Progress: &ProgressUpdate{
			Overall:    overall,
			Objectives: s.objectives.Objectives(),
		}})
	}
	return out
}
