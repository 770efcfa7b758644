package plugin

import (
	"context"
	"errors"
	"fmt"

	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/pkg/logger"
	"github.com/ayusman/mudra/pkg/metrics"
)

// BindingSource resolves the stored binding for an effect tag. A nil binding
// with a nil error means no binding exists.
type BindingSource interface {
	GetByEffectTag(tag string) (*store.Binding, error)
}

// Effect run outcomes recorded in metrics.
const (
	OutcomeSuccess   = "success"
	OutcomeFailed    = "failed"
	OutcomeUnbound   = "unbound"
	OutcomeDisabled  = "disabled"
	defaultAction    = "render"
	defaultTimeoutMs = 2000
)

// Dispatcher runs the plugin bound to each started effect.
type Dispatcher struct {
	plugins  *Manager
	executor *Executor
	bindings BindingSource
	log      logger.Logger
}

// NewDispatcher creates a Dispatcher. bindings may be nil, in which case only
// plugins that declare the effect in their manifest are used.
func NewDispatcher(plugins *Manager, executor *Executor, bindings BindingSource) *Dispatcher {
	if executor == nil {
		executor = NewExecutor(defaultTimeoutMs)
	}
	return &Dispatcher{
		plugins:  plugins,
		executor: executor,
		bindings: bindings,
		log:      logger.Named("dispatcher"),
	}
}

// Run consumes events until ctx is done or the channel closes.
func (d *Dispatcher) Run(ctx context.Context, events <-chan session.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Kind != session.EventEffectStarted || ev.Effect == nil {
				continue
			}
			outcome, err := d.Dispatch(ctx, ev)
			if err != nil {
				d.log.Warn(ctx, "effect dispatch failed",
					logger.String("effect", ev.Effect.Tag),
					logger.String("session_id", ev.SessionID),
					logger.Error(err))
			} else {
				d.log.Debug(ctx, "effect dispatched",
					logger.String("effect", ev.Effect.Tag),
					logger.String("outcome", outcome))
			}
		}
	}
}

// Dispatch resolves and executes the plugin for an effect_started event and
// returns the outcome recorded for it.
func (d *Dispatcher) Dispatch(ctx context.Context, ev session.Event) (string, error) {
	if ev.Effect == nil {
		return "", errors.New("event carries no effect")
	}
	tag := ev.Effect.Tag

	req := &Request{
		Action:    defaultAction,
		Effect:    tag,
		ComboID:   ev.Effect.ComboID,
		SessionID: ev.SessionID,
	}

	p, outcome, err := d.resolve(tag, req)
	if err != nil || p == nil {
		metrics.RecordEffectRun(tag, outcome)
		return outcome, err
	}

	resp, err := d.executor.Execute(ctx, p, req)
	if err != nil {
		metrics.RecordEffectRun(tag, OutcomeFailed)
		return OutcomeFailed, err
	}
	if !resp.Success {
		metrics.RecordEffectRun(tag, OutcomeFailed)
		return OutcomeFailed, fmt.Errorf("plugin %s: %s", p.Manifest.Name, resp.Error)
	}
	metrics.RecordEffectRun(tag, OutcomeSuccess)
	return OutcomeSuccess, nil
}

// resolve picks the plugin for tag, filling the request's action and config
// from a stored binding when one exists.
func (d *Dispatcher) resolve(tag string, req *Request) (*Plugin, string, error) {
	if d.bindings != nil {
		b, err := d.bindings.GetByEffectTag(tag)
		if err != nil {
			return nil, OutcomeFailed, fmt.Errorf("lookup binding: %w", err)
		}
		if b != nil {
			if !b.Enabled {
				return nil, OutcomeDisabled, nil
			}
			p, err := d.plugins.Get(b.PluginName)
			if err != nil {
				return nil, OutcomeFailed, fmt.Errorf("binding %s: %w", b.ID, err)
			}
			if b.ActionName != "" {
				req.Action = b.ActionName
			}
			req.Config = b.Config
			return p, "", nil
		}
	}

	p, err := d.plugins.ForEffect(tag)
	if errors.Is(err, ErrPluginNotFound) {
		return nil, OutcomeUnbound, nil
	}
	return p, "", err
}
