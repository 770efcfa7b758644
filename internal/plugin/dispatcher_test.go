package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/reward"
	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/store"
)

const recordScript = "#!/bin/sh\ncat > last.json\necho '{\"success\":true}'\n"

type fakeBindings map[string]*store.Binding

func (f fakeBindings) GetByEffectTag(tag string) (*store.Binding, error) {
	if b, ok := f["!err"]; ok && b == nil {
		return nil, errors.New("db down")
	}
	return f[tag], nil
}

func effectEvent(tag string) session.Event {
	return session.Event{
		Kind:      session.EventEffectStarted,
		SessionID: "s1",
		Effect:    &reward.Effect{Tag: tag, ComboID: "spark"},
	}
}

func lastRequest(t *testing.T, pluginDir string) Request {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(pluginDir, "last.json"))
	if err != nil {
		t.Fatalf("plugin did not record a request: %v", err)
	}
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		t.Fatalf("invalid recorded request: %v", err)
	}
	return req
}

func newDispatcherFixture(t *testing.T, bindings BindingSource) (*Dispatcher, map[string]string) {
	t.Helper()
	skipOnWindows(t)

	dir := t.TempDir()
	paths := map[string]string{
		"sparkle": writePlugin(t, dir, Manifest{Name: "sparkle", Effects: []string{"vfx_spark"}}, recordScript),
		"custom":  writePlugin(t, dir, Manifest{Name: "custom"}, recordScript),
	}
	manager := NewManager(dir)
	if err := manager.Discover(); err != nil {
		t.Fatal(err)
	}
	return NewDispatcher(manager, NewExecutor(5000), bindings), paths
}

func TestDispatcher_ManifestFallback(t *testing.T) {
	d, paths := newDispatcherFixture(t, nil)

	outcome, err := d.Dispatch(context.Background(), effectEvent("vfx_spark"))
	if err != nil {
		t.Fatalf("Dispatch() failed: %v", err)
	}
	if outcome != OutcomeSuccess {
		t.Errorf("outcome = %q", outcome)
	}

	req := lastRequest(t, paths["sparkle"])
	if req.Action != "render" || req.Effect != "vfx_spark" || req.ComboID != "spark" || req.SessionID != "s1" {
		t.Errorf("unexpected request: %+v", req)
	}
}

func TestDispatcher_BindingWins(t *testing.T) {
	bindings := fakeBindings{
		"vfx_spark": {ID: "b1", EffectTag: "vfx_spark", PluginName: "custom", ActionName: "flash", Config: json.RawMessage(`{"n":2}`), Enabled: true},
	}
	d, paths := newDispatcherFixture(t, bindings)

	outcome, err := d.Dispatch(context.Background(), effectEvent("vfx_spark"))
	if err != nil {
		t.Fatalf("Dispatch() failed: %v", err)
	}
	if outcome != OutcomeSuccess {
		t.Errorf("outcome = %q", outcome)
	}

	req := lastRequest(t, paths["custom"])
	if req.Action != "flash" {
		t.Errorf("action = %q, want flash", req.Action)
	}
	if string(req.Config) != `{"n":2}` {
		t.Errorf("config = %s", req.Config)
	}
	if _, err := os.Stat(filepath.Join(paths["sparkle"], "last.json")); !os.IsNotExist(err) {
		t.Error("manifest plugin should not run when a binding exists")
	}
}

func TestDispatcher_DisabledBinding(t *testing.T) {
	bindings := fakeBindings{
		"vfx_spark": {ID: "b1", EffectTag: "vfx_spark", PluginName: "custom", Enabled: false},
	}
	d, _ := newDispatcherFixture(t, bindings)

	outcome, err := d.Dispatch(context.Background(), effectEvent("vfx_spark"))
	if err != nil {
		t.Fatalf("Dispatch() failed: %v", err)
	}
	if outcome != OutcomeDisabled {
		t.Errorf("outcome = %q, want %q", outcome, OutcomeDisabled)
	}
}

func TestDispatcher_Unbound(t *testing.T) {
	d, _ := newDispatcherFixture(t, fakeBindings{})

	outcome, err := d.Dispatch(context.Background(), effectEvent("vfx_unknown"))
	if err != nil {
		t.Fatalf("Dispatch() failed: %v", err)
	}
	if outcome != OutcomeUnbound {
		t.Errorf("outcome = %q, want %q", outcome, OutcomeUnbound)
	}
}

func TestDispatcher_BindingToMissingPlugin(t *testing.T) {
	bindings := fakeBindings{
		"vfx_spark": {ID: "b1", EffectTag: "vfx_spark", PluginName: "gone", Enabled: true},
	}
	d, _ := newDispatcherFixture(t, bindings)

	outcome, err := d.Dispatch(context.Background(), effectEvent("vfx_spark"))
	if !errors.Is(err, ErrPluginNotFound) {
		t.Fatalf("expected ErrPluginNotFound, got %v", err)
	}
	if outcome != OutcomeFailed {
		t.Errorf("outcome = %q", outcome)
	}
}

func TestDispatcher_BindingLookupError(t *testing.T) {
	d, _ := newDispatcherFixture(t, fakeBindings{"!err": nil})

	if _, err := d.Dispatch(context.Background(), effectEvent("vfx_spark")); err == nil {
		t.Fatal("expected lookup error")
	}
}

func TestDispatcher_NoEffect(t *testing.T) {
	d := NewDispatcher(NewManager(t.TempDir()), nil, nil)
	if _, err := d.Dispatch(context.Background(), session.Event{Kind: session.EventEffectStarted}); err == nil {
		t.Fatal("expected error for event without effect")
	}
}

func TestDispatcher_Run(t *testing.T) {
	d, paths := newDispatcherFixture(t, nil)

	events := make(chan session.Event, 4)
	events <- session.Event{Kind: session.EventComboCompleted, SessionID: "s1"}
	events <- effectEvent("vfx_spark")
	close(events)

	done := make(chan struct{})
	go func() {
		d.Run(context.Background(), events)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after the channel closed")
	}

	if req := lastRequest(t, paths["sparkle"]); req.Effect != "vfx_spark" {
		t.Errorf("effect = %q", req.Effect)
	}
}

func TestDispatcher_RunStopsOnContext(t *testing.T) {
	d := NewDispatcher(NewManager(t.TempDir()), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx, make(chan session.Event))
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}
