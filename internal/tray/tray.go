// Package tray shows play state in the system tray: camera tracking, the last
// completed combo and the running score.
package tray

import (
	"context"
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/session"
)

// Tray is the system tray menu. Its state can be driven by Watch before or
// after the menu exists.
type Tray struct {
	mu sync.RWMutex

	onToggle    func(enabled bool)
	onDashboard func()
	onQuit      func()

	enabled   bool
	lastCombo string
	score     int

	menuToggle *systray.MenuItem
	menuCombo  *systray.MenuItem
	menuScore  *systray.MenuItem
}

// New creates a Tray with camera tracking enabled.
func New() *Tray {
	return &Tray{enabled: true}
}

// OnToggle sets the callback run when camera tracking is switched.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnDashboard sets the callback run when the dashboard item is clicked.
func (t *Tray) OnDashboard(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDashboard = fn
}

// OnQuit sets the callback run before the tray exits.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run shows the tray. It blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra gesture combos")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle camera tracking")
	systray.AddSeparator()
	t.menuCombo = systray.AddMenuItem(comboTitle(t.lastCombo), "Last completed combo")
	t.menuCombo.Disable()
	t.menuScore = systray.AddMenuItem(scoreTitle(t.score), "Session score")
	t.menuScore.Disable()
	toggle := t.menuToggle
	t.mu.Unlock()

	systray.AddSeparator()
	dashboard := systray.AddMenuItem("Open Dashboard...", "Open the dashboard in a browser")
	systray.AddSeparator()
	quit := systray.AddMenuItem("Quit", "Quit Mudra")

	go func() {
		for {
			select {
			case <-toggle.ClickedCh:
				t.handleToggle()
			case <-dashboard.ClickedCh:
				t.mu.RLock()
				fn := t.onDashboard
				t.mu.RUnlock()
				if fn != nil {
					fn()
				}
			case <-quit.ClickedCh:
				t.mu.RLock()
				fn := t.onQuit
				t.mu.RUnlock()
				if fn != nil {
					fn()
				}
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	fn := t.onToggle
	t.mu.Unlock()

	if fn != nil {
		fn(enabled)
	}
}

// Watch applies session events until ctx is done or the channel closes.
func (t *Tray) Watch(ctx context.Context, events <-chan session.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			t.Apply(ev)
		}
	}
}

// Apply updates the menu from one event.
func (t *Tray) Apply(ev session.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch ev.Kind {
	case session.EventComboCompleted:
		if ev.Combo != nil {
			t.lastCombo = ev.Combo.Name
			if t.menuCombo != nil {
				t.menuCombo.SetTitle(comboTitle(t.lastCombo))
			}
		}
	case session.EventScoreUpdated:
		if ev.Score != nil {
			t.score = ev.Score.Total
			if t.menuScore != nil {
				t.menuScore.SetTitle(scoreTitle(t.score))
			}
		}
	}
}

// IsEnabled reports whether camera tracking is on.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// LastCombo returns the name of the last completed combo.
func (t *Tray) LastCombo() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastCombo
}

// Score returns the last reported session score.
func (t *Tray) Score() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.score
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Camera tracking"
	}
	return "○ Camera tracking"
}

func comboTitle(name string) string {
	if name == "" {
		return "Last combo: none"
	}
	return "Last combo: " + name
}

func scoreTitle(score int) string {
	return fmt.Sprintf("Score: %d", score)
}
